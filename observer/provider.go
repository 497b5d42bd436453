package observer

import (
	"context"
	"time"

	darkvec "github.com/darkvec/darkvec"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ObservedProvider wraps a darkvec.Provider with OTEL instrumentation.
type ObservedProvider struct {
	inner darkvec.Provider
	inst  *Instruments
	model string
}

var _ darkvec.Provider = (*ObservedProvider)(nil)

// WrapProvider returns an instrumented chat provider.
func WrapProvider(inner darkvec.Provider, model string, inst *Instruments) *ObservedProvider {
	return &ObservedProvider{inner: inner, inst: inst, model: model}
}

func (o *ObservedProvider) Chat(ctx context.Context, messages []darkvec.ChatMessage) (string, error) {
	ctx, span := o.inst.Tracer.Start(ctx, "llm.chat", trace.WithAttributes(
		AttrLLMModel.String(o.model),
		AttrLLMProvider.String("ollama"),
	))
	defer span.End()
	start := time.Now()

	result, err := o.inner.Chat(ctx, messages)

	durationMs := float64(time.Since(start).Milliseconds())
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	o.inst.LLMRequests.Add(ctx, 1, metric.WithAttributes(
		AttrLLMModel.String(o.model),
		attribute.String("status", status),
	))
	o.inst.LLMDuration.Record(ctx, durationMs, metric.WithAttributes(
		AttrLLMModel.String(o.model),
	))

	// Structured log
	var rec otellog.Record
	rec.SetSeverity(otellog.SeverityInfo)
	rec.SetBody(otellog.StringValue("chat completed"))
	rec.AddAttributes(
		otellog.String("llm.model", o.model),
		otellog.Int("llm.message_count", len(messages)),
		otellog.Float64("llm.duration_ms", durationMs),
		otellog.String("status", status),
	)
	o.inst.Logger.Emit(ctx, rec)

	return result, err
}
