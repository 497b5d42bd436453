package observer

import (
	"context"
	"time"

	"github.com/darkvec/darkvec/ingest"

	"go.opentelemetry.io/otel/codes"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/trace"
)

// Ingestor processes one file into the store. ingest.Ingestor satisfies it.
type Ingestor interface {
	IngestFile(ctx context.Context, path string) (ingest.IngestResult, error)
}

// ObservedIngestor wraps an Ingestor with OTEL instrumentation. Each file
// gets one span covering the full pipeline run, so the llm.chat and
// llm.embed spans of its chunks nest under it.
type ObservedIngestor struct {
	inner Ingestor
	inst  *Instruments
}

var _ Ingestor = (*ObservedIngestor)(nil)

// WrapIngestor returns an instrumented ingestor.
func WrapIngestor(inner Ingestor, inst *Instruments) *ObservedIngestor {
	return &ObservedIngestor{inner: inner, inst: inst}
}

func (o *ObservedIngestor) IngestFile(ctx context.Context, path string) (ingest.IngestResult, error) {
	ctx, span := o.inst.Tracer.Start(ctx, "ingest.file", trace.WithAttributes(
		AttrFilePath.String(path),
	))
	defer span.End()
	start := time.Now()

	result, err := o.inner.IngestFile(ctx, path)

	durationMs := float64(time.Since(start).Milliseconds())
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(AttrChunkCount.Int(result.ChunkCount))

	var rec otellog.Record
	rec.SetSeverity(otellog.SeverityInfo)
	rec.SetBody(otellog.StringValue("file ingested"))
	rec.AddAttributes(
		otellog.String("ingest.file_path", path),
		otellog.Int("ingest.chunk_count", result.ChunkCount),
		otellog.Bool("ingest.processed", result.Processed),
		otellog.Float64("ingest.duration_ms", durationMs),
		otellog.String("status", status),
	)
	o.inst.Logger.Emit(ctx, rec)

	return result, err
}
