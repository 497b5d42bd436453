package observer

import "go.opentelemetry.io/otel/attribute"

// Attribute keys for pipeline observability spans and metrics.
var (
	AttrLLMModel    = attribute.Key("llm.model")
	AttrLLMProvider = attribute.Key("llm.provider")

	AttrEmbedTextCount = attribute.Key("llm.embed.text_count")

	AttrFilePath   = attribute.Key("ingest.file_path")
	AttrChunkCount = attribute.Key("ingest.chunk_count")
)
