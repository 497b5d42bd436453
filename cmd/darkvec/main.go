// Command darkvec serves the document ingestion pipeline over HTTP:
// it splits files into chunks, reconciles them against previously stored
// content hashes, enriches new chunks with LLM summaries, embeds them,
// and persists them to a vector store.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	darkvec "github.com/darkvec/darkvec"
	"github.com/darkvec/darkvec/ingest"
	"github.com/darkvec/darkvec/internal/config"
	"github.com/darkvec/darkvec/internal/server"
	"github.com/darkvec/darkvec/observer"
	"github.com/darkvec/darkvec/provider/ollama"
	"github.com/darkvec/darkvec/store/postgres"
	"github.com/darkvec/darkvec/store/sqlite"
)

func main() {
	// .env is optional; real env vars win either way.
	_ = godotenv.Load()

	cfg := config.Load(os.Getenv("DARKVEC_CONFIG"))
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Store: sqlite by default, postgres when a DSN is configured.
	var store darkvec.VectorStore
	if cfg.Database.DSN != "" {
		pool, err := pgxpool.New(ctx, cfg.Database.DSN)
		if err != nil {
			log.Fatalf("connect postgres: %v", err)
		}
		defer pool.Close()
		var opts []postgres.Option
		if cfg.Database.EmbeddingDimension > 0 {
			opts = append(opts, postgres.WithEmbeddingDimension(cfg.Database.EmbeddingDimension))
		}
		store = postgres.New(pool, opts...)
	} else {
		store = sqlite.New(cfg.Database.Path, sqlite.WithLogger(logger))
	}
	defer store.Close()

	if err := store.Init(ctx); err != nil {
		log.Fatalf("init store: %v", err)
	}

	var provider darkvec.Provider = ollama.New(cfg.Ollama.URL, cfg.Ollama.Model)
	var embedding darkvec.EmbeddingProvider = ollama.NewEmbedding(cfg.Ollama.URL, cfg.Ollama.EmbedModel)

	var inst *observer.Instruments
	if cfg.Observer.Enabled {
		if cfg.Observer.Endpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Observer.Endpoint)
		}
		var shutdown func(context.Context) error
		var err error
		inst, shutdown, err = observer.Init(ctx)
		if err != nil {
			log.Fatalf("init observer: %v", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(sctx)
		}()
		provider = observer.WrapProvider(provider, cfg.Ollama.Model, inst)
		embedding = observer.WrapEmbedding(embedding, cfg.Ollama.EmbedModel, inst)
	}

	ingestor := ingest.NewIngestor(store, provider, embedding,
		ingest.WithChunkSize(cfg.Chunking.ChunkSize),
		ingest.WithChunkOverlap(cfg.Chunking.ChunkOverlap),
		ingest.WithBatchSize(cfg.Chunking.BatchSize),
		ingest.WithAuthorName(cfg.Author.Name),
		ingest.WithAuthorIdentity(cfg.Author.FullName, cfg.Author.Pronoun),
		ingest.WithLogger(logger),
	)
	cleaner := ingest.NewCleaner(store, ingest.WithCleanerLogger(logger))

	var serverIngestor server.Ingestor = ingestor
	if inst != nil {
		serverIngestor = observer.WrapIngestor(ingestor, inst)
	}

	srv := server.New(serverIngestor, cleaner, store, server.Config{
		Addr:        cfg.Server.Addr,
		DataDir:     cfg.Server.DataDir,
		Concurrency: cfg.Server.Concurrency,
	}, logger)

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	if err := srv.Start(); err != nil {
		logger.Info("server stopped", slog.String("reason", err.Error()))
	}
}
