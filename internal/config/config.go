package config

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Ollama   OllamaConfig   `toml:"ollama"`
	Database DatabaseConfig `toml:"database"`
	Chunking ChunkingConfig `toml:"chunking"`
	Author   AuthorConfig   `toml:"author"`
	Observer ObserverConfig `toml:"observer"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
	// DataDir is the root of the knowledge base; request file paths are
	// resolved against it.
	DataDir string `toml:"data_dir"`
	// Concurrency bounds how many files are ingested in parallel.
	Concurrency int `toml:"concurrency"`
}

type OllamaConfig struct {
	URL        string `toml:"url"`
	Model      string `toml:"model"`
	EmbedModel string `toml:"embed_model"`
}

type DatabaseConfig struct {
	// Path is the SQLite file used when no DSN is configured.
	Path string `toml:"path"`
	// DSN selects PostgreSQL when non-empty.
	DSN string `toml:"dsn"`
	// EmbeddingDimension types the pgvector column when > 0.
	EmbeddingDimension int `toml:"embedding_dimension"`
}

type ChunkingConfig struct {
	ChunkSize    int `toml:"chunk_size"`
	ChunkOverlap int `toml:"chunk_overlap"`
	BatchSize    int `toml:"batch_size"`
}

type AuthorConfig struct {
	// Name is matched against path segments to detect the author's own
	// files.
	Name     string `toml:"name"`
	FullName string `toml:"full_name"`
	// Pronoun is the objective form ("him", "her", "them").
	Pronoun string `toml:"pronoun"`
}

type ObserverConfig struct {
	Enabled  bool   `toml:"enabled"`
	Endpoint string `toml:"endpoint"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Server:   ServerConfig{Addr: ":8000", DataDir: "/data", Concurrency: 4},
		Ollama:   OllamaConfig{URL: "http://localhost:11434", Model: "llama3.2", EmbedModel: "nomic-embed-text"},
		Database: DatabaseConfig{Path: "darkvec.db"},
		Chunking: ChunkingConfig{ChunkSize: 1000, ChunkOverlap: 100, BatchSize: 16},
		Author:   AuthorConfig{Pronoun: "them"},
	}
}

// Load reads config: defaults -> TOML file -> env vars (env wins).
func Load(path string) Config {
	cfg := Default()

	if path == "" {
		path = "darkvec.toml"
	}

	if data, err := os.ReadFile(path); err == nil {
		_ = toml.Unmarshal(data, &cfg)
	}

	// Env overrides
	if v := os.Getenv("DARKVEC_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DARKVEC_DATA_DIR"); v != "" {
		cfg.Server.DataDir = v
	}
	if v := os.Getenv("DARKVEC_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Server.Concurrency = n
		}
	}
	if v := os.Getenv("OLLAMA_URL"); v != "" {
		cfg.Ollama.URL = v
	}
	if v := os.Getenv("DEFAULT_MODEL"); v != "" {
		cfg.Ollama.Model = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.Ollama.EmbedModel = v
	}
	if v := os.Getenv("DARKVEC_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("DARKVEC_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("AUTHOR_NAME"); v != "" {
		cfg.Author.Name = v
	}
	if v := os.Getenv("AUTHOR_FULL_NAME"); v != "" {
		cfg.Author.FullName = v
	}
	if v := os.Getenv("AUTHOR_PRONOUN_TWO"); v != "" {
		cfg.Author.Pronoun = v
	}
	if v := os.Getenv("DARKVEC_OBSERVER_ENABLED"); v != "" {
		cfg.Observer.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("DARKVEC_OBSERVER_ENDPOINT"); v != "" {
		cfg.Observer.Endpoint = v
	}

	return cfg
}
