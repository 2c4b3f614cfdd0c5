// Package config loads and validates the marque server configuration
// from a TOML file, applying defaults for anything unset.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/ferndale-labs/marque/internal/chunker"
	"github.com/ferndale-labs/marque/internal/core/domain"
	"github.com/ferndale-labs/marque/internal/core/services"
)

// Store types.
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Embedder types.
const (
	EmbedderOllama = "ollama"
	EmbedderOpenAI = "openai"
)

// Config is the root server configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `toml:"listen"`

	// DataDir is where the SQLite database lives.
	// Empty defaults to ~/.marque/data.
	DataDir string `toml:"data_dir"`

	Store     StoreConfig     `toml:"store"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Chunking  ChunkingConfig  `toml:"chunking"`
	Search    SearchConfig    `toml:"search"`
}

// StoreConfig selects the storage backend.
type StoreConfig struct {
	// Type is "sqlite" (durable, default) or "memory" (ephemeral).
	Type string `toml:"type"`
}

// EmbeddingConfig selects and configures the embedding service.
type EmbeddingConfig struct {
	// Type is "ollama" (default) or "openai".
	Type string `toml:"type"`

	// BaseURL overrides the service endpoint.
	BaseURL string `toml:"base_url"`

	// Model is the embedding model name.
	Model string `toml:"model"`

	// Dimensions is the embedding vector size. Must match the model.
	Dimensions int `toml:"dimensions"`

	// APIKeyEnv names the environment variable holding the API key
	// (openai only, default OPENAI_API_KEY).
	APIKeyEnv string `toml:"api_key_env"`

	// RequestsPerSecond caps outbound embedding calls (openai only,
	// zero = unlimited).
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// ChunkingConfig configures the content windowing.
type ChunkingConfig struct {
	// WindowSize is the chunk window length in bytes.
	WindowSize int `toml:"window_size"`

	// OverlapFraction is the fraction of a window shared with the next,
	// in [0, 1).
	OverlapFraction float64 `toml:"overlap_fraction"`
}

// SearchConfig configures the retrieval engine.
type SearchConfig struct {
	// MatchLimit is how many raw chunk matches to fetch before grouping.
	MatchLimit int `toml:"match_limit"`

	// ResultLimit is the maximum number of records returned per query.
	ResultLimit int `toml:"result_limit"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Listen: "127.0.0.1:1729",
		Store:  StoreConfig{Type: StoreSQLite},
		Embedding: EmbeddingConfig{
			Type:       EmbedderOllama,
			Dimensions: 384,
			APIKeyEnv:  "OPENAI_API_KEY",
		},
		Chunking: ChunkingConfig{
			WindowSize:      chunker.DefaultWindowSize,
			OverlapFraction: chunker.DefaultOverlapFraction,
		},
		Search: SearchConfig{
			MatchLimit:  services.DefaultMatchLimit,
			ResultLimit: services.DefaultResultLimit,
		},
	}
}

// Load reads the config from path. A missing file yields the defaults;
// an unreadable or unparsable file is an error. If path is empty,
// ~/.marque/config.toml is used.
func Load(path string) (*Config, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".marque", "config.toml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults fills zero values left by a partial config file.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Listen == "" {
		cfg.Listen = def.Listen
	}
	if cfg.Store.Type == "" {
		cfg.Store.Type = def.Store.Type
	}
	if cfg.Embedding.Type == "" {
		cfg.Embedding.Type = def.Embedding.Type
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = def.Embedding.Dimensions
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = def.Embedding.APIKeyEnv
	}
	if cfg.Chunking.WindowSize == 0 {
		cfg.Chunking.WindowSize = def.Chunking.WindowSize
	}
	if cfg.Search.MatchLimit == 0 {
		cfg.Search.MatchLimit = def.Search.MatchLimit
	}
	if cfg.Search.ResultLimit == 0 {
		cfg.Search.ResultLimit = def.Search.ResultLimit
	}
}

// Validate rejects configuration the server must not start with.
// Windowing mistakes in particular (overlap fraction outside [0, 1))
// would otherwise only surface as a hung ingestion, so they are fatal
// here.
func (c *Config) Validate() error {
	switch c.Store.Type {
	case StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("%w: unknown store type %q", domain.ErrInvalidConfig, c.Store.Type)
	}

	switch c.Embedding.Type {
	case EmbedderOllama, EmbedderOpenAI:
	default:
		return fmt.Errorf("%w: unknown embedder type %q", domain.ErrInvalidConfig, c.Embedding.Type)
	}

	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("%w: embedding dimensions %d, must be positive", domain.ErrInvalidConfig, c.Embedding.Dimensions)
	}
	if c.Search.MatchLimit <= 0 {
		return fmt.Errorf("%w: match limit %d, must be positive", domain.ErrInvalidConfig, c.Search.MatchLimit)
	}
	if c.Search.ResultLimit <= 0 {
		return fmt.Errorf("%w: result limit %d, must be positive", domain.ErrInvalidConfig, c.Search.ResultLimit)
	}

	// The chunker constructor owns the windowing rules; run it once so
	// invalid values fail at startup rather than at call time.
	if _, err := chunker.New(
		chunker.WithWindowSize(c.Chunking.WindowSize),
		chunker.WithOverlapFraction(c.Chunking.OverlapFraction),
	); err != nil {
		return err
	}

	return nil
}
