package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ferndale-labs/marque/internal/adapters/driven/embedding/ollama"
	"github.com/ferndale-labs/marque/internal/adapters/driven/embedding/openai"
	"github.com/ferndale-labs/marque/internal/adapters/driven/storage/memory"
	"github.com/ferndale-labs/marque/internal/adapters/driven/storage/sqlite"
	"github.com/ferndale-labs/marque/internal/adapters/driving/httpapi"
	"github.com/ferndale-labs/marque/internal/chunker"
	"github.com/ferndale-labs/marque/internal/config"
	"github.com/ferndale-labs/marque/internal/core/ports/driven"
	"github.com/ferndale-labs/marque/internal/core/services"
	"github.com/ferndale-labs/marque/internal/logger"
)

var flagListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the marque server",
	Long: `Starts the HTTP server that receives captured pages from the browser
agent and answers search queries.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagListen, "listen", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

// store bundles the two ports every storage backend implements.
type store interface {
	driven.RecordStore
	driven.VectorIndex
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagListen != "" {
		cfg.Listen = flagListen
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	chunks, err := chunker.New(
		chunker.WithWindowSize(cfg.Chunking.WindowSize),
		chunker.WithOverlapFraction(cfg.Chunking.OverlapFraction),
	)
	if err != nil {
		return err
	}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	defer embedder.Close()

	st, err := buildStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ingestor := services.NewIngestService(st, embedder, chunks)
	searcher := services.NewSearchService(st, st, embedder,
		services.WithMatchLimit(cfg.Search.MatchLimit),
		services.WithResultLimit(cfg.Search.ResultLimit),
	)

	server := httpapi.NewServer(httpapi.Config{Addr: cfg.Listen}, ingestor, searcher, st, embedder)
	if err := server.Start(); err != nil {
		return err
	}

	cmd.Printf("marque listening on http://%s (model %s, %d dims)\n",
		server.Addr(), embedder.ModelName(), embedder.Dimensions())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildEmbedder(cfg *config.Config) (driven.EmbeddingService, error) {
	switch cfg.Embedding.Type {
	case config.EmbedderOpenAI:
		return openai.NewEmbeddingService(openai.Config{
			APIKey:            os.Getenv(cfg.Embedding.APIKeyEnv),
			BaseURL:           cfg.Embedding.BaseURL,
			Model:             cfg.Embedding.Model,
			Dimensions:        cfg.Embedding.Dimensions,
			RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
		})
	default:
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
		}), nil
	}
}

func buildStore(cfg *config.Config) (store, error) {
	switch cfg.Store.Type {
	case config.StoreMemory:
		return memory.NewStore(cfg.Embedding.Dimensions), nil
	default:
		return sqlite.NewStore(cfg.DataDir, cfg.Embedding.Dimensions)
	}
}
