// Package cli provides the command-line interface for Lectern.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lectern-labs/lectern/internal/adapters/driven/ai"
	configfile "github.com/lectern-labs/lectern/internal/adapters/driven/config/file"
	storagemem "github.com/lectern-labs/lectern/internal/adapters/driven/storage/memory"
	"github.com/lectern-labs/lectern/internal/adapters/driven/storage/sqlite"
	vectormem "github.com/lectern-labs/lectern/internal/adapters/driven/vectorindex/memory"
	"github.com/lectern-labs/lectern/internal/core/domain"
	"github.com/lectern-labs/lectern/internal/core/ports/driven"
	"github.com/lectern-labs/lectern/internal/core/ports/driving"
	"github.com/lectern-labs/lectern/internal/core/services"
	"github.com/lectern-labs/lectern/internal/logger"
	"github.com/lectern-labs/lectern/internal/normalisers/coursedoc"
	"github.com/lectern-labs/lectern/internal/postprocessors/chunker"
)

// version is the Lectern version string.
const version = "0.1.0"

var verboseFlag bool

// Services injected into commands. Wired lazily by ensureRetrieval and
// ensureChat; tests set them directly.
var (
	appSettings      domain.AppSettings
	retrievalIndex   *services.RetrievalIndex
	retrievalService driving.RetrievalService
	ingestPipeline   *services.IngestService
	ingestService    driving.IngestService
	chatService      driving.ChatService
)

var rootCmd = &cobra.Command{
	Use:   "lectern",
	Short: "Course materials assistant",
	Long: `Lectern indexes course documents and answers questions about them.

Documents are chunked, embedded and stored locally. Queries go through
a model backend (OpenAI, Anthropic or Ollama) that can search the index
mid-conversation before answering.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ensureRetrieval wires the retrieval pipeline: config, embedding
// service, catalogue store and vector index. Safe to call more than
// once; a no-op when the services are already set.
func ensureRetrieval(ctx context.Context) error {
	if retrievalService != nil {
		return nil
	}

	store, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	appSettings = configfile.LoadSettings(store)

	if err := appSettings.Chunking.Validate(); err != nil {
		return err
	}

	embedder, err := embeddingForSettings(appSettings.Embedding)
	if err != nil {
		return err
	}

	catalog, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("opening catalogue: %w", err)
	}

	index := vectormem.New(embedder.Dimensions())
	retrievalIndex = services.NewRetrievalIndex(embedder, index, catalog, appSettings.Chunking.MaxResults)

	if _, err := retrievalIndex.Load(ctx); err != nil {
		return fmt.Errorf("loading index: %w", err)
	}
	retrievalService = retrievalIndex

	proc, err := chunker.New(appSettings.Chunking.ChunkSize, appSettings.Chunking.Overlap)
	if err != nil {
		return err
	}
	ingestPipeline = services.NewIngestService(coursedoc.New(), proc, retrievalIndex)
	ingestService = ingestPipeline

	return nil
}

// embeddingForSettings resolves the embedding service for the wiring.
// The factory returns a nil service when no embedding provider is
// configured; that is a configuration error here, because every command
// that reaches this point needs the retrieval index. An Anthropic key
// alone is not enough: Anthropic serves the model backend but cannot
// serve embeddings.
func embeddingForSettings(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	embedder, err := ai.CreateAndValidateEmbeddingService(settings)
	if err != nil {
		return nil, err
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: configure an OpenAI key or an Ollama base URL for embeddings", domain.ErrEmbeddingUnavailable)
	}
	return embedder, nil
}

// ensureChat wires the chat loop on top of the retrieval pipeline: the
// model backend, the tool registry and the session store.
func ensureChat(ctx context.Context) error {
	if chatService != nil {
		return nil
	}

	if err := ensureRetrieval(ctx); err != nil {
		return err
	}

	backend, err := ai.ResolveBackend(appSettings)
	if err != nil {
		return err
	}
	if err := ai.ValidateBackend(backend); err != nil {
		return err
	}
	logger.Info("Backend: %s (%s)", backend.Provider(), backend.ModelName())

	registry := services.NewToolRegistry()
	registry.Register(services.NewSearchTool(retrievalService, appSettings.Chunking.MaxResults))

	sessions := storagemem.NewSessionStore(appSettings.Chunking.MaxHistory)
	chatService = services.NewChatService(backend, registry, sessions)

	return nil
}
