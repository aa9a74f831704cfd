// Package ai provides factory functions for creating AI service
// adapters and resolving the active model backend.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/lectern-labs/lectern/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/lectern-labs/lectern/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/lectern-labs/lectern/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/lectern-labs/lectern/internal/adapters/driven/llm/ollama"
	openaillm "github.com/lectern-labs/lectern/internal/adapters/driven/llm/openai"
	"github.com/lectern-labs/lectern/internal/core/domain"
	"github.com/lectern-labs/lectern/internal/core/ports/driven"
	"github.com/lectern-labs/lectern/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// ResolveBackend selects the active model backend from the configured
// providers. The priority order is static (OpenAI, Anthropic, Ollama)
// and the choice is made once per process lifetime: the first
// configured provider wins even if a later one would also work.
func ResolveBackend(settings domain.AppSettings) (driven.ModelBackend, error) {
	configured := settings.ConfiguredBackends()
	if len(configured) == 0 {
		return nil, domain.ErrNoBackendConfigured
	}

	for _, provider := range domain.BackendPriority() {
		if !containsProvider(configured, provider) {
			continue
		}
		backend, err := createBackend(provider, settings)
		if err != nil {
			return nil, err
		}
		logger.Info("Model backend: %s (%s)", provider, backend.ModelName())
		return backend, nil
	}

	return nil, domain.ErrNoBackendConfigured
}

// ValidateBackend pings a backend with a bounded timeout, closing it
// on failure.
func ValidateBackend(backend driven.ModelBackend) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := backend.Ping(ctx); err != nil {
		backend.Close()
		return fmt.Errorf("%s backend unreachable: %w", backend.Provider(), err)
	}
	return nil
}

// createBackend builds the adapter for one provider.
func createBackend(provider domain.AIProvider, settings domain.AppSettings) (driven.ModelBackend, error) {
	switch provider {
	case domain.AIProviderOpenAI:
		return openaillm.New(openaillm.Config{
			APIKey:  settings.OpenAI.APIKey,
			BaseURL: settings.OpenAI.BaseURL,
			Model:   settings.OpenAI.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.New(anthropicllm.Config{
			APIKey:  settings.Anthropic.APIKey,
			BaseURL: settings.Anthropic.BaseURL,
			Model:   settings.Anthropic.Model,
		})

	case domain.AIProviderOllama:
		return ollamallm.New(ollamallm.Config{
			BaseURL: settings.Ollama.BaseURL,
			Model:   settings.Ollama.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported backend provider: %s", provider)
	}
}

// CreateEmbeddingService creates the appropriate embedding service
// based on settings. Returns nil if no provider is configured.
func CreateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	case domain.AIProviderAnthropic:
		// Anthropic does not support embeddings.
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateAndValidateEmbeddingService creates an embedding service and
// validates connectivity before any ingest is attempted.
func CreateAndValidateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	dimensions := domain.EmbeddingDimensions()[settings.Model]

	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// containsProvider reports whether the provider list includes p.
func containsProvider(providers []domain.AIProvider, p domain.AIProvider) bool {
	for _, candidate := range providers {
		if candidate == p {
			return true
		}
	}
	return false
}
