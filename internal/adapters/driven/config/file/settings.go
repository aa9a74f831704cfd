package file

import (
	"os"

	"github.com/lectern-labs/lectern/internal/core/domain"
	"github.com/lectern-labs/lectern/internal/core/ports/driven"
)

// LoadSettings assembles application settings from the config store
// with environment variables taking precedence. Credentials are
// expected in the environment; the config file carries tuning values
// and model choices.
func LoadSettings(store driven.ConfigStore) domain.AppSettings {
	settings := domain.DefaultAppSettings()

	if v := store.GetInt("chunking.chunk_size"); v > 0 {
		settings.Chunking.ChunkSize = v
	}
	if v := store.GetInt("chunking.overlap"); v > 0 {
		settings.Chunking.Overlap = v
	}
	if v := store.GetInt("chunking.max_results"); v > 0 {
		settings.Chunking.MaxResults = v
	}
	if v := store.GetInt("chunking.max_history"); v > 0 {
		settings.Chunking.MaxHistory = v
	}

	settings.Embedding = domain.EmbeddingSettings{
		Provider: domain.AIProvider(store.GetString("embedding.provider")),
		Model:    store.GetString("embedding.model"),
		BaseURL:  store.GetString("embedding.base_url"),
		APIKey:   store.GetString("embedding.api_key"),
	}

	settings.OpenAI = domain.BackendSettings{
		Model:   store.GetString("openai.model"),
		BaseURL: store.GetString("openai.base_url"),
		APIKey:  store.GetString("openai.api_key"),
	}
	settings.Anthropic = domain.BackendSettings{
		Model:   store.GetString("anthropic.model"),
		BaseURL: store.GetString("anthropic.base_url"),
		APIKey:  store.GetString("anthropic.api_key"),
	}
	settings.Ollama = domain.BackendSettings{
		Model:   store.GetString("ollama.model"),
		BaseURL: store.GetString("ollama.base_url"),
	}

	applyEnv(&settings)
	applyDefaults(&settings)

	return settings
}

// applyEnv overlays environment variables onto the settings.
func applyEnv(settings *domain.AppSettings) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		settings.OpenAI.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		settings.Anthropic.APIKey = v
	}
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		settings.Ollama.BaseURL = v
	}
	if v := os.Getenv("LECTERN_EMBEDDING_PROVIDER"); v != "" {
		settings.Embedding.Provider = domain.AIProvider(v)
	}
	if v := os.Getenv("LECTERN_EMBEDDING_MODEL"); v != "" {
		settings.Embedding.Model = v
	}
}

// applyDefaults fills derived gaps after file and environment merging:
// backend models, the embedding provider implied by configured
// credentials, and the embedding API key shared with the OpenAI
// backend.
func applyDefaults(settings *domain.AppSettings) {
	models := domain.DefaultBackendModels()
	if settings.OpenAI.Model == "" {
		settings.OpenAI.Model = models[domain.AIProviderOpenAI]
	}
	if settings.Anthropic.Model == "" {
		settings.Anthropic.Model = models[domain.AIProviderAnthropic]
	}
	if settings.Ollama.Model == "" {
		settings.Ollama.Model = models[domain.AIProviderOllama]
	}

	if settings.Embedding.Provider == "" {
		switch {
		case settings.OpenAI.APIKey != "":
			settings.Embedding.Provider = domain.AIProviderOpenAI
		case settings.Ollama.BaseURL != "":
			settings.Embedding.Provider = domain.AIProviderOllama
		}
	}
	if settings.Embedding.Model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}
	if settings.Embedding.Provider == domain.AIProviderOpenAI && settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = settings.OpenAI.APIKey
	}
	if settings.Embedding.Provider == domain.AIProviderOllama && settings.Embedding.BaseURL == "" {
		settings.Embedding.BaseURL = settings.Ollama.BaseURL
	}
}
