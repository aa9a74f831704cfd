package domain

import "fmt"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or chat.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// BackendSettings holds model backend configuration for one provider.
type BackendSettings struct {
	// Model is the model name to request.
	Model string

	// BaseURL is the API endpoint (for Ollama, or API-compatible hosts).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// ChunkingSettings holds document processing configuration.
type ChunkingSettings struct {
	// ChunkSize is the character budget per chunk.
	ChunkSize int

	// Overlap is the number of trailing characters repeated at the
	// start of the next chunk.
	Overlap int

	// MaxResults is the maximum number of search results per query.
	MaxResults int

	// MaxHistory is the number of conversation exchanges remembered
	// per session (one exchange = one user turn + one assistant turn).
	MaxHistory int
}

// Validate rejects parameter combinations that cannot produce a finite
// chunk sequence. Called at construction time, before any ingest.
func (c ChunkingSettings) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidChunking, c.ChunkSize)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("%w: overlap must not be negative, got %d", ErrInvalidChunking, c.Overlap)
	}
	if c.Overlap >= c.ChunkSize {
		return fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", ErrInvalidChunking, c.Overlap, c.ChunkSize)
	}
	return nil
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Chunking holds document processing settings.
	Chunking ChunkingSettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// OpenAI, Anthropic and Ollama hold per-provider backend settings.
	// The active backend is chosen once at startup by priority:
	// OpenAI, then Anthropic, then Ollama. First configured wins.
	OpenAI    BackendSettings
	Anthropic BackendSettings
	Ollama    BackendSettings
}

// BackendPriority is the static provider order evaluated once per
// process lifetime when selecting the active model backend.
func BackendPriority() []AIProvider {
	return []AIProvider{AIProviderOpenAI, AIProviderAnthropic, AIProviderOllama}
}

// ConfiguredBackends returns the providers with usable credentials, in
// priority order.
func (s AppSettings) ConfiguredBackends() []AIProvider {
	var out []AIProvider
	if s.OpenAI.APIKey != "" {
		out = append(out, AIProviderOpenAI)
	}
	if s.Anthropic.APIKey != "" {
		out = append(out, AIProviderAnthropic)
	}
	if s.Ollama.BaseURL != "" {
		out = append(out, AIProviderOllama)
	}
	return out
}

// Validate checks that the settings can support query processing.
// Failures here are configuration errors and are surfaced at startup,
// never mid-query.
func (s AppSettings) Validate() error {
	if err := s.Chunking.Validate(); err != nil {
		return err
	}
	if len(s.ConfiguredBackends()) == 0 {
		return fmt.Errorf("%w: set OPENAI_API_KEY, ANTHROPIC_API_KEY or an Ollama base URL", ErrNoBackendConfigured)
	}
	return nil
}

// DefaultAppSettings returns settings with sensible defaults.
// Provider credentials are left unconfigured; they come from the
// config file or environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Chunking: ChunkingSettings{
			ChunkSize:  800,
			Overlap:    100,
			MaxResults: 5,
			MaxHistory: 2,
		},
		Embedding: EmbeddingSettings{},
	}
}

// DefaultBackendModels returns the default model for each provider.
func DefaultBackendModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
