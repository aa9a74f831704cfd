package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectern-labs/lectern/internal/core/domain"
)

func newTestStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestConfigStoreSetAndGet(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("openai.model", "gpt-4o"))
	require.NoError(t, store.Set("chunking.chunk_size", 400))

	assert.Equal(t, "gpt-4o", store.GetString("openai.model"))
	assert.Equal(t, 400, store.GetInt("chunking.chunk_size"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, "", store.GetString("missing"))
	assert.Equal(t, 0, store.GetInt("missing"))
}

func TestConfigStorePersistsAcrossLoads(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("ollama.base_url", "http://localhost:11434"))

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434", reloaded.GetString("ollama.base_url"))
}

func TestConfigStoreFlattensNestedTables(t *testing.T) {
	dir := t.TempDir()
	content := "[chunking]\nchunk_size = 600\noverlap = 50\n\n[anthropic]\nmodel = \"claude-3-5-sonnet-latest\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, 600, store.GetInt("chunking.chunk_size"))
	assert.Equal(t, 50, store.GetInt("chunking.overlap"))
	assert.Equal(t, "claude-3-5-sonnet-latest", store.GetString("anthropic.model"))
}

func TestConfigStorePath(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
}

func TestLoadSettingsDefaults(t *testing.T) {
	store := newTestStore(t)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OLLAMA_BASE_URL", "")
	t.Setenv("LECTERN_EMBEDDING_PROVIDER", "")
	t.Setenv("LECTERN_EMBEDDING_MODEL", "")

	settings := LoadSettings(store)

	assert.Equal(t, 800, settings.Chunking.ChunkSize)
	assert.Equal(t, 100, settings.Chunking.Overlap)
	assert.Equal(t, 5, settings.Chunking.MaxResults)
	assert.Equal(t, 2, settings.Chunking.MaxHistory)
	assert.Equal(t, "gpt-4o", settings.OpenAI.Model)
	assert.Empty(t, settings.ConfiguredBackends())
}

func TestLoadSettingsEnvOverridesFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("openai.api_key", "file-key"))
	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OLLAMA_BASE_URL", "")
	t.Setenv("LECTERN_EMBEDDING_PROVIDER", "")
	t.Setenv("LECTERN_EMBEDDING_MODEL", "")

	settings := LoadSettings(store)

	assert.Equal(t, "env-key", settings.OpenAI.APIKey)
	assert.Equal(t, []domain.AIProvider{domain.AIProviderOpenAI}, settings.ConfiguredBackends())

	// The embedding provider is implied by the configured credentials
	// and shares the API key.
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", settings.Embedding.Model)
	assert.Equal(t, "env-key", settings.Embedding.APIKey)
}

func TestLoadSettingsOllamaFallbackEmbedding(t *testing.T) {
	store := newTestStore(t)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OLLAMA_BASE_URL", "http://localhost:11434")
	t.Setenv("LECTERN_EMBEDDING_PROVIDER", "")
	t.Setenv("LECTERN_EMBEDDING_MODEL", "")

	settings := LoadSettings(store)

	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
	assert.Equal(t, "http://localhost:11434", settings.Embedding.BaseURL)
}
