package config

// defaultModels maps each provider to its default chat and embedding models.
var defaultModels = map[ProviderType]struct {
	Model          string
	EmbeddingModel string
}{
	ProviderOpenAI: {Model: "gpt-4o", EmbeddingModel: "text-embedding-3-small"},
	ProviderGoogle: {Model: "gemini-2.5-pro", EmbeddingModel: "text-embedding-3-small"},
	ProviderOllama: {Model: "llama3", EmbeddingModel: "nomic-embed-text"},
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderOpenAI,
		Model:             "gpt-4o",
		EmbeddingProvider: ProviderOpenAI,
		EmbeddingModel:    "text-embedding-3-small",
		DataDir:           "data",
		Port:              8080,
		SummaryChunkChars: 2000,
		TranscriptResults: 5,
		SummaryResults:    3,
		RequestsPerMinute: 0,
	}
}

// DefaultModelsFor returns the default chat and embedding models for the
// given provider, falling back to the OpenAI pair.
func DefaultModelsFor(provider ProviderType) (model, embeddingModel string) {
	if m, ok := defaultModels[provider]; ok {
		return m.Model, m.EmbeddingModel
	}
	m := defaultModels[ProviderOpenAI]
	return m.Model, m.EmbeddingModel
}

// embeddingProviderFor picks the embedding provider that pairs with a chat
// provider. Google has no first-party embedding endpoint wired here, so it
// shares the OpenAI embedding models.
func embeddingProviderFor(provider ProviderType) ProviderType {
	if provider == ProviderOllama {
		return ProviderOllama
	}
	return ProviderOpenAI
}
