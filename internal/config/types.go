package config

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderGoogle ProviderType = "google"
	ProviderOllama ProviderType = "ollama"
)

// Config is the top-level voxnote configuration, corresponding to .voxnote.yml.
type Config struct {
	// Provider and Model select the chat model used for answer generation
	// and transcript summarization.
	Provider ProviderType `yaml:"provider" koanf:"provider"`
	Model    string       `yaml:"model" koanf:"model"`

	// EmbeddingProvider and EmbeddingModel select the text-embedding model.
	EmbeddingProvider   ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel      string       `yaml:"embedding_model" koanf:"embedding_model"`
	EmbeddingDimensions int          `yaml:"embedding_dimensions" koanf:"embedding_dimensions"` // required for ollama models

	// DataDir holds the SQLite database and the persisted vector index.
	DataDir string `yaml:"data_dir" koanf:"data_dir"`

	// HTTP server settings.
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`

	// SummaryChunkChars caps the size of one indexed summary subtopic
	// chunk; oversized sections are re-split at sentence boundaries.
	SummaryChunkChars int `yaml:"summary_chunk_chars" koanf:"summary_chunk_chars"`

	// Default result counts for the two retrieval stages.
	TranscriptResults int `yaml:"transcript_results" koanf:"transcript_results"`
	SummaryResults    int `yaml:"summary_results" koanf:"summary_results"`

	// RequestsPerMinute rate-limits chat completion calls. 0 disables.
	RequestsPerMinute int `yaml:"requests_per_minute" koanf:"requests_per_minute"`
}
