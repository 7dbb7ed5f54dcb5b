package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/voxnote/voxnote/internal/config"
	"github.com/voxnote/voxnote/internal/embeddings"
	"github.com/voxnote/voxnote/internal/indexer"
	"github.com/voxnote/voxnote/internal/llm"
	"github.com/voxnote/voxnote/internal/retrieval"
	"github.com/voxnote/voxnote/internal/store"
	"github.com/voxnote/voxnote/internal/summarizer"
	"github.com/voxnote/voxnote/internal/vectorindex"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `voxnote init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}

	switch provider {
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(cfg.EmbeddingModel, cfg.EmbeddingDimensions, ""), nil
	default:
		// OpenAI embeddings also back the google chat provider.
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for %s embeddings", provider)
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(cfg.EmbeddingModel)), nil
	}
}

// createProviderFromConfig creates the chat LLM provider, rate-limited when
// configured.
func createProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	provider, err := llm.NewProvider(string(cfg.Provider), cfg.Model)
	if err != nil {
		return nil, err
	}
	if cfg.RequestsPerMinute > 0 {
		provider = llm.NewRateLimitedProvider(provider, cfg.RequestsPerMinute)
	}
	return provider, nil
}

// app bundles the wired components the commands work with.
type app struct {
	cfg     *config.Config
	store   *store.Store
	index   *vectorindex.Index
	manager *indexer.Manager
	engine  *retrieval.Engine
	summ    *summarizer.Summarizer
}

// openApp wires the store, index and engines from config. withLLM controls
// whether a chat provider is required; pure index operations skip it.
func openApp(withLLM bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	st, err := store.Open(filepath.Join(cfg.DataDir, "voxnote.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	idx, err := vectorindex.Open(cfg.DataDir, embedder)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("opening vector index: %w", err)
	}

	a := &app{
		cfg:     cfg,
		store:   st,
		index:   idx,
		manager: indexer.New(st, idx, embedder, cfg.SummaryChunkChars),
	}
	var provider llm.Provider
	if withLLM {
		provider, err = createProviderFromConfig(cfg)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("creating LLM provider: %w", err)
		}
		a.summ = summarizer.New(provider, cfg.Model)
	}
	// Search works without a chat provider; Ask needs withLLM.
	a.engine = retrieval.New(idx, provider, cfg.Model, cfg.TranscriptResults, cfg.SummaryResults)
	return a, nil
}

func (a *app) Close() {
	a.store.Close()
}
