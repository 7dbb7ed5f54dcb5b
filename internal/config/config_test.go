package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("provider: got %q, want openai", cfg.Provider)
	}
	if cfg.Port != 8080 {
		t.Errorf("port: got %d, want 8080", cfg.Port)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voxnote.yml")
	content := "provider: google\nmodel: gemini-2.5-pro\nport: 9090\ndata_dir: /tmp/vox\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != ProviderGoogle {
		t.Errorf("provider: got %q, want google", cfg.Provider)
	}
	if cfg.Port != 9090 {
		t.Errorf("port: got %d, want 9090", cfg.Port)
	}
	// Unset keys keep their defaults.
	if cfg.SummaryChunkChars != 2000 {
		t.Errorf("summary_chunk_chars: got %d, want default 2000", cfg.SummaryChunkChars)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("VOXNOTE_PORT", "7000")
	t.Setenv("VOXNOTE_MODEL", "gpt-4o-mini")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 7000 {
		t.Errorf("port: got %d, want 7000 from env", cfg.Port)
	}
	if cfg.Model != "gpt-4o-mini" {
		t.Errorf("model: got %q, want gpt-4o-mini from env", cfg.Model)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voxnote.yml")

	cfg := DefaultConfig()
	cfg.Provider = ProviderOllama
	cfg.Model = "llama3"
	cfg.EmbeddingProvider = ProviderOllama
	cfg.EmbeddingModel = "nomic-embed-text"
	cfg.EmbeddingDimensions = 768

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Provider != ProviderOllama {
		t.Errorf("provider: got %q, want ollama", loaded.Provider)
	}
	if loaded.EmbeddingDimensions != 768 {
		t.Errorf("embedding_dimensions: got %d, want 768", loaded.EmbeddingDimensions)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty provider", func(c *Config) { c.Provider = "" }},
		{"unknown provider", func(c *Config) { c.Provider = "cohere" }},
		{"empty model", func(c *Config) { c.Model = "" }},
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
		{"bad port", func(c *Config) { c.Port = -1 }},
		{"zero chunk chars", func(c *Config) { c.SummaryChunkChars = 0 }},
		{"ollama without dims", func(c *Config) {
			c.EmbeddingProvider = ProviderOllama
			c.EmbeddingDimensions = 0
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}
