package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. The caller is responsible for saving it.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to voxnote! Let's configure your instance.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Chat provider (answers and summaries).
	providerPrompt := promptui.Select{
		Label: "Select LLM provider for answers and summaries",
		Items: []string{"openai", "google", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)
	cfg.Model, _ = DefaultModelsFor(cfg.Provider)

	// 2. Embedding provider follows the chat provider.
	cfg.EmbeddingProvider = embeddingProviderFor(cfg.Provider)
	_, cfg.EmbeddingModel = DefaultModelsFor(cfg.EmbeddingProvider)

	if cfg.EmbeddingProvider == ProviderOllama {
		dimsPrompt := promptui.Prompt{
			Label:   "Embedding dimensions for the ollama model",
			Default: "768",
		}
		dimsStr, err := dimsPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("embedding dimensions: %w", err)
		}
		dims, err := strconv.Atoi(dimsStr)
		if err != nil || dims <= 0 {
			return nil, fmt.Errorf("invalid embedding dimensions %q", dimsStr)
		}
		cfg.EmbeddingDimensions = dims
	}

	// 3. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory (SQLite database and vector index)",
		Default: cfg.DataDir,
	}
	cfg.DataDir, err = dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	// 4. HTTP port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(cfg.Port),
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Port, err = strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port %q", portStr)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	keyVar := APIKeyEnvVar(cfg.Provider)
	if keyVar != "" {
		fmt.Printf("\nRemember to set %s before running voxnote.\n", keyVar)
	}

	return cfg, nil
}
