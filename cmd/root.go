package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "voxnote",
	Short: "Speaker-attributed transcript search and question answering",
	Long: `Voxnote indexes speaker-attributed transcripts of YouTube videos and
audio recordings into a semantic vector index, generates subtopic
summaries, and answers questions over the indexed content. It exposes
the index over a REST API and via MCP for AI agents.`,
}

func Execute() error {
	// API keys are commonly kept in a local .env file.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".voxnote.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
