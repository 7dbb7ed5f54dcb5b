package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voxnote/voxnote/internal/retrieval"
	"github.com/voxnote/voxnote/internal/transcript"
	"github.com/voxnote/voxnote/internal/vectorindex"
)

var (
	askType      string
	askSource    string
	askLimit     int
	askSummaries int
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about the indexed transcripts",
	Long:  `Retrieves summary and transcript evidence for the question and answers it with the configured LLM.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := args[0]

		a, err := openApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		opts := retrieval.AskOptions{ChunkLimit: askLimit, SourceID: askSource}
		if askSummaries >= 0 {
			opts.SummaryLimit = &askSummaries
		}
		if askType != "" {
			typ, err := transcript.ParseSourceType(askType)
			if err != nil {
				return err
			}
			opts.SourceType = typ
		}

		answer, err := a.engine.Ask(context.Background(), question, opts)
		if err != nil {
			return err
		}

		fmt.Println(answer.Answer)
		if verbose && len(answer.Chunks) > 0 {
			fmt.Println("\nEvidence:")
			for _, r := range answer.Chunks {
				if md, ok := r.Document.Metadata.(vectorindex.ChunkMetadata); ok {
					fmt.Printf("- %s (%s) %s at %.1fs: %s\n", md.SourceID, md.SourceType, md.Speaker, md.StartTime, r.Document.Text)
				}
			}
		}
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askType, "type", "", "restrict retrieval to one source type (youtube or audio)")
	askCmd.Flags().StringVar(&askSource, "source", "", "restrict retrieval to one source id")
	askCmd.Flags().IntVarP(&askLimit, "limit", "n", 0, "transcript excerpts to retrieve (default from config)")
	askCmd.Flags().IntVar(&askSummaries, "summaries", -1, "summaries to retrieve (0 skips summary retrieval, default from config)")
	rootCmd.AddCommand(askCmd)
}
