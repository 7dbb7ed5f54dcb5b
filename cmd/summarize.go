package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voxnote/voxnote/internal/transcript"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <type> <id>",
	Short: "Generate and index a summary for a source",
	Long:  `Generates a subtopic-structured markdown summary of an indexed source with the configured LLM and stores it in the index.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, err := transcript.ParseSourceType(args[0])
		if err != nil {
			return err
		}
		sourceID := args[1]

		a, err := openApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := context.Background()
		src, err := a.store.GetSource(ctx, sourceID, typ)
		if err != nil {
			return err
		}
		if src == nil {
			return fmt.Errorf("source %s (%s) not found, index it first", sourceID, typ)
		}
		segments, err := a.store.Segments(ctx, sourceID, typ)
		if err != nil {
			return err
		}

		summary, err := a.summ.Summarize(ctx, *src, segments)
		if err != nil {
			return fmt.Errorf("summarizing: %w", err)
		}
		res, err := a.manager.StoreSummary(ctx, sourceID, typ, summary)
		if err != nil {
			return fmt.Errorf("storing summary: %w", err)
		}

		fmt.Println(summary)
		fmt.Printf("\nStored %d summary document(s) for %s\n", res.Stored, src.DisplayName())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
}
