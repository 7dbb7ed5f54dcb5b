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
	searchLimit     int
	searchType      string
	searchSource    string
	searchSummaries bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search indexed transcripts",
	Long:  `Runs a semantic search over the indexed transcript chunks, or over the summary documents with --summaries.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := args[0]

		a, err := openApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := context.Background()
		var results []vectorindex.SearchResult
		if searchSummaries {
			results, err = a.engine.SearchSummaries(ctx, query, searchLimit)
		} else {
			opts := retrieval.SearchOptions{Limit: searchLimit, SourceID: searchSource}
			if searchType != "" {
				typ, perr := transcript.ParseSourceType(searchType)
				if perr != nil {
					return perr
				}
				opts.SourceType = typ
			}
			results, err = a.engine.SearchChunks(ctx, query, opts)
		}
		if err != nil {
			return err
		}

		if len(results) == 0 {
			fmt.Println("No results. Run `voxnote index` to index transcripts first.")
			return nil
		}
		for i, r := range results {
			fmt.Printf("%d. (distance %.4f)\n", i+1, r.Distance)
			switch md := r.Document.Metadata.(type) {
			case vectorindex.ChunkMetadata:
				fmt.Printf("   %s (%s) - %s at %.1fs\n", md.SourceID, md.SourceType, md.Speaker, md.StartTime)
			case vectorindex.SummaryMetadata:
				fmt.Printf("   %s (%s) - summary: %s\n", md.SourceID, md.SourceType, md.Subtopic)
			}
			fmt.Printf("   %s\n\n", r.Document.Text)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum results (defaults to config)")
	searchCmd.Flags().StringVar(&searchType, "type", "", "restrict to one source type (youtube or audio)")
	searchCmd.Flags().StringVar(&searchSource, "source", "", "restrict to one source id")
	searchCmd.Flags().BoolVar(&searchSummaries, "summaries", false, "search summary documents instead of transcript chunks")
	rootCmd.AddCommand(searchCmd)
}
