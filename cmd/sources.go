package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voxnote/voxnote/internal/transcript"
)

var sourcesType string

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List indexed sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		var typ transcript.SourceType
		if sourcesType != "" {
			typ, err = transcript.ParseSourceType(sourcesType)
			if err != nil {
				return err
			}
		}

		sources, err := a.store.ListSources(context.Background(), typ)
		if err != nil {
			return err
		}
		if len(sources) == 0 {
			fmt.Println("No sources indexed yet. Run `voxnote index` first.")
			return nil
		}
		for _, src := range sources {
			summary := ""
			if src.HasSummary {
				summary = ", summarized"
			}
			fmt.Printf("[%s] %s: %s (%d segments%s)\n", src.Type, src.ID, src.DisplayName(), src.SegmentCount, summary)
		}
		return nil
	},
}

var sourcesDeleteCmd = &cobra.Command{
	Use:   "delete <type> <id>",
	Short: "Delete a source from the store and the index",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, err := transcript.ParseSourceType(args[0])
		if err != nil {
			return err
		}

		a, err := openApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.manager.DeleteSource(context.Background(), args[1], typ)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %s (%s): %d chunks, %d summary documents removed\n",
			args[1], typ, res.ChunksRemoved, res.SummariesRemoved)
		if res.IndexError != nil {
			fmt.Printf("Warning: index cleanup incomplete: %v\n", res.IndexError)
		}
		return nil
	},
}

var sourcesRenameCmd = &cobra.Command{
	Use:   "rename <type> <id> <title>",
	Short: "Change the display title of a source",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, err := transcript.ParseSourceType(args[0])
		if err != nil {
			return err
		}

		a, err := openApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.manager.UpdateTitle(context.Background(), args[1], typ, args[2]); err != nil {
			return err
		}
		fmt.Printf("Renamed %s (%s) to %q\n", args[1], typ, args[2])
		return nil
	},
}

var sourcesSummaryCmd = &cobra.Command{
	Use:   "summary <type> <id>",
	Short: "Print the stored summary of a source",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, err := transcript.ParseSourceType(args[0])
		if err != nil {
			return err
		}

		a, err := openApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		summary, err := a.manager.GetSummary(context.Background(), args[1], typ)
		if err != nil {
			return err
		}
		if summary == "" {
			return fmt.Errorf("no summary for %s (%s), run `voxnote summarize %s %s`", args[1], typ, args[0], args[1])
		}
		fmt.Println(summary)
		return nil
	},
}

var sourcesOpsCmd = &cobra.Command{
	Use:   "ops",
	Short: "Show recent index operations",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.store.RecentIndexOps(context.Background(), 20)
		if err != nil {
			return err
		}
		if len(ops) == 0 {
			fmt.Println("No index operations recorded yet.")
			return nil
		}
		for _, op := range ops {
			line := fmt.Sprintf("%s %-13s %s (%s) %d document(s)",
				op.Timestamp.Format("2006-01-02 15:04:05"), op.Action, op.SourceID, op.SourceType, op.DocumentCount)
			if op.Error != "" {
				line += " ERROR: " + op.Error
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	sourcesCmd.Flags().StringVar(&sourcesType, "type", "", "restrict to one source type (youtube or audio)")
	sourcesCmd.AddCommand(sourcesDeleteCmd)
	sourcesCmd.AddCommand(sourcesRenameCmd)
	sourcesCmd.AddCommand(sourcesSummaryCmd)
	sourcesCmd.AddCommand(sourcesOpsCmd)
	rootCmd.AddCommand(sourcesCmd)
}
