package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/voxnote/voxnote/internal/progress"
	"github.com/voxnote/voxnote/internal/transcript"
)

var (
	indexSourceType string
	indexSourceID   string
)

// transcriptFile is the on-disk transcript format: source metadata plus
// its segments.
type transcriptFile struct {
	transcript.Source
	Segments []transcript.Segment `json:"segments"`
}

var indexCmd = &cobra.Command{
	Use:   "index <transcript.json>...",
	Short: "Index transcript files into the vector index",
	Long: `Reads one or more transcript JSON files (source metadata plus
speaker-attributed segments) and indexes them. Re-indexing a source replaces
its previous documents.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := context.Background()
		reporter := progress.NewReporter()
		reporter.Start(len(args))

		totalStored, totalSkipped := 0, 0
		for i, path := range args {
			tf, err := readTranscriptFile(path)
			if err != nil {
				reporter.Finish()
				return err
			}
			if len(args) == 1 {
				if indexSourceID != "" {
					tf.ID = indexSourceID
				}
				if indexSourceType != "" {
					typ, err := transcript.ParseSourceType(indexSourceType)
					if err != nil {
						reporter.Finish()
						return err
					}
					tf.Type = typ
				}
			}

			res, err := a.manager.StoreChunks(ctx, tf.Source, tf.Segments)
			if err != nil {
				reporter.Finish()
				return fmt.Errorf("indexing %s: %w", path, err)
			}
			totalStored += res.Stored
			totalSkipped += res.Skipped
			reporter.Update(i+1, fmt.Sprintf("%s (%d segments)", tf.DisplayName(), res.Stored))
		}
		reporter.Finish()

		fmt.Printf("Indexed %d source(s): %d chunks stored", len(args), totalStored)
		if totalSkipped > 0 {
			fmt.Printf(", %d empty segments skipped", totalSkipped)
		}
		fmt.Println()
		return nil
	},
}

func readTranscriptFile(path string) (*transcriptFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var tf transcriptFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if tf.ID == "" && indexSourceID == "" {
		return nil, fmt.Errorf("%s: source_id is required", path)
	}
	if _, err := transcript.ParseSourceType(string(tf.Type)); err != nil && indexSourceType == "" {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &tf, nil
}

func init() {
	indexCmd.Flags().StringVar(&indexSourceType, "type", "", "override the source type (youtube or audio, single file only)")
	indexCmd.Flags().StringVar(&indexSourceID, "id", "", "override the source id (single file only)")
	rootCmd.AddCommand(indexCmd)
}
