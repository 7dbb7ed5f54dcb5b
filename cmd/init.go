package cmd

import (
	"github.com/spf13/cobra"

	"github.com/voxnote/voxnote/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize voxnote configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure voxnote and generates a .voxnote.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
