package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lethalbit/bookwurm/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize bookwurm configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the Meilisearch connection and the directories to index, and writes the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.EnsureDirs(); err != nil {
			return err
		}
		// Existing settings become the wizard's defaults.
		base, err := config.Load(cfgFile)
		if err != nil {
			logger.Warn("ignoring unreadable config", "path", cfgFile, "error", err)
			base = config.DefaultConfig()
		}
		_, err = config.RunWizard(base, cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
