package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/channel-manager/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize chanman configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the Slack bot and generates a .chanman.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
