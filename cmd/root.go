package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/channel-manager/internal/config"
)

var (
	cfgFile string
	envFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "chanman",
	Short: "Slack bot for listing, joining and archiving private channels",
	Long: `chanman is a Slack bot that lets members of a gating channel search the
workspace's active private channels, join them and archive them from a
direct message. Channel records are kept in a local store that follows
Slack's rename, archive and delete events.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadDotEnv(envFile)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
