package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "queuebot",
	Short: "Discord queue bot",
	Long: `queuebot connects to Discord and keeps queue displays in sync with the
database. On startup it can offer to import a legacy CSV export when
CHECK_FOR_LEGACY_MIGRATION is set.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runBot,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to database file (overrides QUEUEBOT_DB_PATH)")
}
