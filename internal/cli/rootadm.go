package cli

import (
	"github.com/spf13/cobra"
)

var rootAdmCmd = &cobra.Command{
	Use:   "queuebotadm",
	Short: "Administrative CLI for the queuebot database and legacy migration",
	Long: `queuebotadm is the administrative companion to queuebot. It handles
database lifecycle (init, migrate, snapshot), legacy export inspection and
migration, and display channel registration.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExecuteAdmin runs the admin root command
func ExecuteAdmin() error {
	return rootAdmCmd.Execute()
}

func init() {
	rootAdmCmd.PersistentFlags().String("db", "", "Path to database file (overrides QUEUEBOT_DB_PATH)")
}
