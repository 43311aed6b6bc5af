package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lherron/queuebot/internal/config"
	"github.com/lherron/queuebot/internal/db"
)

var initAdmCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the queuebot database",
	Long: `Initialize creates the SQLite database, runs migrations and creates the
legacy export directory so an export can be dropped into it.`,
	RunE: runInitAdm,
}

func init() {
	rootAdmCmd.AddCommand(initAdmCmd)
}

func runInitAdm(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return exitError(1, fmt.Errorf("failed to load config: %w", err))
	}
	if dbPath := cmd.Flag("db").Value.String(); dbPath != "" {
		cfg.DBPath = dbPath
	}

	dbExists := false
	if _, err := os.Stat(cfg.DBPath); err == nil {
		dbExists = true
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return exitError(1, fmt.Errorf("failed to open database: %w", err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		return exitError(1, fmt.Errorf("failed to run migrations: %w", err))
	}

	if err := os.MkdirAll(cfg.LegacyExportDir, 0755); err != nil {
		return exitError(1, fmt.Errorf("failed to create legacy export directory: %w", err))
	}

	out := cmd.OutOrStdout()
	if !dbExists {
		fmt.Fprintf(out, "✓ Initialized new database at %s\n", cfg.DBPath)
	} else {
		fmt.Fprintf(out, "✓ Database already initialized at %s\n", cfg.DBPath)
		fmt.Fprintf(out, "✓ Migrations applied\n")
	}
	fmt.Fprintf(out, "✓ Legacy export directory: %s\n", cfg.LegacyExportDir)
	return nil
}
