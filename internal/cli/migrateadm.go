package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lherron/queuebot/internal/cli/appctx"
	"github.com/lherron/queuebot/internal/db"
	"github.com/lherron/queuebot/internal/render"
)

var migrateAdmCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run any pending schema migrations",
	Long: `Migrate applies the SQL migrations embedded in the binary that are not yet
recorded in schema_migrations. Running it again is a no-op.

This only evolves the schema. To import a legacy CSV export use
'queuebotadm legacy migrate'.

Use --status to list applied and pending migrations, or --dry-run to list
only what would be applied.`,
	RunE: appctx.WithApp(appctx.Options{NeedsDB: false}, runMigrateAdm),
}

var (
	migrateDryRun bool
	migrateStatus bool
	migrateOutput string
)

func init() {
	rootAdmCmd.AddCommand(migrateAdmCmd)

	migrateAdmCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "List pending migrations without applying them")
	migrateAdmCmd.Flags().BoolVar(&migrateStatus, "status", false, "List applied and pending migrations")
	migrateAdmCmd.Flags().StringVarP(&migrateOutput, "output", "o", "", "Output format for --status/--dry-run: table, json, yaml")
}

type migrationState struct {
	Version string `json:"version" yaml:"version"`
	Applied bool   `json:"applied" yaml:"applied"`
}

func runMigrateAdm(app *appctx.App, cmd *cobra.Command, args []string) error {
	database, err := db.Open(app.Config.DBPath)
	if err != nil {
		return exitError(1, fmt.Errorf("failed to open database: %w", err))
	}
	defer database.Close()

	out := cmd.OutOrStdout()
	if migrateStatus || migrateDryRun {
		format, err := outputFormat(app, migrateOutput, false)
		if err != nil {
			return err
		}
		applied, pending, err := database.MigrationStatus()
		if err != nil {
			return exitError(1, fmt.Errorf("failed to get migration status: %w", err))
		}
		if migrateDryRun {
			applied = nil
			if len(pending) == 0 && format == render.FormatTable {
				fmt.Fprintln(out, "No pending migrations. Database is up to date.")
				return nil
			}
		}

		var states []migrationState
		rows := make([][]string, 0, len(applied)+len(pending))
		for _, v := range applied {
			states = append(states, migrationState{Version: v, Applied: true})
			rows = append(rows, []string{"✓", v})
		}
		for _, v := range pending {
			states = append(states, migrationState{Version: v})
			rows = append(rows, []string{"○", v})
		}
		return render.NewRenderer(out, format).Render(states, []string{"", "MIGRATION"}, rows)
	}

	applied, err := database.MigrateWithInfo()
	if err != nil {
		return exitError(1, fmt.Errorf("failed to run migrations: %w", err))
	}
	if len(applied) == 0 {
		fmt.Fprintln(out, "Database is up to date. No migrations to apply.")
		return nil
	}
	for _, m := range applied {
		fmt.Fprintf(out, "✓ Applied migration: %s\n", m)
	}
	fmt.Fprintf(out, "\nApplied %d migration(s).\n", len(applied))
	return nil
}
