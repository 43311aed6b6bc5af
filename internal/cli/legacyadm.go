package cli

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/lherron/queuebot/internal/cli/appctx"
	"github.com/lherron/queuebot/internal/legacy"
	"github.com/lherron/queuebot/internal/migrate"
	"github.com/lherron/queuebot/internal/render"
)

var legacyAdmCmd = &cobra.Command{
	Use:   "legacy",
	Short: "Inspect and import a legacy CSV export",
}

var legacyInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Parse a legacy export and show row counts",
	Long: `Inspect parses every recognised CSV file in the export directory and
prints how many rows each holds. Nothing is written to the database.`,
	RunE: appctx.WithApp(appctx.Options{NeedsDB: false}, runLegacyInspect),
}

var legacyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Import a legacy export into the database",
	Long: `Migrate backs up the database, then imports the legacy export in a single
transaction. Guilds and channels are checked against Discord, so a bot token
is required. Rows that cannot be translated are skipped and reported.

Use --dry-run to run the whole import and roll it back.`,
	RunE: appctx.WithApp(appctx.Options{NeedsDB: true, AutoMigrate: true}, runLegacyMigrate),
}

var (
	legacyDir      string
	legacyOutput   string
	legacyYes      bool
	legacyDryRun   bool
	legacyNoBackup bool
	legacyJSON     bool
)

func init() {
	rootAdmCmd.AddCommand(legacyAdmCmd)
	legacyAdmCmd.AddCommand(legacyInspectCmd)
	legacyAdmCmd.AddCommand(legacyMigrateCmd)

	legacyAdmCmd.PersistentFlags().StringVar(&legacyDir, "dir", "", "Legacy export directory (overrides QUEUEBOT_LEGACY_EXPORT_DIR)")
	legacyAdmCmd.PersistentFlags().StringVarP(&legacyOutput, "output", "o", "", "Output format: table, json, yaml")

	legacyMigrateCmd.Flags().BoolVarP(&legacyYes, "yes", "y", false, "Do not ask for confirmation")
	legacyMigrateCmd.Flags().BoolVar(&legacyDryRun, "dry-run", false, "Run the import and roll it back")
	legacyMigrateCmd.Flags().BoolVar(&legacyNoBackup, "no-backup", false, "Skip the pre-migration database backup")
	legacyMigrateCmd.Flags().BoolVar(&legacyJSON, "json", false, "Output JSON (same as --output json)")
}

func legacyExportDir(app *appctx.App) string {
	if legacyDir != "" {
		return legacyDir
	}
	return app.Config.LegacyExportDir
}

func outputFormat(app *appctx.App, flag string, asJSON bool) (render.Format, error) {
	if asJSON {
		return render.FormatJSON, nil
	}
	if flag == "" {
		flag = app.Config.Output
	}
	f, err := render.ParseFormat(flag)
	if err != nil {
		return "", exitError(2, err)
	}
	return f, nil
}

func runLegacyInspect(app *appctx.App, cmd *cobra.Command, args []string) error {
	format, err := outputFormat(app, legacyOutput, false)
	if err != nil {
		return err
	}

	dir := legacyExportDir(app)
	if _, err := os.Stat(dir); err != nil {
		return exitError(1, fmt.Errorf("legacy export directory not found: %w", err))
	}

	tables, err := legacy.Load(cmd.Context(), dir, app.Log.WithField("component", "legacy"))
	if err != nil {
		return exitError(1, err)
	}

	counts := tables.Counts()
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, strconv.Itoa(counts[name])})
	}

	data := struct {
		Dir    string         `json:"dir" yaml:"dir"`
		Counts map[string]int `json:"counts" yaml:"counts"`
	}{Dir: dir, Counts: counts}

	return render.NewRenderer(cmd.OutOrStdout(), format).Render(data, []string{"FILE", "ROWS"}, rows)
}

func runLegacyMigrate(app *appctx.App, cmd *cobra.Command, args []string) error {
	format, err := outputFormat(app, legacyOutput, legacyJSON)
	if err != nil {
		return err
	}
	dir := legacyExportDir(app)
	out := cmd.OutOrStdout()

	m := &migrate.Migrator{Store: app.Store, Log: app.Log}
	if !legacyYes && !legacyDryRun {
		fmt.Fprintf(out, "Import %s into %s", dir, app.DB.Path())
		if !legacyNoBackup {
			fmt.Fprintf(out, " (backup: %s)", migrate.BackupPath(app.DB.Path(), time.Now()))
		}
		fmt.Fprint(out, "? [Y/n] ")
		ok, err := migrate.Confirm(cmd.InOrStdin())
		if err != nil {
			return exitError(1, err)
		}
		if !ok {
			return exitError(1, migrate.ErrDeclined)
		}
	}

	platform, closePlatform, err := connectPlatform(app.Config.DiscordToken)
	if err != nil {
		return exitError(1, err)
	}
	defer closePlatform()
	m.Platform = platform

	res, err := m.Run(cmd.Context(), migrate.Options{
		Dir:        dir,
		DryRun:     legacyDryRun,
		SkipBackup: legacyNoBackup,
	})
	if err != nil {
		app.Log.Errorf("%+v", err)
		return exitError(1, err)
	}

	if format == render.FormatTable && legacyDryRun {
		fmt.Fprintln(out, "Dry run: nothing was committed.")
	}
	return printMigrationResult(out, res, format)
}
