package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lherron/queuebot/internal/cli/appctx"
	"github.com/lherron/queuebot/internal/lifecycle"
	"github.com/lherron/queuebot/internal/migrate"
	"github.com/lherron/queuebot/internal/registrar"
	"github.com/lherron/queuebot/internal/render"
	"github.com/lherron/queuebot/internal/store"
	"github.com/lherron/queuebot/internal/telemetry"
)

// flushInterval is how often buffered guild activity is written while the
// bot runs. Shutdown always flushes whatever is left.
var flushInterval = time.Minute

// awaitShutdown blocks until the process is told to stop. Tests replace it.
var awaitShutdown = lifecycle.OnShutdown

func runBot(cmd *cobra.Command, args []string) error {
	app, err := appctx.Bootstrap(cmd, appctx.Options{NeedsDB: true, AutoMigrate: true})
	if err != nil {
		return err
	}
	defer app.Close()

	log := app.Log.WithField("component", "bot")
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	telemetry.Init()
	stopTracing, err := telemetry.InitTracing(app.Config.OTLPEndpoint, "queuebot", Version, log)
	if err != nil {
		log.WithError(err).Warn("tracing disabled")
	} else {
		defer stopTracing()
	}

	if app.Config.MetricsAddr != "" {
		srv := newMetricsServer(app.Config.MetricsAddr)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("metrics server stopped")
			}
		}()
		defer srv.Close()
		log.WithField("addr", app.Config.MetricsAddr).Info("serving metrics")
	}

	platform, closePlatform, err := connectPlatform(app.Config.DiscordToken)
	if err != nil {
		return exitError(1, err)
	}
	defer closePlatform()

	m := &migrate.Migrator{Store: app.Store, Platform: platform, Log: app.Log}
	res, err := migrate.CheckForMigration(ctx, m, migrate.CheckOptions{
		Enabled: app.Config.CheckForLegacyMigration,
		Dir:     app.Config.LegacyExportDir,
	}, cmd.InOrStdin(), cmd.OutOrStdout())
	switch {
	case errors.Is(err, migrate.ErrDeclined):
	case err != nil:
		// The bot keeps running on the pre-migration data.
		log.WithError(err).Errorf("legacy migration failed: %+v", err)
	case res != nil:
		if err := printMigrationResult(cmd.OutOrStdout(), res, render.FormatTable); err != nil {
			return err
		}
	}

	reg := registrar.New(app.Store, platform, app.Log)
	if err := reg.Init(ctx); err != nil {
		log.WithError(err).Error("display registrar unavailable")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go flushPeriodically(ctx, app.Store.Pending, flushInterval, log)

	log.Info("queuebot running, press Ctrl+C to stop")
	code := 0
	awaitShutdown(ctx, app.Store.Pending.Flush, func(c int) { code = c }, log)
	if code != 0 {
		return exitError(code, fmt.Errorf("pending guild updates were not flushed"))
	}
	return nil
}

func newMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.Handler())
	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

func flushPeriodically(ctx context.Context, pending *store.PendingGuildUpdates, every time.Duration, log logrus.FieldLogger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			telemetry.SetPendingGuilds(pending.Len())
			if err := pending.Flush(ctx); err != nil {
				log.WithError(err).Warn("periodic flush failed")
			}
		}
	}
}

// printMigrationResult writes the per-entity report followed by a diff of
// legacy counts against migrated counts when they differ.
func printMigrationResult(out io.Writer, res *migrate.Result, format render.Format) error {
	if format != render.FormatTable {
		return render.NewRenderer(out, format).Render(res, nil, nil)
	}
	if res.BackupPath != "" {
		fmt.Fprintf(out, "Backup: %s\n", res.BackupPath)
	}
	fmt.Fprintf(out, "Run: %s\n\n", res.RunID)
	if err := render.NewRenderer(out, format).RenderTable(migrate.ReportHeaders, res.Report.Rows()); err != nil {
		return err
	}
	if diff := res.Report.Diff(); diff != "" {
		fmt.Fprintf(out, "\nRows not migrated:\n%s", diff)
	}
	return nil
}
