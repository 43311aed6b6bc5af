package migrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/lherron/queuebot/internal/discord"
	"github.com/lherron/queuebot/internal/legacy"
	"github.com/lherron/queuebot/internal/store"
	"github.com/lherron/queuebot/internal/telemetry"
	"github.com/lherron/queuebot/internal/tz"
)

// errDryRun rolls back a dry-run transaction.
var errDryRun = errors.New("dry run")

// Options controls one migration run.
type Options struct {
	Dir        string
	DryRun     bool
	SkipBackup bool
}

// Result describes a finished migration run.
type Result struct {
	RunID      string         `json:"run_id" yaml:"run_id"`
	BackupPath string         `json:"backup_path,omitempty" yaml:"backup_path,omitempty"`
	Report     *Report        `json:"report" yaml:"report"`
	Counts     map[string]int `json:"counts" yaml:"counts"`
}

// Migrator runs the whole legacy migration against one store.
type Migrator struct {
	Store    *store.Store
	Platform discord.Platform
	Zones    *tz.Resolver
	Log      logrus.FieldLogger
	Now      func() time.Time
}

// BackupPath returns the pre-migration backup location for the database at
// dbPath, next to it and stamped with at in UTC.
func BackupPath(dbPath string, at time.Time) string {
	ext := filepath.Ext(dbPath)
	base := strings.TrimSuffix(filepath.Base(dbPath), ext)
	stamp := strings.ReplaceAll(at.UTC().Format("2006-01-02T15:04:05.000Z"), ":", "-")
	return filepath.Join(filepath.Dir(dbPath), fmt.Sprintf("%s-pre-migration-%s%s", base, stamp, ext))
}

func (m *Migrator) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *Migrator) zones() *tz.Resolver {
	if m.Zones != nil {
		return m.Zones
	}
	return tz.NewResolver()
}

// Run loads the export in opts.Dir, backs up the database and reconciles
// everything inside a single transaction. Nothing is committed if the run
// returns an error or opts.DryRun is set.
func (m *Migrator) Run(ctx context.Context, opts Options) (res *Result, err error) {
	runID := uuid.NewString()
	ctx = telemetry.WithRunID(ctx, runID)
	log := m.Log.WithField("run_id", runID)
	started := m.now()

	defer func() {
		switch {
		case err != nil:
			telemetry.IncMigrationRun("failed")
		case opts.DryRun:
			telemetry.IncMigrationRun("dry_run")
		default:
			telemetry.IncMigrationRun("committed")
		}
	}()

	tables, err := m.load(ctx, opts.Dir, log)
	if err != nil {
		return nil, err
	}

	res = &Result{RunID: runID}
	if !opts.SkipBackup && !opts.DryRun {
		res.BackupPath = BackupPath(m.Store.DB().Path(), started)
		if err := m.backup(ctx, res.BackupPath); err != nil {
			return nil, err
		}
		log.WithField("path", res.BackupPath).Info("database backed up")
	}

	resolver := discord.NewResolver(m.Platform, log)
	resolver.Prefetch(ctx)
	engine := NewEngine(resolver, m.zones(), log)

	rctx, span := telemetry.StartSpan(ctx, "migrate.reconcile", attribute.Bool("migration.dry_run", opts.DryRun))
	err = m.Store.WithTx(rctx, func(tx *store.Tx) error {
		rep, err := engine.Reconcile(rctx, tx, tables)
		if err != nil {
			return err
		}
		rep.RunID = runID
		rep.DryRun = opts.DryRun
		res.Report = rep

		if res.Counts, err = tx.Counts(); err != nil {
			return err
		}
		if opts.DryRun {
			return errDryRun
		}
		return m.record(tx, res, opts, started)
	})
	if errors.Is(err, errDryRun) {
		err = nil
	}
	telemetry.EndSpan(span, err)
	if err != nil {
		return nil, fmt.Errorf("migration aborted, nothing was committed: %w", err)
	}

	if mismatched := res.Report.Mismatched(); len(mismatched) > 0 {
		log.WithField("entities", mismatched).Info("inserted counts differ from legacy counts")
	}
	log.WithField("dry_run", opts.DryRun).Info("legacy migration finished")
	return res, nil
}

func (m *Migrator) load(ctx context.Context, dir string, log logrus.FieldLogger) (tables *legacy.Tables, err error) {
	ctx, span := telemetry.StartSpan(ctx, "legacy.load", attribute.String("legacy.dir", dir))
	defer func() { telemetry.EndSpan(span, err) }()

	tables, err = legacy.Load(ctx, dir, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load legacy export: %w", err)
	}
	return tables, nil
}

func (m *Migrator) backup(ctx context.Context, path string) (err error) {
	_, span := telemetry.StartSpan(ctx, "migrate.backup", attribute.String("backup.path", path))
	defer func() { telemetry.EndSpan(span, err) }()

	return m.Store.DB().Backup(path)
}

func (m *Migrator) record(tx *store.Tx, res *Result, opts Options, started time.Time) error {
	data, err := json.Marshal(res.Report)
	if err != nil {
		return fmt.Errorf("failed to marshal migration report: %w", err)
	}
	err = tx.InsertMigrationRun(&store.MigrationRun{
		RunID:      res.RunID,
		StartedAt:  started.UTC().Format(time.RFC3339),
		FinishedAt: m.now().UTC().Format(time.RFC3339),
		SourceDir:  opts.Dir,
		BackupPath: res.BackupPath,
		Report:     string(data),
	})
	if err != nil {
		return err
	}

	summary := map[string]any{"counts": res.Counts}
	if res.BackupPath != "" {
		summary["backup_path"] = res.BackupPath
	}
	return tx.Events().LogMigrationCompleted(tx.SQL(), res.RunID, summary)
}
