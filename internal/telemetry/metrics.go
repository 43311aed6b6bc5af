// Package telemetry provides Prometheus metrics and OpenTelemetry tracing.
package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	// MigrationRows counts legacy rows by entity and outcome (inserted, skipped).
	MigrationRows *prometheus.CounterVec
	// MigrationRuns counts legacy migration runs by result (committed, dry_run, failed).
	MigrationRuns *prometheus.CounterVec
	// DisplayOperations counts registrar operations by op and outcome.
	DisplayOperations *prometheus.CounterVec
	// PendingGuilds is the number of guilds waiting for a flush.
	PendingGuilds prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		MigrationRows = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "queuebot_migration_rows_total",
			Help: "Legacy rows processed by the migration, by entity and outcome",
		}, []string{"entity", "outcome"})
		MigrationRuns = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "queuebot_migration_runs_total",
			Help: "Legacy migration runs by result",
		}, []string{"result"})
		DisplayOperations = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "queuebot_display_operations_total",
			Help: "Display store/unstore operations by outcome",
		}, []string{"op", "outcome"})
		PendingGuilds = promauto.NewGauge(prometheus.GaugeOpts{
			Name: "queuebot_pending_guild_updates",
			Help: "Guilds with activity not yet flushed to the database",
		})
	})
}

// AddMigrationRows records n rows for entity with outcome. No-op before Init.
func AddMigrationRows(entity, outcome string, n int) {
	if MigrationRows != nil && n > 0 {
		MigrationRows.WithLabelValues(entity, outcome).Add(float64(n))
	}
}

// IncMigrationRun records a migration run result. No-op before Init.
func IncMigrationRun(result string) {
	if MigrationRuns != nil {
		MigrationRuns.WithLabelValues(result).Inc()
	}
}

// IncDisplayOperation records a registrar operation. No-op before Init.
func IncDisplayOperation(op, outcome string) {
	if DisplayOperations != nil {
		DisplayOperations.WithLabelValues(op, outcome).Inc()
	}
}

// SetPendingGuilds records the pending guild count. No-op before Init.
func SetPendingGuilds(n int) {
	if PendingGuilds != nil {
		PendingGuilds.Set(float64(n))
	}
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
