package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lherron/queuebot/internal/db"
	"github.com/lherron/queuebot/internal/domain"
	"github.com/lherron/queuebot/internal/events"
)

// Tx exposes typed insert operations bound to one open transaction.
// Each insert either creates exactly one row or returns an error; a
// uniqueness violation is reported as *domain.ConflictError and leaves the
// transaction usable.
type Tx struct {
	ctx    context.Context
	tx     *sql.Tx
	events *events.Writer
}

// Context returns the context the transaction was opened with.
func (t *Tx) Context() context.Context {
	return t.ctx
}

// SQL returns the underlying transaction.
func (t *Tx) SQL() *sql.Tx {
	return t.tx
}

// Events returns the event writer for this transaction.
func (t *Tx) Events() *events.Writer {
	return t.events
}

func (t *Tx) insert(table, query string, args ...any) (int64, error) {
	res, err := t.tx.ExecContext(t.ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert into %s: %w", table, classify(table, err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return id, nil
}

// InsertGuild creates a guild row.
func (t *Tx) InsertGuild(g *domain.Guild) (*domain.Guild, error) {
	_, err := t.insert("guilds", `
		INSERT INTO guilds (guild_id, log_channel_id, log_scope, last_updated_time)
		VALUES (?, ?, ?, ?)
	`, g.GuildID, g.LogChannelID, g.LogScope, g.LastUpdatedTime)
	if err != nil {
		return nil, err
	}
	created := *g
	return &created, nil
}

// InsertQueue creates a queue row and returns it with its new ID.
func (t *Tx) InsertQueue(q *domain.Queue) (*domain.Queue, error) {
	id, err := t.insert("queues", `
		INSERT INTO queues (
			guild_id, name, autopull_toggle, color, display_buttons, display_update_type,
			header, lock_toggle, member_display_type, notifications_toggle, pull_batch_size,
			rejoin_grace_period, role_in_queue_id, size, timestamp_type
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, q.GuildID, q.Name, q.AutopullToggle, q.Color, q.DisplayButtons, q.DisplayUpdateType,
		q.Header, q.LockToggle, q.MemberDisplayType, q.NotificationsToggle, q.PullBatchSize,
		q.RejoinGracePeriod, q.RoleInQueueID, q.Size, q.TimestampType)
	if err != nil {
		return nil, err
	}
	created := *q
	created.ID = id
	return &created, nil
}

// InsertVoice attaches a voice source channel to a queue.
func (t *Tx) InsertVoice(v *domain.VoiceLink) (*domain.VoiceLink, error) {
	id, err := t.insert("voices", `
		INSERT INTO voices (guild_id, queue_id, source_channel_id, destination_channel_id)
		VALUES (?, ?, ?, ?)
	`, v.GuildID, v.QueueID, v.SourceChannelID, v.DestinationChannelID)
	if err != nil {
		return nil, err
	}
	created := *v
	created.ID = id
	return &created, nil
}

// InsertDisplay creates a display row.
func (t *Tx) InsertDisplay(d *domain.Display) (*domain.Display, error) {
	id, err := t.insert("displays", `
		INSERT INTO displays (guild_id, queue_id, display_channel_id, last_message_id)
		VALUES (?, ?, ?, ?)
	`, d.GuildID, d.QueueID, d.DisplayChannelID, d.LastMessageID)
	if err != nil {
		return nil, err
	}
	created := *d
	created.ID = id
	return &created, nil
}

// InsertMember creates a member row.
func (t *Tx) InsertMember(m *domain.Member) (*domain.Member, error) {
	id, err := t.insert("members", `
		INSERT INTO members (guild_id, queue_id, user_id, message, join_time, position_time, priority_order)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.GuildID, m.QueueID, m.UserID, m.Message, m.JoinTime, m.PositionTime, m.PriorityOrder)
	if err != nil {
		return nil, err
	}
	created := *m
	created.ID = id
	return &created, nil
}

// InsertSchedule creates a schedule row.
func (t *Tx) InsertSchedule(s *domain.Schedule) (*domain.Schedule, error) {
	id, err := t.insert("schedules", `
		INSERT INTO schedules (guild_id, queue_id, command, cron, timezone, message_channel_id, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, s.GuildID, s.QueueID, s.Command, s.Cron, s.Timezone, s.MessageChannelID, s.Reason)
	if err != nil {
		return nil, err
	}
	created := *s
	created.ID = id
	return &created, nil
}

// InsertAccessEntry creates a blacklist, whitelist or priority entry.
func (t *Tx) InsertAccessEntry(e *domain.AccessEntry) (*domain.AccessEntry, error) {
	id, err := t.insert("access_entries", `
		INSERT INTO access_entries (guild_id, queue_id, kind, subject_id, is_role, priority_order)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.GuildID, e.QueueID, e.Kind, e.SubjectID, e.IsRole, e.PriorityOrder)
	if err != nil {
		return nil, err
	}
	created := *e
	created.ID = id
	return &created, nil
}

// InsertAdmin creates an admin permission row.
func (t *Tx) InsertAdmin(a *domain.AdminPermission) (*domain.AdminPermission, error) {
	id, err := t.insert("admins", `
		INSERT INTO admins (guild_id, subject_id, is_role)
		VALUES (?, ?, ?)
	`, a.GuildID, a.SubjectID, a.IsRole)
	if err != nil {
		return nil, err
	}
	created := *a
	created.ID = id
	return &created, nil
}

// MigrationRun is the persisted summary of one legacy migration.
type MigrationRun struct {
	RunID      string
	StartedAt  string
	FinishedAt string
	SourceDir  string
	BackupPath string
	Report     string // JSON
}

// InsertMigrationRun records a completed legacy migration.
func (t *Tx) InsertMigrationRun(run *MigrationRun) error {
	var backup *string
	if run.BackupPath != "" {
		backup = &run.BackupPath
	}
	_, err := t.insert("migration_runs", `
		INSERT INTO migration_runs (run_id, started_at, finished_at, source_dir, backup_path, report)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.RunID, run.StartedAt, run.FinishedAt, run.SourceDir, backup, run.Report)
	return err
}

// EntityTables lists the tables populated by a legacy migration in insert order.
var EntityTables = []string{"guilds", "queues", "voices", "displays", "members", "schedules", "access_entries", "admins"}

// Counts returns the current row count of every entity table as seen by the transaction.
func (t *Tx) Counts() (map[string]int, error) {
	return db.RowCounts(t.tx, EntityTables...)
}
