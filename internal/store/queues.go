package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lherron/queuebot/internal/domain"
)

// QueueStore handles queue reads.
type QueueStore struct {
	store *Store
}

const queueColumns = `id, guild_id, name, autopull_toggle, color, display_buttons, display_update_type,
	header, lock_toggle, member_display_type, notifications_toggle, pull_batch_size,
	rejoin_grace_period, role_in_queue_id, size, timestamp_type`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQueue(r rowScanner) (*domain.Queue, error) {
	var q domain.Queue
	err := r.Scan(&q.ID, &q.GuildID, &q.Name, &q.AutopullToggle, &q.Color, &q.DisplayButtons,
		&q.DisplayUpdateType, &q.Header, &q.LockToggle, &q.MemberDisplayType, &q.NotificationsToggle,
		&q.PullBatchSize, &q.RejoinGracePeriod, &q.RoleInQueueID, &q.Size, &q.TimestampType)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// Get returns a queue by ID.
func (qs *QueueStore) Get(ctx context.Context, id int64) (*domain.Queue, error) {
	row := qs.store.db.QueryRowContext(ctx, `SELECT `+queueColumns+` FROM queues WHERE id = ?`, id)
	q, err := scanQueue(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("queue %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get queue %d: %w", id, err)
	}
	return q, nil
}

// List returns queues ordered by guild and name. An empty guildID lists all guilds.
func (qs *QueueStore) List(ctx context.Context, guildID string) ([]*domain.Queue, error) {
	query := `SELECT ` + queueColumns + ` FROM queues`
	var args []any
	if guildID != "" {
		query += ` WHERE guild_id = ?`
		args = append(args, guildID)
	}
	query += ` ORDER BY guild_id, name`

	rows, err := qs.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list queues: %w", err)
	}
	defer rows.Close()

	var queues []*domain.Queue
	for rows.Next() {
		q, err := scanQueue(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan queue: %w", err)
		}
		queues = append(queues, q)
	}
	return queues, rows.Err()
}

// Members returns the members of a queue in position order: prioritized
// members first (lowest order first), then by position time.
func (qs *QueueStore) Members(ctx context.Context, queueID int64) ([]*domain.Member, error) {
	rows, err := qs.store.db.QueryContext(ctx, `
		SELECT id, guild_id, queue_id, user_id, message, join_time, position_time, priority_order
		FROM members
		WHERE queue_id = ?
		ORDER BY priority_order IS NULL, priority_order, position_time, id
	`, queueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of queue %d: %w", queueID, err)
	}
	defer rows.Close()

	var members []*domain.Member
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.ID, &m.GuildID, &m.QueueID, &m.UserID, &m.Message,
			&m.JoinTime, &m.PositionTime, &m.PriorityOrder); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, &m)
	}
	return members, rows.Err()
}

// Voice returns the voice link of a queue.
func (qs *QueueStore) Voice(ctx context.Context, queueID int64) (*domain.VoiceLink, error) {
	var v domain.VoiceLink
	err := qs.store.db.QueryRowContext(ctx, `
		SELECT id, guild_id, queue_id, source_channel_id, destination_channel_id
		FROM voices WHERE queue_id = ?
	`, queueID).Scan(&v.ID, &v.GuildID, &v.QueueID, &v.SourceChannelID, &v.DestinationChannelID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("voice link for queue %d: %w", queueID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get voice link for queue %d: %w", queueID, err)
	}
	return &v, nil
}

// Schedules returns the schedules of a queue.
func (qs *QueueStore) Schedules(ctx context.Context, queueID int64) ([]*domain.Schedule, error) {
	rows, err := qs.store.db.QueryContext(ctx, `
		SELECT id, guild_id, queue_id, command, cron, timezone, message_channel_id, reason
		FROM schedules WHERE queue_id = ? ORDER BY id
	`, queueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules of queue %d: %w", queueID, err)
	}
	defer rows.Close()

	var schedules []*domain.Schedule
	for rows.Next() {
		var s domain.Schedule
		if err := rows.Scan(&s.ID, &s.GuildID, &s.QueueID, &s.Command, &s.Cron,
			&s.Timezone, &s.MessageChannelID, &s.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		schedules = append(schedules, &s)
	}
	return schedules, rows.Err()
}

// AccessEntries returns the access entries of a queue, optionally filtered by kind.
func (qs *QueueStore) AccessEntries(ctx context.Context, queueID int64, kind domain.AccessKind) ([]*domain.AccessEntry, error) {
	query := `
		SELECT id, guild_id, queue_id, kind, subject_id, is_role, priority_order
		FROM access_entries WHERE queue_id = ?`
	args := []any{queueID}
	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY id`

	rows, err := qs.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list access entries of queue %d: %w", queueID, err)
	}
	defer rows.Close()

	var entries []*domain.AccessEntry
	for rows.Next() {
		var e domain.AccessEntry
		if err := rows.Scan(&e.ID, &e.GuildID, &e.QueueID, &e.Kind, &e.SubjectID, &e.IsRole, &e.PriorityOrder); err != nil {
			return nil, fmt.Errorf("failed to scan access entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
