package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lherron/queuebot/internal/domain"
	"github.com/lherron/queuebot/internal/events"
)

// DisplayStore handles display persistence operations.
type DisplayStore struct {
	store *Store
}

// List returns the displays of a queue. A non-empty channelID limits the
// result to that display channel.
func (ds *DisplayStore) List(ctx context.Context, queueID int64, channelID string) ([]*domain.Display, error) {
	return listDisplays(ctx, ds.store.db, queueID, channelID)
}

func listDisplays(ctx context.Context, q interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}, queueID int64, channelID string) ([]*domain.Display, error) {
	query := `
		SELECT id, guild_id, queue_id, display_channel_id, last_message_id
		FROM displays WHERE queue_id = ?`
	args := []any{queueID}
	if channelID != "" {
		query += ` AND display_channel_id = ?`
		args = append(args, channelID)
	}
	query += ` ORDER BY id`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list displays of queue %d: %w", queueID, err)
	}
	defer rows.Close()

	var displays []*domain.Display
	for rows.Next() {
		var d domain.Display
		if err := rows.Scan(&d.ID, &d.GuildID, &d.QueueID, &d.DisplayChannelID, &d.LastMessageID); err != nil {
			return nil, fmt.Errorf("failed to scan display: %w", err)
		}
		displays = append(displays, &d)
	}
	return displays, rows.Err()
}

// Save inserts the display, or updates the last message ID when the
// (queue, channel) pair is already stored, and logs a display.stored event.
func (ds *DisplayStore) Save(ctx context.Context, d *domain.Display) (*domain.Display, error) {
	saved := *d
	err := ds.store.withTx(ctx, func(tx *sql.Tx, ew *events.Writer) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO displays (guild_id, queue_id, display_channel_id, last_message_id)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (queue_id, display_channel_id)
			DO UPDATE SET last_message_id = excluded.last_message_id
			RETURNING id
		`, d.GuildID, d.QueueID, d.DisplayChannelID, d.LastMessageID).Scan(&saved.ID)
		if err != nil {
			return fmt.Errorf("failed to save display: %w", classify("displays", err))
		}
		return ew.LogDisplayStored(tx, &saved)
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// Delete removes the displays of a queue, optionally limited to one display
// channel, and returns the removed rows.
func (ds *DisplayStore) Delete(ctx context.Context, queueID int64, channelID string, keepMessage bool) ([]*domain.Display, error) {
	var removed []*domain.Display
	err := ds.store.withTx(ctx, func(tx *sql.Tx, ew *events.Writer) error {
		displays, err := listDisplays(ctx, tx, queueID, channelID)
		if err != nil {
			return err
		}
		for _, d := range displays {
			if _, err := tx.ExecContext(ctx, `DELETE FROM displays WHERE id = ?`, d.ID); err != nil {
				return fmt.Errorf("failed to delete display %d: %w", d.ID, err)
			}
			if err := ew.LogDisplayUnstored(tx, d, keepMessage); err != nil {
				return err
			}
		}
		removed = displays
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
