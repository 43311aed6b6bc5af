package events

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/lherron/queuebot/internal/domain"
)

// Resource types recorded in the event log.
const (
	ResourceDisplay   = "display"
	ResourceGuild     = "guild"
	ResourceMigration = "migration"
)

// Writer handles writing events to the event log
type Writer struct {
	db *sql.DB
}

// NewWriter creates a new event writer
func NewWriter(db *sql.DB) *Writer {
	return &Writer{db: db}
}

// LogEvent writes an event to the event log
func (w *Writer) LogEvent(tx *sql.Tx, event *domain.Event) error {
	query := `
		INSERT INTO event_log (resource_type, resource_id, event_type, payload)
		VALUES (?, ?, ?, ?)
	`

	executor := w.getExecutor(tx)
	_, err := executor.Exec(query, event.ResourceType, event.ResourceID, event.EventType, event.Payload)
	if err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	return nil
}

// LogDisplayStored logs a display.stored event
func (w *Writer) LogDisplayStored(tx *sql.Tx, display *domain.Display) error {
	return w.logWithPayload(tx, ResourceDisplay, strconv.FormatInt(display.QueueID, 10), "display.stored", map[string]any{
		"guild_id":           display.GuildID,
		"display_channel_id": display.DisplayChannelID,
		"last_message_id":    display.LastMessageID,
	})
}

// LogDisplayUnstored logs a display.unstored event
func (w *Writer) LogDisplayUnstored(tx *sql.Tx, display *domain.Display, keepMessage bool) error {
	return w.logWithPayload(tx, ResourceDisplay, strconv.FormatInt(display.QueueID, 10), "display.unstored", map[string]any{
		"guild_id":           display.GuildID,
		"display_channel_id": display.DisplayChannelID,
		"keep_message":       keepMessage,
	})
}

// LogMigrationCompleted logs the outcome of a legacy migration run
func (w *Writer) LogMigrationCompleted(tx *sql.Tx, runID string, summary map[string]any) error {
	return w.logWithPayload(tx, ResourceMigration, runID, "migration.completed", summary)
}

// LogGuildsFlushed logs a batch write of pending guild activity
func (w *Writer) LogGuildsFlushed(tx *sql.Tx, guildIDs []string) error {
	return w.logWithPayload(tx, ResourceGuild, "", "guild.flushed", map[string]any{
		"guild_ids": guildIDs,
	})
}

func (w *Writer) logWithPayload(tx *sql.Tx, resourceType, resourceID, eventType string, payload map[string]any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	payloadStr := string(data)

	event := &domain.Event{
		ResourceType: resourceType,
		EventType:    eventType,
		Payload:      &payloadStr,
	}
	if resourceID != "" {
		event.ResourceID = &resourceID
	}
	return w.LogEvent(tx, event)
}

// getExecutor returns the appropriate executor (tx or db)
func (w *Writer) getExecutor(tx *sql.Tx) interface {
	Exec(query string, args ...any) (sql.Result, error)
} {
	if tx != nil {
		return tx
	}
	return w.db
}
