// Package registrar keeps queue display messages and their persisted
// records in step.
package registrar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/lherron/queuebot/internal/db"
	"github.com/lherron/queuebot/internal/discord"
	"github.com/lherron/queuebot/internal/domain"
	"github.com/lherron/queuebot/internal/render"
	"github.com/lherron/queuebot/internal/store"
	"github.com/lherron/queuebot/internal/telemetry"
)

// ErrNotInitialized is returned by every operation until Init succeeds.
var ErrNotInitialized = errors.New("registrar: not initialized")

// Registrar stores and removes display messages. Calls for the same
// (queue, channel) pair must not overlap.
type Registrar struct {
	store    *store.Store
	platform discord.Platform
	log      logrus.FieldLogger
	now      func() time.Time

	initialized atomic.Bool
}

// New creates a Registrar. Init must run before any other method.
func New(s *store.Store, platform discord.Platform, log logrus.FieldLogger) *Registrar {
	return &Registrar{
		store:    s,
		platform: platform,
		log:      log.WithField("component", "registrar"),
		now:      time.Now,
	}
}

// Init upgrades the displays table from the deprecated embed_ids column
// to last_message_id. It is safe to call more than once.
func (r *Registrar) Init(ctx context.Context) error {
	if err := r.upgradeEmbedIDs(ctx); err != nil {
		return err
	}
	r.initialized.Store(true)
	return nil
}

func (r *Registrar) upgradeEmbedIDs(ctx context.Context) error {
	tx, err := r.store.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	has, err := db.HasColumn(tx, "displays", "embed_ids")
	if err != nil {
		return fmt.Errorf("failed to inspect displays table: %w", err)
	}
	if !has {
		return nil
	}
	r.log.Info("migrating display embed ids")

	rows, err := tx.QueryContext(ctx, `SELECT id, embed_ids FROM displays WHERE embed_ids IS NOT NULL`)
	if err != nil {
		return fmt.Errorf("failed to read embed ids: %w", err)
	}
	firstIDs := make(map[int64]string)
	for rows.Next() {
		var (
			id  int64
			raw string
		)
		if err := rows.Scan(&id, &raw); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan embed ids: %w", err)
		}
		if first := FirstEmbedID(raw); first != "" {
			firstIDs[id] = first
		}
	}
	if err := rows.Close(); err != nil {
		return err
	}

	for id, msgID := range firstIDs {
		if _, err := tx.ExecContext(ctx, `UPDATE displays SET last_message_id = ? WHERE id = ?`, msgID, id); err != nil {
			return fmt.Errorf("failed to move embed id of display %d: %w", id, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `ALTER TABLE displays DROP COLUMN embed_ids`); err != nil {
		return fmt.Errorf("failed to drop embed_ids: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit embed id migration: %w", err)
	}
	r.log.WithField("displays", len(firstIDs)).Info("display embed ids migrated")
	return nil
}

// FirstEmbedID returns the first message ID of a stored embed_ids value.
// JSON arrays, array literals in braces and plain comma lists are accepted.
func FirstEmbedID(raw string) string {
	raw = strings.TrimSpace(raw)
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err == nil {
		if len(ids) > 0 {
			return strings.TrimSpace(ids[0])
		}
		return ""
	}
	raw = strings.Trim(raw, "[]{}")
	first, _, _ := strings.Cut(raw, ",")
	return strings.Trim(strings.TrimSpace(first), `"`)
}

// Store renders the queue, sends it to displayChannelID and records the
// resulting message. A message it replaces is deleted on a best-effort
// basis. When the send fails nothing is recorded and the returned display
// is nil.
func (r *Registrar) Store(ctx context.Context, q *domain.Queue, displayChannelID string) (d *domain.Display, err error) {
	if !r.initialized.Load() {
		return nil, ErrNotInitialized
	}
	ctx, span := telemetry.StartSpan(ctx, "registrar.store",
		attribute.Int64("queue.id", q.ID), attribute.String("display.channel_id", displayChannelID))
	defer func() {
		telemetry.EndSpan(span, err)
		telemetry.IncDisplayOperation("store", outcome(d != nil, err))
	}()

	members, err := r.store.Queues.Members(ctx, q.ID)
	if err != nil {
		return nil, err
	}
	existing, err := r.store.Displays.List(ctx, q.ID, displayChannelID)
	if err != nil {
		return nil, err
	}
	msg, err := r.platform.SendMessage(ctx, displayChannelID, render.QueueDisplay(q, members))
	if err != nil {
		r.log.WithFields(logrus.Fields{"queue_id": q.ID, "channel_id": displayChannelID}).
			WithError(err).Warn("failed to send display message")
		return nil, nil
	}

	d, err = r.store.Displays.Save(ctx, &domain.Display{
		GuildID:          q.GuildID,
		QueueID:          q.ID,
		DisplayChannelID: displayChannelID,
		LastMessageID:    &msg.ID,
	})
	if err != nil {
		return nil, err
	}
	r.store.Pending.Touch(q.GuildID, r.now())

	// The replaced message is no longer referenced by any record.
	for _, old := range existing {
		if old.LastMessageID == nil || *old.LastMessageID == msg.ID {
			continue
		}
		if err := r.deleteMessage(ctx, displayChannelID, *old.LastMessageID); err != nil {
			r.log.WithFields(logrus.Fields{"channel_id": displayChannelID, "message_id": *old.LastMessageID}).
				WithError(err).Debug("could not delete replaced display message")
		}
	}
	return d, nil
}

// UnstoreOptions narrows Unstore.
type UnstoreOptions struct {
	// DisplayChannelID limits removal to one channel. Empty removes every
	// display of the queue.
	DisplayChannelID string
	// KeepMessage leaves the remote messages in place.
	KeepMessage bool
}

// Unstore removes the matching display records and then, unless
// opts.KeepMessage is set, deletes their remote messages. Remote failures
// are ignored. It returns the number of records removed.
func (r *Registrar) Unstore(ctx context.Context, queueID int64, opts UnstoreOptions) (n int, err error) {
	if !r.initialized.Load() {
		return 0, ErrNotInitialized
	}
	ctx, span := telemetry.StartSpan(ctx, "registrar.unstore",
		attribute.Int64("queue.id", queueID), attribute.String("display.channel_id", opts.DisplayChannelID))
	defer func() {
		telemetry.EndSpan(span, err)
		telemetry.IncDisplayOperation("unstore", outcome(n > 0, err))
	}()

	removed, err := r.store.Displays.Delete(ctx, queueID, opts.DisplayChannelID, opts.KeepMessage)
	if err != nil {
		return 0, err
	}
	if len(removed) > 0 {
		r.store.Pending.Touch(removed[0].GuildID, r.now())
	}
	if opts.KeepMessage {
		return len(removed), nil
	}

	for _, d := range removed {
		if d.LastMessageID == nil {
			continue
		}
		if err := r.deleteMessage(ctx, d.DisplayChannelID, *d.LastMessageID); err != nil {
			r.log.WithFields(logrus.Fields{"channel_id": d.DisplayChannelID, "message_id": *d.LastMessageID}).
				WithError(err).Debug("could not delete display message")
		}
	}
	return len(removed), nil
}

func (r *Registrar) deleteMessage(ctx context.Context, channelID, messageID string) error {
	msg, err := r.platform.FetchMessage(ctx, channelID, messageID)
	if err != nil {
		return err
	}
	return r.platform.DeleteMessage(ctx, msg.ChannelID, msg.ID)
}

func outcome(done bool, err error) string {
	switch {
	case err != nil:
		return "error"
	case done:
		return "ok"
	default:
		return "noop"
	}
}
