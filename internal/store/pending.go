package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lherron/queuebot/internal/events"
)

// PendingGuildUpdates buffers guild activity timestamps in memory until
// Flush writes them. It is safe for concurrent use.
type PendingGuildUpdates struct {
	store *Store

	mu      sync.Mutex
	pending map[string]int64
}

func newPendingGuildUpdates(s *Store) *PendingGuildUpdates {
	return &PendingGuildUpdates{store: s, pending: make(map[string]int64)}
}

// Touch records activity for a guild. Later timestamps win.
func (p *PendingGuildUpdates) Touch(guildID string, at time.Time) {
	ms := at.UnixMilli()
	p.mu.Lock()
	defer p.mu.Unlock()
	if ms > p.pending[guildID] {
		p.pending[guildID] = ms
	}
}

// Len returns the number of guilds waiting to be flushed.
func (p *PendingGuildUpdates) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Flush writes all pending guild timestamps in one transaction. On failure
// the pending set is restored so a later flush can retry.
func (p *PendingGuildUpdates) Flush(ctx context.Context) error {
	p.mu.Lock()
	batch := p.pending
	p.pending = make(map[string]int64)
	p.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	ids := make([]string, 0, len(batch))
	for id := range batch {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	err := p.store.withTx(ctx, func(tx *sql.Tx, ew *events.Writer) error {
		for _, id := range ids {
			_, err := tx.ExecContext(ctx, `
				UPDATE guilds SET last_updated_time = MAX(last_updated_time, ?) WHERE guild_id = ?
			`, batch[id], id)
			if err != nil {
				return fmt.Errorf("failed to update guild %s: %w", id, err)
			}
		}
		return ew.LogGuildsFlushed(tx, ids)
	})
	if err != nil {
		p.mu.Lock()
		for id, ms := range batch {
			if ms > p.pending[id] {
				p.pending[id] = ms
			}
		}
		p.mu.Unlock()
		return err
	}
	return nil
}
