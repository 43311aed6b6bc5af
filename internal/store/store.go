// Package store provides the persistence layer for guilds, queues and their
// dependents, with typed inserts scoped to a transaction and event logging.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lherron/queuebot/internal/db"
	"github.com/lherron/queuebot/internal/events"
)

// Store is the root store that provides access to domain-specific stores.
type Store struct {
	db *db.DB

	Guilds   *GuildStore
	Queues   *QueueStore
	Displays *DisplayStore
	Pending  *PendingGuildUpdates
}

// New creates a new Store wrapping the given database connection.
func New(database *db.DB) *Store {
	s := &Store{db: database}
	s.Guilds = &GuildStore{store: s}
	s.Queues = &QueueStore{store: s}
	s.Displays = &DisplayStore{store: s}
	s.Pending = newPendingGuildUpdates(s)
	return s
}

// DB returns the underlying database connection (for read-only queries).
func (s *Store) DB() *db.DB {
	return s.db
}

// WithTx runs fn inside one transaction. The transaction commits when fn
// returns nil and rolls back otherwise; the error from fn is returned as is.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	return s.withTx(ctx, func(sqlTx *sql.Tx, ew *events.Writer) error {
		return fn(&Tx{ctx: ctx, tx: sqlTx, events: ew})
	})
}

// withTx executes fn within a transaction. If fn returns nil, the transaction
// is committed; otherwise it is rolled back.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx, ew *events.Writer) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ew := events.NewWriter(s.db.DB)
	if err := fn(tx, ew); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
