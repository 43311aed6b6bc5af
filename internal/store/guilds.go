package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lherron/queuebot/internal/domain"
)

// GuildStore handles guild reads.
type GuildStore struct {
	store *Store
}

// Get returns a guild by its remote identifier.
func (gs *GuildStore) Get(ctx context.Context, guildID string) (*domain.Guild, error) {
	var g domain.Guild
	err := gs.store.db.QueryRowContext(ctx, `
		SELECT guild_id, log_channel_id, log_scope, last_updated_time, joined_at
		FROM guilds WHERE guild_id = ?
	`, guildID).Scan(&g.GuildID, &g.LogChannelID, &g.LogScope, &g.LastUpdatedTime, &g.JoinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("guild %s: %w", guildID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guild %s: %w", guildID, err)
	}
	return &g, nil
}

// List returns all guilds ordered by identifier.
func (gs *GuildStore) List(ctx context.Context) ([]*domain.Guild, error) {
	rows, err := gs.store.db.QueryContext(ctx, `
		SELECT guild_id, log_channel_id, log_scope, last_updated_time, joined_at
		FROM guilds ORDER BY guild_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list guilds: %w", err)
	}
	defer rows.Close()

	var guilds []*domain.Guild
	for rows.Next() {
		var g domain.Guild
		if err := rows.Scan(&g.GuildID, &g.LogChannelID, &g.LogScope, &g.LastUpdatedTime, &g.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan guild: %w", err)
		}
		guilds = append(guilds, &g)
	}
	return guilds, rows.Err()
}
