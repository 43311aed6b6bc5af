package discord

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// Resolver maps legacy identifiers to live guilds and channels. A missing
// entity is reported as ok == false, never as an error.
type Resolver struct {
	platform Platform
	log      logrus.FieldLogger

	known map[string]Guild
}

// NewResolver creates a Resolver over platform.
func NewResolver(platform Platform, log logrus.FieldLogger) *Resolver {
	return &Resolver{platform: platform, log: log.WithField("component", "resolver")}
}

// Prefetch loads the full guild list once. Later Guild calls answer
// not-found for guilds outside the list without a remote round trip.
// A failed prefetch only logs; lookups then go to the platform one by one.
func (r *Resolver) Prefetch(ctx context.Context) {
	guilds, err := r.platform.Guilds(ctx)
	if err != nil {
		r.log.WithError(err).Warn("guild prefetch failed, resolving guilds individually")
		return
	}
	r.known = make(map[string]Guild, len(guilds))
	for _, g := range guilds {
		r.known[g.ID] = g
	}
	r.log.WithField("guilds", len(guilds)).Debug("prefetched guilds")
}

// Guild resolves a guild by identifier.
func (r *Resolver) Guild(ctx context.Context, guildID string) (Guild, bool, error) {
	if guildID == "" {
		return Guild{}, false, nil
	}
	if r.known != nil {
		if _, ok := r.known[guildID]; !ok {
			return Guild{}, false, nil
		}
	}
	g, err := r.platform.Guild(ctx, guildID)
	if errors.Is(err, ErrNotFound) {
		return Guild{}, false, nil
	}
	if err != nil {
		return Guild{}, false, err
	}
	return g, true, nil
}

// Channel resolves a channel of guild. Channels that exist but belong to
// another guild are treated as missing.
func (r *Resolver) Channel(ctx context.Context, guild Guild, channelID string) (Channel, bool, error) {
	if channelID == "" {
		return Channel{}, false, nil
	}
	c, err := r.platform.Channel(ctx, channelID)
	if errors.Is(err, ErrNotFound) {
		return Channel{}, false, nil
	}
	if err != nil {
		return Channel{}, false, err
	}
	if c.GuildID != "" && c.GuildID != guild.ID {
		return Channel{}, false, nil
	}
	return c, true, nil
}
