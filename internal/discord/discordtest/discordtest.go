// Package discordtest provides an in-memory discord.Platform for tests.
package discordtest

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/lherron/queuebot/internal/discord"
)

// Platform is an in-memory discord.Platform. The zero value is not usable;
// call New.
type Platform struct {
	mu       sync.Mutex
	guilds   map[string]discord.Guild
	channels map[string]discord.Channel
	messages map[string]map[string]discord.OutgoingMessage
	nextID   int

	// Fail* inject errors into the matching operation when set.
	FailGuilds error
	FailSend   error
	FailDelete error

	// GuildCalls counts single-guild lookups.
	GuildCalls int
}

// New returns an empty platform.
func New() *Platform {
	return &Platform{
		guilds:   make(map[string]discord.Guild),
		channels: make(map[string]discord.Channel),
		messages: make(map[string]map[string]discord.OutgoingMessage),
		nextID:   1000,
	}
}

// AddGuild registers a guild.
func (p *Platform) AddGuild(id, name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.guilds[id] = discord.Guild{ID: id, Name: name}
}

// AddChannel registers a channel of guildID.
func (p *Platform) AddChannel(guildID, id, name string, typ discord.ChannelType) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels[id] = discord.Channel{ID: id, GuildID: guildID, Name: name, Type: typ}
}

// AddMessage places an existing message in a channel.
func (p *Platform) AddMessage(channelID, messageID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.messages[channelID] == nil {
		p.messages[channelID] = make(map[string]discord.OutgoingMessage)
	}
	p.messages[channelID][messageID] = discord.OutgoingMessage{}
}

// Messages returns the IDs of the messages currently in a channel, sorted.
func (p *Platform) Messages(channelID string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var ids []string
	for id := range p.messages[channelID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Sent returns the message with messageID in channelID.
func (p *Platform) Sent(channelID, messageID string) (discord.OutgoingMessage, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.messages[channelID][messageID]
	return m, ok
}

func (p *Platform) Guilds(ctx context.Context) ([]discord.Guild, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailGuilds != nil {
		return nil, p.FailGuilds
	}
	var out []discord.Guild
	for _, g := range p.guilds {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (p *Platform) Guild(ctx context.Context, guildID string) (discord.Guild, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.GuildCalls++
	g, ok := p.guilds[guildID]
	if !ok {
		return discord.Guild{}, fmt.Errorf("guild %s: %w", guildID, discord.ErrNotFound)
	}
	return g, nil
}

func (p *Platform) Channel(ctx context.Context, channelID string) (discord.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.channels[channelID]
	if !ok {
		return discord.Channel{}, fmt.Errorf("channel %s: %w", channelID, discord.ErrNotFound)
	}
	return c, nil
}

func (p *Platform) SendMessage(ctx context.Context, channelID string, msg discord.OutgoingMessage) (discord.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailSend != nil {
		return discord.Message{}, p.FailSend
	}
	if _, ok := p.channels[channelID]; !ok {
		return discord.Message{}, fmt.Errorf("channel %s: %w", channelID, discord.ErrNotFound)
	}
	p.nextID++
	id := strconv.Itoa(p.nextID)
	if p.messages[channelID] == nil {
		p.messages[channelID] = make(map[string]discord.OutgoingMessage)
	}
	p.messages[channelID][id] = msg
	return discord.Message{ID: id, ChannelID: channelID}, nil
}

func (p *Platform) FetchMessage(ctx context.Context, channelID, messageID string) (discord.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.messages[channelID][messageID]; !ok {
		return discord.Message{}, fmt.Errorf("message %s: %w", messageID, discord.ErrNotFound)
	}
	return discord.Message{ID: messageID, ChannelID: channelID}, nil
}

func (p *Platform) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailDelete != nil {
		return p.FailDelete
	}
	if _, ok := p.messages[channelID][messageID]; !ok {
		return fmt.Errorf("message %s: %w", messageID, discord.ErrNotFound)
	}
	delete(p.messages[channelID], messageID)
	return nil
}

var _ discord.Platform = (*Platform)(nil)
