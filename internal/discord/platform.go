// Package discord adapts the remote chat platform to the small surface the
// bot core needs: guild and channel lookup and message send, fetch and
// delete.
package discord

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a guild, channel or message does not exist
// on the platform or is not visible to the bot.
var ErrNotFound = errors.New("discord: not found")

// ChannelType mirrors the platform channel type codes the bot cares about.
type ChannelType int

const (
	ChannelTypeText       ChannelType = 0
	ChannelTypeVoice      ChannelType = 2
	ChannelTypeCategory   ChannelType = 4
	ChannelTypeNews       ChannelType = 5
	ChannelTypeStageVoice ChannelType = 13
)

// Guild is a live guild handle.
type Guild struct {
	ID   string
	Name string
}

// Channel is a live channel handle.
type Channel struct {
	ID      string
	GuildID string
	Name    string
	Type    ChannelType
}

// IsVoiceBased reports whether members can connect to the channel.
func (c Channel) IsVoiceBased() bool {
	return c.Type == ChannelTypeVoice || c.Type == ChannelTypeStageVoice
}

// Embed is a rich message block.
type Embed struct {
	Title       string
	Description string
	Color       int
	Fields      []EmbedField
	Footer      string
}

// EmbedField is one titled section of an embed.
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// OutgoingMessage is a message to send.
type OutgoingMessage struct {
	Content string
	Embeds  []Embed
	// SuppressMentions keeps rendered mentions from pinging users.
	SuppressMentions bool
}

// Message is a sent message.
type Message struct {
	ID        string
	ChannelID string
}

// Platform is the remote chat platform.
type Platform interface {
	// Guilds lists every guild the bot is in, bypassing any cache.
	Guilds(ctx context.Context) ([]Guild, error)
	Guild(ctx context.Context, guildID string) (Guild, error)
	Channel(ctx context.Context, channelID string) (Channel, error)
	SendMessage(ctx context.Context, channelID string, msg OutgoingMessage) (Message, error)
	FetchMessage(ctx context.Context, channelID, messageID string) (Message, error)
	DeleteMessage(ctx context.Context, channelID, messageID string) error
}
