package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

// Session implements Platform over a discordgo REST session.
type Session struct {
	s *discordgo.Session
}

// NewSession creates a bot session for token. The gateway is not opened.
func NewSession(token string) (*Session, error) {
	if token == "" {
		return nil, errors.New("discord token is required")
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	return &Session{s: s}, nil
}

// NewSessionFrom wraps an existing discordgo session.
func NewSessionFrom(s *discordgo.Session) *Session {
	return &Session{s: s}
}

// Raw returns the underlying discordgo session.
func (d *Session) Raw() *discordgo.Session {
	return d.s
}

// Open connects to the gateway.
func (d *Session) Open() error {
	return d.s.Open()
}

// Close disconnects from the gateway.
func (d *Session) Close() error {
	return d.s.Close()
}

// Guilds pages through every guild of the bot user.
func (d *Session) Guilds(ctx context.Context) ([]Guild, error) {
	var (
		guilds []Guild
		after  string
	)
	for {
		page, err := d.s.UserGuilds(200, "", after, false, discordgo.WithContext(ctx))
		if err != nil {
			return nil, MapError(err)
		}
		for _, g := range page {
			guilds = append(guilds, Guild{ID: g.ID, Name: g.Name})
		}
		if len(page) < 200 {
			return guilds, nil
		}
		after = page[len(page)-1].ID
	}
}

func (d *Session) Guild(ctx context.Context, guildID string) (Guild, error) {
	g, err := d.s.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return Guild{}, MapError(err)
	}
	return Guild{ID: g.ID, Name: g.Name}, nil
}

func (d *Session) Channel(ctx context.Context, channelID string) (Channel, error) {
	c, err := d.s.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return Channel{}, MapError(err)
	}
	return Channel{ID: c.ID, GuildID: c.GuildID, Name: c.Name, Type: ChannelType(c.Type)}, nil
}

func (d *Session) SendMessage(ctx context.Context, channelID string, msg OutgoingMessage) (Message, error) {
	send := &discordgo.MessageSend{Content: msg.Content}
	for _, e := range msg.Embeds {
		embed := &discordgo.MessageEmbed{
			Title:       e.Title,
			Description: e.Description,
			Color:       e.Color,
		}
		for _, f := range e.Fields {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
		}
		if e.Footer != "" {
			embed.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
		}
		send.Embeds = append(send.Embeds, embed)
	}
	if msg.SuppressMentions {
		send.AllowedMentions = &discordgo.MessageAllowedMentions{}
	}

	m, err := d.s.ChannelMessageSendComplex(channelID, send, discordgo.WithContext(ctx))
	if err != nil {
		return Message{}, MapError(err)
	}
	return Message{ID: m.ID, ChannelID: m.ChannelID}, nil
}

func (d *Session) FetchMessage(ctx context.Context, channelID, messageID string) (Message, error) {
	m, err := d.s.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return Message{}, MapError(err)
	}
	return Message{ID: m.ID, ChannelID: m.ChannelID}, nil
}

func (d *Session) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return MapError(d.s.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)))
}

// MapError turns "unknown entity" REST responses into ErrNotFound.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		if restErr.Message != nil {
			switch restErr.Message.Code {
			case discordgo.ErrCodeUnknownChannel, discordgo.ErrCodeUnknownGuild, discordgo.ErrCodeUnknownMessage:
				return fmt.Errorf("%w: %w", ErrNotFound, err)
			}
		}
		if restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		}
	}
	return err
}
