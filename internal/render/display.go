package render

import (
	"fmt"
	"strings"

	"github.com/lherron/queuebot/internal/discord"
	"github.com/lherron/queuebot/internal/domain"
)

// maxDescription is the platform limit on embed descriptions.
const maxDescription = 4096

// QueueDisplay renders the display message of a queue with its members in
// position order.
func QueueDisplay(q *domain.Queue, members []*domain.Member) discord.OutgoingMessage {
	var b strings.Builder
	if q.Header != nil && *q.Header != "" {
		b.WriteString(*q.Header)
		b.WriteString("\n\n")
	}

	if len(members) == 0 {
		b.WriteString("No members.")
	}
	for i, m := range members {
		line := memberLine(i+1, q, m)
		if b.Len()+len(line)+1 > maxDescription {
			fmt.Fprintf(&b, "... and %d more", len(members)-i)
			break
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	title := q.Name
	if q.LockToggle {
		title += " (locked)"
	}

	return discord.OutgoingMessage{
		Embeds: []discord.Embed{{
			Title:       title,
			Description: strings.TrimRight(b.String(), "\n"),
			Color:       q.Color.Value(),
			Footer:      sizeFooter(q, len(members)),
		}},
		SuppressMentions: true,
	}
}

func memberLine(pos int, q *domain.Queue, m *domain.Member) string {
	var b strings.Builder
	fmt.Fprintf(&b, "`%d` ", pos)
	if m.PriorityOrder != nil {
		b.WriteString("★ ")
	}
	if q.MemberDisplayType == domain.MemberDisplayPlaintext {
		b.WriteString(m.UserID)
	} else {
		fmt.Fprintf(&b, "<@%s>", m.UserID)
	}
	if ts := Timestamp(q.TimestampType, m.JoinTime); ts != "" {
		b.WriteString(" ")
		b.WriteString(ts)
	}
	if m.Message != nil && *m.Message != "" {
		fmt.Fprintf(&b, " -- %s", *m.Message)
	}
	return b.String()
}

// Timestamp renders an epoch-millisecond time as a platform timestamp tag.
// TimestampOff renders nothing.
func Timestamp(t domain.TimestampType, ms int64) string {
	sec := ms / 1000
	switch t {
	case domain.TimestampDate:
		return fmt.Sprintf("<t:%d:d>", sec)
	case domain.TimestampTime:
		return fmt.Sprintf("<t:%d:t>", sec)
	case domain.TimestampDateAndTime:
		return fmt.Sprintf("<t:%d:f>", sec)
	case domain.TimestampRelative:
		return fmt.Sprintf("<t:%d:R>", sec)
	default:
		return ""
	}
}

func sizeFooter(q *domain.Queue, n int) string {
	if q.Size != nil {
		return fmt.Sprintf("%d/%d members", n, *q.Size)
	}
	if n == 1 {
		return "1 member"
	}
	return fmt.Sprintf("%d members", n)
}
