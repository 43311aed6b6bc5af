package migrate

import (
	"fmt"
	"strings"

	"github.com/lherron/queuebot/internal/domain"
	"github.com/lherron/queuebot/internal/legacy"
)

// TimestampType maps the legacy guild "timestamps" setting. Only the four
// known values map to a visible mode; everything else is Off.
func TimestampType(legacyValue string) domain.TimestampType {
	switch strings.TrimSpace(legacyValue) {
	case "date":
		return domain.TimestampDate
	case "time":
		return domain.TimestampTime
	case "date+time":
		return domain.TimestampDateAndTime
	case "relative":
		return domain.TimestampRelative
	default:
		return domain.TimestampOff
	}
}

// UpdateType maps the legacy guild msg_mode: 1 edits in place, 2 replaces
// the message, anything else posts a new one.
func UpdateType(msgMode string) domain.DisplayUpdateType {
	n, err := legacy.ParseInt(msgMode, 0)
	if err != nil {
		return domain.DisplayUpdateNew
	}
	switch n {
	case 1:
		return domain.DisplayUpdateEdit
	case 2:
		return domain.DisplayUpdateReplace
	default:
		return domain.DisplayUpdateNew
	}
}

// LogScope maps the legacy logging level flag. A disabled level leaves the
// scope unset.
func LogScope(level string) *domain.Scope {
	if !legacy.ParseFlag(level) {
		return nil
	}
	s := domain.ScopeAll
	return &s
}

// DisplayButtons maps the legacy hide_button flag.
func DisplayButtons(hideButton string) domain.Scope {
	if legacy.ParseFlag(hideButton) {
		return domain.ScopeNone
	}
	return domain.ScopeAll
}

// MemberDisplay maps the legacy disable_mentions flag.
func MemberDisplay(disableMentions string) domain.MemberDisplayType {
	if legacy.ParseFlag(disableMentions) {
		return domain.MemberDisplayPlaintext
	}
	return domain.MemberDisplayMention
}

// PriorityOrder maps a legacy is_priority flag to a rank.
func PriorityOrder(isPriority string) *int64 {
	if !legacy.ParseFlag(isPriority) {
		return nil
	}
	p := domain.DefaultPriorityOrder
	return &p
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// buildQueue translates a legacy queue channel row. Guild-wide legacy
// settings (update mode, mentions, notifications, timestamps) become
// per-queue settings.
func buildQueue(guildID, name string, lg *legacy.QueueGuild, lq *legacy.QueueChannel) (*domain.Queue, error) {
	pullBatchSize, err := legacy.ParseInt(lq.PullNum, 1)
	if err != nil {
		return nil, fmt.Errorf("pull_num: %w", err)
	}
	if pullBatchSize < 1 {
		pullBatchSize = 1
	}
	grace, err := legacy.ParseInt(lq.GracePeriod, 0)
	if err != nil {
		return nil, fmt.Errorf("grace_period: %w", err)
	}

	var size *int64
	if strings.TrimSpace(lq.MaxMembers) != "" {
		n, err := legacy.ParseInt(lq.MaxMembers, 0)
		if err != nil {
			return nil, fmt.Errorf("max_members: %w", err)
		}
		size = &n
	}

	var header *string
	if strings.TrimSpace(lq.Header) != "" {
		header = &lq.Header
	}

	return &domain.Queue{
		GuildID:             guildID,
		Name:                name,
		AutopullToggle:      legacy.ParseFlag(lq.AutoFill),
		Color:               domain.ColorOrDefault(lq.Color),
		DisplayButtons:      DisplayButtons(lq.HideButton),
		DisplayUpdateType:   UpdateType(lg.MsgMode),
		Header:              header,
		LockToggle:          legacy.ParseFlag(lq.IsLocked),
		MemberDisplayType:   MemberDisplay(lg.DisableMentions),
		NotificationsToggle: !legacy.ParseFlag(lg.DisableNotifications),
		PullBatchSize:       pullBatchSize,
		RejoinGracePeriod:   grace,
		RoleInQueueID:       optional(lq.RoleID),
		Size:                size,
		TimestampType:       TimestampType(lg.Timestamps),
	}, nil
}
