package domain

// Scope controls who sees a guild feature such as logging or queue buttons.
type Scope string

const (
	ScopeNone  Scope = "None"
	ScopeAdmin Scope = "Admin"
	ScopeAll   Scope = "All"
)

// DisplayUpdateType controls how a display message is refreshed
type DisplayUpdateType string

const (
	DisplayUpdateEdit    DisplayUpdateType = "Edit"
	DisplayUpdateReplace DisplayUpdateType = "Replace"
	DisplayUpdateNew     DisplayUpdateType = "New"
)

// MemberDisplayType controls whether members are rendered as mentions
type MemberDisplayType string

const (
	MemberDisplayMention   MemberDisplayType = "Mention"
	MemberDisplayPlaintext MemberDisplayType = "Plaintext"
)

// TimestampType controls how join times are rendered on a display
type TimestampType string

const (
	TimestampOff         TimestampType = "Off"
	TimestampDate        TimestampType = "Date"
	TimestampTime        TimestampType = "Time"
	TimestampDateAndTime TimestampType = "DateAndTime"
	TimestampRelative    TimestampType = "Relative"
)

// ScheduleCommand is the queue action a schedule triggers
type ScheduleCommand string

const (
	ScheduleClear   ScheduleCommand = "clear"
	SchedulePull    ScheduleCommand = "pull"
	ScheduleShuffle ScheduleCommand = "shuffle"
	ScheduleShow    ScheduleCommand = "show"
)

// AccessKind discriminates queue access entries
type AccessKind string

const (
	AccessBlacklist AccessKind = "blacklist"
	AccessWhitelist AccessKind = "whitelist"
	AccessPriority  AccessKind = "priority"
)

// DefaultPriorityOrder is the rank given to prioritized members and subjects.
const DefaultPriorityOrder int64 = 5

// Guild is a remote chat server and its bot settings.
type Guild struct {
	GuildID         string  `json:"guild_id" db:"guild_id"`
	LogChannelID    *string `json:"log_channel_id,omitempty" db:"log_channel_id"`
	LogScope        *Scope  `json:"log_scope,omitempty" db:"log_scope"`
	LastUpdatedTime int64   `json:"last_updated_time" db:"last_updated_time"`
	JoinedAt        int64   `json:"joined_at" db:"joined_at"`
}

// Queue is a named waiting line bound to a channel of a guild.
type Queue struct {
	ID                  int64             `json:"id" db:"id"`
	GuildID             string            `json:"guild_id" db:"guild_id"`
	Name                string            `json:"name" db:"name"`
	AutopullToggle      bool              `json:"autopull_toggle" db:"autopull_toggle"`
	Color               Color             `json:"color" db:"color"`
	DisplayButtons      Scope             `json:"display_buttons" db:"display_buttons"`
	DisplayUpdateType   DisplayUpdateType `json:"display_update_type" db:"display_update_type"`
	Header              *string           `json:"header,omitempty" db:"header"`
	LockToggle          bool              `json:"lock_toggle" db:"lock_toggle"`
	MemberDisplayType   MemberDisplayType `json:"member_display_type" db:"member_display_type"`
	NotificationsToggle bool              `json:"notifications_toggle" db:"notifications_toggle"`
	PullBatchSize       int64             `json:"pull_batch_size" db:"pull_batch_size"`
	RejoinGracePeriod   int64             `json:"rejoin_grace_period" db:"rejoin_grace_period"` // seconds
	RoleInQueueID       *string           `json:"role_in_queue_id,omitempty" db:"role_in_queue_id"`
	Size                *int64            `json:"size,omitempty" db:"size"`
	TimestampType       TimestampType     `json:"timestamp_type" db:"timestamp_type"`
}

// VoiceLink attaches a queue to a voice-capable source channel.
type VoiceLink struct {
	ID                   int64   `json:"id" db:"id"`
	GuildID              string  `json:"guild_id" db:"guild_id"`
	QueueID              int64   `json:"queue_id" db:"queue_id"`
	SourceChannelID      string  `json:"source_channel_id" db:"source_channel_id"`
	DestinationChannelID *string `json:"destination_channel_id,omitempty" db:"destination_channel_id"`
}

// Display is a rendered queue message in a channel.
type Display struct {
	ID               int64   `json:"id" db:"id"`
	GuildID          string  `json:"guild_id" db:"guild_id"`
	QueueID          int64   `json:"queue_id" db:"queue_id"`
	DisplayChannelID string  `json:"display_channel_id" db:"display_channel_id"`
	LastMessageID    *string `json:"last_message_id,omitempty" db:"last_message_id"`
}

// Member is a user waiting in a queue. Members are ordered by
// priority order first, then position time.
type Member struct {
	ID            int64   `json:"id" db:"id"`
	GuildID       string  `json:"guild_id" db:"guild_id"`
	QueueID       int64   `json:"queue_id" db:"queue_id"`
	UserID        string  `json:"user_id" db:"user_id"`
	Message       *string `json:"message,omitempty" db:"message"`
	JoinTime      int64   `json:"join_time" db:"join_time"`         // epoch ms
	PositionTime  int64   `json:"position_time" db:"position_time"` // epoch ms
	PriorityOrder *int64  `json:"priority_order,omitempty" db:"priority_order"`
}

// Schedule runs a queue command on a cron expression.
type Schedule struct {
	ID               int64           `json:"id" db:"id"`
	GuildID          string          `json:"guild_id" db:"guild_id"`
	QueueID          int64           `json:"queue_id" db:"queue_id"`
	Command          ScheduleCommand `json:"command" db:"command"`
	Cron             string          `json:"cron" db:"cron"`
	Timezone         *string         `json:"timezone,omitempty" db:"timezone"`
	MessageChannelID *string         `json:"message_channel_id,omitempty" db:"message_channel_id"`
	Reason           *string         `json:"reason,omitempty" db:"reason"`
}

// AccessEntry is a blacklist, whitelist or priority rule on a queue.
type AccessEntry struct {
	ID            int64      `json:"id" db:"id"`
	GuildID       string     `json:"guild_id" db:"guild_id"`
	QueueID       int64      `json:"queue_id" db:"queue_id"`
	Kind          AccessKind `json:"kind" db:"kind"`
	SubjectID     string     `json:"subject_id" db:"subject_id"`
	IsRole        bool       `json:"is_role" db:"is_role"`
	PriorityOrder *int64     `json:"priority_order,omitempty" db:"priority_order"`
}

// AdminPermission grants a role or member bot admin rights in a guild.
type AdminPermission struct {
	ID        int64  `json:"id" db:"id"`
	GuildID   string `json:"guild_id" db:"guild_id"`
	SubjectID string `json:"subject_id" db:"subject_id"`
	IsRole    bool   `json:"is_role" db:"is_role"`
}

// Event represents an entry in the event log
type Event struct {
	ID           int64   `json:"id" db:"id"`
	Timestamp    string  `json:"timestamp" db:"timestamp"`
	ResourceType string  `json:"resource_type" db:"resource_type"`
	ResourceID   *string `json:"resource_id,omitempty" db:"resource_id"`
	EventType    string  `json:"event_type" db:"event_type"`
	Payload      *string `json:"payload,omitempty" db:"payload"` // JSON
}
