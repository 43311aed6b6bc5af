package legacy

// Legacy export rows. Every field is kept as exported text; conversion to
// typed values happens during reconciliation so one malformed value only
// affects its own row.

// QueueGuild is a row of queue_guilds.csv.
type QueueGuild struct {
	GuildID              string `csv:"guild_id"`
	DisableMentions      string `csv:"disable_mentions"`
	DisableNotifications string `csv:"disable_notifications"`
	DisableRoles         string `csv:"disable_roles"`
	LoggingChannelID     string `csv:"logging_channel_id"`
	LoggingChannelLevel  string `csv:"logging_channel_level"`
	MsgMode              string `csv:"msg_mode"`
	Timestamps           string `csv:"timestamps"`
}

func (r *QueueGuild) normalize() {
	r.GuildID = NormalizeID(r.GuildID)
	r.LoggingChannelID = NormalizeID(r.LoggingChannelID)
}

// QueueChannel is a row of queue_channels.csv.
type QueueChannel struct {
	QueueChannelID  string `csv:"queue_channel_id"`
	GuildID         string `csv:"guild_id"`
	AutoFill        string `csv:"auto_fill"`
	Color           string `csv:"color"`
	GracePeriod     string `csv:"grace_period"`
	Header          string `csv:"header"`
	HideButton      string `csv:"hide_button"`
	IsLocked        string `csv:"is_locked"`
	MaxMembers      string `csv:"max_members"`
	PullNum         string `csv:"pull_num"`
	RoleID          string `csv:"role_id"`
	TargetChannelID string `csv:"target_channel_id"`
}

func (r *QueueChannel) normalize() {
	r.QueueChannelID = NormalizeID(r.QueueChannelID)
	r.GuildID = NormalizeID(r.GuildID)
	r.RoleID = NormalizeID(r.RoleID)
	r.TargetChannelID = NormalizeID(r.TargetChannelID)
}

// DisplayChannel is a row of display_channels.csv.
type DisplayChannel struct {
	QueueChannelID   string `csv:"queue_channel_id"`
	DisplayChannelID string `csv:"display_channel_id"`
	MessageID        string `csv:"message_id"`
}

func (r *DisplayChannel) normalize() {
	r.QueueChannelID = NormalizeID(r.QueueChannelID)
	r.DisplayChannelID = NormalizeID(r.DisplayChannelID)
	r.MessageID = NormalizeID(r.MessageID)
}

// QueueMember is a row of queue_members.csv.
type QueueMember struct {
	ChannelID       string `csv:"channel_id"`
	MemberID        string `csv:"member_id"`
	PersonalMessage string `csv:"personal_message"`
	CreatedAt       string `csv:"created_at"`
	DisplayTime     string `csv:"display_time"`
	IsPriority      string `csv:"is_priority"`
}

func (r *QueueMember) normalize() {
	r.ChannelID = NormalizeID(r.ChannelID)
	r.MemberID = NormalizeID(r.MemberID)
}

// Schedule is a row of schedules.csv.
type Schedule struct {
	QueueChannelID string `csv:"queue_channel_id"`
	Command        string `csv:"command"`
	Schedule       string `csv:"schedule"`
	UTCOffset      string `csv:"utc_offset"`
}

func (r *Schedule) normalize() {
	r.QueueChannelID = NormalizeID(r.QueueChannelID)
}

// Priority is a row of priority.csv. Priority rows are guild scoped.
type Priority struct {
	GuildID      string `csv:"guild_id"`
	RoleMemberID string `csv:"role_member_id"`
	IsRole       string `csv:"is_role"`
}

func (r *Priority) normalize() {
	r.GuildID = NormalizeID(r.GuildID)
	r.RoleMemberID = NormalizeID(r.RoleMemberID)
}

// ListType discriminates black_white_list.csv rows.
type ListType int

const (
	Blacklist ListType = 0
	Whitelist ListType = 1
)

// BlackWhiteList is a row of black_white_list.csv.
type BlackWhiteList struct {
	QueueChannelID string `csv:"queue_channel_id"`
	RoleMemberID   string `csv:"role_member_id"`
	Type           string `csv:"type"`
	IsRole         string `csv:"is_role"`
}

func (r *BlackWhiteList) normalize() {
	r.QueueChannelID = NormalizeID(r.QueueChannelID)
	r.RoleMemberID = NormalizeID(r.RoleMemberID)
}

// ListType returns the parsed list discriminator. ok is false for values
// other than 0 and 1.
func (r *BlackWhiteList) ListType() (ListType, bool) {
	n, err := ParseInt(r.Type, -1)
	if err != nil {
		return 0, false
	}
	switch ListType(n) {
	case Blacklist, Whitelist:
		return ListType(n), true
	}
	return 0, false
}

// AdminPermission is a row of admin_permission.csv.
type AdminPermission struct {
	GuildID      string `csv:"guild_id"`
	RoleMemberID string `csv:"role_member_id"`
	IsRole       string `csv:"is_role"`
}

func (r *AdminPermission) normalize() {
	r.GuildID = NormalizeID(r.GuildID)
	r.RoleMemberID = NormalizeID(r.RoleMemberID)
}

// LastPulled is a row of last_pulled.csv. It has no counterpart in the
// current schema and is only counted.
type LastPulled struct {
	QueueChannelID string `csv:"queue_channel_id"`
	MemberID       string `csv:"member_id"`
	VoiceChannelID string `csv:"voice_channel_id"`
}

func (r *LastPulled) normalize() {
	r.QueueChannelID = NormalizeID(r.QueueChannelID)
	r.MemberID = NormalizeID(r.MemberID)
	r.VoiceChannelID = NormalizeID(r.VoiceChannelID)
}
