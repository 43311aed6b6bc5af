package legacy

import "sort"

// Recognised export file names.
const (
	FileAdminPermission = "admin_permission.csv"
	FileBlackWhiteList  = "black_white_list.csv"
	FileDisplayChannels = "display_channels.csv"
	FileLastPulled      = "last_pulled.csv"
	FilePriority        = "priority.csv"
	FileQueueChannels   = "queue_channels.csv"
	FileQueueGuilds     = "queue_guilds.csv"
	FileQueueMembers    = "queue_members.csv"
	FileSchedules       = "schedules.csv"
)

// Tables holds one legacy export. It is built once by Load and only read
// afterwards.
type Tables struct {
	Guilds          []*QueueGuild
	QueueChannels   []*QueueChannel
	DisplayChannels []*DisplayChannel
	Members         []*QueueMember
	Schedules       []*Schedule
	Priorities      []*Priority
	BlackWhiteLists []*BlackWhiteList
	Admins          []*AdminPermission
	LastPulled      []*LastPulled

	queuesByGuild      map[string][]*QueueChannel
	displaysByChannel  map[string][]*DisplayChannel
	membersByChannel   map[string][]*QueueMember
	schedulesByChannel map[string][]*Schedule
	listsByChannel     map[string][]*BlackWhiteList
	prioritiesByGuild  map[string][]*Priority
	adminsByGuild      map[string][]*AdminPermission
}

func groupBy[T any](rows []*T, key func(*T) string) map[string][]*T {
	m := make(map[string][]*T)
	for _, r := range rows {
		k := key(r)
		m[k] = append(m[k], r)
	}
	return m
}

// Index builds the correlation indexes. Load calls it; callers that
// assemble Tables by hand must call it before using the lookup methods.
func (t *Tables) Index() {
	t.queuesByGuild = groupBy(t.QueueChannels, func(r *QueueChannel) string { return r.GuildID })
	t.displaysByChannel = groupBy(t.DisplayChannels, func(r *DisplayChannel) string { return r.QueueChannelID })
	t.membersByChannel = groupBy(t.Members, func(r *QueueMember) string { return r.ChannelID })
	t.schedulesByChannel = groupBy(t.Schedules, func(r *Schedule) string { return r.QueueChannelID })
	t.listsByChannel = groupBy(t.BlackWhiteLists, func(r *BlackWhiteList) string { return r.QueueChannelID })
	t.prioritiesByGuild = groupBy(t.Priorities, func(r *Priority) string { return r.GuildID })
	t.adminsByGuild = groupBy(t.Admins, func(r *AdminPermission) string { return r.GuildID })
}

// QueuesOf returns the queue channels of a guild in export order.
func (t *Tables) QueuesOf(guildID string) []*QueueChannel { return t.queuesByGuild[guildID] }

// DisplaysOf returns the display rows of a queue channel.
func (t *Tables) DisplaysOf(channelID string) []*DisplayChannel {
	return t.displaysByChannel[channelID]
}

// MembersOf returns the member rows of a queue channel.
func (t *Tables) MembersOf(channelID string) []*QueueMember { return t.membersByChannel[channelID] }

// SchedulesOf returns the schedule rows of a queue channel.
func (t *Tables) SchedulesOf(channelID string) []*Schedule { return t.schedulesByChannel[channelID] }

// ListOf returns the black or white list rows of a queue channel. Rows
// with an unknown list type belong to neither list.
func (t *Tables) ListOf(channelID string, lt ListType) []*BlackWhiteList {
	var out []*BlackWhiteList
	for _, r := range t.listsByChannel[channelID] {
		if got, ok := r.ListType(); ok && got == lt {
			out = append(out, r)
		}
	}
	return out
}

// PrioritiesOf returns the priority rows of a guild.
func (t *Tables) PrioritiesOf(guildID string) []*Priority { return t.prioritiesByGuild[guildID] }

// AdminsOf returns the admin rows of a guild.
func (t *Tables) AdminsOf(guildID string) []*AdminPermission { return t.adminsByGuild[guildID] }

// Counts returns the number of rows loaded per export file.
func (t *Tables) Counts() map[string]int {
	return map[string]int{
		FileAdminPermission: len(t.Admins),
		FileBlackWhiteList:  len(t.BlackWhiteLists),
		FileDisplayChannels: len(t.DisplayChannels),
		FileLastPulled:      len(t.LastPulled),
		FilePriority:        len(t.Priorities),
		FileQueueChannels:   len(t.QueueChannels),
		FileQueueGuilds:     len(t.Guilds),
		FileQueueMembers:    len(t.Members),
		FileSchedules:       len(t.Schedules),
	}
}

// Empty reports whether no rows were loaded at all.
func (t *Tables) Empty() bool {
	for _, n := range t.Counts() {
		if n > 0 {
			return false
		}
	}
	return true
}

// FileNames returns the recognised export file names in sorted order.
func FileNames() []string {
	names := make([]string, 0, len(parsers))
	for name := range parsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
