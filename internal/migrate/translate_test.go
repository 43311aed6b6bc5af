package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lherron/queuebot/internal/domain"
	"github.com/lherron/queuebot/internal/legacy"
)

func TestTimestampTypeIsTotal(t *testing.T) {
	tests := map[string]domain.TimestampType{
		"date":      domain.TimestampDate,
		"time":      domain.TimestampTime,
		"date+time": domain.TimestampDateAndTime,
		"relative":  domain.TimestampRelative,
		"":          domain.TimestampOff,
		"undefined": domain.TimestampOff,
		"off":       domain.TimestampOff,
		"DATE":      domain.TimestampOff,
	}
	for in, want := range tests {
		assert.Equal(t, want, TimestampType(in), "input %q", in)
	}
}

func TestUpdateType(t *testing.T) {
	assert.Equal(t, domain.DisplayUpdateEdit, UpdateType("1"))
	assert.Equal(t, domain.DisplayUpdateReplace, UpdateType("2"))
	assert.Equal(t, domain.DisplayUpdateNew, UpdateType("3"))
	assert.Equal(t, domain.DisplayUpdateNew, UpdateType(""))
	assert.Equal(t, domain.DisplayUpdateNew, UpdateType("edit"))
}

func TestFlagTranslations(t *testing.T) {
	assert.Equal(t, domain.ScopeNone, DisplayButtons("true"))
	assert.Equal(t, domain.ScopeAll, DisplayButtons("false"))
	assert.Equal(t, domain.MemberDisplayPlaintext, MemberDisplay("1"))
	assert.Equal(t, domain.MemberDisplayMention, MemberDisplay(""))

	require.NotNil(t, LogScope("true"))
	assert.Equal(t, domain.ScopeAll, *LogScope("true"))
	assert.Nil(t, LogScope("false"))

	require.NotNil(t, PriorityOrder("t"))
	assert.Equal(t, domain.DefaultPriorityOrder, *PriorityOrder("t"))
	assert.Nil(t, PriorityOrder(""))
}

func TestBuildQueueDefaults(t *testing.T) {
	q, err := buildQueue("1", "lobby", &legacy.QueueGuild{}, &legacy.QueueChannel{Color: "no such colour", Header: "  "})
	require.NoError(t, err)

	assert.Equal(t, int64(1), q.PullBatchSize)
	assert.Equal(t, int64(0), q.RejoinGracePeriod)
	assert.Nil(t, q.Size)
	assert.Nil(t, q.Header)
	assert.Equal(t, domain.DefaultColor, q.Color)
	assert.Equal(t, domain.ScopeAll, q.DisplayButtons)
	assert.Equal(t, domain.DisplayUpdateNew, q.DisplayUpdateType)
	assert.Equal(t, domain.MemberDisplayMention, q.MemberDisplayType)
	assert.Equal(t, domain.TimestampOff, q.TimestampType)
	assert.True(t, q.NotificationsToggle)
}

func TestBuildQueueKeepsHeaderVerbatim(t *testing.T) {
	q, err := buildQueue("1", "lobby", &legacy.QueueGuild{}, &legacy.QueueChannel{Header: " Welcome! "})
	require.NoError(t, err)
	require.NotNil(t, q.Header)
	assert.Equal(t, " Welcome! ", *q.Header)
}

func TestBuildQueueRejectsBadNumbers(t *testing.T) {
	for _, lq := range []*legacy.QueueChannel{
		{PullNum: "two"},
		{GracePeriod: "1.5"},
		{MaxMembers: "lots"},
	} {
		_, err := buildQueue("1", "lobby", &legacy.QueueGuild{}, lq)
		assert.Error(t, err, "%+v", *lq)
	}
}

func TestBuildQueueClampsPullBatchSize(t *testing.T) {
	q, err := buildQueue("1", "lobby", &legacy.QueueGuild{}, &legacy.QueueChannel{PullNum: "0"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), q.PullBatchSize)
}

func TestBuildMember(t *testing.T) {
	q := &domain.Queue{ID: 7, GuildID: "1"}

	m, err := buildMember(q, &legacy.QueueMember{MemberID: "100", CreatedAt: "1700000000000", DisplayTime: "2023-11-14T22:13:21Z"})
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), m.PositionTime)
	assert.Equal(t, int64(1700000001000), m.JoinTime)
	assert.Nil(t, m.Message)
	assert.Nil(t, m.PriorityOrder)

	_, err = buildMember(q, &legacy.QueueMember{MemberID: "100"})
	assert.Error(t, err)
	_, err = buildMember(q, &legacy.QueueMember{MemberID: "100", CreatedAt: "1700000000000", DisplayTime: "soon"})
	assert.Error(t, err)
}
