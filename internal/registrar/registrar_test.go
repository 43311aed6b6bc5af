package registrar

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lherron/queuebot/internal/discord"
	"github.com/lherron/queuebot/internal/discord/discordtest"
	"github.com/lherron/queuebot/internal/domain"
	"github.com/lherron/queuebot/internal/store"
	"github.com/lherron/queuebot/internal/testutil"
)

func setup(t *testing.T) (*Registrar, *store.Store, *discordtest.Platform, *domain.Queue) {
	t.Helper()
	s := store.New(testutil.TempDB(t))
	platform := discordtest.New()
	platform.AddGuild("1", "guild")
	platform.AddChannel("1", "20", "display-a", discord.ChannelTypeText)
	platform.AddChannel("1", "21", "display-b", discord.ChannelTypeText)

	var q *domain.Queue
	err := s.WithTx(context.Background(), func(tx *store.Tx) error {
		if _, err := tx.InsertGuild(&domain.Guild{GuildID: "1"}); err != nil {
			return err
		}
		var err error
		q, err = tx.InsertQueue(&domain.Queue{
			GuildID:           "1",
			Name:              "lobby",
			Color:             domain.DefaultColor,
			DisplayButtons:    domain.ScopeAll,
			DisplayUpdateType: domain.DisplayUpdateEdit,
			MemberDisplayType: domain.MemberDisplayMention,
			PullBatchSize:     1,
			TimestampType:     domain.TimestampOff,
		})
		if err != nil {
			return err
		}
		_, err = tx.InsertMember(&domain.Member{GuildID: "1", QueueID: q.ID, UserID: "100", JoinTime: 1, PositionTime: 1})
		return err
	})
	require.NoError(t, err)

	log, _ := test.NewNullLogger()
	return New(s, platform, log), s, platform, q
}

func TestOperationsRequireInit(t *testing.T) {
	r, _, _, q := setup(t)
	ctx := context.Background()

	_, err := r.Store(ctx, q, "20")
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = r.Unstore(ctx, q.ID, UnstoreOptions{})
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestStoreThenUnstore(t *testing.T) {
	r, s, platform, q := setup(t)
	ctx := context.Background()
	require.NoError(t, r.Init(ctx))

	d, err := r.Store(ctx, q, "20")
	require.NoError(t, err)
	require.NotNil(t, d)
	require.NotNil(t, d.LastMessageID)
	assert.Equal(t, []string{*d.LastMessageID}, platform.Messages("20"))
	assert.Equal(t, 1, s.Pending.Len())

	sent, ok := platform.Sent("20", *d.LastMessageID)
	require.True(t, ok)
	require.Len(t, sent.Embeds, 1)
	assert.Equal(t, "lobby", sent.Embeds[0].Title)
	assert.Contains(t, sent.Embeds[0].Description, "<@100>")

	n, err := r.Unstore(ctx, q.ID, UnstoreOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	displays, err := s.Displays.List(ctx, q.ID, "")
	require.NoError(t, err)
	assert.Empty(t, displays)
	assert.Empty(t, platform.Messages("20"))
}

func TestStoreTwiceUpdatesRecord(t *testing.T) {
	r, s, platform, q := setup(t)
	ctx := context.Background()
	require.NoError(t, r.Init(ctx))

	first, err := r.Store(ctx, q, "20")
	require.NoError(t, err)
	second, err := r.Store(ctx, q, "20")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.NotEqual(t, *first.LastMessageID, *second.LastMessageID)

	displays, err := s.Displays.List(ctx, q.ID, "")
	require.NoError(t, err)
	require.Len(t, displays, 1)
	assert.Equal(t, *second.LastMessageID, *displays[0].LastMessageID)
	assert.Equal(t, []string{*second.LastMessageID}, platform.Messages("20"))

	_, err = r.Unstore(ctx, q.ID, UnstoreOptions{})
	require.NoError(t, err)
	assert.Empty(t, platform.Messages("20"))
}

func TestStoreReplaceToleratesMissingOldMessage(t *testing.T) {
	r, s, platform, q := setup(t)
	ctx := context.Background()
	require.NoError(t, r.Init(ctx))

	first, err := r.Store(ctx, q, "20")
	require.NoError(t, err)
	require.NoError(t, platform.DeleteMessage(ctx, "20", *first.LastMessageID))

	second, err := r.Store(ctx, q, "20")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, []string{*second.LastMessageID}, platform.Messages("20"))

	displays, err := s.Displays.List(ctx, q.ID, "20")
	require.NoError(t, err)
	require.Len(t, displays, 1)
}

func TestStoreSendFailureRecordsNothing(t *testing.T) {
	r, s, platform, q := setup(t)
	ctx := context.Background()
	require.NoError(t, r.Init(ctx))
	platform.FailSend = errors.New("missing permissions")

	d, err := r.Store(ctx, q, "20")
	require.NoError(t, err)
	assert.Nil(t, d)

	displays, err := s.Displays.List(ctx, q.ID, "")
	require.NoError(t, err)
	assert.Empty(t, displays)
}

func TestUnstoreOneChannelKeepingMessage(t *testing.T) {
	r, s, platform, q := setup(t)
	ctx := context.Background()
	require.NoError(t, r.Init(ctx))

	_, err := r.Store(ctx, q, "20")
	require.NoError(t, err)
	_, err = r.Store(ctx, q, "21")
	require.NoError(t, err)

	n, err := r.Unstore(ctx, q.ID, UnstoreOptions{DisplayChannelID: "21", KeepMessage: true})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, platform.Messages("21"), 1)

	displays, err := s.Displays.List(ctx, q.ID, "")
	require.NoError(t, err)
	require.Len(t, displays, 1)
	assert.Equal(t, "20", displays[0].DisplayChannelID)
}

func TestUnstoreToleratesRemoteFailures(t *testing.T) {
	r, s, platform, q := setup(t)
	ctx := context.Background()
	require.NoError(t, r.Init(ctx))

	d, err := r.Store(ctx, q, "20")
	require.NoError(t, err)
	require.NoError(t, platform.DeleteMessage(ctx, "20", *d.LastMessageID))
	_, err = r.Store(ctx, q, "21")
	require.NoError(t, err)
	platform.FailDelete = errors.New("forbidden")

	n, err := r.Unstore(ctx, q.ID, UnstoreOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	displays, err := s.Displays.List(ctx, q.ID, "")
	require.NoError(t, err)
	assert.Empty(t, displays)
}

func TestInitMovesEmbedIDs(t *testing.T) {
	r, s, _, q := setup(t)
	ctx := context.Background()
	database := s.DB()

	_, err := database.Exec(`ALTER TABLE displays ADD COLUMN embed_ids TEXT`)
	require.NoError(t, err)
	_, err = database.Exec(`
		INSERT INTO displays (guild_id, queue_id, display_channel_id, embed_ids) VALUES
			('1', ?, '20', '["900","901"]'),
			('1', ?, '21', '{902,903}')
	`, q.ID, q.ID)
	require.NoError(t, err)

	require.NoError(t, r.Init(ctx))

	has, err := database.HasColumn("displays", "embed_ids")
	require.NoError(t, err)
	assert.False(t, has)

	displays, err := s.Displays.List(ctx, q.ID, "")
	require.NoError(t, err)
	require.Len(t, displays, 2)
	got := map[string]string{}
	for _, d := range displays {
		require.NotNil(t, d.LastMessageID)
		got[d.DisplayChannelID] = *d.LastMessageID
	}
	assert.Equal(t, map[string]string{"20": "900", "21": "902"}, got)

	// Second run finds no deprecated column and changes nothing.
	require.NoError(t, r.Init(ctx))
	displays, err = s.Displays.List(ctx, q.ID, "")
	require.NoError(t, err)
	assert.Len(t, displays, 2)
}

func TestFirstEmbedID(t *testing.T) {
	tests := map[string]string{
		`["900","901"]`: "900",
		`{902,903}`:     "902",
		`904, 905`:      "904",
		`906`:           "906",
		`[]`:            "",
		``:              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, FirstEmbedID(in), "input %q", in)
	}
}
