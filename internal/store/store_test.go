package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/lherron/queuebot/internal/db"
	"github.com/lherron/queuebot/internal/domain"
)

func setupTestDB(t *testing.T) *db.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := database.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func seedQueue(t *testing.T, s *Store, guildID, name string) *domain.Queue {
	t.Helper()
	_, lookupErr := s.Guilds.Get(context.Background(), guildID)
	var q *domain.Queue
	err := s.WithTx(context.Background(), func(tx *Tx) error {
		if errors.Is(lookupErr, domain.ErrNotFound) {
			if _, err := tx.InsertGuild(&domain.Guild{GuildID: guildID}); err != nil {
				return err
			}
		}
		var err error
		q, err = tx.InsertQueue(newQueue(guildID, name))
		return err
	})
	if err != nil {
		t.Fatalf("seed queue: %v", err)
	}
	return q
}

func newQueue(guildID, name string) *domain.Queue {
	return &domain.Queue{
		GuildID:           guildID,
		Name:              name,
		Color:             domain.DefaultColor,
		DisplayButtons:    domain.ScopeAll,
		DisplayUpdateType: domain.DisplayUpdateEdit,
		MemberDisplayType: domain.MemberDisplayMention,
		PullBatchSize:     1,
		TimestampType:     domain.TimestampOff,
	}
}

func TestTx_InsertQueueConflict(t *testing.T) {
	s := New(setupTestDB(t))
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.InsertGuild(&domain.Guild{GuildID: "1"}); err != nil {
			return err
		}
		if _, err := tx.InsertQueue(newQueue("1", "general")); err != nil {
			return err
		}

		_, err := tx.InsertQueue(newQueue("1", "general"))
		if !errors.Is(err, domain.ErrConflict) {
			t.Errorf("duplicate queue name: got %v, want ErrConflict", err)
		}
		if IsFatal(err) {
			t.Errorf("conflict should not be fatal: %v", err)
		}

		// The transaction stays usable after a constraint failure.
		_, err = tx.InsertQueue(newQueue("1", "general (1)"))
		return err
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}

	queues, err := s.Queues.List(ctx, "1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(queues) != 2 {
		t.Fatalf("expected 2 queues, got %d", len(queues))
	}
	if queues[0].Name != "general" || queues[1].Name != "general (1)" {
		t.Errorf("unexpected names: %q, %q", queues[0].Name, queues[1].Name)
	}
}

func TestStore_WithTxRollsBack(t *testing.T) {
	s := New(setupTestDB(t))
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.InsertGuild(&domain.Guild{GuildID: "1"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if _, err := s.Guilds.Get(ctx, "1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("guild should not exist after rollback, got %v", err)
	}
}

func TestTx_InsertWithoutGuildFails(t *testing.T) {
	s := New(setupTestDB(t))

	err := s.WithTx(context.Background(), func(tx *Tx) error {
		_, err := tx.InsertQueue(newQueue("404", "orphan"))
		if err == nil {
			t.Error("expected foreign key failure")
		}
		if errors.Is(err, domain.ErrConflict) {
			t.Error("foreign key failure is not a conflict")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
}

func TestQueueStore_MembersOrdering(t *testing.T) {
	s := New(setupTestDB(t))
	ctx := context.Background()
	q := seedQueue(t, s, "1", "general")
	prio := domain.DefaultPriorityOrder

	err := s.WithTx(ctx, func(tx *Tx) error {
		members := []*domain.Member{
			{GuildID: "1", QueueID: q.ID, UserID: "early", JoinTime: 1, PositionTime: 1},
			{GuildID: "1", QueueID: q.ID, UserID: "late", JoinTime: 3, PositionTime: 3},
			{GuildID: "1", QueueID: q.ID, UserID: "vip", JoinTime: 5, PositionTime: 5, PriorityOrder: &prio},
		}
		for _, m := range members {
			if _, err := tx.InsertMember(m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}

	got, err := s.Queues.Members(ctx, q.ID)
	if err != nil {
		t.Fatalf("Members: %v", err)
	}
	want := []string{"vip", "early", "late"}
	if len(got) != len(want) {
		t.Fatalf("expected %d members, got %d", len(want), len(got))
	}
	for i, m := range got {
		if m.UserID != want[i] {
			t.Errorf("member %d = %s, want %s", i, m.UserID, want[i])
		}
	}
}

func TestDisplayStore_SaveAndDelete(t *testing.T) {
	s := New(setupTestDB(t))
	ctx := context.Background()
	q := seedQueue(t, s, "1", "general")

	first, second := "m1", "m2"
	d, err := s.Displays.Save(ctx, &domain.Display{GuildID: "1", QueueID: q.ID, DisplayChannelID: "100", LastMessageID: &first})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	again, err := s.Displays.Save(ctx, &domain.Display{GuildID: "1", QueueID: q.ID, DisplayChannelID: "100", LastMessageID: &second})
	if err != nil {
		t.Fatalf("Save again: %v", err)
	}
	if again.ID != d.ID {
		t.Errorf("re-saving the same channel should update in place: %d != %d", again.ID, d.ID)
	}
	if _, err := s.Displays.Save(ctx, &domain.Display{GuildID: "1", QueueID: q.ID, DisplayChannelID: "200"}); err != nil {
		t.Fatalf("Save second channel: %v", err)
	}

	list, err := s.Displays.List(ctx, q.ID, "100")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].LastMessageID == nil || *list[0].LastMessageID != "m2" {
		t.Fatalf("unexpected displays for channel 100: %+v", list)
	}

	removed, err := s.Displays.Delete(ctx, q.ID, "", false)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(removed) != 2 {
		t.Errorf("expected 2 removed displays, got %d", len(removed))
	}

	list, err = s.Displays.List(ctx, q.ID, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected no displays, got %d", len(list))
	}

	var events int
	if err := s.DB().QueryRow(`SELECT COUNT(*) FROM event_log WHERE resource_type = 'display'`).Scan(&events); err != nil {
		t.Fatalf("count events: %v", err)
	}
	if events != 5 {
		t.Errorf("expected 5 display events, got %d", events)
	}
}

func TestPendingGuildUpdates_Flush(t *testing.T) {
	s := New(setupTestDB(t))
	ctx := context.Background()
	seedQueue(t, s, "1", "general")

	at := time.UnixMilli(1_700_000_000_000)
	s.Pending.Touch("1", at.Add(-time.Minute))
	s.Pending.Touch("1", at)
	if s.Pending.Len() != 1 {
		t.Fatalf("expected 1 pending guild, got %d", s.Pending.Len())
	}

	if err := s.Pending.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if s.Pending.Len() != 0 {
		t.Errorf("pending set should be empty after flush")
	}

	g, err := s.Guilds.Get(ctx, "1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if g.LastUpdatedTime != at.UnixMilli() {
		t.Errorf("last_updated_time = %d, want %d", g.LastUpdatedTime, at.UnixMilli())
	}
}

func TestPendingGuildUpdates_FlushFailureKeepsPending(t *testing.T) {
	database := setupTestDB(t)
	s := New(database)
	s.Pending.Touch("1", time.Now())

	database.Close()

	if err := s.Pending.Flush(context.Background()); err == nil {
		t.Fatal("expected flush error on closed database")
	}
	if s.Pending.Len() != 1 {
		t.Errorf("pending guild should be kept after failed flush, got %d", s.Pending.Len())
	}
}

func TestIsFatal(t *testing.T) {
	if IsFatal(nil) {
		t.Error("nil is not fatal")
	}
	if !IsFatal(context.Canceled) {
		t.Error("context cancellation is fatal")
	}
	if IsFatal(&domain.ConflictError{Table: "queues", Err: errors.New("dup")}) {
		t.Error("conflict is not fatal")
	}
}
