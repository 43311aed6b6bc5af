// Package migrate converts a legacy CSV export into the current schema.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/lherron/queuebot/internal/discord"
	"github.com/lherron/queuebot/internal/domain"
	"github.com/lherron/queuebot/internal/legacy"
	"github.com/lherron/queuebot/internal/naming"
	"github.com/lherron/queuebot/internal/store"
	"github.com/lherron/queuebot/internal/telemetry"
	"github.com/lherron/queuebot/internal/tz"
)

// progressEvery is how often, in guilds, progress is logged.
const progressEvery = 25

// Engine walks legacy rows in dependency order and inserts the translated
// entities. Guilds and queues are processed one at a time.
type Engine struct {
	resolver *discord.Resolver
	zones    *tz.Resolver
	log      logrus.FieldLogger
}

// NewEngine creates an Engine.
func NewEngine(resolver *discord.Resolver, zones *tz.Resolver, log logrus.FieldLogger) *Engine {
	return &Engine{resolver: resolver, zones: zones, log: log.WithField("component", "reconcile")}
}

// Reconcile inserts everything it can from tables through tx. Failures of a
// single row are counted as skips and never returned; only errors that make
// tx unusable, or context cancellation, abort the run.
func (e *Engine) Reconcile(ctx context.Context, tx *store.Tx, tables *legacy.Tables) (*Report, error) {
	rep := NewReport(tables)

	total := len(tables.Guilds)
	for i, lg := range tables.Guilds {
		if i%progressEvery == progressEvery-1 || i == total-1 {
			e.log.Infof("converting guild %d of %d", i+1, total)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := e.reconcileGuild(ctx, tx, tables, lg, rep); err != nil {
			return nil, err
		}
	}

	e.summarize(rep)
	return rep, nil
}

// skip records a per-row failure. It returns err back only when err is
// fatal for the transaction.
func (e *Engine) skip(rep *Report, entity, key string, err error) error {
	if store.IsFatal(err) {
		return err
	}
	rep.skipped(entity)
	e.log.WithFields(logrus.Fields{"entity": entity, "key": key}).WithError(err).Debug("skipping legacy row")
	return nil
}

var (
	errGuildMissing   = errors.New("guild not found on platform")
	errChannelMissing = errors.New("channel not found on platform")
)

func (e *Engine) reconcileGuild(ctx context.Context, tx *store.Tx, tables *legacy.Tables, lg *legacy.QueueGuild, rep *Report) error {
	guild, ok, err := e.resolver.Guild(ctx, lg.GuildID)
	if err == nil && !ok {
		err = errGuildMissing
	}
	if err != nil {
		return e.skip(rep, EntityGuilds, lg.GuildID, err)
	}

	_, err = tx.InsertGuild(&domain.Guild{
		GuildID:      lg.GuildID,
		LogChannelID: optional(lg.LoggingChannelID),
		LogScope:     LogScope(lg.LoggingChannelLevel),
	})
	switch {
	case err == nil:
		rep.inserted(EntityGuilds)
	case errors.Is(err, domain.ErrConflict):
		// Already present in the current schema; its dependents can still attach to it.
		if err := e.skip(rep, EntityGuilds, lg.GuildID, err); err != nil {
			return err
		}
	default:
		return e.skip(rep, EntityGuilds, lg.GuildID, err)
	}

	for _, lq := range tables.QueuesOf(lg.GuildID) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.reconcileQueue(ctx, tx, tables, guild, lg, lq, rep); err != nil {
			return err
		}
	}

	for _, la := range tables.AdminsOf(lg.GuildID) {
		_, err := tx.InsertAdmin(&domain.AdminPermission{
			GuildID:   lg.GuildID,
			SubjectID: la.RoleMemberID,
			IsRole:    legacy.ParseFlag(la.IsRole),
		})
		if err != nil {
			if err := e.skip(rep, EntityAdmins, la.RoleMemberID, err); err != nil {
				return err
			}
			continue
		}
		rep.inserted(EntityAdmins)
	}
	return nil
}

func (e *Engine) reconcileQueue(ctx context.Context, tx *store.Tx, tables *legacy.Tables, guild discord.Guild,
	lg *legacy.QueueGuild, lq *legacy.QueueChannel, rep *Report) error {
	channel, ok, err := e.resolver.Channel(ctx, guild, lq.QueueChannelID)
	if err == nil && !ok {
		err = errChannelMissing
	}
	if err != nil {
		return e.skip(rep, EntityQueues, lq.QueueChannelID, err)
	}

	queue, name, err := naming.Insert(channel.Name, func(name string) (*domain.Queue, error) {
		q, err := buildQueue(lg.GuildID, name, lg, lq)
		if err != nil {
			return nil, err
		}
		return tx.InsertQueue(q)
	})
	if err != nil {
		if errors.Is(err, naming.ErrExhausted) {
			e.log.WithFields(logrus.Fields{"guild_id": lg.GuildID, "channel": channel.Name}).
				Warn("no free queue name after retries, skipping queue")
		}
		return e.skip(rep, EntityQueues, lq.QueueChannelID, err)
	}
	rep.inserted(EntityQueues)
	if name != channel.Name {
		e.log.WithFields(logrus.Fields{"guild_id": lg.GuildID, "name": name}).Debug("queue renamed to avoid a name conflict")
	}

	if channel.IsVoiceBased() {
		_, err := tx.InsertVoice(&domain.VoiceLink{
			GuildID:              lg.GuildID,
			QueueID:              queue.ID,
			SourceChannelID:      lq.QueueChannelID,
			DestinationChannelID: optional(lq.TargetChannelID),
		})
		if err := e.record(rep, EntityVoices, lq.QueueChannelID, err); err != nil {
			return err
		}
	}

	steps := []func(context.Context, *store.Tx, *legacy.Tables, *domain.Queue, *legacy.QueueChannel, *Report) error{
		e.reconcileDisplays,
		e.reconcileMembers,
		e.reconcileSchedules,
		e.reconcileAccessLists,
	}
	for _, step := range steps {
		if err := step(ctx, tx, tables, queue, lq, rep); err != nil {
			return err
		}
	}
	return nil
}

// record counts the outcome of one insert.
func (e *Engine) record(rep *Report, entity, key string, err error) error {
	if err != nil {
		return e.skip(rep, entity, key, err)
	}
	rep.inserted(entity)
	return nil
}

func (e *Engine) reconcileDisplays(_ context.Context, tx *store.Tx, tables *legacy.Tables, q *domain.Queue, lq *legacy.QueueChannel, rep *Report) error {
	for _, ld := range tables.DisplaysOf(lq.QueueChannelID) {
		var err error
		if ld.DisplayChannelID == "" {
			err = errors.New("empty display_channel_id")
		} else {
			_, err = tx.InsertDisplay(&domain.Display{
				GuildID:          q.GuildID,
				QueueID:          q.ID,
				DisplayChannelID: ld.DisplayChannelID,
				LastMessageID:    optional(ld.MessageID),
			})
		}
		if err := e.record(rep, EntityDisplays, ld.DisplayChannelID, err); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) reconcileMembers(_ context.Context, tx *store.Tx, tables *legacy.Tables, q *domain.Queue, lq *legacy.QueueChannel, rep *Report) error {
	for _, lm := range tables.MembersOf(lq.QueueChannelID) {
		m, err := buildMember(q, lm)
		if err == nil {
			_, err = tx.InsertMember(m)
		}
		if err := e.record(rep, EntityMembers, lm.MemberID, err); err != nil {
			return err
		}
	}
	return nil
}

func buildMember(q *domain.Queue, lm *legacy.QueueMember) (*domain.Member, error) {
	if lm.MemberID == "" {
		return nil, errors.New("empty member_id")
	}
	position, err := legacy.ParseTime(lm.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}
	join := position
	if strings.TrimSpace(lm.DisplayTime) != "" {
		if join, err = legacy.ParseTime(lm.DisplayTime); err != nil {
			return nil, fmt.Errorf("display_time: %w", err)
		}
	}
	return &domain.Member{
		GuildID:       q.GuildID,
		QueueID:       q.ID,
		UserID:        lm.MemberID,
		Message:       optional(strings.TrimSpace(lm.PersonalMessage)),
		JoinTime:      join.UnixMilli(),
		PositionTime:  position.UnixMilli(),
		PriorityOrder: PriorityOrder(lm.IsPriority),
	}, nil
}

func (e *Engine) reconcileSchedules(_ context.Context, tx *store.Tx, tables *legacy.Tables, q *domain.Queue, lq *legacy.QueueChannel, rep *Report) error {
	for _, ls := range tables.SchedulesOf(lq.QueueChannelID) {
		s, err := e.buildSchedule(q, lq, ls)
		if err == nil {
			_, err = tx.InsertSchedule(s)
		}
		if err := e.record(rep, EntitySchedules, lq.QueueChannelID, err); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) buildSchedule(q *domain.Queue, lq *legacy.QueueChannel, ls *legacy.Schedule) (*domain.Schedule, error) {
	cmd, err := domain.ValidateScheduleCommand(strings.ToLower(strings.TrimSpace(ls.Command)))
	if err != nil {
		return nil, err
	}
	cron := strings.TrimSpace(ls.Schedule)
	if cron == "" {
		return nil, errors.New("empty schedule")
	}

	var zone *string
	offset, ok, err := legacy.ParseFloat(ls.UTCOffset)
	if err != nil {
		return nil, fmt.Errorf("utc_offset: %w", err)
	}
	if ok {
		if name, found := e.zones.ForOffset(offset); found {
			zone = &name
		}
	}

	return &domain.Schedule{
		GuildID:          q.GuildID,
		QueueID:          q.ID,
		Command:          cmd,
		Cron:             cron,
		Timezone:         zone,
		MessageChannelID: optional(lq.QueueChannelID),
	}, nil
}

// reconcileAccessLists inserts blacklist, whitelist and priority entries.
// Legacy priority rows are guild wide, so every queue of the guild gets them.
func (e *Engine) reconcileAccessLists(_ context.Context, tx *store.Tx, tables *legacy.Tables, q *domain.Queue, lq *legacy.QueueChannel, rep *Report) error {
	lists := []struct {
		entity string
		kind   domain.AccessKind
		rows   []*legacy.BlackWhiteList
	}{
		{EntityBlacklist, domain.AccessBlacklist, tables.ListOf(lq.QueueChannelID, legacy.Blacklist)},
		{EntityWhitelist, domain.AccessWhitelist, tables.ListOf(lq.QueueChannelID, legacy.Whitelist)},
	}
	for _, list := range lists {
		for _, row := range list.rows {
			_, err := tx.InsertAccessEntry(&domain.AccessEntry{
				GuildID:   q.GuildID,
				QueueID:   q.ID,
				Kind:      list.kind,
				SubjectID: row.RoleMemberID,
				IsRole:    legacy.ParseFlag(row.IsRole),
			})
			if err := e.record(rep, list.entity, row.RoleMemberID, err); err != nil {
				return err
			}
		}
	}

	for _, lp := range tables.PrioritiesOf(q.GuildID) {
		prio := domain.DefaultPriorityOrder
		_, err := tx.InsertAccessEntry(&domain.AccessEntry{
			GuildID:       q.GuildID,
			QueueID:       q.ID,
			Kind:          domain.AccessPriority,
			SubjectID:     lp.RoleMemberID,
			IsRole:        legacy.ParseFlag(lp.IsRole),
			PriorityOrder: &prio,
		})
		if err := e.record(rep, EntityPriority, lp.RoleMemberID, err); err != nil {
			return err
		}
	}
	return nil
}

// summarize logs one warning per entity type that lost rows and feeds
// the row counters.
func (e *Engine) summarize(rep *Report) {
	for _, s := range rep.Entities {
		telemetry.AddMigrationRows(s.Entity, "inserted", s.Inserted)
		telemetry.AddMigrationRows(s.Entity, "skipped", s.Skipped)

		if s.Skipped == 0 && s.Unaccounted() <= 0 {
			continue
		}
		e.log.WithFields(logrus.Fields{
			"entity":      s.Entity,
			"legacy":      s.Legacy,
			"inserted":    s.Inserted,
			"skipped":     s.Skipped,
			"unaccounted": s.Unaccounted(),
		}).Warn("legacy rows not migrated")
	}
}
