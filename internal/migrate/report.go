package migrate

import (
	"fmt"
	"strconv"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/lherron/queuebot/internal/legacy"
)

// Entity names used in reports, metrics and logs, in insert order.
const (
	EntityGuilds    = "guilds"
	EntityQueues    = "queues"
	EntityVoices    = "voices"
	EntityDisplays  = "displays"
	EntityMembers   = "members"
	EntitySchedules = "schedules"
	EntityBlacklist = "blacklist"
	EntityWhitelist = "whitelist"
	EntityPriority  = "priority"
	EntityAdmins    = "admins"
)

var entityOrder = []string{
	EntityGuilds, EntityQueues, EntityVoices, EntityDisplays, EntityMembers,
	EntitySchedules, EntityBlacklist, EntityWhitelist, EntityPriority, EntityAdmins,
}

// EntityStats counts one entity type across a run. Legacy is -1 for
// entities with no legacy source table.
type EntityStats struct {
	Entity   string `json:"entity" yaml:"entity"`
	Legacy   int    `json:"legacy" yaml:"legacy"`
	Inserted int    `json:"inserted" yaml:"inserted"`
	Skipped  int    `json:"skipped" yaml:"skipped"`
}

// Unaccounted is the number of legacy rows that were neither inserted nor
// explicitly skipped, typically rows whose guild or queue was dropped.
// Priority rows fan out to every queue of a guild, so this can go negative.
func (s *EntityStats) Unaccounted() int {
	if s.Legacy < 0 {
		return 0
	}
	return s.Legacy - s.Inserted - s.Skipped
}

// Report summarises one reconciliation.
type Report struct {
	RunID    string         `json:"run_id" yaml:"run_id"`
	DryRun   bool           `json:"dry_run" yaml:"dry_run"`
	Entities []*EntityStats `json:"entities" yaml:"entities"`

	byName map[string]*EntityStats
}

// NewReport creates a report with legacy counts taken from tables.
func NewReport(tables *legacy.Tables) *Report {
	r := &Report{byName: make(map[string]*EntityStats, len(entityOrder))}
	for _, name := range entityOrder {
		s := &EntityStats{Entity: name}
		r.Entities = append(r.Entities, s)
		r.byName[name] = s
	}

	var black, white int
	for _, row := range tables.BlackWhiteLists {
		switch lt, ok := row.ListType(); {
		case ok && lt == legacy.Blacklist:
			black++
		case ok && lt == legacy.Whitelist:
			white++
		}
	}

	r.byName[EntityGuilds].Legacy = len(tables.Guilds)
	r.byName[EntityQueues].Legacy = len(tables.QueueChannels)
	r.byName[EntityVoices].Legacy = -1
	r.byName[EntityDisplays].Legacy = len(tables.DisplayChannels)
	r.byName[EntityMembers].Legacy = len(tables.Members)
	r.byName[EntitySchedules].Legacy = len(tables.Schedules)
	r.byName[EntityBlacklist].Legacy = black
	r.byName[EntityWhitelist].Legacy = white
	r.byName[EntityPriority].Legacy = len(tables.Priorities)
	r.byName[EntityAdmins].Legacy = len(tables.Admins)
	return r
}

// Stats returns the counters of one entity.
func (r *Report) Stats(entity string) *EntityStats {
	return r.byName[entity]
}

func (r *Report) inserted(entity string) { r.byName[entity].Inserted++ }
func (r *Report) skipped(entity string)  { r.byName[entity].Skipped++ }

// Mismatched returns the entities whose inserted count differs from their
// legacy count.
func (r *Report) Mismatched() []string {
	var out []string
	for _, s := range r.Entities {
		if s.Legacy >= 0 && s.Legacy != s.Inserted {
			out = append(out, s.Entity)
		}
	}
	return out
}

// Diff renders legacy counts against inserted counts as a unified diff.
// It is empty when every entity migrated completely.
func (r *Report) Diff() string {
	var a, b []string
	for _, s := range r.Entities {
		if s.Legacy < 0 {
			continue
		}
		a = append(a, fmt.Sprintf("%s: %d\n", s.Entity, s.Legacy))
		b = append(b, fmt.Sprintf("%s: %d\n", s.Entity, s.Inserted))
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        a,
		B:        b,
		FromFile: "legacy",
		ToFile:   "migrated",
		Context:  0,
	})
	if err != nil {
		return ""
	}
	return diff
}

// Rows returns the report as table rows under Headers.
func (r *Report) Rows() [][]string {
	rows := make([][]string, 0, len(r.Entities))
	for _, s := range r.Entities {
		legacyCount := "-"
		if s.Legacy >= 0 {
			legacyCount = strconv.Itoa(s.Legacy)
		}
		rows = append(rows, []string{s.Entity, legacyCount, strconv.Itoa(s.Inserted), strconv.Itoa(s.Skipped)})
	}
	return rows
}

// ReportHeaders are the column headers matching Report.Rows.
var ReportHeaders = []string{"ENTITY", "LEGACY", "INSERTED", "SKIPPED"}
