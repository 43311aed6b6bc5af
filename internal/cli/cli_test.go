package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/lherron/queuebot/internal/discord"
	"github.com/lherron/queuebot/internal/discord/discordtest"
	"github.com/lherron/queuebot/internal/legacy"
	"github.com/lherron/queuebot/internal/migrate"
	"github.com/lherron/queuebot/internal/testutil"
)

// setupEnv isolates config loading and returns the database path and the
// legacy export directory.
func setupEnv(t *testing.T) (string, string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, v := range []string{
		"QUEUEBOT_DB_PATH_FILE", "CHECK_FOR_LEGACY_MIGRATION", "DISCORD_TOKEN_FILE",
		"QUEUEBOT_LOG_FORMAT", "QUEUEBOT_OUTPUT", "QUEUEBOT_METRICS_ADDR", "OTEL_EXPORTER_OTLP_ENDPOINT",
	} {
		t.Setenv(v, "")
	}
	dbPath := filepath.Join(home, "data", "main.sqlite")
	exportDir := filepath.Join(home, "export")
	t.Setenv("QUEUEBOT_DB_PATH", dbPath)
	t.Setenv("QUEUEBOT_LEGACY_EXPORT_DIR", exportDir)
	t.Setenv("DISCORD_TOKEN", "test-token")
	t.Setenv("QUEUEBOT_LOG_LEVEL", "warn")

	resetFlags()
	return dbPath, exportDir
}

func resetFlags() {
	migrateDryRun, migrateStatus, migrateOutput = false, false, ""
	dbSnapshotOut, dbSnapshotJSON = "", false
	legacyDir, legacyOutput = "", ""
	legacyYes, legacyDryRun, legacyNoBackup, legacyJSON = false, false, false, false
	displayQueueID, displayChannelID, displayKeepMessage = 0, "", false
	versionAdmJSON = false
}

func useFakePlatform(t *testing.T) *discordtest.Platform {
	t.Helper()
	p := discordtest.New()
	orig := connectPlatform
	connectPlatform = func(token string) (discord.Platform, func() error, error) {
		return p, func() error { return nil }, nil
	}
	t.Cleanup(func() { connectPlatform = orig })
	return p
}

// runAdm executes queuebotadm with args, feeding input to stdin.
func runAdm(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var out, errOut bytes.Buffer
	rootAdmCmd.SetArgs(args)
	rootAdmCmd.SetIn(strings.NewReader(input))
	rootAdmCmd.SetOut(&out)
	rootAdmCmd.SetErr(&errOut)
	err := rootAdmCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeExport(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	testutil.WriteCSV(t, dir, legacy.FileQueueGuilds,
		[]string{"guild_id", "disable_mentions", "disable_notifications", "logging_channel_id", "logging_channel_level", "msg_mode", "timestamps"},
		[]string{"1", "false", "false", "", "", "1", "off"})
	testutil.WriteCSV(t, dir, legacy.FileQueueChannels,
		[]string{"queue_channel_id", "guild_id", "max_members", "pull_num", "color", "target_channel_id", "grace_period"},
		[]string{"10", "1", "", "1", "RED", "", "0"},
		[]string{"99", "1", "", "1", "RED", "", "0"})
}

func fakeGuild(p *discordtest.Platform) {
	p.AddGuild("1", "guild one")
	p.AddChannel("1", "10", "lobby", discord.ChannelTypeText)
	p.AddChannel("1", "20", "displays", discord.ChannelTypeText)
}

func TestInitAdm(t *testing.T) {
	dbPath, exportDir := setupEnv(t)

	out, err := runAdm(t, "", "init")
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !strings.Contains(out, "Initialized new database") {
		t.Errorf("unexpected output: %s", out)
	}
	for _, p := range []string{dbPath, exportDir} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected %s to exist: %v", p, err)
		}
	}

	out, err = runAdm(t, "", "migrate", "--status", "-o", "json")
	if err != nil {
		t.Fatalf("migrate --status failed: %v", err)
	}
	var states []migrationState
	if err := json.Unmarshal([]byte(out), &states); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(states) != 1 || states[0].Version != "000001_baseline.sql" || !states[0].Applied {
		t.Errorf("baseline should be applied, got: %+v", states)
	}

	out, err = runAdm(t, "", "migrate", "--dry-run")
	if err != nil {
		t.Fatalf("migrate --dry-run failed: %v", err)
	}
	if !strings.Contains(out, "No pending migrations") {
		t.Errorf("unexpected dry run output: %s", out)
	}
}

func TestLegacyInspect(t *testing.T) {
	_, exportDir := setupEnv(t)
	writeExport(t, exportDir)

	out, err := runAdm(t, "", "legacy", "inspect", "-o", "json")
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	var got struct {
		Counts map[string]int `json:"counts"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if got.Counts[legacy.FileQueueChannels] != 2 {
		t.Errorf("queue channel rows = %d, want 2", got.Counts[legacy.FileQueueChannels])
	}
	if got.Counts[legacy.FileQueueMembers] != 0 {
		t.Errorf("members should be empty, got %d", got.Counts[legacy.FileQueueMembers])
	}
}

func TestLegacyInspectMissingDir(t *testing.T) {
	setupEnv(t)

	_, err := runAdm(t, "", "legacy", "inspect")
	if ExitCode(err) != 1 {
		t.Fatalf("expected exit code 1, got %d (%v)", ExitCode(err), err)
	}
}

func TestLegacyMigrateDeclined(t *testing.T) {
	_, exportDir := setupEnv(t)
	writeExport(t, exportDir)
	p := useFakePlatform(t)
	fakeGuild(p)

	_, err := runAdm(t, "n\n", "legacy", "migrate")
	if !errors.Is(err, migrate.ErrDeclined) {
		t.Fatalf("expected ErrDeclined, got %v", err)
	}

	if len(p.Messages("20")) != 0 {
		t.Fatal("nothing should be sent")
	}
	_, err = runAdm(t, "", "display", "add", "--queue", "1", "--channel", "20")
	if ExitCode(err) != 1 {
		t.Fatalf("queue should not exist after declining, got %v", err)
	}
}

func TestLegacyMigrateThenDisplays(t *testing.T) {
	dbPath, exportDir := setupEnv(t)
	writeExport(t, exportDir)
	p := useFakePlatform(t)
	fakeGuild(p)

	out, err := runAdm(t, "", "legacy", "migrate", "--yes", "--no-backup", "--json")
	if err != nil {
		t.Fatalf("legacy migrate failed: %v", err)
	}
	var res migrate.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if res.RunID == "" {
		t.Error("expected a run id")
	}
	if res.BackupPath != "" {
		t.Errorf("no backup expected, got %s", res.BackupPath)
	}
	if res.Counts["queues"] != 1 {
		t.Errorf("queues = %d, want 1 (channel 99 does not exist)", res.Counts["queues"])
	}
	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(dbPath), "*pre-migration*"))
	if len(matches) != 0 {
		t.Errorf("unexpected backups: %v", matches)
	}

	queueID := strconv.Itoa(1)
	out, err = runAdm(t, "", "display", "add", "--queue", queueID, "--channel", "20")
	if err != nil {
		t.Fatalf("display add failed: %v", err)
	}
	if !strings.Contains(out, `queue "lobby"`) {
		t.Errorf("unexpected output: %s", out)
	}
	if len(p.Messages("20")) != 1 {
		t.Fatalf("expected one display message, got %v", p.Messages("20"))
	}

	out, err = runAdm(t, "", "display", "rm", "--queue", queueID)
	if err != nil {
		t.Fatalf("display rm failed: %v", err)
	}
	if !strings.Contains(out, "Removed 1 display(s)") {
		t.Errorf("unexpected output: %s", out)
	}
	if len(p.Messages("20")) != 0 {
		t.Errorf("display message should be deleted, got %v", p.Messages("20"))
	}
}

func TestLegacyMigrateDryRun(t *testing.T) {
	_, exportDir := setupEnv(t)
	writeExport(t, exportDir)
	p := useFakePlatform(t)
	fakeGuild(p)

	out, err := runAdm(t, "", "legacy", "migrate", "--dry-run")
	if err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if !strings.Contains(out, "Dry run: nothing was committed.") {
		t.Errorf("missing dry run notice: %s", out)
	}
	if !strings.Contains(out, "ENTITY") {
		t.Errorf("missing report table: %s", out)
	}

	out, err = runAdm(t, "", "display", "add", "--queue", "1", "--channel", "20")
	if ExitCode(err) != 1 {
		t.Fatalf("queue should not exist after dry run, got %v (%s)", err, out)
	}
}

func TestDBSnapshot(t *testing.T) {
	setupEnv(t)
	if _, err := runAdm(t, "", "init"); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(t.TempDir(), "snap.sqlite")
	out, err := runAdm(t, "", "db", "snapshot", "--out", dest, "--json")
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	var manifest snapshotManifest
	if err := json.Unmarshal([]byte(out), &manifest); err != nil {
		t.Fatalf("invalid manifest %q: %v", out, err)
	}
	if manifest.SnapshotDBPath != dest {
		t.Errorf("snapshot path = %s, want %s", manifest.SnapshotDBPath, dest)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("snapshot missing: %v", err)
	}

	if _, err := runAdm(t, "", "db", "snapshot", "--out", dest); err == nil {
		t.Error("snapshot onto an existing file should fail")
	}
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("existing snapshot must be left alone: %v", err)
	}
}

func TestVersionAdmJSON(t *testing.T) {
	setupEnv(t)

	out, err := runAdm(t, "", "version", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var v map[string]any
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if v["binary"] != "queuebotadm" {
		t.Errorf("binary = %v", v["binary"])
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{errors.New("boom"), 1},
		{exitError(2, errors.New("usage")), 2},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
