package migrate

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lherron/queuebot/internal/discord"
)

func TestCheckForMigrationDisabled(t *testing.T) {
	h := newHarness(t)
	var out bytes.Buffer
	res, err := CheckForMigration(context.Background(), h.migrator, CheckOptions{Dir: h.dir}, strings.NewReader("y\n"), &out)
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Empty(t, out.String())
}

func TestCheckForMigrationMissingOrEmptyDir(t *testing.T) {
	h := newHarness(t)
	for _, dir := range []string{filepath.Join(h.dir, "missing"), h.dir} {
		var out bytes.Buffer
		res, err := CheckForMigration(context.Background(), h.migrator, CheckOptions{Enabled: true, Dir: dir}, strings.NewReader(""), &out)
		require.NoError(t, err)
		assert.Nil(t, res)
		assert.NotContains(t, out.String(), "Legacy migration detected")
	}
}

func TestCheckForMigrationAnswers(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		proceed bool
	}{
		{"empty line", "\n", true},
		{"yes", "y\n", true},
		{"upper yes", "Y\r\n", true},
		{"no", "n\n", false},
		{"anything else", "sure\n", false},
		{"closed input", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.platform.AddGuild("1", "guild one")
			h.platform.AddChannel("1", "10", "lobby", discord.ChannelTypeText)
			h.guilds(t, []string{"1"})
			h.queues(t, []string{"10", "1"})

			var out bytes.Buffer
			opts := CheckOptions{Enabled: true, Dir: h.dir}
			res, err := CheckForMigration(context.Background(), h.migrator, opts, strings.NewReader(tt.input), &out)
			assert.Contains(t, out.String(), "Do you wish to proceed with migration?")

			if !tt.proceed {
				assert.ErrorIs(t, err, ErrDeclined)
				assert.Nil(t, res)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, res)
			assert.NotEmpty(t, res.BackupPath)
			assert.Equal(t, 1, res.Counts["queues"])
		})
	}
}

func TestCheckForMigrationAssumeYes(t *testing.T) {
	h := newHarness(t)
	h.platform.AddGuild("1", "guild one")
	h.guilds(t, []string{"1"})

	var out bytes.Buffer
	opts := CheckOptions{Enabled: true, Dir: h.dir, AssumeYes: true}
	res, err := CheckForMigration(context.Background(), h.migrator, opts, strings.NewReader(""), &out)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Contains(t, out.String(), "Proceeding with legacy migration")
}
