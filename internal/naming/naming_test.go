package naming

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lherron/queuebot/internal/domain"
)

func TestCandidate(t *testing.T) {
	assert.Equal(t, "general", Candidate("general", 0))
	assert.Equal(t, "general (1)", Candidate("general", 1))
	assert.Equal(t, "general (4)", Candidate("general", 4))
}

func TestInsert(t *testing.T) {
	conflict := &domain.ConflictError{Table: "queues", Err: errors.New("UNIQUE constraint failed")}

	t.Run("first candidate free", func(t *testing.T) {
		got, name, err := Insert("general", func(name string) (string, error) { return name, nil })
		require.NoError(t, err)
		assert.Equal(t, "general", name)
		assert.Equal(t, "general", got)
	})

	t.Run("suffix after one conflict", func(t *testing.T) {
		taken := map[string]bool{"general": true}
		var tried []string
		_, name, err := Insert("general", func(name string) (struct{}, error) {
			tried = append(tried, name)
			if taken[name] {
				return struct{}{}, conflict
			}
			return struct{}{}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "general (1)", name)
		assert.Equal(t, []string{"general", "general (1)"}, tried)
	})

	t.Run("exhausted after five conflicts", func(t *testing.T) {
		calls := 0
		_, _, err := Insert("general", func(string) (int, error) {
			calls++
			return 0, conflict
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrExhausted)
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Equal(t, MaxAttempts, calls)
	})

	t.Run("non conflict error stops immediately", func(t *testing.T) {
		boom := errors.New("disk I/O error")
		calls := 0
		_, _, err := Insert("general", func(string) (int, error) {
			calls++
			return 0, boom
		})
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrExhausted)
		assert.Equal(t, 1, calls)
	})
}
