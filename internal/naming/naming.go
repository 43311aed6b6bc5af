// Package naming retries inserts whose natural name collides with a
// uniqueness constraint, using a fixed sequence of suffixed candidates.
package naming

import (
	"errors"
	"fmt"

	"github.com/lherron/queuebot/internal/domain"
)

// MaxAttempts is the number of candidate names tried before giving up.
const MaxAttempts = 5

// ErrExhausted is returned when every candidate name collided.
var ErrExhausted = errors.New("naming: all candidate names are taken")

// Candidate returns the i-th candidate for base: base itself for i == 0,
// then "base (1)", "base (2)" and so on.
func Candidate(base string, i int) string {
	if i == 0 {
		return base
	}
	return fmt.Sprintf("%s (%d)", base, i)
}

// Insert calls insert with successive candidates for base until one does not
// report domain.ErrConflict. Any other error is returned immediately. The
// name that succeeded is returned alongside the result.
func Insert[T any](base string, insert func(name string) (T, error)) (T, string, error) {
	var (
		zero    T
		lastErr error
	)
	for i := 0; i < MaxAttempts; i++ {
		name := Candidate(base, i)
		v, err := insert(name)
		if err == nil {
			return v, name, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return zero, "", err
		}
		lastErr = err
	}
	return zero, "", fmt.Errorf("%w: %q after %d attempts: %w", ErrExhausted, base, MaxAttempts, lastErr)
}
