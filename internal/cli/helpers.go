package cli

import (
	"errors"
	"fmt"

	"github.com/lherron/queuebot/internal/discord"
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

// exitError returns an error that will cause the CLI to exit with the given code
func exitError(code int, err error) error {
	return &ExitError{Code: code, Err: err}
}

// ExitCode returns the exit code for err: 0 for nil, the carried code for
// an ExitError and 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return 1
}

// connectPlatform opens a platform session. Tests replace it.
var connectPlatform = func(token string) (discord.Platform, func() error, error) {
	if token == "" {
		return nil, nil, fmt.Errorf("no Discord token configured (set DISCORD_TOKEN or DISCORD_TOKEN_FILE)")
	}
	session, err := discord.NewSession(token)
	if err != nil {
		return nil, nil, err
	}
	if err := session.Open(); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to Discord: %w", err)
	}
	return session, session.Close, nil
}
