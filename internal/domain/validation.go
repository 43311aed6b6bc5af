package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the store and its callers.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// ConflictError reports a uniqueness violation on a table.
type ConflictError struct {
	Table string
	Err   error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %v", e.Table, e.Err)
}

func (e *ConflictError) Unwrap() []error {
	return []error{ErrConflict, e.Err}
}

// ValidateScheduleCommand validates a schedule command
func ValidateScheduleCommand(cmd string) (ScheduleCommand, error) {
	switch ScheduleCommand(cmd) {
	case ScheduleClear, SchedulePull, ScheduleShuffle, ScheduleShow:
		return ScheduleCommand(cmd), nil
	default:
		return "", fmt.Errorf("invalid schedule command %q: must be one of: clear, pull, shuffle, show", cmd)
	}
}

// ValidateScope validates a visibility scope
func ValidateScope(s string) error {
	switch Scope(s) {
	case ScopeNone, ScopeAdmin, ScopeAll:
		return nil
	default:
		return fmt.Errorf("invalid scope %q: must be one of: None, Admin, All", s)
	}
}

// ValidateTimestampType validates a timestamp rendering mode
func ValidateTimestampType(s string) error {
	switch TimestampType(s) {
	case TimestampOff, TimestampDate, TimestampTime, TimestampDateAndTime, TimestampRelative:
		return nil
	default:
		return fmt.Errorf("invalid timestamp type %q: must be one of: Off, Date, Time, DateAndTime, Relative", s)
	}
}
