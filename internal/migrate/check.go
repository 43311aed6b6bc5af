package migrate

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// CheckOptions gates the startup migration check.
type CheckOptions struct {
	Enabled   bool
	Dir       string
	AssumeYes bool
}

// ErrDeclined is returned when the operator answers the prompt with
// anything other than an empty line or "y".
var ErrDeclined = errors.New("legacy migration declined")

// CheckForMigration offers to migrate the export in opts.Dir when the
// check is enabled and the directory has files. It returns a nil Result
// when nothing was attempted. The prompt is read from in and written to
// out; an empty answer or "y" proceeds.
func CheckForMigration(ctx context.Context, m *Migrator, opts CheckOptions, in io.Reader, out io.Writer) (*Result, error) {
	if !opts.Enabled {
		return nil, nil
	}
	fmt.Fprintf(out, "Checking for legacy migration... (%s)\n", opts.Dir)

	entries, err := os.ReadDir(opts.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read legacy export directory: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	backup := BackupPath(m.Store.DB().Path(), m.now())
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Legacy migration detected.")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "If you proceed with migration:\n"+
		"!  1. Your database (%s) will be backed up to (%s)\n"+
		"!  2. Then the data from %s will be merged into your database.\n"+
		"!  Do you wish to proceed with migration? [Y/n] ",
		m.Store.DB().Path(), backup, opts.Dir)

	if !opts.AssumeYes {
		ok, err := Confirm(in)
		if err != nil {
			return nil, err
		}
		if !ok {
			fmt.Fprintln(out, "Skipping legacy migration.")
			return nil, ErrDeclined
		}
	} else {
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "Proceeding with legacy migration...")
	return m.Run(ctx, Options{Dir: opts.Dir})
}

// Confirm reads one answer line. An empty answer or "y" accepts. A closed
// input with nothing typed counts as a refusal.
func Confirm(in io.Reader) (bool, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		return false, nil
	}
	switch strings.TrimSpace(line) {
	case "", "y", "Y":
		return true, nil
	}
	return false, nil
}
