// Package legacy reads the CSV export of the previous schema.
package legacy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// parser decodes one export file and returns a function that stores the
// decoded rows into Tables. Applying is deferred until every file decoded.
type parser func(r io.Reader) (apply func(*Tables), n int, err error)

type normalizer[T any] interface {
	*T
	normalize()
}

func table[T any, PT normalizer[T]](set func(*Tables, []*T)) parser {
	return func(r io.Reader) (func(*Tables), int, error) {
		var rows []*T
		if err := gocsv.Unmarshal(r, &rows); err != nil && !errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, 0, err
		}
		for _, row := range rows {
			PT(row).normalize()
		}
		return func(t *Tables) { set(t, rows) }, len(rows), nil
	}
}

var parsers = map[string]parser{
	FileAdminPermission: table(func(t *Tables, rows []*AdminPermission) { t.Admins = rows }),
	FileBlackWhiteList:  table(func(t *Tables, rows []*BlackWhiteList) { t.BlackWhiteLists = rows }),
	FileDisplayChannels: table(func(t *Tables, rows []*DisplayChannel) { t.DisplayChannels = rows }),
	FileLastPulled:      table(func(t *Tables, rows []*LastPulled) { t.LastPulled = rows }),
	FilePriority:        table(func(t *Tables, rows []*Priority) { t.Priorities = rows }),
	FileQueueChannels:   table(func(t *Tables, rows []*QueueChannel) { t.QueueChannels = rows }),
	FileQueueGuilds:     table(func(t *Tables, rows []*QueueGuild) { t.Guilds = rows }),
	FileQueueMembers:    table(func(t *Tables, rows []*QueueMember) { t.Members = rows }),
	FileSchedules:       table(func(t *Tables, rows []*Schedule) { t.Schedules = rows }),
}

type fileResult struct {
	name  string
	apply func(*Tables)
	rows  int
}

// Load parses every recognised export file in dir concurrently. Unknown
// files are ignored. Any read or parse failure fails the whole load and no
// Tables are returned.
func Load(ctx context.Context, dir string, log logrus.FieldLogger) (*Tables, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read export directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := parsers[e.Name()]; ok {
			files = append(files, e.Name())
		} else {
			log.WithField("file", e.Name()).Debug("ignoring unrecognised export file")
		}
	}

	results := make([]fileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			apply, n, err := parseFile(filepath.Join(dir, name), parsers[name])
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", name, err)
			}
			results[i] = fileResult{name: name, apply: apply, rows: n}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tables := &Tables{}
	for _, r := range results {
		r.apply(tables)
		log.WithFields(logrus.Fields{"file": r.name, "rows": r.rows}).Info("loaded legacy export file")
	}
	tables.Index()

	return tables, nil
}

func parseFile(path string, p parser) (func(*Tables), int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	return p(f)
}
