// Package tz resolves raw UTC offsets to IANA timezone names.
//
// The mapping is best effort: several zones share an offset and the first
// match in sorted name order wins, so the result depends on the zone
// database installed on the host and on the current date (DST).
package tz

import (
	"archive/zip"
	"io/fs"
	"math"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"
)

var zoneDirs = []string{
	"/usr/share/zoneinfo/",
	"/usr/share/lib/zoneinfo/",
	"/usr/lib/locale/TZ/",
	"/etc/zoneinfo/",
}

// Resolver maps offsets in hours to zone names.
type Resolver struct {
	names func() []string
	now   func() time.Time

	once   sync.Once
	sorted []string

	mu     sync.Mutex
	byMins map[int]string // "" when no zone matched
}

// NewResolver returns a Resolver over the host zone database.
func NewResolver() *Resolver {
	return &Resolver{names: SystemZoneNames, now: time.Now}
}

// NewResolverWith returns a Resolver over a fixed set of names and a clock.
func NewResolverWith(names []string, now func() time.Time) *Resolver {
	return &Resolver{names: func() []string { return names }, now: now}
}

func (r *Resolver) zoneNames() []string {
	r.once.Do(func() {
		names := append([]string(nil), r.names()...)
		sort.Strings(names)
		r.sorted = names
	})
	return r.sorted
}

// ForOffset returns the first zone name, in sorted order, whose current UTC
// offset equals hours. ok is false when no zone matches. Results are
// remembered per offset for the life of the Resolver.
func (r *Resolver) ForOffset(hours float64) (name string, ok bool) {
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return "", false
	}
	wantMinutes := int(math.Round(hours * 60))

	r.mu.Lock()
	defer r.mu.Unlock()
	if name, seen := r.byMins[wantMinutes]; seen {
		return name, name != ""
	}
	if r.byMins == nil {
		r.byMins = make(map[int]string)
	}
	name = r.lookup(wantMinutes)
	r.byMins[wantMinutes] = name
	return name, name != ""
}

func (r *Resolver) lookup(wantMinutes int) string {
	now := r.now()
	for _, n := range r.zoneNames() {
		loc, err := time.LoadLocation(n)
		if err != nil {
			continue
		}
		_, offset := now.In(loc).Zone()
		if offset/60 == wantMinutes {
			return n
		}
	}
	return ""
}

// SystemZoneNames lists the zone names of the first readable zoneinfo
// directory, falling back to the Go distribution's zoneinfo.zip.
func SystemZoneNames() []string {
	for _, dir := range zoneDirs {
		if names := walkZoneDir(dir); len(names) > 0 {
			return names
		}
	}
	return zipZoneNames(filepath.Join(runtime.GOROOT(), "lib", "time", "zoneinfo.zip"))
}

func walkZoneDir(dir string) []string {
	var names []string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel := strings.TrimPrefix(path, dir)
		if d.IsDir() {
			// posix/ and right/ duplicate the main tree with different leap handling.
			if rel == "posix" || rel == "right" {
				return filepath.SkipDir
			}
			return nil
		}
		if isZoneName(rel) {
			names = append(names, rel)
		}
		return nil
	})
	return names
}

func zipZoneNames(path string) []string {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil
	}
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		if !f.FileInfo().IsDir() && isZoneName(f.Name) {
			names = append(names, f.Name)
		}
	}
	return names
}

// isZoneName filters out metadata files such as zone.tab or leapseconds.
func isZoneName(rel string) bool {
	if rel == "" || strings.ContainsAny(rel, ".") {
		return false
	}
	first := rel[0]
	if first < 'A' || first > 'Z' {
		return false
	}
	switch rel {
	case "Factory", "SECURITY", "README":
		return false
	}
	return true
}
