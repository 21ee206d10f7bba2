// Package audit collects the per-run unmatched reports. When a reference
// lookup fails the offending raw value is the only trace of the original
// data, so it is appended here before the row is overwritten with the
// Unmatched marker.
package audit

import (
	"path/filepath"
	"sync"

	"github.com/jobpulse/ingest-cli/internal/csvio"
)

// Report file names under the audit directory.
const (
	FileUnmatchedCity = "unmatched_city.csv"
	FileUnmatchedRole = "unmatched_role.csv"
)

// Entry is one unmatched value with enough provenance to find the row.
type Entry struct {
	SourceName string
	SourceID   string
	RawValue   string
}

// Log accumulates unmatched entries for one report across a run,
// deduplicating exact repeats.
type Log struct {
	mu      sync.Mutex
	entries []Entry
	seen    map[Entry]bool
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{seen: make(map[Entry]bool)}
}

// Add records an unmatched value. Exact duplicates are dropped.
func (l *Log) Add(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seen[e] {
		return
	}
	l.seen[e] = true
	l.entries = append(l.entries, e)
}

// Len returns the number of distinct entries recorded so far.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Entries returns a copy of the recorded entries in insertion order.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Write flushes the log to name under dir, replacing any previous run's
// report. An empty log still writes the header so downstream consumers can
// distinguish "clean run" from "never ran".
func (l *Log) Write(dir, name string) error {
	records := [][]string{{"__source_name", "__source_id", "raw_value"}}
	for _, e := range l.Entries() {
		records = append(records, []string{e.SourceName, e.SourceID, e.RawValue})
	}
	return csvio.WriteRecords(filepath.Join(dir, name), records)
}

// Run bundles the reports one full pipeline run accumulates.
type Run struct {
	Cities *Log
	Roles  *Log
}

// NewRun starts a fresh set of reports.
func NewRun() *Run {
	return &Run{Cities: NewLog(), Roles: NewLog()}
}

// Flush writes both reports under dir.
func (r *Run) Flush(dir string) error {
	if err := r.Cities.Write(dir, FileUnmatchedCity); err != nil {
		return err
	}
	return r.Roles.Write(dir, FileUnmatchedRole)
}
