// Package pipeline drives ordered stage execution per source file. Stage
// status is never persisted: it is a pure projection of which output files
// exist on disk, recomputed by scanning each stage's output directory.
package pipeline

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// StatusStore answers "which outputs exist for this (file, stage)" and
// deletes them for overwrite runs. The default scans the filesystem; tests
// inject the in-memory fake.
type StatusStore interface {
	// Matches returns the output paths under dir matching prefix*stem*.csv,
	// sorted.
	Matches(dir, prefix, stem string) ([]string, error)
	// Remove deletes previously matched outputs.
	Remove(paths []string) error
}

// FSStatus is the filesystem-backed StatusStore.
type FSStatus struct{}

// Matches globs dir for prefix*stem*.csv.
func (FSStatus) Matches(dir, prefix, stem string) ([]string, error) {
	pattern := filepath.Join(dir, prefix+"*"+stem+"*.csv")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: glob %s", pattern)
	}
	sort.Strings(paths)
	return paths, nil
}

// Remove deletes the given outputs.
func (FSStatus) Remove(paths []string) error {
	for _, p := range paths {
		if err := os.Remove(p); err != nil {
			return eris.Wrapf(err, "pipeline: remove %s", p)
		}
	}
	return nil
}

// MemStatus is an in-memory StatusStore fake. Tests seed it with paths and
// assert on what Execute removed.
type MemStatus struct {
	Paths map[string]bool
}

// NewMemStatus returns an empty fake.
func NewMemStatus(paths ...string) *MemStatus {
	m := &MemStatus{Paths: make(map[string]bool, len(paths))}
	for _, p := range paths {
		m.Paths[p] = true
	}
	return m
}

// Matches filters the seeded paths the way the filesystem glob would.
func (m *MemStatus) Matches(dir, prefix, stem string) ([]string, error) {
	var out []string
	for p := range m.Paths {
		if filepath.Dir(p) != filepath.Clean(dir) {
			continue
		}
		base := filepath.Base(p)
		if strings.HasPrefix(base, prefix) && strings.Contains(base, stem) && strings.HasSuffix(base, ".csv") {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Remove drops paths from the fake.
func (m *MemStatus) Remove(paths []string) error {
	for _, p := range paths {
		delete(m.Paths, p)
	}
	return nil
}
