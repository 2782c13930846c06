// Package storage persists index snapshots. The backend is chosen by the
// snapshot file's extension: SQLite for .db/.sqlite/.sqlite3, JSON otherwise.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"findex/internal/index"
)

// Save writes a full snapshot of ix to path, replacing any previous one.
func Save(path string, ix *index.Index) error {
	if isSQLitePath(path) {
		return saveSQLite(path, ix)
	}
	return saveJSON(path, ix)
}

// Load reads a snapshot back into an index. A malformed snapshot is a fatal
// error; no partial result is returned.
func Load(path string) (*index.Index, error) {
	if isSQLitePath(path) {
		return loadSQLite(path)
	}
	return loadJSON(path)
}

func isSQLitePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// saveJSON writes to a temp file in the target directory and renames it into
// place, so a crash mid-write never leaves a truncated snapshot behind.
func saveJSON(path string, ix *index.Index) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".findex-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := ix.Save(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

func loadJSON(path string) (*index.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	ix, err := index.Load(f)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", path, err)
	}
	return ix, nil
}
