package storage

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"findex/internal/index"
	"findex/internal/term"
)

func buildTestIndex(t *testing.T) *index.Index {
	t.Helper()
	dir := t.TempDir()
	for name, content := range map[string]string{
		"doc1.txt": "apple banana apple",
		"doc2.txt": "banana orange banana",
		"doc3.txt": "orange grape orange",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	ix, err := index.Build(dir, index.BuildOptions{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return ix
}

func assertSameIndex(t *testing.T, original, restored *index.Index) {
	t.Helper()

	if restored.Len() != original.Len() {
		t.Fatalf("document count changed: %d vs %d", restored.Len(), original.Len())
	}
	for _, path := range original.Paths() {
		want, _ := original.Document(path)
		got, ok := restored.Document(path)
		if !ok {
			t.Fatalf("document %s lost", path)
		}
		if got.Count() != want.Count() {
			t.Fatalf("count changed for %s: %d vs %d", path, got.Count(), want.Count())
		}
		var mismatch string
		want.Terms().Range(func(k term.Key, count int) bool {
			if got.Terms().Count(k) != count {
				mismatch = k.String()
				return false
			}
			return true
		})
		if mismatch != "" {
			t.Fatalf("frequency of %q changed for %s", mismatch, path)
		}
	}

	var dfMismatch string
	original.DocFrequencies().Range(func(k term.Key, count int) bool {
		if restored.DocFrequency(k) != count {
			dfMismatch = k.String()
			return false
		}
		return true
	})
	if dfMismatch != "" {
		t.Fatalf("document frequency of %q changed", dfMismatch)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	ix := buildTestIndex(t)
	path := filepath.Join(t.TempDir(), "index.json")

	if err := Save(path, ix); err != nil {
		t.Fatalf("save: %v", err)
	}
	restored, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	assertSameIndex(t, ix, restored)
}

func TestSQLiteRoundTrip(t *testing.T) {
	ix := buildTestIndex(t)
	path := filepath.Join(t.TempDir(), "index.db")

	if err := Save(path, ix); err != nil {
		t.Fatalf("save: %v", err)
	}
	restored, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	assertSameIndex(t, ix, restored)
}

func TestSQLiteSaveReplacesPreviousSnapshot(t *testing.T) {
	ix := buildTestIndex(t)
	path := filepath.Join(t.TempDir(), "index.db")

	if err := Save(path, ix); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := Save(path, ix); err != nil {
		t.Fatalf("second save: %v", err)
	}

	restored, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertSameIndex(t, ix, restored)
}

func TestLoadMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	if err := os.WriteFile(path, []byte("{truncated"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for malformed snapshot")
	}
}

func TestLoadMissingSnapshot(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatalf("expected error for missing json snapshot")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "absent.db")); err == nil {
		t.Fatalf("expected error for missing sqlite snapshot")
	}
}

func TestSaveJSONDoesNotLeaveTempFiles(t *testing.T) {
	ix := buildTestIndex(t)
	dir := t.TempDir()

	if err := Save(filepath.Join(dir, "index.json"), ix); err != nil {
		t.Fatalf("save: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "index.json" {
		t.Fatalf("unexpected directory contents: %v", entries)
	}
}
