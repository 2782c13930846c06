package index

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"findex/internal/term"
	"findex/internal/tokenizer"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDocumentTermFrequency(t *testing.T) {
	path := writeFile(t, t.TempDir(), "doc.txt", "a a b")

	doc, err := BuildDocument(path, tokenizer.Text{})
	if err != nil {
		t.Fatalf("build document: %v", err)
	}

	if doc.Count() != 3 {
		t.Fatalf("expected 3 tokens, got %d", doc.Count())
	}
	if tf := doc.TermFrequency(term.NewKey("a")); !almostEqual(tf, 2.0/3.0) {
		t.Fatalf("tf(a) = %v, want 2/3", tf)
	}
	if tf := doc.TermFrequency(term.NewKey("b")); !almostEqual(tf, 1.0/3.0) {
		t.Fatalf("tf(b) = %v, want 1/3", tf)
	}
	if tf := doc.TermFrequency(term.NewKey("c")); tf != 0 {
		t.Fatalf("tf(c) = %v, want 0", tf)
	}
	if doc.Contains(term.NewKey("c")) {
		t.Fatalf("document should not contain 'c'")
	}
}

func TestDocumentCountMatchesTableTotal(t *testing.T) {
	path := writeFile(t, t.TempDir(), "doc.txt", "x y z x, y! x")

	doc, err := BuildDocument(path, tokenizer.Text{})
	if err != nil {
		t.Fatalf("build document: %v", err)
	}
	if doc.Count() != doc.Terms().Total() {
		t.Fatalf("count %d diverged from table total %d", doc.Count(), doc.Terms().Total())
	}
}

func TestDocumentEmptyFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.txt", "")

	doc, err := BuildDocument(path, tokenizer.Text{})
	if err != nil {
		t.Fatalf("build document: %v", err)
	}
	if doc.Count() != 0 {
		t.Fatalf("expected empty document, got %d tokens", doc.Count())
	}
	if tf := doc.TermFrequency(term.NewKey("anything")); tf != 0 {
		t.Fatalf("tf over empty document must be 0, got %v", tf)
	}
}

func TestBuildDocumentMissingFile(t *testing.T) {
	if _, err := BuildDocument(filepath.Join(t.TempDir(), "absent.txt"), tokenizer.Text{}); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestBuildDocumentMalformedMarkup(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.xml", "<a><b>text</a>")
	if _, err := BuildDocument(path, tokenizer.Markup{}); err == nil {
		t.Fatalf("expected parse error for malformed markup")
	}
}
