package tokenizer

import (
	"strings"
	"testing"

	"findex/internal/term"
)

func TestFoldCountsCaseInsensitively(t *testing.T) {
	freq := term.NewTable()
	count := Fold("Apple apple APPLE banana", freq)

	if count != 4 {
		t.Fatalf("expected 4 tokens, got %d", count)
	}
	if got := freq.Count(term.NewKey("apple")); got != 3 {
		t.Fatalf("expected 3 apples, got %d", got)
	}
	if got := freq.Count(term.NewKey("banana")); got != 1 {
		t.Fatalf("expected 1 banana, got %d", got)
	}
}

func TestTextTokenizer(t *testing.T) {
	freq := term.NewTable()
	count, err := Text{}.Tokenize(strings.NewReader("to be, or not to be"), freq)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if count != 7 { // "to be , or not to be"
		t.Fatalf("expected 7 tokens, got %d", count)
	}
	if got := freq.Count(term.NewKey("to")); got != 2 {
		t.Fatalf("expected 2 occurrences of 'to', got %d", got)
	}
}

func TestMarkupTokenizerUsesCharDataOnly(t *testing.T) {
	doc := `<?xml version="1.0"?>
<note author="ignored"><!-- also ignored -->Hello world<em>again</em></note>`

	freq := term.NewTable()
	count, err := Markup{}.Tokenize(strings.NewReader(doc), freq)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}

	if count != 3 {
		t.Fatalf("expected 3 tokens (hello world again), got %d", count)
	}
	for _, banned := range []string{"note", "author", "ignored", "em"} {
		if freq.Contains(term.NewKey(banned)) {
			t.Fatalf("markup structure leaked into the table: %q", banned)
		}
	}
	if !freq.Contains(term.NewKey("hello")) || !freq.Contains(term.NewKey("again")) {
		t.Fatalf("character data missing from the table")
	}
}

func TestMarkupTokenizerMalformedDocument(t *testing.T) {
	freq := term.NewTable()
	if _, err := (Markup{}).Tokenize(strings.NewReader("<a><b>text</a>"), freq); err == nil {
		t.Fatalf("expected parse error for mismatched tags")
	}
}

func TestPDFTokenizerRejectsGarbage(t *testing.T) {
	freq := term.NewTable()
	if _, err := (PDF{}).Tokenize(strings.NewReader("definitely not a pdf"), freq); err == nil {
		t.Fatalf("expected error for non-PDF input")
	}
}

func TestDispatchForPath(t *testing.T) {
	d := DefaultDispatch()

	if tok, ok := d.ForPath("notes/readme.TXT"); !ok {
		t.Fatalf("expected a tokenizer for .TXT")
	} else if _, isText := tok.(Text); !isText {
		t.Fatalf("expected Text tokenizer for .TXT, got %T", tok)
	}

	if tok, ok := d.ForPath("feed.xml"); !ok {
		t.Fatalf("expected a tokenizer for .xml")
	} else if _, isMarkup := tok.(Markup); !isMarkup {
		t.Fatalf("expected Markup tokenizer for .xml, got %T", tok)
	}

	if _, ok := d.ForPath("binary.exe"); ok {
		t.Fatalf("unexpected tokenizer for .exe")
	}
	if _, ok := d.ForPath("Makefile"); ok {
		t.Fatalf("extensionless files should be skipped")
	}
}

func TestDispatchFromNames(t *testing.T) {
	d, err := FromNames(map[string]string{
		".tex": VariantText,
		"txt":  "", // removed
	})
	if err != nil {
		t.Fatalf("from names: %v", err)
	}

	if _, ok := d.ForPath("paper.tex"); !ok {
		t.Fatalf("expected override to add .tex")
	}
	if _, ok := d.ForPath("plain.txt"); ok {
		t.Fatalf("expected override to remove .txt")
	}

	if _, err := FromNames(map[string]string{"bin": "binary"}); err == nil {
		t.Fatalf("expected error for unknown variant name")
	}
}
