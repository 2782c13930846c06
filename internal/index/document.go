package index

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"findex/internal/term"
	"findex/internal/tokenizer"
)

// Document holds the term-frequency table of one indexed file. It is built
// once and never mutated afterwards.
type Document struct {
	terms *term.Table
	count int
}

// BuildDocument opens path, runs the tokenizer over its content, and returns
// the resulting document. It fails when the file cannot be read or the
// tokenizer reports a parse error.
func BuildDocument(path string, tok tokenizer.Tokenizer) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	freq := term.NewTable()
	count, err := tok.Tokenize(bufio.NewReader(f), freq)
	if err != nil {
		return nil, fmt.Errorf("tokenize %s: %w", path, err)
	}

	return &Document{terms: freq, count: count}, nil
}

// NewDocument constructs a document from an existing frequency table, with
// count equal to the table's total. Used by snapshot loaders.
func NewDocument(terms *term.Table, count int) *Document {
	return &Document{terms: terms, count: count}
}

// TermFrequency returns occurrences(t)/count, or 0 when the term is absent
// or the document is empty.
func (d *Document) TermFrequency(t term.Key) float64 {
	if d.count == 0 {
		return 0
	}
	return float64(d.terms.Count(t)) / float64(d.count)
}

// Contains reports whether the document saw t at least once.
func (d *Document) Contains(t term.Key) bool {
	return d.terms.Contains(t)
}

// Count returns the total number of tokens in the document.
func (d *Document) Count() int {
	return d.count
}

// Terms exposes the frequency table for aggregation and persistence.
func (d *Document) Terms() *term.Table {
	return d.terms
}

type documentJSON struct {
	TermFrequency *term.Table `json:"term_frequency"`
	Count         int         `json:"count"`
}

// MarshalJSON encodes the document with its case-preserved term spellings.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(documentJSON{TermFrequency: d.terms, Count: d.count})
}

// UnmarshalJSON decodes the object form produced by MarshalJSON.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw documentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.TermFrequency == nil {
		raw.TermFrequency = term.NewTable()
	}
	d.terms = raw.TermFrequency
	d.count = raw.Count
	return nil
}
