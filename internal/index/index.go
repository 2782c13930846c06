// Package index builds and queries a TF-IDF index over a corpus of files.
package index

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"findex/internal/term"
	"findex/internal/tokenizer"
)

// Index aggregates per-file documents and the corpus-wide document-frequency
// table. It is populated once, by Build or Load, and replaced wholesale on
// rebuild; there is no incremental mode.
type Index struct {
	documents map[string]*Document
	docFreq   *term.Table
}

// BuildOptions configures a corpus scan.
type BuildOptions struct {
	// Dispatch selects tokenizers by file extension. Defaults to
	// tokenizer.DefaultDispatch when nil.
	Dispatch tokenizer.Dispatch
	// Logger receives per-file diagnostics. Defaults to slog.Default.
	Logger *slog.Logger
	// Observer, when non-nil, is notified after each processed file.
	Observer func(path string, tokens int)
}

// New returns an empty index.
func New() *Index {
	return &Index{
		documents: make(map[string]*Document),
		docFreq:   term.NewTable(),
	}
}

// FromParts assembles an index from a document set and a document-frequency
// table, both taken as-is. Used by snapshot loaders.
func FromParts(documents map[string]*Document, docFreq *term.Table) *Index {
	if documents == nil {
		documents = make(map[string]*Document)
	}
	if docFreq == nil {
		docFreq = term.NewTable()
	}
	return &Index{documents: documents, docFreq: docFreq}
}

// Build scans every regular file under root and indexes the ones whose
// extension has a tokenizer. Per-file failures are logged and skipped; the
// build only fails when the root itself cannot be read.
func Build(root string, opts BuildOptions) (*Index, error) {
	dispatch := opts.Dispatch
	if dispatch == nil {
		dispatch = tokenizer.DefaultDispatch()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ix := New()
	err := walkFiles(root, logger, func(path string) {
		tok, ok := dispatch.ForPath(path)
		if !ok {
			logger.Info("no tokenizer for file, skipping", "path", path)
			return
		}

		doc, err := BuildDocument(path, tok)
		if err != nil {
			logger.Error("cannot index file", "path", path, "error", err)
			return
		}

		ix.Add(path, doc)
		logger.Info("indexed file", "path", path, "tokens", doc.Count())
		if opts.Observer != nil {
			opts.Observer(path, doc.Count())
		}
	})
	if err != nil {
		return nil, err
	}

	return ix, nil
}

// Add stores doc under path and bumps the document frequency of each distinct
// term it contains by exactly one.
func (ix *Index) Add(path string, doc *Document) {
	doc.Terms().Range(func(t term.Key, _ int) bool {
		ix.docFreq.Add(t)
		return true
	})
	ix.documents[path] = doc
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	return len(ix.documents)
}

// Paths returns the indexed file paths in unspecified order.
func (ix *Index) Paths() []string {
	paths := make([]string, 0, len(ix.documents))
	for path := range ix.documents {
		paths = append(paths, path)
	}
	return paths
}

// Document returns the document stored under path, if any.
func (ix *Index) Document(path string) (*Document, bool) {
	doc, ok := ix.documents[path]
	return doc, ok
}

// DocFrequency returns the number of documents containing t.
func (ix *Index) DocFrequency(t term.Key) int {
	return ix.docFreq.Count(t)
}

// DocFrequencies exposes the corpus-wide document-frequency table.
func (ix *Index) DocFrequencies() *term.Table {
	return ix.docFreq
}

// IDF computes log2(N / (df+1)). The +1 smoothing keeps the quotient finite
// for unseen terms; it also means a term present in every document gets a
// negative weight, and one present in half the corpus can weigh exactly zero.
func (ix *Index) IDF(t term.Key) float64 {
	n := float64(len(ix.documents))
	df := float64(ix.docFreq.Count(t))
	return math.Log2(n / (df + 1))
}

// LastModified returns the indexed file with the most recent modification
// time. It fails when the index is empty or a stored file cannot be stat'd.
func (ix *Index) LastModified() (string, time.Time, error) {
	var (
		newest string
		mtime  time.Time
	)
	for path := range ix.documents {
		info, err := os.Stat(path)
		if err != nil {
			return "", time.Time{}, fmt.Errorf("stat %s: %w", path, err)
		}
		if newest == "" || info.ModTime().After(mtime) {
			newest = path
			mtime = info.ModTime()
		}
	}
	if newest == "" {
		return "", time.Time{}, fmt.Errorf("index is empty")
	}
	return newest, mtime, nil
}

type indexJSON struct {
	Documents     map[string]*Document `json:"documents"`
	TermFrequency *term.Table          `json:"term_frequency"`
}

// Save writes the index as JSON to w.
func (ix *Index) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(indexJSON{Documents: ix.documents, TermFrequency: ix.docFreq}); err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	return nil
}

// Load reads a JSON index from r. A malformed snapshot is a fatal error; no
// partial result is returned.
func Load(r io.Reader) (*Index, error) {
	var raw indexJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	return FromParts(raw.Documents, raw.TermFrequency), nil
}
