package storage

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"findex/internal/index"
	"findex/internal/term"
)

// insertBatch bounds the number of rows per INSERT statement.
const insertBatch = 500

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS documents (
		path        TEXT PRIMARY KEY,
		token_count INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS terms (
		path      TEXT NOT NULL,
		term      TEXT NOT NULL,
		frequency INTEGER NOT NULL,
		PRIMARY KEY (path, term)
	);
	CREATE TABLE IF NOT EXISTS document_frequency (
		term      TEXT PRIMARY KEY,
		documents INTEGER NOT NULL
	);
`

func saveSQLite(path string, ix *index.Index) error {
	// Snapshots are whole-corpus rebuilds; start from an empty database.
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove previous snapshot: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("open sqlite snapshot: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("create sqlite schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin sqlite transaction: %w", err)
	}
	defer tx.Rollback()

	docs := newBatcher(tx, "INSERT INTO documents (path, token_count) VALUES", 2)
	terms := newBatcher(tx, "INSERT INTO terms (path, term, frequency) VALUES", 3)
	for _, docPath := range ix.Paths() {
		doc, _ := ix.Document(docPath)
		if err := docs.add(docPath, doc.Count()); err != nil {
			return err
		}
		var termErr error
		doc.Terms().Range(func(t term.Key, count int) bool {
			termErr = terms.add(docPath, t.String(), count)
			return termErr == nil
		})
		if termErr != nil {
			return termErr
		}
	}

	df := newBatcher(tx, "INSERT INTO document_frequency (term, documents) VALUES", 2)
	var dfErr error
	ix.DocFrequencies().Range(func(t term.Key, count int) bool {
		dfErr = df.add(t.String(), count)
		return dfErr == nil
	})
	if dfErr != nil {
		return dfErr
	}

	for _, b := range []*batcher{docs, terms, df} {
		if err := b.flush(); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sqlite snapshot: %w", err)
	}
	return nil
}

func loadSQLite(path string) (*index.Index, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite snapshot: %w", err)
	}
	defer db.Close()

	counts := map[string]int{}
	rows, err := db.Query("SELECT path, token_count FROM documents")
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	for rows.Next() {
		var (
			docPath string
			count   int
		)
		if err := rows.Scan(&docPath, &count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		counts[docPath] = count
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	tables := map[string]*term.Table{}
	rows, err = db.Query("SELECT path, term, frequency FROM terms")
	if err != nil {
		return nil, fmt.Errorf("query terms: %w", err)
	}
	for rows.Next() {
		var (
			docPath string
			raw     string
			count   int
		)
		if err := rows.Scan(&docPath, &raw, &count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan term row: %w", err)
		}
		if _, ok := counts[docPath]; !ok {
			rows.Close()
			return nil, fmt.Errorf("term row references unknown document %s", docPath)
		}
		table, ok := tables[docPath]
		if !ok {
			table = term.NewTable()
			tables[docPath] = table
		}
		table.AddN(term.NewKey(raw), count)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	docFreq := term.NewTable()
	rows, err = db.Query("SELECT term, documents FROM document_frequency")
	if err != nil {
		return nil, fmt.Errorf("query document frequency: %w", err)
	}
	for rows.Next() {
		var (
			raw   string
			count int
		)
		if err := rows.Scan(&raw, &count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan document frequency row: %w", err)
		}
		docFreq.AddN(term.NewKey(raw), count)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	documents := make(map[string]*index.Document, len(counts))
	for docPath, count := range counts {
		table, ok := tables[docPath]
		if !ok {
			table = term.NewTable()
		}
		documents[docPath] = index.NewDocument(table, count)
	}

	return index.FromParts(documents, docFreq), nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate rows: %w", err)
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("close rows: %w", err)
	}
	return nil
}

// batcher accumulates rows for one table and issues multi-row inserts.
type batcher struct {
	tx     *sql.Tx
	prefix string
	width  int
	args   []any
}

func newBatcher(tx *sql.Tx, prefix string, width int) *batcher {
	return &batcher{tx: tx, prefix: prefix, width: width}
}

func (b *batcher) add(args ...any) error {
	b.args = append(b.args, args...)
	if len(b.args)/b.width >= insertBatch {
		return b.flush()
	}
	return nil
}

func (b *batcher) flush() error {
	rowCount := len(b.args) / b.width
	if rowCount == 0 {
		return nil
	}

	placeholders := "(?" + strings.Repeat(", ?", b.width-1) + ")"
	stmt := b.prefix + " " + placeholders + strings.Repeat(", "+placeholders, rowCount-1)
	if _, err := b.tx.Exec(stmt, b.args...); err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	b.args = b.args[:0]
	return nil
}
