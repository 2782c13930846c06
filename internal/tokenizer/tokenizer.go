// Package tokenizer extracts lexable text from byte streams and folds token
// occurrences into case-insensitive frequency tables.
package tokenizer

import (
	"io"

	"findex/internal/lexer"
	"findex/internal/term"
)

// Tokenizer consumes a byte stream and accumulates case-insensitive token
// counts into freq, returning the total number of tokens observed.
type Tokenizer interface {
	Tokenize(r io.Reader, freq *term.Table) (int, error)
}

// Fold lexes s and accumulates one count per token into freq. It returns the
// number of tokens seen, including repeats.
func Fold(s string, freq *term.Table) int {
	count := 0
	lx := lexer.New(s)
	for {
		tok, ok := lx.Next()
		if !ok {
			return count
		}
		freq.Add(term.NewKey(tok))
		count++
	}
}
