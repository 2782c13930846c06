package tokenizer

import (
	"fmt"
	"io"

	"findex/internal/term"
)

// Text treats the whole stream as one buffer and lexes it directly.
type Text struct{}

func (Text) Tokenize(r io.Reader, freq *term.Table) (int, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read content: %w", err)
	}
	return Fold(string(content), freq), nil
}
