package tokenizer

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"

	"findex/internal/term"
)

// PDF extracts the plain text of a PDF document and lexes it. The reader
// needs random access, so the stream is buffered in memory first.
type PDF struct{}

func (PDF) Tokenize(r io.Reader, freq *term.Table) (int, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read content: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return 0, fmt.Errorf("parse pdf: %w", err)
	}

	text, err := reader.GetPlainText()
	if err != nil {
		return 0, fmt.Errorf("extract pdf text: %w", err)
	}

	plain, err := io.ReadAll(text)
	if err != nil {
		return 0, fmt.Errorf("extract pdf text: %w", err)
	}

	return Fold(string(plain), freq), nil
}
