package tokenizer

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"findex/internal/term"
)

// Markup parses the stream as an XML document with a streaming event decoder.
// Only character data contributes text; element and attribute names, comments,
// and processing instructions are ignored. A malformed document fails the
// whole invocation.
type Markup struct{}

func (Markup) Tokenize(r io.Reader, freq *term.Table) (int, error) {
	decoder := xml.NewDecoder(r)
	count := 0
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			return count, nil
		}
		if err != nil {
			return count, fmt.Errorf("parse markup: %w", err)
		}
		if chardata, ok := tok.(xml.CharData); ok {
			count += Fold(string(chardata), freq)
		}
	}
}
