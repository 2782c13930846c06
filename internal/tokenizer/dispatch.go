package tokenizer

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Variant names accepted in configuration.
const (
	VariantText   = "text"
	VariantMarkup = "markup"
	VariantPDF    = "pdf"
)

// Dispatch maps a lowercased file extension (without the dot) to the
// tokenizer variant that handles it. Extensions not present in the table are
// skipped by the indexer.
type Dispatch map[string]Tokenizer

// DefaultDispatch returns the built-in extension table.
func DefaultDispatch() Dispatch {
	d := Dispatch{}
	for _, ext := range []string{"xml", "xhtml", "html", "htm", "svg"} {
		d[ext] = Markup{}
	}
	for _, ext := range []string{
		"txt", "text", "md", "csv", "log",
		"go", "rs", "py", "js", "ts", "c", "h", "cpp", "java", "sh",
	} {
		d[ext] = Text{}
	}
	d["pdf"] = PDF{}
	return d
}

// FromNames builds a dispatch table from extension-to-variant-name pairs,
// layered over the defaults. An empty variant name removes the extension.
func FromNames(names map[string]string) (Dispatch, error) {
	d := DefaultDispatch()
	for ext, name := range names {
		ext = strings.ToLower(strings.TrimPrefix(ext, "."))
		switch name {
		case VariantText:
			d[ext] = Text{}
		case VariantMarkup:
			d[ext] = Markup{}
		case VariantPDF:
			d[ext] = PDF{}
		case "":
			delete(d, ext)
		default:
			return nil, fmt.Errorf("unknown tokenizer %q for extension %q", name, ext)
		}
	}
	return d, nil
}

// ForPath selects the tokenizer for a file path by its extension.
func (d Dispatch) ForPath(path string) (Tokenizer, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return nil, false
	}
	tok, ok := d[ext]
	return tok, ok
}
