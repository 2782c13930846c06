// Package lexer splits raw text into maximal-munch tokens.
//
// Three rules apply at each position after leading ASCII whitespace is
// skipped: a run of digits and decimal points when the first character is an
// ASCII digit (no validation, "1.2.3" is one token), a run of alphanumerics
// and underscores when it is an ASCII letter, and otherwise exactly one rune.
package lexer

import (
	"unicode"
	"unicode/utf8"
)

// Lexer scans a text buffer lazily. Construct a new Lexer to restart a scan.
type Lexer struct {
	content string
}

// New returns a lexer over content. Tokens are subslices of content.
func New(content string) *Lexer {
	return &Lexer{content: content}
}

// Next returns the next token, or ok=false when the buffer is exhausted.
func (l *Lexer) Next() (string, bool) {
	l.skipSpace()
	if l.content == "" {
		return "", false
	}

	c := l.content[0]
	switch {
	case c >= '0' && c <= '9':
		return l.chopWhile(func(r rune) bool {
			return (r >= '0' && r <= '9') || r == '.'
		}), true
	case (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		return l.chopWhile(func(r rune) bool {
			return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
		}), true
	}

	_, size := utf8.DecodeRuneInString(l.content)
	return l.chop(size), true
}

// Tokens drains the lexer and returns every remaining token.
func (l *Lexer) Tokens() []string {
	var tokens []string
	for {
		tok, ok := l.Next()
		if !ok {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

func (l *Lexer) skipSpace() {
	for l.content != "" {
		switch l.content[0] {
		case ' ', '\t', '\n', '\v', '\f', '\r':
			l.content = l.content[1:]
		default:
			return
		}
	}
}

func (l *Lexer) chop(n int) string {
	token := l.content[:n]
	l.content = l.content[n:]
	return token
}

func (l *Lexer) chopWhile(pred func(rune) bool) string {
	n := 0
	for n < len(l.content) {
		r, size := utf8.DecodeRuneInString(l.content[n:])
		if !pred(r) {
			break
		}
		n += size
	}
	return l.chop(n)
}
