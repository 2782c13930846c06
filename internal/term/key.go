package term

import (
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
)

// Key is a term identifier with ASCII-case-insensitive identity.
// Two keys are equal iff their ASCII-lowercased byte sequences match;
// non-ASCII bytes are compared verbatim.
//
// A Key constructed with NewKey is a view over the caller's string and is
// only as durable as that string. Own returns a detached copy safe to keep
// past the source buffer's lifetime.
type Key struct {
	text string
}

// NewKey wraps s without copying. The key borrows s.
func NewKey(s string) Key {
	return Key{text: s}
}

// String returns the raw, case-preserved term text.
func (k Key) String() string {
	return k.text
}

// Own returns a key backed by its own storage, detached from the source buffer.
func (k Key) Own() Key {
	return Key{text: strings.Clone(k.text)}
}

// Fold returns the ASCII-lowercased form of the key, the canonical spelling
// used for equality and hashing. Returns the input unchanged (no allocation)
// when it contains no ASCII uppercase letters.
func (k Key) Fold() string {
	return foldASCII(k.text)
}

// Equal reports whether k and other fold to the same byte sequence.
func (k Key) Equal(other Key) bool {
	if len(k.text) != len(other.text) {
		return false
	}
	for i := 0; i < len(k.text); i++ {
		if lowerASCII(k.text[i]) != lowerASCII(other.text[i]) {
			return false
		}
	}
	return true
}

// Hash computes a 64-bit hash over the folded byte sequence, so equal keys
// always hash equally.
func (k Key) Hash() uint64 {
	d := xxhash.New()
	var buf [1]byte
	for i := 0; i < len(k.text); i++ {
		buf[0] = lowerASCII(k.text[i])
		d.Write(buf[:])
	}
	return d.Sum64()
}

// Compare orders keys by pairwise comparison of their ASCII-uppercased runes,
// falling back to length when one key is a case-insensitive prefix of the
// other. The result is a total order consistent with Equal: it returns 0 iff
// the keys are equal.
func (k Key) Compare(other Key) int {
	a, b := k.text, other.text
	for a != "" && b != "" {
		ra, na := decodeUpper(a)
		rb, nb := decodeUpper(b)
		if ra < rb {
			return -1
		}
		if ra > rb {
			return 1
		}
		a, b = a[na:], b[nb:]
	}
	switch {
	case len(k.text) < len(other.text):
		return -1
	case len(k.text) > len(other.text):
		return 1
	}
	return 0
}

// Less reports whether k orders strictly before other.
func (k Key) Less(other Key) bool {
	return k.Compare(other) < 0
}

func lowerASCII(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

func foldASCII(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'A' && c <= 'Z' {
			var b strings.Builder
			b.Grow(len(s))
			b.WriteString(s[:i])
			for ; i < len(s); i++ {
				b.WriteByte(lowerASCII(s[i]))
			}
			return b.String()
		}
	}
	return s
}

// decodeUpper yields the next rune of s uppercased (ASCII only) along with
// its byte width.
func decodeUpper(s string) (rune, int) {
	c := s[0]
	if c < 0x80 {
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		return rune(c), 1
	}
	return utf8.DecodeRuneInString(s)
}
