package term

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Table is a frequency table keyed case-insensitively by term. The first
// spelling seen for a term is the one preserved for persistence; later
// occurrences only bump the count.
type Table struct {
	entries map[string]*entry
}

type entry struct {
	term  Key
	count int
}

// NewTable returns an empty frequency table.
func NewTable() *Table {
	return &Table{entries: make(map[string]*entry)}
}

// Add records one occurrence of t. The key is copied on first insert so the
// table never retains a borrowed buffer.
func (t *Table) Add(k Key) {
	t.AddN(k, 1)
}

// AddN records n occurrences of k.
func (t *Table) AddN(k Key, n int) {
	folded := k.Fold()
	if e, ok := t.entries[folded]; ok {
		e.count += n
		return
	}
	t.entries[folded] = &entry{term: k.Own(), count: n}
}

// Count returns the number of recorded occurrences of k, 0 when absent.
func (t *Table) Count(k Key) int {
	if e, ok := t.entries[k.Fold()]; ok {
		return e.count
	}
	return 0
}

// Contains reports whether k has been recorded at least once.
func (t *Table) Contains(k Key) bool {
	_, ok := t.entries[k.Fold()]
	return ok
}

// Len returns the number of distinct terms in the table.
func (t *Table) Len() int {
	return len(t.entries)
}

// Total returns the sum of all counts.
func (t *Table) Total() int {
	total := 0
	for _, e := range t.entries {
		total += e.count
	}
	return total
}

// Range calls fn for every term and its count until fn returns false.
// Iteration order is unspecified.
func (t *Table) Range(fn func(k Key, count int) bool) {
	for _, e := range t.entries {
		if !fn(e.term, e.count) {
			return
		}
	}
}

// Keys returns the distinct terms sorted by the key ordering.
func (t *Table) Keys() []Key {
	keys := make([]Key, 0, len(t.entries))
	for _, e := range t.entries {
		keys = append(keys, e.term)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// MarshalJSON encodes the table as an object mapping the preserved raw
// spelling of each term to its count.
func (t *Table) MarshalJSON() ([]byte, error) {
	m := make(map[string]int, len(t.entries))
	for _, e := range t.entries {
		m[e.term.String()] = e.count
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes the object form produced by MarshalJSON.
func (t *Table) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	t.entries = make(map[string]*entry, len(m))
	for raw, count := range m {
		if count < 0 {
			return fmt.Errorf("negative count %d for term %q", count, raw)
		}
		t.AddN(NewKey(raw), count)
	}
	return nil
}
