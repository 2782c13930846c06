package term

import (
	"encoding/json"
	"testing"
)

func TestTableCountsCaseInsensitively(t *testing.T) {
	table := NewTable()
	for _, s := range []string{"Apple", "apple", "APPLE", "banana"} {
		table.Add(NewKey(s))
	}

	if got := table.Count(NewKey("aPpLe")); got != 3 {
		t.Fatalf("expected 3 apples, got %d", got)
	}
	if got := table.Count(NewKey("banana")); got != 1 {
		t.Fatalf("expected 1 banana, got %d", got)
	}
	if table.Count(NewKey("cherry")) != 0 || table.Contains(NewKey("cherry")) {
		t.Fatalf("absent term should count 0")
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 distinct terms, got %d", table.Len())
	}
	if table.Total() != 4 {
		t.Fatalf("expected total 4, got %d", table.Total())
	}
}

func TestTablePreservesFirstSpelling(t *testing.T) {
	table := NewTable()
	table.Add(NewKey("Apple"))
	table.Add(NewKey("apple"))

	keys := table.Keys()
	if len(keys) != 1 || keys[0].String() != "Apple" {
		t.Fatalf("expected first-seen spelling Apple, got %+v", keys)
	}
}

func TestTableJSONRoundTrip(t *testing.T) {
	table := NewTable()
	table.Add(NewKey("Apple"))
	table.Add(NewKey("apple"))
	table.Add(NewKey("banana"))

	data, err := json.Marshal(table)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	restored := NewTable()
	if err := json.Unmarshal(data, restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if restored.Count(NewKey("apple")) != 2 || restored.Count(NewKey("banana")) != 1 {
		t.Fatalf("counts not preserved: %s", data)
	}
	if restored.Keys()[0].String() != "Apple" {
		t.Fatalf("spelling not preserved: %s", data)
	}
}

func TestTableRejectsNegativeCounts(t *testing.T) {
	table := NewTable()
	if err := json.Unmarshal([]byte(`{"apple": -1}`), table); err == nil {
		t.Fatalf("expected error for negative count")
	}
}
