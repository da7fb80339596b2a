package trace

import (
	"testing"

	"fhirpath-go/value"
)

func TestMemoryAccumulatesEntriesInOrder(t *testing.T) {
	m := &Memory{}
	m.Log("first", value.Of(value.Int(1)))
	m.Log("second", value.Of(value.Str("a")))

	if len(m.Entries) != 2 {
		t.Fatalf("Entries = %v, want 2", m.Entries)
	}
	if m.Entries[0].Name != "first" || m.Entries[1].Name != "second" {
		t.Fatalf("Entries out of order: %v", m.Entries)
	}
}

func TestMemoryCopiesValuesDefensively(t *testing.T) {
	m := &Memory{}
	focus := value.Of(value.Int(1), value.Int(2))
	m.Log("x", focus)
	focus[0] = value.Int(99)

	if i, _ := m.Entries[0].Values[0].Int(); i != 1 {
		t.Fatalf("Memory.Log should snapshot its slice, got mutated value %d", i)
	}
}

func TestNoopDiscardsSilently(t *testing.T) {
	var n Noop
	n.Log("anything", value.Of(value.Bool(true))) // must not panic
}

func TestEntryStringIncludesNameAndValues(t *testing.T) {
	e := Entry{Name: "names", Values: value.Of(value.Str("Alice"))}
	s := e.String()
	if s == "" {
		t.Fatalf("Entry.String() should not be empty")
	}
}
