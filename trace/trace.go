// Package trace implements the sink fed by FHIRPath's trace() function.
// trace(name[, projection]) is always a no-op passthrough with respect to
// its evaluation result (spec.md §5's utility functions); Sink only
// receives a side-channel copy of what was traced.
//
// Grounded on the teacher's fpTracer/traceEntry in internal/backend.go,
// which plays exactly this role against the wrapped library's own Tracer
// interface (`tracer.Log(name string, collection fhirpath.Collection) error`).
package trace

import (
	"fmt"
	"log"

	"fhirpath-go/value"
)

// Sink receives one entry per trace() call.
type Sink interface {
	Log(name string, values value.Collection)
}

// Noop discards every entry; the default Context uses it so tracing is
// opt-in.
type Noop struct{}

func (Noop) Log(string, value.Collection) {}

// StdLogger writes each entry through the standard library's log package,
// matching the ambient logging style the teacher's cmd entrypoints use
// (plain log.Printf, no structured logging library in the retrieval pack).
type StdLogger struct {
	Logger *log.Logger
}

func (s StdLogger) Log(name string, values value.Collection) {
	l := s.Logger
	if l == nil {
		l = log.Default()
	}
	l.Printf("trace(%s): %s", name, values.String())
}

// Memory accumulates entries in order, for tests and for callers (like the
// teacher's fhirpath-lab operations) that surface trace output back to the
// caller instead of a log stream.
type Memory struct {
	Entries []Entry
}

// Entry is one recorded trace() call.
type Entry struct {
	Name   string
	Values value.Collection
}

func (m *Memory) Log(name string, values value.Collection) {
	m.Entries = append(m.Entries, Entry{Name: name, Values: append(value.Collection(nil), values...)})
}

func (e Entry) String() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Values.String())
}
