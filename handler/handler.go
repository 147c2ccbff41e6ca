// Package handler defines the log record payload, the output handler
// contract, and the built-in sinks (console, rotated file, batched HTTP,
// TCP socket).
//
// Handlers are compared by observable content, never by identity; the
// configuration engine relies on Equal to skip re-applies of semantically
// identical handler lists.
package handler

import (
	"io"
	"time"

	"github.com/logd-io/logd/severity"
	"github.com/logd-io/logd/trace"
)

// Record is the fully-built log payload handed to each handler in order.
// It is constructed only after the enabled/threshold fast path passes.
type Record struct {
	Time     time.Time
	Name     string
	Severity severity.Severity
	Message  string
	Fields   map[string]any
	Source   *trace.Frame
	Stack    []trace.Frame

	// Format is the time-formatting configuration resolved for the
	// emitting logger; handlers use it to render Time.
	Format TimeFormat
}

// Timestamp renders the record time according to its resolved format.
func (r *Record) Timestamp() string {
	return r.Format.Render(r.Time)
}

// ToMap returns the wire shape shared by the JSON-emitting handlers.
func (r *Record) ToMap() map[string]any {
	m := map[string]any{
		"time":     r.Timestamp(),
		"logger":   r.Name,
		"severity": r.Severity.String(),
		"message":  r.Message,
	}
	if len(r.Fields) > 0 {
		m["fields"] = r.Fields
	}
	if r.Source != nil {
		m["source"] = r.Source.String()
	}
	if len(r.Stack) > 0 {
		stack := make([]string, len(r.Stack))
		for i, f := range r.Stack {
			stack[i] = f.String()
		}
		m["stack"] = stack
	}
	return m
}

// Handler delivers a built record to one destination.
type Handler interface {
	// Kind identifies the handler flavor ("console", "file", "http", "socket").
	Kind() string

	// Emit writes one record. Errors are caught by the dispatch layer and
	// routed to the failsafe sink; they never reach the log call site.
	Emit(rec *Record) error

	// Equal reports content equality with another handler. Two separately
	// constructed handlers with identical observable configuration are equal.
	Equal(other Handler) bool
}

// SequencesEqual compares two handler lists element-wise by content.
func SequencesEqual(a, b []Handler) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// Close shuts a handler down if it holds resources. Handlers without a
// Close method are left alone.
func Close(h Handler) error {
	if c, ok := h.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
