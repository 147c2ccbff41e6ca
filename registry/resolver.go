package registry

import (
	"github.com/logd-io/logd/env_mode"
	"github.com/logd-io/logd/handler"
	"github.com/logd-io/logd/naming"
	"github.com/logd-io/logd/severity"
	"github.com/logd-io/logd/trace"
)

// Resolved is a fully-populated, immutable configuration snapshot. No
// inherit placeholder remains: every accessor returns a concrete value.
// Collections are copied on access so cached state cannot be mutated.
type Resolved struct {
	enabled       bool
	minSeverity   severity.Severity
	includeSource bool
	stackDepths   map[severity.Severity]int
	timeFormat    handler.TimeFormat
	stackParser   trace.ParserConfig
	handlers      []handler.Handler
}

// Enabled reports whether the logger emits at all.
func (r *Resolved) Enabled() bool { return r.enabled }

// MinSeverity is the dispatch threshold.
func (r *Resolved) MinSeverity() severity.Severity { return r.minSeverity }

// IncludeSource reports whether call-site capture is on.
func (r *Resolved) IncludeSource() bool { return r.includeSource }

// StackDepth returns the frame-capture count for one severity.
func (r *Resolved) StackDepth(s severity.Severity) int { return r.stackDepths[s] }

// StackDepths returns a copy of the full per-severity table.
func (r *Resolved) StackDepths() map[severity.Severity]int {
	return cloneDepths(r.stackDepths)
}

// TimeFormat is the resolved timestamp configuration.
func (r *Resolved) TimeFormat() handler.TimeFormat { return r.timeFormat }

// StackParser is the resolved stack-shaping configuration.
func (r *Resolved) StackParser() trace.ParserConfig { return r.stackParser.Clone() }

// Handlers returns a copy of the ordered handler list.
func (r *Resolved) Handlers() []handler.Handler {
	return append([]handler.Handler(nil), r.handlers...)
}

// ForEachHandler visits the ordered handler list without copying it.
// Dispatch uses this on the hot path.
func (r *Resolved) ForEachHandler(fn func(h handler.Handler)) {
	for _, h := range r.handlers {
		fn(h)
	}
}

// defaultStackDepths is the built-in per-severity capture table: nothing
// below warning, a short stack on warnings, a deep one on errors.
func defaultStackDepths() map[severity.Severity]int {
	return map[severity.Severity]int{
		severity.Trace:   0,
		severity.Debug:   0,
		severity.Info:    0,
		severity.Warning: 4,
		severity.Error:   16,
	}
}

// resolveLocked computes the effective configuration for a normalized name
// by walking toward the root and taking, per field independently, the
// nearest explicitly-set value. Built-in defaults apply only when no node
// in the chain sets a field. Total: it never fails. Caller holds at least
// a read lock.
func (e *Engine) resolveLocked(name string) *Resolved {
	out := &Resolved{
		enabled:       env_mode.IsDev(),
		minSeverity:   severity.Debug,
		includeSource: false,
		timeFormat:    handler.DefaultTimeFormat(),
		stackParser:   trace.DefaultParserConfig(),
	}

	var (
		depths   map[severity.Severity]int
		handlers []handler.Handler

		haveEnabled, haveMin, haveSource, haveDepths,
		haveFormat, haveParser, haveHandlers bool
	)

	for _, node := range naming.Chain(name) {
		rec, ok := e.records[node]
		if !ok {
			continue
		}
		s := &rec.settings

		if !haveEnabled && s.Enabled != nil {
			out.enabled = *s.Enabled
			haveEnabled = true
		}
		if !haveMin && s.MinSeverity != nil {
			out.minSeverity = *s.MinSeverity
			haveMin = true
		}
		if !haveSource && s.IncludeSource != nil {
			out.includeSource = *s.IncludeSource
			haveSource = true
		}
		if !haveDepths && s.StackDepths != nil {
			depths = s.StackDepths
			haveDepths = true
		}
		if !haveFormat && s.TimeFormat != nil {
			out.timeFormat = *s.TimeFormat
			haveFormat = true
		}
		if !haveParser && s.StackParser != nil {
			out.stackParser = s.StackParser.Clone()
			haveParser = true
		}
		if !haveHandlers && s.Handlers != nil {
			handlers = s.Handlers
			haveHandlers = true
		}

		if haveEnabled && haveMin && haveSource && haveDepths &&
			haveFormat && haveParser && haveHandlers {
			break
		}
	}

	// The nearest-set depth map wins as a whole; severities it leaves out
	// fall back to the built-in table so the snapshot stays total.
	out.stackDepths = defaultStackDepths()
	if haveDepths {
		for sev, n := range depths {
			out.stackDepths[sev] = n
		}
	}

	if haveHandlers {
		out.handlers = append([]handler.Handler(nil), handlers...)
	} else {
		out.handlers = []handler.Handler{e.baseline}
	}

	return out
}
