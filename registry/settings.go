// Package registry is the configuration-inheritance engine: a process-wide
// tree of sparse per-logger overrides, a resolver that walks the tree
// toward the root, and a version-checked cache of resolved snapshots.
package registry

import (
	"fmt"

	"github.com/logd-io/logd/errors"
	"github.com/logd-io/logd/handler"
	"github.com/logd-io/logd/severity"
	"github.com/logd-io/logd/trace"
)

// Settings is a sparse override record. Every field is explicitly optional:
// nil means "inherit from the nearest ancestor that sets it". Optionality is
// modeled with pointers and nil collections rather than in-domain sentinels,
// so a deliberately-zero stack depth is never mistaken for "unset".
type Settings struct {
	// Enabled turns the logger (and, by inheritance, its subtree) on or off.
	Enabled *bool

	// MinSeverity is the minimum severity that passes the dispatch gate.
	MinSeverity *severity.Severity

	// IncludeSource captures the call-site file and line on each record.
	IncludeSource *bool

	// StackDepths maps severities to stack-frame capture counts. The map is
	// inherited as a whole; severities missing from an explicitly-set map
	// fall back to the built-in table at resolve time.
	StackDepths map[severity.Severity]int

	// TimeFormat controls timestamp rendering.
	TimeFormat *handler.TimeFormat

	// StackParser controls how captured stacks are shaped.
	StackParser *trace.ParserConfig

	// Handlers is the ordered output destination list. A non-nil empty
	// list is invalid; use Enabled to silence a logger.
	Handlers []handler.Handler
}

// validate rejects semantically invalid patch input before any field is
// applied, so a failed configure leaves the record untouched.
func (s *Settings) validate() error {
	for sev, depth := range s.StackDepths {
		if !sev.Valid() {
			return errors.NewConfiguration("stack_depths", fmt.Sprintf("unknown severity %d", sev))
		}
		if depth < 0 {
			return errors.NewConfiguration("stack_depths",
				fmt.Sprintf("negative frame count %d for %s", depth, sev))
		}
	}
	if s.MinSeverity != nil && !s.MinSeverity.Valid() {
		return errors.NewConfiguration("min_severity", fmt.Sprintf("unknown severity %d", *s.MinSeverity))
	}
	if s.Handlers != nil && len(s.Handlers) == 0 {
		return errors.NewConfiguration("handlers", "handler list must not be empty when supplied")
	}
	return nil
}

// diff reports, field by field, whether the supplied patch value differs
// from the stored one. Comparison is structural: scalars by value, the
// depth map element-wise, handler sequences by content. Unsupplied patch
// fields never differ.
type diff struct {
	enabled       bool
	minSeverity   bool
	includeSource bool
	stackDepths   bool
	timeFormat    bool
	stackParser   bool
	handlers      bool
}

func (d diff) any() bool {
	return d.enabled || d.minSeverity || d.includeSource ||
		d.stackDepths || d.timeFormat || d.stackParser || d.handlers
}

func (s *Settings) diffAgainst(patch Settings) diff {
	var d diff
	if patch.Enabled != nil {
		d.enabled = s.Enabled == nil || *s.Enabled != *patch.Enabled
	}
	if patch.MinSeverity != nil {
		d.minSeverity = s.MinSeverity == nil || *s.MinSeverity != *patch.MinSeverity
	}
	if patch.IncludeSource != nil {
		d.includeSource = s.IncludeSource == nil || *s.IncludeSource != *patch.IncludeSource
	}
	if patch.StackDepths != nil {
		d.stackDepths = s.StackDepths == nil || !depthsEqual(s.StackDepths, patch.StackDepths)
	}
	if patch.TimeFormat != nil {
		d.timeFormat = s.TimeFormat == nil || !s.TimeFormat.Equal(*patch.TimeFormat)
	}
	if patch.StackParser != nil {
		d.stackParser = s.StackParser == nil || !s.StackParser.Equal(*patch.StackParser)
	}
	if patch.Handlers != nil {
		d.handlers = s.Handlers == nil || !handler.SequencesEqual(s.Handlers, patch.Handlers)
	}
	return d
}

// apply copies the differing patch fields into the record. Collections are
// cloned so the caller cannot mutate stored state afterwards.
func (s *Settings) apply(patch Settings, d diff) {
	if d.enabled {
		v := *patch.Enabled
		s.Enabled = &v
	}
	if d.minSeverity {
		v := *patch.MinSeverity
		s.MinSeverity = &v
	}
	if d.includeSource {
		v := *patch.IncludeSource
		s.IncludeSource = &v
	}
	if d.stackDepths {
		s.StackDepths = cloneDepths(patch.StackDepths)
	}
	if d.timeFormat {
		v := *patch.TimeFormat
		s.TimeFormat = &v
	}
	if d.stackParser {
		v := patch.StackParser.Clone()
		s.StackParser = &v
	}
	if d.handlers {
		s.Handlers = append([]handler.Handler(nil), patch.Handlers...)
	}
}

func depthsEqual(a, b map[severity.Severity]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

func cloneDepths(m map[severity.Severity]int) map[severity.Severity]int {
	out := make(map[severity.Severity]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
