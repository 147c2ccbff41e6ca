package logd

import (
	"github.com/logd-io/logd/handler"
	"github.com/logd-io/logd/registry"
	"github.com/logd-io/logd/severity"
	"github.com/logd-io/logd/trace"
)

// Option sets one field of a sparse configuration patch. Fields not named
// by any option stay inherited.
type Option func(*registry.Settings)

func buildPatch(opts []Option) registry.Settings {
	var patch registry.Settings
	for _, opt := range opts {
		opt(&patch)
	}
	return patch
}

// WithEnabled turns the logger on or off.
func WithEnabled(v bool) Option {
	return func(s *registry.Settings) { s.Enabled = &v }
}

// WithMinSeverity sets the dispatch threshold.
func WithMinSeverity(sev severity.Severity) Option {
	return func(s *registry.Settings) { s.MinSeverity = &sev }
}

// WithSourceLocation toggles call-site capture on records.
func WithSourceLocation(v bool) Option {
	return func(s *registry.Settings) { s.IncludeSource = &v }
}

// WithStackDepths sets the full per-severity frame-capture table. The map
// replaces any previously configured table wholesale.
func WithStackDepths(depths map[severity.Severity]int) Option {
	return func(s *registry.Settings) {
		s.StackDepths = make(map[severity.Severity]int, len(depths))
		for k, v := range depths {
			s.StackDepths[k] = v
		}
	}
}

// WithStackDepth sets the frame-capture count for a single severity,
// merging with depths set by earlier options in the same call.
func WithStackDepth(sev severity.Severity, depth int) Option {
	return func(s *registry.Settings) {
		if s.StackDepths == nil {
			s.StackDepths = make(map[severity.Severity]int)
		}
		s.StackDepths[sev] = depth
	}
}

// WithTimeFormat sets the timestamp rendering configuration.
func WithTimeFormat(format handler.TimeFormat) Option {
	return func(s *registry.Settings) { s.TimeFormat = &format }
}

// WithStackParser sets the stack-shaping configuration.
func WithStackParser(cfg trace.ParserConfig) Option {
	return func(s *registry.Settings) { s.StackParser = &cfg }
}

// WithHandlers sets the ordered output handler list. Calling it with no
// handlers supplies an empty list, which configure rejects; disable the
// logger instead.
func WithHandlers(handlers ...handler.Handler) Option {
	return func(s *registry.Settings) {
		s.Handlers = append([]handler.Handler{}, handlers...)
	}
}
