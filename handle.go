package logd

import (
	"fmt"
	"time"

	"github.com/logd-io/logd/handler"
	"github.com/logd-io/logd/naming"
	"github.com/logd-io/logd/registry"
	"github.com/logd-io/logd/severity"
	"github.com/logd-io/logd/trace"
)

// Logger is a thin, stateless handle onto one node of the logger tree. It
// carries only its normalized name (plus any bound fields); every property
// read goes through the registry's resolution cache, so a handle is always
// current and handles are freely shareable across goroutines.
type Logger struct {
	name   string
	eng    *registry.Engine
	fields map[string]any
}

// NewLogger returns a handle bound to an explicit registry instance.
func NewLogger(eng *registry.Engine, name string) (*Logger, error) {
	normalized, err := naming.Normalize(name)
	if err != nil {
		return nil, err
	}
	eng.Ensure(normalized)
	return &Logger{name: normalized, eng: eng}, nil
}

// Name returns the normalized logger name.
func (l *Logger) Name() string { return l.name }

// Parent returns the handle of the parent logger, or nil for the root.
func (l *Logger) Parent() *Logger {
	parent, ok := naming.Parent(l.name)
	if !ok {
		return nil
	}
	return &Logger{name: parent, eng: l.eng, fields: l.fields}
}

// Child returns a handle for a logger nested under this one.
func (l *Logger) Child(segment string) (*Logger, error) {
	name := segment
	if l.name != naming.Root {
		name = l.name + "." + segment
	}
	child, err := NewLogger(l.eng, name)
	if err != nil {
		return nil, err
	}
	child.fields = l.fields
	return child, nil
}

// WithFields returns a handle that attaches the given fields to every
// record it emits. The handle's configuration state is unchanged.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	merged := make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{name: l.name, eng: l.eng, fields: merged}
}

// Enabled reports the resolved enabled flag.
func (l *Logger) Enabled() bool {
	return l.eng.Resolve(l.name).Enabled()
}

// MinSeverity reports the resolved dispatch threshold.
func (l *Logger) MinSeverity() severity.Severity {
	return l.eng.Resolve(l.name).MinSeverity()
}

// IncludeSource reports whether call-site capture is resolved on.
func (l *Logger) IncludeSource() bool {
	return l.eng.Resolve(l.name).IncludeSource()
}

// StackDepth reports the resolved frame-capture count for a severity.
func (l *Logger) StackDepth(sev severity.Severity) int {
	return l.eng.Resolve(l.name).StackDepth(sev)
}

// TimeFormat reports the resolved timestamp configuration.
func (l *Logger) TimeFormat() handler.TimeFormat {
	return l.eng.Resolve(l.name).TimeFormat()
}

// StackParser reports the resolved stack-shaping configuration.
func (l *Logger) StackParser() trace.ParserConfig {
	return l.eng.Resolve(l.name).StackParser()
}

// Handlers returns a copy of the resolved handler list.
func (l *Logger) Handlers() []handler.Handler {
	return l.eng.Resolve(l.name).Handlers()
}

// Configure applies a sparse patch to this logger's record.
func (l *Logger) Configure(opts ...Option) error {
	return l.eng.Configure(l.name, buildPatch(opts))
}

// Freeze bakes the currently-effective configuration into this logger and
// its whole subtree, disconnecting every still-inherited field from future
// ancestor changes.
func (l *Logger) Freeze() {
	l.eng.Freeze(l.name)
}

// Trace logs a message at trace severity.
func (l *Logger) Trace(msg string) { l.log(severity.Trace, msg) }

// Tracef logs a formatted message at trace severity.
func (l *Logger) Tracef(format string, args ...any) {
	if l.pass(severity.Trace) {
		l.log(severity.Trace, fmt.Sprintf(format, args...))
	}
}

// Debug logs a message at debug severity.
func (l *Logger) Debug(msg string) { l.log(severity.Debug, msg) }

// Debugf logs a formatted message at debug severity.
func (l *Logger) Debugf(format string, args ...any) {
	if l.pass(severity.Debug) {
		l.log(severity.Debug, fmt.Sprintf(format, args...))
	}
}

// Info logs a message at info severity.
func (l *Logger) Info(msg string) { l.log(severity.Info, msg) }

// Infof logs a formatted message at info severity.
func (l *Logger) Infof(format string, args ...any) {
	if l.pass(severity.Info) {
		l.log(severity.Info, fmt.Sprintf(format, args...))
	}
}

// Warn logs a message at warning severity.
func (l *Logger) Warn(msg string) { l.log(severity.Warning, msg) }

// Warnf logs a formatted message at warning severity.
func (l *Logger) Warnf(format string, args ...any) {
	if l.pass(severity.Warning) {
		l.log(severity.Warning, fmt.Sprintf(format, args...))
	}
}

// Error logs a message at error severity.
func (l *Logger) Error(msg string) { l.log(severity.Error, msg) }

// Errorf logs a formatted message at error severity.
func (l *Logger) Errorf(format string, args ...any) {
	if l.pass(severity.Error) {
		l.log(severity.Error, fmt.Sprintf(format, args...))
	}
}

// Log logs a message at an explicit severity.
func (l *Logger) Log(sev severity.Severity, msg string) { l.log(sev, msg) }

// pass is the dispatch gate: two resolved field reads, no record work.
func (l *Logger) pass(sev severity.Severity) bool {
	r := l.eng.Resolve(l.name)
	return r.Enabled() && sev >= r.MinSeverity()
}

// log builds and dispatches a record once the fast path passes. Record
// construction, source capture, and stack capture all happen only after
// the enabled/threshold check.
func (l *Logger) log(sev severity.Severity, msg string) {
	r := l.eng.Resolve(l.name)
	if !r.Enabled() || sev < r.MinSeverity() {
		return
	}

	rec := &handler.Record{
		Time:     time.Now(),
		Name:     l.name,
		Severity: sev,
		Message:  msg,
		Fields:   l.fields,
		Format:   r.TimeFormat(),
	}

	if r.IncludeSource() {
		// Skip log and its exported wrapper.
		if frame, ok := trace.Caller(2); ok {
			rec.Source = &frame
		}
	}

	if depth := r.StackDepth(sev); depth > 0 {
		cfg := r.StackParser()
		cfg.MaxDepth = depth
		cfg.Skip += 2
		rec.Stack = trace.CaptureWith(cfg)
	}

	dispatch(r, rec, l.eng.Failsafe())
}
