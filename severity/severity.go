// Package severity defines the ordered severity scale shared by the
// configuration engine and the output handlers.
package severity

import "strings"

// Severity is an ordered log level. Lower values are chattier.
type Severity uint8

const (
	// Trace represents very fine-grained diagnostic messages.
	Trace Severity = iota

	// Debug represents development diagnostics.
	Debug

	// Info indicates normal operational messages.
	Info

	// Warning signifies potential issues that don't disrupt core functionality.
	Warning

	// Error denotes failures in specific operations or components.
	Error
)

// All lists every severity in ascending order.
func All() []Severity {
	return []Severity{Trace, Debug, Info, Warning, Error}
}

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	switch s {
	case Trace:
		return "trace"
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the defined levels.
func (s Severity) Valid() bool {
	return s <= Error
}

// Parse converts a level name to a Severity. Matching is case-insensitive
// and accepts the common short forms. Unknown names fall back to Debug,
// mirroring how unconfigured loggers behave.
func Parse(level string) Severity {
	s, _ := ParseStrict(level)
	return s
}

// ParseStrict converts a level name to a Severity and reports whether the
// name was recognized.
func ParseStrict(level string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return Trace, true
	case "debug":
		return Debug, true
	case "info":
		return Info, true
	case "warn", "warning":
		return Warning, true
	case "error":
		return Error, true
	default:
		return Debug, false
	}
}
