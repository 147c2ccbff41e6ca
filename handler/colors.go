package handler

import "github.com/logd-io/logd/severity"

// Color represents a terminal ANSI color escape code.
type Color = string

// Reset code
const (
	Reset Color = "\033[0m"
)

// Foreground colors
const (
	Red    Color = "\033[31m"
	Green  Color = "\033[32m"
	Yellow Color = "\033[33m"
	Blue   Color = "\033[34m"
	Purple Color = "\033[35m"
	Cyan   Color = "\033[36m"
	Gray   Color = "\033[90m"
)

// Bold foreground colors
const (
	BoldRed    Color = "\033[1;31m"
	BoldYellow Color = "\033[1;33m"
	BoldCyan   Color = "\033[1;36m"
)

// severityColor maps a severity to the color used by the console handler.
func severityColor(s severity.Severity) Color {
	switch s {
	case severity.Trace:
		return Gray
	case severity.Debug:
		return Cyan
	case severity.Info:
		return Green
	case severity.Warning:
		return Yellow
	case severity.Error:
		return Red
	default:
		return Gray
	}
}

// colorize wraps text in the given color followed by a reset.
func colorize(color Color, text string) string {
	return color + text + Reset
}
