// Package trace captures and shapes call-stack information attached to
// log records.
package trace

import (
	"fmt"
	"runtime"
	"strings"
)

// Frame is a single resolved call-stack frame.
type Frame struct {
	Function string `json:"function"`
	File     string `json:"file"`
	Line     int    `json:"line"`
}

// String renders the frame in file:line func form.
func (f Frame) String() string {
	return fmt.Sprintf("%s:%d %s", f.File, f.Line, f.Function)
}

// ParserConfig controls how raw program-counter stacks are turned into
// frames. It is an inheritable per-logger setting.
type ParserConfig struct {
	// Skip is the number of leading frames dropped before capture starts,
	// on top of the capture machinery's own frames.
	Skip int `json:"skip" mapstructure:"skip"`

	// MaxDepth caps the number of captured frames.
	MaxDepth int `json:"max_depth" mapstructure:"max_depth"`

	// TrimPrefixes are path prefixes stripped from frame file names, and
	// module prefixes stripped from function names.
	TrimPrefixes []string `json:"trim_prefixes" mapstructure:"trim_prefixes"`
}

// DefaultParserConfig returns the baseline parser settings used when no
// logger in the chain sets its own.
func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		Skip:     0,
		MaxDepth: 32,
	}
}

// Equal reports structural equality, comparing prefix lists element-wise.
func (c ParserConfig) Equal(other ParserConfig) bool {
	if c.Skip != other.Skip || c.MaxDepth != other.MaxDepth {
		return false
	}
	if len(c.TrimPrefixes) != len(other.TrimPrefixes) {
		return false
	}
	for i, p := range c.TrimPrefixes {
		if other.TrimPrefixes[i] != p {
			return false
		}
	}
	return true
}

// Clone returns a deep copy; the prefix list is never shared.
func (c ParserConfig) Clone() ParserConfig {
	out := c
	if c.TrimPrefixes != nil {
		out.TrimPrefixes = append([]string(nil), c.TrimPrefixes...)
	}
	return out
}

// Capture collects up to max frames, skipping skip frames above the caller
// of Capture. A non-positive max yields nil.
func Capture(skip, max int) []Frame {
	return CaptureWith(ParserConfig{Skip: skip, MaxDepth: max})
}

// CaptureWith collects frames according to a parser configuration.
func CaptureWith(cfg ParserConfig) []Frame {
	if cfg.MaxDepth <= 0 {
		return nil
	}

	pcs := make([]uintptr, cfg.MaxDepth)
	// Skip runtime.Callers, CaptureWith, and any caller-requested frames.
	n := runtime.Callers(cfg.Skip+2, pcs)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	out := make([]Frame, 0, n)
	for {
		fr, more := frames.Next()
		out = append(out, Frame{
			Function: trimFunction(fr.Function, cfg.TrimPrefixes),
			File:     trimFile(fr.File, cfg.TrimPrefixes),
			Line:     fr.Line,
		})
		if !more || len(out) >= cfg.MaxDepth {
			break
		}
	}
	return out
}

// Caller returns the single frame of the caller, skip frames up.
func Caller(skip int) (Frame, bool) {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Frame{}, false
	}
	fn := runtime.FuncForPC(pc)
	name := ""
	if fn != nil {
		name = trimFunction(fn.Name(), nil)
	}
	return Frame{Function: name, File: file, Line: line}, true
}

func trimFunction(name string, prefixes []string) string {
	for _, p := range prefixes {
		name = strings.TrimPrefix(name, p)
	}
	// Shorten to package-qualified form.
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}

func trimFile(file string, prefixes []string) string {
	for _, p := range prefixes {
		if strings.HasPrefix(file, p) {
			return strings.TrimPrefix(file, p)
		}
	}
	return file
}

// Format renders frames one per line, most recent call first.
func Format(frames []Frame) string {
	var b strings.Builder
	for i, f := range frames {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(f.String())
	}
	return b.String()
}
