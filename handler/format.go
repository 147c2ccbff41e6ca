package handler

import "time"

// TimeFormat is the inheritable time-formatting configuration. The zero
// value is not meaningful; use DefaultTimeFormat.
type TimeFormat struct {
	// Layout is a Go reference-time layout string.
	Layout string `json:"layout" mapstructure:"layout"`

	// UTC selects UTC rendering over local time.
	UTC bool `json:"utc" mapstructure:"utc"`

	// Prefix is prepended verbatim to every rendered timestamp.
	Prefix string `json:"prefix" mapstructure:"prefix"`
}

// DefaultTimeFormat returns the baseline used when no logger in the chain
// sets its own format.
func DefaultTimeFormat() TimeFormat {
	return TimeFormat{
		Layout: "2006-01-02 15:04:05.000",
	}
}

// Render formats t according to the configuration.
func (f TimeFormat) Render(t time.Time) string {
	if f.UTC {
		t = t.UTC()
	}
	layout := f.Layout
	if layout == "" {
		layout = DefaultTimeFormat().Layout
	}
	return f.Prefix + t.Format(layout)
}

// Equal reports structural equality.
func (f TimeFormat) Equal(other TimeFormat) bool {
	return f == other
}
