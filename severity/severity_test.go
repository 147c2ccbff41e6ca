package severity

import "testing"

func TestOrdering(t *testing.T) {
	if !(Trace < Debug && Debug < Info && Info < Warning && Warning < Error) {
		t.Error("severity levels are not strictly ascending")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		expected Severity
		ok       bool
	}{
		{"trace", Trace, true},
		{"debug", Debug, true},
		{"DEBUG", Debug, true},
		{"info", Info, true},
		{"warn", Warning, true},
		{"warning", Warning, true},
		{"WARNING", Warning, true},
		{"error", Error, true},
		{" error ", Error, true},
		{"fatal", Debug, false},
		{"", Debug, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseStrict(tt.input)
			if got != tt.expected || ok != tt.ok {
				t.Errorf("ParseStrict(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, s := range All() {
		got := Parse(s.String())
		if got != s {
			t.Errorf("Parse(%q) = %v, want %v", s.String(), got, s)
		}
	}
}

func TestValid(t *testing.T) {
	for _, s := range All() {
		if !s.Valid() {
			t.Errorf("%v should be valid", s)
		}
	}
	if Severity(200).Valid() {
		t.Error("out-of-range severity should be invalid")
	}
}
