package trace

import (
	"strings"
	"testing"
)

func TestCapture(t *testing.T) {
	frames := Capture(0, 8)
	if len(frames) == 0 {
		t.Fatal("Capture should return at least one frame")
	}
	if !strings.Contains(frames[0].Function, "TestCapture") {
		t.Errorf("first frame should be the test function, got %q", frames[0].Function)
	}
}

func TestCaptureZeroDepth(t *testing.T) {
	if frames := Capture(0, 0); frames != nil {
		t.Errorf("zero depth should capture nothing, got %d frames", len(frames))
	}
}

func TestCaptureMaxDepth(t *testing.T) {
	frames := Capture(0, 2)
	if len(frames) > 2 {
		t.Errorf("expected at most 2 frames, got %d", len(frames))
	}
}

func TestCaller(t *testing.T) {
	frame, ok := Caller(0)
	if !ok {
		t.Fatal("Caller should succeed inside a test")
	}
	if !strings.HasSuffix(frame.File, "trace_test.go") {
		t.Errorf("caller file should be this test file, got %q", frame.File)
	}
	if frame.Line == 0 {
		t.Error("caller line should be set")
	}
}

func TestParserConfigEqual(t *testing.T) {
	a := ParserConfig{Skip: 1, MaxDepth: 8, TrimPrefixes: []string{"/src/"}}
	b := ParserConfig{Skip: 1, MaxDepth: 8, TrimPrefixes: []string{"/src/"}}

	if !a.Equal(b) {
		t.Error("structurally identical configs should be equal")
	}

	b.TrimPrefixes = []string{"/other/"}
	if a.Equal(b) {
		t.Error("different prefixes should not be equal")
	}

	b = a.Clone()
	if !a.Equal(b) {
		t.Error("clone should be equal to the original")
	}
	b.TrimPrefixes[0] = "mutated"
	if a.TrimPrefixes[0] == "mutated" {
		t.Error("clone should not share the prefix slice")
	}
}

func TestTrimPrefixes(t *testing.T) {
	if got := trimFile("/home/user/src/pkg/file.go", []string{"/home/user/src/"}); got != "pkg/file.go" {
		t.Errorf("trimFile = %q, want pkg/file.go", got)
	}
	if got := trimFile("/elsewhere/file.go", []string{"/home/"}); got != "/elsewhere/file.go" {
		t.Errorf("trimFile should leave unmatched paths alone, got %q", got)
	}
}

func TestFormat(t *testing.T) {
	frames := []Frame{
		{Function: "pkg.A", File: "a.go", Line: 1},
		{Function: "pkg.B", File: "b.go", Line: 2},
	}
	got := Format(frames)
	want := "a.go:1 pkg.A\nb.go:2 pkg.B"
	if got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
}
