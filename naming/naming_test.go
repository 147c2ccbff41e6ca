package naming

import (
	"reflect"
	"testing"

	"github.com/logd-io/logd/errors"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"", Root, false},
		{"global", Root, false},
		{"GLOBAL", Root, false},
		{"Global", Root, false},
		{"app", "app", false},
		{"App", "app", false},
		{"app.ui", "app.ui", false},
		{"APP.UI.Widgets", "app.ui.widgets", false},
		{"app_2.sub_module", "app_2.sub_module", false},
		{"app-ui", "", true},
		{"App-UI", "", true},
		{"app..ui", "", true},
		{".app", "", true},
		{"app.", "", true},
		{"app ui", "", true},
		{"app.ui!", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Normalize(%q) should fail", tt.input)
				}
				if !errors.IsNaming(err) {
					t.Errorf("Normalize(%q) error should be a naming error, got %v", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%q) failed: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, input := range []string{"", "GLOBAL", "App.UI", "a.b.c", "x_1"} {
		once, err := Normalize(input)
		if err != nil {
			t.Fatalf("Normalize(%q) failed: %v", input, err)
		}
		twice, err := Normalize(once)
		if err != nil {
			t.Fatalf("Normalize(Normalize(%q)) failed: %v", input, err)
		}
		if once != twice {
			t.Errorf("normalization not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestMustNormalizePanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("MustNormalize should panic on invalid input")
		}
	}()
	MustNormalize("not a name")
}

func TestParent(t *testing.T) {
	tests := []struct {
		name   string
		parent string
		ok     bool
	}{
		{"a.b.c", "a.b", true},
		{"a.b", "a", true},
		{"a", Root, true},
		{Root, "", false},
	}

	for _, tt := range tests {
		parent, ok := Parent(tt.name)
		if parent != tt.parent || ok != tt.ok {
			t.Errorf("Parent(%q) = (%q, %v), want (%q, %v)", tt.name, parent, ok, tt.parent, tt.ok)
		}
	}
}

func TestIsDescendant(t *testing.T) {
	tests := []struct {
		candidate string
		ancestor  string
		expected  bool
	}{
		{"app", Root, true},
		{"app.ui", Root, true},
		{Root, Root, false},
		{"app.ui", "app", true},
		{"app.ui.widgets", "app", true},
		{"app", "app", false},
		{"app.sibling", "app.ui", false},
		{"application", "app", false},
		{Root, "app", false},
	}

	for _, tt := range tests {
		if got := IsDescendant(tt.candidate, tt.ancestor); got != tt.expected {
			t.Errorf("IsDescendant(%q, %q) = %v, want %v", tt.candidate, tt.ancestor, got, tt.expected)
		}
	}
}

func TestDepth(t *testing.T) {
	if Depth(Root) != 0 {
		t.Error("root should have depth 0")
	}
	if Depth("app") != 1 {
		t.Error("single segment should have depth 1")
	}
	if Depth("a.b.c") != 3 {
		t.Error("a.b.c should have depth 3")
	}
}

func TestChain(t *testing.T) {
	got := Chain("a.b.c")
	want := []string{"a.b.c", "a.b", "a", Root}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Chain(a.b.c) = %v, want %v", got, want)
	}

	if got := Chain(Root); !reflect.DeepEqual(got, []string{Root}) {
		t.Errorf("Chain(root) = %v, want [%v]", got, Root)
	}
}
