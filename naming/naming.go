// Package naming canonicalizes and validates logger names.
//
// A logger name is either the root identifier "global" or a dot-separated
// sequence of lowercase segments matching [a-z0-9_]+. The parent of "a.b.c"
// is "a.b"; the parent of a single-segment name is the root; the root has
// no parent.
package naming

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/logd-io/logd/errors"
)

// Root is the identifier of the hierarchy root. Empty or absent input and
// any case variant of it normalize to this value.
const Root = "global"

var namePattern = regexp.MustCompile(`^[a-z0-9_]+(\.[a-z0-9_]+)*$`)

var lower = cases.Lower(language.Und)

// Normalize canonicalizes a raw logger name. Empty input and any casing of
// the root identifier yield Root. Anything else is lowercased and must fully
// match the segment grammar; otherwise a naming error is returned.
func Normalize(input string) (string, error) {
	if input == "" {
		return Root, nil
	}

	name := lower.String(input)
	if name == Root {
		return Root, nil
	}

	if !namePattern.MatchString(name) {
		return "", errors.NewNaming(input, "must be dot-separated segments of [a-z0-9_]")
	}
	return name, nil
}

// MustNormalize is Normalize panicking on invalid input. Intended for
// compile-time-constant names.
func MustNormalize(input string) string {
	name, err := Normalize(input)
	if err != nil {
		panic(err)
	}
	return name
}

// Parent returns the parent of a normalized name. Single-segment names
// report the root; the root reports ok=false.
func Parent(name string) (string, bool) {
	if name == Root {
		return "", false
	}
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		return name[:idx], true
	}
	return Root, true
}

// IsDescendant reports whether candidate sits strictly below ancestor in
// the hierarchy. Every non-root name is a descendant of the root.
func IsDescendant(candidate, ancestor string) bool {
	if ancestor == Root {
		return candidate != Root
	}
	return strings.HasPrefix(candidate, ancestor+".")
}

// Depth returns the number of segments in a normalized name; the root has
// depth zero.
func Depth(name string) int {
	if name == Root {
		return 0
	}
	return strings.Count(name, ".") + 1
}

// Chain returns the inheritance walk for a normalized name: the name
// itself, each ancestor in order, ending at the root.
func Chain(name string) []string {
	chain := []string{name}
	for {
		parent, ok := Parent(name)
		if !ok {
			return chain
		}
		chain = append(chain, parent)
		name = parent
	}
}
