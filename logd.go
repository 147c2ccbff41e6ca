// Package logd is a hierarchical structured logging library. Loggers form
// a dot-separated tree rooted at "global"; every setting (enabled flag,
// severity threshold, stack capture, time formatting, output handlers) is
// inherited from the nearest ancestor that sets it, resolved once, and
// cached until a relevant configure or freeze call.
package logd

import (
	"sync"

	"github.com/logd-io/logd/naming"
	"github.com/logd-io/logd/registry"
)

var (
	defaultRegistry *registry.Engine
	registryMu      sync.RWMutex
	registryOnce    sync.Once
)

// initDefault initializes the default registry lazily.
func initDefault() {
	registryOnce.Do(func() {
		if defaultRegistry == nil {
			defaultRegistry = registry.New()
		}
	})
}

// Default returns the process-wide registry instance.
func Default() *registry.Engine {
	registryMu.RLock()
	if defaultRegistry != nil {
		defer registryMu.RUnlock()
		return defaultRegistry
	}
	registryMu.RUnlock()

	initDefault()

	registryMu.RLock()
	defer registryMu.RUnlock()
	return defaultRegistry
}

// SetDefault replaces the process-wide registry. Intended for embedding
// applications that construct their own engine via registry.New.
func SetDefault(e *registry.Engine) {
	registryMu.Lock()
	defer registryMu.Unlock()
	defaultRegistry = e
}

// Reset drops all registry and cache state of the default registry.
// Test use only.
func Reset() {
	Default().Reset()
}

// Get returns a handle for the named logger in the default registry,
// creating its record on first reference. Empty input and any casing of
// "global" yield the root handle. Malformed names fail with a naming error.
func Get(name string) (*Logger, error) {
	return NewLogger(Default(), name)
}

// MustGet is Get panicking on malformed names.
func MustGet(name string) *Logger {
	l, err := Get(name)
	if err != nil {
		panic(err)
	}
	return l
}

// Root returns the handle of the hierarchy root.
func Root() *Logger {
	return MustGet(naming.Root)
}

// Configure applies a sparse configuration patch to a named logger in the
// default registry. Omitted fields are left unchanged.
func Configure(name string, opts ...Option) error {
	normalized, err := naming.Normalize(name)
	if err != nil {
		return err
	}
	return Default().Configure(normalized, buildPatch(opts))
}
