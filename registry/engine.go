package registry

import (
	"sort"
	"sync"

	"github.com/logd-io/logd/handler"
	"github.com/logd-io/logd/naming"
)

// record is one registry entry: a sparse override set plus a version
// counter bumped exactly once per effective mutation. Records are created
// lazily and live for the life of the engine.
type record struct {
	settings Settings
	version  uint64
}

// cacheEntry is an immutable (version, snapshot) pair. Entries are
// replaced, never mutated, so readers can never observe a partially
// written snapshot.
type cacheEntry struct {
	version  uint64
	resolved *Resolved
}

// Engine owns the registry, the resolution cache, and the reverse
// descendant index. It is an explicit service object rather than ambient
// package state: independent instances (and independent test runs via
// Reset) are fully isolated.
//
// Reads are lock-minimal: a cache hit takes only the read lock. Writes
// serialize the mutate-bump-invalidate sequence under the write lock.
type Engine struct {
	mu      sync.RWMutex
	records map[string]*record
	cache   map[string]*cacheEntry

	// descendants maps each name to the set of strictly deeper names the
	// engine has seen, maintained at record creation. Invalidation walks
	// this index instead of rescanning the whole cache, so a configure
	// costs O(descendants) rather than O(cache size).
	descendants map[string]map[string]struct{}

	baseline handler.Handler
	sink     handler.Sink
}

// Option customizes an Engine.
type Option func(*Engine)

// WithBaselineHandler replaces the default console handler used when no
// logger in a chain sets a handler list.
func WithBaselineHandler(h handler.Handler) Option {
	return func(e *Engine) { e.baseline = h }
}

// WithFailsafe replaces the failsafe sink handed to dispatch consumers.
func WithFailsafe(s handler.Sink) Option {
	return func(e *Engine) { e.sink = s }
}

// New creates an empty engine with a record for the root.
func New(opts ...Option) *Engine {
	e := &Engine{
		records:     make(map[string]*record),
		cache:       make(map[string]*cacheEntry),
		descendants: make(map[string]map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.baseline == nil {
		e.baseline = handler.NewConsole(handler.ConsoleOptions{})
	}
	if e.sink == nil {
		e.sink = handler.DefaultSink()
	}

	e.mu.Lock()
	e.getOrCreateLocked(naming.Root)
	e.mu.Unlock()
	return e
}

// Failsafe returns the engine's failsafe sink.
func (e *Engine) Failsafe() handler.Sink { return e.sink }

// Ensure lazily creates the record for a normalized name. All engine
// entry points expect names that already passed naming.Normalize.
func (e *Engine) Ensure(name string) {
	e.mu.RLock()
	_, ok := e.records[name]
	e.mu.RUnlock()
	if ok {
		return
	}

	e.mu.Lock()
	e.getOrCreateLocked(name)
	e.mu.Unlock()
}

func (e *Engine) getOrCreateLocked(name string) *record {
	if rec, ok := e.records[name]; ok {
		return rec
	}

	rec := &record{}
	e.records[name] = rec

	// Register the new name under every ancestor so that invalidation
	// sweeps stay proportional to subtree size.
	chain := naming.Chain(name)
	for _, ancestor := range chain[1:] {
		set, ok := e.descendants[ancestor]
		if !ok {
			set = make(map[string]struct{})
			e.descendants[ancestor] = set
		}
		set[name] = struct{}{}
	}
	return rec
}

// Version returns the current version counter of a name's record,
// creating the record if needed.
func (e *Engine) Version(name string) uint64 {
	e.mu.RLock()
	if rec, ok := e.records[name]; ok {
		v := rec.version
		e.mu.RUnlock()
		return v
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.getOrCreateLocked(name).version
}

// Names returns all registered names, sorted.
func (e *Engine) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.records))
	for name := range e.records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Configure applies a sparse patch to a name's record. Supplied fields
// that deep-equal the stored values are skipped; if every supplied field
// matches, the call is a complete no-op: no version bump, no cache
// eviction. Otherwise all differing fields are applied, the version is
// bumped exactly once, and the name's subtree is evicted from the cache.
//
// Invalid input (negative stack depth, supplied-but-empty handler list)
// fails with a configuration error and leaves the record untouched.
func (e *Engine) Configure(name string, patch Settings) error {
	if err := patch.validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	rec := e.getOrCreateLocked(name)
	d := rec.settings.diffAgainst(patch)
	if !d.any() {
		return nil
	}

	rec.settings.apply(patch, d)
	rec.version++
	e.invalidateLocked(name)
	return nil
}

// Resolve returns the effective configuration for a name. A cached
// snapshot is returned only while its recorded version still matches the
// owning record; otherwise the hierarchy is re-walked and the result
// cached. There is no stale-but-returned state.
func (e *Engine) Resolve(name string) *Resolved {
	e.mu.RLock()
	if rec, ok := e.records[name]; ok {
		if entry, ok := e.cache[name]; ok && entry.version == rec.version {
			e.mu.RUnlock()
			return entry.resolved
		}
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	rec := e.getOrCreateLocked(name)
	if entry, ok := e.cache[name]; ok && entry.version == rec.version {
		return entry.resolved
	}

	resolved := e.resolveLocked(name)
	e.cache[name] = &cacheEntry{version: rec.version, resolved: resolved}
	return resolved
}

// invalidateLocked evicts the cached snapshot for a name and for every
// cached descendant. Descendant record versions are deliberately left
// untouched: the sweep is what forces their next read to recompute.
func (e *Engine) invalidateLocked(name string) {
	delete(e.cache, name)
	for d := range e.descendants[name] {
		delete(e.cache, d)
	}
}

// Freeze bakes the currently-effective configuration of a name into the
// sparse records of the name and its whole subtree: every still-unset
// field is set to the effective value, permanently disconnecting it from
// future ancestor changes. Fields already explicit are left alone. A record
// where nothing was copied keeps its version and its cache entry, so
// repeated or cascading freezes cause no spurious churn.
func (e *Engine) Freeze(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.getOrCreateLocked(name)
	effective := e.resolveLocked(name)

	// Snapshot the key set before touching any record: the sweep below
	// mutates entries and must not iterate the live map while doing so.
	targets := make([]string, 0, len(e.records))
	for k := range e.records {
		if k == name || naming.IsDescendant(k, name) {
			targets = append(targets, k)
		}
	}
	sort.Strings(targets)

	for _, k := range targets {
		rec := e.records[k]
		if e.freezeRecord(rec, effective) {
			rec.version++
			e.invalidateLocked(k)
		}
	}
}

// freezeRecord copies effective values into the record's unset fields,
// reporting whether anything was actually set.
func (e *Engine) freezeRecord(rec *record, effective *Resolved) bool {
	s := &rec.settings
	changed := false

	if s.Enabled == nil {
		v := effective.enabled
		s.Enabled = &v
		changed = true
	}
	if s.MinSeverity == nil {
		v := effective.minSeverity
		s.MinSeverity = &v
		changed = true
	}
	if s.IncludeSource == nil {
		v := effective.includeSource
		s.IncludeSource = &v
		changed = true
	}
	if s.StackDepths == nil {
		s.StackDepths = cloneDepths(effective.stackDepths)
		changed = true
	}
	if s.TimeFormat == nil {
		v := effective.timeFormat
		s.TimeFormat = &v
		changed = true
	}
	if s.StackParser == nil {
		v := effective.stackParser.Clone()
		s.StackParser = &v
		changed = true
	}
	if s.Handlers == nil {
		s.Handlers = append([]handler.Handler(nil), effective.handlers...)
		changed = true
	}
	return changed
}

// ClearCache drops every cached snapshot, forcing recomputation on the
// next read. Registry records are untouched. Test use only.
func (e *Engine) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[string]*cacheEntry)
}

// Reset drops all registry and cache state, keeping only a fresh root
// record. Test use only; production registries are append-only.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.records = make(map[string]*record)
	e.cache = make(map[string]*cacheEntry)
	e.descendants = make(map[string]map[string]struct{})
	e.getOrCreateLocked(naming.Root)
}

// cached reports whether a snapshot is currently cached for a name.
func (e *Engine) cached(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.cache[name]
	return ok
}
