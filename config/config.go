// Package config loads logger-tree configuration from a file. A file holds
// sparse per-logger sections that are applied as configuration patches, so
// reloading an unchanged file is free: the deep-equality skip in the
// registry turns redundant re-applies into no-ops.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/creasty/defaults"
	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/logd-io/logd/errors"
	"github.com/logd-io/logd/handler"
	"github.com/logd-io/logd/naming"
	"github.com/logd-io/logd/registry"
	"github.com/logd-io/logd/severity"
)

// Load reads the configuration file named by opts. Environment variables
// override file values, namespaced by opts.EnvPrefix when set.
func Load(opts Options) (*Loader, error) {
	if opts.Path == "" {
		return nil, errors.NewConfiguration("path", "configuration file path is empty")
	}

	// Logger names contain dots, so the default key delimiter would split
	// them into nested keys.
	v := viper.NewWithOptions(viper.KeyDelimiter("::"))
	v.SetConfigFile(opts.Path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.WrapWithType(err, errors.ErrorTypeConfiguration,
			fmt.Sprintf("reading config file %s", opts.Path))
	}

	v.SetEnvKeyReplacer(strings.NewReplacer("::", "_"))
	if opts.EnvPrefix != "" {
		v.SetEnvPrefix(opts.EnvPrefix)
	}
	v.AutomaticEnv()
	applyEnvOverrides(v, opts.EnvPrefix)

	return &Loader{
		instance: v,
		opts:     opts,
		validate: validator.New(),
		owned:    make(map[string][]handler.Handler),
	}, nil
}

// applyEnvOverrides walks all known keys and overrides each with its
// matching environment variable when one is set, so the environment wins
// over file values.
func applyEnvOverrides(v *viper.Viper, envPrefix string) {
	replacer := strings.NewReplacer("::", "_", ".", "_")

	for _, key := range v.AllKeys() {
		envKey := strings.ToUpper(replacer.Replace(key))
		if envPrefix != "" {
			envKey = envPrefix + "_" + envKey
		}
		if envValue := os.Getenv(envKey); envValue != "" {
			v.Set(key, envValue)
		}
	}
}

// Tree unmarshals and validates the full configuration tree.
func (l *Loader) Tree() (*Tree, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tree := &Tree{}
	if err := l.instance.Unmarshal(tree); err != nil {
		return nil, errors.WrapWithType(err, errors.ErrorTypeConfiguration,
			fmt.Sprintf("unmarshaling config file %s", l.opts.Path))
	}
	if err := defaults.Set(tree); err != nil {
		return nil, errors.WrapWithType(err, errors.ErrorTypeConfiguration, "applying defaults")
	}
	if err := l.validate.Struct(tree); err != nil {
		return nil, errors.WrapWithType(err, errors.ErrorTypeConfiguration, "validating config")
	}
	return tree, nil
}

// Apply converts every logger section into a sparse patch and configures
// the registry, ancestors before descendants. Handler instances the loader
// built on an earlier apply are reused when the new section describes the
// same handlers, so re-applying an unchanged file constructs nothing it
// keeps; handlers that are built but not adopted, and handlers displaced
// by an applied change, are closed.
//
// When Options.Watch is set, the first successful Apply also starts the
// file watcher.
func (l *Loader) Apply(eng *registry.Engine) error {
	tree, err := l.Tree()
	if err != nil {
		return err
	}

	names := make([]string, 0, len(tree.Loggers))
	nodes := make(map[string]Node, len(tree.Loggers))
	for raw, node := range tree.Loggers {
		name, err := naming.Normalize(raw)
		if err != nil {
			return err
		}
		names = append(names, name)
		nodes[name] = node
	}
	sort.Strings(names)

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, name := range names {
		patch, err := nodes[name].settings(l.validate, eng.Failsafe())
		if err != nil {
			return fmt.Errorf("logger %s: %w", name, err)
		}

		reused := false
		if patch.Handlers != nil {
			if prev, ok := l.owned[name]; ok && handler.SequencesEqual(prev, patch.Handlers) {
				closeHandlers(patch.Handlers)
				patch.Handlers = append([]handler.Handler(nil), prev...)
				reused = true
			}
		}

		if err := eng.Configure(name, patch); err != nil {
			if patch.Handlers != nil && !reused {
				closeHandlers(patch.Handlers)
			}
			return fmt.Errorf("logger %s: %w", name, err)
		}

		if patch.Handlers != nil && !reused {
			closeHandlers(l.owned[name])
			l.owned[name] = patch.Handlers
		}
	}

	if l.opts.Watch {
		l.watch(eng)
	}
	return nil
}

func closeHandlers(hs []handler.Handler) {
	for _, h := range hs {
		_ = handler.Close(h)
	}
}

// Watch re-applies the file to the registry whenever it changes on disk.
// Safe to call once; later calls are ignored. Apply calls this itself when
// Options.Watch is set.
func (l *Loader) Watch(eng *registry.Engine) {
	l.watch(eng)
}

func (l *Loader) watch(eng *registry.Engine) {
	l.watchOnce.Do(func() {
		l.instance.WatchConfig()
		l.instance.OnConfigChange(func(e fsnotify.Event) {
			err := l.Apply(eng)
			if l.opts.OnChange != nil {
				l.opts.OnChange(e, err)
			}
		})
	})
}

// settings converts one sparse file section into a configuration patch.
func (n Node) settings(v *validator.Validate, sink handler.Sink) (registry.Settings, error) {
	var patch registry.Settings

	patch.Enabled = n.Enabled
	patch.IncludeSource = n.IncludeSource

	if n.MinSeverity != nil {
		sev, ok := severity.ParseStrict(*n.MinSeverity)
		if !ok {
			return patch, errors.NewConfiguration("min_severity",
				fmt.Sprintf("unknown severity %q", *n.MinSeverity))
		}
		patch.MinSeverity = &sev
	}

	if n.StackDepths != nil {
		depths := make(map[severity.Severity]int, len(n.StackDepths))
		for level, depth := range n.StackDepths {
			sev, ok := severity.ParseStrict(level)
			if !ok {
				return patch, errors.NewConfiguration("stack_depths",
					fmt.Sprintf("unknown severity %q", level))
			}
			depths[sev] = depth
		}
		patch.StackDepths = depths
	}

	if n.TimeFormat != nil {
		patch.TimeFormat = &handler.TimeFormat{
			Layout: n.TimeFormat.Layout,
			UTC:    n.TimeFormat.UTC,
			Prefix: n.TimeFormat.Prefix,
		}
	}

	if n.Handlers != nil {
		handlers := make([]handler.Handler, 0, len(n.Handlers))
		for i, spec := range n.Handlers {
			h, err := spec.build(v, sink)
			if err != nil {
				return patch, fmt.Errorf("handler %d: %w", i, err)
			}
			handlers = append(handlers, h)
		}
		patch.Handlers = handlers
	}

	return patch, nil
}

// build constructs the handler selected by Kind, validating the matching
// options section.
func (s HandlerSpec) build(v *validator.Validate, sink handler.Sink) (handler.Handler, error) {
	switch s.Kind {
	case "console":
		return handler.NewConsole(s.Console), nil
	case "file":
		if err := v.Struct(s.File); err != nil {
			return nil, errors.NewConfiguration("handlers", err.Error())
		}
		return handler.NewFile(s.File), nil
	case "http":
		if err := v.Struct(s.HTTP); err != nil {
			return nil, errors.NewConfiguration("handlers", err.Error())
		}
		return handler.NewHTTP(s.HTTP, sink), nil
	case "socket":
		if err := v.Struct(s.Socket); err != nil {
			return nil, errors.NewConfiguration("handlers", err.Error())
		}
		return handler.NewSocket(s.Socket), nil
	default:
		return nil, errors.NewConfiguration("handlers",
			fmt.Sprintf("unknown handler kind %q", s.Kind))
	}
}
