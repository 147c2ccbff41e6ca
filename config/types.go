package config

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/logd-io/logd/handler"
)

// Tree is the wire schema of a logging configuration file. Keys of Loggers
// are dot-separated logger names; every field of a node is optional, and an
// omitted field keeps inheriting from the logger's ancestors.
type Tree struct {
	Loggers map[string]Node `mapstructure:"loggers" validate:"dive"`
}

// Node is the sparse per-logger section.
type Node struct {
	Enabled       *bool          `mapstructure:"enabled"`
	MinSeverity   *string        `mapstructure:"min_severity"`
	IncludeSource *bool          `mapstructure:"include_source"`
	StackDepths   map[string]int `mapstructure:"stack_depths" validate:"omitempty,dive,gte=0"`
	TimeFormat    *TimeSpec      `mapstructure:"time_format"`
	Handlers      []HandlerSpec  `mapstructure:"handlers" validate:"omitempty,dive"`
}

// TimeSpec configures timestamp rendering.
type TimeSpec struct {
	Layout string `mapstructure:"layout" default:"2006-01-02 15:04:05.000"`
	UTC    bool   `mapstructure:"utc"`
	Prefix string `mapstructure:"prefix"`
}

// HandlerSpec selects one handler flavor by kind and carries the options
// section for that kind. Only the section matching Kind is read.
type HandlerSpec struct {
	Kind    string                 `mapstructure:"kind" validate:"required,oneof=console file http socket"`
	Console handler.ConsoleOptions `mapstructure:"console"`
	File    handler.FileOptions    `mapstructure:"file" validate:"structonly"`
	HTTP    handler.HTTPOptions    `mapstructure:"http" validate:"structonly"`
	Socket  handler.SocketOptions  `mapstructure:"socket" validate:"structonly"`
}

// Options controls where the configuration file lives and whether it is
// watched for changes.
type Options struct {
	// Path is the configuration file location.
	Path string

	// EnvPrefix namespaces environment variable overrides.
	EnvPrefix string

	// Watch re-applies the file whenever it changes on disk. The watcher
	// starts on the first successful Apply.
	Watch bool

	// OnChange is invoked after a watched change has been re-applied.
	OnChange func(e fsnotify.Event, err error)
}

// Loader reads a configuration file and applies it to a registry.
type Loader struct {
	instance  *viper.Viper
	opts      Options
	validate  *validator.Validate
	watchOnce sync.Once
	mu        sync.Mutex

	// owned tracks the handler instances this loader built per logger, so
	// a re-apply can reuse them instead of adopting fresh duplicates, and
	// displaced ones can be closed.
	owned map[string][]handler.Handler
}
