package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/logd-io/logd/errors"
	"github.com/logd-io/logd/handler"
	"github.com/logd-io/logd/registry"
	"github.com/logd-io/logd/severity"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logging.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newEngine() *registry.Engine {
	return registry.New(registry.WithBaselineHandler(handler.NewConsole(handler.ConsoleOptions{})))
}

const treeConfig = `
loggers:
  global:
    enabled: true
    min_severity: info
    time_format:
      layout: "15:04:05"
      utc: true
    handlers:
      - kind: console
        console:
          format: json
  service:
    min_severity: warning
    stack_depths:
      error: 8
      warning: 2
  service.worker:
    include_source: true
`

func TestApplyConfiguresTree(t *testing.T) {
	loader, err := Load(Options{Path: writeConfig(t, treeConfig)})
	if err != nil {
		t.Fatal(err)
	}

	eng := newEngine()
	if err := loader.Apply(eng); err != nil {
		t.Fatal(err)
	}

	root := eng.Resolve("global")
	if !root.Enabled() || root.MinSeverity() != severity.Info {
		t.Fatalf("root = enabled:%v min:%v", root.Enabled(), root.MinSeverity())
	}
	if hs := root.Handlers(); len(hs) != 1 || hs[0].Kind() != "console" {
		t.Fatalf("root handlers = %v", hs)
	}
	if f := root.TimeFormat(); f.Layout != "15:04:05" || !f.UTC {
		t.Fatalf("root time format = %+v", f)
	}

	worker := eng.Resolve("service.worker")
	if worker.MinSeverity() != severity.Warning {
		t.Fatalf("worker min = %v", worker.MinSeverity())
	}
	if !worker.IncludeSource() {
		t.Fatal("worker include_source not applied")
	}
	if worker.StackDepth(severity.Error) != 8 || worker.StackDepth(severity.Warning) != 2 {
		t.Fatalf("worker depths = error:%d warning:%d",
			worker.StackDepth(severity.Error), worker.StackDepth(severity.Warning))
	}
}

func TestReapplyIsFree(t *testing.T) {
	loader, err := Load(Options{Path: writeConfig(t, treeConfig)})
	if err != nil {
		t.Fatal(err)
	}

	eng := newEngine()
	if err := loader.Apply(eng); err != nil {
		t.Fatal(err)
	}
	before := eng.Version("service")

	if err := loader.Apply(eng); err != nil {
		t.Fatal(err)
	}
	if after := eng.Version("service"); after != before {
		t.Fatalf("redundant re-apply bumped version %d -> %d", before, after)
	}
}

const httpConfig = `
loggers:
  global:
    handlers:
      - kind: http
        http:
          url: http://127.0.0.1:9/logs
`

func TestReapplyReusesHandlers(t *testing.T) {
	loader, err := Load(Options{Path: writeConfig(t, httpConfig)})
	if err != nil {
		t.Fatal(err)
	}

	eng := newEngine()
	if err := loader.Apply(eng); err != nil {
		t.Fatal(err)
	}
	first := eng.Resolve("global").Handlers()
	version := eng.Version("global")
	before := runtime.NumGoroutine()

	for i := 0; i < 20; i++ {
		if err := loader.Apply(eng); err != nil {
			t.Fatal(err)
		}
	}

	// Unadopted handlers are closed before Apply returns, and Close joins
	// the flusher, so redundant re-applies leave no goroutines behind.
	if after := runtime.NumGoroutine(); after > before+2 {
		t.Fatalf("redundant re-applies leaked goroutines: %d -> %d", before, after)
	}

	second := eng.Resolve("global").Handlers()
	if first[0] != second[0] {
		t.Fatal("re-apply replaced the adopted handler instance")
	}
	if got := eng.Version("global"); got != version {
		t.Fatalf("redundant re-apply bumped version %d -> %d", version, got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(Options{Path: filepath.Join(t.TempDir(), "absent.yaml")}); err == nil {
		t.Fatal("missing file accepted")
	}
	if _, err := Load(Options{}); !errors.IsConfiguration(err) {
		t.Fatal("empty path accepted")
	}
}

func TestApplyRejectsBadSections(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown severity", "loggers:\n  global:\n    min_severity: loud\n"},
		{"unknown depth key", "loggers:\n  global:\n    stack_depths:\n      loud: 4\n"},
		{"unknown handler kind", "loggers:\n  global:\n    handlers:\n      - kind: syslog\n"},
		{"file handler without path", "loggers:\n  global:\n    handlers:\n      - kind: file\n"},
		{"malformed logger name", "loggers:\n  bad..name:\n    enabled: true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader, err := Load(Options{Path: writeConfig(t, tt.content)})
			if err != nil {
				t.Fatal(err)
			}
			if err := loader.Apply(newEngine()); err == nil {
				t.Fatal("bad section accepted")
			}
		})
	}
}

func TestWatchReappliesOnFileChange(t *testing.T) {
	path := writeConfig(t, treeConfig)
	applied := make(chan error, 8)

	loader, err := Load(Options{
		Path:  path,
		Watch: true,
		OnChange: func(_ fsnotify.Event, err error) {
			applied <- err
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	eng := newEngine()
	if err := loader.Apply(eng); err != nil {
		t.Fatal(err)
	}
	if min := eng.Resolve("global").MinSeverity(); min != severity.Info {
		t.Fatalf("initial min = %v", min)
	}

	updated := strings.Replace(treeConfig, "min_severity: info", "min_severity: error", 1)
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(10 * time.Second)
	for {
		select {
		case err := <-applied:
			if err != nil {
				t.Fatal(err)
			}
			if eng.Resolve("global").MinSeverity() == severity.Error {
				return
			}
		case <-deadline:
			t.Fatalf("change never applied, min = %v", eng.Resolve("global").MinSeverity())
		}
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("LOGD_LOGGERS_GLOBAL_MIN_SEVERITY", "error")

	loader, err := Load(Options{
		Path:      writeConfig(t, treeConfig),
		EnvPrefix: "LOGD",
	})
	if err != nil {
		t.Fatal(err)
	}

	eng := newEngine()
	if err := loader.Apply(eng); err != nil {
		t.Fatal(err)
	}
	if got := eng.Resolve("global").MinSeverity(); got != severity.Error {
		t.Fatalf("env override ignored, min = %v", got)
	}
}
