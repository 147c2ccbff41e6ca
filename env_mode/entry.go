package env_mode

import (
	"os"
	"strings"
	"sync"
)

const ENV_MODE_KEY = "LOGD_ENV"

type ENV_MODE string

const (
	DevMode  ENV_MODE = "development"
	ProMode  ENV_MODE = "production"
	TestMode ENV_MODE = "test"
)

var (
	currentEnv ENV_MODE
	envMu      sync.RWMutex
	modeOnce   sync.Once
)

func ParseEnv(env string) ENV_MODE {
	normalizedEnv := strings.ToLower(strings.TrimSpace(env))
	switch normalizedEnv {
	case "development", "dev", "":
		return DevMode
	case "production", "prod", "pro":
		return ProMode
	case "test", "testing":
		return TestMode
	default:
		return DevMode
	}
}

func Mode() ENV_MODE {
	modeOnce.Do(func() {
		envMu.Lock()
		if currentEnv == "" {
			currentEnv = ParseEnv(os.Getenv(ENV_MODE_KEY))
		}
		envMu.Unlock()
	})

	envMu.RLock()
	defer envMu.RUnlock()
	return currentEnv
}

func SetMode(mode ENV_MODE) {
	envMu.Lock()
	currentEnv = mode
	envMu.Unlock()
	os.Setenv(ENV_MODE_KEY, string(mode))
}

// IsDev reports whether the process runs in development mode. Loggers with no
// explicit enabled flag anywhere in their chain default to enabled only here.
func IsDev() bool {
	return Mode() == DevMode
}
