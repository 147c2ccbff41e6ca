package handler

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/logd-io/logd/severity"
	"github.com/logd-io/logd/trace"
)

// Sink is the fail-safe reporting channel used when forwarding a record to
// a handler fails. Dispatch failures are reported here instead of
// propagating to the log call site.
type Sink interface {
	Report(sev severity.Severity, msg string, err error, frames []trace.Frame)
}

// zapSink reports dispatch failures through a zap logger.
type zapSink struct {
	log *zap.Logger
}

// NewZapSink wraps a zap logger as a failsafe sink.
func NewZapSink(log *zap.Logger) Sink {
	return &zapSink{log: log}
}

func (s *zapSink) Report(sev severity.Severity, msg string, err error, frames []trace.Frame) {
	fields := make([]zap.Field, 0, 3)
	fields = append(fields, zap.String("severity", sev.String()))
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if len(frames) > 0 {
		fields = append(fields, zap.String("stack", trace.Format(frames)))
	}

	switch {
	case sev >= severity.Error:
		s.log.Error(msg, fields...)
	case sev == severity.Warning:
		s.log.Warn(msg, fields...)
	default:
		s.log.Info(msg, fields...)
	}
}

var (
	defaultSink     Sink
	defaultSinkOnce sync.Once
)

// DefaultSink returns the process-wide failsafe sink: a console zap logger
// on stderr, warnings and up.
func DefaultSink() Sink {
	defaultSinkOnce.Do(func() {
		encoderConfig := zapcore.EncoderConfig{
			MessageKey:     "message",
			LevelKey:       "level",
			TimeKey:        "time",
			NameKey:        "logger",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
		}
		core := zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.Lock(os.Stderr),
			zapcore.WarnLevel,
		)
		defaultSink = NewZapSink(zap.New(core).Named("logd.failsafe"))
	})
	return defaultSink
}
