package handler

import (
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/logd-io/logd/severity"
	"github.com/logd-io/logd/trace"
)

// ConsoleOptions configures a console handler.
type ConsoleOptions struct {
	// Format selects the encoding: "console" (default) or "json".
	Format string `json:"format" mapstructure:"format"`

	// Colors enables ANSI severity coloring in console format.
	Colors bool `json:"colors" mapstructure:"colors"`
}

// ConsoleHandler renders records to a terminal through a zapcore encoder.
type ConsoleHandler struct {
	opts ConsoleOptions
	w    io.Writer
	enc  zapcore.Encoder

	mu  sync.Mutex
	cur *Record // record being encoded, guarded by mu
}

// NewConsole creates a console handler writing to stdout.
func NewConsole(opts ConsoleOptions) *ConsoleHandler {
	return NewConsoleWriter(os.Stdout, opts)
}

// NewConsoleWriter creates a console handler writing to w.
func NewConsoleWriter(w io.Writer, opts ConsoleOptions) *ConsoleHandler {
	h := &ConsoleHandler{opts: opts, w: w}

	encoderConfig := zapcore.EncoderConfig{
		MessageKey:     "message",
		LevelKey:       "severity",
		TimeKey:        "time",
		NameKey:        "logger",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    h.encodeLevel,
		EncodeTime:     h.encodeTime,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
	if opts.Format == "json" {
		h.enc = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		h.enc = zapcore.NewConsoleEncoder(encoderConfig)
	}
	return h
}

func (h *ConsoleHandler) Kind() string { return "console" }

// encodeLevel renders the record's own severity name, colored when enabled.
// It reads the current record under the Emit mutex, so trace survives the
// trip through zapcore's level type.
func (h *ConsoleHandler) encodeLevel(_ zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	name := h.cur.Severity.String()
	if h.opts.Colors && h.opts.Format != "json" {
		name = colorize(severityColor(h.cur.Severity), name)
	}
	enc.AppendString(name)
}

// encodeTime renders the record time with the logger's resolved format.
func (h *ConsoleHandler) encodeTime(_ time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(h.cur.Timestamp())
}

func (h *ConsoleHandler) Emit(rec *Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.cur = rec
	entry := zapcore.Entry{
		Level:      toZapLevel(rec.Severity),
		Time:       rec.Time,
		LoggerName: rec.Name,
		Message:    rec.Message,
	}

	buf, err := h.enc.EncodeEntry(entry, recordFields(rec))
	if err != nil {
		return err
	}
	defer buf.Free()

	_, err = h.w.Write(buf.Bytes())
	return err
}

// Equal compares by options and destination, never by instance identity.
func (h *ConsoleHandler) Equal(other Handler) bool {
	o, ok := other.(*ConsoleHandler)
	return ok && h.opts == o.opts && h.w == o.w
}

// recordFields converts the record payload to zap fields in deterministic
// key order, appending source and stack when present.
func recordFields(rec *Record) []zapcore.Field {
	fields := make([]zapcore.Field, 0, len(rec.Fields)+2)

	keys := make([]string, 0, len(rec.Fields))
	for k := range rec.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, zap.Any(k, rec.Fields[k]))
	}

	if rec.Source != nil {
		fields = append(fields, zap.String("source", rec.Source.String()))
	}
	if len(rec.Stack) > 0 {
		fields = append(fields, zap.String("stack", trace.Format(rec.Stack)))
	}
	return fields
}

// toZapLevel maps the library severity scale onto zapcore levels. Trace has
// no zap equivalent and sits one step below debug.
func toZapLevel(s severity.Severity) zapcore.Level {
	switch s {
	case severity.Trace:
		return zapcore.DebugLevel - 1
	case severity.Debug:
		return zapcore.DebugLevel
	case severity.Info:
		return zapcore.InfoLevel
	case severity.Warning:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}
