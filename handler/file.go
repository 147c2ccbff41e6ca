package handler

import (
	"sync"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileOptions configures a rotating file handler.
type FileOptions struct {
	// Path is the log file location.
	Path string `json:"path" mapstructure:"path" validate:"required"`

	// MaxSize is the maximum size in megabytes before rotation.
	MaxSize int `json:"max_size" mapstructure:"max_size"`

	// MaxBackups is the maximum number of rotated files to retain.
	MaxBackups int `json:"max_backups" mapstructure:"max_backups"`

	// MaxAge is the maximum number of days to retain rotated files.
	MaxAge int `json:"max_age" mapstructure:"max_age"`

	// Compress gzips rotated files.
	Compress bool `json:"compress" mapstructure:"compress"`
}

// DefaultFileOptions returns the rotation baseline.
func DefaultFileOptions(path string) FileOptions {
	return FileOptions{
		Path:       path,
		MaxSize:    100,
		MaxBackups: 10,
		MaxAge:     7,
		Compress:   true,
	}
}

// FileHandler writes JSON-encoded records to a size-rotated file.
type FileHandler struct {
	opts FileOptions
	enc  zapcore.Encoder

	mu  sync.Mutex
	cur *Record
	out *lumberjack.Logger
}

// NewFile creates a rotating file handler. The file is opened lazily on
// first emit.
func NewFile(opts FileOptions) *FileHandler {
	h := &FileHandler{opts: opts}
	h.enc = zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		MessageKey:     "message",
		LevelKey:       "severity",
		TimeKey:        "time",
		NameKey:        "logger",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    h.encodeLevel,
		EncodeTime:     h.encodeTime,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	})
	return h
}

func (h *FileHandler) Kind() string { return "file" }

func (h *FileHandler) encodeLevel(_ zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(h.cur.Severity.String())
}

func (h *FileHandler) encodeTime(_ time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(h.cur.Timestamp())
}

func (h *FileHandler) Emit(rec *Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.out == nil {
		h.out = &lumberjack.Logger{
			Filename:   h.opts.Path,
			MaxSize:    h.opts.MaxSize,
			MaxBackups: h.opts.MaxBackups,
			MaxAge:     h.opts.MaxAge,
			Compress:   h.opts.Compress,
			LocalTime:  true,
		}
	}

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

	_, err = h.out.Write(buf.Bytes())
	return err
}

// Equal compares rotation options; the lazily-opened writer is identity
// state and excluded.
func (h *FileHandler) Equal(other Handler) bool {
	o, ok := other.(*FileHandler)
	return ok && h.opts == o.opts
}

// Close closes the underlying rotated file if it was opened.
func (h *FileHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.out == nil {
		return nil
	}
	err := h.out.Close()
	h.out = nil
	return err
}
