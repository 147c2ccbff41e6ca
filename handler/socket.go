package handler

import (
	"net"
	"sync"
	"time"

	"github.com/logd-io/logd/errors"
	"github.com/logd-io/logd/json"
)

// SocketOptions configures a TCP socket handler. Records are written as
// newline-delimited JSON objects.
type SocketOptions struct {
	// Address is the collector address in host:port form.
	Address string `json:"address" mapstructure:"address" validate:"required,hostname_port"`

	// DialTimeout bounds connection establishment.
	DialTimeout time.Duration `json:"dial_timeout" mapstructure:"dial_timeout"`

	// WriteTimeout bounds each record write.
	WriteTimeout time.Duration `json:"write_timeout" mapstructure:"write_timeout"`
}

func (o *SocketOptions) applyDefaults() {
	if o.DialTimeout <= 0 {
		o.DialTimeout = 3 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 3 * time.Second
	}
}

// SocketHandler streams JSON-lines records over a TCP connection,
// redialing after a failed write.
type SocketHandler struct {
	opts SocketOptions

	mu   sync.Mutex
	conn net.Conn
}

// NewSocket creates a socket handler. The connection is dialed lazily on
// first emit.
func NewSocket(opts SocketOptions) *SocketHandler {
	opts.applyDefaults()
	return &SocketHandler{opts: opts}
}

func (h *SocketHandler) Kind() string { return "socket" }

func (h *SocketHandler) Emit(rec *Record) error {
	line, err := json.Marshal(rec.ToMap())
	if err != nil {
		return errors.Wrap(err, "socket handler: encode record")
	}
	line = append(line, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conn == nil {
		conn, err := net.DialTimeout("tcp", h.opts.Address, h.opts.DialTimeout)
		if err != nil {
			return errors.WrapWithType(err, errors.ErrorTypeHandlerIO, "socket handler: dial "+h.opts.Address)
		}
		h.conn = conn
	}

	_ = h.conn.SetWriteDeadline(time.Now().Add(h.opts.WriteTimeout))
	if _, err := h.conn.Write(line); err != nil {
		// Drop the connection so the next emit redials.
		h.conn.Close()
		h.conn = nil
		return errors.WrapWithType(err, errors.ErrorTypeHandlerIO, "socket handler: write record")
	}
	return nil
}

// Equal compares destination and timeouts by content.
func (h *SocketHandler) Equal(other Handler) bool {
	o, ok := other.(*SocketHandler)
	return ok && h.opts == o.opts
}

// Close shuts the connection down if one is open.
func (h *SocketHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conn == nil {
		return nil
	}
	err := h.conn.Close()
	h.conn = nil
	return err
}
