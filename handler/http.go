package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/logd-io/logd/errors"
	"github.com/logd-io/logd/json"
	"github.com/logd-io/logd/severity"
)

// HTTPOptions configures a batched HTTP handler. Records are accumulated
// and POSTed as a JSON array to the collector endpoint.
type HTTPOptions struct {
	// URL is the collector endpoint (e.g. http://127.0.0.1:8080/logs).
	URL string `json:"url" mapstructure:"url" validate:"required,url"`

	// BatchSize triggers a flush once this many records are pending.
	BatchSize int `json:"batch_size" mapstructure:"batch_size"`

	// FlushInterval flushes pending records at least this often.
	FlushInterval time.Duration `json:"flush_interval" mapstructure:"flush_interval"`

	// Timeout bounds each delivery request.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// Headers are added to every request.
	Headers map[string]string `json:"headers" mapstructure:"headers"`
}

func (o *HTTPOptions) applyDefaults() {
	if o.BatchSize <= 0 {
		o.BatchSize = 32
	}
	if o.FlushInterval <= 0 {
		o.FlushInterval = 2 * time.Second
	}
	if o.Timeout <= 0 {
		o.Timeout = 5 * time.Second
	}
}

// HTTPHandler batches records and delivers them to an HTTP collector in
// the background. Emit never blocks on the network.
type HTTPHandler struct {
	opts   HTTPOptions
	client *http.Client
	sink   Sink

	mu    sync.Mutex
	batch []map[string]any

	kick chan struct{}
	done chan struct{}
	wg   sync.WaitGroup

	closeOnce sync.Once
}

// NewHTTP creates a batched HTTP handler and starts its flusher. Delivery
// failures are reported through the given failsafe sink; a nil sink uses
// the process default.
func NewHTTP(opts HTTPOptions, sink Sink) *HTTPHandler {
	opts.applyDefaults()
	if sink == nil {
		sink = DefaultSink()
	}

	h := &HTTPHandler{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
		sink:   sink,
		kick:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	h.wg.Add(1)
	go h.run()
	return h
}

func (h *HTTPHandler) Kind() string { return "http" }

func (h *HTTPHandler) Emit(rec *Record) error {
	h.mu.Lock()
	h.batch = append(h.batch, rec.ToMap())
	full := len(h.batch) >= h.opts.BatchSize
	h.mu.Unlock()

	if full {
		select {
		case h.kick <- struct{}{}:
		default:
		}
	}
	return nil
}

// run flushes on the interval, on batch-full kicks, and once on shutdown.
func (h *HTTPHandler) run() {
	defer h.wg.Done()

	ticker := time.NewTicker(h.opts.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.flush()
		case <-h.kick:
			h.flush()
		case <-h.done:
			h.flush()
			return
		}
	}
}

// Flush delivers all pending records synchronously.
func (h *HTTPHandler) Flush() {
	h.flush()
}

func (h *HTTPHandler) flush() {
	h.mu.Lock()
	pending := h.batch
	h.batch = nil
	h.mu.Unlock()

	if len(pending) == 0 {
		return
	}

	if err := h.deliver(pending); err != nil {
		h.sink.Report(severity.Error,
			fmt.Sprintf("http handler: dropped %d records", len(pending)), err, nil)
	}
}

func (h *HTTPHandler) deliver(batch []map[string]any) error {
	body, err := json.Marshal(batch)
	if err != nil {
		return errors.Wrap(err, "http handler: encode batch")
	}

	req, err := http.NewRequest(http.MethodPost, h.opts.URL, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "http handler: build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Batch-ID", uuid.NewString())
	for k, v := range h.opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return errors.WrapWithType(err, errors.ErrorTypeHandlerIO, "http handler: deliver batch")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return errors.NewHandlerIO(fmt.Sprintf("http handler: collector returned %s", resp.Status))
	}
	return nil
}

// Equal compares endpoint and batching options by content.
func (h *HTTPHandler) Equal(other Handler) bool {
	o, ok := other.(*HTTPHandler)
	if !ok {
		return false
	}
	if h.opts.URL != o.opts.URL ||
		h.opts.BatchSize != o.opts.BatchSize ||
		h.opts.FlushInterval != o.opts.FlushInterval ||
		h.opts.Timeout != o.opts.Timeout {
		return false
	}
	if len(h.opts.Headers) != len(o.opts.Headers) {
		return false
	}
	for k, v := range h.opts.Headers {
		if o.opts.Headers[k] != v {
			return false
		}
	}
	return true
}

// Close flushes pending records and stops the flusher.
func (h *HTTPHandler) Close() error {
	h.closeOnce.Do(func() {
		close(h.done)
		h.wg.Wait()
	})
	return nil
}
