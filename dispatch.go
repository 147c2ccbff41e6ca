package logd

import (
	"fmt"

	"github.com/logd-io/logd/errors"
	"github.com/logd-io/logd/handler"
	"github.com/logd-io/logd/registry"
	"github.com/logd-io/logd/severity"
	"github.com/logd-io/logd/trace"
)

// dispatch hands a built record to every resolved handler in order.
// Failures are caught per handler and reported through the failsafe sink;
// a broken handler never aborts delivery to the remaining ones and never
// propagates to the log call site.
func dispatch(r *registry.Resolved, rec *handler.Record, sink handler.Sink) {
	r.ForEachHandler(func(h handler.Handler) {
		emitSafe(h, rec, sink)
	})
}

func emitSafe(h handler.Handler, rec *handler.Record, sink handler.Sink) {
	defer func() {
		if p := recover(); p != nil {
			sink.Report(severity.Error,
				fmt.Sprintf("handler %s panicked: %v", h.Kind(), p),
				nil, trace.Capture(2, 16))
		}
	}()

	if err := h.Emit(rec); err != nil {
		sink.Report(severity.Error,
			fmt.Sprintf("handler %s failed", h.Kind()),
			errors.NewDispatch(h.Kind(), err), nil)
	}
}
