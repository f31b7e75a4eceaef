package diagnostics

import "github.com/segmentio/ksuid"

// Handler buffers diagnostics across a pass boundary instead of
// propagating the first error (spec.md §7: "All non-fatal errors go to
// a buffered handler. A pass returns the (partially rewritten) AST even
// if errors occurred so that downstream passes can surface more
// diagnostics").
type Handler struct {
	Reports []*Report
	Session string
	fatal   bool
}

// NewHandler returns an empty Handler stamped with a fresh compile-
// session id (a k-sortable unique id, so logs from concurrent `avmc`
// invocations are distinguishable without relying on wall-clock
// timestamps, which can collide).
func NewHandler() *Handler {
	return &Handler{Session: ksuid.New().String()}
}

// Emit records a diagnostic, stamping it with this handler's session id.
// Fatal diagnostics (Package/I/O, Internal invariant) set the handler's
// fatal flag, which the pipeline driver checks between passes (spec.md
// §4.10: "The driver stops on the first fatal error kind").
func (h *Handler) Emit(r *Report) {
	r.Session = h.Session
	h.Reports = append(h.Reports, r)
	if r.IsFatal() {
		h.fatal = true
	}
}

// HasErrors reports whether any non-warning diagnostic was emitted.
func (h *Handler) HasErrors() bool {
	for _, r := range h.Reports {
		if !r.Warning {
			return true
		}
	}
	return false
}

// HasFatal reports whether a fatal diagnostic was emitted.
func (h *Handler) HasFatal() bool {
	return h.fatal
}

// Errors returns only the non-warning diagnostics.
func (h *Handler) Errors() []*Report {
	var out []*Report
	for _, r := range h.Reports {
		if !r.Warning {
			out = append(out, r)
		}
	}
	return out
}

// Warnings returns only the warning diagnostics.
func (h *Handler) Warnings() []*Report {
	var out []*Report
	for _, r := range h.Reports {
		if r.Warning {
			out = append(out, r)
		}
	}
	return out
}

// Reset clears the handler for reuse across an independent compilation
// (spec.md §5: each compilation unit owns its own compiler-state).
func (h *Handler) Reset() {
	h.Reports = nil
	h.fatal = false
}
