package diagnostics

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/leo-lang/avmc/internal/ast"
)

// Report is the canonical structured diagnostic (error or warning).
// Warnings share the same shape (spec.md §6).
type Report struct {
	Schema   string         `json:"schema"`
	Code     string         `json:"code"`
	Phase    string         `json:"phase"`
	Message  string         `json:"message"`
	Span     *ast.Span      `json:"span,omitempty"`
	Hint     string         `json:"hint,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	Warning  bool           `json:"warning,omitempty"`
	Session  string         `json:"session,omitempty"`
}

// ReportError wraps a Report as an error so it survives errors.As()
// unwrapping after being returned up the call stack.
type ReportError struct{ Rep *Report }

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown diagnostic"
	}
	return fmt.Sprintf("%s: %s", e.Rep.Code, e.Rep.Message)
}

// AsReport extracts a Report from an error chain.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// Wrap turns a Report into an error.
func Wrap(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// New builds a Report with the "avmc.diagnostic/v1" schema.
func New(code, phase, message string, span *ast.Span) *Report {
	return &Report{Schema: "avmc.diagnostic/v1", Code: code, Phase: phase, Message: message, Span: span}
}

// WithHint attaches a suggested fix hint and returns the same Report.
func (r *Report) WithHint(hint string) *Report {
	r.Hint = hint
	return r
}

// WithData attaches structured data and returns the same Report.
func (r *Report) WithData(key string, val any) *Report {
	if r.Data == nil {
		r.Data = map[string]any{}
	}
	r.Data[key] = val
	return r
}

// ToJSON renders the Report deterministically: encoding/json writes the
// struct's fields in declaration order and sorts the keys of Data.
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// IsFatal reports whether this diagnostic must abort the compilation
// (Package/I/O or Internal-invariant kinds, spec.md §7).
func (r *Report) IsFatal() bool {
	return !r.Warning && Fatal(r.Code)
}
