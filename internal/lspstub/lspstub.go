// Package lspstub is a minimal textDocument/publishDiagnostics bridge.
// It is an ordinary package that only its own tests exercise; no
// command, `avmc build` included, imports it. C11's diagnostics.Handler
// is the one and only producer,
// so there is no incremental parse/check loop to drive here, only a
// translation from internal/diagnostics.Report into glsp's wire shape.
// Grounded on the Kanso teacher's internal/lsp package
// (_examples/kanso-lang-kanso/internal/lsp/diagnostics.go and
// handler.go), which does the same ConvertXErrors-into-protocol.Diagnostic
// translation for its own parser/scanner errors and serves them the same
// way, over github.com/tliron/glsp with github.com/tliron/commonlog
// wired in as the server's logger.
package lspstub

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/leo-lang/avmc/internal/diagnostics"
)

// ConvertReports turns a compilation's buffered diagnostics into LSP
// diagnostics, one per Report. A Report with no Span (an import-graph or
// internal-invariant failure with nothing to underline in a single
// file) is pinned to the file's first character, matching how an IDE
// still needs something to attach the squiggle to.
func ConvertReports(reports []*diagnostics.Report) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(reports))
	for _, r := range reports {
		out = append(out, convertReport(r))
	}
	return out
}

func convertReport(r *diagnostics.Report) protocol.Diagnostic {
	rng := protocol.Range{
		Start: protocol.Position{Line: 0, Character: 0},
		End:   protocol.Position{Line: 0, Character: 1},
	}
	if r.Span != nil {
		rng = protocol.Range{
			Start: protocol.Position{
				Line:      uint32(max0(r.Span.Start.Line - 1)),
				Character: uint32(max0(r.Span.Start.Column - 1)),
			},
			End: protocol.Position{
				Line:      uint32(max0(r.Span.End.Line - 1)),
				Character: uint32(max0(r.Span.End.Column - 1)),
			},
		}
	}

	severity := protocol.DiagnosticSeverityError
	if r.Warning {
		severity = protocol.DiagnosticSeverityWarning
	}

	code := protocol.IntegerOrString{Value: r.Code}

	return protocol.Diagnostic{
		Range:    rng,
		Severity: &severity,
		Code:     &code,
		Source:   ptrString("avmc-" + r.Phase),
		Message:  r.Message,
	}
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func ptrString(s string) *string { return &s }

// PublishDiagnostics notifies an LSP client of uri's current diagnostics,
// converting reports from the one Handler that produced them (spec.md
// §7: a compilation owns exactly one Handler for its whole run).
func PublishDiagnostics(ctx *glsp.Context, uri protocol.URI, h *diagnostics.Handler) {
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: ConvertReports(h.Reports),
	})
}
