package lspstub

import (
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/leo-lang/avmc/internal/ast"
	"github.com/leo-lang/avmc/internal/diagnostics"
)

func TestConvertReportsWithSpan(t *testing.T) {
	reports := []*diagnostics.Report{
		{
			Code:    "CHK010TypeMismatch",
			Phase:   "check",
			Message: "expected u32, found field",
			Span: &ast.Span{
				Start: ast.Pos{Line: 4, Column: 9},
				End:   ast.Pos{Line: 4, Column: 15},
			},
		},
	}

	diags := ConvertReports(reports)
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(diags))
	}

	d := diags[0]
	if d.Range.Start.Line != 3 || d.Range.Start.Character != 8 {
		t.Errorf("Start = %+v, want line 3 char 8 (0-indexed)", d.Range.Start)
	}
	if d.Range.End.Line != 3 || d.Range.End.Character != 14 {
		t.Errorf("End = %+v, want line 3 char 14 (0-indexed)", d.Range.End)
	}
	if d.Severity == nil || *d.Severity != protocol.DiagnosticSeverityError {
		t.Errorf("Severity = %v, want Error", d.Severity)
	}
	if d.Message != "expected u32, found field" {
		t.Errorf("Message = %q", d.Message)
	}
	if d.Source == nil || *d.Source != "avmc-check" {
		t.Errorf("Source = %v, want avmc-check", d.Source)
	}
}

func TestConvertReportsWithoutSpanPinsToOrigin(t *testing.T) {
	reports := []*diagnostics.Report{
		{Code: "PKG004CircularDependency", Phase: "pkgmanifest", Message: "cycle detected"},
	}

	diags := ConvertReports(reports)
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(diags))
	}
	r := diags[0].Range
	if r.Start.Line != 0 || r.Start.Character != 0 || r.End.Line != 0 || r.End.Character != 1 {
		t.Errorf("Range = %+v, want the pinned-to-origin default", r)
	}
}

func TestConvertReportsWarningSeverity(t *testing.T) {
	reports := []*diagnostics.Report{
		{Code: "W001UnusedVar", Phase: "check", Message: "unused", Warning: true},
	}

	diags := ConvertReports(reports)
	if diags[0].Severity == nil || *diags[0].Severity != protocol.DiagnosticSeverityWarning {
		t.Errorf("Severity = %v, want Warning", diags[0].Severity)
	}
}

func TestConvertReportsEmpty(t *testing.T) {
	diags := ConvertReports(nil)
	if len(diags) != 0 {
		t.Errorf("got %d diagnostics, want 0", len(diags))
	}
}
