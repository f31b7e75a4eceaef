// Package diagnostics provides the structured error/warning reporting
// used throughout the pipeline (spec.md §6 "Diagnostic format", §7
// "Error Handling Design"). Every diagnostic carries a phase-prefixed
// code, a span, a message, and an optional hint; non-fatal diagnostics
// accumulate in a Handler instead of aborting the pass that found them.
package diagnostics

// Error code constants, one prefix per §7 error kind. Numbers are
// allocated densely within each prefix as new checks are added.
const (
	// Syntax (PAR###) — accumulate and continue within the file.
	PAR001UnexpectedToken     = "PAR001"
	PAR002UnterminatedLiteral = "PAR002"
	PAR003InvalidFunctionDecl = "PAR003"

	// Name resolution (RES###) — surface, continue pass.
	RES001UnknownSymbol       = "RES001"
	RES002DuplicateDefinition = "RES002"
	RES003UnknownProgram      = "RES003"
	RES004CyclicInterface     = "RES004"

	// Type (TYP###) — surface, continue; subsequent checks suppressed on Err.
	TYP001OperandMismatch  = "TYP001"
	TYP002ArityMismatch    = "TYP002"
	TYP003MissingReturn    = "TYP003"
	TYP004UnreachableCode  = "TYP004"
	TYP005BadFieldSet      = "TYP005"
	TYP006NotAnLvalue      = "TYP006"
	TYP007NotCoercible     = "TYP007"
	TYP008WrongOutputArity = "TYP008"

	// Value / compile-time evaluation (VAL###) — surface, may suppress cascades.
	VAL001Overflow        = "VAL001"
	VAL002DivideByZero    = "VAL002"
	VAL003CastOutOfRange  = "VAL003"
	VAL004IndexOutOfRange = "VAL004"
	VAL005UnsupportedOp   = "VAL005"
	VAL006NonLiteralLoop  = "VAL006"

	// Interface conformance (IFC###) — surface, continue.
	IFC001MissingFunction  = "IFC001"
	IFC002MissingRecord    = "IFC002"
	IFC003SignatureMismatch = "IFC003"

	// Package / I/O (PKG###) — fatal for the compilation.
	PKG001MissingManifest     = "PKG001"
	PKG002UnreadableImport    = "PKG002"
	PKG003ChecksumMismatch    = "PKG003"
	PKG004CircularDependency  = "PKG004"

	// Internal invariant (INT###) — fatal, bug.
	INT001DuplicateNodeID      = "INT001"
	INT002MissingTypeTableEntry = "INT002"
	INT003PassInvariantViolated = "INT003"
)

// Phase names used in Report.Phase.
const (
	PhaseParser       = "parser"
	PhaseResolve      = "resolve"
	PhaseTypeCheck    = "typecheck"
	PhaseCanonicalize = "canonicalize"
	PhaseSSA          = "ssa"
	PhaseWriteform    = "writeform"
	PhaseConstProp    = "constprop"
	PhaseUnroll       = "unroll"
	PhaseMonomorphize = "monomorphize"
	PhaseFlatten      = "flatten"
	PhaseDestructure  = "destructure"
	PhaseInline       = "inline"
	PhaseDCE          = "dce"
	PhasePackage      = "package"
	PhaseCodegen      = "codegen"
)

// Fatal reports whether a code always aborts the compilation outright,
// per §7's Kind/Recovery table (Package/I/O and Internal invariant are
// fatal; everything else accumulates).
func Fatal(code string) bool {
	switch code[:3] {
	case "PKG", "INT":
		return true
	default:
		return false
	}
}
