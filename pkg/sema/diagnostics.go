package sema

import (
	"fmt"

	"github.com/helixdb/helixql/pkg/lang/ast"
)

// Severity distinguishes hard type errors from advisory warnings (e.g. the
// no-argument DROP resolution of Design Notes Open Question (b)).
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// DiagnosticCode names the specific rule a Diagnostic reports, so callers
// (and tests) can match on it without parsing the message.
type DiagnosticCode string

const (
	DiagTypeError      DiagnosticCode = "TypeError"
	DiagResolveError   DiagnosticCode = "ResolveError"
	DiagSchemaError    DiagnosticCode = "SchemaError"
	DiagWarnDropNoop   DiagnosticCode = "WarnDropNoop"
)

// Diagnostic is a single compile-time finding, collected and returned as a
// batch per spec.md §7 ("compile-time errors are collected and returned as
// a batch before execution begins").
type Diagnostic struct {
	Severity Severity
	Code     DiagnosticCode
	Pos      ast.Position
	Message  string
}

func (d Diagnostic) String() string {
	sev := "error"
	if d.Severity == SeverityWarning {
		sev = "warning"
	}
	return fmt.Sprintf("%s at line %d col %d: %s [%s]", sev, d.Pos.Line, d.Pos.Col, d.Message, d.Code)
}

func typeError(pos ast.Position, expected, actual string) Diagnostic {
	return Diagnostic{
		Severity: SeverityError,
		Code:     DiagTypeError,
		Pos:      pos,
		Message:  fmt.Sprintf("expected %s, got %s", expected, actual),
	}
}

func resolveError(pos ast.Position, name string) Diagnostic {
	return Diagnostic{
		Severity: SeverityError,
		Code:     DiagResolveError,
		Pos:      pos,
		Message:  fmt.Sprintf("unknown identifier %q", name),
	}
}

func schemaError(pos ast.Position, msg string) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: DiagSchemaError, Pos: pos, Message: msg}
}

func warnDropNoop(pos ast.Position) Diagnostic {
	return Diagnostic{
		Severity: SeverityWarning,
		Code:     DiagWarnDropNoop,
		Pos:      pos,
		Message:  "DROP with no argument is a no-op",
	}
}

// HasErrors reports whether any diagnostic in diags is an error (as
// opposed to a warning); only a clean pass (§4.C) progresses to lowering.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
