package codegen

import (
	"fmt"

	"github.com/hdc-lang/hdc/pkg/token"
)

type ErrorKind int

const (
	// Stage wrappers: the compilation failed in an earlier phase and the
	// underlying error is in Err.
	Tokenization ErrorKind = iota
	Parsing
	Semantic
	// Lowering failures raised by the generator itself.
	LitParse
	UndeclaredVariable
	InvalidNegation
	InvalidRedeclare
	TryingAssignVoid
	InvalidBinExpr
)

// CompilationError is the single error surface of the pipeline. Stage
// wrappers keep the phase error reachable through Unwrap; lowering failures
// carry the symbol name and the anchoring token directly.
type CompilationError struct {
	Kind ErrorKind
	Name string
	Tok  token.Token
	Err  error
}

func (e *CompilationError) Error() string {
	switch e.Kind {
	case Tokenization:
		return fmt.Sprintf("tokenization failed: %v", e.Err)
	case Parsing:
		return fmt.Sprintf("parsing failed: %v", e.Err)
	case Semantic:
		return fmt.Sprintf("semantic analysis failed: %v", e.Err)
	case LitParse:
		return fmt.Sprintf("cannot lower literal %q: %v", e.Name, e.Err)
	case UndeclaredVariable:
		return fmt.Sprintf("undeclared variable %q", e.Name)
	case InvalidNegation:
		return fmt.Sprintf("cannot negate a non-numeric value at %d:%d", e.Tok.Line, e.Tok.Column)
	case InvalidRedeclare:
		return fmt.Sprintf("%q redeclares an existing function", e.Name)
	case TryingAssignVoid:
		return fmt.Sprintf("cannot bind %q to an expression that produces no value", e.Name)
	case InvalidBinExpr:
		return fmt.Sprintf("no instruction for binary expression at %d:%d", e.Tok.Line, e.Tok.Column)
	}
	return "compilation failed"
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}
