package sema

import "fmt"

type ErrorKind int

const (
	UndeclaredVariable ErrorKind = iota
	UnrecognizedType
	FunctionRedeclare
	ProgramAnalysis
	InvalidBinExpr
	InvalidFnType
)

// SemanticError is fatal to the whole compilation. Name holds the symbol or
// type name involved; the Type fields are filled per kind.
type SemanticError struct {
	Kind     ErrorKind
	Name     string
	Lhs      *Type
	Rhs      *Type
	Declared *Type
	Actual   *Type
}

func (e *SemanticError) Error() string {
	switch e.Kind {
	case UndeclaredVariable:
		return fmt.Sprintf("undeclared variable %q", e.Name)
	case UnrecognizedType:
		return fmt.Sprintf("unrecognized type %q", e.Name)
	case FunctionRedeclare:
		return fmt.Sprintf("function %q redeclares an existing symbol", e.Name)
	case ProgramAnalysis:
		return "cannot analyze a program node as an expression"
	case InvalidBinExpr:
		return fmt.Sprintf("invalid binary expression between %s and %s", e.Lhs, e.Rhs)
	case InvalidFnType:
		return fmt.Sprintf("function %q declared %s but its body has type %s", e.Name, e.Declared, e.Actual)
	}
	return "semantic analysis failed"
}
