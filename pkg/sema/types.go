package sema

import (
	"fmt"
	"strings"
)

type TypeKind int

const (
	Int32 TypeKind = iota
	Float32
	Void
	Function
)

// Type is compared structurally. Params and Return are only set for
// Function types.
type Type struct {
	Kind   TypeKind
	Params []*Type
	Return *Type
}

// TypeFromName resolves a written type name to a concrete type.
func TypeFromName(name string) (*Type, bool) {
	switch name {
	case "int32":
		return &Type{Kind: Int32}, true
	case "f32":
		return &Type{Kind: Float32}, true
	case "void":
		return &Type{Kind: Void}, true
	}
	return nil, false
}

func (t *Type) Equal(o *Type) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Kind != o.Kind {
		return false
	}
	if t.Kind != Function {
		return true
	}
	if len(t.Params) != len(o.Params) {
		return false
	}
	for i := range t.Params {
		if !t.Params[i].Equal(o.Params[i]) {
			return false
		}
	}
	return t.Return.Equal(o.Return)
}

func (t *Type) String() string {
	switch t.Kind {
	case Int32:
		return "int32"
	case Float32:
		return "f32"
	case Void:
		return "void"
	case Function:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.String()
		}
		return fmt.Sprintf("func(%s) %s", strings.Join(parts, "; "), t.Return)
	}
	return "unknown"
}
