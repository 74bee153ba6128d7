package ir

import (
	"fmt"

	"github.com/hdc-lang/hdc/pkg/sema"
)

type Op int

const (
	OpAlloc Op = iota
	OpLoad
	OpStore
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpAddF
	OpSubF
	OpMulF
	OpDivF
	OpNegF
	OpRet
)

var opNames = map[Op]string{
	OpAlloc: "alloc",
	OpLoad:  "load",
	OpStore: "store",
	OpAdd:   "add",
	OpSub:   "sub",
	OpMul:   "mul",
	OpDiv:   "div",
	OpAddF:  "addf",
	OpSubF:  "subf",
	OpMulF:  "mulf",
	OpDivF:  "divf",
	OpNegF:  "negf",
	OpRet:   "ret",
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return "unknown"
}

// Type is the machine-level value class. None marks instructions that
// produce no value.
type Type int

const (
	TypeNone Type = iota
	TypeW         // 32-bit integer word
	TypeL         // 64-bit integer
	TypeS         // single-precision float
	TypeD         // double-precision float
	TypePtr       // pointer-sized integer
)

// TypeOf lowers an analyzer type to its machine class. Function values are
// carried as pointers to the function symbol.
func TypeOf(t *sema.Type, wordSize int) Type {
	switch t.Kind {
	case sema.Int32:
		return TypeW
	case sema.Float32:
		return TypeS
	case sema.Function:
		if wordSize == 4 {
			return TypeW
		}
		return TypePtr
	}
	return TypeNone
}

// Value is anything an instruction can reference as an operand or produce
// as a result.
type Value interface {
	isValue()
	String() string
}

type Const struct {
	Value int64
}

type FloatConst struct {
	Value float64
	Typ   Type
}

type Global struct {
	Name string
}

type Temporary struct {
	Name string
	ID   int
}

type Label struct {
	Name string
}

func (Const) isValue()      {}
func (FloatConst) isValue() {}
func (Global) isValue()     {}
func (Temporary) isValue()  {}
func (Label) isValue()      {}

func (c Const) String() string      { return fmt.Sprintf("%d", c.Value) }
func (c FloatConst) String() string { return fmt.Sprintf("%g", c.Value) }
func (g Global) String() string     { return "$" + g.Name }
func (l Label) String() string      { return "@" + l.Name }

func (t Temporary) String() string {
	if t.Name != "" {
		return fmt.Sprintf("%%.%s_%d", t.Name, t.ID)
	}
	return fmt.Sprintf("%%t%d", t.ID)
}

// Instruction is a single operation. Result is nil for instructions with no
// destination. Align is only meaningful for allocs.
type Instruction struct {
	Op     Op
	Typ    Type
	Result Value
	Args   []Value
	Align  int
}

type BasicBlock struct {
	Label        string
	Instructions []*Instruction
}

func (b *BasicBlock) Add(instr *Instruction) {
	b.Instructions = append(b.Instructions, instr)
}

type Param struct {
	Name string
	Typ  Type
	Val  Value
}

type Func struct {
	Name       string
	Params     []Param
	ReturnType Type
	Blocks     []*BasicBlock
}

func (f *Func) NewBlock(label string) *BasicBlock {
	b := &BasicBlock{Label: label}
	f.Blocks = append(f.Blocks, b)
	return b
}

// Module is the unit of lowering, one per source file.
type Module struct {
	Funcs    []*Func
	WordSize int
}

func NewModule(wordSize int) *Module {
	return &Module{WordSize: wordSize}
}

func (m *Module) AddFunc(f *Func) {
	m.Funcs = append(m.Funcs, f)
}
