package ast

import "github.com/hdc-lang/hdc/pkg/token"

type NodeType int

const (
	Program NodeType = iota
	Block
	LetDecl
	FuncDecl
	BinExpr
	Negative
	Ident
	IntLit
	FloatLit
)

var nodeTypeNames = map[NodeType]string{
	Program:  "Program",
	Block:    "Block",
	LetDecl:  "LetDecl",
	FuncDecl: "FuncDecl",
	BinExpr:  "BinExpr",
	Negative: "Negative",
	Ident:    "Ident",
	IntLit:   "IntLit",
	FloatLit: "FloatLit",
}

func (t NodeType) String() string {
	if name, ok := nodeTypeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// Node is the single AST node shape. Tok is the token the node was built
// from and anchors diagnostics. Data holds the per-type payload struct.
type Node struct {
	Type NodeType
	Tok  token.Token
	Data interface{}
}

type ProgramNode struct {
	Stmts []*Node
}

type BlockNode struct {
	Stmts []*Node
}

type LetDeclNode struct {
	Name string
	Init *Node
}

// Param is a single formal parameter with its written type name. The name
// is resolved to a concrete type during analysis, not during parsing.
type Param struct {
	Name     string
	TypeName string
	Tok      token.Token
}

type FuncDeclNode struct {
	Name       string
	Params     []Param
	ReturnType string
	Body       *Node
	// IsArrow marks the `= expr` body form; the block form requires the
	// body node to be a Block.
	IsArrow bool
}

type BinExprNode struct {
	Op  token.Kind
	Lhs *Node
	Rhs *Node
}

type NegativeNode struct {
	Expr *Node
}

type IdentNode struct {
	Name string
}

type IntLitNode struct {
	Raw string
}

type FloatLitNode struct {
	Raw string
}

func NewProgram(stmts []*Node) *Node {
	return &Node{Type: Program, Data: &ProgramNode{Stmts: stmts}}
}

func NewBlock(tok token.Token, stmts []*Node) *Node {
	return &Node{Type: Block, Tok: tok, Data: &BlockNode{Stmts: stmts}}
}

func NewLetDecl(tok token.Token, name string, init *Node) *Node {
	return &Node{Type: LetDecl, Tok: tok, Data: &LetDeclNode{Name: name, Init: init}}
}

func NewFuncDecl(tok token.Token, name string, params []Param, returnType string, body *Node, isArrow bool) *Node {
	return &Node{Type: FuncDecl, Tok: tok, Data: &FuncDeclNode{
		Name:       name,
		Params:     params,
		ReturnType: returnType,
		Body:       body,
		IsArrow:    isArrow,
	}}
}

func NewBinExpr(tok token.Token, op token.Kind, lhs, rhs *Node) *Node {
	return &Node{Type: BinExpr, Tok: tok, Data: &BinExprNode{Op: op, Lhs: lhs, Rhs: rhs}}
}

func NewNegative(tok token.Token, expr *Node) *Node {
	return &Node{Type: Negative, Tok: tok, Data: &NegativeNode{Expr: expr}}
}

func NewIdent(tok token.Token) *Node {
	return &Node{Type: Ident, Tok: tok, Data: &IdentNode{Name: tok.Value}}
}

func NewIntLit(tok token.Token) *Node {
	return &Node{Type: IntLit, Tok: tok, Data: &IntLitNode{Raw: tok.Value}}
}

func NewFloatLit(tok token.Token) *Node {
	return &Node{Type: FloatLit, Tok: tok, Data: &FloatLitNode{Raw: tok.Value}}
}
