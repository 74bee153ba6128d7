package codegen

import (
	"strconv"

	"github.com/hdc-lang/hdc/pkg/ast"
	"github.com/hdc-lang/hdc/pkg/config"
	"github.com/hdc-lang/hdc/pkg/ir"
	"github.com/hdc-lang/hdc/pkg/lexer"
	"github.com/hdc-lang/hdc/pkg/parser"
	"github.com/hdc-lang/hdc/pkg/sema"
	"github.com/hdc-lang/hdc/pkg/token"
)

type bindingKind int

const (
	slotBinding bindingKind = iota
	funcBinding
)

// binding is the generator-side view of a name: the stack slot or function
// symbol it lowers to, next to its analyzed type.
type binding struct {
	Val  ir.Value
	Sema *sema.Type
	Kind bindingKind
}

// Generator lowers the AST to IR, driving the analyzer node by node as it
// goes. It owns both symbol tables: the analyzer's type table and its own
// value bindings. Both are flat, like the language's scoping.
type Generator struct {
	cfg      *config.Config
	mod      *ir.Module
	analyzer *sema.Analyzer
	bindings map[string]*binding

	currentFunc  *ir.Func
	currentBlock *ir.BasicBlock
	tempCount    int
}

func New(cfg *config.Config) *Generator {
	return &Generator{
		cfg:      cfg,
		mod:      ir.NewModule(cfg.WordSize),
		analyzer: sema.NewAnalyzer(),
		bindings: make(map[string]*binding),
	}
}

// Analyzer exposes the generator's type table, mainly for inspection.
func (g *Generator) Analyzer() *sema.Analyzer {
	return g.analyzer
}

// CompileSource runs the whole pipeline over one source text and returns
// the lowered module. Phase errors come back wrapped so callers can reach
// the underlying lexer, parser, or analyzer error through errors.As.
func CompileSource(cfg *config.Config, src string) (*ir.Module, error) {
	toks, err := lexer.New(src).Scan()
	if err != nil {
		return nil, &CompilationError{Kind: Tokenization, Err: err}
	}
	program, err := parser.New().ParseTokens(toks)
	if err != nil {
		return nil, &CompilationError{Kind: Parsing, Err: err}
	}
	return New(cfg).Generate(program)
}

// Generate lowers a whole program into an implicit exported main function.
// Top-level statements compile in order inside it; nested function
// declarations become their own IR functions. The value of the last
// statement becomes main's return value when it is a machine word.
func (g *Generator) Generate(program *ast.Node) (*ir.Module, error) {
	mainFn := &ir.Func{Name: "main", ReturnType: ir.TypeW}
	g.mod.AddFunc(mainFn)
	g.currentFunc = mainFn
	g.currentBlock = mainFn.NewBlock("start")
	g.tempCount = 0

	last, lastType, err := g.compile(program)
	if err != nil {
		return nil, err
	}

	if last != nil && lastType != nil && lastType.Kind == sema.Int32 {
		g.addInstr(&ir.Instruction{Op: ir.OpRet, Typ: ir.TypeW, Args: []ir.Value{last}})
	} else {
		g.addInstr(&ir.Instruction{Op: ir.OpRet, Typ: ir.TypeW, Args: []ir.Value{ir.Const{Value: 0}}})
	}
	return g.mod, nil
}

// compile lowers one node and reports the value it produces together with
// its analyzed type. A nil value with a nil error means the node produced
// nothing, as with an empty block.
func (g *Generator) compile(node *ast.Node) (ir.Value, *sema.Type, error) {
	switch node.Type {
	case ast.Program:
		var v ir.Value
		var t *sema.Type
		for _, stmt := range node.Data.(*ast.ProgramNode).Stmts {
			var err error
			v, t, err = g.compile(stmt)
			if err != nil {
				return nil, nil, err
			}
		}
		return v, t, nil

	case ast.IntLit:
		raw := node.Data.(*ast.IntLitNode).Raw
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return nil, nil, &CompilationError{Kind: LitParse, Name: raw, Tok: node.Tok, Err: err}
		}
		return ir.Const{Value: n}, &sema.Type{Kind: sema.Int32}, nil

	case ast.FloatLit:
		raw := node.Data.(*ast.FloatLitNode).Raw
		f, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return nil, nil, &CompilationError{Kind: LitParse, Name: raw, Tok: node.Tok, Err: err}
		}
		return ir.FloatConst{Value: f, Typ: ir.TypeS}, &sema.Type{Kind: sema.Float32}, nil

	case ast.Ident:
		return g.compileIdent(node)
	case ast.BinExpr:
		return g.compileBinExpr(node)
	case ast.Negative:
		return g.compileNegative(node)
	case ast.Block:
		return g.compileBlock(node)
	case ast.LetDecl:
		return g.compileLet(node)
	case ast.FuncDecl:
		return g.compileFunc(node)
	}
	return nil, nil, &CompilationError{Kind: Semantic, Err: &sema.SemanticError{Kind: sema.ProgramAnalysis}}
}

func (g *Generator) compileIdent(node *ast.Node) (ir.Value, *sema.Type, error) {
	name := node.Data.(*ast.IdentNode).Name
	b, ok := g.bindings[name]
	if !ok {
		return nil, nil, &CompilationError{Kind: UndeclaredVariable, Name: name, Tok: node.Tok}
	}
	if b.Kind == funcBinding {
		return b.Val, b.Sema, nil
	}
	typ := ir.TypeOf(b.Sema, g.mod.WordSize)
	tmp := g.newTemp()
	g.addInstr(&ir.Instruction{Op: ir.OpLoad, Typ: typ, Result: tmp, Args: []ir.Value{b.Val}})
	return tmp, b.Sema, nil
}

func (g *Generator) compileBinExpr(node *ast.Node) (ir.Value, *sema.Type, error) {
	data := node.Data.(*ast.BinExprNode)
	lhs, _, err := g.compile(data.Lhs)
	if err != nil {
		return nil, nil, err
	}
	rhs, _, err := g.compile(data.Rhs)
	if err != nil {
		return nil, nil, err
	}
	t, err := g.analyzer.AnalyzeBinExpr(node)
	if err != nil {
		return nil, nil, &CompilationError{Kind: Semantic, Err: err}
	}

	op, typ, ok := binOp(t, data.Op)
	if !ok {
		return nil, nil, &CompilationError{Kind: InvalidBinExpr, Tok: node.Tok}
	}
	tmp := g.newTemp()
	g.addInstr(&ir.Instruction{Op: op, Typ: typ, Result: tmp, Args: []ir.Value{lhs, rhs}})
	return tmp, t, nil
}

func binOp(t *sema.Type, op token.Kind) (ir.Op, ir.Type, bool) {
	switch t.Kind {
	case sema.Int32:
		switch op {
		case token.Plus:
			return ir.OpAdd, ir.TypeW, true
		case token.Minus:
			return ir.OpSub, ir.TypeW, true
		case token.Star:
			return ir.OpMul, ir.TypeW, true
		case token.Slash:
			return ir.OpDiv, ir.TypeW, true
		}
	case sema.Float32:
		switch op {
		case token.Plus:
			return ir.OpAddF, ir.TypeS, true
		case token.Minus:
			return ir.OpSubF, ir.TypeS, true
		case token.Star:
			return ir.OpMulF, ir.TypeS, true
		case token.Slash:
			return ir.OpDivF, ir.TypeS, true
		}
	}
	return 0, ir.TypeNone, false
}

// compileNegative lowers unary minus. Stacked negations cancel pairwise
// without emitting any instruction.
func (g *Generator) compileNegative(node *ast.Node) (ir.Value, *sema.Type, error) {
	inner := node.Data.(*ast.NegativeNode).Expr
	if inner.Type == ast.Negative {
		return g.compile(inner.Data.(*ast.NegativeNode).Expr)
	}

	t, err := g.analyzer.Analyze(inner)
	if err != nil {
		return nil, nil, &CompilationError{Kind: Semantic, Err: err}
	}
	if t.Kind != sema.Int32 && t.Kind != sema.Float32 {
		return nil, nil, &CompilationError{Kind: InvalidNegation, Tok: node.Tok}
	}
	v, _, err := g.compile(inner)
	if err != nil {
		return nil, nil, err
	}

	tmp := g.newTemp()
	if t.Kind == sema.Float32 {
		g.addInstr(&ir.Instruction{Op: ir.OpNegF, Typ: ir.TypeS, Result: tmp, Args: []ir.Value{v}})
	} else {
		g.addInstr(&ir.Instruction{Op: ir.OpSub, Typ: ir.TypeW, Result: tmp, Args: []ir.Value{ir.Const{Value: 0}, v}})
	}
	return tmp, t, nil
}

// An empty block produces no value but still types as int32.
func (g *Generator) compileBlock(node *ast.Node) (ir.Value, *sema.Type, error) {
	var v ir.Value
	t := &sema.Type{Kind: sema.Int32}
	for _, stmt := range node.Data.(*ast.BlockNode).Stmts {
		var err error
		v, t, err = g.compile(stmt)
		if err != nil {
			return nil, nil, err
		}
	}
	return v, t, nil
}

// compileLet binds a name only after its initializer produced a value, so a
// failed binding leaves both symbol tables untouched. The let expression
// itself evaluates to the initializer's value.
func (g *Generator) compileLet(node *ast.Node) (ir.Value, *sema.Type, error) {
	data := node.Data.(*ast.LetDeclNode)
	v, t, err := g.compile(data.Init)
	if err != nil {
		return nil, nil, err
	}
	if v == nil || t == nil || t.Kind == sema.Void {
		return nil, nil, &CompilationError{Kind: TryingAssignVoid, Name: data.Name, Tok: node.Tok}
	}

	g.analyzer.Define(data.Name, t)

	typ := ir.TypeOf(t, g.mod.WordSize)
	slot := g.newTemp()
	g.addInstr(&ir.Instruction{Op: ir.OpAlloc, Typ: ir.TypePtr, Result: slot, Align: align(typ, g.mod.WordSize)})
	g.addInstr(&ir.Instruction{Op: ir.OpStore, Typ: typ, Args: []ir.Value{v, slot}})
	g.bindings[data.Name] = &binding{Val: slot, Sema: t, Kind: slotBinding}
	return v, t, nil
}

func (g *Generator) compileFunc(node *ast.Node) (ir.Value, *sema.Type, error) {
	data := node.Data.(*ast.FuncDeclNode)

	fnType, err := g.analyzer.Analyze(node)
	if err != nil {
		return nil, nil, &CompilationError{Kind: Semantic, Err: err}
	}
	if _, exists := g.bindings[data.Name]; exists {
		return nil, nil, &CompilationError{Kind: InvalidRedeclare, Name: data.Name, Tok: node.Tok}
	}

	handle := ir.Global{Name: data.Name}
	g.bindings[data.Name] = &binding{Val: handle, Sema: fnType, Kind: funcBinding}

	savedFunc, savedBlock, savedTemp := g.currentFunc, g.currentBlock, g.tempCount
	fn := &ir.Func{Name: data.Name, ReturnType: ir.TypeOf(fnType.Return, g.mod.WordSize)}
	g.currentFunc = fn
	g.currentBlock = fn.NewBlock("start")
	g.tempCount = 0

	for i, param := range data.Params {
		typ := ir.TypeOf(fnType.Params[i], g.mod.WordSize)
		if typ == ir.TypeNone {
			// void parameters take no register and get no slot
			continue
		}
		val := ir.Temporary{Name: param.Name, ID: i}
		fn.Params = append(fn.Params, ir.Param{Name: param.Name, Typ: typ, Val: val})

		slot := g.newTemp()
		g.addInstr(&ir.Instruction{Op: ir.OpAlloc, Typ: ir.TypePtr, Result: slot, Align: align(typ, g.mod.WordSize)})
		g.addInstr(&ir.Instruction{Op: ir.OpStore, Typ: typ, Args: []ir.Value{val, slot}})
		g.bindings[param.Name] = &binding{Val: slot, Sema: fnType.Params[i], Kind: slotBinding}
	}

	ret, _, err := g.compile(data.Body)
	if err != nil {
		return nil, nil, err
	}
	switch {
	case fnType.Return.Kind == sema.Void:
		g.addInstr(&ir.Instruction{Op: ir.OpRet})
	case ret == nil:
		// an empty body types as int32 but yields nothing; return zero
		g.addInstr(&ir.Instruction{Op: ir.OpRet, Typ: fn.ReturnType, Args: []ir.Value{ir.Const{Value: 0}}})
	default:
		g.addInstr(&ir.Instruction{Op: ir.OpRet, Typ: fn.ReturnType, Args: []ir.Value{ret}})
	}
	g.mod.AddFunc(fn)

	g.currentFunc, g.currentBlock, g.tempCount = savedFunc, savedBlock, savedTemp
	return handle, fnType, nil
}

func (g *Generator) newTemp() ir.Temporary {
	t := ir.Temporary{ID: g.tempCount}
	g.tempCount++
	return t
}

func (g *Generator) addInstr(instr *ir.Instruction) {
	g.currentBlock.Add(instr)
}

func align(t ir.Type, wordSize int) int {
	switch t {
	case ir.TypeW, ir.TypeS:
		return 4
	case ir.TypeL, ir.TypeD:
		return 8
	case ir.TypePtr:
		return wordSize
	}
	return wordSize
}
