package sema

import "github.com/hdc-lang/hdc/pkg/ast"

// Analyzer type-checks AST nodes against a single flat symbol table. There
// is no scoping: function parameters and locals land in the same table as
// top-level bindings and persist after the declaration ends.
type Analyzer struct {
	symbols map[string]*Type
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{symbols: make(map[string]*Type)}
}

func (a *Analyzer) Lookup(name string) (*Type, bool) {
	t, ok := a.symbols[name]
	return t, ok
}

func (a *Analyzer) Define(name string, t *Type) {
	a.symbols[name] = t
}

func (a *Analyzer) Remove(name string) {
	delete(a.symbols, name)
}

// Analyze computes the type of a single node, binding declarations into the
// symbol table as a side effect. Program nodes are not expressions and are
// rejected; the code generator walks their children itself.
func (a *Analyzer) Analyze(node *ast.Node) (*Type, error) {
	switch node.Type {
	case ast.IntLit:
		return &Type{Kind: Int32}, nil
	case ast.FloatLit:
		return &Type{Kind: Float32}, nil
	case ast.Ident:
		name := node.Data.(*ast.IdentNode).Name
		t, ok := a.Lookup(name)
		if !ok {
			return nil, &SemanticError{Kind: UndeclaredVariable, Name: name}
		}
		return t, nil
	case ast.Negative:
		return a.Analyze(node.Data.(*ast.NegativeNode).Expr)
	case ast.BinExpr:
		return a.AnalyzeBinExpr(node)
	case ast.Block:
		return a.analyzeBlock(node.Data.(*ast.BlockNode))
	case ast.LetDecl:
		data := node.Data.(*ast.LetDeclNode)
		t, err := a.Analyze(data.Init)
		if err != nil {
			return nil, err
		}
		a.Define(data.Name, t)
		return t, nil
	case ast.FuncDecl:
		return a.analyzeFunc(node.Data.(*ast.FuncDeclNode))
	}
	return nil, &SemanticError{Kind: ProgramAnalysis}
}

// AnalyzeBinExpr accepts only operands of the same numeric type.
func (a *Analyzer) AnalyzeBinExpr(node *ast.Node) (*Type, error) {
	data := node.Data.(*ast.BinExprNode)
	lt, err := a.Analyze(data.Lhs)
	if err != nil {
		return nil, err
	}
	rt, err := a.Analyze(data.Rhs)
	if err != nil {
		return nil, err
	}
	if !lt.Equal(rt) || (lt.Kind != Int32 && lt.Kind != Float32) {
		return nil, &SemanticError{Kind: InvalidBinExpr, Lhs: lt, Rhs: rt}
	}
	return lt, nil
}

// An empty block has type int32.
func (a *Analyzer) analyzeBlock(data *ast.BlockNode) (*Type, error) {
	result := &Type{Kind: Int32}
	for _, stmt := range data.Stmts {
		t, err := a.Analyze(stmt)
		if err != nil {
			return nil, err
		}
		result = t
	}
	return result, nil
}

func (a *Analyzer) analyzeFunc(data *ast.FuncDeclNode) (*Type, error) {
	paramTypes := make([]*Type, 0, len(data.Params))
	for _, param := range data.Params {
		pt, ok := TypeFromName(param.TypeName)
		if !ok {
			return nil, &SemanticError{Kind: UnrecognizedType, Name: param.TypeName}
		}
		paramTypes = append(paramTypes, pt)
		a.Define(param.Name, pt)
	}

	// an absent return annotation means void
	declared := &Type{Kind: Void}
	if data.ReturnType != "" {
		t, ok := TypeFromName(data.ReturnType)
		if !ok {
			return nil, &SemanticError{Kind: UnrecognizedType, Name: data.ReturnType}
		}
		declared = t
	}

	body, err := a.Analyze(data.Body)
	if err != nil {
		return nil, err
	}
	if !declared.Equal(body) {
		return nil, &SemanticError{Kind: InvalidFnType, Name: data.Name, Declared: declared, Actual: body}
	}

	fn := &Type{Kind: Function, Params: paramTypes, Return: declared}
	_, existed := a.symbols[data.Name]
	a.Define(data.Name, fn)
	if existed {
		return nil, &SemanticError{Kind: FunctionRedeclare, Name: data.Name}
	}
	return fn, nil
}
