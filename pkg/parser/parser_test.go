package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdc-lang/hdc/pkg/ast"
	"github.com/hdc-lang/hdc/pkg/lexer"
	"github.com/hdc-lang/hdc/pkg/token"
)

func parseSource(t *testing.T, src string) *ast.Node {
	t.Helper()
	toks, err := lexer.New(src).Scan()
	require.NoError(t, err)
	program, err := New().ParseTokens(toks)
	require.NoError(t, err)
	return program
}

func parseError(t *testing.T, src string) *ParsingError {
	t.Helper()
	toks, err := lexer.New(src).Scan()
	require.NoError(t, err)
	_, err = New().ParseTokens(toks)
	require.Error(t, err)
	var parseErr *ParsingError
	require.ErrorAs(t, err, &parseErr)
	return parseErr
}

func stmts(t *testing.T, program *ast.Node) []*ast.Node {
	t.Helper()
	require.Equal(t, ast.Program, program.Type)
	return program.Data.(*ast.ProgramNode).Stmts
}

func TestParseLetDecl(t *testing.T) {
	program := parseSource(t, "let x = 5;")
	body := stmts(t, program)
	require.Len(t, body, 1)

	require.Equal(t, ast.LetDecl, body[0].Type)
	let := body[0].Data.(*ast.LetDeclNode)
	assert.Equal(t, "x", let.Name)
	require.Equal(t, ast.IntLit, let.Init.Type)
	assert.Equal(t, "5", let.Init.Data.(*ast.IntLitNode).Raw)
}

func TestParsePrecedence(t *testing.T) {
	program := parseSource(t, "1 + 2 * 3;")
	body := stmts(t, program)
	require.Len(t, body, 1)

	require.Equal(t, ast.BinExpr, body[0].Type)
	add := body[0].Data.(*ast.BinExprNode)
	assert.Equal(t, token.Plus, add.Op)
	assert.Equal(t, ast.IntLit, add.Lhs.Type)

	require.Equal(t, ast.BinExpr, add.Rhs.Type)
	mul := add.Rhs.Data.(*ast.BinExprNode)
	assert.Equal(t, token.Star, mul.Op)
}

func TestParseParensOverridePrecedence(t *testing.T) {
	program := parseSource(t, "(1 + 2) * 3;")
	body := stmts(t, program)
	require.Len(t, body, 1)

	mul := body[0].Data.(*ast.BinExprNode)
	assert.Equal(t, token.Star, mul.Op)
	require.Equal(t, ast.BinExpr, mul.Lhs.Type)
	assert.Equal(t, token.Plus, mul.Lhs.Data.(*ast.BinExprNode).Op)
	assert.Equal(t, ast.IntLit, mul.Rhs.Type)
}

func TestParseNegative(t *testing.T) {
	program := parseSource(t, "-5;")
	body := stmts(t, program)
	require.Equal(t, ast.Negative, body[0].Type)
	inner := body[0].Data.(*ast.NegativeNode).Expr
	assert.Equal(t, ast.IntLit, inner.Type)
}

func TestParseStackedNegativesStayInTree(t *testing.T) {
	program := parseSource(t, "--5;")
	body := stmts(t, program)
	require.Equal(t, ast.Negative, body[0].Type)
	inner := body[0].Data.(*ast.NegativeNode).Expr
	require.Equal(t, ast.Negative, inner.Type, "the parser records every minus; cancellation happens later")
}

func TestParseFuncArrowForm(t *testing.T) {
	program := parseSource(t, "func one(): int32 = 1;")
	body := stmts(t, program)
	require.Equal(t, ast.FuncDecl, body[0].Type)

	fn := body[0].Data.(*ast.FuncDeclNode)
	assert.Equal(t, "one", fn.Name)
	assert.Equal(t, "int32", fn.ReturnType)
	assert.True(t, fn.IsArrow)
	assert.Equal(t, ast.IntLit, fn.Body.Type)
}

func TestParseFuncArrowWithoutReturnType(t *testing.T) {
	program := parseSource(t, "func one() = 1;")
	fn := stmts(t, program)[0].Data.(*ast.FuncDeclNode)
	assert.Empty(t, fn.ReturnType)
	assert.True(t, fn.IsArrow)
}

func TestParseFuncBlockForm(t *testing.T) {
	program := parseSource(t, "func f(): int32 { let a = 1; a }")
	fn := stmts(t, program)[0].Data.(*ast.FuncDeclNode)
	assert.False(t, fn.IsArrow)
	require.Equal(t, ast.Block, fn.Body.Type)
	assert.Len(t, fn.Body.Data.(*ast.BlockNode).Stmts, 2)
}

func TestParseFuncParamsSemicolonSeparated(t *testing.T) {
	program := parseSource(t, "func add(a: int32; b: int32): int32 = a + b;")
	fn := stmts(t, program)[0].Data.(*ast.FuncDeclNode)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].Name)
	assert.Equal(t, "int32", fn.Params[0].TypeName)
	assert.Equal(t, "b", fn.Params[1].Name)
}

func TestParseEmptyBlock(t *testing.T) {
	program := parseSource(t, "{};")
	body := stmts(t, program)
	require.Equal(t, ast.Block, body[0].Type)
	assert.Empty(t, body[0].Data.(*ast.BlockNode).Stmts)
}

func TestParseBlockTrailingSemiOptional(t *testing.T) {
	withSemi := parseSource(t, "{ 1; 2; };")
	withoutSemi := parseSource(t, "{ 1; 2 };")
	assert.Len(t, stmts(t, withSemi)[0].Data.(*ast.BlockNode).Stmts, 2)
	assert.Len(t, stmts(t, withoutSemi)[0].Data.(*ast.BlockNode).Stmts, 2)
}

func TestParseWrongTokenCarriesBacktrace(t *testing.T) {
	parseErr := parseError(t, "let 5 = 5;")
	assert.Equal(t, WrongToken, parseErr.Kind)
	assert.Equal(t, token.Ident, parseErr.Expected)
	assert.Equal(t, token.IntLit, parseErr.Received)

	require.NotEmpty(t, parseErr.Backtrace)
	last := parseErr.Backtrace[len(parseErr.Backtrace)-1]
	assert.Equal(t, "parseLet", last.Fn)
}

func TestParseExpectedBlock(t *testing.T) {
	parseErr := parseError(t, "func f(): int32 5;")
	assert.Equal(t, ExpectedBlock, parseErr.Kind)
}

func TestParseEndedTokens(t *testing.T) {
	parseErr := parseError(t, "let x =")
	assert.Equal(t, EndedTokens, parseErr.Kind)
}

func TestParseMissingSemicolon(t *testing.T) {
	parseErr := parseError(t, "let x = 1 let y = 2;")
	assert.Equal(t, WrongToken, parseErr.Kind)
	assert.Equal(t, token.Semi, parseErr.Expected)
	assert.Equal(t, token.Let, parseErr.Received)
}

func TestParserIsSingleUseAfterFailure(t *testing.T) {
	p := New()
	toks, err := lexer.New("let 5 = 5;").Scan()
	require.NoError(t, err)
	_, err = p.ParseTokens(toks)
	require.Error(t, err)

	more, err := lexer.New("let x = 1;").Scan()
	require.NoError(t, err)
	_, err = p.ParseTokens(more)
	var parseErr *ParsingError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, InQueueParsing, parseErr.Kind)
}

func TestParseBacktraceClearedBetweenStatements(t *testing.T) {
	parseErr := parseError(t, "let a = 1; let 5 = 5;")
	for _, step := range parseErr.Backtrace {
		assert.NotEqual(t, "a", step.Tok.Value,
			"tokens from the first, successful statement must not leak into the trace")
	}
	require.NotEmpty(t, parseErr.Backtrace)
	assert.Equal(t, "parseLet", parseErr.Backtrace[0].Fn)
	assert.Equal(t, token.Let, parseErr.Backtrace[0].Tok.Kind)
}

func TestParseBacktraceRecordsConsumedTokens(t *testing.T) {
	parseErr := parseError(t, "let x = 1 let y = 2;")
	assert.Equal(t, WrongToken, parseErr.Kind)

	byValue := func(val string) *ParseStep {
		for i := range parseErr.Backtrace {
			if parseErr.Backtrace[i].Tok.Value == val {
				return &parseErr.Backtrace[i]
			}
		}
		return nil
	}

	name := byValue("x")
	require.NotNil(t, name, "the consumed binding name must appear in the trace")
	assert.Equal(t, "parseLet", name.Fn)

	init := byValue("1")
	require.NotNil(t, init, "the consumed initializer must appear in the trace")
	assert.Equal(t, "parseLet", init.Fn)

	require.NotEmpty(t, parseErr.Backtrace)
	last := parseErr.Backtrace[len(parseErr.Backtrace)-1]
	assert.Equal(t, "parse", last.Fn)
	assert.Equal(t, token.Let, last.Tok.Kind)
}
