package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdc-lang/hdc/pkg/config"
	"github.com/hdc-lang/hdc/pkg/ir"
	"github.com/hdc-lang/hdc/pkg/lexer"
	"github.com/hdc-lang/hdc/pkg/parser"
	"github.com/hdc-lang/hdc/pkg/sema"
)

func testConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.SetTarget("linux", "amd64", "amd64_sysv")
	return cfg
}

func lower(t *testing.T, src string) string {
	t.Helper()
	mod, err := CompileSource(testConfig(), src)
	require.NoError(t, err)
	return EmitText(mod)
}

func lowerError(t *testing.T, src string) *CompilationError {
	t.Helper()
	_, err := CompileSource(testConfig(), src)
	require.Error(t, err)
	var compErr *CompilationError
	require.ErrorAs(t, err, &compErr)
	return compErr
}

func TestGenerateImplicitMain(t *testing.T) {
	ssa := lower(t, "1;")
	assert.Contains(t, ssa, "export function w $main()")
	assert.Contains(t, ssa, "@start")
	assert.Contains(t, ssa, "ret 1", "the last int32 value becomes main's return value")
}

func TestGenerateMainDefaultsToZero(t *testing.T) {
	ssa := lower(t, "1.5;")
	assert.Contains(t, ssa, "ret 0", "a non-word last value falls back to returning zero")
}

func TestGenerateLetStoresAndLoads(t *testing.T) {
	ssa := lower(t, "let x = 1; x;")
	assert.Contains(t, ssa, "=l alloc4 4")
	assert.Contains(t, ssa, "storew 1, %t0")
	assert.Contains(t, ssa, "%t1 =w loadw %t0")
	assert.Contains(t, ssa, "ret %t1")
}

func TestGenerateArithmetic(t *testing.T) {
	ssa := lower(t, "1 + 2 * 3;")
	assert.Contains(t, ssa, "%t0 =w mul 2, 3")
	assert.Contains(t, ssa, "%t1 =w add 1, %t0")
}

func TestGenerateFloatArithmetic(t *testing.T) {
	ssa := lower(t, "1.5 + 2.5;")
	assert.Contains(t, ssa, "=s add s_1.500000, s_2.500000")
}

func TestGenerateIntNegation(t *testing.T) {
	ssa := lower(t, "-5;")
	assert.Contains(t, ssa, "=w sub 0, 5", "integer negation lowers to a subtraction from zero")
}

func TestGenerateFloatNegation(t *testing.T) {
	ssa := lower(t, "-1.5;")
	assert.Contains(t, ssa, "=s neg s_1.500000")
}

func TestGenerateStackedNegationsCancel(t *testing.T) {
	ssa := lower(t, "--5;")
	assert.NotContains(t, ssa, "sub")
	assert.NotContains(t, ssa, "neg")
	assert.Contains(t, ssa, "ret 5")
}

func TestGenerateFuncDecl(t *testing.T) {
	ssa := lower(t, "func add(a: int32; b: int32): int32 = a + b;")
	assert.Contains(t, ssa, "export function w $add(w %.a_0, w %.b_1)")
	assert.Contains(t, ssa, "storew %.a_0, %t0", "parameters spill into stack slots")
	assert.Contains(t, ssa, "loadw")
	assert.Contains(t, ssa, "=w add")
}

func TestGenerateEmptyBodyReturnsZero(t *testing.T) {
	ssa := lower(t, "func f(): int32 {}")
	assert.Contains(t, ssa, "export function w $f()")
	assert.Contains(t, ssa, "ret 0")
}

func TestGenerateUnannotatedFuncMustBeVoid(t *testing.T) {
	compErr := lowerError(t, "func f() {}")
	assert.Equal(t, Semantic, compErr.Kind)

	var semErr *sema.SemanticError
	require.ErrorAs(t, compErr, &semErr)
	assert.Equal(t, sema.InvalidFnType, semErr.Kind, "an unannotated function declares void and nothing satisfies it")
}

func TestGenerateVoidParamTakesNoSlot(t *testing.T) {
	ssa := lower(t, "func f(a: void): int32 = 1;")
	assert.Contains(t, ssa, "export function w $f()")
}

func TestGenerateFuncHandleStoredAsPointer(t *testing.T) {
	ssa := lower(t, "let g = { func v(): int32 = 4 };")
	assert.Contains(t, ssa, "export function w $v()")
	assert.Contains(t, ssa, "storel $v, %t0", "a function value is its symbol's address")
}

func TestGenerateSemanticErrorIsWrapped(t *testing.T) {
	compErr := lowerError(t, "1 + 1.5;")
	assert.Equal(t, Semantic, compErr.Kind)

	var semErr *sema.SemanticError
	require.ErrorAs(t, compErr, &semErr)
	assert.Equal(t, sema.InvalidBinExpr, semErr.Kind)
}

func TestGenerateTokenizationErrorIsWrapped(t *testing.T) {
	compErr := lowerError(t, "let a = 1.2.3;")
	assert.Equal(t, Tokenization, compErr.Kind)

	var tokErr *lexer.TokenizationError
	require.ErrorAs(t, compErr, &tokErr)
	assert.Equal(t, lexer.InvalidDigit, tokErr.Kind)
}

func TestGenerateParsingErrorIsWrapped(t *testing.T) {
	compErr := lowerError(t, "let 5 = 5;")
	assert.Equal(t, Parsing, compErr.Kind)

	var parseErr *parser.ParsingError
	require.ErrorAs(t, compErr, &parseErr)
	assert.Equal(t, parser.WrongToken, parseErr.Kind)
}

func TestGenerateUndeclaredVariable(t *testing.T) {
	compErr := lowerError(t, "y;")
	assert.Equal(t, UndeclaredVariable, compErr.Kind)
	assert.Equal(t, "y", compErr.Name)
}

func TestGenerateLetOfItselfIsUndeclared(t *testing.T) {
	compErr := lowerError(t, "let x = x;")
	assert.Equal(t, UndeclaredVariable, compErr.Kind, "a name is not visible inside its own initializer")
}

func TestGenerateInvalidNegation(t *testing.T) {
	compErr := lowerError(t, "func f(): int32 = 1; -f;")
	assert.Equal(t, InvalidNegation, compErr.Kind)
}

func TestLetVoidInitializerRollsBackBothTables(t *testing.T) {
	cfg := testConfig()
	toks, err := lexer.New("let x = {};").Scan()
	require.NoError(t, err)
	program, err := parser.New().ParseTokens(toks)
	require.NoError(t, err)

	g := New(cfg)
	_, err = g.Generate(program)
	var compErr *CompilationError
	require.ErrorAs(t, err, &compErr)
	assert.Equal(t, TryingAssignVoid, compErr.Kind)
	assert.Equal(t, "x", compErr.Name)

	_, inTypes := g.analyzer.Lookup("x")
	assert.False(t, inTypes, "the failed binding must not survive in the type table")
	_, inBindings := g.bindings["x"]
	assert.False(t, inBindings, "the failed binding must not survive in the value table")
}

func TestGenerateInvalidRedeclare(t *testing.T) {
	cfg := testConfig()
	toks, err := lexer.New("func f(): int32 = 1;").Scan()
	require.NoError(t, err)
	program, err := parser.New().ParseTokens(toks)
	require.NoError(t, err)

	g := New(cfg)
	// Seed only the generator's value table so the analyzer accepts the
	// declaration but the generator still sees a clash.
	g.bindings["f"] = &binding{Val: ir.Global{Name: "f"}, Sema: &sema.Type{Kind: sema.Int32}, Kind: slotBinding}

	_, err = g.Generate(program)
	var compErr *CompilationError
	require.ErrorAs(t, err, &compErr)
	assert.Equal(t, InvalidRedeclare, compErr.Kind)
	assert.Equal(t, "f", compErr.Name)
}

func TestGenerateLetEvaluatesToInitValue(t *testing.T) {
	ssa := lower(t, "let x = 7;")
	assert.Contains(t, ssa, "ret 7", "a let expression yields its initializer's value")
}
