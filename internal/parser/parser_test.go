package parser_test

import (
	"testing"

	"github.com/nrzimmer/aoc-lang/internal/lexer"
	"github.com/nrzimmer/aoc-lang/internal/parser"
	"github.com/nrzimmer/aoc-lang/internal/parsetree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func parseInput(t *testing.T, input string) *parsetree.Node {
	t.Helper()
	tokens, lexErrs := lexer.Lex(input)
	require.Empty(t, lexErrs, "lex errors")
	root, parseErrs := parser.Parse(input, tokens)
	require.Empty(t, parseErrs, "parse errors")
	return root
}

func parseInputExpectErrors(t *testing.T, input string) []parser.ParseError {
	t.Helper()
	tokens, _ := lexer.Lex(input)
	_, errs := parser.Parse(input, tokens)
	return errs
}

func rules(nodes []*parsetree.Node) []parsetree.Rule {
	out := make([]parsetree.Rule, len(nodes))
	for i, n := range nodes {
		out[i] = n.Rule
	}
	return out
}

// ---------------------------------------------------------------------------
// Top level
// ---------------------------------------------------------------------------

func TestParseEmptyProgram(t *testing.T) {
	root := parseInput(t, "")
	assert.Equal(t, parsetree.Program, root.Rule)
	assert.Equal(t, []parsetree.Rule{parsetree.EOI}, rules(root.Children))
}

func TestParseExternVariadic(t *testing.T) {
	root := parseInput(t, "extern printf(string, ...) -> void")
	ext := root.Child(0)
	require.Equal(t, parsetree.ExternFunction, ext.Rule)
	assert.Equal(t, "extern printf(string, ...) -> void", ext.Text)
	assert.Equal(t, []parsetree.Rule{parsetree.Identifier, parsetree.ExternParamList, parsetree.ReturnType}, rules(ext.Children))

	params := ext.Child(1)
	require.Len(t, params.Children, 2)
	assert.Equal(t, "string", params.Child(0).Text)
	assert.Equal(t, "...", params.Child(1).Text)
	assert.Equal(t, "void", ext.Child(2).Child(0).Text)
}

func TestParseExternWithoutParams(t *testing.T) {
	root := parseInput(t, "extern flush();")
	ext := root.Child(0)
	assert.Equal(t, []parsetree.Rule{parsetree.Identifier}, rules(ext.Children))
	assert.Equal(t, parsetree.EOI, root.Child(1).Rule)
}

func TestParseFunctionWithParams(t *testing.T) {
	root := parseInput(t, "func greet(string who, int times) -> int { }")
	fn := root.Child(0)
	require.Equal(t, parsetree.Function, fn.Rule)
	assert.Equal(t, []parsetree.Rule{
		parsetree.Identifier, parsetree.ParameterList, parsetree.ReturnType, parsetree.Block,
	}, rules(fn.Children))

	params := fn.Child(1)
	require.Len(t, params.Children, 2)
	assert.Equal(t, "string who", params.Child(0).Text)
	assert.Equal(t, "int", params.Child(1).Child(0).Text)
	assert.Equal(t, "times", params.Child(1).Child(1).Text)
}

func TestParseFunctionWithoutBody(t *testing.T) {
	root := parseInput(t, "func helper()")
	fn := root.Child(0)
	assert.Equal(t, []parsetree.Rule{parsetree.Identifier}, rules(fn.Children))
}

func TestParseTopLevelDeclaration(t *testing.T) {
	root := parseInput(t, `string banner = "x"`)
	assert.Equal(t, parsetree.Declaration, root.Child(0).Rule)
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func bodyOf(t *testing.T, src string) []*parsetree.Node {
	t.Helper()
	root := parseInput(t, src)
	fn := root.Child(0)
	block := fn.Children[len(fn.Children)-1]
	require.Equal(t, parsetree.Block, block.Rule)
	return block.Children
}

func TestParseCallStatement(t *testing.T) {
	stmts := bodyOf(t, `func main() { printf("hi %s", name, 'c', 42) }`)
	require.Len(t, stmts, 1)
	require.Equal(t, parsetree.Statement, stmts[0].Rule)

	call := stmts[0].Child(0)
	require.Equal(t, parsetree.FunctionCall, call.Rule)
	assert.Equal(t, "printf", call.Child(0).Text)

	args := call.Child(1)
	require.Equal(t, parsetree.ArgumentList, args.Rule)
	require.Len(t, args.Children, 4)

	first := args.Child(0).Child(0)
	assert.Equal(t, parsetree.Literal, first.Rule)
	assert.Equal(t, parsetree.String, first.Child(0).Rule)
	assert.Equal(t, `"hi %s"`, first.Child(0).Text)

	assert.Equal(t, parsetree.Identifier, args.Child(1).Child(0).Rule)
	assert.Equal(t, parsetree.Char, args.Child(2).Child(0).Child(0).Rule)
	assert.Equal(t, parsetree.Integer, args.Child(3).Child(0).Child(0).Rule)
}

func TestParseDeclarationWithInitializer(t *testing.T) {
	stmts := bodyOf(t, "func main() {\n string s = \"x\"\n int n\n}")
	require.Len(t, stmts, 2)

	decl := stmts[0].Child(0)
	require.Equal(t, parsetree.Declaration, decl.Rule)
	assert.Equal(t, []parsetree.Rule{
		parsetree.TypeName, parsetree.Identifier, parsetree.Assign, parsetree.Literal,
	}, rules(decl.Children))

	bare := stmts[1].Child(0)
	assert.Equal(t, []parsetree.Rule{parsetree.TypeName, parsetree.Identifier}, rules(bare.Children))
}

func TestParseCompoundAssignments(t *testing.T) {
	cases := map[string]parsetree.Rule{
		"=":   parsetree.Assign,
		"+=":  parsetree.AssignPlus,
		"-=":  parsetree.AssignMinus,
		"*=":  parsetree.AssignMulti,
		"/=":  parsetree.AssignDiv,
		"%=":  parsetree.AssignMod,
		"&&=": parsetree.AssignAnd,
		"||=": parsetree.AssignOr,
	}
	for op, want := range cases {
		t.Run(op, func(t *testing.T) {
			stmts := bodyOf(t, "func main() { x "+op+" 1 }")
			assign := stmts[0].Child(0)
			require.Equal(t, parsetree.Assignment, assign.Rule)
			assert.Equal(t, parsetree.AssignOperator, assign.Child(1).Rule)
			assert.Equal(t, want, assign.Child(1).Child(0).Rule)
		})
	}
}

func TestParseReturnSameLineOnly(t *testing.T) {
	stmts := bodyOf(t, "func f() -> int {\n return 1\n}")
	ret := stmts[0].Child(0)
	require.Equal(t, parsetree.ReturnStatement, ret.Rule)
	assert.Len(t, ret.Children, 1)

	stmts = bodyOf(t, "func f() {\n return\n x = 1\n}")
	require.Len(t, stmts, 2)
	assert.Empty(t, stmts[0].Child(0).Children)
	assert.Equal(t, parsetree.Assignment, stmts[1].Child(0).Rule)
}

func TestParseNestedBlock(t *testing.T) {
	stmts := bodyOf(t, "func main() { { int x } }")
	require.Len(t, stmts, 1)
	inner := stmts[0].Child(0)
	require.Equal(t, parsetree.Block, inner.Rule)
	assert.Len(t, inner.Children, 1)
}

func TestParseSemicolonsOptional(t *testing.T) {
	stmts := bodyOf(t, `func main() { a = "x"; b = "y" c = "z"; }`)
	assert.Len(t, stmts, 3)
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"bare identifier statement", "func main() { x }"},
		{"missing paren", "func main( { }"},
		{"ellipsis in function params", "func f(...) { }"},
		{"compound operator in declaration", "func main() { int x += 1 }"},
		{"stray top-level token", "42"},
		{"bad argument", "func main() { f(,) }"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NotEmpty(t, parseInputExpectErrors(t, tc.input))
		})
	}
}

func TestParseErrorRecoveryContinues(t *testing.T) {
	errs := parseInputExpectErrors(t, "func main() { x }\nfunc other() { y }")
	assert.Len(t, errs, 2)
}
