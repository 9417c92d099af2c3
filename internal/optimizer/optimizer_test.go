package optimizer_test

import (
	"testing"

	"github.com/nrzimmer/aoc-lang/internal/ast"
	"github.com/nrzimmer/aoc-lang/internal/lexer"
	"github.com/nrzimmer/aoc-lang/internal/optimizer"
	"github.com/nrzimmer/aoc-lang/internal/parser"
	"github.com/nrzimmer/aoc-lang/internal/semantic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, input string) *ast.Program {
	t.Helper()
	tokens, lexErrs := lexer.Lex(input)
	require.Empty(t, lexErrs)
	root, parseErrs := parser.Parse(input, tokens)
	require.Empty(t, parseErrs)
	prog, err := semantic.Analyze(root)
	require.NoError(t, err)
	return prog
}

const printfDecl = "extern printf(string, ...) -> void\n"

func TestRemovesEmptyFunction(t *testing.T) {
	prog := analyze(t, printfDecl+"func helper() { }\n"+`func main() { printf("hi") }`)
	helperID := prog.Functions["helper"].ID

	removed := optimizer.EliminateEmptyFunctions(prog)
	assert.Equal(t, []string{"helper"}, removed)
	assert.NotContains(t, prog.Functions, "helper")
	assert.NotContains(t, prog.Scopes, helperID)
	assert.Contains(t, prog.Functions, "main")
}

func TestDeclarationsAloneAreEmpty(t *testing.T) {
	prog := analyze(t, "func quiet() {\n string s\n}")
	assert.Equal(t, []string{"quiet"}, optimizer.EliminateEmptyFunctions(prog))
}

func TestMainIsNotExempt(t *testing.T) {
	prog := analyze(t, "func main() { }")
	assert.Equal(t, []string{"main"}, optimizer.EliminateEmptyFunctions(prog))
	assert.Empty(t, prog.Functions)
}

func TestNothingToRemove(t *testing.T) {
	prog := analyze(t, printfDecl+`func main() { printf("hi") }`)
	assert.Nil(t, optimizer.EliminateEmptyFunctions(prog))
	assert.Len(t, prog.Functions, 1)
}

func TestStripsCallsToRemovedFunctions(t *testing.T) {
	prog := analyze(t, printfDecl+"func helper() { }\n"+"func main() {\n helper()\n printf(\"hi\")\n { helper() }\n}")
	optimizer.EliminateEmptyFunctions(prog)

	stmts := prog.Functions["main"].Body.Statements
	require.Len(t, stmts, 2)
	_, isExtern := stmts[0].(*ast.ExternFunctionCall)
	assert.True(t, isExtern)
	nested := stmts[1].(*ast.Block)
	assert.Empty(t, nested.Statements)
}

func TestSinglePass(t *testing.T) {
	// caller only calls helper; once helper goes, caller is empty but stays.
	prog := analyze(t, "func helper() { }\nfunc caller() { helper() }")
	assert.Equal(t, []string{"helper"}, optimizer.EliminateEmptyFunctions(prog))
	require.Contains(t, prog.Functions, "caller")
	assert.Empty(t, prog.Functions["caller"].Body.Statements)
}
