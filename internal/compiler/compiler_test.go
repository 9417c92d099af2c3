package compiler_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/nrzimmer/aoc-lang/internal/codegen"
	"github.com/nrzimmer/aoc-lang/internal/compiler"
	"github.com/nrzimmer/aoc-lang/internal/diag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linux(t *testing.T) *codegen.Target {
	t.Helper()
	tgt, err := codegen.ResolveTarget("linux", "amd64")
	require.NoError(t, err)
	return tgt
}

func compile(t *testing.T, src string) *compiler.Result {
	t.Helper()
	res, err := compiler.Compile(src, linux(t))
	require.NoError(t, err)
	return res
}

// ---------------------------------------------------------------------------
// End-to-end scenarios
// ---------------------------------------------------------------------------

func TestHelloWorld(t *testing.T) {
	res := compile(t, `
extern printf(string, ...) -> void

func main() {
    printf("hi")
}
`)
	asm := res.Assembly
	assert.Equal(t, 1, strings.Count(asm, ".STR0:"))
	assert.Contains(t, asm, ".STR0:\n    .string \"hi\"\n")
	assert.Contains(t, asm, "\nmain:\n")
	assert.Contains(t, asm, "leaq .STR0(%rip), %rdi\n    xorl %eax, %eax\n    call printf@PLT\n")
	assert.Contains(t, asm, "xorl %eax, %eax\n    movq %rbp, %rsp\n    popq %rbp\n    ret\n")
}

func TestEmptyHelperDropped(t *testing.T) {
	res := compile(t, `
extern printf(string, ...) -> void
func helper() { }
func main() { printf("hi") }
`)
	assert.Equal(t, []string{"helper"}, res.Removed)
	assert.NotContains(t, res.Assembly, "helper:")
}

func TestSevenStringArguments(t *testing.T) {
	res := compile(t, `
extern printf(string, ...) -> void
func seven() { printf("in seven") }
func main() { seven("a", "b", "c", "d", "e", "f", "g") }
`)
	asm := res.Assembly
	main := asm[strings.Index(asm, "\nmain:\n"):strings.Index(asm, "\nseven:\n")]

	push := strings.Index(main, "leaq .STR7(%rip), %r10\n    pushq %r10")
	require.NotEqual(t, -1, push)
	for i, reg := range []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"} {
		load := strings.Index(main, "leaq .STR"+string(rune('1'+i))+"(%rip), %"+reg+"\n")
		require.NotEqual(t, -1, load, reg)
		assert.Greater(t, load, push, reg)
	}
	assert.Greater(t, strings.Index(main, "call seven"), push)
}

func TestPlainAssignIgnoresTargetType(t *testing.T) {
	res := compile(t, "extern printf(string, ...) -> void\nfunc main() {\n int x = \"hi\"\n printf(\"a\")\n}\n")
	assert.Contains(t, res.Assembly, "leaq .STR0(%rip), %r10\n    movq %r10, -8(%rbp)\n")

	_, err := compiler.Compile("func main() {\n string s = 5\n}", linux(t))
	require.Error(t, err)
	assert.True(t, diag.IsUnsupported(err))
}

func TestMainFirstRegardlessOfOrder(t *testing.T) {
	res := compile(t, `
extern printf(string, ...) -> void
func zz() { printf("z") }
func aa() { printf("a") }
func main() { aa() zz() }
`)
	asm := res.Assembly
	m := strings.Index(asm, "\nmain:\n")
	assert.Less(t, m, strings.Index(asm, "\naa:\n"))
	assert.Less(t, m, strings.Index(asm, "\nzz:\n"))
}

// ---------------------------------------------------------------------------
// Failures
// ---------------------------------------------------------------------------

func TestArithmeticOnStringNeverReachesCodegen(t *testing.T) {
	res, err := compiler.Compile("func main() {\n string s\n s += \"x\"\n}", linux(t))
	require.Error(t, err)
	assert.True(t, diag.IsSemantic(err))
	assert.Nil(t, res.Program)
	assert.Empty(t, res.Assembly)
}

func TestSyntaxErrorsAreCollected(t *testing.T) {
	res, err := compiler.Compile("func main() { x }\nfunc other() { y }", linux(t))
	require.Error(t, err)

	var list compiler.ErrorList
	require.True(t, errors.As(err, &list))
	assert.Len(t, list, 2)
	assert.True(t, diag.IsSyntax(err))
	assert.Nil(t, res.Tree)
}

func TestLexErrorsAreSyntax(t *testing.T) {
	_, err := compiler.Compile(`func main() { printf("open }`, linux(t))
	assert.True(t, diag.IsSyntax(err))
}

func TestUnsupportedSurfacesFromCodegen(t *testing.T) {
	res, err := compiler.Compile("func main() {\n int n = 1\n}", linux(t))
	require.Error(t, err)
	assert.True(t, diag.IsUnsupported(err))
	assert.NotNil(t, res.Program)
	assert.Empty(t, res.Assembly)
}

func TestMissingMainIsInternal(t *testing.T) {
	_, err := compiler.Compile("func main() { }", linux(t))
	assert.True(t, diag.IsInternal(err))
}

func TestDescribe(t *testing.T) {
	_, err := compiler.Compile("func main() { x }", linux(t))
	assert.True(t, strings.HasPrefix(compiler.Describe(err), "Syntax errors:\n  line 1"))

	_, err = compiler.Compile(`func main() { nope() }`, linux(t))
	assert.Contains(t, compiler.Describe(err), "Semantic errors:\n  line 1")

	_, err = compiler.Compile("func main() {\n return\n}", linux(t))
	assert.True(t, strings.HasPrefix(compiler.Describe(err), "Unsupported construct:"))

	assert.Equal(t, "Error: boom", compiler.Describe(errors.New("boom")))
}

func TestDump(t *testing.T) {
	res := compile(t, "extern printf(string, ...) -> void\nfunc main() { printf(\"hi\") }")
	dump := res.Dump()
	assert.Contains(t, dump, "Program{")
	assert.Contains(t, dump, `"printf"`)

	assert.Equal(t, "<no program>", (&compiler.Result{}).Dump())
}
