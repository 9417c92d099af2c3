package codegen

import (
	"fmt"
	"strings"

	"github.com/nrzimmer/aoc-lang/internal/ast"
	"github.com/nrzimmer/aoc-lang/internal/diag"
)

// ---------------------------------------------------------------------------
// x86-64 Assembly Emitter
//
// Produces GAS (AT&T syntax) assembly for the System V ABI on Linux and
// macOS.
//
// Frame layout (from rbp downward):
//   [rbp - 8]             … variable at offset 0
//   [rbp - (off+8)]       … variable at offset off
//   [rbp - frame]         … last variable slot
//
// The frame is exactly the size returned by ScopeNode.AssignOffsets. Call
// sites pad the stack by 8 bytes when the frame plus stack arguments would
// leave %rsp misaligned at the call instruction.
// ---------------------------------------------------------------------------

// EmitX86_64 lowers a finished program to assembly text. The program must
// contain main; every function's scope tree gets its offsets assigned.
func EmitX86_64(prog *ast.Program, target *Target) (string, error) {
	e := &x86_64Emitter{
		prog:   prog,
		target: target,
		b:      &strings.Builder{},
	}
	if err := e.emit(); err != nil {
		return "", err
	}
	return e.b.String(), nil
}

type x86_64Emitter struct {
	prog   *ast.Program
	target *Target
	b      *strings.Builder
}

// frame is the per-function state threaded through statement lowering.
type frame struct {
	fn    *ast.Function
	scope *ast.ScopeNode
	size  int
}

func (e *x86_64Emitter) line(format string, args ...any) {
	e.b.WriteString("    ")
	e.b.WriteString(fmt.Sprintf(format, args...))
	e.b.WriteString("\n")
}

func (e *x86_64Emitter) reg(name string) string {
	return "%" + name
}

// ---------------------------------------------------------------------------
// Module
// ---------------------------------------------------------------------------

func (e *x86_64Emitter) emit() error {
	entry, ok := e.prog.Functions["main"]
	if !ok {
		return diag.Internalf(ast.Position{}, "no main function to emit")
	}
	w := e.b

	// --- Read-only strings ---
	e.line(".text")
	e.line("%s", e.target.RodataSection)
	e.line(".align 8")
	for id, text := range e.prog.Strings.All() {
		w.WriteString(fmt.Sprintf("%s:\n", stringLabel(id)))
		e.line(".string %s", text)
	}

	// --- Text section ---
	e.line(".text")
	e.line(".globl %s", e.target.Sym("main"))
	w.WriteString("\n")

	if err := e.emitFunction(entry); err != nil {
		return err
	}
	for _, name := range e.prog.FunctionNames() {
		if name == "main" {
			continue
		}
		if err := e.emitFunction(e.prog.Functions[name]); err != nil {
			return err
		}
	}

	if e.target.NoExecStack != "" {
		e.line("%s", e.target.NoExecStack)
	}
	return nil
}

// stringLabel names the pool entry with the given id.
func stringLabel(id int) string {
	return fmt.Sprintf(".STR%d", id)
}

// ---------------------------------------------------------------------------
// Functions
// ---------------------------------------------------------------------------

func (e *x86_64Emitter) emitFunction(fn *ast.Function) error {
	root, ok := e.prog.Scopes[fn.ID]
	if !ok {
		return diag.Internalf(fn.Pos, "function %s has no scope", fn.Name)
	}

	// Pre-pass: lay out every variable of the scope tree.
	root.FrameSize = root.AssignOffsets(0)
	f := &frame{fn: fn, scope: root, size: root.FrameSize}

	w := e.b
	w.WriteString(fmt.Sprintf("%s:\n", e.target.Sym(fn.Name)))
	e.line("pushq %s", e.reg(e.target.BasePointer))
	e.line("movq %s, %s", e.reg(e.target.StackPointer), e.reg(e.target.BasePointer))
	if f.size > 0 {
		e.line("subq $%d, %s", f.size, e.reg(e.target.StackPointer))
	}

	for _, stmt := range fn.Body.Statements {
		if err := e.emitStatement(f, stmt); err != nil {
			return err
		}
	}

	e.emitEpilogue()
	w.WriteString("\n")
	return nil
}

func (e *x86_64Emitter) emitEpilogue() {
	e.zeroReturn()
	e.line("movq %s, %s", e.reg(e.target.BasePointer), e.reg(e.target.StackPointer))
	e.line("popq %s", e.reg(e.target.BasePointer))
	e.line("ret")
}

func (e *x86_64Emitter) zeroReturn() {
	r := e.reg(e.target.ReturnReg32)
	e.line("xorl %s, %s", r, r)
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (e *x86_64Emitter) emitStatement(f *frame, stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.FunctionCall:
		if _, ok := e.prog.Functions[s.Name]; !ok {
			return diag.Internalf(s.Pos, "call to undefined function %s", s.Name)
		}
		return e.emitCall(f, s.Call, e.target.Sym(s.Name), false)
	case *ast.ExternFunctionCall:
		ext, ok := e.prog.Externs[s.Name]
		if !ok {
			return diag.Internalf(s.Pos, "call to undeclared extern %s", s.Name)
		}
		return e.emitCall(f, s.Call, e.target.ExternSym(s.Name), ext.IsVariadic())
	case *ast.Assignment:
		return e.emitAssignment(f, s)
	case *ast.Return:
		return diag.Unsupportedf(s.Pos, "return statements are not supported yet")
	case *ast.Block:
		return diag.Unsupportedf(s.Pos, "nested blocks are not supported yet")
	default:
		return diag.Internalf(stmt.GetPos(), "unknown statement %T", stmt)
	}
}

func (e *x86_64Emitter) emitAssignment(f *frame, s *ast.Assignment) error {
	if !s.Value.IsLiteral {
		return diag.Unsupportedf(s.Pos, "assigning variable %s is not supported yet", s.Value.Name)
	}
	if s.Value.Type != ast.String || !s.Value.Interned {
		return diag.Unsupportedf(s.Pos, "assigning %s literals is not supported yet", s.Value.Type)
	}
	if s.Op != ast.OpAssign {
		return diag.Unsupportedf(s.Pos, "operator %s on strings is not supported", s.Op)
	}

	slot, err := e.slot(f, s.Target, s.Pos)
	if err != nil {
		return err
	}
	scratch := e.reg(e.target.ScratchReg)
	e.line("leaq %s(%%rip), %s", stringLabel(s.Value.StringID), scratch)
	e.line("movq %s, %s", scratch, slot)
	return nil
}

// slot returns the frame-pointer-relative operand of a variable.
func (e *x86_64Emitter) slot(f *frame, name string, pos ast.Position) (string, error) {
	v := f.scope.Lookup(name)
	if v == nil {
		return "", diag.Internalf(pos, "variable %s is not in scope of %s", name, f.fn.Name)
	}
	off, placed := v.Offset()
	if !placed {
		return "", diag.Internalf(pos, "variable %s has no stack slot", name)
	}
	return fmt.Sprintf("-%d(%s)", off+ast.SlotSize, e.reg(e.target.BasePointer)), nil
}
