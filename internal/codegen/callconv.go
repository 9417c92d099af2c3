package codegen

import (
	"github.com/nrzimmer/aoc-lang/internal/ast"
	"github.com/nrzimmer/aoc-lang/internal/diag"
)

// ---------------------------------------------------------------------------
// System V argument passing
//
// The first len(ArgRegs) arguments go in registers, in call order. The rest
// are pushed last-to-first so the first stack argument ends up at the
// lowest address. Only integer-class values (string addresses and stack
// slots) are passed.
// ---------------------------------------------------------------------------

// callPad returns the bytes of padding needed below the stack arguments so
// that %rsp is aligned at the call instruction.
func (e *x86_64Emitter) callPad(frameSize, stackArgs int) int {
	used := frameSize + stackArgs*e.target.PtrSize
	if rem := used % e.target.StackAlign; rem != 0 {
		return e.target.StackAlign - rem
	}
	return 0
}

// splitArgs returns the register-passed and stack-passed arguments.
func (e *x86_64Emitter) splitArgs(args []ast.Parameter) (inRegs, onStack []ast.Parameter) {
	n := len(e.target.ArgRegs)
	if len(args) <= n {
		return args, nil
	}
	return args[:n], args[n:]
}

func (e *x86_64Emitter) emitCall(f *frame, call ast.Call, callTarget string, variadic bool) error {
	for _, arg := range call.Args {
		if err := checkArgument(arg); err != nil {
			return err
		}
	}

	inRegs, onStack := e.splitArgs(call.Args)
	sp := e.reg(e.target.StackPointer)

	pad := e.callPad(f.size, len(onStack))
	if pad > 0 {
		e.line("subq $%d, %s", pad, sp)
	}

	// Push excess args in reverse order.
	scratch := e.reg(e.target.ScratchReg)
	for i := len(onStack) - 1; i >= 0; i-- {
		if err := e.loadArg(f, onStack[i], scratch); err != nil {
			return err
		}
		e.line("pushq %s", scratch)
	}

	for i, arg := range inRegs {
		if err := e.loadArg(f, arg, e.reg(e.target.ArgRegs[i])); err != nil {
			return err
		}
	}

	// Variadic callees read %al as the number of vector registers used.
	if variadic {
		e.zeroReturn()
	}
	e.line("call %s", callTarget)

	if popped := pad + len(onStack)*e.target.PtrSize; popped > 0 {
		e.line("addq $%d, %s", popped, sp)
	}
	return nil
}

// checkArgument rejects values that cannot be lowered as arguments.
func checkArgument(arg ast.Parameter) error {
	switch arg.Type {
	case ast.Void:
		return diag.Errorf(arg.Pos, "cannot pass void as an argument")
	case ast.VarArgs:
		return diag.Errorf(arg.Pos, "cannot pass varargs as an argument")
	}
	if arg.IsLiteral && arg.Type != ast.String {
		return diag.Unsupportedf(arg.Pos, "%s literal arguments are not supported yet", arg.Type)
	}
	return nil
}

// loadArg loads one argument into dst.
func (e *x86_64Emitter) loadArg(f *frame, arg ast.Parameter, dst string) error {
	if arg.IsLiteral {
		if !arg.Interned {
			return diag.Internalf(arg.Pos, "string literal %s was never pooled", arg.Value)
		}
		e.line("leaq %s(%%rip), %s", stringLabel(arg.StringID), dst)
		return nil
	}
	slot, err := e.slot(f, arg.Name, arg.Pos)
	if err != nil {
		return err
	}
	e.line("movq %s, %s", slot, dst)
	return nil
}
