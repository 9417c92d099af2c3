// Package compiler wires the stages together: lex, parse, analyze,
// optimize and emit. The first failing stage aborts the run.
package compiler

import (
	"errors"
	"strings"

	"github.com/sanity-io/litter"

	"github.com/nrzimmer/aoc-lang/internal/ast"
	"github.com/nrzimmer/aoc-lang/internal/codegen"
	"github.com/nrzimmer/aoc-lang/internal/diag"
	"github.com/nrzimmer/aoc-lang/internal/lexer"
	"github.com/nrzimmer/aoc-lang/internal/optimizer"
	"github.com/nrzimmer/aoc-lang/internal/parser"
	"github.com/nrzimmer/aoc-lang/internal/parsetree"
	"github.com/nrzimmer/aoc-lang/internal/semantic"
)

// Result holds whatever each stage produced. On failure the fields of the
// stages that completed are still set.
type Result struct {
	Tokens   []lexer.Token
	Tree     *parsetree.Node
	Program  *ast.Program
	Removed  []string // functions dropped by the optimizer
	Assembly string
}

// ErrorList is every syntax error of a failed lex or parse stage.
type ErrorList []*diag.Error

func (l ErrorList) Error() string {
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (l ErrorList) Unwrap() []error {
	errs := make([]error, len(l))
	for i, e := range l {
		errs[i] = e
	}
	return errs
}

// Front runs lex, parse, analysis and optimization.
func Front(src string) (*Result, error) {
	res := &Result{}

	tokens, lexErrs := lexer.Lex(src)
	if len(lexErrs) > 0 {
		list := make(ErrorList, len(lexErrs))
		for i, e := range lexErrs {
			list[i] = diag.Syntaxf(parsetree.Position{Line: e.Line, Column: e.Column}, "%s (got %q)", e.Message, e.Lexeme)
		}
		return res, list
	}
	res.Tokens = tokens

	tree, parseErrs := parser.Parse(src, tokens)
	if len(parseErrs) > 0 {
		list := make(ErrorList, len(parseErrs))
		for i, e := range parseErrs {
			list[i] = diag.Syntaxf(parsetree.Position{Line: e.Line, Column: e.Column}, "%s", e.Message)
		}
		return res, list
	}
	res.Tree = tree

	prog, err := semantic.Analyze(tree)
	if err != nil {
		return res, err
	}
	res.Program = prog
	res.Removed = optimizer.EliminateEmptyFunctions(prog)
	return res, nil
}

// Compile runs every stage and returns the assembly text for target.
func Compile(src string, target *codegen.Target) (*Result, error) {
	res, err := Front(src)
	if err != nil {
		return res, err
	}
	asm, err := codegen.EmitX86_64(res.Program, target)
	if err != nil {
		return res, err
	}
	res.Assembly = asm
	return res, nil
}

// Dump renders the program model for debug output.
func (r *Result) Dump() string {
	if r.Program == nil {
		return "<no program>"
	}
	return litter.Options{StripPackageNames: true}.Sdump(r.Program)
}

// Describe formats err for the terminal, one diagnostic per line, prefixed
// by the failing stage.
func Describe(err error) string {
	var list ErrorList
	if errors.As(err, &list) {
		return "Syntax errors:\n  " + strings.ReplaceAll(list.Error(), "\n", "\n  ")
	}
	kind, ok := diag.KindOf(err)
	if !ok {
		return "Error: " + err.Error()
	}
	switch kind {
	case diag.Unsupported:
		return "Unsupported construct:\n  " + err.Error()
	case diag.Internal:
		return "Internal compiler error:\n  " + err.Error()
	case diag.Syntax:
		return "Syntax errors:\n  " + err.Error()
	default:
		return "Semantic errors:\n  " + err.Error()
	}
}
