package diag

import (
	"errors"
	"fmt"

	"github.com/nrzimmer/aoc-lang/internal/parsetree"
)

// Kind classifies a compilation error.
type Kind int

const (
	// Syntax errors come from the parse boundary (bad root, missing EOI).
	Syntax Kind = iota
	// Semantic errors are user-facing: unknown names, type violations.
	Semantic
	// Unsupported marks language constructs that are recognised but have
	// no lowering yet.
	Unsupported
	// Internal errors are contract violations between compiler stages.
	Internal
)

func (k Kind) String() string {
	switch k {
	case Syntax:
		return "syntax error"
	case Semantic:
		return "error"
	case Unsupported:
		return "unsupported"
	case Internal:
		return "internal error"
	default:
		return "unknown"
	}
}

// Error is a single diagnostic that aborts the pipeline.
type Error struct {
	Kind    Kind
	Message string
	Pos     parsetree.Position
}

func (e *Error) Error() string {
	if e.Pos.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("line %d, col %d: %s: %s", e.Pos.Line, e.Pos.Column, e.Kind, e.Message)
}

func newf(kind Kind, pos parsetree.Position, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: pos}
}

// Syntaxf builds a parse-boundary error.
func Syntaxf(pos parsetree.Position, format string, args ...any) *Error {
	return newf(Syntax, pos, format, args...)
}

// Errorf builds a user-facing semantic error.
func Errorf(pos parsetree.Position, format string, args ...any) *Error {
	return newf(Semantic, pos, format, args...)
}

// Unsupportedf builds an error for a construct with no lowering yet.
func Unsupportedf(pos parsetree.Position, format string, args ...any) *Error {
	return newf(Unsupported, pos, format, args...)
}

// Internalf builds an error for a broken stage contract.
func Internalf(pos parsetree.Position, format string, args ...any) *Error {
	return newf(Internal, pos, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var d *Error
	if errors.As(err, &d) {
		return d.Kind, true
	}
	return 0, false
}

func is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsSemantic reports whether err is a user-facing semantic error.
func IsSemantic(err error) bool { return is(err, Semantic) }

// IsUnsupported reports whether err marks an unimplemented construct.
func IsUnsupported(err error) bool { return is(err, Unsupported) }

// IsInternal reports whether err is an internal contract violation.
func IsInternal(err error) bool { return is(err, Internal) }

// IsSyntax reports whether err came from the parse boundary.
func IsSyntax(err error) bool { return is(err, Syntax) }
