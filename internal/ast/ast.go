package ast

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nrzimmer/aoc-lang/internal/parsetree"
)

// Position is a line/column pair in source code (1-based).
type Position = parsetree.Position

// ---------------------------------------------------------------------------
// String pool
// ---------------------------------------------------------------------------

// StringPool holds every string literal in first-appearance order. Each
// occurrence gets its own id, even when the text repeats.
type StringPool struct {
	entries []string
}

// Intern appends text and returns its id.
func (p *StringPool) Intern(text string) int {
	p.entries = append(p.entries, text)
	return len(p.entries) - 1
}

// Len returns the number of pooled literals.
func (p *StringPool) Len() int { return len(p.entries) }

// Get returns the literal with the given id.
func (p *StringPool) Get(id int) string { return p.entries[id] }

// All returns the literals in id order.
func (p *StringPool) All() []string { return p.entries }

// ---------------------------------------------------------------------------
// Parameters (call arguments and assigned values)
// ---------------------------------------------------------------------------

// Parameter is a value flowing into a call or assignment: either a literal
// or a reference to a variable.
type Parameter struct {
	Name      string // source identifier; empty for literals
	Value     string // literal text as written, quotes included
	StringID  int    // pool id; valid when Interned
	Interned  bool
	Type      VarType
	IsLiteral bool
	Pos       Position
}

func (p Parameter) String() string {
	if p.IsLiteral {
		return p.Value
	}
	return p.Name
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// Statement is implemented by every statement variant. The set is closed:
// consumers switch over the concrete types below.
type Statement interface {
	GetPos() Position
	stmtNode()
}

// Block is a brace-delimited statement list with its own scope.
type Block struct {
	ScopeID    int
	Statements []Statement
	Pos        Position
}

// Call is the shared shape of internal and extern calls.
type Call struct {
	Name string
	Args []Parameter
	Pos  Position
}

// FunctionCall calls a function defined in this program.
type FunctionCall struct{ Call }

// ExternFunctionCall calls a function resolved by the linker.
type ExternFunctionCall struct{ Call }

// Return leaves the function; Type is Void for a bare return.
type Return struct {
	Type  VarType
	Value *Parameter
	Pos   Position
}

// Assignment stores Value into the variable Target using Op.
type Assignment struct {
	Target string
	Op     AssignOp
	Value  Parameter
	Pos    Position
}

func (n *Block) GetPos() Position              { return n.Pos }
func (n *FunctionCall) GetPos() Position       { return n.Pos }
func (n *ExternFunctionCall) GetPos() Position { return n.Pos }
func (n *Return) GetPos() Position             { return n.Pos }
func (n *Assignment) GetPos() Position         { return n.Pos }

func (*Block) stmtNode()              {}
func (*FunctionCall) stmtNode()       {}
func (*ExternFunctionCall) stmtNode() {}
func (*Return) stmtNode()             {}
func (*Assignment) stmtNode()         {}

// ---------------------------------------------------------------------------
// Functions
// ---------------------------------------------------------------------------

// Function is a function defined in the program. Params is keyed by name,
// so declaration order is not kept.
type Function struct {
	Name       string
	ID         int
	Params     map[string]VarType
	ReturnType VarType
	Body       *Block
	Pos        Position
}

// ExternFunction is a signature resolved at link time.
type ExternFunction struct {
	Name       string
	Params     []VarType
	ReturnType VarType
	Pos        Position
}

// IsVariadic reports whether the signature ends in "...".
func (f *ExternFunction) IsVariadic() bool {
	return len(f.Params) > 0 && f.Params[len(f.Params)-1] == VarArgs
}

// FixedParams returns the declared parameters before any "...".
func (f *ExternFunction) FixedParams() []VarType {
	if f.IsVariadic() {
		return f.Params[:len(f.Params)-1]
	}
	return f.Params
}

// ---------------------------------------------------------------------------
// Program
// ---------------------------------------------------------------------------

// Program is the analyzed compilation unit. Scopes holds each function's
// root scope keyed by function id.
type Program struct {
	Functions map[string]*Function
	Externs   map[string]*ExternFunction
	Strings   *StringPool
	Scopes    map[int]*ScopeNode
}

// NewProgram returns an empty program.
func NewProgram() *Program {
	return &Program{
		Functions: make(map[string]*Function),
		Externs:   make(map[string]*ExternFunction),
		Strings:   &StringPool{},
		Scopes:    make(map[int]*ScopeNode),
	}
}

// AddFunction registers fn together with its root scope.
func (p *Program) AddFunction(fn *Function, root *ScopeNode) {
	p.Functions[fn.Name] = fn
	p.Scopes[fn.ID] = root
}

// RemoveFunction drops a function and its scope tree.
func (p *Program) RemoveFunction(name string) {
	if fn, ok := p.Functions[name]; ok {
		delete(p.Scopes, fn.ID)
		delete(p.Functions, name)
	}
}

// FunctionNames returns the defined function names in sorted order.
func (p *Program) FunctionNames() []string {
	names := make([]string, 0, len(p.Functions))
	for name := range p.Functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ---------------------------------------------------------------------------
// Debug printer
// ---------------------------------------------------------------------------

// DebugString returns a readable multi-line representation of the program.
func DebugString(prog *Program) string {
	var b strings.Builder
	b.WriteString("Program\n")
	for i, s := range prog.Strings.All() {
		fmt.Fprintf(&b, "  .STR%d = %s\n", i, s)
	}

	externs := make([]string, 0, len(prog.Externs))
	for name := range prog.Externs {
		externs = append(externs, name)
	}
	sort.Strings(externs)
	for _, name := range externs {
		ext := prog.Externs[name]
		params := make([]string, len(ext.Params))
		for i, p := range ext.Params {
			params[i] = p.String()
		}
		fmt.Fprintf(&b, "  Extern %s(%s) -> %s\n", ext.Name, strings.Join(params, ", "), ext.ReturnType)
	}

	for _, name := range prog.FunctionNames() {
		fn := prog.Functions[name]
		fmt.Fprintf(&b, "  Fn %s #%d -> %s\n", fn.Name, fn.ID, fn.ReturnType)
		debugBlock(&b, fn.Body, prog.Scopes[fn.ID], 2)
	}
	return b.String()
}

func debugBlock(b *strings.Builder, block *Block, root *ScopeNode, level int) {
	indent := strings.Repeat("  ", level)
	vars := 0
	if scope := root.Find(block.ScopeID); scope != nil {
		vars = scope.CountVariables()
	}
	fmt.Fprintf(b, "%sBlock #%d [%d statements, %d variables]\n", indent, block.ScopeID, len(block.Statements), vars)
	for _, s := range block.Statements {
		switch s := s.(type) {
		case *Block:
			debugBlock(b, s, root, level+1)
		case *FunctionCall:
			fmt.Fprintf(b, "%s  Call %s(%s)\n", indent, s.Name, argString(s.Args))
		case *ExternFunctionCall:
			fmt.Fprintf(b, "%s  ExternCall %s(%s)\n", indent, s.Name, argString(s.Args))
		case *Return:
			fmt.Fprintf(b, "%s  Return %s\n", indent, s.Type)
		case *Assignment:
			fmt.Fprintf(b, "%s  Assign %s %s %s\n", indent, s.Target, s.Op, s.Value)
		}
	}
}

func argString(args []Parameter) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}
