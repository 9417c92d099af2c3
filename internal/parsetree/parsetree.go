package parsetree

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Source position
// ---------------------------------------------------------------------------

// Position represents a line/column pair in source code (1-based).
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// ---------------------------------------------------------------------------
// Grammar rules
// ---------------------------------------------------------------------------

// Rule tags a node with the grammar rule that produced it.
type Rule string

const (
	Program         Rule = "program"
	ExternFunction  Rule = "extern_function"
	ExternParamList Rule = "extern_parameter_list"
	Function        Rule = "function"
	ParameterList   Rule = "parameter_list"
	Parameter       Rule = "parameter"
	ReturnType      Rule = "return_type"
	TypeName        Rule = "type_name"
	Block           Rule = "block"
	Statement       Rule = "statement"
	Declaration     Rule = "declaration"
	Assignment      Rule = "assignment"
	AssignOperator  Rule = "assign_operator"
	FunctionCall    Rule = "function_call"
	ArgumentList    Rule = "argument_list"
	Argument        Rule = "argument"
	ReturnStatement Rule = "return_statement"
	Literal         Rule = "literal"
	Identifier      Rule = "identifier"
	String          Rule = "string"
	Char            Rule = "char"
	Integer         Rule = "integer"
	EOI             Rule = "EOI"

	// Assignment operators.
	Assign      Rule = "ASSIGN"
	AssignPlus  Rule = "ASSIGN_PLUS"
	AssignMinus Rule = "ASSIGN_MINUS"
	AssignMulti Rule = "ASSIGN_MULTI"
	AssignDiv   Rule = "ASSIGN_DIV"
	AssignMod   Rule = "ASSIGN_MOD"
	AssignAnd   Rule = "ASSIGN_AND"
	AssignOr    Rule = "ASSIGN_OR"
)

// ---------------------------------------------------------------------------
// Node
// ---------------------------------------------------------------------------

// Node is a single parse-tree node: the rule that matched, its ordered
// children, and the exact source text it spans.
type Node struct {
	Rule     Rule
	Children []*Node
	Text     string
	Pos      Position
}

// New creates a node with the given rule, span text and children.
func New(rule Rule, text string, pos Position, children ...*Node) *Node {
	return &Node{Rule: rule, Text: text, Pos: pos, Children: children}
}

// Child returns the i-th child, or nil when out of range.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// Is reports whether n is non-nil and tagged with rule.
func (n *Node) Is(rule Rule) bool {
	return n != nil && n.Rule == rule
}

// Cursor walks a node's children in order, mirroring how a grammar-driven
// consumer peeks at optional sub-rules.
type Cursor struct {
	nodes []*Node
	pos   int
}

// Inner returns a cursor over n's children.
func (n *Node) Inner() *Cursor {
	return &Cursor{nodes: n.Children}
}

// Peek returns the next node without consuming it.
func (c *Cursor) Peek() *Node {
	if c.pos < len(c.nodes) {
		return c.nodes[c.pos]
	}
	return nil
}

// Next consumes and returns the next node, or nil when exhausted.
func (c *Cursor) Next() *Node {
	n := c.Peek()
	if n != nil {
		c.pos++
	}
	return n
}

// Accept consumes the next node only if it is tagged with rule.
func (c *Cursor) Accept(rule Rule) *Node {
	if n := c.Peek(); n.Is(rule) {
		c.pos++
		return n
	}
	return nil
}

// ---------------------------------------------------------------------------
// Debug printer
// ---------------------------------------------------------------------------

// DebugString returns a readable multi-line representation of the tree.
func DebugString(n *Node) string {
	var b strings.Builder
	debugNode(&b, n, 0)
	return b.String()
}

func debugNode(b *strings.Builder, n *Node, level int) {
	if n == nil {
		return
	}
	b.WriteString(strings.Repeat("  ", level))
	if len(n.Children) == 0 {
		fmt.Fprintf(b, "%s %q\n", n.Rule, n.Text)
		return
	}
	fmt.Fprintf(b, "%s\n", n.Rule)
	for _, c := range n.Children {
		debugNode(b, c, level+1)
	}
}
