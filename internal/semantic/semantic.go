package semantic

import (
	"github.com/nrzimmer/aoc-lang/internal/ast"
	"github.com/nrzimmer/aoc-lang/internal/diag"
	"github.com/nrzimmer/aoc-lang/internal/parsetree"
)

// ---------------------------------------------------------------------------
// Assignment compatibility
// ---------------------------------------------------------------------------

// assignOps maps operator rule tags to operator kinds.
var assignOps = map[parsetree.Rule]ast.AssignOp{
	parsetree.Assign:      ast.OpAssign,
	parsetree.AssignPlus:  ast.OpAdd,
	parsetree.AssignMinus: ast.OpSub,
	parsetree.AssignMulti: ast.OpMul,
	parsetree.AssignDiv:   ast.OpDiv,
	parsetree.AssignMod:   ast.OpMod,
	parsetree.AssignAnd:   ast.OpAnd,
	parsetree.AssignOr:    ast.OpOr,
}

// CheckAssign reports whether op may be applied to a value of type t.
// Plain assignment accepts any type; arithmetic needs Int or Char; logic
// needs Bool, Int or Char.
func CheckAssign(t ast.VarType, op ast.AssignOp, pos ast.Position) error {
	switch {
	case op == ast.OpAssign:
		return nil
	case op.IsArithmetic():
		if t == ast.Int || t == ast.Char {
			return nil
		}
		return diag.Errorf(pos, "cannot perform arithmetic on %s", t)
	case op.IsLogic():
		if t == ast.Bool || t == ast.Int || t == ast.Char {
			return nil
		}
		return diag.Errorf(pos, "cannot perform logic on %s", t)
	default:
		return diag.Internalf(pos, "unknown assignment operator %d", int(op))
	}
}

// ---------------------------------------------------------------------------
// Analyser
// ---------------------------------------------------------------------------

// Analyzer holds the state for a single semantic-analysis pass.
type Analyzer struct {
	prog   *ast.Program
	nextID int           // function and scope ids
	fn     *ast.Function // the function body we are currently inside
}

// Analyze lowers a parse tree rooted at a program node into a Program.
// The first error aborts the walk.
func Analyze(root *parsetree.Node) (*ast.Program, error) {
	a := &Analyzer{prog: ast.NewProgram()}
	if err := a.analyzeProgram(root); err != nil {
		return nil, err
	}
	return a.prog, nil
}

func (a *Analyzer) genID() int {
	id := a.nextID
	a.nextID++
	return id
}

// ---------------------------------------------------------------------------
// Program analysis
// ---------------------------------------------------------------------------

func (a *Analyzer) analyzeProgram(root *parsetree.Node) error {
	if root == nil {
		return diag.Syntaxf(parsetree.Position{}, "empty parse tree")
	}
	if root.Rule != parsetree.Program {
		return diag.Syntaxf(root.Pos, "expected %s at the root, got %s", parsetree.Program, root.Rule)
	}
	if last := root.Child(len(root.Children) - 1); !last.Is(parsetree.EOI) {
		return diag.Syntaxf(root.Pos, "parse tree does not end with %s", parsetree.EOI)
	}

	for _, n := range root.Children {
		var err error
		switch n.Rule {
		case parsetree.ExternFunction:
			err = a.analyzeExtern(n)
		case parsetree.Function:
			err = a.analyzeFunction(n)
		case parsetree.Declaration:
			err = diag.Unsupportedf(n.Pos, "top-level declarations are not supported yet")
		case parsetree.EOI:
		default:
			err = diag.Internalf(n.Pos, "unexpected top-level rule %s", n.Rule)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) analyzeExtern(n *parsetree.Node) error {
	inner := n.Inner()
	name := inner.Next()
	if !name.Is(parsetree.Identifier) {
		return diag.Internalf(n.Pos, "extern declaration without a name")
	}

	ext := &ast.ExternFunction{Name: name.Text, ReturnType: ast.Void, Pos: n.Pos}
	if params := inner.Accept(parsetree.ExternParamList); params != nil {
		for i, p := range params.Children {
			t, err := resolveType(p)
			if err != nil {
				return err
			}
			if t == ast.VarArgs && i != len(params.Children)-1 {
				return diag.Errorf(p.Pos, "... must be the last parameter of %s", ext.Name)
			}
			// f(void) declares an empty parameter list.
			if t == ast.Void {
				if len(params.Children) != 1 {
					return diag.Errorf(p.Pos, "void must be the only parameter of %s", ext.Name)
				}
				break
			}
			ext.Params = append(ext.Params, t)
		}
	}
	if rt := inner.Accept(parsetree.ReturnType); rt != nil {
		t, err := resolveType(rt.Child(0))
		if err != nil {
			return err
		}
		ext.ReturnType = t
	}

	// A later extern with the same name replaces the earlier one.
	a.prog.Externs[ext.Name] = ext
	return nil
}

func (a *Analyzer) analyzeFunction(n *parsetree.Node) error {
	inner := n.Inner()
	name := inner.Next()
	if !name.Is(parsetree.Identifier) {
		return diag.Internalf(n.Pos, "function declaration without a name")
	}
	if prev, ok := a.prog.Functions[name.Text]; ok {
		return diag.Errorf(n.Pos, "function %s already declared at %s", name.Text, prev.Pos)
	}

	fn := &ast.Function{
		Name:       name.Text,
		Params:     make(map[string]ast.VarType),
		ReturnType: ast.Void,
		Pos:        n.Pos,
	}
	if params := inner.Accept(parsetree.ParameterList); params != nil {
		for _, p := range params.Children {
			t, err := resolveType(p.Child(0))
			if err != nil {
				return err
			}
			fn.Params[p.Child(1).Text] = t
		}
	}
	if rt := inner.Accept(parsetree.ReturnType); rt != nil {
		t, err := resolveType(rt.Child(0))
		if err != nil {
			return err
		}
		fn.ReturnType = t
	}

	body := inner.Accept(parsetree.Block)
	if body == nil {
		return diag.Errorf(n.Pos, "no code block for function %s", fn.Name)
	}

	fn.ID = a.genID()
	root := ast.NewScope(fn.ID, ast.NoParent)
	fn.Body = &ast.Block{ScopeID: fn.ID, Pos: body.Pos}

	a.fn = fn
	defer func() { a.fn = nil }()
	if err := a.analyzeBlock(body, fn.Body, root); err != nil {
		return err
	}

	// Registered after the body, so a function can only call functions
	// declared above it.
	a.prog.AddFunction(fn, root)
	return nil
}

func (a *Analyzer) analyzeBlock(n *parsetree.Node, block *ast.Block, scope *ast.ScopeNode) error {
	for _, stmt := range n.Children {
		if err := a.analyzeStmt(stmt, block, scope); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (a *Analyzer) analyzeStmt(n *parsetree.Node, block *ast.Block, scope *ast.ScopeNode) error {
	if !n.Is(parsetree.Statement) {
		return diag.Internalf(n.Pos, "expected %s, got %s", parsetree.Statement, n.Rule)
	}
	s := n.Child(0)
	if s == nil {
		return diag.Internalf(n.Pos, "empty statement")
	}

	switch s.Rule {
	case parsetree.FunctionCall:
		return a.analyzeCall(s, block, scope)
	case parsetree.Declaration:
		return a.analyzeDeclaration(s, block, scope)
	case parsetree.Assignment:
		return a.analyzeAssignment(s, block, scope)
	case parsetree.ReturnStatement:
		return a.analyzeReturn(s, block, scope)
	case parsetree.Block:
		return a.analyzeNestedBlock(s, block, scope)
	default:
		return diag.Internalf(s.Pos, "unexpected statement rule %s", s.Rule)
	}
}

func (a *Analyzer) analyzeCall(n *parsetree.Node, block *ast.Block, scope *ast.ScopeNode) error {
	inner := n.Inner()
	name := inner.Next()
	call := ast.Call{Name: name.Text, Pos: n.Pos}

	if args := inner.Accept(parsetree.ArgumentList); args != nil {
		for _, arg := range args.Children {
			p, err := a.analyzeValue(arg.Child(0), scope)
			if err != nil {
				return err
			}
			call.Args = append(call.Args, p)
		}
	}

	if ext, ok := a.prog.Externs[call.Name]; ok {
		if err := checkExternCall(ext, call); err != nil {
			return err
		}
		block.Statements = append(block.Statements, &ast.ExternFunctionCall{Call: call})
		return nil
	}
	if _, ok := a.prog.Functions[call.Name]; ok {
		block.Statements = append(block.Statements, &ast.FunctionCall{Call: call})
		return nil
	}
	return diag.Errorf(n.Pos, "unknown function %s", call.Name)
}

func checkExternCall(ext *ast.ExternFunction, call ast.Call) error {
	fixed := ext.FixedParams()
	switch {
	case ext.IsVariadic() && len(call.Args) < len(fixed):
		return diag.Errorf(call.Pos, "%s expects at least %d arguments, got %d", ext.Name, len(fixed), len(call.Args))
	case !ext.IsVariadic() && len(call.Args) != len(fixed):
		return diag.Errorf(call.Pos, "%s expects %d arguments, got %d", ext.Name, len(fixed), len(call.Args))
	}
	for i, want := range fixed {
		if got := call.Args[i].Type; got != want {
			return diag.Errorf(call.Args[i].Pos, "argument %d of %s: expected %s, got %s", i+1, ext.Name, want, got)
		}
	}
	return nil
}

func (a *Analyzer) analyzeDeclaration(n *parsetree.Node, block *ast.Block, scope *ast.ScopeNode) error {
	inner := n.Inner()
	t, err := resolveType(inner.Next())
	if err != nil {
		return err
	}
	name := inner.Next()
	if !t.IsValue() {
		return diag.Errorf(n.Pos, "cannot declare %s of type %s", name.Text, t)
	}

	v := scope.Declare(name.Text, t)
	if op := inner.Next(); op != nil {
		return a.buildAssignment(v, op, inner.Next(), n.Pos, block, scope)
	}
	return nil
}

func (a *Analyzer) analyzeAssignment(n *parsetree.Node, block *ast.Block, scope *ast.ScopeNode) error {
	inner := n.Inner()
	name := inner.Next()
	v := scope.Lookup(name.Text)
	if v == nil {
		return diag.Errorf(name.Pos, "unknown variable %s", name.Text)
	}
	op := inner.Next()
	if !op.Is(parsetree.AssignOperator) {
		return diag.Internalf(n.Pos, "assignment without operator")
	}
	return a.buildAssignment(v, op.Child(0), inner.Next(), n.Pos, block, scope)
}

// buildAssignment checks and appends `target op value`.
func (a *Analyzer) buildAssignment(target *ast.Variable, opNode, value *parsetree.Node, pos ast.Position, block *ast.Block, scope *ast.ScopeNode) error {
	if opNode == nil || value == nil {
		return diag.Internalf(pos, "incomplete assignment to %s", target.Name)
	}
	op, ok := assignOps[opNode.Rule]
	if !ok {
		return diag.Internalf(opNode.Pos, "unknown assignment operator %s", opNode.Rule)
	}
	if err := CheckAssign(target.Type, op, pos); err != nil {
		return err
	}

	switch value.Rule {
	case parsetree.Literal:
		p, err := a.literal(value)
		if err != nil {
			return err
		}
		if err := CheckAssign(p.Type, op, value.Pos); err != nil {
			return err
		}
		block.Statements = append(block.Statements, &ast.Assignment{
			Target: target.Name,
			Op:     op,
			Value:  p,
			Pos:    pos,
		})
		return nil
	case parsetree.Identifier:
		src := scope.Lookup(value.Text)
		if src == nil {
			return diag.Errorf(value.Pos, "unknown variable %s", value.Text)
		}
		if err := CheckAssign(src.Type, op, value.Pos); err != nil {
			return err
		}
		return diag.Unsupportedf(value.Pos, "assigning variable %s to %s is not supported yet", src.Name, target.Name)
	default:
		return diag.Internalf(value.Pos, "unexpected value rule %s", value.Rule)
	}
}

func (a *Analyzer) analyzeReturn(n *parsetree.Node, block *ast.Block, scope *ast.ScopeNode) error {
	ret := &ast.Return{Type: ast.Void, Pos: n.Pos}
	if v := n.Child(0); v != nil {
		p, err := a.analyzeValue(v, scope)
		if err != nil {
			return err
		}
		ret.Type = p.Type
		ret.Value = &p
	}
	if ret.Type != a.fn.ReturnType {
		return diag.Errorf(n.Pos, "%s returns %s, not %s", a.fn.Name, a.fn.ReturnType, ret.Type)
	}
	block.Statements = append(block.Statements, ret)
	return nil
}

func (a *Analyzer) analyzeNestedBlock(n *parsetree.Node, block *ast.Block, scope *ast.ScopeNode) error {
	child := scope.AddChild(a.genID())
	nested := &ast.Block{ScopeID: child.ID, Pos: n.Pos}
	if err := a.analyzeBlock(n, nested, child); err != nil {
		return err
	}
	block.Statements = append(block.Statements, nested)
	return nil
}

// ---------------------------------------------------------------------------
// Values
// ---------------------------------------------------------------------------

// analyzeValue builds a Parameter from a literal or identifier node.
func (a *Analyzer) analyzeValue(n *parsetree.Node, scope *ast.ScopeNode) (ast.Parameter, error) {
	switch {
	case n.Is(parsetree.Literal):
		return a.literal(n)
	case n.Is(parsetree.Identifier):
		v := scope.Lookup(n.Text)
		if v == nil {
			return ast.Parameter{}, diag.Errorf(n.Pos, "unknown variable %s", n.Text)
		}
		return ast.Parameter{Name: v.Name, Type: v.Type, Pos: n.Pos}, nil
	case n == nil:
		return ast.Parameter{}, diag.Internalf(parsetree.Position{}, "missing value")
	default:
		return ast.Parameter{}, diag.Internalf(n.Pos, "unexpected value rule %s", n.Rule)
	}
}

// literal types a literal node by its tag and interns string text.
func (a *Analyzer) literal(n *parsetree.Node) (ast.Parameter, error) {
	lit := n.Child(0)
	if lit == nil {
		return ast.Parameter{}, diag.Internalf(n.Pos, "empty literal")
	}
	p := ast.Parameter{Value: lit.Text, IsLiteral: true, Pos: lit.Pos}
	switch lit.Rule {
	case parsetree.String:
		p.Type = ast.String
		p.StringID = a.prog.Strings.Intern(lit.Text)
		p.Interned = true
	case parsetree.Char:
		p.Type = ast.Char
	case parsetree.Integer:
		p.Type = ast.Int
	default:
		return ast.Parameter{}, diag.Internalf(lit.Pos, "unexpected literal rule %s", lit.Rule)
	}
	return p, nil
}

// resolveType maps a type_name node to a VarType.
func resolveType(n *parsetree.Node) (ast.VarType, error) {
	if n == nil {
		return 0, diag.Internalf(parsetree.Position{}, "missing type name")
	}
	t, ok := ast.ParseVarType(n.Text)
	if !ok {
		return 0, diag.Internalf(n.Pos, "unknown type %q", n.Text)
	}
	return t, nil
}
