package parser

import (
	"fmt"

	"github.com/nrzimmer/aoc-lang/internal/lexer"
	"github.com/nrzimmer/aoc-lang/internal/parsetree"
)

// ---------------------------------------------------------------------------
// ParseError
// ---------------------------------------------------------------------------

// ParseError represents a single error found during parsing.
type ParseError struct {
	Message string
	Line    int
	Column  int
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d, col %d: %s", e.Line, e.Column, e.Message)
}

// ---------------------------------------------------------------------------
// Parser
// ---------------------------------------------------------------------------

// Parser holds the state for a single parse pass over a token stream.
type Parser struct {
	src    string
	tokens []lexer.Token
	pos    int
	errors []ParseError
}

// Parse builds a parse tree from the token slice produced by lexer.Lex over
// src. The root is always a `program` node whose last child is `EOI`; any
// syntax errors found along the way are returned alongside it.
func Parse(src string, tokens []lexer.Token) (*parsetree.Node, []ParseError) {
	p := &Parser{src: src, tokens: tokens}
	root := p.parseProgram()
	return root, p.errors
}

// assignOps maps assignment-operator tokens to their grammar rules.
var assignOps = map[string]parsetree.Rule{
	lexer.ASSIGN:         parsetree.Assign,
	lexer.PLUS_ASSIGN:    parsetree.AssignPlus,
	lexer.MINUS_ASSIGN:   parsetree.AssignMinus,
	lexer.STAR_ASSIGN:    parsetree.AssignMulti,
	lexer.SLASH_ASSIGN:   parsetree.AssignDiv,
	lexer.PERCENT_ASSIGN: parsetree.AssignMod,
	lexer.AND_ASSIGN:     parsetree.AssignAnd,
	lexer.OR_ASSIGN:      parsetree.AssignOr,
}

// ---------------------------------------------------------------------------
// Token helpers
// ---------------------------------------------------------------------------

func (p *Parser) peek() lexer.Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return lexer.Token{Type: lexer.EOF, Offset: len(p.src)}
}

func (p *Parser) peekAt(offset int) lexer.Token {
	idx := p.pos + offset
	if idx >= 0 && idx < len(p.tokens) {
		return p.tokens[idx]
	}
	return lexer.Token{Type: lexer.EOF, Offset: len(p.src)}
}

func (p *Parser) advance() lexer.Token {
	tok := p.peek()
	if tok.Type != lexer.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) previous() lexer.Token {
	if p.pos > 0 {
		return p.tokens[p.pos-1]
	}
	return lexer.Token{Type: lexer.EOF}
}

func (p *Parser) check(typ string) bool {
	return p.peek().Type == typ
}

func (p *Parser) match(types ...string) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

// expect consumes the current token if it matches typ; otherwise it records
// an error and returns the current token WITHOUT advancing.
func (p *Parser) expect(typ string, msg string) lexer.Token {
	if p.check(typ) {
		return p.advance()
	}
	tok := p.peek()
	p.addError(tok, fmt.Sprintf("%s (got %s %q)", msg, tok.Type, tok.Value))
	return tok
}

func (p *Parser) addError(tok lexer.Token, msg string) {
	p.errors = append(p.errors, ParseError{
		Message: msg,
		Line:    tok.Line,
		Column:  tok.Column,
	})
}

// synchronize advances past tokens until it reaches a likely statement or
// declaration boundary.
func (p *Parser) synchronize() {
	p.advance()
	for !p.check(lexer.EOF) {
		if p.previous().Type == lexer.SEMICOLON {
			return
		}
		switch p.peek().Type {
		case lexer.FUNC, lexer.EXTERN, lexer.RETURN, lexer.RBRACE:
			return
		}
		p.advance()
	}
}

func position(tok lexer.Token) parsetree.Position {
	return parsetree.Position{Line: tok.Line, Column: tok.Column}
}

// node builds a parse-tree node spanning from start to the last consumed
// token.
func (p *Parser) node(rule parsetree.Rule, start lexer.Token, children ...*parsetree.Node) *parsetree.Node {
	end := p.previous().End()
	if p.pos == 0 || end < start.Offset {
		end = start.Offset
	}
	return parsetree.New(rule, p.src[start.Offset:end], position(start), children...)
}

// leaf builds a node for a single token.
func (p *Parser) leaf(rule parsetree.Rule, tok lexer.Token) *parsetree.Node {
	return parsetree.New(rule, tok.Value, position(tok))
}

// =========================================================================
// Top-level parsing
// =========================================================================

func (p *Parser) parseProgram() *parsetree.Node {
	var children []*parsetree.Node

	for !p.check(lexer.EOF) {
		switch p.peek().Type {
		case lexer.EXTERN:
			children = append(children, p.parseExtern())
		case lexer.FUNC:
			children = append(children, p.parseFunction())
		case lexer.TYPE:
			children = append(children, p.parseDeclaration())
			p.match(lexer.SEMICOLON)
		default:
			p.addError(p.peek(), fmt.Sprintf("expected extern, function or variable declaration, got %s", p.peek().Type))
			p.synchronize()
		}
	}

	children = append(children, p.leaf(parsetree.EOI, p.peek()))
	return parsetree.New(parsetree.Program, p.src, parsetree.Position{Line: 1, Column: 1}, children...)
}

func (p *Parser) parseIdentifier(msg string) *parsetree.Node {
	tok := p.expect(lexer.IDENT, msg)
	return p.leaf(parsetree.Identifier, tok)
}

// parseTypeName parses a type keyword. The variadic marker "..." is only
// accepted inside extern parameter lists.
func (p *Parser) parseTypeName(allowEllipsis bool) *parsetree.Node {
	tok := p.peek()
	if tok.Type == lexer.TYPE || (allowEllipsis && tok.Type == lexer.ELLIPSIS) {
		p.advance()
		return p.leaf(parsetree.TypeName, tok)
	}
	p.addError(tok, fmt.Sprintf("expected type name, got %s", tok.Type))
	return p.leaf(parsetree.TypeName, tok)
}

func (p *Parser) parseReturnType() *parsetree.Node {
	start := p.advance() // consume ->
	typ := p.parseTypeName(false)
	return p.node(parsetree.ReturnType, start, typ)
}

// parseExtern: extern <name> ( [type {, type}] ) [-> type] [;]
func (p *Parser) parseExtern() *parsetree.Node {
	start := p.advance() // consume EXTERN
	children := []*parsetree.Node{p.parseIdentifier("expected extern function name")}
	p.expect(lexer.LPAREN, "expected '(' after extern function name")

	if !p.check(lexer.RPAREN) {
		listStart := p.peek()
		params := []*parsetree.Node{p.parseTypeName(true)}
		for p.match(lexer.COMMA) {
			params = append(params, p.parseTypeName(true))
		}
		children = append(children, p.node(parsetree.ExternParamList, listStart, params...))
	}
	p.expect(lexer.RPAREN, "expected ')' after extern parameters")

	if p.check(lexer.ARROW) {
		children = append(children, p.parseReturnType())
	}
	p.match(lexer.SEMICOLON)
	return p.node(parsetree.ExternFunction, start, children...)
}

// parseFunction: func <name> ( [type name {, type name}] ) [-> type] <block>
//
// The body is optional at this level; a missing body is reported by the
// analyzer.
func (p *Parser) parseFunction() *parsetree.Node {
	start := p.advance() // consume FUNC
	children := []*parsetree.Node{p.parseIdentifier("expected function name")}
	p.expect(lexer.LPAREN, "expected '(' after function name")

	if !p.check(lexer.RPAREN) {
		listStart := p.peek()
		params := []*parsetree.Node{p.parseParameter()}
		for p.match(lexer.COMMA) {
			params = append(params, p.parseParameter())
		}
		children = append(children, p.node(parsetree.ParameterList, listStart, params...))
	}
	p.expect(lexer.RPAREN, "expected ')' after parameters")

	if p.check(lexer.ARROW) {
		children = append(children, p.parseReturnType())
	}
	if p.check(lexer.LBRACE) {
		children = append(children, p.parseBlock())
	}
	return p.node(parsetree.Function, start, children...)
}

func (p *Parser) parseParameter() *parsetree.Node {
	start := p.peek()
	typ := p.parseTypeName(false)
	name := p.parseIdentifier("expected parameter name")
	return p.node(parsetree.Parameter, start, typ, name)
}

// =========================================================================
// Block and statement parsing
// =========================================================================

func (p *Parser) parseBlock() *parsetree.Node {
	start := p.expect(lexer.LBRACE, "expected '{'")
	var stmts []*parsetree.Node

	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		startPos := p.pos
		if stmt := p.parseStatement(); stmt != nil {
			stmts = append(stmts, stmt)
		}
		// Safety: if no tokens were consumed, skip one to avoid an infinite loop.
		if p.pos == startPos {
			p.advance()
		}
	}

	p.expect(lexer.RBRACE, "expected '}'")
	return p.node(parsetree.Block, start, stmts...)
}

func (p *Parser) parseStatement() *parsetree.Node {
	start := p.peek()
	var inner *parsetree.Node

	switch start.Type {
	case lexer.RETURN:
		inner = p.parseReturn()
	case lexer.LBRACE:
		inner = p.parseBlock()
	case lexer.TYPE:
		inner = p.parseDeclaration()
	case lexer.IDENT:
		next := p.peekAt(1)
		switch {
		case next.Type == lexer.LPAREN:
			inner = p.parseCall()
		case next.IsAssignOp():
			inner = p.parseAssignment()
		default:
			p.addError(next, fmt.Sprintf("expected '(' or assignment operator after %q, got %s", start.Value, next.Type))
			p.synchronize()
			return nil
		}
	default:
		p.addError(start, fmt.Sprintf("unexpected token %s at start of statement", start.Type))
		p.synchronize()
		return nil
	}

	p.match(lexer.SEMICOLON)
	return p.node(parsetree.Statement, start, inner)
}

// parseDeclaration: <type> <name> [= <value>]
func (p *Parser) parseDeclaration() *parsetree.Node {
	start := p.peek()
	children := []*parsetree.Node{
		p.parseTypeName(false),
		p.parseIdentifier("expected variable name"),
	}
	if p.peek().IsAssignOp() {
		op := p.advance()
		if op.Type != lexer.ASSIGN {
			p.addError(op, fmt.Sprintf("expected '=' in declaration, got %q", op.Value))
		}
		children = append(children, p.leaf(parsetree.Assign, op), p.parseValue())
	}
	return p.node(parsetree.Declaration, start, children...)
}

// parseAssignment: <name> <op> <value>
func (p *Parser) parseAssignment() *parsetree.Node {
	start := p.peek()
	name := p.parseIdentifier("expected variable name")
	opTok := p.advance()
	op := p.node(parsetree.AssignOperator, opTok, p.leaf(assignOps[opTok.Type], opTok))
	value := p.parseValue()
	return p.node(parsetree.Assignment, start, name, op, value)
}

// parseCall: <name> ( [<value> {, <value>}] )
func (p *Parser) parseCall() *parsetree.Node {
	start := p.peek()
	children := []*parsetree.Node{p.parseIdentifier("expected function name")}
	p.expect(lexer.LPAREN, "expected '(' after function name")

	if !p.check(lexer.RPAREN) {
		listStart := p.peek()
		args := []*parsetree.Node{p.parseArgument()}
		for p.match(lexer.COMMA) {
			args = append(args, p.parseArgument())
		}
		children = append(children, p.node(parsetree.ArgumentList, listStart, args...))
	}
	p.expect(lexer.RPAREN, "expected ')' after arguments")
	return p.node(parsetree.FunctionCall, start, children...)
}

func (p *Parser) parseArgument() *parsetree.Node {
	start := p.peek()
	value := p.parseValue()
	return p.node(parsetree.Argument, start, value)
}

// parseReturn: return [<value>]
//
// Statements need no terminator, so a value is only taken from the same
// line as the keyword.
func (p *Parser) parseReturn() *parsetree.Node {
	start := p.advance() // consume RETURN
	next := p.peek()
	if next.Line == start.Line && isValueStart(next.Type) {
		return p.node(parsetree.ReturnStatement, start, p.parseValue())
	}
	return p.node(parsetree.ReturnStatement, start)
}

func isValueStart(typ string) bool {
	switch typ {
	case lexer.STRING, lexer.CHAR, lexer.INT, lexer.IDENT:
		return true
	}
	return false
}

// parseValue parses a literal or a bare identifier.
func (p *Parser) parseValue() *parsetree.Node {
	tok := p.peek()
	var kind parsetree.Rule
	switch tok.Type {
	case lexer.IDENT:
		p.advance()
		return p.leaf(parsetree.Identifier, tok)
	case lexer.STRING:
		kind = parsetree.String
	case lexer.CHAR:
		kind = parsetree.Char
	case lexer.INT:
		kind = parsetree.Integer
	default:
		p.addError(tok, fmt.Sprintf("expected literal or identifier, got %s", tok.Type))
		return p.leaf(parsetree.Identifier, tok)
	}
	p.advance()
	return p.node(parsetree.Literal, tok, p.leaf(kind, tok))
}
