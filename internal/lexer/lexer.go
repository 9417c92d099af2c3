package lexer

import (
	"fmt"
	"unicode/utf8"
)

const (
	// Special
	EOF     = "EOF"
	ILLEGAL = "ILLEGAL"

	// Literals
	IDENT  = "IDENT"  // identifiers: main, printf, total, …
	INT    = "INT"    // integer literals: 0, 42, 0xFF, …
	CHAR   = "CHAR"   // character literals: 'a', '\n'
	STRING = "STRING" // string literals: "hello\n"

	// Keywords
	FUNC   = "FUNC"
	EXTERN = "EXTERN"
	RETURN = "RETURN"

	// Type keywords (int, char, string, bool, void). The lexeme carries
	// the concrete type name.
	TYPE = "TYPE"

	// Delimiters
	LPAREN    = "LPAREN"    // (
	RPAREN    = "RPAREN"    // )
	LBRACE    = "LBRACE"    // {
	RBRACE    = "RBRACE"    // }
	COMMA     = "COMMA"     // ,
	SEMICOLON = "SEMICOLON" // ;
	ARROW     = "ARROW"     // ->
	ELLIPSIS  = "ELLIPSIS"  // ...

	// Assignment operators
	ASSIGN         = "ASSIGN"         // =
	PLUS_ASSIGN    = "PLUS_ASSIGN"    // +=
	MINUS_ASSIGN   = "MINUS_ASSIGN"   // -=
	STAR_ASSIGN    = "STAR_ASSIGN"    // *=
	SLASH_ASSIGN   = "SLASH_ASSIGN"   // /=
	PERCENT_ASSIGN = "PERCENT_ASSIGN" // %=
	AND_ASSIGN     = "AND_ASSIGN"     // &&=
	OR_ASSIGN      = "OR_ASSIGN"      // ||=
)

// keywords maps reserved words to their token types.
var keywords = map[string]string{
	"func":   FUNC,
	"extern": EXTERN,
	"return": RETURN,
	"int":    TYPE,
	"char":   TYPE,
	"string": TYPE,
	"bool":   TYPE,
	"void":   TYPE,
}

// Token represents a single lexical token produced by the lexer.
type Token struct {
	Type   string
	Value  string
	Line   int
	Column int
	Offset int // byte offset of the first character in the source
}

// End returns the byte offset just past the token.
func (t Token) End() int {
	return t.Offset + len(t.Value)
}

// IsAssignOp reports whether the token is one of the assignment operators.
func (t Token) IsAssignOp() bool {
	switch t.Type {
	case ASSIGN, PLUS_ASSIGN, MINUS_ASSIGN, STAR_ASSIGN, SLASH_ASSIGN,
		PERCENT_ASSIGN, AND_ASSIGN, OR_ASSIGN:
		return true
	}
	return false
}

// LexError represents a recoverable error encountered during lexing.
type LexError struct {
	Message string
	Lexeme  string
	Line    int
	Column  int
}

func (e LexError) Error() string {
	return fmt.Sprintf("line %d, col %d: %s (got %q)", e.Line, e.Column, e.Message, e.Lexeme)
}

// Lex splits input into tokens. Lexing continues past recoverable errors
// (unterminated literals, stray characters) so that all of them can be
// reported at once. The token slice always ends with an EOF token.
func Lex(input string) ([]Token, []LexError) {
	var tokens []Token
	var errors []LexError
	line, col, i := 1, 1, 0

	for i < len(input) {
		ch := input[i]
		if isWhitespace(ch) {
			if ch == '\n' {
				line++
				col = 1
			} else if ch != '\r' {
				col++
			}
			i++
			continue
		}

		// Ignore comments
		if ch == '/' && i+1 < len(input) {
			// Single-line comment: // …
			if input[i+1] == '/' {
				i, col = skipLineComment(input, i, col)
				continue
			}
			// Multi-line comment: /* … */
			if input[i+1] == '*' {
				var err *LexError
				i, line, col, err = skipBlockComment(input, i, line, col)
				if err != nil {
					errors = append(errors, *err)
				}
				continue
			}
		}

		// Strings and characters
		if ch == '"' || ch == '\'' {
			tok, errs, newI, newLine, newCol := lexQuoted(input, i, line, col)
			i, line, col = newI, newLine, newCol
			errors = append(errors, errs...)
			if tok != nil {
				tokens = append(tokens, *tok)
			}
			continue
		}

		// Integers
		if isDigit(ch) {
			tok, newI, newCol := lexNumber(input, i, line, col)
			tokens = append(tokens, tok)
			i, col = newI, newCol
			continue
		}

		// Keywords and identifiers
		if isIdentStart(ch) {
			tok, newI, newCol := lexIdentifier(input, i, line, col)
			tokens = append(tokens, tok)
			i, col = newI, newCol
			continue
		}

		// Multi-character and single-character operators / delimiters
		if tok, width := lexOperatorOrDelimiter(input, i, line, col); width > 0 {
			tokens = append(tokens, tok)
			i += width
			col += width
			continue
		}

		// Unknown characters
		errors = append(errors, LexError{
			Message: "unexpected character",
			Lexeme:  string(ch),
			Line:    line,
			Column:  col,
		})
		i++
		col++
	}

	tokens = append(tokens, Token{EOF, "", line, col, len(input)})
	return tokens, errors
}

func skipLineComment(input string, i int, col int) (int, int) {
	for i < len(input) && input[i] != '\n' {
		i++
		col++
	}
	return i, col
}

func skipBlockComment(input string, i int, line int, col int) (int, int, int, *LexError) {
	startLine, startCol := line, col
	// Skip the opening /*
	i += 2
	col += 2

	for i < len(input) {
		if input[i] == '*' && i+1 < len(input) && input[i+1] == '/' {
			i += 2
			col += 2
			return i, line, col, nil
		}
		if input[i] == '\n' {
			line++
			col = 1
		} else if input[i] != '\r' {
			col++
		}
		i++
	}

	return i, line, col, &LexError{
		Message: "unterminated block comment",
		Lexeme:  "/*",
		Line:    startLine,
		Column:  startCol,
	}
}

// lexQuoted scans a string ("…") or character ('…') literal. The token
// value keeps the surrounding quotes and escape sequences verbatim, since
// the assembler understands the same escapes.
func lexQuoted(input string, start int, line int, col int) (*Token, []LexError, int, int, int) {
	quote := input[start]
	startLine, startCol := line, col
	var errs []LexError
	i := start + 1
	col++

	kind := STRING
	what := "string"
	if quote == '\'' {
		kind = CHAR
		what = "character"
	}

	for i < len(input) {
		ch := input[i]

		// Newline inside a literal → unterminated.
		if ch == '\n' || ch == '\r' {
			errs = append(errs, LexError{
				Message: fmt.Sprintf("unterminated %s literal (newline in literal)", what),
				Lexeme:  input[start:i],
				Line:    startLine,
				Column:  startCol,
			})
			return nil, errs, i, line, col
		}

		// Escape sequence: validate and skip both characters.
		if ch == '\\' {
			if i+1 >= len(input) {
				errs = append(errs, LexError{
					Message: "unterminated escape sequence at end of input",
					Lexeme:  "\\",
					Line:    line,
					Column:  col,
				})
				return nil, errs, i + 1, line, col + 1
			}
			next := input[i+1]
			if !isValidEscape(next) {
				errs = append(errs, LexError{
					Message: fmt.Sprintf("invalid escape sequence '\\%c'", next),
					Lexeme:  string([]byte{'\\', next}),
					Line:    line,
					Column:  col,
				})
			}
			i += 2
			col += 2
			continue
		}

		// Closing quote.
		if ch == quote {
			tok := Token{
				Type:   kind,
				Value:  input[start : i+1],
				Line:   startLine,
				Column: startCol,
				Offset: start,
			}
			i++
			col++
			if kind == CHAR && !isSingleChar(tok.Value) {
				errs = append(errs, LexError{
					Message: "character literal must hold exactly one character",
					Lexeme:  tok.Value,
					Line:    startLine,
					Column:  startCol,
				})
				return nil, errs, i, line, col
			}
			return &tok, errs, i, line, col
		}

		i++
		col++
	}

	errs = append(errs, LexError{
		Message: fmt.Sprintf("unterminated %s literal (reached end of input)", what),
		Lexeme:  input[start:],
		Line:    startLine,
		Column:  startCol,
	})
	return nil, errs, i, line, col
}

// isSingleChar reports whether a quoted char lexeme ('x' or '\n') holds one
// character.
func isSingleChar(lexeme string) bool {
	body := lexeme[1 : len(lexeme)-1]
	if len(body) == 2 && body[0] == '\\' {
		return true
	}
	return utf8.RuneCountInString(body) == 1
}

// lexNumber scans a decimal or hexadecimal integer literal.
func lexNumber(input string, start int, line int, col int) (Token, int, int) {
	i := start
	startCol := col

	if input[i] == '0' && i+1 < len(input) && (input[i+1] == 'x' || input[i+1] == 'X') {
		i += 2
		col += 2
		for i < len(input) && isHexDigit(input[i]) {
			i++
			col++
		}
		return Token{INT, input[start:i], line, startCol, start}, i, col
	}

	for i < len(input) && isDigit(input[i]) {
		i++
		col++
	}
	return Token{INT, input[start:i], line, startCol, start}, i, col
}

func lexIdentifier(input string, start int, line int, col int) (Token, int, int) {
	i := start
	startCol := col
	for i < len(input) && isIdentPart(input[i]) {
		i++
		col++
	}
	word := input[start:i]
	tokType := IDENT
	if kw, ok := keywords[word]; ok {
		tokType = kw
	}
	return Token{tokType, word, line, startCol, start}, i, col
}

// lexOperatorOrDelimiter tries to match an operator or delimiter starting at
// input[i]. Returns the token and the number of bytes consumed (0 if nothing
// matched).
func lexOperatorOrDelimiter(input string, i int, line int, col int) (Token, int) {
	ch := input[i]
	var next, third byte
	if i+1 < len(input) {
		next = input[i+1]
	}
	if i+2 < len(input) {
		third = input[i+2]
	}

	tok := func(typ string, width int) (Token, int) {
		return Token{typ, input[i : i+width], line, col, i}, width
	}

	switch ch {
	case '.':
		if next == '.' && third == '.' {
			return tok(ELLIPSIS, 3)
		}
	case '&':
		if next == '&' && third == '=' {
			return tok(AND_ASSIGN, 3)
		}
	case '|':
		if next == '|' && third == '=' {
			return tok(OR_ASSIGN, 3)
		}
	case '-':
		if next == '>' {
			return tok(ARROW, 2)
		}
		if next == '=' {
			return tok(MINUS_ASSIGN, 2)
		}
	case '+':
		if next == '=' {
			return tok(PLUS_ASSIGN, 2)
		}
	case '*':
		if next == '=' {
			return tok(STAR_ASSIGN, 2)
		}
	case '/':
		if next == '=' {
			return tok(SLASH_ASSIGN, 2)
		}
	case '%':
		if next == '=' {
			return tok(PERCENT_ASSIGN, 2)
		}
	case '=':
		return tok(ASSIGN, 1)
	case '(':
		return tok(LPAREN, 1)
	case ')':
		return tok(RPAREN, 1)
	case '{':
		return tok(LBRACE, 1)
	case '}':
		return tok(RBRACE, 1)
	case ',':
		return tok(COMMA, 1)
	case ';':
		return tok(SEMICOLON, 1)
	}

	return Token{}, 0
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentStart(ch byte) bool {
	return isLetter(ch) || ch == '_'
}

func isIdentPart(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_'
}

func isValidEscape(ch byte) bool {
	switch ch {
	case 'n', 'r', 't', '\\', '\'', '"', '0':
		return true
	default:
		return false
	}
}
