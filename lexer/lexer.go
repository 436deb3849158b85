// Package lexer converts SQL source text into a stream of typed tokens.
package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MIUTEpxx/sqlengine/reader"
	"github.com/MIUTEpxx/sqlengine/token"
)

// LexError reports a lexical failure at a source position.
type LexError struct {
	Pos     token.Position
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// twoCharOps is checked before the single-character table: it must win on a
// tie so that e.g. "<=" is not split into "<" followed by "=".
var twoCharOps = map[string]token.Type{
	"<>": token.NEQ,
	"!=": token.NEQ,
	"<=": token.LTE,
	"=<": token.LTE,
	">=": token.GTE,
	"=>": token.GTE,
}

var oneCharOps = map[byte]token.Type{
	'=': token.EQ,
	'<': token.LT,
	'>': token.GT,
	'+': token.PLUS,
	'-': token.MINUS,
	'*': token.ASTERISK,
	'/': token.SLASH,
	',': token.COMMA,
	'(': token.LPAREN,
	')': token.RPAREN,
	';': token.SEMI,
	'.': token.DOT,
	'[': token.LBRACKET,
	']': token.RBRACKET,
}

// Lexer scans SQL source text into tokens.
type Lexer struct {
	r    *reader.Slice[byte]
	src  string
	line int
	// linePos is the byte offset of the start of the current line, used
	// to compute 1-indexed columns.
	linePos int
}

// New creates a Lexer over the given source text.
func New(src string) *Lexer {
	bytes := make([]byte, len(src))
	copy(bytes, src)
	return &Lexer{
		r:    reader.NewSlice(bytes, byte(0)),
		src:  src,
		line: 1,
	}
}

// Lex scans the full source text into an ordered token slice. The returned
// slice does not include a trailing EOF token; the parser gets its EOF
// sentinel from the reader.Slice[token.Type] it wraps the slice in, which
// yields token.EOF past the end.
func Lex(src string) ([]token.Token, error) {
	l := New(src)
	var toks []token.Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		if tok.Type == token.EOF {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}

func (l *Lexer) pos(offset int) token.Position {
	return token.Position{
		Offset: offset,
		Line:   l.line,
		Column: offset - l.linePos + 1,
	}
}

func (l *Lexer) advanceNewline() {
	l.line++
	l.linePos = l.r.Index()
}

// next scans and returns the single next token, skipping whitespace and
// comments first.
func (l *Lexer) next() (token.Token, error) {
	if err := l.skipTrivia(); err != nil {
		return token.Token{}, err
	}
	if l.r.EOF() {
		return token.Token{Type: token.EOF, Pos: l.pos(l.r.Index())}, nil
	}

	start := l.r.Index()
	pos := l.pos(start)
	ch := l.r.Peek(0)

	switch {
	case isIdentStart(ch):
		return l.scanIdentifier(start, pos)
	case isDigit(ch):
		return l.scanNumber(start, pos)
	case ch == '\'' || ch == '"':
		return l.scanString(ch, pos)
	default:
		return l.scanOperator(pos)
	}
}

// skipTrivia skips whitespace, "-- ..." line comments, and "/* ... */"
// block comments, in a loop (comments and whitespace can alternate).
func (l *Lexer) skipTrivia() error {
	for {
		progressed := false
		for !l.r.EOF() {
			ch := l.r.Peek(0)
			if ch == ' ' || ch == '\t' || ch == '\r' {
				l.r.Next()
				progressed = true
				continue
			}
			if ch == '\n' {
				l.r.Next()
				l.advanceNewline()
				progressed = true
				continue
			}
			break
		}

		if l.r.Peek(0) == '-' && l.r.Peek(1) == '-' {
			l.r.Next()
			l.r.Next()
			for !l.r.EOF() && l.r.Peek(0) != '\n' {
				l.r.Next()
			}
			progressed = true
			continue
		}

		if l.r.Peek(0) == '/' && l.r.Peek(1) == '*' {
			startPos := l.pos(l.r.Index())
			l.r.Next()
			l.r.Next()
			closed := false
			for !l.r.EOF() {
				if l.r.Peek(0) == '*' && l.r.Peek(1) == '/' {
					l.r.Next()
					l.r.Next()
					closed = true
					break
				}
				if l.r.Peek(0) == '\n' {
					l.r.Next()
					l.advanceNewline()
					continue
				}
				l.r.Next()
			}
			if !closed {
				return &LexError{Pos: startPos, Message: "unterminated block comment"}
			}
			progressed = true
			continue
		}

		if !progressed {
			return nil
		}
	}
}

func (l *Lexer) scanIdentifier(start int, pos token.Position) (token.Token, error) {
	for !l.r.EOF() && isIdentChar(l.r.Peek(0)) {
		l.r.Next()
	}
	text := l.src[start:l.r.Index()]
	typ := token.LookupIdent(strings.ToUpper(text))
	if typ == token.IDENTIFIER {
		return token.Token{Type: token.IDENTIFIER, Text: text, Pos: pos}, nil
	}
	return token.Token{Type: typ, Text: text, Pos: pos}, nil
}

func (l *Lexer) scanNumber(start int, pos token.Position) (token.Token, error) {
	dots := 0
	for !l.r.EOF() {
		ch := l.r.Peek(0)
		if isDigit(ch) {
			l.r.Next()
			continue
		}
		if ch == '.' {
			dots++
			l.r.Next()
			continue
		}
		break
	}
	text := l.src[start:l.r.Index()]
	if dots > 1 {
		return token.Token{}, &LexError{Pos: pos, Message: fmt.Sprintf("malformed number %q", text)}
	}
	if dots == 0 {
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return token.Token{}, &LexError{Pos: pos, Message: fmt.Sprintf("malformed number %q", text)}
		}
		return token.Token{Type: token.NUMBER, Text: text, Int: n, Pos: pos}, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token.Token{}, &LexError{Pos: pos, Message: fmt.Sprintf("malformed number %q", text)}
	}
	return token.Token{Type: token.NUMBER, Text: text, Float: f, IsFloat: true, Pos: pos}, nil
}

// scanString scans a quoted string literal. A backslash disables quote
// termination for the following character only; it is not otherwise
// interpreted and the backslash itself stays in the payload.
func (l *Lexer) scanString(quote byte, pos token.Position) (token.Token, error) {
	l.r.Next() // consume opening quote
	var buf strings.Builder
	for {
		if l.r.EOF() {
			return token.Token{}, &LexError{Pos: pos, Message: "unterminated string literal"}
		}
		ch := l.r.Next()
		if ch == '\\' {
			if l.r.EOF() {
				return token.Token{}, &LexError{Pos: pos, Message: "unterminated string literal"}
			}
			buf.WriteByte(ch)
			buf.WriteByte(l.r.Next())
			continue
		}
		if ch == quote {
			return token.Token{Type: token.STRING, Text: buf.String(), Pos: pos}, nil
		}
		if ch == '\n' {
			l.advanceNewline()
		}
		buf.WriteByte(ch)
	}
}

func (l *Lexer) scanOperator(pos token.Position) (token.Token, error) {
	a, b := l.r.Peek(0), l.r.Peek(1)
	if typ, ok := twoCharOps[string([]byte{a, b})]; ok {
		l.r.Next()
		l.r.Next()
		return token.Token{Type: typ, Pos: pos}, nil
	}
	if typ, ok := oneCharOps[a]; ok {
		l.r.Next()
		return token.Token{Type: typ, Pos: pos}, nil
	}
	l.r.Next()
	return token.Token{}, &LexError{Pos: pos, Message: fmt.Sprintf("unrecognized character %q", a)}
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
