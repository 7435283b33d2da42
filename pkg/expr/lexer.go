package expr

import (
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokPow
	tokLParen
	tokRParen
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokNumber:
		return "number"
	case tokIdent:
		return "identifier"
	case tokPlus:
		return "'+'"
	case tokMinus:
		return "'-'"
	case tokStar:
		return "'*'"
	case tokSlash:
		return "'/'"
	case tokPow:
		return "'**'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	}
	return "unknown token"
}

type token struct {
	kind  tokenKind
	text  string
	pos   int
	value float64 // tokNumber only
}

func (t token) describe() string {
	switch t.kind {
	case tokNumber, tokIdent:
		return fmt.Sprintf("%s %q", t.kind, t.text)
	}
	return t.kind.String()
}

// lexer splits ASCII formula text into tokens. Any byte outside the grammar is an error.
type lexer struct {
	input string
	pos   int
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.input) && isSpace(l.input[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	c := l.input[l.pos]
	switch {
	case isDigit(c) || (c == '.' && l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1])):
		return l.number()
	case isIdentStart(c):
		for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
			l.pos++
		}
		return token{kind: tokIdent, text: l.input[start:l.pos], pos: start}, nil
	}

	l.pos++
	switch c {
	case '+':
		return token{kind: tokPlus, text: "+", pos: start}, nil
	case '-':
		return token{kind: tokMinus, text: "-", pos: start}, nil
	case '*':
		if l.pos < len(l.input) && l.input[l.pos] == '*' {
			l.pos++
			return token{kind: tokPow, text: "**", pos: start}, nil
		}
		return token{kind: tokStar, text: "*", pos: start}, nil
	case '/':
		return token{kind: tokSlash, text: "/", pos: start}, nil
	case '^':
		return token{kind: tokPow, text: "^", pos: start}, nil
	case '(':
		return token{kind: tokLParen, text: "(", pos: start}, nil
	case ')':
		return token{kind: tokRParen, text: ")", pos: start}, nil
	}
	r, _ := utf8.DecodeRuneInString(l.input[start:])
	return token{}, &invalidf{pos: start, msg: fmt.Sprintf("unexpected character %q", r)}
}

func (l *lexer) number() (token, error) {
	start := l.pos
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.input) && l.input[l.pos] == '.' {
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	// The exponent is only consumed when digits follow, so "2e" leaves "e" for the parser.
	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		p := l.pos + 1
		if p < len(l.input) && (l.input[p] == '+' || l.input[p] == '-') {
			p++
		}
		if p < len(l.input) && isDigit(l.input[p]) {
			for p < len(l.input) && isDigit(l.input[p]) {
				p++
			}
			l.pos = p
		}
	}

	text := l.input[start:l.pos]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return token{}, &invalidf{pos: start, msg: fmt.Sprintf("number %q is out of range", text)}
		}
		return token{}, &invalidf{pos: start, msg: fmt.Sprintf("malformed number %q", text)}
	}
	return token{kind: tokNumber, text: text, pos: start, value: v}, nil
}

func isSpace(c byte) bool      { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) }
