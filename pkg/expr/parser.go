package expr

import (
	"fmt"
)

// maxDepth bounds recursion on pathological inputs such as "((((...x))))".
const maxDepth = 256

type parser struct {
	lex      lexer
	tok      token
	variable string
	depth    int
}

func parse(input, variable string) (node, error) {
	p := &parser{lex: lexer{input: input}, variable: variable}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.kind == tokEOF {
		return nil, &invalidf{pos: -1, msg: "expression is empty"}
	}

	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.unexpected()
	}
	return root, nil
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) unexpected() error {
	if p.tok.kind == tokEOF {
		return &invalidf{pos: p.tok.pos, msg: "unexpected end of input"}
	}
	return &invalidf{pos: p.tok.pos, msg: fmt.Sprintf("unexpected %s", p.tok.describe())}
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > maxDepth {
		return &invalidf{pos: p.tok.pos, msg: "expression is nested too deeply"}
	}
	return nil
}

func (p *parser) leave() { p.depth-- }

func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokPlus || p.tok.kind == tokMinus {
		op := p.tok.kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokStar || p.tok.kind == tokSlash {
		op := p.tok.kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

// parseUnary binds looser than '**', so "-x**2" is "-(x**2)".
func (p *parser) parseUnary() (node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	switch p.tok.kind {
	case tokMinus:
		if err := p.advance(); err != nil {
			return nil, err
		}
		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &negNode{arg: arg}, nil
	case tokPlus:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *parser) parsePower() (node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokPow {
		return base, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	// Right associative: 2**3**2 is 2**(3**2). The exponent may carry its own sign.
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &binaryNode{op: tokPow, left: base, right: exp}, nil
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.tok
	switch tok.kind {
	case tokNumber:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &numberNode{value: tok.value}, p.rejectAdjacent()

	case tokIdent:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return p.resolve(tok)

	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return inner, p.rejectAdjacent()
	}
	return nil, p.unexpected()
}

func (p *parser) resolve(tok token) (node, error) {
	name := tok.text
	if name == p.variable {
		return &varNode{name: name}, p.rejectAdjacent()
	}
	if fn, ok := functions[name]; ok {
		if p.tok.kind != tokLParen {
			return nil, &invalidf{pos: tok.pos, msg: fmt.Sprintf("function %q must be called with parentheses", name)}
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return &callNode{fn: fn, arg: arg}, p.rejectAdjacent()
	}
	if v, ok := constants[name]; ok {
		return &constNode{name: name, value: v}, p.rejectAdjacent()
	}
	return nil, &invalidf{
		pos: tok.pos,
		msg: fmt.Sprintf("unknown identifier %q (only the variable %q, pi, E and whitelisted functions are allowed)", name, p.variable),
	}
}

func (p *parser) expect(kind tokenKind) error {
	if p.tok.kind != kind {
		if p.tok.kind == tokEOF {
			return &invalidf{pos: p.tok.pos, msg: fmt.Sprintf("missing %s", kind)}
		}
		return p.unexpected()
	}
	return p.advance()
}

// rejectAdjacent refuses implicit multiplication such as "2x" or "(x)(x)".
func (p *parser) rejectAdjacent() error {
	switch p.tok.kind {
	case tokNumber, tokIdent, tokLParen:
		return &invalidf{pos: p.tok.pos, msg: fmt.Sprintf("unexpected %s (use '*' for multiplication)", p.tok.describe())}
	}
	return nil
}
