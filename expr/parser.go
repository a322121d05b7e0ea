package expr

import (
	"fmt"
	"math/big"
)

// Parse reads an expression or equation from its textual form. The grammar,
// loosest-binding first: "=", "+ -", "* /", "^", unary "-", then atoms.
// Atoms are decimal numbers (parsed exactly, "0.2" is the rational 1/5),
// integers, integer-coefficient variables ("2x"), the functions sqrt,
// sqrt_pm and abs, parenthesized expressions, and variables.
//
// With simplify set the result is simplified before being returned.
func Parse(s string, simplify bool) (*Expression, error) {
	p := &parser{s: s}
	e, err := p.parseEquation()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.s) {
		return nil, fmt.Errorf("offset %d: unexpected %q", p.pos, p.rest())
	}
	if simplify {
		e = e.Simplify()
	}
	return e, nil
}

// MustParse is Parse for expressions known to be valid, typically literals
// in tests. It panics on error.
func MustParse(s string) *Expression {
	e, err := Parse(s, true)
	if err != nil {
		panic(err)
	}
	return e
}

type parser struct {
	s   string
	pos int
}

func (p *parser) rest() string {
	r := p.s[p.pos:]
	if len(r) > 12 {
		r = r[:12]
	}
	return r
}

func (p *parser) skipSpace() {
	for p.pos < len(p.s) && (p.s[p.pos] == ' ' || p.s[p.pos] == '\t' || p.s[p.pos] == '\n' || p.s[p.pos] == '\r') {
		p.pos++
	}
}

func (p *parser) eat(c byte) bool {
	p.skipSpace()
	if p.pos < len(p.s) && p.s[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) parseEquation() (*Expression, error) {
	lhs, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	for p.eat('=') {
		rhs, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		lhs = Equal(lhs, rhs)
	}
	return lhs, nil
}

func (p *parser) parseSum() (*Expression, error) {
	lhs, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.eat('+'):
			rhs, err := p.parseProduct()
			if err != nil {
				return nil, err
			}
			lhs = Sum(lhs, rhs)
		case p.eat('-'):
			rhs, err := p.parseProduct()
			if err != nil {
				return nil, err
			}
			lhs = Difference(lhs, rhs)
		default:
			return lhs, nil
		}
	}
}

func (p *parser) parseProduct() (*Expression, error) {
	lhs, err := p.parsePower()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.eat('*'):
			rhs, err := p.parsePower()
			if err != nil {
				return nil, err
			}
			lhs = Product(lhs, rhs)
		case p.eat('/'):
			rhs, err := p.parsePower()
			if err != nil {
				return nil, err
			}
			lhs = Quotient(lhs, rhs)
		default:
			return lhs, nil
		}
	}
}

func (p *parser) parsePower() (*Expression, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.eat('^') {
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		lhs = Power(lhs, rhs)
	}
	return lhs, nil
}

func (p *parser) parseUnary() (*Expression, error) {
	if p.eat('-') {
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Neg(e), nil
	}
	return p.parseAtom()
}

func (p *parser) parseAtom() (*Expression, error) {
	p.skipSpace()
	if p.pos >= len(p.s) {
		return nil, fmt.Errorf("offset %d: unexpected end of input", p.pos)
	}

	switch c := p.s[p.pos]; {
	case c >= '0' && c <= '9':
		return p.parseNumber()
	case c == '(':
		p.pos++
		e, err := p.parseEquation()
		if err != nil {
			return nil, err
		}
		if !p.eat(')') {
			return nil, fmt.Errorf("offset %d: expected ')'", p.pos)
		}
		return e, nil
	case isIdentStart(c):
		return p.parseIdent()
	default:
		return nil, fmt.Errorf("offset %d: unexpected %q", p.pos, p.rest())
	}
}

func (p *parser) parseNumber() (*Expression, error) {
	intPart := p.digits()

	// A fractional part makes this an exact rational: the digits over the
	// matching power of ten.
	if p.pos < len(p.s) && p.s[p.pos] == '.' {
		p.pos++
		fracPart := p.digits()
		if fracPart == "" {
			return nil, fmt.Errorf("offset %d: expected digits after '.'", p.pos)
		}
		num := new(big.Rat)
		num.SetInt(mustInt(intPart))
		denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(len(fracPart))), nil)
		frac := new(big.Rat).SetFrac(mustInt(fracPart), denom)
		return Rational(num.Add(num, frac), false), nil
	}

	// An identifier directly after the digits is a coefficient form: "2x"
	// is 2 * x.
	if p.pos < len(p.s) && isIdentStart(p.s[p.pos]) {
		v := p.identifier()
		return Product(BigInteger(mustInt(intPart)), Var(Variable(v))), nil
	}

	return BigInteger(mustInt(intPart)), nil
}

func (p *parser) parseIdent() (*Expression, error) {
	name := p.identifier()

	// Function call forms. A name that is not followed by an opening
	// parenthesis is an ordinary variable, even if it spells a function.
	if p.pos < len(p.s) && p.s[p.pos] == '(' {
		switch name {
		case "sqrt", "sqrt_pm", "abs":
			p.pos++
			arg, err := p.parseEquation()
			if err != nil {
				return nil, err
			}
			if !p.eat(')') {
				return nil, fmt.Errorf("offset %d: expected ')'", p.pos)
			}
			switch name {
			case "sqrt":
				return Sqrt(arg, false), nil
			case "sqrt_pm":
				return Sqrt(arg, true), nil
			default:
				return Abs(arg), nil
			}
		}
	}

	return Var(Variable(name)), nil
}

func (p *parser) digits() string {
	start := p.pos
	for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
		p.pos++
	}
	return p.s[start:p.pos]
}

func (p *parser) identifier() string {
	start := p.pos
	for p.pos < len(p.s) && isIdentPart(p.s[p.pos]) {
		p.pos++
	}
	return p.s[start:p.pos]
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func mustInt(digits string) *big.Int {
	i, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return new(big.Int)
	}
	return i
}
