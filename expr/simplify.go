package expr

import "math/big"

// Simplify returns the simplified form of the expression. Children are
// simplified first, then a fixed set of local rewrite rules is applied at
// each node: constant folding, identity elimination, normalization of
// negation, canonical operand order for products, and factoring of matching
// sub-expressions. The input is not modified.
//
// Simplify is idempotent: applying it to its own output is a no-op.
func (e *Expression) Simplify() *Expression {
	out := e.clone()
	// A rewrite can build a composite child after that child's position in
	// the tree was already visited, so one bottom-up pass is not enough.
	// Repeat until the tree stops changing.
	for {
		prev := out.clone()
		out.simplifyTree()
		if out.Equal(prev) {
			return out
		}
	}
}

func (e *Expression) simplifyTree() {
	// Substitution nodes keep their replacement as-is; it was simplified
	// when it was recorded.
	if e.op == OpSubstitution {
		return
	}
	if e.a != nil {
		e.a.simplifyTree()
	}
	if e.b != nil {
		e.b.simplifyTree()
	}
	e.simplifySelf()
}

var bigOne = big.NewInt(1)

// normalize2x holds the rules that are cheap enough to run both before and
// after every other rewrite.
func (e *Expression) normalize2x() {
	// Negation of a constant folds into the constant.
	if e.op == OpNeg {
		switch e.a.op {
		case OpInteger:
			*e = Expression{op: OpInteger, i: new(big.Int).Neg(e.a.i)}
		case OpRational:
			*e = Expression{op: OpRational, r: new(big.Rat).Neg(e.a.r), asFraction: e.a.asFraction}
		}
	}

	// Use the integer representation when possible.
	if e.op == OpRational && e.r.IsInt() {
		*e = Expression{op: OpInteger, i: new(big.Int).Set(e.r.Num())}
	}

	// Products put coefficients as the first operand.
	if e.op == OpProduct && !e.a.isCoefficient() && e.b.isCoefficient() {
		e.a, e.b = e.b, e.a
	}

	// Negation of a product with a coefficient folds into the coefficient.
	if e.op == OpNeg && e.a.op == OpProduct {
		p := e.a
		switch p.a.op {
		case OpInteger:
			*e = *Product(BigInteger(new(big.Int).Neg(p.a.i)), p.b)
		case OpRational:
			*e = *Product(Rational(new(big.Rat).Neg(p.a.r), p.a.asFraction), p.b)
		}
	}

	// Abs of a negation drops the negation.
	if e.op == OpAbs && e.a.op == OpNeg {
		e.a = e.a.a
	}
}

func (e *Expression) normalize() {
	e.normalize2x()

	// Product with a unit-numerator rational becomes a quotient.
	if e.op == OpProduct {
		if e.a.op == OpRational && e.a.r.Num().Cmp(bigOne) == 0 {
			*e = *Quotient(e.b, BigInteger(new(big.Int).Set(e.a.r.Denom())))
		} else if e.b.op == OpRational && e.b.r.Num().Cmp(bigOne) == 0 {
			*e = *Quotient(e.a, BigInteger(new(big.Int).Set(e.b.r.Denom())))
		}
	}

	// Sum with an operand of 0.
	if e.op == OpSum {
		if e.a.isInteger(0) {
			*e = *e.b
		} else if e.b.isInteger(0) {
			*e = *e.a
		}
	}
	// Sum with a negative first operand: converted to an outer negation or
	// a subtraction.
	if e.op == OpSum && e.a.op == OpNeg {
		if e.b.op == OpNeg {
			*e = *Neg(Sum(e.a.a, e.b.a))
		} else {
			*e = *Difference(e.b, e.a.a)
		}
	}

	// Difference with an operand of 0.
	if e.op == OpDifference {
		if e.a.isInteger(0) {
			*e = *Neg(e.b)
		} else if e.b.isInteger(0) {
			*e = *e.a
		}
	}
	// Difference with a negative first operand: the negation moves outwards.
	if e.op == OpDifference && e.a.op == OpNeg && e.b.op != OpNeg {
		*e = *Neg(Sum(e.a.a, e.b))
	}

	// Multiply with an operand of 0, 1 or -1. Multiplication with -1 is
	// transformed to a negation.
	if e.op == OpProduct {
		if e.a.op == OpInteger {
			switch {
			case e.a.isInteger(0):
				*e = *Integer(0)
			case e.a.isInteger(1):
				*e = *e.b
			case e.a.isInteger(-1):
				*e = *Neg(e.b)
			}
		} else if e.b.op == OpInteger {
			switch {
			case e.b.isInteger(0):
				*e = *Integer(0)
			case e.b.isInteger(1):
				*e = *e.a
			case e.b.isInteger(-1):
				*e = *Neg(e.a)
			}
		}
	}

	// Power with an exponent of 0, 1 or -1.
	if e.op == OpPower && e.b.op == OpInteger {
		switch {
		case e.b.isInteger(0):
			*e = *Integer(1)
		case e.b.isInteger(1):
			*e = *e.a
		case e.b.isInteger(-1):
			*e = *Quotient(Integer(1), e.a)
		}
	}

	// Divide with an operand of 0, 1 or -1.
	if e.op == OpQuotient {
		if e.a.isInteger(0) {
			*e = *Integer(0)
		} else if e.b.isInteger(1) {
			*e = *e.a
		} else if e.b.isInteger(-1) {
			*e = *Neg(e.a)
		}
	}

	// Sqrt of a square simplifies to abs(term).
	if e.op == OpSqrt && e.a.op == OpPower && e.a.b.isInteger(2) {
		*e = *Abs(e.a.a)
	}

	e.normalize2x()
}

func (e *Expression) simplifySelf() {
	e.normalize()

	switch e.op {
	case OpQuotient:
		switch {
		// Division of two integers is a rational, possibly folding into a
		// constant integer.
		case e.a.op == OpInteger && e.b.op == OpInteger:
			if e.b.i.Sign() == 0 {
				break // left for evaluation to report as a division by zero
			}
			if e.a.i.Cmp(e.b.i) == 0 {
				*e = *Integer(1)
			} else {
				r := new(big.Rat).SetFrac(e.a.i, e.b.i)
				if r.IsInt() {
					*e = Expression{op: OpInteger, i: r.Num()}
				} else {
					*e = Expression{op: OpRational, r: r, asFraction: true}
				}
			}
		// Constant folding: division of two rationals.
		case e.a.op == OpRational && e.b.op == OpRational:
			if e.b.r.Sign() == 0 {
				break
			}
			if e.a.r.Cmp(e.b.r) == 0 {
				*e = *Integer(1)
			} else {
				*e = Expression{op: OpRational, r: new(big.Rat).Quo(e.a.r, e.b.r), asFraction: e.a.asFraction}
			}
		// Constant folding: division of a rational by an integer.
		case e.a.op == OpRational && e.b.op == OpInteger:
			if e.b.i.Sign() == 0 {
				break
			}
			*e = Expression{op: OpRational, r: new(big.Rat).Quo(e.a.r, new(big.Rat).SetInt(e.b.i)), asFraction: e.a.asFraction}
		// Constant folding: division of an integer by a rational.
		case e.a.op == OpInteger && e.b.op == OpRational:
			if e.b.r.Sign() == 0 {
				break
			}
			*e = Expression{op: OpRational, r: new(big.Rat).Quo(new(big.Rat).SetInt(e.a.i), e.b.r), asFraction: e.b.asFraction}
		// Division of two identical terms is a 1.
		case e.a.Equal(e.b):
			*e = *Integer(1)
		}

	case OpSum:
		switch {
		case e.a.op == OpInteger && e.b.op == OpInteger:
			*e = Expression{op: OpInteger, i: new(big.Int).Add(e.a.i, e.b.i)}
		case e.a.op == OpRational && e.b.op == OpRational:
			*e = Expression{op: OpRational, r: new(big.Rat).Add(e.a.r, e.b.r), asFraction: e.a.asFraction}
		case e.a.op == OpRational && e.b.op == OpInteger:
			*e = Expression{op: OpRational, r: new(big.Rat).Add(e.a.r, new(big.Rat).SetInt(e.b.i)), asFraction: e.a.asFraction}
		case e.a.op == OpInteger && e.b.op == OpRational:
			*e = Expression{op: OpRational, r: new(big.Rat).Add(e.b.r, new(big.Rat).SetInt(e.a.i)), asFraction: e.b.asFraction}
		// ax + bx = (a+b)x
		case e.a.op == OpProduct && e.b.op == OpProduct &&
			e.a.a.op == OpInteger && e.b.a.op == OpInteger && e.a.b.Equal(e.b.b):
			*e = *Product(BigInteger(new(big.Int).Add(e.a.a.i, e.b.a.i)), e.a.b)
		// Sum of two identical terms is 2*term.
		case e.a.Equal(e.b):
			*e = *Product(Integer(2), e.a)
		}

	case OpDifference:
		switch {
		case e.a.op == OpInteger && e.b.op == OpInteger:
			*e = Expression{op: OpInteger, i: new(big.Int).Sub(e.a.i, e.b.i)}
		case e.a.op == OpRational && e.b.op == OpRational:
			*e = Expression{op: OpRational, r: new(big.Rat).Sub(e.a.r, e.b.r), asFraction: e.a.asFraction}
		case e.a.op == OpRational && e.b.op == OpInteger:
			*e = Expression{op: OpRational, r: new(big.Rat).Sub(e.a.r, new(big.Rat).SetInt(e.b.i)), asFraction: e.a.asFraction}
		case e.a.op == OpInteger && e.b.op == OpRational:
			*e = Expression{op: OpRational, r: new(big.Rat).Sub(new(big.Rat).SetInt(e.a.i), e.b.r), asFraction: e.b.asFraction}
		// ax - bx = (a-b)x
		case e.a.op == OpProduct && e.b.op == OpProduct &&
			e.a.a.op == OpInteger && e.b.a.op == OpInteger && e.a.b.Equal(e.b.b):
			*e = *Product(BigInteger(new(big.Int).Sub(e.a.a.i, e.b.a.i)), e.a.b)
		// Difference of two identical terms is zero.
		case e.a.Equal(e.b):
			*e = *Integer(0)
		// a - -a = 2a
		case e.b.op == OpNeg && e.b.a.Equal(e.a):
			*e = *Product(Integer(2), e.a)
		}

	case OpProduct:
		switch {
		case e.a.op == OpInteger && e.b.op == OpInteger:
			*e = Expression{op: OpInteger, i: new(big.Int).Mul(e.a.i, e.b.i)}
		case e.a.op == OpRational && e.b.op == OpRational:
			*e = Expression{op: OpRational, r: new(big.Rat).Mul(e.a.r, e.b.r), asFraction: e.a.asFraction}
		case e.a.op == OpRational && e.b.op == OpInteger:
			*e = Expression{op: OpRational, r: new(big.Rat).Mul(e.a.r, new(big.Rat).SetInt(e.b.i)), asFraction: e.a.asFraction}
		case e.a.op == OpInteger && e.b.op == OpRational:
			*e = Expression{op: OpRational, r: new(big.Rat).Mul(e.b.r, new(big.Rat).SetInt(e.a.i)), asFraction: e.b.asFraction}
		// a * (bx) = (ab)x
		case e.a.op == OpInteger && e.b.op == OpProduct && e.b.a.op == OpInteger:
			*e = *Product(BigInteger(new(big.Int).Mul(e.a.i, e.b.a.i)), e.b.b)
		// Multiplication of identical terms is pow(term, 2).
		case e.a.Equal(e.b):
			*e = *Power(e.a, Integer(2))
		}

	case OpSqrt:
		// Constant folding of perfect squares.
		if e.a.op == OpInteger && e.a.i.Sign() >= 0 {
			root := new(big.Int).Sqrt(e.a.i)
			if new(big.Int).Mul(root, root).Cmp(e.a.i) == 0 {
				*e = Expression{op: OpInteger, i: root}
			}
		}

	case OpPower:
		// Constant folding for common small powers.
		if e.b.op == OpInteger && e.b.i.IsInt64() {
			if n := e.b.i.Int64(); n >= 2 && n <= 4 {
				switch e.a.op {
				case OpInteger:
					out := new(big.Int).Set(e.a.i)
					for k := int64(1); k < n; k++ {
						out.Mul(out, e.a.i)
					}
					*e = Expression{op: OpInteger, i: out}
				case OpRational:
					out := new(big.Rat).Set(e.a.r)
					for k := int64(1); k < n; k++ {
						out.Mul(out, e.a.r)
					}
					*e = Expression{op: OpRational, r: out, asFraction: e.a.asFraction}
				}
			}
		}
	}

	e.normalize()
}
