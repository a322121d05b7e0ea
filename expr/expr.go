// Package expr implements immutable algebraic expression trees with
// exact-when-possible arithmetic, a simplifier, symbolic differentiation,
// and equation rearrangement.
//
// Expressions are built with the constructor functions (Var, Integer, Sum,
// ...) and never mutated afterwards; transforms such as Simplify return a
// new tree.
package expr

import (
	"math/big"
)

// Variable names an algebraic unknown. Names are short (12 characters or
// fewer by convention, see the terms package) and of the form
// "<letter><integer>" when produced by the term allocator.
type Variable string

// Op identifies the operator at a node of an expression tree.
type Op uint8

const (
	OpVariable Op = iota
	OpSubstitution
	OpInteger
	OpRational
	OpEqual
	OpNeg
	OpAbs
	OpSqrt
	OpSum
	OpDifference
	OpProduct
	OpQuotient
	OpPower
)

// Expression is a node in an immutable algebraic expression tree.
//
// The zero value is not a valid expression; use the constructors.
type Expression struct {
	op   Op
	a, b *Expression

	v Variable // OpVariable, OpSubstitution
	i *big.Int // OpInteger
	r *big.Rat // OpRational

	// asFraction is set on rationals that print as "n/d" rather than in
	// decimal notation.
	asFraction bool
	// plusMinus marks a square root where both algebraic roots are
	// admissible, i.e. the equation it came from was squared at some point.
	plusMinus bool
	// subHash caches the content hash of a substitution's replacement.
	subHash Hash
}

// Var returns a variable reference.
func Var(v Variable) *Expression {
	return &Expression{op: OpVariable, v: v}
}

// Integer returns an integer constant.
func Integer(i int64) *Expression {
	return &Expression{op: OpInteger, i: big.NewInt(i)}
}

// BigInteger returns an integer constant from an arbitrary-precision value.
// The value is not copied; callers must not mutate it afterwards.
func BigInteger(i *big.Int) *Expression {
	return &Expression{op: OpInteger, i: i}
}

// Rational returns an exact rational constant. asFraction selects "n/d"
// formatting over decimal notation.
func Rational(r *big.Rat, asFraction bool) *Expression {
	return &Expression{op: OpRational, r: r, asFraction: asFraction}
}

// Ratio returns the exact rational constant num/denom.
func Ratio(num, denom int64) *Expression {
	return &Expression{op: OpRational, r: big.NewRat(num, denom), asFraction: true}
}

// Equal returns the equation a = b. Equations are only valid at the root of
// a tree.
func Equal(a, b *Expression) *Expression {
	return &Expression{op: OpEqual, a: a, b: b}
}

// Neg returns -a.
func Neg(a *Expression) *Expression {
	return &Expression{op: OpNeg, a: a}
}

// Abs returns abs(a).
func Abs(a *Expression) *Expression {
	return &Expression{op: OpAbs, a: a}
}

// Sqrt returns the square root of a. plusMinus admits both roots; such an
// expression has two numeric solutions per solution of a.
func Sqrt(a *Expression, plusMinus bool) *Expression {
	return &Expression{op: OpSqrt, a: a, plusMinus: plusMinus}
}

// Sum returns a + b.
func Sum(a, b *Expression) *Expression {
	return &Expression{op: OpSum, a: a, b: b}
}

// Difference returns a - b.
func Difference(a, b *Expression) *Expression {
	return &Expression{op: OpDifference, a: a, b: b}
}

// Product returns a * b.
func Product(a, b *Expression) *Expression {
	return &Expression{op: OpProduct, a: a, b: b}
}

// Quotient returns a / b.
func Quotient(a, b *Expression) *Expression {
	return &Expression{op: OpQuotient, a: a, b: b}
}

// Power returns a ^ b.
func Power(a, b *Expression) *Expression {
	return &Expression{op: OpPower, a: a, b: b}
}

// Substitution returns a node standing in for variable v, carrying the
// expression that was substituted for it. Evaluation prefers a concrete
// value for v if the resolver has one, and falls back to the replacement.
func Substitution(v Variable, replacement *Expression) *Expression {
	return &Expression{op: OpSubstitution, v: v, a: replacement, subHash: replacement.Hash()}
}

// Op returns the operator at the root of the expression.
func (e *Expression) Op() Op { return e.op }

// Operands returns the child nodes of the expression; either may be nil.
func (e *Expression) Operands() (a, b *Expression) { return e.a, e.b }

// Variable returns the variable named by a OpVariable or OpSubstitution node.
func (e *Expression) Variable() Variable { return e.v }

// Walk visits the expression tree in pre-order. Returning false from cb
// stops descent into the current node's children.
func (e *Expression) Walk(cb func(*Expression) bool) {
	if !cb(e) {
		return
	}
	if e.a != nil {
		e.a.Walk(cb)
	}
	if e.b != nil {
		e.b.Walk(cb)
	}
}

// clone returns a deep copy that is safe to mutate in place.
func (e *Expression) clone() *Expression {
	out := *e
	if e.a != nil {
		out.a = e.a.clone()
	}
	if e.b != nil {
		out.b = e.b.clone()
	}
	if e.i != nil {
		out.i = new(big.Int).Set(e.i)
	}
	if e.r != nil {
		out.r = new(big.Rat).Set(e.r)
	}
	return &out
}

// Equal reports structural equality. Constants compare by value, so
// Integer(2) equals BigInteger(big.NewInt(2)), but an integer never equals
// a rational: callers compare simplified forms, where integral rationals
// have been normalized to integers.
func (e *Expression) Equal(other *Expression) bool {
	if e == nil || other == nil {
		return e == other
	}
	if e.op != other.op {
		return false
	}
	switch e.op {
	case OpVariable:
		return e.v == other.v
	case OpSubstitution:
		return e.v == other.v && e.subHash == other.subHash && e.a.Equal(other.a)
	case OpInteger:
		return e.i.Cmp(other.i) == 0
	case OpRational:
		return e.asFraction == other.asFraction && e.r.Cmp(other.r) == 0
	case OpSqrt:
		return e.plusMinus == other.plusMinus && e.a.Equal(other.a)
	case OpNeg, OpAbs:
		return e.a.Equal(other.a)
	default:
		return e.a.Equal(other.a) && e.b.Equal(other.b)
	}
}

// NumSolutions returns the number of distinct numeric solutions the
// expression admits. Every plus-minus square root doubles the count.
// Evaluation indexes into these solutions; index 0 is the canonical one
// where every square root takes its positive branch.
func (e *Expression) NumSolutions() int {
	switch e.op {
	case OpSum, OpDifference, OpProduct, OpQuotient, OpPower:
		return e.a.NumSolutions() * e.b.NumSolutions()
	case OpNeg, OpAbs, OpSubstitution:
		return e.a.NumSolutions()
	case OpSqrt:
		if e.plusMinus {
			return 2 * e.a.NumSolutions()
		}
		return e.a.NumSolutions()
	case OpInteger, OpRational, OpVariable:
		return 1
	default: // OpEqual
		panic("NumSolutions called on an equation")
	}
}

// SubstituteVariable returns a tree where every reference to v has been
// replaced by a substitution node carrying replacement.
func (e *Expression) SubstituteVariable(v Variable, replacement *Expression) *Expression {
	out := e.clone()
	out.substituteVariable(v, replacement)
	return out
}

func (e *Expression) substituteVariable(v Variable, replacement *Expression) {
	if e.op == OpVariable && e.v == v {
		*e = *Substitution(v, replacement)
		return
	}
	if e.a != nil {
		e.a.substituteVariable(v, replacement)
	}
	if e.b != nil {
		e.b.substituteVariable(v, replacement)
	}
}

// Variables returns the distinct variables referenced by the expression,
// mapped to their reference counts. Substitution nodes do not count as
// references of their variable.
func (e *Expression) Variables() map[Variable]int {
	out := make(map[Variable]int, 8)
	e.Walk(func(n *Expression) bool {
		if n.op == OpVariable {
			out[n.v]++
		}
		return true
	})
	return out
}

// IsInteger reports whether the expression is the integer constant i.
func (e *Expression) IsInteger(i int64) bool {
	return e.isInteger(i)
}

func (e *Expression) isCoefficient() bool {
	return e.op == OpInteger || e.op == OpRational
}

func (e *Expression) isInteger(i int64) bool {
	return e.op == OpInteger && e.i.IsInt64() && e.i.Int64() == i
}
