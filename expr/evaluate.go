package expr

import (
	"math"
	"math/big"
)

// Evaluate computes the which'th numeric solution of the expression, with
// variables supplied by r. which must be in [0, NumSolutions()); index 0 is
// the canonical solution where every plus-minus square root takes its
// positive branch.
//
// Arithmetic is exact (big.Rat) as long as every operand is exact; any
// float operand promotes the result to a float. Division by an exact zero
// returns ErrDivByZero, and an unresolvable variable returns an
// UnknownVarError, which callers may treat as recoverable.
func (e *Expression) Evaluate(r Resolver, which int) (Concrete, error) {
	switch e.op {
	case OpVariable:
		return r.ResolveVariable(e.v)

	case OpSubstitution:
		// A concrete value for the substituted variable wins over the
		// recorded replacement.
		if c, err := r.ResolveVariable(e.v); err == nil {
			return c, nil
		}
		return e.a.Evaluate(r, which)

	case OpInteger:
		return Rat{new(big.Rat).SetInt(e.i)}, nil

	case OpRational:
		return Rat{new(big.Rat).Set(e.r)}, nil

	case OpNeg:
		c, err := e.a.Evaluate(r, which)
		if err != nil {
			return nil, err
		}
		switch v := c.(type) {
		case Rat:
			return Rat{new(big.Rat).Neg(v.Rat)}, nil
		case Float:
			return -v, nil
		}

	case OpAbs:
		c, err := e.a.Evaluate(r, which)
		if err != nil {
			return nil, err
		}
		switch v := c.(type) {
		case Rat:
			return Rat{new(big.Rat).Abs(v.Rat)}, nil
		case Float:
			return Float(math.Abs(float64(v))), nil
		}

	case OpSqrt:
		inner := which
		negate := false
		if e.plusMinus {
			negate = which%2 == 1
			inner = which / 2
		}
		c, err := e.a.Evaluate(r, inner)
		if err != nil {
			return nil, err
		}
		f := math.Sqrt(c.AsFloat())
		if negate {
			f = -f
		}
		return Float(f), nil

	case OpSum, OpDifference, OpProduct, OpQuotient, OpPower:
		aSol := e.a.NumSolutions()
		av, err := e.a.Evaluate(r, which%aSol)
		if err != nil {
			return nil, err
		}
		bv, err := e.b.Evaluate(r, which/aSol)
		if err != nil {
			return nil, err
		}
		switch e.op {
		case OpSum:
			return addConcrete(av, bv), nil
		case OpDifference:
			return subConcrete(av, bv), nil
		case OpProduct:
			return mulConcrete(av, bv), nil
		case OpQuotient:
			return divConcrete(av, bv)
		default:
			return powConcrete(av, bv)
		}
	}

	// OpEqual: an equation has no value of its own.
	return nil, ErrNotImplemented
}

func addConcrete(a, b Concrete) Concrete {
	ar, aok := a.(Rat)
	br, bok := b.(Rat)
	if aok && bok {
		return Rat{new(big.Rat).Add(ar.Rat, br.Rat)}
	}
	return Float(a.AsFloat() + b.AsFloat())
}

func subConcrete(a, b Concrete) Concrete {
	ar, aok := a.(Rat)
	br, bok := b.(Rat)
	if aok && bok {
		return Rat{new(big.Rat).Sub(ar.Rat, br.Rat)}
	}
	return Float(a.AsFloat() - b.AsFloat())
}

func mulConcrete(a, b Concrete) Concrete {
	ar, aok := a.(Rat)
	br, bok := b.(Rat)
	if aok && bok {
		return Rat{new(big.Rat).Mul(ar.Rat, br.Rat)}
	}
	return Float(a.AsFloat() * b.AsFloat())
}

func divConcrete(a, b Concrete) (Concrete, error) {
	ar, aok := a.(Rat)
	br, bok := b.(Rat)
	if aok && bok {
		if br.Sign() == 0 {
			return nil, ErrDivByZero
		}
		return Rat{new(big.Rat).Quo(ar.Rat, br.Rat)}, nil
	}
	bf := b.AsFloat()
	if bf == 0 {
		return nil, ErrDivByZero
	}
	return Float(a.AsFloat() / bf), nil
}

func powConcrete(a, b Concrete) (Concrete, error) {
	ar, aok := a.(Rat)
	br, bok := b.(Rat)
	if aok && bok {
		if !br.IsInt() || !br.Num().IsInt64() {
			return nil, PowUnableError{Exponent: new(big.Rat).Set(br.Rat)}
		}
		n := br.Num().Int64()
		neg := n < 0
		if neg {
			n = -n
		}
		out := big.NewRat(1, 1)
		for k := int64(0); k < n; k++ {
			out.Mul(out, ar.Rat)
		}
		if neg {
			if out.Sign() == 0 {
				return nil, ErrDivByZero
			}
			out.Inv(out)
		}
		return Rat{out}, nil
	}
	return Float(math.Pow(a.AsFloat(), b.AsFloat())), nil
}
