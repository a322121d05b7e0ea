package expr

import "math/big"

func sub1(i *big.Int) *big.Int {
	return new(big.Int).Sub(i, bigOne)
}

// DerivativeWrt returns the simplified partial derivative of the expression
// with respect to v. Expressions without v differentiate to zero.
//
// Power is only differentiable for integer exponents on a plain variable
// and for squares of arbitrary bases; anything else returns
// ErrNotImplemented, as do abs, substitutions and equations.
func (e *Expression) DerivativeWrt(v Variable) (*Expression, error) {
	d, err := e.dWrt(v)
	if err != nil {
		return nil, err
	}
	return d.Simplify(), nil
}

func (e *Expression) dWrt(v Variable) (*Expression, error) {
	switch e.op {
	case OpVariable:
		if e.v == v {
			return Integer(1), nil
		}
		return Integer(0), nil

	case OpInteger, OpRational:
		return Integer(0), nil

	case OpNeg:
		da, err := e.a.dWrt(v)
		if err != nil {
			return nil, err
		}
		return Neg(da), nil

	case OpSum, OpDifference:
		da, err := e.a.dWrt(v)
		if err != nil {
			return nil, err
		}
		db, err := e.b.dWrt(v)
		if err != nil {
			return nil, err
		}
		if e.op == OpSum {
			return Sum(da, db), nil
		}
		return Difference(da, db), nil

	case OpProduct:
		da, err := e.a.dWrt(v)
		if err != nil {
			return nil, err
		}
		db, err := e.b.dWrt(v)
		if err != nil {
			return nil, err
		}
		return Sum(Product(e.a.clone(), db), Product(e.b.clone(), da)), nil

	case OpQuotient:
		da, err := e.a.dWrt(v)
		if err != nil {
			return nil, err
		}
		db, err := e.b.dWrt(v)
		if err != nil {
			return nil, err
		}
		return Quotient(
			Difference(Product(da, e.b.clone()), Product(db, e.a.clone())),
			Power(e.b.clone(), Integer(2)),
		), nil

	case OpPower:
		if e.b.op == OpInteger {
			if e.a.op == OpVariable {
				if e.a.v != v {
					return Integer(0), nil
				}
				return Product(
					BigInteger(e.b.i),
					Power(e.a.clone(), BigInteger(sub1(e.b.i))),
				), nil
			}
			if e.b.isInteger(2) {
				da, err := e.a.dWrt(v)
				if err != nil {
					return nil, err
				}
				return Product(Integer(2), Product(e.a.clone(), da)), nil
			}
		}
		return nil, ErrNotImplemented

	case OpSqrt:
		da, err := e.a.dWrt(v)
		if err != nil {
			return nil, err
		}
		return Quotient(da, Product(Integer(2), e.clone())), nil

	default:
		return nil, ErrNotImplemented
	}
}
