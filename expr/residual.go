package expr

// AsResidual converts an equation into a residual expression, one that is
// zero exactly when the equation holds. "0 = expr" yields expr itself.
// "v = expr" yields v - expr, with one special case: when the right-hand
// side is a quotient plus a tail, the division is multiplied out so the
// numeric solvers do not have to step around a pole.
func (e *Expression) AsResidual() (*Expression, error) {
	if e.op != OpEqual {
		return nil, ErrCannotSolve
	}
	lhs, rhs := e.a, e.b

	if lhs.isInteger(0) {
		return rhs.clone(), nil
	}

	if lhs.op == OpVariable {
		// v = n/d + t  ==>  (v - t) * d - n
		if rhs.op == OpSum && rhs.a.op == OpQuotient {
			num, denom := rhs.a.a, rhs.a.b
			return Difference(
				Product(Difference(lhs.clone(), rhs.b.clone()), denom.clone()),
				num.clone(),
			), nil
		}
		return Difference(lhs.clone(), rhs.clone()), nil
	}

	return nil, ErrCannotSolve
}
