package expr

// reverseOp is one operation to apply to the opposite side of an equation
// while isolating a term.
type reverseOp struct {
	kind reverseKind
	exp  *Expression
}

type reverseKind uint8

const (
	revMultiply reverseKind = iota
	revDivide
	revAdd
	revSub
	revDivideUnder
	revPower
	revSqrt
)

// MakeSubject rearranges the equation so that target is alone on the
// left-hand side, returning the new equation. target is typically a
// variable, but any sub-expression works as long as it occurs in exactly
// one operand at every level on its side of the equation.
//
// Returns ErrCannotSolve when the target cannot be isolated and
// ErrNotImplemented when the equation contains an operator rearrangement
// does not handle (abs, substitutions).
func (e *Expression) MakeSubject(target *Expression) (*Expression, error) {
	if e.op != OpEqual {
		return nil, ErrCannotSolve
	}
	lhs, rhs := e.a, e.b

	if rhs.Equal(target) {
		return Equal(target.clone(), lhs.clone()), nil
	}

	ops, err := rhs.raiseFor(target)
	if err != nil {
		return nil, err
	}
	if ops != nil {
		return Equal(target.clone(), apply(lhs.clone(), ops).Simplify()), nil
	}

	ops, err = lhs.raiseFor(target)
	if err != nil {
		return nil, err
	}
	if ops != nil {
		return Equal(target.clone(), apply(rhs.clone(), ops).Simplify()), nil
	}

	return nil, ErrCannotSolve
}

// raiseFor computes the operations needed to isolate want within e. A nil
// slice with a nil error means want does not occur in e. The empty
// (non-nil) slice means e is want itself.
func (e *Expression) raiseFor(want *Expression) ([]reverseOp, error) {
	if e.Equal(want) {
		return []reverseOp{}, nil
	}

	// descend returns the ops for whichever operand contains want, plus
	// which one it was. Isolation fails if want occurs in both.
	descend := func() (ops []reverseOp, inB bool, err error) {
		ops, err = e.a.raiseFor(want)
		if err != nil || ops != nil {
			return ops, false, err
		}
		ops, err = e.b.raiseFor(want)
		return ops, true, err
	}

	switch e.op {
	case OpSum:
		ops, inB, err := descend()
		if err != nil || ops == nil {
			return nil, err
		}
		if inB {
			return append(ops, reverseOp{kind: revSub, exp: e.a}), nil
		}
		return append(ops, reverseOp{kind: revSub, exp: e.b}), nil

	case OpDifference:
		ops, inB, err := descend()
		if err != nil || ops == nil {
			return nil, err
		}
		if inB {
			// a - x = y ==> x = (y - a) * -1
			return append(ops,
				reverseOp{kind: revAdd, exp: e.a},
				reverseOp{kind: revMultiply, exp: Integer(-1)},
			), nil
		}
		return append(ops, reverseOp{kind: revAdd, exp: e.b}), nil

	case OpProduct:
		ops, inB, err := descend()
		if err != nil || ops == nil {
			return nil, err
		}
		if inB {
			return append(ops, reverseOp{kind: revDivide, exp: e.a}), nil
		}
		return append(ops, reverseOp{kind: revDivide, exp: e.b}), nil

	case OpQuotient:
		ops, inB, err := descend()
		if err != nil || ops == nil {
			return nil, err
		}
		if inB {
			// a / x = y ==> x = a / y
			return append(ops, reverseOp{kind: revDivideUnder, exp: e.a}), nil
		}
		return append(ops, reverseOp{kind: revMultiply, exp: e.b}), nil

	case OpPower:
		// Only squares can be undone; the square root reintroduces both
		// signs via the plus-minus flag.
		if !e.b.isInteger(2) {
			return nil, nil
		}
		ops, err := e.a.raiseFor(want)
		if err != nil || ops == nil {
			return nil, err
		}
		return append(ops, reverseOp{kind: revSqrt}), nil

	case OpNeg:
		ops, err := e.a.raiseFor(want)
		if err != nil || ops == nil {
			return nil, err
		}
		return append(ops, reverseOp{kind: revMultiply, exp: Integer(-1)}), nil

	case OpSqrt:
		ops, err := e.a.raiseFor(want)
		if err != nil || ops == nil {
			return nil, err
		}
		return append(ops, reverseOp{kind: revPower, exp: Integer(2)}), nil

	case OpInteger, OpRational, OpVariable:
		return nil, nil

	default:
		// Abs, substitutions and nested equations cannot be unwound.
		return nil, ErrNotImplemented
	}
}

// apply wraps e in the reverse operations, innermost-pushed last. Ops were
// recorded bottom-up while descending, so they are applied in reverse to
// undo the outermost operator first.
func apply(e *Expression, ops []reverseOp) *Expression {
	for i := len(ops) - 1; i >= 0; i-- {
		op := ops[i]
		switch op.kind {
		case revMultiply:
			e = Product(e, op.exp.clone())
		case revDivide:
			e = Quotient(e, op.exp.clone())
		case revDivideUnder:
			e = Quotient(op.exp.clone(), e)
		case revAdd:
			e = Sum(e, op.exp.clone())
		case revSub:
			e = Difference(e, op.exp.clone())
		case revPower:
			e = Power(e, op.exp.clone())
		case revSqrt:
			e = Sqrt(e, true)
		}
	}
	return e
}
