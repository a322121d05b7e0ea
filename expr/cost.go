package expr

// Cost estimates how expensive the expression is to work with, as a sum of
// per-node weights. Constants are cheap, roots and substitutions expensive.
// The substitution solver prefers low-cost candidates when several
// rearrangements yield the same variable.
func (e *Expression) Cost() int {
	cost := nodeCost(e.op)
	if e.a != nil {
		cost += e.a.Cost()
	}
	if e.b != nil {
		cost += e.b.Cost()
	}
	return cost
}

func nodeCost(op Op) int {
	switch op {
	case OpInteger, OpRational:
		return 1
	case OpSum, OpDifference, OpNeg:
		return 2
	case OpProduct:
		return 4
	case OpQuotient, OpVariable:
		return 5
	case OpPower, OpAbs:
		return 10
	case OpSqrt:
		return 12
	case OpSubstitution:
		return 35
	}
	return 0
}
