package solver

import (
	"sort"

	"github.com/sketchsolve/sketchsolve/expr"
)

// expressionInfo caches the facts the solver needs about a candidate
// expression: its structural hash, its cost, and which variables it
// references. Candidates order by cost then hash.
type expressionInfo struct {
	hash expr.Hash
	expr *expr.Expression
	cost int

	references map[expr.Variable]int
}

func newExpressionInfo(e *expr.Expression) expressionInfo {
	cost := e.Cost() * e.NumSolutions()
	references := e.Variables()
	// Each distinct variable makes a candidate harder to use, regardless
	// of how often it appears.
	cost += 50 * len(references)

	return expressionInfo{
		hash:       e.Hash(),
		expr:       e,
		cost:       cost,
		references: references,
	}
}

func (ei expressionInfo) less(other expressionInfo) bool {
	if ei.cost != other.cost {
		return ei.cost < other.cost
	}
	return ei.hash < other.hash
}

// equivalentExpressions is the set of candidate expressions standing for a
// single variable, deduplicated by hash and kept sorted by increasing cost.
type equivalentExpressions struct {
	seen  map[expr.Hash]struct{}
	exprs []expressionInfo
}

func newEquivalentExpressions(e *expr.Expression) *equivalentExpressions {
	ei := newExpressionInfo(e)
	return &equivalentExpressions{
		seen:  map[expr.Hash]struct{}{ei.hash: {}},
		exprs: []expressionInfo{ei},
	}
}

func (ee *equivalentExpressions) push(e *expr.Expression) {
	ei := newExpressionInfo(e)
	if _, ok := ee.seen[ei.hash]; ok {
		return
	}
	ee.seen[ei.hash] = struct{}{}

	pos := sort.Search(len(ee.exprs), func(i int) bool {
		return ei.less(ee.exprs[i])
	})
	ee.exprs = append(ee.exprs, expressionInfo{})
	copy(ee.exprs[pos+1:], ee.exprs[pos:])
	ee.exprs[pos] = ei
}

// solvePlan records how a variable is known: either as a concrete value or
// as an expression with known values substituted in.
type solvePlan struct {
	concrete    expr.Concrete
	substituted *expressionInfo
}

func (p solvePlan) isConcrete() bool { return p.concrete != nil }

// State carries the working set of a substitution solve: the values already
// known and the candidate expressions for each variable. A State is built
// once per solve with NewState and consumed by SubSolver.
type State struct {
	doneSubstitution bool

	// finite values provided or solved for
	resolved map[expr.Variable]solvePlan
	// candidate expressions per variable, ordered by increasing cost
	varsByEq map[expr.Variable]*equivalentExpressions
}

// NewState indexes the given equations for solving, starting from the given
// known values. Equations of the form "v = expr" index expr under v;
// "0 = expr" equations are rearranged for the first variable that can be
// isolated. Any other shape is ignored.
func NewState(values map[expr.Variable]expr.Concrete, eqs []*expr.Expression) (*State, error) {
	st := &State{
		resolved: make(map[expr.Variable]solvePlan, max(len(values), 16)),
		varsByEq: make(map[expr.Variable]*equivalentExpressions, len(eqs)),
	}

	for _, eq := range eqs {
		if eq.Op() != expr.OpEqual {
			continue
		}
		lhs, rhs := eq.Operands()

		var v expr.Variable
		var candidate *expr.Expression

		switch {
		case lhs.Op() == expr.OpVariable:
			v, candidate = lhs.Variable(), rhs

		case lhs.IsInteger(0):
			// Rearrange for the first variable that can be isolated.
			eq.Walk(func(n *expr.Expression) bool {
				if candidate != nil {
					return false
				}
				if n.Op() == expr.OpVariable {
					rearranged, err := eq.MakeSubject(expr.Var(n.Variable()))
					if err == nil {
						_, sub := rearranged.Operands()
						v, candidate = n.Variable(), sub
					}
				}
				return true
			})
		}

		if candidate == nil {
			continue
		}
		if ee, ok := st.varsByEq[v]; ok {
			ee.push(candidate)
		} else {
			st.varsByEq[v] = newEquivalentExpressions(candidate)
		}
	}

	for v, c := range values {
		st.resolved[v] = solvePlan{concrete: c}
	}

	return st, nil
}

// ResolveVariable implements expr.Resolver over the concrete values solved
// so far. Variables known only through a substitution report as unknown so
// evaluation falls back to the substituted form.
func (st *State) ResolveVariable(v expr.Variable) (expr.Concrete, error) {
	p, ok := st.resolved[v]
	if !ok || !p.isConcrete() {
		return nil, expr.UnknownVarError{Var: v}
	}
	return p.concrete, nil
}
