// Package solver implements the substitution pass of a constraint solve.
//
// Starting from known values and a set of equations, SubSolver repeatedly
// substitutes what it knows into the cheapest candidate expression for each
// remaining variable, rearranging equations when no candidate is directly
// usable. Variables it cannot pin down are handed to the numeric solvers as
// residual expressions.
package solver

import (
	"math"
	"math/big"
	"sort"
	"strconv"

	"github.com/sketchsolve/sketchsolve/expr"
	"github.com/sketchsolve/sketchsolve/logger"
)

// SubSolver is an iterative substitution solver. The zero value is ready to
// use; all working state lives in the State.
type SubSolver struct{}

// solveUsingKnown tries to resolve v through the candidate info by
// substituting already-known values. Fails with ErrCannotSolve when a
// referenced variable is not known at all.
func (s *SubSolver) solveUsingKnown(st *State, v expr.Variable, info expressionInfo) (solvePlan, error) {
	out := info
	for _, dep := range sortedVarKeys(info.references) {
		p, ok := st.resolved[dep]
		if !ok {
			return solvePlan{}, expr.ErrCannotSolve
		}
		if p.substituted != nil {
			out.expr = out.expr.SubstituteVariable(dep, p.substituted.expr)
		}
	}

	if _, ok := st.resolved[v]; !ok {
		// If the expression has a single solution we can store the numeric
		// result rather than the substituted equation.
		if out.expr.NumSolutions() == 1 {
			if c, err := out.expr.Evaluate(st, 0); err == nil && usableConcrete(c) {
				st.resolved[v] = solvePlan{concrete: c}
				return solvePlan{concrete: c}, nil
			}
		}
		st.resolved[v] = solvePlan{substituted: &out}
	}

	return solvePlan{substituted: &out}, nil
}

// rearrangeCandidate hunts for an equation that can be rearranged to
// isolate v, such that every other variable it references is known.
func (s *SubSolver) rearrangeCandidate(st *State, v expr.Variable) (expressionInfo, error) {
	for _, lhsVar := range sortedEqKeys(st.varsByEq) {
		// Without a value for the equation's own variable there is no
		// point rearranging it.
		if _, ok := st.resolved[lhsVar]; !ok {
			continue
		}

	exprLoop:
		for _, info := range st.varsByEq[lhsVar].exprs {
			if _, ok := info.references[v]; !ok {
				continue
			}
			for dep := range info.references {
				if dep == v {
					continue
				}
				if _, ok := st.resolved[dep]; !ok {
					continue exprLoop
				}
			}

			eq := expr.Equal(expr.Var(lhsVar), info.expr)
			rearranged, err := eq.MakeSubject(expr.Var(v))
			if err != nil {
				continue
			}
			_, rhs := rearranged.Operands()
			return newExpressionInfo(rhs), nil
		}
	}

	return expressionInfo{}, expr.ErrCannotSolve
}

// allVars returns every variable the solve knows about, sorted.
func (s *SubSolver) allVars(st *State) []expr.Variable {
	seen := make(map[expr.Variable]struct{}, len(st.varsByEq)+len(st.resolved))
	var vars []expr.Variable
	add := func(v expr.Variable) {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			vars = append(vars, v)
		}
	}

	for v, ee := range st.varsByEq {
		add(v)
		for _, ei := range ee.exprs {
			ei.expr.Walk(func(n *expr.Expression) bool {
				if n.Op() == expr.OpVariable {
					add(n.Variable())
				}
				return true
			})
		}
	}
	for v := range st.resolved {
		add(v)
	}

	sortVarsByBase(vars)
	return vars
}

// sortVarsByBase orders variables of the form "<letter><integer>" by their
// integer suffix first, falling back to lexical order.
func sortVarsByBase(vars []expr.Variable) {
	sort.Slice(vars, func(i, j int) bool {
		a, b := vars[i], vars[j]
		if len(a) > 1 && len(b) > 1 {
			ai, aerr := strconv.Atoi(string(a[1:]))
			bi, berr := strconv.Atoi(string(b[1:]))
			if aerr == nil && berr == nil && ai != bi {
				return ai < bi
			}
		}
		return a < b
	})
}

// trySolve runs substitution rounds to a fixed point, then marks the state
// done so later calls are cheap. Returns all known variables.
func (s *SubSolver) trySolve(st *State) []expr.Variable {
	vars := s.allVars(st)
	if st.doneSubstitution {
		return vars
	}
	log := logger.Logger().With().Str("component", "subsolver").Logger()

outer:
	for range vars {
		// Find the next variable which is simplest to solve.
		for _, v := range vars {
			if _, ok := st.resolved[v]; ok {
				continue
			}
			ee, ok := st.varsByEq[v]
			if !ok {
				continue
			}
			for _, info := range ee.exprs {
				if _, err := s.solveUsingKnown(st, v, info); err == nil {
					log.Debug().Stringer("expr", info.expr).Msg("solved by substitution")
					continue outer
				}
			}
		}
		// No simple substitution this round. Try rearranging equations
		// that reference the remaining variables.
		for _, v := range vars {
			if _, ok := st.resolved[v]; ok {
				continue
			}
			ei, err := s.rearrangeCandidate(st, v)
			if err != nil {
				continue
			}
			if _, err := s.solveUsingKnown(st, v, ei); err == nil {
				log.Debug().Stringer("expr", ei.expr).Msg("solved by rearrangement")
				continue outer
			}
		}
	}

	st.doneSubstitution = true
	return vars
}

// WalkSolutions visits every known variable with the expression that stands
// for it: an exact constant for concrete values, otherwise the substituted
// form. The callback returns whether to keep walking, and optionally a
// concrete value to pin the variable to.
func (s *SubSolver) WalkSolutions(st *State, cb func(st *State, v expr.Variable, e *expr.Expression) (bool, expr.Concrete)) {
	vars := s.trySolve(st)

	for _, v := range vars {
		p, ok := st.resolved[v]
		if !ok {
			continue
		}

		var rendered *expr.Expression
		switch {
		case p.isConcrete():
			switch c := p.concrete.(type) {
			case expr.Float:
				r := new(big.Rat).SetFloat64(float64(c))
				if r == nil {
					continue
				}
				rendered = expr.Rational(r, true)
			case expr.Rat:
				rendered = expr.Rational(new(big.Rat).Set(c.Rat), false)
			}
		default:
			rendered = p.substituted.expr
		}

		keepGoing, chosen := cb(st, v, rendered)
		if chosen != nil && usableChosen(chosen) {
			st.resolved[v] = solvePlan{concrete: chosen}
		}
		if !keepGoing {
			return
		}
	}
}

// Find solves for a single variable, returning its canonical concrete
// value. The value is recorded in the state so later lookups are free.
func (s *SubSolver) Find(st *State, v expr.Variable) (expr.Concrete, error) {
	var out expr.Concrete
	var evalErr error
	s.WalkSolutions(st, func(st *State, cur expr.Variable, e *expr.Expression) (bool, expr.Concrete) {
		if cur != v {
			return true, nil
		}
		c, err := e.Evaluate(st, 0)
		if err != nil {
			evalErr = err
			return false, nil
		}
		out = c
		return false, c
	})

	if evalErr != nil {
		return nil, evalErr
	}
	if out == nil {
		return nil, expr.ErrCannotSolve
	}
	return out, nil
}

// AllConcreteResults returns every variable with a concrete value, plus the
// sorted list of variables that remain unresolved.
func (s *SubSolver) AllConcreteResults(st *State) (map[expr.Variable]expr.Concrete, []expr.Variable) {
	vars := s.trySolve(st)
	out := make(map[expr.Variable]expr.Concrete, len(vars))
	var unresolved []expr.Variable

	for _, v := range vars {
		if p, ok := st.resolved[v]; ok && p.isConcrete() {
			out[v] = p.concrete
		} else {
			unresolved = append(unresolved, v)
		}
	}

	return out, unresolved
}

// AllResiduals returns a residual expression for every candidate whose
// variables are not all concrete, deduplicated and in a deterministic
// order.
func (s *SubSolver) AllResiduals(st *State) []*expr.Expression {
	done := make(map[expr.Hash]struct{}, len(st.varsByEq))
	type hashedExpr struct {
		hash expr.Hash
		expr *expr.Expression
	}
	var out []hashedExpr

	for _, forVar := range sortedEqKeys(st.varsByEq) {
		for _, ei := range st.varsByEq[forVar].exprs {
			// Skip fully-constrained residuals.
			if p, ok := st.resolved[forVar]; ok && p.isConcrete() {
				all := true
				for dep := range ei.references {
					if dp, ok := st.resolved[dep]; !ok || !dp.isConcrete() {
						all = false
						break
					}
				}
				if all {
					continue
				}
			}

			eq := expr.Difference(expr.Var(forVar), ei.expr)
			h := eq.Hash()
			if _, ok := done[h]; ok {
				continue
			}
			done[h] = struct{}{}
			out = append(out, hashedExpr{h, eq})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].hash < out[j].hash })
	exprs := make([]*expr.Expression, len(out))
	for i, he := range out {
		exprs[i] = he.expr
	}
	return exprs
}

// ResidualSum is the combined residual of every equation influencing one
// unresolved variable.
type ResidualSum struct {
	// Count is how many rearranged equations were folded into Expr.
	Count int
	Expr  *expr.Expression
}

// AllRemainingResiduals returns, for each variable without a concrete
// solution, the sum of every candidate expression rearranged to yield that
// variable.
func (s *SubSolver) AllRemainingResiduals(st *State) map[expr.Variable]ResidualSum {
	vars := s.trySolve(st)
	out := make(map[expr.Variable]ResidualSum, len(vars))

	for _, v := range vars {
		if p, ok := st.resolved[v]; ok && p.isConcrete() {
			continue
		}

		var sum *expr.Expression
		count := 0
		for _, forVar := range sortedEqKeys(st.varsByEq) {
			done := make(map[expr.Hash]struct{}, 16)
			for _, ei := range st.varsByEq[forVar].exprs {
				if _, ok := ei.references[v]; !ok {
					continue
				}

				eq := expr.Equal(expr.Var(forVar), ei.expr)
				rearranged, err := eq.MakeSubject(expr.Var(v))
				if err != nil {
					continue
				}
				if _, ok := done[ei.hash]; ok {
					continue
				}
				done[ei.hash] = struct{}{}

				_, rhs := rearranged.Operands()
				if sum == nil {
					sum = rhs
				} else {
					sum = expr.Sum(sum, rhs)
				}
				count++
			}
		}

		if sum != nil {
			out[v] = ResidualSum{Count: count, Expr: sum}
		}
	}

	return out
}

// usableConcrete reports whether a solved value is worth caching: exact
// rationals always, floats only when finite.
func usableConcrete(c expr.Concrete) bool {
	if _, ok := c.(expr.Rat); ok {
		return true
	}
	f := c.AsFloat()
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// usableChosen mirrors the pickier check applied to caller-chosen
// solutions, which additionally rejects zero and subnormal floats.
func usableChosen(c expr.Concrete) bool {
	if _, ok := c.(expr.Rat); ok {
		return true
	}
	f := c.AsFloat()
	return f != 0 && !math.IsNaN(f) && !math.IsInf(f, 0) && math.Abs(f) >= math.SmallestNonzeroFloat64*(1<<52)
}

func sortedVarKeys(m map[expr.Variable]int) []expr.Variable {
	out := make([]expr.Variable, 0, len(m))
	for v := range m {
		out = append(out, v)
	}
	sortVarsByBase(out)
	return out
}

func sortedEqKeys(m map[expr.Variable]*equivalentExpressions) []expr.Variable {
	out := make([]expr.Variable, 0, len(m))
	for v := range m {
		out = append(out, v)
	}
	sortVarsByBase(out)
	return out
}
