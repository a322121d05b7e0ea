// Package numeric implements the fallback solvers used when substitution
// cannot pin every variable: an iterative gradient-descent solver driven by
// a symbolic Jacobian, and a brute-force exponential search. Both operate
// on residual expressions and are tolerant of non-convergence, returning
// the best guess found rather than failing hard.
package numeric

import (
	"gonum.org/v1/gonum/mat"

	"github.com/sketchsolve/sketchsolve/expr"
)

// VarValue pairs a solved variable with its numeric value.
type VarValue struct {
	Var   expr.Variable
	Value float64
}

// varResolver resolves the variables under search from the guess vector,
// and everything else from the concrete values.
type varResolver struct {
	x        *mat.VecDense
	index    map[expr.Variable]int
	resolved map[expr.Variable]expr.Concrete
}

func newVarResolver(x *mat.VecDense, vars []expr.Variable, resolved map[expr.Variable]expr.Concrete) *varResolver {
	index := make(map[expr.Variable]int, len(vars))
	for i, v := range vars {
		index[v] = i
	}
	return &varResolver{x: x, index: index, resolved: resolved}
}

func (r *varResolver) ResolveVariable(v expr.Variable) (expr.Concrete, error) {
	if i, ok := r.index[v]; ok {
		return expr.Float(r.x.AtVec(i)), nil
	}
	if c, ok := r.resolved[v]; ok {
		return c, nil
	}
	return nil, expr.UnknownVarError{Var: v}
}
