package numeric

import (
	"fmt"
	"math"
	"math/bits"

	"gonum.org/v1/gonum/mat"

	"github.com/sketchsolve/sketchsolve/expr"
)

// ExpSearchParams are the step parameters for ExpSearchIter.
type ExpSearchParams struct {
	Step float64
	Exp  float64
}

// DefaultExpSearchParams returns the default search stride.
func DefaultExpSearchParams() ExpSearchParams {
	return ExpSearchParams{Step: 0.707, Exp: 1.33}
}

// Reduce narrows the search for a follow-up pass over a smaller region.
func (p *ExpSearchParams) Reduce() {
	p.Step /= 10.0
	p.Exp = math.Max(1.0, p.Exp-0.003)
}

// ExpSearchIter yields scalars spreading outwards from an initial point,
// alternating above and below it with exponentially growing offsets.
type ExpSearchIter struct {
	params ExpSearchParams
	x      float64
	i      int
}

// NewExpSearchIter starts an iterator centered on val.
func NewExpSearchIter(params ExpSearchParams, val float64) *ExpSearchIter {
	return &ExpSearchIter{params: params, x: val}
}

// Val returns the scalar at the current position without advancing.
func (it *ExpSearchIter) Val() float64 {
	isPos, mul := it.i%2 == 1, (it.i+1)/2
	step := math.Pow(float64(mul)*it.params.Step, it.params.Exp)
	if isPos {
		return it.x + step
	}
	return it.x - step
}

// Next returns the current scalar and advances.
func (it *ExpSearchIter) Next() float64 {
	out := it.Val()
	it.i++
	return out
}

// Reset rewinds the iterator to its center point.
func (it *ExpSearchIter) Reset() {
	it.i = 0
}

// SetStep jumps the iterator to position i and returns the scalar there.
func (it *ExpSearchIter) SetStep(i int) float64 {
	it.i = i
	return it.Val()
}

// SetX re-centers the iterator on x.
func (it *ExpSearchIter) SetX(x float64) {
	it.x = x
	it.i = 0
}

// SearchSolver is a brute-force search solver, iterating guesses outwards
// exponentially from their initial values and keeping the combination
// producing the smallest least-squares sum of residuals.
type SearchSolver struct {
	resolved  map[expr.Variable]expr.Concrete
	iteration int

	vars      []expr.Variable
	residuals []*expr.Expression

	// guess of each variable
	x *mat.VecDense
	// best guesses so far
	bestErr float64
	best    *mat.VecDense

	iterators []*ExpSearchIter
}

// NewSearchSolver prepares a search centered on the given initial guesses,
// one per variable in solveFor.
func NewSearchSolver(params ExpSearchParams, concrete map[expr.Variable]expr.Concrete, solveFor []expr.Variable, residuals []*expr.Expression, initials []float64) *SearchSolver {
	iterators := make([]*ExpSearchIter, len(initials))
	x := mat.NewVecDense(max(len(initials), 1), nil)
	for i, init := range initials {
		iterators[i] = NewExpSearchIter(params, init)
		x.SetVec(i, iterators[i].Next())
	}

	return &SearchSolver{
		resolved:  concrete,
		vars:      solveFor,
		residuals: residuals,
		x:         x,
		bestErr:   math.Inf(1),
		best:      mat.VecDenseCopyOf(x),
		iterators: iterators,
	}
}

// Bruteforce sweeps every combination of searchBits positions per variable
// and returns the smallest squared-residual sum with the guesses that
// produced it. The search space is exponential in variables times bits and
// must fit in an int; systems too large to sweep are rejected.
func (s *SearchSolver) Bruteforce(searchBits int) (float64, []VarValue, error) {
	width := len(s.vars) * searchBits
	if width >= bits.UintSize-1 {
		return 0, nil, fmt.Errorf("search space of %d variables at %d bits each is not sweepable", len(s.vars), searchBits)
	}
	total := 1 << width
	varStates := 1 << searchBits

	for s.iteration < total {
		// Update guesses
		for i, g := range s.iterators {
			v := (varStates - 1) & (s.iteration >> (i * searchBits))
			s.x.SetVec(i, g.SetStep(v))
		}

		s.computeResidualsStep()
	}

	out := make([]VarValue, len(s.vars))
	for i, v := range s.vars {
		out[i] = VarValue{Var: v, Value: s.best.AtVec(i)}
	}
	return s.bestErr, out, nil
}

func (s *SearchSolver) computeResidualsStep() {
	resolver := newVarResolver(s.x, s.vars, s.resolved)

	sumSq := 0.0
	for _, fx := range s.residuals {
		res := math.Inf(1)
		if c, err := fx.Evaluate(resolver, 0); err == nil {
			res = c.AsFloat()
		}
		res = clamp(res, -residualClamp, residualClamp)
		sumSq += res * res
	}

	if sumSq < s.bestErr {
		s.bestErr = sumSq
		s.best.CopyVec(s.x)
	}
	s.iteration++
}
