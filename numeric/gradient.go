package numeric

import (
	"fmt"
	"math"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"gonum.org/v1/gonum/mat"

	"github.com/sketchsolve/sketchsolve/expr"
	"github.com/sketchsolve/sketchsolve/logger"
)

const residualClamp = 999999.0

// GradientParams are the hyperparameters of the gradient solver.
type GradientParams struct {
	// MaxIter is the maximum number of iterations.
	MaxIter int
	// StepMul is a multiplier for how much the jacobian contributes to
	// the adjustment.
	StepMul float64

	// MomentumStep is how much to increase the learning rate by if the
	// gradient being descended hasn't changed shape.
	MomentumStep float64
	// MomentumDiv divides the momentum increment. It is itself
	// incremented every time the descended curve changes shape, i.e. the
	// solution was overshot.
	MomentumDiv int
	// MomentumWindup is the initial momentum.
	MomentumWindup float64

	// TerminateAtAvgFx is the average residual error at which iteration
	// stops and the system is considered solved.
	TerminateAtAvgFx float64
}

// DefaultGradientParams returns the tuning that works well for sketch-sized
// systems.
func DefaultGradientParams() GradientParams {
	return GradientParams{
		MaxIter:          450,
		StepMul:          -0.99,
		MomentumStep:     0.5,
		MomentumDiv:      2,
		MomentumWindup:   0.15,
		TerminateAtAvgFx: 8e-4,
	}
}

// jacobianEntry is one cell of the Jacobian: either a constant, when the
// derivative folded down to one, or an expression to evaluate per step.
type jacobianEntry struct {
	fn *expr.Expression
	f  float64
}

// GradientState is the immutable part of a gradient solve: the known
// values, the variables under search, the residuals and their symbolic
// Jacobian.
type GradientState struct {
	resolved map[expr.Variable]expr.Concrete

	vars      []expr.Variable
	residuals []*expr.Expression
	// jacobians is variable-major: the entry for variable i and residual
	// r sits at i*len(residuals)+r.
	jacobians []jacobianEntry
}

// NewGradientState prepares a solve for the given variables over the given
// residuals. The Jacobian is differentiated once up front; derivatives the
// engine cannot express become zero entries.
func NewGradientState(concrete map[expr.Variable]expr.Concrete, solveFor []expr.Variable, residuals []*expr.Expression) *GradientState {
	jacobians := make([]jacobianEntry, 0, len(solveFor)*len(residuals))
	for _, v := range solveFor {
		for _, fx := range residuals {
			d, err := fx.DerivativeWrt(v)
			if err != nil {
				jacobians = append(jacobians, jacobianEntry{f: 0})
				continue
			}
			switch d.Op() {
			case expr.OpInteger, expr.OpRational:
				c, _ := d.Evaluate(nil, 0)
				jacobians = append(jacobians, jacobianEntry{f: c.AsFloat()})
			default:
				jacobians = append(jacobians, jacobianEntry{fn: d})
			}
		}
	}

	scaled := make([]*expr.Expression, len(residuals))
	for i, r := range residuals {
		scaled[i] = scaleAngleResidual(r)
	}

	return &GradientState{
		resolved:  concrete,
		vars:      solveFor,
		residuals: scaled,
		jacobians: jacobians,
	}
}

// scaleAngleResidual scales residuals that reference a global angle term
// (a cos/sin variable) by the matching distance term, so their error is
// weighted comparably to positional residuals.
func scaleAngleResidual(r *expr.Expression) *expr.Expression {
	var angleVar expr.Variable
	found := false
	r.Walk(func(n *expr.Expression) bool {
		if n.Op() == expr.OpVariable {
			v := n.Variable()
			if strings.HasPrefix(string(v), "c") || strings.HasPrefix(string(v), "s") {
				found = true
				angleVar = v
				return false
			}
		}
		return true
	})
	if !found {
		return r
	}

	distVar := expr.Variable("d" + string(angleVar[1:]))
	return expr.Product(
		expr.Product(expr.Var(distVar), expr.Ratio(9, 10)),
		r,
	)
}

// ConvergenceError reports a solve that ran out of iterations. The best
// guesses found are still returned alongside it.
type ConvergenceError struct {
	TotalFx float64
	Results []VarValue
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("did not converge: total residual %.6f", e.TotalFx)
}

// GradientSolver iteratively descends the residuals' gradient.
//
// Each step evaluates the Jacobian at the current guesses and the residual
// errors, normalizes each Jacobian column with a softmax weighted by the
// fraction of non-zero entries, and nudges the guesses by the combined
// gradient times the step multiplier. A momentum term grows the step while
// the adjustment keeps its sign pattern, and resets when any component
// flips, meaning the solution was overshot.
type GradientSolver struct {
	params    GradientParams
	iteration int

	// guess of each variable
	x *mat.VecDense
	// residual calculation result
	fx *mat.VecDense
	// jacobian by [residual, variable]
	j *mat.Dense

	// sign pattern of the adjustment at the last iteration
	adjSign     *bitset.BitSet
	haveAdjSign bool

	momentum    float64
	momentumDiv int
}

// NewGradientSolver returns a solver with default parameters and every
// guess at the arbitrary off-origin starting point.
func NewGradientSolver(st *GradientState) *GradientSolver {
	params := DefaultGradientParams()

	x := mat.NewVecDense(len(st.vars), nil)
	for i := 0; i < len(st.vars); i++ {
		x.SetVec(i, -8.001)
	}

	return &GradientSolver{
		params:      params,
		x:           x,
		fx:          mat.NewVecDense(max(len(st.residuals), 1), nil),
		j:           mat.NewDense(max(len(st.residuals), 1), max(len(st.vars), 1), nil),
		adjSign:     bitset.New(uint(len(st.vars))),
		momentum:    params.MomentumWindup,
		momentumDiv: params.MomentumDiv,
	}
}

// NewGradientSolverWithInitials is NewGradientSolver with explicit
// parameters and starting guesses.
func NewGradientSolverWithInitials(params GradientParams, st *GradientState, initials []float64) *GradientSolver {
	out := NewGradientSolver(st)
	out.params = params
	out.x = mat.NewVecDense(len(initials), initials)
	return out
}

// SetGuess overrides the current guess for variable index i.
func (s *GradientSolver) SetGuess(i int, v float64) {
	s.x.SetVec(i, v)
}

// Iterations returns how many iterations the last Solve used.
func (s *GradientSolver) Iterations() int {
	return s.iteration
}

func (s *GradientSolver) solveStep(st *GradientState) float64 {
	resolver := newVarResolver(s.x, st.vars, st.resolved)
	numResiduals := len(st.residuals)

	// Compute jacobian
	for col := range st.vars {
		for row := range st.residuals {
			entry := st.jacobians[col*numResiduals+row]
			v := entry.f
			if entry.fn != nil {
				c, err := entry.fn.Evaluate(resolver, 0)
				if err != nil {
					v = 0
				} else {
					v = c.AsFloat()
				}
			}
			if math.IsNaN(v) {
				v = 0
			} else if math.IsInf(v, 0) {
				v = math.Copysign(1, v)
			}
			s.j.Set(row, col, v)
		}
	}

	// Softmax the jacobian for each variable, multiplied by the
	// proportion of entries which are non-zero.
	totalTerms := float64(len(st.vars))
	for col := range st.vars {
		expSum := 0.0
		nonZero := 0.0
		for row := 0; row < numResiduals; row++ {
			expSum += math.Exp(s.j.At(row, col))
			if s.j.At(row, col) != 0 {
				nonZero++
			}
		}
		for row := 0; row < numResiduals; row++ {
			jv := s.j.At(row, col)
			s.j.Set(row, col, jv*math.Exp(jv)/expSum*nonZero/totalTerms)
		}
	}

	// Compute residuals
	for row, fx := range st.residuals {
		res := math.Inf(1)
		if c, err := fx.Evaluate(resolver, 0); err == nil {
			res = c.AsFloat()
			if math.IsNaN(res) {
				res = math.Inf(1)
			}
		}
		s.fx.SetVec(row, clamp(res, -residualClamp, residualClamp))
	}

	// Compute total error
	totalFx := 0.0
	for row := 0; row < numResiduals; row++ {
		totalFx += math.Abs(s.fx.AtVec(row))
	}

	// Compute adjustment
	adjustment := mat.NewVecDense(len(st.vars), nil)
	adjustment.MulVec(s.j.T(), s.fx)
	adjustment.ScaleVec(s.params.StepMul, adjustment)

	// Momentum accumulates while the adjustment keeps the same sign
	// pattern, and reverts if any component flipped.
	signs := bitset.New(uint(len(st.vars)))
	for i := 0; i < len(st.vars); i++ {
		signs.SetTo(uint(i), !math.Signbit(adjustment.AtVec(i)))
	}
	if s.haveAdjSign {
		if s.adjSign.Equal(signs) {
			s.momentum += s.params.MomentumStep / float64(s.momentumDiv)
		} else {
			s.momentum = 0
			s.momentumDiv++
		}
	}
	s.adjSign = signs
	s.haveAdjSign = true

	// Update guesses
	s.x.AddScaledVec(s.x, 1.0+s.momentum, adjustment)

	return totalFx
}

// Solve iterates until the average residual error drops below the
// termination threshold or the iteration cap is reached. The guesses are
// returned either way; a *ConvergenceError marks a solve that hit the cap.
func (s *GradientSolver) Solve(st *GradientState) ([]VarValue, error) {
	log := logger.Logger().With().Str("component", "gradient").Logger()

	totalFx := math.MaxFloat64
	for s.iteration < s.params.MaxIter {
		totalFx = s.solveStep(st)
		if math.Abs(totalFx)/float64(len(st.vars)) < s.params.TerminateAtAvgFx {
			break
		}
		s.iteration++
	}

	results := make([]VarValue, len(st.vars))
	for i, v := range st.vars {
		results[i] = VarValue{Var: v, Value: s.x.AtVec(i)}
	}

	if s.iteration < s.params.MaxIter {
		log.Debug().Int("iterations", s.iteration).Msg("converged")
		return results, nil
	}
	log.Debug().Float64("total_fx", totalFx).Msg("iteration cap reached")
	return results, &ConvergenceError{TotalFx: totalFx, Results: results}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
