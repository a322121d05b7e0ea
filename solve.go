package sketchsolve

import (
	"errors"
	"fmt"

	"github.com/sketchsolve/sketchsolve/expr"
	"github.com/sketchsolve/sketchsolve/logger"
	"github.com/sketchsolve/sketchsolve/numeric"
	"github.com/sketchsolve/sketchsolve/solver"
)

// Option alters the behavior of a Solve call.
type Option func(*solveConfig) error

type solveConfig struct {
	gradient     numeric.GradientParams
	searchParams numeric.ExpSearchParams
	searchBits   int
	guesses      map[expr.Variable]float64
}

func newSolveConfig(opts ...Option) (solveConfig, error) {
	cfg := solveConfig{
		gradient:     numeric.DefaultGradientParams(),
		searchParams: numeric.DefaultExpSearchParams(),
		guesses:      make(map[expr.Variable]float64),
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// WithGradientParams overrides the gradient solver tuning.
func WithGradientParams(p numeric.GradientParams) Option {
	return func(cfg *solveConfig) error {
		if p.MaxIter <= 0 {
			return errors.New("gradient solver needs a positive iteration cap")
		}
		cfg.gradient = p
		return nil
	}
}

// WithInitialGuess seeds the numeric solve with a starting value for a
// variable, typically its on-screen position before the edit. Unknown
// variables are ignored.
func WithInitialGuess(v expr.Variable, guess float64) Option {
	return func(cfg *solveConfig) error {
		cfg.guesses[v] = guess
		return nil
	}
}

// WithSearchFallback enables the brute-force search when the gradient
// solver fails to converge, sweeping 2^bits steps per unresolved variable
// before a second gradient run. The sweep is exponential in variables
// times bits.
func WithSearchFallback(bits int) Option {
	return func(cfg *solveConfig) error {
		if bits <= 0 || bits > 16 {
			return fmt.Errorf("search fallback bits %d out of range", bits)
		}
		cfg.searchBits = bits
		return nil
	}
}

// Result is the outcome of a Solve.
type Result struct {
	// Values maps every variable of the system to its value: exact where
	// substitution resolved it, float where the numeric solver did.
	Values map[expr.Variable]expr.Concrete
	// Unresolved lists the variables that needed the numeric solver.
	Unresolved []expr.Variable
	// Residuals are the expressions the numeric solver minimized.
	Residuals []*expr.Expression
	// Converged is false when the numeric solver hit its iteration cap.
	// Values then still carries its best guesses.
	Converged bool
	// TotalFx is the summed absolute residual error at termination. It is
	// only set when the numeric solver failed to converge.
	TotalFx float64
}

// Solve resolves the system formed by the given equations and known
// values. Variables the substitution pass cannot determine are solved
// numerically from their residuals.
//
// A system that does not converge returns both the best-effort Result and
// a *numeric.ConvergenceError.
func Solve(known map[expr.Variable]expr.Concrete, eqs []*expr.Expression, opts ...Option) (*Result, error) {
	cfg, err := newSolveConfig(opts...)
	if err != nil {
		return nil, err
	}
	log := logger.Logger().With().Str("component", "solve").Logger()

	st, err := solver.NewState(known, eqs)
	if err != nil {
		return nil, fmt.Errorf("indexing equations: %w", err)
	}

	ss := &solver.SubSolver{}
	values, unresolved := ss.AllConcreteResults(st)
	out := &Result{Values: values, Converged: true}
	if len(unresolved) == 0 {
		log.Debug().Int("values", len(values)).Msg("resolved by substitution alone")
		return out, nil
	}

	residuals := ss.AllResiduals(st)
	out.Unresolved = unresolved
	out.Residuals = residuals
	log.Debug().
		Int("resolved", len(values)).
		Int("unresolved", len(unresolved)).
		Int("residuals", len(residuals)).
		Msg("substitution incomplete, solving numerically")

	gst := numeric.NewGradientState(values, unresolved, residuals)
	initials := make([]float64, len(unresolved))
	for i, v := range unresolved {
		initials[i] = -8.001
		if g, ok := cfg.guesses[v]; ok {
			initials[i] = g
		}
	}

	gs := numeric.NewGradientSolverWithInitials(cfg.gradient, gst, initials)
	results, err := gs.Solve(gst)

	var conv *numeric.ConvergenceError
	if errors.As(err, &conv) && cfg.searchBits > 0 {
		log.Debug().Float64("total_fx", conv.TotalFx).Msg("falling back to search")
		for i, r := range results {
			initials[i] = r.Value
		}
		search := numeric.NewSearchSolver(cfg.searchParams, values, unresolved, residuals, initials)
		bestErr, best, serr := search.Bruteforce(cfg.searchBits)
		if serr != nil {
			log.Debug().Err(serr).Msg("search fallback skipped")
		} else {
			log.Debug().Float64("best_err", bestErr).Msg("search pass done")

			for i, b := range best {
				initials[i] = b.Value
			}
			gs = numeric.NewGradientSolverWithInitials(cfg.gradient, gst, initials)
			results, err = gs.Solve(gst)
		}
	}

	for _, r := range results {
		out.Values[r.Var] = expr.Float(r.Value)
	}
	if err != nil {
		if errors.As(err, &conv) {
			out.Converged = false
			out.TotalFx = conv.TotalFx
			return out, err
		}
		return nil, err
	}
	return out, nil
}
