package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sketchsolve/sketchsolve/expr"
)

func parseAll(t *testing.T, eqs ...string) []*expr.Expression {
	t.Helper()
	out := make([]*expr.Expression, len(eqs))
	for i, s := range eqs {
		e, err := expr.Parse(s, false)
		require.NoError(t, err, s)
		out[i] = e
	}
	return out
}

func TestNewGradientState(t *testing.T) {
	assert := require.New(t)

	st := NewGradientState(
		map[expr.Variable]expr.Concrete{
			"x0": expr.Float(0.0),
			"y0": expr.Float(0.0),
		},
		[]expr.Variable{"x1", "y1"},
		parseAll(t, "5 - sqrt((x1-x0)^2 + (y1-y0)^2)"),
	)

	wantJ := parseAll(t,
		"-((2 * (x1 - x0)) / (2 * sqrt((x1 - x0)^2 + (y1 - y0)^2)))",
		"-((2 * (y1 - y0)) / (2 * sqrt((x1 - x0)^2 + (y1 - y0)^2)))",
	)
	assert.Len(st.jacobians, 2)
	for i, want := range wantJ {
		assert.NotNil(st.jacobians[i].fn, "jacobian %d folded to a constant", i)
		assert.True(st.jacobians[i].fn.Equal(want), "jacobian %d: got %s, want %s",
			i, st.jacobians[i].fn, want)
	}

	NewGradientSolver(st)
}

func TestGradientBasic(t *testing.T) {
	assert := require.New(t)

	st := NewGradientState(
		map[expr.Variable]expr.Concrete{
			"x0": expr.Float(0.0),
			"y0": expr.Float(0.0),
		},
		[]expr.Variable{"x1", "y1"},
		parseAll(t, "5 - sqrt((x1-x0)^2 + (y1-y0)^2)"),
	)
	solver := NewGradientSolver(st)

	// Set some initial conditions.
	solver.SetGuess(0, 0.001)
	solver.SetGuess(1, 1.000)
	ret, err := solver.Solve(st)
	assert.NoError(err)

	assert.LessOrEqual(solver.Iterations(), 8)
	assert.Less(ret[0].Value, 0.1)
	f := math.Abs(ret[0].Value + ret[1].Value)
	assert.Greater(f, 4.9)
	assert.Less(f, 5.1)

	// Different initial conditions solve towards a
	// proportionally-biased solution.
	solver = NewGradientSolver(st)
	solver.SetGuess(0, 1.0)
	solver.SetGuess(1, 1.0)
	ret, err = solver.Solve(st)
	assert.NoError(err)

	assert.LessOrEqual(solver.Iterations(), 8)
	assert.InDelta(3.5, ret[0].Value, 0.1)
	assert.InDelta(3.5, ret[1].Value, 0.1)
}

func TestGradientTwoDistIntersection(t *testing.T) {
	assert := require.New(t)

	st := NewGradientState(
		map[expr.Variable]expr.Concrete{
			"d":  expr.Float(5.0),
			"x0": expr.Float(0.0),
			"y0": expr.Float(0.0),
			"x2": expr.Float(2.5),
			"y2": expr.Float(1.0),
		},
		[]expr.Variable{"x1", "y1"},
		parseAll(t,
			"d - sqrt((x1-x0)^2 + (y1-y0)^2)",
			"d - sqrt((x1-x2)^2 + (y1-y2)^2)",
		),
	)
	solver := NewGradientSolver(st)

	solver.SetGuess(0, 1.000)
	solver.SetGuess(1, 3.000)
	ret, err := solver.Solve(st)
	assert.NoError(err)

	assert.Less(solver.Iterations(), 50)
	assert.Less(ret[0].Value, 0.0001)
}

func TestGradientDistSnake(t *testing.T) {
	assert := require.New(t)

	// (0,0) ---88--- (x1,y1) ---88--- (x2,y2)
	st := NewGradientState(
		map[expr.Variable]expr.Concrete{
			"x0": expr.Float(0.0),
			"y0": expr.Float(0.0),
		},
		[]expr.Variable{"x1", "y1", "x2", "y2"},
		parseAll(t,
			"88 - sqrt((x1-x0)^2 + (y1-y0)^2)",
			"88 - sqrt((x2-x1)^2 + (y2-y1)^2)",
		),
	)
	solver := NewGradientSolver(st)

	// Solve in the quadrant the default guesses point at.
	solver.SetGuess(0, -3000.0)
	solver.SetGuess(1, -3000.0)
	ret, err := solver.Solve(st)
	assert.NoError(err)

	assert.Less(solver.Iterations(), 50)
	leg1 := math.Hypot(ret[0].Value, ret[1].Value)
	assert.InDelta(88.0, leg1, 0.1)

	// Now from the opposite quadrant.
	solver = NewGradientSolver(st)
	solver.SetGuess(0, 800.0)
	solver.SetGuess(1, 800.0)
	ret, err = solver.Solve(st)
	assert.NoError(err)

	assert.Less(solver.Iterations(), 70)
	leg1 = math.Hypot(ret[0].Value, ret[1].Value)
	assert.InDelta(88.0, leg1, 0.1)
}

func TestGradientSimple(t *testing.T) {
	assert := require.New(t)

	st := NewGradientState(
		map[expr.Variable]expr.Concrete{"y0": expr.Float(0.0)},
		[]expr.Variable{"y1"},
		parseAll(t, "5 - (0.5 * sqrt((y0 - y1)^2))"),
	)
	solver := NewGradientSolver(st)

	solver.SetGuess(0, 0.001)
	ret, err := solver.Solve(st)
	assert.NoError(err)

	assert.LessOrEqual(solver.Iterations(), 80)
	assert.InDelta(10.0, ret[0].Value, 0.001)
}
