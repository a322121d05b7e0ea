package sketchsolve

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sketchsolve/sketchsolve/expr"
	"github.com/sketchsolve/sketchsolve/numeric"
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

func TestSolveSubstitutionOnly(t *testing.T) {
	assert := require.New(t)

	res, err := Solve(nil, parseAll(t,
		"x0 = 0",
		"y0 = 0",
		"x1 = 10",
		"y1 = x1/2",
	))
	assert.NoError(err)
	assert.True(res.Converged)
	assert.Empty(res.Unresolved)
	assert.Empty(res.Residuals)

	for v, want := range map[expr.Variable]float64{
		"x0": 0, "y0": 0, "x1": 10, "y1": 5,
	} {
		c, ok := res.Values[v]
		assert.True(ok, "%s missing", v)
		_, exact := c.(expr.Rat)
		assert.True(exact, "%s should be exact", v)
		assert.Equal(want, c.AsFloat(), "%s", v)
	}
}

func TestSolveNumericFallback(t *testing.T) {
	assert := require.New(t)

	// A point constrained to distance 5 from the anchored origin: one
	// residual, two unknowns, no symbolic solution.
	res, err := Solve(nil, parseAll(t,
		"x0 = 0",
		"y0 = 0",
		"0 = 5 - sqrt((x1-x0)^2 + (y1-y0)^2)",
	),
		WithInitialGuess("x1", 1.0),
		WithInitialGuess("y1", 0.001),
	)
	assert.NoError(err)
	assert.True(res.Converged)
	assert.ElementsMatch([]expr.Variable{"x1", "y1"}, res.Unresolved)
	assert.Len(res.Residuals, 1)

	assert.InDelta(5.0, res.Values["x1"].AsFloat(), 0.05)
	assert.InDelta(0.0, res.Values["y1"].AsFloat(), 0.05)
	assert.Equal(0.0, res.Values["x0"].AsFloat())
}

func TestSolveImpossibleSystem(t *testing.T) {
	assert := require.New(t)

	// Distance 5 from both (0,0) and (100,0): no point satisfies it.
	res, err := Solve(nil, parseAll(t,
		"x0 = 0",
		"y0 = 0",
		"x2 = 100",
		"y2 = 0",
		"0 = 5 - sqrt((x1-x0)^2 + (y1-y0)^2)",
		"0 = 5 - sqrt((x1-x2)^2 + (y1-y2)^2)",
	), WithSearchFallback(6))

	var conv *numeric.ConvergenceError
	assert.ErrorAs(err, &conv)
	assert.NotNil(res)
	assert.False(res.Converged)
	assert.Len(res.Residuals, 2)

	// Both residuals pinned at the clamp: the guesses ran away.
	assert.InDelta(2*999999.0, res.TotalFx, 1.0)
	// Best-effort guesses are still reported.
	assert.Contains(res.Values, expr.Variable("x1"))
	assert.Contains(res.Values, expr.Variable("y1"))
}

func TestSolveOptionValidation(t *testing.T) {
	assert := require.New(t)

	_, err := Solve(nil, nil, WithSearchFallback(0))
	assert.Error(err)

	_, err = Solve(nil, nil, WithGradientParams(numeric.GradientParams{}))
	assert.Error(err)
}

func TestVersion(t *testing.T) {
	require.NotEmpty(t, Version.String())
}
