package expr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMakeSubject(t *testing.T) {
	assert := require.New(t)

	for _, tc := range []struct {
		eq   string
		want string
	}{
		{"y - 1 = x", "x = y - 1"},
		{"y = -x", "x = -y"},
		{"y = x + 2", "x = y - 2"},
		{"y = x - 2", "x = y + 2"},
		{"y = 2 - x", "x = 2 - y"},
		{"2 - x = y", "x = 2 - y"},
		{"y = 2 * x", "x = y / 2"},
		{"y = x / 2", "x = 2 * y"},
		{"y = 2 / x", "x = 2 / y"},
		{"y = x^2", "x = sqrt_pm(y)"},
		{"y = sqrt(x)", "x = y^2"},
		{"y = (x - 1)/2", "x = 2 * y + 1"},
		{"d = sqrt((x2-x1)^2 + (y2-y1)^2)", "x2 = sqrt_pm(d^2 - (y2-y1)^2) + x1"},
	} {
		eq := MustParse(tc.eq)
		want := MustParse(tc.want)
		target := Var(want.a.v)

		got, err := eq.MakeSubject(target)
		assert.NoError(err, tc.eq)
		assert.True(got.Equal(want), "%s for %s: got %s, want %s", tc.eq, target, got, want)
	}
}

func TestMakeSubjectCannotSolve(t *testing.T) {
	assert := require.New(t)

	// The target does not occur at all.
	_, err := MustParse("y = 2 * z").MakeSubject(Var("x"))
	assert.ErrorIs(err, ErrCannotSolve)

	// Only squares can be unwound.
	_, err = MustParse("y = x^3").MakeSubject(Var("x"))
	assert.ErrorIs(err, ErrCannotSolve)

	// Not an equation.
	_, err = MustParse("x + y").MakeSubject(Var("x"))
	assert.ErrorIs(err, ErrCannotSolve)
}
