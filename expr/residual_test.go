package expr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAsResidual(t *testing.T) {
	assert := require.New(t)

	for _, tc := range []struct {
		in   string
		want string
	}{
		{"0 = x/2 + 5", "x/2 + 5"},
		{"x = -5", "x - -5"},
		{
			"d = sqrt_pm((((x1 - x4))^2 + ((y1 - y4))^2))",
			"d - sqrt_pm((((x1 - x4))^2 + ((y1 - y4))^2))",
		},
		// Division on the right-hand side is multiplied out.
		{
			"x2 = ((((y2 - y3) * (x1 - x4)) / (y1 - y4)) + x3)",
			"((x2 - x3) * (y1 - y4)) - ((y2 - y3) * (x1 - x4))",
		},
	} {
		in, err := Parse(tc.in, false)
		assert.NoError(err, tc.in)
		want, err := Parse(tc.want, false)
		assert.NoError(err, tc.want)

		got, err := in.AsResidual()
		assert.NoError(err, tc.in)
		assert.True(got.Equal(want), "%s: got %s, want %s", tc.in, got, want)
	}
}

func TestAsResidualErrors(t *testing.T) {
	assert := require.New(t)

	_, err := MustParse("x + 1").AsResidual()
	assert.ErrorIs(err, ErrCannotSolve)

	e, err := Parse("x + 1 = 2", false)
	assert.NoError(err)
	_, err = e.AsResidual()
	assert.ErrorIs(err, ErrCannotSolve)
}
