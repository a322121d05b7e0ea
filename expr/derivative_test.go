package expr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDerivativeWrt(t *testing.T) {
	assert := require.New(t)

	for _, tc := range []struct {
		in   string
		want string
	}{
		{"5", "0"},
		{"x", "1"},
		{"5x", "5"},
		{"5x + x", "6"},
		{"y", "0"},
		{"x^2", "2x"},
		{"x^3", "3 * (x^2)"},
		{"x^2 + 6", "2x"},
		{"2 * x^2", "4x"},
		{"3 * x^4", "12 * x^3"},
		{"2 * x^5", "10 * x^4"},
		{"1/x", "-1/(x^2)"},
		{"x^2 + x^3", "2x + (3 * x^2)"},
		{"x^3 - x^4", "(3 * x^2) - (4 * x^3)"},
		{"(5x - 2)^2", "10 * (5x - 2)"},
		{"sqrt(x)", "1 / (2 * sqrt(x))"},
		{"5 - x^2", "-2x"},
		{"-6x", "-6"},
		{"x * y", "y"},
	} {
		in, err := Parse(tc.in, false)
		assert.NoError(err, tc.in)
		got, err := in.DerivativeWrt("x")
		assert.NoError(err, tc.in)
		want := MustParse(tc.want)
		assert.True(got.Equal(want), "d/dx %s: got %s, want %s", tc.in, got, want)
	}
}

func TestDerivativeNotImplemented(t *testing.T) {
	assert := require.New(t)

	_, err := MustParse("abs(x)").DerivativeWrt("x")
	assert.ErrorIs(err, ErrNotImplemented)

	_, err = MustParse("(x + 1)^3").DerivativeWrt("x")
	assert.ErrorIs(err, ErrNotImplemented)
}
