package expr

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrDivByZero is returned when evaluation divides by an exact zero.
	ErrDivByZero = errors.New("division by zero")
	// ErrCannotSolve is returned when no equation or rearrangement can
	// isolate the requested variable. It is terminal for that variable
	// within a single solve, not for the solve as a whole.
	ErrCannotSolve = errors.New("cannot solve")
	// ErrNotImplemented is returned for operator combinations the engine
	// does not support. It indicates a programming-time limitation rather
	// than a runtime input error.
	ErrNotImplemented = errors.New("not implemented")
)

// UnknownVarError is returned when evaluation references a variable the
// resolver has no value for. It is expected and recoverable during
// substitution search.
type UnknownVarError struct {
	Var Variable
}

func (e UnknownVarError) Error() string {
	return fmt.Sprintf("unknown variable %q", string(e.Var))
}

// PowUnableError is returned when an exact value is raised to an exponent
// the engine cannot represent exactly (a non-integer rational).
type PowUnableError struct {
	Exponent *big.Rat
}

func (e PowUnableError) Error() string {
	return fmt.Sprintf("cannot raise to power %s", e.Exponent.RatString())
}
