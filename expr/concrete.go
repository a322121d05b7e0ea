package expr

import "math/big"

// Concrete is a fully resolved value of some variable: either an exact
// rational or a floating-point approximation. Arithmetic between two
// rationals stays exact; any float operand forces float semantics for that
// operation.
type Concrete interface {
	AsFloat() float64
	concrete()
}

// Rat is an exact rational Concrete.
type Rat struct {
	*big.Rat
}

// NewRat returns the exact rational value num/denom as a Concrete.
func NewRat(num, denom int64) Rat {
	return Rat{big.NewRat(num, denom)}
}

// NewRatInt returns the integer i as an exact Concrete.
func NewRatInt(i int64) Rat {
	return Rat{new(big.Rat).SetInt64(i)}
}

func (Rat) concrete() {}

// AsFloat returns the nearest float64.
func (r Rat) AsFloat() float64 {
	f, _ := r.Float64()
	return f
}

// Float is a floating-point Concrete.
type Float float64

func (Float) concrete() {}

// AsFloat returns the value.
func (f Float) AsFloat() float64 { return float64(f) }

// Resolver resolves the concrete value of a variable, failing with an
// UnknownVarError if it has none.
type Resolver interface {
	ResolveVariable(v Variable) (Concrete, error)
}

// StaticResolver resolves variables from a fixed map.
type StaticResolver map[Variable]Concrete

// ResolveVariable implements Resolver.
func (s StaticResolver) ResolveVariable(v Variable) (Concrete, error) {
	if c, ok := s[v]; ok {
		return c, nil
	}
	return nil, UnknownVarError{Var: v}
}
