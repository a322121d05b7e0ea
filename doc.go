// Package sketchsolve is the constraint-solving engine beneath a 2D
// parametric sketch editor.
//
// A sketch is described to the engine as a set of equations over short
// algebraic variables (one equation per geometric constraint) plus a set of
// known concrete values for anchored geometry. Solve runs the pipeline:
//   - the substitution solver (package solver) resolves as many variables
//     symbolically as it can, substituting known values into the cheapest
//     candidate expression per variable and rearranging equations when
//     needed;
//   - variables it cannot pin down become residual expressions, solved
//     numerically by an iterative gradient solver with an optional
//     brute-force search fallback (package numeric).
//
// Expression trees, exact rational arithmetic, simplification, equation
// rearrangement and symbolic derivatives live in package expr. Package
// terms maps the caller's geometric entities to stable variable names.
package sketchsolve

import (
	"github.com/blang/semver/v4"
)

// Version of the engine.
var Version = semver.MustParse("0.1.0")
