// Package terms maps geometric entities to the algebraic variables that
// represent them in the equation system. Each entity gets a numeric base
// which, combined with a term kind, yields a stable variable name such as
// "x2" or "d0". Bases of deleted entities are recycled so variable names
// stay short over the life of a document.
package terms

import (
	"fmt"
	"strconv"

	"github.com/sketchsolve/sketchsolve/expr"
)

// FeatureKey identifies a geometric entity in the caller's feature store.
// Zero is reserved and never names an entity.
type FeatureKey uint64

// TermType is the semantic role a term plays for its entity.
type TermType uint8

const (
	// ScalarDistance is a distance parameter, named d<base>.
	ScalarDistance TermType = iota
	// PositionX is the x coordinate of a point, named x<base>.
	PositionX
	// PositionY is the y coordinate of a point, named y<base>.
	PositionY
	// ScalarRadius is a radius parameter, named r<base>.
	ScalarRadius
	// ScalarGlobalCos is the cosine of a global angle, named c<base>.
	ScalarGlobalCos
	// ScalarGlobalSin is the sine of a global angle, named s<base>.
	ScalarGlobalSin
)

var termPrefixes = map[TermType]string{
	ScalarDistance:  "d",
	PositionX:       "x",
	PositionY:       "y",
	ScalarRadius:    "r",
	ScalarGlobalCos: "c",
	ScalarGlobalSin: "s",
}

var prefixTypes = map[byte]TermType{
	'd': ScalarDistance,
	'x': PositionX,
	'y': PositionY,
	'r': ScalarRadius,
	'c': ScalarGlobalCos,
	's': ScalarGlobalSin,
}

func (t TermType) String() string {
	if p, ok := termPrefixes[t]; ok {
		return p
	}
	return fmt.Sprintf("TermType(%d)", uint8(t))
}

// TermRef is one term in the system of equations: a base index qualified by
// the role the term plays. Feature is the owning entity, or zero when the
// owner is not tracked.
type TermRef struct {
	Type    TermType
	Base    uint
	Feature FeatureKey
}

// Variable returns the algebraic variable naming this term.
func (r TermRef) Variable() expr.Variable {
	return expr.Variable(r.String())
}

func (r TermRef) String() string {
	return r.Type.String() + strconv.FormatUint(uint64(r.Base), 10)
}

// SameTerm reports whether two refs name the same underlying term,
// ignoring feature ownership.
func (r TermRef) SameTerm(o TermRef) bool {
	return r.Type == o.Type && r.Base == o.Base
}

// Allocator assigns bases to entities whose parameters need to be
// referenced or solved. It is not safe for concurrent use; mutate it only
// from entity creation and deletion, never from a solve.
type Allocator struct {
	top       uint
	byFeature map[FeatureKey]uint
	byBase    map[uint]FeatureKey
	free      []uint
}

// NewAllocator returns an empty allocator.
func NewAllocator() *Allocator {
	return &Allocator{
		byFeature: make(map[FeatureKey]uint),
		byBase:    make(map[uint]FeatureKey),
	}
}

// GetFeatureTerm returns the term of kind t for the given entity,
// allocating a base on first use. Repeated calls with the same entity
// yield the same base, so every term of one entity shares it.
func (a *Allocator) GetFeatureTerm(fk FeatureKey, t TermType) TermRef {
	if base, ok := a.byFeature[fk]; ok {
		return TermRef{Type: t, Base: base, Feature: fk}
	}

	base := a.allocBase()
	a.byFeature[fk] = base
	a.byBase[base] = fk
	return TermRef{Type: t, Base: base, Feature: fk}
}

func (a *Allocator) allocBase() uint {
	if n := len(a.free); n > 0 {
		base := a.free[n-1]
		a.free = a.free[:n-1]
		return base
	}
	out := a.top
	a.top++
	return out
}

// DeleteFeature records deletion of an entity, releasing its base for
// reuse.
func (a *Allocator) DeleteFeature(fk FeatureKey) {
	base, ok := a.byFeature[fk]
	if !ok {
		return
	}
	delete(a.byFeature, fk)
	delete(a.byBase, base)
	a.free = append(a.free, base)
}

// VarRef resolves a variable name back to the term it denotes. The
// Feature field is filled in when the base is still owned by an entity.
func (a *Allocator) VarRef(v expr.Variable) (TermRef, bool) {
	if len(v) < 2 {
		return TermRef{}, false
	}
	t, ok := prefixTypes[v[0]]
	if !ok {
		return TermRef{}, false
	}
	base, err := strconv.ParseUint(string(v[1:]), 10, 64)
	if err != nil {
		return TermRef{}, false
	}
	return TermRef{Type: t, Base: uint(base), Feature: a.byBase[uint(base)]}, true
}
