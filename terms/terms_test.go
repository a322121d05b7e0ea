package terms

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/sketchsolve/sketchsolve/expr"
)

func TestGetFeatureTerm(t *testing.T) {
	assert := require.New(t)
	a := NewAllocator()

	// Bases are handed out in order, one per entity.
	p1x := a.GetFeatureTerm(1, PositionX)
	assert.Equal(TermRef{Type: PositionX, Base: 0, Feature: 1}, p1x)
	p2x := a.GetFeatureTerm(2, PositionX)
	assert.Equal(uint(1), p2x.Base)

	// Terms of the same entity share its base.
	p1y := a.GetFeatureTerm(1, PositionY)
	assert.Equal(uint(0), p1y.Base)
	assert.Equal("y0", p1y.String())
	assert.Equal("x0", p1x.String())
	assert.True(p1x.SameTerm(TermRef{Type: PositionX, Base: 0}))
	assert.False(p1x.SameTerm(p1y))
}

func TestDeleteFeatureReusesBase(t *testing.T) {
	assert := require.New(t)
	a := NewAllocator()

	a.GetFeatureTerm(1, PositionX)
	a.GetFeatureTerm(2, PositionX)
	a.GetFeatureTerm(3, PositionX)

	// Freed bases are reused most-recent first.
	a.DeleteFeature(1)
	a.DeleteFeature(3)
	assert.Equal(uint(2), a.GetFeatureTerm(4, ScalarRadius).Base)
	assert.Equal(uint(0), a.GetFeatureTerm(5, ScalarRadius).Base)
	assert.Equal(uint(3), a.GetFeatureTerm(6, ScalarRadius).Base)

	// Deleting an unknown entity is a no-op.
	a.DeleteFeature(99)
}

func TestVarRef(t *testing.T) {
	assert := require.New(t)
	a := NewAllocator()
	a.GetFeatureTerm(7, ScalarDistance)

	ref, ok := a.VarRef("d0")
	assert.True(ok)
	assert.Equal(TermRef{Type: ScalarDistance, Base: 0, Feature: 7}, ref)

	// Terms nobody owns resolve with a zero feature.
	ref, ok = a.VarRef("y12")
	assert.True(ok)
	assert.Equal(TermRef{Type: PositionY, Base: 12}, ref)

	for _, bad := range []string{"", "d", "q1", "xx", "x1x"} {
		_, ok := a.VarRef(expr.Variable(bad))
		assert.False(ok, "%q should not resolve", bad)
	}
}

func TestAllocatorRoundTrip(t *testing.T) {
	assert := require.New(t)
	a := NewAllocator()

	a.GetFeatureTerm(1, PositionX)
	a.GetFeatureTerm(2, PositionX)
	a.GetFeatureTerm(3, ScalarDistance)
	a.DeleteFeature(2)

	data, err := a.ToBytes()
	assert.NoError(err)

	// Serialization is deterministic.
	data2, err := a.ToBytes()
	assert.NoError(err)
	assert.Equal(data, data2)

	restored := NewAllocator()
	assert.NoError(restored.FromBytes(data))
	if diff := cmp.Diff(a, restored, cmp.AllowUnexported(Allocator{})); diff != "" {
		t.Fatalf("allocator mismatch (-want +got):\n%s", diff)
	}

	// The restored allocator picks up where the original left off.
	assert.Equal(uint(1), restored.GetFeatureTerm(4, PositionY).Base)
	assert.Equal(uint(3), restored.GetFeatureTerm(5, PositionY).Base)
}

func TestAllocatorFromBytesRejectsBadData(t *testing.T) {
	assert := require.New(t)

	restored := NewAllocator()
	assert.Error(restored.FromBytes([]byte{0xff, 0x00}))
}
