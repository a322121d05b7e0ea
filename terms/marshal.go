package terms

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// serializedAllocator is the wire form of an Allocator. byBase is omitted
// and rebuilt on load.
type serializedAllocator struct {
	Top       uint               `cbor:"1,keyasint"`
	ByFeature map[FeatureKey]uint `cbor:"2,keyasint"`
	Free      []uint             `cbor:"3,keyasint"`
}

// ToBytes serializes the allocator so a saved document keeps its variable
// identities. The encoding is deterministic.
func (a *Allocator) ToBytes() ([]byte, error) {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, err
	}

	free := make([]uint, len(a.free))
	copy(free, a.free)

	return enc.Marshal(serializedAllocator{
		Top:       a.top,
		ByFeature: a.byFeature,
		Free:      free,
	})
}

// FromBytes restores an allocator serialized with ToBytes, replacing the
// receiver's state.
func (a *Allocator) FromBytes(data []byte) error {
	var s serializedAllocator
	if err := cbor.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding allocator: %w", err)
	}

	a.top = s.Top
	a.free = s.Free
	a.byFeature = make(map[FeatureKey]uint, len(s.ByFeature))
	a.byBase = make(map[uint]FeatureKey, len(s.ByFeature))
	for fk, base := range s.ByFeature {
		if fk == 0 {
			return fmt.Errorf("invalid feature key for base %d", base)
		}
		if base >= a.top {
			return fmt.Errorf("base %d past allocation top %d", base, a.top)
		}
		a.byFeature[fk] = base
		a.byBase[base] = fk
	}
	if a.free == nil {
		a.free = []uint{}
	}
	return nil
}
