package expr

import (
	"encoding/binary"
	"hash/fnv"
)

// Hash identifies an expression by its structure. Two expressions have the
// same hash exactly when they are structurally equal, up to collisions of the
// underlying 64-bit FNV-1a hash.
type Hash uint64

// Hash returns the structural hash of the expression.
func (e *Expression) Hash() Hash {
	h := fnv.New64a()
	e.hashInto(h)
	return Hash(h.Sum64())
}

type hashWriter interface {
	Write(p []byte) (int, error)
}

func (e *Expression) hashInto(h hashWriter) {
	var buf [9]byte
	buf[0] = byte(e.op)
	h.Write(buf[:1])

	switch e.op {
	case OpVariable:
		h.Write([]byte(e.v))
	case OpSubstitution:
		h.Write([]byte(e.v))
		binary.LittleEndian.PutUint64(buf[1:], uint64(e.subHash))
		h.Write(buf[1:])
	case OpInteger:
		h.Write([]byte{byte(e.i.Sign() + 1)})
		h.Write(e.i.Bytes())
	case OpRational:
		if e.asFraction {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
		h.Write([]byte{byte(e.r.Sign() + 1)})
		h.Write(e.r.Num().Bytes())
		h.Write([]byte{'/'})
		h.Write(e.r.Denom().Bytes())
	case OpSqrt:
		if e.plusMinus {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	}

	if e.a != nil {
		e.a.hashInto(h)
	}
	if e.b != nil {
		e.b.hashInto(h)
	}
}
