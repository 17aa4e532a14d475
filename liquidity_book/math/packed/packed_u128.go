// Package packed stores a pair of 128 bit amounts in one 256 bit word.
// The first value (x) occupies the low 16 bytes and the second (y) the high
// 16 bytes, both little-endian.
package packed

import (
	"fmt"

	"github.com/holiman/uint256"
	"lukechampine.com/uint128"

	"github.com/krazyTry/liquidity-book-go/liquidity_book/math/encoded"
	"github.com/krazyTry/liquidity-book-go/liquidity_book/shared"
)

type Uint128Pair [32]byte

func Encode(x1, x2 uint128.Uint128) Uint128Pair {
	var p Uint128Pair
	x1.PutBytes(p[:16])
	x2.PutBytes(p[16:])
	return p
}

func EncodeFirst(x1 uint128.Uint128) Uint128Pair {
	return Encode(x1, uint128.Zero)
}

func EncodeSecond(x2 uint128.Uint128) Uint128Pair {
	return Encode(uint128.Zero, x2)
}

// EncodeAlt stores x in the first lane when first is true, otherwise in the second.
func EncodeAlt(x uint128.Uint128, first bool) Uint128Pair {
	if first {
		return EncodeFirst(x)
	}
	return EncodeSecond(x)
}

func FromBytes(b []byte) (Uint128Pair, error) {
	var p Uint128Pair
	if len(b) != len(p) {
		return p, fmt.Errorf("packed: expected %d bytes, got %d", len(p), len(b))
	}
	copy(p[:], b)
	return p, nil
}

func FromWord(w encoded.Word) Uint128Pair {
	return Uint128Pair(w)
}

func (p Uint128Pair) Word() encoded.Word {
	return encoded.Word(p)
}

func (p Uint128Pair) Bytes() []byte {
	return p[:]
}

func (p Uint128Pair) Decode() (uint128.Uint128, uint128.Uint128) {
	return p.DecodeX(), p.DecodeY()
}

func (p Uint128Pair) DecodeX() uint128.Uint128 {
	return uint128.FromBytes(p[:16])
}

func (p Uint128Pair) DecodeY() uint128.Uint128 {
	return uint128.FromBytes(p[16:])
}

// DecodeAlt returns the first lane when first is true, otherwise the second.
func (p Uint128Pair) DecodeAlt(first bool) uint128.Uint128 {
	if first {
		return p.DecodeX()
	}
	return p.DecodeY()
}

func (p Uint128Pair) IsZero() bool {
	return p == Uint128Pair{}
}

func (p Uint128Pair) String() string {
	x, y := p.Decode()
	return fmt.Sprintf("(%s, %s)", x, y)
}

// Add adds q lane-wise. Overflow in either lane fails the whole operation.
func (p Uint128Pair) Add(q Uint128Pair) (Uint128Pair, error) {
	y1, y2 := q.Decode()
	return p.AddLanes(y1, y2)
}

func (p Uint128Pair) AddLanes(y1, y2 uint128.Uint128) (Uint128Pair, error) {
	x1, x2 := p.Decode()

	z1 := x1.AddWrap(y1)
	if z1.Cmp(x1) < 0 {
		return p, fmt.Errorf("packed add x: %w", shared.ErrArithmeticOverflow)
	}
	z2 := x2.AddWrap(y2)
	if z2.Cmp(x2) < 0 {
		return p, fmt.Errorf("packed add y: %w", shared.ErrArithmeticOverflow)
	}
	return Encode(z1, z2), nil
}

// Sub subtracts q lane-wise. Underflow in either lane fails the whole operation.
func (p Uint128Pair) Sub(q Uint128Pair) (Uint128Pair, error) {
	y1, y2 := q.Decode()
	return p.SubLanes(y1, y2)
}

func (p Uint128Pair) SubLanes(y1, y2 uint128.Uint128) (Uint128Pair, error) {
	x1, x2 := p.Decode()

	if x1.Cmp(y1) < 0 {
		return p, fmt.Errorf("packed sub x: %w", shared.ErrArithmeticUnderflow)
	}
	if x2.Cmp(y2) < 0 {
		return p, fmt.Errorf("packed sub y: %w", shared.ErrArithmeticUnderflow)
	}
	return Encode(x1.SubWrap(y1), x2.SubWrap(y2)), nil
}

// Lt reports whether any lane of p is strictly less than the same lane of q.
// This is not an ordering: p.Lt(q) and q.Lt(p) can both be true.
func (p Uint128Pair) Lt(q Uint128Pair) bool {
	x1, x2 := p.Decode()
	y1, y2 := q.Decode()
	return x1.Cmp(y1) < 0 || x2.Cmp(y2) < 0
}

// Gt reports whether any lane of p is strictly greater than the same lane of q.
func (p Uint128Pair) Gt(q Uint128Pair) bool {
	x1, x2 := p.Decode()
	y1, y2 := q.Decode()
	return x1.Cmp(y1) > 0 || x2.Cmp(y2) > 0
}

// ScalarMulDivBasisPointRoundDown returns floor(lane * multiplier / 10000) for both lanes.
func (p Uint128Pair) ScalarMulDivBasisPointRoundDown(multiplier uint64) (Uint128Pair, error) {
	if multiplier == 0 {
		return Uint128Pair{}, nil
	}
	if multiplier > shared.BasisPointMax {
		return p, fmt.Errorf("%w: %d", shared.ErrMultiplierTooLarge, multiplier)
	}

	x1, x2 := p.Decode()
	return Encode(scaleBasisPoints(x1, multiplier), scaleBasisPoints(x2, multiplier)), nil
}

func scaleBasisPoints(x uint128.Uint128, multiplier uint64) uint128.Uint128 {
	v := &uint256.Int{x.Lo, x.Hi, 0, 0}
	v.Mul(v, uint256.NewInt(multiplier))
	v.Div(v, shared.BasisPointMaxU)
	// multiplier <= 10000 keeps the result within 128 bits
	return uint128.New(v[0], v[1])
}
