// Package encoded is the bit-field codec used by every packed storage word.
//
// A Word is a 256 bit value stored little-endian. Set and Decode are the raw
// primitives and truncate values wider than their mask. The typed setters
// check the width and return shared.ErrFieldOverflow instead.
package encoded

import (
	"encoding/binary"
	"fmt"

	"github.com/holiman/uint256"
	"lukechampine.com/uint128"

	"github.com/krazyTry/liquidity-book-go/liquidity_book/shared"
)

type Word [32]byte

var (
	MaskUint1   = Mask(1)
	MaskUint8   = Mask(8)
	MaskUint12  = Mask(12)
	MaskUint14  = Mask(14)
	MaskUint16  = Mask(16)
	MaskUint20  = Mask(20)
	MaskUint24  = Mask(24)
	MaskUint40  = Mask(40)
	MaskUint64  = Mask(64)
	MaskUint128 = Mask(128)
)

// Mask returns 2^bits - 1.
func Mask(bits uint) *uint256.Int {
	if bits >= 256 {
		return new(uint256.Int).Set(shared.MaxU256)
	}
	m := new(uint256.Int).Lsh(uint256.NewInt(1), bits)
	return m.Sub(m, uint256.NewInt(1))
}

func FromUint256(x *uint256.Int) Word {
	var w Word
	for i, limb := range x {
		binary.LittleEndian.PutUint64(w[i*8:], limb)
	}
	return w
}

func (w Word) Uint256() *uint256.Int {
	var x uint256.Int
	for i := range x {
		x[i] = binary.LittleEndian.Uint64(w[i*8:])
	}
	return &x
}

func (w Word) IsZero() bool {
	return w == Word{}
}

func (w Word) String() string {
	return fmt.Sprintf("%#x", w.Uint256().ToBig())
}

// Set clears mask<<offset in word and writes (value & mask) << offset.
func Set(word Word, value, mask *uint256.Int, offset uint) Word {
	x := word.Uint256()
	field := new(uint256.Int).Lsh(mask, offset)
	x.And(x, field.Not(field))

	v := new(uint256.Int).And(value, mask)
	x.Or(x, v.Lsh(v, offset))
	return FromUint256(x)
}

// Decode returns (word >> offset) & mask.
func Decode(word Word, mask *uint256.Int, offset uint) *uint256.Int {
	x := word.Uint256()
	x.Rsh(x, offset)
	return x.And(x, mask)
}

// SetChecked is Set with a width check.
func SetChecked(word Word, value, mask *uint256.Int, offset uint) (Word, error) {
	if value.Gt(mask) {
		return word, fmt.Errorf("%w: %s > %s at offset %d", shared.ErrFieldOverflow, value.Dec(), mask.Dec(), offset)
	}
	return Set(word, value, mask, offset), nil
}

func (w *Word) SetBool(b bool, offset uint) {
	v := new(uint256.Int)
	if b {
		v.SetOne()
	}
	*w = Set(*w, v, MaskUint1, offset)
}

func (w *Word) SetUint8(v uint8, offset uint) {
	*w = Set(*w, uint256.NewInt(uint64(v)), MaskUint8, offset)
}

func (w *Word) SetUint12(v uint16, offset uint) error {
	return w.setUint(uint64(v), MaskUint12, offset)
}

func (w *Word) SetUint14(v uint16, offset uint) error {
	return w.setUint(uint64(v), MaskUint14, offset)
}

func (w *Word) SetUint16(v uint16, offset uint) {
	*w = Set(*w, uint256.NewInt(uint64(v)), MaskUint16, offset)
}

func (w *Word) SetUint20(v uint32, offset uint) error {
	return w.setUint(uint64(v), MaskUint20, offset)
}

func (w *Word) SetUint24(v uint32, offset uint) error {
	return w.setUint(uint64(v), MaskUint24, offset)
}

func (w *Word) SetUint40(v uint64, offset uint) error {
	return w.setUint(v, MaskUint40, offset)
}

func (w *Word) SetUint64(v uint64, offset uint) {
	*w = Set(*w, uint256.NewInt(v), MaskUint64, offset)
}

func (w *Word) SetUint128(v uint128.Uint128, offset uint) {
	*w = Set(*w, &uint256.Int{v.Lo, v.Hi, 0, 0}, MaskUint128, offset)
}

func (w *Word) setUint(v uint64, mask *uint256.Int, offset uint) error {
	next, err := SetChecked(*w, uint256.NewInt(v), mask, offset)
	if err != nil {
		return err
	}
	*w = next
	return nil
}

func (w Word) DecodeBool(offset uint) bool {
	return !Decode(w, MaskUint1, offset).IsZero()
}

func (w Word) DecodeUint8(offset uint) uint8 {
	return uint8(Decode(w, MaskUint8, offset).Uint64())
}

func (w Word) DecodeUint12(offset uint) uint16 {
	return uint16(Decode(w, MaskUint12, offset).Uint64())
}

func (w Word) DecodeUint14(offset uint) uint16 {
	return uint16(Decode(w, MaskUint14, offset).Uint64())
}

func (w Word) DecodeUint16(offset uint) uint16 {
	return uint16(Decode(w, MaskUint16, offset).Uint64())
}

func (w Word) DecodeUint20(offset uint) uint32 {
	return uint32(Decode(w, MaskUint20, offset).Uint64())
}

func (w Word) DecodeUint24(offset uint) uint32 {
	return uint32(Decode(w, MaskUint24, offset).Uint64())
}

func (w Word) DecodeUint40(offset uint) uint64 {
	return Decode(w, MaskUint40, offset).Uint64()
}

func (w Word) DecodeUint64(offset uint) uint64 {
	return Decode(w, MaskUint64, offset).Uint64()
}

func (w Word) DecodeUint128(offset uint) uint128.Uint128 {
	x := Decode(w, MaskUint128, offset)
	return uint128.New(x[0], x[1])
}
