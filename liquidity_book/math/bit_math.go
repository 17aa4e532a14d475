package math

import (
	"math/bits"

	"github.com/holiman/uint256"
)

// NoBit is returned by the closest bit searches when no bit is set.
const NoBit = -1

// MostSignificantBit returns the index of the highest set bit of x, or 0 if x is 0.
func MostSignificantBit(x *uint256.Int) uint8 {
	if x.IsZero() {
		return 0
	}
	return uint8(x.BitLen() - 1)
}

// LeastSignificantBit returns the index of the lowest set bit of x, or 255 if x is 0.
func LeastSignificantBit(x *uint256.Int) uint8 {
	for i, limb := range x {
		if limb != 0 {
			return uint8(i*64 + bits.TrailingZeros64(limb))
		}
	}
	return 255
}

// ClosestBitRight returns the index of the closest set bit of x at or below bit.
func ClosestBitRight(x *uint256.Int, bit uint8) int {
	shift := 255 - uint(bit)
	shifted := new(uint256.Int).Lsh(x, shift)
	if shifted.IsZero() {
		return NoBit
	}
	return int(MostSignificantBit(shifted)) - int(shift)
}

// ClosestBitLeft returns the index of the closest set bit of x at or above bit.
func ClosestBitLeft(x *uint256.Int, bit uint8) int {
	shifted := new(uint256.Int).Rsh(x, uint(bit))
	if shifted.IsZero() {
		return NoBit
	}
	return int(LeastSignificantBit(shifted)) + int(bit)
}
