package math

import (
	"github.com/holiman/uint256"

	"github.com/krazyTry/liquidity-book-go/liquidity_book/shared"
)

// MaxExponent bounds |y| in Pow.
const MaxExponent = 0x100000

// Pow returns x^y where x is a 128.128 fixed point number and y a signed integer.
// Bases above 1 are inverted first so every squaring stays below 2^256.
func Pow(x *uint256.Int, y int32) (*uint256.Int, error) {
	if y == 0 {
		return new(uint256.Int).Set(shared.Scale), nil
	}

	invert := y < 0
	absY := int64(y)
	if absY < 0 {
		absY = -absY
	}
	if absY >= MaxExponent {
		return nil, shared.ErrPowUnderflow
	}

	result := new(uint256.Int).Set(shared.Scale)
	squared := new(uint256.Int).Set(x)
	if squared.Gt(shared.MaxU128) {
		squared.Div(shared.MaxU256, squared)
		invert = !invert
	}

	for bit := 0; bit < 20; bit++ {
		if absY&(1<<bit) != 0 {
			result.Mul(result, squared)
			result.Rsh(result, shared.ScaleOffset)
		}
		squared.Mul(squared, squared)
		squared.Rsh(squared, shared.ScaleOffset)
	}

	if result.IsZero() {
		return nil, shared.ErrPowUnderflow
	}
	if invert {
		result.Div(shared.MaxU256, result)
	}
	return result, nil
}
