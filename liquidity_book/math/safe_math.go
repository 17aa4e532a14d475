package math

import (
	"errors"

	"github.com/holiman/uint256"
	"lukechampine.com/uint128"

	"github.com/krazyTry/liquidity-book-go/liquidity_book/shared"
)

var (
	ErrSubtractionOverflow = errors.New("SafeMath: subtraction overflow")
	ErrAdditionOverflow    = errors.New("SafeMath: addition overflow")
)

func SafeAdd(a, b *uint256.Int) (*uint256.Int, error) {
	sum, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, ErrAdditionOverflow
	}
	return sum, nil
}

func SafeSub(a, b *uint256.Int) (*uint256.Int, error) {
	if b.Gt(a) {
		return nil, ErrSubtractionOverflow
	}
	return new(uint256.Int).Sub(a, b), nil
}

// ToUint128 narrows x, failing when it does not fit 128 bits.
func ToUint128(x *uint256.Int) (uint128.Uint128, error) {
	if x.Gt(shared.MaxU128) {
		return uint128.Zero, shared.ErrArithmeticOverflow
	}
	return uint128.New(x[0], x[1]), nil
}

// FromUint128 widens x.
func FromUint128(x uint128.Uint128) *uint256.Int {
	return &uint256.Int{x.Lo, x.Hi, 0, 0}
}

// Min128 returns the smaller of x and y.
func Min128(x, y uint128.Uint128) uint128.Uint128 {
	if x.Cmp(y) < 0 {
		return x
	}
	return y
}
