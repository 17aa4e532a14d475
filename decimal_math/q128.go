package decimal_math

import (
	"errors"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// Q128Precision is the number of decimal places kept when leaving 128.128.
const Q128Precision = 40

var (
	ErrNegative = errors.New("decimal_math: negative value")
	ErrOverflow = errors.New("decimal_math: value overflows 256 bits")

	q128 = Lsh(decimal.NewFromInt(1), 128)
)

// Q128ToDecimal converts a 128.128 fixed point number to a decimal.
func Q128ToDecimal(x *uint256.Int) decimal.Decimal {
	if x == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(x.ToBig(), 0).DivRound(q128, Q128Precision)
}

// DecimalToQ128 converts a decimal to 128.128, rounding down.
func DecimalToQ128(d decimal.Decimal) (*uint256.Int, error) {
	if d.IsNegative() {
		return nil, ErrNegative
	}
	v, overflow := uint256.FromBig(d.Mul(q128).Floor().BigInt())
	if overflow {
		return nil, ErrOverflow
	}
	return v, nil
}
