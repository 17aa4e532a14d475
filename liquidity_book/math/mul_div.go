package math

import (
	"github.com/holiman/uint256"

	"github.com/krazyTry/liquidity-book-go/liquidity_book/shared"
)

var one = uint256.NewInt(1)

// MulDiv dispatches to MulDivRoundUp or MulDivRoundDown.
func MulDiv(x, y, denominator *uint256.Int, rounding shared.Rounding) (*uint256.Int, error) {
	if rounding == shared.RoundingUp {
		return MulDivRoundUp(x, y, denominator)
	}
	return MulDivRoundDown(x, y, denominator)
}

// MulDivRoundDown calculates floor(x*y/denominator) with full precision.
// The intermediate product is kept in two 256 bit limbs, so x*y may exceed 256 bits as long as the
// quotient does not.
func MulDivRoundDown(x, y, denominator *uint256.Int) (*uint256.Int, error) {
	prod0, prod1 := getMulProds(x, y)
	return getEndOfDivRoundDown(x, y, denominator, prod0, prod1)
}

// MulDivRoundUp calculates ceil(x*y/denominator) with full precision.
func MulDivRoundUp(x, y, denominator *uint256.Int) (*uint256.Int, error) {
	result, err := MulDivRoundDown(x, y, denominator)
	if err != nil {
		return nil, err
	}
	if new(uint256.Int).MulMod(x, y, denominator).IsZero() {
		return result, nil
	}
	return increment(result, shared.ErrMulDivOverflow)
}

// MulShiftRoundDown calculates floor(x*y / 2^offset) with full precision.
func MulShiftRoundDown(x, y *uint256.Int, offset uint8) (*uint256.Int, error) {
	prod0, prod1 := getMulProds(x, y)

	result := new(uint256.Int)
	if !prod0.IsZero() {
		result.Rsh(prod0, uint(offset))
	}
	if !prod1.IsZero() {
		// the high limb must fit in the bits freed by the shift
		if prod1.Cmp(new(uint256.Int).Lsh(one, uint(offset))) >= 0 {
			return nil, shared.ErrMulShiftOverflow
		}
		result.Add(result, new(uint256.Int).Lsh(prod1, 256-uint(offset)))
	}
	return result, nil
}

// MulShiftRoundUp calculates ceil(x*y / 2^offset) with full precision.
func MulShiftRoundUp(x, y *uint256.Int, offset uint8) (*uint256.Int, error) {
	result, err := MulShiftRoundDown(x, y, offset)
	if err != nil {
		return nil, err
	}
	if new(uint256.Int).MulMod(x, y, new(uint256.Int).Lsh(one, uint(offset))).IsZero() {
		return result, nil
	}
	return increment(result, shared.ErrMulShiftOverflow)
}

// ShiftDivRoundDown calculates floor((x << offset) / denominator) with full precision.
func ShiftDivRoundDown(x *uint256.Int, offset uint8, denominator *uint256.Int) (*uint256.Int, error) {
	prod0 := new(uint256.Int).Lsh(x, uint(offset))
	prod1 := new(uint256.Int).Rsh(x, 256-uint(offset))
	y := new(uint256.Int).Lsh(one, uint(offset))
	return getEndOfDivRoundDown(x, y, denominator, prod0, prod1)
}

// ShiftDivRoundUp calculates ceil((x << offset) / denominator) with full precision.
func ShiftDivRoundUp(x *uint256.Int, offset uint8, denominator *uint256.Int) (*uint256.Int, error) {
	result, err := ShiftDivRoundDown(x, offset, denominator)
	if err != nil {
		return nil, err
	}
	y := new(uint256.Int).Lsh(one, uint(offset))
	if new(uint256.Int).MulMod(x, y, denominator).IsZero() {
		return result, nil
	}
	return increment(result, shared.ErrMulDivOverflow)
}

// getMulProds returns the 512 bit product of x and y as (prod0, prod1) with
// x*y = prod1 * 2^256 + prod0.
func getMulProds(x, y *uint256.Int) (prod0, prod1 *uint256.Int) {
	mm := new(uint256.Int).MulMod(x, y, shared.MaxU256)
	prod0 = new(uint256.Int).Mul(x, y)
	prod1 = new(uint256.Int).Sub(mm, prod0)
	if mm.Lt(prod0) {
		prod1.Sub(prod1, one)
	}
	return prod0, prod1
}

// getEndOfDivRoundDown divides the 512 bit value (prod1, prod0) by denominator.
// x and y are only used to compute the remainder.
func getEndOfDivRoundDown(x, y, denominator, prod0, prod1 *uint256.Int) (*uint256.Int, error) {
	if denominator.IsZero() {
		return nil, shared.ErrDivisionByZero
	}
	if prod1.IsZero() {
		return new(uint256.Int).Div(prod0, denominator), nil
	}
	if prod1.Cmp(denominator) >= 0 {
		return nil, shared.ErrMulDivOverflow
	}

	p0 := new(uint256.Int).Set(prod0)
	p1 := new(uint256.Int).Set(prod1)
	d := new(uint256.Int).Set(denominator)

	// make the division exact by subtracting the remainder from the 512 bit number
	remainder := new(uint256.Int).MulMod(x, y, d)
	if remainder.Gt(p0) {
		p1.Sub(p1, one)
	}
	p0.Sub(p0, remainder)

	// factor powers of two out of the denominator
	lpotdod := new(uint256.Int).And(d, new(uint256.Int).Neg(d))
	d.Div(d, lpotdod)
	p0.Div(p0, lpotdod)

	// flip lpotdod into 2^256 / lpotdod, then shift in bits from prod1
	flip := new(uint256.Int).Neg(lpotdod)
	flip.Div(flip, lpotdod)
	flip.Add(flip, one)
	p0.Or(p0, new(uint256.Int).Mul(p1, flip))

	// inverse of the odd denominator mod 2^256, correct to 4 bits then doubled six times
	inverse := new(uint256.Int).Mul(d, uint256.NewInt(3))
	inverse.Xor(inverse, uint256.NewInt(2))
	two := uint256.NewInt(2)
	for i := 0; i < 6; i++ {
		step := new(uint256.Int).Mul(d, inverse)
		step.Sub(two, step)
		inverse.Mul(inverse, step)
	}

	return p0.Mul(p0, inverse), nil
}

func increment(x *uint256.Int, overflow error) (*uint256.Int, error) {
	if x.Eq(shared.MaxU256) {
		return nil, overflow
	}
	return new(uint256.Int).Add(x, one), nil
}
