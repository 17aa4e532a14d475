// Package price converts between bin ids and 128.128 fixed point prices.
//
// price(id) = (1 + binStep/10000) ^ (id - 2^23)
package price

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"github.com/krazyTry/liquidity-book-go/decimal_math"
	lbmath "github.com/krazyTry/liquidity-book-go/liquidity_book/math"
	"github.com/krazyTry/liquidity-book-go/liquidity_book/shared"
)

// MinId and MaxId bound the ids whose exponent Pow accepts.
const (
	MinId = shared.RealIdShift - lbmath.MaxExponent + 1
	MaxId = shared.RealIdShift + lbmath.MaxExponent - 1
)

// MinPrice and MaxPrice (2^-96 and 2^96 in 128.128) bound the price of a valid bin.
// Within them adjacent bins never share a price, so ids and prices map one to one.
var (
	MinPrice = new(uint256.Int).Lsh(uint256.NewInt(1), 32)
	MaxPrice = new(uint256.Int).Lsh(uint256.NewInt(1), 224)
)

// GetBase returns 1 + binStep/10000 in 128.128.
func GetBase(binStep uint16) *uint256.Int {
	step := new(uint256.Int).Lsh(uint256.NewInt(uint64(binStep)), shared.ScaleOffset)
	step.Div(step, shared.BasisPointMaxU)
	return step.Add(step, shared.Scale)
}

// GetExponent returns id - 2^23.
func GetExponent(id uint32) int32 {
	return int32(id) - shared.RealIdShift
}

func GetPriceFromId(id uint32, binStep uint16) (*uint256.Int, error) {
	if id > shared.MaxBinId {
		return nil, fmt.Errorf("%w: %d", shared.ErrInvalidBinId, id)
	}
	if binStep == 0 {
		return nil, shared.ErrInvalidBinStep
	}
	p, err := lbmath.Pow(GetBase(binStep), GetExponent(id))
	if err != nil {
		return nil, fmt.Errorf("price of bin %d: %w", id, err)
	}
	if p.Lt(MinPrice) || p.Gt(MaxPrice) {
		return nil, fmt.Errorf("%w: %d is outside the price range of bin step %d", shared.ErrInvalidBinId, id, binStep)
	}
	return p, nil
}

// GetIdFromPrice returns the largest valid id whose price is at most price.
// Prices of valid ids are strictly increasing, so a binary search finds it
// and round-trips GetPriceFromId exactly.
func GetIdFromPrice(price *uint256.Int, binStep uint16) (uint32, error) {
	if binStep == 0 {
		return 0, shared.ErrInvalidBinStep
	}
	if price.Lt(MinPrice) || price.Gt(MaxPrice) {
		return 0, fmt.Errorf("%w: %s out of range", shared.ErrInvalidPrice, price.Dec())
	}

	lo, hi := uint32(MinId), uint32(MaxId)
	found := false
	for lo <= hi {
		mid := lo + (hi-lo)/2
		cmp, err := comparePrice(mid, binStep, price)
		if err != nil {
			return 0, err
		}
		if cmp <= 0 {
			found = true
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	if !found {
		return 0, fmt.Errorf("%w: %s below the lowest bin", shared.ErrInvalidPrice, price.Dec())
	}
	// lo is one past the last id priced at or below price
	id := lo - 1
	if _, err := GetPriceFromId(id, binStep); err != nil {
		return 0, fmt.Errorf("%w: %s below the lowest bin", shared.ErrInvalidPrice, price.Dec())
	}
	return id, nil
}

// comparePrice compares the price of id with target. Ids whose price
// underflows are treated as below (id < 2^23) or above (id > 2^23) any target.
func comparePrice(id uint32, binStep uint16, target *uint256.Int) (int, error) {
	p, err := lbmath.Pow(GetBase(binStep), GetExponent(id))
	if err != nil {
		if id < shared.RealIdShift {
			return -1, nil
		}
		return 1, nil
	}
	return p.Cmp(target), nil
}

// ConvertDecimalPriceTo128x128 converts a price with 18 decimals to 128.128.
func ConvertDecimalPriceTo128x128(price *uint256.Int) (*uint256.Int, error) {
	return lbmath.ShiftDivRoundDown(price, shared.ScaleOffset, shared.PrecisionU)
}

// Convert128x128PriceToDecimal converts a 128.128 price to 18 decimals.
func Convert128x128PriceToDecimal(price *uint256.Int) (*uint256.Int, error) {
	return lbmath.MulShiftRoundDown(price, shared.PrecisionU, shared.ScaleOffset)
}

// PriceToDecimal returns the UI price of token X in token Y, adjusted for token decimals.
func PriceToDecimal(price *uint256.Int, decimalsX, decimalsY int32) decimal.Decimal {
	return decimal_math.Q128ToDecimal(price).Shift(decimalsX - decimalsY)
}

// DecimalToPrice is the inverse of PriceToDecimal, rounded down.
func DecimalToPrice(ui decimal.Decimal, decimalsX, decimalsY int32) (*uint256.Int, error) {
	return decimal_math.DecimalToQ128(ui.Shift(decimalsY - decimalsX))
}

// GetPriceFromIdDecimal is GetPriceFromId followed by PriceToDecimal.
func GetPriceFromIdDecimal(id uint32, binStep uint16, decimalsX, decimalsY int32) (decimal.Decimal, error) {
	p, err := GetPriceFromId(id, binStep)
	if err != nil {
		return decimal.Zero, err
	}
	return PriceToDecimal(p, decimalsX, decimalsY), nil
}
