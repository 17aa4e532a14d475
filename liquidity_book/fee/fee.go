// Package fee computes swap and composition fees.
//
// Fees are expressed either in basis points (FeeAmount, SplitFees) or, on the
// swap path, in 1e18 precision where 1e18 is 100%.
package fee

import (
	"fmt"

	"github.com/holiman/uint256"
	"lukechampine.com/uint128"

	lbmath "github.com/krazyTry/liquidity-book-go/liquidity_book/math"
	"github.com/krazyTry/liquidity-book-go/liquidity_book/shared"
)

type Split struct {
	Total    uint128.Uint128
	Protocol uint128.Uint128
	LP       uint128.Uint128
}

// FeeAmount returns ceil(amount * totalFeeBps / 10000).
func FeeAmount(amount uint128.Uint128, totalFeeBps uint64) (uint128.Uint128, error) {
	if totalFeeBps > shared.BasisPointMax {
		return uint128.Zero, fmt.Errorf("%w: %d bps", shared.ErrFeeTooLarge, totalFeeBps)
	}
	fee, err := lbmath.MulDivRoundUp(lbmath.FromUint128(amount), uint256.NewInt(totalFeeBps), shared.BasisPointMaxU)
	if err != nil {
		return uint128.Zero, err
	}
	return lbmath.ToUint128(fee)
}

// SplitFees gives protocolShare basis points of feeAmount to the protocol, rounded down,
// and the remainder to liquidity providers.
func SplitFees(feeAmount uint128.Uint128, protocolShare uint16) (Split, error) {
	protocol, err := GetProtocolFeeAmount(feeAmount, protocolShare)
	if err != nil {
		return Split{}, err
	}
	return Split{Total: feeAmount, Protocol: protocol, LP: feeAmount.Sub(protocol)}, nil
}

// VerifyFee fails when totalFee exceeds 10% in 1e18 precision.
func VerifyFee(totalFee *uint256.Int) error {
	if totalFee.GtUint64(shared.MaxFee) {
		return fmt.Errorf("%w: %s", shared.ErrFeeTooLarge, totalFee.Dec())
	}
	return nil
}

// GetFeeAmountFrom returns the fee included in amountWithFees: ceil(amountWithFees * totalFee / 1e18).
func GetFeeAmountFrom(amountWithFees uint128.Uint128, totalFee *uint256.Int) (uint128.Uint128, error) {
	if err := VerifyFee(totalFee); err != nil {
		return uint128.Zero, err
	}
	fee, err := lbmath.MulDivRoundUp(lbmath.FromUint128(amountWithFees), totalFee, shared.PrecisionU)
	if err != nil {
		return uint128.Zero, err
	}
	return lbmath.ToUint128(fee)
}

// GetFeeAmount returns the fee to add to amount: ceil(amount * totalFee / (1e18 - totalFee)).
func GetFeeAmount(amount uint128.Uint128, totalFee *uint256.Int) (uint128.Uint128, error) {
	if err := VerifyFee(totalFee); err != nil {
		return uint128.Zero, err
	}
	denominator := new(uint256.Int).Sub(shared.PrecisionU, totalFee)
	fee, err := lbmath.MulDivRoundUp(lbmath.FromUint128(amount), totalFee, denominator)
	if err != nil {
		return uint128.Zero, err
	}
	return lbmath.ToUint128(fee)
}

// GetCompositionFee returns the fee charged on the implicit swap of a deposit that changes the
// active bin's composition: amountWithFees * totalFee * (totalFee + 1e18) / 1e36.
func GetCompositionFee(amountWithFees uint128.Uint128, totalFee *uint256.Int) (uint128.Uint128, error) {
	if err := VerifyFee(totalFee); err != nil {
		return uint128.Zero, err
	}
	factor := new(uint256.Int).Add(totalFee, shared.PrecisionU)
	factor.Mul(factor, totalFee)
	fee, err := lbmath.MulDivRoundDown(lbmath.FromUint128(amountWithFees), factor, shared.SquaredPrecision)
	if err != nil {
		return uint128.Zero, err
	}
	return lbmath.ToUint128(fee)
}

// GetProtocolFeeAmount returns floor(feeAmount * protocolShare / 10000).
func GetProtocolFeeAmount(feeAmount uint128.Uint128, protocolShare uint16) (uint128.Uint128, error) {
	if protocolShare > shared.BasisPointMax {
		return uint128.Zero, fmt.Errorf("%w: %d", shared.ErrMultiplierTooLarge, protocolShare)
	}
	fee, err := lbmath.MulDivRoundDown(lbmath.FromUint128(feeAmount), uint256.NewInt(uint64(protocolShare)), shared.BasisPointMaxU)
	if err != nil {
		return uint128.Zero, err
	}
	return lbmath.ToUint128(fee)
}

// ToBasisPoints converts a 1e18 precision fee to basis points, rounding down.
func ToBasisPoints(totalFee *uint256.Int) uint64 {
	return new(uint256.Int).Div(totalFee, uint256.NewInt(shared.Precision/shared.BasisPointMax)).Uint64()
}
