// Package bin holds the per-bin math: how much a bin can absorb in a swap,
// how liquidity is valued at a bin's price and how shares map to reserves.
package bin

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"lukechampine.com/uint128"

	"github.com/krazyTry/liquidity-book-go/liquidity_book/fee"
	lbmath "github.com/krazyTry/liquidity-book-go/liquidity_book/math"
	"github.com/krazyTry/liquidity-book-go/liquidity_book/math/packed"
	"github.com/krazyTry/liquidity-book-go/liquidity_book/pair_parameters"
	"github.com/krazyTry/liquidity-book-go/liquidity_book/price"
	"github.com/krazyTry/liquidity-book-go/liquidity_book/shared"
)

var (
	ErrCompositionFactorFlawed = errors.New("bin: composition factor flawed")
	ErrLiquidityOverflow       = errors.New("bin: liquidity overflow")
)

// Amounts is the outcome of swapping against a single bin.
type Amounts struct {
	InWithFees packed.Uint128Pair
	Out        packed.Uint128Pair
	Fees       packed.Uint128Pair
}

// IsEmpty reports whether the X (isX) or Y reserve of the bin is zero.
func IsEmpty(reserves packed.Uint128Pair, isX bool) bool {
	if isX {
		return reserves.DecodeX().IsZero()
	}
	return reserves.DecodeY().IsZero()
}

// GetAmounts returns the input consumed (fees included), the output produced and the fees
// charged when swapping amountsInLeft against the bin at activeId. The bin absorbs at most
// what is needed to drain its output reserve.
func GetAmounts(
	reserves packed.Uint128Pair,
	params pair_parameters.PairParameters,
	binStep uint16,
	swapForY bool,
	activeId uint32,
	amountsInLeft packed.Uint128Pair,
) (Amounts, error) {
	p, err := price.GetPriceFromId(activeId, binStep)
	if err != nil {
		return Amounts{}, err
	}

	reserveOut := reserves.DecodeAlt(!swapForY)
	reserveOut256 := lbmath.FromUint128(reserveOut)

	var maxIn *uint256.Int
	if swapForY {
		maxIn, err = lbmath.ShiftDivRoundUp(reserveOut256, shared.ScaleOffset, p)
	} else {
		maxIn, err = lbmath.MulShiftRoundUp(reserveOut256, p, shared.ScaleOffset)
	}
	if err != nil {
		return Amounts{}, err
	}

	totalFee := params.GetTotalFee(binStep)
	amountIn := amountsInLeft.DecodeAlt(swapForY)

	// Draining the bin is only possible when its fee-inclusive cost fits 128 bits.
	var maxFee, maxAmountInWithFees uint128.Uint128
	drain := false
	if maxAmountIn, narrowErr := lbmath.ToUint128(maxIn); narrowErr == nil {
		maxFee, err = fee.GetFeeAmount(maxAmountIn, totalFee)
		if err != nil {
			return Amounts{}, err
		}
		withFees := new(uint256.Int).Add(maxIn, lbmath.FromUint128(maxFee))
		if w, narrowErr := lbmath.ToUint128(withFees); narrowErr == nil {
			maxAmountInWithFees = w
			drain = amountIn.Cmp(w) >= 0
		}
	}

	var feeAmount, amountOut uint128.Uint128
	if drain {
		feeAmount = maxFee
		amountIn = maxAmountInWithFees
		amountOut = reserveOut
	} else {
		feeAmount, err = fee.GetFeeAmountFrom(amountIn, totalFee)
		if err != nil {
			return Amounts{}, err
		}
		net := lbmath.FromUint128(amountIn.Sub(feeAmount))

		var out *uint256.Int
		if swapForY {
			out, err = lbmath.MulShiftRoundDown(net, p, shared.ScaleOffset)
		} else {
			out, err = lbmath.ShiftDivRoundDown(net, shared.ScaleOffset, p)
		}
		if err != nil {
			return Amounts{}, err
		}
		amountOut = minU128(out, reserveOut)
	}

	return Amounts{
		InWithFees: packed.EncodeAlt(amountIn, swapForY),
		Out:        packed.EncodeAlt(amountOut, !swapForY),
		Fees:       packed.EncodeAlt(feeAmount, swapForY),
	}, nil
}

// GetLiquidity values amounts at price: price * x + y << 128.
func GetLiquidity(amounts packed.Uint128Pair, p *uint256.Int) (*uint256.Int, error) {
	x, y := amounts.Decode()

	liquidity := new(uint256.Int)
	if !x.IsZero() {
		var overflow bool
		liquidity, overflow = new(uint256.Int).MulOverflow(p, lbmath.FromUint128(x))
		if overflow {
			return nil, ErrLiquidityOverflow
		}
	}
	if !y.IsZero() {
		shifted := new(uint256.Int).Lsh(lbmath.FromUint128(y), shared.ScaleOffset)
		var overflow bool
		liquidity, overflow = new(uint256.Int).AddOverflow(liquidity, shifted)
		if overflow {
			return nil, ErrLiquidityOverflow
		}
	}
	return liquidity, nil
}

// GetAmountOutOfBin returns the reserves owed for burning amountToBurn of totalSupply shares.
func GetAmountOutOfBin(reserves packed.Uint128Pair, amountToBurn, totalSupply *uint256.Int) (packed.Uint128Pair, error) {
	x, y := reserves.Decode()

	share := func(reserve uint128.Uint128) (uint128.Uint128, error) {
		if reserve.IsZero() {
			return uint128.Zero, nil
		}
		out, err := lbmath.MulDivRoundDown(amountToBurn, lbmath.FromUint128(reserve), totalSupply)
		if err != nil {
			return uint128.Zero, err
		}
		return lbmath.ToUint128(out)
	}

	outX, err := share(x)
	if err != nil {
		return packed.Uint128Pair{}, err
	}
	outY, err := share(y)
	if err != nil {
		return packed.Uint128Pair{}, err
	}
	return packed.Encode(outX, outY), nil
}

// GetSharesAndEffectiveAmountsIn returns the shares minted for amountsIn and the part of
// amountsIn actually needed for them. Any excess is given back from Y first.
func GetSharesAndEffectiveAmountsIn(
	reserves, amountsIn packed.Uint128Pair,
	p, totalSupply *uint256.Int,
) (*uint256.Int, packed.Uint128Pair, error) {
	userLiquidity, err := GetLiquidity(amountsIn, p)
	if err != nil {
		return nil, amountsIn, err
	}
	if totalSupply.IsZero() || userLiquidity.IsZero() {
		return userLiquidity, amountsIn, nil
	}

	binLiquidity, err := GetLiquidity(reserves, p)
	if err != nil {
		return nil, amountsIn, err
	}
	if binLiquidity.IsZero() {
		return userLiquidity, amountsIn, nil
	}

	shares, err := lbmath.MulDivRoundDown(userLiquidity, totalSupply, binLiquidity)
	if err != nil {
		return nil, amountsIn, err
	}
	effectiveLiquidity, err := lbmath.MulDivRoundUp(shares, binLiquidity, totalSupply)
	if err != nil {
		return nil, amountsIn, err
	}

	if !userLiquidity.Gt(effectiveLiquidity) {
		return shares, amountsIn, nil
	}

	x, y := amountsIn.Decode()
	delta := new(uint256.Int).Sub(userLiquidity, effectiveLiquidity)

	if !delta.Lt(shared.Scale) {
		deltaY := minU128(new(uint256.Int).Rsh(delta, shared.ScaleOffset), y)
		y = y.Sub(deltaY)
		delta.Sub(delta, new(uint256.Int).Lsh(lbmath.FromUint128(deltaY), shared.ScaleOffset))
	}
	if !delta.Lt(p) {
		deltaX := minU128(new(uint256.Int).Div(delta, p), x)
		x = x.Sub(deltaX)
	}

	return shares, packed.Encode(x, y), nil
}

// VerifyAmounts checks that bins below the active id only receive Y and bins above only X.
func VerifyAmounts(amounts packed.Uint128Pair, activeId, id uint32) error {
	if (id < activeId && !amounts.DecodeX().IsZero()) || (id > activeId && !amounts.DecodeY().IsZero()) {
		return fmt.Errorf("%w: id %d", ErrCompositionFactorFlawed, id)
	}
	return nil
}

// GetCompositionFees returns the fee charged when a deposit into the active bin changes its
// composition, as it amounts to an implicit swap.
func GetCompositionFees(
	reserves packed.Uint128Pair,
	params pair_parameters.PairParameters,
	binStep uint16,
	amountsIn packed.Uint128Pair,
	totalSupply, shares *uint256.Int,
) (packed.Uint128Pair, error) {
	if shares.IsZero() {
		return packed.Uint128Pair{}, nil
	}

	amountX, amountY := amountsIn.Decode()

	after, err := reserves.Add(amountsIn)
	if err != nil {
		return packed.Uint128Pair{}, err
	}
	received, err := GetAmountOutOfBin(after, shares, new(uint256.Int).Add(totalSupply, shares))
	if err != nil {
		return packed.Uint128Pair{}, err
	}
	receivedX, receivedY := received.Decode()

	totalFee := params.GetTotalFee(binStep)
	switch {
	case receivedX.Cmp(amountX) > 0:
		if amountY.Cmp(receivedY) < 0 {
			return packed.Uint128Pair{}, fmt.Errorf("composition fee y: %w", shared.ErrArithmeticUnderflow)
		}
		feeY, err := fee.GetCompositionFee(amountY.Sub(receivedY), totalFee)
		if err != nil {
			return packed.Uint128Pair{}, err
		}
		return packed.EncodeSecond(feeY), nil
	case receivedY.Cmp(amountY) > 0:
		if amountX.Cmp(receivedX) < 0 {
			return packed.Uint128Pair{}, fmt.Errorf("composition fee x: %w", shared.ErrArithmeticUnderflow)
		}
		feeX, err := fee.GetCompositionFee(amountX.Sub(receivedX), totalFee)
		if err != nil {
			return packed.Uint128Pair{}, err
		}
		return packed.EncodeFirst(feeX), nil
	}
	return packed.Uint128Pair{}, nil
}

// minU128 returns min(x, bound), which always fits 128 bits.
func minU128(x *uint256.Int, bound uint128.Uint128) uint128.Uint128 {
	if x.Cmp(lbmath.FromUint128(bound)) >= 0 {
		return bound
	}
	return uint128.New(x[0], x[1])
}
