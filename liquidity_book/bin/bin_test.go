package bin

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"

	"github.com/krazyTry/liquidity-book-go/liquidity_book/math/packed"
	"github.com/krazyTry/liquidity-book-go/liquidity_book/pair_parameters"
	"github.com/krazyTry/liquidity-book-go/liquidity_book/shared"
)

const (
	activeId = shared.RealIdShift
	binStep  = 25
)

func u(v uint64) uint128.Uint128 {
	return uint128.From64(v)
}

func big128(t *testing.T, s string) uint128.Uint128 {
	t.Helper()
	v, err := uint128.FromString(s)
	require.NoError(t, err)
	return v
}

// 5000 * 25 * 1e10 = 0.125%
func testParams(t *testing.T) pair_parameters.PairParameters {
	t.Helper()
	p, err := pair_parameters.New(pair_parameters.StaticFeeParameters{
		BaseFactor:               5000,
		FilterPeriod:             30,
		DecayPeriod:              600,
		ReductionFactor:          5000,
		VariableFeeControl:       40000,
		MaxVolatilityAccumulator: 350000,
	}, activeId)
	require.NoError(t, err)
	return p
}

func TestIsEmpty(t *testing.T) {
	reserves := packed.Encode(uint128.Zero, u(5))
	assert.True(t, IsEmpty(reserves, true))
	assert.False(t, IsEmpty(reserves, false))
}

func TestGetAmounts(t *testing.T) {
	reserves := packed.Encode(u(1000), u(1000))
	params := testParams(t)

	tests := []struct {
		name     string
		params   pair_parameters.PairParameters
		swapForY bool
		amountIn uint64
		wantIn   uint64
		wantOut  uint64
		wantFee  uint64
	}{
		// max in 1000 plus ceil(1000 * f / (1e18 - f)) = 2
		{"drains bin for y", params, true, 5000, 1002, 1000, 2},
		{"drains bin for x", params, false, 5000, 1002, 1000, 2},
		{"exactly max in with fees", params, true, 1002, 1002, 1000, 2},
		{"partial fill", params, true, 500, 500, 499, 1},
		{"no fee", pair_parameters.PairParameters{}, true, 500, 500, 500, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := packed.EncodeAlt(u(tt.amountIn), tt.swapForY)
			got, err := GetAmounts(reserves, tt.params, binStep, tt.swapForY, activeId, in)
			require.NoError(t, err)

			assert.Equal(t, u(tt.wantIn), got.InWithFees.DecodeAlt(tt.swapForY))
			assert.True(t, got.InWithFees.DecodeAlt(!tt.swapForY).IsZero())
			assert.Equal(t, u(tt.wantOut), got.Out.DecodeAlt(!tt.swapForY))
			assert.True(t, got.Out.DecodeAlt(tt.swapForY).IsZero())
			assert.Equal(t, u(tt.wantFee), got.Fees.DecodeAlt(tt.swapForY))
		})
	}
}

func TestGetAmountsLeavesInputForNextBin(t *testing.T) {
	reserves := packed.Encode(u(1000), u(1000))
	in := packed.EncodeFirst(u(5000))

	got, err := GetAmounts(reserves, testParams(t), binStep, true, activeId, in)
	require.NoError(t, err)

	left, err := in.Sub(got.InWithFees)
	require.NoError(t, err)
	assert.Equal(t, u(3998), left.DecodeX())
}

func TestGetAmountsInvalidId(t *testing.T) {
	_, err := GetAmounts(packed.Encode(u(1), u(1)), testParams(t), binStep, true, shared.MaxBinId+1, packed.EncodeFirst(u(1)))
	assert.ErrorIs(t, err, shared.ErrInvalidBinId)
}

// At id 2^23+26000 and step 25 one X costs about 2^94 Y, so draining 2^40 X
// costs more than any 128-bit input.
func TestGetAmountsCostAbove128Bits(t *testing.T) {
	const expensiveId = activeId + 26000
	in := packed.EncodeSecond(uint128.Max)

	got, err := GetAmounts(packed.EncodeFirst(u(1<<40)), testParams(t), binStep, false, expensiveId, in)
	require.NoError(t, err)
	assert.Equal(t, uint128.Max, got.InWithFees.DecodeY())
	assert.Equal(t, big128(t, "425352958651173079329218259289710265"), got.Fees.DecodeY())
	assert.Equal(t, u(21746163029), got.Out.DecodeX())

	// a single X is still affordable and drains the bin
	got, err = GetAmounts(packed.EncodeFirst(u(1)), testParams(t), binStep, false, expensiveId, in)
	require.NoError(t, err)
	assert.Equal(t, big128(t, "15647926784248644196863946420"), got.InWithFees.DecodeY())
	assert.Equal(t, big128(t, "19559908480310805246079934"), got.Fees.DecodeY())
	assert.Equal(t, u(1), got.Out.DecodeX())
}

func TestGetLiquidity(t *testing.T) {
	got, err := GetLiquidity(packed.Encode(u(2), u(3)), shared.Scale)
	require.NoError(t, err)
	assert.True(t, got.Eq(new(uint256.Int).Lsh(uint256.NewInt(5), 128)))

	_, err = GetLiquidity(packed.Encode(u(2), uint128.Zero), shared.MaxU256)
	assert.ErrorIs(t, err, ErrLiquidityOverflow)

	_, err = GetLiquidity(packed.Encode(uint128.Max, uint128.Max), shared.MaxU128)
	assert.ErrorIs(t, err, ErrLiquidityOverflow)
}

func TestGetAmountOutOfBin(t *testing.T) {
	got, err := GetAmountOutOfBin(packed.Encode(u(1000), u(500)), uint256.NewInt(1), uint256.NewInt(4))
	require.NoError(t, err)
	assert.Equal(t, packed.Encode(u(250), u(125)), got)

	_, err = GetAmountOutOfBin(packed.Encode(u(1), u(1)), uint256.NewInt(1), new(uint256.Int))
	assert.ErrorIs(t, err, shared.ErrDivisionByZero)

	// burning more shares than exist cannot pay out above 128 bits
	_, err = GetAmountOutOfBin(packed.EncodeFirst(uint128.Max), uint256.NewInt(2), uint256.NewInt(1))
	assert.ErrorIs(t, err, shared.ErrArithmeticOverflow)
}

func TestGetSharesAndEffectiveAmountsIn(t *testing.T) {
	reserves := packed.Encode(u(1000), u(1000))
	in := packed.Encode(u(10), u(10))

	shares, effective, err := GetSharesAndEffectiveAmountsIn(reserves, in, shared.Scale, new(uint256.Int))
	require.NoError(t, err)
	assert.True(t, shares.Eq(new(uint256.Int).Lsh(uint256.NewInt(20), 128)))
	assert.Equal(t, in, effective)

	supply := new(uint256.Int).Lsh(uint256.NewInt(2000), 128)
	shares, effective, err = GetSharesAndEffectiveAmountsIn(reserves, in, shared.Scale, supply)
	require.NoError(t, err)
	assert.True(t, shares.Eq(new(uint256.Int).Lsh(uint256.NewInt(20), 128)))
	assert.Equal(t, in, effective)

	// too few shares outstanding to mint any: everything is handed back
	shares, effective, err = GetSharesAndEffectiveAmountsIn(reserves, in, shared.Scale, uint256.NewInt(3))
	require.NoError(t, err)
	assert.True(t, shares.IsZero())
	assert.True(t, effective.IsZero())
}

func TestVerifyAmounts(t *testing.T) {
	assert.NoError(t, VerifyAmounts(packed.Encode(u(1), u(1)), activeId, activeId))
	assert.NoError(t, VerifyAmounts(packed.EncodeSecond(u(1)), activeId, activeId-1))
	assert.NoError(t, VerifyAmounts(packed.EncodeFirst(u(1)), activeId, activeId+1))
	assert.ErrorIs(t, VerifyAmounts(packed.EncodeFirst(u(1)), activeId, activeId-1), ErrCompositionFactorFlawed)
	assert.ErrorIs(t, VerifyAmounts(packed.EncodeSecond(u(1)), activeId, activeId+1), ErrCompositionFactorFlawed)
}

func TestGetCompositionFees(t *testing.T) {
	reserves := packed.Encode(u(1_000_000_000), u(1_000_000_000))
	supply := new(uint256.Int).Lsh(uint256.NewInt(2_000_000_000), 128)
	in := packed.EncodeFirst(u(100_000_000))

	shares, _, err := GetSharesAndEffectiveAmountsIn(reserves, in, shared.Scale, supply)
	require.NoError(t, err)

	// received back (52380952, 47619047), so 47619048 of X was swapped implicitly
	fees, err := GetCompositionFees(reserves, testParams(t), binStep, in, supply, shares)
	require.NoError(t, err)
	assert.Equal(t, packed.EncodeFirst(u(59598)), fees)

	fees, err = GetCompositionFees(reserves, testParams(t), binStep, in, supply, new(uint256.Int))
	require.NoError(t, err)
	assert.True(t, fees.IsZero())

	// a deposit matching the bin composition pays nothing
	balanced := packed.Encode(u(100_000_000), u(100_000_000))
	shares, _, err = GetSharesAndEffectiveAmountsIn(reserves, balanced, shared.Scale, supply)
	require.NoError(t, err)
	fees, err = GetCompositionFees(reserves, testParams(t), binStep, balanced, supply, shares)
	require.NoError(t, err)
	assert.True(t, fees.IsZero())
}
