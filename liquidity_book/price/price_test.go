package price

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krazyTry/liquidity-book-go/liquidity_book/shared"
)

func TestGetBase(t *testing.T) {
	assert.Equal(t, "374310603613032309809712068174945032601", GetBase(1000).Dec())
	assert.True(t, GetBase(0).Eq(shared.Scale))
}

func TestGetPriceFromId(t *testing.T) {
	p, err := GetPriceFromId(8574931, 1)
	require.NoError(t, err)
	assert.Equal(t, "42008768657166552252904831246223292524636112144", p.Dec())

	p, err = GetPriceFromId(shared.RealIdShift, 25)
	require.NoError(t, err)
	assert.True(t, p.Eq(shared.Scale))

	tests := []struct {
		id      uint32
		binStep uint16
		want    string
	}{
		{shared.RealIdShift + 1000, 25, "4132574934390148347788666425835030029220"},
		{shared.RealIdShift - 1000, 25, "28019356230839609957331952212081861401"},
		{shared.RealIdShift + 1000, 100, "7132031089099563902425616880973942408738810"},
	}
	for _, tt := range tests {
		got, err := GetPriceFromId(tt.id, tt.binStep)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.Dec(), "id %d step %d", tt.id, tt.binStep)
	}
}

func TestGetPriceFromIdErrors(t *testing.T) {
	_, err := GetPriceFromId(shared.RealIdShift, 0)
	assert.ErrorIs(t, err, shared.ErrInvalidBinStep)

	_, err = GetPriceFromId(shared.MaxBinId+1, 1)
	assert.ErrorIs(t, err, shared.ErrInvalidBinId)

	_, err = GetPriceFromId(MaxId+1, 1)
	assert.ErrorIs(t, err, shared.ErrPowUnderflow)

	_, err = GetPriceFromId(shared.RealIdShift+100000, 100)
	assert.ErrorIs(t, err, shared.ErrPowUnderflow)
}

func TestIdPriceRoundTrip(t *testing.T) {
	exponents := []int32{0, 1, -1, 7, -7, 1000, -1000, 5000, -5000}
	for _, binStep := range []uint16{1, 5, 10, 25, 50, 100} {
		for _, e := range exponents {
			id := uint32(shared.RealIdShift + e)
			p, err := GetPriceFromId(id, binStep)
			require.NoError(t, err)

			got, err := GetIdFromPrice(p, binStep)
			require.NoError(t, err)
			assert.Equal(t, id, got, "step %d exponent %d", binStep, e)

			// anything strictly between two bin prices maps to the lower bin
			above := new(uint256.Int).AddUint64(p, 1)
			got, err = GetIdFromPrice(above, binStep)
			require.NoError(t, err)
			assert.Equal(t, id, got, "step %d exponent %d plus one", binStep, e)

			below := new(uint256.Int).SubUint64(p, 1)
			got, err = GetIdFromPrice(below, binStep)
			require.NoError(t, err)
			assert.Equal(t, id-1, got, "step %d exponent %d minus one", binStep, e)
		}
	}
}

// edge is the largest |id - 2^23| whose price lies within [MinPrice, MaxPrice].
func TestValidIdWindow(t *testing.T) {
	tests := []struct {
		binStep uint16
		edge    int32
	}{
		{1, 665454},
		{5, 133117},
		{10, 66575},
		{25, 26650},
		{50, 13341},
		{100, 6687},
	}
	for _, tt := range tests {
		for _, e := range []int32{-tt.edge, tt.edge} {
			id := uint32(shared.RealIdShift + e)
			p, err := GetPriceFromId(id, tt.binStep)
			require.NoError(t, err, "step %d exponent %d", tt.binStep, e)

			got, err := GetIdFromPrice(p, tt.binStep)
			require.NoError(t, err)
			assert.Equal(t, id, got, "step %d exponent %d", tt.binStep, e)

			// one bin further out falls outside the price range
			outside := id + 1
			if e < 0 {
				outside = id - 1
			}
			_, err = GetPriceFromId(outside, tt.binStep)
			assert.ErrorIs(t, err, shared.ErrInvalidBinId, "step %d exponent %d", tt.binStep, e)
		}

		lowest, err := GetPriceFromId(uint32(shared.RealIdShift-tt.edge), tt.binStep)
		require.NoError(t, err)
		_, err = GetIdFromPrice(new(uint256.Int).SubUint64(lowest, 1), tt.binStep)
		assert.ErrorIs(t, err, shared.ErrInvalidPrice, "step %d", tt.binStep)

		got, err := GetIdFromPrice(MaxPrice, tt.binStep)
		require.NoError(t, err)
		assert.Equal(t, uint32(shared.RealIdShift+tt.edge), got, "step %d", tt.binStep)
	}
}

func TestGetIdFromPriceErrors(t *testing.T) {
	_, err := GetIdFromPrice(new(uint256.Int), 25)
	assert.ErrorIs(t, err, shared.ErrInvalidPrice)

	_, err = GetIdFromPrice(shared.Scale, 0)
	assert.ErrorIs(t, err, shared.ErrInvalidBinStep)

	_, err = GetIdFromPrice(new(uint256.Int).SubUint64(MinPrice, 1), 25)
	assert.ErrorIs(t, err, shared.ErrInvalidPrice)

	_, err = GetIdFromPrice(new(uint256.Int).AddUint64(MaxPrice, 1), 25)
	assert.ErrorIs(t, err, shared.ErrInvalidPrice)
}

func TestDecimalConversions(t *testing.T) {
	p, err := ConvertDecimalPriceTo128x128(shared.PrecisionU)
	require.NoError(t, err)
	assert.True(t, p.Eq(shared.Scale))

	d, err := Convert128x128PriceToDecimal(shared.Scale)
	require.NoError(t, err)
	assert.Equal(t, uint64(shared.Precision), d.Uint64())

	ui := PriceToDecimal(shared.Scale, 9, 6)
	assert.True(t, ui.Equal(decimal.NewFromInt(1000)), ui.String())

	back, err := DecimalToPrice(ui, 9, 6)
	require.NoError(t, err)
	assert.True(t, back.Eq(shared.Scale))

	ui, err = GetPriceFromIdDecimal(shared.RealIdShift+1, 1000, 6, 6)
	require.NoError(t, err)
	assert.True(t, ui.Round(18).Equal(decimal.RequireFromString("1.1")), ui.String())

	_, err = DecimalToPrice(decimal.NewFromInt(-1), 6, 6)
	assert.Error(t, err)
}
