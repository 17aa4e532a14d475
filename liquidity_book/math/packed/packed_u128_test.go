package packed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"

	"github.com/krazyTry/liquidity-book-go/liquidity_book/shared"
)

func TestEncode(t *testing.T) {
	p := Encode(uint128.From64(42), uint128.From64(24))

	want := Uint128Pair{}
	want[0] = 42
	want[16] = 24
	assert.Equal(t, want, p)

	x, y := p.Decode()
	assert.Equal(t, uint128.From64(42), x)
	assert.Equal(t, uint128.From64(24), y)

	assert.Equal(t, uint128.From64(42), EncodeAlt(uint128.From64(42), true).DecodeX())
	assert.Equal(t, uint128.From64(42), EncodeAlt(uint128.From64(42), false).DecodeY())
	assert.True(t, EncodeFirst(uint128.From64(1)).DecodeY().IsZero())
	assert.True(t, EncodeSecond(uint128.From64(1)).DecodeX().IsZero())
	assert.Equal(t, uint128.From64(24), p.DecodeAlt(false))
	assert.Equal(t, "(42, 24)", p.String())

	q, err := FromBytes(p.Bytes())
	require.NoError(t, err)
	assert.Equal(t, p, q)
	assert.Equal(t, p, FromWord(p.Word()))

	_, err = FromBytes(make([]byte, 31))
	assert.Error(t, err)
}

func TestAddSub(t *testing.T) {
	a := Encode(uint128.From64(100), uint128.New(0, 1))
	b := Encode(uint128.From64(30), uint128.From64(5))

	sum, err := a.Add(b)
	require.NoError(t, err)
	back, err := sum.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, a, back)

	_, err = Encode(uint128.Max, uint128.Zero).Add(EncodeFirst(uint128.From64(1)))
	assert.ErrorIs(t, err, shared.ErrArithmeticOverflow)

	_, err = Encode(uint128.Zero, uint128.Max).AddLanes(uint128.Zero, uint128.From64(1))
	assert.ErrorIs(t, err, shared.ErrArithmeticOverflow)

	_, err = b.Sub(a)
	assert.ErrorIs(t, err, shared.ErrArithmeticUnderflow)

	_, err = a.SubLanes(uint128.Zero, uint128.New(1, 1))
	assert.ErrorIs(t, err, shared.ErrArithmeticUnderflow)
}

func TestLtGtAreNotAnOrdering(t *testing.T) {
	p := Encode(uint128.From64(1), uint128.From64(10))
	q := Encode(uint128.From64(10), uint128.From64(1))

	assert.True(t, p.Lt(q))
	assert.True(t, q.Lt(p))
	assert.True(t, p.Gt(q))
	assert.True(t, q.Gt(p))

	assert.False(t, p.Lt(p))
	assert.False(t, p.Gt(p))

	r := Encode(uint128.From64(2), uint128.From64(11))
	assert.True(t, p.Lt(r))
	assert.False(t, p.Gt(r))
}

func TestScalarMulDivBasisPointRoundDown(t *testing.T) {
	p := Encode(uint128.From64(12345), uint128.Max)

	tests := []struct {
		name       string
		multiplier uint64
		want       Uint128Pair
		wantErr    error
	}{
		{"zero", 0, Uint128Pair{}, nil},
		{"identity", shared.BasisPointMax, p, nil},
		{"quarter", 2500, Encode(uint128.From64(3086), uint128.Max.Div64(4)), nil},
		{"too large", shared.BasisPointMax + 1, Uint128Pair{}, shared.ErrMultiplierTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.ScalarMulDivBasisPointRoundDown(tt.multiplier)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func FuzzEncodeDecode(f *testing.F) {
	f.Add(uint64(42), uint64(0), uint64(24), uint64(0))
	f.Add(^uint64(0), ^uint64(0), uint64(1), uint64(0))
	f.Fuzz(func(t *testing.T, xLo, xHi, yLo, yHi uint64) {
		x, y := uint128.New(xLo, xHi), uint128.New(yLo, yHi)
		p := Encode(x, y)
		gotX, gotY := p.Decode()
		if gotX != x || gotY != y {
			t.Fatalf("decode(encode(%s, %s)) = (%s, %s)", x, y, gotX, gotY)
		}
		if p.Word().Uint256()[0] != xLo || p.Word().Uint256()[3] != yHi {
			t.Fatalf("lane layout broken for (%s, %s)", x, y)
		}

		sum, err := p.Add(p)
		if err != nil {
			return
		}
		back, err := sum.Sub(p)
		if err != nil || back != p {
			t.Fatalf("sub(add(p, p), p) != p for %s", p)
		}
	})
}
