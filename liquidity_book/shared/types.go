package shared

import (
	"github.com/holiman/uint256"
)

// Enums and constants shared by the liquidity book packages.
type Rounding uint8

const (
	RoundingUp   Rounding = 0
	RoundingDown Rounding = 1
)

const (
	BasisPointMax = 10_000
	ScaleOffset   = 128

	// Precision is the fixed point precision of fees (1e18 = 100%).
	Precision = 1_000_000_000_000_000_000

	// MaxFee is 10% in Precision units.
	MaxFee = 100_000_000_000_000_000

	MaxProtocolShare = 2_500

	// RealIdShift is the bin id of price 1.
	RealIdShift = 1 << 23
	MaxBinId    = 1<<24 - 1

	MaxSampleLifetime = 120

	DefaultMaxBinsPerSwap = 100
)

var (
	Scale            = new(uint256.Int).Lsh(uint256.NewInt(1), ScaleOffset)
	PrecisionU       = uint256.NewInt(Precision)
	SquaredPrecision = new(uint256.Int).Mul(PrecisionU, PrecisionU)
	BasisPointMaxU   = uint256.NewInt(BasisPointMax)

	MaxU128 = new(uint256.Int).Sub(Scale, uint256.NewInt(1))
	MaxU256 = new(uint256.Int).Not(new(uint256.Int))
)
