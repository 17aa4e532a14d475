package shared

import (
	"errors"
	"fmt"
)

var (
	ErrArithmeticOverflow  = errors.New("arithmetic overflow")
	ErrArithmeticUnderflow = errors.New("arithmetic underflow")
	ErrDivisionByZero      = errors.New("division by zero")

	ErrMulDivOverflow   = fmt.Errorf("mul div: %w", ErrArithmeticOverflow)
	ErrMulShiftOverflow = fmt.Errorf("mul shift: %w", ErrArithmeticOverflow)
	ErrPowUnderflow     = fmt.Errorf("pow underflow: %w", ErrArithmeticOverflow)

	ErrFieldOverflow = errors.New("value does not fit its packed field")
	ErrInvalidBinId  = errors.New("invalid bin id")
	ErrInvalidPrice  = errors.New("invalid price")

	ErrStaleOracleQuery  = errors.New("oracle lookup timestamp too old")
	ErrNewLengthTooSmall = errors.New("oracle new length too small")
	ErrInvalidOracleId   = errors.New("invalid oracle id")

	ErrInvalidStaticFeeParameters = errors.New("invalid static fee parameters")
	ErrMultiplierTooLarge         = errors.New("multiplier exceeds basis point max")
	ErrFeeTooLarge                = errors.New("fee too large")

	ErrInsufficientAmountIn  = errors.New("insufficient amount in")
	ErrInsufficientAmountOut = errors.New("insufficient amount out")
	ErrInvalidBinStep        = errors.New("invalid bin step")
)
