package u128

import (
	"errors"
	"fmt"
	"math/big"

	binary "github.com/gagliardetto/binary"
	"lukechampine.com/uint128"
)

// Uint128 is the on-chain little-endian u128 with fmt.Scanner support.
type Uint128 binary.Uint128

func (u *Uint128) Scan(s fmt.ScanState, ch rune) error {
	i := new(big.Int)
	if err := i.Scan(s, ch); err != nil {
		return err
	} else if i.Sign() < 0 {
		return errors.New("value cannot be negative")
	} else if i.BitLen() > 128 {
		return errors.New("value overflows Uint128")
	}
	u.Lo = i.Uint64()
	u.Hi = i.Rsh(i, 64).Uint64()
	return nil
}

// Parse reads a base 10 amount.
func Parse(num string) (uint128.Uint128, error) {
	u := binary.NewUint128LittleEndian()
	if _, err := fmt.Sscan(num, (*Uint128)(u)); err != nil {
		return uint128.Zero, fmt.Errorf("parse u128 %q: %w", num, err)
	}
	return FromBinary(*u), nil
}

// MustParse is Parse that panics on error, for constants and tests.
func MustParse(num string) uint128.Uint128 {
	v, err := Parse(num)
	if err != nil {
		panic(err)
	}
	return v
}

func FromBinary(u binary.Uint128) uint128.Uint128 {
	return uint128.New(u.Lo, u.Hi)
}

func ToBinary(u uint128.Uint128) binary.Uint128 {
	b := binary.NewUint128LittleEndian()
	b.Lo = u.Lo
	b.Hi = u.Hi
	return *b
}
