// Package pair_parameters packs the fee configuration and the volatility
// state of a pair into a single 256 bit word.
//
// Layout (offset, bits):
//
//	base factor                 0  16
//	filter period              16  12
//	decay period               28  12
//	reduction factor           40  14
//	variable fee control       54  24
//	protocol share             78  14
//	max volatility accumulator 92  20
//	volatility accumulator    112  20
//	volatility reference      132  20
//	id reference              152  24
//	time of last update       176  40
//	oracle id                 216  16
//	active id                 232  24
package pair_parameters

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/krazyTry/liquidity-book-go/liquidity_book/math/encoded"
	"github.com/krazyTry/liquidity-book-go/liquidity_book/shared"
)

const (
	OffsetBaseFactor         = 0
	OffsetFilterPeriod       = 16
	OffsetDecayPeriod        = 28
	OffsetReductionFactor    = 40
	OffsetVarFeeControl      = 54
	OffsetProtocolShare      = 78
	OffsetMaxVolAcc          = 92
	OffsetVolAcc             = 112
	OffsetVolRef             = 132
	OffsetIdRef              = 152
	OffsetTimeLastUpdate     = 176
	OffsetOracleId           = 216
	OffsetActiveId           = 232
	MaxVolatilityAccumulator = 0xfffff
	MaxPeriod                = 0xfff
)

var ErrInvalidTimestamp = errors.New("timestamp is before the last update")

// StaticFeeParameters are the admin-set fields of the word.
type StaticFeeParameters struct {
	BaseFactor               uint16
	FilterPeriod             uint16
	DecayPeriod              uint16
	ReductionFactor          uint16
	VariableFeeControl       uint32
	ProtocolShare            uint16
	MaxVolatilityAccumulator uint32
}

func (s StaticFeeParameters) Validate() error {
	switch {
	case s.FilterPeriod > s.DecayPeriod:
		return fmt.Errorf("%w: filter period %d > decay period %d", shared.ErrInvalidStaticFeeParameters, s.FilterPeriod, s.DecayPeriod)
	case s.DecayPeriod > MaxPeriod:
		return fmt.Errorf("%w: decay period %d", shared.ErrInvalidStaticFeeParameters, s.DecayPeriod)
	case s.ReductionFactor > shared.BasisPointMax:
		return fmt.Errorf("%w: reduction factor %d", shared.ErrInvalidStaticFeeParameters, s.ReductionFactor)
	case s.ProtocolShare > shared.MaxProtocolShare:
		return fmt.Errorf("%w: protocol share %d", shared.ErrInvalidStaticFeeParameters, s.ProtocolShare)
	case s.MaxVolatilityAccumulator > MaxVolatilityAccumulator:
		return fmt.Errorf("%w: max volatility accumulator %d", shared.ErrInvalidStaticFeeParameters, s.MaxVolatilityAccumulator)
	}
	return nil
}

type PairParameters struct {
	word encoded.Word
}

func FromWord(w encoded.Word) PairParameters {
	return PairParameters{word: w}
}

// New returns parameters holding static and starting at activeId.
func New(static StaticFeeParameters, activeId uint32) (PairParameters, error) {
	var p PairParameters
	if err := p.SetStaticFeeParameters(static); err != nil {
		return p, err
	}
	if err := p.SetActiveId(activeId); err != nil {
		return p, err
	}
	return p, nil
}

func (p PairParameters) Word() encoded.Word {
	return p.word
}

func (p PairParameters) String() string {
	return fmt.Sprintf("PairParameters{active_id: %d, vol_acc: %d, vol_ref: %d, id_ref: %d, last_update: %d}",
		p.ActiveId(), p.VolatilityAccumulator(), p.VolatilityReference(), p.IdReference(), p.TimeOfLastUpdate())
}

func (p PairParameters) BaseFactor() uint16 {
	return p.word.DecodeUint16(OffsetBaseFactor)
}

func (p PairParameters) FilterPeriod() uint16 {
	return p.word.DecodeUint12(OffsetFilterPeriod)
}

func (p PairParameters) DecayPeriod() uint16 {
	return p.word.DecodeUint12(OffsetDecayPeriod)
}

func (p PairParameters) ReductionFactor() uint16 {
	return p.word.DecodeUint14(OffsetReductionFactor)
}

func (p PairParameters) VariableFeeControl() uint32 {
	return p.word.DecodeUint24(OffsetVarFeeControl)
}

func (p PairParameters) ProtocolShare() uint16 {
	return p.word.DecodeUint14(OffsetProtocolShare)
}

func (p PairParameters) MaxVolatilityAccumulator() uint32 {
	return p.word.DecodeUint20(OffsetMaxVolAcc)
}

func (p PairParameters) VolatilityAccumulator() uint32 {
	return p.word.DecodeUint20(OffsetVolAcc)
}

func (p PairParameters) VolatilityReference() uint32 {
	return p.word.DecodeUint20(OffsetVolRef)
}

func (p PairParameters) IdReference() uint32 {
	return p.word.DecodeUint24(OffsetIdRef)
}

func (p PairParameters) TimeOfLastUpdate() uint64 {
	return p.word.DecodeUint40(OffsetTimeLastUpdate)
}

func (p PairParameters) OracleId() uint16 {
	return p.word.DecodeUint16(OffsetOracleId)
}

func (p PairParameters) ActiveId() uint32 {
	return p.word.DecodeUint24(OffsetActiveId)
}

func (p PairParameters) StaticFeeParameters() StaticFeeParameters {
	return StaticFeeParameters{
		BaseFactor:               p.BaseFactor(),
		FilterPeriod:             p.FilterPeriod(),
		DecayPeriod:              p.DecayPeriod(),
		ReductionFactor:          p.ReductionFactor(),
		VariableFeeControl:       p.VariableFeeControl(),
		ProtocolShare:            p.ProtocolShare(),
		MaxVolatilityAccumulator: p.MaxVolatilityAccumulator(),
	}
}

// SetStaticFeeParameters validates and writes every static field at once.
// Dynamic fields are left untouched.
func (p *PairParameters) SetStaticFeeParameters(s StaticFeeParameters) error {
	if err := s.Validate(); err != nil {
		return err
	}

	w := p.word
	w.SetUint16(s.BaseFactor, OffsetBaseFactor)
	for _, set := range []func() error{
		func() error { return w.SetUint12(s.FilterPeriod, OffsetFilterPeriod) },
		func() error { return w.SetUint12(s.DecayPeriod, OffsetDecayPeriod) },
		func() error { return w.SetUint14(s.ReductionFactor, OffsetReductionFactor) },
		func() error { return w.SetUint24(s.VariableFeeControl, OffsetVarFeeControl) },
		func() error { return w.SetUint14(s.ProtocolShare, OffsetProtocolShare) },
		func() error { return w.SetUint20(s.MaxVolatilityAccumulator, OffsetMaxVolAcc) },
	} {
		if err := set(); err != nil {
			return fmt.Errorf("%w: %w", shared.ErrInvalidStaticFeeParameters, err)
		}
	}
	p.word = w
	return nil
}

func (p *PairParameters) SetBaseFactor(v uint16) {
	p.word.SetUint16(v, OffsetBaseFactor)
}

func (p *PairParameters) SetFilterPeriod(v uint16) error {
	return p.word.SetUint12(v, OffsetFilterPeriod)
}

func (p *PairParameters) SetDecayPeriod(v uint16) error {
	return p.word.SetUint12(v, OffsetDecayPeriod)
}

func (p *PairParameters) SetReductionFactor(v uint16) error {
	return p.word.SetUint14(v, OffsetReductionFactor)
}

func (p *PairParameters) SetVariableFeeControl(v uint32) error {
	return p.word.SetUint24(v, OffsetVarFeeControl)
}

func (p *PairParameters) SetProtocolShare(v uint16) error {
	return p.word.SetUint14(v, OffsetProtocolShare)
}

func (p *PairParameters) SetMaxVolatilityAccumulator(v uint32) error {
	return p.word.SetUint20(v, OffsetMaxVolAcc)
}

// SetVolatilityAccumulator fails when v is wider than 20 bits or above the max accumulator.
func (p *PairParameters) SetVolatilityAccumulator(v uint32) error {
	if maxVolAcc := p.MaxVolatilityAccumulator(); v > maxVolAcc {
		return fmt.Errorf("%w: volatility accumulator %d > max %d", shared.ErrFieldOverflow, v, maxVolAcc)
	}
	return p.word.SetUint20(v, OffsetVolAcc)
}

func (p *PairParameters) SetVolatilityReference(v uint32) error {
	return p.word.SetUint20(v, OffsetVolRef)
}

func (p *PairParameters) SetIdReference(v uint32) error {
	return p.word.SetUint24(v, OffsetIdRef)
}

func (p *PairParameters) SetTimeOfLastUpdate(t uint64) error {
	return p.word.SetUint40(t, OffsetTimeLastUpdate)
}

func (p *PairParameters) SetOracleId(id uint16) {
	p.word.SetUint16(id, OffsetOracleId)
}

func (p *PairParameters) SetActiveId(id uint32) error {
	if err := p.word.SetUint24(id, OffsetActiveId); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidBinId, err)
	}
	return nil
}

// GetDeltaId returns |activeId - current active id|.
func (p PairParameters) GetDeltaId(activeId uint32) uint32 {
	return absDiff(activeId, p.ActiveId())
}

// GetBaseFee returns base_factor * bin_step * 1e10, in 1e18 precision.
func (p PairParameters) GetBaseFee(binStep uint16) *uint256.Int {
	fee := uint256.NewInt(uint64(p.BaseFactor()) * uint64(binStep))
	return fee.Mul(fee, uint256.NewInt(1e10))
}

// GetVariableFee returns ceil((volatility_accumulator * bin_step)^2 * variable_fee_control / 100),
// in 1e18 precision.
func (p PairParameters) GetVariableFee(binStep uint16) *uint256.Int {
	vfc := p.VariableFeeControl()
	if vfc == 0 {
		return new(uint256.Int)
	}
	prod := uint256.NewInt(uint64(p.VolatilityAccumulator()) * uint64(binStep))
	fee := new(uint256.Int).Mul(prod, prod)
	fee.Mul(fee, uint256.NewInt(uint64(vfc)))
	fee.Add(fee, uint256.NewInt(99))
	return fee.Div(fee, uint256.NewInt(100))
}

// GetTotalFee returns the base fee plus the variable fee, in 1e18 precision.
func (p PairParameters) GetTotalFee(binStep uint16) *uint256.Int {
	return new(uint256.Int).Add(p.GetBaseFee(binStep), p.GetVariableFee(binStep))
}

// UpdateIdReference moves the id reference to the active id.
func (p *PairParameters) UpdateIdReference() error {
	return p.SetIdReference(p.ActiveId())
}

// UpdateVolatilityReference decays the accumulator into the reference.
func (p *PairParameters) UpdateVolatilityReference() error {
	volRef := uint64(p.VolatilityAccumulator()) * uint64(p.ReductionFactor()) / shared.BasisPointMax
	return p.SetVolatilityReference(uint32(volRef))
}

// UpdateVolatilityAccumulator sets the accumulator to
// min(volatility_reference + |activeId - id_reference| * 10000, max_volatility_accumulator).
func (p *PairParameters) UpdateVolatilityAccumulator(activeId uint32) error {
	deltaId := uint64(absDiff(activeId, p.IdReference()))
	volAcc := uint64(p.VolatilityReference()) + deltaId*shared.BasisPointMax

	if maxVolAcc := uint64(p.MaxVolatilityAccumulator()); volAcc > maxVolAcc {
		volAcc = maxVolAcc
	}
	return p.word.SetUint20(uint32(volAcc), OffsetVolAcc)
}

// UpdateReferences refreshes the references once at least a filter period has elapsed.
// The volatility reference keeps a reduced share of the accumulator inside the decay period
// and is reset after it. The time of last update always advances to now.
func (p *PairParameters) UpdateReferences(now uint64) error {
	last := p.TimeOfLastUpdate()
	if now < last {
		return fmt.Errorf("%w: %d < %d", ErrInvalidTimestamp, now, last)
	}

	dt := now - last
	if dt >= uint64(p.FilterPeriod()) {
		if err := p.UpdateIdReference(); err != nil {
			return err
		}
		if dt < uint64(p.DecayPeriod()) {
			if err := p.UpdateVolatilityReference(); err != nil {
				return err
			}
		} else if err := p.SetVolatilityReference(0); err != nil {
			return err
		}
	}

	return p.SetTimeOfLastUpdate(now)
}

// UpdateVolatilityParameters runs UpdateReferences then UpdateVolatilityAccumulator.
func (p *PairParameters) UpdateVolatilityParameters(activeId uint32, now uint64) error {
	if err := p.UpdateReferences(now); err != nil {
		return err
	}
	return p.UpdateVolatilityAccumulator(activeId)
}

// ForceDecay moves the id reference to the active id and decays the volatility reference.
func (p *PairParameters) ForceDecay() error {
	if err := p.UpdateIdReference(); err != nil {
		return err
	}
	return p.UpdateVolatilityReference()
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}
