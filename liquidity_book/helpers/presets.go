package helpers

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/krazyTry/liquidity-book-go/liquidity_book/pair_parameters"
	"github.com/krazyTry/liquidity-book-go/liquidity_book/shared"
	"github.com/krazyTry/liquidity-book-go/liquidity_book/swap"
)

var ErrInvalidPresetJSON = errors.New("invalid preset json")

// Preset is the configuration a pair is created with for one bin step.
type Preset struct {
	BinStep      uint16
	Static       pair_parameters.StaticFeeParameters
	OracleLength uint16
}

// DefaultPresets mirrors the common Liquidity Book bin step presets.
const DefaultPresets = `{
	"presets": [
		{"bin_step": 1,   "base_factor": 20000, "filter_period": 10, "decay_period": 120, "reduction_factor": 5000, "variable_fee_control": 2000000, "protocol_share": 0, "max_volatility_accumulator": 100000, "oracle_length": 0},
		{"bin_step": 5,   "base_factor": 15000, "filter_period": 30, "decay_period": 600, "reduction_factor": 5000, "variable_fee_control": 120000,  "protocol_share": 0, "max_volatility_accumulator": 300000, "oracle_length": 0},
		{"bin_step": 10,  "base_factor": 10000, "filter_period": 30, "decay_period": 600, "reduction_factor": 5000, "variable_fee_control": 40000,   "protocol_share": 0, "max_volatility_accumulator": 350000, "oracle_length": 0},
		{"bin_step": 15,  "base_factor": 10000, "filter_period": 30, "decay_period": 600, "reduction_factor": 5000, "variable_fee_control": 30000,   "protocol_share": 0, "max_volatility_accumulator": 350000, "oracle_length": 0},
		{"bin_step": 20,  "base_factor": 10000, "filter_period": 30, "decay_period": 600, "reduction_factor": 5000, "variable_fee_control": 20000,   "protocol_share": 0, "max_volatility_accumulator": 350000, "oracle_length": 0},
		{"bin_step": 25,  "base_factor": 10000, "filter_period": 30, "decay_period": 600, "reduction_factor": 5000, "variable_fee_control": 15000,   "protocol_share": 0, "max_volatility_accumulator": 350000, "oracle_length": 0},
		{"bin_step": 50,  "base_factor": 8000,  "filter_period": 120, "decay_period": 1200, "reduction_factor": 5000, "variable_fee_control": 7500,  "protocol_share": 0, "max_volatility_accumulator": 300000, "oracle_length": 0},
		{"bin_step": 100, "base_factor": 8000,  "filter_period": 300, "decay_period": 1200, "reduction_factor": 5000, "variable_fee_control": 7500,  "protocol_share": 0, "max_volatility_accumulator": 150000, "oracle_length": 0}
	]
}`

// LoadPresets parses {"presets": [...]} and validates every entry.
func LoadPresets(data []byte) (map[uint16]Preset, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidPresetJSON
	}
	list := gjson.GetBytes(data, "presets")
	if !list.IsArray() {
		return nil, fmt.Errorf("%w: missing presets array", ErrInvalidPresetJSON)
	}

	presets := make(map[uint16]Preset)
	var err error
	list.ForEach(func(_, v gjson.Result) bool {
		var p Preset
		if p, err = parsePreset(v); err != nil {
			return false
		}
		if _, dup := presets[p.BinStep]; dup {
			err = fmt.Errorf("%w: duplicate bin step %d", ErrInvalidPresetJSON, p.BinStep)
			return false
		}
		presets[p.BinStep] = p
		return true
	})
	if err != nil {
		return nil, err
	}
	return presets, nil
}

// MustDefaultPresets parses DefaultPresets.
func MustDefaultPresets() map[uint16]Preset {
	presets, err := LoadPresets([]byte(DefaultPresets))
	if err != nil {
		panic(err)
	}
	return presets
}

func parsePreset(v gjson.Result) (Preset, error) {
	fields := []struct {
		name  string
		limit uint64
	}{
		{"bin_step", 0xffff},
		{"base_factor", 0xffff},
		{"filter_period", 0xffff},
		{"decay_period", 0xffff},
		{"reduction_factor", 0xffff},
		{"variable_fee_control", 0xffffffff},
		{"protocol_share", 0xffff},
		{"max_volatility_accumulator", 0xffffffff},
		{"oracle_length", 0xffff},
	}
	values := make(map[string]uint64, len(fields))
	for _, field := range fields {
		name, limit := field.name, field.limit
		f := v.Get(name)
		if name != "oracle_length" && !f.Exists() {
			return Preset{}, fmt.Errorf("%w: missing %s", ErrInvalidPresetJSON, name)
		}
		if f.Exists() && f.Type != gjson.Number {
			return Preset{}, fmt.Errorf("%w: %s is not a number", ErrInvalidPresetJSON, name)
		}
		if f.Uint() > limit {
			return Preset{}, fmt.Errorf("%w: %s out of range", ErrInvalidPresetJSON, name)
		}
		values[name] = f.Uint()
	}

	p := Preset{
		BinStep: uint16(values["bin_step"]),
		Static: pair_parameters.StaticFeeParameters{
			BaseFactor:               uint16(values["base_factor"]),
			FilterPeriod:             uint16(values["filter_period"]),
			DecayPeriod:              uint16(values["decay_period"]),
			ReductionFactor:          uint16(values["reduction_factor"]),
			VariableFeeControl:       uint32(values["variable_fee_control"]),
			ProtocolShare:            uint16(values["protocol_share"]),
			MaxVolatilityAccumulator: uint32(values["max_volatility_accumulator"]),
		},
		OracleLength: uint16(values["oracle_length"]),
	}
	if p.BinStep == 0 {
		return Preset{}, fmt.Errorf("%w: bin_step is zero", ErrInvalidPresetJSON)
	}
	if _, err := pair_parameters.New(p.Static, shared.RealIdShift); err != nil {
		return Preset{}, fmt.Errorf("bin step %d: %w", p.BinStep, err)
	}
	return p, nil
}

// NewPairParameters packs the preset's static fees with activeId.
func NewPairParameters(p Preset, activeId uint32) (pair_parameters.PairParameters, error) {
	return pair_parameters.New(p.Static, activeId)
}

// NewPairState creates an empty pair from the preset and sizes its oracle.
func NewPairState(p Preset, activeId uint32) (*swap.PairState, error) {
	state, err := swap.NewPairState(p.BinStep, p.Static, activeId)
	if err != nil {
		return nil, err
	}
	if p.OracleLength > 0 {
		if err := state.IncreaseOracleLength(p.OracleLength); err != nil {
			return nil, err
		}
	}
	return state, nil
}
