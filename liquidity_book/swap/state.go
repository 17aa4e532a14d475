package swap

import (
	"fmt"

	"github.com/krazyTry/liquidity-book-go/liquidity_book/bin"
	"github.com/krazyTry/liquidity-book-go/liquidity_book/math/packed"
	"github.com/krazyTry/liquidity-book-go/liquidity_book/math/tree"
	"github.com/krazyTry/liquidity-book-go/liquidity_book/oracle"
	"github.com/krazyTry/liquidity-book-go/liquidity_book/pair_parameters"
	"github.com/krazyTry/liquidity-book-go/liquidity_book/shared"
)

// PairState is everything a pair owns. Operations mutate it in place and are
// not safe for concurrent use.
//
// Reserves is the sum of every bin plus ProtocolFees.
type PairState struct {
	BinStep      uint16
	Parameters   pair_parameters.PairParameters
	Bins         map[uint32]packed.Uint128Pair
	Tree         *tree.TreeUint24
	Oracle       *oracle.Oracle
	Reserves     packed.Uint128Pair
	ProtocolFees packed.Uint128Pair
}

func NewPairState(binStep uint16, static pair_parameters.StaticFeeParameters, activeId uint32) (*PairState, error) {
	if binStep == 0 {
		return nil, shared.ErrInvalidBinStep
	}
	params, err := pair_parameters.New(static, activeId)
	if err != nil {
		return nil, err
	}
	return &PairState{
		BinStep:    binStep,
		Parameters: params,
		Bins:       make(map[uint32]packed.Uint128Pair),
		Tree:       tree.New(),
		Oracle:     oracle.New(),
	}, nil
}

func (s *PairState) Clone() *PairState {
	c := *s
	c.Bins = make(map[uint32]packed.Uint128Pair, len(s.Bins))
	for id, reserves := range s.Bins {
		c.Bins[id] = reserves
	}
	c.Tree = s.Tree.Clone()
	c.Oracle = s.Oracle.Clone()
	return &c
}

func (s *PairState) ActiveId() uint32 {
	return s.Parameters.ActiveId()
}

// GetBin returns the reserves of id; missing bins are empty.
func (s *PairState) GetBin(id uint32) packed.Uint128Pair {
	return s.Bins[id]
}

func (s *PairState) setBin(id uint32, reserves packed.Uint128Pair) {
	if reserves.IsZero() {
		delete(s.Bins, id)
		s.Tree.Remove(id)
		return
	}
	s.Bins[id] = reserves
	s.Tree.Add(id)
}

// NextNonEmptyBin returns the closest non-empty bin below id when swapForY,
// above it otherwise.
func (s *PairState) NextNonEmptyBin(swapForY bool, id uint32) (uint32, bool) {
	if swapForY {
		return s.Tree.FindFirstRight(id)
	}
	return s.Tree.FindFirstLeft(id)
}

// DepositToBin adds amounts to the reserves of bin id, creating it if needed.
// Bins below the active id only take Y and bins above only take X.
func (s *PairState) DepositToBin(id uint32, amounts packed.Uint128Pair) error {
	if id > shared.MaxBinId {
		return fmt.Errorf("%w: %d", shared.ErrInvalidBinId, id)
	}
	if err := bin.VerifyAmounts(amounts, s.ActiveId(), id); err != nil {
		return err
	}

	reserves, err := s.GetBin(id).Add(amounts)
	if err != nil {
		return err
	}
	total, err := s.Reserves.Add(amounts)
	if err != nil {
		return err
	}
	s.setBin(id, reserves)
	s.Reserves = total
	return nil
}

// WithdrawFromBin removes amounts from bin id; the bin is dropped once both reserves are zero.
func (s *PairState) WithdrawFromBin(id uint32, amounts packed.Uint128Pair) error {
	reserves, err := s.GetBin(id).Sub(amounts)
	if err != nil {
		return fmt.Errorf("bin %d: %w", id, err)
	}
	total, err := s.Reserves.Sub(amounts)
	if err != nil {
		return err
	}
	s.setBin(id, reserves)
	s.Reserves = total
	return nil
}

// CollectProtocolFees zeroes and returns the accrued protocol fees.
func (s *PairState) CollectProtocolFees() (packed.Uint128Pair, error) {
	fees := s.ProtocolFees
	total, err := s.Reserves.Sub(fees)
	if err != nil {
		return packed.Uint128Pair{}, err
	}
	s.Reserves = total
	s.ProtocolFees = packed.Uint128Pair{}
	return fees, nil
}

// IncreaseOracleLength enables the oracle on first use and grows its buffer.
func (s *PairState) IncreaseOracleLength(newLength uint16) error {
	params := s.Parameters
	oracleId := params.OracleId()
	if oracleId == 0 {
		oracleId = 1
		params.SetOracleId(oracleId)
	}
	if err := s.Oracle.IncreaseLength(oracleId, newLength); err != nil {
		return err
	}
	s.Parameters = params
	return nil
}

func (s *PairState) SetStaticFeeParameters(static pair_parameters.StaticFeeParameters) error {
	return s.Parameters.SetStaticFeeParameters(static)
}

func (s *PairState) ForceDecay() error {
	return s.Parameters.ForceDecay()
}
