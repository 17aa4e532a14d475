// Package swap executes swaps across the bins of a pair.
//
// A swap walks bins in the swap direction (towards lower ids when selling X for Y)
// until the input is used up or no bin with output liquidity is left. Running out
// of liquidity is not an error: the unfilled input is returned in the result.
package swap

import (
	"fmt"

	"go.uber.org/zap"
	"lukechampine.com/uint128"

	"github.com/krazyTry/liquidity-book-go/liquidity_book/bin"
	"github.com/krazyTry/liquidity-book-go/liquidity_book/math/packed"
	"github.com/krazyTry/liquidity-book-go/liquidity_book/shared"
)

type State uint8

const (
	StateSwapping State = iota
	StateBinExhausted
	StateNoLiquidity
	StateDone
)

func (s State) String() string {
	switch s {
	case StateSwapping:
		return "Swapping"
	case StateBinExhausted:
		return "BinExhausted"
	case StateNoLiquidity:
		return "NoLiquidity"
	case StateDone:
		return "Done"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// BinSwap records what happened in one bin.
type BinSwap struct {
	Id          uint32
	AmountIn    uint128.Uint128
	AmountOut   uint128.Uint128
	Fee         uint128.Uint128
	ProtocolFee uint128.Uint128
}

type Result struct {
	State        State
	AmountIn     uint128.Uint128
	AmountInLeft uint128.Uint128
	AmountOut    uint128.Uint128
	TotalFee     uint128.Uint128
	LPFee        uint128.Uint128
	ProtocolFee  uint128.Uint128
	ActiveId     uint32
	Bins         []BinSwap
}

type Engine struct {
	logger         *zap.Logger
	maxBinsPerSwap int
}

type Option func(*Engine)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMaxBinsPerSwap bounds the number of bins a single swap may visit.
// A swap reaching the bound stops like one running out of liquidity.
func WithMaxBinsPerSwap(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxBinsPerSwap = n
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger:         zap.NewNop(),
		maxBinsPerSwap: shared.DefaultMaxBinsPerSwap,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Swap swaps amountIn of X for Y (swapForY) or Y for X against state at time now.
// State is only modified when the swap succeeds.
func (e *Engine) Swap(state *PairState, amountIn uint128.Uint128, swapForY bool, now uint64) (Result, error) {
	work := state.Clone()
	result, err := e.swap(work, amountIn, swapForY, now)
	if err != nil {
		e.logger.Debug("swap failed",
			zap.Bool("swap_for_y", swapForY),
			zap.Stringer("amount_in", amountIn),
			zap.Error(err),
		)
		return Result{}, err
	}
	*state = *work

	e.logger.Debug("swap",
		zap.Stringer("state", result.State),
		zap.Bool("swap_for_y", swapForY),
		zap.Stringer("amount_in", result.AmountIn),
		zap.Stringer("amount_in_left", result.AmountInLeft),
		zap.Stringer("amount_out", result.AmountOut),
		zap.Stringer("total_fee", result.TotalFee),
		zap.Uint32("active_id", result.ActiveId),
		zap.Int("bins", len(result.Bins)),
	)
	return result, nil
}

// GetSwapOut simulates Swap without touching state.
func (e *Engine) GetSwapOut(state *PairState, amountIn uint128.Uint128, swapForY bool, now uint64) (Result, error) {
	return e.swap(state.Clone(), amountIn, swapForY, now)
}

func (e *Engine) swap(s *PairState, amountIn uint128.Uint128, swapForY bool, now uint64) (Result, error) {
	if amountIn.IsZero() {
		return Result{}, shared.ErrInsufficientAmountIn
	}

	params := s.Parameters
	if err := params.UpdateReferences(now); err != nil {
		return Result{}, err
	}

	activeId := params.ActiveId()
	amountsLeft := packed.EncodeAlt(amountIn, swapForY)
	var amountsOut, totalFees, protocolFees packed.Uint128Pair
	var bins []BinSwap

	visited := 0
	st := StateSwapping
	for st != StateDone && st != StateNoLiquidity {
		switch st {
		case StateSwapping:
			visited++
			reserves := s.GetBin(activeId)
			if !bin.IsEmpty(reserves, !swapForY) {
				if err := params.UpdateVolatilityAccumulator(activeId); err != nil {
					return Result{}, err
				}
				amounts, err := bin.GetAmounts(reserves, params, s.BinStep, swapForY, activeId, amountsLeft)
				if err != nil {
					return Result{}, fmt.Errorf("bin %d: %w", activeId, err)
				}

				if !amounts.InWithFees.IsZero() {
					pFees, err := amounts.Fees.ScalarMulDivBasisPointRoundDown(uint64(params.ProtocolShare()))
					if err != nil {
						return Result{}, err
					}
					if amountsLeft, err = amountsLeft.Sub(amounts.InWithFees); err != nil {
						return Result{}, err
					}
					if amountsOut, err = amountsOut.Add(amounts.Out); err != nil {
						return Result{}, err
					}
					if totalFees, err = totalFees.Add(amounts.Fees); err != nil {
						return Result{}, err
					}
					if protocolFees, err = protocolFees.Add(pFees); err != nil {
						return Result{}, err
					}

					// the LP part of the fee stays in the bin
					inToBin, err := amounts.InWithFees.Sub(pFees)
					if err != nil {
						return Result{}, err
					}
					next, err := reserves.Add(inToBin)
					if err != nil {
						return Result{}, err
					}
					if next, err = next.Sub(amounts.Out); err != nil {
						return Result{}, err
					}
					s.setBin(activeId, next)

					binSwap := BinSwap{
						Id:          activeId,
						AmountIn:    amounts.InWithFees.DecodeAlt(swapForY),
						AmountOut:   amounts.Out.DecodeAlt(!swapForY),
						Fee:         amounts.Fees.DecodeAlt(swapForY),
						ProtocolFee: pFees.DecodeAlt(swapForY),
					}
					bins = append(bins, binSwap)
					e.logger.Debug("bin swapped",
						zap.Uint32("id", binSwap.Id),
						zap.Stringer("amount_in", binSwap.AmountIn),
						zap.Stringer("amount_out", binSwap.AmountOut),
						zap.Stringer("fee", binSwap.Fee),
						zap.Uint32("volatility_accumulator", params.VolatilityAccumulator()),
					)
				}
			}

			if amountsLeft.IsZero() {
				st = StateDone
			} else {
				st = StateBinExhausted
			}

		case StateBinExhausted:
			next, ok := s.NextNonEmptyBin(swapForY, activeId)
			if !ok || visited >= e.maxBinsPerSwap {
				st = StateNoLiquidity
				break
			}
			activeId = next
			st = StateSwapping
		}
	}

	if st == StateDone && amountsOut.IsZero() {
		return Result{}, shared.ErrInsufficientAmountOut
	}

	consumed, err := packed.EncodeAlt(amountIn, swapForY).Sub(amountsLeft)
	if err != nil {
		return Result{}, err
	}
	reserves, err := s.Reserves.Add(consumed)
	if err != nil {
		return Result{}, err
	}
	if s.Reserves, err = reserves.Sub(amountsOut); err != nil {
		return Result{}, err
	}
	if s.ProtocolFees, err = s.ProtocolFees.Add(protocolFees); err != nil {
		return Result{}, err
	}

	if params, err = s.Oracle.Update(params, activeId, now); err != nil {
		return Result{}, err
	}
	if err := params.SetActiveId(activeId); err != nil {
		return Result{}, err
	}
	s.Parameters = params

	totalFee := totalFees.DecodeAlt(swapForY)
	protocolFee := protocolFees.DecodeAlt(swapForY)
	return Result{
		State:        st,
		AmountIn:     consumed.DecodeAlt(swapForY),
		AmountInLeft: amountsLeft.DecodeAlt(swapForY),
		AmountOut:    amountsOut.DecodeAlt(!swapForY),
		TotalFee:     totalFee,
		LPFee:        totalFee.Sub(protocolFee),
		ProtocolFee:  protocolFee,
		ActiveId:     activeId,
		Bins:         bins,
	}, nil
}
