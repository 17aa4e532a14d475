package swap

import (
	"bytes"
	"fmt"
	"sort"

	binary "github.com/gagliardetto/binary"

	"github.com/krazyTry/liquidity-book-go/liquidity_book/math/encoded"
	"github.com/krazyTry/liquidity-book-go/liquidity_book/math/packed"
	"github.com/krazyTry/liquidity-book-go/liquidity_book/math/tree"
	"github.com/krazyTry/liquidity-book-go/liquidity_book/oracle"
	"github.com/krazyTry/liquidity-book-go/liquidity_book/pair_parameters"
)

type binRecord struct {
	Id       uint32
	Reserves [32]byte
}

type snapshot struct {
	BinStep      uint16
	Parameters   [32]byte
	Reserves     [32]byte
	ProtocolFees [32]byte
	Bins         []binRecord
	Samples      [][32]byte
}

// MarshalBinary encodes the state with Borsh. Bins are written in id order so equal
// states encode to equal bytes.
func (s *PairState) MarshalBinary() ([]byte, error) {
	snap := snapshot{
		BinStep:      s.BinStep,
		Parameters:   s.Parameters.Word(),
		Reserves:     s.Reserves,
		ProtocolFees: s.ProtocolFees,
		Bins:         make([]binRecord, 0, len(s.Bins)),
	}
	for id, reserves := range s.Bins {
		snap.Bins = append(snap.Bins, binRecord{Id: id, Reserves: reserves})
	}
	sort.Slice(snap.Bins, func(i, j int) bool { return snap.Bins[i].Id < snap.Bins[j].Id })
	for _, w := range s.Oracle.Words() {
		snap.Samples = append(snap.Samples, w)
	}

	buf := new(bytes.Buffer)
	if err := binary.NewBorshEncoder(buf).Encode(snap); err != nil {
		return nil, fmt.Errorf("encode pair state: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary restores a state written by MarshalBinary and rebuilds the bin tree.
func (s *PairState) UnmarshalBinary(data []byte) error {
	var snap snapshot
	if err := binary.NewBorshDecoder(data).Decode(&snap); err != nil {
		return fmt.Errorf("decode pair state: %w", err)
	}

	bins := make(map[uint32]packed.Uint128Pair, len(snap.Bins))
	t := tree.New()
	for _, b := range snap.Bins {
		reserves := packed.Uint128Pair(b.Reserves)
		if reserves.IsZero() {
			continue
		}
		bins[b.Id] = reserves
		t.Add(b.Id)
	}
	words := make([]encoded.Word, len(snap.Samples))
	for i, w := range snap.Samples {
		words[i] = w
	}

	*s = PairState{
		BinStep:      snap.BinStep,
		Parameters:   pair_parameters.FromWord(snap.Parameters),
		Bins:         bins,
		Tree:         t,
		Oracle:       oracle.FromWords(words),
		Reserves:     snap.Reserves,
		ProtocolFees: snap.ProtocolFees,
	}
	return nil
}
