package oracle

import (
	"fmt"

	"github.com/krazyTry/liquidity-book-go/liquidity_book/math/encoded"
)

// Sample layout (offset, bits):
//
//	oracle length           0  16
//	cumulative id          16  64
//	cumulative volatility  80  64
//	cumulative bin crossed 144 64
//	sample lifetime        208  8
//	sample creation        216 40
const (
	OffsetOracleLength         = 0
	OffsetCumulativeId         = 16
	OffsetCumulativeVolatility = 80
	OffsetCumulativeBinCrossed = 144
	OffsetSampleLifetime       = 208
	OffsetSampleCreation       = 216
)

// Sample is one packed oracle observation. The cumulative counters wrap at 2^64;
// only differences between two samples are meaningful.
type Sample struct {
	word encoded.Word
}

func EncodeSample(length uint16, cumulativeId, cumulativeVolatility, cumulativeBinCrossed uint64, lifetime uint8, createdAt uint64) (Sample, error) {
	var w encoded.Word
	w.SetUint16(length, OffsetOracleLength)
	w.SetUint64(cumulativeId, OffsetCumulativeId)
	w.SetUint64(cumulativeVolatility, OffsetCumulativeVolatility)
	w.SetUint64(cumulativeBinCrossed, OffsetCumulativeBinCrossed)
	w.SetUint8(lifetime, OffsetSampleLifetime)
	if err := w.SetUint40(createdAt, OffsetSampleCreation); err != nil {
		return Sample{}, fmt.Errorf("sample creation: %w", err)
	}
	return Sample{word: w}, nil
}

func SampleFromWord(w encoded.Word) Sample {
	return Sample{word: w}
}

func (s Sample) Word() encoded.Word {
	return s.word
}

func (s Sample) OracleLength() uint16 {
	return s.word.DecodeUint16(OffsetOracleLength)
}

func (s Sample) CumulativeId() uint64 {
	return s.word.DecodeUint64(OffsetCumulativeId)
}

func (s Sample) CumulativeVolatility() uint64 {
	return s.word.DecodeUint64(OffsetCumulativeVolatility)
}

func (s Sample) CumulativeBinCrossed() uint64 {
	return s.word.DecodeUint64(OffsetCumulativeBinCrossed)
}

func (s Sample) Lifetime() uint8 {
	return s.word.DecodeUint8(OffsetSampleLifetime)
}

func (s Sample) CreatedAt() uint64 {
	return s.word.DecodeUint40(OffsetSampleCreation)
}

// LastUpdate is the creation time plus the lifetime.
func (s Sample) LastUpdate() uint64 {
	return s.CreatedAt() + uint64(s.Lifetime())
}

// accumulate returns the cumulative counters after deltaTime more seconds at
// activeId, volatilityAccumulator and binCrossed.
func (s Sample) accumulate(deltaTime uint64, activeId, volatilityAccumulator, binCrossed uint32) (uint64, uint64, uint64) {
	return s.CumulativeId() + uint64(activeId)*deltaTime,
		s.CumulativeVolatility() + uint64(volatilityAccumulator)*deltaTime,
		s.CumulativeBinCrossed() + uint64(binCrossed)*deltaTime
}

// weightedAverage interpolates the cumulative counters of prev and next.
func weightedAverage(prev, next Sample, weightPrev, weightNext uint64) (uint64, uint64, uint64) {
	total := weightPrev + weightNext
	if total == 0 {
		return prev.CumulativeId(), prev.CumulativeVolatility(), prev.CumulativeBinCrossed()
	}
	avg := func(a, b uint64) uint64 {
		// 128 bit intermediate: a*weightPrev + b*weightNext can exceed 64 bits
		return mulAddDiv(a, weightPrev, b, weightNext, total)
	}
	return avg(prev.CumulativeId(), next.CumulativeId()),
		avg(prev.CumulativeVolatility(), next.CumulativeVolatility()),
		avg(prev.CumulativeBinCrossed(), next.CumulativeBinCrossed())
}
