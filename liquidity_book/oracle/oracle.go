// Package oracle keeps a circular buffer of cumulative samples of the active
// id, the volatility accumulator and the bins crossed, from which time
// weighted averages are derived.
//
// Sample ids are 1-based; the buffer slot of id i is i-1.
package oracle

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/krazyTry/liquidity-book-go/liquidity_book/math/encoded"
	"github.com/krazyTry/liquidity-book-go/liquidity_book/pair_parameters"
	"github.com/krazyTry/liquidity-book-go/liquidity_book/shared"
)

type Oracle struct {
	samples []Sample
}

func New() *Oracle {
	return &Oracle{}
}

func (o *Oracle) Clone() *Oracle {
	c := &Oracle{samples: make([]Sample, len(o.samples))}
	copy(c.samples, o.samples)
	return c
}

// Capacity is the number of allocated slots.
func (o *Oracle) Capacity() int {
	return len(o.samples)
}

// Words returns the raw sample words, slot order.
func (o *Oracle) Words() []encoded.Word {
	words := make([]encoded.Word, len(o.samples))
	for i, s := range o.samples {
		words[i] = s.word
	}
	return words
}

func FromWords(words []encoded.Word) *Oracle {
	o := &Oracle{samples: make([]Sample, len(words))}
	for i, w := range words {
		o.samples[i] = Sample{word: w}
	}
	return o
}

func checkOracleId(oracleId uint16) error {
	if oracleId == 0 {
		return shared.ErrInvalidOracleId
	}
	return nil
}

// GetSample returns the sample with the given 1-based id. Unallocated ids read as empty.
func (o *Oracle) GetSample(oracleId uint16) (Sample, error) {
	if err := checkOracleId(oracleId); err != nil {
		return Sample{}, err
	}
	return o.slot(int(oracleId) - 1), nil
}

func (o *Oracle) slot(i int) Sample {
	if i < 0 || i >= len(o.samples) {
		return Sample{}
	}
	return o.samples[i]
}

func (o *Oracle) setSample(oracleId uint16, s Sample) error {
	if err := checkOracleId(oracleId); err != nil {
		return err
	}
	if int(oracleId) > len(o.samples) {
		return fmt.Errorf("%w: %d beyond length %d", shared.ErrInvalidOracleId, oracleId, len(o.samples))
	}
	o.samples[oracleId-1] = s
	return nil
}

// GetActiveSampleAndSize returns the active sample and how many slots hold written samples.
// Slots appended by IncreaseLength carry the active size in their length field until written.
func (o *Oracle) GetActiveSampleAndSize(oracleId uint16) (Sample, uint16, error) {
	active, err := o.GetSample(oracleId)
	if err != nil {
		return Sample{}, 0, err
	}

	size := active.OracleLength()
	if oracleId != size {
		last, err := o.GetSample(size)
		if err != nil {
			return Sample{}, 0, err
		}
		size = max(oracleId, last.OracleLength())
	}
	return active, size, nil
}

// Observation is the interpolated cumulative state of the oracle at a timestamp.
type Observation struct {
	LastUpdate           uint64
	CumulativeId         uint64
	CumulativeVolatility uint64
	CumulativeBinCrossed uint64
}

// GetSampleAt returns the cumulative values at lookUpTimestamp, linearly interpolated
// between the two samples bracketing it. It fails with shared.ErrStaleOracleQuery when
// lookUpTimestamp precedes the oldest sample.
func (o *Oracle) GetSampleAt(oracleId uint16, lookUpTimestamp uint64) (Observation, error) {
	active, size, err := o.GetActiveSampleAndSize(oracleId)
	if err != nil {
		return Observation{}, err
	}
	if size == 0 {
		return Observation{}, fmt.Errorf("%w: oracle not initialized", shared.ErrInvalidOracleId)
	}

	oldest := o.slot(int(oracleId % size))
	if oldest.LastUpdate() > lookUpTimestamp {
		return Observation{}, fmt.Errorf("%w: %d < %d", shared.ErrStaleOracleQuery, lookUpTimestamp, oldest.LastUpdate())
	}

	if lastUpdate := active.LastUpdate(); lastUpdate <= lookUpTimestamp {
		return Observation{
			LastUpdate:           lastUpdate,
			CumulativeId:         active.CumulativeId(),
			CumulativeVolatility: active.CumulativeVolatility(),
			CumulativeBinCrossed: active.CumulativeBinCrossed(),
		}, nil
	}

	prev, next := o.binarySearch(oracleId, lookUpTimestamp, size)
	weightPrev := next.LastUpdate() - lookUpTimestamp
	weightNext := lookUpTimestamp - prev.LastUpdate()
	cumulativeId, cumulativeVolatility, cumulativeBinCrossed := weightedAverage(prev, next, weightPrev, weightNext)

	return Observation{
		LastUpdate:           lookUpTimestamp,
		CumulativeId:         cumulativeId,
		CumulativeVolatility: cumulativeVolatility,
		CumulativeBinCrossed: cumulativeBinCrossed,
	}, nil
}

// binarySearch walks the ring from the oldest slot (oracleId % length) and returns the
// samples around lookUpTimestamp. Both are the same sample on an exact match.
func (o *Oracle) binarySearch(oracleId uint16, lookUpTimestamp uint64, length uint16) (Sample, Sample) {
	low, high := 0, int(length)-1
	start := int(oracleId)
	idx := 0
	var sample Sample

	for low <= high {
		mid := (low + high) >> 1
		idx = (start + mid) % int(length)
		sample = o.slot(idx)

		switch lastUpdate := sample.LastUpdate(); {
		case lastUpdate > lookUpTimestamp:
			high = mid - 1
		case lastUpdate < lookUpTimestamp:
			low = mid + 1
		default:
			return sample, sample
		}
	}

	if lookUpTimestamp < sample.LastUpdate() {
		if idx == 0 {
			idx = int(length)
		}
		return o.slot(idx - 1), sample
	}
	return sample, o.slot((idx + 1) % int(length))
}

// Update accumulates the time elapsed since the active sample's last update at activeId and
// rolls to the next slot once the active sample is older than the max sample lifetime.
// It returns the parameters with the possibly advanced oracle id. A zero oracle id disables
// the oracle.
func (o *Oracle) Update(params pair_parameters.PairParameters, activeId uint32, now uint64) (pair_parameters.PairParameters, error) {
	oracleId := params.OracleId()
	if oracleId == 0 {
		return params, nil
	}

	sample, err := o.GetSample(oracleId)
	if err != nil {
		return params, err
	}

	length := sample.OracleLength()
	if length == 0 {
		return params, fmt.Errorf("%w: sample %d has no length", shared.ErrInvalidOracleId, oracleId)
	}

	createdAt := sample.CreatedAt()
	lastUpdatedAt := createdAt + uint64(sample.Lifetime())
	if now <= lastUpdatedAt {
		return params, nil
	}

	cumulativeId, cumulativeVolatility, cumulativeBinCrossed := sample.accumulate(
		now-lastUpdatedAt,
		activeId,
		params.VolatilityAccumulator(),
		params.GetDeltaId(activeId),
	)

	lifetime := now - createdAt
	if lifetime > shared.MaxSampleLifetime {
		oracleId = oracleId%length + 1
		lifetime = 0
		createdAt = now
	}

	next, err := EncodeSample(length, cumulativeId, cumulativeVolatility, cumulativeBinCrossed, uint8(lifetime), createdAt)
	if err != nil {
		return params, err
	}
	if err := o.setSample(oracleId, next); err != nil {
		return params, err
	}

	params.SetOracleId(oracleId)
	return params, nil
}

// IncreaseLength grows the buffer to newLength slots. Existing samples are kept; the buffer
// never shrinks.
func (o *Oracle) IncreaseLength(oracleId uint16, newLength uint16) error {
	sample, err := o.GetSample(oracleId)
	if err != nil {
		return err
	}

	length := sample.OracleLength()
	if length >= newLength {
		return fmt.Errorf("%w: %d >= %d", shared.ErrNewLengthTooSmall, length, newLength)
	}

	var last Sample
	switch {
	case length == oracleId:
		last = sample
	case length != 0:
		last = o.slot(int(length) - 1)
	}
	activeSize := max(oracleId, last.OracleLength())

	if len(o.samples) < int(newLength) {
		grown := make([]Sample, newLength)
		copy(grown, o.samples)
		o.samples = grown
	}
	for i := int(length); i < int(newLength); i++ {
		var w encoded.Word
		w.SetUint16(activeSize, OffsetOracleLength)
		o.samples[i] = Sample{word: w}
	}

	w := sample.word
	w.SetUint16(newLength, OffsetOracleLength)
	return o.setSample(oracleId, Sample{word: w})
}

// TWAP is the time weighted average of the oracle counters over a window.
type TWAP struct {
	AverageId          uint64
	AverageVolatility  uint64
	AverageBinsCrossed uint64
}

// GetTWAP averages the cumulative counters between from and to.
func (o *Oracle) GetTWAP(oracleId uint16, from, to uint64) (TWAP, error) {
	if to <= from {
		return TWAP{}, fmt.Errorf("oracle: empty window [%d, %d]", from, to)
	}
	start, err := o.GetSampleAt(oracleId, from)
	if err != nil {
		return TWAP{}, err
	}
	end, err := o.GetSampleAt(oracleId, to)
	if err != nil {
		return TWAP{}, err
	}
	dt := to - from
	return TWAP{
		AverageId:          (end.CumulativeId - start.CumulativeId) / dt,
		AverageVolatility:  (end.CumulativeVolatility - start.CumulativeVolatility) / dt,
		AverageBinsCrossed: (end.CumulativeBinCrossed - start.CumulativeBinCrossed) / dt,
	}, nil
}

func mulAddDiv(a, wa, b, wb, d uint64) uint64 {
	x := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(wa))
	x.Add(x, new(uint256.Int).Mul(uint256.NewInt(b), uint256.NewInt(wb)))
	return x.Div(x, uint256.NewInt(d)).Uint64()
}
