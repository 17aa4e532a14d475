// Package tree indexes the non-empty bins of a pair in a three level bitmap
// so the next bin in either direction is found in constant time.
package tree

import (
	"sort"

	"github.com/holiman/uint256"

	lbmath "github.com/krazyTry/liquidity-book-go/liquidity_book/math"
)

// TreeUint24 holds up to 2^24 ids. Level 2 leaves hold 256 ids each, level 1
// marks non-empty level 2 leaves and level 0 marks non-empty level 1 leaves.
type TreeUint24 struct {
	level0 uint256.Int
	level1 map[uint32]uint256.Int
	level2 map[uint32]uint256.Int
}

func New() *TreeUint24 {
	return &TreeUint24{
		level1: make(map[uint32]uint256.Int),
		level2: make(map[uint32]uint256.Int),
	}
}

func (t *TreeUint24) Clone() *TreeUint24 {
	c := New()
	c.level0 = t.level0
	for k, v := range t.level1 {
		c.level1[k] = v
	}
	for k, v := range t.level2 {
		c.level2[k] = v
	}
	return c
}

func (t *TreeUint24) Contains(id uint32) bool {
	leaves := t.level2[id>>8]
	return hasBit(&leaves, uint(id&0xff))
}

// Add inserts id and reports whether it was absent.
func (t *TreeUint24) Add(id uint32) bool {
	key2 := id >> 8
	leaves := t.level2[key2]
	if hasBit(&leaves, uint(id&0xff)) {
		return false
	}
	t.level2[key2] = withBit(leaves, uint(id&0xff), true)

	if leaves.IsZero() {
		key1 := key2 >> 8
		leaves1 := t.level1[key1]
		t.level1[key1] = withBit(leaves1, uint(key2&0xff), true)

		if leaves1.IsZero() {
			t.level0 = withBit(t.level0, uint(key1&0xff), true)
		}
	}
	return true
}

// Remove deletes id and reports whether it was present.
func (t *TreeUint24) Remove(id uint32) bool {
	key2 := id >> 8
	leaves := t.level2[key2]
	if !hasBit(&leaves, uint(id&0xff)) {
		return false
	}
	newLeaves := withBit(leaves, uint(id&0xff), false)
	if !newLeaves.IsZero() {
		t.level2[key2] = newLeaves
		return true
	}
	delete(t.level2, key2)

	key1 := key2 >> 8
	leaves1 := withBit(t.level1[key1], uint(key2&0xff), false)
	if !leaves1.IsZero() {
		t.level1[key1] = leaves1
		return true
	}
	delete(t.level1, key1)
	t.level0 = withBit(t.level0, uint(key1&0xff), false)
	return true
}

// FindFirstRight returns the closest id strictly lower than id.
func (t *TreeUint24) FindFirstRight(id uint32) (uint32, bool) {
	key2 := id >> 8
	bit := uint8(id)

	if bit != 0 {
		leaves := t.level2[key2]
		if closest := lbmath.ClosestBitRight(&leaves, bit-1); closest != lbmath.NoBit {
			return key2<<8 | uint32(closest), true
		}
	}

	key1 := key2 >> 8
	bit = uint8(key2)

	if bit != 0 {
		leaves := t.level1[key1]
		if closest := lbmath.ClosestBitRight(&leaves, bit-1); closest != lbmath.NoBit {
			k2 := key1<<8 | uint32(closest)
			leaves2 := t.level2[k2]
			return k2<<8 | uint32(lbmath.MostSignificantBit(&leaves2)), true
		}
	}

	bit = uint8(key1)

	if bit != 0 {
		if closest := lbmath.ClosestBitRight(&t.level0, bit-1); closest != lbmath.NoBit {
			k1 := uint32(closest)
			leaves1 := t.level1[k1]
			k2 := k1<<8 | uint32(lbmath.MostSignificantBit(&leaves1))
			leaves2 := t.level2[k2]
			return k2<<8 | uint32(lbmath.MostSignificantBit(&leaves2)), true
		}
	}

	return 0, false
}

// FindFirstLeft returns the closest id strictly greater than id.
func (t *TreeUint24) FindFirstLeft(id uint32) (uint32, bool) {
	key2 := id >> 8
	bit := uint8(id)

	if bit != 0xff {
		leaves := t.level2[key2]
		if closest := lbmath.ClosestBitLeft(&leaves, bit+1); closest != lbmath.NoBit {
			return key2<<8 | uint32(closest), true
		}
	}

	key1 := key2 >> 8
	bit = uint8(key2)

	if bit != 0xff {
		leaves := t.level1[key1]
		if closest := lbmath.ClosestBitLeft(&leaves, bit+1); closest != lbmath.NoBit {
			k2 := key1<<8 | uint32(closest)
			leaves2 := t.level2[k2]
			return k2<<8 | uint32(lbmath.LeastSignificantBit(&leaves2)), true
		}
	}

	bit = uint8(key1)

	if bit != 0xff {
		if closest := lbmath.ClosestBitLeft(&t.level0, bit+1); closest != lbmath.NoBit {
			k1 := uint32(closest)
			leaves1 := t.level1[k1]
			k2 := k1<<8 | uint32(lbmath.LeastSignificantBit(&leaves1))
			leaves2 := t.level2[k2]
			return k2<<8 | uint32(lbmath.LeastSignificantBit(&leaves2)), true
		}
	}

	return 0, false
}

// Ids returns every id in the tree in ascending order.
func (t *TreeUint24) Ids() []uint32 {
	var ids []uint32
	for key2, leaves := range t.level2 {
		for bit := uint(0); bit < 256; bit++ {
			if hasBit(&leaves, bit) {
				ids = append(ids, key2<<8|uint32(bit))
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func hasBit(x *uint256.Int, bit uint) bool {
	return x[bit/64]&(1<<(bit%64)) != 0
}

func withBit(x uint256.Int, bit uint, set bool) uint256.Int {
	if set {
		x[bit/64] |= 1 << (bit % 64)
	} else {
		x[bit/64] &^= 1 << (bit % 64)
	}
	return x
}
