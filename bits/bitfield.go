package bits

import "math/bits"

// Bitfield is a growable set of bit positions. The zero value is empty and
// ready to use.
type Bitfield struct {
	words []uint64
}

func NewBitfield(size int) *Bitfield {
	return &Bitfield{words: make([]uint64, (size+63)>>6)}
}

func (b *Bitfield) grow(word int) {
	if word < len(b.words) {
		return
	}
	n := make([]uint64, word+1, 2*(word+1))
	copy(n, b.words)
	b.words = n
}

func (b *Bitfield) Set(bit int) {
	word := bit >> 6 // bit / 64
	b.grow(word)
	mask := uint64(1) << (bit & 63)
	b.words[word] |= mask
}

func (b *Bitfield) Clear(bit int) {
	word := bit >> 6
	if word >= len(b.words) {
		return
	}
	mask := uint64(1) << (bit & 63)
	b.words[word] &^= mask
}

func (b *Bitfield) SetTo(bit int, v bool) {
	if v {
		b.Set(bit)
	} else {
		b.Clear(bit)
	}
}

func (b *Bitfield) Get(bit int) bool {
	word := bit >> 6
	if b == nil || word >= len(b.words) {
		return false
	}
	return (b.words[word]>>(bit&63))&1 == 1
}

func (b *Bitfield) Any() bool {
	if b == nil {
		return false
	}
	for _, w := range b.words {
		if w != 0 {
			return true
		}
	}
	return false
}

func (b *Bitfield) Count() int {
	if b == nil {
		return 0
	}
	c := 0
	for _, w := range b.words {
		c += bits.OnesCount64(w)
	}
	return c
}

// AnyInRange reports whether a bit in [start, end) is set.
func (b *Bitfield) AnyInRange(start, end int) bool {
	if b == nil || start >= end {
		return false
	}
	for i := start; i < end; {
		word := i >> 6
		if word >= len(b.words) {
			return false
		}
		w := b.words[word] >> (i & 63)
		span := 64 - (i & 63)
		if rem := end - i; rem < span {
			w &= (uint64(1) << rem) - 1
			span = rem
		}
		if w != 0 {
			return true
		}
		i += span
	}
	return false
}

// Slice copies the bits of [start, end) into a new bitfield starting at 0.
func (b *Bitfield) Slice(start, end int) *Bitfield {
	out := NewBitfield(end - start)
	for i := start; i < end; i++ {
		if b.Get(i) {
			out.Set(i - start)
		}
	}
	return out
}

// ToIndices appends every set bit to out in ascending order.
func (b *Bitfield) ToIndices(out []int) []int {
	if b == nil {
		return out
	}
	for wi, w := range b.words {
		for w != 0 {
			tz := bits.TrailingZeros64(w)
			out = append(out, wi*64+tz)
			w &= w - 1 // clear lowest set bit
		}
	}
	return out
}

func (b *Bitfield) Clone() *Bitfield {
	if b == nil {
		return nil
	}
	return &Bitfield{words: append([]uint64(nil), b.words...)}
}
