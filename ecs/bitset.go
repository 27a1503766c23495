package ecs

import (
	"iter"
	"math/bits"
	"slices"
	"strconv"
	"strings"
)

// ComponentID identifies a registered component type within one Registry.
type ComponentID uint8

const (
	// MaxComponents is the number of distinct component types a registry can hold.
	MaxComponents = 256

	bitsPerWord = 64
	maskWords   = MaxComponents / bitsPerWord
)

// Bitset is an immutable set of component ids. It identifies an archetype.
//
// The word vector is kept normalised: the most significant word is never zero,
// and the empty set has no words at all. That makes equality and ordering a
// plain comparison of the vectors.
type Bitset struct {
	words []uint64
	ids   []ComponentID
}

// NewBitset returns the set containing ids. Duplicates are ignored.
func NewBitset(ids ...ComponentID) Bitset {
	if len(ids) == 0 {
		return Bitset{}
	}

	top := 0
	for _, id := range ids {
		top = max(top, int(id)/bitsPerWord)
	}
	words := make([]uint64, top+1)
	for _, id := range ids {
		words[id/bitsPerWord] |= 1 << (id % bitsPerWord)
	}
	return Bitset{words: words, ids: membersOf(words)}
}

func membersOf(words []uint64) []ComponentID {
	n := 0
	for _, w := range words {
		n += bits.OnesCount64(w)
	}
	ids := make([]ComponentID, 0, n)
	for i, w := range words {
		for w != 0 {
			pos := bits.TrailingZeros64(w)
			ids = append(ids, ComponentID(i*bitsPerWord+pos))
			w &^= 1 << pos
		}
	}
	return ids
}

// Contains reports whether id is a member.
func (b Bitset) Contains(id ComponentID) bool {
	word := int(id) / bitsPerWord
	if word >= len(b.words) {
		return false
	}
	return b.words[word]&(1<<(id%bitsPerWord)) != 0
}

// Add returns a new set with id added. The receiver is unchanged.
func (b Bitset) Add(id ComponentID) Bitset {
	if b.Contains(id) {
		return b
	}

	words := make([]uint64, max(len(b.words), int(id)/bitsPerWord+1))
	copy(words, b.words)
	words[id/bitsPerWord] |= 1 << (id % bitsPerWord)

	at, _ := slices.BinarySearch(b.ids, id)
	ids := make([]ComponentID, 0, len(b.ids)+1)
	ids = append(ids, b.ids[:at]...)
	ids = append(ids, id)
	ids = append(ids, b.ids[at:]...)

	return Bitset{words: words, ids: ids}
}

// Remove returns a new set with id removed. The receiver is unchanged.
func (b Bitset) Remove(id ComponentID) Bitset {
	if !b.Contains(id) {
		return b
	}

	words := slices.Clone(b.words)
	words[id/bitsPerWord] &^= 1 << (id % bitsPerWord)
	for len(words) > 0 && words[len(words)-1] == 0 {
		words = words[:len(words)-1]
	}
	if len(words) == 0 {
		return Bitset{}
	}

	at, _ := slices.BinarySearch(b.ids, id)
	ids := make([]ComponentID, 0, len(b.ids)-1)
	ids = append(ids, b.ids[:at]...)
	ids = append(ids, b.ids[at+1:]...)

	return Bitset{words: words, ids: ids}
}

// Compare orders sets by the numeric value of their bit vectors, most
// significant word first. It returns -1, 0 or 1.
func (b Bitset) Compare(other Bitset) int {
	if len(b.words) != len(other.words) {
		if len(b.words) > len(other.words) {
			return 1
		}
		return -1
	}
	for i := len(b.words) - 1; i >= 0; i-- {
		switch {
		case b.words[i] > other.words[i]:
			return 1
		case b.words[i] < other.words[i]:
			return -1
		}
	}
	return 0
}

// Equal reports whether both sets have the same members.
func (b Bitset) Equal(other Bitset) bool {
	return slices.Equal(b.words, other.words)
}

// Len returns the number of members.
func (b Bitset) Len() int {
	return len(b.ids)
}

// IsEmpty reports whether the set has no members.
func (b Bitset) IsEmpty() bool {
	return len(b.words) == 0
}

// Members iterates over the member ids in ascending order.
func (b Bitset) Members() iter.Seq[ComponentID] {
	return func(yield func(ComponentID) bool) {
		for _, id := range b.ids {
			if !yield(id) {
				return
			}
		}
	}
}

// IDs returns a copy of the member ids in ascending order.
func (b Bitset) IDs() []ComponentID {
	return slices.Clone(b.ids)
}

// word returns the i-th 64-bit word, zero past the end of the vector.
func (b Bitset) word(i int) uint64 {
	if i >= len(b.words) {
		return 0
	}
	return b.words[i]
}

func (b Bitset) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, id := range b.ids {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(int(id)))
	}
	sb.WriteByte('}')
	return sb.String()
}
