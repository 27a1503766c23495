package ecs

// Filter is a compiled all/any/none predicate over archetype keys.
//
// A key matches when it contains every id of the all clause, at least one id
// of the any clause (an empty any clause always passes), and none of the ids
// of the none clause.
type Filter struct {
	all    [maskWords]uint64
	anyOf  [maskWords]uint64
	none   [maskWords]uint64
	hasAny bool
}

// NewFilter compiles the three id lists into a Filter.
func NewFilter(all, anyOf, none []ComponentID) Filter {
	return Filter{}.All(all...).Any(anyOf...).None(none...)
}

// All returns a copy of f that additionally requires every id.
func (f Filter) All(ids ...ComponentID) Filter {
	setMaskBits(&f.all, ids)
	return f
}

// Any returns a copy of f whose any clause also accepts ids.
func (f Filter) Any(ids ...ComponentID) Filter {
	if len(ids) > 0 {
		f.hasAny = true
	}
	setMaskBits(&f.anyOf, ids)
	return f
}

// None returns a copy of f that additionally rejects every id.
func (f Filter) None(ids ...ComponentID) Filter {
	setMaskBits(&f.none, ids)
	return f
}

func setMaskBits(m *[maskWords]uint64, ids []ComponentID) {
	for _, id := range ids {
		m[id/bitsPerWord] |= 1 << (id % bitsPerWord)
	}
}

// Matches reports whether the key satisfies all three clauses.
func (f Filter) Matches(key Bitset) bool {
	overlap := false
	for i := 0; i < maskWords; i++ {
		w := key.word(i)
		if w&f.all[i] != f.all[i] {
			return false
		}
		if w&f.none[i] != 0 {
			return false
		}
		if w&f.anyOf[i] != 0 {
			overlap = true
		}
	}
	return !f.hasAny || overlap
}
