// Package intset implements an ordered set of unsigned 32-bit integers,
// the building block every other planning package keys its maps and
// caches on: glyph ids, segment indices, and codepoints all live in one
// of these.
package intset

import (
	"hash/fnv"
	"sort"
	"strings"
)

// IntSet is an ordered, mutable set of uint32. The zero value is an empty
// set ready to use.
type IntSet struct {
	vals []uint32 // sorted ascending, no duplicates
}

// GlyphSet, SegmentSet and CodepointSet are the same representation used
// for three different domains. Keeping them as aliases (rather than
// distinct defined types) means a GlyphSet can be passed anywhere an
// IntSet is expected without a conversion, while call sites still read
// according to what they hold.
type (
	GlyphSet     = IntSet
	SegmentSet   = IntSet
	CodepointSet = IntSet
)

// New returns a set containing the given values.
func New(vals ...uint32) IntSet {
	var s IntSet
	for _, v := range vals {
		s.Add(v)
	}
	return s
}

// Range returns a set containing every value in [lo, hi] inclusive.
func Range(lo, hi uint32) IntSet {
	var s IntSet
	s.AddRange(lo, hi)
	return s
}

func (s *IntSet) search(v uint32) (int, bool) {
	i := sort.Search(len(s.vals), func(i int) bool { return s.vals[i] >= v })
	return i, i < len(s.vals) && s.vals[i] == v
}

// Add inserts v into the set.
func (s *IntSet) Add(v uint32) {
	i, found := s.search(v)
	if found {
		return
	}
	s.vals = append(s.vals, 0)
	copy(s.vals[i+1:], s.vals[i:])
	s.vals[i] = v
}

// AddRange inserts every value in [lo, hi] inclusive.
func (s *IntSet) AddRange(lo, hi uint32) {
	for v := lo; v <= hi; v++ {
		s.Add(v)
		if v == hi {
			break // guards against hi == math.MaxUint32
		}
	}
}

// AddSet inserts every value of other into s.
func (s *IntSet) AddSet(other IntSet) {
	for _, v := range other.vals {
		s.Add(v)
	}
}

// Erase removes v from the set. A no-op if v is absent.
func (s *IntSet) Erase(v uint32) {
	i, found := s.search(v)
	if !found {
		return
	}
	s.vals = append(s.vals[:i], s.vals[i+1:]...)
}

// Contains reports whether v is a member of s.
func (s IntSet) Contains(v uint32) bool {
	_, found := s.search(v)
	return found
}

// Len returns the number of members.
func (s IntSet) Len() int { return len(s.vals) }

// Empty reports whether the set has no members.
func (s IntSet) Empty() bool { return len(s.vals) == 0 }

// Clear removes every member.
func (s *IntSet) Clear() { s.vals = nil }

// Min returns the smallest member and true, or (0, false) if empty.
func (s IntSet) Min() (uint32, bool) {
	if len(s.vals) == 0 {
		return 0, false
	}
	return s.vals[0], true
}

// Max returns the largest member and true, or (0, false) if empty.
func (s IntSet) Max() (uint32, bool) {
	if len(s.vals) == 0 {
		return 0, false
	}
	return s.vals[len(s.vals)-1], true
}

// Values returns the members in ascending order. The caller must not
// mutate the returned slice.
func (s IntSet) Values() []uint32 { return s.vals }

// Clone returns an independent copy of s.
func (s IntSet) Clone() IntSet {
	if len(s.vals) == 0 {
		return IntSet{}
	}
	out := make([]uint32, len(s.vals))
	copy(out, s.vals)
	return IntSet{vals: out}
}

// ForEach calls fn for every member in ascending order.
func (s IntSet) ForEach(fn func(uint32)) {
	for _, v := range s.vals {
		fn(v)
	}
}

// Equal reports whether s and other contain exactly the same members.
func (s IntSet) Equal(other IntSet) bool {
	if len(s.vals) != len(other.vals) {
		return false
	}
	for i, v := range s.vals {
		if other.vals[i] != v {
			return false
		}
	}
	return true
}

// Less defines the total order over sets required for deterministic
// ordering of conditions and groupings: lexicographic ascending compare
// of the element sequences, where a strict prefix sorts before the
// longer set it is a prefix of.
func (s IntSet) Less(other IntSet) bool {
	n := len(s.vals)
	if len(other.vals) < n {
		n = len(other.vals)
	}
	for i := 0; i < n; i++ {
		if s.vals[i] != other.vals[i] {
			return s.vals[i] < other.vals[i]
		}
	}
	return len(s.vals) < len(other.vals)
}

// IsSubsetOf reports whether every member of s is also a member of other.
func (s IntSet) IsSubsetOf(other IntSet) bool {
	for _, v := range s.vals {
		if !other.Contains(v) {
			return false
		}
	}
	return true
}

// Intersects reports whether s and other share at least one member.
func (s IntSet) Intersects(other IntSet) bool {
	i, j := 0, 0
	for i < len(s.vals) && j < len(other.vals) {
		switch {
		case s.vals[i] == other.vals[j]:
			return true
		case s.vals[i] < other.vals[j]:
			i++
		default:
			j++
		}
	}
	return false
}

// Union returns a new set containing every member of s or other.
func (s IntSet) Union(other IntSet) IntSet {
	out := make([]uint32, 0, len(s.vals)+len(other.vals))
	i, j := 0, 0
	for i < len(s.vals) && j < len(other.vals) {
		switch {
		case s.vals[i] < other.vals[j]:
			out = append(out, s.vals[i])
			i++
		case s.vals[i] > other.vals[j]:
			out = append(out, other.vals[j])
			j++
		default:
			out = append(out, s.vals[i])
			i++
			j++
		}
	}
	out = append(out, s.vals[i:]...)
	out = append(out, other.vals[j:]...)
	return IntSet{vals: out}
}

// Intersect returns a new set containing members present in both s and
// other.
func (s IntSet) Intersect(other IntSet) IntSet {
	var out []uint32
	i, j := 0, 0
	for i < len(s.vals) && j < len(other.vals) {
		switch {
		case s.vals[i] < other.vals[j]:
			i++
		case s.vals[i] > other.vals[j]:
			j++
		default:
			out = append(out, s.vals[i])
			i++
			j++
		}
	}
	return IntSet{vals: out}
}

// Subtract returns a new set containing members of s not present in
// other.
func (s IntSet) Subtract(other IntSet) IntSet {
	var out []uint32
	i, j := 0, 0
	for i < len(s.vals) {
		if j >= len(other.vals) || s.vals[i] < other.vals[j] {
			out = append(out, s.vals[i])
			i++
			continue
		}
		if s.vals[i] > other.vals[j] {
			j++
			continue
		}
		i++
		j++
	}
	return IntSet{vals: out}
}

// SymmetricDifference returns a new set containing members in exactly one
// of s or other.
func (s IntSet) SymmetricDifference(other IntSet) IntSet {
	var out []uint32
	i, j := 0, 0
	for i < len(s.vals) && j < len(other.vals) {
		switch {
		case s.vals[i] < other.vals[j]:
			out = append(out, s.vals[i])
			i++
		case s.vals[i] > other.vals[j]:
			out = append(out, other.vals[j])
			j++
		default:
			i++
			j++
		}
	}
	out = append(out, s.vals[i:]...)
	out = append(out, other.vals[j:]...)
	return IntSet{vals: out}
}

// Hash returns a deterministic hash of the set's contents, suitable for
// use in hash-indexed maps keyed by set identity.
func (s IntSet) Hash() uint64 {
	h := fnv.New64a()
	var buf [4]byte
	for _, v := range s.vals {
		buf[0] = byte(v)
		buf[1] = byte(v >> 8)
		buf[2] = byte(v >> 16)
		buf[3] = byte(v >> 24)
		h.Write(buf[:])
	}
	return h.Sum64()
}

// Key returns a canonical string encoding of the set, for use as a Go map
// key when a hash-indexed map is wanted (Go maps cannot be keyed directly
// by a slice-backed type).
func (s IntSet) Key() string {
	var b strings.Builder
	for i, v := range s.vals {
		if i > 0 {
			b.WriteByte(',')
		}
		writeUint(&b, v)
	}
	return b.String()
}

func writeUint(b *strings.Builder, v uint32) {
	if v == 0 {
		b.WriteByte('0')
		return
	}
	var tmp [10]byte
	i := len(tmp)
	for v > 0 {
		i--
		tmp[i] = byte('0' + v%10)
		v /= 10
	}
	b.Write(tmp[i:])
}
