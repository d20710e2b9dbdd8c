// Package partition implements a disjoint-set over glyph ids, used by
// the grouping package to alias segments whose exclusive glyphs are
// identical.
package partition

import (
	"sort"

	"github.com/go-ift/segmenter/ifterr"
	"github.com/go-ift/segmenter/intset"
)

// Partition is a union-find structure over [0, capacity) with union by
// rank and path compression.
type Partition struct {
	parent []uint32
	rank   []uint8

	cacheValid bool
	groups     []intset.GlyphSet
}

// New returns a Partition over capacity glyph ids, each initially in its
// own singleton class.
func New(capacity int) *Partition {
	p := &Partition{
		parent: make([]uint32, capacity),
		rank:   make([]uint8, capacity),
	}
	for i := range p.parent {
		p.parent[i] = uint32(i)
	}
	return p
}

// Capacity returns the number of glyph ids this partition covers.
func (p *Partition) Capacity() int { return len(p.parent) }

func (p *Partition) checkBounds(op string, gid uint32) error {
	if int(gid) >= len(p.parent) {
		return ifterr.New(op, ifterr.InvalidArgument, "glyph id %d out of range [0, %d)", gid, len(p.parent))
	}
	return nil
}

// Find returns the representative of gid's class, compressing the path
// along the way.
func (p *Partition) Find(gid uint32) (uint32, error) {
	if err := p.checkBounds("Find", gid); err != nil {
		return 0, err
	}
	return p.find(gid), nil
}

func (p *Partition) find(gid uint32) uint32 {
	root := gid
	for p.parent[root] != root {
		root = p.parent[root]
	}
	for p.parent[gid] != root {
		p.parent[gid], gid = root, p.parent[gid]
	}
	return root
}

// Union merges the classes containing a and b.
func (p *Partition) Union(a, b uint32) error {
	if err := p.checkBounds("Union", a); err != nil {
		return err
	}
	if err := p.checkBounds("Union", b); err != nil {
		return err
	}
	p.union(a, b)
	return nil
}

func (p *Partition) union(a, b uint32) {
	ra, rb := p.find(a), p.find(b)
	if ra == rb {
		return
	}
	switch {
	case p.rank[ra] < p.rank[rb]:
		ra, rb = rb, ra
	case p.rank[ra] == p.rank[rb]:
		p.rank[ra]++
	}
	p.parent[rb] = ra
	p.cacheValid = false
}

// UnionSet unifies every member of glyphs with the first member.
func (p *Partition) UnionSet(glyphs intset.GlyphSet) error {
	vals := glyphs.Values()
	if len(vals) < 2 {
		if len(vals) == 1 {
			return p.checkBounds("UnionSet", vals[0])
		}
		return nil
	}
	first := vals[0]
	if err := p.checkBounds("UnionSet", first); err != nil {
		return err
	}
	for _, v := range vals[1:] {
		if err := p.Union(first, v); err != nil {
			return err
		}
	}
	return nil
}

// UnionPartition merges other's equivalence classes into p. other must
// have the same capacity.
func (p *Partition) UnionPartition(other *Partition) error {
	if other.Capacity() != p.Capacity() {
		return ifterr.New("UnionPartition", ifterr.InvalidArgument, "capacity mismatch: %d != %d", p.Capacity(), other.Capacity())
	}
	for _, g := range other.NonIdentityGroups() {
		if err := p.UnionSet(g); err != nil {
			return err
		}
	}
	return nil
}

// GlyphsFor returns every member of gid's class, including gid itself.
func (p *Partition) GlyphsFor(gid uint32) (intset.GlyphSet, error) {
	root, err := p.Find(gid)
	if err != nil {
		return intset.GlyphSet{}, err
	}
	var out intset.GlyphSet
	for i := range p.parent {
		if p.find(uint32(i)) == root {
			out.Add(uint32(i))
		}
	}
	return out, nil
}

// NonIdentityGroups returns every class with 2 or more members, in
// ascending order by class contents, rebuilding the cache if a Union has
// invalidated it.
func (p *Partition) NonIdentityGroups() []intset.GlyphSet {
	if !p.cacheValid {
		p.rebuildCache()
	}
	return p.groups
}

func (p *Partition) rebuildCache() {
	byRoot := make(map[uint32]*intset.GlyphSet)
	for i := range p.parent {
		root := p.find(uint32(i))
		set, ok := byRoot[root]
		if !ok {
			set = &intset.GlyphSet{}
			byRoot[root] = set
		}
		set.Add(uint32(i))
	}

	groups := make([]intset.GlyphSet, 0, len(byRoot))
	for _, set := range byRoot {
		if set.Len() >= 2 {
			groups = append(groups, *set)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Less(groups[j]) })

	p.groups = groups
	p.cacheValid = true
}
