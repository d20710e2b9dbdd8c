// Package condition holds the per-glyph AND/OR segment dependency sets
// and the ActivationCondition model built from them, including the
// three-phase lowering to a flat patch-map entry table.
package condition

import "github.com/go-ift/segmenter/intset"

// GlyphConditions is a glyph's conjunctive and disjunctive segment
// dependency sets.
type GlyphConditions struct {
	And intset.SegmentSet
	Or  intset.SegmentSet
}

// RemoveSegments subtracts segments from both the AND- and OR-sets.
func (c *GlyphConditions) RemoveSegments(segments intset.SegmentSet) {
	c.And = c.And.Subtract(segments)
	c.Or = c.Or.Subtract(segments)
}

// Empty reports whether neither set has any member.
func (c GlyphConditions) Empty() bool { return c.And.Empty() && c.Or.Empty() }

// Set is the GlyphConditionSet component: per-glyph (and, or) segment
// sets plus the inverse index segment -> glyphs that mention it.
type Set struct {
	perGlyph      []GlyphConditions
	segmentToGids map[uint32]intset.GlyphSet
}

// New returns a Set sized for numGlyphs glyphs, all with empty
// conditions.
func New(numGlyphs int) *Set {
	return &Set{
		perGlyph:      make([]GlyphConditions, numGlyphs),
		segmentToGids: make(map[uint32]intset.GlyphSet),
	}
}

// AddAnd records that gid conjunctively depends on seg.
func (s *Set) AddAnd(gid uint32, seg uint32) {
	s.perGlyph[gid].And.Add(seg)
	s.indexGlyph(gid, seg)
}

// AddOr records that gid disjunctively depends on seg.
func (s *Set) AddOr(gid uint32, seg uint32) {
	s.perGlyph[gid].Or.Add(seg)
	s.indexGlyph(gid, seg)
}

func (s *Set) indexGlyph(gid, seg uint32) {
	set := s.segmentToGids[seg]
	set.Add(gid)
	s.segmentToGids[seg] = set
}

// ConditionsFor returns gid's current conditions.
func (s *Set) ConditionsFor(gid uint32) GlyphConditions { return s.perGlyph[gid] }

// GlyphsWithSegment returns every glyph whose AND- or OR-set mentions
// seg.
func (s *Set) GlyphsWithSegment(seg uint32) intset.GlyphSet {
	return s.segmentToGids[seg]
}

// Invalidate removes every segment in segments from both sets of every
// glyph in glyphs, and subtracts glyphs from each of those segments'
// inverse index entries.
func (s *Set) Invalidate(glyphs intset.GlyphSet, segments intset.SegmentSet) {
	glyphs.ForEach(func(gid uint32) {
		c := s.perGlyph[gid]
		c.RemoveSegments(segments)
		s.perGlyph[gid] = c
	})
	segments.ForEach(func(seg uint32) {
		if set, ok := s.segmentToGids[seg]; ok {
			s.segmentToGids[seg] = set.Subtract(glyphs)
		}
	})
}

// NumGlyphs returns the number of glyphs this set was sized for.
func (s *Set) NumGlyphs() int { return len(s.perGlyph) }
