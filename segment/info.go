package segment

import "github.com/go-ift/segmenter/intset"

// Info is the RequestedSegmentationInformation component: it owns the
// ordered list of segments plus the initial subset, and caches the glyph
// closures of the initial subset and of the full (initial ∪ all
// segments) subset. Segments are only ever cleared in place, never
// removed or index-shifted, so every index-valued structure built on top
// of Info stays valid across merges.
//
// Info holds no reference to the font or the closure cache: recomputing
// the cached closures after a mutation is the caller's responsibility
// (see Info.ReassignInitSubset and its callers), which keeps this package free
// of any dependency on the font or closure packages.
type Info struct {
	initialSegment SubsetDefinition // without IFT defaults
	segments       []Segment

	initGlyphs  intset.GlyphSet
	fullClosure intset.GlyphSet
}

// NewInfo returns an Info over the given segments with the given initial
// subset (without defaults). Cached closures start empty; call
// SetInitGlyphs/SetFullClosure once they have been computed.
func NewInfo(initialSegment SubsetDefinition, segments []Segment) *Info {
	cp := make([]Segment, len(segments))
	copy(cp, segments)
	return &Info{initialSegment: initialSegment, segments: cp}
}

// InitialSegment returns the initial subset without IFT defaults.
func (info *Info) InitialSegment() SubsetDefinition { return info.initialSegment }

// InitialSegmentWithDefaults returns the initial subset with IFT default
// feature tags unioned in.
func (info *Info) InitialSegmentWithDefaults() SubsetDefinition {
	return AddInitSubsetDefaults(info.initialSegment)
}

// Segments returns the live segment list. The caller must not mutate the
// returned slice directly; use AssignMergedSegment.
func (info *Info) Segments() []Segment { return info.segments }

// Segment returns the segment at index i.
func (info *Info) Segment(i Index) Segment { return info.segments[i] }

// NumSegments returns the number of slots in the segment list, including
// cleared ones.
func (info *Info) NumSegments() int { return len(info.segments) }

// InitGlyphs returns the cached closure of InitialSegmentWithDefaults.
func (info *Info) InitGlyphs() intset.GlyphSet { return info.initGlyphs }

// SetInitGlyphs updates the cached initial-subset closure.
func (info *Info) SetInitGlyphs(g intset.GlyphSet) { info.initGlyphs = g }

// FullClosure returns the cached closure of the initial subset unioned
// with every non-empty segment.
func (info *Info) FullClosure() intset.GlyphSet { return info.fullClosure }

// SetFullClosure updates the cached full closure.
func (info *Info) SetFullClosure(g intset.GlyphSet) { info.fullClosure = g }

// AllSegmentIDs returns the indices of every non-empty segment.
func (info *Info) AllSegmentIDs() intset.SegmentSet {
	var ids intset.SegmentSet
	for i, s := range info.segments {
		if !s.Empty() {
			ids.Add(Index(i))
		}
	}
	return ids
}

// SegmentsDefinition unions the SubsetDefinitions of the given segment
// indices.
func (info *Info) SegmentsDefinition(ids intset.SegmentSet) SubsetDefinition {
	var out SubsetDefinition
	ids.ForEach(func(i uint32) {
		out = out.Union(info.segments[i].Definition)
	})
	return out
}

// FullSubsetDefinition returns InitialSegmentWithDefaults unioned with
// every non-empty segment's definition.
func (info *Info) FullSubsetDefinition() SubsetDefinition {
	return info.InitialSegmentWithDefaults().Union(info.SegmentsDefinition(info.AllSegmentIDs()))
}

// SegmentsAreDisjoint reports whether the codepoint sets of the given
// segments are pairwise disjoint, used by the closure cache to choose
// the cheaper path for building the "all but these segments" subset.
func (info *Info) SegmentsAreDisjoint(ids intset.SegmentSet) bool {
	seen := intset.CodepointSet{}
	disjoint := true
	ids.ForEach(func(i uint32) {
		cps := info.segments[i].Definition.Codepoints
		if seen.Intersects(cps) {
			disjoint = false
		}
		seen = seen.Union(cps)
	})
	return disjoint
}

// AssignMergedSegment clears every segment in toMerge and overwrites the
// segment at base with merged, returning the number of codepoints now
// covered by the base slot.
func (info *Info) AssignMergedSegment(base Index, toMerge intset.SegmentSet, merged Segment) int {
	toMerge.ForEach(func(i uint32) {
		if Index(i) == base {
			return
		}
		info.segments[i].Clear()
	})
	info.segments[base] = merged
	return merged.Definition.Codepoints.Len()
}

// ReassignInitSubset clears the given removed segments and installs
// newInit as the initial subset without defaults. It does not recompute
// cached closures; the caller must follow up with SetInitGlyphs and
// SetFullClosure once the new closures have been computed.
func (info *Info) ReassignInitSubset(newInit SubsetDefinition, removedSegments intset.SegmentSet) {
	removedSegments.ForEach(func(i uint32) {
		info.segments[i].Clear()
	})
	info.initialSegment = newInit
}
