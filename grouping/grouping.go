// Package grouping implements the glyph grouping algorithm: it turns a
// requested segmentation's per-segment AND/OR/EXCLUSIVE analysis into a
// set of candidate patches, each guarded by an activation condition.
package grouping

import (
	"sort"

	"github.com/go-ift/segmenter/closure"
	"github.com/go-ift/segmenter/condition"
	"github.com/go-ift/segmenter/ifterr"
	"github.com/go-ift/segmenter/intset"
	"github.com/go-ift/segmenter/partition"
	"github.com/go-ift/segmenter/segment"
)

// Result is the outcome of Group: a set of candidate patches, each with
// the activation condition that guards it, plus any glyphs that could
// not be associated with any segment (fallback material the caller
// folds into the initial font or a catch-all patch).
type Result struct {
	Patches    []intset.GlyphSet
	Conditions []condition.ActivationCondition
	Unmapped   intset.GlyphSet
}

// Group runs the grouping algorithm over the given segments:
//
//  1. classify: for every segment, run AnalyzeSegment and record each
//     glyph's AND/OR/EXCLUSIVE association;
//  2. verify: re-derive each distinct OR segment set's glyph closure via
//     CodepointsToOrGids and drop any glyph that does not round-trip,
//     demoting it to unmapped rather than shipping a condition the
//     client-side closure would not actually satisfy;
//  3. combine: glyphs that ended up with identical (AND, OR) condition
//     pairs are combined into one candidate patch;
//  4. fold: any candidate patch, exclusive or combined, is only kept
//     separate when it clears minGroupSize, otherwise it is folded into
//     unmapped;
//  5. finalize: every surviving group becomes a patch with an
//     ActivationCondition built from its (AND, OR) pair; an exclusive
//     group gets ExclusiveSegment, or OrSegments when several segments
//     share byte-identical exclusive glyphs.
func Group(cache *closure.Cache, conditions *condition.Set, info *segment.Info, segmentIDs intset.SegmentSet, minGroupSize int) (*Result, error) {
	g := &groupingState{
		cache:       cache,
		conditions:  conditions,
		info:        info,
		exclusive:   make(map[uint32]intset.GlyphSet),
		seen:        intset.GlyphSet{},
		minGroup:    minGroupSize,
	}

	ids := segmentIDs.Values()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, segID := range ids {
		if err := g.classify(segID); err != nil {
			return nil, err
		}
	}

	if err := g.verifyOrGroups(segmentIDs); err != nil {
		return nil, err
	}

	return g.finalize(), nil
}

type groupingState struct {
	cache      *closure.Cache
	conditions *condition.Set
	info       *segment.Info

	exclusive map[uint32]intset.GlyphSet // segment id -> exclusively triggered glyphs
	seen      intset.GlyphSet            // every glyph placed in an exclusive group so far
	minGroup  int
}

func (g *groupingState) classify(segID uint32) error {
	analysis, err := g.cache.AnalyzeSegment(g.info, intset.New(segID))
	if err != nil {
		return ifterr.Wrap("Group", ifterr.InternalError, err, "analyzing segment %d", segID)
	}

	excl := g.exclusive[segID]
	analysis.Exclusive.ForEach(func(gid uint32) {
		excl.Add(gid)
		g.seen.Add(gid)
	})
	g.exclusive[segID] = excl

	analysis.And.ForEach(func(gid uint32) {
		g.conditions.AddAnd(gid, segID)
	})
	analysis.Or.ForEach(func(gid uint32) {
		g.conditions.AddOr(gid, segID)
	})
	return nil
}

// verifyOrGroups re-derives each distinct OR segment set's glyph
// closure and drops glyphs whose recorded OR membership does not
// round-trip, guarding against stale OR associations left over from a
// segment whose closure changed shape between analysis passes.
func (g *groupingState) verifyOrGroups(segmentIDs intset.SegmentSet) error {
	byOrSet := make(map[string]intset.SegmentSet)
	glyphsByOrSet := make(map[string]intset.GlyphSet)

	for gid := 0; gid < g.conditions.NumGlyphs(); gid++ {
		c := g.conditions.ConditionsFor(uint32(gid))
		if c.Or.Empty() {
			continue
		}
		key := c.Or.Key()
		byOrSet[key] = c.Or
		set := glyphsByOrSet[key]
		set.Add(uint32(gid))
		glyphsByOrSet[key] = set
	}

	for key, orSegs := range byOrSet {
		verified, err := g.cache.CodepointsToOrGids(g.info, orSegs)
		if err != nil {
			return ifterr.Wrap("Group", ifterr.InternalError, err, "verifying OR group for segments %v", orSegs.Values())
		}
		claimed := glyphsByOrSet[key]
		bad := claimed.Subtract(verified)
		if bad.Empty() {
			continue
		}
		g.conditions.Invalidate(bad, orSegs)
	}
	return nil
}

// exclusiveAlias is one or more segments that produce byte-identical
// exclusive glyph closures: a font's shared-component subsetting can
// easily make two unrelated segments exclusively require the same
// glyphs, and shipping one patch guarded by an OR of both segments
// beats shipping duplicate patches.
type exclusiveAlias struct {
	segments []uint32
	glyphs   intset.GlyphSet
}

// aliasExclusiveSegments partitions the segments gathered in
// g.exclusive by the identity of their exclusive glyph closure, using a
// union-find over segment ids so that any number of segments sharing a
// closure collapse into one alias group instead of one patch each.
func (g *groupingState) aliasExclusiveSegments() []exclusiveAlias {
	segIDs := make([]uint32, 0, len(g.exclusive))
	for segID := range g.exclusive {
		segIDs = append(segIDs, segID)
	}
	sort.Slice(segIDs, func(i, j int) bool { return segIDs[i] < segIDs[j] })

	capacity := 0
	for _, segID := range segIDs {
		if int(segID) >= capacity {
			capacity = int(segID) + 1
		}
	}
	p := partition.New(capacity)

	byKey := make(map[string]uint32) // glyph closure key -> first segment id seen with it
	for _, segID := range segIDs {
		key := g.exclusive[segID].Key()
		if first, ok := byKey[key]; ok {
			p.Union(first, segID)
			continue
		}
		byKey[key] = segID
	}

	grouped := make(map[uint32]bool)
	var aliases []exclusiveAlias
	for _, segID := range segIDs {
		root, _ := p.Find(segID)
		if grouped[root] {
			continue
		}
		grouped[root] = true

		var members []uint32
		var glyphs intset.GlyphSet
		for _, other := range segIDs {
			otherRoot, _ := p.Find(other)
			if otherRoot != root {
				continue
			}
			members = append(members, other)
			glyphs = glyphs.Union(g.exclusive[other])
		}
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
		aliases = append(aliases, exclusiveAlias{segments: members, glyphs: glyphs})
	}

	sort.Slice(aliases, func(i, j int) bool { return aliases[i].segments[0] < aliases[j].segments[0] })
	return aliases
}

func (g *groupingState) finalize() *Result {
	res := &Result{}

	for _, alias := range g.aliasExclusiveSegments() {
		if alias.glyphs.Len() < g.minGroup {
			res.Unmapped = res.Unmapped.Union(alias.glyphs)
			continue
		}
		res.Patches = append(res.Patches, alias.glyphs)
		if len(alias.segments) == 1 {
			res.Conditions = append(res.Conditions, condition.ExclusiveSegment(alias.segments[0]))
		} else {
			res.Conditions = append(res.Conditions, condition.OrSegments(intset.New(alias.segments...)))
		}
	}

	byKey := make(map[string]intset.GlyphSet)
	condByKey := make(map[string]condition.ActivationCondition)
	for gid := 0; gid < g.conditions.NumGlyphs(); gid++ {
		if g.seen.Contains(uint32(gid)) {
			continue // already placed in an exclusive group
		}
		c := g.conditions.ConditionsFor(uint32(gid))
		if c.Empty() {
			continue
		}
		cond := condition.FromAndOr(c.And, c.Or)
		key := cond.Key()
		set := byKey[key]
		set.Add(uint32(gid))
		byKey[key] = set
		condByKey[key] = cond
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		glyphs := byKey[key]
		if glyphs.Len() < g.minGroup {
			res.Unmapped = res.Unmapped.Union(glyphs)
			continue
		}
		res.Patches = append(res.Patches, glyphs)
		res.Conditions = append(res.Conditions, condByKey[key])
	}

	allAssigned := res.Unmapped
	for _, p := range res.Patches {
		allAssigned = allAssigned.Union(p)
	}
	res.Unmapped = g.info.FullClosure().Subtract(g.info.InitGlyphs()).Subtract(allAssigned).Union(res.Unmapped)

	return res
}
