// Package merge implements the cost-directed and heuristic segment
// mergers: given a requested segmentation and patch size estimates,
// each proposes and applies segment merges that reduce the expected
// number of bytes a client transfers (or keep patches within a
// configured size band), down to a configurable optimization cutoff.
package merge

import (
	"github.com/go-ift/segmenter/condition"
	"github.com/go-ift/segmenter/ifterr"
	"github.com/go-ift/segmenter/intset"
	"github.com/go-ift/segmenter/segment"
)

// StrategyHeuristic and StrategyCost are the two merge strategies a
// Merger can be configured to run.
const (
	StrategyHeuristic = "heuristic"
	StrategyCost      = "cost"
)

// Estimator is the patch-size collaborator the merger needs: anything
// able to estimate the encoded size of a patch covering a glyph set.
// patchsize.Exact and patchsize.Estimated both satisfy this.
type Estimator interface {
	GetPatchSize(gids intset.GlyphSet) (int, error)
}

// Candidate is a proposed merge of two segments, with the cost impact
// of applying it.
type Candidate struct {
	A, B segment.Index

	MergedProbability float64
	// CostDelta is expected-bytes-after minus expected-bytes-before;
	// negative means the merge is a net improvement. The heuristic
	// strategy does not score candidates and leaves this at zero.
	CostDelta float64
}

// Beneficial reports whether applying this candidate is expected to
// reduce total transferred bytes.
func (c Candidate) Beneficial() bool { return c.CostDelta < 0 }

// IsInert reports whether seg's request probability is low enough that
// it is cheaper to fold its codepoints into the initial font outright
// than to ever ship it as its own patch.
func IsInert(seg segment.Segment, threshold float64) bool {
	return seg.Probability <= threshold
}

// andProbability is P(every segment in segs is applied), assuming
// independence: the probability a conjunctive condition clause fires.
func andProbability(info *segment.Info, segs intset.SegmentSet) float64 {
	p := 1.0
	segs.ForEach(func(i uint32) { p *= info.Segment(i).Probability })
	return p
}

// isComposite reports whether cond is a genuinely composite condition:
// more than one conjunctive clause, with at least one clause spanning
// more than one segment. A single clause is a pure AND; a condition
// whose every clause is a singleton is a pure OR. Probability
// arithmetic is only defined for those two shapes.
func isComposite(cond condition.ActivationCondition) bool {
	clauses := cond.Clauses()
	if len(clauses) <= 1 {
		return false
	}
	for _, clause := range clauses {
		if clause.Len() >= 2 {
			return true
		}
	}
	return false
}

// mergedConditionProbability computes p_new(c): the probability cond
// still fires once the segments in mergedIDs have collapsed into one
// segment of probability mergedProbability. Each clause keeps its own
// contribution unless it intersects mergedIDs, in which case the
// intersecting part is replaced by a single mergedProbability term
// (factored against whatever of the clause survives outside the
// merge). Passing an empty mergedIDs computes cond's current
// probability unchanged, since every clause then takes the
// no-overlap branch.
//
// Returns an Unimplemented error for composite conditions: the
// relationship between disjoint/overlapping conjunctive groups and
// probability arithmetic is not supported, per this planner's stated
// scope, and callers must treat it as "not a candidate" rather than a
// propagated failure.
func mergedConditionProbability(info *segment.Info, cond condition.ActivationCondition, mergedIDs intset.SegmentSet, mergedProbability float64) (float64, error) {
	if isComposite(cond) {
		return 0, ifterr.New("mergedConditionProbability", ifterr.Unimplemented, "composite condition with overlapping groups")
	}

	product := 1.0
	for _, clause := range cond.Clauses() {
		overlap := clause.Intersect(mergedIDs)
		var clauseProb float64
		switch {
		case overlap.Empty():
			clauseProb = andProbability(info, clause)
		case overlap.Equal(clause):
			clauseProb = mergedProbability
		default:
			clauseProb = mergedProbability * andProbability(info, clause.Subtract(mergedIDs))
		}
		product *= 1 - clauseProb
	}
	return 1 - product, nil
}

// conditionProbability is cond's current probability of firing, before
// any merge is applied.
func conditionProbability(info *segment.Info, cond condition.ActivationCondition) (float64, error) {
	return mergedConditionProbability(info, cond, intset.SegmentSet{}, 0)
}

// AffectedConditions collects, for every glyph whose recorded AND/OR
// dependency touches a segment in ids, the ActivationCondition it is
// currently grouped under and the set of glyphs sharing that exact
// condition -- the same (condition, glyph-set) pairs grouping.Group
// would eventually turn into patches, gathered early enough to cost a
// merge candidate against them. Keyed by the condition's canonical Key
// so callers can deduplicate across the two touched segments.
func AffectedConditions(conditions *condition.Set, ids intset.SegmentSet) (map[string]condition.ActivationCondition, map[string]intset.GlyphSet) {
	conds := make(map[string]condition.ActivationCondition)
	glyphs := make(map[string]intset.GlyphSet)
	if conditions == nil {
		return conds, glyphs
	}

	var gids intset.GlyphSet
	ids.ForEach(func(seg uint32) {
		gids = gids.Union(conditions.GlyphsWithSegment(seg))
	})

	gids.ForEach(func(gid uint32) {
		c := conditions.ConditionsFor(gid)
		if c.Empty() {
			return
		}
		cond := condition.FromAndOr(c.And, c.Or)
		key := cond.Key()
		conds[key] = cond
		set := glyphs[key]
		set.Add(gid)
		glyphs[key] = set
	})
	return conds, glyphs
}

// Evaluate computes the CandidateMerge cost delta of merging segment b
// into segment a. glyphs[a] and glyphs[b] already stand for each
// segment's own standalone patch (every glyph its own single-segment
// AND/OR/EXCLUSIVE analysis attributes to it, the same approximation
// exclusiveGlyphsBySegment builds), so the baseline "a and b vanish"
// cost is priced directly off them: this is the Removed bucket of
// §4.10, and it never needs a second pass over conditions, since any
// AND/OR condition whose triggering segments are entirely inside {a,
// b} is already reflected in glyphs[a] or glyphs[b]'s own size.
//
// What glyphs[a]/glyphs[b] cannot see is a condition shared with a
// third, still-live segment: one of its disjunctive terms is being
// replaced by the merged segment, so its probability shifts even
// though its patch size is assumed unchanged. That is the Modified
// bucket, read from conditions (the shared GlyphConditionSet); it may
// be nil, in which case the merge is scored as if a and b share no
// condition with any other segment.
//
// Returns an Unimplemented error, which the caller should treat as
// "skip this candidate silently" rather than a failure, when one of
// the modified conditions is composite with overlapping groups.
func Evaluate(info *segment.Info, conditions *condition.Set, sizes Estimator, glyphs PatchGlyphs, a, b segment.Index, networkOverhead int) (Candidate, error) {
	var mergedIDs intset.SegmentSet
	mergedIDs.Add(a)
	mergedIDs.Add(b)

	pa, pb := info.Segment(a).Probability, info.Segment(b).Probability
	mergedProbability := segment.MergedProbability(pa, pb)

	sizeA, err := sizes.GetPatchSize(glyphs[a])
	if err != nil {
		return Candidate{}, err
	}
	sizeB, err := sizes.GetPatchSize(glyphs[b])
	if err != nil {
		return Candidate{}, err
	}
	mergedGlyphs := glyphs[a].Union(glyphs[b])
	sizeMerged, err := sizes.GetPatchSize(mergedGlyphs)
	if err != nil {
		return Candidate{}, err
	}

	before := pa*float64(sizeA+networkOverhead) + pb*float64(sizeB+networkOverhead)
	after := mergedProbability * float64(sizeMerged+networkOverhead)
	delta := after - before

	affectedConds, affectedGlyphs := AffectedConditions(conditions, mergedIDs)
	for key, cond := range affectedConds {
		trig := cond.TriggeringSegments()
		if trig.IsSubsetOf(mergedIDs) {
			continue // already priced via sizeA/sizeB above
		}
		if !trig.Intersects(mergedIDs) {
			continue // unaffected by this merge
		}

		size, err := sizes.GetPatchSize(affectedGlyphs[key])
		if err != nil {
			return Candidate{}, err
		}
		p, err := conditionProbability(info, cond)
		if err != nil {
			return Candidate{}, err
		}
		pNew, err := mergedConditionProbability(info, cond, mergedIDs, mergedProbability)
		if err != nil {
			return Candidate{}, err
		}
		delta += (pNew - p) * float64(size+networkOverhead)
	}

	return Candidate{A: a, B: b, MergedProbability: mergedProbability, CostDelta: delta}, nil
}

// isCodepointOnly reports whether def names only codepoints, no
// feature tags.
func isCodepointOnly(def segment.SubsetDefinition) bool {
	return !def.Codepoints.Empty() && def.Features.Empty()
}

// isFeaturesOnly reports whether def names only feature tags, no
// codepoints.
func isFeaturesOnly(def segment.SubsetDefinition) bool {
	return def.Codepoints.Empty() && !def.Features.Empty()
}

// rejectsMixedSegmentKinds reports whether a and b are the heuristic
// strategy's forbidden pairing: one a pure codepoint segment, the
// other a pure feature segment. Merging them would make an unrelated
// script and an unrelated opt-in feature share one patch, defeating
// the point of segmenting by either axis.
func rejectsMixedSegmentKinds(a, b segment.Segment) bool {
	return (isCodepointOnly(a.Definition) && isFeaturesOnly(b.Definition)) ||
		(isFeaturesOnly(a.Definition) && isCodepointOnly(b.Definition))
}
