package merge

import (
	"sort"

	"github.com/go-ift/segmenter/condition"
	"github.com/go-ift/segmenter/ifterr"
	"github.com/go-ift/segmenter/intset"
	"github.com/go-ift/segmenter/segment"
)

// Config holds the merger's tunables.
type Config struct {
	NetworkOverheadBytes       int
	OptimizationCutoffFraction float64
	InertProbabilityThreshold  float64

	// Strategy selects which top loop runMergeLoop drives: StrategyCost
	// (score every pairwise candidate, apply the lowest cost delta) or
	// StrategyHeuristic (grow the smallest under-sized patch until it
	// clears PatchSizeMinBytes or no partner fits under
	// PatchSizeMaxBytes).
	Strategy string
	// PatchSizeMinBytes and PatchSizeMaxBytes bound the heuristic
	// strategy's search; zero disables the corresponding bound.
	PatchSizeMinBytes int
	PatchSizeMaxBytes int
	// UsePatchMerges disables the merge loop entirely when false,
	// leaving every segment as its own candidate patch.
	UsePatchMerges bool
	// InitFontMergeThreshold is the cost-delta ceiling a move-to-initial-
	// font candidate must clear (delta < threshold) to be applied.
	InitFontMergeThreshold float64
}

// PatchGlyphs maps a segment id to the glyph set its exclusive patch
// would currently contain, the unit the merger costs candidate merges
// against.
type PatchGlyphs map[segment.Index]intset.GlyphSet

// Merger proposes and applies segment merges over info, directed by
// estimated patch sizes from sizes. conditions is the shared
// GlyphConditionSet the encoding context keeps current as segments are
// reprocessed; it may be nil, in which case every merge is scored as
// if no segment shares an AND/OR condition with another.
type Merger struct {
	info       *segment.Info
	conditions *condition.Set
	sizes      Estimator
	cfg        Config

	applied int
}

// New returns a Merger over info using sizes for cost estimation and
// conditions for the condition-aware cost model.
func New(info *segment.Info, conditions *condition.Set, sizes Estimator, cfg Config) *Merger {
	return &Merger{info: info, conditions: conditions, sizes: sizes, cfg: cfg}
}

// initFontMoveDelta computes the delta of folding segment i's glyphs
// into the initial font: the patch's probability-weighted cost
// disappears entirely (the initial font grows to cover it instead),
// so the delta is always the negation of that cost.
func (m *Merger) initFontMoveDelta(i segment.Index, glyphs PatchGlyphs) (float64, error) {
	seg := m.info.Segment(i)
	size, err := m.sizes.GetPatchSize(glyphs[i])
	if err != nil {
		return 0, err
	}
	return -seg.Probability * float64(size+m.cfg.NetworkOverheadBytes), nil
}

func (m *Merger) foldIntoInitialFont(ids intset.SegmentSet) {
	newInit := m.info.InitialSegment()
	ids.ForEach(func(i uint32) { newInit = newInit.Union(m.info.Segment(i).Definition) })
	m.info.ReassignInitSubset(newInit, ids)
}

// MoveInertSegmentsToInitialFont examines every segment whose request
// probability is at or below the configured inert threshold and, for
// each, computes the delta of folding its glyphs into the initial
// font. A move is only applied when that delta clears
// InitFontMergeThreshold. Inert exclusives (segments with no AND/OR
// entanglement recorded in conditions, so moving one cannot shift
// another candidate's own patch) are evaluated off one shared snapshot
// of glyphs and applied together in a batch; every other inert
// candidate is then evaluated and applied one move at a time. Both
// phases price each move from the same glyphs snapshot: nothing is
// re-analysed between moves, so an earlier move does not change a later
// candidate's delta. glyphs supplies each live segment's current
// exclusive patch glyph set.
func (m *Merger) MoveInertSegmentsToInitialFont(glyphs PatchGlyphs) (intset.SegmentSet, error) {
	var moved intset.SegmentSet

	ids := m.info.AllSegmentIDs().Values()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var batchEligible, sequentialEligible []uint32
	for _, i := range ids {
		if !IsInert(m.info.Segment(i), m.cfg.InertProbabilityThreshold) {
			continue
		}
		if m.conditions != nil && !m.conditions.GlyphsWithSegment(i).Empty() {
			sequentialEligible = append(sequentialEligible, i)
		} else {
			batchEligible = append(batchEligible, i)
		}
	}

	var batchMoved intset.SegmentSet
	for _, i := range batchEligible {
		delta, err := m.initFontMoveDelta(i, glyphs)
		if err != nil {
			return moved, err
		}
		if delta < m.cfg.InitFontMergeThreshold {
			batchMoved.Add(i)
		}
	}
	if !batchMoved.Empty() {
		m.foldIntoInitialFont(batchMoved)
		moved = moved.Union(batchMoved)
	}

	for _, i := range sequentialEligible {
		delta, err := m.initFontMoveDelta(i, glyphs)
		if err != nil {
			return moved, err
		}
		if delta >= m.cfg.InitFontMergeThreshold {
			continue
		}
		var one intset.SegmentSet
		one.Add(i)
		m.foldIntoInitialFont(one)
		moved.Add(i)
	}

	return moved, nil
}

// Candidates builds every pairwise merge candidate among the live
// segments named by ids, given each segment's currently estimated
// exclusive patch glyph set. A candidate touching a composite
// condition with overlapping groups is silently omitted rather than
// failing the whole batch, matching this planner's stated handling of
// Unimplemented during merge scoring.
func (m *Merger) Candidates(ids intset.SegmentSet, glyphs PatchGlyphs) ([]Candidate, error) {
	list := ids.Values()
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })

	var out []Candidate
	for i := 0; i < len(list); i++ {
		for j := i + 1; j < len(list); j++ {
			a, b := list[i], list[j]
			c, err := Evaluate(m.info, m.conditions, m.sizes, glyphs, a, b, m.cfg.NetworkOverheadBytes)
			if err != nil {
				if ifterr.OfKind(err, ifterr.Unimplemented) {
					continue
				}
				return nil, err
			}
			out = append(out, c)
		}
	}
	return out, nil
}

// Best returns the most beneficial candidate in candidates, or false if
// none improve on the status quo.
func Best(candidates []Candidate) (Candidate, bool) {
	var best Candidate
	found := false
	for _, c := range candidates {
		if !c.Beneficial() {
			continue
		}
		if !found || c.CostDelta < best.CostDelta {
			best = c
			found = true
		}
	}
	return best, found
}

// NextHeuristicMerge implements the heuristic strategy's top loop over
// the live segments named by ids: it picks the smallest segment index
// b whose estimated exclusive patch is still under PatchSizeMinBytes,
// then scans the remaining segments in order after b and accepts the
// first partner whose combined patch stays within PatchSizeMaxBytes
// (a zero bound is treated as unbounded) and is not a forbidden
// codepoint/feature mix. ok is false once every live segment has
// reached the minimum size or no partner fits any of them.
func (m *Merger) NextHeuristicMerge(ids intset.SegmentSet, glyphs PatchGlyphs) (Candidate, bool, error) {
	list := ids.Values()
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })

	for idx, b := range list {
		sizeB, err := m.sizes.GetPatchSize(glyphs[b])
		if err != nil {
			return Candidate{}, false, err
		}
		if m.cfg.PatchSizeMinBytes > 0 && sizeB >= m.cfg.PatchSizeMinBytes {
			continue
		}

		for _, c := range list[idx+1:] {
			if rejectsMixedSegmentKinds(m.info.Segment(b), m.info.Segment(c)) {
				continue
			}
			merged := glyphs[b].Union(glyphs[c])
			sizeMerged, err := m.sizes.GetPatchSize(merged)
			if err != nil {
				return Candidate{}, false, err
			}
			if m.cfg.PatchSizeMaxBytes > 0 && sizeMerged > m.cfg.PatchSizeMaxBytes {
				continue
			}
			mergedProbability := segment.MergedProbability(m.info.Segment(b).Probability, m.info.Segment(c).Probability)
			return Candidate{A: b, B: c, MergedProbability: mergedProbability}, true, nil
		}
	}
	return Candidate{}, false, nil
}

// Apply merges toMerge's segment into base in info, using mergedDef as
// the base slot's new definition and mergedProbability as its new
// request probability.
func (m *Merger) Apply(base, toMerge segment.Index, mergedDef segment.SubsetDefinition, mergedProbability float64) {
	var toMergeSet intset.SegmentSet
	toMergeSet.Add(toMerge)
	m.info.AssignMergedSegment(base, toMergeSet, segment.NewSegment(mergedDef, mergedProbability))
	m.applied++
}

// AppliedCount returns how many merges Apply has performed so far.
func (m *Merger) AppliedCount() int { return m.applied }

// ReachedCutoff reports whether the fraction of originally-live
// segments still standalone has already fallen to or below the
// optimization cutoff fraction, the point past which further iteration
// stops paying for itself. initialSegmentCount is the live segment
// count before any merges were applied this run.
func (m *Merger) ReachedCutoff(initialSegmentCount int) bool {
	if initialSegmentCount == 0 {
		return true
	}
	remaining := initialSegmentCount - m.applied
	return float64(remaining)/float64(initialSegmentCount) <= m.cfg.OptimizationCutoffFraction
}

// Run repeatedly asks nextCandidates for the current candidate set,
// applies the single best beneficial one via apply, and stops once no
// candidate is beneficial or the optimization cutoff is reached. It
// returns every candidate actually applied, in application order.
func (m *Merger) Run(initialSegmentCount int, nextCandidates func() ([]Candidate, error), apply func(Candidate)) ([]Candidate, error) {
	var applied []Candidate
	for {
		if m.ReachedCutoff(initialSegmentCount) {
			return applied, nil
		}
		candidates, err := nextCandidates()
		if err != nil {
			return applied, err
		}
		best, ok := Best(candidates)
		if !ok {
			return applied, nil
		}
		apply(best)
		applied = append(applied, best)
	}
}
