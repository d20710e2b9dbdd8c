package encoder

import (
	"sort"

	"github.com/go-ift/segmenter/closure"
	"github.com/go-ift/segmenter/condition"
	"github.com/go-ift/segmenter/ifterr"
	"github.com/go-ift/segmenter/intset"
	"github.com/go-ift/segmenter/merge"
	"github.com/go-ift/segmenter/segment"
	"github.com/go-ift/segmenter/telemetry"
)

// Config bundles every tunable the top-level segmenter and its merger
// need.
type Config struct {
	MinimumGroupSize int
	Merge            merge.Config
	RunOracleCheck   bool
}

// ClosureGlyphSegmenter is the top-level orchestrator: it drives a
// Context and a Merger through the move-inert, merge, and group phases
// and emits a finalized, validated GlyphSegmentation.
type ClosureGlyphSegmenter struct {
	ctx    *Context
	cfg    Config
	log    telemetry.Logger
}

// New returns a ClosureGlyphSegmenter over the given font collaborator
// and requested segmentation info.
func New(subsetter closure.Subsetter, info *segment.Info, numGlyphs int, cfg Config, log telemetry.Logger) (*ClosureGlyphSegmenter, error) {
	ctx, err := NewContext(subsetter, info, numGlyphs, log)
	if err != nil {
		return nil, err
	}
	return &ClosureGlyphSegmenter{ctx: ctx, cfg: cfg, log: log}, nil
}

// Context returns the segmenter's underlying mutable context, exposed
// so callers needing lower-level control (tests, a CLI "describe"
// command) can inspect intermediate state.
func (s *ClosureGlyphSegmenter) Context() *Context { return s.ctx }

// Segment runs the full pipeline: reprocess every requested segment so
// the shared condition set reflects its AND/OR dependencies, fold
// inert segments into the initial font, iteratively merge segments
// (by whichever strategy the configuration selects) while doing so
// reduces expected transferred bytes or keeps patches within the
// configured size band, group the remaining glyphs into patches,
// lower their conditions, and validate the result.
func (s *ClosureGlyphSegmenter) Segment(sizes merge.Estimator) (*GlyphSegmentation, []condition.PatchMapEntry, error) {
	for _, segID := range s.ctx.info.AllSegmentIDs().Values() {
		if err := s.ctx.ReprocessSegment(segID); err != nil {
			return nil, nil, err
		}
	}

	m := merge.New(s.ctx.info, s.ctx.Conditions(), sizes, s.cfg.Merge)

	glyphs, err := s.exclusiveGlyphsBySegment()
	if err != nil {
		return nil, nil, err
	}
	moved, err := m.MoveInertSegmentsToInitialFont(glyphs)
	if err != nil {
		return nil, nil, err
	}
	if !moved.Empty() {
		if err := s.ctx.InvalidateGlyphInformation(moved); err != nil {
			return nil, nil, err
		}
	}

	if err := s.runMergeLoop(m, sizes); err != nil {
		return nil, nil, err
	}

	result, err := s.ctx.GroupGlyphs(s.cfg.MinimumGroupSize)
	if err != nil {
		return nil, nil, ifterr.Wrap("Segment", ifterr.InternalError, err, "grouping glyphs")
	}

	plan, err := ToGlyphSegmentation(s.ctx.info, result.Patches, result.Conditions, result.Unmapped)
	if err != nil {
		return nil, nil, err
	}

	if s.cfg.RunOracleCheck {
		if err := ValidateAgainstOracle(s.ctx.info, s.ctx.cache, plan, oracleTrials(s.ctx.info)); err != nil {
			return nil, nil, err
		}
	}

	pairs := make([]condition.ConditionForPatch, len(plan.Conditions))
	for i, c := range plan.Conditions {
		pairs[i] = condition.NewConditionForPatch(c, i)
	}
	entries := condition.Lower(pairs)

	return plan, entries, nil
}

// runMergeLoop drives whichever strategy the configuration selects.
// UsePatchMerges=false leaves every segment standalone, and so does the
// heuristic strategy when PatchSizeMinBytes is zero.
func (s *ClosureGlyphSegmenter) runMergeLoop(m *merge.Merger, sizes merge.Estimator) error {
	if !s.cfg.Merge.UsePatchMerges {
		return nil
	}
	if s.cfg.Merge.Strategy == merge.StrategyHeuristic && s.cfg.Merge.PatchSizeMinBytes == 0 {
		return nil
	}
	if s.cfg.Merge.Strategy == merge.StrategyHeuristic {
		return s.runHeuristicMergeLoop(m, sizes)
	}
	return s.runCostMergeLoop(m, sizes)
}

// runCostMergeLoop repeatedly scores every live pair and applies the
// single most beneficial merge, stopping once none improves on the
// status quo or the optimization cutoff is reached.
func (s *ClosureGlyphSegmenter) runCostMergeLoop(m *merge.Merger, sizes merge.Estimator) error {
	initialCount := s.ctx.info.AllSegmentIDs().Len()
	for {
		if m.ReachedCutoff(initialCount) {
			return nil
		}

		glyphs, err := s.exclusiveGlyphsBySegment()
		if err != nil {
			return err
		}
		live := s.ctx.info.AllSegmentIDs()
		candidates, err := m.Candidates(live, glyphs)
		if err != nil {
			return err
		}
		best, ok := merge.Best(candidates)
		if !ok {
			return nil
		}

		if err := s.applyMerge(m, best.A, best.B, best.MergedProbability); err != nil {
			return err
		}
	}
}

// runHeuristicMergeLoop grows under-sized patches toward
// patch_size_min_bytes, never past patch_size_max_bytes, stopping once
// every live segment has reached the floor or no partner fits.
func (s *ClosureGlyphSegmenter) runHeuristicMergeLoop(m *merge.Merger, sizes merge.Estimator) error {
	initialCount := s.ctx.info.AllSegmentIDs().Len()
	for {
		if m.ReachedCutoff(initialCount) {
			return nil
		}

		glyphs, err := s.exclusiveGlyphsBySegment()
		if err != nil {
			return err
		}
		live := s.ctx.info.AllSegmentIDs()
		cand, ok, err := m.NextHeuristicMerge(live, glyphs)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		if err := s.applyMerge(m, cand.A, cand.B, cand.MergedProbability); err != nil {
			return err
		}
	}
}

// applyMerge folds b into a, then brings the shared condition set and
// cached closures up to date: InvalidateGlyphInformation first drops
// whatever a and b previously contributed and recomputes the closures
// the merge changed, then ReprocessSegment rebuilds a's AND/OR
// dependencies against those fresh closures.
func (s *ClosureGlyphSegmenter) applyMerge(m *merge.Merger, a, b segment.Index, mergedProbability float64) error {
	segA, segB := s.ctx.info.Segment(a), s.ctx.info.Segment(b)
	mergedDef := segA.Definition.Union(segB.Definition)
	m.Apply(a, b, mergedDef, mergedProbability)

	var changed intset.SegmentSet
	changed.Add(a)
	changed.Add(b)
	if err := s.ctx.InvalidateGlyphInformation(changed); err != nil {
		return err
	}
	return s.ctx.ReprocessSegment(a)
}

// exclusiveGlyphsBySegment estimates each live segment's standalone
// patch contents via a one-segment AnalyzeSegment call, the cheapest
// approximation of "what would this segment's patch look like on its
// own" available before a full grouping pass.
func (s *ClosureGlyphSegmenter) exclusiveGlyphsBySegment() (merge.PatchGlyphs, error) {
	out := make(merge.PatchGlyphs)
	ids := s.ctx.info.AllSegmentIDs().Values()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		var only intset.SegmentSet
		only.Add(id)
		analysis, err := s.ctx.cache.AnalyzeSegment(s.ctx.info, only)
		if err != nil {
			return nil, ifterr.Wrap("Segment", ifterr.InternalError, err, "sizing segment %d", id)
		}
		out[id] = analysis.And.Union(analysis.Or).Union(analysis.Exclusive)
	}
	return out, nil
}

// oracleTrials builds a representative sample of segment subsets to
// check against the real closure function: every segment alone, and
// every segment together with all others, covering the edges of the
// activation condition space without the combinatorial cost of every
// subset.
func oracleTrials(info *segment.Info) []intset.SegmentSet {
	all := info.AllSegmentIDs()
	ids := all.Values()

	var trials []intset.SegmentSet
	for _, id := range ids {
		var single intset.SegmentSet
		single.Add(id)
		trials = append(trials, single)
	}
	trials = append(trials, all)
	return trials
}
