package encoder

import (
	"testing"

	"github.com/go-ift/segmenter/condition"
	"github.com/go-ift/segmenter/intset"
	"github.com/go-ift/segmenter/merge"
	"github.com/go-ift/segmenter/segment"
	"github.com/go-ift/segmenter/telemetry"
)

type fakeSubsetter struct{}

func (fakeSubsetter) GlyphClosure(def segment.SubsetDefinition) (intset.GlyphSet, error) {
	var out intset.GlyphSet
	out.Add(0)
	def.Codepoints.ForEach(func(cp uint32) { out.Add(cp) })
	return out, nil
}

type fakeSizes struct{}

func (fakeSizes) GetPatchSize(gids intset.GlyphSet) (int, error) { return gids.Len() * 50, nil }

func newTestSegments(codepoints ...rune) []segment.Segment {
	segs := make([]segment.Segment, len(codepoints))
	for i, cp := range codepoints {
		def := segment.NewSubsetDefinition()
		def.AddCodepoint(cp)
		segs[i] = segment.NewSegment(def, 0.3)
	}
	return segs
}

func TestSegmentProducesCoveringPatches(t *testing.T) {
	info := segment.NewInfo(segment.SubsetDefinition{}, newTestSegments('a', 'b', 'c'))
	s, err := New(fakeSubsetter{}, info, 256, Config{
		MinimumGroupSize: 1,
		Merge: merge.Config{
			NetworkOverheadBytes:       0,
			OptimizationCutoffFraction: 1.0,
			InertProbabilityThreshold:  0,
			Strategy:                   merge.StrategyCost,
			UsePatchMerges:             true,
		},
		RunOracleCheck: true,
	}, telemetry.Noop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	plan, entries, err := s.Segment(fakeSizes{})
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(plan.Patches) == 0 {
		t.Fatal("expected at least one patch")
	}
	if len(entries) == 0 {
		t.Fatal("expected at least one lowered patch map entry")
	}

	covered := plan.InitFontGlyphs
	for _, p := range plan.Patches {
		covered = covered.Union(p)
	}
	if !info.FullClosure().IsSubsetOf(covered) {
		t.Error("plan does not cover the full glyph closure")
	}
}

func TestToGlyphSegmentationRejectsOverlap(t *testing.T) {
	info := segment.NewInfo(segment.SubsetDefinition{}, newTestSegments('a'))
	info.SetInitGlyphs(intset.New(0))
	info.SetFullClosure(intset.New(0, 1, 2))

	overlapping := []intset.GlyphSet{intset.New(1, 2), intset.New(2)}
	conds := []condition.ActivationCondition{condition.ExclusiveSegment(0), condition.ExclusiveSegment(0)}

	_, err := ToGlyphSegmentation(info, overlapping, conds, intset.GlyphSet{})
	if err == nil {
		t.Error("expected overlap between patches to be rejected")
	}
}
