package grouping

import (
	"testing"

	"github.com/go-ift/segmenter/closure"
	"github.com/go-ift/segmenter/condition"
	"github.com/go-ift/segmenter/intset"
	"github.com/go-ift/segmenter/segment"
	"github.com/go-ift/segmenter/telemetry"
)

// fakeSubsetter maps codepoint N to glyph id N directly, always keeping
// glyph 0, with no GSUB/composite expansion.
type fakeSubsetter struct{}

func (fakeSubsetter) GlyphClosure(def segment.SubsetDefinition) (intset.GlyphSet, error) {
	var out intset.GlyphSet
	out.Add(0)
	def.Codepoints.ForEach(func(cp uint32) { out.Add(cp) })
	return out, nil
}

func newTestInfo(t *testing.T, c *closure.Cache, segs []segment.Segment) *segment.Info {
	t.Helper()
	info := segment.NewInfo(segment.SubsetDefinition{}, segs)

	initGlyphs, err := c.GlyphClosure(info.InitialSegmentWithDefaults())
	if err != nil {
		t.Fatalf("GlyphClosure(init): %v", err)
	}
	info.SetInitGlyphs(initGlyphs)

	full, err := c.GlyphClosure(info.FullSubsetDefinition())
	if err != nil {
		t.Fatalf("GlyphClosure(full): %v", err)
	}
	info.SetFullClosure(full)
	return info
}

func TestGroupAssignsExclusivePatches(t *testing.T) {
	c := closure.New(fakeSubsetter{}, telemetry.Noop())

	def0 := segment.NewSubsetDefinition()
	def0.AddCodepoint(1)
	def1 := segment.NewSubsetDefinition()
	def1.AddCodepoint(2)
	seg0 := segment.NewSegment(def0, 1.0)
	seg1 := segment.NewSegment(def1, 1.0)
	info := newTestInfo(t, c, []segment.Segment{seg0, seg1})

	conds := condition.New(8)
	result, err := Group(c, conds, info, intset.New(0, 1), 1)
	if err != nil {
		t.Fatalf("Group: %v", err)
	}

	if len(result.Patches) != 2 {
		t.Fatalf("expected 2 exclusive patches, got %d: %+v", len(result.Patches), result.Patches)
	}
	for i, cond := range result.Conditions {
		if !cond.IsUnitary() {
			t.Errorf("patch %d condition should be unitary exclusive, got %+v", i, cond.Clauses())
		}
	}
}

func TestAliasExclusiveSegmentsCombinesIdenticalClosures(t *testing.T) {
	// Two segments whose exclusive glyph sets happen to be identical
	// (e.g. two scripts sharing a component glyph neither other segment
	// touches) should collapse into one OR-guarded patch rather than two
	// duplicate patches.
	g := &groupingState{
		exclusive: map[uint32]intset.GlyphSet{
			0: intset.New(5, 6),
			1: intset.New(5, 6),
			2: intset.New(9),
		},
		minGroup: 1,
	}

	aliases := g.aliasExclusiveSegments()
	if len(aliases) != 2 {
		t.Fatalf("expected 2 alias groups, got %d: %+v", len(aliases), aliases)
	}

	combined := aliases[0]
	if len(combined.segments) != 2 || combined.segments[0] != 0 || combined.segments[1] != 1 {
		t.Errorf("expected segments {0,1} combined, got %v", combined.segments)
	}
	if !combined.glyphs.Equal(intset.New(5, 6)) {
		t.Errorf("expected combined glyphs {5,6}, got %v", combined.glyphs.Values())
	}

	singleton := aliases[1]
	if len(singleton.segments) != 1 || singleton.segments[0] != 2 {
		t.Errorf("expected segment {2} alone, got %v", singleton.segments)
	}
}

func TestGroupFoldsUndersizedGroupsIntoUnmapped(t *testing.T) {
	c := closure.New(fakeSubsetter{}, telemetry.Noop())

	def0 := segment.NewSubsetDefinition()
	def0.AddCodepoint(1)
	seg0 := segment.NewSegment(def0, 1.0)
	info := newTestInfo(t, c, []segment.Segment{seg0})

	conds := condition.New(8)
	// minGroupSize above the single exclusive glyph's group size (1)
	// folds everything to unmapped.
	result, err := Group(c, conds, info, intset.New(0), 5)
	if err != nil {
		t.Fatalf("Group: %v", err)
	}
	if len(result.Patches) != 0 {
		t.Errorf("expected no patches to survive the size fold, got %d", len(result.Patches))
	}
	if !result.Unmapped.Contains(1) {
		t.Errorf("expected glyph 1 to be folded into unmapped, got %v", result.Unmapped.Values())
	}
}
