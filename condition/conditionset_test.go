package condition

import (
	"testing"

	"github.com/go-ift/segmenter/intset"
)

func TestAddAndOrTracksInverseIndex(t *testing.T) {
	s := New(4)
	s.AddAnd(1, 10)
	s.AddOr(2, 10)
	s.AddOr(2, 11)

	c1 := s.ConditionsFor(1)
	if !c1.And.Contains(10) {
		t.Errorf("glyph 1 should conjunctively depend on segment 10")
	}

	withSeg10 := s.GlyphsWithSegment(10)
	if !withSeg10.Contains(1) || !withSeg10.Contains(2) {
		t.Errorf("segment 10 should index glyphs 1 and 2, got %v", withSeg10.Values())
	}
	withSeg11 := s.GlyphsWithSegment(11)
	if !withSeg11.Contains(2) || withSeg11.Contains(1) {
		t.Errorf("segment 11 should index only glyph 2, got %v", withSeg11.Values())
	}
}

func TestInvalidateRemovesSegmentsAndIndex(t *testing.T) {
	s := New(4)
	s.AddAnd(1, 10)
	s.AddOr(1, 11)
	s.AddAnd(2, 10)

	s.Invalidate(intset.New(1), intset.New(10))

	c1 := s.ConditionsFor(1)
	if c1.And.Contains(10) {
		t.Error("segment 10 should have been removed from glyph 1's AND set")
	}
	if !c1.Or.Contains(11) {
		t.Error("segment 11 should be untouched on glyph 1")
	}

	withSeg10 := s.GlyphsWithSegment(10)
	if withSeg10.Contains(1) {
		t.Error("glyph 1 should no longer be indexed under segment 10")
	}
	if !withSeg10.Contains(2) {
		t.Error("glyph 2 should remain indexed under segment 10")
	}
}
