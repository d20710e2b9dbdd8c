package planproto

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-ift/segmenter/condition"
	"github.com/go-ift/segmenter/encoder"
	"github.com/go-ift/segmenter/intset"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	plan := &encoder.GlyphSegmentation{
		Patches: []intset.GlyphSet{
			intset.New(1, 2, 3),
			intset.New(4, 5),
		},
		InitFontGlyphs: intset.New(0),
	}
	entries := []condition.PatchMapEntry{
		{Segments: intset.New(0), PatchID: 0},
		{Segments: intset.New(1), ComposedOf: []int{0}, PatchID: 1},
	}

	wire := Encode(plan, entries)
	if len(wire) == 0 {
		t.Fatal("expected non-empty wire output")
	}

	decoded, err := Decode(wire)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(decoded.Patches) != 2 {
		t.Fatalf("expected 2 patches, got %d", len(decoded.Patches))
	}
	if !decoded.Patches[0].Equal(plan.Patches[0]) {
		t.Errorf("patch 0 = %v, want %v", decoded.Patches[0].Values(), plan.Patches[0].Values())
	}
	if !decoded.Patches[1].Equal(plan.Patches[1]) {
		t.Errorf("patch 1 = %v, want %v", decoded.Patches[1].Values(), plan.Patches[1].Values())
	}
	if !decoded.InitFontGlyphs.Equal(plan.InitFontGlyphs) {
		t.Errorf("init font glyphs = %v, want %v", decoded.InitFontGlyphs.Values(), plan.InitFontGlyphs.Values())
	}

	glyphSetComparer := cmp.Comparer(func(a, b intset.GlyphSet) bool { return a.Equal(b) })
	if diff := cmp.Diff(entries, decoded.Entries, glyphSetComparer); diff != "" {
		t.Errorf("decoded entries mismatch (-want +got):\n%s", diff)
	}
}
