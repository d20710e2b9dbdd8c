package font

import (
	"os"
	"testing"

	"github.com/go-ift/segmenter/internal/testutil"
	"github.com/go-ift/segmenter/ot"
	"github.com/go-ift/segmenter/segment"
)

func loadTestFont(t *testing.T, name string) *ot.Font {
	t.Helper()
	path := testutil.FindTestFont(name)
	if path == "" {
		t.Skipf("test font %q not found, skipping", name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	f, err := ot.ParseFont(data, 0)
	if err != nil {
		t.Fatalf("ot.ParseFont(%s): %v", path, err)
	}
	return f
}

func TestGlyphClosureAlwaysKeepsNotdef(t *testing.T) {
	font := loadTestFont(t, "Roboto-Regular.ttf")

	s, err := New(font)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	gids, err := s.GlyphClosure(segment.SubsetDefinition{})
	if err != nil {
		t.Fatalf("GlyphClosure: %v", err)
	}
	if !gids.Contains(0) {
		t.Error("expected glyph closure to always include gid 0 (.notdef)")
	}
}

func TestGlyphClosureCodepoint(t *testing.T) {
	font := loadTestFont(t, "Roboto-Regular.ttf")

	s, err := New(font)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var def segment.SubsetDefinition
	def.AddCodepoint('A')

	gids, err := s.GlyphClosure(def)
	if err != nil {
		t.Fatalf("GlyphClosure: %v", err)
	}
	if gids.Len() < 2 {
		t.Errorf("expected at least .notdef + gid(A), got %d glyphs", gids.Len())
	}
}
