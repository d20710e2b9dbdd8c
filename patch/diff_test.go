package patch

import (
	"testing"

	"github.com/go-ift/segmenter/intset"
)

type fakeGlyphSource struct {
	data map[uint32][]byte
}

func (f fakeGlyphSource) GlyphBytes(gid uint32) []byte { return f.data[gid] }

func TestEncodePatchDeterministic(t *testing.T) {
	src := fakeGlyphSource{data: map[uint32][]byte{
		1: {0x01, 0x02, 0x03},
		2: {0x04, 0x05},
		3: {},
	}}
	diff := NewGlyphKeyedDiff(src)

	gids := intset.New(1, 2, 3)
	a, err := diff.EncodePatch(gids, 9)
	if err != nil {
		t.Fatalf("EncodePatch: %v", err)
	}
	b, err := diff.EncodePatch(gids, 9)
	if err != nil {
		t.Fatalf("EncodePatch (second call): %v", err)
	}
	if len(a) == 0 {
		t.Fatal("expected non-empty compressed patch")
	}
	if string(a) != string(b) {
		t.Error("EncodePatch should be deterministic for identical input")
	}
}

func TestEncodePatchGrowsWithMoreGlyphs(t *testing.T) {
	src := fakeGlyphSource{data: map[uint32][]byte{
		1: bytesOfLen(400),
		2: bytesOfLen(400),
	}}
	diff := NewGlyphKeyedDiff(src)

	small, err := diff.EncodePatch(intset.New(1), 9)
	if err != nil {
		t.Fatalf("EncodePatch: %v", err)
	}
	big, err := diff.EncodePatch(intset.New(1, 2), 9)
	if err != nil {
		t.Fatalf("EncodePatch: %v", err)
	}
	if len(big) <= len(small) {
		t.Errorf("expected patch with more incompressible glyph data to be larger: small=%d big=%d", len(small), len(big))
	}
}

func bytesOfLen(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i * 97) // avoid a trivially compressible run
	}
	return b
}
