// Package patch provides the default glyph-keyed patch encoder and
// Brotli-based binary differ the planning core treats as an external
// collaborator: it only needs byte sizes (and, for the real outer
// system, the patch bytes themselves).
package patch

import (
	"bytes"
	"encoding/binary"

	"github.com/andybalholm/brotli"
	"github.com/go-ift/segmenter/intset"
)

// GlyphSource supplies the raw per-glyph bytes a GlyphKeyedDiff streams
// and compresses. font.Subsetter satisfies this.
type GlyphSource interface {
	GlyphBytes(gid uint32) []byte
}

// GlyphKeyedDiff builds the glyph-keyed patch data stream for a glyph
// set and compresses it with Brotli, mirroring the donor encoder's
// glyph-keyed diff format closely enough to produce realistic byte
// sizes: a gid table followed by each glyph's raw outline bytes.
type GlyphKeyedDiff struct {
	source GlyphSource
}

// NewGlyphKeyedDiff returns a differ reading glyph bytes from source.
func NewGlyphKeyedDiff(source GlyphSource) *GlyphKeyedDiff {
	return &GlyphKeyedDiff{source: source}
}

// EncodePatch builds the data stream for gids and compresses it at the
// given Brotli quality (1-11), returning the compressed bytes. This
// satisfies both patchsize.Encoder and the "real patch encoder"
// collaborator named in the external interfaces.
func (d *GlyphKeyedDiff) EncodePatch(gids intset.GlyphSet, quality int) ([]byte, error) {
	stream := d.createDataStream(gids)

	var out bytes.Buffer
	w := brotli.NewWriterLevel(&out, clampQuality(quality))
	if _, err := w.Write(stream); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// createDataStream lays out a varint glyph count, then for each glyph in
// ascending id order a varint gid, a varint byte length, and the raw
// glyph bytes.
func (d *GlyphKeyedDiff) createDataStream(gids intset.GlyphSet) []byte {
	var buf bytes.Buffer
	var scratch [binary.MaxVarintLen32]byte

	n := binary.PutUvarint(scratch[:], uint64(gids.Len()))
	buf.Write(scratch[:n])

	gids.ForEach(func(gid uint32) {
		data := d.source.GlyphBytes(gid)

		n := binary.PutUvarint(scratch[:], uint64(gid))
		buf.Write(scratch[:n])
		n = binary.PutUvarint(scratch[:], uint64(len(data)))
		buf.Write(scratch[:n])
		buf.Write(data)
	})

	return buf.Bytes()
}

func clampQuality(q int) int {
	if q < 0 {
		return 0
	}
	if q > 11 {
		return 11
	}
	return q
}
