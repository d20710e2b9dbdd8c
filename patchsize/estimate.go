package patchsize

import "github.com/go-ift/segmenter/intset"

// RawGlyphData sums the raw (uncompressed) outline bytes for a glyph
// set, used to scale the estimate by the font's actual compression
// ratio.
type RawGlyphData interface {
	RawGlyphDataBytes(gids intset.GlyphSet) int
}

// Tables records which glyph-keyed tables a font carries, since each one
// contributes its own stream to the patch format.
type Tables struct {
	CFF, CFF2, Glyf, Gvar bool
}

// Count returns how many of the recorded tables are present.
func (t Tables) Count() int {
	n := 0
	for _, present := range []bool{t.CFF, t.CFF2, t.Glyf, t.Gvar} {
		if present {
			n++
		}
	}
	return n
}

const headerSize = 1 + 7*4

// Estimated derives patch byte sizes from a compression ratio computed
// once (by compressing the font's full glyph table) rather than by
// invoking the real encoder per candidate.
type Estimated struct {
	rawData RawGlyphData
	tables  Tables
	ratio   float64

	sizes map[string]int
}

// NewEstimated computes the compression ratio once over fullGlyphSet
// (encoded via encoder at quality) and returns a ready-to-use cache.
func NewEstimated(encoder Encoder, rawData RawGlyphData, tables Tables, fullGlyphSet intset.GlyphSet, quality int) (*Estimated, error) {
	uncompressed := rawData.RawGlyphDataBytes(fullGlyphSet)
	ratio := 1.0
	if uncompressed > 0 {
		compressed, err := encoder.EncodePatch(fullGlyphSet, quality)
		if err != nil {
			return nil, err
		}
		ratio = float64(len(compressed)) / float64(uncompressed)
	}
	return &Estimated{rawData: rawData, tables: tables, ratio: ratio, sizes: make(map[string]int)}, nil
}

// GetPatchSize estimates the byte size of a patch carrying gids:
//
//	header + (5 + n*gid_width + 4*table_count + 4*(n*table_count+1) + raw_bytes) * ratio
//
// where gid_width is 3 bytes once a patch needs more than 255 distinct
// glyph ids to address, else 2.
func (e *Estimated) GetPatchSize(gids intset.GlyphSet) (int, error) {
	key := gids.Key()
	if n, ok := e.sizes[key]; ok {
		return n, nil
	}

	n := gids.Len()
	gidWidth := 2
	if n > 255 {
		gidWidth = 3
	}
	tableCount := e.tables.Count()

	uncompressed := 5 + n*gidWidth + 4*tableCount + 4*(n*tableCount+1) + e.rawData.RawGlyphDataBytes(gids)
	size := headerSize + int(float64(uncompressed)*e.ratio)

	e.sizes[key] = size
	return size, nil
}

// Ratio returns the compression ratio this cache was calibrated with.
func (e *Estimated) Ratio() float64 { return e.ratio }
