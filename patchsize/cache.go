// Package patchsize memoizes patch-size estimation for a candidate glyph
// set: the exact variant asks the real patch encoder, the estimated
// variant derives a size from a precomputed compression ratio so the
// merger can evaluate many candidates cheaply.
package patchsize

import "github.com/go-ift/segmenter/intset"

// Cache is the contract both variants satisfy.
type Cache interface {
	GetPatchSize(gids intset.GlyphSet) (int, error)
}

// Encoder produces the real glyph-keyed patch bytes for gids, at the
// given Brotli quality (1-11). patch.GlyphKeyedDiff implements this.
type Encoder interface {
	EncodePatch(gids intset.GlyphSet, quality int) ([]byte, error)
}

// Exact invokes Encoder for every distinct GlyphSet and memoizes the
// resulting byte length.
type Exact struct {
	encoder Encoder
	quality int

	sizes      map[string]int
	brotliCalls int
}

// NewExact returns an Exact cache that encodes at the given Brotli
// quality (11 for final costs, 8-9 is a reasonable choice for estimates
// that still want a real encode).
func NewExact(encoder Encoder, quality int) *Exact {
	return &Exact{encoder: encoder, quality: quality, sizes: make(map[string]int)}
}

// GetPatchSize returns the encoded byte length for gids, memoized.
func (e *Exact) GetPatchSize(gids intset.GlyphSet) (int, error) {
	key := gids.Key()
	if n, ok := e.sizes[key]; ok {
		return n, nil
	}
	data, err := e.encoder.EncodePatch(gids, e.quality)
	if err != nil {
		return 0, err
	}
	e.brotliCalls++
	n := len(data)
	e.sizes[key] = n
	return n, nil
}

// BrotliCallCount returns how many times the real encoder actually ran
// (as opposed to being served from cache).
func (e *Exact) BrotliCallCount() int { return e.brotliCalls }
