// Package closure memoizes glyph closures over a font and implements the
// three-way AND/OR/EXCLUSIVE segment analysis the grouping algorithm is
// built on.
package closure

import (
	"github.com/go-ift/segmenter/ifterr"
	"github.com/go-ift/segmenter/intset"
	"github.com/go-ift/segmenter/segment"
	"github.com/go-ift/segmenter/telemetry"
)

// Subsetter is the font collaborator this cache wraps: anything able to
// compute a glyph closure over a SubsetDefinition. font.Subsetter
// satisfies this.
type Subsetter interface {
	GlyphClosure(segment.SubsetDefinition) (intset.GlyphSet, error)
}

// Cache memoizes Subsetter.GlyphClosure by SubsetDefinition value.
type Cache struct {
	subsetter Subsetter
	log       telemetry.Logger

	entries    map[string]intset.GlyphSet
	hits       int
	misses     int
}

// New returns a Cache backed by subsetter. A zero-value telemetry.Logger
// is equivalent to telemetry.Noop().
func New(subsetter Subsetter, log telemetry.Logger) *Cache {
	return &Cache{
		subsetter: subsetter,
		log:       log,
		entries:   make(map[string]intset.GlyphSet),
	}
}

// GlyphClosure returns the memoized closure of def, computing and
// caching it on first request.
func (c *Cache) GlyphClosure(def segment.SubsetDefinition) (intset.GlyphSet, error) {
	key := def.Key()
	if g, ok := c.entries[key]; ok {
		c.hits++
		return g, nil
	}
	c.misses++
	g, err := c.subsetter.GlyphClosure(def)
	if err != nil {
		return intset.GlyphSet{}, ifterr.Wrap("GlyphClosure", ifterr.ClosureError, err, "subsetter rejected definition")
	}
	c.entries[key] = g
	return g, nil
}

// LogCacheStats emits the cache hit/miss counters at debug level,
// matching the donor encoder's telemetry counters.
func (c *Cache) LogCacheStats() {
	c.log.With("hits", c.hits).With("misses", c.misses).Debug("glyph closure cache stats")
}

// HitCount and MissCount expose the raw counters for tests.
func (c *Cache) HitCount() int  { return c.hits }
func (c *Cache) MissCount() int { return c.misses }

// Analysis is the result of AnalyzeSegment: the conjunctive, disjunctive,
// and exclusive glyph sets for a chosen set of segments.
type Analysis struct {
	And       intset.GlyphSet
	Or        intset.GlyphSet
	Exclusive intset.GlyphSet
}

// AnalyzeSegment computes the three-way AND/OR/EXCLUSIVE decomposition
// for the chosen segments within info:
//
//	A = info.FullClosure()
//	B = closure(full-subset-definition minus chosen segments)
//	I = closure(initial-subset ∪ chosen segments) \ info.InitGlyphs()
//	D = A \ B
//	AND := D \ I
//	OR  := I \ D
//	EXCLUSIVE := I ∩ D
func (c *Cache) AnalyzeSegment(info *segment.Info, ids intset.SegmentSet) (Analysis, error) {
	a := info.FullClosure()

	exceptDef, err := c.exceptSegmentsDefinition(info, ids)
	if err != nil {
		return Analysis{}, err
	}
	b, err := c.GlyphClosure(exceptDef)
	if err != nil {
		return Analysis{}, err
	}

	onlyDef := info.InitialSegmentWithDefaults().Union(info.SegmentsDefinition(ids))
	onlyClosure, err := c.GlyphClosure(onlyDef)
	if err != nil {
		return Analysis{}, err
	}
	i := onlyClosure.Subtract(info.InitGlyphs())

	d := a.Subtract(b)

	return Analysis{
		And:       d.Subtract(i),
		Or:        i.Subtract(d),
		Exclusive: i.Intersect(d),
	}, nil
}

// CodepointsToOrGids returns only the OR set of AnalyzeSegment(info, ids),
// the primitive the grouping algorithm's OR-group verification step
// needs.
func (c *Cache) CodepointsToOrGids(info *segment.Info, ids intset.SegmentSet) (intset.GlyphSet, error) {
	a, err := c.AnalyzeSegment(info, ids)
	if err != nil {
		return intset.GlyphSet{}, err
	}
	return a.Or, nil
}

// exceptSegmentsDefinition builds "the full subset minus the chosen
// segments." When the chosen segments are pairwise disjoint (a cheap,
// common case), it is built by subtracting their union from the full
// subset definition; otherwise by unioning every other segment, which is
// correct regardless of overlap.
func (c *Cache) exceptSegmentsDefinition(info *segment.Info, ids intset.SegmentSet) (segment.SubsetDefinition, error) {
	all := info.AllSegmentIDs()
	if ids.Len() == 0 {
		return info.FullSubsetDefinition(), nil
	}

	if info.SegmentsAreDisjoint(ids) && ids.Len() <= all.Len()/2+1 {
		chosen := info.SegmentsDefinition(ids)
		return info.FullSubsetDefinition().Subtract(chosen), nil
	}

	others := all.Subtract(ids)
	return info.InitialSegmentWithDefaults().Union(info.SegmentsDefinition(others)), nil
}
