// Package encoder glues the closure cache, condition set, and grouping
// algorithm together into the incremental segmentation context, and
// implements the top-level orchestrator that drives them to a finished
// plan.
package encoder

import (
	"github.com/go-ift/segmenter/closure"
	"github.com/go-ift/segmenter/condition"
	"github.com/go-ift/segmenter/grouping"
	"github.com/go-ift/segmenter/ifterr"
	"github.com/go-ift/segmenter/intset"
	"github.com/go-ift/segmenter/segment"
	"github.com/go-ift/segmenter/telemetry"
)

// Context is the SegmentationContext component: the live, mutable state
// a segmentation run operates on, kept consistent as segments are
// merged or reassigned.
type Context struct {
	cache      *closure.Cache
	info       *segment.Info
	conditions *condition.Set
	log        telemetry.Logger
}

// NewContext builds a Context over info, computing and caching info's
// initial-subset and full closures up front.
func NewContext(subsetter closure.Subsetter, info *segment.Info, numGlyphs int, log telemetry.Logger) (*Context, error) {
	cache := closure.New(subsetter, log)

	initGlyphs, err := cache.GlyphClosure(info.InitialSegmentWithDefaults())
	if err != nil {
		return nil, ifterr.Wrap("NewContext", ifterr.ClosureError, err, "computing initial subset closure")
	}
	info.SetInitGlyphs(initGlyphs)

	full, err := cache.GlyphClosure(info.FullSubsetDefinition())
	if err != nil {
		return nil, ifterr.Wrap("NewContext", ifterr.ClosureError, err, "computing full subset closure")
	}
	info.SetFullClosure(full)

	return &Context{
		cache:      cache,
		info:       info,
		conditions: condition.New(numGlyphs),
		log:        log,
	}, nil
}

// Info returns the context's segmentation info.
func (c *Context) Info() *segment.Info { return c.info }

// Cache returns the context's glyph closure cache.
func (c *Context) Cache() *closure.Cache { return c.cache }

// Conditions returns the context's live GlyphConditionSet, kept current
// by ReprocessSegment and InvalidateGlyphInformation as segments are
// merged or reassigned.
func (c *Context) Conditions() *condition.Set { return c.conditions }

// ReprocessSegment re-runs the AND/OR/EXCLUSIVE analysis for a single
// segment, first invalidating any condition state the segment
// previously contributed so a merge or reassignment cannot leave stale
// associations behind.
func (c *Context) ReprocessSegment(segID segment.Index) error {
	affected := c.conditions.GlyphsWithSegment(segID)
	var only intset.SegmentSet
	only.Add(segID)
	c.conditions.Invalidate(affected, only)

	analysis, err := c.cache.AnalyzeSegment(c.info, only)
	if err != nil {
		return ifterr.Wrap("ReprocessSegment", ifterr.InternalError, err, "segment %d", segID)
	}
	analysis.And.ForEach(func(gid uint32) { c.conditions.AddAnd(gid, segID) })
	analysis.Or.ForEach(func(gid uint32) { c.conditions.AddOr(gid, segID) })
	return nil
}

// InvalidateGlyphInformation drops every condition state changed
// segments contributed, then recomputes info's cached closures. The
// order matters: groupings derived from the stale conditions must be
// invalidated before the closures they were computed against change
// shape, or a later read could see a condition's segments without the
// closure state that justified them.
func (c *Context) InvalidateGlyphInformation(changed intset.SegmentSet) error {
	changed.ForEach(func(segID uint32) {
		affected := c.conditions.GlyphsWithSegment(segID)
		var only intset.SegmentSet
		only.Add(segID)
		c.conditions.Invalidate(affected, only)
	})

	initGlyphs, err := c.cache.GlyphClosure(c.info.InitialSegmentWithDefaults())
	if err != nil {
		return ifterr.Wrap("InvalidateGlyphInformation", ifterr.ClosureError, err, "recomputing initial subset closure")
	}
	c.info.SetInitGlyphs(initGlyphs)

	full, err := c.cache.GlyphClosure(c.info.FullSubsetDefinition())
	if err != nil {
		return ifterr.Wrap("InvalidateGlyphInformation", ifterr.ClosureError, err, "recomputing full subset closure")
	}
	c.info.SetFullClosure(full)

	return nil
}

// GroupGlyphs runs the grouping algorithm over every currently live
// segment.
func (c *Context) GroupGlyphs(minGroupSize int) (*grouping.Result, error) {
	return grouping.Group(c.cache, c.conditions, c.info, c.info.AllSegmentIDs(), minGroupSize)
}
