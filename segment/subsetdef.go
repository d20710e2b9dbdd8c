package segment

import (
	"sort"

	"github.com/go-ift/segmenter/intset"
)

// AxisRange is an inclusive variation-axis range, carried opaquely by
// SubsetDefinition: the planning core never inspects it beyond equality
// and union, leaving instancing semantics to the font collaborator.
type AxisRange struct {
	Min, Max float64
}

// SubsetDefinition is a pair of (codepoints, feature tags) plus an
// optional set of pinned/ranged variation axes. It is the unit the
// planner asks the font collaborator to compute a glyph closure for.
type SubsetDefinition struct {
	Codepoints  intset.CodepointSet
	Features    intset.IntSet // Tag values stored as uint32
	DesignSpace map[Tag]AxisRange
}

// NewSubsetDefinition returns an empty SubsetDefinition.
func NewSubsetDefinition() SubsetDefinition {
	return SubsetDefinition{}
}

// AddCodepoint adds a single codepoint.
func (d *SubsetDefinition) AddCodepoint(cp rune) { d.Codepoints.Add(uint32(cp)) }

// AddCodepoints adds every rune in s.
func (d *SubsetDefinition) AddCodepoints(s string) {
	for _, r := range s {
		d.AddCodepoint(r)
	}
}

// AddFeature adds a single feature tag.
func (d *SubsetDefinition) AddFeature(t Tag) { d.Features.Add(uint32(t)) }

// FeatureTags returns the feature tags as a slice, in ascending order.
func (d SubsetDefinition) FeatureTags() []Tag {
	vals := d.Features.Values()
	out := make([]Tag, len(vals))
	for i, v := range vals {
		out[i] = Tag(v)
	}
	return out
}

// Empty reports whether the definition has no codepoints, no features,
// and no design-space constraints.
func (d SubsetDefinition) Empty() bool {
	return d.Codepoints.Empty() && d.Features.Empty() && len(d.DesignSpace) == 0
}

// HasCodepointsAndFeatures reports whether both the codepoint set and the
// feature set are non-empty. condition.Lower does not consult it and
// does not split such a segment into child entries.
func (d SubsetDefinition) HasCodepointsAndFeatures() bool {
	return !d.Codepoints.Empty() && !d.Features.Empty()
}

// Union returns a new SubsetDefinition containing every codepoint,
// feature, and design-space entry of d or other.
func (d SubsetDefinition) Union(other SubsetDefinition) SubsetDefinition {
	out := SubsetDefinition{
		Codepoints: d.Codepoints.Union(other.Codepoints),
		Features:   d.Features.Union(other.Features),
	}
	out.DesignSpace = mergeDesignSpace(d.DesignSpace, other.DesignSpace)
	return out
}

// Subtract returns a new SubsetDefinition with other's codepoints and
// features removed. Design-space entries present in other are dropped.
func (d SubsetDefinition) Subtract(other SubsetDefinition) SubsetDefinition {
	out := SubsetDefinition{
		Codepoints: d.Codepoints.Subtract(other.Codepoints),
		Features:   d.Features.Subtract(other.Features),
	}
	out.DesignSpace = make(map[Tag]AxisRange, len(d.DesignSpace))
	for tag, r := range d.DesignSpace {
		if _, removed := other.DesignSpace[tag]; !removed {
			out.DesignSpace[tag] = r
		}
	}
	return out
}

// Intersect returns a new SubsetDefinition containing only codepoints and
// features present in both d and other.
func (d SubsetDefinition) Intersect(other SubsetDefinition) SubsetDefinition {
	return SubsetDefinition{
		Codepoints: d.Codepoints.Intersect(other.Codepoints),
		Features:   d.Features.Intersect(other.Features),
	}
}

// Equal reports whether d and other denote the same subset.
func (d SubsetDefinition) Equal(other SubsetDefinition) bool {
	if !d.Codepoints.Equal(other.Codepoints) || !d.Features.Equal(other.Features) {
		return false
	}
	if len(d.DesignSpace) != len(other.DesignSpace) {
		return false
	}
	for tag, r := range d.DesignSpace {
		or, ok := other.DesignSpace[tag]
		if !ok || or != r {
			return false
		}
	}
	return true
}

// Key returns a canonical string encoding usable as a map key, combining
// the codepoint key, the feature key, and a sorted rendering of the
// design-space map.
func (d SubsetDefinition) Key() string {
	k := d.Codepoints.Key() + "|" + d.Features.Key()
	if len(d.DesignSpace) == 0 {
		return k
	}
	tags := make([]Tag, 0, len(d.DesignSpace))
	for t := range d.DesignSpace {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	k += "|"
	for _, t := range tags {
		r := d.DesignSpace[t]
		k += t.String() + ":" + floatKey(r.Min) + ":" + floatKey(r.Max) + ";"
	}
	return k
}

func floatKey(f float64) string {
	// A simple, stable encoding sufficient for map-key purposes; the
	// planner never parses this back.
	i := int64(f * 1000)
	if i < 0 {
		return "-" + uintKey(uint64(-i))
	}
	return uintKey(uint64(i))
}

func uintKey(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

func mergeDesignSpace(a, b map[Tag]AxisRange) map[Tag]AxisRange {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[Tag]AxisRange, len(a)+len(b))
	for t, r := range a {
		out[t] = r
	}
	for t, r := range b {
		if existing, ok := out[t]; ok {
			if r.Min < existing.Min {
				existing.Min = r.Min
			}
			if r.Max > existing.Max {
				existing.Max = r.Max
			}
			out[t] = existing
		} else {
			out[t] = r
		}
	}
	return out
}
