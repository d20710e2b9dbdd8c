package encoder

import (
	"github.com/go-ift/segmenter/condition"
	"github.com/go-ift/segmenter/ifterr"
	"github.com/go-ift/segmenter/intset"
	"github.com/go-ift/segmenter/segment"
)

// GlyphSegmentation is the finalized plan: a list of patches, each
// guarded by the condition under which a client should request it, plus
// whatever glyphs ended up unmapped (folded into the initial font).
type GlyphSegmentation struct {
	Patches        []intset.GlyphSet
	Conditions     []condition.ActivationCondition
	InitFontGlyphs intset.GlyphSet
}

// ToGlyphSegmentation finalizes a grouping result into a GlyphSegmentation,
// folding unmapped glyphs into the initial font's glyph set, then runs
// the V1-V3 structural invariants described below. It does not run the
// from-scratch oracle check; call ValidateAgainstOracle separately, since
// it requires re-deriving closures and is too expensive to run on every
// call.
//
//   - V1: no glyph appears in more than one patch.
//   - V2: every glyph in the full closure is accounted for, by a patch,
//     by the initial font, or both.
//   - V3: every condition's triggering segments name a live segment.
func ToGlyphSegmentation(info *segment.Info, patches []intset.GlyphSet, conditions []condition.ActivationCondition, unmapped intset.GlyphSet) (*GlyphSegmentation, error) {
	if len(patches) != len(conditions) {
		return nil, ifterr.New("ToGlyphSegmentation", ifterr.InvalidArgument, "patches and conditions length mismatch: %d != %d", len(patches), len(conditions))
	}

	result := &GlyphSegmentation{
		Patches:        patches,
		Conditions:     conditions,
		InitFontGlyphs: info.InitGlyphs().Union(unmapped),
	}

	if err := validateDisjoint(result.Patches); err != nil {
		return nil, err
	}
	if err := validateCoverage(info, result); err != nil {
		return nil, err
	}
	if err := validateConditionsReferenceLiveSegments(info, result.Conditions); err != nil {
		return nil, err
	}

	return result, nil
}

func validateDisjoint(patches []intset.GlyphSet) error {
	var seen intset.GlyphSet
	for i, p := range patches {
		if seen.Intersects(p) {
			return ifterr.New("ToGlyphSegmentation", ifterr.FailedPrecondition, "patch %d overlaps a previously assigned glyph", i)
		}
		seen = seen.Union(p)
	}
	return nil
}

func validateCoverage(info *segment.Info, result *GlyphSegmentation) error {
	covered := result.InitFontGlyphs
	for _, p := range result.Patches {
		covered = covered.Union(p)
	}
	missing := info.FullClosure().Subtract(covered)
	if !missing.Empty() {
		return ifterr.New("ToGlyphSegmentation", ifterr.FailedPrecondition, "%d glyphs are not covered by any patch or the initial font", missing.Len())
	}
	return nil
}

func validateConditionsReferenceLiveSegments(info *segment.Info, conditions []condition.ActivationCondition) error {
	live := info.AllSegmentIDs()
	for i, c := range conditions {
		triggering := c.TriggeringSegments()
		if !triggering.IsSubsetOf(live) {
			return ifterr.New("ToGlyphSegmentation", ifterr.FailedPrecondition, "condition %d references a non-live segment", i)
		}
	}
	return nil
}

// ValidateAgainstOracle is the from-scratch equivalence check: for each
// candidate subset of applied segments, it asks subsetter for the real
// glyph closure of the initial font plus those segments, and confirms
// that the union of the initial font's glyphs and every patch whose
// condition is satisfied by applied is a superset of that closure. A
// superset, not an equality, because a client is allowed to receive
// glyphs it didn't strictly need (over-inclusion is safe; a missing
// glyph is not).
func ValidateAgainstOracle(info *segment.Info, subsetter interface {
	GlyphClosure(segment.SubsetDefinition) (intset.GlyphSet, error)
}, result *GlyphSegmentation, trials []intset.SegmentSet) error {
	for _, applied := range trials {
		def := info.InitialSegmentWithDefaults().Union(info.SegmentsDefinition(applied))
		want, err := subsetter.GlyphClosure(def)
		if err != nil {
			return ifterr.Wrap("ValidateAgainstOracle", ifterr.ClosureError, err, "computing oracle closure")
		}

		have := result.InitFontGlyphs
		for i, p := range result.Patches {
			if result.Conditions[i].SatisfiedBy(applied) {
				have = have.Union(p)
			}
		}

		if !want.IsSubsetOf(have) {
			missing := want.Subtract(have)
			return ifterr.New("ValidateAgainstOracle", ifterr.FailedPrecondition, "applying segments %v leaves %d glyphs unreachable", applied.Values(), missing.Len())
		}
	}
	return nil
}
