package segment

// defaultFeatureTags mirrors the IFT feature registry's default-on GSUB
// and GPOS feature set: these are unioned into the initial subset so the base
// font already supports the layout behavior clients expect without
// opting in explicitly. Discretionary and numbered alternate-glyph
// features (fwid, zero, cvNN, ssNN, ...) are deliberately excluded; a
// client must request those via an explicit segment.
var defaultFeatureTags = []string{
	"ccmp", "liga", "clig", "calt", "locl",
	"mark", "mkmk", "rlig", "curs", "kern",
	"rclt", "dist", "frac", "vatu", "vrtr",
	"abvm", "blwm", "ljmo", "vjmo", "tjmo",
}

// DefaultFeatureTags returns the default-on feature tags applied to every
// initial subset.
func DefaultFeatureTags() []Tag {
	out := make([]Tag, len(defaultFeatureTags))
	for i, s := range defaultFeatureTags {
		out[i] = ParseTag(s)
	}
	return out
}

// AddInitSubsetDefaults unions the default feature tags into def's
// feature set, returning the result.
func AddInitSubsetDefaults(def SubsetDefinition) SubsetDefinition {
	out := def
	out.Features = def.Features.Clone()
	for _, t := range DefaultFeatureTags() {
		out.AddFeature(t)
	}
	return out
}
