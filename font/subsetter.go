// Package font adapts the OpenType table parser into the font
// collaborator the planning core needs: a glyph closure function and a
// glyph count, per the external interfaces section of the design. It is
// the default, swappable implementation of that collaborator.
package font

import (
	"github.com/go-ift/segmenter/intset"
	"github.com/go-ift/segmenter/ot"
	"github.com/go-ift/segmenter/segment"
)

// Subsetter computes glyph closures over a parsed OpenType font: the
// cmap lookup, the composite glyf closure, and the GSUB substitution
// closure, iterated to a fixed point exactly as a real subsetting
// library would.
type Subsetter struct {
	font *ot.Font

	cmap *ot.Cmap
	glyf *ot.Glyf
	gsub *ot.GSUB
	cff  *ot.CFF
}

// New parses the tables a Subsetter needs out of font and returns a
// ready-to-use closure collaborator. Missing optional tables (glyf,
// GSUB) are simply not used during closure computation; a missing cmap
// is not an error either, since a purely glyph-id-addressed segment is
// legal input.
func New(font *ot.Font) (*Subsetter, error) {
	s := &Subsetter{font: font}

	if font.HasTable(ot.TagCmap) {
		data, err := font.TableData(ot.TagCmap)
		if err != nil {
			return nil, err
		}
		cmap, err := ot.ParseCmap(data)
		if err != nil {
			return nil, err
		}
		s.cmap = cmap
	}

	if font.HasTable(ot.TagGlyf) {
		glyf, err := ot.ParseGlyfFromFont(font)
		if err == nil {
			s.glyf = glyf
		}
	}

	if font.HasTable(ot.TagGSUB) {
		data, err := font.TableData(ot.TagGSUB)
		if err == nil {
			s.gsub, _ = ot.ParseGSUB(data)
		}
	}

	if font.HasTable(ot.TagCFF) {
		data, err := font.TableData(ot.TagCFF)
		if err == nil {
			s.cff, _ = ot.ParseCFF(data)
		}
	}

	return s, nil
}

// GlyphCount returns the font's glyph count from maxp.
func (s *Subsetter) GlyphCount() int { return s.font.NumGlyphs() }

// HasTable reports whether the underlying font carries tag.
func (s *Subsetter) HasTable(tag ot.Tag) bool { return s.font.HasTable(tag) }

// GlyphClosure computes the set of glyph ids required to render def:
// gid 0 is always kept, codepoints are mapped through cmap, composite
// glyphs pull in their components to a fixed point, and GSUB
// substitutions (single, multiple, ligature) are applied to a fixed
// point on top of that.
func (s *Subsetter) GlyphClosure(def segment.SubsetDefinition) (intset.GlyphSet, error) {
	var gids intset.GlyphSet
	gids.Add(0) // .notdef

	if s.cmap != nil {
		def.Codepoints.ForEach(func(cp uint32) {
			if gid, ok := s.cmap.Lookup(ot.Codepoint(cp)); ok {
				gids.Add(uint32(gid))
			}
		})
	}

	s.closeComposites(&gids)
	s.closeGSUB(&gids)

	return gids, nil
}

func (s *Subsetter) closeComposites(gids *intset.GlyphSet) {
	if s.glyf == nil {
		return
	}
	for {
		added := false
		for _, gid := range gids.Values() {
			for _, comp := range s.glyf.GetComponents(ot.GlyphID(gid)) {
				if !gids.Contains(uint32(comp)) {
					gids.Add(uint32(comp))
					added = true
				}
			}
		}
		if !added {
			break
		}
	}
}

func (s *Subsetter) closeGSUB(gids *intset.GlyphSet) {
	if s.gsub == nil {
		return
	}
	for {
		added := false
		for i := 0; i < s.gsub.NumLookups(); i++ {
			lookup := s.gsub.GetLookup(i)
			if lookup == nil {
				continue
			}
			for _, out := range lookupOutputGlyphs(lookup, *gids) {
				if !gids.Contains(uint32(out)) {
					gids.Add(uint32(out))
					added = true
				}
			}
		}
		if !added {
			break
		}
	}
}

// lookupOutputGlyphs returns the glyphs a GSUB lookup can produce given
// the glyphs currently in the set, for the three substitution types the
// closure needs to understand (matching the table kinds the donor
// subsetter already parses).
func lookupOutputGlyphs(lookup *ot.GSUBLookup, have intset.GlyphSet) []ot.GlyphID {
	var out []ot.GlyphID
	for _, subtable := range lookup.Subtables() {
		switch st := subtable.(type) {
		case *ot.SingleSubst:
			for in, mapped := range st.Mapping() {
				if have.Contains(uint32(in)) {
					out = append(out, mapped)
				}
			}
		case *ot.MultipleSubst:
			for in, mapped := range st.Mapping() {
				if have.Contains(uint32(in)) {
					out = append(out, mapped...)
				}
			}
		case *ot.LigatureSubst:
			for _, ligSet := range st.LigatureSets() {
				for _, lig := range ligSet {
					allPresent := true
					for _, comp := range lig.Components {
						if !have.Contains(uint32(comp)) {
							allPresent = false
							break
						}
					}
					if allPresent {
						out = append(out, lig.LigGlyph)
					}
				}
			}
		}
	}
	return out
}

// GlyphBytes returns the raw outline bytes for gid: glyf outline data for
// a TrueType-flavored font, the glyph's CharString for a CFF-flavored
// one, or nil if neither table is present.
func (s *Subsetter) GlyphBytes(gid uint32) []byte {
	if s.glyf != nil {
		return s.glyf.GetGlyphBytes(ot.GlyphID(gid))
	}
	if s.cff != nil && int(gid) < len(s.cff.CharStrings) {
		return s.cff.CharStrings[gid]
	}
	return nil
}

// RawGlyphDataBytes sums the raw outline byte length of every glyph in
// gids, used by the estimated patch-size cache.
func (s *Subsetter) RawGlyphDataBytes(gids intset.GlyphSet) int {
	total := 0
	gids.ForEach(func(gid uint32) {
		total += len(s.GlyphBytes(gid))
	})
	return total
}
