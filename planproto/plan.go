// Package planproto serializes a finalized GlyphSegmentation to and from
// a compact binary wire format, hand-encoded with
// google.golang.org/protobuf/encoding/protowire rather than through
// protoc-generated bindings, since this module cannot invoke protoc.
// The field numbering below is the message's stable wire contract; treat
// it the same way a .proto file's field numbers are treated; never
// renumber a shipped field.
package planproto

import (
	"fmt"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/go-ift/segmenter/condition"
	"github.com/go-ift/segmenter/encoder"
	"github.com/go-ift/segmenter/intset"
)

const (
	fieldPatches        = protowire.Number(1)
	fieldEntries        = protowire.Number(2)
	fieldInitFontGlyphs = protowire.Number(3)

	fieldPatchGlyphs = protowire.Number(1)

	fieldEntrySegments   = protowire.Number(1)
	fieldEntryComposedOf = protowire.Number(2)
	fieldEntryPatchID    = protowire.Number(3)
)

// Encode serializes plan and its lowered patch map entries into the wire
// format.
func Encode(plan *encoder.GlyphSegmentation, entries []condition.PatchMapEntry) []byte {
	var b []byte
	for _, patch := range plan.Patches {
		b = protowire.AppendTag(b, fieldPatches, protowire.BytesType)
		b = protowire.AppendBytes(b, encodePatch(patch))
	}
	for _, e := range entries {
		b = protowire.AppendTag(b, fieldEntries, protowire.BytesType)
		b = protowire.AppendBytes(b, encodeEntry(e))
	}
	for _, gid := range plan.InitFontGlyphs.Values() {
		b = protowire.AppendTag(b, fieldInitFontGlyphs, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(gid))
	}
	return b
}

func encodePatch(glyphs intset.GlyphSet) []byte {
	var b []byte
	for _, gid := range glyphs.Values() {
		b = protowire.AppendTag(b, fieldPatchGlyphs, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(gid))
	}
	return b
}

func encodeEntry(e condition.PatchMapEntry) []byte {
	var b []byte
	for _, seg := range e.Segments.Values() {
		b = protowire.AppendTag(b, fieldEntrySegments, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(seg))
	}
	for _, idx := range e.ComposedOf {
		b = protowire.AppendTag(b, fieldEntryComposedOf, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(idx))
	}
	b = protowire.AppendTag(b, fieldEntryPatchID, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(int64(e.PatchID)))
	return b
}

// Decoded is the parsed form of an encoded plan: the patches and entries
// Encode wrote, in the same order.
type Decoded struct {
	Patches        []intset.GlyphSet
	Entries        []condition.PatchMapEntry
	InitFontGlyphs intset.GlyphSet
}

// Decode parses the wire format Encode produced.
func Decode(b []byte) (*Decoded, error) {
	out := &Decoded{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("planproto: malformed tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch num {
		case fieldPatches:
			data, n, err := consumeBytes(b, typ)
			if err != nil {
				return nil, err
			}
			b = b[n:]
			patch, err := decodePatch(data)
			if err != nil {
				return nil, err
			}
			out.Patches = append(out.Patches, patch)

		case fieldEntries:
			data, n, err := consumeBytes(b, typ)
			if err != nil {
				return nil, err
			}
			b = b[n:]
			entry, err := decodeEntry(data)
			if err != nil {
				return nil, err
			}
			out.Entries = append(out.Entries, entry)

		case fieldInitFontGlyphs:
			v, n, err := consumeVarint(b, typ)
			if err != nil {
				return nil, err
			}
			b = b[n:]
			out.InitFontGlyphs.Add(uint32(v))

		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("planproto: malformed field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return out, nil
}

func decodePatch(b []byte) (intset.GlyphSet, error) {
	var out intset.GlyphSet
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return out, fmt.Errorf("planproto: malformed patch tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		if num != fieldPatchGlyphs {
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return out, fmt.Errorf("planproto: malformed patch field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
			continue
		}
		v, n, err := consumeVarint(b, typ)
		if err != nil {
			return out, err
		}
		b = b[n:]
		out.Add(uint32(v))
	}
	return out, nil
}

func decodeEntry(b []byte) (condition.PatchMapEntry, error) {
	entry := condition.PatchMapEntry{PatchID: -1}
	var composedOf []int
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return entry, fmt.Errorf("planproto: malformed entry tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch num {
		case fieldEntrySegments:
			v, n, err := consumeVarint(b, typ)
			if err != nil {
				return entry, err
			}
			b = b[n:]
			entry.Segments.Add(uint32(v))
		case fieldEntryComposedOf:
			v, n, err := consumeVarint(b, typ)
			if err != nil {
				return entry, err
			}
			b = b[n:]
			composedOf = append(composedOf, int(v))
		case fieldEntryPatchID:
			v, n, err := consumeVarint(b, typ)
			if err != nil {
				return entry, err
			}
			b = b[n:]
			entry.PatchID = int(int64(v))
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return entry, fmt.Errorf("planproto: malformed entry field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	sort.Ints(composedOf)
	entry.ComposedOf = composedOf
	return entry, nil
}

func consumeVarint(b []byte, typ protowire.Type) (uint64, int, error) {
	if typ != protowire.VarintType {
		return 0, 0, fmt.Errorf("planproto: expected varint field, got wire type %d", typ)
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, fmt.Errorf("planproto: malformed varint: %w", protowire.ParseError(n))
	}
	return v, n, nil
}

func consumeBytes(b []byte, typ protowire.Type) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, fmt.Errorf("planproto: expected length-delimited field, got wire type %d", typ)
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, fmt.Errorf("planproto: malformed bytes field: %w", protowire.ParseError(n))
	}
	return v, n, nil
}
