package main

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/go-ift/segmenter/ifterr"
	"github.com/go-ift/segmenter/segment"
)

// segmentsFile is the on-disk YAML shape for a requested segmentation:
// an initial subset's codepoints plus an ordered list of candidate
// segments, each with the codepoints it covers and the probability a
// client actually requests it.
type segmentsFile struct {
	InitialCodepoints []uint32        `yaml:"initial_codepoints"`
	Segments          []segmentEntry  `yaml:"segments"`
}

type segmentEntry struct {
	Codepoints  []uint32 `yaml:"codepoints"`
	Probability float64  `yaml:"probability"`
}

func loadSegments(path string) (segment.SubsetDefinition, []segment.Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return segment.SubsetDefinition{}, nil, ifterr.Wrap("loadSegments", ifterr.InvalidArgument, err, "reading segments file %q", path)
	}

	var parsed segmentsFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return segment.SubsetDefinition{}, nil, ifterr.Wrap("loadSegments", ifterr.InvalidArgument, err, "parsing segments file %q", path)
	}

	initial := segment.NewSubsetDefinition()
	for _, cp := range parsed.InitialCodepoints {
		initial.AddCodepoint(rune(cp))
	}

	segments := make([]segment.Segment, len(parsed.Segments))
	for i, e := range parsed.Segments {
		def := segment.NewSubsetDefinition()
		for _, cp := range e.Codepoints {
			def.AddCodepoint(rune(cp))
		}
		segments[i] = segment.NewSegment(def, e.Probability)
	}

	return initial, segments, nil
}
