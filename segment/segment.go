package segment

// Index identifies a segment's position in an ordered segment list. A
// cleared (merged-away) segment keeps its index; only its definition and
// probability change.
type Index = uint32

// Segment is a SubsetDefinition paired with the probability that a
// client actually requests it.
type Segment struct {
	Definition  SubsetDefinition
	Probability float64
}

// NewSegment returns a Segment with the given definition and probability.
func NewSegment(def SubsetDefinition, probability float64) Segment {
	return Segment{Definition: def, Probability: probability}
}

// Empty reports whether this segment has been cleared by a merge.
func (s Segment) Empty() bool { return s.Definition.Empty() }

// Clear empties the segment's definition in place, keeping its slot (and
// therefore every other index-valued structure) valid.
func (s *Segment) Clear() {
	s.Definition = SubsetDefinition{}
	s.Probability = 0
}

// MergedProbability computes P(merged) = 1 - Π(1 - p_i) over the given
// probabilities, assuming independence.
func MergedProbability(probabilities ...float64) float64 {
	product := 1.0
	for _, p := range probabilities {
		product *= 1 - p
	}
	return 1 - product
}
