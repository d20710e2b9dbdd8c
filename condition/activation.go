package condition

import (
	"sort"

	"github.com/go-ift/segmenter/intset"
)

// ActivationCondition is a condition under which a patch should be
// loaded, expressed in disjunctive normal form: the condition is
// satisfied when any one of its conjunctive clauses is fully satisfied
// (every segment in that clause has been applied). A single-clause,
// single-segment condition is the common case of "this patch is needed
// once this one segment is applied."
type ActivationCondition struct {
	clauses []intset.SegmentSet
}

// ExclusiveSegment returns the condition "seg alone triggers this".
func ExclusiveSegment(seg uint32) ActivationCondition {
	var clause intset.SegmentSet
	clause.Add(seg)
	return ActivationCondition{clauses: []intset.SegmentSet{clause}}
}

// AndSegments returns the condition "every segment in segs must be
// applied together".
func AndSegments(segs intset.SegmentSet) ActivationCondition {
	return ActivationCondition{clauses: []intset.SegmentSet{segs.Clone()}}
}

// OrSegments returns the condition "any single segment in segs
// triggers this", i.e. one singleton clause per segment.
func OrSegments(segs intset.SegmentSet) ActivationCondition {
	vals := segs.Values()
	clauses := make([]intset.SegmentSet, 0, len(vals))
	for _, seg := range vals {
		var clause intset.SegmentSet
		clause.Add(seg)
		clauses = append(clauses, clause)
	}
	return ActivationCondition{clauses: clauses}
}

// FromAndOr returns the condition "every segment in and must be
// applied, together with at least one segment from or" (or may be
// empty, in which case this is equivalent to AndSegments(and)).
// Expressed in DNF this is one clause per member of or, each clause
// being and plus that single segment.
func FromAndOr(and, or intset.SegmentSet) ActivationCondition {
	if or.Empty() {
		return AndSegments(and)
	}
	if and.Empty() {
		return OrSegments(or)
	}
	vals := or.Values()
	clauses := make([]intset.SegmentSet, 0, len(vals))
	for _, seg := range vals {
		clause := and.Clone()
		clause.Add(seg)
		clauses = append(clauses, clause)
	}
	return ActivationCondition{clauses: dedupClauses(clauses)}
}

// Composite returns the condition formed by OR-ing together a set of
// already-built conditions' clauses.
func Composite(conditions ...ActivationCondition) ActivationCondition {
	var clauses []intset.SegmentSet
	for _, c := range conditions {
		clauses = append(clauses, c.clauses...)
	}
	return ActivationCondition{clauses: dedupClauses(clauses)}
}

func dedupClauses(clauses []intset.SegmentSet) []intset.SegmentSet {
	seen := make(map[string]bool, len(clauses))
	out := make([]intset.SegmentSet, 0, len(clauses))
	for _, c := range clauses {
		k := c.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Clauses returns the condition's conjunctive clauses, OR-ed together.
func (c ActivationCondition) Clauses() []intset.SegmentSet { return c.clauses }

// TriggeringSegments returns the union of every segment mentioned by
// any clause.
func (c ActivationCondition) TriggeringSegments() intset.SegmentSet {
	var out intset.SegmentSet
	for _, clause := range c.clauses {
		out = out.Union(clause)
	}
	return out
}

// IsUnitary reports whether the condition is satisfied by a single
// segment on its own (one clause of size one).
func (c ActivationCondition) IsUnitary() bool {
	return len(c.clauses) == 1 && c.clauses[0].Len() == 1
}

// SatisfiedBy reports whether applied satisfies the condition: at least
// one clause is fully contained in applied.
func (c ActivationCondition) SatisfiedBy(applied intset.SegmentSet) bool {
	for _, clause := range c.clauses {
		if clause.IsSubsetOf(applied) {
			return true
		}
	}
	return false
}

// Empty reports whether the condition has no clauses at all, i.e. can
// never be satisfied.
func (c ActivationCondition) Empty() bool { return len(c.clauses) == 0 }

// Less defines a deterministic total order over conditions: fewer
// clauses sorts first, then clause by clause in IntSet.Less order.
func (c ActivationCondition) Less(other ActivationCondition) bool {
	if len(c.clauses) != len(other.clauses) {
		return len(c.clauses) < len(other.clauses)
	}
	for i := range c.clauses {
		if c.clauses[i].Equal(other.clauses[i]) {
			continue
		}
		return c.clauses[i].Less(other.clauses[i])
	}
	return false
}

// Key returns a canonical string uniquely identifying this condition's
// clause set, suitable for map de-duplication.
func (c ActivationCondition) Key() string {
	var b []byte
	for i, clause := range c.clauses {
		if i > 0 {
			b = append(b, '|')
		}
		b = append(b, clause.Key()...)
	}
	return string(b)
}
