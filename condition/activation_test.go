package condition

import (
	"testing"

	"github.com/go-ift/segmenter/intset"
)

func TestExclusiveSegmentIsUnitary(t *testing.T) {
	c := ExclusiveSegment(5)
	if !c.IsUnitary() {
		t.Error("a single exclusive segment should be unitary")
	}
	if !c.TriggeringSegments().Equal(intset.New(5)) {
		t.Errorf("triggering segments = %v, want {5}", c.TriggeringSegments().Values())
	}
}

func TestAndSegmentsIsSingleClause(t *testing.T) {
	c := AndSegments(intset.New(1, 2, 3))
	if len(c.Clauses()) != 1 {
		t.Fatalf("AndSegments should produce one clause, got %d", len(c.Clauses()))
	}
	if c.IsUnitary() {
		t.Error("a three-segment AND clause should not be unitary")
	}
}

func TestOrSegmentsIsOneClausePerSegment(t *testing.T) {
	c := OrSegments(intset.New(1, 2, 3))
	if len(c.Clauses()) != 3 {
		t.Fatalf("OrSegments should produce 3 clauses, got %d", len(c.Clauses()))
	}
	for _, clause := range c.Clauses() {
		if clause.Len() != 1 {
			t.Errorf("each OR clause should be a singleton, got %v", clause.Values())
		}
	}
}

func TestCompositeDedupsClauses(t *testing.T) {
	a := ExclusiveSegment(1)
	b := ExclusiveSegment(1)
	c := ExclusiveSegment(2)

	composite := Composite(a, b, c)
	if len(composite.Clauses()) != 2 {
		t.Fatalf("Composite should dedup identical clauses, got %d clauses", len(composite.Clauses()))
	}
}

func TestLessTotalOrder(t *testing.T) {
	a := ExclusiveSegment(1)
	b := AndSegments(intset.New(1, 2))
	if !a.Less(b) {
		t.Error("with equal clause counts, a clause that is a prefix of the other should sort first")
	}
	if b.Less(a) {
		t.Error("ordering should not be symmetric")
	}
}

func TestLowerSharesClauseAcrossPatches(t *testing.T) {
	shared := ExclusiveSegment(7)
	entries := []ConditionForPatch{
		NewConditionForPatch(shared, 0),
		NewConditionForPatch(Composite(shared, ExclusiveSegment(8)), 1),
	}

	rows := Lower(entries)

	var terminalCount, composedCount int
	for _, r := range rows {
		if r.PatchID != -1 {
			terminalCount++
		}
		if len(r.ComposedOf) > 0 {
			composedCount++
		}
	}
	if terminalCount != 2 {
		t.Errorf("expected 2 terminal rows (one per patch), got %d", terminalCount)
	}
	if composedCount != 1 {
		t.Errorf("expected exactly 1 composite row, got %d", composedCount)
	}

	// The composite row's ComposedOf must reference valid row indices.
	for _, r := range rows {
		for _, idx := range r.ComposedOf {
			if idx < 0 || idx >= len(rows) {
				t.Errorf("composite row references out-of-range index %d (len=%d)", idx, len(rows))
			}
		}
	}
}

func TestLowerSingleClauseConditionsGetOwnRows(t *testing.T) {
	entries := []ConditionForPatch{
		NewConditionForPatch(ExclusiveSegment(1), 0),
		NewConditionForPatch(ExclusiveSegment(2), 1),
	}
	rows := Lower(entries)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows for 2 disjoint single-segment conditions, got %d", len(rows))
	}
	patchIDs := map[int]bool{}
	for _, r := range rows {
		patchIDs[r.PatchID] = true
	}
	if !patchIDs[0] || !patchIDs[1] {
		t.Errorf("expected both patch ids present, got rows %+v", rows)
	}
}
