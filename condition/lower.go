package condition

import (
	"sort"

	"github.com/go-ift/segmenter/intset"
)

// PatchMapEntry is one row of the flattened activation table that the
// finalized plan ships to clients: either a terminal entry that names
// the patch to load once its clause is satisfied, or a composite entry
// that is itself satisfied once any one of the referenced entries has
// already activated (used to share a clause across multiple patches
// without re-emitting it).
type PatchMapEntry struct {
	// Segments is the clause's conjunctive segment set. Empty for a
	// pure composite (OR-of-entries) row.
	Segments intset.SegmentSet
	// ComposedOf lists prior entry indices this row also activates on,
	// in addition to Segments. Empty for an ordinary AND/OR clause row.
	ComposedOf []int
	// PatchID is the patch this entry loads, or -1 for an
	// intermediate row kept only so later entries can reference it.
	PatchID int
}

// ConditionForPatch pairs a condition with the patch id it guards, the
// unit of input the lowering consumes.
type ConditionForPatch struct {
	Condition ActivationCondition
	PatchID   int
}

// NewConditionForPatch builds a (condition, patch) pair for Lower.
func NewConditionForPatch(cond ActivationCondition, patchID int) ConditionForPatch {
	return ConditionForPatch{Condition: cond, PatchID: patchID}
}

// Lower runs the three-phase lowering of a set of per-patch activation
// conditions into a flat PatchMapEntry table:
//
//  1. Split each condition into its conjunctive clauses and intern each
//     distinct clause as a shared row, so identical clauses used by
//     multiple patches are not duplicated.
//  2. For every condition with more than one clause, emit a composite
//     row that references the interned clause rows by index.
//  3. Attach each patch's id to the row that terminates its condition:
//     the interned clause row for single-clause conditions, or the
//     composite row for multi-clause ones.
//
// Row order is deterministic: conditions are visited in ascending
// ActivationCondition.Less order (ties broken by patch id), and each
// condition appends its not-yet-interned clause rows followed by its
// composite row, so clause rows and composite rows interleave. A
// single-clause condition whose clause row already carries a patch gets
// a second row for the same clause.
func Lower(entries []ConditionForPatch) []PatchMapEntry {
	clauseIndex := make(map[string]int)
	var rows []PatchMapEntry

	internClause := func(clause intset.SegmentSet) int {
		key := clause.Key()
		if idx, ok := clauseIndex[key]; ok {
			return idx
		}
		idx := len(rows)
		rows = append(rows, PatchMapEntry{Segments: clause, PatchID: -1})
		clauseIndex[key] = idx
		return idx
	}

	sorted := make([]ConditionForPatch, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Condition.Less(sorted[j].Condition) && !sorted[j].Condition.Less(sorted[i].Condition) {
			return sorted[i].PatchID < sorted[j].PatchID
		}
		return sorted[i].Condition.Less(sorted[j].Condition)
	})

	for _, e := range sorted {
		clauses := e.Condition.Clauses()
		if len(clauses) == 0 {
			continue
		}
		if len(clauses) == 1 {
			idx := internClause(clauses[0])
			if rows[idx].PatchID == -1 {
				rows[idx].PatchID = e.PatchID
			} else {
				rows = append(rows, PatchMapEntry{Segments: clauses[0], PatchID: e.PatchID})
			}
			continue
		}

		composedOf := make([]int, 0, len(clauses))
		for _, clause := range clauses {
			composedOf = append(composedOf, internClause(clause))
		}
		rows = append(rows, PatchMapEntry{ComposedOf: composedOf, PatchID: e.PatchID})
	}

	return rows
}
