package partition

import (
	"testing"

	"github.com/go-ift/segmenter/intset"
)

func TestFindIdempotent(t *testing.T) {
	p := New(10)
	if err := p.Union(1, 2); err != nil {
		t.Fatalf("Union: %v", err)
	}
	if err := p.Union(2, 3); err != nil {
		t.Fatalf("Union: %v", err)
	}

	r1, _ := p.Find(1)
	r2, _ := p.Find(r1)
	if r1 != r2 {
		t.Errorf("Find(Find(x)) = %d, want %d (idempotent)", r2, r1)
	}

	f1, _ := p.Find(1)
	f3, _ := p.Find(3)
	if f1 != f3 {
		t.Errorf("expected 1 and 3 to be in the same class after transitive union, got %d and %d", f1, f3)
	}
}

func TestNonIdentityGroupsCoverage(t *testing.T) {
	p := New(6)
	if err := p.Union(0, 1); err != nil {
		t.Fatalf("Union: %v", err)
	}
	if err := p.Union(2, 3); err != nil {
		t.Fatalf("Union: %v", err)
	}
	// 4 and 5 remain singletons.

	groups := p.NonIdentityGroups()
	total := 0
	for _, g := range groups {
		total += g.Len()
	}
	singletons := 2
	if total != p.Capacity()-singletons {
		t.Errorf("non-identity group membership = %d, want %d", total, p.Capacity()-singletons)
	}
}

func TestUnionSet(t *testing.T) {
	p := New(5)
	if err := p.UnionSet(intset.New(0, 2, 4)); err != nil {
		t.Fatalf("UnionSet: %v", err)
	}
	a, _ := p.Find(0)
	b, _ := p.Find(2)
	c, _ := p.Find(4)
	if a != b || b != c {
		t.Errorf("expected 0, 2, 4 in same class, got %d %d %d", a, b, c)
	}
}

func TestOutOfRangeIsInvalidArgument(t *testing.T) {
	p := New(3)
	if _, err := p.Find(5); err == nil {
		t.Error("expected an error for an out-of-range glyph id")
	}
}
