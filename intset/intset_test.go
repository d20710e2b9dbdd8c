package intset

import "testing"

func TestAddContains(t *testing.T) {
	var s IntSet
	s.Add(5)
	s.Add(1)
	s.Add(3)
	s.Add(1) // duplicate

	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
	if got := s.Values(); got[0] != 1 || got[1] != 3 || got[2] != 5 {
		t.Errorf("Values() = %v, want [1 3 5]", got)
	}
	if !s.Contains(3) {
		t.Error("expected set to contain 3")
	}
	if s.Contains(4) {
		t.Error("expected set not to contain 4")
	}
}

func TestAddRange(t *testing.T) {
	var s IntSet
	s.AddRange(10, 13)
	want := []uint32{10, 11, 12, 13}
	got := s.Values()
	if len(got) != len(want) {
		t.Fatalf("Values() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Values()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestErase(t *testing.T) {
	s := New(1, 2, 3)
	s.Erase(2)
	if s.Contains(2) {
		t.Error("expected 2 to be erased")
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	s.Erase(99) // no-op
	if s.Len() != 2 {
		t.Errorf("Len() = %d after erasing absent value, want 2", s.Len())
	}
}

func TestSetAlgebra(t *testing.T) {
	a := New(1, 2, 3, 4)
	b := New(3, 4, 5, 6)

	union := a.Union(b)
	if !union.Equal(New(1, 2, 3, 4, 5, 6)) {
		t.Errorf("Union() = %v, want [1 2 3 4 5 6]", union.Values())
	}

	inter := a.Intersect(b)
	if !inter.Equal(New(3, 4)) {
		t.Errorf("Intersect() = %v, want [3 4]", inter.Values())
	}

	diff := a.Subtract(b)
	if !diff.Equal(New(1, 2)) {
		t.Errorf("Subtract() = %v, want [1 2]", diff.Values())
	}

	sym := a.SymmetricDifference(b)
	if !sym.Equal(New(1, 2, 5, 6)) {
		t.Errorf("SymmetricDifference() = %v, want [1 2 5 6]", sym.Values())
	}
}

// TestSetAlgebraLaws checks property P5: commutativity of union,
// distributivity of intersect over union, and the inclusion-exclusion
// cardinality identity.
func TestSetAlgebraLaws(t *testing.T) {
	a := New(1, 2, 3)
	b := New(2, 3, 4)
	c := New(4, 5, 6)

	if !a.Union(b).Equal(b.Union(a)) {
		t.Error("union is not commutative")
	}

	lhs := a.Intersect(b.Union(c))
	rhs := a.Intersect(b).Union(a.Intersect(c))
	if !lhs.Equal(rhs) {
		t.Errorf("distributivity failed: %v != %v", lhs.Values(), rhs.Values())
	}

	union := a.Union(b)
	if union.Len() != a.Len()+b.Len()-a.Intersect(b).Len() {
		t.Error("inclusion-exclusion cardinality identity failed")
	}
}

func TestIsSubsetOf(t *testing.T) {
	a := New(1, 2)
	b := New(1, 2, 3)
	if !a.IsSubsetOf(b) {
		t.Error("expected a to be a subset of b")
	}
	if b.IsSubsetOf(a) {
		t.Error("expected b not to be a subset of a")
	}
}

func TestLessTotalOrder(t *testing.T) {
	cases := []struct {
		a, b IntSet
		want bool
	}{
		{New(1, 2), New(1, 3), true},
		{New(1, 3), New(1, 2), false},
		{New(1), New(1, 2), true}, // shorter prefix sorts first
		{New(1, 2), New(1), false},
		{New(), New(1), true},
	}
	for _, c := range cases {
		if got := c.a.Less(c.b); got != c.want {
			t.Errorf("%v.Less(%v) = %v, want %v", c.a.Values(), c.b.Values(), got, c.want)
		}
	}
}

func TestMinMaxEmpty(t *testing.T) {
	var s IntSet
	if _, ok := s.Min(); ok {
		t.Error("Min() on empty set should report ok=false")
	}
	if _, ok := s.Max(); ok {
		t.Error("Max() on empty set should report ok=false")
	}

	s.Add(7)
	s.Add(3)
	if min, _ := s.Min(); min != 3 {
		t.Errorf("Min() = %d, want 3", min)
	}
	if max, _ := s.Max(); max != 7 {
		t.Errorf("Max() = %d, want 7", max)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	a := New(1, 2, 3)
	b := a.Clone()
	b.Add(4)
	if a.Contains(4) {
		t.Error("mutating the clone should not affect the original")
	}
}

func TestKeyDeterministic(t *testing.T) {
	a := New(1, 2, 3)
	b := New(3, 2, 1)
	if a.Key() != b.Key() {
		t.Errorf("Key() not order-independent: %q != %q", a.Key(), b.Key())
	}
}
