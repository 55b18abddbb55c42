package irep

import "testing"

func TestPoolInternsIdenticalTypes(t *testing.T) {
	p := NewPool()
	a := p.UnsignedBV(32)
	b := p.UnsignedBV(32)
	if a != b {
		t.Fatalf("UnsignedBV(32) returned distinct handles for identical shapes")
	}
	c := p.UnsignedBV(64)
	if a == c {
		t.Fatalf("UnsignedBV(32) and UnsignedBV(64) interned to the same handle")
	}
}

func TestTypeEqualMatchesCompare(t *testing.T) {
	p := NewPool()
	s1 := p.Struct("point", []*Type{p.UnsignedBV(32), p.UnsignedBV(32)}, []string{"x", "y"})
	s2 := p.Struct("point", []*Type{p.UnsignedBV(32), p.UnsignedBV(32)}, []string{"x", "y"})
	if !s1.Equal(s2) {
		t.Fatalf("structurally identical structs compared unequal")
	}
	if s1 != s2 {
		t.Fatalf("structurally identical structs were not hash-consed to the same handle")
	}

	s3 := p.Struct("point", []*Type{p.UnsignedBV(32), p.SignedBV(32)}, []string{"x", "y"})
	if s1.Equal(s3) {
		t.Fatalf("structs differing in one member's signedness compared equal")
	}
}

func TestTypeWidthFailsOnSymbolicAndDynamicArray(t *testing.T) {
	p := NewPool()
	_, err := p.Empty().Width()
	if err == nil {
		t.Fatalf("expected Width() on an empty type to fail")
	}
	if _, ok := err.(*ErrSymbolicType); !ok {
		t.Fatalf("expected *ErrSymbolicType, got %T", err)
	}

	inf := p.InfiniteArray(p.UnsignedBV(8))
	if _, err := inf.Width(); err == nil {
		t.Fatalf("expected Width() on an infinite array to fail")
	}

	nonConstLen := p.Symbol("n", p.UnsignedBV(32))
	dynArr := p.Array(p.UnsignedBV(8), nonConstLen)
	if _, err := dynArr.Width(); err == nil {
		t.Fatalf("expected Width() on a non-constant-sized array to fail")
	}
}

func TestTypeWidthStructSumsMembers(t *testing.T) {
	p := NewPool()
	s := p.Struct("pair", []*Type{p.UnsignedBV(8), p.UnsignedBV(16)}, []string{"a", "b"})
	w, err := s.Width()
	if err != nil {
		t.Fatalf("Width: %v", err)
	}
	if w != 24 {
		t.Fatalf("struct width = %d, want 24", w)
	}
}

func TestTypeWidthUnionTakesMax(t *testing.T) {
	p := NewPool()
	u := p.Union("u", []*Type{p.UnsignedBV(8), p.UnsignedBV(32)}, []string{"a", "b"})
	w, err := u.Width()
	if err != nil {
		t.Fatalf("Width: %v", err)
	}
	if w != 32 {
		t.Fatalf("union width = %d, want 32", w)
	}
}

func TestTypeStringRendersShape(t *testing.T) {
	p := NewPool()
	got := p.UnsignedBV(8).String()
	if got != "unsignedbv[8]" {
		t.Fatalf("String() = %q, want unsignedbv[8]", got)
	}
}
