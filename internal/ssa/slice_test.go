package ssa

import (
	"testing"

	"github.com/fbrausse/esbmc/internal/irep"
)

func TestSliceRemovesDeadAssignments(t *testing.T) {
	pool := irep.NewPool()
	u8 := pool.UnsignedBV(8)
	a := pool.SymbolLevel2("a", 0, 1, 1, 0, false, u8)
	dead := pool.SymbolLevel2("dead", 0, 1, 1, 1, false, u8)

	eq := New()
	eq.Append(Step{Kind: KindAssignment, LHS: dead})
	eq.Append(Step{Kind: KindAssignment, LHS: a})
	eq.Append(Step{Kind: KindAssert, Cond: a})

	sliced := eq.Slice(SliceOptions{})
	if sliced.Len() != 2 {
		t.Fatalf("expected the dead assignment to be dropped, got %d steps", sliced.Len())
	}
	for _, s := range sliced.Steps() {
		if s.LHS != nil && s.LHS.String() == dead.String() {
			t.Fatalf("dead assignment survived slicing")
		}
	}
}

func TestSimpleSliceKeepsAssumesAndAsserts(t *testing.T) {
	pool := irep.NewPool()
	u8 := pool.UnsignedBV(8)
	a := pool.SymbolLevel2("a", 0, 1, 1, 0, false, u8)
	unread := pool.SymbolLevel2("unread", 0, 1, 1, 1, false, u8)

	eq := New()
	eq.Append(Step{Kind: KindAssignment, LHS: unread})
	eq.Append(Step{Kind: KindAssume, Cond: a})

	sliced := eq.SimpleSlice()
	if sliced.Len() != 1 {
		t.Fatalf("expected the unread assignment dropped and the assume kept, got %d steps", sliced.Len())
	}
	if sliced.Steps()[0].Kind != KindAssume {
		t.Fatalf("expected the surviving step to be the assume")
	}
}

func TestSliceDropDeadAssumesOption(t *testing.T) {
	pool := irep.NewPool()
	u8 := pool.UnsignedBV(8)
	a := pool.SymbolLevel2("a", 0, 1, 1, 0, false, u8)
	unrelated := pool.SymbolLevel2("unrelated", 0, 1, 1, 1, false, u8)

	eq := New()
	eq.Append(Step{Kind: KindAssume, Cond: unrelated})
	eq.Append(Step{Kind: KindAssert, Cond: a})

	sliced := eq.Slice(SliceOptions{DropDeadAssumes: true})
	for _, s := range sliced.Steps() {
		if s.Kind == KindAssume {
			t.Fatalf("expected the unrelated assume to be dropped when DropDeadAssumes is set")
		}
	}
}
