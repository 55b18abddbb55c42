package ssa

import (
	"testing"

	"github.com/fbrausse/esbmc/internal/irep"
)

func TestEquationAppendPreservesOrder(t *testing.T) {
	eq := New()
	eq.Append(Step{Kind: KindAssume})
	eq.Append(Step{Kind: KindAssert})
	if eq.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", eq.Len())
	}
	steps := eq.Steps()
	if steps[0].Kind != KindAssume || steps[1].Kind != KindAssert {
		t.Fatalf("Append did not preserve program order: %+v", steps)
	}
}

func TestEquationCheckDuplicateAssignment(t *testing.T) {
	pool := irep.NewPool()
	u8 := pool.UnsignedBV(8)
	x := pool.SymbolLevel2("x", 0, 1, 1, 0, false, u8)

	eq := New()
	eq.Append(Step{Kind: KindAssignment, LHS: x})
	eq.Append(Step{Kind: KindAssignment, LHS: x})

	if err := eq.CheckDuplicateAssignments(); err == nil {
		t.Fatalf("expected a duplicate-assignment error for two writes to the same L2 name")
	}
}

func TestEquationCheckDuplicateAssignmentAllowsDistinctIncarnations(t *testing.T) {
	pool := irep.NewPool()
	u8 := pool.UnsignedBV(8)
	x1 := pool.SymbolLevel2("x", 0, 1, 1, 0, false, u8)
	x2 := pool.SymbolLevel2("x", 0, 1, 2, 0, false, u8)

	eq := New()
	eq.Append(Step{Kind: KindAssignment, LHS: x1})
	eq.Append(Step{Kind: KindAssignment, LHS: x2})

	if err := eq.CheckDuplicateAssignments(); err != nil {
		t.Fatalf("distinct L2 incarnations should not be flagged as duplicates: %v", err)
	}
}
