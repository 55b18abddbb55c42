package renaming

import (
	"testing"

	"github.com/fbrausse/esbmc/internal/bigbv"
	"github.com/fbrausse/esbmc/internal/irep"
)

func TestLevel2MakeAssignmentAdvancesCount(t *testing.T) {
	pool := irep.NewPool()
	u8 := pool.UnsignedBV(8)
	lhs := pool.SymbolLevel1("x", 0, 1, false, u8)

	l2 := NewLevel2(pool)
	first := l2.MakeAssignment(lhs, 1, nil)
	if first.Level2Num() != 1 {
		t.Fatalf("first MakeAssignment should produce count 1, got %d", first.Level2Num())
	}
	second := l2.MakeAssignment(lhs, 2, nil)
	if second.Level2Num() != 2 {
		t.Fatalf("second MakeAssignment should produce count 2, got %d", second.Level2Num())
	}
}

func TestLevel2RenameSubstitutesConstant(t *testing.T) {
	pool := irep.NewPool()
	u8 := pool.UnsignedBV(8)
	lhs := pool.SymbolLevel1("x", 0, 1, false, u8)
	c := pool.ConstantInt(bigbv.FromInt64(7, 8), u8)

	l2 := NewLevel2(pool)
	l2.MakeAssignment(lhs, 1, c)

	renamed := l2.Rename(lhs)
	v, ok := renamed.ConstantUint()
	if !ok {
		t.Fatalf("expected Rename to substitute the folded constant, got %s", renamed)
	}
	if v != 7 {
		t.Fatalf("substituted constant = %d, want 7", v)
	}
}

func TestLevel2RenameLeavesSpecialNamesAlone(t *testing.T) {
	pool := irep.NewPool()
	u8 := pool.UnsignedBV(8)
	nondet := pool.SymbolLevel1("nondet$1", 0, 1, false, u8)

	l2 := NewLevel2(pool)
	renamed := l2.Rename(nondet)
	if renamed != nondet {
		t.Fatalf("Rename should not touch a nondet$ special symbol")
	}
}

func TestLevel2RenameStopsAtAddressOf(t *testing.T) {
	pool := irep.NewPool()
	i32 := pool.SignedBV(32)
	x := pool.SymbolLevel1("x", 0, 1, false, i32)
	ptrType := pool.Pointer(i32)
	addr := pool.AddressOf(x, ptrType)

	l2 := NewLevel2(pool)
	renamed := l2.Rename(addr)
	if renamed != addr {
		t.Fatalf("Rename should leave address_of's subtree untouched")
	}
}

func TestLevel2CoveredInBeesRejectsRegression(t *testing.T) {
	pool := irep.NewPool()
	u8 := pool.UnsignedBV(8)
	lhs := pool.SymbolLevel1("x", 0, 1, false, u8)

	l2 := NewLevel2(pool)
	l2.MakeAssignment(lhs, 1, nil)
	l2.MakeAssignment(lhs, 2, nil)

	if err := l2.CoveredInBees(lhs, 1, 99); err == nil {
		t.Fatalf("expected CoveredInBees to reject a regression from count 2 to count 1")
	}
	if err := l2.CoveredInBees(lhs, 5, 99); err != nil {
		t.Fatalf("CoveredInBees forward: %v", err)
	}
	if l2.CurrentNumber(lhs) != 5 {
		t.Fatalf("CurrentNumber = %d, want 5", l2.CurrentNumber(lhs))
	}
}

func TestGetOriginalNameStripsToRequestedLevel(t *testing.T) {
	pool := irep.NewPool()
	u8 := pool.UnsignedBV(8)
	l1 := pool.SymbolLevel1("x", 0, 1, false, u8)
	l2 := pool.SymbolLevel2("x", 0, 1, 3, 7, false, u8)

	orig := GetOriginalName(pool, l2, irep.Level1)
	if orig.Level() != irep.Level1 {
		t.Fatalf("expected Level1 result, got %s", orig.Level())
	}
	if orig.Level1Num() != l1.Level1Num() {
		t.Fatalf("expected level1_num %d, got %d", l1.Level1Num(), orig.Level1Num())
	}

	toL0 := GetOriginalName(pool, l2, irep.Level0)
	if toL0.Level() != irep.Level0 {
		t.Fatalf("expected Level0 result, got %s", toL0.Level())
	}
}
