package renaming

import (
	"testing"

	"github.com/fbrausse/esbmc/internal/irep"
)

func TestLevel1DeclareAdvancesIncarnation(t *testing.T) {
	pool := irep.NewPool()
	l1 := NewLevel1(pool, 0)
	u8 := pool.UnsignedBV(8)
	x := pool.Symbol("x", u8)

	first := l1.Declare(x)
	if first.Level1Num() != 1 {
		t.Fatalf("first Declare should produce level1_num 1, got %d", first.Level1Num())
	}
	second := l1.Declare(x)
	if second.Level1Num() != 2 {
		t.Fatalf("second Declare should produce level1_num 2, got %d", second.Level1Num())
	}
}

func TestLevel1GetIdentNameUsesCurrentIncarnation(t *testing.T) {
	pool := irep.NewPool()
	l1 := NewLevel1(pool, 0)
	u8 := pool.UnsignedBV(8)
	x := pool.Symbol("x", u8)

	l1.Declare(x)
	renamed := l1.GetIdentName(x)
	if renamed.Level() != irep.Level1 {
		t.Fatalf("expected Level1 rename, got %s", renamed.Level())
	}
	if renamed.Level1Num() != 1 {
		t.Fatalf("expected the current incarnation (1), got %d", renamed.Level1Num())
	}
}

func TestLevel1GetIdentNameFallsBackToGlobalWhenUndeclared(t *testing.T) {
	pool := irep.NewPool()
	l1 := NewLevel1(pool, 0)
	u8 := pool.UnsignedBV(8)
	x := pool.Symbol("x", u8)

	renamed := l1.GetIdentName(x)
	if renamed.Level1Num() != 0 {
		t.Fatalf("expected level1_num 0 for an undeclared symbol, got %d", renamed.Level1Num())
	}
}

func TestLevel1RenameLeavesAlreadyRenamedSymbolsAlone(t *testing.T) {
	pool := irep.NewPool()
	l1 := NewLevel1(pool, 0)
	u8 := pool.UnsignedBV(8)
	x := pool.Symbol("x", u8)
	l1.Declare(x)

	already := pool.SymbolLevel1("y", 0, 1, false, u8)
	renamed := l1.Rename(already)
	if renamed != already {
		t.Fatalf("Rename should not touch a symbol that is already past level0")
	}
}

func TestLevel1RenameWalksExpressionTree(t *testing.T) {
	pool := irep.NewPool()
	l1 := NewLevel1(pool, 0)
	u8 := pool.UnsignedBV(8)
	x := pool.Symbol("x", u8)
	y := pool.Symbol("y", u8)
	l1.Declare(x)
	l1.Declare(y)

	sum, err := pool.Add(x, y)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	renamed := l1.Rename(sum)
	ops := renamed.Operands()
	if ops[0].Level() != irep.Level1 || ops[1].Level() != irep.Level1 {
		t.Fatalf("expected both operands renamed to Level1, got %s / %s", ops[0].Level(), ops[1].Level())
	}
}
