package trace

import (
	"testing"

	"github.com/fbrausse/esbmc/internal/bigbv"
	"github.com/fbrausse/esbmc/internal/irep"
	"github.com/fbrausse/esbmc/internal/ssa"
	"github.com/fbrausse/esbmc/internal/symtab"
)

func TestBuildCounterexampleRoundTrip(t *testing.T) {
	pool := irep.NewPool()
	u8 := pool.UnsignedBV(8)
	lhs := pool.SymbolLevel2("x", 0, 1, 0, 0, false, u8)
	rhs := pool.ConstantInt(bigbv.FromInt64(200, 8), u8)

	eq := ssa.New()
	eq.Append(ssa.Step{
		Kind:   ssa.KindAssignment,
		LHS:    lhs,
		RHS:    rhs,
		Source: ssa.Location{File: "main.c", Line: 12, Function: "main"},
	})

	ce := BuildCounterexample(eq)
	if len(ce.Steps) != 1 {
		t.Fatalf("len(Steps) = %d, want 1", len(ce.Steps))
	}
	if ce.Steps[0].Kind != "assignment" {
		t.Fatalf("Kind = %q, want assignment", ce.Steps[0].Kind)
	}
	if ce.Steps[0].Line != 12 {
		t.Fatalf("Line = %d, want 12", ce.Steps[0].Line)
	}

	data, err := Marshal(ce)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Steps[0].LHS != ce.Steps[0].LHS || got.Steps[0].Value != ce.Steps[0].Value {
		t.Fatalf("round-trip mismatch: got %+v, want %+v", got.Steps[0], ce.Steps[0])
	}
}

func TestSnapshotPoolRoundTrip(t *testing.T) {
	pool := irep.NewPool()
	u32 := pool.UnsignedBV(32)

	tab := symtab.New()
	if err := tab.Insert(&symtab.Entry{
		Name:     "c::main::1::x",
		BaseName: "x",
		Module:   "main",
		Type:     u32,
		Storage:  symtab.StorageAuto,
		IsLvalue: true,
	}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	data, err := SnapshotPool(tab)
	if err != nil {
		t.Fatalf("SnapshotPool: %v", err)
	}
	syms, err := RestoreSnapshot(data)
	if err != nil {
		t.Fatalf("RestoreSnapshot: %v", err)
	}
	if len(syms) != 1 {
		t.Fatalf("len(syms) = %d, want 1", len(syms))
	}
	if syms[0].Name != "c::main::1::x" || syms[0].BaseName != "x" {
		t.Fatalf("unexpected symbol record: %+v", syms[0])
	}
	if syms[0].Storage != uint8(symtab.StorageAuto) {
		t.Fatalf("Storage = %d, want %d", syms[0].Storage, symtab.StorageAuto)
	}
	if !syms[0].IsLvalue {
		t.Fatalf("IsLvalue should round-trip true")
	}
}
