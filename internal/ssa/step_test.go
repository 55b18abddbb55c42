package ssa

import (
	"testing"

	"github.com/fbrausse/esbmc/internal/irep"
)

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindAssignment: "assignment",
		KindAssume:     "assume",
		KindAssert:     "assert",
		KindRenumber:   "renumber",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestInvolvedInputsCollectsSymbolsAcrossCondGuardRHS(t *testing.T) {
	pool := irep.NewPool()
	u8 := pool.UnsignedBV(8)
	a := pool.Symbol("a", u8)
	b := pool.Symbol("b", u8)
	g := pool.Symbol("g", pool.Bool())

	sum, err := pool.Add(a, b)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	s := Step{Cond: sum, Guard: g, RHS: nil}

	names := map[string]bool{}
	for _, e := range s.InvolvedInputs() {
		names[e.SymbolName()] = true
	}
	if !names["a"] || !names["b"] || !names["g"] {
		t.Fatalf("expected a, b, g all present, got %v", names)
	}
	if len(names) != 3 {
		t.Fatalf("expected exactly 3 distinct symbols, got %d", len(names))
	}
}

func TestInvolvedInputsDedupesRepeatedSymbol(t *testing.T) {
	pool := irep.NewPool()
	u8 := pool.UnsignedBV(8)
	a := pool.Symbol("a", u8)

	sum, err := pool.Add(a, a)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	s := Step{Cond: sum}
	inputs := s.InvolvedInputs()
	if len(inputs) != 1 {
		t.Fatalf("expected a single deduped symbol, got %d", len(inputs))
	}
}
