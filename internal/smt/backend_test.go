package smt

import (
	"strings"
	"testing"

	"github.com/fbrausse/esbmc/internal/bigbv"
)

func TestSmtlibBackendDeclaresSymbolOnce(t *testing.T) {
	b := NewSmtlibBackend(Config{MachineWordWidth: 64})
	sort := BVSort(32)
	b.MkSmtSymbol("x", sort)
	b.MkSmtSymbol("x", sort)
	text := b.SolverText()
	if strings.Count(text, "declare-fun x") != 1 {
		t.Fatalf("expected exactly one declaration for x, got script:\n%s", text)
	}
}

func TestSmtlibBackendAssertOrder(t *testing.T) {
	b := NewSmtlibBackend(Config{})
	x := b.MkSmtSymbol("x", BVSort(8))
	y := b.MkSmtSymbol("y", BVSort(8))
	eq, err := b.MkFuncApp(BoolSort(), EQ, x, y)
	if err != nil {
		t.Fatalf("MkFuncApp: %v", err)
	}
	if err := b.AssertAst(eq); err != nil {
		t.Fatalf("AssertAst: %v", err)
	}
	text := b.SolverText()
	if !strings.Contains(text, "(assert (= x y))") {
		t.Fatalf("missing expected assertion in script:\n%s", text)
	}
}

func TestSmtlibBackendPushPop(t *testing.T) {
	b := NewSmtlibBackend(Config{})
	b.PushCtx()
	b.PopCtx()
	text := b.SolverText()
	if !strings.Contains(text, "(push 1)") || !strings.Contains(text, "(pop 1)") {
		t.Fatalf("expected push/pop markers in script:\n%s", text)
	}
}

func TestSmtlibBackendPopWithoutPushPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on unbalanced pop_ctx")
		}
	}()
	b := NewSmtlibBackend(Config{})
	b.PopCtx()
}

func TestSmtlibBVIntLiteral(t *testing.T) {
	b := NewSmtlibBackend(Config{})
	v := bigbv.FromInt64(7, 8)
	ast := b.MkSmtBVInt(v, false)
	if ast.Sort().Width != 8 {
		t.Fatalf("Sort().Width = %d, want 8", ast.Sort().Width)
	}
}

func TestLeveledCacheEvictsAboveNewTop(t *testing.T) {
	c := NewLeveledCache()
	c.Put(1, &smtlibAst{text: "a"})
	c.Push()
	c.Put(2, &smtlibAst{text: "b"})
	if _, ok := c.Get(2); !ok {
		t.Fatalf("expected entry 2 to be present before pop")
	}
	c.Pop()
	if _, ok := c.Get(2); ok {
		t.Fatalf("expected entry 2 to be evicted after pop")
	}
	if _, ok := c.Get(1); !ok {
		t.Fatalf("expected entry 1 (registered below the popped level) to survive")
	}
}

func TestNewBackendUnavailable(t *testing.T) {
	_, err := NewBackend("boolector", Config{})
	if _, ok := err.(*ErrBackendUnavailable); !ok {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestNewBackendSmtlib(t *testing.T) {
	b, err := NewBackend("smtlib", Config{})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	if b.Name() != "smtlib" {
		t.Fatalf("Name() = %s, want smtlib", b.Name())
	}
}
