package irep

import (
	"testing"

	"github.com/fbrausse/esbmc/internal/bigbv"
)

func TestExprInterning(t *testing.T) {
	p := NewPool()
	u8 := p.UnsignedBV(8)
	a := p.ConstantInt(bigbv.FromInt64(42, 8), u8)
	b := p.ConstantInt(bigbv.FromInt64(42, 8), u8)
	if a != b {
		t.Fatalf("two constants of the same value/width were not hash-consed together")
	}
	c := p.ConstantInt(bigbv.FromInt64(43, 8), u8)
	if a == c {
		t.Fatalf("distinct constant values interned to the same handle")
	}
}

func TestExprAddFoldsConstants(t *testing.T) {
	p := NewPool()
	u8 := p.UnsignedBV(8)
	a := p.ConstantInt(bigbv.FromInt64(100, 8), u8)
	b := p.ConstantInt(bigbv.FromInt64(28, 8), u8)
	sum, err := p.Add(a, b)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	v, ok := sum.ConstantUint()
	if !ok {
		t.Fatalf("Add of two constants did not fold to a constant")
	}
	if v != 128 {
		t.Fatalf("100+28 = %d, want 128", v)
	}
}

func TestExprMemberRejectsNonAggregate(t *testing.T) {
	p := NewPool()
	u8 := p.UnsignedBV(8)
	sym := p.Symbol("x", u8)
	if _, err := p.Member(sym, "a"); err == nil {
		t.Fatalf("Member on a non-struct/union operand should fail")
	}
}

func TestExprMemberLooksUpByName(t *testing.T) {
	p := NewPool()
	st := p.Struct("pair", []*Type{p.UnsignedBV(8), p.UnsignedBV(16)}, []string{"a", "b"})
	sym := p.Symbol("v", st)
	m, err := p.Member(sym, "b")
	if err != nil {
		t.Fatalf("Member: %v", err)
	}
	if m.Type() != p.UnsignedBV(16) {
		t.Fatalf("Member(v, b) has type %s, want unsignedbv[16]", m.Type())
	}
}

func TestExprCompareOrdersByKindThenOperands(t *testing.T) {
	p := NewPool()
	u8 := p.UnsignedBV(8)
	a := p.ConstantInt(bigbv.FromInt64(1, 8), u8)
	b := p.ConstantInt(bigbv.FromInt64(2, 8), u8)
	if CompareExpr(a, b) >= 0 {
		t.Fatalf("constant 1 should order before constant 2")
	}
	if CompareExpr(a, a) != 0 {
		t.Fatalf("CompareExpr(a, a) should be 0")
	}
}
