package irep

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"

	"github.com/fbrausse/esbmc/internal/bigbv"
)

// exprShape is a plain, cmp-friendly projection of an *Expr subtree:
// unexported hash-consed pointers cannot be compared structurally with
// go-cmp directly, so a rebuild/map test dumps each tree into this
// shape and diffs that instead.
type exprShape struct {
	Kind     string
	Type     string
	Constant string
	Children []exprShape
}

func dumpShape(e *Expr) exprShape {
	s := exprShape{Kind: e.Kind().String(), Type: e.Type().String()}
	if _, ok := e.ConstantUint(); ok {
		s.Constant = e.String()
	}
	for _, o := range e.Operands() {
		s.Children = append(s.Children, dumpShape(o))
	}
	return s
}

func TestRebuildPreservesShapeWhenOperandsUnchanged(t *testing.T) {
	p := NewPool()
	u8 := p.UnsignedBV(8)
	a := p.ConstantInt(bigbv.FromInt64(1, 8), u8)
	b := p.ConstantInt(bigbv.FromInt64(2, 8), u8)
	sum, err := p.Add(a, b)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	rebuilt := p.Rebuild(sum, sum.Operands())
	if rebuilt != sum {
		t.Fatalf("Rebuild with identical operands should intern back to the same handle")
	}

	if diff := cmp.Diff(dumpShape(sum), dumpShape(rebuilt)); diff != "" {
		t.Fatalf("rebuilt tree shape differs (-want +got):\n%s\ndump of original:\n%s",
			diff, spew.Sdump(dumpShape(sum)))
	}
}

func TestMapRewritesOnlyMatchingSymbols(t *testing.T) {
	p := NewPool()
	u8 := p.UnsignedBV(8)
	x := p.Symbol("x", u8)
	y := p.Symbol("y", u8)
	sum, err := p.Add(x, y)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	renamed := p.Map(sum, func(sym *Expr) *Expr {
		if sym.SymbolName() == "x" {
			return p.Symbol("x$1", u8)
		}
		return sym
	})

	ops := renamed.Operands()
	if ops[0].SymbolName() != "x$1" {
		t.Fatalf("Map did not rewrite the matching symbol: got %+v", spew.Sdump(dumpShape(ops[0])))
	}
	if ops[1].SymbolName() != "y" {
		t.Fatalf("Map rewrote a symbol it should have left untouched")
	}

	// A Map with no matching symbols returns the original handle,
	// unchanged, rather than an equivalent but freshly rebuilt tree.
	untouched := p.Map(sum, func(sym *Expr) *Expr { return sym })
	if untouched != sum {
		t.Fatalf("Map with an identity function should return the original handle")
	}
	if diff := cmp.Diff(dumpShape(sum), dumpShape(untouched)); diff != "" {
		t.Fatalf("unchanged Map result has a different shape (-want +got):\n%s", diff)
	}
}

func TestExtractConstantFolds(t *testing.T) {
	p := NewPool()
	u32 := p.UnsignedBV(32)
	c := p.ConstantInt(bigbv.FromInt64(0x01020304, 32), u32)

	got, err := p.Extract(c, 15, 8)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	v, ok := got.ConstantUint()
	if !ok || v != 0x03 {
		t.Fatalf("Extract([15:8], 0x01020304) = %v, want 0x03", got)
	}
}

// Extract's non-constant path goes through byte_extract, whose offset
// operand is byte-granular; a bit range that isn't byte-aligned must be
// rejected rather than silently re-scaled.
func TestExtractNonConstantRequiresByteAlignment(t *testing.T) {
	p := NewPool()
	u32 := p.UnsignedBV(32)
	x := p.Symbol("x", u32)

	if _, err := p.Extract(x, 15, 8); err != nil {
		t.Fatalf("Extract with a byte-aligned range: %v", err)
	}
	_, err := p.Extract(x, 15, 4)
	if err == nil {
		t.Fatalf("expected Extract with a non-byte-aligned range to fail")
	}
	if _, ok := err.(*ErrStructuralMismatch); !ok {
		t.Fatalf("expected *ErrStructuralMismatch, got %T", err)
	}
}
