package smtconv

import (
	"strings"
	"testing"

	"github.com/fbrausse/esbmc/internal/bigbv"
	"github.com/fbrausse/esbmc/internal/irep"
	"github.com/fbrausse/esbmc/internal/smt"
)

func newTestConverter(t *testing.T) (*irep.Pool, *Converter) {
	t.Helper()
	pool := irep.NewPool()
	backend, err := smt.NewBackend("smtlib", smt.Config{MachineWordWidth: 64})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	cfg := Config{
		EnableCache:                 true,
		CanInitializeInfiniteArrays: true,
		MachineWordWidth:            64,
	}
	return pool, New(pool, backend, cfg)
}

// Unsigned overflow on add(a,b):uint8 with a=200,b=100 must be detected.
func TestConvertOverflowAddUnsigned(t *testing.T) {
	pool, conv := newTestConverter(t)
	u8 := pool.UnsignedBV(8)
	a := pool.ConstantInt(bigbv.FromInt64(200, 8), u8)
	b := pool.ConstantInt(bigbv.FromInt64(100, 8), u8)
	sum, err := pool.Add(a, b)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	overflow := pool.Overflow(sum)
	ast, err := conv.ConvertAST(overflow)
	if err != nil {
		t.Fatalf("ConvertAST: %v", err)
	}
	if ast.Sort().Kind != smt.SortBool {
		t.Fatalf("expected a bool-sorted overflow predicate, got %v", ast.Sort().Kind)
	}
}

// newZ3TestConverter mirrors newTestConverter but backs the converter
// with the real z3 decision procedure instead of the smtlib text dump,
// skipping only when the z3 shared library genuinely cannot be loaded
// in this test environment.
func newZ3TestConverter(t *testing.T) (*irep.Pool, *Converter) {
	t.Helper()
	var pool *irep.Pool
	var conv *Converter
	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Skipf("z3 backend unavailable in this environment: %v", r)
			}
		}()
		pool = irep.NewPool()
		backend, err := smt.NewBackend("z3", smt.Config{MachineWordWidth: 64})
		if err != nil {
			t.Skipf("z3 backend unavailable in this environment: %v", err)
		}
		cfg := Config{
			EnableCache:                 true,
			CanInitializeInfiniteArrays: true,
			MachineWordWidth:            64,
		}
		conv = New(pool, backend, cfg)
	}()
	return pool, conv
}

// spec.md §8's S2 scenario: add(200, 100) on a uint8 must be flagged as
// an overflow, and the overflow predicate itself must be satisfiable
// under a real decision procedure — the teacher's solver_test.go style
// (TestSolverSat1) of trusting z3's own verdict, rather than only
// checking the predicate's sort against the smtlib text dump the way
// TestConvertOverflowAddUnsigned above does.
func TestConvertOverflowAddUnsignedIsSatUnderZ3(t *testing.T) {
	pool, conv := newZ3TestConverter(t)
	u8 := pool.UnsignedBV(8)
	a := pool.ConstantInt(bigbv.FromInt64(200, 8), u8)
	b := pool.ConstantInt(bigbv.FromInt64(100, 8), u8)
	sum, err := pool.Add(a, b)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	overflow := pool.Overflow(sum)
	ast, err := conv.ConvertAST(overflow)
	if err != nil {
		t.Fatalf("ConvertAST: %v", err)
	}
	if err := conv.Backend().AssertAst(ast); err != nil {
		t.Fatalf("AssertAst: %v", err)
	}
	result, err := conv.Backend().DecSolve()
	if err != nil {
		t.Fatalf("DecSolve: %v", err)
	}
	if result != smt.ResultSat {
		t.Fatalf("expected overflow(200+100:uint8) to be SAT under z3, got %v", result)
	}
}

// Struct equality must flatten to a per-field conjunction.
func TestConvertTupleEquality(t *testing.T) {
	pool, conv := newTestConverter(t)
	u8 := pool.UnsignedBV(8)
	u16 := pool.UnsignedBV(16)
	st := pool.Struct("s", []*irep.Type{u8, u16}, []string{"a", "b"})
	s1 := pool.Symbol("s1", st)
	s2 := pool.Symbol("s2", st)
	eq := pool.Equality(s1, s2)
	ast, err := conv.ConvertAST(eq)
	if err != nil {
		t.Fatalf("ConvertAST: %v", err)
	}
	if ast.Sort().Kind != smt.SortBool {
		t.Fatalf("expected bool sort for tuple equality, got %v", ast.Sort().Kind)
	}
	text := conv.backend.SolverText()
	if !containsAll(text, "declare-fun s1.a", "declare-fun s1.b", "declare-fun s2.a", "declare-fun s2.b") {
		t.Fatalf("expected per-field declarations in script:\n%s", text)
	}
}

// address_of of two distinct stack variables must yield distinct objects.
func TestAddressOfDistinctObjects(t *testing.T) {
	pool, conv := newTestConverter(t)
	i32 := pool.SignedBV(32)
	p := pool.Symbol("p", i32)
	q := pool.Symbol("q", i32)
	ptrType := pool.Pointer(i32)
	addrP := pool.AddressOf(p, ptrType)
	addrQ := pool.AddressOf(q, ptrType)

	sameObj := pool.SameObject(addrP, addrQ)
	ast, err := conv.ConvertAST(sameObj)
	if err != nil {
		t.Fatalf("ConvertAST: %v", err)
	}
	if ast.Sort().Kind != smt.SortBool {
		t.Fatalf("expected bool result")
	}
	// Two independent address_of conversions must allocate distinct object ids.
	before := conv.addrs.nextObject
	conv.addrs.convertAddressOf(addrP)
	mid := conv.addrs.nextObject
	conv.addrs.convertAddressOf(addrQ)
	after := conv.addrs.nextObject
	if mid == before || after == mid {
		t.Fatalf("expected each address_of conversion to allocate a fresh object id")
	}
}

// Pointer equality must flatten to object-id equality AND offset
// equality rather than falling through to the generic scalar path,
// which would hand the backend two tuple asts it cannot compare.
func TestConvertPointerEquality(t *testing.T) {
	pool, conv := newTestConverter(t)
	i32 := pool.SignedBV(32)
	p := pool.Symbol("p", i32)
	q := pool.Symbol("q", i32)
	ptrType := pool.Pointer(i32)
	addrP := pool.AddressOf(p, ptrType)
	addrQ := pool.AddressOf(q, ptrType)

	eq := pool.Equality(addrP, addrQ)
	eqAst, err := conv.ConvertAST(eq)
	if err != nil {
		t.Fatalf("ConvertAST(equality): %v", err)
	}
	if eqAst.Sort().Kind != smt.SortBool {
		t.Fatalf("expected bool sort for pointer equality, got %v", eqAst.Sort().Kind)
	}

	neq := pool.Notequal(addrP, addrQ)
	neqAst, err := conv.ConvertAST(neq)
	if err != nil {
		t.Fatalf("ConvertAST(notequal): %v", err)
	}
	if neqAst.Sort().Kind != smt.SortBool {
		t.Fatalf("expected bool sort for pointer inequality, got %v", neqAst.Sort().Kind)
	}
}

// Popping a context must evict cache entries registered above it.
func TestContextPopEvictsCache(t *testing.T) {
	pool, conv := newTestConverter(t)
	u8 := pool.UnsignedBV(8)
	x := pool.Symbol("x", u8)

	conv.PushCtx()
	ast1, err := conv.ConvertAST(x)
	if err != nil {
		t.Fatalf("ConvertAST: %v", err)
	}
	if err := conv.PopCtx(); err != nil {
		t.Fatalf("PopCtx: %v", err)
	}

	if _, ok := conv.cacheGet(x); ok {
		t.Fatalf("expected cache entry registered above the popped level to be evicted")
	}

	ast2, err := conv.ConvertAST(x)
	if err != nil {
		t.Fatalf("ConvertAST: %v", err)
	}
	if ast1 == ast2 {
		t.Fatalf("expected a fresh ast after the cache was invalidated by pop_ctx")
	}
}

// Byte-extract endianness: little-endian index 0 is the low byte.
func TestByteExtractLittleEndian(t *testing.T) {
	pool, conv := newTestConverter(t)
	u32 := pool.UnsignedBV(32)
	v := pool.ConstantInt(bigbv.FromInt64(0x01020304, 32), u32)
	u8 := pool.UnsignedBV(8)
	offset := pool.ConstantInt(bigbv.FromInt64(0, 32), u32)
	be := pool.ByteExtract(v, offset, false, u8)
	ast, err := conv.ConvertAST(be)
	if err != nil {
		t.Fatalf("ConvertAST: %v", err)
	}
	if ast.Sort().Width != 8 {
		t.Fatalf("Width = %d, want 8", ast.Sort().Width)
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
