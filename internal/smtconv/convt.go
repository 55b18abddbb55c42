// Package smtconv implements the smt_convt flattening layer: it turns
// internal/irep expressions into internal/smt.Ast values by pushing
// pointers, tuples, arrays-of-tuples, byte operations, and overflow
// checks down into the primitive theories a Backend actually supports
// (spec.md §4.5). It is grounded on original_source/solvers/smt/smt_conv.h's
// smt_convt class and on expr_builder.go's conversion style,
// generalized from a bare bitvector/bool expression language to the
// full C-level IR.
package smtconv

import (
	"fmt"

	"github.com/fbrausse/esbmc/internal/bigbv"
	"github.com/fbrausse/esbmc/internal/irep"
	"github.com/fbrausse/esbmc/internal/smt"
)

// Config mirrors the construction parameters of smt_convt's primary
// constructor (original_source/solvers/smt/smt_conv.h): which features
// the chosen Backend actually supports, so the converter knows what it
// must flatten itself rather than hand off natively.
type Config struct {
	EnableCache                 bool
	IntEncoding                 bool // QF_AUFLIRA vs QF_AUFBV
	TupleSupportNative          bool
	AllowBoolInArrayRange       bool
	CanInitializeInfiniteArrays bool
	MachineWordWidth            uint
	BigEndian                   bool
}

// Converter is the smt_convt-equivalent core: it owns the pool handed
// to it (never the global singleton directly, so independent converter
// instances can run against independent pool snapshots per spec.md §9
// "cooperative single-thread assumption"), the chosen Backend, and all
// per-context-level flattening state (AST cache, address space).
type Converter struct {
	pool    *irep.Pool
	backend smt.Backend
	cfg     Config

	cache *smt.LeveledCache
	addrs *addressSpace

	ctxLevel int
}

func New(pool *irep.Pool, backend smt.Backend, cfg Config) *Converter {
	c := &Converter{
		pool:    pool,
		backend: backend,
		cfg:     cfg,
		cache:   smt.NewLeveledCache(),
	}
	c.addrs = newAddressSpace(c)
	return c
}

func (c *Converter) Backend() smt.Backend { return c.backend }
func (c *Converter) Pool() *irep.Pool     { return c.pool }

// PushCtx enters one SMT assertion context, per spec.md §3.6 and §4.5.9:
// the backend's own stack, the AST cache's level, and the address
// space's per-level bookkeeping all move in lockstep.
func (c *Converter) PushCtx() {
	c.backend.PushCtx()
	if c.cfg.EnableCache {
		c.cache.Push()
	}
	c.addrs.push()
	c.ctxLevel++
}

// PopCtx leaves the current context, reclaiming everything registered
// strictly above the new top — cache entries and address-space object
// allocations alike. Unlike LeveledCache.Pop/Backend.PopCtx, which
// treat popping past the root as an unrecoverable misuse of the stack
// discipline, a converter-level pop with no matching push is a caller
// protocol error that should be reported, not a crash.
func (c *Converter) PopCtx() error {
	if c.ctxLevel == 0 {
		return &ErrCacheLevelExceeded{Level: c.ctxLevel}
	}
	c.backend.PopCtx()
	if c.cfg.EnableCache {
		c.cache.Pop()
	}
	c.addrs.pop()
	c.ctxLevel--
	return nil
}

func (c *Converter) cacheGet(e *irep.Expr) (smt.Ast, bool) {
	if !c.cfg.EnableCache {
		return nil, false
	}
	return c.cache.Get(e.Id())
}

func (c *Converter) cachePut(e *irep.Expr, a smt.Ast) {
	if !c.cfg.EnableCache {
		return
	}
	c.cache.Put(e.Id(), a)
}

// ConvertAST is the main conversion entrypoint (spec.md §4.5.1): one
// irep.Expr in, one smt.Ast out, consulting and populating the leveled
// cache around the actual per-kind dispatch.
func (c *Converter) ConvertAST(e *irep.Expr) (smt.Ast, error) {
	if a, ok := c.cacheGet(e); ok {
		return a, nil
	}
	a, err := c.convert(e)
	if err != nil {
		return nil, err
	}
	c.cachePut(e, a)
	return a, nil
}

func (c *Converter) sortOf(t *irep.Type) (*smt.Sort, error) {
	switch t.Kind() {
	case irep.KindBool:
		return smt.BoolSort(), nil
	case irep.KindUnsignedBV, irep.KindSignedBV:
		return smt.BVSort(t.BVWidth()), nil
	case irep.KindFixedBV:
		return smt.BVSort(t.BVWidth()), nil
	case irep.KindPointer:
		return c.addrs.pointerSort(), nil
	case irep.KindArray:
		return c.arraySort(t)
	case irep.KindStruct, irep.KindUnion:
		return c.tupleSort(t)
	case irep.KindString:
		return smt.ArraySort(smt.BVSort(bitsFor(uint64(t.StringElems()))), smt.BVSort(8)), nil
	default:
		return nil, fmt.Errorf("smtconv: no sort for type kind %v", t.Kind())
	}
}

func bitsFor(n uint64) uint {
	w := uint(1)
	for (uint64(1) << w) < n+1 {
		w++
	}
	return w
}

func (c *Converter) convert(e *irep.Expr) (smt.Ast, error) {
	switch e.Kind() {
	case irep.KindConstantInt:
		v, _ := e.ConstantBV()
		signed := e.Type().Kind() == irep.KindSignedBV
		return c.backend.MkSmtBVInt(v, signed), nil
	case irep.KindConstantFixedbv:
		v, _ := e.ConstantBV()
		return c.backend.MkSmtBVInt(v, false), nil
	case irep.KindConstantBool:
		v, _ := e.ConstantBool()
		return c.backend.MkSmtBool(v), nil
	case irep.KindConstantString:
		return c.convertConstantString(e)
	case irep.KindConstantStruct, irep.KindConstantUnion:
		return c.convertTupleConstant(e)
	case irep.KindConstantArray, irep.KindConstantArrayOf:
		return c.convertArrayConstant(e)
	case irep.KindSymbol:
		return c.convertSymbol(e)
	case irep.KindTypecast:
		return c.convertTypecast(e)
	case irep.KindIf:
		return c.convertIf(e)
	case irep.KindEquality, irep.KindNotequal:
		return c.convertEquality(e)
	case irep.KindLessthan, irep.KindGreaterthan, irep.KindLessthanequal, irep.KindGreaterthanequal:
		return c.convertCompare(e)
	case irep.KindNot, irep.KindAnd, irep.KindOr, irep.KindXor, irep.KindImplies:
		return c.convertBoolOp(e)
	case irep.KindBitand, irep.KindBitor, irep.KindBitxor, irep.KindBitnand, irep.KindBitnor, irep.KindBitnxor:
		return c.convertBitOp(e)
	case irep.KindLshr, irep.KindShl, irep.KindAshr:
		return c.convertShift(e)
	case irep.KindNeg, irep.KindAbs:
		return c.convertUnaryArith(e)
	case irep.KindAdd, irep.KindSub, irep.KindMul, irep.KindDiv, irep.KindModulus:
		return c.convertArith(e)
	case irep.KindDynamicObject:
		return c.addrs.convertDynamicObject(e)
	case irep.KindSameObject:
		return c.addrs.convertSameObject(e)
	case irep.KindPointerOffset:
		return c.addrs.convertPointerOffset(e)
	case irep.KindPointerObject:
		return c.addrs.convertPointerObject(e)
	case irep.KindAddressOf:
		return c.addrs.convertAddressOf(e)
	case irep.KindByteExtract:
		return c.convertByteExtract(e)
	case irep.KindByteUpdate:
		return c.convertByteUpdate(e)
	case irep.KindWith:
		return c.convertWith(e)
	case irep.KindMember:
		return c.convertMember(e)
	case irep.KindIndex:
		return c.convertIndex(e)
	case irep.KindZeroString, irep.KindZeroLengthString:
		return c.backend.MkSmtBool(false), nil
	case irep.KindIsnan:
		return c.convertIsnan(e)
	case irep.KindOverflow, irep.KindOverflowNeg, irep.KindOverflowCast:
		return c.convertOverflow(e)
	default:
		return nil, fmt.Errorf("smtconv: unsupported expr kind %v", e.Kind())
	}
}

func (c *Converter) convertSymbol(e *irep.Expr) (smt.Ast, error) {
	sort, err := c.sortOf(e.Type())
	if err != nil {
		return nil, err
	}
	switch e.Type().Kind() {
	case irep.KindStruct, irep.KindUnion:
		return c.tupleSymbol(e.SymbolName(), e.Type())
	case irep.KindPointer:
		return c.addrs.symbol(e.SymbolName())
	default:
		return c.backend.MkSmtSymbol(e.SymbolName(), sort), nil
	}
}

func (c *Converter) convertConstantString(e *irep.Expr) (smt.Ast, error) {
	s, _ := e.ConstantString()
	sort, err := c.sortOf(e.Type())
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("string_lit$%x", []byte(s))
	return c.backend.MkSmtSymbol(name, sort), nil
}

func (c *Converter) convertIf(e *irep.Expr) (smt.Ast, error) {
	ops := e.Operands()
	cond, err := c.ConvertAST(ops[0])
	if err != nil {
		return nil, err
	}
	t, err := c.ConvertAST(ops[1])
	if err != nil {
		return nil, err
	}
	f, err := c.ConvertAST(ops[2])
	if err != nil {
		return nil, err
	}
	if e.Type().Kind() == irep.KindStruct || e.Type().Kind() == irep.KindUnion {
		return c.tupleIte(cond, t, f, e.Type())
	}
	sort, err := c.sortOf(e.Type())
	if err != nil {
		return nil, err
	}
	return c.backend.MkFuncApp(sort, smt.ITE, cond, t, f)
}

func (c *Converter) convertEquality(e *irep.Expr) (smt.Ast, error) {
	ops := e.Operands()
	lt := ops[0].Type()
	if lt.Kind() == irep.KindStruct || lt.Kind() == irep.KindUnion {
		eq, err := c.tupleEquality(ops[0], ops[1])
		if err != nil {
			return nil, err
		}
		if e.Kind() == irep.KindNotequal {
			return c.backend.MkFuncApp(smt.BoolSort(), smt.NOT, eq)
		}
		return eq, nil
	}
	if lt.Kind() == irep.KindPointer {
		eq, err := c.addrs.pointerEquality(ops[0], ops[1])
		if err != nil {
			return nil, err
		}
		if e.Kind() == irep.KindNotequal {
			return c.backend.MkFuncApp(smt.BoolSort(), smt.NOT, eq)
		}
		return eq, nil
	}
	a, err := c.ConvertAST(ops[0])
	if err != nil {
		return nil, err
	}
	b, err := c.ConvertAST(ops[1])
	if err != nil {
		return nil, err
	}
	fn := smt.EQ
	if e.Kind() == irep.KindNotequal {
		fn = smt.NOTEQ
	}
	return c.backend.MkFuncApp(smt.BoolSort(), fn, a, b)
}

func (c *Converter) convertCompare(e *irep.Expr) (smt.Ast, error) {
	ops := e.Operands()
	a, err := c.ConvertAST(ops[0])
	if err != nil {
		return nil, err
	}
	b, err := c.ConvertAST(ops[1])
	if err != nil {
		return nil, err
	}
	signed := ops[0].Type().Kind() == irep.KindSignedBV || ops[0].Type().Kind() == irep.KindFixedBV
	fn := compareFunc(e.Kind(), signed)
	return c.backend.MkFuncApp(smt.BoolSort(), fn, a, b)
}

func compareFunc(k irep.ExprKind, signed bool) smt.SmtFunc {
	switch k {
	case irep.KindLessthan:
		if signed {
			return smt.BVSLT
		}
		return smt.BVULT
	case irep.KindGreaterthan:
		if signed {
			return smt.BVSGT
		}
		return smt.BVUGT
	case irep.KindLessthanequal:
		if signed {
			return smt.BVSLTE
		}
		return smt.BVULTE
	default: // KindGreaterthanequal
		if signed {
			return smt.BVSGTE
		}
		return smt.BVUGTE
	}
}

func (c *Converter) convertBoolOp(e *irep.Expr) (smt.Ast, error) {
	args, err := c.convertOperands(e)
	if err != nil {
		return nil, err
	}
	fn := map[irep.ExprKind]smt.SmtFunc{
		irep.KindNot: smt.NOT, irep.KindAnd: smt.AND, irep.KindOr: smt.OR,
		irep.KindXor: smt.XOR, irep.KindImplies: smt.IMPLIES,
	}[e.Kind()]
	return c.backend.MkFuncApp(smt.BoolSort(), fn, args...)
}

func (c *Converter) convertBitOp(e *irep.Expr) (smt.Ast, error) {
	args, err := c.convertOperands(e)
	if err != nil {
		return nil, err
	}
	sort, err := c.sortOf(e.Type())
	if err != nil {
		return nil, err
	}
	fn := map[irep.ExprKind]smt.SmtFunc{
		irep.KindBitand: smt.BVAND, irep.KindBitor: smt.BVOR, irep.KindBitxor: smt.BVXOR,
		irep.KindBitnand: smt.BVNAND, irep.KindBitnor: smt.BVNOR, irep.KindBitnxor: smt.BVNXOR,
	}[e.Kind()]
	return c.backend.MkFuncApp(sort, fn, args...)
}

func (c *Converter) convertShift(e *irep.Expr) (smt.Ast, error) {
	args, err := c.convertOperands(e)
	if err != nil {
		return nil, err
	}
	sort, err := c.sortOf(e.Type())
	if err != nil {
		return nil, err
	}
	fn := map[irep.ExprKind]smt.SmtFunc{
		irep.KindLshr: smt.BVLSHR, irep.KindShl: smt.BVSHL, irep.KindAshr: smt.BVASHR,
	}[e.Kind()]
	return c.backend.MkFuncApp(sort, fn, args...)
}

func (c *Converter) convertUnaryArith(e *irep.Expr) (smt.Ast, error) {
	args, err := c.convertOperands(e)
	if err != nil {
		return nil, err
	}
	sort, err := c.sortOf(e.Type())
	if err != nil {
		return nil, err
	}
	if e.Kind() == irep.KindAbs {
		zero := c.backend.MkSmtBVInt(bigbv.FromInt64(0, e.Type().BVWidth()), false)
		isNeg, err := c.backend.MkFuncApp(smt.BoolSort(), smt.BVSLT, args[0], zero)
		if err != nil {
			return nil, err
		}
		neg, err := c.backend.MkFuncApp(sort, smt.BVNEG, args[0])
		if err != nil {
			return nil, err
		}
		return c.backend.MkFuncApp(sort, smt.ITE, isNeg, neg, args[0])
	}
	return c.backend.MkFuncApp(sort, smt.BVNEG, args[0])
}

func (c *Converter) convertArith(e *irep.Expr) (smt.Ast, error) {
	args, err := c.convertOperands(e)
	if err != nil {
		return nil, err
	}
	sort, err := c.sortOf(e.Type())
	if err != nil {
		return nil, err
	}
	signed := e.Type().Kind() == irep.KindSignedBV
	fn := map[irep.ExprKind]smt.SmtFunc{
		irep.KindAdd: smt.BVADD, irep.KindSub: smt.BVSUB, irep.KindMul: smt.BVMUL,
	}[e.Kind()]
	switch e.Kind() {
	case irep.KindDiv:
		if signed {
			fn = smt.BVSDIV
		} else {
			fn = smt.BVUDIV
		}
	case irep.KindModulus:
		if signed {
			fn = smt.BVSMOD
		} else {
			fn = smt.BVUMOD
		}
	}
	return c.backend.MkFuncApp(sort, fn, args...)
}

func (c *Converter) convertIsnan(e *irep.Expr) (smt.Ast, error) {
	// fixedbv has no NaN encoding (spec.md's fixed-point representation is
	// exact two's-complement); float support is a documented Non-goal.
	return c.backend.MkSmtBool(false), nil
}

func (c *Converter) convertOperands(e *irep.Expr) ([]smt.Ast, error) {
	ops := e.Operands()
	out := make([]smt.Ast, len(ops))
	for i, o := range ops {
		a, err := c.ConvertAST(o)
		if err != nil {
			return nil, err
		}
		out[i] = a
	}
	return out, nil
}

// MakeConjunct / MakeDisjunct are the n-ary boolean combinators the
// SSA-to-SMT driver uses to fold a slice of per-step ASTs into one
// query (spec.md §4.5.1's "Make an n-ary and/or function application").
func (c *Converter) MakeConjunct(asts []smt.Ast) (smt.Ast, error) {
	if len(asts) == 0 {
		return c.backend.MkSmtBool(true), nil
	}
	return c.backend.MkFuncApp(smt.BoolSort(), smt.AND, asts...)
}

func (c *Converter) MakeDisjunct(asts []smt.Ast) (smt.Ast, error) {
	if len(asts) == 0 {
		return c.backend.MkSmtBool(false), nil
	}
	return c.backend.MkFuncApp(smt.BoolSort(), smt.OR, asts...)
}

func (c *Converter) InvertAst(a smt.Ast) (smt.Ast, error) {
	return c.backend.MkFuncApp(smt.BoolSort(), smt.NOT, a)
}

func (c *Converter) ImplyAst(a, b smt.Ast) (smt.Ast, error) {
	return c.backend.MkFuncApp(smt.BoolSort(), smt.IMPLIES, a, b)
}

func (c *Converter) AssertAst(a smt.Ast) error { return c.backend.AssertAst(a) }

func (c *Converter) DecSolve() (smt.Result, error) { return c.backend.DecSolve() }

// Get retrieves the model value of a converted expression as a fresh
// constant irep.Expr (spec.md §6 "post-SAT concrete value retrieval").
func (c *Converter) Get(e *irep.Expr) (*irep.Expr, error) {
	a, ok := c.cacheGet(e)
	if !ok {
		var err error
		a, err = c.convert(e)
		if err != nil {
			return nil, err
		}
	}
	switch e.Type().Kind() {
	case irep.KindBool:
		return c.pool.ConstantBool(c.backend.GetBool(a)), nil
	case irep.KindUnsignedBV, irep.KindSignedBV, irep.KindFixedBV:
		sort, err := c.sortOf(e.Type())
		if err != nil {
			return nil, err
		}
		return c.pool.ConstantInt(c.backend.GetBV(sort, a), e.Type()), nil
	default:
		return nil, fmt.Errorf("smtconv: Get unsupported for type kind %v", e.Type().Kind())
	}
}
