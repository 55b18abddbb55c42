package irep

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/fbrausse/esbmc/internal/bigbv"
)

// Pool is the canonicalizing factory for every Type and Expr handle.
// It plays the role ExprBuilder plays for internalBVExpr/
// internalBoolExpr: all construction funnels through
// internType/internExpr, which hash-cons expressions on the node's cheap
// pointer-based hash() and shallowEq() and types on typeHash() and
// Compare(), never on the expensive recursive CRC(). Entries carry a hit
// counter and a runtime.SetFinalizer hook that removes them, mirroring
// ExprBuilder's bvFinalizer/boolFinalizer; since the pool's own buckets
// keep every interned handle reachable, entries are not removed while
// the Pool holds them.
type Pool struct {
	lock sync.RWMutex

	types map[uint64][]typeEntry
	exprs map[uint64][]exprEntry

	// small pool of canonical machine-width unsigned bv types: returns
	// a canonical handle for widths 8/16/32/64 without a fresh lookup.
	uintWidths map[uint]*Type

	Stats PoolStats
}

type PoolStats struct {
	TypeLookups, TypeHits uint
	ExprLookups, ExprHits uint
}

type typeEntry struct {
	t       *Type
	counter int
}

type exprEntry struct {
	e       *Expr
	counter int
}

func NewPool() *Pool {
	p := &Pool{
		types:      map[uint64][]typeEntry{},
		exprs:      map[uint64][]exprEntry{},
		uintWidths: map[uint]*Type{},
	}
	for _, w := range []uint{8, 16, 32, 64} {
		p.uintWidths[w] = p.internType(unsignedBVType(w))
	}
	return p
}

func (p *Pool) PrintStats() {
	p.lock.RLock()
	defer p.lock.RUnlock()
	fmt.Println("=====================")
	fmt.Println("  irep Pool Stats")
	fmt.Println("=====================")
	if p.Stats.TypeLookups > 0 {
		fmt.Printf("type hit ratio:  %.03f %%\n", float64(p.Stats.TypeHits)/float64(p.Stats.TypeLookups)*100)
	}
	if p.Stats.ExprLookups > 0 {
		fmt.Printf("expr hit ratio:  %.03f %%\n", float64(p.Stats.ExprHits)/float64(p.Stats.ExprLookups)*100)
	}
	fmt.Println("=====================")
}

func typeHash(t *Type) uint64 {
	h := t.kind.crcSeed()
	h = h*1099511628211 ^ uint64(t.bvWidth) ^ uint64(t.fixedIntBits)<<8 ^ uint64(t.nElems)<<16
	for _, m := range t.memberTypes {
		h = h*1099511628211 ^ typeHash(m)
	}
	for _, n := range t.memberNames {
		for _, r := range n {
			h = h*1099511628211 ^ uint64(r)
		}
	}
	for _, r := range t.symName {
		h = h*1099511628211 ^ uint64(r)
	}
	for _, r := range t.aggName {
		h = h*1099511628211 ^ uint64(r)
	}
	if t.elem != nil {
		h = h*1099511628211 ^ typeHash(t.elem)
	}
	if t.pointee != nil {
		h = h*1099511628211 ^ typeHash(t.pointee)
	}
	if t.arrSize != nil {
		h = h*1099511628211 ^ t.arrSize.node.hash()
	}
	if t.infinite {
		h ^= 0xff
	}
	return h
}

func (k TypeKind) crcSeed() uint64 { return uint64(k) + 14695981039346656037 }

func (p *Pool) typeFinalizer(t *Type) {
	p.lock.Lock()
	defer p.lock.Unlock()
	h := typeHash(t)
	bucket, ok := p.types[h]
	if !ok {
		return
	}
	kept := bucket[:0]
	for _, e := range bucket {
		if e.t == t {
			e.counter--
			if e.counter <= 0 {
				continue
			}
		}
		kept = append(kept, e)
	}
	p.types[h] = kept
}

// internType hash-conses t, returning the canonical handle for its
// structural shape.
func (p *Pool) internType(t *Type) *Type {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.Stats.TypeLookups++

	h := typeHash(t)
	bucket := p.types[h]
	for i := range bucket {
		if Compare(bucket[i].t, t) == 0 {
			p.Stats.TypeHits++
			bucket[i].counter++
			return bucket[i].t
		}
	}
	bucket = append(bucket, typeEntry{t: t, counter: 1})
	p.types[h] = bucket
	runtime.SetFinalizer(t, p.typeFinalizer)
	return t
}

func (p *Pool) exprFinalizer(e *Expr) {
	p.lock.Lock()
	defer p.lock.Unlock()
	h := e.node.hash()
	bucket, ok := p.exprs[h]
	if !ok {
		return
	}
	kept := bucket[:0]
	for _, ent := range bucket {
		if ent.e == e {
			ent.counter--
			if ent.counter <= 0 {
				continue
			}
		}
		kept = append(kept, ent)
	}
	p.exprs[h] = kept
}

func (p *Pool) internExpr(e *Expr) *Expr {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.Stats.ExprLookups++

	h := e.node.hash()
	bucket := p.exprs[h]
	for i := range bucket {
		if bucket[i].e.typ == e.typ && bucket[i].e.node.shallowEq(e.node) {
			p.Stats.ExprHits++
			bucket[i].counter++
			return bucket[i].e
		}
	}
	bucket = append(bucket, exprEntry{e: e, counter: 1})
	p.exprs[h] = bucket
	runtime.SetFinalizer(e, p.exprFinalizer)
	return e
}

/*
 *  Type constructors
 */

func (p *Pool) Bool() *Type  { return p.internType(boolType()) }
func (p *Pool) Empty() *Type { return p.internType(emptyType()) }
func (p *Pool) Code() *Type  { return p.internType(codeType()) }

func (p *Pool) SymbolType(name string) *Type { return p.internType(symbolType(name)) }

func (p *Pool) UnsignedBV(width uint) *Type {
	if t, ok := p.uintWidths[width]; ok {
		return t
	}
	return p.internType(unsignedBVType(width))
}

func (p *Pool) SignedBV(width uint) *Type { return p.internType(signedBVType(width)) }

func (p *Pool) FixedBV(width, intBits uint) *Type {
	return p.internType(fixedBVType(width, intBits))
}

func (p *Pool) String(nElems uint) *Type { return p.internType(stringType(nElems)) }

func (p *Pool) Struct(name string, members []*Type, names []string) *Type {
	return p.internType(structType(name, append([]*Type(nil), members...), append([]string(nil), names...)))
}

func (p *Pool) Union(name string, members []*Type, names []string) *Type {
	return p.internType(unionType(name, append([]*Type(nil), members...), append([]string(nil), names...)))
}

func (p *Pool) Array(elem *Type, size *Expr) *Type { return p.internType(arrayType(elem, size)) }

func (p *Pool) InfiniteArray(elem *Type) *Type { return p.internType(arrayType(elem, nil)) }

func (p *Pool) Pointer(pointee *Type) *Type { return p.internType(pointerType(pointee)) }

/*
 *  Expr constructors: leaves
 */

func (p *Pool) mk(node exprNode, typ *Type) *Expr {
	return p.internExpr(&Expr{node: node, typ: typ})
}

func (p *Pool) ConstantInt(v *bigbv.BV, typ *Type) *Expr {
	return p.mk(&nConst{kind: KindConstantInt, value: v}, typ)
}

func (p *Pool) ConstantFixedbv(v *bigbv.BV, typ *Type) *Expr {
	return p.mk(&nConst{kind: KindConstantFixedbv, value: v}, typ)
}

func (p *Pool) ConstantBool(v bool) *Expr {
	return p.mk(&nConstBool{value: v}, p.Bool())
}

func (p *Pool) ConstantString(v string, typ *Type) *Expr {
	return p.mk(&nConstString{value: v}, typ)
}

func (p *Pool) ConstantStruct(members []*Expr, typ *Type) *Expr {
	return p.mk(&nAggregate{kind: KindConstantStruct, children: append([]*Expr(nil), members...)}, typ)
}

func (p *Pool) ConstantArray(elems []*Expr, typ *Type) *Expr {
	return p.mk(&nAggregate{kind: KindConstantArray, children: append([]*Expr(nil), elems...)}, typ)
}

func (p *Pool) ConstantArrayOf(filler *Expr, typ *Type) *Expr {
	return p.mk(&nConstArrayOf{filler: filler}, typ)
}

func (p *Pool) ConstantUnion(field string, value *Expr, typ *Type) *Expr {
	return p.mk(&nConstUnion{field: field, value: value}, typ)
}

// Symbol constructs a level-0 symbol; the renaming package promotes it
// to L1/L2 via WithLevel1/WithLevel2.
func (p *Pool) Symbol(name string, typ *Type) *Expr {
	return p.mk(&nSymbol{name: name, level: Level0}, typ)
}

func (p *Pool) SymbolLevel1(name string, threadNum, level1Num uint32, global bool, typ *Type) *Expr {
	lvl := Level1
	if global {
		lvl = Level1Global
	}
	return p.mk(&nSymbol{name: name, level: lvl, threadNum: threadNum, level1Num: level1Num}, typ)
}

func (p *Pool) SymbolLevel2(name string, threadNum, level1Num, level2Num, nodeNum uint32, global bool, typ *Type) *Expr {
	lvl := Level2
	if global {
		lvl = Level2Global
	}
	return p.mk(&nSymbol{name: name, level: lvl, threadNum: threadNum, level1Num: level1Num, level2Num: level2Num, nodeNum: nodeNum}, typ)
}

/*
 *  Arithmetic/bitwise with constant folding, flattening and sorting,
 *  following expr_builder.go's Add/Mul/And/Or/Xor/Shl/LShr pattern.
 */

var errDifferentSizes = fmt.Errorf("irep: operand bit widths differ")

func bvWidthOf(t *Type) uint {
	w, err := t.Width()
	if err != nil {
		return 0
	}
	return w
}

func (p *Pool) flattenArith(kind ExprKind, e *Expr, out []*Expr) []*Expr {
	if n, ok := e.node.(*nNary); ok && n.kind == kind {
		for _, c := range n.children {
			out = p.flattenArith(kind, c, out)
		}
		return out
	}
	if n, ok := e.node.(*nBinary); ok && n.kind == kind {
		out = p.flattenArith(kind, n.lhs, out)
		out = p.flattenArith(kind, n.rhs, out)
		return out
	}
	return append(out, e)
}

func sortExprsByID(xs []*Expr) {
	sort.Slice(xs, func(i, j int) bool { return xs[i].Id() < xs[j].Id() })
}

// Add builds lhs+rhs over a common signed/unsigned bitvector type,
// folding constant operands and flattening nested adds (expr_builder.go
// Add/flattenOrAddArithmeticArg).
func (p *Pool) Add(lhs, rhs *Expr) (*Expr, error) {
	typ := lhs.typ
	width := bvWidthOf(typ)
	if bvWidthOf(rhs.typ) != width {
		return nil, errDifferentSizes
	}
	if v, ok := lhs.ConstantBV(); ok && v.IsZero() {
		return rhs, nil
	}
	if v, ok := rhs.ConstantBV(); ok && v.IsZero() {
		return lhs, nil
	}

	flat := p.flattenArith(KindAdd, lhs, nil)
	flat = p.flattenArith(KindAdd, rhs, flat)

	acc := bigbv.FromInt64(0, width)
	rest := make([]*Expr, 0, len(flat))
	for _, c := range flat {
		if v, ok := c.ConstantBV(); ok {
			var err error
			acc, err = acc.Add(v)
			if err != nil {
				return nil, err
			}
			continue
		}
		rest = append(rest, c)
	}
	if !acc.IsZero() || len(rest) == 0 {
		rest = append(rest, p.ConstantInt(acc, typ))
	}
	if len(rest) == 1 {
		return rest[0], nil
	}
	sortExprsByID(rest)
	return p.naryFold(KindAdd, rest, typ), nil
}

func (p *Pool) naryFold(kind ExprKind, children []*Expr, typ *Type) *Expr {
	if len(children) == 2 {
		return p.mk(&nBinary{kind: kind, lhs: children[0], rhs: children[1]}, typ)
	}
	return p.mk(&nNary{kind: kind, children: children}, typ)
}

func (p *Pool) Sub(lhs, rhs *Expr) (*Expr, error) {
	neg, err := p.Neg(rhs)
	if err != nil {
		return nil, err
	}
	return p.Add(lhs, neg)
}

func (p *Pool) Mul(lhs, rhs *Expr) (*Expr, error) {
	typ := lhs.typ
	width := bvWidthOf(typ)
	if bvWidthOf(rhs.typ) != width {
		return nil, errDifferentSizes
	}
	if v, ok := lhs.ConstantBV(); ok && v.IsOne() {
		return rhs, nil
	}
	if v, ok := rhs.ConstantBV(); ok && v.IsOne() {
		return lhs, nil
	}
	if v, ok := lhs.ConstantBV(); ok && v.IsZero() {
		return lhs, nil
	}
	if v, ok := rhs.ConstantBV(); ok && v.IsZero() {
		return rhs, nil
	}

	flat := p.flattenArith(KindMul, lhs, nil)
	flat = p.flattenArith(KindMul, rhs, flat)

	acc := bigbv.FromInt64(1, width)
	rest := make([]*Expr, 0, len(flat))
	for _, c := range flat {
		if v, ok := c.ConstantBV(); ok {
			var err error
			acc, err = acc.Mul(v)
			if err != nil {
				return nil, err
			}
			continue
		}
		rest = append(rest, c)
	}
	if !acc.IsOne() || len(rest) == 0 {
		rest = append(rest, p.ConstantInt(acc, typ))
	}
	if len(rest) == 1 {
		return rest[0], nil
	}
	sortExprsByID(rest)
	return p.naryFold(KindMul, rest, typ), nil
}

func (p *Pool) bitwiseFold(kind ExprKind, lhs, rhs *Expr, combine func(a, b *bigbv.BV) (*bigbv.BV, error), neutral func(width uint) *bigbv.BV) (*Expr, error) {
	typ := lhs.typ
	width := bvWidthOf(typ)
	if bvWidthOf(rhs.typ) != width {
		return nil, errDifferentSizes
	}
	if lhs.Id() == rhs.Id() && kind != KindBitxor {
		return lhs, nil
	}

	flat := p.flattenArith(kind, lhs, nil)
	flat = p.flattenArith(kind, rhs, flat)

	acc := neutral(width)
	rest := make([]*Expr, 0, len(flat))
	for _, c := range flat {
		if v, ok := c.ConstantBV(); ok {
			var err error
			acc, err = combine(acc, v)
			if err != nil {
				return nil, err
			}
			continue
		}
		rest = append(rest, c)
	}
	nEq, _ := acc.Eq(neutral(width))
	if !nEq || len(rest) == 0 {
		rest = append(rest, p.ConstantInt(acc, typ))
	}
	if len(rest) == 1 {
		return rest[0], nil
	}
	sortExprsByID(rest)
	return p.naryFold(kind, rest, typ), nil
}

func allOnes(width uint) *bigbv.BV {
	return bigbv.FromInt64(-1, width)
}

func (p *Pool) And(lhs, rhs *Expr) (*Expr, error) {
	return p.bitwiseFold(KindBitand, lhs, rhs, (*bigbv.BV).And, func(w uint) *bigbv.BV { return allOnes(w) })
}

func (p *Pool) Or(lhs, rhs *Expr) (*Expr, error) {
	return p.bitwiseFold(KindBitor, lhs, rhs, (*bigbv.BV).Or, func(w uint) *bigbv.BV { return bigbv.FromInt64(0, w) })
}

func (p *Pool) Xor(lhs, rhs *Expr) (*Expr, error) {
	return p.bitwiseFold(KindBitxor, lhs, rhs, (*bigbv.BV).Xor, func(w uint) *bigbv.BV { return bigbv.FromInt64(0, w) })
}

func (p *Pool) shiftFold(kind ExprKind, lhs, rhs *Expr, op func(v *bigbv.BV, n uint) (*bigbv.BV, error)) (*Expr, error) {
	typ := lhs.typ
	width := bvWidthOf(typ)
	if cl, ok := lhs.ConstantBV(); ok {
		if cr, ok := rhs.ConstantBV(); ok {
			if !cr.FitsInUint64() {
				return p.ConstantInt(bigbv.FromInt64(0, width), typ), nil
			}
			v, err := op(cl, uint(cr.AsUint64()))
			if err != nil {
				return nil, err
			}
			return p.ConstantInt(v, typ), nil
		}
	}
	if cr, ok := rhs.ConstantBV(); ok {
		if cr.IsZero() {
			return lhs, nil
		}
		if cr.FitsInUint64() && cr.AsUint64() >= uint64(width) && kind != KindAshr {
			return p.ConstantInt(bigbv.FromInt64(0, width), typ), nil
		}
	}
	return p.mk(&nBinary{kind: kind, lhs: lhs, rhs: rhs}, typ), nil
}

func (p *Pool) Shl(lhs, rhs *Expr) (*Expr, error) {
	return p.shiftFold(KindShl, lhs, rhs, (*bigbv.BV).Shl)
}

func (p *Pool) LShr(lhs, rhs *Expr) (*Expr, error) {
	return p.shiftFold(KindLshr, lhs, rhs, (*bigbv.BV).LShr)
}

func (p *Pool) AShr(lhs, rhs *Expr) (*Expr, error) {
	return p.shiftFold(KindAshr, lhs, rhs, (*bigbv.BV).AShr)
}

func (p *Pool) Neg(e *Expr) (*Expr, error) {
	if v, ok := e.ConstantBV(); ok {
		nv, err := v.Neg()
		if err != nil {
			return nil, err
		}
		return p.ConstantInt(nv, e.typ), nil
	}
	if n, ok := e.node.(*nUnary); ok && n.kind == KindNeg {
		return n.child, nil
	}
	return p.mk(&nUnary{kind: KindNeg, child: e}, e.typ), nil
}

func (p *Pool) Not(e *Expr) (*Expr, error) {
	if v, ok := e.ConstantBool(); ok {
		return p.ConstantBool(!v), nil
	}
	if n, ok := e.node.(*nUnary); ok && n.kind == KindNot {
		return n.child, nil
	}
	return p.mk(&nUnary{kind: KindNot, child: e}, p.Bool()), nil
}

func (p *Pool) BVNot(e *Expr) (*Expr, error) {
	if v, ok := e.ConstantBV(); ok {
		nv, err := v.Not()
		if err != nil {
			return nil, err
		}
		return p.ConstantInt(nv, e.typ), nil
	}
	return p.mk(&nUnary{kind: KindBitnand, child: e}, e.typ), nil
}

func (p *Pool) Abs(e *Expr) *Expr { return p.mk(&nUnary{kind: KindAbs, child: e}, e.typ) }

/*
 *  Boolean connectives (constant folding, flattening) — mirrors
 *  expr_builder.go's boolexpr equivalents of And/Or for bv.
 */

func (p *Pool) boolNary(kind ExprKind, xs []*Expr, absorbing, identity bool) *Expr {
	flat := make([]*Expr, 0, len(xs))
	var flatten func(e *Expr)
	flatten = func(e *Expr) {
		if n, ok := e.node.(*nNary); ok && n.kind == kind {
			for _, c := range n.children {
				flatten(c)
			}
			return
		}
		flat = append(flat, e)
	}
	for _, x := range xs {
		flatten(x)
	}

	rest := make([]*Expr, 0, len(flat))
	for _, c := range flat {
		if v, ok := c.ConstantBool(); ok {
			if v == absorbing {
				return p.ConstantBool(absorbing)
			}
			continue // identity value, drop
		}
		rest = append(rest, c)
	}
	if len(rest) == 0 {
		return p.ConstantBool(identity)
	}
	if len(rest) == 1 {
		return rest[0]
	}
	sortExprsByID(rest)
	return p.mk(&nNary{kind: kind, children: rest}, p.Bool())
}

func (p *Pool) And2(xs ...*Expr) *Expr { return p.boolNary(KindAnd, xs, false, true) }
func (p *Pool) Or2(xs ...*Expr) *Expr  { return p.boolNary(KindOr, xs, true, false) }
func (p *Pool) Xor2(xs ...*Expr) *Expr { return p.boolNary(KindXor, xs, false, false) }

func (p *Pool) Implies(lhs, rhs *Expr) *Expr {
	return p.mk(&nNary{kind: KindImplies, children: []*Expr{lhs, rhs}}, p.Bool())
}

/*
 *  Comparisons
 */

func (p *Pool) cmp(kind ExprKind, lhs, rhs *Expr) *Expr {
	return p.mk(&nBinary{kind: kind, lhs: lhs, rhs: rhs}, p.Bool())
}

func (p *Pool) Equality(lhs, rhs *Expr) *Expr {
	if lhs.Id() == rhs.Id() {
		return p.ConstantBool(true)
	}
	return p.cmp(KindEquality, lhs, rhs)
}
func (p *Pool) Notequal(lhs, rhs *Expr) *Expr        { return p.cmp(KindNotequal, lhs, rhs) }
func (p *Pool) Lessthan(lhs, rhs *Expr) *Expr        { return p.cmp(KindLessthan, lhs, rhs) }
func (p *Pool) Greaterthan(lhs, rhs *Expr) *Expr     { return p.cmp(KindGreaterthan, lhs, rhs) }
func (p *Pool) Lessthanequal(lhs, rhs *Expr) *Expr   { return p.cmp(KindLessthanequal, lhs, rhs) }
func (p *Pool) Greaterthanequal(lhs, rhs *Expr) *Expr { return p.cmp(KindGreaterthanequal, lhs, rhs) }

/*
 *  Division/modulus (no silent folding across div-by-zero; div-by-zero
 *  semantics are left to the SMT conversion layer).
 */

func (p *Pool) Div(lhs, rhs *Expr) *Expr {
	return p.mk(&nBinary{kind: KindDiv, lhs: lhs, rhs: rhs}, lhs.typ)
}
func (p *Pool) Modulus(lhs, rhs *Expr) *Expr {
	return p.mk(&nBinary{kind: KindModulus, lhs: lhs, rhs: rhs}, lhs.typ)
}

/*
 *  Typecast / overflow / pointer family / if / index / member / with /
 *  byte_extract / byte_update — structural constructors, no folding
 *  beyond identity-cast elision.
 */

func (p *Pool) Typecast(e *Expr, to *Type) *Expr {
	if e.typ.Equal(to) {
		return e
	}
	return p.mk(&nUnary{kind: KindTypecast, child: e}, to)
}

func (p *Pool) If(cond, t, f *Expr) (*Expr, error) {
	if v, ok := cond.ConstantBool(); ok {
		if v {
			return t, nil
		}
		return f, nil
	}
	if !t.typ.Equal(f.typ) {
		return nil, &ErrStructuralMismatch{Op: "if", Detail: "branch types differ"}
	}
	return p.mk(&nIf{cond: cond, t: t, f: f}, t.typ), nil
}

func (p *Pool) DynamicObject(e *Expr) *Expr {
	return p.mk(&nUnary{kind: KindDynamicObject, child: e}, p.Bool())
}
func (p *Pool) SameObject(lhs, rhs *Expr) *Expr { return p.cmp(KindSameObject, lhs, rhs) }
func (p *Pool) PointerOffset(e *Expr, typ *Type) *Expr {
	return p.mk(&nUnary{kind: KindPointerOffset, child: e}, typ)
}
func (p *Pool) PointerObject(e *Expr, typ *Type) *Expr {
	return p.mk(&nUnary{kind: KindPointerObject, child: e}, typ)
}
func (p *Pool) AddressOf(e *Expr, typ *Type) *Expr {
	return p.mk(&nUnary{kind: KindAddressOf, child: e}, typ)
}

func (p *Pool) Index(base, idx *Expr) (*Expr, error) {
	if base.typ.Kind() != KindArray {
		return nil, &ErrStructuralMismatch{Op: "index", Detail: "base is not an array"}
	}
	return p.mk(&nBinary{kind: KindIndex, lhs: base, rhs: idx}, base.typ.Elem()), nil
}

func (p *Pool) Member(source *Expr, field string) (*Expr, error) {
	members, names := source.typ.Members()
	for i, n := range names {
		if n == field {
			return p.mk(&nMember{source: source, field: field}, members[i]), nil
		}
	}
	return nil, &ErrStructuralMismatch{Op: "member", Detail: "no field " + field}
}

func (p *Pool) WithIndex(source, index, value *Expr) *Expr {
	return p.mk(&nWith{source: source, index: index, value: value}, source.typ)
}

func (p *Pool) WithField(source *Expr, field string, value *Expr) *Expr {
	return p.mk(&nWith{source: source, field: field, value: value, isMember: true}, source.typ)
}

func (p *Pool) ByteExtract(source, offset *Expr, bigEndian bool, typ *Type) *Expr {
	return p.mk(&nByteExtract{source: source, offset: offset, bigEndian: bigEndian}, typ)
}

func (p *Pool) ByteUpdate(source, offset, value *Expr, bigEndian bool) *Expr {
	return p.mk(&nByteUpdate{source: source, offset: offset, value: value, bigEndian: bigEndian}, source.typ)
}

func (p *Pool) ZeroString(e *Expr) *Expr {
	return p.mk(&nUnary{kind: KindZeroString, child: e}, p.Bool())
}
func (p *Pool) ZeroLengthString(e *Expr) *Expr {
	return p.mk(&nUnary{kind: KindZeroLengthString, child: e}, p.Bool())
}
func (p *Pool) Isnan(e *Expr) *Expr {
	return p.mk(&nUnary{kind: KindIsnan, child: e}, p.Bool())
}
func (p *Pool) Overflow(op *Expr) *Expr {
	return p.mk(&nUnary{kind: KindOverflow, child: op}, p.Bool())
}
func (p *Pool) OverflowNeg(op *Expr) *Expr {
	return p.mk(&nUnary{kind: KindOverflowNeg, child: op}, p.Bool())
}
func (p *Pool) OverflowCast(e *Expr, bits uint) *Expr {
	return p.mk(&nOverflowCast{child: e, bits: bits}, p.Bool())
}

/*
 *  Extract/Concat/ZExt/SExt — shape-specific bitvector resizing ops,
 *  grounded on expr_builder.go's Extract/Concat/ZExt/SExt which the
 *  teacher implements directly over internalBVExpr rather than as
 *  dedicated ExprKinds; here they fold over constants and otherwise
 *  build byte_extract/typecast/concat-style nodes.
 */

func (p *Pool) ZExt(e *Expr, toWidth uint) (*Expr, error) {
	typ := p.UnsignedBV(toWidth)
	if v, ok := e.ConstantBV(); ok {
		if toWidth < v.Width {
			return nil, &ErrStructuralMismatch{Op: "zext", Detail: "target width is narrower than the operand"}
		}
		nv, err := v.ZExt(toWidth - v.Width)
		if err != nil {
			return nil, err
		}
		return p.ConstantInt(nv, typ), nil
	}
	return p.Typecast(e, typ), nil
}

func (p *Pool) SExt(e *Expr, toWidth uint) (*Expr, error) {
	typ := p.SignedBV(toWidth)
	if v, ok := e.ConstantBV(); ok {
		if toWidth < v.Width {
			return nil, &ErrStructuralMismatch{Op: "sext", Detail: "target width is narrower than the operand"}
		}
		nv, err := v.SExt(toWidth - v.Width)
		if err != nil {
			return nil, err
		}
		return p.ConstantInt(nv, typ), nil
	}
	return p.Typecast(e, typ), nil
}

// Concat builds the bitvector {hi, lo} (hi occupying the most
// significant bits), expressed over zero-extension, shift and bitor
// since the expression universe has no dedicated concat kind — the
// same decomposition expr_builder.go's Concat performs, just over the
// pool's generic Add/Shl/Or rather than a bespoke BV method.
func (p *Pool) Concat(hi, lo *Expr) (*Expr, error) {
	wh, wl := bvWidthOf(hi.typ), bvWidthOf(lo.typ)
	total := wh + wl
	typ := p.UnsignedBV(total)

	hiWide, err := p.ZExt(hi, total)
	if err != nil {
		return nil, err
	}
	hiWide = p.Typecast(hiWide, typ)
	loWide, err := p.ZExt(lo, total)
	if err != nil {
		return nil, err
	}
	loWide = p.Typecast(loWide, typ)

	shiftAmt := p.ConstantInt(bigbv.FromInt64(int64(wl), total), typ)
	shifted, err := p.Shl(hiWide, shiftAmt)
	if err != nil {
		return nil, err
	}
	return p.Or(shifted, loWide)
}

// Extract pulls out bits [hi:lo] (inclusive, lo-origin) of e as an
// unsigned bitvector of width hi-lo+1. byte_extract's offset operand is
// byte-granular (see smtconv.convertByteExtract's idx*8 reconstruction),
// so a non-constant e can only be routed through it when [hi:lo] is
// itself byte-aligned; ErrStructuralMismatch is returned otherwise
// rather than silently re-multiplying lo by 8.
func (p *Pool) Extract(e *Expr, hi, lo uint) (*Expr, error) {
	typ := p.UnsignedBV(hi - lo + 1)
	if v, ok := e.ConstantBV(); ok {
		nv, err := v.Slice(hi, lo)
		if err != nil {
			return nil, err
		}
		return p.ConstantInt(nv, typ), nil
	}
	if lo%8 != 0 || (hi+1)%8 != 0 {
		return nil, &ErrStructuralMismatch{Op: "extract", Detail: "non-constant Extract requires a byte-aligned [hi:lo] range"}
	}
	offset := p.ConstantInt(bigbv.FromInt64(int64(lo/8), 64), p.UnsignedBV(64))
	return p.ByteExtract(e, offset, false, typ), nil
}

// Rebuild reconstructs e with its operands replaced by ops (same order
// as Operands()), keeping every scalar field and the attached Type
// unchanged. Used by the renaming and SSA-slicing layers to rewrite a
// symbol deep inside an expression tree without hand-rolling a
// reconstruction case for every kind at each call site; unchanged
// subtrees interning back to the same canonical pointer costs one
// bucket scan, not a rebuild.
func (p *Pool) Rebuild(e *Expr, ops []*Expr) *Expr {
	switch n := e.node.(type) {
	case *nConst, *nConstBool, *nConstString, *nSymbol:
		return e
	case *nAggregate:
		return p.mk(&nAggregate{kind: n.kind, children: append([]*Expr(nil), ops...)}, e.typ)
	case *nConstUnion:
		return p.mk(&nConstUnion{field: n.field, value: ops[0]}, e.typ)
	case *nConstArrayOf:
		return p.mk(&nConstArrayOf{filler: ops[0]}, e.typ)
	case *nUnary:
		return p.mk(&nUnary{kind: n.kind, child: ops[0]}, e.typ)
	case *nOverflowCast:
		return p.mk(&nOverflowCast{child: ops[0], bits: n.bits}, e.typ)
	case *nBinary:
		return p.mk(&nBinary{kind: n.kind, lhs: ops[0], rhs: ops[1]}, e.typ)
	case *nNary:
		return p.mk(&nNary{kind: n.kind, children: append([]*Expr(nil), ops...)}, e.typ)
	case *nIf:
		return p.mk(&nIf{cond: ops[0], t: ops[1], f: ops[2]}, e.typ)
	case *nByteExtract:
		return p.mk(&nByteExtract{source: ops[0], offset: ops[1], bigEndian: n.bigEndian}, e.typ)
	case *nByteUpdate:
		return p.mk(&nByteUpdate{source: ops[0], offset: ops[1], value: ops[2], bigEndian: n.bigEndian}, e.typ)
	case *nWith:
		if n.isMember {
			return p.mk(&nWith{source: ops[0], value: ops[1], field: n.field, isMember: true}, e.typ)
		}
		return p.mk(&nWith{source: ops[0], index: ops[1], value: ops[2]}, e.typ)
	case *nMember:
		return p.mk(&nMember{source: ops[0], field: n.field}, e.typ)
	default:
		return e
	}
}

// Map applies fn to every symbol leaf reachable from e, rebuilding
// ancestors bottom-up only along paths that actually change — the
// generic traversal renaming.level1t.rename/level2t.rename perform by
// hand over expr2tc's Forall_operands2 macro.
func (p *Pool) Map(e *Expr, fn func(sym *Expr) *Expr) *Expr {
	if _, ok := e.node.(*nSymbol); ok {
		return fn(e)
	}
	ops := e.Operands()
	if len(ops) == 0 {
		return e
	}
	changed := false
	newOps := make([]*Expr, len(ops))
	for i, o := range ops {
		newOps[i] = p.Map(o, fn)
		if newOps[i] != o {
			changed = true
		}
	}
	if !changed {
		return e
	}
	return p.Rebuild(e, newOps)
}
