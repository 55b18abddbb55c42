package irep

import (
	"fmt"
	"math/big"
	"unsafe"

	"github.com/cespare/xxhash/v2"

	"github.com/fbrausse/esbmc/internal/bigbv"
)

// Expr is a tagged, hash-consed value over a Type. Like Type, handles
// are produced and canonicalized exclusively by a Pool; every mutation
// is copy-on-write, yielding a fresh canonical handle rather than
// mutating a shared node.
type Expr struct {
	node exprNode
	typ  *Type
}

// exprNode is the internal per-kind payload interface, mirroring
// internalBVExpr/internalBoolExpr's split except unified across one
// kind space since every node here carries its own Type.
type exprNode interface {
	Kind() ExprKind
	String() string
	subexprs() []*Expr
	isLeaf() bool
	rawPtr() uintptr
	hash() uint64
	shallowEq(other exprNode) bool
	scalarCRC(h *xxhash.Digest)
	scalarLess(other exprNode) int
}

func (e *Expr) Kind() ExprKind   { return e.node.Kind() }
func (e *Expr) Type() *Type      { return e.typ }
func (e *Expr) String() string   { return e.node.String() }
func (e *Expr) IsLeaf() bool     { return e.node.isLeaf() }
func (e *Expr) Id() uintptr      { return e.node.rawPtr() }
func (e *Expr) Operands() []*Expr { return e.node.subexprs() }

// ConstantUint reports whether e is a constant_int expression that fits
// in a uint64, returning its value. Used by Type.Width() to resolve
// array sizes.
func (e *Expr) ConstantUint() (uint64, bool) {
	if e == nil {
		return 0, false
	}
	c, ok := e.node.(*nConst)
	if !ok || c.kind != KindConstantInt {
		return 0, false
	}
	if !c.value.FitsInUint64() || (e.typ.Kind() == KindSignedBV && c.value.IsNegative()) {
		return 0, false
	}
	return c.value.AsUint64(), true
}

// ConstantBV reports whether e is a constant_int/constant_fixedbv
// leaf and returns its bit-vector payload.
func (e *Expr) ConstantBV() (*bigbv.BV, bool) {
	c, ok := e.node.(*nConst)
	if !ok {
		return nil, false
	}
	return c.value, true
}

func (e *Expr) ConstantBool() (bool, bool) {
	c, ok := e.node.(*nConstBool)
	if !ok {
		return false, false
	}
	return c.value, true
}

func (e *Expr) ConstantString() (string, bool) {
	c, ok := e.node.(*nConstString)
	if !ok {
		return "", false
	}
	return c.value, true
}

// Symbol accessors; zero values if e is not a symbol.
func (e *Expr) SymbolName() string {
	if s, ok := e.node.(*nSymbol); ok {
		return s.name
	}
	return ""
}

func (e *Expr) Level() RenameLevel {
	if s, ok := e.node.(*nSymbol); ok {
		return s.level
	}
	return Level0
}

func (e *Expr) Level1Num() uint32 {
	if s, ok := e.node.(*nSymbol); ok {
		return s.level1Num
	}
	return 0
}

func (e *Expr) Level2Num() uint32 {
	if s, ok := e.node.(*nSymbol); ok {
		return s.level2Num
	}
	return 0
}

func (e *Expr) ThreadNum() uint32 {
	if s, ok := e.node.(*nSymbol); ok {
		return s.threadNum
	}
	return 0
}

func (e *Expr) NodeNum() uint32 {
	if s, ok := e.node.(*nSymbol); ok {
		return s.nodeNum
	}
	return 0
}

func (e *Expr) MemberField() string {
	switch n := e.node.(type) {
	case *nMember:
		return n.field
	case *nWith:
		return n.field
	}
	return ""
}

func (e *Expr) UnionField() string {
	if n, ok := e.node.(*nConstUnion); ok {
		return n.field
	}
	return ""
}

func (e *Expr) IsBigEndian() bool {
	switch n := e.node.(type) {
	case *nByteExtract:
		return n.bigEndian
	case *nByteUpdate:
		return n.bigEndian
	}
	return false
}

func (e *Expr) OverflowCastBits() uint {
	if n, ok := e.node.(*nOverflowCast); ok {
		return n.bits
	}
	return 0
}

/*
 * Shared feed helpers
 */

func feedExprCRC(h *xxhash.Digest, e *Expr) {
	v := e.CRC()
	feedUint(h, uint64(v))
}

func feedBigIntCRC(h *xxhash.Digest, v *big.Int) {
	if v.Sign() == 0 {
		h.Write([]byte{0})
		return
	}
	h.Write(v.Bytes())
}

/*
 *  constant_int / constant_fixedbv
 */

type nConst struct {
	kind  ExprKind
	value *bigbv.BV
}

func (n *nConst) Kind() ExprKind { return n.kind }
func (n *nConst) String() string {
	if n.value.FitsInUint64() {
		return fmt.Sprintf("0x%x", n.value.AsUint64())
	}
	return n.value.String()
}
func (n *nConst) subexprs() []*Expr { return nil }
func (n *nConst) isLeaf() bool      { return true }
func (n *nConst) rawPtr() uintptr   { return uintptr(unsafe.Pointer(n)) }
func (n *nConst) hash() uint64 {
	h := xxhash.New()
	h.Write([]byte{byte(n.kind)})
	feedBigIntCRC(h, n.value.BigInt())
	return h.Sum64()
}
func (n *nConst) shallowEq(other exprNode) bool {
	o, ok := other.(*nConst)
	if !ok || o.kind != n.kind {
		return false
	}
	eq, err := n.value.Eq(o.value)
	return err == nil && eq
}
func (n *nConst) scalarCRC(h *xxhash.Digest) { feedBigIntCRC(h, n.value.BigInt()) }
func (n *nConst) scalarLess(other exprNode) int {
	o := other.(*nConst)
	return n.value.BigInt().Cmp(o.value.BigInt())
}

/*
 *  constant_bool
 */

type nConstBool struct{ value bool }

func (n *nConstBool) Kind() ExprKind { return KindConstantBool }
func (n *nConstBool) String() string {
	if n.value {
		return "true"
	}
	return "false"
}
func (n *nConstBool) subexprs() []*Expr { return nil }
func (n *nConstBool) isLeaf() bool      { return true }
func (n *nConstBool) rawPtr() uintptr   { return uintptr(unsafe.Pointer(n)) }
func (n *nConstBool) hash() uint64 {
	if n.value {
		return 1
	}
	return 0
}
func (n *nConstBool) shallowEq(other exprNode) bool {
	o, ok := other.(*nConstBool)
	return ok && o.value == n.value
}
func (n *nConstBool) scalarCRC(h *xxhash.Digest) { feedBool(h, n.value) }
func (n *nConstBool) scalarLess(other exprNode) int {
	o := other.(*nConstBool)
	if n.value == o.value {
		return 0
	}
	if !n.value {
		return -1
	}
	return 1
}

/*
 *  constant_string
 */

type nConstString struct{ value string }

func (n *nConstString) Kind() ExprKind  { return KindConstantString }
func (n *nConstString) String() string  { return fmt.Sprintf("%q", n.value) }
func (n *nConstString) subexprs() []*Expr { return nil }
func (n *nConstString) isLeaf() bool    { return true }
func (n *nConstString) rawPtr() uintptr { return uintptr(unsafe.Pointer(n)) }
func (n *nConstString) hash() uint64 {
	h := xxhash.New()
	h.Write([]byte(n.value))
	return h.Sum64()
}
func (n *nConstString) shallowEq(other exprNode) bool {
	o, ok := other.(*nConstString)
	return ok && o.value == n.value
}
func (n *nConstString) scalarCRC(h *xxhash.Digest) { h.Write([]byte(n.value)) }
func (n *nConstString) scalarLess(other exprNode) int {
	o := other.(*nConstString)
	switch {
	case n.value < o.value:
		return -1
	case n.value > o.value:
		return 1
	default:
		return 0
	}
}

/*
 *  symbol
 */

type nSymbol struct {
	name      string
	level     RenameLevel
	level1Num uint32
	level2Num uint32
	threadNum uint32
	nodeNum   uint32
}

func (n *nSymbol) Kind() ExprKind { return KindSymbol }
func (n *nSymbol) String() string {
	switch n.level {
	case Level0:
		return n.name
	case Level1, Level1Global:
		return fmt.Sprintf("%s@%d!%d", n.name, n.threadNum, n.level1Num)
	default:
		return fmt.Sprintf("%s@%d!%d#%d", n.name, n.threadNum, n.level1Num, n.level2Num)
	}
}
func (n *nSymbol) subexprs() []*Expr { return nil }
func (n *nSymbol) isLeaf() bool      { return true }
func (n *nSymbol) rawPtr() uintptr   { return uintptr(unsafe.Pointer(n)) }
func (n *nSymbol) hash() uint64 {
	h := xxhash.New()
	h.Write([]byte(n.name))
	feedUint(h, uint64(n.level))
	feedUint(h, uint64(n.level1Num))
	feedUint(h, uint64(n.level2Num))
	feedUint(h, uint64(n.threadNum))
	feedUint(h, uint64(n.nodeNum))
	return h.Sum64()
}
func (n *nSymbol) shallowEq(other exprNode) bool {
	o, ok := other.(*nSymbol)
	return ok && o.name == n.name && o.level == n.level &&
		o.level1Num == n.level1Num && o.level2Num == n.level2Num &&
		o.threadNum == n.threadNum && o.nodeNum == n.nodeNum
}
func (n *nSymbol) scalarCRC(h *xxhash.Digest) {
	h.Write([]byte(n.name))
	h.Write([]byte{byte(n.level)})
	feedUint(h, uint64(n.level1Num))
	feedUint(h, uint64(n.level2Num))
	feedUint(h, uint64(n.threadNum))
	feedUint(h, uint64(n.nodeNum))
}
func (n *nSymbol) scalarLess(other exprNode) int {
	o := other.(*nSymbol)
	if c := stringsCompare(n.name, o.name); c != 0 {
		return c
	}
	if c := cmpUint(uint64(n.level), uint64(o.level)); c != 0 {
		return c
	}
	if c := cmpUint(uint64(n.level1Num), uint64(o.level1Num)); c != 0 {
		return c
	}
	if c := cmpUint(uint64(n.level2Num), uint64(o.level2Num)); c != 0 {
		return c
	}
	if c := cmpUint(uint64(n.threadNum), uint64(o.threadNum)); c != 0 {
		return c
	}
	return cmpUint(uint64(n.nodeNum), uint64(o.nodeNum))
}

func stringsCompare(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
