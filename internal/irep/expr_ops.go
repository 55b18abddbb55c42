package irep

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

/*
 *  constant_struct / constant_array  (homogeneous operand lists)
 */

type nAggregate struct {
	kind     ExprKind
	children []*Expr
}

func (n *nAggregate) Kind() ExprKind    { return n.kind }
func (n *nAggregate) subexprs() []*Expr { return n.children }
func (n *nAggregate) isLeaf() bool      { return false }
func (n *nAggregate) rawPtr() uintptr   { return uintptr(unsafe.Pointer(n)) }
func (n *nAggregate) String() string {
	parts := make([]string, len(n.children))
	for i, c := range n.children {
		parts[i] = c.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (n *nAggregate) hash() uint64 {
	h := xxhash.New()
	h.Write([]byte{byte(n.kind)})
	for _, c := range n.children {
		feedPtr(h, c.Id())
	}
	return h.Sum64()
}
func (n *nAggregate) shallowEq(other exprNode) bool {
	o, ok := other.(*nAggregate)
	if !ok || o.kind != n.kind || len(o.children) != len(n.children) {
		return false
	}
	for i := range n.children {
		if n.children[i].Id() != o.children[i].Id() {
			return false
		}
	}
	return true
}
func (n *nAggregate) scalarCRC(h *xxhash.Digest)      {}
func (n *nAggregate) scalarLess(other exprNode) int { return 0 }

func feedPtr(h *xxhash.Digest, p uintptr) { feedUint(h, uint64(p)) }

/*
 *  constant_union
 */

type nConstUnion struct {
	field string
	value *Expr
}

func (n *nConstUnion) Kind() ExprKind    { return KindConstantUnion }
func (n *nConstUnion) subexprs() []*Expr { return []*Expr{n.value} }
func (n *nConstUnion) isLeaf() bool      { return false }
func (n *nConstUnion) rawPtr() uintptr   { return uintptr(unsafe.Pointer(n)) }
func (n *nConstUnion) String() string    { return fmt.Sprintf("{.%s = %s}", n.field, n.value) }
func (n *nConstUnion) hash() uint64 {
	h := xxhash.New()
	h.Write([]byte(n.field))
	feedPtr(h, n.value.Id())
	return h.Sum64()
}
func (n *nConstUnion) shallowEq(other exprNode) bool {
	o, ok := other.(*nConstUnion)
	return ok && o.field == n.field && o.value.Id() == n.value.Id()
}
func (n *nConstUnion) scalarCRC(h *xxhash.Digest) { h.Write([]byte(n.field)) }
func (n *nConstUnion) scalarLess(other exprNode) int {
	return stringsCompare(n.field, other.(*nConstUnion).field)
}

/*
 *  constant_array_of
 */

type nConstArrayOf struct{ filler *Expr }

func (n *nConstArrayOf) Kind() ExprKind    { return KindConstantArrayOf }
func (n *nConstArrayOf) subexprs() []*Expr { return []*Expr{n.filler} }
func (n *nConstArrayOf) isLeaf() bool      { return false }
func (n *nConstArrayOf) rawPtr() uintptr   { return uintptr(unsafe.Pointer(n)) }
func (n *nConstArrayOf) String() string    { return fmt.Sprintf("array_of(%s)", n.filler) }
func (n *nConstArrayOf) hash() uint64 {
	h := xxhash.New()
	feedPtr(h, n.filler.Id())
	return h.Sum64()
}
func (n *nConstArrayOf) shallowEq(other exprNode) bool {
	o, ok := other.(*nConstArrayOf)
	return ok && o.filler.Id() == n.filler.Id()
}
func (n *nConstArrayOf) scalarCRC(h *xxhash.Digest)      {}
func (n *nConstArrayOf) scalarLess(other exprNode) int { return 0 }

/*
 *  unary ops: typecast, not, neg, abs, dynamic_object, pointer_offset,
 *  pointer_object, address_of, zero_string, zero_length_string, isnan,
 *  overflow, overflow_neg
 */

type nUnary struct {
	kind  ExprKind
	child *Expr
}

func (n *nUnary) Kind() ExprKind    { return n.kind }
func (n *nUnary) subexprs() []*Expr { return []*Expr{n.child} }
func (n *nUnary) isLeaf() bool      { return false }
func (n *nUnary) rawPtr() uintptr   { return uintptr(unsafe.Pointer(n)) }
func (n *nUnary) String() string    { return fmt.Sprintf("%s(%s)", n.kind, n.child) }
func (n *nUnary) hash() uint64 {
	h := xxhash.New()
	h.Write([]byte{byte(n.kind)})
	feedPtr(h, n.child.Id())
	return h.Sum64()
}
func (n *nUnary) shallowEq(other exprNode) bool {
	o, ok := other.(*nUnary)
	return ok && o.kind == n.kind && o.child.Id() == n.child.Id()
}
func (n *nUnary) scalarCRC(h *xxhash.Digest)      {}
func (n *nUnary) scalarLess(other exprNode) int { return 0 }

/*
 *  overflow_cast(bits)
 */

type nOverflowCast struct {
	child *Expr
	bits  uint
}

func (n *nOverflowCast) Kind() ExprKind    { return KindOverflowCast }
func (n *nOverflowCast) subexprs() []*Expr { return []*Expr{n.child} }
func (n *nOverflowCast) isLeaf() bool      { return false }
func (n *nOverflowCast) rawPtr() uintptr   { return uintptr(unsafe.Pointer(n)) }
func (n *nOverflowCast) String() string    { return fmt.Sprintf("overflow_cast(%s, %d)", n.child, n.bits) }
func (n *nOverflowCast) hash() uint64 {
	h := xxhash.New()
	feedPtr(h, n.child.Id())
	feedUint(h, uint64(n.bits))
	return h.Sum64()
}
func (n *nOverflowCast) shallowEq(other exprNode) bool {
	o, ok := other.(*nOverflowCast)
	return ok && o.child.Id() == n.child.Id() && o.bits == n.bits
}
func (n *nOverflowCast) scalarCRC(h *xxhash.Digest) { feedUint(h, uint64(n.bits)) }
func (n *nOverflowCast) scalarLess(other exprNode) int {
	return cmpUint(uint64(n.bits), uint64(other.(*nOverflowCast).bits))
}

/*
 *  binary ops: comparisons, bitwise, shifts, add/sub/mul/div/modulus,
 *  same_object, index
 */

type nBinary struct {
	kind     ExprKind
	lhs, rhs *Expr
}

func (n *nBinary) Kind() ExprKind    { return n.kind }
func (n *nBinary) subexprs() []*Expr { return []*Expr{n.lhs, n.rhs} }
func (n *nBinary) isLeaf() bool      { return false }
func (n *nBinary) rawPtr() uintptr   { return uintptr(unsafe.Pointer(n)) }
func (n *nBinary) String() string    { return fmt.Sprintf("%s(%s, %s)", n.kind, n.lhs, n.rhs) }
func (n *nBinary) hash() uint64 {
	h := xxhash.New()
	h.Write([]byte{byte(n.kind)})
	feedPtr(h, n.lhs.Id())
	feedPtr(h, n.rhs.Id())
	return h.Sum64()
}
func (n *nBinary) shallowEq(other exprNode) bool {
	o, ok := other.(*nBinary)
	return ok && o.kind == n.kind && o.lhs.Id() == n.lhs.Id() && o.rhs.Id() == n.rhs.Id()
}
func (n *nBinary) scalarCRC(h *xxhash.Digest)      {}
func (n *nBinary) scalarLess(other exprNode) int { return 0 }

/*
 *  n-ary logical ops: and, or, xor, implies
 */

type nNary struct {
	kind     ExprKind
	children []*Expr
}

func (n *nNary) Kind() ExprKind    { return n.kind }
func (n *nNary) subexprs() []*Expr { return n.children }
func (n *nNary) isLeaf() bool      { return false }
func (n *nNary) rawPtr() uintptr   { return uintptr(unsafe.Pointer(n)) }
func (n *nNary) String() string {
	parts := make([]string, len(n.children))
	for i, c := range n.children {
		parts[i] = c.String()
	}
	return fmt.Sprintf("%s(%s)", n.kind, strings.Join(parts, ", "))
}
func (n *nNary) hash() uint64 {
	h := xxhash.New()
	h.Write([]byte{byte(n.kind)})
	for _, c := range n.children {
		feedPtr(h, c.Id())
	}
	return h.Sum64()
}
func (n *nNary) shallowEq(other exprNode) bool {
	o, ok := other.(*nNary)
	if !ok || o.kind != n.kind || len(o.children) != len(n.children) {
		return false
	}
	for i := range n.children {
		if n.children[i].Id() != o.children[i].Id() {
			return false
		}
	}
	return true
}
func (n *nNary) scalarCRC(h *xxhash.Digest)      {}
func (n *nNary) scalarLess(other exprNode) int { return 0 }

/*
 *  if
 */

type nIf struct{ cond, t, f *Expr }

func (n *nIf) Kind() ExprKind    { return KindIf }
func (n *nIf) subexprs() []*Expr { return []*Expr{n.cond, n.t, n.f} }
func (n *nIf) isLeaf() bool      { return false }
func (n *nIf) rawPtr() uintptr   { return uintptr(unsafe.Pointer(n)) }
func (n *nIf) String() string    { return fmt.Sprintf("if(%s, %s, %s)", n.cond, n.t, n.f) }
func (n *nIf) hash() uint64 {
	h := xxhash.New()
	feedPtr(h, n.cond.Id())
	feedPtr(h, n.t.Id())
	feedPtr(h, n.f.Id())
	return h.Sum64()
}
func (n *nIf) shallowEq(other exprNode) bool {
	o, ok := other.(*nIf)
	return ok && o.cond.Id() == n.cond.Id() && o.t.Id() == n.t.Id() && o.f.Id() == n.f.Id()
}
func (n *nIf) scalarCRC(h *xxhash.Digest)      {}
func (n *nIf) scalarLess(other exprNode) int { return 0 }

/*
 *  byte_extract / byte_update
 */

type nByteExtract struct {
	source, offset *Expr
	bigEndian      bool
}

func (n *nByteExtract) Kind() ExprKind    { return KindByteExtract }
func (n *nByteExtract) subexprs() []*Expr { return []*Expr{n.source, n.offset} }
func (n *nByteExtract) isLeaf() bool      { return false }
func (n *nByteExtract) rawPtr() uintptr   { return uintptr(unsafe.Pointer(n)) }
func (n *nByteExtract) String() string {
	return fmt.Sprintf("byte_extract(%s, %s, be=%v)", n.source, n.offset, n.bigEndian)
}
func (n *nByteExtract) hash() uint64 {
	h := xxhash.New()
	feedPtr(h, n.source.Id())
	feedPtr(h, n.offset.Id())
	feedBool(h, n.bigEndian)
	return h.Sum64()
}
func (n *nByteExtract) shallowEq(other exprNode) bool {
	o, ok := other.(*nByteExtract)
	return ok && o.source.Id() == n.source.Id() && o.offset.Id() == n.offset.Id() && o.bigEndian == n.bigEndian
}
func (n *nByteExtract) scalarCRC(h *xxhash.Digest) { feedBool(h, n.bigEndian) }
func (n *nByteExtract) scalarLess(other exprNode) int {
	o := other.(*nByteExtract)
	return boolLess(n.bigEndian, o.bigEndian)
}

func boolLess(a, b bool) int {
	if a == b {
		return 0
	}
	if !a {
		return -1
	}
	return 1
}

type nByteUpdate struct {
	source, offset, value *Expr
	bigEndian              bool
}

func (n *nByteUpdate) Kind() ExprKind    { return KindByteUpdate }
func (n *nByteUpdate) subexprs() []*Expr { return []*Expr{n.source, n.offset, n.value} }
func (n *nByteUpdate) isLeaf() bool      { return false }
func (n *nByteUpdate) rawPtr() uintptr   { return uintptr(unsafe.Pointer(n)) }
func (n *nByteUpdate) String() string {
	return fmt.Sprintf("byte_update(%s, %s, %s, be=%v)", n.source, n.offset, n.value, n.bigEndian)
}
func (n *nByteUpdate) hash() uint64 {
	h := xxhash.New()
	feedPtr(h, n.source.Id())
	feedPtr(h, n.offset.Id())
	feedPtr(h, n.value.Id())
	feedBool(h, n.bigEndian)
	return h.Sum64()
}
func (n *nByteUpdate) shallowEq(other exprNode) bool {
	o, ok := other.(*nByteUpdate)
	return ok && o.source.Id() == n.source.Id() && o.offset.Id() == n.offset.Id() &&
		o.value.Id() == n.value.Id() && o.bigEndian == n.bigEndian
}
func (n *nByteUpdate) scalarCRC(h *xxhash.Digest) { feedBool(h, n.bigEndian) }
func (n *nByteUpdate) scalarLess(other exprNode) int {
	return boolLess(n.bigEndian, other.(*nByteUpdate).bigEndian)
}

/*
 *  with (array element update or struct/union member update)
 */

type nWith struct {
	source, value *Expr
	index         *Expr // nil if member-based
	field         string
	isMember      bool
}

func (n *nWith) Kind() ExprKind { return KindWith }
func (n *nWith) subexprs() []*Expr {
	if n.isMember {
		return []*Expr{n.source, n.value}
	}
	return []*Expr{n.source, n.index, n.value}
}
func (n *nWith) isLeaf() bool    { return false }
func (n *nWith) rawPtr() uintptr { return uintptr(unsafe.Pointer(n)) }
func (n *nWith) String() string {
	if n.isMember {
		return fmt.Sprintf("with(%s, .%s, %s)", n.source, n.field, n.value)
	}
	return fmt.Sprintf("with(%s, [%s], %s)", n.source, n.index, n.value)
}
func (n *nWith) hash() uint64 {
	h := xxhash.New()
	feedPtr(h, n.source.Id())
	feedBool(h, n.isMember)
	if n.isMember {
		h.Write([]byte(n.field))
	} else {
		feedPtr(h, n.index.Id())
	}
	feedPtr(h, n.value.Id())
	return h.Sum64()
}
func (n *nWith) shallowEq(other exprNode) bool {
	o, ok := other.(*nWith)
	if !ok || o.isMember != n.isMember || o.source.Id() != n.source.Id() || o.value.Id() != n.value.Id() {
		return false
	}
	if n.isMember {
		return o.field == n.field
	}
	return o.index.Id() == n.index.Id()
}
func (n *nWith) scalarCRC(h *xxhash.Digest) {
	feedBool(h, n.isMember)
	if n.isMember {
		h.Write([]byte(n.field))
	}
}
func (n *nWith) scalarLess(other exprNode) int {
	o := other.(*nWith)
	if c := boolLess(n.isMember, o.isMember); c != 0 {
		return c
	}
	if n.isMember {
		return stringsCompare(n.field, o.field)
	}
	return 0
}

/*
 *  member
 */

type nMember struct {
	source *Expr
	field  string
}

func (n *nMember) Kind() ExprKind    { return KindMember }
func (n *nMember) subexprs() []*Expr { return []*Expr{n.source} }
func (n *nMember) isLeaf() bool      { return false }
func (n *nMember) rawPtr() uintptr   { return uintptr(unsafe.Pointer(n)) }
func (n *nMember) String() string    { return fmt.Sprintf("%s.%s", n.source, n.field) }
func (n *nMember) hash() uint64 {
	h := xxhash.New()
	feedPtr(h, n.source.Id())
	h.Write([]byte(n.field))
	return h.Sum64()
}
func (n *nMember) shallowEq(other exprNode) bool {
	o, ok := other.(*nMember)
	return ok && o.source.Id() == n.source.Id() && o.field == n.field
}
func (n *nMember) scalarCRC(h *xxhash.Digest) { h.Write([]byte(n.field)) }
func (n *nMember) scalarLess(other exprNode) int {
	return stringsCompare(n.field, other.(*nMember).field)
}
