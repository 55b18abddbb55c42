package smtconv

import (
	"fmt"

	"github.com/fbrausse/esbmc/internal/bigbv"
	"github.com/fbrausse/esbmc/internal/irep"
	"github.com/fbrausse/esbmc/internal/smt"
)

// addressSpace implements spec.md §4.5.4's pointer flattening: a
// pointer value is a two-field tuple {object: bv, offset: bv}. Object
// ids and their (start, end) extents are kept in a Go-side table per
// context level; no solver-level address-space array is emitted, so the
// extents never reach the solver — grounded on
// original_source/solvers/smt/smt_conv.h's pointer_struct/
// addr_space_data/addr_space_sym_num fields ("init_addr_space_array",
// "bump_addrspace_array", "get_cur_addrspace_ident").
type addressSpace struct {
	c *Converter

	width      uint
	nextObject uint64

	// addr_space_data: one map per context level, object id -> (start, end)
	// byte offsets into the fictitious flat memory; restored wholesale on
	// PopCtx the way the source's std::list<std::map<...>> stack does.
	levels []map[uint64]objRange

	// addr_space_sym_num: a per-level counter pushed and popped with
	// levels; nothing reads it, since no address-space array symbol is
	// emitted.
	symNum []uint
}

type objRange struct{ start, end uint64 }

func newAddressSpace(c *Converter) *addressSpace {
	a := &addressSpace{c: c, width: c.cfg.MachineWordWidth}
	if a.width == 0 {
		a.width = 64
	}
	a.levels = []map[uint64]objRange{{}}
	a.symNum = []uint{0}
	// object id 0 is reserved for NULL, matching pointer_logict's
	// convention that the null pointer has object number zero.
	a.nextObject = 1
	return a
}

func (a *addressSpace) push() {
	top := map[uint64]objRange{}
	for k, v := range a.levels[len(a.levels)-1] {
		top[k] = v
	}
	a.levels = append(a.levels, top)
	a.symNum = append(a.symNum, a.symNum[len(a.symNum)-1])
}

func (a *addressSpace) pop() {
	a.levels = a.levels[:len(a.levels)-1]
	a.symNum = a.symNum[:len(a.symNum)-1]
}

func (a *addressSpace) pointerSort() *smt.Sort {
	return smt.StructSort([]*smt.Sort{smt.BVSort(a.width), smt.BVSort(a.width)}, []string{"object", "offset"})
}

func (a *addressSpace) symbol(name string) (smt.Ast, error) {
	sort := a.pointerSort()
	obj := a.c.backend.MkSmtSymbol(name+".object", sort.Fields[0])
	off := a.c.backend.MkSmtSymbol(name+".offset", sort.Fields[1])
	return &tupleAst{sort: sort, fields: []smt.Ast{obj, off}}, nil
}

func (a *addressSpace) makePointer(obj, off smt.Ast) *tupleAst {
	return &tupleAst{sort: a.pointerSort(), fields: []smt.Ast{obj, off}}
}

// allocate reserves a fresh object id for an address_of conversion and
// records its [start, end) extent in the current level, per
// finalize_pointer_chain/init_addr_space_array in the original.
func (a *addressSpace) allocate(size uint64) uint64 {
	id := a.nextObject
	a.nextObject++
	top := a.levels[len(a.levels)-1]
	var start uint64
	for _, r := range top {
		if r.end > start {
			start = r.end
		}
	}
	top[id] = objRange{start: start, end: start + size}
	return id
}

func (a *addressSpace) convertAddressOf(e *irep.Expr) (smt.Ast, error) {
	pointee := e.Operands()[0]
	size, err := a.sizeOf(pointee.Type())
	if err != nil {
		return nil, err
	}
	id := a.allocate(size)
	obj := a.c.backend.MkSmtBVInt(bigbv.FromInt64(int64(id), a.width), false)
	off := a.c.backend.MkSmtBVInt(zeroBV(a.width), false)
	return a.makePointer(obj, off), nil
}

// sizeOf returns the byte size used purely for address-space bookkeeping.
// A dynamically-sized array type has no fixed size; spec.md §9's design
// note calls the original's silent `1`-byte fallback a bug and requires
// this to surface as a typed failure instead.
func (a *addressSpace) sizeOf(t *irep.Type) (uint64, error) {
	w, err := t.Width()
	if err != nil {
		return 0, fmt.Errorf("smtconv: address_of of dynamically-sized type: %w", err)
	}
	return (uint64(w) + 7) / 8, nil
}

func (a *addressSpace) convertSameObject(e *irep.Expr) (smt.Ast, error) {
	ops := e.Operands()
	lhs, err := a.c.ConvertAST(ops[0])
	if err != nil {
		return nil, err
	}
	rhs, err := a.c.ConvertAST(ops[1])
	if err != nil {
		return nil, err
	}
	lt, rt := lhs.(*tupleAst), rhs.(*tupleAst)
	return a.c.backend.MkFuncApp(smt.BoolSort(), smt.EQ, lt.fields[0], rt.fields[0])
}

func (a *addressSpace) convertPointerOffset(e *irep.Expr) (smt.Ast, error) {
	ptr, err := a.c.ConvertAST(e.Operands()[0])
	if err != nil {
		return nil, err
	}
	return ptr.(*tupleAst).fields[1], nil
}

func (a *addressSpace) convertPointerObject(e *irep.Expr) (smt.Ast, error) {
	ptr, err := a.c.ConvertAST(e.Operands()[0])
	if err != nil {
		return nil, err
	}
	return ptr.(*tupleAst).fields[0], nil
}

// pointerEquality implements spec.md §4.5.4's pointer equality: two
// pointers are equal iff they name the same object AND have the same
// offset into it, the flattened-tuple equivalent of same_object(p, q)
// && p.offset == q.offset.
func (a *addressSpace) pointerEquality(lhs, rhs *irep.Expr) (smt.Ast, error) {
	l, err := a.c.ConvertAST(lhs)
	if err != nil {
		return nil, err
	}
	r, err := a.c.ConvertAST(rhs)
	if err != nil {
		return nil, err
	}
	lt, ok1 := l.(*tupleAst)
	rt, ok2 := r.(*tupleAst)
	if !ok1 || !ok2 {
		return nil, &ErrSortMismatch{Op: "pointer_equality", Detail: "operand did not flatten to a pointer tuple ast"}
	}
	objEq, err := a.c.backend.MkFuncApp(smt.BoolSort(), smt.EQ, lt.fields[0], rt.fields[0])
	if err != nil {
		return nil, err
	}
	offEq, err := a.c.backend.MkFuncApp(smt.BoolSort(), smt.EQ, lt.fields[1], rt.fields[1])
	if err != nil {
		return nil, err
	}
	return a.c.MakeConjunct([]smt.Ast{objEq, offEq})
}

func (a *addressSpace) convertDynamicObject(e *irep.Expr) (smt.Ast, error) {
	// Stack/static allocations (the only ones this converter assigns
	// object ids to) are never dynamic; heap objects would need a
	// tracked allocation-kind bit, which malloc modelling (a Non-goal)
	// would populate.
	return a.c.backend.MkSmtBool(false), nil
}
