package smtconv

import (
	"fmt"

	"github.com/fbrausse/esbmc/internal/bigbv"
	"github.com/fbrausse/esbmc/internal/irep"
	"github.com/fbrausse/esbmc/internal/smt"
)

// tupleArrayAst represents an array whose element type is a struct or
// union, flattened into one native solver array per field (spec.md
// §4.5.5 "arrays of tuples as arrays of per-field sub-arrays"), the Go
// analogue of smt_conv.h's tuple_array_get/decompose_store_chain pair.
type tupleArrayAst struct {
	sort   *smt.Sort
	elemTy *irep.Type
	fields map[string]smt.Ast // field name -> native array Ast
	order  []string
}

func (a *tupleArrayAst) Sort() *smt.Sort { return a.sort }

func (c *Converter) arraySort(t *irep.Type) (*smt.Sort, error) {
	elem := t.Elem()
	dom := c.arrayDomainSort(t)
	if elem.Kind() == irep.KindStruct || elem.Kind() == irep.KindUnion {
		// Sort shape is nominal here; field sub-sorts live on the
		// tupleArrayAst value, not on *smt.Sort, mirroring the native
		// array-of-struct flattening smt_conv.h performs per field.
		return smt.ArraySort(dom, smt.BoolSort()), nil
	}
	rng, err := c.sortOf(elem)
	if err != nil {
		return nil, err
	}
	if rng.Kind == smt.SortBool && !c.cfg.AllowBoolInArrayRange {
		rng = smt.BVSort(1)
	}
	return smt.ArraySort(dom, rng), nil
}

// arrayDomainSort picks the index bitvector width, calculate_array_domain_width
// in smt_conv.h: wide enough for the element count, or the machine word
// width for an infinite/dynamically-sized array.
func (c *Converter) arrayDomainSort(t *irep.Type) *smt.Sort {
	size, infinite := t.ArraySize()
	if infinite {
		return smt.BVSort(c.cfg.MachineWordWidth)
	}
	if n, ok := size.ConstantUint(); ok {
		return smt.BVSort(bitsFor(n))
	}
	return smt.BVSort(c.cfg.MachineWordWidth)
}

func (c *Converter) convertArrayConstant(e *irep.Expr) (smt.Ast, error) {
	typ := e.Type()
	elem := typ.Elem()
	if elem.Kind() == irep.KindStruct || elem.Kind() == irep.KindUnion {
		return c.convertTupleArrayConstant(e)
	}
	sort, err := c.arraySort(typ)
	if err != nil {
		return nil, err
	}
	if e.Kind() == irep.KindConstantArrayOf {
		return c.convertArrayOf(e, sort)
	}
	// constant_array: build up via repeated STORE onto a fresh free
	// array, since neither backend exposes array literals directly.
	base := c.backend.MkSmtSymbol(fmt.Sprintf("array_lit$%p", e), sort)
	for i, op := range e.Operands() {
		v, err := c.ConvertAST(op)
		if err != nil {
			return nil, err
		}
		idx := c.backend.MkSmtBVInt(bigbv.FromInt64(int64(i), sort.Domain.Width), false)
		base, err = c.backend.MkFuncApp(sort, smt.STORE, base, idx, v)
		if err != nil {
			return nil, err
		}
	}
	return base, nil
}

func (c *Converter) convertArrayOf(e *irep.Expr, sort *smt.Sort) (smt.Ast, error) {
	filler, err := c.ConvertAST(e.Operands()[0])
	if err != nil {
		return nil, err
	}
	if c.cfg.CanInitializeInfiniteArrays {
		return c.backend.MkFuncApp(sort, smt.STORE, c.backend.MkSmtSymbol(fmt.Sprintf("array_of$%p", e), sort), c.backend.MkSmtBVInt(bigbv.FromInt64(0, sort.Domain.Width), false), filler)
	}
	// Without native array_of support the source falls back to a free
	// array plus an assertion that a representative element equals the
	// filler (smt_conv.h's convert_array_of_prep "ugly, but works").
	free := c.backend.MkSmtSymbol(fmt.Sprintf("array_of$%p", e), sort)
	probe := c.backend.MkSmtBVInt(bigbv.FromInt64(0, sort.Domain.Width), false)
	sel, err := c.backend.MkFuncApp(sort.Range, smt.SELECT, free, probe)
	if err != nil {
		return nil, err
	}
	eq, err := c.backend.MkFuncApp(smt.BoolSort(), smt.EQ, sel, filler)
	if err != nil {
		return nil, err
	}
	if err := c.backend.AssertAst(eq); err != nil {
		return nil, err
	}
	return free, nil
}

func (c *Converter) convertTupleArrayConstant(e *irep.Expr) (smt.Ast, error) {
	typ := e.Type()
	elem := typ.Elem()
	dom := c.arrayDomainSort(typ)
	members, names := elem.Members()
	fields := map[string]smt.Ast{}
	for i, m := range members {
		rng, err := c.sortOf(m)
		if err != nil {
			return nil, err
		}
		fields[names[i]] = c.backend.MkSmtSymbol(fmt.Sprintf("array_lit$%p.%s", e, names[i]), smt.ArraySort(dom, rng))
	}
	for i, op := range e.Operands() {
		v, err := c.ConvertAST(op)
		if err != nil {
			return nil, err
		}
		t, ok := v.(*tupleAst)
		if !ok {
			return nil, &ErrSortMismatch{Op: "tuple_array_constant", Detail: "element did not flatten to a tuple ast"}
		}
		idx := c.backend.MkSmtBVInt(bigbv.FromInt64(int64(i), dom.Width), false)
		for j, n := range names {
			sort := fields[n].Sort()
			fields[n], err = c.backend.MkFuncApp(sort, smt.STORE, fields[n], idx, t.fields[j])
			if err != nil {
				return nil, err
			}
		}
	}
	sort, _ := c.arraySort(typ)
	return &tupleArrayAst{sort: sort, elemTy: elem, fields: fields, order: names}, nil
}

func (c *Converter) convertIndex(e *irep.Expr) (smt.Ast, error) {
	ops := e.Operands()
	base, err := c.ConvertAST(ops[0])
	if err != nil {
		return nil, err
	}
	idx, err := c.ConvertAST(ops[1])
	if err != nil {
		return nil, err
	}
	if ta, ok := base.(*tupleArrayAst); ok {
		sort, err := c.tupleSort(ta.elemTy)
		if err != nil {
			return nil, err
		}
		fields := make([]smt.Ast, len(ta.order))
		for i, n := range ta.order {
			fields[i], err = c.backend.MkFuncApp(ta.fields[n].Sort().Range, smt.SELECT, ta.fields[n], idx)
			if err != nil {
				return nil, err
			}
		}
		return &tupleAst{sort: sort, typ: ta.elemTy, fields: fields}, nil
	}
	sort, err := c.sortOf(e.Type())
	if err != nil {
		return nil, err
	}
	return c.backend.MkFuncApp(sort, smt.SELECT, base, idx)
}

func (c *Converter) convertArrayWith(e *irep.Expr) (smt.Ast, error) {
	ops := e.Operands()
	base, err := c.ConvertAST(ops[0])
	if err != nil {
		return nil, err
	}
	idx, err := c.ConvertAST(ops[1])
	if err != nil {
		return nil, err
	}
	value, err := c.ConvertAST(ops[2])
	if err != nil {
		return nil, err
	}
	if ta, ok := base.(*tupleArrayAst); ok {
		vt, ok := value.(*tupleAst)
		if !ok {
			return nil, &ErrSortMismatch{Op: "array_with", Detail: "update value did not flatten to a tuple ast"}
		}
		out := &tupleArrayAst{sort: ta.sort, elemTy: ta.elemTy, fields: map[string]smt.Ast{}, order: ta.order}
		for i, n := range ta.order {
			out.fields[n], err = c.backend.MkFuncApp(ta.fields[n].Sort(), smt.STORE, ta.fields[n], idx, vt.fields[i])
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	return c.backend.MkFuncApp(base.Sort(), smt.STORE, base, idx, value)
}
