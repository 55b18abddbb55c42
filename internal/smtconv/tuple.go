package smtconv

import (
	"fmt"

	"github.com/fbrausse/esbmc/internal/irep"
	"github.com/fbrausse/esbmc/internal/smt"
)

// tupleAst represents a struct/union value that has been flattened to
// a family of per-field ASTs rather than a native solver tuple, per
// spec.md §4.5.5 and original_source/solvers/smt/smt_conv.h's
// "tuple-by-symbol" scheme ("tuple and array operations are performed
// via virtual function calls ... tuples are decomposed into sets of
// variables"). Every Backend this module ships (z3, smtlib) lacks
// native tuple sorts, so this is always the active representation;
// Config.TupleSupportNative is carried for a future solver that does.
type tupleAst struct {
	sort   *smt.Sort
	typ    *irep.Type
	fields []smt.Ast // one entry per member, in declaration order
}

func (t *tupleAst) Sort() *smt.Sort { return t.sort }

func (c *Converter) tupleSort(t *irep.Type) (*smt.Sort, error) {
	members, names := t.Members()
	fieldSorts := make([]*smt.Sort, len(members))
	for i, m := range members {
		s, err := c.sortOf(m)
		if err != nil {
			return nil, err
		}
		fieldSorts[i] = s
	}
	if t.Kind() == irep.KindUnion {
		return c.backend.MkUnionSort(fieldSorts, names), nil
	}
	return c.backend.MkStructSort(fieldSorts, names), nil
}

// tupleSymbol materializes a struct/union symbol as one dotted-suffix
// solver symbol per member ("tuple-by-symbol", GLOSSARY), the same
// prefix-sharing scheme tuple_project_sym implements in the original.
func (c *Converter) tupleSymbol(name string, typ *irep.Type) (smt.Ast, error) {
	sort, err := c.tupleSort(typ)
	if err != nil {
		return nil, err
	}
	members, names := typ.Members()
	fields := make([]smt.Ast, len(members))
	for i, m := range members {
		fs, err := c.sortOf(m)
		if err != nil {
			return nil, err
		}
		if m.Kind() == irep.KindStruct || m.Kind() == irep.KindUnion {
			fields[i], err = c.tupleSymbol(name+"."+names[i], m)
			if err != nil {
				return nil, err
			}
			continue
		}
		fields[i] = c.backend.MkSmtSymbol(name+"."+names[i], fs)
	}
	return &tupleAst{sort: sort, typ: typ, fields: fields}, nil
}

func (c *Converter) convertTupleConstant(e *irep.Expr) (smt.Ast, error) {
	typ := e.Type()
	sort, err := c.tupleSort(typ)
	if err != nil {
		return nil, err
	}
	members, names := typ.Members()
	fields := make([]smt.Ast, len(members))
	if e.Kind() == irep.KindConstantUnion {
		target := e.UnionField()
		for i, n := range names {
			if n == target {
				fields[i], err = c.ConvertAST(e.Operands()[0])
			} else {
				fields[i], err = c.zeroOf(members[i])
			}
			if err != nil {
				return nil, err
			}
		}
		return &tupleAst{sort: sort, typ: typ, fields: fields}, nil
	}
	for i, op := range e.Operands() {
		fields[i], err = c.ConvertAST(op)
		if err != nil {
			return nil, err
		}
	}
	return &tupleAst{sort: sort, typ: typ, fields: fields}, nil
}

func (c *Converter) zeroOf(t *irep.Type) (smt.Ast, error) {
	switch t.Kind() {
	case irep.KindBool:
		return c.backend.MkSmtBool(false), nil
	case irep.KindUnsignedBV, irep.KindSignedBV, irep.KindFixedBV:
		return c.backend.MkSmtBVInt(zeroBV(t.BVWidth()), false), nil
	case irep.KindStruct, irep.KindUnion:
		sort, err := c.tupleSort(t)
		if err != nil {
			return nil, err
		}
		members, _ := t.Members()
		fields := make([]smt.Ast, len(members))
		for i, m := range members {
			fields[i], err = c.zeroOf(m)
			if err != nil {
				return nil, err
			}
		}
		return &tupleAst{sort: sort, typ: t, fields: fields}, nil
	default:
		return nil, fmt.Errorf("smtconv: no zero value for type kind %v", t.Kind())
	}
}

func (c *Converter) convertMember(e *irep.Expr) (smt.Ast, error) {
	ops := e.Operands()
	src, err := c.ConvertAST(ops[0])
	if err != nil {
		return nil, err
	}
	t, ok := src.(*tupleAst)
	if !ok {
		return nil, &ErrSortMismatch{Op: "member", Detail: "source did not flatten to a tuple ast"}
	}
	_, names := ops[0].Type().Members()
	for i, n := range names {
		if n == e.MemberField() {
			return t.fields[i], nil
		}
	}
	return nil, &ErrSortMismatch{Op: "member", Detail: fmt.Sprintf("field %q not found", e.MemberField())}
}

func (c *Converter) tupleEquality(a, b *irep.Expr) (smt.Ast, error) {
	av, err := c.ConvertAST(a)
	if err != nil {
		return nil, err
	}
	bv, err := c.ConvertAST(b)
	if err != nil {
		return nil, err
	}
	at, ok1 := av.(*tupleAst)
	bt, ok2 := bv.(*tupleAst)
	if !ok1 || !ok2 || len(at.fields) != len(bt.fields) {
		return nil, &ErrSortMismatch{Op: "tuple_equality", Detail: "operands do not flatten to tuples with matching field lists"}
	}
	conj := make([]smt.Ast, len(at.fields))
	for i := range at.fields {
		sub, err := c.fieldEquality(at.fields[i], bt.fields[i])
		if err != nil {
			return nil, err
		}
		conj[i] = sub
	}
	return c.MakeConjunct(conj)
}

func (c *Converter) fieldEquality(a, b smt.Ast) (smt.Ast, error) {
	if at, ok := a.(*tupleAst); ok {
		bt := b.(*tupleAst)
		conj := make([]smt.Ast, len(at.fields))
		for i := range at.fields {
			sub, err := c.fieldEquality(at.fields[i], bt.fields[i])
			if err != nil {
				return nil, err
			}
			conj[i] = sub
		}
		return c.MakeConjunct(conj)
	}
	return c.backend.MkFuncApp(smt.BoolSort(), smt.EQ, a, b)
}

func (c *Converter) tupleIte(cond, t, f smt.Ast, typ *irep.Type) (smt.Ast, error) {
	tt, ok1 := t.(*tupleAst)
	ft, ok2 := f.(*tupleAst)
	if !ok1 || !ok2 {
		return nil, &ErrSortMismatch{Op: "tuple_ite", Detail: "one or both branches did not flatten to a tuple ast"}
	}
	sort, err := c.tupleSort(typ)
	if err != nil {
		return nil, err
	}
	fields := make([]smt.Ast, len(tt.fields))
	for i := range fields {
		fields[i], err = c.fieldIte(cond, tt.fields[i], ft.fields[i])
		if err != nil {
			return nil, err
		}
	}
	return &tupleAst{sort: sort, typ: typ, fields: fields}, nil
}

func (c *Converter) fieldIte(cond, t, f smt.Ast) (smt.Ast, error) {
	if tt, ok := t.(*tupleAst); ok {
		ft := f.(*tupleAst)
		fields := make([]smt.Ast, len(tt.fields))
		var err error
		for i := range fields {
			fields[i], err = c.fieldIte(cond, tt.fields[i], ft.fields[i])
			if err != nil {
				return nil, err
			}
		}
		return &tupleAst{sort: tt.sort, typ: tt.typ, fields: fields}, nil
	}
	return c.backend.MkFuncApp(t.Sort(), smt.ITE, cond, t, f)
}

// convertWith on a struct/union source is a field update: tuple_create
// with one field replaced, the "tuple_update" operation of smt_conv.h.
func (c *Converter) convertWith(e *irep.Expr) (smt.Ast, error) {
	source := e.Operands()[0]
	if source.Type().Kind() == irep.KindStruct || source.Type().Kind() == irep.KindUnion {
		return c.convertTupleWith(e)
	}
	return c.convertArrayWith(e)
}

func (c *Converter) convertTupleWith(e *irep.Expr) (smt.Ast, error) {
	ops := e.Operands()
	src, err := c.ConvertAST(ops[0])
	if err != nil {
		return nil, err
	}
	t, ok := src.(*tupleAst)
	if !ok {
		return nil, &ErrSortMismatch{Op: "with", Detail: "source did not flatten to a tuple ast"}
	}
	value, err := c.ConvertAST(ops[1])
	if err != nil {
		return nil, err
	}
	_, names := ops[0].Type().Members()
	fields := append([]smt.Ast(nil), t.fields...)
	for i, n := range names {
		if n == e.MemberField() {
			fields[i] = value
			break
		}
	}
	return &tupleAst{sort: t.sort, typ: t.typ, fields: fields}, nil
}
