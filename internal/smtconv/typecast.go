package smtconv

import (
	"fmt"

	"github.com/fbrausse/esbmc/internal/bigbv"
	"github.com/fbrausse/esbmc/internal/irep"
	"github.com/fbrausse/esbmc/internal/smt"
)

// convertTypecast dispatches to one of the per-shape converters the
// original's smt_convt keeps as separate virtual methods
// (convert_typecast_bool/to_ints/to_ptr/from_ptr/struct), spec.md §4.5.7.
func (c *Converter) convertTypecast(e *irep.Expr) (smt.Ast, error) {
	from := e.Operands()[0]
	to := e.Type()

	if to.Kind() == irep.KindBool {
		return c.convertTypecastToBool(from)
	}
	if from.Type().Kind() == irep.KindBool && isBVType(to) {
		return c.convertTypecastFromBool(from, to)
	}
	if to.Kind() == irep.KindPointer {
		return c.convertTypecastToPointer(from, to)
	}
	if from.Type().Kind() == irep.KindPointer && isBVType(to) {
		return c.convertTypecastFromPointer(from, to)
	}
	if to.Kind() == irep.KindStruct || to.Kind() == irep.KindUnion {
		return c.convertTypecastStruct(from, to)
	}
	if isBVType(from.Type()) && isBVType(to) {
		return c.convertTypecastBVWidth(from, to)
	}
	return c.ConvertAST(from)
}

func isBVType(t *irep.Type) bool {
	switch t.Kind() {
	case irep.KindUnsignedBV, irep.KindSignedBV, irep.KindFixedBV:
		return true
	default:
		return false
	}
}

func (c *Converter) convertTypecastToBool(from *irep.Expr) (smt.Ast, error) {
	a, err := c.ConvertAST(from)
	if err != nil {
		return nil, err
	}
	if from.Type().Kind() == irep.KindBool {
		return a, nil
	}
	zero := c.backend.MkSmtBVInt(zeroBV(from.Type().BVWidth()), false)
	return c.backend.MkFuncApp(smt.BoolSort(), smt.NOTEQ, a, zero)
}

func (c *Converter) convertTypecastFromBool(from *irep.Expr, to *irep.Type) (smt.Ast, error) {
	a, err := c.ConvertAST(from)
	if err != nil {
		return nil, err
	}
	width := to.BVWidth()
	sort := smt.BVSort(width)
	one := c.backend.MkSmtBVInt(bigbv.FromInt64(1, width), false)
	zero := c.backend.MkSmtBVInt(zeroBV(width), false)
	return c.backend.MkFuncApp(sort, smt.ITE, a, one, zero)
}

// convertTypecastBVWidth widens or narrows a bitvector between the
// declared widths: narrowing extracts the low bits, widening concatenates
// a zero or sign pad. Constant operands take the same path; nothing is
// folded here.
func (c *Converter) convertTypecastBVWidth(from *irep.Expr, to *irep.Type) (smt.Ast, error) {
	a, err := c.ConvertAST(from)
	if err != nil {
		return nil, err
	}
	fromWidth := from.Type().BVWidth()
	toWidth := to.BVWidth()
	if fromWidth == toWidth {
		return a, nil
	}
	if fromWidth > toWidth {
		return c.backend.MkExtract(a, toWidth-1, 0, smt.BVSort(toWidth))
	}
	extraBits := toWidth - fromWidth
	signed := from.Type().Kind() == irep.KindSignedBV
	var pad smt.Ast
	if signed {
		topBit, err := c.backend.MkExtract(a, fromWidth-1, fromWidth-1, smt.BVSort(1))
		if err != nil {
			return nil, err
		}
		one := c.backend.MkSmtBVInt(bigbv.FromInt64(1, 1), false)
		isNeg, err := c.backend.MkFuncApp(smt.BoolSort(), smt.EQ, topBit, one)
		if err != nil {
			return nil, err
		}
		ones := c.backend.MkSmtBVInt(bigbv.FromString(allOnesHex(extraBits), 16, extraBits), false)
		zeros := c.backend.MkSmtBVInt(zeroBV(extraBits), false)
		pad, err = c.backend.MkFuncApp(smt.BVSort(extraBits), smt.ITE, isNeg, ones, zeros)
		if err != nil {
			return nil, err
		}
	} else {
		pad = c.backend.MkSmtBVInt(zeroBV(extraBits), false)
	}
	return c.backend.MkFuncApp(smt.BVSort(toWidth), smt.CONCAT, pad, a)
}

func allOnesHex(width uint) string {
	nibbles := (width + 3) / 4
	s := make([]byte, nibbles)
	for i := range s {
		s[i] = 'f'
	}
	return string(s)
}

func (c *Converter) convertTypecastToPointer(from *irep.Expr, to *irep.Type) (smt.Ast, error) {
	if from.Type().Kind() == irep.KindPointer {
		return c.ConvertAST(from)
	}
	// int-to-pointer: object 0 (meaning "no tracked object", matching the
	// NULL/invalid-pointer object id convention) with the integer value
	// stashed as the offset.
	a, err := c.ConvertAST(from)
	if err != nil {
		return nil, err
	}
	width := c.addrs.width
	widened := a
	if a.Sort().Width < width {
		pad := c.backend.MkSmtBVInt(zeroBV(width-a.Sort().Width), false)
		widened, err = c.backend.MkFuncApp(smt.BVSort(width), smt.CONCAT, pad, a)
		if err != nil {
			return nil, err
		}
	} else if a.Sort().Width > width {
		widened, err = c.backend.MkExtract(a, width-1, 0, smt.BVSort(width))
		if err != nil {
			return nil, err
		}
	}
	obj := c.backend.MkSmtBVInt(zeroBV(width), false)
	return c.addrs.makePointer(obj, widened), nil
}

func (c *Converter) convertTypecastFromPointer(from *irep.Expr, to *irep.Type) (smt.Ast, error) {
	a, err := c.ConvertAST(from)
	if err != nil {
		return nil, err
	}
	t, ok := a.(*tupleAst)
	if !ok {
		return nil, &ErrSortMismatch{Op: "typecast_from_pointer", Detail: "source did not flatten to a tuple pointer ast"}
	}
	offset := t.fields[1]
	toWidth := to.BVWidth()
	if offset.Sort().Width == toWidth {
		return offset, nil
	}
	if offset.Sort().Width > toWidth {
		return c.backend.MkExtract(offset, toWidth-1, 0, smt.BVSort(toWidth))
	}
	pad := c.backend.MkSmtBVInt(zeroBV(toWidth-offset.Sort().Width), false)
	return c.backend.MkFuncApp(smt.BVSort(toWidth), smt.CONCAT, pad, offset)
}

// convertTypecastStruct requires the source and destination layouts to
// agree field-for-field; smt_conv.h's convert_typecast_struct performs
// the same layout-compatibility check before reusing the source tuple.
func (c *Converter) convertTypecastStruct(from *irep.Expr, to *irep.Type) (smt.Ast, error) {
	a, err := c.ConvertAST(from)
	if err != nil {
		return nil, err
	}
	srcMembers, _ := from.Type().Members()
	dstMembers, _ := to.Members()
	if len(srcMembers) != len(dstMembers) {
		return nil, &ErrSortMismatch{Op: "typecast_struct", Detail: "source and destination have a different number of members"}
	}
	for i := range srcMembers {
		if !srcMembers[i].Equal(dstMembers[i]) {
			return nil, &ErrSortMismatch{Op: "typecast_struct", Detail: fmt.Sprintf("field %d type mismatch", i)}
		}
	}
	t := a.(*tupleAst)
	sort, err := c.tupleSort(to)
	if err != nil {
		return nil, err
	}
	return &tupleAst{sort: sort, typ: to, fields: t.fields}, nil
}
