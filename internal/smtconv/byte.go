package smtconv

import (
	"fmt"

	"github.com/fbrausse/esbmc/internal/irep"
	"github.com/fbrausse/esbmc/internal/smt"
)

// flattenToBV reduces a struct/union/array-of-scalar value to a single
// bitvector Ast so byte_extract/byte_update can be expressed as plain
// SMT extract/concat, the same "decompose into a BV form first" step
// the original's byte-op conversion performs ahead of any endianness
// twiddling (spec.md §4.5.6).
func (c *Converter) flattenToBV(e *irep.Expr) (smt.Ast, uint, error) {
	w, err := e.Type().Width()
	if err != nil {
		return nil, 0, fmt.Errorf("smtconv: byte flattening needs a fixed-width source: %w", err)
	}
	switch e.Type().Kind() {
	case irep.KindStruct, irep.KindUnion:
		a, err := c.ConvertAST(e)
		if err != nil {
			return nil, 0, err
		}
		t := a.(*tupleAst)
		var bv smt.Ast
		for _, f := range t.fields {
			if bv == nil {
				bv = f
				continue
			}
			bv, err = c.backend.MkFuncApp(smt.BVSort(bv.Sort().Width+f.Sort().Width), smt.CONCAT, bv, f)
			if err != nil {
				return nil, 0, err
			}
		}
		return bv, w, nil
	default:
		a, err := c.ConvertAST(e)
		if err != nil {
			return nil, 0, err
		}
		return a, w, nil
	}
}

func (c *Converter) byteIndex(offset uint, totalBytes uint, bigEndian bool) uint {
	if bigEndian {
		return totalBytes - 1 - offset
	}
	return offset
}

func (c *Converter) convertByteExtract(e *irep.Expr) (smt.Ast, error) {
	ops := e.Operands()
	src, totalBits, err := c.flattenToBV(ops[0])
	if err != nil {
		return nil, err
	}
	resultWidth, err := e.Type().Width()
	if err != nil {
		return nil, err
	}
	totalBytes := totalBits / 8
	offConst, ok := ops[1].ConstantUint()
	if !ok {
		return nil, fmt.Errorf("smtconv: byte_extract with a non-constant offset is unsupported")
	}
	idx := c.byteIndex(uint(offConst), totalBytes, e.IsBigEndian())
	lo := idx * 8
	hi := lo + resultWidth - 1
	sort, err := c.sortOf(e.Type())
	if err != nil {
		return nil, err
	}
	return c.backend.MkExtract(src, hi, lo, sort)
}

func (c *Converter) convertByteUpdate(e *irep.Expr) (smt.Ast, error) {
	ops := e.Operands()
	src, totalBits, err := c.flattenToBV(ops[0])
	if err != nil {
		return nil, err
	}
	value, err := c.ConvertAST(ops[2])
	if err != nil {
		return nil, err
	}
	totalBytes := totalBits / 8
	offConst, ok := ops[1].ConstantUint()
	if !ok {
		return nil, fmt.Errorf("smtconv: byte_update with a non-constant offset is unsupported")
	}
	idx := c.byteIndex(uint(offConst), totalBytes, e.IsBigEndian())
	lo := idx * 8
	hi := lo + value.Sort().Width - 1

	var parts []smt.Ast
	if hi+1 < totalBits {
		top, err := c.backend.MkExtract(src, totalBits-1, hi+1, smt.BVSort(totalBits-hi-1))
		if err != nil {
			return nil, err
		}
		parts = append(parts, top)
	}
	parts = append(parts, value)
	if lo > 0 {
		bottom, err := c.backend.MkExtract(src, lo-1, 0, smt.BVSort(lo))
		if err != nil {
			return nil, err
		}
		parts = append(parts, bottom)
	}
	result := parts[0]
	for _, p := range parts[1:] {
		result, err = c.backend.MkFuncApp(smt.BVSort(result.Sort().Width+p.Sort().Width), smt.CONCAT, result, p)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}
