package smtconv

import (
	"fmt"

	"github.com/fbrausse/esbmc/internal/bigbv"
	"github.com/fbrausse/esbmc/internal/irep"
	"github.com/fbrausse/esbmc/internal/smt"
)

// convertOverflow builds the canonical width-extension overflow check
// of spec.md §4.5.8: widen both operands by one bit (to twice the width
// for multiplication) in the operation's native signedness, perform the operation at the wider width, and
// compare against the same operation truncated back to the original
// width (equivalently, compare the extra bit against the sign of the
// wide result for signed operations). This mirrors the extended-
// precision technique the original uses for its overflow instrumentation
// rather than per-backend overflow predicates, so it works uniformly
// across both z3 and the smtlib dump.
func (c *Converter) convertOverflow(e *irep.Expr) (smt.Ast, error) {
	op := e.Operands()[0]
	switch e.Kind() {
	case irep.KindOverflowNeg:
		return c.overflowNeg(op)
	case irep.KindOverflowCast:
		return c.overflowCast(op, e.OverflowCastBits())
	default:
		return c.overflowArith(op)
	}
}

func (c *Converter) overflowArith(op *irep.Expr) (smt.Ast, error) {
	ops := op.Operands()
	if len(ops) != 2 {
		return nil, fmt.Errorf("smtconv: overflow check on a non-binary operation")
	}
	lhs, rhs := ops[0], ops[1]
	width := lhs.Type().BVWidth()
	signed := lhs.Type().Kind() == irep.KindSignedBV

	a, err := c.ConvertAST(lhs)
	if err != nil {
		return nil, err
	}
	b, err := c.ConvertAST(rhs)
	if err != nil {
		return nil, err
	}
	var fn smt.SmtFunc
	extWidth := width + 1
	switch op.Kind() {
	case irep.KindAdd:
		fn = smt.BVADD
	case irep.KindSub:
		fn = smt.BVSUB
	case irep.KindMul:
		// A product needs twice the operand width to be exact.
		fn = smt.BVMUL
		extWidth = 2 * width
	default:
		return nil, fmt.Errorf("smtconv: overflow unsupported for operator kind %v", op.Kind())
	}
	wa, err := c.extend(a, extWidth, signed)
	if err != nil {
		return nil, err
	}
	wb, err := c.extend(b, extWidth, signed)
	if err != nil {
		return nil, err
	}
	wide, err := c.backend.MkFuncApp(smt.BVSort(extWidth), fn, wa, wb)
	if err != nil {
		return nil, err
	}
	// The result overflows iff truncating the wide result back down and
	// re-extending it does not reproduce the wide value.
	narrow, err := c.backend.MkExtract(wide, width-1, 0, smt.BVSort(width))
	if err != nil {
		return nil, err
	}
	reExtended, err := c.extend(narrow, extWidth, signed)
	if err != nil {
		return nil, err
	}
	eq, err := c.backend.MkFuncApp(smt.BoolSort(), smt.EQ, wide, reExtended)
	if err != nil {
		return nil, err
	}
	return c.backend.MkFuncApp(smt.BoolSort(), smt.NOT, eq)
}

func (c *Converter) overflowNeg(op *irep.Expr) (smt.Ast, error) {
	width := op.Type().BVWidth()
	a, err := c.ConvertAST(op)
	if err != nil {
		return nil, err
	}
	// Negation overflows only for the minimum signed value (-MIN has no
	// positive representation at the same width).
	minVal := c.backend.MkSmtBVInt(minSignedBV(width), false)
	return c.backend.MkFuncApp(smt.BoolSort(), smt.EQ, a, minVal)
}

func minSignedBV(width uint) *bigbv.BV {
	v, err := bigbv.FromInt64(1, width).Shl(width - 1)
	if err != nil {
		panic(err)
	}
	return v
}

func (c *Converter) overflowCast(op *irep.Expr, bits uint) (smt.Ast, error) {
	width := op.Type().BVWidth()
	signed := op.Type().Kind() == irep.KindSignedBV
	a, err := c.ConvertAST(op)
	if err != nil {
		return nil, err
	}
	if bits >= width {
		return c.backend.MkSmtBool(false), nil
	}
	narrow, err := c.backend.MkExtract(a, bits-1, 0, smt.BVSort(bits))
	if err != nil {
		return nil, err
	}
	reExtended, err := c.extend(narrow, width, signed)
	if err != nil {
		return nil, err
	}
	eq, err := c.backend.MkFuncApp(smt.BoolSort(), smt.EQ, a, reExtended)
	if err != nil {
		return nil, err
	}
	return c.backend.MkFuncApp(smt.BoolSort(), smt.NOT, eq)
}

// extend zero- or sign-extends a to the given total width, via concat
// with a constant pad (unsigned) or a sign-derived ITE pad (signed).
func (c *Converter) extend(a smt.Ast, toWidth uint, signed bool) (smt.Ast, error) {
	fromWidth := a.Sort().Width
	if fromWidth == toWidth {
		return a, nil
	}
	extra := toWidth - fromWidth
	if !signed {
		pad := c.backend.MkSmtBVInt(zeroBV(extra), false)
		return c.backend.MkFuncApp(smt.BVSort(toWidth), smt.CONCAT, pad, a)
	}
	topBit, err := c.backend.MkExtract(a, fromWidth-1, fromWidth-1, smt.BVSort(1))
	if err != nil {
		return nil, err
	}
	one := c.backend.MkSmtBVInt(bigbv.FromInt64(1, 1), false)
	isNeg, err := c.backend.MkFuncApp(smt.BoolSort(), smt.EQ, topBit, one)
	if err != nil {
		return nil, err
	}
	ones := c.backend.MkSmtBVInt(bigbv.FromString(allOnesHex(extra), 16, extra), false)
	zeros := c.backend.MkSmtBVInt(zeroBV(extra), false)
	pad, err := c.backend.MkFuncApp(smt.BVSort(extra), smt.ITE, isNeg, ones, zeros)
	if err != nil {
		return nil, err
	}
	return c.backend.MkFuncApp(smt.BVSort(toWidth), smt.CONCAT, pad, a)
}
