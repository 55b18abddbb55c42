package smt

import (
	"fmt"
	"math/big"

	"github.com/aclements/go-z3/z3"

	"github.com/fbrausse/esbmc/internal/bigbv"
)

// z3Ast wraps a z3.Value with the Sort the converter requested it at,
// since z3's own Go binding does not expose a single common accessor
// across z3.Bool/z3.BV/z3.Array/z3.Int/z3.Real.
type z3Ast struct {
	val  z3.Value
	sort *Sort
}

func (a *z3Ast) Sort() *Sort { return a.sort }

// z3Backend adapts github.com/aclements/go-z3, following gosmt's
// z3backend.go one-context-one-solver layout (newZ3Backend/check/
// model/evalUpto), generalized from a fixed BV/Bool pair to the full
// abstract Backend contract.
type z3Backend struct {
	ctx    *z3.Context
	cfg    *z3.Config
	solver *z3.Solver

	symbols map[string]z3.Value
}

func NewZ3Backend(_ Config) (Backend, error) {
	cfg := z3.NewContextConfig()
	ctx := z3.NewContext(cfg)
	return &z3Backend{
		ctx:     ctx,
		cfg:     cfg,
		solver:  z3.NewSolver(ctx),
		symbols: map[string]z3.Value{},
	}, nil
}

func (b *z3Backend) Name() string { return "z3" }

func (b *z3Backend) z3Sort(s *Sort) z3.Sort {
	switch s.Kind {
	case SortBool:
		return b.ctx.BoolSort()
	case SortInt:
		return b.ctx.IntSort()
	case SortReal:
		return b.ctx.RealSort()
	case SortBV:
		return b.ctx.BVSort(int(s.Width))
	case SortArray:
		return b.ctx.ArraySort(b.z3Sort(s.Domain), b.z3Sort(s.Range))
	default:
		panic(fmt.Sprintf("smt/z3: unsupported native sort %v (tuples are flattened above this layer)", s.Kind))
	}
}

func (b *z3Backend) MkSort(kind SortKind, width uint) *Sort {
	if kind == SortBV {
		return BVSort(width)
	}
	return &Sort{Kind: kind}
}

func (b *z3Backend) MkStructSort(fields []*Sort, names []string) *Sort {
	return StructSort(fields, names)
}

func (b *z3Backend) MkUnionSort(fields []*Sort, names []string) *Sort {
	return UnionSort(fields, names)
}

func (b *z3Backend) MkSmtInt(v int64) Ast {
	return &z3Ast{val: b.ctx.FromInt(v, b.ctx.IntSort()), sort: IntSort()}
}

func (b *z3Backend) MkSmtReal(v string) Ast {
	r, ok := new(big.Rat).SetString(v)
	if !ok {
		r = new(big.Rat)
	}
	return &z3Ast{val: b.ctx.FromBigRat(r), sort: RealSort()}
}

func (b *z3Backend) MkSmtBVInt(v *bigbv.BV, signed bool) Ast {
	sort := BVSort(v.Width)
	return &z3Ast{val: b.ctx.FromBigInt(v.BigInt(), b.z3Sort(sort).(z3.BVSort)), sort: sort}
}

func (b *z3Backend) MkSmtBool(v bool) Ast {
	return &z3Ast{val: b.ctx.FromBool(v), sort: BoolSort()}
}

func (b *z3Backend) MkSmtSymbol(name string, sort *Sort) Ast {
	if v, ok := b.symbols[name]; ok {
		return &z3Ast{val: v, sort: sort}
	}
	var v z3.Value
	switch sort.Kind {
	case SortBV:
		v = b.ctx.BVConst(name, int(sort.Width))
	case SortBool:
		v = b.ctx.BoolConst(name)
	case SortInt:
		v = b.ctx.IntConst(name)
	case SortReal:
		v = b.ctx.RealConst(name)
	case SortArray:
		v = b.ctx.Const(name, b.z3Sort(sort).(z3.ArraySort))
	default:
		panic("smt/z3: cannot declare a native symbol of tuple sort")
	}
	b.symbols[name] = v
	return &z3Ast{val: v, sort: sort}
}

func bv(a Ast) z3.BV     { return a.(*z3Ast).val.(z3.BV) }
func boolv(a Ast) z3.Bool { return a.(*z3Ast).val.(z3.Bool) }
func arr(a Ast) z3.Array  { return a.(*z3Ast).val.(z3.Array) }

func (b *z3Backend) MkFuncApp(sort *Sort, fn SmtFunc, args ...Ast) (Ast, error) {
	mk := func(v z3.Value) (Ast, error) { return &z3Ast{val: v, sort: sort}, nil }

	switch fn {
	case BVADD:
		res := bv(args[0])
		for _, a := range args[1:] {
			res = res.Add(bv(a))
		}
		return mk(res)
	case BVSUB:
		return mk(bv(args[0]).Sub(bv(args[1])))
	case BVMUL:
		res := bv(args[0])
		for _, a := range args[1:] {
			res = res.Mul(bv(a))
		}
		return mk(res)
	case BVUDIV:
		return mk(bv(args[0]).UDiv(bv(args[1])))
	case BVSDIV:
		return mk(bv(args[0]).SDiv(bv(args[1])))
	case BVUMOD:
		return mk(bv(args[0]).URem(bv(args[1])))
	case BVSMOD:
		return mk(bv(args[0]).SRem(bv(args[1])))
	case BVSHL:
		return mk(bv(args[0]).Lsh(bv(args[1])))
	case BVLSHR:
		return mk(bv(args[0]).URsh(bv(args[1])))
	case BVASHR:
		return mk(bv(args[0]).SRsh(bv(args[1])))
	case BVNEG:
		return mk(bv(args[0]).Neg())
	case BVNOT:
		return mk(bv(args[0]).Not())
	case BVAND:
		res := bv(args[0])
		for _, a := range args[1:] {
			res = res.And(bv(a))
		}
		return mk(res)
	case BVOR:
		res := bv(args[0])
		for _, a := range args[1:] {
			res = res.Or(bv(a))
		}
		return mk(res)
	case BVXOR:
		res := bv(args[0])
		for _, a := range args[1:] {
			res = res.Xor(bv(a))
		}
		return mk(res)
	case BVNAND:
		return mk(bv(args[0]).And(bv(args[1])).Not())
	case BVNOR:
		return mk(bv(args[0]).Or(bv(args[1])).Not())
	case BVNXOR:
		return mk(bv(args[0]).Xor(bv(args[1])).Not())
	case BVULT:
		return mk(bv(args[0]).ULT(bv(args[1])))
	case BVULTE:
		return mk(bv(args[0]).ULE(bv(args[1])))
	case BVUGT:
		return mk(bv(args[0]).UGT(bv(args[1])))
	case BVUGTE:
		return mk(bv(args[0]).UGE(bv(args[1])))
	case BVSLT:
		return mk(bv(args[0]).SLT(bv(args[1])))
	case BVSLTE:
		return mk(bv(args[0]).SLE(bv(args[1])))
	case BVSGT:
		return mk(bv(args[0]).SGT(bv(args[1])))
	case BVSGTE:
		return mk(bv(args[0]).SGE(bv(args[1])))
	case EQ:
		return mk(bv(args[0]).Eq(bv(args[1])))
	case NOTEQ:
		return mk(bv(args[0]).Eq(bv(args[1])).Not())
	case NOT:
		return mk(boolv(args[0]).Not())
	case AND:
		res := boolv(args[0])
		for _, a := range args[1:] {
			res = res.And(boolv(a))
		}
		return mk(res)
	case OR:
		res := boolv(args[0])
		for _, a := range args[1:] {
			res = res.Or(boolv(a))
		}
		return mk(res)
	case XOR:
		return mk(boolv(args[0]).Xor(boolv(args[1])))
	case IMPLIES:
		return mk(boolv(args[0]).Implies(boolv(args[1])))
	case ITE:
		cond := boolv(args[0])
		if sort.Kind == SortBV {
			return mk(cond.IfThenElse(bv(args[1]), bv(args[2])))
		}
		return mk(cond.IfThenElse(boolv(args[1]), boolv(args[2])))
	case CONCAT:
		res := bv(args[0])
		for _, a := range args[1:] {
			res = res.Concat(bv(a))
		}
		return mk(res)
	case STORE:
		return mk(arr(args[0]).Store(args[1].(*z3Ast).val, args[2].(*z3Ast).val))
	case SELECT:
		return mk(arr(args[0]).Select(args[1].(*z3Ast).val))
	default:
		return nil, fmt.Errorf("smt/z3: unsupported function %v", fn)
	}
}

func (b *z3Backend) MkExtract(a Ast, hi, lo uint, sort *Sort) (Ast, error) {
	return &z3Ast{val: bv(a).Extract(int(hi), int(lo)), sort: sort}, nil
}

func (b *z3Backend) GetBool(a Ast) bool {
	lit := b.solver.Model().Eval(a.(*z3Ast).val, true)
	v, ok := lit.(z3.Bool).AsBool()
	return ok && v
}

// bvLiteralBase16 strips the "#x" hex prefix z3's BV literal
// stringification produces, the same slicing gosmt's
// convertZ3Const performs in z3backend.go before parsing.
func bvLiteralBase16(s string) string {
	if len(s) > 2 && s[0] == '#' {
		return s[2:]
	}
	return s
}

func (b *z3Backend) GetBV(sort *Sort, a Ast) *bigbv.BV {
	lit := b.solver.Model().Eval(a.(*z3Ast).val, true).(z3.BV)
	return bigbv.FromString(bvLiteralBase16(lit.String()), 16, sort.Width)
}

func (b *z3Backend) GetArrayElem(a Ast, idx uint64, sort *Sort) Ast {
	idxSort := a.Sort().Domain
	idxAst := b.MkSmtBVInt(bigbv.FromInt64(int64(idx), idxSort.Width), false)
	return &z3Ast{val: arr(a).Select(idxAst.(*z3Ast).val), sort: sort}
}

func (b *z3Backend) AssertAst(a Ast) error {
	v, ok := a.(*z3Ast).val.(z3.Bool)
	if !ok {
		return fmt.Errorf("smt/z3: assert_ast on a non-boolean value")
	}
	b.solver.Assert(v)
	return nil
}

func (b *z3Backend) PushCtx() { b.solver.Push() }
func (b *z3Backend) PopCtx()  { b.solver.Pop(1) }

func (b *z3Backend) DecSolve() (Result, error) {
	r, err := b.solver.Check()
	if err != nil {
		return ResultError, err
	}
	if r {
		return ResultSat, nil
	}
	return ResultUnsat, nil
}

func (b *z3Backend) LGet(a Ast) TValue {
	m := b.solver.Model()
	if m == nil {
		return TUnknown
	}
	lit := m.Eval(a.(*z3Ast).val, true)
	v, ok := lit.(z3.Bool).AsBool()
	if !ok {
		return TUnknown
	}
	if v {
		return TTrue
	}
	return TFalse
}

func (b *z3Backend) SolverText() string {
	return b.solver.String()
}
