package smt

import (
	"fmt"
	"strings"

	"github.com/fbrausse/esbmc/internal/bigbv"
)

// smtlibAst is a plain textual S-expression; the smtlib backend never
// calls an actual solver, it only ever accumulates a script (spec.md
// §6 "SMT-LIB dump": "emits a textual script of sort declarations,
// symbol declarations, and assertions ... in the order they happened").
type smtlibAst struct {
	text string
	sort *Sort
}

func (a *smtlibAst) Sort() *Sort { return a.sort }

type smtlibBackend struct {
	cfg Config

	declaredSymbols map[string]bool
	lines           []string // declare-sort/declare-fun/assert lines, in call order
	pushDepth       []int    // line count snapshot at each push_ctx, for a textual (push)/(pop)
}

func NewSmtlibBackend(cfg Config) Backend {
	return &smtlibBackend{cfg: cfg, declaredSymbols: map[string]bool{}}
}

func (b *smtlibBackend) Name() string { return "smtlib" }

func sortText(s *Sort) string {
	switch s.Kind {
	case SortBool:
		return "Bool"
	case SortInt:
		return "Int"
	case SortReal:
		return "Real"
	case SortBV:
		return fmt.Sprintf("(_ BitVec %d)", s.Width)
	case SortArray:
		return fmt.Sprintf("(Array %s %s)", sortText(s.Domain), sortText(s.Range))
	default:
		return "<tuple-sort-flattened-above-this-layer>"
	}
}

func (b *smtlibBackend) MkSort(kind SortKind, width uint) *Sort {
	if kind == SortBV {
		return BVSort(width)
	}
	return &Sort{Kind: kind}
}

func (b *smtlibBackend) MkStructSort(fields []*Sort, names []string) *Sort {
	return StructSort(fields, names)
}

func (b *smtlibBackend) MkUnionSort(fields []*Sort, names []string) *Sort {
	return UnionSort(fields, names)
}

func (b *smtlibBackend) MkSmtInt(v int64) Ast {
	return &smtlibAst{text: fmt.Sprintf("%d", v), sort: IntSort()}
}

func (b *smtlibBackend) MkSmtReal(v string) Ast {
	return &smtlibAst{text: v, sort: RealSort()}
}

func (b *smtlibBackend) MkSmtBVInt(v *bigbv.BV, signed bool) Ast {
	sort := BVSort(v.Width)
	return &smtlibAst{text: fmt.Sprintf("(_ bv%s %d)", v.BigInt().String(), v.Width), sort: sort}
}

func (b *smtlibBackend) MkSmtBool(v bool) Ast {
	if v {
		return &smtlibAst{text: "true", sort: BoolSort()}
	}
	return &smtlibAst{text: "false", sort: BoolSort()}
}

func (b *smtlibBackend) MkSmtSymbol(name string, sort *Sort) Ast {
	if !b.declaredSymbols[name] {
		b.declaredSymbols[name] = true
		b.lines = append(b.lines, fmt.Sprintf("(declare-fun %s () %s)", name, sortText(sort)))
	}
	return &smtlibAst{text: name, sort: sort}
}

func text(a Ast) string { return a.(*smtlibAst).text }

func (b *smtlibBackend) app(fn string, sort *Sort, args ...Ast) Ast {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = text(a)
	}
	return &smtlibAst{text: fmt.Sprintf("(%s %s)", fn, strings.Join(parts, " ")), sort: sort}
}

var smtFuncSymbols = map[SmtFunc]string{
	BVADD: "bvadd", BVSUB: "bvsub", BVMUL: "bvmul", BVUDIV: "bvudiv", BVSDIV: "bvsdiv",
	BVUMOD: "bvurem", BVSMOD: "bvsrem", BVSHL: "bvshl", BVLSHR: "bvlshr", BVASHR: "bvashr",
	BVNEG: "bvneg", BVNOT: "bvnot", BVAND: "bvand", BVOR: "bvor", BVXOR: "bvxor",
	BVNAND: "bvnand", BVNOR: "bvnor", BVNXOR: "bvxnor",
	BVULT: "bvult", BVULTE: "bvule", BVUGT: "bvugt", BVUGTE: "bvuge",
	BVSLT: "bvslt", BVSLTE: "bvsle", BVSGT: "bvsgt", BVSGTE: "bvsge",
	EQ: "=", NOT: "not", AND: "and", OR: "or", XOR: "xor", IMPLIES: "=>",
	ITE: "ite", CONCAT: "concat", STORE: "store", SELECT: "select",
	ADD: "+", SUB: "-", MUL: "*", DIV: "div", MOD: "mod",
	LT: "<", GT: ">", LTE: "<=", GTE: ">=",
}

func (b *smtlibBackend) MkFuncApp(sort *Sort, fn SmtFunc, args ...Ast) (Ast, error) {
	if fn == NOTEQ {
		eq, _ := b.MkFuncApp(BoolSort(), EQ, args...)
		return b.app("not", BoolSort(), eq), nil
	}
	sym, ok := smtFuncSymbols[fn]
	if !ok {
		return nil, fmt.Errorf("smt/smtlib: unsupported function %v", fn)
	}
	return b.app(sym, sort, args...), nil
}

func (b *smtlibBackend) MkExtract(a Ast, hi, lo uint, sort *Sort) (Ast, error) {
	return &smtlibAst{text: fmt.Sprintf("((_ extract %d %d) %s)", hi, lo, text(a)), sort: sort}, nil
}

func (b *smtlibBackend) GetBool(a Ast) bool { return text(a) == "true" }

func (b *smtlibBackend) GetBV(sort *Sort, a Ast) *bigbv.BV {
	return bigbv.FromInt64(0, sort.Width) // the smtlib backend never solves; see dec_solve
}

func (b *smtlibBackend) GetArrayElem(a Ast, idx uint64, sort *Sort) Ast {
	idxAst := b.MkSmtBVInt(bigbv.FromInt64(int64(idx), a.Sort().Domain.Width), false)
	return b.app("select", sort, a, idxAst)
}

func (b *smtlibBackend) AssertAst(a Ast) error {
	b.lines = append(b.lines, fmt.Sprintf("(assert %s)", text(a)))
	return nil
}

func (b *smtlibBackend) PushCtx() {
	b.pushDepth = append(b.pushDepth, len(b.lines))
	b.lines = append(b.lines, "(push 1)")
}

func (b *smtlibBackend) PopCtx() {
	if len(b.pushDepth) == 0 {
		panic("smt/smtlib: pop_ctx with no matching push_ctx")
	}
	b.pushDepth = b.pushDepth[:len(b.pushDepth)-1]
	b.lines = append(b.lines, "(pop 1)")
}

// DecSolve never actually decides satisfiability: the smtlib backend
// is a pure dump target for spec.md §6's "smt-formula-only" mode.
func (b *smtlibBackend) DecSolve() (Result, error) { return ResultSmtlib, nil }

func (b *smtlibBackend) LGet(a Ast) TValue { return TUnknown }

// SolverText renders the accumulated script, the literal one-line-
// per-call dump spec.md §6 requires.
func (b *smtlibBackend) SolverText() string {
	var sb strings.Builder
	sb.WriteString("(set-logic QF_AUFBV)\n")
	for _, l := range b.lines {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	sb.WriteString("(check-sat)\n")
	return sb.String()
}
