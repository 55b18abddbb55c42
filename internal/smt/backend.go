package smt

import "github.com/fbrausse/esbmc/internal/bigbv"

// Backend is the abstract hook set of spec.md §4.5.2: every concrete
// solver binding (z3, smtlib-dump, ...) implements exactly this
// surface; internal/smtconv never talks to a solver except through it.
type Backend interface {
	MkSort(kind SortKind, width uint) *Sort
	MkStructSort(fields []*Sort, names []string) *Sort
	MkUnionSort(fields []*Sort, names []string) *Sort

	MkFuncApp(sort *Sort, fn SmtFunc, args ...Ast) (Ast, error)
	MkExtract(a Ast, hi, lo uint, sort *Sort) (Ast, error)

	MkSmtInt(v int64) Ast
	MkSmtReal(v string) Ast
	MkSmtBVInt(v *bigbv.BV, signed bool) Ast
	MkSmtBool(v bool) Ast
	MkSmtSymbol(name string, sort *Sort) Ast

	GetBool(a Ast) bool
	GetBV(sort *Sort, a Ast) *bigbv.BV
	GetArrayElem(a Ast, idx uint64, sort *Sort) Ast

	AssertAst(a Ast) error

	PushCtx()
	PopCtx()

	DecSolve() (Result, error)
	LGet(a Ast) TValue
	SolverText() string

	// Name identifies the backend for diagnostics and the factory's
	// ErrBackendUnavailable messages.
	Name() string
}

// ErrBackendUnavailable is returned by NewBackend for a recognized
// name the module does not ship an implementation for (spec.md §6:
// "A factory selects the backend by name
// (boolector|z3|mathsat|cvc|yices|bitwuzla|smtlib)"). Only z3 and
// smtlib have real bindings in this pack's retrieved dependencies.
type ErrBackendUnavailable struct{ Name string }

func (e *ErrBackendUnavailable) Error() string {
	return "smt: backend " + e.Name + " has no binding available in this build"
}

// NewBackend is the §6/§4.5.11 solver adapter factory.
func NewBackend(name string, cfg Config) (Backend, error) {
	switch name {
	case "z3":
		return NewZ3Backend(cfg)
	case "smtlib":
		return NewSmtlibBackend(cfg), nil
	case "boolector", "mathsat", "cvc", "yices", "bitwuzla":
		return nil, &ErrBackendUnavailable{Name: name}
	default:
		return nil, &ErrBackendUnavailable{Name: name}
	}
}

// Config carries the construction parameters of spec.md §4.5 that a
// backend needs independent of the converter (word size and
// endianness, mainly, for smtlib sort declarations and z3 context
// options).
type Config struct {
	MachineWordWidth uint
	BigEndian        bool
}
