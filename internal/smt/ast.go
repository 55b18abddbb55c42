package smt

// Ast is an opaque solver-owned node: spec.md §3.6's smt_ast, "owned by
// the SMT converter for the duration of the context". Each backend
// returns its own concrete implementation (z3Ast, smtlibAst, ...); the
// converter only ever calls Sort() and passes the value back into
// Backend methods.
type Ast interface {
	Sort() *Sort
}

// TValue is the backend's decision-procedure answer for a single AST
// under the current model (§4.5.2's l_get).
type TValue uint8

const (
	TUnknown TValue = iota
	TTrue
	TFalse
)

// Result is a dec_solve outcome (spec.md §4.5.1).
type Result uint8

const (
	ResultError Result = iota
	ResultSat
	ResultUnsat
	ResultSmtlib
)

func (r Result) String() string {
	switch r {
	case ResultSat:
		return "sat"
	case ResultUnsat:
		return "unsat"
	case ResultSmtlib:
		return "smtlib"
	default:
		return "error"
	}
}
