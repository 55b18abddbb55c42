// Package ssa implements the SSA equation symbolic execution produces
// (spec.md §3.5, §4.4): an ordered sequence of steps that the SMT
// converter walks to build the program's path constraint.
package ssa

import "github.com/fbrausse/esbmc/internal/irep"

// Kind tags the four step shapes of spec.md §3.5.
type Kind uint8

const (
	KindAssignment Kind = iota
	KindAssume
	KindAssert
	KindRenumber
)

func (k Kind) String() string {
	switch k {
	case KindAssignment:
		return "assignment"
	case KindAssume:
		return "assume"
	case KindAssert:
		return "assert"
	case KindRenumber:
		return "renumber"
	default:
		return "<unknown-step-kind>"
	}
}

// Location is the minimal source-position record a step carries for
// trace reporting; spec.md §3.5's `source`.
type Location struct {
	File     string
	Line     int
	Function string
}

// Step is one SSA equation record (spec.md §3.5). CondAST is left nil
// until the SMT converter lowers Cond, at which point it caches the
// resulting handle directly on the step (spec.md §3.5 "`cond_ast` is
// populated by the SMT layer after conversion").
type Step struct {
	Kind Kind

	Cond  *irep.Expr // the asserted/assumed/assigned condition
	Guard *irep.Expr // path guard active when this step executes

	LHS         *irep.Expr // assignment target, L2-renamed; nil otherwise
	OriginalLHS *irep.Expr // LHS before L2 renaming, for trace reporting
	RHS         *irep.Expr // assignment value; nil otherwise

	Source     Location
	LoopNumber int
	Ignore     bool
	Comment    string
	StackTrace []Location

	CondAST interface{} // smt.Ast once converted; untyped to avoid an import cycle with internal/smt
}

// InvolvedInputs returns every symbol expression reachable from the
// step's condition/guard/RHS, the set slicing keys liveness off of.
// Grounded on the InvolvedInputs reverse-reachability walk in
// expr_builder.go.
func (s *Step) InvolvedInputs() []*irep.Expr {
	seen := map[uintptr]*irep.Expr{}
	var walk func(e *irep.Expr)
	walk = func(e *irep.Expr) {
		if e == nil {
			return
		}
		if e.Kind() == irep.KindSymbol {
			seen[e.Id()] = e
			return
		}
		for _, o := range e.Operands() {
			walk(o)
		}
	}
	walk(s.Cond)
	walk(s.Guard)
	walk(s.RHS)
	out := make([]*irep.Expr, 0, len(seen))
	for _, e := range seen {
		out = append(out, e)
	}
	return out
}
