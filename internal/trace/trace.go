// Package trace serializes counterexample traces and symbol-table
// snapshots to CBOR, grounded on chazu-maggie/vm/dist/wire.go's
// canonical-mode CBOR marshal/unmarshal pair (SPEC_FULL.md §5.1, §2.1).
package trace

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/fbrausse/esbmc/internal/ssa"
)

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("trace: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// StepRecord is the wire form of one ssa.Step: only the concrete,
// already-renamed/concrete-valued fields a counterexample needs to
// replay, not the live *irep.Expr handles themselves (those are
// process-local pool pointers and cannot cross a process boundary).
type StepRecord struct {
	Kind        string `cbor:"1,keyasint"`
	LHS         string `cbor:"2,keyasint,omitempty"`
	Value       string `cbor:"3,keyasint,omitempty"`
	Source      string `cbor:"4,keyasint,omitempty"`
	Line        int    `cbor:"5,keyasint,omitempty"`
	LoopNumber  int    `cbor:"6,keyasint,omitempty"`
	Ignore      bool   `cbor:"7,keyasint,omitempty"`
	Comment     string `cbor:"8,keyasint,omitempty"`
}

// Counterexample is the full wire form of one SSA equation's concrete
// trace (spec.md §3.5/§8): one StepRecord per Step, values rendered
// through irep.Expr.String() since constants are the only values a
// trace needs to carry.
type Counterexample struct {
	Steps []StepRecord `cbor:"1,keyasint"`
}

// BuildCounterexample renders an Equation's steps into wire form. A
// value-bearing step's RHS is expected to already be a constant (the
// post-solve Get() result), per §6 "post-SAT concrete value retrieval".
func BuildCounterexample(eq *ssa.Equation) Counterexample {
	steps := eq.Steps()
	out := make([]StepRecord, len(steps))
	for i, s := range steps {
		r := StepRecord{
			Kind:       s.Kind.String(),
			Source:     s.Source.File,
			Line:       s.Source.Line,
			LoopNumber: s.LoopNumber,
			Ignore:     s.Ignore,
			Comment:    s.Comment,
		}
		if s.LHS != nil {
			r.LHS = s.LHS.String()
		}
		if s.RHS != nil {
			r.Value = s.RHS.String()
		}
		out[i] = r
	}
	return Counterexample{Steps: out}
}

// Marshal/Unmarshal round-trip a Counterexample through canonical CBOR.
func Marshal(c Counterexample) ([]byte, error) {
	return encMode.Marshal(c)
}

func Unmarshal(data []byte) (Counterexample, error) {
	var c Counterexample
	if err := cbor.Unmarshal(data, &c); err != nil {
		return Counterexample{}, fmt.Errorf("trace: unmarshal counterexample: %w", err)
	}
	return c, nil
}

// symbolRecord is the wire form of one symtab.Entry: its names, storage
// class and flags, with the type carried as its String() rendering
// (irep.Type/Expr handles are process-local). Restoring yields these
// records only; the type string is not parsed back into a *irep.Type,
// and the entry's initial value is not carried.
type symbolRecord struct {
	Name     string `cbor:"1,keyasint"`
	BaseName string `cbor:"2,keyasint"`
	Module   string `cbor:"3,keyasint"`
	TypeDesc string `cbor:"4,keyasint"`
	Storage  uint8  `cbor:"5,keyasint"`
	IsType   bool   `cbor:"6,keyasint,omitempty"`
	IsLvalue bool   `cbor:"7,keyasint,omitempty"`
}

// poolSnapshotV is the wire form SnapshotPool/RestoreSnapshot exchange.
// Only the symbol table's entries are carried: the type/expression
// pool itself deliberately exposes no enumeration surface (its
// hash-cons tables are private so that nothing outside Pool can assume
// a particular storage layout), so what a "pool snapshot" can portably
// mean is exactly the table of named, typed declarations built against
// it.
type poolSnapshotV struct {
	Symbols []symbolRecord `cbor:"1,keyasint"`
}
