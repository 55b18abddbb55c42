package trace

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/fbrausse/esbmc/internal/symtab"
)

// SnapshotPool renders the current symbol table to CBOR bytes
// (SPEC_FULL.md §5.1: "lets a driver fork cheaply between
// interleavings" per spec.md §9's cooperative-single-thread design
// note). Types are captured as their String() rendering and initial
// values (Entry.Value) are not captured; a restored table is therefore usable for display and replay of the
// declaration shape, not as a drop-in *irep.Type/*irep.Expr source —
// Pool intentionally exposes no handle-enumeration surface to restore
// those from (see DESIGN.md).
func SnapshotPool(t *symtab.Table) ([]byte, error) {
	entries := t.Ordered()
	snap := poolSnapshotV{Symbols: make([]symbolRecord, len(entries))}
	for i, e := range entries {
		snap.Symbols[i] = symbolRecord{
			Name:     e.Name,
			BaseName: e.BaseName,
			Module:   e.Module,
			TypeDesc: e.Type.String(),
			Storage:  uint8(e.Storage),
			IsType:   e.IsType,
			IsLvalue: e.IsLvalue,
		}
	}
	return encMode.Marshal(snap)
}

// RestoreSnapshot decodes a SnapshotPool blob back into its wire-level
// symbol descriptions, for a driver to inspect or replay against a
// freshly constructed Pool/Table.
func RestoreSnapshot(data []byte) ([]symbolRecord, error) {
	var snap poolSnapshotV
	if err := cbor.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return snap.Symbols, nil
}
