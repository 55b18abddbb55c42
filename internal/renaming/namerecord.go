// Package renaming implements SSA symbol renaming (spec.md §4.2 "Level
// 1 renaming" and §4.3 "Level 2 renaming"), grounded directly on
// ESBMC's goto-symex/renaming.cpp: level1t disambiguates a declaration
// across thread interleavings, level2t assigns per-assignment value
// numbers on top of that and tracks the def-use node each numbering was
// produced at.
package renaming

import "github.com/fbrausse/esbmc/internal/irep"

// nameRecord is the renaming.h name_record equivalent: the key under
// which a current value-numbering entry is stored. Level 1 records key
// only on the base name (a declaration is scoped per-thread already by
// a separate Level1 instance per thread); Level 2 records additionally
// distinguish the L1 incarnation and thread the symbol was renamed to.
type nameRecord struct {
	base      string
	level1Num uint32
	threadNum uint32
}

func level1Record(base string) nameRecord { return nameRecord{base: base} }

func level2Record(base string, level1Num, threadNum uint32) nameRecord {
	return nameRecord{base: base, level1Num: level1Num, threadNum: threadNum}
}

func recordOf(sym *irep.Expr) nameRecord {
	return level2Record(sym.SymbolName(), sym.Level1Num(), sym.ThreadNum())
}
