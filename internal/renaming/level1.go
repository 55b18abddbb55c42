package renaming

import "github.com/fbrausse/esbmc/internal/irep"

// Level1 disambiguates a single thread's declarations across
// interleavings: every declaration of a local gets a fresh
// level1_num the first time symex enters its scope, and every
// subsequent reference within that same incarnation renames to the
// same number (renaming.cpp level1t).
type Level1 struct {
	pool      *irep.Pool
	threadNum uint32
	current   map[nameRecord]uint32
}

func NewLevel1(pool *irep.Pool, threadNum uint32) *Level1 {
	return &Level1{pool: pool, threadNum: threadNum, current: map[nameRecord]uint32{}}
}

func (l *Level1) ThreadNum() uint32 { return l.threadNum }

// CurrentNumber returns the L1 incarnation number currently bound to
// base, or 0 if base has not been declared in this thread yet.
func (l *Level1) CurrentNumber(base string) uint32 {
	return l.current[level1Record(base)]
}

// Declare introduces a fresh incarnation of base, as symex does on
// entering a new scope for a local (or a function call's parameters).
// Returns the renamed L1 symbol.
func (l *Level1) Declare(sym *irep.Expr) *irep.Expr {
	base := sym.SymbolName()
	rec := level1Record(base)
	n := l.current[rec] + 1
	l.current[rec] = n
	return l.pool.SymbolLevel1(base, l.threadNum, n, false, sym.Type())
}

// GetIdentName renames a single level-0 symbol reference to its
// current L1 incarnation, or to level1_global if it was never
// declared in this thread (renaming.cpp level1t::get_ident_name).
func (l *Level1) GetIdentName(sym *irep.Expr) *irep.Expr {
	if sym.Level() != irep.Level0 {
		return sym
	}
	base := sym.SymbolName()
	n, ok := l.current[level1Record(base)]
	if !ok {
		return l.pool.SymbolLevel1(base, l.threadNum, 0, true, sym.Type())
	}
	return l.pool.SymbolLevel1(base, l.threadNum, n, false, sym.Type())
}

// Rename walks e and renames every level-0 symbol to its current L1
// incarnation (renaming.cpp level1t::rename). address_of does not
// recurse through its operand's addressability the way a plain
// reference would — ESBMC's rename still renames the pointed-to symbol
// itself, so the walk is otherwise a plain recursive descent.
func (l *Level1) Rename(e *irep.Expr) *irep.Expr {
	return l.pool.Map(e, l.GetIdentName)
}
