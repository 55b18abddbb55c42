package renaming

import (
	"strings"

	"github.com/fbrausse/esbmc/internal/irep"
)

// value is the per-declaration value-numbering entry level2t keeps:
// the current SSA count, the equation node it was assigned at, and —
// if the assigned value constant-propagates — the folded constant
// itself (renaming.cpp's valuet).
type value struct {
	count    uint32
	nodeID   uint32
	constant *irep.Expr // nil unless the assignment folded to a constant
}

// Level2 assigns per-assignment value numbers on top of an already
// L1-renamed symbol stream (renaming.cpp level2t). One Level2 spans an
// entire symbolic execution run; Level1 is per-thread, Level2 is not.
type Level2 struct {
	pool    *irep.Pool
	current map[nameRecord]*value
}

func NewLevel2(pool *irep.Pool) *Level2 {
	return &Level2{pool: pool, current: map[nameRecord]*value{}}
}

func (l *Level2) CurrentNumber(sym *irep.Expr) uint32 {
	v, ok := l.current[recordOf(sym)]
	if !ok {
		return 0
	}
	return v.count
}

func isSpecialName(name string) bool {
	return name == "NULL" || name == "INVALID" || strings.HasPrefix(name, "nondet$")
}

func level2Of(sym *irep.Expr) irep.RenameLevel {
	if sym.Level() == irep.Level0 || sym.Level() == irep.Level1Global {
		return irep.Level2Global
	}
	return irep.Level2
}

// GetIdentName renames a single L1-renamed symbol to its current L2
// incarnation (renaming.cpp level2t::get_ident_name).
func (l *Level2) GetIdentName(sym *irep.Expr) *irep.Expr {
	lev := level2Of(sym)
	v, ok := l.current[recordOf(sym)]
	if !ok {
		return l.pool.SymbolLevel2(sym.SymbolName(), sym.ThreadNum(), sym.Level1Num(), 0, 0, lev == irep.Level2Global, sym.Type())
	}
	return l.pool.SymbolLevel2(sym.SymbolName(), sym.ThreadNum(), sym.Level1Num(), v.count, v.nodeID, lev == irep.Level2Global, sym.Type())
}

// Rename walks an L1-renamed expression, rewriting every symbol to its
// current L2 incarnation — or, when the binding folded to a constant,
// substituting that constant directly (renaming.cpp level2t::rename).
// address_of stops the descent: the pointed-to object's value
// numbering is irrelevant to the address itself.
func (l *Level2) Rename(e *irep.Expr) *irep.Expr {
	if e.Kind() == irep.KindAddressOf {
		return e
	}
	if s := e.SymbolName(); s != "" && (e.Level() == irep.Level2 || e.Level() == irep.Level2Global) {
		return e
	}
	if name := e.SymbolName(); name != "" {
		if isSpecialName(name) {
			return e
		}
		if v, ok := l.current[recordOf(e)]; ok && v.constant != nil {
			return v.constant
		}
		return l.GetIdentName(e)
	}
	ops := e.Operands()
	if len(ops) == 0 {
		return e
	}
	changed := false
	newOps := make([]*irep.Expr, len(ops))
	for i, o := range ops {
		newOps[i] = l.Rename(o)
		if newOps[i] != o {
			changed = true
		}
	}
	if !changed {
		return e
	}
	return l.pool.Rebuild(e, newOps)
}

// MakeAssignment bumps the value number bound to lhs (which must
// already be L1-renamed) and records constVal as its folded value
// when non-nil, returning the L2-renamed lhs to emit into the
// equation (renaming.cpp level2t::make_assignment).
func (l *Level2) MakeAssignment(lhs *irep.Expr, nodeID uint32, constVal *irep.Expr) *irep.Expr {
	rec := recordOf(lhs)
	v, ok := l.current[rec]
	if !ok {
		v = &value{}
		l.current[rec] = v
	}
	v.count++
	v.nodeID = nodeID
	v.constant = constVal

	lev := level2Of(lhs)
	return l.pool.SymbolLevel2(lhs.SymbolName(), lhs.ThreadNum(), lhs.Level1Num(), v.count, v.nodeID, lev == irep.Level2Global, lhs.Type())
}

// CoveredInBees forces the value number bound to lhs to count/nodeID,
// used when symex merges control-flow join points back into a single
// incarnation (renaming.cpp level2t::coveredinbees). The new count must
// not regress a binding that has already advanced further.
func (l *Level2) CoveredInBees(lhs *irep.Expr, count, nodeID uint32) error {
	rec := recordOf(lhs)
	v, ok := l.current[rec]
	if !ok {
		v = &value{}
		l.current[rec] = v
	}
	if v.count > count {
		return &ErrCountRegression{Name: lhs.SymbolName(), Have: v.count, Want: count}
	}
	v.count = count
	v.nodeID = nodeID
	return nil
}

// ErrCountRegression is returned by CoveredInBees when asked to move a
// binding's value number backwards.
type ErrCountRegression struct {
	Name      string
	Have, Want uint32
}

func (e *ErrCountRegression) Error() string {
	return "renaming: refusing to regress " + e.Name + "'s value count"
}

// GetOriginalName strips an expression back down to the requested
// renaming level, the inverse direction from Rename — used when
// printing a counterexample trace against the original source names
// (renaming.cpp renaming_levelt::get_original_name).
func GetOriginalName(pool *irep.Pool, e *irep.Expr, lev irep.RenameLevel) *irep.Expr {
	ops := e.Operands()
	newOps := make([]*irep.Expr, len(ops))
	changed := false
	for i, o := range ops {
		newOps[i] = GetOriginalName(pool, o, lev)
		if newOps[i] != o {
			changed = true
		}
	}
	base := e
	if changed {
		base = pool.Rebuild(e, newOps)
	}
	if base.SymbolName() == "" {
		return base
	}

	target := lev
	cur := base.Level()
	if lev == irep.Level1 && cur == irep.Level2Global {
		target = irep.Level1Global
	} else if lev == irep.Level1 && cur == irep.Level1Global {
		return base
	}
	if cur == irep.Level0 {
		return base
	}

	switch target {
	case irep.Level1, irep.Level1Global:
		return pool.SymbolLevel1(base.SymbolName(), base.ThreadNum(), base.Level1Num(), target == irep.Level1Global, base.Type())
	case irep.Level0:
		return pool.Symbol(base.SymbolName(), base.Type())
	default:
		panic("renaming: get_original_name requested an invalid target level")
	}
}
