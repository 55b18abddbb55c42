package smtconv

import "fmt"

// ErrSortMismatch is raised when an operator's flattened operand does
// not have the shape the operator needs — a member access on something
// that did not flatten to a tupleAst, a tuple equality/ite between
// operands with incompatible field lists, or a struct typecast between
// layouts that are not actually compatible. It is smt_convt's catch-all
// for "the SMT-level representation does not match what this operator
// assumed", distinct from ErrStructuralMismatch (an IR-level error
// caught one layer down, in internal/irep).
type ErrSortMismatch struct {
	Op     string
	Detail string
}

func (e *ErrSortMismatch) Error() string {
	return fmt.Sprintf("smtconv: sort mismatch in %s: %s", e.Op, e.Detail)
}

// ErrCacheLevelExceeded is raised by Converter.PopCtx when asked to
// leave a context level deeper than has ever been entered by a
// matching PushCtx — a caller protocol error (spec.md §7), reported
// rather than left to crash the process the way LeveledCache.Pop's own
// underflow guard does internally.
type ErrCacheLevelExceeded struct {
	Level int
}

func (e *ErrCacheLevelExceeded) Error() string {
	return fmt.Sprintf("smtconv: pop_ctx below level %d with no matching push_ctx", e.Level)
}
