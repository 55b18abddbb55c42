// Package symtab implements the program-wide symbol table (spec.md
// §3.4): a mapping from fully-qualified symbol name to its declared
// type, storage class and initial value, shared read-only once
// construction of a translation unit completes.
package symtab

import (
	"fmt"
	"sync"

	"github.com/benbjohnson/immutable"

	"github.com/fbrausse/esbmc/internal/irep"
)

// StorageClass classifies a symbol the way ESBMC's symbolt does: where
// it lives and how renaming should treat it.
type StorageClass uint8

const (
	StorageAuto StorageClass = iota
	StorageStatic
	StorageExtern
	StorageParameter
	StorageThreadLocal
)

func (s StorageClass) String() string {
	switch s {
	case StorageAuto:
		return "auto"
	case StorageStatic:
		return "static"
	case StorageExtern:
		return "extern"
	case StorageParameter:
		return "parameter"
	case StorageThreadLocal:
		return "thread_local"
	default:
		return "<unknown-storage-class>"
	}
}

// Entry is one symbol table row.
type Entry struct {
	Name    string
	BaseName string
	Module  string
	Type    *irep.Type
	Value   *irep.Expr // nil if uninitialized
	Storage StorageClass
	IsType  bool // symbol denotes a type tag, not a value
	IsLvalue bool
}

// ErrDuplicate is returned by Insert when name is already present.
type ErrDuplicate struct{ Name string }

func (e *ErrDuplicate) Error() string { return fmt.Sprintf("symtab: duplicate symbol %q", e.Name) }

// ErrNotFound is returned by lookups that miss.
type ErrNotFound struct{ Name string }

func (e *ErrNotFound) Error() string { return fmt.Sprintf("symtab: no such symbol %q", e.Name) }

// Table is an insertion-ordered, append-only symbol table. Following
// spec.md §3.4's "two-tier cache design" note, lookup by full name goes
// through a plain map while emission order is recovered from an
// immutable.SortedMap keyed by insertion sequence number — the same
// split ExprBuilder draws between its bvcache/boolcache
// hash buckets and the counters that track them.
//
// A Table is safe for concurrent readers once Freeze has been called;
// until then, all access must be single-writer (spec.md §5).
type Table struct {
	mu      sync.RWMutex
	byName  map[string]*Entry
	byBase  map[string][]*Entry
	ordered *immutable.SortedMap
	nextSeq uint64
	frozen  bool
}

// seqComparer orders insertion-sequence keys, mirroring glee's
// uint64Comparer over ExecutionState's heap addresses.
type seqComparer struct{}

func (seqComparer) Compare(a, b interface{}) int {
	x, y := a.(uint64), b.(uint64)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

func New() *Table {
	return &Table{
		byName:  map[string]*Entry{},
		byBase:  map[string][]*Entry{},
		ordered: immutable.NewSortedMap(seqComparer{}),
	}
}

// Insert adds e, keyed by e.Name, preserving insertion order for
// Ordered(). Fails with ErrDuplicate if the name is already present, or
// if the table has been frozen.
func (t *Table) Insert(e *Entry) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.frozen {
		return fmt.Errorf("symtab: insert into frozen table")
	}
	if _, ok := t.byName[e.Name]; ok {
		return &ErrDuplicate{Name: e.Name}
	}
	t.byName[e.Name] = e
	t.byBase[e.BaseName] = append(t.byBase[e.BaseName], e)
	t.ordered = t.ordered.Set(t.nextSeq, e)
	t.nextSeq++
	return nil
}

// Lookup resolves a fully-qualified name.
func (t *Table) Lookup(name string) (*Entry, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.byName[name]
	if !ok {
		return nil, &ErrNotFound{Name: name}
	}
	return e, nil
}

// LookupBase returns every entry sharing an unqualified base name,
// e.g. every renamed incarnation of a local variable, in insertion
// order.
func (t *Table) LookupBase(base string) []*Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	hits := t.byBase[base]
	out := make([]*Entry, len(hits))
	copy(out, hits)
	return out
}

// Freeze marks the table read-only; subsequent Insert calls fail. Call
// once a translation unit's symbols are fully collected, per spec.md
// §5's construction/query phase split.
func (t *Table) Freeze() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frozen = true
}

// Ordered returns every entry in insertion order, the form the trace
// snapshotter (trace.SnapshotPool) consumes.
func (t *Table) Ordered() []*Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Entry, 0, t.nextSeq)
	it := t.ordered.Iterator()
	for {
		k, v := it.Next()
		if k == nil {
			break
		}
		out = append(out, v.(*Entry))
	}
	return out
}

// Len reports the number of entries.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byName)
}
