package symtab

import "testing"

func TestInsertLookup(t *testing.T) {
	tab := New()
	e := &Entry{Name: "c::main::1::x", BaseName: "x", Storage: StorageAuto}
	if err := tab.Insert(e); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	got, err := tab.Lookup("c::main::1::x")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got != e {
		t.Fatalf("Lookup returned a different entry")
	}
}

func TestInsertDuplicate(t *testing.T) {
	tab := New()
	e := &Entry{Name: "x", BaseName: "x"}
	if err := tab.Insert(e); err != nil {
		t.Fatalf("first Insert: %v", err)
	}
	err := tab.Insert(&Entry{Name: "x", BaseName: "x"})
	if _, ok := err.(*ErrDuplicate); !ok {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestLookupNotFound(t *testing.T) {
	tab := New()
	_, err := tab.Lookup("missing")
	if _, ok := err.(*ErrNotFound); !ok {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLookupBasePreservesInsertionOrder(t *testing.T) {
	tab := New()
	e1 := &Entry{Name: "x!0", BaseName: "x"}
	e2 := &Entry{Name: "x!1", BaseName: "x"}
	e3 := &Entry{Name: "x!2", BaseName: "x"}
	for _, e := range []*Entry{e1, e2, e3} {
		if err := tab.Insert(e); err != nil {
			t.Fatalf("Insert %s: %v", e.Name, err)
		}
	}
	hits := tab.LookupBase("x")
	if len(hits) != 3 || hits[0] != e1 || hits[1] != e2 || hits[2] != e3 {
		t.Fatalf("LookupBase order mismatch: %v", hits)
	}
}

func TestOrderedMatchesInsertionOrder(t *testing.T) {
	tab := New()
	names := []string{"a", "b", "c", "d"}
	for _, n := range names {
		if err := tab.Insert(&Entry{Name: n, BaseName: n}); err != nil {
			t.Fatalf("Insert %s: %v", n, err)
		}
	}
	ordered := tab.Ordered()
	if len(ordered) != len(names) {
		t.Fatalf("Ordered length = %d, want %d", len(ordered), len(names))
	}
	for i, n := range names {
		if ordered[i].Name != n {
			t.Fatalf("Ordered[%d] = %s, want %s", i, ordered[i].Name, n)
		}
	}
}

func TestFreezeRejectsInsert(t *testing.T) {
	tab := New()
	if err := tab.Insert(&Entry{Name: "x", BaseName: "x"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	tab.Freeze()
	if err := tab.Insert(&Entry{Name: "y", BaseName: "y"}); err == nil {
		t.Fatalf("expected error inserting into frozen table")
	}
}

func TestLen(t *testing.T) {
	tab := New()
	if tab.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", tab.Len())
	}
	tab.Insert(&Entry{Name: "x", BaseName: "x"})
	if tab.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", tab.Len())
	}
}
