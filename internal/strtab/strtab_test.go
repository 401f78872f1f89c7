package strtab

import (
	"errors"
	"testing"
)

func TestAppendKeepsDuplicates(t *testing.T) {
	tab := New(nil)
	a := tab.Append("main")
	b := tab.Append("main")
	if a == b {
		t.Fatalf("Append returned the same index twice: %d", a)
	}
	if tab.Len() != 2 {
		t.Fatalf("Len = %d, want 2", tab.Len())
	}
	if id, ok := tab.Index("main"); !ok || id != a {
		t.Fatalf("Index(main) = %d, %v; want %d", id, ok, a)
	}
}

func TestInternDeduplicates(t *testing.T) {
	tab := New([]string{"x", "y"})
	if id := tab.Intern("y"); id != 1 {
		t.Fatalf("Intern(y) = %d, want 1", id)
	}
	if id := tab.Intern("z"); id != 2 {
		t.Fatalf("Intern(z) = %d, want 2", id)
	}
}

func TestGetOutOfBounds(t *testing.T) {
	tab := New([]string{"only"})
	if s, err := tab.Get(0, "function name"); err != nil || s != "only" {
		t.Fatalf("Get(0) = %q, %v", s, err)
	}
	_, err := tab.Get(5, "function name")
	var oob *OutOfBoundsError
	if !errors.As(err, &oob) {
		t.Fatalf("Get(5) error = %v, want OutOfBoundsError", err)
	}
	if oob.ID != 5 || oob.Len != 1 {
		t.Fatalf("unexpected error payload: %+v", oob)
	}
}

func TestStringsIsACopy(t *testing.T) {
	tab := New([]string{"a"})
	s := tab.Strings()
	s[0] = "mutated"
	if got, _ := tab.Lookup(0); got != "a" {
		t.Fatalf("table mutated through Strings(): %q", got)
	}
}

func TestDedupRemap(t *testing.T) {
	tab := New([]string{"a", "b", "a", "c", "b"})
	out, remap := tab.Dedup()
	if out.Len() != 3 {
		t.Fatalf("deduped len = %d, want 3", out.Len())
	}
	want := []ID{0, 1, 0, 2, 1}
	for i, w := range want {
		if remap[i] != w {
			t.Fatalf("remap[%d] = %d, want %d", i, remap[i], w)
		}
	}
}
