// Package strtab implements the module-scoped string table. Entries are
// addressed by index from anywhere in a module; duplicates are legal.
package strtab

import (
	"fmt"

	"fortio.org/safecast"
)

// ID indexes a string in a Table.
type ID uint32

// Table stores strings by index. The zero value is an empty table.
type Table struct {
	strs  []string
	index map[string]ID
}

// New builds a table over a copy of strs, preserving order and duplicates.
func New(strs []string) *Table {
	t := &Table{
		strs:  make([]string, 0, len(strs)),
		index: make(map[string]ID, len(strs)),
	}
	for _, s := range strs {
		t.Append(s)
	}
	return t
}

// Append adds s unconditionally and returns its index.
func (t *Table) Append(s string) ID {
	n, err := safecast.Conv[uint32](len(t.strs))
	if err != nil {
		panic(fmt.Errorf("string table overflow: %w", err))
	}
	id := ID(n)
	t.strs = append(t.strs, s)
	if t.index == nil {
		t.index = make(map[string]ID)
	}
	// первое вхождение остаётся каноническим
	if _, ok := t.index[s]; !ok {
		t.index[s] = id
	}
	return id
}

// Intern returns the index of the first entry equal to s, appending it when
// absent.
func (t *Table) Intern(s string) ID {
	if id, ok := t.index[s]; ok {
		return id
	}
	return t.Append(s)
}

// Index returns the index of the first entry equal to s.
func (t *Table) Index(s string) (ID, bool) {
	id, ok := t.index[s]
	return id, ok
}

// Lookup resolves id without failing.
func (t *Table) Lookup(id ID) (string, bool) {
	if t == nil || int(id) >= len(t.strs) {
		return "", false
	}
	return t.strs[id], true
}

// Get resolves id; what names the referencing field for the error message.
func (t *Table) Get(id ID, what string) (string, error) {
	s, ok := t.Lookup(id)
	if !ok {
		return "", &OutOfBoundsError{What: what, ID: id, Len: t.Len()}
	}
	return s, nil
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.strs)
}

// Strings returns a copy of the entries in index order.
func (t *Table) Strings() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.strs))
	copy(out, t.strs)
	return out
}

// Clone returns an independent copy of the table.
func (t *Table) Clone() *Table {
	return New(t.Strings())
}

// Dedup returns a table without duplicate entries together with the mapping
// from old to new indices.
func (t *Table) Dedup() (*Table, []ID) {
	out := &Table{index: make(map[string]ID, t.Len())}
	remap := make([]ID, t.Len())
	for i, s := range t.Strings() {
		remap[i] = out.Intern(s)
	}
	return out, remap
}

// OutOfBoundsError reports a string reference past the end of the table.
type OutOfBoundsError struct {
	What string
	ID   ID
	Len  int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("%s: string index %d out of bounds (table has %d entries)", e.What, e.ID, e.Len)
}
