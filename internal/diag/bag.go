package diag

import (
	"errors"
	"fmt"
	"sort"
)

// Bag collects findings up to a limit.
type Bag struct {
	items []*Error
	max   int
}

func NewBag(max int) *Bag {
	if max <= 0 {
		max = 1
	}
	return &Bag{
		items: make([]*Error, 0, min(max, 16)),
		max:   max,
	}
}

// Add добавляет находку, учитывая лимит.
// Возвращает false, если находка не добавлена (достигнут лимит).
func (b *Bag) Add(e *Error) bool {
	if e == nil {
		return true
	}
	if len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, e)
	return true
}

// Full reports whether the limit was reached.
func (b *Bag) Full() bool {
	return len(b.items) >= b.max
}

func (b *Bag) Cap() int {
	return b.max
}

// HasErrors возвращает true, если есть хотя бы одна находка с Severity >= Error.
func (b *Bag) HasErrors() bool {
	for _, it := range b.items {
		if it.Severity >= SevError {
			return true
		}
	}
	return false
}

// HasWarnings возвращает true, если есть хотя бы одна находка с Severity >= Warning.
func (b *Bag) HasWarnings() bool {
	for _, it := range b.items {
		if it.Severity >= SevWarning {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only срез находок.
func (b *Bag) Items() []*Error {
	return b.items
}

// First returns the first error-severity finding, or nil.
func (b *Bag) First() *Error {
	for _, it := range b.items {
		if it.Severity >= SevError {
			return it
		}
	}
	return nil
}

// Sort orders findings by function, region path, op, value, then code, so
// output does not depend on scheduling.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		li, lj := b.items[i].Loc, b.items[j].Loc
		if li.Func != lj.Func {
			return li.Func < lj.Func
		}
		if pi, pj := li.Path.String(), lj.Path.String(); pi != pj {
			return pi < pj
		}
		if li.Op != lj.Op {
			return li.Op < lj.Op
		}
		if li.Value != lj.Value {
			return li.Value < lj.Value
		}
		return b.items[i].Code < b.items[j].Code
	})
}

// простая дедупликация (по Code+Loc)
func (b *Bag) Dedup() {
	seen := make(map[string]bool, len(b.items))
	out := make([]*Error, 0, len(b.items))
	for _, it := range b.items {
		key := fmt.Sprintf("%d:%s", it.Code, it.Loc)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, it)
	}
	b.items = out
}

// Err joins every error-severity finding; nil when the bag holds none.
func (b *Bag) Err() error {
	var errs []error
	for _, it := range b.items {
		if it.Severity >= SevError {
			errs = append(errs, it)
		}
	}
	return errors.Join(errs...)
}
