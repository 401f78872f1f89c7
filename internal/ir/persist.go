package ir

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// Derivation helpers. A Module handed out by the builder or the decoder is
// never mutated in place: these return a shallow copy with one component
// replaced, so unchanged functions and the string table stay shared.

// WithFunction returns a copy of m with function idx replaced by f.
func (m *Module) WithFunction(idx FuncID, f Function) (*Module, error) {
	if int(idx) >= len(m.Functions) {
		return nil, fmt.Errorf("function index %d out of bounds (module has %d functions)", idx, len(m.Functions))
	}
	out := *m
	out.Functions = slices.Clone(m.Functions)
	out.Functions[idx] = f
	return &out, nil
}

// AppendFunction returns a copy of m with f added at the end, along with
// the new function's index.
func (m *Module) AppendFunction(f Function) (*Module, FuncID) {
	n, err := safecast.Conv[uint32](len(m.Functions))
	if err != nil {
		panic(fmt.Errorf("function table overflow: %w", err))
	}
	out := *m
	out.Functions = append(slices.Clone(m.Functions), f)
	return &out, FuncID(n)
}

// WithMeta returns a copy of m with module metadata replaced.
func (m *Module) WithMeta(meta []Meta) *Module {
	out := *m
	out.Meta = slices.Clone(meta)
	return &out
}

// WithEntrypoint returns a copy of m with a different entrypoint index.
// Bounds are checked by the validator, not here.
func (m *Module) WithEntrypoint(idx FuncID) *Module {
	out := *m
	out.Entrypoint = idx
	return &out
}
