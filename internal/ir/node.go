package ir

import (
	"jeff/internal/strtab"
	"jeff/internal/types"
)

// Value is a typed wire. It is identified only by its index in the owning
// function's value table.
type Value struct {
	Type types.Type
	Meta []Meta
}

// Region is a dataflow subgraph with ordered input and output ports. Ops
// carry no order beyond their data dependencies.
type Region struct {
	Sources []ValueID
	Targets []ValueID
	Ops     []Op
	Meta    []Meta
}

// Op consumes its inputs and produces its outputs; both refer to the
// owning function's value table.
type Op struct {
	Inputs  []ValueID
	Outputs []ValueID
	Instr   Instruction
	Meta    []Meta
}

// NamedRegion pairs a nested region with its role in the owning op.
type NamedRegion struct {
	Name   string
	Region *Region
}

// Regions lists the nested regions of op in a stable order.
func (op *Op) Regions() []NamedRegion {
	scf, ok := op.Instr.(ScfOp)
	if !ok {
		return nil
	}
	return scf.Regions()
}

type FuncKind uint8

const (
	FuncDefinition FuncKind = iota
	FuncDeclaration
)

func (k FuncKind) String() string {
	if k == FuncDeclaration {
		return "declaration"
	}
	return "definition"
}

// Function is either a definition (body region plus owned value table) or a
// declaration (signature only).
type Function struct {
	Name strtab.ID
	Kind FuncKind

	// Definition
	Body   Region
	Values []Value

	// Declaration
	Inputs  []types.Type
	Outputs []types.Type

	Meta []Meta
}

func (f *Function) IsDeclaration() bool { return f.Kind == FuncDeclaration }

// TypeOf resolves a value index against the function's value table.
func (f *Function) TypeOf(v ValueID) (types.Type, bool) {
	if int(v) >= len(f.Values) {
		return types.Type{}, false
	}
	return f.Values[v].Type, true
}

// Signature returns the external input and output types. For definitions
// they are derived from the body's sources and targets; ok is false when one
// of those indices does not resolve.
func (f *Function) Signature() (in, out []types.Type, ok bool) {
	if f.IsDeclaration() {
		return f.Inputs, f.Outputs, true
	}
	in, ok = f.typesOf(f.Body.Sources)
	if !ok {
		return nil, nil, false
	}
	out, ok = f.typesOf(f.Body.Targets)
	if !ok {
		return nil, nil, false
	}
	return in, out, true
}

func (f *Function) typesOf(ids []ValueID) ([]types.Type, bool) {
	out := make([]types.Type, len(ids))
	for i, id := range ids {
		t, ok := f.TypeOf(id)
		if !ok {
			return nil, false
		}
		out[i] = t
	}
	return out, true
}

// Module is the root of a program. A built Module is treated as immutable;
// see persist.go for copy-on-write derivation.
type Module struct {
	Version     Version
	Tool        string
	ToolVersion string
	Functions   []Function
	Strings     *strtab.Table
	Meta        []Meta
	Entrypoint  FuncID
}

// Function returns the function at idx, or nil when out of bounds.
func (m *Module) Function(idx FuncID) *Function {
	if int(idx) >= len(m.Functions) {
		return nil
	}
	return &m.Functions[idx]
}

// FuncName resolves a function's name through the string table; it returns
// "" when the index does not resolve.
func (m *Module) FuncName(idx FuncID) string {
	f := m.Function(idx)
	if f == nil {
		return ""
	}
	s, _ := m.Strings.Lookup(f.Name)
	return s
}
