package ir

import (
	"bytes"
	"math"
	"slices"
)

// Equal reports structural equality of two modules. Nil and empty slices
// compare equal; string tables compare entry by entry. Float constants
// compare by bit pattern so NaN payloads survive round trips.
func Equal(a, b *Module) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Version != b.Version || a.Tool != b.Tool || a.ToolVersion != b.ToolVersion || a.Entrypoint != b.Entrypoint {
		return false
	}
	if !slices.Equal(a.Strings.Strings(), b.Strings.Strings()) || !metaEqual(a.Meta, b.Meta) {
		return false
	}
	return slices.EqualFunc(a.Functions, b.Functions, func(x, y Function) bool { return FunctionEqual(&x, &y) })
}

// FunctionEqual reports structural equality of two functions.
func FunctionEqual(a, b *Function) bool {
	if a.Name != b.Name || a.Kind != b.Kind || !metaEqual(a.Meta, b.Meta) {
		return false
	}
	if a.IsDeclaration() {
		return slices.Equal(a.Inputs, b.Inputs) && slices.Equal(a.Outputs, b.Outputs)
	}
	valEq := func(x, y Value) bool { return x.Type == y.Type && metaEqual(x.Meta, y.Meta) }
	return slices.EqualFunc(a.Values, b.Values, valEq) && RegionEqual(&a.Body, &b.Body)
}

// RegionEqual reports structural equality of two regions, recursively.
func RegionEqual(a, b *Region) bool {
	if a == nil || b == nil {
		return a == b
	}
	return slices.Equal(a.Sources, b.Sources) &&
		slices.Equal(a.Targets, b.Targets) &&
		metaEqual(a.Meta, b.Meta) &&
		slices.EqualFunc(a.Ops, b.Ops, func(x, y Op) bool { return opEqual(&x, &y) })
}

func opEqual(a, b *Op) bool {
	return slices.Equal(a.Inputs, b.Inputs) &&
		slices.Equal(a.Outputs, b.Outputs) &&
		metaEqual(a.Meta, b.Meta) &&
		InstructionEqual(a.Instr, b.Instr)
}

// InstructionEqual reports structural equality of two instructions.
func InstructionEqual(a, b Instruction) bool {
	switch x := a.(type) {
	case QubitOp:
		y, ok := b.(QubitOp)
		return ok && x.Kind == y.Kind && (x.Kind != QubitGate || gateEqual(x.Gate, y.Gate))
	case QuregOp:
		y, ok := b.(QuregOp)
		return ok && x == y
	case IntOp:
		y, ok := b.(IntOp)
		return ok && x == y
	case IntArrayOp:
		y, ok := b.(IntArrayOp)
		return ok && x.Kind == y.Kind && x.Width == y.Width && slices.Equal(x.Values, y.Values)
	case FloatOp:
		y, ok := b.(FloatOp)
		return ok && x.Kind == y.Kind && x.Precision == y.Precision &&
			math.Float64bits(x.Value) == math.Float64bits(y.Value)
	case FloatArrayOp:
		y, ok := b.(FloatArrayOp)
		return ok && x.Kind == y.Kind && x.Precision == y.Precision &&
			slices.EqualFunc(x.Values, y.Values, func(p, q float64) bool {
				return math.Float64bits(p) == math.Float64bits(q)
			})
	case ScfOp:
		y, ok := b.(ScfOp)
		if !ok || x.Kind != y.Kind {
			return false
		}
		return slices.EqualFunc(x.Branches, y.Branches, func(p, q Region) bool { return RegionEqual(&p, &q) }) &&
			RegionEqual(x.Default, y.Default) &&
			RegionEqual(&x.Body, &y.Body) &&
			RegionEqual(&x.Cond, &y.Cond)
	case FuncOp:
		y, ok := b.(FuncOp)
		return ok && x == y
	case nil:
		return b == nil
	}
	return false
}

func gateEqual(a, b Gate) bool {
	if a.Kind != b.Kind || a.Controls != b.Controls || a.Adjoint != b.Adjoint || a.Power != b.Power {
		return false
	}
	switch a.Kind {
	case GateWellKnown:
		return a.WellKnown == b.WellKnown
	case GatePPR:
		return slices.Equal(a.Pauli, b.Pauli)
	case GateCustom:
		return a.Name == b.Name && a.NumQubits == b.NumQubits && a.NumParams == b.NumParams
	}
	return true
}

func metaEqual(a, b []Meta) bool {
	return slices.EqualFunc(a, b, func(x, y Meta) bool {
		return x.Name == y.Name && bytes.Equal(x.Value, y.Value)
	})
}
