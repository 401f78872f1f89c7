package codec

import (
	"errors"
	"fmt"
	"strings"

	"jeff/internal/diag"
	"jeff/internal/ir"
	"jeff/internal/strtab"
	"jeff/internal/types"
)

// ErrMalformed wraps every decoding failure that is not a version mismatch.
var ErrMalformed = errors.New("malformed module")

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

// checkVersion rejects unsupported major versions before anything else is
// interpreted.
func checkVersion(v uint32) error {
	ver := ir.Version(v)
	if ver.Supported() {
		return nil
	}
	return diag.Errorf(diag.CompatVersion, diag.ModuleLoc(),
		"module version %s is not supported (supported major version %d)", ver, ir.CurrentVersion.Major())
}

func fromWire(w *wireModule) (*ir.Module, error) {
	if err := checkVersion(w.Version); err != nil {
		return nil, err
	}
	m := &ir.Module{
		Version:     ir.Version(w.Version),
		Tool:        w.Tool,
		ToolVersion: w.ToolVersion,
		Entrypoint:  ir.FuncID(w.Entrypoint),
		Strings:     strtab.New(w.Strings),
		Meta:        metaFromWire(w.Meta),
	}
	if len(w.Functions) > 0 {
		m.Functions = make([]ir.Function, len(w.Functions))
	}
	for i := range w.Functions {
		f, err := funcFromWire(&w.Functions[i])
		if err != nil {
			return nil, fmt.Errorf("function #%d: %w", i, err)
		}
		m.Functions[i] = f
	}
	return m, nil
}

func funcFromWire(w *wireFunction) (ir.Function, error) {
	f := ir.Function{Name: strtab.ID(w.Name), Meta: metaFromWire(w.Meta)}
	var err error
	if w.Declaration {
		f.Kind = ir.FuncDeclaration
		if w.Body != nil || len(w.Values) > 0 {
			return f, malformed("declaration carries a body")
		}
		if f.Inputs, err = typesFromWire(w.Inputs); err != nil {
			return f, fmt.Errorf("inputs: %w", err)
		}
		if f.Outputs, err = typesFromWire(w.Outputs); err != nil {
			return f, fmt.Errorf("outputs: %w", err)
		}
		return f, nil
	}
	if len(w.Inputs) > 0 || len(w.Outputs) > 0 {
		return f, malformed("definition carries a declared signature")
	}
	if len(w.Values) > 0 {
		f.Values = make([]ir.Value, len(w.Values))
	}
	for i, v := range w.Values {
		t, err := types.Parse(v.Type)
		if err != nil {
			return f, malformed("value %%%d: %v", i, err)
		}
		f.Values[i] = ir.Value{Type: t, Meta: metaFromWire(v.Meta)}
	}
	if w.Body != nil {
		if f.Body, err = regionFromWire(w.Body); err != nil {
			return f, err
		}
	}
	return f, nil
}

func typesFromWire(ss []string) ([]types.Type, error) {
	if len(ss) == 0 {
		return nil, nil
	}
	out := make([]types.Type, len(ss))
	for i, s := range ss {
		t, err := types.Parse(s)
		if err != nil {
			return nil, malformed("position %d: %v", i, err)
		}
		out[i] = t
	}
	return out, nil
}

func metaFromWire(ws []wireMeta) []ir.Meta {
	if len(ws) == 0 {
		return nil
	}
	out := make([]ir.Meta, len(ws))
	for i, w := range ws {
		out[i] = ir.Meta{Name: strtab.ID(w.Name), Value: []byte(w.Value)}
	}
	return out
}

func idsFromWire(ws []uint32) []ir.ValueID {
	if len(ws) == 0 {
		return nil
	}
	out := make([]ir.ValueID, len(ws))
	for i, v := range ws {
		out[i] = ir.ValueID(v)
	}
	return out
}

func regionFromWire(w *wireRegion) (ir.Region, error) {
	r := ir.Region{
		Sources: idsFromWire(w.Sources),
		Targets: idsFromWire(w.Targets),
		Meta:    metaFromWire(w.Meta),
	}
	if len(w.Ops) > 0 {
		r.Ops = make([]ir.Op, len(w.Ops))
	}
	for i := range w.Ops {
		wo := &w.Ops[i]
		instr, err := instrFromWire(&wo.Instr)
		if err != nil {
			return r, fmt.Errorf("op %d: %w", i, err)
		}
		r.Ops[i] = ir.Op{
			Inputs:  idsFromWire(wo.Inputs),
			Outputs: idsFromWire(wo.Outputs),
			Instr:   instr,
			Meta:    metaFromWire(wo.Meta),
		}
	}
	return r, nil
}

func instrFromWire(w *wireInstr) (ir.Instruction, error) {
	catName, kindName, ok := strings.Cut(w.Op, ".")
	if !ok {
		return nil, malformed("operation %q is not of the form category.name", w.Op)
	}
	cat, ok := ir.ParseCategory(catName)
	if !ok {
		return nil, malformed("unknown operation category %q", catName)
	}
	unknown := func() (ir.Instruction, error) {
		return nil, malformed("unknown %s operation %q", catName, kindName)
	}
	switch cat {
	case ir.CatQubit:
		k, ok := ir.ParseQubitOpKind(kindName)
		if !ok {
			return unknown()
		}
		op := ir.QubitOp{Kind: k}
		if k == ir.QubitGate {
			if w.Gate == nil {
				return nil, malformed("qubit.gate without gate description")
			}
			g, err := gateFromWire(w.Gate)
			if err != nil {
				return nil, err
			}
			op.Gate = g
		}
		return op, nil
	case ir.CatQureg:
		k, ok := ir.ParseQuregOpKind(kindName)
		if !ok {
			return unknown()
		}
		return ir.QuregOp{Kind: k}, nil
	case ir.CatInt:
		k, ok := ir.ParseIntOpKind(kindName)
		if !ok {
			return unknown()
		}
		op := ir.IntOp{Kind: k, Width: types.Width(w.Width)}
		if w.Int != nil {
			op.Value = *w.Int
		} else if k == ir.IntConst {
			return nil, malformed("int.const without value")
		}
		return op, nil
	case ir.CatIntArray:
		k, ok := ir.ParseIntArrayOpKind(kindName)
		if !ok {
			return unknown()
		}
		return ir.IntArrayOp{Kind: k, Width: types.Width(w.Width), Values: w.Ints}, nil
	case ir.CatFloat:
		k, ok := ir.ParseFloatOpKind(kindName)
		if !ok {
			return unknown()
		}
		op := ir.FloatOp{Kind: k, Precision: types.Precision(w.Precision)}
		if w.Float != nil {
			op.Value = float64(*w.Float)
		} else if k == ir.FloatConst {
			return nil, malformed("float.const without value")
		}
		return op, nil
	case ir.CatFloatArray:
		k, ok := ir.ParseFloatArrayOpKind(kindName)
		if !ok {
			return unknown()
		}
		return ir.FloatArrayOp{Kind: k, Precision: types.Precision(w.Precision), Values: floatsFromWire(w.Floats)}, nil
	case ir.CatFunc:
		if kindName != "call" {
			return unknown()
		}
		if w.Callee == nil {
			return nil, malformed("func.call without callee")
		}
		return ir.FuncOp{Callee: ir.FuncID(*w.Callee)}, nil
	case ir.CatScf:
		k, ok := ir.ParseScfKind(kindName)
		if !ok {
			return unknown()
		}
		return scfFromWire(k, w)
	}
	return unknown()
}

func scfFromWire(k ir.ScfKind, w *wireInstr) (ir.Instruction, error) {
	op := ir.ScfOp{Kind: k}
	for i := range w.Branches {
		r, err := regionFromWire(&w.Branches[i])
		if err != nil {
			return nil, fmt.Errorf("branch %d: %w", i, err)
		}
		op.Branches = append(op.Branches, r)
	}
	if w.Default != nil {
		r, err := regionFromWire(w.Default)
		if err != nil {
			return nil, fmt.Errorf("default: %w", err)
		}
		op.Default = &r
	}
	var err error
	if w.Body != nil {
		if op.Body, err = regionFromWire(w.Body); err != nil {
			return nil, fmt.Errorf("body: %w", err)
		}
	} else if k != ir.ScfSwitch {
		return nil, malformed("scf.%s without body region", k)
	}
	if w.Cond != nil {
		if op.Cond, err = regionFromWire(w.Cond); err != nil {
			return nil, fmt.Errorf("cond: %w", err)
		}
	} else if k == ir.ScfWhile || k == ir.ScfDoWhile {
		return nil, malformed("scf.%s without condition region", k)
	}
	return op, nil
}

func gateFromWire(w *wireGate) (ir.Gate, error) {
	kind, ok := ir.ParseGateKind(w.Kind)
	if !ok {
		return ir.Gate{}, malformed("unknown gate kind %q", w.Kind)
	}
	g := ir.Gate{Kind: kind, Controls: w.Controls, Adjoint: w.Adjoint, Power: w.Power}
	switch kind {
	case ir.GateWellKnown:
		if g.WellKnown, ok = ir.ParseWellKnownGate(w.WellKnown); !ok {
			return g, malformed("unknown well-known gate %q", w.WellKnown)
		}
	case ir.GatePPR:
		if g.Pauli, ok = ir.ParsePauliString(w.Pauli); !ok {
			return g, malformed("invalid pauli string %q", w.Pauli)
		}
	case ir.GateCustom:
		g.Name, g.NumQubits, g.NumParams = strtab.ID(w.Name), w.Qubits, w.Params
	}
	return g, nil
}
