package codec

import (
	"fmt"
	"math"

	"jeff/internal/ir"
	"jeff/internal/types"
)

func toWire(m *ir.Module) (*wireModule, error) {
	w := &wireModule{
		Version:     uint32(m.Version),
		Tool:        m.Tool,
		ToolVersion: m.ToolVersion,
		Entrypoint:  uint32(m.Entrypoint),
		Strings:     m.Strings.Strings(),
		Meta:        metaToWire(m.Meta),
		Functions:   make([]wireFunction, len(m.Functions)),
	}
	for i := range m.Functions {
		wf, err := funcToWire(&m.Functions[i])
		if err != nil {
			return nil, fmt.Errorf("function #%d: %w", i, err)
		}
		w.Functions[i] = wf
	}
	return w, nil
}

func funcToWire(f *ir.Function) (wireFunction, error) {
	wf := wireFunction{Name: uint32(f.Name), Meta: metaToWire(f.Meta)}
	if f.IsDeclaration() {
		wf.Declaration = true
		var err error
		if wf.Inputs, err = typesToWire(f.Inputs); err != nil {
			return wf, fmt.Errorf("inputs: %w", err)
		}
		if wf.Outputs, err = typesToWire(f.Outputs); err != nil {
			return wf, fmt.Errorf("outputs: %w", err)
		}
		return wf, nil
	}
	wf.Values = make([]wireValue, len(f.Values))
	for i, v := range f.Values {
		if err := v.Type.Validate(); err != nil {
			return wf, fmt.Errorf("value %%%d: %w", i, err)
		}
		wf.Values[i] = wireValue{Type: v.Type.String(), Meta: metaToWire(v.Meta)}
	}
	body, err := regionToWire(&f.Body)
	if err != nil {
		return wf, err
	}
	wf.Body = &body
	return wf, nil
}

func typesToWire(ts []types.Type) ([]string, error) {
	if len(ts) == 0 {
		return nil, nil
	}
	out := make([]string, len(ts))
	for i, t := range ts {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		out[i] = t.String()
	}
	return out, nil
}

func metaToWire(ms []ir.Meta) []wireMeta {
	if len(ms) == 0 {
		return nil
	}
	out := make([]wireMeta, len(ms))
	for i, m := range ms {
		out[i] = wireMeta{Name: uint32(m.Name), Value: Blob(m.Value)}
	}
	return out
}

func idsToWire(ids []ir.ValueID) []uint32 {
	if len(ids) == 0 {
		return nil
	}
	out := make([]uint32, len(ids))
	for i, v := range ids {
		out[i] = uint32(v)
	}
	return out
}

func regionToWire(r *ir.Region) (wireRegion, error) {
	wr := wireRegion{
		Sources: idsToWire(r.Sources),
		Targets: idsToWire(r.Targets),
		Meta:    metaToWire(r.Meta),
	}
	if len(r.Ops) > 0 {
		wr.Ops = make([]wireOp, len(r.Ops))
	}
	for i := range r.Ops {
		op := &r.Ops[i]
		instr, err := instrToWire(op.Instr)
		if err != nil {
			return wr, fmt.Errorf("op %d: %w", i, err)
		}
		wr.Ops[i] = wireOp{
			Instr:   instr,
			Inputs:  idsToWire(op.Inputs),
			Outputs: idsToWire(op.Outputs),
			Meta:    metaToWire(op.Meta),
		}
	}
	return wr, nil
}

func instrToWire(in ir.Instruction) (wireInstr, error) {
	if in == nil {
		return wireInstr{}, fmt.Errorf("missing instruction")
	}
	w := wireInstr{Op: ir.QualifiedName(in)}
	switch x := in.(type) {
	case ir.QubitOp:
		if x.Kind == ir.QubitGate {
			w.Gate = gateToWire(x.Gate)
		}
	case ir.QuregOp:
	case ir.IntOp:
		w.Width = uint8(x.Width)
		if x.Kind == ir.IntConst || x.Value != 0 {
			v := x.Value
			w.Int = &v
		}
	case ir.IntArrayOp:
		w.Width = uint8(x.Width)
		w.Ints = x.Values
	case ir.FloatOp:
		w.Precision = uint8(x.Precision)
		if x.Kind == ir.FloatConst || math.Float64bits(x.Value) != 0 {
			v := Float(x.Value)
			w.Float = &v
		}
	case ir.FloatArrayOp:
		w.Precision = uint8(x.Precision)
		w.Floats = floatsToWire(x.Values)
	case ir.FuncOp:
		c := uint32(x.Callee)
		w.Callee = &c
	case ir.ScfOp:
		for i := range x.Branches {
			br, err := regionToWire(&x.Branches[i])
			if err != nil {
				return w, fmt.Errorf("branch %d: %w", i, err)
			}
			w.Branches = append(w.Branches, br)
		}
		var err error
		if x.Default != nil {
			if w.Default, err = regionPtr(x.Default); err != nil {
				return w, fmt.Errorf("default: %w", err)
			}
		}
		if x.Kind != ir.ScfSwitch || !empty(&x.Body) {
			if w.Body, err = regionPtr(&x.Body); err != nil {
				return w, fmt.Errorf("body: %w", err)
			}
		}
		if x.Kind == ir.ScfWhile || x.Kind == ir.ScfDoWhile || !empty(&x.Cond) {
			if w.Cond, err = regionPtr(&x.Cond); err != nil {
				return w, fmt.Errorf("cond: %w", err)
			}
		}
	}
	return w, nil
}

func empty(r *ir.Region) bool {
	return len(r.Sources) == 0 && len(r.Targets) == 0 && len(r.Ops) == 0 && len(r.Meta) == 0
}

func regionPtr(r *ir.Region) (*wireRegion, error) {
	wr, err := regionToWire(r)
	if err != nil {
		return nil, err
	}
	return &wr, nil
}

func gateToWire(g ir.Gate) *wireGate {
	w := &wireGate{
		Kind:     g.Kind.String(),
		Controls: g.Controls,
		Adjoint:  g.Adjoint,
		Power:    g.Power,
	}
	switch g.Kind {
	case ir.GateWellKnown:
		w.WellKnown = g.WellKnown.String()
	case ir.GatePPR:
		w.Pauli = ir.FormatPauliString(g.Pauli)
	case ir.GateCustom:
		w.Name, w.Qubits, w.Params = uint32(g.Name), g.NumQubits, g.NumParams
	}
	return w
}
