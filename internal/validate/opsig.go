package validate

import (
	"jeff/internal/diag"
	"jeff/internal/ir"
	"jeff/internal/strtab"
	"jeff/internal/types"
)

// shapeOf returns the port contract of a data instruction. Control flow and
// calls are checked separately because their contracts depend on nested
// regions and callee signatures.
func shapeOf(instr ir.Instruction, strs *strtab.Table) (shape, *problem) {
	switch in := instr.(type) {
	case ir.QubitOp:
		return qubitShape(in, strs)
	case ir.QuregOp:
		return quregShape(in)
	case ir.IntOp:
		return intShape(in)
	case ir.IntArrayOp:
		return intArrayShape(in)
	case ir.FloatOp:
		return floatShape(in)
	case ir.FloatArrayOp:
		return floatArrayShape(in)
	case nil:
		return shape{}, problemf(diag.StructBadInstruction, "op carries no instruction")
	}
	return shape{}, problemf(diag.StructBadInstruction, "no data contract for %s", ir.QualifiedName(instr))
}

func unknownKind(instr ir.Instruction) (shape, *problem) {
	return shape{}, problemf(diag.StructBadInstruction, "unknown %s operation %q", instr.Category(), instr.Name())
}

func qubitShape(op ir.QubitOp, strs *strtab.Table) (shape, *problem) {
	switch op.Kind {
	case ir.QubitAlloc:
		return shape{out: []slot{qubitSlot}}, nil
	case ir.QubitFree, ir.QubitFreeZero:
		return shape{in: []slot{qubitSlot}}, nil
	case ir.QubitMeasure:
		return shape{in: []slot{qubitSlot}, out: []slot{boolSlot}}, nil
	case ir.QubitMeasureNd:
		return shape{in: []slot{qubitSlot}, out: []slot{qubitSlot, boolSlot}}, nil
	case ir.QubitReset:
		return shape{in: []slot{qubitSlot}, out: []slot{qubitSlot}}, nil
	case ir.QubitGate:
		return gateShape(op.Gate, strs)
	}
	return unknownKind(op)
}

// gateShape: targets, then controls, then float parameters on the input
// side; targets, then controls on the output side.
func gateShape(g ir.Gate, strs *strtab.Table) (shape, *problem) {
	switch g.Kind {
	case ir.GateWellKnown:
		if !g.WellKnown.Valid() {
			return shape{}, problemf(diag.StructBadInstruction, "unknown well-known gate %d", g.WellKnown)
		}
	case ir.GatePPR:
		for i, p := range g.Pauli {
			if p > ir.PauliZ {
				return shape{}, problemf(diag.StructBadInstruction, "pauli string position %d: invalid operator %d", i, p)
			}
		}
	case ir.GateCustom:
		if _, err := strs.Get(g.Name, "custom gate name"); err != nil {
			return shape{}, problemf(diag.StructStringOutOfBounds, "%v", err)
		}
	default:
		return shape{}, problemf(diag.StructBadInstruction, "unknown gate kind %d", g.Kind)
	}
	q := g.Qubits()
	in := append(repeat(qubitSlot, q), repeat(anyFloat(), g.Params())...)
	return shape{in: in, out: repeat(qubitSlot, q)}, nil
}

func quregShape(op ir.QuregOp) (shape, *problem) {
	switch op.Kind {
	case ir.QuregAlloc:
		return shape{in: []slot{anyInt()}, out: []slot{quregSlot}}, nil
	case ir.QuregFree, ir.QuregFreeZero:
		return shape{in: []slot{quregSlot}}, nil
	case ir.QuregExtractIndex:
		return shape{in: []slot{quregSlot, anyInt()}, out: []slot{quregSlot, qubitSlot}}, nil
	case ir.QuregInsertIndex:
		return shape{in: []slot{quregSlot, qubitSlot, anyInt()}, out: []slot{quregSlot}}, nil
	case ir.QuregExtractSlice:
		return shape{in: []slot{quregSlot, anyInt(), anyInt()}, out: []slot{quregSlot, quregSlot}}, nil
	case ir.QuregInsertSlice:
		return shape{in: []slot{quregSlot, quregSlot, anyInt()}, out: []slot{quregSlot}}, nil
	case ir.QuregLength:
		return shape{in: []slot{quregSlot}, out: []slot{quregSlot, anyInt()}}, nil
	case ir.QuregSplit:
		return shape{in: []slot{quregSlot, anyInt()}, out: []slot{quregSlot, quregSlot}}, nil
	case ir.QuregJoin:
		return shape{in: []slot{quregSlot, quregSlot}, out: []slot{quregSlot}}, nil
	case ir.QuregCreate:
		return shape{rest: &qubitSlot, out: []slot{quregSlot}}, nil
	}
	return unknownKind(op)
}

// fits reports whether v is representable in w unsigned bits.
func fits(v uint64, w types.Width) bool {
	return w >= 64 || v < uint64(1)<<w
}

func intShape(op ir.IntOp) (shape, *problem) {
	n := intN('N')
	switch {
	case op.Kind == ir.IntConst:
		if !types.ValidWidth(op.Width) {
			return shape{}, problemf(diag.StructBadInstruction, "unsupported constant width %d", op.Width)
		}
		if !fits(op.Value, op.Width) {
			return shape{}, problemf(diag.StructBadInstruction, "constant %d does not fit in int%d", op.Value, op.Width)
		}
		return shape{out: []slot{exact(types.Int(op.Width))}}, nil
	case op.Kind.IsUnary():
		return shape{in: []slot{n}, out: []slot{n}}, nil
	case op.Kind.IsComparison():
		return shape{in: []slot{n, n}, out: []slot{boolSlot}}, nil
	case op.Kind <= ir.IntShr:
		return shape{in: []slot{n, n}, out: []slot{n}}, nil
	}
	return unknownKind(op)
}

func intArrayShape(op ir.IntArrayOp) (shape, *problem) {
	elem, arr := intN('N'), intArrN('N')
	switch op.Kind {
	case ir.IntArrayConst, ir.IntArrayZero:
		if !types.ValidWidth(op.Width) {
			return shape{}, problemf(diag.StructBadInstruction, "unsupported element width %d", op.Width)
		}
		out := []slot{exact(types.IntArray(op.Width))}
		if op.Kind == ir.IntArrayZero {
			return shape{in: []slot{anyInt()}, out: out}, nil
		}
		for i, v := range op.Values {
			if !fits(v, op.Width) {
				return shape{}, problemf(diag.StructBadInstruction, "element %d: constant %d does not fit in int%d", i, v, op.Width)
			}
		}
		return shape{out: out}, nil
	case ir.IntArrayGetIndex:
		return shape{in: []slot{arr, anyInt()}, out: []slot{elem}}, nil
	case ir.IntArraySetIndex:
		return shape{in: []slot{arr, anyInt(), elem}, out: []slot{arr}}, nil
	case ir.IntArrayLength:
		return shape{in: []slot{arr}, out: []slot{anyInt()}}, nil
	case ir.IntArrayCreate:
		return shape{rest: &elem, out: []slot{arr}}, nil
	}
	return unknownKind(op)
}

func floatShape(op ir.FloatOp) (shape, *problem) {
	p := floatN('P')
	switch {
	case op.Kind == ir.FloatConst:
		if !types.ValidPrecision(op.Precision) {
			return shape{}, problemf(diag.StructBadInstruction, "unsupported constant precision %d", op.Precision)
		}
		return shape{out: []slot{exact(types.Float(op.Precision))}}, nil
	case op.Kind.IsBinary():
		return shape{in: []slot{p, p}, out: []slot{p}}, nil
	case op.Kind.IsComparison():
		return shape{in: []slot{p, p}, out: []slot{boolSlot}}, nil
	case op.Kind.IsPredicate():
		return shape{in: []slot{p}, out: []slot{boolSlot}}, nil
	case op.Kind <= ir.FloatMin:
		return shape{in: []slot{p}, out: []slot{p}}, nil
	}
	return unknownKind(op)
}

func floatArrayShape(op ir.FloatArrayOp) (shape, *problem) {
	elem, arr := floatN('P'), floatArrN('P')
	switch op.Kind {
	case ir.FloatArrayConst, ir.FloatArrayZero:
		if !types.ValidPrecision(op.Precision) {
			return shape{}, problemf(diag.StructBadInstruction, "unsupported element precision %d", op.Precision)
		}
		out := []slot{exact(types.FloatArray(op.Precision))}
		if op.Kind == ir.FloatArrayZero {
			return shape{in: []slot{anyInt()}, out: out}, nil
		}
		return shape{out: out}, nil
	case ir.FloatArrayGetIndex:
		return shape{in: []slot{arr, anyInt()}, out: []slot{elem}}, nil
	case ir.FloatArraySetIndex:
		return shape{in: []slot{arr, anyInt(), elem}, out: []slot{arr}}, nil
	case ir.FloatArrayLength:
		return shape{in: []slot{arr}, out: []slot{anyInt()}}, nil
	case ir.FloatArrayCreate:
		return shape{rest: &elem, out: []slot{arr}}, nil
	}
	return unknownKind(op)
}
