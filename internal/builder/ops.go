package builder

import (
	"jeff/internal/diag"
	"jeff/internal/ir"
	"jeff/internal/types"
)

// Const appends an integer constant of width w.
func (rb *RegionBuilder) Const(w types.Width, v uint64) (ir.ValueID, error) {
	return rb.append1(ir.IntOp{Kind: ir.IntConst, Width: w, Value: v}, nil, types.Int(w))
}

// FloatConst appends a float constant of precision p.
func (rb *RegionBuilder) FloatConst(p types.Precision, v float64) (ir.ValueID, error) {
	return rb.append1(ir.FloatOp{Kind: ir.FloatConst, Precision: p, Value: v}, nil, types.Float(p))
}

// Int appends a binary or unary integer op; the result has the operand
// width, or int1 for comparisons.
func (rb *RegionBuilder) Int(kind ir.IntOpKind, args ...ir.ValueID) (ir.ValueID, error) {
	out := types.Int(types.W1)
	if !kind.IsComparison() {
		if ts := rb.typesOf(args); len(ts) > 0 {
			out = ts[0]
		}
	}
	return rb.append1(ir.IntOp{Kind: kind}, args, out)
}

// Float appends a float op; the result has the operand precision, or int1
// for comparisons and predicates.
func (rb *RegionBuilder) Float(kind ir.FloatOpKind, args ...ir.ValueID) (ir.ValueID, error) {
	out := types.Int(types.W1)
	if !kind.IsComparison() && !kind.IsPredicate() {
		if ts := rb.typesOf(args); len(ts) > 0 {
			out = ts[0]
		}
	}
	return rb.append1(ir.FloatOp{Kind: kind}, args, out)
}

// Alloc appends a fresh qubit.
func (rb *RegionBuilder) Alloc() (ir.ValueID, error) {
	return rb.append1(ir.QubitOp{Kind: ir.QubitAlloc}, nil, types.Qubit())
}

// Free releases a qubit.
func (rb *RegionBuilder) Free(q ir.ValueID) error {
	_, err := rb.Append(ir.QubitOp{Kind: ir.QubitFree}, []ir.ValueID{q})
	return err
}

// Measure consumes q and yields its classical outcome.
func (rb *RegionBuilder) Measure(q ir.ValueID) (ir.ValueID, error) {
	return rb.append1(ir.QubitOp{Kind: ir.QubitMeasure}, []ir.ValueID{q}, types.Int(types.W1))
}

// MeasureNd measures q without destroying it.
func (rb *RegionBuilder) MeasureNd(q ir.ValueID) (ir.ValueID, ir.ValueID, error) {
	vs, err := rb.Append(ir.QubitOp{Kind: ir.QubitMeasureNd}, []ir.ValueID{q}, types.Qubit(), types.Int(types.W1))
	if err != nil {
		return 0, 0, err
	}
	return vs[0], vs[1], nil
}

// Gate applies g to qubits (targets then controls) with float params and
// returns the qubits in the same order.
func (rb *RegionBuilder) Gate(g ir.Gate, qubits []ir.ValueID, params ...ir.ValueID) ([]ir.ValueID, error) {
	in := append(append([]ir.ValueID(nil), qubits...), params...)
	outs := make([]types.Type, len(qubits))
	for i := range outs {
		outs[i] = types.Qubit()
	}
	return rb.Append(ir.QubitOp{Kind: ir.QubitGate, Gate: g}, in, outs...)
}

// CustomGate builds a custom gate description, interning its name.
func (rb *RegionBuilder) CustomGate(name string, qubits, params uint8) ir.Gate {
	return ir.Gate{Kind: ir.GateCustom, Name: rb.fb.mb.Intern(name), NumQubits: qubits, NumParams: params, Power: 1}
}

// Call invokes callee; result types come from the callee's signature.
func (rb *RegionBuilder) Call(callee ir.FuncID, args ...ir.ValueID) ([]ir.ValueID, error) {
	var outs []types.Type
	if f := rb.fb.mb.mod.Function(callee); f != nil {
		if _, out, ok := f.Signature(); ok {
			outs = out
		}
	}
	return rb.Append(ir.FuncOp{Callee: callee}, args, outs...)
}

// For appends a counted loop. body receives (induction, state...) and
// returns the next state.
func (rb *RegionBuilder) For(start, stop, step ir.ValueID, state []ir.ValueID, body BodyFunc) ([]ir.ValueID, error) {
	stateTypes := rb.typesOf(state)
	sources := append(rb.typesOf([]ir.ValueID{start}), stateTypes...)
	r, err := rb.nested(ir.RegionBody, false, sources, body)
	if err != nil {
		return nil, err
	}
	in := append([]ir.ValueID{start, stop, step}, state...)
	return rb.Append(ir.ScfOp{Kind: ir.ScfFor, Body: r}, in, stateTypes...)
}

// CondFunc fills a loop condition region and returns its int1 result.
type CondFunc func(rb *RegionBuilder, state []ir.ValueID) (ir.ValueID, error)

func (f CondFunc) body() BodyFunc {
	return func(rb *RegionBuilder, args []ir.ValueID) ([]ir.ValueID, error) {
		v, err := f(rb, args)
		if err != nil {
			return nil, err
		}
		return []ir.ValueID{v}, nil
	}
}

// While appends a loop whose condition runs before every iteration.
func (rb *RegionBuilder) While(state []ir.ValueID, cond CondFunc, body BodyFunc) ([]ir.ValueID, error) {
	return rb.loop(ir.ScfWhile, state, cond, body)
}

// DoWhile appends a loop whose body runs once before the first check.
func (rb *RegionBuilder) DoWhile(state []ir.ValueID, body BodyFunc, cond CondFunc) ([]ir.ValueID, error) {
	return rb.loop(ir.ScfDoWhile, state, cond, body)
}

func (rb *RegionBuilder) loop(kind ir.ScfKind, state []ir.ValueID, cond CondFunc, body BodyFunc) ([]ir.ValueID, error) {
	ts := rb.typesOf(state)
	op := ir.ScfOp{Kind: kind}
	var err error
	// регионы строятся в порядке исполнения
	build := []struct {
		name string
		dst  *ir.Region
		fill BodyFunc
	}{
		{ir.RegionCond, &op.Cond, cond.body()},
		{ir.RegionBody, &op.Body, body},
	}
	if kind == ir.ScfDoWhile {
		build[0], build[1] = build[1], build[0]
	}
	for _, b := range build {
		*b.dst, err = rb.nested(b.name, b.name == ir.RegionCond, ts, b.fill)
		if err != nil {
			return nil, err
		}
	}
	return rb.Append(op, state, ts...)
}

// Switch appends a multi-way branch on sel. Every branch and the optional
// default receive state and must return values of types outs.
func (rb *RegionBuilder) Switch(sel ir.ValueID, state []ir.ValueID, outs []types.Type, branches []BodyFunc, def BodyFunc) ([]ir.ValueID, error) {
	ts := rb.typesOf(state)
	op := ir.ScfOp{Kind: ir.ScfSwitch}
	for i, fill := range branches {
		r, err := rb.nested(ir.BranchName(i), false, ts, fill)
		if err != nil {
			return nil, err
		}
		op.Branches = append(op.Branches, r)
	}
	if def != nil {
		r, err := rb.nested(ir.RegionDefault, false, ts, def)
		if err != nil {
			return nil, err
		}
		op.Default = &r
	}
	if len(op.Branches) == 0 && op.Default == nil {
		return nil, rb.fb.mb.fail(diag.Errorf(diag.StructEmptySwitch,
			rb.fb.loc.InPath(rb.path).AtOp(len(rb.region.Ops)), "switch needs at least one region"))
	}
	return rb.Append(op, append([]ir.ValueID{sel}, state...), outs...)
}
