package validate

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"jeff/internal/diag"
	"jeff/internal/ir"
	"jeff/internal/strtab"
	"jeff/internal/types"
)

var (
	i1  = types.Int(types.W1)
	i32 = types.Int(types.W32)
	f64 = types.Float(types.Float64)
	qb  = types.Qubit()
)

func vals(ts ...types.Type) []ir.Value {
	out := make([]ir.Value, len(ts))
	for i, t := range ts {
		out[i] = ir.Value{Type: t}
	}
	return out
}

func ids(vs ...ir.ValueID) []ir.ValueID { return vs }

func op(instr ir.Instruction, in, out []ir.ValueID) ir.Op {
	return ir.Op{Inputs: in, Outputs: out, Instr: instr}
}

func konst(v uint64) ir.IntOp { return ir.IntOp{Kind: ir.IntConst, Width: types.W32, Value: v} }

func def(values []ir.Value, body ir.Region) ir.Function {
	return ir.Function{Kind: ir.FuncDefinition, Values: values, Body: body}
}

// module names function i "f<i>" unless names are given.
func module(fns []ir.Function, names ...string) *ir.Module {
	if names == nil {
		for i := range fns {
			names = append(names, fmt.Sprintf("f%d", i))
		}
	}
	for i := range fns {
		fns[i].Name = strtab.ID(i)
	}
	return &ir.Module{
		Version:   ir.CurrentVersion,
		Functions: fns,
		Strings:   strtab.New(names),
	}
}

func find(b *diag.Bag, code diag.Code) *diag.Error {
	for _, it := range b.Items() {
		if it.Code == code {
			return it
		}
	}
	return nil
}

func run(m *ir.Module) *diag.Bag {
	return Module(context.Background(), m, DefaultOptions())
}

// sumLoop: state = 0; for i in 0..5 step 1 { state = state + i }.
func sumLoop(step uint64) *ir.Module {
	body := ir.Region{
		Sources: ids(5, 6),
		Targets: ids(7),
		Ops:     []ir.Op{op(ir.IntOp{Kind: ir.IntAdd}, ids(6, 5), ids(7))},
	}
	return module([]ir.Function{def(vals(i32, i32, i32, i32, i32, i32, i32, i32), ir.Region{
		Targets: ids(4),
		Ops: []ir.Op{
			op(konst(0), nil, ids(0)),
			op(konst(5), nil, ids(1)),
			op(konst(step), nil, ids(2)),
			op(konst(0), nil, ids(3)),
			op(ir.ScfOp{Kind: ir.ScfFor, Body: body}, ids(0, 1, 2, 3), ids(4)),
		},
	})})
}

func TestForLoopValidates(t *testing.T) {
	m := sumLoop(1)
	if err := Check(m); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if b := run(m); b.Len() != 0 {
		t.Fatalf("unexpected findings: %v", b.Err())
	}
}

func TestForZeroStepIsWarning(t *testing.T) {
	b := run(sumLoop(0))
	if b.HasErrors() {
		t.Fatalf("zero step must not reject: %v", b.Err())
	}
	if find(b, diag.PreZeroStep) == nil {
		t.Fatalf("expected zero-step warning, got %d findings", b.Len())
	}
}

func TestForBodyCrossRegion(t *testing.T) {
	m := sumLoop(1)
	loop := m.Functions[0].Body.Ops[4].Instr.(ir.ScfOp)
	loop.Body.Ops[0].Inputs = ids(6, 3)
	m.Functions[0].Body.Ops[4].Instr = loop
	e := find(run(m), diag.StructCrossRegion)
	if e == nil {
		t.Fatal("expected cross-region error")
	}
	if e.Loc.Path.String() != "body/op4.body" || e.Loc.Value != 3 {
		t.Fatalf("location = %s", e.Loc)
	}
}

func switchModule() *ir.Module {
	sw := ir.ScfOp{
		Kind: ir.ScfSwitch,
		Branches: []ir.Region{
			{Targets: ids(2), Ops: []ir.Op{op(konst(1), nil, ids(2))}},
			{Targets: ids(3, 4), Ops: []ir.Op{op(konst(2), nil, ids(3)), op(konst(3), nil, ids(4))}},
		},
	}
	return module([]ir.Function{def(vals(i32, i32, i32, i32, i32), ir.Region{
		Targets: ids(1),
		Ops: []ir.Op{
			op(konst(0), nil, ids(0)),
			op(sw, ids(0), ids(1)),
		},
	})})
}

func TestSwitchBranchArityMismatch(t *testing.T) {
	b := run(switchModule())
	e := find(b, diag.StructBranchMismatch)
	if e == nil {
		t.Fatalf("expected branch mismatch, got %v", b.Err())
	}
	if !strings.Contains(e.Message, "branch0") || !strings.Contains(e.Message, "branch1") {
		t.Fatalf("message must cite both branches: %q", e.Message)
	}
	if e.Loc.Path.String() != "body/op1.branch1" || len(e.Notes) != 1 {
		t.Fatalf("location = %s, notes = %d", e.Loc, len(e.Notes))
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	m := switchModule()
	render := func(b *diag.Bag) []string {
		var out []string
		for _, it := range b.Items() {
			out = append(out, it.Error())
		}
		return out
	}
	first, second := render(run(m)), render(run(m))
	if strings.Join(first, "\n") != strings.Join(second, "\n") {
		t.Fatalf("verdicts differ:\n%v\n%v", first, second)
	}
}

func TestEmptySwitch(t *testing.T) {
	m := module([]ir.Function{def(vals(i32), ir.Region{Ops: []ir.Op{
		op(konst(0), nil, ids(0)),
		op(ir.ScfOp{Kind: ir.ScfSwitch}, ids(0), nil),
	}})})
	if find(run(m), diag.StructEmptySwitch) == nil {
		t.Fatal("expected empty switch error")
	}
}

func TestSwitchSelectorOutOfRangeLint(t *testing.T) {
	sw := ir.ScfOp{Kind: ir.ScfSwitch, Branches: []ir.Region{{}}}
	m := module([]ir.Function{def(vals(i32), ir.Region{Ops: []ir.Op{
		op(konst(3), nil, ids(0)),
		op(sw, ids(0), nil),
	}})})
	b := run(m)
	if b.HasErrors() || find(b, diag.PreSelectorRange) == nil {
		t.Fatalf("expected selector warning only, got %v", b.Items())
	}
}

func TestUnconsumedQubit(t *testing.T) {
	m := module([]ir.Function{def(vals(qb), ir.Region{Ops: []ir.Op{
		op(ir.QubitOp{Kind: ir.QubitAlloc}, nil, ids(0)),
	}})})
	e := find(run(m), diag.StructLinearUnconsumed)
	if e == nil {
		t.Fatal("expected linearity violation")
	}
	if e.Loc.Value != 0 || e.Loc.Op != 0 || e.Kind() != diag.KindStructural {
		t.Fatalf("location = %s, kind = %s", e.Loc, e.Kind())
	}
}

func TestLinearReuse(t *testing.T) {
	m := module([]ir.Function{def(vals(qb, i1), ir.Region{
		Targets: ids(1),
		Ops: []ir.Op{
			op(ir.QubitOp{Kind: ir.QubitAlloc}, nil, ids(0)),
			op(ir.QubitOp{Kind: ir.QubitMeasure}, ids(0), ids(1)),
			op(ir.QubitOp{Kind: ir.QubitFree}, ids(0), nil),
		},
	})})
	e := find(run(m), diag.StructLinearReuse)
	if e == nil {
		t.Fatal("expected reuse error")
	}
	if e.Loc.Op != 2 || e.Loc.Value != 0 || len(e.Notes) != 1 || e.Notes[0].Loc.Op != 1 {
		t.Fatalf("location = %s, notes = %v", e.Loc, e.Notes)
	}
}

func TestLinearDoubleDef(t *testing.T) {
	m := module([]ir.Function{def(vals(qb), ir.Region{Ops: []ir.Op{
		op(ir.QubitOp{Kind: ir.QubitAlloc}, nil, ids(0)),
		op(ir.QubitOp{Kind: ir.QubitAlloc}, nil, ids(0)),
		op(ir.QubitOp{Kind: ir.QubitFree}, ids(0), nil),
	}})})
	if find(run(m), diag.StructLinearDoubleDef) == nil {
		t.Fatal("expected linear double definition")
	}
}

func TestUseBeforeDef(t *testing.T) {
	m := module([]ir.Function{def(vals(i32, i32), ir.Region{
		Targets: ids(1),
		Ops:     []ir.Op{op(ir.IntOp{Kind: ir.IntNot}, ids(0), ids(1))},
	})})
	if find(run(m), diag.StructUseBeforeDef) == nil {
		t.Fatal("expected use before definition")
	}
}

func TestValueOutOfBounds(t *testing.T) {
	m := module([]ir.Function{def(vals(i32), ir.Region{
		Targets: ids(9),
		Ops:     []ir.Op{op(konst(1), nil, ids(0))},
	})})
	e := find(run(m), diag.StructValueOutOfBounds)
	if e == nil || e.Loc.Value != 9 {
		t.Fatalf("expected out-of-bounds value 9, got %v", e)
	}
}

func TestCycleReported(t *testing.T) {
	m := module([]ir.Function{def(vals(i32, i32), ir.Region{Ops: []ir.Op{
		op(ir.IntOp{Kind: ir.IntAdd}, ids(1, 1), ids(0)),
		op(ir.IntOp{Kind: ir.IntAdd}, ids(0, 0), ids(1)),
	}})})
	b := run(m)
	e := find(b, diag.StructCycle)
	if e == nil {
		t.Fatalf("expected cycle, got %v", b.Err())
	}
	if !strings.Contains(e.Message, "op0 -> op1 -> op0") {
		t.Fatalf("cycle message = %q", e.Message)
	}
	if b.Len() != 1 {
		t.Fatalf("cycle must not cascade, got %d findings", b.Len())
	}
}

func TestCallOutOfBounds(t *testing.T) {
	fns := make([]ir.Function, 5)
	fns[0] = def(nil, ir.Region{Ops: []ir.Op{op(ir.FuncOp{Callee: 7}, nil, nil)}})
	b := run(module(fns))
	if find(b, diag.StructFuncOutOfBounds) == nil {
		t.Fatalf("expected function out of bounds, got %v", b.Err())
	}
}

func TestCallSignature(t *testing.T) {
	callee := ir.Function{Kind: ir.FuncDeclaration, Inputs: []types.Type{i32}, Outputs: []types.Type{i32}}
	caller := def(vals(i32, f64), ir.Region{
		Targets: ids(1),
		Ops: []ir.Op{
			op(konst(4), nil, ids(0)),
			op(ir.FuncOp{Callee: 1}, ids(0), ids(1)),
		},
	})
	e := find(run(module([]ir.Function{caller, callee})), diag.StructSignatureMismatch)
	if e == nil || !strings.Contains(e.Message, "callee returns (int32)") {
		t.Fatalf("expected return mismatch, got %v", e)
	}
}

func TestDuplicateNamesFirst(t *testing.T) {
	broken := def(vals(qb), ir.Region{Ops: []ir.Op{op(ir.QubitOp{Kind: ir.QubitAlloc}, nil, ids(0))}})
	m := module([]ir.Function{def(nil, ir.Region{}), def(nil, ir.Region{}), broken}, "f", "g", "f")
	b := run(m)
	if b.Len() != 1 {
		t.Fatalf("regions must not be inspected after a duplicate name, got %v", b.Err())
	}
	e := b.First()
	if e.Code != diag.StructDuplicateName || e.Loc.Func != 2 || e.Notes[0].Loc.Func != 0 {
		t.Fatalf("got %v", e)
	}
}

func TestUnsupportedVersion(t *testing.T) {
	m := sumLoop(1)
	m.Version = ir.MakeVersion(1, 0)
	b := run(m)
	if b.Len() != 1 || b.First().Kind() != diag.KindCompatibility {
		t.Fatalf("expected a single compatibility error, got %v", b.Err())
	}
}

func TestEntrypointBounds(t *testing.T) {
	m := sumLoop(1)
	m.Entrypoint = 3
	if find(run(m), diag.StructEntrypoint) == nil {
		t.Fatal("expected entrypoint error")
	}
}

func TestControlledGate(t *testing.T) {
	cx := ir.WellKnownGateOp(ir.GateX)
	cx.Gate.Controls = 1
	m := module([]ir.Function{def(vals(qb, qb, qb, qb), ir.Region{Ops: []ir.Op{
		op(ir.QubitOp{Kind: ir.QubitAlloc}, nil, ids(0)),
		op(ir.QubitOp{Kind: ir.QubitAlloc}, nil, ids(1)),
		op(cx, ids(0, 1), ids(2, 3)),
		op(ir.QubitOp{Kind: ir.QubitFree}, ids(2), nil),
		op(ir.QubitOp{Kind: ir.QubitFree}, ids(3), nil),
	}})})
	if err := Check(m); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestGateArity(t *testing.T) {
	tests := []struct {
		name   string
		gate   ir.QubitOp
		values []types.Type
		in     []ir.ValueID
		out    []ir.ValueID
		code   diag.Code
	}{
		{"rz without angle", ir.WellKnownGateOp(ir.GateRz), []types.Type{qb, qb}, ids(0), ids(1), diag.StructArityMismatch},
		{"h with angle", ir.WellKnownGateOp(ir.GateH), []types.Type{qb, qb, f64}, ids(0, 2), ids(1), diag.StructArityMismatch},
		{"rz with int angle", ir.WellKnownGateOp(ir.GateRz), []types.Type{qb, qb, i32}, ids(0, 2), ids(1), diag.StructTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops := []ir.Op{op(ir.QubitOp{Kind: ir.QubitAlloc}, nil, ids(0))}
			if len(tt.values) > 2 {
				k := ir.Instruction(konst(0))
				if tt.values[2] == f64 {
					k = ir.FloatOp{Kind: ir.FloatConst, Precision: types.Float64}
				}
				ops = append(ops, op(k, nil, ids(2)))
			}
			ops = append(ops, op(tt.gate, tt.in, tt.out), op(ir.QubitOp{Kind: ir.QubitFree}, ids(1), nil))
			m := module([]ir.Function{def(vals(tt.values...), ir.Region{Ops: ops})})
			if find(run(m), tt.code) == nil {
				t.Fatalf("expected %s", tt.code.ID())
			}
		})
	}
}

func TestWhileConditionMustNotConsume(t *testing.T) {
	loop := ir.ScfOp{
		Kind: ir.ScfWhile,
		Cond: ir.Region{
			Sources: ids(2),
			Targets: ids(3),
			Ops:     []ir.Op{op(ir.QubitOp{Kind: ir.QubitMeasure}, ids(2), ids(3))},
		},
		Body: ir.Region{Sources: ids(4), Targets: ids(4)},
	}
	m := module([]ir.Function{def(vals(qb, qb, qb, i1, qb), ir.Region{Ops: []ir.Op{
		op(ir.QubitOp{Kind: ir.QubitAlloc}, nil, ids(0)),
		op(loop, ids(0), ids(1)),
		op(ir.QubitOp{Kind: ir.QubitFree}, ids(1), nil),
	}})})
	b := run(m)
	e := find(b, diag.StructConditionConsumes)
	if e == nil {
		t.Fatalf("expected condition error, got %v", b.Err())
	}
	if e.Loc.Path.String() != "body/op1.cond" {
		t.Fatalf("location = %s", e.Loc)
	}
}

func TestIntConstMustFit(t *testing.T) {
	m := module([]ir.Function{def(vals(types.Int(types.W8)), ir.Region{
		Targets: ids(0),
		Ops:     []ir.Op{op(ir.IntOp{Kind: ir.IntConst, Width: types.W8, Value: 256}, nil, ids(0))},
	})})
	if find(run(m), diag.StructBadInstruction) == nil {
		t.Fatal("expected constant overflow error")
	}
}

func TestFirstErrorOnly(t *testing.T) {
	leak := func() ir.Function {
		return def(vals(qb), ir.Region{Ops: []ir.Op{op(ir.QubitOp{Kind: ir.QubitAlloc}, nil, ids(0))}})
	}
	opts := DefaultOptions()
	opts.CollectAll = false
	b := Module(context.Background(), module([]ir.Function{leak(), leak()}), opts)
	if b.Len() != 1 || b.First().Loc.Func != 0 {
		t.Fatalf("expected exactly the first error, got %v", b.Err())
	}
	if collected := run(module([]ir.Function{leak(), leak()})); collected.Len() != 2 {
		t.Fatalf("collect mode found %d errors", collected.Len())
	}
}

func TestMetaNameBounds(t *testing.T) {
	m := sumLoop(1)
	m.Functions[0].Body.Ops[0].Meta = []ir.Meta{{Name: 42, Value: []byte{1}}}
	e := find(run(m), diag.StructStringOutOfBounds)
	if e == nil || e.Loc.Op != 0 {
		t.Fatalf("expected string bounds error at op 0, got %v", e)
	}
}

func TestDepGraphOrder(t *testing.T) {
	// add записан первым, но зависит от обеих констант
	r := ir.Region{
		Targets: ids(2),
		Ops: []ir.Op{
			op(ir.IntOp{Kind: ir.IntAdd}, ids(0, 1), ids(2)),
			op(konst(1), nil, ids(0)),
			op(konst(2), nil, ids(1)),
		},
	}
	tp := buildDepGraph(&r).toposort()
	if tp.Cyclic || fmt.Sprint(tp.Order) != "[1 2 0]" {
		t.Fatalf("order = %v, cyclic = %v", tp.Order, tp.Cyclic)
	}
}

func TestLinearNeverProduced(t *testing.T) {
	m := module([]ir.Function{def(vals(i32, qb), ir.Region{
		Targets: ids(0),
		Ops:     []ir.Op{op(konst(1), nil, ids(0))},
	})})
	b := run(m)
	e := find(b, diag.StructLinearUnproduced)
	if e == nil {
		t.Fatalf("expected orphan qubit error, got %v", b.Items())
	}
	if e.Loc.Value != 1 || e.Loc.Func != 0 || e.Kind() != diag.KindStructural {
		t.Fatalf("location = %s, kind = %s", e.Loc, e.Kind())
	}
	if b.Len() != 1 {
		t.Fatalf("unused non-linear values are legal, got %v", b.Items())
	}

	empty := module([]ir.Function{def(vals(qb), ir.Region{})})
	if find(run(empty), diag.StructLinearUnproduced) == nil {
		t.Fatal("qubit in an empty body must be rejected")
	}
}
