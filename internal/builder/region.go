package builder

import (
	"errors"
	"slices"

	"jeff/internal/diag"
	"jeff/internal/ir"
	"jeff/internal/types"
	"jeff/internal/validate"
)

// RegionBuilder appends ops to one region. Nested regions are built with
// their own RegionBuilder and closed before the owning op is appended.
type RegionBuilder struct {
	fb     *FuncBuilder
	path   diag.Path
	region ir.Region
	check  *validate.RegionChecker
	closed bool
}

// BodyFunc fills a nested region given its source values and returns the
// region's targets.
type BodyFunc func(rb *RegionBuilder, args []ir.ValueID) ([]ir.ValueID, error)

func newChecker(fb *FuncBuilder, path diag.Path, cond bool) *validate.RegionChecker {
	report := func(e *diag.Error) bool {
		if e.Severity < diag.SevError {
			return true
		}
		fb.mb.fail(e)
		return false
	}
	rc := validate.NewRegionChecker(fb.mb.mod, fb.fn, fb.loc, path, report).
		ProducedElsewhere(func(v ir.ValueID) bool { return int(v) < len(fb.fn.Values) })
	if cond {
		rc.Condition()
	}
	return rc
}

// Sources are the region's input values.
func (rb *RegionBuilder) Sources() []ir.ValueID { return slices.Clone(rb.region.Sources) }

// Func is the builder of the owning function.
func (rb *RegionBuilder) Func() *FuncBuilder { return rb.fb }

// Annotate attaches metadata to the region itself.
func (rb *RegionBuilder) Annotate(name string, value []byte) {
	if rb.fb.mb.err != nil {
		return
	}
	rb.region.Meta = append(rb.region.Meta, rb.fb.mb.meta(name, value))
}

// AnnotateLast attaches metadata to the most recently appended op.
func (rb *RegionBuilder) AnnotateLast(name string, value []byte) {
	if rb.fb.mb.err != nil {
		return
	}
	if n := len(rb.region.Ops); n > 0 {
		rb.region.Ops[n-1].Meta = append(rb.region.Ops[n-1].Meta, rb.fb.mb.meta(name, value))
	}
}

// Append adds an op consuming inputs and producing fresh values of the
// given types. The op is checked immediately.
func (rb *RegionBuilder) Append(instr ir.Instruction, inputs []ir.ValueID, outs ...types.Type) ([]ir.ValueID, error) {
	mb := rb.fb.mb
	if mb.err != nil {
		return nil, mb.err
	}
	idx := len(rb.region.Ops)
	if rb.closed {
		return nil, mb.fail(diag.Errorf(diag.StructInfo, rb.fb.loc.InPath(rb.path).AtOp(idx), "region already closed"))
	}
	op := ir.Op{Inputs: slices.Clone(inputs), Instr: instr}
	for _, t := range outs {
		v, err := rb.fb.newValue(t, rb.fb.loc.InPath(rb.path).AtOp(idx))
		if err != nil {
			return nil, err
		}
		op.Outputs = append(op.Outputs, v)
	}
	rb.check.Op(idx, &op)
	if mb.err != nil {
		return nil, mb.err
	}
	rb.region.Ops = append(rb.region.Ops, op)
	return slices.Clone(op.Outputs), nil
}

func (rb *RegionBuilder) append1(instr ir.Instruction, inputs []ir.ValueID, out types.Type) (ir.ValueID, error) {
	vs, err := rb.Append(instr, inputs, out)
	if err != nil {
		return 0, err
	}
	return vs[0], nil
}

func (rb *RegionBuilder) close(targets []ir.ValueID) (ir.Region, error) {
	mb := rb.fb.mb
	if mb.err != nil {
		return ir.Region{}, mb.err
	}
	rb.check.Close(targets)
	if mb.err != nil {
		return ir.Region{}, mb.err
	}
	rb.closed = true
	rb.region.Targets = slices.Clone(targets)
	return rb.region, nil
}

// nested builds a region of the op about to be appended at the current
// index.
func (rb *RegionBuilder) nested(name string, cond bool, sources []types.Type, fill BodyFunc) (ir.Region, error) {
	sub := rb.fb.region(rb.path.Child(len(rb.region.Ops), name), cond, sources)
	if err := rb.fb.mb.err; err != nil {
		return ir.Region{}, err
	}
	targets, err := fill(sub, sub.Sources())
	if err != nil {
		return ir.Region{}, rb.fb.mb.fail(asDiag(err, sub))
	}
	return sub.close(targets)
}

// asDiag keeps diagnostics as they are and wraps foreign errors raised by a
// BodyFunc.
func asDiag(err error, rb *RegionBuilder) *diag.Error {
	var e *diag.Error
	if errors.As(err, &e) {
		return e
	}
	return diag.Errorf(diag.StructInfo, rb.fb.loc.InPath(rb.path), "%v", err)
}

func (rb *RegionBuilder) typesOf(vs []ir.ValueID) []types.Type {
	out := make([]types.Type, 0, len(vs))
	for _, v := range vs {
		if t, ok := rb.fb.fn.TypeOf(v); ok {
			out = append(out, t)
		}
	}
	return out
}
