package builder

import (
	"fmt"

	"fortio.org/safecast"

	"jeff/internal/diag"
	"jeff/internal/ir"
	"jeff/internal/types"
)

// FuncBuilder owns the value table of one function definition.
type FuncBuilder struct {
	mb   *ModuleBuilder
	id   ir.FuncID
	fn   *ir.Function
	loc  diag.Location
	body *RegionBuilder
	out  []types.Type
	done bool
}

func newFuncBuilder(mb *ModuleBuilder, id ir.FuncID) *FuncBuilder {
	decl := mb.mod.Functions[id]
	fb := &FuncBuilder{
		mb:  mb,
		id:  id,
		fn:  &ir.Function{Name: decl.Name, Kind: ir.FuncDefinition, Meta: decl.Meta},
		loc: diag.FuncLoc(int(id), mb.slots[id].name),
		out: decl.Outputs,
	}
	fb.body = fb.region(nil, false, decl.Inputs)
	return fb
}

// ID is the function's index in the module.
func (fb *FuncBuilder) ID() ir.FuncID { return fb.id }

// Body is the builder of the function's top-level region.
func (fb *FuncBuilder) Body() *RegionBuilder { return fb.body }

// Params are the body's source values, one per declared input.
func (fb *FuncBuilder) Params() []ir.ValueID { return fb.body.Sources() }

// Annotate attaches function metadata.
func (fb *FuncBuilder) Annotate(name string, value []byte) {
	if fb.mb.err != nil {
		return
	}
	fb.fn.Meta = append(fb.fn.Meta, fb.mb.meta(name, value))
}

// AnnotateValue attaches metadata to a value of this function.
func (fb *FuncBuilder) AnnotateValue(v ir.ValueID, name string, value []byte) error {
	if fb.mb.err != nil {
		return fb.mb.err
	}
	if int(v) >= len(fb.fn.Values) {
		return fb.mb.fail(diag.Errorf(diag.StructValueOutOfBounds, fb.loc.AtValue(int(v)),
			"value %%%d does not exist", v))
	}
	fb.fn.Values[v].Meta = append(fb.fn.Values[v].Meta, fb.mb.meta(name, value))
	return nil
}

// TypeOf resolves a value of this function.
func (fb *FuncBuilder) TypeOf(v ir.ValueID) (types.Type, bool) { return fb.fn.TypeOf(v) }

func (fb *FuncBuilder) newValue(t types.Type, loc diag.Location) (ir.ValueID, error) {
	if err := t.Validate(); err != nil {
		return 0, fb.mb.fail(diag.Errorf(diag.StructBadType, loc, "%v", err))
	}
	n, err := safecast.Conv[uint32](len(fb.fn.Values))
	if err != nil {
		panic(fmt.Errorf("value table overflow: %w", err))
	}
	fb.fn.Values = append(fb.fn.Values, ir.Value{Type: t})
	return ir.ValueID(n), nil
}

// Return closes the body with the given results and installs the
// definition in the module. The result types must equal the reserved
// output types.
func (fb *FuncBuilder) Return(results ...ir.ValueID) error {
	if fb.mb.err != nil {
		return fb.mb.err
	}
	if fb.done {
		return fmt.Errorf("builder: function %q already returned", fb.mb.slots[fb.id].name)
	}
	got := make([]types.Type, 0, len(results))
	for _, v := range results {
		t, ok := fb.fn.TypeOf(v)
		if !ok {
			break
		}
		got = append(got, t)
	}
	if len(got) == len(results) && !types.Equal(got, fb.out) {
		return fb.mb.fail(diag.Errorf(diag.StructSignatureMismatch, fb.loc.InPath(nil),
			"body returns %s, declared %s", types.FormatList(got), types.FormatList(fb.out)))
	}
	body, err := fb.body.close(results)
	if err != nil {
		return err
	}
	fb.fn.Body = body
	fb.done = true
	fb.mb.mod.Functions[fb.id] = *fb.fn
	fb.mb.slots[fb.id].defined = true
	return nil
}

func (fb *FuncBuilder) region(path diag.Path, cond bool, sources []types.Type) *RegionBuilder {
	rb := &RegionBuilder{fb: fb, path: path}
	rb.check = newChecker(fb, path, cond)
	for _, t := range sources {
		v, err := fb.newValue(t, fb.loc.InPath(path))
		if err != nil {
			return rb
		}
		rb.region.Sources = append(rb.region.Sources, v)
		rb.check.Source(v)
	}
	return rb
}
