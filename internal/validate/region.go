package validate

import (
	"jeff/internal/diag"
	"jeff/internal/ir"
	"jeff/internal/types"
)

// Reporter receives findings. Returning false asks the checker to stop.
type Reporter func(*diag.Error) bool

type local struct {
	op       int // producing op, diag.NoIndex for region sources
	uses     int
	firstUse int // op index of the first use, diag.NoIndex for a target
	source   bool
	opaque   bool
}

// RegionChecker tracks definitions and uses inside one region. Ops must be
// fed in a dependency-respecting order: the builder feeds them as they are
// appended, the module validator in topological order. The same checker
// therefore serves fail-fast construction and whole-module validation.
type RegionChecker struct {
	mod    *ir.Module
	fn     *ir.Function
	loc    diag.Location // function plus region path
	path   diag.Path
	cond   bool
	report Reporter

	values  map[ir.ValueID]*local
	order   []ir.ValueID
	foreign func(ir.ValueID) bool
	stopped bool
	failed  bool
}

// NewRegionChecker starts checking the region at path inside fn. m resolves
// callees and strings; fn.Values must already hold every referenced value.
func NewRegionChecker(m *ir.Module, fn *ir.Function, fnLoc diag.Location, path diag.Path, report Reporter) *RegionChecker {
	return &RegionChecker{
		mod:    m,
		fn:     fn,
		loc:    fnLoc.InPath(path),
		path:   path,
		report: report,
		values: make(map[ir.ValueID]*local),
	}
}

// Condition switches the checker to loop-condition mode: linear sources are
// observed, never consumed.
func (c *RegionChecker) Condition() *RegionChecker {
	c.cond = true
	return c
}

// ProducedElsewhere tells the checker how to classify a use of a value not
// produced in this region: produced somewhere else in the function means a
// cross-region reference, otherwise it is a use before definition.
func (c *RegionChecker) ProducedElsewhere(fn func(ir.ValueID) bool) *RegionChecker {
	c.foreign = fn
	return c
}

// Stopped reports whether the reporter asked to stop.
func (c *RegionChecker) Stopped() bool { return c.stopped }

// Failed reports whether an error-severity finding was emitted.
func (c *RegionChecker) Failed() bool { return c.failed }

func (c *RegionChecker) emit(e *diag.Error) {
	if c.stopped {
		return
	}
	if e.Severity >= diag.SevError {
		c.failed = true
	}
	if !c.report(e) {
		c.stopped = true
	}
}

func (c *RegionChecker) inBounds(v ir.ValueID, at diag.Location, role string) bool {
	if int(v) < len(c.fn.Values) {
		return true
	}
	c.emit(diag.Errorf(diag.StructValueOutOfBounds, at.AtValue(int(v)),
		"%s refers to value %%%d, function has %d values", role, v, len(c.fn.Values)))
	return false
}

func (c *RegionChecker) typeOf(v ir.ValueID) types.Type {
	return c.fn.Values[v].Type
}

func (c *RegionChecker) define(v ir.ValueID, st *local) {
	if _, ok := c.values[v]; ok {
		// повторное определение диагностируется на уровне функции
		return
	}
	c.values[v] = st
	c.order = append(c.order, v)
}

// Source defines a region input.
func (c *RegionChecker) Source(v ir.ValueID) {
	if !c.inBounds(v, c.loc, "source") {
		return
	}
	c.define(v, &local{op: diag.NoIndex, firstUse: diag.NoIndex, source: true})
}

func (c *RegionChecker) use(v ir.ValueID, op int, at diag.Location) {
	st, ok := c.values[v]
	if !ok {
		if c.foreign != nil && c.foreign(v) {
			c.emit(diag.Errorf(diag.StructCrossRegion, at, "value %%%d is produced in another region", v))
		} else {
			c.emit(diag.Errorf(diag.StructUseBeforeDef, at, "value %%%d is used but never produced", v))
		}
		return
	}
	if st.opaque {
		return
	}
	st.uses++
	if st.uses == 1 {
		st.firstUse = op
	}
	if !c.typeOf(v).IsLinear() {
		return
	}
	if c.cond && st.source {
		c.emit(diag.Errorf(diag.StructConditionConsumes, at,
			"loop condition consumes linear state value %%%d", v))
		return
	}
	if st.uses == 2 {
		e := diag.Errorf(diag.StructLinearReuse, at, "linear value %%%d (%s) is consumed more than once", v, c.typeOf(v))
		first := c.loc.AtValue(int(v))
		if st.firstUse != diag.NoIndex {
			first = first.AtOp(st.firstUse)
		}
		c.emit(e.WithNote(first, "first consumed here"))
	}
}

// Op checks one op and records its definitions. Nested regions of control
// flow ops are checked by their own RegionChecker; only their signatures are
// compared here.
func (c *RegionChecker) Op(idx int, op *ir.Op) {
	at := c.loc.AtOp(idx)
	ok := true
	for _, v := range op.Inputs {
		ok = c.inBounds(v, at, "input") && ok
	}
	for _, v := range op.Outputs {
		ok = c.inBounds(v, at, "output") && ok
	}
	if !ok {
		return
	}
	for _, v := range op.Inputs {
		c.use(v, idx, at.AtValue(int(v)))
	}
	c.checkInstr(idx, op)
	for _, v := range op.Outputs {
		c.define(v, &local{op: idx, firstUse: diag.NoIndex})
	}
}

// Skip records an op that cannot be ordered (it sits on or behind a cycle).
// Its inputs count as used and its outputs are excluded from linear checks,
// so the cycle is reported once instead of as a cascade.
func (c *RegionChecker) Skip(idx int, op *ir.Op) {
	for _, v := range op.Inputs {
		if st, ok := c.values[v]; ok && st.uses == 0 {
			st.uses = 1
			st.firstUse = idx
		}
	}
	for _, v := range op.Outputs {
		if int(v) < len(c.fn.Values) {
			c.define(v, &local{op: idx, firstUse: diag.NoIndex, opaque: true})
		}
	}
}

// Close consumes the targets and reports linear values left unconsumed.
func (c *RegionChecker) Close(targets []ir.ValueID) {
	for _, v := range targets {
		if c.inBounds(v, c.loc, "target") {
			c.use(v, diag.NoIndex, c.loc.AtValue(int(v)))
		}
	}
	for _, v := range c.order {
		st := c.values[v]
		if st.opaque || st.uses > 0 || !c.typeOf(v).IsLinear() {
			continue
		}
		if c.cond && st.source {
			continue
		}
		at := c.loc.AtValue(int(v))
		what := "source"
		if st.op != diag.NoIndex {
			at = at.AtOp(st.op)
			what = "op output"
		}
		c.emit(diag.Errorf(diag.StructLinearUnconsumed, at,
			"linear value %%%d (%s, %s) is never consumed", v, c.typeOf(v), what))
	}
}

// typesOf resolves a list of in-bounds value indices.
func (c *RegionChecker) typesOf(ids []ir.ValueID) ([]types.Type, bool) {
	out := make([]types.Type, len(ids))
	for i, v := range ids {
		if int(v) >= len(c.fn.Values) {
			return nil, false
		}
		out[i] = c.typeOf(v)
	}
	return out, true
}

func (c *RegionChecker) checkInstr(idx int, op *ir.Op) {
	at := c.loc.AtOp(idx)
	in, _ := c.typesOf(op.Inputs)
	out, _ := c.typesOf(op.Outputs)
	switch instr := op.Instr.(type) {
	case ir.ScfOp:
		c.checkScf(idx, instr, in, out)
	case ir.FuncOp:
		c.checkCall(idx, instr, in, out)
	default:
		sh, p := shapeOf(op.Instr, c.mod.Strings)
		if p == nil {
			p = sh.match(in, out)
		}
		if p != nil {
			c.emit(diag.Errorf(p.code, at, "%s: %s", ir.QualifiedName(op.Instr), p.msg))
		}
	}
}

func (c *RegionChecker) checkCall(idx int, call ir.FuncOp, in, out []types.Type) {
	at := c.loc.AtOp(idx)
	callee := c.mod.Function(call.Callee)
	if callee == nil {
		c.emit(diag.Errorf(diag.StructFuncOutOfBounds, at,
			"call to function #%d, module has %d functions", call.Callee, len(c.mod.Functions)))
		return
	}
	wantIn, wantOut, ok := callee.Signature()
	if !ok {
		// битая сигнатура вызываемой функции диагностируется при её проверке
		return
	}
	name := c.mod.FuncName(call.Callee)
	if !types.Equal(in, wantIn) {
		c.emit(diag.Errorf(diag.StructSignatureMismatch, at,
			"call to #%d %q passes %s, callee expects %s", call.Callee, name, types.FormatList(in), types.FormatList(wantIn)))
	}
	if !types.Equal(out, wantOut) {
		c.emit(diag.Errorf(diag.StructSignatureMismatch, at,
			"call to #%d %q binds %s, callee returns %s", call.Callee, name, types.FormatList(out), types.FormatList(wantOut)))
	}
}
