package validate

import (
	"fmt"
	"strings"

	"jeff/internal/diag"
	"jeff/internal/ir"
)

type site struct {
	set  bool
	path diag.Path
	op   int
}

// funcCheck validates one function. It only reads the module, so several
// run concurrently.
type funcCheck struct {
	m    *ir.Module
	fn   *ir.Function
	loc  diag.Location
	opts Options
	bag  *diag.Bag

	producers []site
	stopped   bool
}

// Function validates function idx of m in isolation from the module-level
// checks.
func Function(m *ir.Module, idx int, opts Options) *diag.Bag {
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = DefaultOptions().MaxDiagnostics
	}
	fc := &funcCheck{
		m:    m,
		fn:   &m.Functions[idx],
		loc:  diag.FuncLoc(idx, m.FuncName(ir.FuncID(idx))),
		opts: opts,
		bag:  diag.NewBag(opts.MaxDiagnostics),
	}
	fc.run()
	return fc.bag
}

func (fc *funcCheck) report(e *diag.Error) bool {
	if fc.stopped {
		return false
	}
	if !fc.bag.Add(e) || (!fc.opts.CollectAll && e.Severity >= diag.SevError) {
		fc.stopped = true
	}
	return !fc.stopped
}

func (fc *funcCheck) reportAll(e *diag.Error) { fc.report(e) }

func (fc *funcCheck) run() {
	checkMeta(fc.m, fc.fn.Meta, fc.loc, "function metadata", fc.reportAll)
	if fc.fn.IsDeclaration() {
		fc.checkDeclaration()
		return
	}
	if len(fc.fn.Inputs) > 0 || len(fc.fn.Outputs) > 0 {
		fc.report(diag.Errorf(diag.StructBadInstruction, fc.loc,
			"definition carries a declared signature; its signature comes from the body"))
	}
	badTypes := false
	for i, v := range fc.fn.Values {
		if err := v.Type.Validate(); err != nil {
			badTypes = true
			fc.report(diag.Errorf(diag.StructBadType, fc.loc.AtValue(i), "value %%%d: %v", i, err))
		}
		checkMeta(fc.m, v.Meta, fc.loc.AtValue(i), "value metadata", fc.reportAll)
	}
	if fc.stopped || badTypes {
		// без корректных типов проверка регионов даёт только шум
		return
	}
	fc.collectProducers()
	fc.checkOrphans()
	ir.WalkRegions(&fc.fn.Body, func(path diag.Path, r *ir.Region) bool {
		if fc.stopped {
			return false
		}
		fc.checkRegion(path, r)
		return !fc.stopped
	})
}

func (fc *funcCheck) checkDeclaration() {
	b := &fc.fn.Body
	if len(b.Sources) > 0 || len(b.Targets) > 0 || len(b.Ops) > 0 || len(fc.fn.Values) > 0 {
		fc.report(diag.Errorf(diag.StructDeclarationBody, fc.loc, "declaration carries a body or value table"))
	}
	for i, t := range fc.fn.Inputs {
		if err := t.Validate(); err != nil {
			fc.report(diag.Errorf(diag.StructBadType, fc.loc, "declared input %d: %v", i, err))
		}
	}
	for i, t := range fc.fn.Outputs {
		if err := t.Validate(); err != nil {
			fc.report(diag.Errorf(diag.StructBadType, fc.loc, "declared output %d: %v", i, err))
		}
	}
}

// collectProducers assigns every value its single producer across the
// whole function. A second producer is a double definition wherever it
// sits; out-of-bounds indices are left to the region checker.
func (fc *funcCheck) collectProducers() {
	fc.producers = make([]site, len(fc.fn.Values))
	ir.WalkRegions(&fc.fn.Body, func(path diag.Path, r *ir.Region) bool {
		for _, v := range r.Sources {
			fc.produce(v, path, diag.NoIndex)
		}
		for i := range r.Ops {
			for _, v := range r.Ops[i].Outputs {
				fc.produce(v, path, i)
			}
		}
		return !fc.stopped
	})
}

// checkOrphans reports linear entries of the value table that no region
// source or op output produces. Unreferenced non-linear values are legal.
func (fc *funcCheck) checkOrphans() {
	for i, v := range fc.fn.Values {
		if fc.stopped {
			return
		}
		if v.Type.IsLinear() && !fc.producers[i].set {
			fc.report(diag.Errorf(diag.StructLinearUnproduced, fc.loc.AtValue(i),
				"linear value %%%d (%s) is never produced", i, v.Type))
		}
	}
}

func (fc *funcCheck) produce(v ir.ValueID, path diag.Path, op int) {
	if int(v) >= len(fc.producers) {
		return
	}
	prev := fc.producers[v]
	if !prev.set {
		fc.producers[v] = site{set: true, path: path, op: op}
		return
	}
	t := fc.fn.Values[v].Type
	code, what := diag.StructDoubleDef, "value"
	if t.IsLinear() {
		code, what = diag.StructLinearDoubleDef, "linear value"
	}
	e := diag.Errorf(code, fc.loc.InPath(path).AtOp(op).AtValue(int(v)),
		"%s %%%d (%s) is produced more than once", what, v, t)
	fc.report(e.WithNote(fc.loc.InPath(prev.path).AtOp(prev.op).AtValue(int(v)), "first produced here"))
}

func (fc *funcCheck) producedAnywhere(v ir.ValueID) bool {
	return int(v) < len(fc.producers) && fc.producers[v].set
}

func (fc *funcCheck) checkRegion(path diag.Path, r *ir.Region) {
	loc := fc.loc.InPath(path)
	checkMeta(fc.m, r.Meta, loc, "region metadata", fc.reportAll)
	for i := range r.Ops {
		checkMeta(fc.m, r.Ops[i].Meta, loc.AtOp(i), "op metadata", fc.reportAll)
	}

	g := buildDepGraph(r)
	order := g.toposort()
	if order.Cyclic {
		fc.report(diag.Errorf(diag.StructCycle, loc.AtOp(order.Cycle[0]),
			"dependency cycle: %s", formatCycle(order.Cycle)))
	}

	rc := NewRegionChecker(fc.m, fc.fn, fc.loc, path, fc.report).ProducedElsewhere(fc.producedAnywhere)
	if n := len(path); n > 0 && path[n-1].Region == ir.RegionCond {
		rc.Condition()
	}
	for _, v := range r.Sources {
		rc.Source(v)
	}
	for _, i := range order.Order {
		if rc.Stopped() {
			return
		}
		rc.Op(i, &r.Ops[i])
	}
	for _, i := range order.Stuck {
		rc.Skip(i, &r.Ops[i])
	}
	rc.Close(r.Targets)

	if fc.opts.Lints && !fc.stopped {
		lintRegion(r, loc, fc.reportAll)
	}
}

func formatCycle(ops []int) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = fmt.Sprintf("op%d", op)
	}
	return strings.Join(parts, " -> ")
}
