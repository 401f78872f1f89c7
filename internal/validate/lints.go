package validate

import (
	"jeff/internal/diag"
	"jeff/internal/ir"
)

// lintRegion reports statically visible precondition violations. They are
// warnings: the format leaves these cases to the caller and they never
// change the verdict.
func lintRegion(r *ir.Region, loc diag.Location, report func(*diag.Error)) {
	consts := make(map[ir.ValueID]uint64)
	for i := range r.Ops {
		if k, ok := r.Ops[i].Instr.(ir.IntOp); ok && k.Kind == ir.IntConst && len(r.Ops[i].Outputs) == 1 {
			consts[r.Ops[i].Outputs[0]] = k.Value
		}
	}
	for i := range r.Ops {
		op := &r.Ops[i]
		at := loc.AtOp(i)
		switch instr := op.Instr.(type) {
		case ir.ScfOp:
			switch instr.Kind {
			case ir.ScfFor:
				if len(op.Inputs) < 3 {
					continue
				}
				if v, ok := consts[op.Inputs[2]]; ok && v == 0 {
					report(diag.Warnf(diag.PreZeroStep, at, "for loop step is the constant 0"))
				}
			case ir.ScfSwitch:
				if instr.Default != nil || len(op.Inputs) == 0 {
					continue
				}
				if v, ok := consts[op.Inputs[0]]; ok && v >= uint64(len(instr.Branches)) {
					report(diag.Warnf(diag.PreSelectorRange, at,
						"selector is the constant %d but the switch has %d branches and no default", v, len(instr.Branches)))
				}
			}
		case ir.QubitOp:
			if instr.Kind == ir.QubitGate && instr.Gate.Power == 0 {
				report(diag.Warnf(diag.PreGatePowerZero, at, "gate power is 0"))
			}
		}
	}
}
