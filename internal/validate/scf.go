package validate

import (
	"fmt"

	"jeff/internal/diag"
	"jeff/internal/ir"
	"jeff/internal/types"
)

type regionSig struct {
	in, out []types.Type
}

func (s regionSig) equal(o regionSig) bool {
	return types.Equal(s.in, o.in) && types.Equal(s.out, o.out)
}

func (s regionSig) String() string {
	return types.FormatList(s.in) + " -> " + types.FormatList(s.out)
}

// sigOf resolves the port types of a nested region. ok is false when an
// index is out of bounds; the nested checker reports that.
func (c *RegionChecker) sigOf(r *ir.Region) (regionSig, bool) {
	in, ok := c.typesOf(r.Sources)
	if !ok {
		return regionSig{}, false
	}
	out, ok := c.typesOf(r.Targets)
	if !ok {
		return regionSig{}, false
	}
	return regionSig{in: in, out: out}, true
}

func (c *RegionChecker) regionLoc(idx int, name string) diag.Location {
	return c.loc.InPath(c.path.Child(idx, name)).AtOp(diag.NoIndex)
}

// expectRegion compares a nested region's ports with the operator contract.
func (c *RegionChecker) expectRegion(idx int, kind ir.ScfKind, nr ir.NamedRegion, want regionSig) {
	got, ok := c.sigOf(nr.Region)
	if !ok || got.equal(want) {
		return
	}
	c.emit(diag.Errorf(diag.StructSignatureMismatch, c.regionLoc(idx, nr.Name),
		"%s %s region has signature %s, expected %s", kind, nr.Name, got, want))
}

func (c *RegionChecker) checkScf(idx int, op ir.ScfOp, in, out []types.Type) {
	at := c.loc.AtOp(idx)
	fail := func(code diag.Code, format string, args ...any) {
		c.emit(diag.Errorf(code, at, "scf.%s: %s", op.Kind, fmt.Sprintf(format, args...)))
	}
	regions := op.Regions()
	switch op.Kind {
	case ir.ScfSwitch:
		if len(regions) == 0 {
			fail(diag.StructEmptySwitch, "no branches and no default region")
			return
		}
		if len(in) < 1 {
			fail(diag.StructArityMismatch, "expects a selector input")
			return
		}
		if !in[0].IsInt() {
			fail(diag.StructTypeMismatch, "selector must be an integer, got %s", in[0])
			return
		}
		want := regionSig{in: in[1:], out: out}
		ref, refOK := c.sigOf(regions[0].Region)
		c.expectRegion(idx, op.Kind, regions[0], want)
		for _, nr := range regions[1:] {
			got, ok := c.sigOf(nr.Region)
			if !ok || !refOK || got.equal(ref) {
				continue
			}
			e := diag.Errorf(diag.StructBranchMismatch, c.regionLoc(idx, nr.Name),
				"switch %s has signature %s but %s has %s", nr.Name, got, regions[0].Name, ref)
			c.emit(e.WithNote(c.regionLoc(idx, regions[0].Name), regions[0].Name+" declared here"))
		}

	case ir.ScfFor:
		if len(in) < 3 {
			fail(diag.StructArityMismatch, "expects start, stop and step inputs, got %d inputs", len(in))
			return
		}
		bounds := shape{in: []slot{intN('N'), intN('N'), intN('N')}}
		if p := bounds.match(in[:3], nil); p != nil {
			fail(p.code, "loop bounds must share one integer width: %s", p.msg)
			return
		}
		state := in[3:]
		if !types.Equal(out, state) {
			fail(diag.StructSignatureMismatch, "outputs %s must equal the loop state %s", types.FormatList(out), types.FormatList(state))
		}
		induction := append([]types.Type{in[0]}, state...)
		c.expectRegion(idx, op.Kind, regions[0], regionSig{in: induction, out: state})

	case ir.ScfWhile, ir.ScfDoWhile:
		if !types.Equal(out, in) {
			fail(diag.StructSignatureMismatch, "outputs %s must equal the loop state %s", types.FormatList(out), types.FormatList(in))
		}
		for _, nr := range regions {
			want := regionSig{in: in, out: in}
			if nr.Name == ir.RegionCond {
				want.out = []types.Type{types.Int(types.W1)}
			}
			c.expectRegion(idx, op.Kind, nr, want)
		}

	default:
		fail(diag.StructBadInstruction, "unknown control-flow operator %d", op.Kind)
	}
}
