package ir

import "strconv"

type ScfKind uint8

const (
	ScfSwitch ScfKind = iota
	ScfFor
	ScfWhile
	ScfDoWhile
)

var scfNames = []string{"switch", "for", "while", "doWhile"}

func (k ScfKind) String() string { return nameOf(scfNames, k) }

func ParseScfKind(s string) (ScfKind, bool) { return lookupName[ScfKind](scfNames, s) }

// ScfOp is a structured control-flow operator. Which region fields are used
// depends on Kind:
//
//	switch:  Branches, optional Default
//	for:     Body
//	while:   Cond, Body (condition runs first)
//	doWhile: Body, Cond (body runs first)
type ScfOp struct {
	Kind     ScfKind
	Branches []Region
	Default  *Region
	Body     Region
	Cond     Region
}

// Region role names used in locations and the text encoding.
const (
	RegionBody    = "body"
	RegionCond    = "cond"
	RegionDefault = "default"
)

// BranchName is the role name of the i-th switch branch.
func BranchName(i int) string { return "branch" + strconv.Itoa(i) }

// Regions lists the nested regions in evaluation order.
func (s ScfOp) Regions() []NamedRegion {
	switch s.Kind {
	case ScfSwitch:
		out := make([]NamedRegion, 0, len(s.Branches)+1)
		for i := range s.Branches {
			out = append(out, NamedRegion{Name: BranchName(i), Region: &s.Branches[i]})
		}
		if s.Default != nil {
			out = append(out, NamedRegion{Name: RegionDefault, Region: s.Default})
		}
		return out
	case ScfFor:
		return []NamedRegion{{Name: RegionBody, Region: &s.Body}}
	case ScfWhile:
		return []NamedRegion{{Name: RegionCond, Region: &s.Cond}, {Name: RegionBody, Region: &s.Body}}
	case ScfDoWhile:
		return []NamedRegion{{Name: RegionBody, Region: &s.Body}, {Name: RegionCond, Region: &s.Cond}}
	}
	return nil
}
