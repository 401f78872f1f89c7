package diag

import (
	"fmt"
	"strconv"
	"strings"
)

// NoIndex marks an absent function, op or value coordinate.
const NoIndex = -1

// Step is one hop of a region path: the op that owns the nested region and
// the region's role in it ("body", "cond", "branch2", "default").
type Step struct {
	Op     int
	Region string
}

// Path locates a region inside a function body. The empty path is the body.
type Path []Step

// Child returns a new path descending into region of op. The receiver is
// never aliased.
func (p Path) Child(op int, region string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, Step{Op: op, Region: region})
}

func (p Path) String() string {
	var sb strings.Builder
	sb.WriteString("body")
	for _, s := range p {
		sb.WriteString("/op")
		sb.WriteString(strconv.Itoa(s.Op))
		sb.WriteByte('.')
		sb.WriteString(s.Region)
	}
	return sb.String()
}

// Location pinpoints a finding inside a module.
type Location struct {
	Func     int
	FuncName string
	Path     Path
	InRegion bool
	Op       int
	Value    int
}

// ModuleLoc is the location of module-level findings.
func ModuleLoc() Location {
	return Location{Func: NoIndex, Op: NoIndex, Value: NoIndex}
}

// FuncLoc is the location of a function as a whole.
func FuncLoc(idx int, name string) Location {
	return Location{Func: idx, FuncName: name, Op: NoIndex, Value: NoIndex}
}

// InPath narrows the location to a region.
func (l Location) InPath(p Path) Location {
	l.Path = p
	l.InRegion = true
	return l
}

// AtOp narrows the location to an op within the current region.
func (l Location) AtOp(op int) Location {
	l.Op = op
	return l
}

// AtValue narrows the location to a value index.
func (l Location) AtValue(v int) Location {
	l.Value = v
	return l
}

func (l Location) String() string {
	if l.Func == NoIndex {
		if l.Value != NoIndex {
			return fmt.Sprintf("module, value %%%d", l.Value)
		}
		return "module"
	}
	var sb strings.Builder
	if l.FuncName != "" {
		fmt.Fprintf(&sb, "function #%d %q", l.Func, l.FuncName)
	} else {
		fmt.Fprintf(&sb, "function #%d", l.Func)
	}
	if l.InRegion {
		sb.WriteString(", ")
		sb.WriteString(l.Path.String())
	}
	if l.Op != NoIndex {
		fmt.Fprintf(&sb, ", op %d", l.Op)
	}
	if l.Value != NoIndex {
		fmt.Fprintf(&sb, ", value %%%d", l.Value)
	}
	return sb.String()
}
