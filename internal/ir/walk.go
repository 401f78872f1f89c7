package ir

import "jeff/internal/diag"

// WalkFunc is called for every region reachable from a function body. path
// is the location of r; returning false skips r's nested regions.
type WalkFunc func(path diag.Path, r *Region) bool

// WalkRegions visits body and all nested regions in pre-order.
func WalkRegions(body *Region, fn WalkFunc) {
	walkRegion(nil, body, fn)
}

func walkRegion(path diag.Path, r *Region, fn WalkFunc) {
	if !fn(path, r) {
		return
	}
	for i := range r.Ops {
		for _, nr := range r.Ops[i].Regions() {
			walkRegion(path.Child(i, nr.Name), nr.Region, fn)
		}
	}
}

// WalkOps visits every op of every region reachable from body.
func WalkOps(body *Region, fn func(path diag.Path, idx int, op *Op)) {
	WalkRegions(body, func(path diag.Path, r *Region) bool {
		for i := range r.Ops {
			fn(path, i, &r.Ops[i])
		}
		return true
	})
}

// CountOps returns the number of ops in body, nested ones included.
func CountOps(body *Region) int {
	n := 0
	WalkOps(body, func(diag.Path, int, *Op) { n++ })
	return n
}
