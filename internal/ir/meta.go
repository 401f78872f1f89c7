package ir

import "jeff/internal/strtab"

// Meta is an opaque named blob. Validators ignore it; transformations must
// carry it through unchanged.
type Meta struct {
	Name  strtab.ID
	Value []byte
}
