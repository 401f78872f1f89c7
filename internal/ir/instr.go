package ir

import "jeff/internal/types"

// Category is the closed set of instruction families.
type Category uint8

const (
	CatQubit Category = iota
	CatQureg
	CatInt
	CatIntArray
	CatFloat
	CatFloatArray
	CatScf
	CatFunc
)

var categoryNames = [...]string{
	CatQubit:      "qubit",
	CatQureg:      "qureg",
	CatInt:        "int",
	CatIntArray:   "intArray",
	CatFloat:      "float",
	CatFloatArray: "floatArray",
	CatScf:        "scf",
	CatFunc:       "func",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "invalid"
}

// ParseCategory is the inverse of Category.String.
func ParseCategory(s string) (Category, bool) { return lookupName[Category](categoryNames[:], s) }

// Instruction is the sealed sum of op payloads. Dispatch is a type switch
// over the eight concrete types below; the unexported method keeps the set
// closed.
type Instruction interface {
	Category() Category
	Name() string
	isInstruction()
}

// QubitOp operates on single qubits.
type QubitOp struct {
	Kind QubitOpKind
	Gate Gate // only for QubitGate
}

// QuregOp operates on qubit registers.
type QuregOp struct {
	Kind QuregOpKind
}

// IntOp operates on scalar integers. Width and Value are used by IntConst.
type IntOp struct {
	Kind  IntOpKind
	Width types.Width
	Value uint64
}

// IntArrayOp operates on integer arrays. Width is the element width for
// IntArrayConst and IntArrayZero; Values holds the constant elements.
type IntArrayOp struct {
	Kind   IntArrayOpKind
	Width  types.Width
	Values []uint64
}

// FloatOp operates on scalar floats. Precision and Value are used by
// FloatConst.
type FloatOp struct {
	Kind      FloatOpKind
	Precision types.Precision
	Value     float64
}

// FloatArrayOp operates on float arrays.
type FloatArrayOp struct {
	Kind      FloatArrayOpKind
	Precision types.Precision
	Values    []float64
}

// FuncOp calls another function of the module.
type FuncOp struct {
	Callee FuncID
}

func (QubitOp) Category() Category      { return CatQubit }
func (QuregOp) Category() Category      { return CatQureg }
func (IntOp) Category() Category        { return CatInt }
func (IntArrayOp) Category() Category   { return CatIntArray }
func (FloatOp) Category() Category      { return CatFloat }
func (FloatArrayOp) Category() Category { return CatFloatArray }
func (ScfOp) Category() Category        { return CatScf }
func (FuncOp) Category() Category       { return CatFunc }

func (o QubitOp) Name() string      { return o.Kind.String() }
func (o QuregOp) Name() string      { return o.Kind.String() }
func (o IntOp) Name() string        { return o.Kind.String() }
func (o IntArrayOp) Name() string   { return o.Kind.String() }
func (o FloatOp) Name() string      { return o.Kind.String() }
func (o FloatArrayOp) Name() string { return o.Kind.String() }
func (o ScfOp) Name() string        { return o.Kind.String() }
func (FuncOp) Name() string         { return "call" }

func (QubitOp) isInstruction()      {}
func (QuregOp) isInstruction()      {}
func (IntOp) isInstruction()        {}
func (IntArrayOp) isInstruction()   {}
func (FloatOp) isInstruction()      {}
func (FloatArrayOp) isInstruction() {}
func (ScfOp) isInstruction()        {}
func (FuncOp) isInstruction()       {}

// QualifiedName renders "category.name", e.g. "qubit.measure".
func QualifiedName(in Instruction) string {
	if in == nil {
		return "<nil>"
	}
	return in.Category().String() + "." + in.Name()
}

func lookupName[K ~uint8](names []string, s string) (K, bool) {
	for i, n := range names {
		if n == s && n != "" {
			return K(i), true
		}
	}
	return 0, false
}

func nameOf[K ~uint8](names []string, k K) string {
	if int(k) < len(names) && names[k] != "" {
		return names[k]
	}
	return "invalid"
}
