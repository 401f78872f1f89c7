package ir

type QubitOpKind uint8

const (
	QubitAlloc QubitOpKind = iota
	QubitFree
	QubitFreeZero
	QubitMeasure
	QubitMeasureNd
	QubitReset
	QubitGate
)

var qubitOpNames = []string{"alloc", "free", "freeZero", "measure", "measureNd", "reset", "gate"}

func (k QubitOpKind) String() string { return nameOf(qubitOpNames, k) }

func ParseQubitOpKind(s string) (QubitOpKind, bool) { return lookupName[QubitOpKind](qubitOpNames, s) }

type QuregOpKind uint8

const (
	QuregAlloc QuregOpKind = iota
	QuregFree
	QuregFreeZero
	QuregExtractIndex
	QuregInsertIndex
	QuregExtractSlice
	QuregInsertSlice
	QuregLength
	QuregSplit
	QuregJoin
	QuregCreate
)

var quregOpNames = []string{
	"alloc", "free", "freeZero", "extractIndex", "insertIndex",
	"extractSlice", "insertSlice", "length", "split", "join", "create",
}

func (k QuregOpKind) String() string { return nameOf(quregOpNames, k) }

func ParseQuregOpKind(s string) (QuregOpKind, bool) { return lookupName[QuregOpKind](quregOpNames, s) }

type IntOpKind uint8

const (
	IntConst IntOpKind = iota
	IntAdd
	IntSub
	IntMul
	IntDivS
	IntDivU
	IntPow
	IntAnd
	IntOr
	IntXor
	IntNot
	IntMinS
	IntMinU
	IntMaxS
	IntMaxU
	IntEq
	IntLtS
	IntLteS
	IntLtU
	IntLteU
	IntAbs
	IntRemS
	IntRemU
	IntShl
	IntShr
)

var intOpNames = []string{
	"const", "add", "sub", "mul", "divS", "divU", "pow", "and", "or", "xor", "not",
	"minS", "minU", "maxS", "maxU", "eq", "ltS", "lteS", "ltU", "lteU", "abs",
	"remS", "remU", "shl", "shr",
}

func (k IntOpKind) String() string { return nameOf(intOpNames, k) }

func ParseIntOpKind(s string) (IntOpKind, bool) { return lookupName[IntOpKind](intOpNames, s) }

// IsComparison reports whether the op yields an int1 from two operands.
func (k IntOpKind) IsComparison() bool {
	switch k {
	case IntEq, IntLtS, IntLteS, IntLtU, IntLteU:
		return true
	}
	return false
}

// IsUnary reports whether the op takes a single operand.
func (k IntOpKind) IsUnary() bool {
	return k == IntNot || k == IntAbs
}

type IntArrayOpKind uint8

const (
	IntArrayConst IntArrayOpKind = iota
	IntArrayZero
	IntArrayGetIndex
	IntArraySetIndex
	IntArrayLength
	IntArrayCreate
)

var arrayOpNames = []string{"const", "zero", "getIndex", "setIndex", "length", "create"}

func (k IntArrayOpKind) String() string { return nameOf(arrayOpNames, k) }

func ParseIntArrayOpKind(s string) (IntArrayOpKind, bool) {
	return lookupName[IntArrayOpKind](arrayOpNames, s)
}

type FloatOpKind uint8

const (
	FloatConst FloatOpKind = iota
	FloatAdd
	FloatSub
	FloatMul
	FloatPow
	FloatEq
	FloatLt
	FloatLte
	FloatSqrt
	FloatAbs
	FloatCeil
	FloatFloor
	FloatIsNan
	FloatIsInf
	FloatExp
	FloatLog
	FloatSin
	FloatCos
	FloatTan
	FloatAsin
	FloatAcos
	FloatAtan
	FloatAtan2
	FloatSinh
	FloatCosh
	FloatTanh
	FloatAsinh
	FloatAcosh
	FloatAtanh
	FloatMax
	FloatMin
)

var floatOpNames = []string{
	"const", "add", "sub", "mul", "pow", "eq", "lt", "lte", "sqrt", "abs", "ceil", "floor",
	"isNan", "isInf", "exp", "log", "sin", "cos", "tan", "asin", "acos", "atan", "atan2",
	"sinh", "cosh", "tanh", "asinh", "acosh", "atanh", "max", "min",
}

func (k FloatOpKind) String() string { return nameOf(floatOpNames, k) }

func ParseFloatOpKind(s string) (FloatOpKind, bool) { return lookupName[FloatOpKind](floatOpNames, s) }

// IsBinary reports whether the op maps two floats to a float.
func (k FloatOpKind) IsBinary() bool {
	switch k {
	case FloatAdd, FloatSub, FloatMul, FloatPow, FloatAtan2, FloatMax, FloatMin:
		return true
	}
	return false
}

// IsComparison reports whether the op maps two floats to an int1.
func (k FloatOpKind) IsComparison() bool {
	return k == FloatEq || k == FloatLt || k == FloatLte
}

// IsPredicate reports whether the op maps one float to an int1.
func (k FloatOpKind) IsPredicate() bool {
	return k == FloatIsNan || k == FloatIsInf
}

type FloatArrayOpKind uint8

const (
	FloatArrayConst FloatArrayOpKind = iota
	FloatArrayZero
	FloatArrayGetIndex
	FloatArraySetIndex
	FloatArrayLength
	FloatArrayCreate
)

func (k FloatArrayOpKind) String() string { return nameOf(arrayOpNames, k) }

func ParseFloatArrayOpKind(s string) (FloatArrayOpKind, bool) {
	return lookupName[FloatArrayOpKind](arrayOpNames, s)
}
