package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind enumerates the value types a wire can carry.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindQubit
	KindQureg
	KindInt
	KindIntArray
	KindFloat
	KindFloatArray
)

func (k Kind) String() string {
	switch k {
	case KindQubit:
		return "qubit"
	case KindQureg:
		return "qureg"
	case KindInt:
		return "int"
	case KindIntArray:
		return "intArray"
	case KindFloat:
		return "float"
	case KindFloatArray:
		return "floatArray"
	default:
		return "invalid"
	}
}

// Width is an integer bitwidth.
type Width uint8

// Supported integer bitwidths.
const (
	W1  Width = 1
	W8  Width = 8
	W16 Width = 16
	W32 Width = 32
	W64 Width = 64
)

// ValidWidth reports whether w is one of the supported integer bitwidths.
func ValidWidth(w Width) bool {
	switch w {
	case W1, W8, W16, W32, W64:
		return true
	}
	return false
}

// Precision is a floating point precision in bits.
type Precision uint8

const (
	Float32 Precision = 32
	Float64 Precision = 64
)

// ValidPrecision reports whether p is a supported float precision.
func ValidPrecision(p Precision) bool {
	return p == Float32 || p == Float64
}

// Type is a tagged variant over the value kinds. Bits holds the integer
// bitwidth for int kinds and the precision for float kinds; it is zero for
// quantum kinds.
type Type struct {
	Kind Kind
	Bits uint8
}

func Qubit() Type                   { return Type{Kind: KindQubit} }
func Qureg() Type                   { return Type{Kind: KindQureg} }
func Int(w Width) Type              { return Type{Kind: KindInt, Bits: uint8(w)} }
func IntArray(w Width) Type         { return Type{Kind: KindIntArray, Bits: uint8(w)} }
func Float(p Precision) Type        { return Type{Kind: KindFloat, Bits: uint8(p)} }
func FloatArray(p Precision) Type   { return Type{Kind: KindFloatArray, Bits: uint8(p)} }
func (t Type) Width() Width         { return Width(t.Bits) }
func (t Type) Precision() Precision { return Precision(t.Bits) }

// IsLinear reports whether values of the type must be consumed exactly once.
func (t Type) IsLinear() bool {
	return t.Kind == KindQubit || t.Kind == KindQureg
}

// IsLinear is the free-function form of Type.IsLinear.
func IsLinear(t Type) bool { return t.IsLinear() }

// IsInt reports whether t is a scalar integer of any supported width.
func (t Type) IsInt() bool { return t.Kind == KindInt }

// Elem returns the scalar element type of an array type.
func (t Type) Elem() (Type, bool) {
	switch t.Kind {
	case KindIntArray:
		return Type{Kind: KindInt, Bits: t.Bits}, true
	case KindFloatArray:
		return Type{Kind: KindFloat, Bits: t.Bits}, true
	}
	return Type{}, false
}

// Validate checks that the payload matches the kind.
func (t Type) Validate() error {
	switch t.Kind {
	case KindQubit, KindQureg:
		if t.Bits != 0 {
			return fmt.Errorf("%s carries unexpected width %d", t.Kind, t.Bits)
		}
		return nil
	case KindInt, KindIntArray:
		if !ValidWidth(Width(t.Bits)) {
			return fmt.Errorf("unsupported integer bitwidth %d", t.Bits)
		}
		return nil
	case KindFloat, KindFloatArray:
		if !ValidPrecision(Precision(t.Bits)) {
			return fmt.Errorf("unsupported float precision %d", t.Bits)
		}
		return nil
	}
	return fmt.Errorf("invalid type kind %d", t.Kind)
}

func (t Type) String() string {
	switch t.Kind {
	case KindQubit:
		return "qubit"
	case KindQureg:
		return "qureg"
	case KindInt:
		return "int" + strconv.Itoa(int(t.Bits))
	case KindIntArray:
		return "int" + strconv.Itoa(int(t.Bits)) + "[]"
	case KindFloat:
		return "float" + strconv.Itoa(int(t.Bits))
	case KindFloatArray:
		return "float" + strconv.Itoa(int(t.Bits)) + "[]"
	}
	return "<invalid>"
}

// Parse is the inverse of Type.String.
func Parse(s string) (Type, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "qubit":
		return Qubit(), nil
	case "qureg":
		return Qureg(), nil
	}
	array := strings.HasSuffix(s, "[]")
	base := strings.TrimSuffix(s, "[]")
	var t Type
	var digits string
	switch {
	case strings.HasPrefix(base, "int"):
		t.Kind, digits = KindInt, base[len("int"):]
		if array {
			t.Kind = KindIntArray
		}
	case strings.HasPrefix(base, "float"):
		t.Kind, digits = KindFloat, base[len("float"):]
		if array {
			t.Kind = KindFloatArray
		}
	default:
		return Type{}, fmt.Errorf("unknown type %q", s)
	}
	bits, err := strconv.ParseUint(digits, 10, 8)
	if err != nil {
		return Type{}, fmt.Errorf("bad width in type %q: %w", s, err)
	}
	t.Bits = uint8(bits)
	if err := t.Validate(); err != nil {
		return Type{}, fmt.Errorf("type %q: %w", s, err)
	}
	return t, nil
}

// Equal compares two type lists positionally.
func Equal(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// FormatList renders a type list as "(int32, qubit)".
func FormatList(ts []Type) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, t := range ts {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(t.String())
	}
	sb.WriteByte(')')
	return sb.String()
}
