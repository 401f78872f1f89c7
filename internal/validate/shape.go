package validate

import (
	"fmt"
	"strconv"
	"strings"

	"jeff/internal/diag"
	"jeff/internal/types"
)

// slot is one port of an op shape. bind selects how Bits is matched:
// 0 requires Bits exactly, '*' accepts any supported width, and a letter
// requires the same width wherever that letter repeats in the shape.
type slot struct {
	kind types.Kind
	bits uint8
	bind byte
}

func exact(t types.Type) slot { return slot{kind: t.Kind, bits: t.Bits} }
func anyInt() slot            { return slot{kind: types.KindInt, bind: '*'} }
func anyFloat() slot          { return slot{kind: types.KindFloat, bind: '*'} }
func intN(b byte) slot        { return slot{kind: types.KindInt, bind: b} }
func floatN(b byte) slot      { return slot{kind: types.KindFloat, bind: b} }
func intArrN(b byte) slot     { return slot{kind: types.KindIntArray, bind: b} }
func floatArrN(b byte) slot   { return slot{kind: types.KindFloatArray, bind: b} }

var (
	qubitSlot = exact(types.Qubit())
	quregSlot = exact(types.Qureg())
	boolSlot  = exact(types.Int(types.W1))
)

func (s slot) accepts(t types.Type, binds map[byte]uint8) bool {
	if t.Kind != s.kind {
		return false
	}
	switch s.bind {
	case 0:
		return t.Bits == s.bits
	case '*':
		return true
	}
	if b, ok := binds[s.bind]; ok {
		return t.Bits == b
	}
	binds[s.bind] = t.Bits
	return true
}

func (s slot) String() string {
	if s.bind == 0 {
		return types.Type{Kind: s.kind, Bits: s.bits}.String()
	}
	w := string(s.bind)
	switch s.kind {
	case types.KindInt:
		return "int" + w
	case types.KindIntArray:
		return "int" + w + "[]"
	case types.KindFloat:
		return "float" + w
	case types.KindFloatArray:
		return "float" + w + "[]"
	}
	return s.kind.String()
}

// shape is the port contract of an instruction.
type shape struct {
	in   []slot
	rest *slot // optional variadic tail of inputs
	out  []slot
}

func repeat(s slot, n int) []slot {
	out := make([]slot, n)
	for i := range out {
		out[i] = s
	}
	return out
}

func (sh shape) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, s := range sh.in {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(s.String())
	}
	if sh.rest != nil {
		if len(sh.in) > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(sh.rest.String())
		sb.WriteString("...")
	}
	sb.WriteString(") -> (")
	for i, s := range sh.out {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(s.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// problem is a contract violation not yet bound to a location.
type problem struct {
	code diag.Code
	msg  string
}

func problemf(code diag.Code, format string, args ...any) *problem {
	return &problem{code: code, msg: fmt.Sprintf(format, args...)}
}

// match checks in and out against the shape. Arity is reported before
// types; the first offending port is reported.
func (sh shape) match(in, out []types.Type) *problem {
	if (sh.rest == nil && len(in) != len(sh.in)) || len(in) < len(sh.in) {
		return problemf(diag.StructArityMismatch, "expects %s inputs, got %d", arity(len(sh.in), sh.rest != nil), len(in))
	}
	if len(out) != len(sh.out) {
		return problemf(diag.StructArityMismatch, "expects %d outputs, got %d", len(sh.out), len(out))
	}
	binds := make(map[byte]uint8, 2)
	for i, t := range in {
		s := sh.rest
		if i < len(sh.in) {
			s = &sh.in[i]
		}
		if !s.accepts(t, binds) {
			return problemf(diag.StructTypeMismatch, "input %d: expected %s, got %s (contract %s)", i, s, t, sh)
		}
	}
	for i, t := range out {
		if !sh.out[i].accepts(t, binds) {
			return problemf(diag.StructTypeMismatch, "output %d: expected %s, got %s (contract %s)", i, sh.out[i], t, sh)
		}
	}
	return nil
}

func arity(n int, variadic bool) string {
	if variadic {
		return "at least " + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
