package codec

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Float is a float constant on the wire. msgpack stores it as float64; the
// text encoding keeps the exact bit pattern, including the sign of zero.
// NaNs other than math.NaN() are written as raw bits under bitsTag.
type Float float64

const bitsTag = "!bits"

var canonicalNaN = math.Float64bits(math.NaN())

func (f Float) MarshalYAML() (any, error) {
	v := float64(f)
	bits := math.Float64bits(v)
	var s string
	switch {
	case math.IsNaN(v) && bits != canonicalNaN:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: bitsTag, Value: fmt.Sprintf("0x%016x", bits)}, nil
	case math.IsNaN(v):
		s = ".nan"
	case math.IsInf(v, 1):
		s = ".inf"
	case math.IsInf(v, -1):
		s = "-.inf"
	default:
		s = strconv.FormatFloat(v, 'g', -1, 64)
		// "-0" и "1" yaml прочитает как int
		if !strings.ContainsAny(s, ".e") {
			s += ".0"
		}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: s}, nil
}

func (f *Float) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: float constant must be a scalar", n.Line)
	}
	if n.Tag == bitsTag {
		bits, err := strconv.ParseUint(strings.TrimPrefix(n.Value, "0x"), 16, 64)
		if err != nil {
			return fmt.Errorf("line %d: bad float bits %q: %w", n.Line, n.Value, err)
		}
		*f = Float(math.Float64frombits(bits))
		return nil
	}
	switch strings.ToLower(n.Value) {
	case ".nan":
		*f = Float(math.NaN())
		return nil
	case ".inf", "+.inf":
		*f = Float(math.Inf(1))
		return nil
	case "-.inf":
		*f = Float(math.Inf(-1))
		return nil
	}
	v, err := strconv.ParseFloat(n.Value, 64)
	if err != nil {
		return fmt.Errorf("line %d: %q is not a float", n.Line, n.Value)
	}
	*f = Float(v)
	return nil
}

func floatsToWire(vs []float64) []Float {
	if vs == nil {
		return nil
	}
	out := make([]Float, len(vs))
	for i, v := range vs {
		out[i] = Float(v)
	}
	return out
}

func floatsFromWire(ws []Float) []float64 {
	if ws == nil {
		return nil
	}
	out := make([]float64, len(ws))
	for i, w := range ws {
		out[i] = float64(w)
	}
	return out
}
