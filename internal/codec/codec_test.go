package codec

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jeff/internal/builder"
	"jeff/internal/diag"
	"jeff/internal/ir"
	"jeff/internal/types"
	"jeff/internal/validate"
)

var (
	i1  = types.Int(types.W1)
	i32 = types.Int(types.W32)
	f64 = types.Float(types.Float64)
)

// sample builds a module touching every instruction family, nested regions,
// metadata on every node kind and a custom gate.
func sample(t *testing.T) *ir.Module {
	t.Helper()
	mb := builder.NewModule()
	mb.SetTool("jeff-test", "0.0.1")
	mb.Annotate("origin", []byte{0xde, 0xad, 0xbe, 0xef})

	oracle, err := mb.Declare("oracle", []types.Type{types.Qureg()}, []types.Type{types.Qureg()})
	require.NoError(t, err)
	fb, err := mb.Define("main", nil, []types.Type{i1, i32, f64})
	require.NoError(t, err)
	fb.Annotate("entry", nil)
	rb := fb.Body()
	rb.Annotate("scope", []byte("top"))

	// quantum part
	n, err := rb.Const(types.W64, 3)
	require.NoError(t, err)
	reg, err := rb.Append(ir.QuregOp{Kind: ir.QuregAlloc}, []ir.ValueID{n}, types.Qureg())
	require.NoError(t, err)
	reg, err = rb.Call(oracle, reg[0])
	require.NoError(t, err)
	zero, err := rb.Const(types.W64, 0)
	require.NoError(t, err)
	parts, err := rb.Append(ir.QuregOp{Kind: ir.QuregExtractIndex}, []ir.ValueID{reg[0], zero}, types.Qureg(), types.Qubit())
	require.NoError(t, err)
	rb.AnnotateLast("line", []byte{12})
	angle, err := rb.FloatConst(types.Float64, math.Pi/4)
	require.NoError(t, err)
	q, err := rb.Gate(ir.Gate{Kind: ir.GatePPR, Pauli: []ir.Pauli{ir.PauliZ}, Power: 1}, []ir.ValueID{parts[1]}, angle)
	require.NoError(t, err)
	custom := rb.CustomGate("sqrt_iswap", 1, 0)
	custom.Adjoint = true
	q, err = rb.Gate(custom, q)
	require.NoError(t, err)
	require.NoError(t, fb.AnnotateValue(q[0], "name", []byte("anc")))
	reg, err = rb.Append(ir.QuregOp{Kind: ir.QuregInsertIndex}, []ir.ValueID{parts[0], q[0], zero}, types.Qureg())
	require.NoError(t, err)
	_, err = rb.Append(ir.QuregOp{Kind: ir.QuregFree}, reg)
	require.NoError(t, err)

	// classical part
	arr, err := rb.Append(ir.IntArrayOp{Kind: ir.IntArrayConst, Width: types.W8, Values: []uint64{1, 2, 3}}, nil, types.IntArray(types.W8))
	require.NoError(t, err)
	_, err = rb.Append(ir.IntArrayOp{Kind: ir.IntArrayGetIndex}, []ir.ValueID{arr[0], zero}, types.Int(types.W8))
	require.NoError(t, err)
	_, err = rb.Append(ir.FloatArrayOp{Kind: ir.FloatArrayCreate}, []ir.ValueID{angle, angle}, types.FloatArray(types.Float64))
	require.NoError(t, err)

	start, err := rb.Const(types.W32, 0)
	require.NoError(t, err)
	stop, err := rb.Const(types.W32, 5)
	require.NoError(t, err)
	step, err := rb.Const(types.W32, 1)
	require.NoError(t, err)
	sum, err := rb.For(start, stop, step, []ir.ValueID{start}, func(body *builder.RegionBuilder, args []ir.ValueID) ([]ir.ValueID, error) {
		v, err := body.Int(ir.IntAdd, args[1], args[0])
		return []ir.ValueID{v}, err
	})
	require.NoError(t, err)

	sel, err := rb.Const(types.W1, 1)
	require.NoError(t, err)
	constBranch := func(v uint64) builder.BodyFunc {
		return func(body *builder.RegionBuilder, _ []ir.ValueID) ([]ir.ValueID, error) {
			c, err := body.Const(types.W1, v)
			return []ir.ValueID{c}, err
		}
	}
	picked, err := rb.Switch(sel, nil, []types.Type{i1}, []builder.BodyFunc{constBranch(0)}, constBranch(1))
	require.NoError(t, err)

	grown, err := rb.While([]ir.ValueID{angle},
		func(cond *builder.RegionBuilder, state []ir.ValueID) (ir.ValueID, error) {
			one, err := cond.FloatConst(types.Float64, 1)
			if err != nil {
				return 0, err
			}
			return cond.Float(ir.FloatLt, state[0], one)
		},
		func(body *builder.RegionBuilder, state []ir.ValueID) ([]ir.ValueID, error) {
			two, err := body.FloatConst(types.Float64, 2)
			if err != nil {
				return nil, err
			}
			v, err := body.Float(ir.FloatMul, state[0], two)
			return []ir.ValueID{v}, err
		})
	require.NoError(t, err)

	require.NoError(t, fb.Return(picked[0], sum[0], grown[0]))
	require.NoError(t, mb.SetEntrypoint(fb.ID()))
	m, err := mb.Build()
	require.NoError(t, err)
	return m
}

func TestBinaryRoundTrip(t *testing.T) {
	m := sample(t)
	data, err := EncodeBinary(m)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, Magic[:]))

	got, err := DecodeBinary(data)
	require.NoError(t, err)
	assert.True(t, ir.Equal(m, got), "binary round trip changed the module")
	assert.NoError(t, validate.Check(got))
}

func TestTextRoundTrip(t *testing.T) {
	m := sample(t)
	data, err := EncodeText(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), "op: qubit.gate")
	assert.Contains(t, string(data), "3q2+7w==") // 0xdeadbeef

	got, err := DecodeText(data)
	require.NoError(t, err)
	assert.True(t, ir.Equal(m, got), "text round trip changed the module")
}

func TestEncodingsAgree(t *testing.T) {
	m := sample(t)
	bin, err := EncodeBinary(m)
	require.NoError(t, err)
	txt, err := EncodeText(m)
	require.NoError(t, err)
	fromBin, err := DecodeBinary(bin)
	require.NoError(t, err)
	fromTxt, err := DecodeText(txt)
	require.NoError(t, err)
	assert.True(t, ir.Equal(fromBin, fromTxt))
}

// oddFloats returns constants whose bit patterns a naive text encoding loses.
func oddFloats() []float64 {
	return []float64{
		math.Copysign(0, -1),
		math.Float64frombits(0x7ff8000000000123), // NaN с нестандартной мантиссой
		math.NaN(),
		math.Inf(1),
		math.Inf(-1),
		1,
		5e-324,
		1e300,
	}
}

func floatModule(t *testing.T) *ir.Module {
	t.Helper()
	mb := builder.NewModule()
	fb, err := mb.Define("consts", nil, nil)
	require.NoError(t, err)
	rb := fb.Body()
	for _, v := range oddFloats() {
		_, err := rb.FloatConst(types.Float64, v)
		require.NoError(t, err)
	}
	_, err = rb.Append(ir.FloatArrayOp{Kind: ir.FloatArrayConst, Precision: types.Float64, Values: oddFloats()},
		nil, types.FloatArray(types.Float64))
	require.NoError(t, err)
	require.NoError(t, fb.Return())
	m, err := mb.Build()
	require.NoError(t, err)
	return m
}

func TestFloatBitsSurviveText(t *testing.T) {
	m := floatModule(t)
	txt, err := EncodeText(m)
	require.NoError(t, err)
	assert.Contains(t, string(txt), "-0.0")
	assert.Contains(t, string(txt), "!bits 0x7ff8000000000123")

	fromTxt, err := DecodeText(txt)
	require.NoError(t, err)
	assert.True(t, ir.Equal(m, fromTxt), "text round trip changed float constants:\n%s", txt)

	neg := fromTxt.Functions[0].Body.Ops[0].Instr.(ir.FloatOp).Value
	assert.True(t, math.Signbit(neg), "negative zero decoded as %v", neg)

	bin, err := EncodeBinary(m)
	require.NoError(t, err)
	fromBin, err := DecodeBinary(bin)
	require.NoError(t, err)
	assert.True(t, ir.Equal(fromBin, fromTxt), "encodings disagree on float constants")
}

func TestDecodeTextFloatForms(t *testing.T) {
	tests := []struct {
		in   string
		bits uint64
	}{
		{"0.5", math.Float64bits(0.5)},
		{"2", math.Float64bits(2)},
		{"-0", math.Float64bits(math.Copysign(0, -1))},
		{".inf", math.Float64bits(math.Inf(1))},
		{"-.Inf", math.Float64bits(math.Inf(-1))},
		{".nan", math.Float64bits(math.NaN())},
		{"!bits 0x7ff0000000000001", 0x7ff0000000000001},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			doc := "version: 1\nentrypoint: 0\nstrings: [f]\nfunctions:\n  - name: 0\n    values:\n      - type: float64\n" +
				"    body:\n      ops:\n        - op: float.const\n          precision: 64\n          float: " + tt.in + "\n          outputs: [0]\n"
			m, err := DecodeText([]byte(doc))
			require.NoError(t, err)
			got := m.Functions[0].Body.Ops[0].Instr.(ir.FloatOp).Value
			assert.Equal(t, tt.bits, math.Float64bits(got))
		})
	}

	_, err := DecodeText([]byte("version: 1\nentrypoint: 0\nstrings: [f]\nfunctions:\n  - name: 0\n    body:\n      ops:\n        - op: float.const\n          float: pi\n"))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	_, err := DecodeBinary([]byte("NOPE\x80"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = DecodeBinary([]byte("JE"))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeRejectsUnsupportedVersion(t *testing.T) {
	m := sample(t).WithEntrypoint(0)
	m.Version = ir.MakeVersion(3, 0)
	data, err := EncodeBinary(m)
	require.NoError(t, err)

	_, err = DecodeBinary(data)
	var de *diag.Error
	require.True(t, errors.As(err, &de), "want *diag.Error, got %v", err)
	assert.Equal(t, diag.CompatVersion, de.Code)
	assert.Equal(t, diag.KindCompatibility, de.Kind())
}

func TestDecodeTextErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown op", "version: 1\nentrypoint: 0\nstrings: [f]\nfunctions:\n  - name: 0\n    body:\n      ops:\n        - op: int.frobnicate\n"},
		{"bad category", "version: 1\nentrypoint: 0\nstrings: [f]\nfunctions:\n  - name: 0\n    body:\n      ops:\n        - op: quantum.x\n"},
		{"bad type", "version: 1\nentrypoint: 0\nstrings: [f]\nfunctions:\n  - name: 0\n    values:\n      - type: int7\n"},
		{"unknown field", "version: 1\nentrypoint: 0\nstrings: []\nfunctions: []\ncolour: blue\n"},
		{"const without value", "version: 1\nentrypoint: 0\nstrings: [f]\nfunctions:\n  - name: 0\n    body:\n      ops:\n        - op: int.const\n          width: 8\n"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeText([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestDecodeTextMinimal(t *testing.T) {
	doc := `version: 1
entrypoint: 0
strings: [main]
functions:
  - name: 0
    values:
      - type: qubit
      - type: int1
    body:
      targets: [1]
      ops:
        - op: qubit.alloc
          outputs: [0]
        - op: qubit.measure
          inputs: [0]
          outputs: [1]
`
	m, err := DecodeText([]byte(doc))
	require.NoError(t, err)
	require.Len(t, m.Functions, 1)
	assert.Equal(t, "main", m.FuncName(0))
	assert.NoError(t, validate.Check(m))
}

func TestFormatForPath(t *testing.T) {
	tests := map[string]Format{
		"a/b/prog.jeff":      Binary,
		"prog.jeff.yaml":     Text,
		"PROG.JEFF.YML":      Text,
		"/tmp/x/y.jeff.yaml": Text,
	}
	for path, want := range tests {
		got, err := FormatForPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
	_, err := FormatForPath("prog.yaml")
	assert.Error(t, err)
	assert.False(t, IsModulePath("notes.txt"))
}
