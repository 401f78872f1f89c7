package testkit

import (
	"context"
	"fmt"

	"jeff/internal/codec"
	"jeff/internal/diag"
	"jeff/internal/ir"
	"jeff/internal/validate"
)

// CheckRoundTrip runs a minimal set of codec invariants on a module:
// 1) both encodings decode back to a structurally equal module
// 2) re-encoding the decoded module reproduces the same bytes
// 3) the two encodings decode to equal modules
func CheckRoundTrip(m *ir.Module) error {
	if m == nil {
		return fmt.Errorf("nil module")
	}
	decoded := make([]*ir.Module, 0, 2)
	for _, f := range []codec.Format{codec.Binary, codec.Text} {
		first, err := encode(m, f)
		if err != nil {
			return fmt.Errorf("%s encode: %w", f, err)
		}
		back, err := decode(first, f)
		if err != nil {
			return fmt.Errorf("%s decode: %w", f, err)
		}
		if !ir.Equal(m, back) {
			return fmt.Errorf("%s round trip changed the module", f)
		}
		second, err := encode(back, f)
		if err != nil {
			return fmt.Errorf("%s re-encode: %w", f, err)
		}
		if string(first) != string(second) {
			return fmt.Errorf("%s encoding is not stable across a round trip", f)
		}
		decoded = append(decoded, back)
	}
	if !ir.Equal(decoded[0], decoded[1]) {
		return fmt.Errorf("binary and text encodings decode to different modules")
	}
	return nil
}

// CheckDeterministic validates m twice, once serially and once with
// parallel functions, and requires identical findings.
func CheckDeterministic(ctx context.Context, m *ir.Module, opts validate.Options) error {
	serial := opts
	serial.Jobs = 1
	parallel := opts
	parallel.Jobs = 4

	a := render(validate.Module(ctx, m, serial))
	b := render(validate.Module(ctx, m, parallel))
	if len(a) != len(b) {
		return fmt.Errorf("finding count differs: %d serial vs %d parallel", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			return fmt.Errorf("finding %d differs:\n  serial:   %s\n  parallel: %s", i, a[i], b[i])
		}
	}
	return nil
}

func render(bag *diag.Bag) []string {
	out := make([]string, 0, bag.Len())
	for _, d := range bag.Items() {
		out = append(out, fmt.Sprintf("%s %s", d.Severity, d.Error()))
	}
	return out
}

func encode(m *ir.Module, f codec.Format) ([]byte, error) {
	if f == codec.Text {
		return codec.EncodeText(m)
	}
	return codec.EncodeBinary(m)
}

func decode(data []byte, f codec.Format) (*ir.Module, error) {
	if f == codec.Text {
		return codec.DecodeText(data)
	}
	return codec.DecodeBinary(data)
}
