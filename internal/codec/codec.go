// Package codec moves modules to and from bytes. The compact binary
// encoding is msgpack with array-encoded structs behind a four byte magic;
// the development text encoding is YAML over the same wire schema, so both
// decode to structurally identical trees.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"jeff/internal/ir"
)

// Format selects an encoding.
type Format uint8

const (
	Binary Format = iota
	Text
)

func (f Format) String() string {
	if f == Text {
		return "text"
	}
	return "binary"
}

// Magic prefixes every binary-encoded module.
var Magic = [4]byte{'J', 'E', 'F', 'F'}

// File extensions recognised by FormatForPath.
const (
	ExtBinary  = ".jeff"
	ExtText    = ".jeff.yaml"
	ExtTextYML = ".jeff.yml"
)

// FormatForPath picks the encoding from a file name.
func FormatForPath(path string) (Format, error) {
	base := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(base, ExtText), strings.HasSuffix(base, ExtTextYML):
		return Text, nil
	case strings.HasSuffix(base, ExtBinary):
		return Binary, nil
	}
	return 0, fmt.Errorf("codec: cannot infer encoding of %q (want %s, %s or %s)", path, ExtBinary, ExtText, ExtTextYML)
}

// IsModulePath reports whether path has a recognised extension.
func IsModulePath(path string) bool {
	_, err := FormatForPath(path)
	return err == nil
}

// Encode writes m in format f.
func Encode(w io.Writer, m *ir.Module, f Format) error {
	wm, err := toWire(m)
	if err != nil {
		return fmt.Errorf("codec: encode: %w", err)
	}
	if f == Text {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(wm); err != nil {
			return fmt.Errorf("codec: encode text: %w", err)
		}
		return enc.Close()
	}
	if _, err := w.Write(Magic[:]); err != nil {
		return fmt.Errorf("codec: encode binary: %w", err)
	}
	enc := msgpack.NewEncoder(w)
	enc.UseCompactInts(true)
	enc.UseArrayEncodedStructs(true)
	if err := enc.Encode(wm); err != nil {
		return fmt.Errorf("codec: encode binary: %w", err)
	}
	return nil
}

// Decode reads a module in format f. An unsupported version yields a
// *diag.Error with a compatibility code; other failures wrap ErrMalformed
// or the underlying I/O error. Decode does not validate the module.
func Decode(r io.Reader, f Format) (*ir.Module, error) {
	var wm wireModule
	if f == Text {
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&wm); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("codec: %w: empty document", ErrMalformed)
			}
			return nil, fmt.Errorf("codec: %w: %v", ErrMalformed, err)
		}
	} else {
		var magic [4]byte
		if _, err := io.ReadFull(r, magic[:]); err != nil {
			return nil, fmt.Errorf("codec: %w: short header: %v", ErrMalformed, err)
		}
		if magic != Magic {
			return nil, fmt.Errorf("codec: %w: bad magic %q", ErrMalformed, magic[:])
		}
		if err := msgpack.NewDecoder(r).Decode(&wm); err != nil {
			return nil, fmt.Errorf("codec: %w: %v", ErrMalformed, err)
		}
	}
	m, err := fromWire(&wm)
	if err != nil {
		return nil, fmt.Errorf("codec: %w", err)
	}
	return m, nil
}

// EncodeBinary returns the binary encoding of m.
func EncodeBinary(m *ir.Module) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, m, Binary); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeBinary decodes a binary-encoded module.
func DecodeBinary(data []byte) (*ir.Module, error) {
	return Decode(bytes.NewReader(data), Binary)
}

// EncodeText returns the text encoding of m.
func EncodeText(m *ir.Module) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, m, Text); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeText decodes a text-encoded module.
func DecodeText(data []byte) (*ir.Module, error) {
	return Decode(bytes.NewReader(data), Text)
}
