package codec

import (
	"encoding/base64"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Blob is an opaque metadata payload. msgpack stores it as bin; the text
// encoding renders it as base64.
type Blob []byte

func (b Blob) MarshalYAML() (any, error) {
	return base64.StdEncoding.EncodeToString(b), nil
}

func (b *Blob) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return fmt.Errorf("line %d: metadata value is not base64: %w", n.Line, err)
	}
	*b = raw
	return nil
}
