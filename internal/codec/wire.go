package codec

// Wire schema shared by both encodings. The binary encoding writes structs
// as msgpack arrays, so field order is part of the format: append new
// fields at the end only.

type wireModule struct {
	Version     uint32         `msgpack:"version" yaml:"version"`
	Tool        string         `msgpack:"tool" yaml:"tool,omitempty"`
	ToolVersion string         `msgpack:"toolVersion" yaml:"toolVersion,omitempty"`
	Entrypoint  uint32         `msgpack:"entrypoint" yaml:"entrypoint"`
	Strings     []string       `msgpack:"strings" yaml:"strings"`
	Functions   []wireFunction `msgpack:"functions" yaml:"functions"`
	Meta        []wireMeta     `msgpack:"meta" yaml:"meta,omitempty"`
}

type wireMeta struct {
	Name  uint32 `msgpack:"name" yaml:"name"`
	Value Blob   `msgpack:"value" yaml:"value"`
}

type wireFunction struct {
	Name        uint32      `msgpack:"name" yaml:"name"`
	Declaration bool        `msgpack:"declaration" yaml:"declaration,omitempty"`
	Inputs      []string    `msgpack:"inputs" yaml:"inputs,omitempty"`
	Outputs     []string    `msgpack:"outputs" yaml:"outputs,omitempty"`
	Values      []wireValue `msgpack:"values" yaml:"values,omitempty"`
	Body        *wireRegion `msgpack:"body" yaml:"body,omitempty"`
	Meta        []wireMeta  `msgpack:"meta" yaml:"meta,omitempty"`
}

type wireValue struct {
	Type string     `msgpack:"type" yaml:"type"`
	Meta []wireMeta `msgpack:"meta" yaml:"meta,omitempty"`
}

type wireRegion struct {
	Sources []uint32   `msgpack:"sources" yaml:"sources,flow,omitempty"`
	Targets []uint32   `msgpack:"targets" yaml:"targets,flow,omitempty"`
	Ops     []wireOp   `msgpack:"ops" yaml:"ops,omitempty"`
	Meta    []wireMeta `msgpack:"meta" yaml:"meta,omitempty"`
}

type wireOp struct {
	Instr   wireInstr  `msgpack:"instr" yaml:",inline"`
	Inputs  []uint32   `msgpack:"inputs" yaml:"inputs,flow,omitempty"`
	Outputs []uint32   `msgpack:"outputs" yaml:"outputs,flow,omitempty"`
	Meta    []wireMeta `msgpack:"meta" yaml:"meta,omitempty"`
}

// wireInstr is a flattened instruction. Op is the qualified name
// ("qubit.gate", "int.add", "scf.for"); the remaining fields are used
// depending on it.
type wireInstr struct {
	Op        string       `msgpack:"op" yaml:"op"`
	Width     uint8        `msgpack:"width" yaml:"width,omitempty"`
	Precision uint8        `msgpack:"precision" yaml:"precision,omitempty"`
	Int       *uint64      `msgpack:"int" yaml:"int,omitempty"`
	Ints      []uint64     `msgpack:"ints" yaml:"ints,flow,omitempty"`
	Float     *Float       `msgpack:"float" yaml:"float,omitempty"`
	Floats    []Float      `msgpack:"floats" yaml:"floats,flow,omitempty"`
	Gate      *wireGate    `msgpack:"gate" yaml:"gate,omitempty"`
	Callee    *uint32      `msgpack:"callee" yaml:"callee,omitempty"`
	Branches  []wireRegion `msgpack:"branches" yaml:"branches,omitempty"`
	Default   *wireRegion  `msgpack:"default" yaml:"default,omitempty"`
	Body      *wireRegion  `msgpack:"body" yaml:"body,omitempty"`
	Cond      *wireRegion  `msgpack:"cond" yaml:"cond,omitempty"`
}

type wireGate struct {
	Kind      string `msgpack:"kind" yaml:"kind"`
	WellKnown string `msgpack:"wellKnown" yaml:"wellKnown,omitempty"`
	Pauli     string `msgpack:"pauli" yaml:"pauli,omitempty"`
	Name      uint32 `msgpack:"name" yaml:"name,omitempty"`
	Qubits    uint8  `msgpack:"qubits" yaml:"qubits,omitempty"`
	Params    uint8  `msgpack:"params" yaml:"params,omitempty"`
	Controls  uint8  `msgpack:"controls" yaml:"controls,omitempty"`
	Adjoint   bool   `msgpack:"adjoint" yaml:"adjoint,omitempty"`
	Power     uint8  `msgpack:"power" yaml:"power"`
}
