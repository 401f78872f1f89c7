package ir

import (
	"strings"

	"jeff/internal/strtab"
)

type GateKind uint8

const (
	GateWellKnown GateKind = iota
	GatePPR
	GateCustom
)

var gateKindNames = []string{"wellKnown", "ppr", "custom"}

func (k GateKind) String() string { return nameOf(gateKindNames, k) }

func ParseGateKind(s string) (GateKind, bool) { return lookupName[GateKind](gateKindNames, s) }

// WellKnownGate enumerates the shared gate set with fixed arity.
type WellKnownGate uint8

const (
	GPhase WellKnownGate = iota
	GateI
	GateX
	GateY
	GateZ
	GateS
	GateT
	GateR1
	GateRx
	GateRy
	GateRz
	GateH
	GateU
	GateSwap
)

var wellKnownNames = []string{"gphase", "i", "x", "y", "z", "s", "t", "r1", "rx", "ry", "rz", "h", "u", "swap"}

func (g WellKnownGate) String() string { return nameOf(wellKnownNames, g) }

func ParseWellKnownGate(s string) (WellKnownGate, bool) {
	return lookupName[WellKnownGate](wellKnownNames, s)
}

// Valid reports whether g is a member of the table.
func (g WellKnownGate) Valid() bool { return int(g) < len(wellKnownNames) }

// NumQubits is the number of target qubits of the gate.
func (g WellKnownGate) NumQubits() int {
	switch g {
	case GPhase:
		return 0
	case GateSwap:
		return 2
	}
	return 1
}

// NumParams is the number of float parameters of the gate.
func (g WellKnownGate) NumParams() int {
	switch g {
	case GPhase, GateR1, GateRx, GateRy, GateRz:
		return 1
	case GateU:
		return 3
	}
	return 0
}

type Pauli uint8

const (
	PauliI Pauli = iota
	PauliX
	PauliY
	PauliZ
)

var pauliNames = []string{"I", "X", "Y", "Z"}

func (p Pauli) String() string { return nameOf(pauliNames, p) }

// FormatPauliString renders a Pauli string as "XIZ".
func FormatPauliString(ps []Pauli) string {
	var sb strings.Builder
	for _, p := range ps {
		sb.WriteString(p.String())
	}
	return sb.String()
}

// ParsePauliString is the inverse of FormatPauliString.
func ParsePauliString(s string) ([]Pauli, bool) {
	if s == "" {
		return nil, true
	}
	out := make([]Pauli, 0, len(s))
	for _, r := range s {
		p, ok := lookupName[Pauli](pauliNames, string(r))
		if !ok {
			return nil, false
		}
		out = append(out, p)
	}
	return out, true
}

// Gate describes a unitary application. Controls, Adjoint and Power are
// modifiers orthogonal to the gate kind.
type Gate struct {
	Kind      GateKind
	WellKnown WellKnownGate
	Pauli     []Pauli
	Name      strtab.ID // custom gates
	NumQubits uint8     // custom gates
	NumParams uint8     // custom gates
	Controls  uint8
	Adjoint   bool
	Power     uint8
}

// TargetQubits is the number of target qubits, excluding controls.
func (g Gate) TargetQubits() int {
	switch g.Kind {
	case GateWellKnown:
		return g.WellKnown.NumQubits()
	case GatePPR:
		return len(g.Pauli)
	case GateCustom:
		return int(g.NumQubits)
	}
	return 0
}

// Params is the number of float parameters following the qubit inputs.
func (g Gate) Params() int {
	switch g.Kind {
	case GateWellKnown:
		return g.WellKnown.NumParams()
	case GatePPR:
		return 1
	case GateCustom:
		return int(g.NumParams)
	}
	return 0
}

// Qubits is the total number of qubit inputs (and outputs): targets first,
// then controls.
func (g Gate) Qubits() int {
	return g.TargetQubits() + int(g.Controls)
}

// WellKnownGateOp is a convenience constructor for an unmodified gate.
func WellKnownGateOp(g WellKnownGate) QubitOp {
	return QubitOp{Kind: QubitGate, Gate: Gate{Kind: GateWellKnown, WellKnown: g, Power: 1}}
}
