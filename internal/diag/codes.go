package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Структурные ошибки
	StructInfo              Code = 1000
	StructCycle             Code = 1001
	StructUseBeforeDef      Code = 1002
	StructDoubleDef         Code = 1003
	StructLinearDoubleDef   Code = 1004
	StructLinearUnconsumed  Code = 1005
	StructLinearReuse       Code = 1006
	StructSignatureMismatch Code = 1007
	StructArityMismatch     Code = 1008
	StructTypeMismatch      Code = 1009
	StructValueOutOfBounds  Code = 1010
	StructFuncOutOfBounds   Code = 1011
	StructStringOutOfBounds Code = 1012
	StructDuplicateName     Code = 1013
	StructEntrypoint        Code = 1014
	StructBadType           Code = 1015
	StructBadInstruction    Code = 1016
	StructBranchMismatch    Code = 1017
	StructEmptySwitch       Code = 1018
	StructCrossRegion       Code = 1019
	StructDeclarationBody   Code = 1020
	StructConditionConsumes Code = 1021
	StructLinearUnproduced  Code = 1022

	// Предусловия (не проверяются статически, только подсказки)
	PreInfo          Code = 2000
	PreZeroStep      Code = 2001
	PreSelectorRange Code = 2002
	PreGatePowerZero Code = 2003

	// Совместимость
	CompatInfo    Code = 3000
	CompatVersion Code = 3001
)

var codeDescription = map[Code]string{
	UnknownCode:             "Unknown error",
	StructInfo:              "Structural information",
	StructCycle:             "Dependency cycle in region",
	StructUseBeforeDef:      "Value used before definition",
	StructDoubleDef:         "Value defined more than once",
	StructLinearDoubleDef:   "Linear value produced more than once",
	StructLinearUnconsumed:  "Linear value never consumed",
	StructLinearReuse:       "Linear value consumed more than once",
	StructSignatureMismatch: "Region signature mismatch",
	StructArityMismatch:     "Operation arity mismatch",
	StructTypeMismatch:      "Operand type mismatch",
	StructValueOutOfBounds:  "Value index out of bounds",
	StructFuncOutOfBounds:   "Function index out of bounds",
	StructStringOutOfBounds: "String index out of bounds",
	StructDuplicateName:     "Duplicate function name",
	StructEntrypoint:        "Invalid entrypoint",
	StructBadType:           "Malformed type",
	StructBadInstruction:    "Malformed instruction",
	StructBranchMismatch:    "Switch branches disagree",
	StructEmptySwitch:       "Switch without regions",
	StructCrossRegion:       "Value crosses a region boundary",
	StructDeclarationBody:   "Declaration carries a body",
	StructConditionConsumes: "Loop condition consumes linear state",
	StructLinearUnproduced:  "Linear value never produced",
	PreInfo:                 "Precondition information",
	PreZeroStep:             "For loop with zero step",
	PreSelectorRange:        "Switch selector outside branches without default",
	PreGatePowerZero:        "Gate applied zero times",
	CompatInfo:              "Compatibility information",
	CompatVersion:           "Unsupported format version",
}

// Kind is the top-level error taxonomy.
type Kind uint8

const (
	KindStructural Kind = iota
	KindPrecondition
	KindCompatibility
)

func (k Kind) String() string {
	switch k {
	case KindStructural:
		return "structural"
	case KindPrecondition:
		return "precondition"
	case KindCompatibility:
		return "compatibility"
	}
	return "unknown"
}

// Kind classifies the code by its numeric range.
func (c Code) Kind() Kind {
	switch ic := int(c); {
	case ic >= 2000 && ic < 3000:
		return KindPrecondition
	case ic >= 3000 && ic < 4000:
		return KindCompatibility
	}
	return KindStructural
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("STR%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("PRE%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("CMP%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
