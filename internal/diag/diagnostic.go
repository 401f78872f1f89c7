package diag

import (
	"fmt"
	"strings"
)

// Note attaches a secondary location to a finding.
type Note struct {
	Loc Location
	Msg string
}

// Error is a single validation finding. It satisfies the error interface so
// fail-fast APIs can return it directly.
type Error struct {
	Severity Severity
	Code     Code
	Message  string
	Loc      Location
	Notes    []Note
}

// Errorf builds an error-severity finding.
func Errorf(code Code, loc Location, format string, args ...any) *Error {
	return &Error{
		Severity: SevError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Loc:      loc,
	}
}

// Warnf builds a warning-severity finding.
func Warnf(code Code, loc Location, format string, args ...any) *Error {
	e := Errorf(code, loc, format, args...)
	e.Severity = SevWarning
	return e
}

// WithNote appends a secondary location.
func (e *Error) WithNote(loc Location, msg string) *Error {
	if e == nil {
		return nil
	}
	e.Notes = append(e.Notes, Note{Loc: loc, Msg: msg})
	return e
}

// Kind reports the taxonomy bucket of the finding.
func (e *Error) Kind() Kind {
	return e.Code.Kind()
}

func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s: %s (%s)", e.Code.ID(), e.Code.Kind(), e.Message, e.Loc)
	for _, n := range e.Notes {
		fmt.Fprintf(&sb, "; note: %s (%s)", n.Msg, n.Loc)
	}
	return sb.String()
}
