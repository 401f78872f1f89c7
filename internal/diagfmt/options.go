package diagfmt

import "jeff/internal/diag"

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	ShowNotes bool
	Width     int // максимальная ширина строки, 0 - не ограничено
	// Quiet hides valid files without findings.
	Quiet bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	Max          int // обрезка вывода, не Bag
	IncludeNotes bool
}

// Report is what a renderer needs to know about one checked file.
type Report struct {
	Path   string
	Bag    *diag.Bag
	Err    error
	Cached bool
}

// Valid reports whether the file decoded and has no error findings.
func (r Report) Valid() bool {
	return r.Err == nil && (r.Bag == nil || !r.Bag.HasErrors())
}

func countBySeverity(bag *diag.Bag) (errs, warns int) {
	if bag == nil {
		return 0, 0
	}
	for _, d := range bag.Items() {
		switch {
		case d.Severity >= diag.SevError:
			errs++
		case d.Severity == diag.SevWarning:
			warns++
		}
	}
	return errs, warns
}
