package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"jeff/internal/diag"
)

// ширина колонки с уровнем: "WARNING" самое длинное
var sevWidth = runewidth.StringWidth(diag.SevWarning.String())

type palette struct {
	err, warn, info, code, path, note, ok *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:  color.New(color.FgRed, color.Bold),
		warn: color.New(color.FgYellow, color.Bold),
		info: color.New(color.FgCyan),
		code: color.New(color.Faint),
		path: color.New(color.Bold),
		note: color.New(color.FgBlue),
		ok:   color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.path, p.note, p.ok} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует находки одного файла в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее). Для каждой находки:
//
//	<path>: <SEV> <CODE> <kind>: <Message>
//	    at <location>
//	    note: <msg> (<location>)
func Pretty(w io.Writer, r Report, opts PrettyOpts) {
	p := newPalette(opts.Color)
	path := p.path.Sprint(r.Path)
	if r.Err != nil {
		fmt.Fprintf(w, "%s: %s %s\n", path, p.err.Sprint(pad("ERROR")), clip(r.Err.Error(), opts.Width))
		return
	}
	if r.Bag == nil {
		return
	}
	for _, d := range r.Bag.Items() {
		head := fmt.Sprintf("%s %s: %s", d.Code.ID(), d.Kind(), d.Message)
		fmt.Fprintf(w, "%s: %s %s\n", path, p.severity(d.Severity).Sprint(pad(d.Severity.String())), clip(head, opts.Width))
		indent := strings.Repeat(" ", 4)
		fmt.Fprintf(w, "%s%s %s\n", indent, p.code.Sprint("at"), d.Loc)
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(w, "%s%s %s (%s)\n", indent, p.note.Sprint("note:"), n.Msg, n.Loc)
		}
	}
}

// Summary prints one status line per file and a closing total.
func Summary(w io.Writer, reports []Report, opts PrettyOpts) {
	p := newPalette(opts.Color)
	nameWidth := 0
	for _, r := range reports {
		nameWidth = max(nameWidth, runewidth.StringWidth(r.Path))
	}
	if opts.Width > 0 {
		nameWidth = min(nameWidth, max(opts.Width-24, 20))
	}

	invalid := 0
	for _, r := range reports {
		errs, warns := countBySeverity(r.Bag)
		var status string
		switch {
		case r.Err != nil:
			invalid++
			status = p.err.Sprint("error")
		case errs > 0:
			invalid++
			status = p.err.Sprintf("invalid (%d %s)", errs, plural(errs, "error"))
		case warns > 0:
			status = p.warn.Sprintf("ok (%d %s)", warns, plural(warns, "warning"))
		default:
			if opts.Quiet {
				continue
			}
			status = p.ok.Sprint("ok")
		}
		if r.Cached {
			status += p.code.Sprint(" [cached]")
		}
		name := runewidth.FillRight(runewidth.Truncate(r.Path, nameWidth, "..."), nameWidth)
		fmt.Fprintf(w, "%s  %s\n", name, status)
	}
	total := fmt.Sprintf("%d %s checked, %d invalid", len(reports), plural(len(reports), "file"), invalid)
	if invalid > 0 {
		fmt.Fprintln(w, p.err.Sprint(total))
	} else {
		fmt.Fprintln(w, p.ok.Sprint(total))
	}
}

func pad(s string) string {
	return runewidth.FillRight(s, sevWidth)
}

func clip(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
