package diagfmt

import (
	"encoding/json"
	"io"

	"jeff/internal/diag"
)

// LocationJSON представляет местоположение находки внутри модуля
type LocationJSON struct {
	Function *int   `json:"function,omitempty"`
	Name     string `json:"name,omitempty"`
	Region   string `json:"region,omitempty"`
	Op       *int   `json:"op,omitempty"`
	Value    *int   `json:"value,omitempty"`
	Text     string `json:"text"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON представляет находку в JSON формате
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Kind     string       `json:"kind"`
	Title    string       `json:"title"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// FileJSON is the verdict for one file.
type FileJSON struct {
	Path        string           `json:"path"`
	Valid       bool             `json:"valid"`
	Cached      bool             `json:"cached,omitempty"`
	Error       string           `json:"error,omitempty"`
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

// Output представляет корневую структуру JSON вывода
type Output struct {
	Files   []FileJSON `json:"files"`
	Checked int        `json:"checked"`
	Invalid int        `json:"invalid"`
}

func index(i int) *int {
	if i == diag.NoIndex {
		return nil
	}
	return &i
}

func makeLocation(loc diag.Location) LocationJSON {
	out := LocationJSON{
		Function: index(loc.Func),
		Name:     loc.FuncName,
		Op:       index(loc.Op),
		Value:    index(loc.Value),
		Text:     loc.String(),
	}
	if loc.InRegion {
		out.Region = loc.Path.String()
	}
	return out
}

// BuildFileOutput формирует JSON-представление одного файла без сериализации.
func BuildFileOutput(r Report, opts JSONOpts) FileJSON {
	out := FileJSON{
		Path:        r.Path,
		Valid:       r.Valid(),
		Cached:      r.Cached,
		Diagnostics: []DiagnosticJSON{},
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	if r.Bag == nil {
		return out
	}

	items := r.Bag.Items()
	maxItems := len(items)
	if opts.Max > 0 && opts.Max < maxItems {
		maxItems = opts.Max
	}
	for i := range maxItems {
		d := items[i]
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Kind:     d.Kind().String(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Location: makeLocation(d.Loc),
		}
		if opts.IncludeNotes && len(d.Notes) > 0 {
			dj.Notes = make([]NoteJSON, len(d.Notes))
			for j, n := range d.Notes {
				dj.Notes[j] = NoteJSON{Message: n.Msg, Location: makeLocation(n.Loc)}
			}
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	out.Count = len(out.Diagnostics)
	return out
}

// BuildOutput собирает вывод по всем файлам.
func BuildOutput(reports []Report, opts JSONOpts) Output {
	out := Output{Files: make([]FileJSON, 0, len(reports)), Checked: len(reports)}
	for _, r := range reports {
		f := BuildFileOutput(r, opts)
		if !f.Valid {
			out.Invalid++
		}
		out.Files = append(out.Files, f)
	}
	return out
}

// JSON форматирует вердикты в JSON с отступами.
func JSON(w io.Writer, reports []Report, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildOutput(reports, opts))
}
