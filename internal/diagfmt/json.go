package diagfmt

import (
	"encoding/json"
	"io"
	"sort"

	"phphint/internal/diag"
	"phphint/internal/source"
)

// LocationJSON is a span in JSON output. Lines and columns are 1-based
// and only present with IncludePositions.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

type FixEditJSON struct {
	Location    LocationJSON `json:"location"`
	NewText     string       `json:"new_text"`
	OldText     string       `json:"old_text,omitempty"`
	BeforeLines []string     `json:"before_lines,omitempty"`
	AfterLines  []string     `json:"after_lines,omitempty"`
}

type FixJSON struct {
	ID            string        `json:"id,omitempty"`
	Title         string        `json:"title"`
	Kind          string        `json:"kind"`
	Applicability string        `json:"applicability"`
	IsPreferred   bool          `json:"is_preferred,omitempty"`
	Interactive   bool          `json:"interactive,omitempty"`
	Edits         []FixEditJSON `json:"edits,omitempty"`
}

// DiagnosticJSON is one finding.
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Rule     string       `json:"rule"`
	Priority int          `json:"priority"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
	Fixes    []FixJSON    `json:"fixes,omitempty"`
}

// DiagnosticsOutput is the root JSON document.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

func makeLocation(span source.Span, fs *source.FileSet, pathMode PathMode, includePositions bool) LocationJSON {
	f := fs.Get(span.File)
	path := formatPath(fs, f, pathMode)

	loc := LocationJSON{
		File:      path,
		StartByte: span.Start,
		EndByte:   span.End,
	}

	if includePositions {
		startPos, endPos := fs.Resolve(span)
		loc.StartLine = startPos.Line
		loc.StartCol = startPos.Col
		loc.EndLine = endPos.Line
		loc.EndCol = endPos.Col
	}

	return loc
}

// BuildDiagnosticsOutput assembles the JSON document without encoding it.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) (DiagnosticsOutput, error) {
	diagnostics := make([]DiagnosticJSON, 0, bag.Len())

	items := bag.Items()
	maxItems := len(items)
	if opts.Max > 0 && opts.Max < maxItems {
		maxItems = opts.Max
	}

	for i := range maxItems {
		d := items[i]

		diagJSON := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Rule:     d.Code.Key(),
			Priority: d.Priority,
			Message:  d.Message,
			Location: makeLocation(d.Primary, fs, opts.PathMode, opts.IncludePositions),
		}

		includeNotes := opts.IncludeNotes || d.Code == diag.IOInfo
		if includeNotes && len(d.Notes) > 0 {
			diagJSON.Notes = make([]NoteJSON, len(d.Notes))
			for j, note := range d.Notes {
				diagJSON.Notes[j] = NoteJSON{
					Message:  note.Msg,
					Location: makeLocation(note.Span, fs, opts.PathMode, opts.IncludePositions),
				}
			}
		}

		if opts.IncludeFixes && len(d.Fixes) > 0 {
			diagJSON.Fixes = buildFixes(d.Fixes, fs, opts)
		}

		diagnostics = append(diagnostics, diagJSON)
	}

	output := DiagnosticsOutput{
		Diagnostics: diagnostics,
		Count:       len(diagnostics),
	}

	return output, nil
}

func buildFixes(in []*diag.Fix, fs *source.FileSet, opts JSONOpts) []FixJSON {
	fixes := make([]*diag.Fix, 0, len(in))
	for _, f := range in {
		if f != nil {
			fixes = append(fixes, f)
		}
	}
	sortFixes(fixes)

	out := make([]FixJSON, 0, len(fixes))
	for _, fix := range fixes {
		fixJSON := FixJSON{
			ID:            fix.ID,
			Title:         fix.Title,
			Kind:          fix.Kind.String(),
			Applicability: fix.Applicability.String(),
			IsPreferred:   fix.IsPreferred,
			Interactive:   fix.Interactive,
		}
		if len(fix.Edits) > 0 {
			fixJSON.Edits = make([]FixEditJSON, len(fix.Edits))
			for k, edit := range fix.Edits {
				editJSON := FixEditJSON{
					Location: makeLocation(edit.Span, fs, opts.PathMode, opts.IncludePositions),
					NewText:  edit.NewText,
					OldText:  edit.OldText,
				}
				if opts.IncludePreviews {
					if preview, err := buildFixEditPreview(fs, edit); err == nil {
						editJSON.BeforeLines = append([]string(nil), preview.before...)
						editJSON.AfterLines = append([]string(nil), preview.after...)
					}
				}
				fixJSON.Edits[k] = editJSON
			}
		}
		out = append(out, fixJSON)
	}
	return out
}

// sortFixes orders preferred fixes first, then by applicability, kind,
// title and id.
func sortFixes(fixes []*diag.Fix) {
	sort.SliceStable(fixes, func(i, j int) bool {
		fi, fj := fixes[i], fixes[j]
		if fi.IsPreferred != fj.IsPreferred {
			return fi.IsPreferred && !fj.IsPreferred
		}
		if fi.Applicability != fj.Applicability {
			return fi.Applicability < fj.Applicability
		}
		if fi.Kind != fj.Kind {
			return fi.Kind < fj.Kind
		}
		if fi.Title != fj.Title {
			return fi.Title < fj.Title
		}
		return fi.ID < fj.ID
	})
}

// JSON writes the diagnostics as one indented JSON document.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	output, err := BuildDiagnosticsOutput(bag, fs, opts)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
