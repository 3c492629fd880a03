package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"phphint/internal/diag"
	"phphint/internal/source"
)

type palette struct {
	sev      map[diag.Severity]*color.Color
	code     *color.Color
	gutter   *color.Color
	caret    *color.Color
	note     *color.Color
	fix      *color.Color
	removed  *color.Color
	inserted *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		sev: map[diag.Severity]*color.Color{
			diag.SevInfo:               color.New(color.FgCyan, color.Bold),
			diag.SevCurrentLineWarning: color.New(color.FgMagenta, color.Bold),
			diag.SevWarning:            color.New(color.FgYellow, color.Bold),
			diag.SevError:              color.New(color.FgRed, color.Bold),
		},
		code:     color.New(color.Faint),
		gutter:   color.New(color.FgBlue),
		caret:    color.New(color.FgGreen, color.Bold),
		note:     color.New(color.FgCyan),
		fix:      color.New(color.FgGreen),
		removed:  color.New(color.FgRed),
		inserted: color.New(color.FgGreen),
	}
	all := []*color.Color{p.code, p.gutter, p.caret, p.note, p.fix, p.removed, p.inserted}
	for _, c := range p.sev {
		all = append(all, c)
	}
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	if c, ok := p.sev[s]; ok {
		return c
	}
	return p.code
}

// Pretty renders the diagnostics of bag for a terminal, in bag order (sort
// the bag first). Each diagnostic prints as
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed by the source lines around it with the primary span underlined,
// then its notes and fixes when enabled.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyOne(w, d, fs, opts, p)
	}
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	f := fs.Get(d.Primary.File)
	start, end := fs.Resolve(d.Primary)
	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
		formatPath(fs, f, opts.PathMode), start.Line, start.Col,
		p.severity(d.Severity).Sprint(d.Severity.String()),
		p.code.Sprint(d.Code.ID()),
		d.Message,
	)
	writeSnippet(w, f, start, end, opts, p)

	if opts.ShowNotes {
		for _, n := range d.Notes {
			nf := fs.Get(n.Span.File)
			pos := nf.Position(n.Span.Start)
			fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", p.note.Sprint("note:"), formatPath(fs, nf, opts.PathMode), pos.Line, pos.Col, n.Msg)
		}
	}
	if opts.ShowFixes && len(d.Fixes) > 0 {
		writeFixes(w, d.Fixes, fs, opts, p)
	}
}

// writeSnippet prints the first line of the span with a caret underline,
// and Context lines on either side.
func writeSnippet(w io.Writer, f *source.File, start, end source.LineCol, opts PrettyOpts, p palette) {
	if len(f.Content) == 0 {
		return
	}
	ctx := uint32(max(opts.Context, 0))
	first := uint32(1)
	if start.Line > ctx {
		first = start.Line - ctx
	}
	last := start.Line + ctx
	lastLine := uint32(len(f.LineIdx)) + 1
	last = min(last, lastLine)
	gutterWidth := len(strconv.FormatUint(uint64(last), 10))

	for ln := first; ln <= last; ln++ {
		text := f.GetLine(ln)
		if ln != start.Line && text == "" && ln == lastLine {
			continue
		}
		shown := clip(text, opts.Width)
		fmt.Fprintf(w, " %s %s %s\n", p.gutter.Sprint(padLeft(strconv.FormatUint(uint64(ln), 10), gutterWidth)), p.gutter.Sprint("|"), shown)
		if ln != start.Line {
			continue
		}
		endCol := uint32(len(text)) + 1
		if end.Line == start.Line {
			endCol = end.Col
		}
		fmt.Fprintf(w, " %s %s %s\n", strings.Repeat(" ", gutterWidth), p.gutter.Sprint("|"), p.caret.Sprint(underline(text, start.Col, endCol, opts.Width)))
	}
}

// underline returns the caret line for the 1-based byte columns [from, to)
// of text, aligned by display width. Tabs are kept so they expand the same.
func underline(text string, from, to uint32, width uint8) string {
	n := uint32(len(text))
	from = min(max(from, 1)-1, n)
	to = min(max(to, 1)-1, n)
	var b strings.Builder
	for _, r := range text[:from] {
		if r == '\t' {
			b.WriteByte('\t')
			continue
		}
		b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	marks := max(runewidth.StringWidth(text[from:max(to, from)]), 1)
	b.WriteByte('^')
	b.WriteString(strings.Repeat("~", marks-1))
	return clip(b.String(), width)
}

func clip(s string, width uint8) string {
	if width == 0 {
		return s
	}
	return runewidth.Truncate(s, int(width), "…")
}

func padLeft(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return strings.Repeat(" ", n-len(s)) + s
}

func writeFixes(w io.Writer, in []*diag.Fix, fs *source.FileSet, opts PrettyOpts, p palette) {
	fixes := make([]*diag.Fix, 0, len(in))
	for _, f := range in {
		if f != nil {
			fixes = append(fixes, f)
		}
	}
	sortFixes(fixes)
	for i, fx := range fixes {
		var attrs []string
		attrs = append(attrs, fx.Kind.String(), fx.Applicability.String())
		if fx.IsPreferred {
			attrs = append(attrs, "preferred")
		}
		if fx.ID != "" {
			attrs = append(attrs, "id="+fx.ID)
		}
		fmt.Fprintf(w, "  %s %s [%s]\n", p.fix.Sprintf("fix #%d:", i+1), fx.Title, strings.Join(attrs, ", "))
		for _, e := range fx.Edits {
			ef := fs.Get(e.Span.File)
			s, en := fs.Resolve(e.Span)
			fmt.Fprintf(w, "    edit %s:%d:%d-%d:%d apply=%q\n", formatPath(fs, ef, opts.PathMode), s.Line, s.Col, en.Line, en.Col, e.NewText)
			if !opts.ShowPreview {
				continue
			}
			preview, err := buildFixEditPreview(fs, e)
			if err != nil {
				continue
			}
			fmt.Fprintln(w, "    preview:")
			for _, l := range preview.before {
				fmt.Fprintf(w, "      %s\n", p.removed.Sprint("- "+l))
			}
			for _, l := range preview.after {
				fmt.Fprintf(w, "      %s\n", p.inserted.Sprint("+ "+l))
			}
		}
	}
}
