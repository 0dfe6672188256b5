package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"jmake/internal/diag"
	"jmake/internal/source"
)

type palette struct {
	err, warn, info, code, note, gutter, caret func(a ...any) string
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) func(a ...any) string {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		code:   mk(color.Bold),
		note:   mk(color.FgBlue),
		gutter: mk(color.FgBlue),
		caret:  mk(color.FgGreen, color.Bold),
	}
}

func (p palette) severity(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return p.err(sev.String())
	case diag.SevWarning:
		return p.warn(sev.String())
	default:
		return p.info(sev.String())
	}
}

// Pretty prints the bag in a human-readable form. Items are printed in bag
// order, so callers sort the bag first. Each diagnostic is
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed by the source line with a ^~~~ underline when a span is known.
// fs may be nil, in which case only path-level locations are printed.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	if bag == nil {
		return nil
	}
	p := newPalette(opts.Color)
	var b strings.Builder
	for _, d := range bag.Items() {
		loc := location(d.Path, d.Primary, d.HasSpan, fs, opts)
		if loc != "" {
			b.WriteString(loc)
			b.WriteString(": ")
		}
		fmt.Fprintf(&b, "%s %s: %s\n", p.severity(d.Severity), p.code(d.Code.ID()), d.Message)
		if d.HasSpan {
			writeSnippet(&b, fs, d.Primary, p)
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			hasSpan := n.Span.End > n.Span.Start
			b.WriteString("  ")
			b.WriteString(p.note("note:"))
			if nl := location(n.Path, n.Span, hasSpan, fs, opts); nl != "" {
				b.WriteString(" ")
				b.WriteString(nl)
				b.WriteString(":")
			}
			b.WriteString(" ")
			b.WriteString(n.Msg)
			b.WriteString("\n")
		}
	}
	if n := bag.Dropped(); n > 0 {
		fmt.Fprintf(&b, "... %d more diagnostics not shown (raise --max-diagnostics)\n", n)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func location(path string, span source.Span, hasSpan bool, fs *source.FileSet, opts PrettyOpts) string {
	if hasSpan && fs != nil {
		if f := fs.Get(span.File); f != nil {
			if path == "" {
				path = f.Path
			}
			start, _ := fs.Resolve(span)
			return fmt.Sprintf("%s:%d:%d", formatPath(path, opts.PathMode, opts.BaseDir), start.Line, start.Col)
		}
	}
	return formatPath(path, opts.PathMode, opts.BaseDir)
}

func writeSnippet(b *strings.Builder, fs *source.FileSet, span source.Span, p palette) {
	if fs == nil {
		return
	}
	f := fs.Get(span.File)
	if f == nil {
		return
	}
	start, end := fs.Resolve(span)
	line := f.GetLine(start.Line)
	if line == "" {
		return
	}
	startCol := min(int(start.Col)-1, len(line))
	endCol := len(line)
	if end.Line == start.Line {
		endCol = min(max(int(end.Col)-1, startCol), len(line))
	}

	num := fmt.Sprintf("%d", start.Line)
	pad := strings.Repeat(" ", len(num))
	fmt.Fprintf(b, " %s %s %s\n", p.gutter(num), p.gutter("|"), line)

	var lead strings.Builder
	for _, r := range line[:startCol] {
		if r == '\t' {
			lead.WriteByte('\t')
			continue
		}
		lead.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	width := max(runewidth.StringWidth(line[startCol:endCol]), 1)
	mark := "^" + strings.Repeat("~", width-1)
	fmt.Fprintf(b, " %s %s %s%s\n", pad, p.gutter("|"), lead.String(), p.caret(mark))
}
