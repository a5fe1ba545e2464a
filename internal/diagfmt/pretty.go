package diagfmt

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"

	"shimmer/internal/diag"
	"shimmer/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	noteColor    = color.New(color.Faint)
)

// Pretty renders diagnostics one per line:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed by indented notes when ShowNotes is set. It walks bag.Items() as
// stored; callers sort the bag first for deterministic output.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			formatLocation(fs, d.Primary, opts.PathMode),
			severityText(d.Severity, opts.Color),
			d.Code,
			d.Message)
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			line := fmt.Sprintf("  note: %s: %s", formatLocation(fs, n.Span, opts.PathMode), n.Msg)
			if opts.Color {
				line = noteColor.Sprint(line)
			}
			fmt.Fprintln(w, line)
		}
	}
}

func severityText(sev diag.Severity, colored bool) string {
	text := sev.String()
	if !colored {
		return text
	}
	switch sev {
	case diag.SevError:
		return errorColor.Sprint(text)
	case diag.SevWarning:
		return warningColor.Sprint(text)
	default:
		return infoColor.Sprint(text)
	}
}

func formatLocation(fs *source.FileSet, span source.Span, mode PathMode) string {
	if fs == nil || fs.Len() <= int(span.File) {
		return fmt.Sprintf("<unknown>:%d-%d", span.Start, span.End)
	}
	path := fs.Get(span.File).Path
	if mode == PathModeBasename {
		path = filepath.Base(path)
	}
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", path, start.Line, start.Col)
}
