package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"gramc/internal/diag"
)

// Pretty writes items for a human reader:
//
//	<path>:<line>:<col>: <SEVERITY>: <first message line>
//	  <further message lines>
//	  12 | source line
//	     |    ^
//
// Source context is read from disk and skipped when the file is unreadable.
func Pretty(w io.Writer, items []diag.Diagnostic, opts PrettyOpts) error {
	sevColors := map[diag.Severity]*color.Color{
		diag.SevInfo:    color.New(color.FgCyan, color.Bold),
		diag.SevWarning: color.New(color.FgYellow, color.Bold),
		diag.SevError:   color.New(color.FgRed, color.Bold),
	}
	locColor := color.New(color.Bold)
	gutterColor := color.New(color.FgBlue)
	caretColor := color.New(color.FgGreen, color.Bold)
	for _, c := range []*color.Color{locColor, gutterColor, caretColor, sevColors[diag.SevInfo], sevColors[diag.SevWarning], sevColors[diag.SevError]} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	for _, d := range items {
		lines := strings.Split(d.Message, "\n")
		loc := fmt.Sprintf("%s:%d:%d:", formatPath(d.File, opts.PathMode, opts.BaseDir), d.Line, max(d.Column, 1))
		if _, err := fmt.Fprintf(w, "%s %s %s\n", locColor.Sprint(loc), sevColors[d.Severity].Sprint(d.Severity.String()+":"), strings.TrimSpace(lines[0])); err != nil {
			return err
		}
		for _, extra := range lines[1:] {
			if strings.TrimSpace(extra) == "" {
				continue
			}
			if _, err := fmt.Fprintf(w, "  %s\n", strings.TrimSpace(extra)); err != nil {
				return err
			}
		}
		if opts.Context < 0 {
			continue
		}
		ctx, err := readContext(d.File, d.Line, int(opts.Context))
		if err != nil || len(ctx) == 0 {
			continue
		}
		gutter := len(fmt.Sprint(ctx[len(ctx)-1].number))
		for _, sl := range ctx {
			num := fmt.Sprintf("%*d |", gutter, sl.number)
			if _, err := fmt.Fprintf(w, "  %s %s\n", gutterColor.Sprint(num), truncate(sl.text, opts.Width)); err != nil {
				return err
			}
			if sl.number == d.Line && d.Column > 0 {
				pad := strings.Repeat(" ", gutter) + " |"
				if _, err := fmt.Fprintf(w, "  %s %s%s\n", gutterColor.Sprint(pad), caretPadding(sl.text, d.Column), caretColor.Sprint("^")); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Summary renders "N error(s), M warning(s)".
func Summary(items []diag.Diagnostic) string {
	var errs, warns int
	for _, d := range items {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
	}
	return fmt.Sprintf("%d %s, %d %s", errs, plural(errs, "error"), warns, plural(warns, "warning"))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
