package diagfmt

import (
	"bufio"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
)

// sourceLine is one line of a grammar file shown under a diagnostic.
type sourceLine struct {
	number int
	text   string
}

// readContext returns the lines line-context..line+context of path (1-based).
func readContext(path string, line, context int) ([]sourceLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	first := max(line-context, 1)
	last := line + context
	var out []sourceLine
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for n := 1; sc.Scan(); n++ {
		if n < first {
			continue
		}
		if n > last {
			break
		}
		out = append(out, sourceLine{number: n, text: strings.TrimRight(sc.Text(), "\r")})
	}
	return out, sc.Err()
}

// caretPadding is the blank prefix that puts a caret under column (1-based)
// of text, with tabs kept so the caret lines up in a terminal.
func caretPadding(text string, column int) string {
	if column <= 1 {
		return ""
	}
	var sb strings.Builder
	col := 1
	for _, r := range text {
		if col >= column {
			break
		}
		if r == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
		}
		col++
	}
	for ; col < column; col++ {
		sb.WriteByte(' ')
	}
	return sb.String()
}

func truncate(text string, width uint8) string {
	if width == 0 {
		return text
	}
	return runewidth.Truncate(text, int(width), "…")
}
