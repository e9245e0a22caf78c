package dialect

import (
	"regexp"
	"strconv"
	"strings"

	"gramc/internal/diag"
)

var (
	jtbMessage = regexp.MustCompile(`\((\d+),(\d+)\):\s+(warning|info|soft error|unexpected program error):\s+(.*)`)
	jtbVersion = regexp.MustCompile(`(?i)\bJTB\b.*?\bversion\s+(\d[\w.\-]*)`)
)

// JTB parses the output of the token/tree builder. Every message is a single
// line of the form "file (line,col):  kind:  text".
type JTB struct{}

func (JTB) Name() string { return "jtb" }

func (JTB) Version(text string) (string, bool) {
	if m := jtbVersion.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	return "", false
}

func (JTB) Parse(text string, _ bool) ([]Message, int) {
	var msgs []Message
	consumed := 0
	for _, ln := range splitLines(text) {
		consumed = ln.end
		m := jtbMessage.FindStringSubmatchIndex(ln.text)
		if m == nil {
			continue
		}
		lineNo, err1 := strconv.Atoi(ln.text[m[2]:m[3]])
		col, err2 := strconv.Atoi(ln.text[m[4]:m[5]])
		if err1 != nil || err2 != nil {
			continue
		}
		msgs = append(msgs, Message{
			Severity: jtbSeverity(ln.text[m[6]:m[7]]),
			Text:     strings.TrimSpace(ln.text[m[8]:m[9]]),
			Span:     span(ln.start, ln.end),
			Locations: []Location{{
				Line:   lineNo,
				Column: col,
				Span:   span(ln.start+m[0], ln.start+m[5]+1),
			}},
		})
	}
	return msgs, consumed
}

func jtbSeverity(kind string) diag.Severity {
	switch kind {
	case "info":
		return diag.SevInfo
	case "warning":
		return diag.SevWarning
	default:
		return diag.SevError
	}
}
