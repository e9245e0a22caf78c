package dialect

import (
	"regexp"
	"strconv"
	"strings"

	"gramc/internal/diag"
)

var (
	javaccStart    = regexp.MustCompile(`^(Error:|Warning:|Error parsing input)`)
	javaccContains = regexp.MustCompile(`Lexical error|Encountered[: ]`)
	javaccLocation = regexp.MustCompile(`[Ll]ine (\d+), [Cc]olumn (\d+)`)
	javaccSummary  = regexp.MustCompile(`(?i)encountered\s+\d+\s+errors?`)
	javaccVersion  = regexp.MustCompile(`(?i)\bversion\s+(\d[\w.\-]*)`)
)

const (
	choiceConflictPhrase = "Choice conflict involving two expansions"
	obsoletePhrase       = "is obsolete"
)

// JavaCC parses the output of the parser generator and of the tree-builder
// preprocessor, which share one message style.
type JavaCC struct{}

func (JavaCC) Name() string { return "javacc" }

func (JavaCC) Version(text string) (string, bool) {
	for _, ln := range splitLines(text) {
		if !strings.Contains(ln.text, "Java Compiler Compiler") && !strings.Contains(ln.text, "JJTree") {
			continue
		}
		if m := javaccVersion.FindStringSubmatch(ln.text); m != nil {
			return m[1], true
		}
	}
	return "", false
}

func (JavaCC) Parse(text string, final bool) ([]Message, int) {
	lines := splitLines(text)
	var msgs []Message
	consumed := 0
	for i := 0; i < len(lines); i++ {
		ln := lines[i]
		prefix, ok := javaccMatch(ln.text)
		if !ok || javaccSummary.MatchString(ln.text) {
			consumed = ln.end
			continue
		}
		sev := diag.SevError
		if strings.Contains(prefix, "arning") {
			sev = diag.SevWarning
		}
		msg := Message{
			Severity:  sev,
			Text:      ln.text,
			Span:      span(ln.start, ln.end),
			Locations: locations(ln),
		}
		if strings.Contains(ln.text, obsoletePhrase) {
			msg.Flags |= FlagObsoleteFile
		}
		if len(msg.Locations) == 0 && isChoiceConflict(ln.text, prefix) {
			if i+2 >= len(lines) && !final {
				// Wait for the two continuation lines.
				return msgs, consumed
			}
			msg.Flags |= FlagLookahead
			if i+1 < len(lines) {
				msg.Locations = locations(lines[i+1])
			}
			last := i
			for j := i + 1; j <= i+2 && j < len(lines); j++ {
				msg.Text += "\n" + lines[j].text
				last = j
			}
			msg.Span = span(ln.start, lines[last].end)
			i = last
		}
		msgs = append(msgs, msg)
		consumed = lines[i].end
	}
	return msgs, consumed
}

// javaccMatch reports whether line opens a message and returns the text that
// matched, which decides the severity.
func javaccMatch(text string) (string, bool) {
	if m := javaccStart.FindString(text); m != "" {
		return m, true
	}
	if m := javaccContains.FindString(text); m != "" {
		return m, true
	}
	return "", false
}

func isChoiceConflict(text, prefix string) bool {
	rest := strings.TrimSpace(strings.TrimPrefix(text, prefix))
	return strings.HasPrefix(rest, choiceConflictPhrase)
}

func locations(ln line) []Location {
	idx := javaccLocation.FindAllStringSubmatchIndex(ln.text, -1)
	if len(idx) == 0 {
		return nil
	}
	out := make([]Location, 0, len(idx))
	for _, m := range idx {
		lineNo, err1 := strconv.Atoi(ln.text[m[2]:m[3]])
		col, err2 := strconv.Atoi(ln.text[m[4]:m[5]])
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, Location{
			Line:   lineNo,
			Column: col,
			Span:   span(ln.start+m[0], ln.start+m[1]),
		})
	}
	return out
}
