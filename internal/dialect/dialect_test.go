package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gramc/internal/diag"
)

func TestJavaCC_UndefinedToken(t *testing.T) {
	text := "Error: Line 61, Column 5: Undefined lexical token name \"HEX_LITERA\".\n"
	msgs, consumed := JavaCC{}.Parse(text, true)
	require.Len(t, msgs, 1)
	assert.Equal(t, len(text), consumed)
	m := msgs[0]
	assert.Equal(t, diag.SevError, m.Severity)
	require.Len(t, m.Locations, 1)
	assert.Equal(t, 61, m.Locations[0].Line)
	assert.Equal(t, 5, m.Locations[0].Column)
	assert.Equal(t, "Line 61, Column 5", text[m.Locations[0].Span.Start:m.Locations[0].Span.End])
}

func TestJavaCC_Severity(t *testing.T) {
	text := "Java Compiler Compiler Version 7.0.13 (Parser Generator)\n" +
		"(type \"javacc\" with no arguments for help)\n" +
		"Reading from file Expr.jj . . .\n" +
		"Warning: Line 4, Column 1: Non-ASCII characters used in regular expression.\n" +
		"Lexical error at line 9, column 12.  Encountered: \"#\" (35), after : \"\"\n" +
		"Error parsing input: org.javacc.parser.ParseException: Encountered \" \"(\" \"( \"\" at line 12, column 5.\n" +
		"Detected 2 errors and 1 warnings.\n"
	msgs, _ := JavaCC{}.Parse(text, true)
	require.Len(t, msgs, 3)
	assert.Equal(t, diag.SevWarning, msgs[0].Severity)
	assert.Equal(t, diag.SevError, msgs[1].Severity)
	assert.Equal(t, 9, msgs[1].Locations[0].Line)
	assert.Equal(t, diag.SevError, msgs[2].Severity)
	assert.Equal(t, 12, msgs[2].Locations[0].Line)

	v, ok := JavaCC{}.Version(text)
	require.True(t, ok)
	assert.Equal(t, "7.0.13", v)
}

func TestJavaCC_MultipleLocationsOnOneLine(t *testing.T) {
	text := "Warning: Choice conflict in (...)* construct at line 10, column 3 and line 12, column 7.\n"
	msgs, _ := JavaCC{}.Parse(text, true)
	require.Len(t, msgs, 1)
	require.Len(t, msgs[0].Locations, 2)
	assert.False(t, msgs[0].Has(FlagLookahead))
	assert.Equal(t, 12, msgs[0].Locations[1].Line)
}

const choiceConflict = "Warning: Choice conflict involving two expansions at\n" +
	"         line 95, column 3 and line 97, column 3 respectively.\n" +
	"         A common prefix is: \"(\" <IDENTIFIER>\n" +
	"         Consider using a lookahead of 3 for earlier expansion.\n"

func TestJavaCC_ChoiceConflictLookahead(t *testing.T) {
	msgs, consumed := JavaCC{}.Parse(choiceConflict, true)
	require.Len(t, msgs, 1)
	m := msgs[0]
	assert.True(t, m.Has(FlagLookahead))
	assert.Equal(t, diag.SevWarning, m.Severity)
	require.Len(t, m.Locations, 2)
	assert.Equal(t, 95, m.Locations[0].Line)
	assert.Equal(t, 97, m.Locations[1].Line)
	assert.Equal(t, 3, countLines(m.Text))
	assert.Contains(t, m.Text, "A common prefix is")
	assert.Equal(t, len(choiceConflict), consumed)
}

func TestJavaCC_LookaheadWaitsForMoreInput(t *testing.T) {
	partial := "Warning: Line 1, Column 1: first\nWarning: Choice conflict involving two expansions at\n"
	msgs, consumed := JavaCC{}.Parse(partial, false)
	require.Len(t, msgs, 1)
	assert.Equal(t, len("Warning: Line 1, Column 1: first\n"), consumed)

	msgs, consumed = JavaCC{}.Parse(partial, true)
	require.Len(t, msgs, 2)
	assert.Equal(t, len(partial), consumed)
	assert.Empty(t, msgs[1].Locations)
}

func TestJavaCC_SummaryAndObsolete(t *testing.T) {
	text := "Warning: Token.java: File is obsolete.  Please rename or delete this file so that a new one can be generated for you.\n" +
		"Encountered 2 errors.\n" +
		"Warning: Output directory \"gen\" does not exist. Creating the directory.\n"
	msgs, _ := JavaCC{}.Parse(text, true)
	require.Len(t, msgs, 2)
	assert.True(t, msgs[0].Has(FlagObsoleteFile))
	assert.Empty(t, msgs[1].Locations)
	assert.False(t, msgs[1].Has(FlagObsoleteFile))
}

func TestJTB_SoftError(t *testing.T) {
	text := "JTB version 1.4.11\nfoo.jtb (340,3):  soft error:  Empty BNF expansion\n"
	msgs, consumed := JTB{}.Parse(text, true)
	require.Len(t, msgs, 1)
	assert.Equal(t, len(text), consumed)
	m := msgs[0]
	assert.Equal(t, diag.SevError, m.Severity)
	assert.Equal(t, "Empty BNF expansion", m.Text)
	require.Len(t, m.Locations, 1)
	assert.Equal(t, 340, m.Locations[0].Line)
	assert.Equal(t, 3, m.Locations[0].Column)
	assert.Equal(t, "(340,3)", text[m.Locations[0].Span.Start:m.Locations[0].Span.End])

	v, ok := JTB{}.Version(text)
	require.True(t, ok)
	assert.Equal(t, "1.4.11", v)
}

func TestJTB_SeverityKeywords(t *testing.T) {
	text := "a.jtb (1,1):  info:  note\n" +
		"a.jtb (2,1):  warning:  careful\n" +
		"a.jtb (3,1):  unexpected program error:  crash\n" +
		"plain line without location\n"
	msgs, _ := JTB{}.Parse(text, true)
	require.Len(t, msgs, 3)
	assert.Equal(t, diag.SevInfo, msgs[0].Severity)
	assert.Equal(t, diag.SevWarning, msgs[1].Severity)
	assert.Equal(t, diag.SevError, msgs[2].Severity)
}

func TestSplitLines_CRLF(t *testing.T) {
	lines := splitLines("a\r\nb\nc")
	require.Len(t, lines, 3)
	assert.Equal(t, "a", lines[0].text)
	assert.Equal(t, 3, lines[0].end)
	assert.Equal(t, "c", lines[2].text)
}

func countLines(s string) int {
	n := 1
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
		}
	}
	return n
}
