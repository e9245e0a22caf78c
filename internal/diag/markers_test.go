package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gramc/internal/source"
)

func TestMarkerIndex_MergesSameLine(t *testing.T) {
	idx := NewMarkerIndex()
	require.True(t, idx.Add(Diagnostic{File: "/g/a.jj", Line: 3, Column: 1, Severity: SevWarning, Message: "first", Origin: source.Span{Start: 0, End: 5}}))
	require.False(t, idx.Add(Diagnostic{File: "/g/a.jj", Line: 3, Column: 7, Severity: SevError, Message: "second", Origin: source.Span{Start: 10, End: 16}}))

	markers := idx.Markers("/g/a.jj")
	require.Len(t, markers, 1)
	assert.Equal(t, SevError, markers[0].Severity)
	assert.Equal(t, "first\nsecond", markers[0].Message)
	assert.Equal(t, 1, markers[0].Column)
	assert.Equal(t, source.Span{Start: 0, End: 16}, markers[0].Origin)
}

func TestMarkerIndex_DuplicateMessageNotRepeated(t *testing.T) {
	idx := NewMarkerIndex()
	d := Diagnostic{File: "/g/a.jj", Line: 1, Severity: SevError, Message: "boom"}
	idx.Add(d)
	idx.Add(d)
	m, ok := idx.At("/g/a.jj", 1)
	require.True(t, ok)
	assert.Equal(t, "boom", m.Message)
}

func TestMarkerIndex_SubstringMessageIsDistinct(t *testing.T) {
	idx := NewMarkerIndex()
	idx.Add(Diagnostic{File: "f", Line: 4, Severity: SevWarning, Message: "Warning: token FOO is unused"})
	idx.Add(Diagnostic{File: "f", Line: 4, Severity: SevWarning, Message: "FOO is unused"})
	idx.Add(Diagnostic{File: "f", Line: 4, Severity: SevWarning, Message: "FOO is unused"})
	m, ok := idx.At("f", 4)
	require.True(t, ok)
	assert.Equal(t, "Warning: token FOO is unused\nFOO is unused", m.Message)

	assert.True(t, containsLine("a\nb c\nd", "b c\nd"))
	assert.False(t, containsLine("a\nb c\nd", "c"))
}

func TestMarkerIndex_ZeroLineAnchorsToFirst(t *testing.T) {
	idx := NewMarkerIndex()
	idx.Add(Diagnostic{File: "f", Line: 0, Message: "no location"})
	_, ok := idx.At("f", 1)
	assert.True(t, ok)
}

func TestMarkerIndex_ClearOncePerGeneration(t *testing.T) {
	idx := NewMarkerIndex()
	g1 := idx.NewGeneration()
	require.True(t, idx.ClearOnce("f", g1))
	idx.Add(Diagnostic{File: "f", Line: 2, Message: "nested stage"})
	require.False(t, idx.ClearOnce("f", g1))
	assert.Len(t, idx.Markers("f"), 1)

	g2 := idx.NewGeneration()
	require.True(t, idx.ClearOnce("f", g2))
	assert.Empty(t, idx.Markers("f"))
	assert.Empty(t, idx.Files())
}

func TestMarkerIndex_MarkersSortedByLine(t *testing.T) {
	idx := NewMarkerIndex()
	for _, line := range []int{9, 2, 5} {
		idx.Add(Diagnostic{File: "f", Line: line, Message: "m"})
	}
	markers := idx.Markers("f")
	require.Len(t, markers, 3)
	assert.Equal(t, []int{2, 5, 9}, []int{markers[0].Line, markers[1].Line, markers[2].Line})
}

func TestFormatShort(t *testing.T) {
	diags := []Diagnostic{
		{File: "/p/g/a.jj", Line: 61, Column: 5, Severity: SevError, Message: "Undefined token\nmore"},
	}
	assert.Equal(t, "g/a.jj:61:5: ERROR: Undefined token\n", FormatShort(diags, "/p"))
}

func TestBag_ReplaceAndQuery(t *testing.T) {
	b := NewBag()
	BagReporter{Bag: b}.ReportDiagnostics("b", []Diagnostic{{File: "b", Line: 2, Severity: SevWarning}})
	BagReporter{Bag: b}.ReportDiagnostics("a", []Diagnostic{{File: "a", Line: 1, Severity: SevError}})
	assert.True(t, b.HasErrors())
	assert.Equal(t, []string{"a", "b"}, b.Files())
	items := b.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].File)

	b.Replace("a", nil)
	assert.False(t, b.HasErrors())
	assert.True(t, b.HasWarnings())
	assert.Equal(t, 1, b.Len())
}
