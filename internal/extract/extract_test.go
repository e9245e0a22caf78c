package extract

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gramc/internal/affinity"
	"gramc/internal/console"
	"gramc/internal/diag"
	"gramc/internal/dialect"
	"gramc/internal/provenance"
)

type fixture struct {
	root    string
	store   *provenance.Store
	console *console.Console
	bag     *diag.Bag
	markers *diag.MarkerIndex
	ex      *Extractor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	store, err := provenance.Open(root)
	require.NoError(t, err)
	loop := affinity.NewLoop()
	t.Cleanup(loop.Close)
	bag := diag.NewBag()
	c := console.New(nil, diag.BagReporter{Bag: bag})
	markers := diag.NewMarkerIndex()
	ex := New(markers, loop, store, c)
	require.NoError(t, ex.Begin())
	return &fixture{root: root, store: store, console: c, bag: bag, markers: markers, ex: ex}
}

func (f *fixture) path(name string) string { return filepath.Join(f.root, name) }

func write(tr *console.Transcript, lines ...string) {
	for _, l := range lines {
		tr.WriteLine(l)
	}
}

func TestExtract_LocatedErrorAndLink(t *testing.T) {
	f := newFixture(t)
	f.console.Println("$ java -classpath javacc.jar javacc g.jj")
	tr := console.Open(f.console)
	write(tr,
		"Java Compiler Compiler Version 7.0.13 (Parser Generator)",
		`Error: Line 61, Column 5: Undefined lexical token name "HEX_LITERA".`,
	)
	g := f.path("g.jj")
	rep, err := f.ex.Extract(tr, g, dialect.JavaCC{}, true)
	require.NoError(t, err)

	assert.Equal(t, g, rep.File)
	require.Len(t, rep.Diagnostics, 1)
	d := rep.Diagnostics[0]
	assert.Equal(t, diag.SevError, d.Severity)
	assert.Equal(t, 60, d.Line0())
	assert.Equal(t, 4, d.Column0())
	assert.Equal(t, "7.0.13", f.ex.Version(tr))

	require.Len(t, rep.Links, 1)
	l := rep.Links[0]
	assert.Equal(t, 60, l.Line0)
	assert.Equal(t, "Line 61, Column 5", f.console.Text()[l.Span.Start:l.Span.End])
	assert.Len(t, f.console.Links(), 1)

	assert.True(t, f.bag.HasErrors())
	assert.Equal(t, []string{g}, f.bag.Files())
}

func TestExtract_IncrementalNoDuplicates(t *testing.T) {
	f := newFixture(t)
	tr := console.Open(f.console)
	g := f.path("g.jj")
	write(tr, "Warning: Line 2, Column 1: first")
	rep, err := f.ex.Extract(tr, g, dialect.JavaCC{}, false)
	require.NoError(t, err)
	assert.Len(t, rep.Diagnostics, 1)

	rep, err = f.ex.Extract(tr, g, dialect.JavaCC{}, false)
	require.NoError(t, err)
	assert.Empty(t, rep.Diagnostics)

	write(tr, "Warning: Choice conflict involving two expansions at")
	rep, err = f.ex.Extract(tr, g, dialect.JavaCC{}, false)
	require.NoError(t, err)
	assert.Empty(t, rep.Diagnostics, "waits for lookahead lines")

	write(tr,
		"         line 5, column 3 and line 8, column 3 respectively.",
		"         A common prefix is: <ID>",
	)
	rep, err = f.ex.Extract(tr, g, dialect.JavaCC{}, true)
	require.NoError(t, err)
	require.Len(t, rep.Diagnostics, 1)
	assert.Equal(t, 5, rep.Diagnostics[0].Line)
	assert.Len(t, rep.Links, 2)

	markers := f.bag.Items()
	assert.Len(t, markers, 2)
}

func TestExtract_AttributesDerivedToOrigin(t *testing.T) {
	f := newFixture(t)
	jj := f.path("Expr.jj")
	require.NoError(t, f.store.Put(provenance.Record{Path: jj, Derived: true, Origin: "Expr.jjt"}))

	tr := console.Open(f.console)
	write(tr,
		"Warning: Line 1, Column 1: File Expr.jj is obsolete.  Please rename or delete this file so that a new one can be generated for you.",
		"Error: Line 7, Column 2: Encountered something bad.",
		"Parser generated with 1 errors and 0 warnings.",
	)
	rep, err := f.ex.Extract(tr, jj, dialect.JavaCC{}, true)
	require.NoError(t, err)
	jjt := f.path("Expr.jjt")
	assert.Equal(t, jjt, rep.File)
	require.Len(t, rep.Diagnostics, 1)
	assert.Equal(t, 7, rep.Diagnostics[0].Line)

	assert.Equal(t, []string{jjt}, f.bag.Files())
	_, ok := f.markers.At(jjt, 7)
	assert.True(t, ok)
}

func TestExtract_TokenizerOriginKeepsTarget(t *testing.T) {
	f := newFixture(t)
	jj := f.path("jtb.out.jj")
	require.NoError(t, f.store.Put(provenance.Record{Path: jj, Derived: true, Origin: "g.jtb"}))
	tr := console.Open(f.console)
	write(tr, "Error: Line 3, Column 1: bad")
	rep, err := f.ex.Extract(tr, jj, dialect.JavaCC{}, true)
	require.NoError(t, err)
	assert.Equal(t, jj, rep.File)
}

func TestExtract_JTBDialect(t *testing.T) {
	f := newFixture(t)
	g := f.path("foo.jtb")
	tr := console.Open(f.console)
	write(tr,
		"JTB version 1.4.11",
		"foo.jtb (340,3):  soft error:  Empty BNF expansion",
		"foo.jtb (12,1):  info:  note",
	)
	rep, err := f.ex.Extract(tr, g, dialect.JTB{}, true)
	require.NoError(t, err)
	require.Len(t, rep.Diagnostics, 2)
	assert.Equal(t, diag.SevError, rep.Diagnostics[0].Severity)
	assert.Equal(t, 340, rep.Diagnostics[0].Line)
	assert.Equal(t, 3, rep.Diagnostics[0].Column)
	assert.Equal(t, diag.SevInfo, rep.Diagnostics[1].Severity)
	assert.Equal(t, "1.4.11", f.ex.Version(tr))
}

func TestExtract_UnlocatedAnchorsToFirstLine(t *testing.T) {
	f := newFixture(t)
	g := f.path("g.jj")
	tr := console.Open(f.console)
	write(tr,
		"Warning: Output directory is not writable.",
		"Warning: Line 1, Column 4: odd token",
	)
	_, err := f.ex.Extract(tr, g, dialect.JavaCC{}, true)
	require.NoError(t, err)
	d, ok := f.markers.At(g, 1)
	require.True(t, ok)
	assert.Equal(t, diag.SevWarning, d.Severity)
	assert.Contains(t, d.Message, "Output directory")
	assert.Contains(t, d.Message, "odd token")
	assert.Len(t, f.markers.Markers(g), 1)
}

func TestExtract_ClearsOncePerGeneration(t *testing.T) {
	f := newFixture(t)
	g := f.path("g.jjt")

	first := console.Open(f.console)
	write(first, "Error: Line 2, Column 1: from the tree builder")
	_, err := f.ex.Extract(first, g, dialect.JavaCC{}, true)
	require.NoError(t, err)

	second := console.Open(f.console)
	write(second, "Error: Line 9, Column 1: from the parser generator")
	_, err = f.ex.Extract(second, g, dialect.JavaCC{}, true)
	require.NoError(t, err)
	assert.Len(t, f.markers.Markers(g), 2)

	require.NoError(t, f.ex.Begin())
	again := console.Open(f.console)
	write(again, "Error: Line 9, Column 1: from the parser generator")
	_, err = f.ex.Extract(again, g, dialect.JavaCC{}, true)
	require.NoError(t, err)
	assert.Len(t, f.markers.Markers(g), 1)
	assert.Len(t, f.bag.Items(), 1)
}
