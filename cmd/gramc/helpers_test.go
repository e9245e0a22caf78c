package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gramc/internal/buildpipeline"
	"gramc/internal/diag"
	"gramc/internal/diagfmt"
	"gramc/internal/grammar"
	"gramc/internal/project"
	"gramc/internal/provenance"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReadUIMode(t *testing.T) {
	cases := map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, " on ": uiModeOn, "off": uiModeOff, "false": uiModeOff}
	for in, want := range cases {
		got, err := readUIMode(in)
		if err != nil {
			t.Fatalf("readUIMode(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("readUIMode(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatal("expected error for invalid mode")
	}
}

func TestProgressViewEnabled(t *testing.T) {
	t.Setenv("CI", "1")
	cases := []struct {
		name string
		view progressView
		want bool
	}{
		{"forced on", progressView{mode: uiModeOn, format: "json", groups: 1}, true},
		{"forced off", progressView{mode: uiModeOff, format: "pretty", groups: 1}, false},
		{"quiet wins", progressView{mode: uiModeOn, quiet: true, groups: 1}, false},
		{"nothing to compile", progressView{mode: uiModeOn, groups: 0}, false},
		{"auto with json", progressView{mode: uiModeAuto, format: "json", groups: 1}, false},
		{"auto with transcript", progressView{mode: uiModeAuto, format: "pretty", transcript: true, groups: 1}, false},
		{"auto in CI", progressView{mode: uiModeAuto, format: "pretty", groups: 1}, false},
	}
	for _, tc := range cases {
		if got := tc.view.enabled(); got != tc.want {
			t.Errorf("%s: enabled() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCollectGrammarFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "Expr.jjt"), "")
	writeFile(t, filepath.Join(root, "a", "Expr.jj"), "")
	writeFile(t, filepath.Join(root, "b", "Tok.JTB"), "")
	writeFile(t, filepath.Join(root, "b", "Tok.java"), "")
	writeFile(t, filepath.Join(root, ".gramc", "x.jj"), "")

	got, err := collectGrammarFiles([]string{root, filepath.Join(root, "a", "Expr.jj")})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(root, "a", "Expr.jj"),
		filepath.Join(root, "a", "Expr.jjt"),
		filepath.Join(root, "b", "Tok.JTB"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("collectGrammarFiles = %v, want %v", got, want)
	}

	if _, err := collectGrammarFiles([]string{filepath.Join(root, "b", "Tok.java")}); err == nil {
		t.Fatal("expected error for a non-grammar file")
	}
	if _, err := collectGrammarFiles([]string{filepath.Join(root, "missing.jj")}); err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestSourceGrammarsSkipsDerived(t *testing.T) {
	root := t.TempDir()
	origin := filepath.Join(root, "Expr.jjt")
	derived := filepath.Join(root, "Expr.jj")
	orphan := filepath.Join(root, "Gone.jj")
	writeFile(t, origin, "")
	writeFile(t, derived, "")
	writeFile(t, orphan, "")

	store, err := provenance.Open(root)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Put(provenance.Record{Path: derived, Derived: true, Origin: "Expr.jjt"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(provenance.Record{Path: orphan, Derived: true, Origin: "Gone.jjt"}); err != nil {
		t.Fatal(err)
	}
	ws := &workspace{cfg: project.Default(root), store: store}

	got := sourceGrammars(ws, []string{derived, origin, orphan})
	want := []string{origin, orphan}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("sourceGrammars = %v, want %v", got, want)
	}
}

func TestRenderDiagnosticsShortTruncates(t *testing.T) {
	root := t.TempDir()
	items := []diag.Diagnostic{
		{File: filepath.Join(root, "g.jj"), Line: 2, Column: 1, Severity: diag.SevError, Message: "first"},
		{File: filepath.Join(root, "g.jj"), Line: 9, Column: 4, Severity: diag.SevWarning, Message: "second\ndetail"},
	}
	var buf bytes.Buffer
	if err := renderDiagnostics(&buf, "short", items, nil, renderOptions{baseDir: root, max: 1}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "g.jj:2:1:") || strings.Contains(out, "second") {
		t.Fatalf("unexpected short output:\n%s", out)
	}
}

func TestRunsJSONIncludesCascade(t *testing.T) {
	root := t.TempDir()
	res := buildpipeline.Result{
		File:       filepath.Join(root, "Expr.jjt"),
		Kind:       grammar.TreeGrammar,
		ExitCode:   0,
		ReportedTo: filepath.Join(root, "Expr.jjt"),
		Generated:  []string{filepath.Join(root, "Expr.jj")},
		Nested: []buildpipeline.Result{{
			File:       filepath.Join(root, "Expr.jj"),
			Kind:       grammar.Grammar,
			Version:    "7.0.13",
			ExitCode:   1,
			ReportedTo: filepath.Join(root, "Expr.jjt"),
		}},
	}
	var buf bytes.Buffer
	if err := renderDiagnostics(&buf, "json", nil, []buildpipeline.Result{res}, renderOptions{pathMode: diagfmt.PathModeAuto, baseDir: root}); err != nil {
		t.Fatal(err)
	}
	var doc diagfmt.DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if len(doc.Runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(doc.Runs))
	}
	if doc.Runs[0].Tool != "jjtree" || doc.Runs[0].ReportedTo != "" || !reflect.DeepEqual(doc.Runs[0].Generated, []string{"Expr.jj"}) {
		t.Fatalf("unexpected first run: %+v", doc.Runs[0])
	}
	if doc.Runs[1].Tool != "javacc" || doc.Runs[1].ReportedTo != "Expr.jjt" || doc.Runs[1].ExitCode != 1 {
		t.Fatalf("unexpected cascaded run: %+v", doc.Runs[1])
	}
}
