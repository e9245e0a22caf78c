package grammar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gramc/internal/dialect"
	"gramc/internal/failure"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, Grammar, KindOf("/a/Expr.jj"))
	assert.Equal(t, TreeGrammar, KindOf("Expr.JJT"))
	assert.Equal(t, TokenizerGrammar, KindOf("x/y.jtb"))
	assert.Equal(t, Unknown, KindOf("Parser.java"))
	assert.True(t, TreeGrammar.Preprocessor())
	assert.False(t, Grammar.Preprocessor())
	assert.False(t, IsCompilable("README"))
}

func TestStrategyDialects(t *testing.T) {
	s, ok := StrategyFor(TreeGrammar)
	require.True(t, ok)
	assert.IsType(t, dialect.JavaCC{}, s.Dialect)
	s, ok = StrategyFor(TokenizerGrammar)
	require.True(t, ok)
	assert.IsType(t, dialect.JTB{}, s.Dialect)
	_, ok = StrategyFor(Unknown)
	assert.False(t, ok)
}

func fakeJar(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte("PK"), 0o644))
	return p
}

func TestInvocation_Classpath(t *testing.T) {
	jar := fakeJar(t, "javacc.jar")
	dir := t.TempDir()
	file := filepath.Join(dir, "Expr.jjt")
	s := Settings{
		JavaCommand: "/usr/bin/java",
		JVMOptions:  "-Xmx256m -Dfile.encoding=UTF-8",
		Jar:         jar,
		Args:        `-OUTPUT_DIRECTORY="gen src"`,
		Options:     map[string]any{"MULTI": true},
	}
	inv, err := Invocation(TreeGrammar, s, file)
	require.NoError(t, err)
	assert.Equal(t, dir, inv.WorkDir)
	assert.Equal(t, []string{
		"/usr/bin/java", "-Xmx256m", "-Dfile.encoding=UTF-8",
		"-classpath", jar, "jjtree",
		"-MULTI=true", "-OUTPUT_DIRECTORY=gen src",
		"Expr.jjt",
	}, inv.Argv)

	inv, err = Invocation(Grammar, Settings{Jar: jar}, filepath.Join(dir, "Expr.jj"))
	require.NoError(t, err)
	assert.Equal(t, []string{"java", "-classpath", jar, "javacc", "Expr.jj"}, inv.Argv)
}

func TestInvocation_JarSplitsAssignments(t *testing.T) {
	jar := fakeJar(t, "jtb.jar")
	s := Settings{Jar: jar, Args: "-o=out.jj -jd", Options: map[string]any{"np": "nodes"}}
	inv, err := Invocation(TokenizerGrammar, s, filepath.Join(t.TempDir(), "g.jtb"))
	require.NoError(t, err)
	assert.Equal(t, []string{"java", "-jar", jar, "-np", "nodes", "-o", "out.jj", "-jd", "g.jtb"}, inv.Argv)
}

func TestInvocation_MissingJar(t *testing.T) {
	_, err := Invocation(TokenizerGrammar, Settings{}, "g.jtb")
	require.Error(t, err)
	assert.True(t, failure.IsConfiguration(err))

	_, err = Invocation(Grammar, Settings{Jar: filepath.Join(t.TempDir(), "nope.jar")}, "g.jj")
	assert.True(t, failure.IsConfiguration(err))
}

func TestInvocation_BadOption(t *testing.T) {
	jar := fakeJar(t, "javacc.jar")
	_, err := Invocation(Grammar, Settings{Jar: jar, Options: map[string]any{"NOT_AN_OPTION": 1}}, "g.jj")
	require.Error(t, err)
	assert.True(t, failure.IsConfiguration(err))
}

func TestInvocation_UnknownKind(t *testing.T) {
	_, err := Invocation(Unknown, Settings{}, "x.txt")
	assert.Error(t, err)
}
