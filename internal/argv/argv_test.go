package argv

import (
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"spaces only", "   \t ", nil},
		{"plain", "-a  -b=1\t-c", []string{"-a", "-b=1", "-c"}},
		{"quoted space", `-OUTPUT_DIRECTORY="my dir" -x`, []string{"-OUTPUT_DIRECTORY=my dir", "-x"}},
		{"quoted whole token", `-o "out file.jj"`, []string{"-o", "out file.jj"}},
		{"unterminated quote", `-a "b c`, []string{"-a", "b c"}},
		{"empty quotes", `-p ""`, []string{"-p", ""}},
		{"adjacent quotes join", `a"b c"d`, []string{"ab cd"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.in))
		})
	}
}

func TestSplitAssignments(t *testing.T) {
	got := SplitAssignments([]string{"-o=jtb.out.jj", "-np=nodes", "-jd", "file=x", "-=y"})
	assert.Equal(t, []string{"-o", "jtb.out.jj", "-np", "nodes", "-jd", "file=x", "-=y"}, got)
}

func TestBuild(t *testing.T) {
	opts := []Option{
		{Name: "STATIC", Kind: KindBool, Default: "true", Value: "false"},
		{Name: "LOOKAHEAD", Kind: KindInt, Default: "1", Value: "1"},
		{Name: "OUTPUT_DIRECTORY", Kind: KindString, Default: "", Value: "gen src"},
		{Name: "jd", Kind: KindVoid, Default: "false", Value: "true"},
		{Name: "tk", Kind: KindVoid, Default: "false", Value: "false"},
	}
	assert.Equal(t, `-STATIC=false -OUTPUT_DIRECTORY="gen src" -jd`, Build(opts, ModeAssign))
	assert.Equal(t, `-STATIC false -OUTPUT_DIRECTORY "gen src" -jd`, Build(opts, ModeSeparate))
}

func TestCatalogResolve(t *testing.T) {
	opts, err := JavaCC.Resolve(map[string]any{"static": false, "LOOKAHEAD": int64(2), "OUTPUT_DIRECTORY": "out"})
	require.NoError(t, err)
	assert.Equal(t, "-LOOKAHEAD=2 -STATIC=false -OUTPUT_DIRECTORY=out", Build(opts, JavaCC.Mode))

	_, err = JavaCC.Resolve(map[string]any{"NOPE": true})
	assert.ErrorContains(t, err, "unknown option")

	_, err = JavaCC.Resolve(map[string]any{"LOOKAHEAD": "two"})
	assert.ErrorContains(t, err, "invalid integer")

	jtb, err := JTB.Resolve(map[string]any{"o": "grammar out.jj", "jd": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"-o", "grammar out.jj", "-jd"}, Tokenize(Build(jtb, JTB.Mode)))
}

func TestBuild_QuotesControlWhitespace(t *testing.T) {
	for _, v := range []string{"a\nb", "a\rb", "a\fb", "a\vb", "a\tb"} {
		opts := []Option{{Name: "o", Kind: KindString, Value: v}}
		assert.Equal(t, []string{"-o", v}, Tokenize(Build(opts, ModeSeparate)), "%q", v)
		assert.Equal(t, []string{"-o=" + v}, Tokenize(Build(opts, ModeAssign)), "%q", v)
	}
}

func TestTokenizeBuildRoundTrip_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	valueGen := gen.RegexMatch(`[a-zA-Z0-9 \t\n\r\f\v_/.=-]{0,12}`)

	properties.Property("tokenize(build) keeps every non-default value", prop.ForAll(
		func(v1, v2 string, flag bool, separate bool) bool {
			opts := []Option{
				{Name: "A", Kind: KindString, Default: "dflt", Value: v1},
				{Name: "B", Kind: KindString, Default: "", Value: v2},
				{Name: "V", Kind: KindVoid, Default: "false", Value: strconv.FormatBool(flag)},
			}
			mode := ModeAssign
			if separate {
				mode = ModeSeparate
			}
			tokens := Tokenize(Build(opts, mode))
			got := map[string]string{}
			if mode == ModeSeparate {
				for i := 0; i < len(tokens); i++ {
					if tokens[i] == "-V" {
						got["V"] = "true"
						continue
					}
					if i+1 >= len(tokens) {
						return false
					}
					got[strings.TrimPrefix(tokens[i], "-")] = tokens[i+1]
					i++
				}
			} else {
				for _, tok := range tokens {
					if tok == "-V" {
						got["V"] = "true"
						continue
					}
					name, value, ok := strings.Cut(strings.TrimPrefix(tok, "-"), "=")
					if !ok {
						return false
					}
					got[name] = value
				}
			}
			for _, o := range opts {
				value, present := got[o.Name]
				if o.IsDefault() {
					if present {
						return false
					}
					continue
				}
				if !present || value != o.Value {
					return false
				}
			}
			return true
		},
		valueGen, valueGen, gen.Bool(), gen.Bool(),
	))

	properties.TestingRun(t)
}
