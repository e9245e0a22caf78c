package argv

import (
	"fmt"
	"sort"
	"strings"
)

// Catalog lists the options a tool understands together with their defaults.
type Catalog struct {
	Tool    string
	Mode    Mode
	options []Option
	byName  map[string]int
}

func newCatalog(tool string, mode Mode, opts ...Option) *Catalog {
	c := &Catalog{Tool: tool, Mode: mode, options: opts, byName: make(map[string]int, len(opts))}
	for i, o := range opts {
		c.byName[strings.ToUpper(o.Name)] = i
	}
	return c
}

// Lookup finds an option by name, case-insensitively.
func (c *Catalog) Lookup(name string) (Option, bool) {
	i, ok := c.byName[strings.ToUpper(name)]
	if !ok {
		return Option{}, false
	}
	o := c.options[i]
	o.Value = o.Default
	return o, true
}

// Options returns a copy of the catalog with every value set to its default.
func (c *Catalog) Options() []Option {
	out := make([]Option, len(c.options))
	for i, o := range c.options {
		o.Value = o.Default
		out[i] = o
	}
	return out
}

// Resolve applies configured values to the catalog and returns the options in
// catalog order. Unknown names are rejected.
func (c *Catalog) Resolve(values map[string]any) ([]Option, error) {
	opts := c.Options()
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		i, ok := c.byName[strings.ToUpper(name)]
		if !ok {
			return nil, fmt.Errorf("%s: unknown option %q", c.Tool, name)
		}
		o, err := opts[i].FromValue(values[name])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Tool, err)
		}
		opts[i] = o
	}
	return opts, nil
}

func boolOpt(name string, def bool) Option {
	d := "false"
	if def {
		d = "true"
	}
	return Option{Name: name, Kind: KindBool, Default: d}
}

func intOpt(name, def string) Option    { return Option{Name: name, Kind: KindInt, Default: def} }
func stringOpt(name, def string) Option { return Option{Name: name, Kind: KindString, Default: def} }
func voidOpt(name string) Option        { return Option{Name: name, Kind: KindVoid, Default: "false"} }

// JavaCC is the parser generator's option set.
var JavaCC = newCatalog("javacc", ModeAssign,
	intOpt("LOOKAHEAD", "1"),
	intOpt("CHOICE_AMBIGUITY_CHECK", "2"),
	intOpt("OTHER_AMBIGUITY_CHECK", "1"),
	boolOpt("STATIC", true),
	boolOpt("SUPPORT_CLASS_VISIBILITY_PUBLIC", true),
	boolOpt("DEBUG_PARSER", false),
	boolOpt("DEBUG_LOOKAHEAD", false),
	boolOpt("DEBUG_TOKEN_MANAGER", false),
	boolOpt("ERROR_REPORTING", true),
	boolOpt("JAVA_UNICODE_ESCAPE", false),
	boolOpt("UNICODE_INPUT", false),
	boolOpt("IGNORE_CASE", false),
	boolOpt("USER_TOKEN_MANAGER", false),
	boolOpt("USER_CHAR_STREAM", false),
	boolOpt("BUILD_PARSER", true),
	boolOpt("BUILD_TOKEN_MANAGER", true),
	boolOpt("TOKEN_MANAGER_USES_PARSER", false),
	boolOpt("SANITY_CHECK", true),
	boolOpt("FORCE_LA_CHECK", false),
	boolOpt("COMMON_TOKEN_ACTION", false),
	boolOpt("CACHE_TOKENS", false),
	boolOpt("KEEP_LINE_COLUMN", true),
	stringOpt("OUTPUT_DIRECTORY", ""),
	stringOpt("JDK_VERSION", "1.5"),
	stringOpt("GRAMMAR_ENCODING", ""),
)

// JJTree is the tree-builder preprocessor's option set.
var JJTree = newCatalog("jjtree", ModeAssign,
	boolOpt("MULTI", false),
	boolOpt("NODE_DEFAULT_VOID", false),
	boolOpt("NODE_SCOPE_HOOK", false),
	boolOpt("NODE_USES_PARSER", false),
	boolOpt("BUILD_NODE_FILES", true),
	boolOpt("VISITOR", false),
	boolOpt("TRACK_TOKENS", false),
	boolOpt("STATIC", true),
	stringOpt("NODE_PREFIX", "AST"),
	stringOpt("NODE_PACKAGE", ""),
	stringOpt("NODE_EXTENDS", ""),
	stringOpt("NODE_CLASS", ""),
	stringOpt("NODE_FACTORY", ""),
	stringOpt("VISITOR_EXCEPTION", ""),
	stringOpt("VISITOR_DATA_TYPE", ""),
	stringOpt("VISITOR_RETURN_TYPE", "Object"),
	stringOpt("OUTPUT_DIRECTORY", ""),
	stringOpt("OUTPUT_FILE", ""),
	stringOpt("JDK_VERSION", "1.5"),
)

// JTB is the token/tree builder's option set.
var JTB = newCatalog("jtb", ModeSeparate,
	stringOpt("o", "jtb.out.jj"),
	stringOpt("np", "syntaxtree"),
	stringOpt("vp", "visitor"),
	stringOpt("p", ""),
	stringOpt("d", ""),
	stringOpt("nd", "syntaxtree"),
	stringOpt("vd", "visitor"),
	stringOpt("ns", ""),
	voidOpt("cl"),
	voidOpt("e"),
	voidOpt("f"),
	voidOpt("h"),
	voidOpt("jd"),
	voidOpt("pp"),
	voidOpt("printer"),
	voidOpt("scheme"),
	voidOpt("tk"),
	voidOpt("w"),
)
