// Package grammar classifies grammar files and knows how each tool of the
// family is invoked and how its output is read.
package grammar

import (
	"path/filepath"
	"strings"

	"gramc/internal/argv"
	"gramc/internal/dialect"
)

// Kind is the closed set of grammar file kinds.
type Kind uint8

const (
	Unknown Kind = iota
	// Grammar is a .jj file compiled by the parser generator.
	Grammar
	// TreeGrammar is a .jjt file preprocessed by the tree builder into a .jj.
	TreeGrammar
	// TokenizerGrammar is a .jtb file preprocessed by the token builder into a .jj.
	TokenizerGrammar
)

// KindOf classifies path by its extension, case-insensitively.
func KindOf(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jj":
		return Grammar
	case ".jjt":
		return TreeGrammar
	case ".jtb":
		return TokenizerGrammar
	}
	return Unknown
}

func (k Kind) String() string {
	switch k {
	case Grammar:
		return "grammar"
	case TreeGrammar:
		return "tree-grammar"
	case TokenizerGrammar:
		return "tokenizer-grammar"
	}
	return "unknown"
}

// Tool names the external tool that compiles this kind.
func (k Kind) Tool() string {
	switch k {
	case Grammar:
		return "javacc"
	case TreeGrammar:
		return "jjtree"
	case TokenizerGrammar:
		return "jtb"
	}
	return ""
}

// Preprocessor reports whether the kind's tool emits an intermediate grammar
// that needs compiling in turn.
func (k Kind) Preprocessor() bool {
	return k == TreeGrammar || k == TokenizerGrammar
}

// Catalog returns the option catalog of the kind's tool.
func (k Kind) Catalog() *argv.Catalog {
	switch k {
	case Grammar:
		return argv.JavaCC
	case TreeGrammar:
		return argv.JJTree
	case TokenizerGrammar:
		return argv.JTB
	}
	return nil
}

// Strategy is the pair of behaviours attached to a kind.
type Strategy struct {
	Argv    ArgvBuilder
	Dialect dialect.Parser
}

var strategies = map[Kind]Strategy{
	Grammar:          {Argv: classpathBuilder{mainClass: "javacc"}, Dialect: dialect.JavaCC{}},
	TreeGrammar:      {Argv: classpathBuilder{mainClass: "jjtree"}, Dialect: dialect.JavaCC{}},
	TokenizerGrammar: {Argv: jarBuilder{}, Dialect: dialect.JTB{}},
}

// StrategyFor returns the strategy of k; ok is false for Unknown.
func StrategyFor(k Kind) (Strategy, bool) {
	s, ok := strategies[k]
	return s, ok
}

// IsCompilable reports whether path is a grammar file any tool accepts.
func IsCompilable(path string) bool {
	return KindOf(path) != Unknown
}
