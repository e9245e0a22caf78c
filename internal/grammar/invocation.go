package grammar

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gramc/internal/argv"
	"gramc/internal/failure"
	"gramc/internal/launcher"
)

// Settings is the resolved configuration of one tool.
type Settings struct {
	JavaCommand string
	JVMOptions  string
	Jar         string // absolute path
	Args        string // raw option string appended after typed options
	Options     map[string]any
}

// ArgvBuilder produces the command line for one tool run.
type ArgvBuilder interface {
	Build(kind Kind, s Settings, file string) ([]string, error)
}

// classpathBuilder: <java> [jvmOpts] -classpath <jar> <mainClass> <options…> <file>
type classpathBuilder struct{ mainClass string }

func (b classpathBuilder) Build(kind Kind, s Settings, file string) ([]string, error) {
	head, err := javaHead(kind, s)
	if err != nil {
		return nil, err
	}
	opts, err := toolOptions(kind, s)
	if err != nil {
		return nil, err
	}
	out := append(head, "-classpath", s.Jar, b.mainClass)
	out = append(out, opts...)
	return append(out, file), nil
}

// jarBuilder: <java> [jvmOpts] -jar <jar> <options…> <file>
// Option tokens of the form -name=value are split into two tokens.
type jarBuilder struct{}

func (jarBuilder) Build(kind Kind, s Settings, file string) ([]string, error) {
	head, err := javaHead(kind, s)
	if err != nil {
		return nil, err
	}
	opts, err := toolOptions(kind, s)
	if err != nil {
		return nil, err
	}
	out := append(head, "-jar", s.Jar)
	out = append(out, argv.SplitAssignments(opts)...)
	return append(out, file), nil
}

func javaHead(kind Kind, s Settings) ([]string, error) {
	key := kind.Tool() + ".jar"
	if kind == TreeGrammar {
		// the tree builder ships inside the parser generator jar
		key = "javacc.jar"
	}
	if strings.TrimSpace(s.Jar) == "" {
		return nil, &failure.ConfigurationError{Key: key, Err: errors.New("jar path is not set")}
	}
	info, err := os.Stat(s.Jar)
	if err != nil {
		return nil, &failure.ConfigurationError{Key: key, Value: s.Jar, Err: err}
	}
	if info.IsDir() {
		return nil, &failure.ConfigurationError{Key: key, Value: s.Jar, Err: errors.New("is a directory")}
	}
	java := strings.TrimSpace(s.JavaCommand)
	if java == "" {
		java = "java"
	}
	return append([]string{java}, argv.Tokenize(s.JVMOptions)...), nil
}

func toolOptions(kind Kind, s Settings) ([]string, error) {
	cat := kind.Catalog()
	var out []string
	if cat != nil && len(s.Options) > 0 {
		opts, err := cat.Resolve(s.Options)
		if err != nil {
			return nil, &failure.ConfigurationError{Key: kind.Tool() + ".options", Err: err}
		}
		out = append(out, argv.Tokenize(argv.Build(opts, cat.Mode))...)
	}
	return append(out, argv.Tokenize(s.Args)...), nil
}

// Invocation builds the launcher invocation for file. The tool runs in the
// file's directory and receives the file's base name.
func Invocation(kind Kind, s Settings, file string) (launcher.Invocation, error) {
	strat, ok := StrategyFor(kind)
	if !ok {
		return launcher.Invocation{}, fmt.Errorf("%s: not a grammar file", file)
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return launcher.Invocation{}, &failure.FilesystemError{Op: "resolve", Path: file, Err: err}
	}
	args, err := strat.Argv.Build(kind, s, filepath.Base(abs))
	if err != nil {
		return launcher.Invocation{}, err
	}
	return launcher.Invocation{Argv: args, WorkDir: filepath.Dir(abs)}, nil
}
