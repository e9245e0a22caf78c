// Package argv builds and splits the option strings handed to the grammar
// tools.
//
// Option strings travel as single strings through configuration and are split
// with Tokenize just before a process is spawned. Build renders a typed option
// list back into such a string, omitting values that equal the tool's
// default, so that Tokenize(Build(opts)) returns every non-default value
// unchanged.
package argv
