package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"gramc/internal/grammar"
)

var argsCmd = &cobra.Command{
	Use:   "args [flags] <file>",
	Short: "Print the command line that would compile a grammar",
	Args:  cobra.ExactArgs(1),
	RunE:  runArgs,
}

func init() {
	argsCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type argsJSON struct {
	Tool    string   `json:"tool"`
	WorkDir string   `json:"work_dir"`
	Argv    []string `json:"argv"`
}

func runArgs(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
	file, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", args[0], err)
	}
	kind := grammar.KindOf(file)
	if kind == grammar.Unknown {
		return fmt.Errorf("%s: not a grammar file (expected .jj, .jjt or .jtb)", args[0])
	}
	ws, err := openWorkspace(cmd, filepath.Dir(file))
	if err != nil {
		return err
	}
	settings, err := ws.cfg.ToolSettings(kind)
	if err != nil {
		return err
	}
	inv, err := grammar.Invocation(kind, settings, file)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(argsJSON{Tool: kind.Tool(), WorkDir: inv.WorkDir, Argv: inv.Argv})
	}
	fmt.Fprintf(out, "# %s, in %s\n%s\n", kind.Tool(), inv.WorkDir, inv.String())
	return nil
}
