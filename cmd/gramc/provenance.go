package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var provenanceCmd = &cobra.Command{
	Use:   "provenance [flags] [file]",
	Short: "Show which grammar produced generated files",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProvenance,
}

func init() {
	provenanceCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type provenanceJSON struct {
	Path    string `json:"path"`
	Derived bool   `json:"derived"`
	Origin  string `json:"origin,omitempty"`
}

func runProvenance(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
	start := "."
	if len(args) == 1 {
		start = filepath.Dir(args[0])
	}
	ws, err := openWorkspace(cmd, start)
	if err != nil {
		return err
	}

	var entries []provenanceJSON
	if len(args) == 1 {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", args[0], err)
		}
		if _, err := os.Stat(abs); err != nil {
			return fmt.Errorf("failed to stat path: %w", err)
		}
		rec, ok, err := ws.store.Get(abs)
		if err != nil {
			return err
		}
		entry := provenanceJSON{Path: ws.store.Rel(abs)}
		if ok {
			entry.Derived = rec.Derived
			entry.Origin = rec.Origin
		}
		entries = append(entries, entry)
	} else {
		records, err := ws.store.List()
		if err != nil {
			return err
		}
		for _, rec := range records {
			entries = append(entries, provenanceJSON{Path: ws.store.Rel(rec.Path), Derived: rec.Derived, Origin: rec.Origin})
		}
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if entries == nil {
			entries = []provenanceJSON{}
		}
		return enc.Encode(entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "no generated files recorded")
		return nil
	}
	for _, e := range entries {
		switch {
		case !e.Derived:
			fmt.Fprintf(out, "%s: not generated\n", e.Path)
		case e.Origin == "":
			fmt.Fprintf(out, "%s: generated, origin unknown\n", e.Path)
		default:
			fmt.Fprintf(out, "%s <- %s\n", e.Path, e.Origin)
		}
	}
	return nil
}
