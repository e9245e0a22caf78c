package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [path]",
	Short: "Remove generated files recorded in the provenance store",
	Long: `Clean deletes every file that a previous compile recorded as generated,
then drops the provenance records. Grammars you wrote are never touched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().Bool("dry-run", false, "list the files without removing them")
}

func runClean(cmd *cobra.Command, args []string) error {
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return fmt.Errorf("failed to get dry-run flag: %w", err)
	}
	base := "."
	if len(args) > 0 && args[0] != "" {
		base = args[0]
	}
	ws, err := openWorkspace(cmd, base)
	if err != nil {
		return err
	}
	records, err := ws.store.List()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "no generated files recorded")
		return nil
	}
	removed := 0
	var errs []error
	for _, rec := range records {
		if !rec.Derived {
			continue
		}
		shown := ws.store.Rel(rec.Path)
		if dryRun {
			fmt.Fprintf(out, "would remove %s\n", shown)
			continue
		}
		if err := os.Remove(rec.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("failed to remove %q: %w", rec.Path, err))
			continue
		}
		if err := ws.store.Delete(rec.Path); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
		fmt.Fprintf(out, "removed %s\n", shown)
	}
	if !dryRun && len(errs) == 0 {
		if err := ws.store.DropAll(); err != nil {
			errs = append(errs, err)
		}
	}
	if !dryRun {
		fmt.Fprintf(out, "%d generated file(s) removed\n", removed)
	}
	return errors.Join(errs...)
}
