// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/landscape-pdf/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or export previous generation runs",
	Long: `History lists recent runs from the SQLite ledger, newest first, with the
outcome of every copy and the seed that reproduces its image order. With
--export the whole ledger is written as YAML instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		export, _ := cmd.Flags().GetString("export")
		return current.history(cmd.Context(), cmd.OutOrStdout(), limit, export)
	},
}

func init() {
	historyCmd.Flags().Int("limit", 10, "number of runs to show (0 for all)")
	historyCmd.Flags().String("export", "", "write the full history to this YAML file")

	rootCmd.AddCommand(historyCmd)
}

func (a *app) history(ctx context.Context, out io.Writer, limit int, export string) error {
	store, err := history.Open(a.cfg.History)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	if export != "" {
		if err := store.ExportYAML(ctx, export); err != nil {
			return fmt.Errorf("exporting history: %w", err)
		}
		fmt.Fprintf(out, "History exported to %s\n", export)
		return nil
	}

	runs, err := store.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}

	for _, r := range runs {
		status := fmt.Sprintf("%d/%d generated", r.Succeeded, r.Requested)
		if r.Cancelled {
			status += ", cancelled"
		}
		fmt.Fprintf(out, "#%d  %s  %d image(s)  %s  seed %d\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Images, status, r.Seed)
		for _, d := range r.Documents {
			line := fmt.Sprintf("    copy %2d  %-9s  %s", d.Copy, d.Status, d.Path)
			if d.Error != "" {
				line += "  (" + d.Error + ")"
			}
			fmt.Fprintln(out, line)
		}
	}
	return nil
}
