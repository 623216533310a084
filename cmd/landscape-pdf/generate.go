// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
)

func init() {
	f := rootCmd.Flags()
	f.Int("copies", 0, "number of copies (1-20); skips the prompt")
	f.BoolP("yes", "y", false, "skip the confirmation prompt")
	f.Uint64("seed", 0, "shuffle seed for copies 2 and later (default: random)")
	f.Bool("open", false, "open the output folder when done without asking")
	f.Bool("no-open", false, "never offer to open the output folder")
	rootCmd.MarkFlagsMutuallyExclusive("open", "no-open")
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	opts := generateFlags(cmd)
	return current.generate(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), opts)
}

func generateFlags(cmd *cobra.Command) generateOptions {
	f := cmd.Flags()
	var opts generateOptions

	opts.copies, _ = f.GetInt("copies")
	opts.copiesSet = f.Changed("copies")
	opts.yes, _ = f.GetBool("yes")
	opts.seed, _ = f.GetUint64("seed")
	opts.seedSet = f.Changed("seed")

	if v, _ := f.GetBool("open"); v {
		opts.open = openAlways
	}
	if v, _ := f.GetBool("no-open"); v {
		opts.open = openNever
	}
	return opts
}
