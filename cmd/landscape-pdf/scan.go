// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/landscape-pdf/internal/discover"
	"github.com/pdiddy/landscape-pdf/pkg/types"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List the images that would be placed in the PDF",
	Long: `Scan walks the input folder in generation order and prints each image with
its size and pixel dimensions. Files that cannot be decoded are flagged so they
can be fixed before a run; a single unreadable image aborts a document.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return current.scan(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

// scan prints the discovered images. It fails when nothing was found or any
// image is unreadable.
func (a *app) scan(out io.Writer) error {
	images, err := a.discover(out)
	if err != nil {
		return err
	}

	bad := 0
	fmt.Fprintf(out, "Input folder: %s\n\n", a.cfg.Paths.InputFolder)
	for i, img := range images {
		info, err := discover.Stat(img.AbsPath)
		if err != nil {
			bad++
			fmt.Fprintf(out, "  %3d. %-40s unreadable: %v\n", i+1, img.RelPath, err)
			continue
		}
		cfg, err := discover.Validate(img.AbsPath)
		if err != nil {
			bad++
			fmt.Fprintf(out, "  %3d. %-40s %7.2f MB  invalid: %v\n", i+1, img.RelPath, info.SizeMB, err)
			a.log.Warn("invalid image", "image", img.RelPath, "error", err)
			continue
		}
		fmt.Fprintf(out, "  %3d. %-40s %7.2f MB  %dx%d\n", i+1, img.RelPath, info.SizeMB, cfg.Width, cfg.Height)
	}

	fmt.Fprintf(out, "\n%d image(s) -> %d page(s) per document\n", len(images), types.PageCount(len(images)))
	if bad > 0 {
		return fmt.Errorf("%d of %d images cannot be read", bad, len(images))
	}
	return nil
}
