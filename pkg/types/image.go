// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the landscape-pdf pipeline:
// discovered images, generated documents, and the runtime configuration.
package types

// ImageEntry is one image found under the input folder. Entries are created by
// discovery and never modified afterwards.
type ImageEntry struct {
	// AbsPath is the absolute, cleaned path to the image file. It identifies
	// the entry uniquely.
	AbsPath string `json:"abs_path" yaml:"abs_path"`

	// RelPath is the path relative to the input folder (e.g. "trip/a.jpg").
	RelPath string `json:"rel_path" yaml:"rel_path"`
}

// ImagesPerPage is the fixed number of image slots on every page.
const ImagesPerPage = 2

// PageCount returns the number of pages needed for n images, ceil(n/2).
func PageCount(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + ImagesPerPage - 1) / ImagesPerPage
}

// RelPaths returns the relative paths of entries in order.
func RelPaths(entries []ImageEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.RelPath
	}
	return out
}
