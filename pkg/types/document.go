// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DocumentStatus indicates the outcome of generating one copy.
type DocumentStatus string

const (
	DocumentDone      DocumentStatus = "generated"
	DocumentFailed    DocumentStatus = "failed"
	DocumentCancelled DocumentStatus = "cancelled"
)

// DocumentRecord is the stored outcome of one copy.
type DocumentRecord struct {
	// Copy is the 1-based copy index.
	Copy int `json:"copy" yaml:"copy"`

	// Path is where the PDF was (or would have been) written.
	Path string `json:"path" yaml:"path"`

	Status DocumentStatus `json:"status" yaml:"status"`

	// Error holds the failure message for failed or cancelled copies.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	Pages int `json:"pages" yaml:"pages"`

	// Order lists image relative paths in the order they were laid out.
	Order []string `json:"order" yaml:"order"`
}

// Run is one invocation of the generator as kept in the history ledger.
type Run struct {
	ID         int64     `json:"id" yaml:"id"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
	InputDir   string    `json:"input_dir" yaml:"input_dir"`
	OutputDir  string    `json:"output_dir" yaml:"output_dir"`
	Images     int       `json:"images" yaml:"images"`
	Requested  int       `json:"requested" yaml:"requested"`
	Succeeded  int       `json:"succeeded" yaml:"succeeded"`
	Failed     int       `json:"failed" yaml:"failed"`
	Cancelled  bool      `json:"cancelled" yaml:"cancelled"`

	// Seed reproduces the shuffled copies of this run.
	Seed uint64 `json:"seed" yaml:"seed"`

	Documents []DocumentRecord `json:"documents" yaml:"documents"`
}
