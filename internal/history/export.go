// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/landscape-pdf/pkg/types"
)

// exportFile is the document written by ExportYAML.
type exportFile struct {
	Database string      `yaml:"database"`
	Runs     []types.Run `yaml:"runs"`
}

// ExportYAML writes every run, newest first, to path.
func (s *Store) ExportYAML(ctx context.Context, path string) error {
	runs, err := s.Recent(ctx, 0)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	if runs == nil {
		runs = []types.Run{}
	}

	data, err := yaml.Marshal(exportFile{Database: s.path, Runs: runs})
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
