// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/shelf-bridge/internal/mapstore"
)

// reviewFile is the on-disk shape of a review file: a generated-at-free
// plain list, so re-running with unchanged data writes identical bytes.
type reviewFile struct {
	Items []mapstore.ReviewEntry `yaml:"items"`
}

// WriteReview writes the entries needing human adjudication to a YAML
// file. An empty entry list removes a stale file from a previous run,
// so review files never advertise resolved work.
func WriteReview(path string, entries []mapstore.ReviewEntry) error {
	if len(entries) == 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing stale review file: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating review directory: %w", err)
	}

	data, err := yaml.Marshal(reviewFile{Items: entries})
	if err != nil {
		return fmt.Errorf("encoding review file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing review file %s: %w", path, err)
	}
	return nil
}
