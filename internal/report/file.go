package report

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile stores doc at path, creating parent directories. Reports hold
// crawled URLs and parameter values, so the file is readable by the owner
// only.
func WriteFile(path string, doc *Document) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, doc.Content, 0o600); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
