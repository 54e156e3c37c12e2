package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"purchase_flow/domain/interfaces"
)

type screenshotStore struct {
	baseDir string
}

// NewScreenshotStore - creates screenshot storage. Relative paths resolve
// against baseDir, or the working directory when baseDir is empty.
func NewScreenshotStore(baseDir string) interfaces.Screenshots {
	return &screenshotStore{baseDir: baseDir}
}

// Save - writes png to path, overwriting any earlier capture
func (s *screenshotStore) Save(path string, png []byte) error {
	if path == "" {
		return fmt.Errorf("screenshot path is empty")
	}
	if !filepath.IsAbs(path) && s.baseDir != "" {
		path = filepath.Join(s.baseDir, path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create screenshot directory: %w", err)
		}
	}
	if err := os.WriteFile(path, png, 0644); err != nil {
		return fmt.Errorf("failed to write screenshot: %w", err)
	}
	return nil
}
