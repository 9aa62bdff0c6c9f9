package jsonfile

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/colonyops/tegbar/internal/core/task"
	"github.com/colonyops/tegbar/pkg/iojson"
)

// ExportName returns the file name used for an export taken at now.
func ExportName(now time.Time) string {
	return fmt.Sprintf("tegbar_export_%s.json", now.Format("20060102_150405"))
}

// Export writes a snapshot of c into dir and returns the file path. The export
// uses the same layout as the tasks file.
func Export(dir string, c *task.Collection, now time.Time) (string, error) {
	data, err := iojson.MarshalIndent(c.Groups())
	if err != nil {
		return "", fmt.Errorf("encode export: %w", err)
	}

	path := filepath.Join(dir, ExportName(now))
	if err := writeAtomic(path, data); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
