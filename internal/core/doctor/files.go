package doctor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DataFile names a JSON file the planner reads at startup.
type DataFile struct {
	Label string
	Path  string
}

// DataFilesCheck verifies the JSON data files parse and reports backups left
// behind by earlier recoveries.
type DataFilesCheck struct {
	files []DataFile
}

// NewDataFilesCheck creates a data file check.
func NewDataFilesCheck(files ...DataFile) *DataFilesCheck {
	return &DataFilesCheck{files: files}
}

func (c *DataFilesCheck) Name() string {
	return "Data files"
}

func (c *DataFilesCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	for _, f := range c.files {
		status, detail := inspectJSON(f.Path)
		result.add(f.Label, status, detail)

		if n := countBackups(f.Path); n > 0 {
			result.add(f.Label+" backups", StatusWarn,
				fmt.Sprintf("%d unreadable copy(s) kept in %s", n, filepath.Dir(f.Path)))
		}
	}

	return result
}

// inspectJSON reads path without modifying it. Missing and empty files are fine;
// the planner starts empty in both cases.
func inspectJSON(path string) (Status, string) {
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return StatusPass, "not created yet (" + path + ")"
	case err != nil:
		return StatusFail, err.Error()
	case len(data) == 0:
		return StatusPass, "empty (" + path + ")"
	case !json.Valid(data):
		return StatusFail, "not valid JSON, it will be moved aside on next start (" + path + ")"
	default:
		return StatusPass, path
	}
}

// countBackups counts the "<name>.corrupt.<stamp>" files next to path.
func countBackups(path string) int {
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		return 0
	}
	prefix := filepath.Base(path) + ".corrupt."
	n := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
			n++
		}
	}
	return n
}
