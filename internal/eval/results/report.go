package results

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Text report names inside a scenario folder
const (
	CoverageReportName = "coverage"
	SynonymReportName  = "synonyms"
)

// WriteReport writes r to <dir>/<name>.txt
func WriteReport(dir, name string, r io.WriterTo) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, name+".txt")
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}

	if _, err := r.WriteTo(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close report %s: %w", path, err)
	}
	return nil
}
