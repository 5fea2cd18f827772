package evalcmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lehigh-university-libraries/orphaeval/internal/eval/dataset"
	"github.com/lehigh-university-libraries/orphaeval/internal/eval/results"
)

// defaultXrefsFile is written into the data folder when no output is given
const defaultXrefsFile = "orphanet_external_references.csv"

func executeXrefs(w io.Writer, dataFolder, output string) error {
	refs, err := dataset.LoadExternalReferences(dataFolder)
	if err != nil {
		return err
	}

	if output == "" {
		output = filepath.Join(dataFolder, defaultXrefsFile)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := results.WriteExternalReferencesCSV(output, refs); err != nil {
		return err
	}

	slog.Info("Wrote external references", "count", len(refs), "path", output)
	fmt.Fprintf(w, "Wrote %d external references to %s\n", len(refs), output)
	return nil
}
