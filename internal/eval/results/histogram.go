package results

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lehigh-university-libraries/orphaeval/internal/eval/labels"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// HistogramBins is the number of bins over [0, 1]
const HistogramBins = 20

// SaveHistograms writes one PNG per score column of t into dir and returns the written paths.
// Columns without any defined score are skipped.
func SaveHistograms(dir string, t *labels.Table) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create histogram directory: %w", err)
	}

	var written []string
	for _, col := range t.Scores {
		values := col.Defined()
		if len(values) == 0 {
			continue
		}

		p := plot.New()
		p.Title.Text = fmt.Sprintf("%s (%s, %s)", col.Metric, col.Lang.Title(), col.Policy)
		p.X.Label.Text = "Score"
		p.Y.Label.Text = "Entities"
		p.X.Min = 0
		p.X.Max = 1

		hist, err := plotter.NewHist(plotter.Values(values), HistogramBins)
		if err != nil {
			return written, fmt.Errorf("failed to build histogram for %s: %w", col.Name, err)
		}
		p.Add(hist)

		path := filepath.Join(dir, col.Name+".png")
		if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
			return written, fmt.Errorf("failed to save histogram %s: %w", path, err)
		}
		written = append(written, path)
	}

	return written, nil
}
