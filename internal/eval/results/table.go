package results

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/lehigh-university-libraries/orphaeval/internal/eval/dataset"
	"github.com/lehigh-university-libraries/orphaeval/internal/eval/labels"
)

// Export formats for the score-augmented table
const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
	FormatSQLite  = "sqlite"
)

// TableFileName returns the file name used for format
func TableFileName(format string) (string, error) {
	switch format {
	case FormatCSV:
		return "scores.csv", nil
	case FormatParquet:
		return "scores.parquet", nil
	case FormatSQLite:
		return "scores.db", nil
	default:
		return "", fmt.Errorf("unsupported format: %s (supported: csv, parquet, sqlite)", format)
	}
}

// allLanguages returns gold and candidate languages of t in report order
func allLanguages(t *labels.Table) []labels.Language {
	langs := append([]labels.Language{}, t.GoldLanguages...)
	langs = append(langs, t.Languages...)
	return labels.SortLanguages(langs)
}

func formatScore(s labels.Score) string {
	if !s.Valid {
		return ""
	}
	return strconv.FormatFloat(s.Value, 'g', -1, 64)
}

// WriteTableCSV writes the aligned table with its score columns, one row per entity.
// Undefined scores are left empty.
func WriteTableCSV(path string, t *labels.Table) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create table file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	langs := allLanguages(t)
	header := []string{"id"}
	for _, l := range langs {
		if t.HasGoldLanguage(l) {
			header = append(header, "goldLabel"+l.Title(), "goldAlt"+l.Title())
		}
		if t.HasLanguage(l) {
			header = append(header, dataset.LabelColumn(l), dataset.AltColumn(l))
		}
	}
	for _, col := range t.Scores {
		header = append(header, col.Name)
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range t.Records {
		row := []string{r.ID}
		for _, l := range langs {
			f := r.Lang(l)
			if t.HasGoldLanguage(l) {
				row = append(row, f.GoldLabel, f.GoldAlt.String())
			}
			if t.HasLanguage(l) {
				row = append(row, f.Label.String(), f.Alt.String())
			}
		}
		for _, col := range t.Scores {
			row = append(row, formatScore(col.Values[i]))
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row %s: %w", r.ID, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush table: %w", err)
	}
	return nil
}

// WriteExternalReferencesCSV writes one cross-reference per row
func WriteExternalReferencesCSV(path string, refs []dataset.ExternalReference) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create references file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"value_property", "id_auxiliary", "name_auxiliary"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, ref := range refs {
		if err := writer.Write([]string{ref.ValueProperty, ref.IDAuxiliary, ref.NameAuxiliary}); err != nil {
			return fmt.Errorf("failed to write reference: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
