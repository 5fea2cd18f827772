package results

import (
	"fmt"
	"io"
	"os"

	"github.com/lehigh-university-libraries/orphaeval/internal/eval/labels"
	"github.com/parquet-go/parquet-go"
)

// ScoreRow is one score in long format
type ScoreRow struct {
	ID     string   `parquet:"id"`
	Metric string   `parquet:"metric"`
	Lang   string   `parquet:"lang"`
	Policy string   `parquet:"policy"`
	Score  *float64 `parquet:"score,optional"` // nil when the row could not be scored
}

// ScoreRows flattens the score columns of t, column by column
func ScoreRows(t *labels.Table) []ScoreRow {
	rows := make([]ScoreRow, 0, len(t.Scores)*len(t.Records))
	for _, col := range t.Scores {
		for i, r := range t.Records {
			row := ScoreRow{
				ID:     r.ID,
				Metric: col.Metric,
				Lang:   string(col.Lang),
				Policy: col.Policy,
			}
			if v := col.Values[i]; v.Valid {
				score := v.Value
				row.Score = &score
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// WriteScoresParquet writes every score of t as a long format Parquet file
func WriteScoresParquet(path string, t *labels.Table) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}

	if err := writeScoreRows(file, ScoreRows(t)); err != nil {
		file.Close()
		return err
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close parquet file: %w", err)
	}
	return nil
}

func writeScoreRows(w io.Writer, rows []ScoreRow) error {
	writer := parquet.NewGenericWriter[ScoreRow](w)

	const batchSize = 128
	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		if _, err := writer.Write(rows[start:end]); err != nil {
			return fmt.Errorf("failed to write parquet rows: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}
