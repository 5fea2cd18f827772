package results

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/lehigh-university-libraries/orphaeval/internal/eval/dataset"
	"github.com/lehigh-university-libraries/orphaeval/internal/eval/labels"
	"github.com/lehigh-university-libraries/orphaeval/internal/eval/metrics"
	"github.com/parquet-go/parquet-go"
)

func alignedTable() *labels.Table {
	a := labels.NewRecord("558")
	a.Set(labels.English, labels.Fields{
		GoldLabel: "Marfan syndrome",
		GoldAlt:   labels.NewSet("MFS"),
		Label:     labels.NewSet("Marfan syndrome"),
		Alt:       labels.NewSet("MFS"),
	})
	b := labels.NewRecord("586")
	b.Set(labels.English, labels.Fields{GoldLabel: "Cystic fibrosis"})

	return &labels.Table{
		Records:       []labels.Record{a, b},
		Languages:     []labels.Language{labels.English},
		GoldLanguages: []labels.Language{labels.English},
	}
}

func scoredTable(t *testing.T) *labels.Table {
	t.Helper()

	table := alignedTable()
	err := table.AddScores(labels.ScoreColumn{
		Name:   "scoreJaroEnLabel",
		Metric: "jaro",
		Lang:   labels.English,
		Policy: metrics.PolicyLabel,
		Values: []labels.Score{labels.Defined(1), labels.Undefined},
	})
	if err != nil {
		t.Fatalf("Failed to add scores: %v", err)
	}
	return table
}

func TestWriteReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "wikidata_full")
	report := &metrics.CoverageReport{Languages: []metrics.LanguageCoverage{
		{Lang: labels.English, GoldCount: 4, CandidateCount: 2, Ratio: 0.5},
	}}

	if err := WriteReport(dir, CoverageReportName, report); err != nil {
		t.Fatalf("Failed to write report: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "coverage.txt"))
	if err != nil {
		t.Fatalf("Failed to read report: %v", err)
	}
	if !strings.HasPrefix(string(data), "Coverage in En: \n4 with a label in Orphanet \n2 with a label from Wikidata\n0.5 of entities") {
		t.Errorf("Unexpected coverage report: %q", string(data))
	}
}

func TestSummaryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	summary := NewRunSummary(RunConfig{
		DataFolder: "data",
		Metrics:    []string{"jaro"},
		Scenarios:  []string{"wikidata_full"},
	})
	if summary.Config.RunID == "" {
		t.Error("Expected a run id to be assigned")
	}
	if summary.Config.Timestamp == "" {
		t.Error("Expected a timestamp to be assigned")
	}

	table := alignedTable()
	scorer, err := metrics.NewScorer([]string{"jaro"})
	if err != nil {
		t.Fatalf("Failed to build scorer: %v", err)
	}
	reports, err := scorer.Score(table)
	if err != nil {
		t.Fatalf("Failed to score: %v", err)
	}
	summary.AddScenario(&metrics.ScenarioResult{
		Scenario:       "wikidata_full",
		Records:        len(table.Records),
		Languages:      table.Languages,
		Coverage:       &metrics.CoverageReport{Languages: []metrics.LanguageCoverage{{Lang: labels.English, Ratio: math.NaN()}}},
		Metrics:        reports,
		ProcessingTime: time.Second,
	})

	path, err := SaveSummary(dir, summary)
	if err != nil {
		t.Fatalf("Failed to save summary: %v", err)
	}
	if filepath.Base(path) != SummaryFileName {
		t.Errorf("Expected %s, got %s", SummaryFileName, filepath.Base(path))
	}

	loaded, err := LoadSummary(dir)
	if err != nil {
		t.Fatalf("Failed to load summary: %v", err)
	}
	if diff := cmp.Diff(summary, loaded, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Summary mismatch (-want +got):\n%s", diff)
	}

	sc, ok := loaded.Scenario("wikidata_full")
	if !ok {
		t.Fatal("Expected wikidata_full scenario")
	}
	if sc.Coverage[0].Ratio != nil {
		t.Errorf("Expected nil ratio for undefined coverage, got %v", *sc.Coverage[0].Ratio)
	}
	if len(sc.Metrics) != 1 || sc.Metrics[0].Metric != "jaro" {
		t.Errorf("Expected jaro metric scores, got %+v", sc.Metrics)
	}
}

func TestLoadSummaryMissing(t *testing.T) {
	if _, err := LoadSummary(t.TempDir()); err == nil {
		t.Error("Expected error for missing summary")
	}
}

func TestWriteTableCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.csv")
	if err := WriteTableCSV(path, scoredTable(t)); err != nil {
		t.Fatalf("Failed to write table: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open table: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse table: %v", err)
	}

	want := [][]string{
		{"id", "goldLabelEn", "goldAltEn", "labelEn", "altEn", "scoreJaroEnLabel"},
		{"558", "Marfan syndrome", "MFS", "Marfan syndrome", "MFS", "1"},
		{"586", "Cystic fibrosis", "", "", "", ""},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("Table mismatch (-want +got):\n%s", diff)
	}
}

func TestTableFileName(t *testing.T) {
	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{FormatCSV, "scores.csv", false},
		{FormatParquet, "scores.parquet", false},
		{FormatSQLite, "scores.db", false},
		{"xlsx", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got, err := TableFileName(tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestWriteScoresParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.parquet")
	if err := WriteScoresParquet(path, scoredTable(t)); err != nil {
		t.Fatalf("Failed to write parquet: %v", err)
	}

	rows, err := parquet.ReadFile[ScoreRow](path)
	if err != nil {
		t.Fatalf("Failed to read parquet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0].ID != "558" || rows[0].Score == nil || *rows[0].Score != 1 {
		t.Errorf("Expected 558 scored 1, got %+v", rows[0])
	}
	if rows[1].ID != "586" || rows[1].Score != nil {
		t.Errorf("Expected 586 without score, got %+v", rows[1])
	}
	if rows[0].Metric != "jaro" || rows[0].Lang != "en" || rows[0].Policy != metrics.PolicyLabel {
		t.Errorf("Unexpected column identity: %+v", rows[0])
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteScoresParquetErrors(t *testing.T) {
	if err := writeScoreRows(failingWriter{}, ScoreRows(scoredTable(t))); err == nil {
		t.Error("Expected an error when the destination rejects writes, got nil")
	}

	path := filepath.Join(t.TempDir(), "missing", "scores.parquet")
	if err := WriteScoresParquet(path, scoredTable(t)); err == nil {
		t.Error("Expected an error for a missing directory, got nil")
	}
}

func TestWriteSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "scores.db")

	// writing twice replaces the previous database
	for range 2 {
		if err := WriteSQLite(ctx, path, scoredTable(t)); err != nil {
			t.Fatalf("Failed to write sqlite: %v", err)
		}
	}

	db, err := OpenScoreDB(path)
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	defer db.Close()

	var labelRows int
	if err := db.QueryRow("SELECT COUNT(*) FROM labels").Scan(&labelRows); err != nil {
		t.Fatalf("Failed to count labels: %v", err)
	}
	if labelRows != 2 {
		t.Errorf("Expected 2 label rows, got %d", labelRows)
	}

	var mean sql.NullFloat64
	var count int
	err = db.QueryRowContext(ctx, `
		SELECT AVG(score), COUNT(score) FROM scores
		WHERE metric = ? AND lang = ? AND policy = ?
	`, "jaro", string(labels.English), metrics.PolicyLabel).Scan(&mean, &count)
	if err != nil {
		t.Fatalf("Failed to query mean: %v", err)
	}
	if !mean.Valid || mean.Float64 != 1 {
		t.Errorf("Expected mean 1, got %+v", mean)
	}
	if count != 1 {
		t.Errorf("Expected 1 scored row, got %d", count)
	}
}

func TestSaveHistograms(t *testing.T) {
	dir := t.TempDir()
	table := scoredTable(t)
	err := table.AddScores(labels.ScoreColumn{
		Name:   "scoreJaroEnBest_label",
		Metric: "jaro",
		Lang:   labels.English,
		Policy: metrics.PolicyBestLabel,
		Values: []labels.Score{labels.Undefined, labels.Undefined},
	})
	if err != nil {
		t.Fatalf("Failed to add scores: %v", err)
	}

	written, err := SaveHistograms(dir, table)
	if err != nil {
		t.Fatalf("Failed to save histograms: %v", err)
	}
	if len(written) != 1 {
		t.Fatalf("Expected 1 histogram, got %d", len(written))
	}
	if _, err := os.Stat(filepath.Join(dir, "scoreJaroEnLabel.png")); err != nil {
		t.Errorf("Expected histogram file: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "scoreJaroEnBest_label.png")); err == nil {
		t.Error("Expected no histogram for a column without scores")
	}
}

func TestWriteExternalReferencesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xrefs.csv")
	refs := []dataset.ExternalReference{
		{ValueProperty: "558", IDAuxiliary: "154700", NameAuxiliary: "OMIM"},
	}
	if err := WriteExternalReferencesCSV(path, refs); err != nil {
		t.Fatalf("Failed to write references: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read references: %v", err)
	}
	want := "value_property,id_auxiliary,name_auxiliary\n558,154700,OMIM\n"
	if string(data) != want {
		t.Errorf("Expected %q, got %q", want, string(data))
	}
}
