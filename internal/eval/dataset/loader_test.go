package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lehigh-university-libraries/orphaeval/internal/eval/labels"
	"github.com/parquet-go/parquet-go"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return path
}

func strPtr(s string) *string {
	return &s
}

func TestNewLoader(t *testing.T) {
	path := "./full_data_df.json"
	loader := NewLoader(path)

	if loader.datasetPath != path {
		t.Errorf("Expected path %s, got %s", path, loader.datasetPath)
	}
}

func TestLoadColumnOrientedJSON(t *testing.T) {
	// pandas DataFrame.to_json() layout, value_property stored as numbers
	testData := `{
  "value_property": {"0": 558, "1": "166024", "10": 558, "2": 586.0},
  "source_degree": {"0": "First", "1": "Second", "10": "Second", "2": "First"},
  "labelEn": {"0": "Marfan syndrome", "1": null, "10": "Q123", "2": "cystic fibrosis"},
  "altEn": {"0": "MFS", "1": null, "10": "", "2": null},
  "labelFr": {"0": "syndrome de Marfan", "1": "dysplasie", "10": null, "2": 12}
}`
	path := writeFile(t, "full_data_df.json", testData)

	candidates, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	wantLangs := []labels.Language{labels.English, labels.French}
	if diff := cmp.Diff(wantLangs, candidates.Languages); diff != "" {
		t.Errorf("Languages mismatch (-want +got):\n%s", diff)
	}

	if len(candidates.Rows) != 4 {
		t.Fatalf("Expected 4 rows, got %d", len(candidates.Rows))
	}

	// numeric index order: 0, 1, 2, 10
	keys := []string{}
	for _, r := range candidates.Rows {
		keys = append(keys, r.Key)
	}
	if diff := cmp.Diff([]string{"558", "166024", "586", "558"}, keys); diff != "" {
		t.Errorf("Keys mismatch (-want +got):\n%s", diff)
	}

	first := candidates.Rows[0]
	if first.Degree != labels.DegreeFirst {
		t.Errorf("Expected degree First, got %s", first.Degree)
	}
	if first.Fields[labels.English].Label != labels.Some("Marfan syndrome") {
		t.Errorf("Expected English label, got %+v", first.Fields[labels.English].Label)
	}
	if candidates.Rows[1].Fields[labels.English].Label.Valid {
		t.Error("Expected null label to be absent")
	}
	if candidates.Rows[2].Fields[labels.French].Label.Valid {
		t.Error("Expected numeric label to be absent")
	}
	// placeholders are kept raw, the normalizer removes them
	if candidates.Rows[3].Fields[labels.English].Label != labels.Some("Q123") {
		t.Errorf("Expected raw placeholder, got %+v", candidates.Rows[3].Fields[labels.English].Label)
	}
}

func TestLoadRecordsJSON(t *testing.T) {
	path := writeFile(t, "rows.json", `[{"value_property":"558","labelDe":"Marfan-Syndrom"}]`)

	candidates, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(candidates.Rows) != 1 || candidates.Rows[0].Fields[labels.German].Label.String != "Marfan-Syndrom" {
		t.Errorf("Unexpected rows: %+v", candidates.Rows)
	}
}

func TestLoadJSONL(t *testing.T) {
	testData := `{"value_property":"558","source_degree":"First","labelEn":"Marfan syndrome","altEn":"MFS"}

{"value_property":"586","source_degree":"Second","labelEn":"Cystic fibrosis","labelEs":"fibrosis quística"}
{"value_property":"166024","source_degree":"First"}
`
	path := writeFile(t, "candidates.jsonl", testData)
	loader := NewLoader(path)

	candidates, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(candidates.Rows) != 3 {
		t.Errorf("Expected 3 rows, got %d", len(candidates.Rows))
	}
	if diff := cmp.Diff([]labels.Language{labels.English, labels.Spanish}, candidates.Languages); diff != "" {
		t.Errorf("Languages mismatch (-want +got):\n%s", diff)
	}

	sample, err := loader.LoadSample(2)
	if err != nil {
		t.Fatalf("LoadSample failed: %v", err)
	}
	if len(sample.Rows) != 2 {
		t.Errorf("Expected 2 rows, got %d", len(sample.Rows))
	}
	if sample.Rows[1].Key != "586" {
		t.Errorf("Expected key 586, got %s", sample.Rows[1].Key)
	}
}

func TestLoadJSONLRejectsMalformedLine(t *testing.T) {
	path := writeFile(t, "bad.jsonl", "{\"value_property\":\"1\"}\n{not json}\n")

	if _, err := NewLoader(path).Load(); err == nil {
		t.Error("Expected error for malformed line, got nil")
	}
}

func TestLoadRequiresValueProperty(t *testing.T) {
	path := writeFile(t, "nokey.jsonl", `{"labelEn":"flu"}`+"\n")

	if _, err := NewLoader(path).Load(); err == nil {
		t.Error("Expected error for missing value_property, got nil")
	}
}

func TestLoadParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidates.parquet")
	rows := []CandidateRecord{
		{ValueProperty: "558", SourceDegree: strPtr("First"), LabelEn: strPtr("Marfan syndrome"), AltEn: strPtr("MFS")},
		{ValueProperty: "586", SourceDegree: strPtr("Second"), LabelFr: strPtr("mucoviscidose")},
		{ValueProperty: "166024"},
	}
	if err := parquet.WriteFile(path, rows); err != nil {
		t.Fatalf("Failed to write parquet: %v", err)
	}

	loader := NewLoader(path)
	candidates, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(candidates.Languages) != len(labels.Supported) {
		t.Errorf("Expected every language column detected, got %v", candidates.Languages)
	}
	if len(candidates.Rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(candidates.Rows))
	}

	got := candidates.Rows[0]
	if got.Key != "558" || got.Degree != labels.DegreeFirst {
		t.Errorf("Unexpected first row: %+v", got)
	}
	if got.Fields[labels.English].Alt != labels.Some("MFS") {
		t.Errorf("Expected alias MFS, got %+v", got.Fields[labels.English].Alt)
	}
	if got.Fields[labels.French].Label.Valid {
		t.Error("Expected missing French label")
	}
	if candidates.Rows[2].Degree != "" {
		t.Errorf("Expected empty degree, got %s", candidates.Rows[2].Degree)
	}

	sample, err := loader.LoadSample(1)
	if err != nil {
		t.Fatalf("LoadSample failed: %v", err)
	}
	if len(sample.Rows) != 1 {
		t.Errorf("Expected 1 row, got %d", len(sample.Rows))
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	loader := NewLoader("test.txt")

	_, err := loader.Load()
	if err == nil {
		t.Error("Expected error for unsupported format, got nil")
	}

	_, err = loader.LoadSample(10)
	if err == nil {
		t.Error("Expected error for unsupported format in LoadSample, got nil")
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	loader := NewLoader("/nonexistent/path/file.jsonl")

	_, err := loader.Load()
	if err == nil {
		t.Error("Expected error for non-existent file, got nil")
	}

	_, err = loader.LoadSample(10)
	if err == nil {
		t.Error("Expected error for non-existent file in LoadSample, got nil")
	}
}

func TestLoadTranslations(t *testing.T) {
	testData := `{
  "gctLabelFr": {"558": "syndrome de Marfan", "586": "fibrose kystique"},
  "gctAltFr": {"558": "SMF|syndrome de Marfan", "586": null},
  "labelDe": {"558": "", "586": "Mukoviszidose"}
}`
	path := writeFile(t, "gct_translation.json", testData)

	translations, err := LoadTranslations(path)
	if err != nil {
		t.Fatalf("LoadTranslations failed: %v", err)
	}

	if diff := cmp.Diff([]labels.Language{labels.French, labels.German}, translations.Languages); diff != "" {
		t.Errorf("Languages mismatch (-want +got):\n%s", diff)
	}
	if len(translations.Records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(translations.Records))
	}

	marfan := translations.Records[0]
	if marfan.ID != "558" {
		t.Errorf("Expected id 558, got %s", marfan.ID)
	}
	want := labels.Fields{Label: labels.Set{"syndrome de Marfan"}, Alt: labels.Set{"SMF", "syndrome de Marfan"}}
	if diff := cmp.Diff(want, marfan.Lang(labels.French)); diff != "" {
		t.Errorf("French fields mismatch (-want +got):\n%s", diff)
	}
	if _, ok := marfan.Fields[labels.German]; ok {
		t.Error("Expected empty German translation to be skipped")
	}
}

func TestTranslationColumn(t *testing.T) {
	tests := map[string]string{
		"gctLabelFr": "labelFr",
		"gctlabelFr": "labelFr",
		"gctAltEs":   "altEs",
		"labelEn":    "labelEn",
		"gct":        "gct",
	}
	for in, want := range tests {
		if got := translationColumn(in); got != want {
			t.Errorf("translationColumn(%q) = %q, want %q", in, got, want)
		}
	}
}
