package evalcmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lehigh-university-libraries/orphaeval/internal/eval/metrics"
	"github.com/lehigh-university-libraries/orphaeval/internal/eval/results"
	"github.com/spf13/pflag"
)

const testEnProduct = `{"JDBOR": [{"DisorderList": [{"Disorder": [
  {"OrphaNumber": "558", "Name": [{"lang": "en", "label": "Marfan syndrome"}],
   "SynonymList": [{"count": "1", "Synonym": [{"lang": "en", "label": "MFS"}]}],
   "ExternalReferenceList": [{"count": "1", "ExternalReference": [{"id": "1", "Source": "OMIM", "Reference": "154700"}]}]},
  {"OrphaNumber": "586", "Name": [{"lang": "en", "label": "Cystic fibrosis"}],
   "SynonymList": [{"count": "0"}],
   "ExternalReferenceList": [{"count": "0"}]}
]}]}]}`

const testFrProduct = `{"JDBOR": [{"DisorderList": [{"Disorder": [
  {"OrphaNumber": "558", "Name": [{"lang": "fr", "label": "Syndrome de Marfan"}]}
]}]}]}`

const testCandidates = `{
  "value_property": {"0": 558, "1": 558, "2": 586},
  "source_degree": {"0": "First", "1": "Second", "2": "First"},
  "labelEn": {"0": "Marfan syndrome", "1": "MFS", "2": "Cystic fibrosis"},
  "altEn": {"0": null, "1": null, "2": null},
  "labelFr": {"0": "Syndrome de Marfan", "1": null, "2": null},
  "altFr": {"0": null, "1": null, "2": null}
}`

const testTranslations = `{
  "gctLabelFr": {"558": "Syndrome de Marfan"},
  "gctAltFr": {"558": null}
}`

func dataFolder(t *testing.T, withTranslations bool) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"en_product1.json":      testEnProduct,
		"fr_product1.json":      testFrProduct,
		defaultCandidatesFile:   testCandidates,
		defaultTranslationsFile: testTranslations,
	}
	if !withTranslations {
		delete(files, defaultTranslationsFile)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return dir
}

func testRunOptions(t *testing.T, data string) RunOptions {
	t.Helper()
	opts := DefaultRunOptions()
	opts.DataFolder = data
	opts.ResultsFolder = filepath.Join(t.TempDir(), "results")
	opts.finalize()
	return opts
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestExecuteRun(t *testing.T) {
	opts := testRunOptions(t, dataFolder(t, true))
	opts.Formats = []string{results.FormatCSV}

	var out bytes.Buffer
	if err := executeRun(context.Background(), opts, &out); err != nil {
		t.Fatalf("executeRun failed: %v", err)
	}

	for _, sc := range []string{ScenarioFirstOnly, ScenarioSecondOnly, ScenarioFull, ScenarioGCT} {
		for _, name := range []string{"coverage.txt", "synonyms.txt", "jaro.txt", "scores.csv"} {
			if _, err := os.Stat(filepath.Join(opts.ResultsFolder, sc, name)); err != nil {
				t.Errorf("Expected %s/%s: %v", sc, name, err)
			}
		}
	}

	// only 558 is reached through a second degree link
	second := readFile(t, filepath.Join(opts.ResultsFolder, ScenarioSecondOnly, "coverage.txt"))
	if !strings.Contains(second, "Coverage in En: \n2 with a label in Orphanet \n1 with a label from Wikidata\n0.5 of entities") {
		t.Errorf("Unexpected second degree coverage: %q", second)
	}

	gct := readFile(t, filepath.Join(opts.ResultsFolder, ScenarioGCT, "coverage.txt"))
	if !strings.Contains(gct, "Coverage in Fr: \n1 with a label in Orphanet \n1 with a label from Wikidata\n1.0 of entities") {
		t.Errorf("Unexpected gct coverage: %q", gct)
	}
	if strings.Contains(gct, "Coverage in En") {
		t.Error("Expected no English coverage for machine translations")
	}

	full := readFile(t, filepath.Join(opts.ResultsFolder, ScenarioFull, "jaro.txt"))
	if !strings.HasPrefix(full, "Results computed with the jaro metric.\nResult in En:\n") {
		t.Errorf("Unexpected jaro report: %q", full)
	}

	summary, err := results.LoadSummary(opts.ResultsFolder)
	if err != nil {
		t.Fatalf("Failed to load summary: %v", err)
	}
	want := []string{ScenarioFirstOnly, ScenarioSecondOnly, ScenarioFull, ScenarioGCT}
	if diff := cmp.Diff(want, summary.Config.Scenarios); diff != "" {
		t.Errorf("Scenarios mismatch (-want +got):\n%s", diff)
	}
	if summary.Config.RunID == "" {
		t.Error("Expected a run id")
	}

	if _, err := os.Stat(filepath.Join(opts.ResultsFolder, resultsJSONFile)); err != nil {
		t.Errorf("Expected results JSON: %v", err)
	}
	if !strings.Contains(out.String(), "SCENARIO WIKIDATA_FULL") {
		t.Errorf("Expected printed summary, got %q", out.String())
	}
}

func TestExecuteRunTranslationCoverageUsesFullGold(t *testing.T) {
	data := dataFolder(t, true)
	translations := `{
  "gctLabelEn": {"558": "Marfan syndrome"},
  "gctLabelFr": {"558": "Syndrome de Marfan"}
}`
	if err := os.WriteFile(filepath.Join(data, defaultTranslationsFile), []byte(translations), 0644); err != nil {
		t.Fatalf("Failed to write translations: %v", err)
	}
	opts := testRunOptions(t, data)
	opts.Scenarios = []string{ScenarioGCT}

	if err := executeRun(context.Background(), opts, &bytes.Buffer{}); err != nil {
		t.Fatalf("executeRun failed: %v", err)
	}

	gct := readFile(t, filepath.Join(opts.ResultsFolder, ScenarioGCT, "coverage.txt"))
	if !strings.Contains(gct, "Coverage in En: \n2 with a label in Orphanet \n1 with a label from Wikidata\n0.5 of entities") {
		t.Errorf("Expected English coverage against the full gold table, got %q", gct)
	}

	// English gold stays out of scoring
	jaro := readFile(t, filepath.Join(opts.ResultsFolder, ScenarioGCT, "jaro.txt"))
	if strings.Contains(jaro, "Result in En") {
		t.Errorf("Expected no English scores for translations, got %q", jaro)
	}
}

func TestExecuteRunSkipsMissingTranslations(t *testing.T) {
	opts := testRunOptions(t, dataFolder(t, false))
	opts.Scenarios = []string{"full", "gct"}

	if err := executeRun(context.Background(), opts, &bytes.Buffer{}); err != nil {
		t.Fatalf("executeRun failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(opts.ResultsFolder, ScenarioGCT)); err == nil {
		t.Error("Expected gct scenario to be skipped")
	}
	if _, err := os.Stat(filepath.Join(opts.ResultsFolder, ScenarioFull, "coverage.txt")); err != nil {
		t.Errorf("Expected full scenario output: %v", err)
	}
}

func TestExecuteRunUnknownMetric(t *testing.T) {
	// the data folder is empty, so the error must come before loading
	opts := testRunOptions(t, t.TempDir())
	opts.Metrics = []string{"jaro", "soundex"}

	err := executeRun(context.Background(), opts, &bytes.Buffer{})
	if !errors.Is(err, metrics.ErrUnknownMetric) {
		t.Fatalf("Expected ErrUnknownMetric, got %v", err)
	}
	var unknown *metrics.UnknownMetricError
	if !errors.As(err, &unknown) {
		t.Fatalf("Expected UnknownMetricError, got %T", err)
	}
	if diff := cmp.Diff([]string{"soundex"}, unknown.Names); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteRunSample(t *testing.T) {
	opts := testRunOptions(t, dataFolder(t, false))
	opts.Scenarios = []string{ScenarioFull}
	opts.Sample = 2

	if err := executeRun(context.Background(), opts, &bytes.Buffer{}); err != nil {
		t.Fatalf("executeRun failed: %v", err)
	}

	// the first two candidate rows only reach 558
	full := readFile(t, filepath.Join(opts.ResultsFolder, ScenarioFull, "coverage.txt"))
	if !strings.Contains(full, "Coverage in En: \n2 with a label in Orphanet \n1 with a label from Wikidata\n0.5 of entities") {
		t.Errorf("Unexpected sampled coverage: %q", full)
	}
}

func TestExecuteRunInvalidSettings(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*RunOptions)
	}{
		{"normalizer", func(o *RunOptions) { o.Normalize = "stem" }},
		{"join", func(o *RunOptions) { o.Join = "outer" }},
		{"format", func(o *RunOptions) { o.Formats = []string{"xlsx"} }},
		{"scenario", func(o *RunOptions) { o.Scenarios = []string{"third"} }},
		{"sample", func(o *RunOptions) { o.Sample = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testRunOptions(t, dataFolder(t, true))
			tt.modify(&opts)
			if err := executeRun(context.Background(), opts, &bytes.Buffer{}); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestResolveScenarios(t *testing.T) {
	tests := []struct {
		name    string
		names   []string
		noGCT   bool
		want    []string
		wantErr bool
	}{
		{"all", nil, false, []string{ScenarioFirstOnly, ScenarioSecondOnly, ScenarioFull, ScenarioGCT}, false},
		{"no gct", nil, true, []string{ScenarioFirstOnly, ScenarioSecondOnly, ScenarioFull}, false},
		{"aliases keep run order", []string{"full", "first"}, false, []string{ScenarioFirstOnly, ScenarioFull}, false},
		{"full names", []string{ScenarioGCT}, false, []string{ScenarioGCT}, false},
		{"only gct disabled", []string{"gct"}, true, nil, true},
		{"unknown", []string{"third"}, false, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveScenarios(tt.names, tt.noGCT)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			var names []string
			for _, sc := range got {
				names = append(names, sc.name)
			}
			if diff := cmp.Diff(tt.want, names); diff != "" {
				t.Errorf("Scenarios mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveRunOptions(t *testing.T) {
	t.Setenv(envDataFolder, "/env/data")
	t.Setenv(envResultsFolder, "/env/results")
	t.Setenv(envMetrics, "levenshtein, jaccard")

	config := filepath.Join(t.TempDir(), "run.yaml")
	content := "results_folder: /config/results\nnormalize: fold\nformats: [csv, sqlite]\n"
	if err := os.WriteFile(config, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	var fromFlags RunOptions
	flags := pflag.NewFlagSet("run", pflag.ContinueOnError)
	flags.StringVar(&fromFlags.Normalize, "normalize", "none", "")
	flags.StringSliceVar(&fromFlags.Metrics, "metrics", nil, "")
	if err := flags.Parse([]string{"--normalize=nfkc"}); err != nil {
		t.Fatalf("Failed to parse flags: %v", err)
	}

	opts, err := resolveRunOptions(flags, config, fromFlags)
	if err != nil {
		t.Fatalf("resolveRunOptions failed: %v", err)
	}

	want := RunOptions{
		DataFolder:    "/env/data",
		ResultsFolder: "/config/results",
		Candidates:    filepath.Join("/env/data", defaultCandidatesFile),
		Translations:  filepath.Join("/env/data", defaultTranslationsFile),
		Metrics:       []string{"levenshtein", "jaccard"},
		Normalize:     "nfkc",
		Formats:       []string{"csv", "sqlite"},
		Join:          "inner",
	}
	if diff := cmp.Diff(want, opts); diff != "" {
		t.Errorf("Options mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveRunOptionsMissingConfig(t *testing.T) {
	_, err := resolveRunOptions(nil, filepath.Join(t.TempDir(), "missing.yaml"), RunOptions{})
	if err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestSplitList(t *testing.T) {
	got := splitList([]string{"jaro,levenshtein", " jaccard ", "", "cosine,"})
	want := []string{"jaro", "levenshtein", "jaccard", "cosine"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("splitList mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteReport(t *testing.T) {
	opts := testRunOptions(t, dataFolder(t, true))
	opts.Scenarios = []string{"full"}
	if err := executeRun(context.Background(), opts, &bytes.Buffer{}); err != nil {
		t.Fatalf("executeRun failed: %v", err)
	}

	tests := []struct {
		format string
		want   string
	}{
		{"text", "[wikidata_full] 2 records"},
		{"json", `"name": "wikidata_full"`},
		{"csv", "Scenario,Metric,Language,Policy,Mean,Count\nwikidata_full,jaro,en,label,"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var out bytes.Buffer
			if err := executeReport(&out, opts.ResultsFolder, tt.format); err != nil {
				t.Fatalf("executeReport failed: %v", err)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("Expected output to contain %q, got %q", tt.want, out.String())
			}
		})
	}

	if err := executeReport(&bytes.Buffer{}, opts.ResultsFolder, "xml"); err == nil {
		t.Error("Expected error for unsupported format")
	}
	if err := executeReport(&bytes.Buffer{}, t.TempDir(), "text"); err == nil {
		t.Error("Expected error for missing summary")
	}
}

func TestExecuteInspect(t *testing.T) {
	opts := inspectOptions{
		dataFolder: dataFolder(t, true),
		scenario:   ScenarioFull,
		metrics:    []string{"jaro"},
		langs:      []string{"en"},
		limit:      1,
	}

	var out bytes.Buffer
	if err := executeInspect(context.Background(), &out, strings.NewReader(""), opts); err != nil {
		t.Fatalf("executeInspect failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{"Loaded 2 aligned records", "RECORD 1/1  ORPHA:558", "Gold label:     Marfan syndrome", "scoreJaroEnLabel:"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected output to contain %q, got %q", want, got)
		}
	}
	if strings.Contains(got, "ORPHA:586") {
		t.Error("Expected limit to stop after one record")
	}
	if strings.Contains(got, "Fr\n") {
		t.Error("Expected only English to be shown")
	}
}

func TestExecuteInspectCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := inspectOptions{dataFolder: dataFolder(t, true), scenario: ScenarioFull}
	var out bytes.Buffer
	if err := executeInspect(ctx, &out, strings.NewReader(""), opts); err != nil {
		t.Fatalf("executeInspect failed: %v", err)
	}
	if !strings.Contains(out.String(), "Inspection interrupted.") {
		t.Errorf("Expected interruption message, got %q", out.String())
	}
}

func TestExecuteXrefs(t *testing.T) {
	data := dataFolder(t, false)
	output := filepath.Join(t.TempDir(), "refs", "xrefs.csv")

	if err := executeXrefs(&bytes.Buffer{}, data, output); err != nil {
		t.Fatalf("executeXrefs failed: %v", err)
	}

	want := "value_property,id_auxiliary,name_auxiliary\n558,154700,OMIM\n"
	if got := readFile(t, output); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestMetricsCmd(t *testing.T) {
	cmd := NewMetricsCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("metrics command failed: %v", err)
	}

	got := out.String()
	for _, name := range metrics.MetricNames() {
		if !strings.Contains(got, name) {
			t.Errorf("Expected %s in metric list", name)
		}
	}
	if !strings.Contains(got, "Policies: label, best_label") {
		t.Errorf("Expected policy list, got %q", got)
	}
}
