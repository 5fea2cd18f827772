package evalcmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lehigh-university-libraries/orphaeval/internal/eval/dataset"
	"github.com/lehigh-university-libraries/orphaeval/internal/eval/labels"
	"github.com/lehigh-university-libraries/orphaeval/internal/eval/linkage"
	"github.com/lehigh-university-libraries/orphaeval/internal/eval/metrics"
	"github.com/lehigh-university-libraries/orphaeval/internal/eval/results"
)

// Scenario names, also used as result folder names
const (
	ScenarioFirstOnly  = "wikidata_first_only"
	ScenarioSecondOnly = "wikidata_second_only"
	ScenarioFull       = "wikidata_full"
	ScenarioGCT        = "gct"
)

// resultsJSONFile is the machine readable run summary next to summary.yaml
const resultsJSONFile = "results.json"

type scenario struct {
	name  string
	alias string
	// degree restricts candidate rows to one link degree, empty keeps all rows
	degree string
	// translations switches the candidate side to machine translations
	translations bool
}

var allScenarios = []scenario{
	{name: ScenarioFirstOnly, alias: "first", degree: labels.DegreeFirst},
	{name: ScenarioSecondOnly, alias: "second", degree: labels.DegreeSecond},
	{name: ScenarioFull, alias: "full"},
	{name: ScenarioGCT, alias: "gct", translations: true},
}

// resolveScenarios maps names or aliases to scenarios, in run order.
// An empty list selects every scenario.
func resolveScenarios(names []string, noGCT bool) ([]scenario, error) {
	selected := make(map[string]bool)
	for _, n := range names {
		found := false
		for _, sc := range allScenarios {
			if n == sc.name || n == sc.alias {
				selected[sc.name] = true
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown scenario: %s (supported: first, second, full, gct)", n)
		}
	}

	var out []scenario
	for _, sc := range allScenarios {
		if len(selected) > 0 && !selected[sc.name] {
			continue
		}
		if sc.translations && noGCT {
			continue
		}
		out = append(out, sc)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no scenario selected")
	}
	return out, nil
}

// inputs holds everything loaded from the data folder
type inputs struct {
	gold         *labels.Table
	candidates   *dataset.Candidates
	translations *dataset.Translations
}

// loadInputs loads the gold table and whichever candidate sources the scenarios need.
// A missing translations file drops the gct scenario with a warning.
func loadInputs(opts RunOptions, scenarios []scenario) (*inputs, []scenario, error) {
	gold, err := dataset.LoadOrphanet(opts.DataFolder, labels.Supported)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load gold labels: %w", err)
	}
	in := &inputs{gold: gold}

	var kept []scenario
	for _, sc := range scenarios {
		switch {
		case sc.translations && in.translations == nil:
			if _, err := os.Stat(opts.Translations); errors.Is(err, fs.ErrNotExist) {
				slog.Warn("Translations file not found, skipping scenario", "scenario", sc.name, "path", opts.Translations)
				continue
			}
			slog.Info("Loading translations...", "path", opts.Translations)
			in.translations, err = dataset.LoadTranslations(opts.Translations)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to load translations: %w", err)
			}
		case !sc.translations && in.candidates == nil:
			slog.Info("Loading candidates...", "path", opts.Candidates, "sample", opts.Sample)
			loader := dataset.NewLoader(opts.Candidates)
			if opts.Sample > 0 {
				in.candidates, err = loader.LoadSample(opts.Sample)
			} else {
				in.candidates, err = loader.Load()
			}
			if err != nil {
				return nil, nil, fmt.Errorf("failed to load candidates: %w", err)
			}
			slog.Info("Candidates loaded", "rows", len(in.candidates.Rows), "languages", in.candidates.Languages)
		}
		kept = append(kept, sc)
	}

	if len(kept) == 0 {
		return nil, nil, fmt.Errorf("no scenario left to evaluate")
	}
	return in, kept, nil
}

// alignScenario builds the aligned table of a scenario and the gold table it is measured against
func alignScenario(in *inputs, sc scenario, mode linkage.JoinMode) (*labels.Table, *labels.Table, error) {
	if sc.translations {
		// translations are produced from the English names, so English gold is
		// not scored. Coverage still counts against the full gold table.
		gold := in.gold.WithoutGold(labels.English)
		aligned, err := linkage.Align(gold, linkage.Reaggregate(in.translations.Records), in.translations.Languages, mode)
		if err != nil {
			return nil, nil, err
		}
		return aligned, in.gold, nil
	}

	rows := in.candidates.Rows
	if sc.degree != "" {
		rows = linkage.FilterDegree(rows, sc.degree)
	}
	records := linkage.Aggregate(linkage.NormalizeRows(rows))
	aligned, err := linkage.Align(in.gold, records, in.candidates.Languages, mode)
	if err != nil {
		return nil, nil, err
	}
	return aligned, in.gold, nil
}

// evaluateScenario computes coverage, synonym counts and scores for one scenario.
// Score columns are appended to the returned table.
func evaluateScenario(in *inputs, sc scenario, scorer *metrics.Scorer, mode linkage.JoinMode) (*metrics.ScenarioResult, *labels.Table, error) {
	startTime := time.Now()

	aligned, gold, err := alignScenario(in, sc, mode)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to align %s: %w", sc.name, err)
	}
	slog.Info("Aligned scenario", "scenario", sc.name, "records", len(aligned.Records), "languages", aligned.Languages)

	result := &metrics.ScenarioResult{
		Scenario:       sc.name,
		Records:        len(aligned.Records),
		Languages:      aligned.Languages,
		Coverage:       metrics.ComputeCoverage(gold, aligned),
		Synonyms:       metrics.CountSynonyms(aligned),
		EvaluationDate: startTime,
	}

	result.Metrics, err = scorer.Score(aligned)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to score %s: %w", sc.name, err)
	}

	result.ProcessingTime = time.Since(startTime)
	return result, aligned, nil
}

// writeScenario writes the text reports, tables and plots of one scenario into dir
func writeScenario(ctx context.Context, dir string, opts RunOptions, result *metrics.ScenarioResult, aligned *labels.Table) error {
	if err := results.WriteReport(dir, results.CoverageReportName, result.Coverage); err != nil {
		return err
	}
	if err := results.WriteReport(dir, results.SynonymReportName, result.Synonyms); err != nil {
		return err
	}
	for _, m := range result.Metrics {
		if err := results.WriteReport(dir, m.Metric, m); err != nil {
			return err
		}
	}

	for _, format := range opts.Formats {
		name, err := results.TableFileName(format)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, name)
		switch format {
		case results.FormatCSV:
			err = results.WriteTableCSV(path, aligned)
		case results.FormatParquet:
			err = results.WriteScoresParquet(path, aligned)
		case results.FormatSQLite:
			err = results.WriteSQLite(ctx, path, aligned)
		}
		if err != nil {
			return err
		}
		slog.Debug("Wrote score table", "format", format, "path", path)
	}

	if opts.Histograms {
		written, err := results.SaveHistograms(filepath.Join(dir, "histograms"), aligned)
		if err != nil {
			return err
		}
		slog.Debug("Wrote histograms", "count", len(written))
	}
	return nil
}

// validateOutputs rejects unknown formats before any work is done
func validateOutputs(formats []string) error {
	for _, f := range formats {
		if _, err := results.TableFileName(f); err != nil {
			return err
		}
	}
	return nil
}

func executeRun(ctx context.Context, opts RunOptions, out io.Writer) error {
	slog.Info("Starting evaluation run", "data", opts.DataFolder, "results", opts.ResultsFolder, "metrics", opts.Metrics)

	// configuration errors surface before anything is loaded
	normalizer, err := metrics.GetNormalizer(opts.Normalize)
	if err != nil {
		return err
	}
	scorer, err := metrics.NewScorer(opts.Metrics, metrics.WithNormalizer(normalizer), metrics.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	mode, err := linkage.ParseJoinMode(opts.Join)
	if err != nil {
		return err
	}
	if err := validateOutputs(opts.Formats); err != nil {
		return err
	}
	if opts.Sample < 0 {
		return fmt.Errorf("sample must be zero or positive, got %d", opts.Sample)
	}
	scenarios, err := resolveScenarios(opts.Scenarios, opts.NoGCT)
	if err != nil {
		return err
	}

	in, scenarios, err := loadInputs(opts, scenarios)
	if err != nil {
		return err
	}

	summary := results.NewRunSummary(results.RunConfig{
		DataFolder:    opts.DataFolder,
		ResultsFolder: opts.ResultsFolder,
		Candidates:    opts.Candidates,
		Translations:  opts.Translations,
		Metrics:       scorer.Metrics(),
		Normalize:     opts.Normalize,
		Join:          mode.String(),
	})

	var scenarioResults []*metrics.ScenarioResult
	for i, sc := range scenarios {
		select {
		case <-ctx.Done():
			return fmt.Errorf("evaluation interrupted: %w", ctx.Err())
		default:
		}

		slog.Info("Evaluating scenario", "scenario", sc.name, "progress", fmt.Sprintf("%d/%d", i+1, len(scenarios)))
		result, aligned, err := evaluateScenario(in, sc, scorer, mode)
		if err != nil {
			return err
		}

		dir := filepath.Join(opts.ResultsFolder, sc.name)
		if err := writeScenario(ctx, dir, opts, result, aligned); err != nil {
			return fmt.Errorf("failed to write %s results: %w", sc.name, err)
		}

		summary.Config.Scenarios = append(summary.Config.Scenarios, sc.name)
		summary.AddScenario(result)
		scenarioResults = append(scenarioResults, result)
	}

	path, err := results.SaveSummary(opts.ResultsFolder, summary)
	if err != nil {
		return err
	}

	agg := metrics.AggregateScenarioResults(summary.Config.RunID, scenarioResults)
	if err := agg.SaveToJSON(filepath.Join(opts.ResultsFolder, resultsJSONFile)); err != nil {
		return err
	}
	agg.PrintSummary(out)

	fmt.Fprintf(out, "\nResults saved to: %s\n", opts.ResultsFolder)
	fmt.Fprintf(out, "Summary: %s\n", path)
	fmt.Fprintf(out, "\nGenerate a report with:\n")
	fmt.Fprintf(out, "  orphaeval eval report --results %s\n", opts.ResultsFolder)

	return nil
}

// scenarioNames lists the accepted scenario names
func scenarioNames() []string {
	names := make([]string, 0, len(allScenarios))
	for _, sc := range allScenarios {
		names = append(names, sc.name)
	}
	return names
}
