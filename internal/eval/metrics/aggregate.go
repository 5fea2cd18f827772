package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/orphaeval/internal/eval/labels"
)

// ScenarioResult gathers everything computed for one evaluation scenario
type ScenarioResult struct {
	Scenario       string
	Records        int
	Languages      []labels.Language
	Coverage       *CoverageReport
	Synonyms       *SynonymReport
	Metrics        []*MetricReport
	ProcessingTime time.Duration
	EvaluationDate time.Time
}

// AggregateResults is the outcome of a full run across scenarios
type AggregateResults struct {
	RunID          string
	EvaluationDate time.Time
	Scenarios      []*ScenarioResult

	TotalProcessingTime time.Duration
}

// AggregateScenarioResults collects scenario results into one run summary
func AggregateScenarioResults(runID string, results []*ScenarioResult) *AggregateResults {
	agg := &AggregateResults{
		RunID:          runID,
		EvaluationDate: time.Now(),
		Scenarios:      results,
	}
	for _, r := range results {
		agg.TotalProcessingTime += r.ProcessingTime
	}
	return agg
}

// BestPolicy returns the policy with the highest mean for metric and lang
func (r *ScenarioResult) BestPolicy(metric string, lang labels.Language) (string, float64, bool) {
	for _, m := range r.Metrics {
		if m.Metric != metric {
			continue
		}
		bestPolicy, best, found := "", math.Inf(-1), false
		for _, policy := range Policies {
			mean, ok := m.Mean(lang, policy)
			if !ok || math.IsNaN(mean) {
				continue
			}
			if mean > best {
				bestPolicy, best, found = policy, mean, true
			}
		}
		return bestPolicy, best, found
	}
	return "", 0, false
}

// PrintSummary writes a human-readable summary of the run
func (a *AggregateResults) PrintSummary(w io.Writer) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 70))
	fmt.Fprintln(w, "ORPHANET LABEL EVALUATION SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "Run: %s\n", a.RunID)
	fmt.Fprintf(w, "Evaluation Date: %s\n", a.EvaluationDate.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Scenarios: %d\n", len(a.Scenarios))
	fmt.Fprintf(w, "Total Processing Time: %s\n", a.TotalProcessingTime)

	for _, s := range a.Scenarios {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "SCENARIO %s\n", strings.ToUpper(s.Scenario))
		fmt.Fprintln(w, strings.Repeat("-", 70))
		fmt.Fprintf(w, "Aligned Records: %d\n", s.Records)
		fmt.Fprintf(w, "Processing Time: %s\n", s.ProcessingTime)

		if s.Coverage != nil {
			for _, c := range s.Coverage.Languages {
				fmt.Fprintf(w, "  Coverage %s: %d/%d (%s)\n", c.Lang.Title(), c.CandidateCount, c.GoldCount, FormatFloat(c.Ratio))
			}
		}

		for _, m := range s.Metrics {
			fmt.Fprintf(w, "\n  %s:\n", m.Metric)
			for _, l := range m.Languages {
				fmt.Fprintf(w, "    %s:", l.Lang.Title())
				for _, p := range l.Policies {
					fmt.Fprintf(w, " %s=%s", p.Policy, formatPercent(p.Mean))
				}
				if policy, _, ok := s.BestPolicy(m.Metric, l.Lang); ok {
					fmt.Fprintf(w, " (best: %s)", policy)
				}
				fmt.Fprintln(w)
			}
		}
	}
	fmt.Fprintln(w, strings.Repeat("=", 70))
}

func formatPercent(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return fmt.Sprintf("%.2f%%", v*100)
}

// jsonFloat encodes NaN as null
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

type jsonPolicy struct {
	Policy string    `json:"policy"`
	Mean   jsonFloat `json:"mean"`
	Count  int       `json:"count"`
}

type jsonCoverage struct {
	Lang           labels.Language `json:"lang"`
	GoldCount      int             `json:"gold_count"`
	CandidateCount int             `json:"candidate_count"`
	Ratio          jsonFloat       `json:"ratio"`
}

type jsonSynonyms struct {
	Lang           labels.Language `json:"lang"`
	Ontology       jsonFloat       `json:"ontology"`
	OntologySubset jsonFloat       `json:"ontology_subset"`
	Candidates     jsonFloat       `json:"candidates"`
}

type jsonScenario struct {
	Scenario       string                             `json:"scenario"`
	Records        int                                `json:"records"`
	ProcessingTime string                             `json:"processing_time"`
	Coverage       []jsonCoverage                     `json:"coverage,omitempty"`
	Synonyms       []jsonSynonyms                     `json:"synonyms,omitempty"`
	Metrics        map[string]map[string][]jsonPolicy `json:"metrics"`
}

type jsonResults struct {
	RunID          string         `json:"run_id"`
	EvaluationDate time.Time      `json:"evaluation_date"`
	Scenarios      []jsonScenario `json:"scenarios"`
}

func (a *AggregateResults) toJSON() jsonResults {
	out := jsonResults{RunID: a.RunID, EvaluationDate: a.EvaluationDate}
	for _, s := range a.Scenarios {
		js := jsonScenario{
			Scenario:       s.Scenario,
			Records:        s.Records,
			ProcessingTime: s.ProcessingTime.String(),
			Metrics:        make(map[string]map[string][]jsonPolicy, len(s.Metrics)),
		}
		if s.Coverage != nil {
			for _, c := range s.Coverage.Languages {
				js.Coverage = append(js.Coverage, jsonCoverage{c.Lang, c.GoldCount, c.CandidateCount, jsonFloat(c.Ratio)})
			}
		}
		if s.Synonyms != nil {
			for _, syn := range s.Synonyms.Languages {
				js.Synonyms = append(js.Synonyms, jsonSynonyms{syn.Lang, jsonFloat(syn.Ontology), jsonFloat(syn.OntologySubset), jsonFloat(syn.Candidates)})
			}
		}
		for _, m := range s.Metrics {
			byLang := make(map[string][]jsonPolicy, len(m.Languages))
			for _, l := range m.Languages {
				for _, p := range l.Policies {
					byLang[string(l.Lang)] = append(byLang[string(l.Lang)], jsonPolicy{p.Policy, jsonFloat(p.Mean), p.Count})
				}
			}
			js.Metrics[m.Metric] = byLang
		}
		out.Scenarios = append(out.Scenarios, js)
	}
	return out
}

// SaveToJSON saves the aggregate results to a JSON file. Undefined means are written as null.
func (a *AggregateResults) SaveToJSON(filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(a.toJSON()); err != nil {
		return fmt.Errorf("failed to encode results to JSON: %w", err)
	}

	return nil
}
