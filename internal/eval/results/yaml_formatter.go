package results

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/orphaeval/internal/eval/metrics"
	"gopkg.in/yaml.v3"
)

// SummaryFileName is written at the root of the results folder
const SummaryFileName = "summary.yaml"

// RunConfig represents the configuration section of the summary YAML
type RunConfig struct {
	RunID         string   `yaml:"runid" json:"run_id"`
	Timestamp     string   `yaml:"timestamp" json:"timestamp"`
	DataFolder    string   `yaml:"datafolder" json:"data_folder"`
	ResultsFolder string   `yaml:"resultsfolder" json:"results_folder"`
	Candidates    string   `yaml:"candidates" json:"candidates"`
	Translations  string   `yaml:"translations,omitempty" json:"translations,omitempty"`
	Metrics       []string `yaml:"metrics" json:"metrics"`
	Scenarios     []string `yaml:"scenarios" json:"scenarios"`
	Normalize     string   `yaml:"normalize" json:"normalize"`
	Join          string   `yaml:"join" json:"join"`
}

// PolicyScore is the mean of one policy. Mean is nil when no row was scored.
type PolicyScore struct {
	Policy string   `yaml:"policy" json:"policy"`
	Mean   *float64 `yaml:"mean" json:"mean"`
	Count  int      `yaml:"count" json:"count"`
}

// LanguageScores groups the policy means of one language
type LanguageScores struct {
	Lang     string        `yaml:"lang" json:"lang"`
	Policies []PolicyScore `yaml:"policies" json:"policies"`
}

// MetricScores holds the means of one metric
type MetricScores struct {
	Metric    string           `yaml:"metric" json:"metric"`
	Languages []LanguageScores `yaml:"languages" json:"languages"`
}

// CoverageEntry is the coverage of one language
type CoverageEntry struct {
	Lang           string   `yaml:"lang" json:"lang"`
	GoldCount      int      `yaml:"goldcount" json:"gold_count"`
	CandidateCount int      `yaml:"candidatecount" json:"candidate_count"`
	Ratio          *float64 `yaml:"ratio" json:"ratio"`
}

// SynonymEntry holds the label count averages of one language
type SynonymEntry struct {
	Lang           string   `yaml:"lang" json:"lang"`
	Ontology       *float64 `yaml:"ontology" json:"ontology"`
	OntologySubset *float64 `yaml:"ontologysubset" json:"ontology_subset"`
	Candidates     *float64 `yaml:"candidates" json:"candidates"`
}

// ScenarioSummary is everything reported for one scenario
type ScenarioSummary struct {
	Name           string          `yaml:"name" json:"name"`
	Records        int             `yaml:"records" json:"records"`
	Languages      []string        `yaml:"languages" json:"languages"`
	ProcessingTime string          `yaml:"processingtime" json:"processing_time"`
	Coverage       []CoverageEntry `yaml:"coverage" json:"coverage"`
	Synonyms       []SynonymEntry  `yaml:"synonyms" json:"synonyms"`
	Metrics        []MetricScores  `yaml:"metrics" json:"metrics"`
}

// RunSummary represents a complete evaluation run
type RunSummary struct {
	Config    RunConfig         `yaml:"config" json:"config"`
	Scenarios []ScenarioSummary `yaml:"scenarios" json:"scenarios"`
}

// NewRunSummary starts a summary for config, assigning a run id and timestamp when missing
func NewRunSummary(config RunConfig) *RunSummary {
	if config.RunID == "" {
		config.RunID = uuid.NewString()
	}
	if config.Timestamp == "" {
		config.Timestamp = time.Now().Format("2006-01-02_15-04-05")
	}
	return &RunSummary{Config: config}
}

func optionalFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// AddScenario converts a scenario result into its summary form
func (s *RunSummary) AddScenario(r *metrics.ScenarioResult) {
	summary := ScenarioSummary{
		Name:           r.Scenario,
		Records:        r.Records,
		ProcessingTime: r.ProcessingTime.String(),
	}
	for _, l := range r.Languages {
		summary.Languages = append(summary.Languages, string(l))
	}

	if r.Coverage != nil {
		for _, c := range r.Coverage.Languages {
			summary.Coverage = append(summary.Coverage, CoverageEntry{
				Lang:           string(c.Lang),
				GoldCount:      c.GoldCount,
				CandidateCount: c.CandidateCount,
				Ratio:          optionalFloat(c.Ratio),
			})
		}
	}

	if r.Synonyms != nil {
		for _, syn := range r.Synonyms.Languages {
			summary.Synonyms = append(summary.Synonyms, SynonymEntry{
				Lang:           string(syn.Lang),
				Ontology:       optionalFloat(syn.Ontology),
				OntologySubset: optionalFloat(syn.OntologySubset),
				Candidates:     optionalFloat(syn.Candidates),
			})
		}
	}

	for _, m := range r.Metrics {
		scores := MetricScores{Metric: m.Metric}
		for _, l := range m.Languages {
			ls := LanguageScores{Lang: string(l.Lang)}
			for _, p := range l.Policies {
				ls.Policies = append(ls.Policies, PolicyScore{
					Policy: p.Policy,
					Mean:   optionalFloat(p.Mean),
					Count:  p.Count,
				})
			}
			scores.Languages = append(scores.Languages, ls)
		}
		summary.Metrics = append(summary.Metrics, scores)
	}

	s.Scenarios = append(s.Scenarios, summary)
}

// Scenario returns the summary of the named scenario
func (s *RunSummary) Scenario(name string) (ScenarioSummary, bool) {
	for _, sc := range s.Scenarios {
		if sc.Name == name {
			return sc, true
		}
	}
	return ScenarioSummary{}, false
}

// SaveSummary writes the summary YAML into dir and returns its path
func SaveSummary(dir string, s *RunSummary) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create results directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	path := filepath.Join(dir, SummaryFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	return path, nil
}

// LoadSummary reads the summary YAML from dir
func LoadSummary(dir string) (*RunSummary, error) {
	path := filepath.Join(dir, SummaryFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open summary file: %w", err)
	}

	var s RunSummary
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode summary: %w", err)
	}

	return &s, nil
}
