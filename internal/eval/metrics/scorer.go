package metrics

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/lehigh-university-libraries/orphaeval/internal/eval/labels"
)

// Policy names, in report order
const (
	PolicyLabel         = "label"
	PolicyBestLabel     = "best_label"
	PolicyMeanBestLabel = "mean_best_label"
	PolicyMaxBestLabel  = "max_best_label"
)

// Policies lists every scoring policy in report order
var Policies = []string{PolicyLabel, PolicyBestLabel, PolicyMeanBestLabel, PolicyMaxBestLabel}

// PolicyFunc scores one entity in one language
type PolicyFunc func(f labels.Fields, sim Similarity) labels.Score

var policyFuncs = map[string]PolicyFunc{
	PolicyLabel:         ScoreLabel,
	PolicyBestLabel:     ScoreBestLabel,
	PolicyMeanBestLabel: ScoreMeanBestLabel,
	PolicyMaxBestLabel:  ScoreMaxBestLabel,
}

// ColumnName builds the score<Metric><Lang><Policy> column name
func ColumnName(metric string, lang labels.Language, policy string) string {
	return "score" + labels.Capitalize(metric) + lang.Title() + labels.Capitalize(policy)
}

func scorable(f labels.Fields) bool {
	return f.HasLabel() && f.HasGoldLabel()
}

// bestMatch is the highest similarity between target and any candidate
func bestMatch(target string, candidates labels.Set, sim Similarity) float64 {
	best := 0.0
	for i, c := range candidates {
		s := sim(target, c)
		if i == 0 || s > best {
			best = s
		}
	}
	return best
}

// perGoldMaxima returns, for the gold name and every gold synonym, its best
// match among the candidate labels and aliases.
func perGoldMaxima(f labels.Fields, sim Similarity) []float64 {
	candidates := f.Label.Union(f.Alt)
	gold := labels.NewSet(f.GoldLabel).Union(f.GoldAlt)
	maxima := make([]float64, 0, len(gold))
	for _, g := range gold {
		maxima = append(maxima, bestMatch(g, candidates, sim))
	}
	return maxima
}

// ScoreLabel compares the gold name with the candidate labels only.
func ScoreLabel(f labels.Fields, sim Similarity) labels.Score {
	if !scorable(f) {
		return labels.Undefined
	}
	return labels.Defined(bestMatch(f.GoldLabel, f.Label, sim))
}

// ScoreBestLabel compares the gold name with candidate labels and aliases.
func ScoreBestLabel(f labels.Fields, sim Similarity) labels.Score {
	if !scorable(f) {
		return labels.Undefined
	}
	return labels.Defined(bestMatch(f.GoldLabel, f.Label.Union(f.Alt), sim))
}

// ScoreMeanBestLabel averages the best match of every gold string.
func ScoreMeanBestLabel(f labels.Fields, sim Similarity) labels.Score {
	if !scorable(f) {
		return labels.Undefined
	}
	return labels.Defined(Mean(perGoldMaxima(f, sim)))
}

// ScoreMaxBestLabel keeps the best match over all gold strings.
func ScoreMaxBestLabel(f labels.Fields, sim Similarity) labels.Score {
	if !scorable(f) {
		return labels.Undefined
	}
	best := 0.0
	for _, m := range perGoldMaxima(f, sim) {
		best = max(best, m)
	}
	return labels.Defined(best)
}

// Option configures a Scorer
type Option func(*Scorer)

// WithNormalizer rewrites every label before comparison
func WithNormalizer(n Normalizer) Option {
	return func(s *Scorer) {
		if n != nil {
			s.normalize = n
		}
	}
}

// WithLogger sets the logger used for progress messages
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scorer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Scorer computes similarity scores for a fixed list of metrics
type Scorer struct {
	metrics   []string
	sims      map[string]Similarity
	normalize Normalizer
	logger    *slog.Logger
}

// NewScorer validates metric names against the allow-list. An empty list
// selects DefaultMetrics.
func NewScorer(names []string, opts ...Option) (*Scorer, error) {
	if len(names) == 0 {
		names = DefaultMetrics
	}

	s := &Scorer{
		sims:      make(map[string]Similarity, len(names)),
		normalize: NormalizeNone,
		logger:    slog.Default(),
	}

	var unknown []string
	for _, name := range names {
		if _, dup := s.sims[name]; dup {
			continue
		}
		sim, ok := LookupMetric(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		s.sims[name] = sim
		s.metrics = append(s.metrics, name)
	}
	if len(unknown) > 0 {
		return nil, &UnknownMetricError{Names: unknown}
	}

	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Metrics returns the configured metric names in order
func (s *Scorer) Metrics() []string {
	return append([]string(nil), s.metrics...)
}

// ScoredLanguages lists the languages of t that carry both candidate and gold labels
func ScoredLanguages(t *labels.Table) []labels.Language {
	var langs []labels.Language
	for _, l := range labels.SortLanguages(t.Languages) {
		if t.HasGoldLanguage(l) {
			langs = append(langs, l)
		}
	}
	return langs
}

// Score appends one column per metric, language and policy to t and returns
// one report per metric.
func (s *Scorer) Score(t *labels.Table) ([]*MetricReport, error) {
	langs := ScoredLanguages(t)
	reports := make([]*MetricReport, 0, len(s.metrics))

	for _, metric := range s.metrics {
		sim := s.normalized(s.sims[metric])
		report := &MetricReport{Metric: metric}

		for _, lang := range langs {
			result := LanguageResult{Lang: lang}
			for _, policy := range Policies {
				col := labels.ScoreColumn{
					Name:   ColumnName(metric, lang, policy),
					Metric: metric,
					Lang:   lang,
					Policy: policy,
					Values: make([]labels.Score, len(t.Records)),
				}
				score := policyFuncs[policy]
				for i, r := range t.Records {
					col.Values[i] = score(r.Lang(lang), sim)
				}
				if err := t.AddScores(col); err != nil {
					return nil, fmt.Errorf("failed to add scores for %s: %w", col.Name, err)
				}

				defined := col.Defined()
				result.Policies = append(result.Policies, PolicyMean{
					Policy: policy,
					Mean:   Mean(defined),
					Count:  len(defined),
				})
			}
			report.Languages = append(report.Languages, result)

			s.logger.Debug("Scored language", "metric", metric, "lang", lang, "rows", len(t.Records))
		}

		s.logger.Info("Computed metric", "metric", metric, "languages", len(langs))
		reports = append(reports, report)
	}

	return reports, nil
}

func (s *Scorer) normalized(sim Similarity) Similarity {
	n := s.normalize
	return func(a, b string) float64 {
		return sim(n(a), n(b))
	}
}

// PolicyMean is the mean score of one policy over the defined rows
type PolicyMean struct {
	Policy string  `json:"policy" yaml:"policy"`
	Mean   float64 `json:"mean" yaml:"mean"`
	Count  int     `json:"count" yaml:"count"`
}

// LanguageResult groups the policy means of one language
type LanguageResult struct {
	Lang     labels.Language `json:"lang" yaml:"lang"`
	Policies []PolicyMean    `json:"policies" yaml:"policies"`
}

// MetricReport holds the means computed for one metric
type MetricReport struct {
	Metric    string           `json:"metric" yaml:"metric"`
	Languages []LanguageResult `json:"languages" yaml:"languages"`
}

// Mean returns the mean for lang and policy
func (r *MetricReport) Mean(lang labels.Language, policy string) (float64, bool) {
	for _, l := range r.Languages {
		if l.Lang != lang {
			continue
		}
		for _, p := range l.Policies {
			if p.Policy == policy {
				return p.Mean, true
			}
		}
	}
	return 0, false
}

// WriteTo renders the text report
func (r *MetricReport) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Results computed with the %s metric.\n", r.Metric)
	for _, l := range r.Languages {
		fmt.Fprintf(&buf, "Result in %s:\n", l.Lang.Title())
		for _, p := range l.Policies {
			fmt.Fprintf(&buf, "\t%s: %s\n", p.Policy, FormatFloat(p.Mean))
		}
	}
	n, err := w.Write(buf.Bytes())
	return int64(n), err
}
