package metrics

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/lehigh-university-libraries/orphaeval/internal/eval/labels"
)

// LanguageCoverage counts labeled entities on both sides for one language
type LanguageCoverage struct {
	Lang           labels.Language `json:"lang" yaml:"lang"`
	GoldCount      int             `json:"gold_count" yaml:"gold_count"`
	CandidateCount int             `json:"candidate_count" yaml:"candidate_count"`
	Ratio          float64         `json:"-" yaml:"-"`
}

// CoverageReport is the per-language coverage of the gold ontology
type CoverageReport struct {
	Languages []LanguageCoverage `json:"languages" yaml:"languages"`
}

// ComputeCoverage counts, per candidate language, the gold entities with a
// name and the aligned entities with at least one candidate label.
// A language without gold names gets a NaN ratio.
func ComputeCoverage(gold, aligned *labels.Table) *CoverageReport {
	goldIndex := gold.Index()
	report := &CoverageReport{}

	for _, lang := range labels.SortLanguages(aligned.Languages) {
		c := LanguageCoverage{Lang: lang}

		for _, r := range gold.Records {
			if r.Lang(lang).HasGoldLabel() {
				c.GoldCount++
			}
		}
		for _, r := range aligned.Records {
			if _, ok := goldIndex[r.ID]; !ok {
				continue
			}
			if r.Lang(lang).HasLabel() {
				c.CandidateCount++
			}
		}

		if c.GoldCount == 0 {
			c.Ratio = math.NaN()
		} else {
			c.Ratio = float64(c.CandidateCount) / float64(c.GoldCount)
		}
		report.Languages = append(report.Languages, c)
	}

	return report
}

// Lang returns the coverage for l
func (r *CoverageReport) Lang(l labels.Language) (LanguageCoverage, bool) {
	for _, c := range r.Languages {
		if c.Lang == l {
			return c, true
		}
	}
	return LanguageCoverage{}, false
}

// WriteTo renders the coverage text report
func (r *CoverageReport) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	for _, c := range r.Languages {
		fmt.Fprintf(&buf, "Coverage in %s: \n", c.Lang.Title())
		fmt.Fprintf(&buf, "%d with a label in Orphanet \n", c.GoldCount)
		fmt.Fprintf(&buf, "%d with a label from Wikidata\n", c.CandidateCount)
		fmt.Fprintf(&buf, "%s of entities have at least one label in Wikidata.\n", FormatFloat(c.Ratio))
	}
	n, err := w.Write(buf.Bytes())
	return int64(n), err
}
