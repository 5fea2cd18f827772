package metrics

import (
	"bytes"
	"fmt"
	"io"

	"github.com/lehigh-university-libraries/orphaeval/internal/eval/labels"
)

// DistinctLabelCount is the number of distinct names among label and its
// aliases. An entity without a label counts 0 whatever its aliases.
func DistinctLabelCount(label string, alt labels.Set) int {
	if label == "" {
		return 0
	}
	return len(labels.NewSet(label).Union(alt))
}

// LanguageSynonyms holds the three averages for one language
type LanguageSynonyms struct {
	Lang labels.Language `json:"lang" yaml:"lang"`

	// Gold names per entity over the whole ontology, entities without names excluded
	Ontology float64 `json:"-" yaml:"-"`
	// Gold names per entity restricted to entities with a candidate label
	OntologySubset float64 `json:"-" yaml:"-"`
	// Candidate names per entity over the same subset, zeros included
	Candidates float64 `json:"-" yaml:"-"`
}

// SynonymReport averages the number of names per entity
type SynonymReport struct {
	Languages []LanguageSynonyms
}

// CountSynonyms averages distinct names per entity for every candidate language
func CountSynonyms(t *labels.Table) *SynonymReport {
	report := &SynonymReport{}

	for _, lang := range labels.SortLanguages(t.Languages) {
		var all, subsetGold, subsetCandidates []float64
		for _, r := range t.Records {
			f := r.Lang(lang)
			goldCount := float64(DistinctLabelCount(f.GoldLabel, f.GoldAlt))
			all = append(all, goldCount)

			if !f.HasLabel() {
				continue
			}
			subsetGold = append(subsetGold, goldCount)
			subsetCandidates = append(subsetCandidates, float64(DistinctLabelCount(f.Label.String(), f.Alt)))
		}

		report.Languages = append(report.Languages, LanguageSynonyms{
			Lang:           lang,
			Ontology:       meanNonZero(all),
			OntologySubset: meanNonZero(subsetGold),
			Candidates:     Mean(subsetCandidates),
		})
	}

	return report
}

// Lang returns the averages for l
func (r *SynonymReport) Lang(l labels.Language) (LanguageSynonyms, bool) {
	for _, s := range r.Languages {
		if s.Lang == l {
			return s, true
		}
	}
	return LanguageSynonyms{}, false
}

// WriteTo renders the synonym text report
func (r *SynonymReport) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	for _, s := range r.Languages {
		lang := s.Lang.Title()
		fmt.Fprintf(&buf, "Average on the entire ontology in %s: %s\n", lang, FormatFloat(s.Ontology))
		fmt.Fprintf(&buf, "Average on the ontology on the subset with Wikidata labels in %s: %s\n", lang, FormatFloat(s.OntologySubset))
		fmt.Fprintf(&buf, "Average on Wikidata in %s: %s\n", lang, FormatFloat(s.Candidates))
	}
	n, err := w.Write(buf.Bytes())
	return int64(n), err
}
