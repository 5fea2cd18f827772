package metrics

import (
	"sort"
)

// Similarity scores two labels between 0.0 (nothing in common) and 1.0 (identical)
type Similarity func(a, b string) float64

// Family groups the supported algorithms
type Family string

const (
	FamilyEdit      Family = "edit"
	FamilyToken     Family = "token"
	FamilyAlignment Family = "alignment"
)

type metricEntry struct {
	family Family
	fn     Similarity
}

// registry is the allow-list of scoring functions
var registry = map[string]metricEntry{
	// Edit based
	"levenshtein":         {FamilyEdit, levenshteinSimilarity},
	"damerau_levenshtein": {FamilyEdit, damerauLevenshteinSimilarity},
	"jaro":                {FamilyEdit, jaroSimilarity},
	"jaro_winkler":        {FamilyEdit, jaroWinklerSimilarity},
	"strcmp95":            {FamilyEdit, strcmp95Similarity},
	"lcsseq":              {FamilyEdit, lcsSeqSimilarity},
	"lcsstr":              {FamilyEdit, lcsStrSimilarity},
	"ratcliff_obershelp":  {FamilyEdit, ratcliffObershelpSimilarity},
	"identity":            {FamilyEdit, identitySimilarity},

	// Token based, over rune multisets
	"jaccard":       {FamilyToken, jaccardSimilarity},
	"sorensen":      {FamilyToken, sorensenSimilarity},
	"sorensen_dice": {FamilyToken, sorensenSimilarity},
	"tversky":       {FamilyToken, tverskySimilarity},
	"tanimoto":      {FamilyToken, tanimotoSimilarity},
	"overlap":       {FamilyToken, overlapSimilarity},
	"cosine":        {FamilyToken, cosineSimilarity},
	"monge_elkan":   {FamilyToken, mongeElkanSimilarity},

	// Sequence alignment
	"needleman_wunsch": {FamilyAlignment, needlemanWunschSimilarity},
	"gotoh":            {FamilyAlignment, gotohSimilarity},
	"smith_waterman":   {FamilyAlignment, smithWatermanSimilarity},
}

// DefaultMetrics is used when no metric is requested
var DefaultMetrics = []string{"jaro"}

// LookupMetric returns the similarity function registered under name
func LookupMetric(name string) (Similarity, bool) {
	entry, ok := registry[name]
	if !ok {
		return nil, false
	}
	return guard(entry.fn), true
}

// MetricFamily returns the family of a registered metric
func MetricFamily(name string) (Family, bool) {
	entry, ok := registry[name]
	return entry.family, ok
}

// MetricNames lists the supported metrics in alphabetical order
func MetricNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// guard answers the trivial cases the same way for every algorithm and
// clamps the result into [0, 1].
func guard(fn Similarity) Similarity {
	return func(a, b string) float64 {
		if a == b {
			return 1.0
		}
		if a == "" || b == "" {
			return 0.0
		}
		return min(max(fn(a, b), 0.0), 1.0)
	}
}

func identitySimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	return 0.0
}
