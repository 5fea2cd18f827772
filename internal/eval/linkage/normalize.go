// Package linkage merges harvested Wikidata rows and links them to the
// Orphanet gold table on the Orpha number.
package linkage

import (
	"regexp"

	"github.com/lehigh-university-libraries/orphaeval/internal/eval/labels"
)

// Wikidata answers with the bare entity id (Q123) when an item has no
// label in the requested language.
var placeholderPattern = regexp.MustCompile(`^Q[0-9]+$`)

// IsPlaceholder reports whether v is a default Wikidata identifier
func IsPlaceholder(v string) bool {
	return placeholderPattern.MatchString(v)
}

// NormalizeValue returns raw when it is a real label, and false when the
// cell is empty or only holds a placeholder identifier.
func NormalizeValue(raw string) (string, bool) {
	if raw == "" || IsPlaceholder(raw) {
		return "", false
	}
	return raw, true
}

// NormalizeCell applies NormalizeValue to an optional cell
func NormalizeCell(v labels.Value) labels.Value {
	if !v.Valid {
		return labels.Value{}
	}
	s, ok := NormalizeValue(v.String)
	if !ok {
		return labels.Value{}
	}
	return labels.Some(s)
}

// NormalizeRow returns a copy of row with every label-bearing cell normalized
func NormalizeRow(row labels.CandidateRow) labels.CandidateRow {
	out := labels.CandidateRow{
		Key:    row.Key,
		Degree: row.Degree,
		Fields: make(map[labels.Language]labels.RawFields, len(row.Fields)),
	}
	for lang, f := range row.Fields {
		out.Fields[lang] = labels.RawFields{
			Label: NormalizeCell(f.Label),
			Alt:   NormalizeCell(f.Alt),
		}
	}
	return out
}

// NormalizeRows normalizes every row
func NormalizeRows(rows []labels.CandidateRow) []labels.CandidateRow {
	out := make([]labels.CandidateRow, len(rows))
	for i, row := range rows {
		out[i] = NormalizeRow(row)
	}
	return out
}
