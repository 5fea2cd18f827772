package linkage

import (
	"strings"

	"github.com/lehigh-university-libraries/orphaeval/internal/eval/labels"
)

// FilterDegree keeps rows harvested through the given link degree
func FilterDegree(rows []labels.CandidateRow, degree string) []labels.CandidateRow {
	var out []labels.CandidateRow
	for _, row := range rows {
		if row.Degree == degree {
			out = append(out, row)
		}
	}
	return out
}

// Aggregate merges rows sharing a key into one record per key.
//
// For each language the label and alt cells of all rows are concatenated
// with the separator, empty segments are dropped and the result is
// deduplicated. A field whose cells are all missing stays empty. Records
// come out in the order their key was first seen.
func Aggregate(rows []labels.CandidateRow) []labels.Record {
	order := make([]string, 0)
	labelParts := make(map[string]map[labels.Language][]string)
	altParts := make(map[string]map[labels.Language][]string)

	for _, row := range rows {
		if _, ok := labelParts[row.Key]; !ok {
			order = append(order, row.Key)
			labelParts[row.Key] = make(map[labels.Language][]string)
			altParts[row.Key] = make(map[labels.Language][]string)
		}
		for lang, f := range row.Fields {
			labelParts[row.Key][lang] = append(labelParts[row.Key][lang], cellText(f.Label))
			altParts[row.Key][lang] = append(altParts[row.Key][lang], cellText(f.Alt))
		}
	}

	records := make([]labels.Record, 0, len(order))
	for _, key := range order {
		record := labels.NewRecord(key)
		for lang, parts := range labelParts[key] {
			record.Set(lang, labels.Fields{
				Label: mergeValues(parts),
				Alt:   mergeValues(altParts[key][lang]),
			})
		}
		records = append(records, record)
	}
	return records
}

// Reaggregate runs the aggregator over already merged records
func Reaggregate(records []labels.Record) []labels.Record {
	rows := make([]labels.CandidateRow, 0, len(records))
	for _, r := range records {
		row := labels.CandidateRow{Key: r.ID, Fields: make(map[labels.Language]labels.RawFields)}
		for lang, f := range r.Fields {
			row.Fields[lang] = labels.RawFields{
				Label: setCell(f.Label),
				Alt:   setCell(f.Alt),
			}
		}
		rows = append(rows, row)
	}
	return Aggregate(rows)
}

// mergeValues joins the cells, drops empty segments and dedupes
func mergeValues(cells []string) labels.Set {
	joined := strings.Join(cells, labels.Separator)
	return labels.ParseSet(joined)
}

func cellText(v labels.Value) string {
	if !v.Valid {
		return ""
	}
	return v.String
}

func setCell(s labels.Set) labels.Value {
	if s.Empty() {
		return labels.Value{}
	}
	return labels.Some(s.String())
}
