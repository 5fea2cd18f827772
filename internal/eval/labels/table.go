package labels

import (
	"fmt"
	"math"
)

// Score is an optional similarity score. Undefined rows are excluded from means.
type Score struct {
	Value float64
	Valid bool
}

// Undefined marks a row where either side has no data
var Undefined = Score{}

// Defined wraps a computed score
func Defined(v float64) Score {
	return Score{Value: v, Valid: true}
}

// Float returns the value, or NaN when undefined
func (s Score) Float() float64 {
	if !s.Valid {
		return math.NaN()
	}
	return s.Value
}

// ScoreColumn is one score<Metric><Lang><Policy> column appended by the scorer
type ScoreColumn struct {
	Name   string
	Metric string
	Lang   Language
	Policy string
	Values []Score // aligned with Table.Records
}

// Defined returns the valid values of the column
func (c ScoreColumn) Defined() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if v.Valid {
			out = append(out, v.Value)
		}
	}
	return out
}

// Table is the aligned gold/candidate table
type Table struct {
	Records []Record

	// Languages with a candidate label column
	Languages []Language

	// GoldLanguages with gold label columns
	GoldLanguages []Language

	Scores []ScoreColumn
}

// Index maps record ids to their position
func (t *Table) Index() map[string]int {
	idx := make(map[string]int, len(t.Records))
	for i, r := range t.Records {
		idx[r.ID] = i
	}
	return idx
}

// HasLanguage reports whether the table carries candidate labels for l
func (t *Table) HasLanguage(l Language) bool {
	return containsLanguage(t.Languages, l)
}

// HasGoldLanguage reports whether the table carries gold labels for l
func (t *Table) HasGoldLanguage(l Language) bool {
	return containsLanguage(t.GoldLanguages, l)
}

// Column returns the score column with the given name
func (t *Table) Column(name string) (ScoreColumn, bool) {
	for _, c := range t.Scores {
		if c.Name == name {
			return c, true
		}
	}
	return ScoreColumn{}, false
}

// AddScores appends a score column. Values must line up with Records.
func (t *Table) AddScores(col ScoreColumn) error {
	if len(col.Values) != len(t.Records) {
		return fmt.Errorf("score column %s has %d values for %d records", col.Name, len(col.Values), len(t.Records))
	}
	if _, exists := t.Column(col.Name); exists {
		return fmt.Errorf("score column %s already exists", col.Name)
	}
	t.Scores = append(t.Scores, col)
	return nil
}

// WithoutGold returns a shallow copy of t with the gold labels of l removed
func (t *Table) WithoutGold(l Language) *Table {
	out := &Table{
		Records:   make([]Record, len(t.Records)),
		Languages: t.Languages,
	}
	for _, g := range t.GoldLanguages {
		if g != l {
			out.GoldLanguages = append(out.GoldLanguages, g)
		}
	}
	for i, r := range t.Records {
		copied := NewRecord(r.ID)
		for lang, f := range r.Fields {
			if lang == l {
				f.GoldLabel = ""
				f.GoldAlt = nil
			}
			copied.Fields[lang] = f
		}
		out.Records[i] = copied
	}
	return out
}

func containsLanguage(langs []Language, l Language) bool {
	for _, x := range langs {
		if x == l {
			return true
		}
	}
	return false
}
