package dataset

import (
	"github.com/lehigh-university-libraries/orphaeval/internal/eval/labels"
)

// CandidateRecord is one harvested Wikidata row as stored in the
// knowledge-graph export (full_data_df). Label columns are optional: a null
// cell means Wikidata had nothing for that language.
type CandidateRecord struct {
	// Orpha number the Wikidata entity links to
	ValueProperty string `json:"value_property" parquet:"value_property"`

	// "First" for direct ORDO links, "Second" for links through external ontologies
	SourceDegree *string `json:"source_degree" parquet:"source_degree,optional"`

	LabelEn *string `json:"labelEn" parquet:"labelEn,optional"`
	AltEn   *string `json:"altEn" parquet:"altEn,optional"`
	LabelFr *string `json:"labelFr" parquet:"labelFr,optional"`
	AltFr   *string `json:"altFr" parquet:"altFr,optional"`
	LabelDe *string `json:"labelDe" parquet:"labelDe,optional"`
	AltDe   *string `json:"altDe" parquet:"altDe,optional"`
	LabelEs *string `json:"labelEs" parquet:"labelEs,optional"`
	AltEs   *string `json:"altEs" parquet:"altEs,optional"`
	LabelPl *string `json:"labelPl" parquet:"labelPl,optional"`
	AltPl   *string `json:"altPl" parquet:"altPl,optional"`
	LabelIt *string `json:"labelIt" parquet:"labelIt,optional"`
	AltIt   *string `json:"altIt" parquet:"altIt,optional"`
	LabelPt *string `json:"labelPt" parquet:"labelPt,optional"`
	AltPt   *string `json:"altPt" parquet:"altPt,optional"`
	LabelNl *string `json:"labelNl" parquet:"labelNl,optional"`
	AltNl   *string `json:"altNl" parquet:"altNl,optional"`
	LabelCs *string `json:"labelCs" parquet:"labelCs,optional"`
	AltCs   *string `json:"altCs" parquet:"altCs,optional"`
}

// LabelColumn returns the candidate label column name for l ("labelEn")
func LabelColumn(l labels.Language) string {
	return "label" + l.Title()
}

// AltColumn returns the candidate alias column name for l ("altEn")
func AltColumn(l labels.Language) string {
	return "alt" + l.Title()
}

func (r *CandidateRecord) fields() map[labels.Language][2]*string {
	return map[labels.Language][2]*string{
		labels.English:    {r.LabelEn, r.AltEn},
		labels.French:     {r.LabelFr, r.AltFr},
		labels.German:     {r.LabelDe, r.AltDe},
		labels.Spanish:    {r.LabelEs, r.AltEs},
		labels.Polish:     {r.LabelPl, r.AltPl},
		labels.Italian:    {r.LabelIt, r.AltIt},
		labels.Portuguese: {r.LabelPt, r.AltPt},
		labels.Dutch:      {r.LabelNl, r.AltNl},
		labels.Czech:      {r.LabelCs, r.AltCs},
	}
}

// Row converts the record into a raw candidate row restricted to langs
func (r *CandidateRecord) Row(langs []labels.Language) labels.CandidateRow {
	row := labels.CandidateRow{
		Key:    r.ValueProperty,
		Fields: make(map[labels.Language]labels.RawFields, len(langs)),
	}
	if r.SourceDegree != nil {
		row.Degree = *r.SourceDegree
	}
	cells := r.fields()
	for _, l := range langs {
		pair := cells[l]
		row.Fields[l] = labels.RawFields{Label: optional(pair[0]), Alt: optional(pair[1])}
	}
	return row
}

func optional(s *string) labels.Value {
	if s == nil {
		return labels.Value{}
	}
	return labels.Some(*s)
}

// ExternalReference maps an Orphanet entity to an identifier in another ontology
type ExternalReference struct {
	ValueProperty string `json:"value_property" parquet:"value_property"` // Orpha number
	IDAuxiliary   string `json:"id_auxiliary" parquet:"id_auxiliary"`     // identifier in the external ontology
	NameAuxiliary string `json:"name_auxiliary" parquet:"name_auxiliary"` // ontology name (OMIM, MeSH, ...)
}
