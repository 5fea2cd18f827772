package labels

// Link degrees reported by the Wikidata harvester in source_degree
const (
	DegreeFirst  = "First"
	DegreeSecond = "Second"
)

// Value is an optional raw cell. Valid is false for null or missing cells.
type Value struct {
	String string
	Valid  bool
}

// Some wraps a present cell value
func Some(s string) Value {
	return Value{String: s, Valid: true}
}

// RawFields holds the candidate cells of one language before normalization
type RawFields struct {
	Label Value
	Alt   Value
}

// CandidateRow is a harvested row as loaded from disk.
// Several rows may share a Key; they are merged by the aggregator.
type CandidateRow struct {
	Key    string // value_property, the Orpha number the row maps to
	Degree string
	Fields map[Language]RawFields
}

// Fields holds the gold and candidate labels of one entity in one language
type Fields struct {
	GoldLabel string
	GoldAlt   Set
	Label     Set
	Alt       Set
}

// HasGoldLabel reports whether the entity has a gold name in this language
func (f Fields) HasGoldLabel() bool {
	return f.GoldLabel != ""
}

// HasLabel reports whether at least one candidate label exists
func (f Fields) HasLabel() bool {
	return !f.Label.Empty()
}

// Record is one entity keyed by its Orpha number
type Record struct {
	ID     string
	Fields map[Language]Fields
}

// NewRecord returns an empty record for id
func NewRecord(id string) Record {
	return Record{ID: id, Fields: make(map[Language]Fields)}
}

// Lang returns the fields for l, or the zero Fields when absent
func (r Record) Lang(l Language) Fields {
	if r.Fields == nil {
		return Fields{}
	}
	return r.Fields[l]
}

// Set stores the fields for l
func (r *Record) Set(l Language, f Fields) {
	if r.Fields == nil {
		r.Fields = make(map[Language]Fields)
	}
	r.Fields[l] = f
}
