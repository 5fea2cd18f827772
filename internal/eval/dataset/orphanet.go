package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lehigh-university-libraries/orphaeval/internal/eval/labels"
)

// ProductFileName is the Orphanet "product1" export for one language
func ProductFileName(lang labels.Language) string {
	return string(lang) + "_product1.json"
}

// oneOrMany decodes either a JSON array or a single object into a slice.
// Orphanet exports are not consistent about it.
type oneOrMany[T any] []T

func (o *oneOrMany[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*o = nil
		return nil
	}
	if trimmed[0] == '[' {
		var many []T
		if err := json.Unmarshal(trimmed, &many); err != nil {
			return err
		}
		*o = many
		return nil
	}
	var one T
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return err
	}
	*o = []T{one}
	return nil
}

// flexString accepts a JSON string or number
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type productFile struct {
	JDBOR oneOrMany[jdbor] `json:"JDBOR"`
}

type jdbor struct {
	DisorderList oneOrMany[disorderList] `json:"DisorderList"`
}

type disorderList struct {
	Disorder oneOrMany[disorder] `json:"Disorder"`
}

type labelNode struct {
	Lang  string `json:"lang"`
	Label string `json:"label"`
}

type synonymList struct {
	Synonym oneOrMany[labelNode] `json:"Synonym"`
}

type externalReferenceList struct {
	Count             flexString                   `json:"count"`
	ExternalReference oneOrMany[externalReference] `json:"ExternalReference"`
}

type externalReference struct {
	ID        flexString `json:"id"`
	Source    string     `json:"Source"`
	Reference string     `json:"Reference"`
}

type disorder struct {
	OrphaNumber           flexString                       `json:"OrphaNumber"`
	OrphaCode             flexString                       `json:"OrphaCode"`
	Name                  oneOrMany[labelNode]             `json:"Name"`
	SynonymList           oneOrMany[synonymList]           `json:"SynonymList"`
	ExternalReferenceList oneOrMany[externalReferenceList] `json:"ExternalReferenceList"`
}

func (d disorder) id() string {
	if d.OrphaNumber != "" {
		return string(d.OrphaNumber)
	}
	return string(d.OrphaCode)
}

func (d disorder) name() string {
	if len(d.Name) == 0 {
		return ""
	}
	return d.Name[0].Label
}

func (d disorder) synonyms() labels.Set {
	if len(d.SynonymList) == 0 {
		return nil
	}
	values := make([]string, 0, len(d.SynonymList[0].Synonym))
	for _, s := range d.SynonymList[0].Synonym {
		values = append(values, s.Label)
	}
	return labels.NewSet(values...)
}

func readDisorders(path string) ([]disorder, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var product productFile
	if err := json.NewDecoder(file).Decode(&product); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(product.JDBOR) == 0 || len(product.JDBOR[0].DisorderList) == 0 {
		return nil, fmt.Errorf("%s has no JDBOR DisorderList", path)
	}
	return product.JDBOR[0].DisorderList[0].Disorder, nil
}

// LoadOrphanet builds the gold table from the per-language product1 exports.
// Languages whose file is missing are skipped with a warning and left out of
// GoldLanguages. Entities are outer-merged on their Orpha number.
func LoadOrphanet(dataFolder string, langs []labels.Language) (*labels.Table, error) {
	gold := &labels.Table{}
	byID := make(map[string]*labels.Record)

	for _, lang := range labels.SortLanguages(langs) {
		path := filepath.Join(dataFolder, ProductFileName(lang))
		disorders, err := readDisorders(path)
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Orphanet export missing, skipping language", "lang", lang, "path", path)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load Orphanet %s labels: %w", lang, err)
		}

		duplicates := 0
		for _, d := range disorders {
			id := d.id()
			if id == "" {
				continue
			}
			r, ok := byID[id]
			if !ok {
				record := labels.NewRecord(id)
				r = &record
				byID[id] = r
			}
			if _, seen := r.Fields[lang]; seen {
				duplicates++
				continue
			}
			r.Set(lang, labels.Fields{GoldLabel: d.name(), GoldAlt: d.synonyms()})
		}
		if duplicates > 0 {
			slog.Warn("Duplicate Orpha numbers in export, kept first", "lang", lang, "duplicates", duplicates)
		}

		gold.GoldLanguages = append(gold.GoldLanguages, lang)
		slog.Debug("Loaded Orphanet labels", "lang", lang, "disorders", len(disorders))
	}

	if len(gold.GoldLanguages) == 0 {
		return nil, fmt.Errorf("no Orphanet export found in %s", dataFolder)
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sortIndexes(ids)
	gold.Records = make([]labels.Record, 0, len(ids))
	for _, id := range ids {
		gold.Records = append(gold.Records, *byID[id])
	}

	slog.Info("Loaded Orphanet gold labels", "entities", len(gold.Records), "languages", gold.GoldLanguages)
	return gold, nil
}

// LoadExternalReferences lists the cross-references of every disorder in the
// English export, one row per referenced identifier.
func LoadExternalReferences(dataFolder string) ([]ExternalReference, error) {
	path := filepath.Join(dataFolder, ProductFileName(labels.English))
	disorders, err := readDisorders(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load external references: %w", err)
	}

	var refs []ExternalReference
	for _, d := range disorders {
		if len(d.ExternalReferenceList) == 0 {
			continue
		}
		list := d.ExternalReferenceList[0]
		if list.Count == "0" {
			continue
		}
		for _, ref := range list.ExternalReference {
			refs = append(refs, ExternalReference{
				ValueProperty: d.id(),
				IDAuxiliary:   ref.Reference,
				NameAuxiliary: ref.Source,
			})
		}
	}

	slog.Debug("Loaded external references", "disorders", len(disorders), "references", len(refs))
	return refs, nil
}
