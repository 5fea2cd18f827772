package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/lehigh-university-libraries/orphaeval/internal/eval/labels"
)

// translationPrefix marks machine translation columns in the export ("gctLabelFr")
const translationPrefix = "gct"

// Translations are machine-translated labels already keyed by Orpha number
type Translations struct {
	Records   []labels.Record
	Languages []labels.Language
}

// translationColumn maps "gctLabelFr" or "gctlabelFr" to "labelFr"
func translationColumn(col string) string {
	if !strings.HasPrefix(col, translationPrefix) {
		return col
	}
	rest := strings.TrimPrefix(col, translationPrefix)
	if rest == "" {
		return col
	}
	return strings.ToLower(rest[:1]) + rest[1:]
}

// LoadTranslations reads the machine translation table, a column oriented
// JSON export indexed by Orpha number.
func LoadTranslations(path string) (*Translations, error) {
	slog.Debug("Opening translations file", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open translations file: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	indexes, byIndex, err := decodeColumns(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	columns := make(map[string]bool)
	for _, row := range byIndex {
		for col := range row {
			columns[translationColumn(col)] = true
		}
	}

	t := &Translations{Languages: DetectLanguages(columns)}
	for _, idx := range indexes {
		cells := make(map[string]any, len(byIndex[idx]))
		for col, v := range byIndex[idx] {
			cells[translationColumn(col)] = v
		}

		r := labels.NewRecord(idx)
		for _, lang := range t.Languages {
			label := cellValue(cells[LabelColumn(lang)])
			alt := cellValue(cells[AltColumn(lang)])
			f := labels.Fields{
				Label: labels.ParseSet(label.String),
				Alt:   labels.ParseSet(alt.String),
			}
			if f.Label.Empty() && f.Alt.Empty() {
				continue
			}
			r.Set(lang, f)
		}
		t.Records = append(t.Records, r)
	}

	slog.Debug("Loaded translations", "records", len(t.Records), "languages", t.Languages)
	return t, nil
}
