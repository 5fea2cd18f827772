package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/orphaeval/internal/eval/labels"
	"github.com/parquet-go/parquet-go"
)

// Candidates are the raw harvested rows together with the languages that
// have a label column in the source file.
type Candidates struct {
	Rows      []labels.CandidateRow
	Languages []labels.Language
}

// Loader handles loading of the harvested Wikidata candidate table
type Loader struct {
	datasetPath string
}

// NewLoader creates a new dataset loader
func NewLoader(datasetPath string) *Loader {
	return &Loader{
		datasetPath: datasetPath,
	}
}

// Load loads every row from a candidate file (JSON, JSONL or Parquet)
func (l *Loader) Load() (*Candidates, error) {
	return l.load(0)
}

// LoadSample loads a limited number of rows (useful for inspection)
func (l *Loader) LoadSample(limit int) (*Candidates, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("sample limit must be positive, got %d", limit)
	}
	return l.load(limit)
}

func (l *Loader) load(limit int) (*Candidates, error) {
	// Detect file format
	ext := strings.ToLower(filepath.Ext(l.datasetPath))

	switch ext {
	case ".parquet":
		return l.loadParquet(limit)
	case ".jsonl":
		return l.loadJSONL(limit)
	case ".json":
		return l.loadJSON(limit)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .json, .jsonl, .parquet)", ext)
	}
}

// loadJSON loads a pandas export, either column oriented
// ({"col": {"rowIndex": value}}) or a list of row objects.
func (l *Loader) loadJSON(limit int) (*Candidates, error) {
	slog.Debug("Opening JSON file", "path", l.datasetPath)

	data, err := os.ReadFile(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}

	slog.Debug("JSON file stats", "size_bytes", len(data), "size_mb", len(data)/1024/1024)

	objects, err := decodeTable(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", l.datasetPath, err)
	}
	if limit > 0 && len(objects) > limit {
		objects = objects[:limit]
	}

	return candidatesFromObjects(objects, nil)
}

// loadJSONL loads one row object per line
func (l *Loader) loadJSONL(limit int) (*Candidates, error) {
	slog.Debug("Opening JSONL file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	var objects []map[string]any
	columns := make(map[string]bool)
	scanner := bufio.NewScanner(file)

	// Increase buffer size for long alias lists
	const maxCapacity = 10 * 1024 * 1024 // 10MB per line
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		if limit > 0 && len(objects) >= limit {
			break
		}
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())

		if len(line) == 0 {
			continue
		}

		object, err := decodeObject(line)
		if err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		for col := range object {
			columns[col] = true
		}
		objects = append(objects, object)

		// Log progress every 1000 records
		if lineNum%1000 == 0 {
			slog.Debug("Reading JSONL", "lines_read", lineNum)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}

	slog.Debug("Finished reading JSONL file", "total_records", len(objects), "total_lines", lineNum)

	return candidatesFromObjects(objects, columns)
}

// loadParquet loads rows from a Parquet file
func (l *Loader) loadParquet(limit int) (*Candidates, error) {
	slog.Debug("Opening Parquet file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	// Get file info for size
	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	slog.Debug("Parquet file stats", "size_bytes", info.Size(), "size_mb", info.Size()/1024/1024)

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened successfully", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	schema := pf.Schema()
	if _, ok := schema.Lookup("value_property"); !ok {
		return nil, fmt.Errorf("parquet file %s has no value_property column", l.datasetPath)
	}
	var langs []labels.Language
	for _, lang := range labels.Supported {
		if _, ok := schema.Lookup(LabelColumn(lang)); ok {
			langs = append(langs, lang)
		}
	}

	reader := parquet.NewGenericReader[CandidateRecord](pf)
	defer reader.Close()

	candidates := &Candidates{Languages: langs}
	rows := make([]CandidateRecord, 128) // Read in batches

	batchNum := 0
	for limit <= 0 || len(candidates.Rows) < limit {
		n, err := reader.Read(rows)
		if n > 0 {
			batchNum++
			if limit > 0 {
				n = min(n, limit-len(candidates.Rows))
			}
			for i := 0; i < n; i++ {
				candidates.Rows = append(candidates.Rows, rows[i].Row(langs))
			}
			slog.Debug("Read batch from Parquet", "batch", batchNum, "rows_in_batch", n, "total_rows_read", len(candidates.Rows))
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	slog.Debug("Finished reading Parquet file", "total_records", len(candidates.Rows), "total_batches", batchNum, "languages", langs)

	return candidates, nil
}

func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var object map[string]any
	if err := dec.Decode(&object); err != nil {
		return nil, err
	}
	return object, nil
}

// decodeTable decodes a pandas JSON export into row objects in index order
func decodeTable(data []byte) ([]map[string]any, error) {
	trimmed := bytes.TrimSpace(data)
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var objects []map[string]any
		if err := dec.Decode(&objects); err != nil {
			return nil, err
		}
		return objects, nil
	}

	indexes, byIndex, err := decodeColumns(dec)
	if err != nil {
		return nil, err
	}

	objects := make([]map[string]any, len(indexes))
	for i, idx := range indexes {
		objects[i] = byIndex[idx]
	}
	return objects, nil
}

// decodeColumns pivots a column oriented table into rows keyed by the
// table index. Indexes come back sorted.
func decodeColumns(dec *json.Decoder) ([]string, map[string]map[string]any, error) {
	var columns map[string]map[string]any
	if err := dec.Decode(&columns); err != nil {
		return nil, nil, err
	}

	byIndex := make(map[string]map[string]any)
	for col, cells := range columns {
		for idx, v := range cells {
			row, ok := byIndex[idx]
			if !ok {
				row = make(map[string]any, len(columns))
				byIndex[idx] = row
			}
			row[col] = v
		}
	}

	indexes := make([]string, 0, len(byIndex))
	for idx := range byIndex {
		indexes = append(indexes, idx)
	}
	sortIndexes(indexes)
	return indexes, byIndex, nil
}

// sortIndexes orders row indexes numerically when they are all integers
func sortIndexes(indexes []string) {
	numeric := true
	for _, idx := range indexes {
		if _, err := strconv.ParseInt(idx, 10, 64); err != nil {
			numeric = false
			break
		}
	}
	sort.Slice(indexes, func(i, j int) bool {
		if numeric {
			a, _ := strconv.ParseInt(indexes[i], 10, 64)
			b, _ := strconv.ParseInt(indexes[j], 10, 64)
			return a < b
		}
		return indexes[i] < indexes[j]
	})
}

func candidatesFromObjects(objects []map[string]any, columns map[string]bool) (*Candidates, error) {
	if columns == nil {
		columns = make(map[string]bool)
		for _, object := range objects {
			for col := range object {
				columns[col] = true
			}
		}
	}
	if len(objects) > 0 && !columns["value_property"] {
		return nil, fmt.Errorf("candidate table has no value_property column")
	}

	candidates := &Candidates{Languages: DetectLanguages(columns)}
	for i, object := range objects {
		key, ok := keyString(object["value_property"])
		if !ok {
			return nil, fmt.Errorf("row %d has no usable value_property", i)
		}
		row := labels.CandidateRow{
			Key:    key,
			Fields: make(map[labels.Language]labels.RawFields, len(candidates.Languages)),
		}
		if degree := cellValue(object["source_degree"]); degree.Valid {
			row.Degree = degree.String
		}
		for _, lang := range candidates.Languages {
			row.Fields[lang] = labels.RawFields{
				Label: cellValue(object[LabelColumn(lang)]),
				Alt:   cellValue(object[AltColumn(lang)]),
			}
		}
		candidates.Rows = append(candidates.Rows, row)
	}

	return candidates, nil
}

// DetectLanguages returns the supported languages with a label column in columns
func DetectLanguages(columns map[string]bool) []labels.Language {
	var langs []labels.Language
	for _, lang := range labels.Supported {
		if columns[LabelColumn(lang)] {
			langs = append(langs, lang)
		}
	}
	return langs
}

// cellValue keeps string cells. Nulls, NaN and numbers are absent.
func cellValue(v any) labels.Value {
	s, ok := v.(string)
	if !ok {
		return labels.Value{}
	}
	return labels.Some(s)
}

// keyString renders an identifier cell the way it appears in ORDO ("558")
func keyString(v any) (string, bool) {
	switch k := v.(type) {
	case string:
		return k, k != ""
	case json.Number:
		if n, err := k.Int64(); err == nil {
			return strconv.FormatInt(n, 10), true
		}
		f, err := k.Float64()
		if err != nil {
			return "", false
		}
		if f == float64(int64(f)) {
			return strconv.FormatInt(int64(f), 10), true
		}
		return k.String(), true
	default:
		return "", false
	}
}
