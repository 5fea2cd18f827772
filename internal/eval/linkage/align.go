package linkage

import (
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/orphaeval/internal/eval/labels"
)

// JoinMode selects which gold entities survive alignment
type JoinMode int

const (
	// JoinInner keeps gold entities that have a candidate record
	JoinInner JoinMode = iota
	// JoinLeft keeps every gold entity
	JoinLeft
)

func (m JoinMode) String() string {
	if m == JoinLeft {
		return "left"
	}
	return "inner"
}

// ParseJoinMode parses "inner" or "left"
func ParseJoinMode(s string) (JoinMode, error) {
	switch strings.ToLower(s) {
	case "", "inner":
		return JoinInner, nil
	case "left":
		return JoinLeft, nil
	default:
		return JoinInner, fmt.Errorf("unsupported join mode: %s (supported: inner, left)", s)
	}
}

// Align joins the gold table with aggregated candidate records on the Orpha number.
//
// The output follows gold order with one row per entity. langs lists the
// languages for which the candidate side had a label column. Candidates
// whose id is not in gold are dropped.
func Align(gold *labels.Table, candidates []labels.Record, langs []labels.Language, mode JoinMode) (*labels.Table, error) {
	byID := make(map[string]labels.Record, len(candidates))
	for _, c := range candidates {
		if _, dup := byID[c.ID]; dup {
			return nil, fmt.Errorf("candidate id %s appears more than once, aggregate before aligning", c.ID)
		}
		byID[c.ID] = c
	}

	aligned := &labels.Table{
		Records:       make([]labels.Record, 0, len(gold.Records)),
		Languages:     labels.SortLanguages(langs),
		GoldLanguages: gold.GoldLanguages,
	}

	seen := make(map[string]bool, len(gold.Records))
	for _, g := range gold.Records {
		if seen[g.ID] {
			return nil, fmt.Errorf("gold id %s appears more than once", g.ID)
		}
		seen[g.ID] = true

		c, found := byID[g.ID]
		if !found && mode == JoinInner {
			continue
		}

		record := labels.NewRecord(g.ID)
		for _, lang := range labels.Supported {
			goldFields := g.Lang(lang)
			candFields := c.Lang(lang)
			f := labels.Fields{
				GoldLabel: goldFields.GoldLabel,
				GoldAlt:   goldFields.GoldAlt,
				Label:     candFields.Label,
				Alt:       candFields.Alt,
			}
			if f.GoldLabel == "" && f.GoldAlt.Empty() && f.Label.Empty() && f.Alt.Empty() {
				continue
			}
			record.Set(lang, f)
		}
		aligned.Records = append(aligned.Records, record)
	}

	return aligned, nil
}
