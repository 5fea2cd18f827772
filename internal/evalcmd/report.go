package evalcmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/orphaeval/internal/eval/results"
)

func executeReport(w io.Writer, resultsDir, format string) error {
	// Load results
	summary, err := results.LoadSummary(resultsDir)
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}

	switch format {
	case "text":
		return printTextReport(w, summary)
	case "json":
		return printJSONReport(w, summary)
	case "csv":
		return printCSVReport(w, summary)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func formatOptional(v *float64) string {
	if v == nil {
		return "nan"
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func printTextReport(w io.Writer, s *results.RunSummary) error {
	fmt.Fprintln(w, strings.Repeat("=", 40))
	fmt.Fprintln(w, "Orphanet Label Evaluation Report")
	fmt.Fprintln(w, strings.Repeat("=", 40))
	fmt.Fprintf(w, "Run:       %s\n", s.Config.RunID)
	fmt.Fprintf(w, "Timestamp: %s\n", s.Config.Timestamp)
	fmt.Fprintf(w, "Metrics:   %s\n", strings.Join(s.Config.Metrics, ", "))
	fmt.Fprintf(w, "Normalize: %s\n", s.Config.Normalize)
	fmt.Fprintf(w, "Join:      %s\n", s.Config.Join)

	for _, sc := range s.Scenarios {
		fmt.Fprintf(w, "\n[%s] %d records (%s)\n", sc.Name, sc.Records, sc.ProcessingTime)

		if len(sc.Coverage) > 0 {
			fmt.Fprintln(w, "  Coverage:")
			for _, c := range sc.Coverage {
				fmt.Fprintf(w, "    %s: %d/%d = %s\n", c.Lang, c.CandidateCount, c.GoldCount, formatOptional(c.Ratio))
			}
		}

		if len(sc.Synonyms) > 0 {
			fmt.Fprintln(w, "  Synonyms (ontology / subset / candidates):")
			for _, syn := range sc.Synonyms {
				fmt.Fprintf(w, "    %s: %s / %s / %s\n", syn.Lang,
					formatOptional(syn.Ontology), formatOptional(syn.OntologySubset), formatOptional(syn.Candidates))
			}
		}

		for _, m := range sc.Metrics {
			fmt.Fprintf(w, "  %s:\n", m.Metric)
			for _, l := range m.Languages {
				fmt.Fprintf(w, "    %s:\n", l.Lang)
				for _, p := range l.Policies {
					fmt.Fprintf(w, "      %s: %s (%d rows)\n", p.Policy, formatOptional(p.Mean), p.Count)
				}
			}
		}
	}

	return nil
}

func printJSONReport(w io.Writer, s *results.RunSummary) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(s)
}

func printCSVReport(w io.Writer, s *results.RunSummary) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"Scenario", "Metric", "Language", "Policy", "Mean", "Count"}); err != nil {
		return err
	}

	for _, sc := range s.Scenarios {
		for _, m := range sc.Metrics {
			for _, l := range m.Languages {
				for _, p := range l.Policies {
					mean := ""
					if p.Mean != nil {
						mean = fmt.Sprintf("%.4f", *p.Mean)
					}
					row := []string{sc.Name, m.Metric, l.Lang, p.Policy, mean, strconv.Itoa(p.Count)}
					if err := writer.Write(row); err != nil {
						return err
					}
				}
			}
		}
	}

	writer.Flush()
	return writer.Error()
}
