package evalcmd

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/lehigh-university-libraries/orphaeval/internal/eval/metrics"
	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	var opts RunOptions
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate Wikidata labels against the Orphanet gold labels",
		Long: `Evaluate harvested Wikidata labels against the Orphanet nomenclature.

Each scenario aligns a candidate source with the gold labels, then writes
coverage, synonym counts and one score report per metric into
<results-folder>/<scenario>/. Scenarios:

  wikidata_first_only   candidates linked directly to an Orpha number
  wikidata_second_only  candidates linked through an external identifier
  wikidata_full         all candidates
  gct                   machine translations of the English names

Settings are read from flags, then an optional --config YAML file, then the
ORPHAEVAL_DATA_FOLDER, ORPHAEVAL_RESULTS_FOLDER and ORPHAEVAL_METRICS
environment variables.`,
		Example: `  # Evaluate every scenario with the default jaro metric
  orphaeval eval run --data-folder ./data --results-folder ./results

  # Several metrics, skip machine translations
  orphaeval eval run --metrics jaro,levenshtein --metrics jaccard --no-gct

  # First-degree links only, with a CSV table and histograms
  orphaeval eval run --scenarios first --formats csv --histograms`,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := resolveRunOptions(cmd.Flags(), configPath, opts)
			if err != nil {
				return err
			}
			return executeRun(cmd.Context(), resolved, cmd.OutOrStdout())
		},
	}

	defaults := DefaultRunOptions()
	cmd.Flags().StringVar(&configPath, "config", "", "YAML file with run settings")
	cmd.Flags().StringVar(&opts.DataFolder, "data-folder", defaults.DataFolder, "Folder with the Orphanet exports and candidate files")
	cmd.Flags().StringVar(&opts.ResultsFolder, "results-folder", defaults.ResultsFolder, "Folder receiving one sub-folder per scenario")
	cmd.Flags().StringVar(&opts.Candidates, "candidates", "", "Candidate table, .json, .jsonl or .parquet (default <data-folder>/"+defaultCandidatesFile+")")
	cmd.Flags().StringVar(&opts.Translations, "translations", "", "Translation table (default <data-folder>/"+defaultTranslationsFile+")")
	cmd.Flags().StringSliceVar(&opts.Metrics, "metrics", defaults.Metrics, "Similarity metrics (see 'eval metrics')")
	cmd.Flags().StringSliceVar(&opts.Scenarios, "scenarios", nil, "Scenarios to run: first, second, full, gct (default all)")
	cmd.Flags().BoolVar(&opts.NoGCT, "no-gct", false, "Skip the machine translation scenario")
	cmd.Flags().StringVar(&opts.Normalize, "normalize", defaults.Normalize, "Label normalization before scoring (none, nfkc, fold)")
	cmd.Flags().StringSliceVar(&opts.Formats, "formats", nil, "Score tables to write per scenario (csv, parquet, sqlite)")
	cmd.Flags().BoolVar(&opts.Histograms, "histograms", false, "Write a score histogram per column")
	cmd.Flags().StringVar(&opts.Join, "join", defaults.Join, "Gold alignment (inner keeps matched entities, left keeps all)")
	cmd.Flags().IntVar(&opts.Sample, "sample", 0, "Only read the first N candidate rows (0 reads all)")

	return cmd
}

// NewReportCmd creates the report command
func NewReportCmd() *cobra.Command {
	var resultsDir string
	var format string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the summary of a previous run",
		Long:  `Print the summary.yaml written by 'eval run' as text, JSON or CSV.`,
		Example: `  # Text report
  orphaeval eval report --results ./results

  # CSV of every policy mean
  orphaeval eval report --results ./results --format csv > means.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeReport(cmd.OutOrStdout(), resultsDir, format)
		},
	}

	cmd.Flags().StringVar(&resultsDir, "results", "results", "Results folder of the run")
	cmd.Flags().StringVar(&format, "format", "text", "Output format (text, json, csv)")

	return cmd
}

// NewXrefsCmd creates the xrefs command
func NewXrefsCmd() *cobra.Command {
	var dataFolder string
	var output string

	cmd := &cobra.Command{
		Use:   "xrefs",
		Short: "Export the external references of the Orphanet nomenclature",
		Long: `Write one CSV row per external identifier (OMIM, MeSH, ICD-10, ...)
referenced by an Orphanet disorder. The table is the input for resolving
second-degree Wikidata links.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeXrefs(cmd.OutOrStdout(), dataFolder, output)
		},
	}

	cmd.Flags().StringVar(&dataFolder, "data-folder", "data", "Folder with the English Orphanet export")
	cmd.Flags().StringVar(&output, "output", "", "Output CSV (default <data-folder>/"+defaultXrefsFile+")")

	return cmd
}

// NewMetricsCmd creates the metrics command
func NewMetricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "List the supported similarity metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "METRIC\tFAMILY\tDEFAULT")
			for _, name := range metrics.MetricNames() {
				family, _ := metrics.MetricFamily(name)
				def := ""
				if slices.Contains(metrics.DefaultMetrics, name) {
					def = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, family, def)
			}
			fmt.Fprintf(w, "\nPolicies: %s\n", strings.Join(metrics.Policies, ", "))
			return w.Flush()
		},
	}
}
