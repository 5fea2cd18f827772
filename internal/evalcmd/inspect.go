package evalcmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lehigh-university-libraries/orphaeval/internal/eval/labels"
	"github.com/lehigh-university-libraries/orphaeval/internal/eval/linkage"
	"github.com/lehigh-university-libraries/orphaeval/internal/eval/metrics"
	"github.com/spf13/cobra"
)

// inspectOptions configures the inspect command
type inspectOptions struct {
	dataFolder   string
	candidates   string
	translations string
	scenario     string
	metrics      []string
	langs        []string
	limit        int
	interactive  bool
}

// NewInspectCmd creates the inspect command
func NewInspectCmd() *cobra.Command {
	var opts inspectOptions

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect aligned gold and candidate labels of a scenario",
		Long: `Inspect the aligned table of one scenario, record by record.

This command is useful for examining which Wikidata labels were matched
to each Orphanet entity and how every policy scores them.`,
		Example: `  # Inspect the first 5 aligned records interactively
  orphaeval eval inspect --data-folder ./data --limit 5 --interactive

  # Show French labels of the first-degree scenario with jaro and levenshtein scores
  orphaeval eval inspect --scenario first --lang fr --metrics jaro,levenshtein

  # Inspect all records (no limit)
  orphaeval eval inspect --limit 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Create a context that gets canceled on an interrupt signal (Ctrl+C)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return executeInspect(ctx, cmd.OutOrStdout(), os.Stdin, opts)
		},
	}

	cmd.Flags().StringVar(&opts.dataFolder, "data-folder", "data", "Folder with the Orphanet exports and candidate files")
	cmd.Flags().StringVar(&opts.candidates, "candidates", "", "Candidate table (default <data-folder>/"+defaultCandidatesFile+")")
	cmd.Flags().StringVar(&opts.translations, "translations", "", "Translation table (default <data-folder>/"+defaultTranslationsFile+")")
	cmd.Flags().StringVar(&opts.scenario, "scenario", ScenarioFull, "Scenario to inspect ("+strings.Join(scenarioNames(), ", ")+")")
	cmd.Flags().StringSliceVar(&opts.metrics, "metrics", nil, "Metrics to score the shown records with")
	cmd.Flags().StringSliceVar(&opts.langs, "lang", nil, "Only show these languages")
	cmd.Flags().IntVar(&opts.limit, "limit", 10, "Number of records to inspect (0 for all)")
	cmd.Flags().BoolVar(&opts.interactive, "interactive", false, "Pause after each record (press Enter to continue)")

	return cmd
}

func executeInspect(ctx context.Context, w io.Writer, stdin io.Reader, opts inspectOptions) error {
	runOpts := DefaultRunOptions()
	runOpts.DataFolder = opts.dataFolder
	runOpts.Candidates = opts.candidates
	runOpts.Translations = opts.translations
	runOpts.Scenarios = []string{opts.scenario}
	runOpts.finalize()

	scenarios, err := resolveScenarios(runOpts.Scenarios, false)
	if err != nil {
		return err
	}

	var scorer *metrics.Scorer
	if len(opts.metrics) > 0 {
		scorer, err = metrics.NewScorer(splitList(opts.metrics))
		if err != nil {
			return err
		}
	}

	var langFilter []labels.Language
	for _, code := range splitList(opts.langs) {
		lang, ok := labels.ParseLanguage(code)
		if !ok {
			return fmt.Errorf("unsupported language: %s", code)
		}
		langFilter = append(langFilter, lang)
	}

	in, scenarios, err := loadInputs(runOpts, scenarios)
	if err != nil {
		return err
	}
	aligned, _, err := alignScenario(in, scenarios[0], linkage.JoinInner)
	if err != nil {
		return fmt.Errorf("failed to align scenario: %w", err)
	}
	if scorer != nil {
		if _, err := scorer.Score(aligned); err != nil {
			return err
		}
	}

	langs := labels.SortLanguages(append(append([]labels.Language{}, aligned.GoldLanguages...), aligned.Languages...))
	if len(langFilter) > 0 {
		langs = labels.SortLanguages(langFilter)
	}

	records := aligned.Records
	if opts.limit > 0 && len(records) > opts.limit {
		records = records[:opts.limit]
	}

	fmt.Fprintf(w, "Loaded %d aligned records for %s\n", len(aligned.Records), scenarios[0].name)
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintln(w)

	reader := bufio.NewReader(stdin)

	for i, record := range records {
		// Check for context cancellation (e.g., Ctrl+C) at the start of each iteration
		select {
		case <-ctx.Done():
			fmt.Fprintln(w, "\nInspection interrupted.")
			return nil
		default:
		}

		fmt.Fprintf(w, "RECORD %d/%d  ORPHA:%s\n", i+1, len(records), record.ID)
		fmt.Fprintln(w, strings.Repeat("-", 80))
		printRecord(w, aligned, i, langs)
		fmt.Fprintln(w)

		if opts.interactive {
			fmt.Fprint(w, "Press Enter to continue to next record (or Ctrl+C to quit)...")

			inputCh := make(chan struct{})
			go func() {
				_, _ = reader.ReadString('\n')
				close(inputCh)
			}()

			// Wait for either user input (Enter) or context cancellation (Ctrl+C)
			select {
			case <-ctx.Done():
				fmt.Fprintln(w, "\nInspection interrupted.")
				return nil
			case <-inputCh:
				fmt.Fprintln(w)
			}
		}
	}

	return nil
}

func printRecord(w io.Writer, t *labels.Table, row int, langs []labels.Language) {
	record := t.Records[row]
	for _, lang := range langs {
		f := record.Lang(lang)
		fmt.Fprintf(w, "%s\n", lang.Title())
		if t.HasGoldLanguage(lang) {
			fmt.Fprintf(w, "  Gold label:     %s\n", f.GoldLabel)
			fmt.Fprintf(w, "  Gold synonyms:  %s\n", f.GoldAlt)
		}
		if t.HasLanguage(lang) {
			fmt.Fprintf(w, "  Labels:         %s\n", f.Label)
			fmt.Fprintf(w, "  Aliases:        %s\n", f.Alt)
		}
		for _, col := range t.Scores {
			if col.Lang != lang {
				continue
			}
			fmt.Fprintf(w, "  %-28s %s\n", col.Name+":", metrics.FormatFloat(col.Values[row].Float()))
		}
	}
}
