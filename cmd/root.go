package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "orphaeval",
		Short: "Evaluate Wikidata rare disease labels against Orphanet",
		Long: `Orphaeval measures how well multilingual Wikidata labels cover and match
the Orphanet rare disease nomenclature.

It aligns harvested Wikidata labels with the Orphanet gold names and synonyms,
reports coverage and synonym counts per language, and scores the labels with
string similarity metrics under several matching policies.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
			slog.SetDefault(slog.New(handler))
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	// Add subcommands
	cmd.AddCommand(newEvalCmd())

	return cmd
}
