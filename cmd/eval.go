package cmd

import (
	"github.com/lehigh-university-libraries/orphaeval/internal/evalcmd"
	"github.com/spf13/cobra"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Orphanet label evaluation tools",
		Long: `Evaluation tools for measuring how Wikidata labels align with the
Orphanet nomenclature.

Supports running the scenario evaluation, printing reports of previous runs,
inspecting aligned records, exporting external references and listing the
available similarity metrics.`,
	}

	// Add eval subcommands
	cmd.AddCommand(evalcmd.NewRunCmd())
	cmd.AddCommand(evalcmd.NewReportCmd())
	cmd.AddCommand(evalcmd.NewInspectCmd())
	cmd.AddCommand(evalcmd.NewXrefsCmd())
	cmd.AddCommand(evalcmd.NewMetricsCmd())

	return cmd
}
