package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aerotrace-systems/aerotrace/internal/output"
)

var traceCmd = &cobra.Command{
	Use:   "trace [component-id]",
	Short: "Show a component's trace completeness report",
	Long: `Compute how much of a component's life is covered by documented
events, with the undocumented gaps listed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := apiClient(cmd).TraceReport(args[0])
		if err != nil {
			return fmt.Errorf("failed to get trace report: %w", err)
		}

		if jsonOutput(cmd) {
			return output.JSON(report)
		}

		output.Info("Trace score: %d/100 (%s)", report.Score, report.Rating)
		output.Info("Documented: %d of %d days", report.DocumentedDays, report.TotalDays)
		output.Info("Events: %d  Documents: %d", report.TotalEvents, report.TotalDocuments)

		if report.GapCount == 0 {
			output.Success("No documentation gaps")
			return nil
		}

		fmt.Println()
		output.Warn("%d gap(s), %d days undocumented", report.GapCount, report.TotalGapDays)
		table := output.NewTable([]string{"From", "To", "Duration", "Severity"})
		for _, g := range report.Gaps {
			table.AddRow([]string{
				fmt.Sprintf("%s (%s)", g.FromDate.Format("2006-01-02"), g.FromType),
				fmt.Sprintf("%s (%s)", g.ToDate.Format("2006-01-02"), g.ToType),
				g.Duration,
				string(g.Severity),
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(traceCmd)
}
