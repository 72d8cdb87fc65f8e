package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aerotrace-systems/aerotrace/internal/models"
	"github.com/aerotrace-systems/aerotrace/internal/output"
)

var scanCmd = &cobra.Command{
	Use:   "scan [component-id]",
	Short: "Run integrity checks against one component",
	Long: `Run all integrity checks against a component's recorded history and
persist any newly detected exceptions.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := apiClient(cmd).ScanComponent(args[0])
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		if jsonOutput(cmd) {
			return output.JSON(result)
		}

		s := result.Summary
		if s.Total == 0 {
			output.Success("Component %s: no exceptions", result.ComponentID)
			return nil
		}

		output.Warn("Component %s: %d exception(s), %d newly detected", result.ComponentID, s.Total, s.NewlyDetected)
		output.Info("Critical: %d  Warning: %d  Info: %d", s.Critical, s.Warning, s.Info)
		fmt.Println()

		table := output.NewTable([]string{"ID", "Type", "Severity", "Status", "Detected"})
		for _, ex := range result.Exceptions {
			table.AddRow([]string{
				ex.ID,
				string(ex.Type),
				string(ex.Severity),
				string(ex.Status),
				ex.DetectedAt.Format("2006-01-02 15:04"),
			})
		}
		table.Render()
		return nil
	},
}

var fleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Fleet-wide operations",
}

var fleetScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan every tracked component",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := apiClient(cmd).ScanFleet()
		if err != nil {
			return fmt.Errorf("fleet scan failed: %w", err)
		}

		if jsonOutput(cmd) {
			return output.JSON(result)
		}

		output.Info("Components scanned: %d", result.TotalComponents)
		output.Info("With exceptions: %d", result.ComponentsWithExceptions)
		output.Info("Total exceptions: %d", result.TotalExceptions)
		for _, sev := range []string{"critical", "warning", "info"} {
			if n := result.BySeverity[models.Severity(sev)]; n > 0 {
				output.Info("  %s: %d", sev, n)
			}
		}

		if len(result.Failures) > 0 {
			fmt.Println()
			output.Warn("%d component(s) failed to scan", len(result.Failures))
			for _, f := range result.Failures {
				output.Error("%s: %s", f.ComponentID, f.Error)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(fleetCmd)
	fleetCmd.AddCommand(fleetScanCmd)
}
