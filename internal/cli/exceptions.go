package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aerotrace-systems/aerotrace/internal/models"
	"github.com/aerotrace-systems/aerotrace/internal/output"
)

var exceptionsCmd = &cobra.Command{
	Use:   "exceptions",
	Short: "Exception review",
	Long:  "List and review integrity exceptions raised by scans",
}

var exceptionsListCmd = &cobra.Command{
	Use:     "list [component-id]",
	Aliases: []string{"ls"},
	Short:   "List a component's exceptions",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exceptions, err := apiClient(cmd).ListExceptions(args[0])
		if err != nil {
			return fmt.Errorf("failed to list exceptions: %w", err)
		}

		if jsonOutput(cmd) {
			return output.JSON(exceptions)
		}

		if len(exceptions) == 0 {
			output.Success("No exceptions")
			return nil
		}

		table := output.NewTable([]string{"ID", "Type", "Severity", "Status", "Title"})
		for _, ex := range exceptions {
			table.AddRow([]string{
				ex.ID,
				string(ex.Type),
				string(ex.Severity),
				string(ex.Status),
				ex.Title,
			})
		}
		table.Render()
		return nil
	},
}

var exceptionsReviewCmd = &cobra.Command{
	Use:   "review [id]",
	Short: "Move an exception through its review lifecycle",
	Long: `Update an exception's review status. Valid transitions are
open -> investigating, resolved or false_positive, and
investigating -> resolved or false_positive.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		resolvedBy, _ := cmd.Flags().GetString("by")
		resolution, _ := cmd.Flags().GetString("resolution")

		req := &models.UpdateExceptionRequest{
			Status:     models.ExceptionStatus(status),
			ResolvedBy: resolvedBy,
			Resolution: resolution,
		}
		ex, err := apiClient(cmd).UpdateException(args[0], req)
		if err != nil {
			return fmt.Errorf("failed to update exception: %w", err)
		}

		if jsonOutput(cmd) {
			return output.JSON(ex)
		}
		output.Success("Exception %s is now %s", ex.ID, ex.Status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exceptionsCmd)
	exceptionsCmd.AddCommand(exceptionsListCmd)
	exceptionsCmd.AddCommand(exceptionsReviewCmd)

	exceptionsReviewCmd.Flags().StringP("status", "s", "", "new status (investigating, resolved, false_positive)")
	exceptionsReviewCmd.Flags().String("by", "", "reviewer name")
	exceptionsReviewCmd.Flags().StringP("resolution", "r", "", "resolution note")
	if err := exceptionsReviewCmd.MarkFlagRequired("status"); err != nil {
		panic(fmt.Sprintf("failed to mark status as required: %v", err))
	}
}
