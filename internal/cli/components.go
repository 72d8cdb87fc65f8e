package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aerotrace-systems/aerotrace/internal/models"
	"github.com/aerotrace-systems/aerotrace/internal/output"
)

var componentsCmd = &cobra.Command{
	Use:   "components",
	Short: "Component management",
	Long:  "List, inspect and ingest tracked components",
}

var componentsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tracked components",
	RunE: func(cmd *cobra.Command, args []string) error {
		components, err := apiClient(cmd).ListComponents()
		if err != nil {
			return fmt.Errorf("failed to list components: %w", err)
		}

		if jsonOutput(cmd) {
			return output.JSON(components)
		}

		if len(components) == 0 {
			output.Info("No components found")
			return nil
		}

		table := output.NewTable([]string{"ID", "Part Number", "Serial", "Status", "Manufactured"})
		for _, c := range components {
			table.AddRow([]string{
				c.ID,
				c.PartNumber,
				c.SerialNumber,
				string(c.Status),
				c.ManufactureDate.Format("2006-01-02"),
			})
		}
		table.Render()
		return nil
	},
}

var componentsGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show a component with its full event history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := apiClient(cmd).GetSnapshot(args[0])
		if err != nil {
			return fmt.Errorf("failed to get component: %w", err)
		}

		if jsonOutput(cmd) {
			return output.JSON(snap)
		}

		c := snap.Component
		output.Info("Component: %s", c.ID)
		output.Info("Part Number: %s", c.PartNumber)
		output.Info("Serial: %s", c.SerialNumber)
		if c.Description != "" {
			output.Info("Description: %s", c.Description)
		}
		output.Info("Status: %s", c.Status)
		output.Info("Manufactured: %s", c.ManufactureDate.Format("2006-01-02"))
		output.Info("Events: %d  Documents: %d", len(snap.Events), len(snap.Documents))

		if len(snap.Events) == 0 {
			return nil
		}
		fmt.Println()
		table := output.NewTable([]string{"Date", "Event", "Facility", "Hours", "Cycles"})
		for _, e := range snap.Events {
			hours, cycles := "", ""
			if e.FlightHours != nil {
				hours = fmt.Sprintf("%.1f", *e.FlightHours)
			}
			if e.Cycles != nil {
				cycles = fmt.Sprintf("%d", *e.Cycles)
			}
			table.AddRow([]string{
				e.EventDate.Format("2006-01-02"),
				string(e.Type),
				e.Facility.Name,
				hours,
				cycles,
			})
		}
		table.Render()
		return nil
	},
}

var componentsIngestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a component history from a JSON file",
	Long: `Ingest a component with its lifecycle event history from a JSON file.
The file holds a single ingestion request or an array of them.
Pass "-" to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if args[0] == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		reqs, err := decodeIngestRequests(data)
		if err != nil {
			return err
		}

		api := apiClient(cmd)
		for i := range reqs {
			c, err := api.IngestComponent(&reqs[i])
			if err != nil {
				return fmt.Errorf("failed to ingest %s/%s: %w", reqs[i].PartNumber, reqs[i].SerialNumber, err)
			}
			output.Success("Ingested %s s/n %s (id %s)", c.PartNumber, c.SerialNumber, c.ID)
		}
		return nil
	},
}

// decodeIngestRequests accepts either one request object or an array.
func decodeIngestRequests(data []byte) ([]models.IngestComponentRequest, error) {
	var reqs []models.IngestComponentRequest
	if err := json.Unmarshal(data, &reqs); err == nil {
		return reqs, nil
	}
	var one models.IngestComponentRequest
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, fmt.Errorf("failed to parse ingestion request: %w", err)
	}
	return []models.IngestComponentRequest{one}, nil
}

func init() {
	rootCmd.AddCommand(componentsCmd)
	componentsCmd.AddCommand(componentsListCmd)
	componentsCmd.AddCommand(componentsGetCmd)
	componentsCmd.AddCommand(componentsIngestCmd)
}
