package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aerotrace-systems/aerotrace/internal/output"
	"github.com/aerotrace-systems/aerotrace/internal/seeder"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the service with a generated demo fleet",
	Long: `Generate realistic fake component histories and ingest them through
the API. A fraction of components get an injected inconsistency so
integrity scans have something to find.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		anomalyRate, _ := cmd.Flags().GetFloat64("anomaly-rate")
		seed, _ := cmd.Flags().GetInt64("seed")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		cfg := seeder.DefaultConfig()
		cfg.Components = count
		cfg.AnomalyRate = anomalyRate
		if seed != 0 {
			cfg.Seed = seed
		}

		fleet := seeder.New(cfg).Fleet()

		if dryRun {
			return output.JSON(fleet)
		}

		api := apiClient(cmd)
		ingested := 0
		for i := range fleet {
			c, err := api.IngestComponent(&fleet[i])
			if err != nil {
				output.Error("failed to ingest %s/%s: %v", fleet[i].PartNumber, fleet[i].SerialNumber, err)
				continue
			}
			ingested++
			output.Info("%s s/n %s -> %s", c.PartNumber, c.SerialNumber, c.ID)
		}

		if ingested < len(fleet) {
			output.Warn("Ingested %d of %d components", ingested, len(fleet))
			return fmt.Errorf("%d component(s) failed to ingest", len(fleet)-ingested)
		}
		output.Success("Ingested %d components", ingested)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().IntP("count", "n", 25, "number of components to generate")
	seedCmd.Flags().Float64("anomaly-rate", 0.3, "fraction of components with an injected inconsistency")
	seedCmd.Flags().Int64("seed", 0, "random seed (0 = time-based)")
	seedCmd.Flags().Bool("dry-run", false, "print generated fleet as JSON instead of ingesting")
}
