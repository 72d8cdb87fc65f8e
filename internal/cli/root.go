// Package cli implements the atctl command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aerotrace-systems/aerotrace/internal/client"
	"github.com/aerotrace-systems/aerotrace/internal/cliconfig"
)

var (
	cfgFile string
	cfg     *cliconfig.Config
)

var rootCmd = &cobra.Command{
	Use:   "atctl",
	Short: "AeroTrace integrity CLI",
	Long: `atctl is the command-line interface for the AeroTrace component
integrity service.

Ingest component histories, run integrity scans, inspect trace
completeness and review exceptions from your terminal.`,
	Version: "0.1.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.atctl/config.yaml)")
	rootCmd.PersistentFlags().String("profile", "", "profile to use")
	rootCmd.PersistentFlags().String("server", "", "API server URL (overrides profile)")
	rootCmd.PersistentFlags().String("output", "table", "output format: table, json")
}

func initConfig() {
	var err error
	cfg, err = cliconfig.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not load config: %v\n", err)
		cfg = cliconfig.Default()
	}
}

// apiClient builds a client from the --server flag or the active profile.
func apiClient(cmd *cobra.Command) *client.Client {
	if server, _ := cmd.Flags().GetString("server"); server != "" {
		return client.New(server)
	}
	profile, _ := cmd.Flags().GetString("profile")
	return client.New(cfg.ServerURL(profile))
}

func jsonOutput(cmd *cobra.Command) bool {
	format, _ := cmd.Flags().GetString("output")
	return format == "json"
}
