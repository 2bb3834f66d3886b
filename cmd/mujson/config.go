package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssrmu/mujson/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	Long: `Show the configuration mujson runs with.

The database path is taken from --db, then the ` + config.EnvMudbFile + ` environment
variable (a .env file in the working directory is honoured), then mudb_file in
the config file, then mudb.json in the working directory.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

// ConfigResponse is the response for the config command.
type ConfigResponse struct {
	ConfigFile     string `json:"config_file"`
	MudbFile       string `json:"mudb_file"`
	IndexFile      string `json:"index_file"`
	Method         string `json:"method"`
	Protocol       string `json:"protocol"`
	Obfs           string `json:"obfs"`
	TransferEnable int64  `json:"transfer_enable"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	store, cfg := mustOpenStore()
	defaults := cfg.AccountDefaults()

	resp := ConfigResponse{
		ConfigFile:     config.GlobalConfigPath(),
		MudbFile:       store.Path(),
		IndexFile:      cfg.ResolveIndexFile(store.Path()),
		Method:         defaults.Method,
		Protocol:       defaults.Protocol,
		Obfs:           defaults.Obfs,
		TransferEnable: defaults.TransferEnable,
	}

	if humanOutput {
		fmt.Printf("config-file: %s\n", resp.ConfigFile)
		fmt.Printf("mudb-file:   %s\n", resp.MudbFile)
		fmt.Printf("index-file:  %s\n", resp.IndexFile)
		fmt.Printf("method:      %s\n", resp.Method)
		fmt.Printf("protocol:    %s\n", resp.Protocol)
		fmt.Printf("obfs:        %s\n", resp.Obfs)
		fmt.Printf("transfer:    %d\n", resp.TransferEnable)
	} else {
		outputJSON(resp)
	}
	return nil
}
