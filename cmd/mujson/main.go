// Package main provides the mujson CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/ssrmu/mujson/internal/account"
	"github.com/ssrmu/mujson/internal/config"
	"github.com/ssrmu/mujson/internal/mudb"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// dbPathFlag overrides the configured database path
var dbPathFlag string

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		// This ensures Cobra errors (like missing required flags) are visible
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mujson -a|-d|-e|-c|-l [OPTION]...",
	Short: "Manage the account database of a multi-user proxy server",
	Long: `mujson adds, edits, deletes, clears and lists the accounts stored in a
mudb JSON file. The file is a passive data source read by the proxy server.

Actions:
  -a  add a user
  -d  delete a user
  -e  edit a user
  -c  set u/d to zero
  -l  display one user's information or all users

Examples:
  mujson -a -p 8388 -u alice -t 100
  mujson -e -u alice -k newpassword
  mujson -c -u alice
  mujson -l --human

All commands output JSON by default; pass --human for the classic text output.`,
	Args:          cobra.NoArgs,
	RunE:          runAccount,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "db", "", "Path to the mudb JSON file (overrides config and "+config.EnvMudbFile+")")
	registerAccountFlags(rootCmd.Flags())
	rootCmd.Version = Version
}

// mustLoadConfig loads .env and the global config, exits on error.
func mustLoadConfig() *config.GlobalConfig {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return cfg
}

// mustOpenStore resolves the database path and returns its store.
func mustOpenStore() (*mudb.FileStore, *config.GlobalConfig) {
	cfg := mustLoadConfig()
	return mudb.NewFileStore(cfg.ResolveMudbFile(dbPathFlag)), cfg
}

// mustOpenManager returns a manager over the configured database.
func mustOpenManager() (*account.Manager, *mudb.FileStore) {
	store, cfg := mustOpenStore()
	return account.NewManager(store, account.WithDefaults(cfg.AccountDefaults())), store
}
