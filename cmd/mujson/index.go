package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssrmu/mujson/internal/mudb"
)

var indexForce bool

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVar(&indexForce, "force", false, "Rebuild even if the index is up to date")
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the SQLite query index",
	Long: `Rebuild the SQLite index used by 'mujson query'.

The JSON file stays the source of truth. The index records the hash of the
file it was built from and is only rebuilt when the file changed, unless
--force is given.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

// mustOpenIndex returns the store and the index configured for it.
func mustOpenIndex() (*mudb.FileStore, *mudb.Index) {
	store, cfg := mustOpenStore()
	return store, mudb.NewIndex(cfg.ResolveIndexFile(store.Path()))
}

func runIndex(cmd *cobra.Command, args []string) error {
	store, ix := mustOpenIndex()

	var count int
	if indexForce {
		hash, err := mudb.ComputeFileHash(store.Path())
		if err != nil {
			exitWithError(ExitError, "computing hash: %v", err)
		}
		c, err := store.Load()
		if err != nil {
			exitWithError(exitCodeFor(err), "%v", err)
		}
		if count, err = ix.Rebuild(c, hash); err != nil {
			exitWithError(ExitError, "rebuilding index: %v", err)
		}
	} else {
		if _, err := ix.Sync(store); err != nil {
			exitWithError(exitCodeFor(err), "%v", err)
		}
		info, err := ix.Info(store.Path())
		if err != nil {
			exitWithError(ExitError, "reading index: %v", err)
		}
		count = info.Records
	}

	if humanOutput {
		fmt.Printf("Indexed %d accounts into %s\n", count, ix.Path())
	} else {
		outputJSON(StatusResponse{Status: "indexed", Path: ix.Path(), Count: count})
	}
	return nil
}
