package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an empty account database",
	Long: `Create an empty mudb JSON file at the configured path.

Fails if the file already exists.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	store, _ := mustOpenStore()

	if err := store.Init(); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Created empty account database at %s\n", store.Path())
	} else {
		outputJSON(StatusResponse{Status: "created", Path: store.Path()})
	}
	return nil
}
