package main

import "github.com/ssrmu/mujson/internal/account"

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, duplicate account, runtime failure)
	ExitConfigError = 2 // Configuration error (unreadable config file)
	ExitDataError   = 3 // Data error (database missing or not a JSON array of objects)
)

// exitCodeFor maps an operation error to an exit code.
func exitCodeFor(err error) int {
	if account.IsDecode(err) {
		return ExitDataError
	}
	return ExitError
}
