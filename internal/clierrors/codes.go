// Package clierrors maps error classes to process exit codes and prints
// user-facing failures with a suggested remediation.
package clierrors

import (
	"errors"
	"fmt"
	"os"

	"github.com/mzhubr/claude-profiles/internal/registry"
	"github.com/mzhubr/claude-profiles/internal/switcher"
)

// Exit codes for different error scenarios.
const (
	ExitSuccess           = 0 // Success
	ExitGeneralError      = 1 // I/O failure, refresh failure, unknown error
	ExitInvalidArguments  = 2 // Bad usage, invalid profile name, bad config
	ExitProfileNotFound   = 3 // Requested profile has no stored credentials
	ExitNoLiveCredentials = 4 // create invoked with no readable live credentials
	ExitAborted           = 5 // User declined a confirmation gate
)

// CodeFor maps an error to its exit code.
func CodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, registry.ErrProfileNotFound):
		return ExitProfileNotFound
	case errors.Is(err, switcher.ErrNoLiveCredentials):
		return ExitNoLiveCredentials
	case errors.Is(err, switcher.ErrAborted):
		return ExitAborted
	default:
		return ExitGeneralError
	}
}

// ExitWithError prints the error plus an optional remediation hint and exits
// with the mapped code.
func ExitWithError(err error, remediation string) {
	fmt.Fprintf(os.Stderr, "✗ %v\n", err)
	if remediation != "" {
		fmt.Fprintf(os.Stderr, "  hint: %s\n", remediation)
	}
	os.Exit(CodeFor(err))
}

// ExitWithCode prints a message and exits with a specific code.
func ExitWithCode(code int, message string) {
	fmt.Fprintf(os.Stderr, "✗ %s\n", message)
	os.Exit(code)
}
