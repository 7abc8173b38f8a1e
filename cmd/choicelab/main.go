package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/choicelab/choicelab/internal/estimation"
)

// Exit codes for different failure modes
const (
	ExitSuccess      = 0 // Command completed
	ExitNotConverged = 1 // Estimation did not converge
	ExitError        = 2 // Configuration, data or runtime error
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error returned by a command to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var convErr *estimation.ConvergenceError
	if errors.As(err, &convErr) {
		return ExitNotConverged
	}
	// All other errors are configuration/runtime errors
	return ExitError
}
