package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode maps a command error to a process status. Runs that were
// interrupted use the conventional 130.
func exitCode(err error) int {
	var runErr *runFailedError
	if errors.As(err, &runErr) && runErr.cancelled {
		return 130
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	return 1
}
