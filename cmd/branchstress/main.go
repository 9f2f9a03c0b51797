// Command branchstress runs the branch-pattern stress suite.
//
// Usage:
//
//	branchstress                    run the suite once and print the completion registers
//	branchstress phases             print the per-phase score table
//	branchstress predict [flags]    run the suite under predictor models
//
// Example:
//
//	# Compare every preset predictor, CSV for a spreadsheet
//	branchstress predict --format csv > results.csv
//
//	# Run a custom predictor and keep the results
//	branchstress predict --config my-gshare.yaml --db results.db
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}
