package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/branchstress/completion"
	"github.com/sarchlab/branchstress/harness"
	"github.com/sarchlab/branchstress/mem"
	"github.com/sarchlab/branchstress/stress"
)

type rootOptions struct {
	base uint64
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "branchstress",
		Short: "Branch-pattern stress suite",
		Long: "Runs eight deterministic branch patterns and reports the accumulated score\n" +
			"through the RESULT/STATUS/SENTINEL completion registers.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.base > completion.MaxBase {
				return commandError(fmt.Sprintf("invalid --base 0x%X: must be at most 0x%X", opts.base, completion.MaxBase), nil)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuite(cmd, opts)
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return commandError("invalid flags", err)
	})

	cmd.PersistentFlags().Uint64Var(&opts.base, "base", 0, "base address of the completion registers")

	cmd.AddCommand(newPhasesCommand())
	cmd.AddCommand(newConfigCommand())
	cmd.AddCommand(newPredictCommand(opts))

	return cmd
}

func runSuite(cmd *cobra.Command, opts *rootOptions) error {
	memory := mem.NewMemory()
	stress.NewSuite().Execute(completion.NewMemorySink(memory, opts.base))

	c, ok := completion.Read(memory, opts.base)
	if !ok {
		return &exitError{code: exitFailure, message: "sentinel was not written"}
	}

	h := harness.NewHarness(harness.HarnessConfig{Output: cmd.OutOrStdout()})
	h.PrintCompletion(c)

	if !c.Passed() {
		return &exitError{code: exitFailure, message: "run reported failure"}
	}
	return nil
}

func newPhasesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "phases",
		Short: "Print the per-phase score table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h := harness.NewHarness(harness.HarnessConfig{Output: cmd.OutOrStdout()})
			h.PrintScores(stress.NewSuite().RunPhases())
			return nil
		},
	}
}
