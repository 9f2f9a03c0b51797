package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/branchstress/harness"
	"github.com/sarchlab/branchstress/predictor"
	"github.com/sarchlab/branchstress/results"
)

var validFormats = []string{"text", "csv", "json"}

type predictOptions struct {
	predictors []string
	configs    []string
	format     string
	dbPath     string
	verbose    bool
}

func newPredictCommand(root *rootOptions) *cobra.Command {
	opts := &predictOptions{}

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Run the suite under branch predictor models",
		Long: "Replays every branch of the suite through each predictor and reports\n" +
			"per-phase misprediction rates and penalty cycles.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(cmd, root, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.predictors, "predictor", "p", nil,
		fmt.Sprintf("preset predictor to run (repeatable; one of %v; default: all)", predictor.PresetNames()))
	cmd.Flags().StringSliceVarP(&opts.configs, "config", "c", nil, "predictor config file, JSON or YAML (repeatable)")
	cmd.Flags().StringVar(&opts.format, "format", "text", "output format (text|csv|json)")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "SQLite database to record the run in")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "print per-phase progress")

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range validFormats {
		if f == format {
			return true
		}
	}
	return false
}

func buildHarnessConfig(cmd *cobra.Command, root *rootOptions, opts *predictOptions) (harness.HarnessConfig, error) {
	config := harness.HarnessConfig{
		CompletionBase: root.base,
		Output:         cmd.OutOrStdout(),
		Verbose:        opts.verbose,
	}

	for _, name := range opts.predictors {
		c, err := predictor.Preset(name)
		if err != nil {
			return config, commandError("invalid predictor", err)
		}
		config.Predictors = append(config.Predictors, harness.NamedConfig{Name: name, Config: c})
	}

	for _, path := range opts.configs {
		c, err := predictor.LoadConfig(path)
		if err != nil {
			return config, commandError("invalid config", err)
		}
		if err := c.Validate(); err != nil {
			return config, commandError(fmt.Sprintf("invalid config %s", path), err)
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		config.Predictors = append(config.Predictors, harness.NamedConfig{Name: name, Config: c})
	}

	if len(config.Predictors) == 0 {
		config.Predictors = harness.DefaultConfig().Predictors
	}

	// Names key the stored results, so a clash must fail before the run.
	if err := config.Validate(); err != nil {
		return config, commandError("invalid predictors", err)
	}

	return config, nil
}

func runPredict(cmd *cobra.Command, root *rootOptions, opts *predictOptions) error {
	if !isValidFormat(opts.format) {
		return commandError(fmt.Sprintf("invalid format %q: must be one of %v", opts.format, validFormats), nil)
	}

	config, err := buildHarnessConfig(cmd, root, opts)
	if err != nil {
		return err
	}

	h := harness.NewHarness(config)
	report := h.RunAll()

	switch opts.format {
	case "csv":
		h.PrintCSV(report)
	case "json":
		if err := h.PrintJSON(report); err != nil {
			return commandError("failed to write report", err)
		}
	default:
		h.PrintResults(report)
	}

	if opts.dbPath != "" {
		store, err := results.Open(opts.dbPath)
		if err != nil {
			return commandError("failed to open results database", err)
		}
		defer store.Close()

		if _, err := store.Save(cmd.Context(), report); err != nil {
			return commandError("failed to save results", err)
		}
	}

	for _, r := range report.Predictors {
		if !r.Completed {
			return &exitError{code: exitFailure, message: fmt.Sprintf("%s: sentinel was not written", r.Predictor)}
		}
	}
	if !report.Consistent {
		return &exitError{code: exitFailure, message: "predictors observed different branch traces"}
	}
	return nil
}
