package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/branchstress/predictor"
)

func newConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config PRESET FILE",
		Short: "Write a preset predictor config to a JSON or YAML file",
		Long: "Writes the named preset to FILE so it can be edited and passed back\n" +
			"with predict --config. The format follows the file extension.",
		Example: "  branchstress config gshare my-gshare.yaml",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, path := args[0], args[1]

			c, err := predictor.Preset(name)
			if err != nil {
				return commandError("invalid predictor", err)
			}
			if err := c.SaveConfig(path); err != nil {
				return commandError("failed to save config", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s predictor config to %s\n", name, path)
			return nil
		},
	}
}
