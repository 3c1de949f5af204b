package cmd

import (
	"fmt"

	"github.com/rpgo/retirement-planner/internal/config"
	"github.com/spf13/cobra"
)

func newExampleCmd(_ *options) *cobra.Command {
	return &cobra.Command{
		Use:   "example [file]",
		Short: "Write an example plan file",
		Long:  "Writes a complete example plan. The format follows the file extension (.yaml, .toml, .json); without a file the YAML plan goes to stdout.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExample,
	}
}

func runExample(c *cobra.Command, args []string) error {
	parser := config.NewInputParser()
	plan := parser.CreateExampleConfiguration()

	if len(args) == 0 {
		data, err := parser.Marshal(plan, "yaml")
		if err != nil {
			return err
		}
		_, err = c.OutOrStdout().Write(data)
		return err
	}

	if err := parser.SaveConfiguration(plan, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(c.OutOrStdout(), "Example plan written to %s\n", args[0])
	return nil
}
