package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/ridedispatch/qa/scenarios"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Scripted dispatch scenarios",
}

var scenarioRunCmd = &cobra.Command{
	Use:   "run FILE...",
	Short: "Run scenario files and report expectation failures",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runScenarios,
}

func init() {
	scenarioCmd.AddCommand(scenarioRunCmd)
	rootCmd.AddCommand(scenarioCmd)
}

func runScenarios(cmd *cobra.Command, args []string) error {
	results, err := scenarios.RunFiles(args)
	out := cmd.OutOrStdout()
	for _, r := range results {
		if r.OK() {
			fmt.Fprintf(out, "PASS %s\n", r.Name)
			continue
		}
		fmt.Fprintf(out, "FAIL %s\n", r.Name)
		for _, f := range r.Failures {
			fmt.Fprintf(out, "    %s\n", f)
		}
	}
	return err
}
