package cmd

import (
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "ridedispatch",
	Short:         "Fleet dispatch simulation",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json); defaults to the demo setup")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }
