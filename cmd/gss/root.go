package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "gss",
		Short: "Golden Section Search solver",
		Long: `gss finds the minimum or maximum of a one-variable function inside a bracket
using Golden Section Search. It runs one-off from the command line, as a JSON API
(gss serve) or as an MCP tool server (gss mcp).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgPath, "config", "gss.yaml", "Path to the configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		newSolveCmd(a),
		newServeCmd(a),
		newHistoryCmd(a),
		newMCPCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}
