package main

import (
	"os"

	"github.com/aretw0/aastree/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph FILE",
	Short: "Export the package graph visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of the identifiables of the package and the references between them.`,
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, args []string, env *cli.Env) error {
		focus, _ := cmd.Flags().GetString("focus")
		return cli.RunGraph(env, os.Stdout, args[0], focus)
	}),
}

func init() {
	graphCmd.Flags().String("focus", "", "Identifier of the object to highlight")
	rootCmd.AddCommand(graphCmd)
}
