package main

import (
	"os"

	"github.com/aretw0/aastree/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check a package for broken references and mistyped values",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunValidate(os.Stdout, args[0])
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
