package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/aastree"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of aastree",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("aastree version %s\n", strings.TrimSpace(aastree.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
