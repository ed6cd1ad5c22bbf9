package main

import (
	"os"

	"github.com/aretw0/aastree/internal/cli"
	"github.com/spf13/cobra"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage packages kept in the configured store",
	Long:  `Push, pull, list and remove packages in the store selected by the config (memory, file, redis or sqlite).`,
}

var pushCmd = &cobra.Command{
	Use:   "push FILE [NAME]",
	Short: "Store a package file under NAME (default: the file base name)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: withEnv(func(cmd *cobra.Command, args []string, env *cli.Env) error {
		name := ""
		if len(args) == 2 {
			name = args[1]
		}
		return cli.RunPush(cmd.Context(), env, os.Stdout, args[0], name)
	}),
}

var pullCmd = &cobra.Command{
	Use:   "pull NAME FILE",
	Short: "Write the package stored under NAME to FILE",
	Args:  cobra.ExactArgs(2),
	RunE: withEnv(func(cmd *cobra.Command, args []string, env *cli.Env) error {
		return cli.RunPull(cmd.Context(), env, os.Stdout, args[0], args[1])
	}),
}

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored packages",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, args []string, env *cli.Env) error {
		return cli.RunList(cmd.Context(), env, os.Stdout)
	}),
}

var storeRmCmd = &cobra.Command{
	Use:   "rm NAME",
	Short: "Remove a stored package",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, args []string, env *cli.Env) error {
		return cli.RunRemove(cmd.Context(), env, os.Stdout, args[0])
	}),
}

func init() {
	storeCmd.AddCommand(pushCmd, pullCmd, lsCmd, storeRmCmd)
	rootCmd.AddCommand(storeCmd)
}
