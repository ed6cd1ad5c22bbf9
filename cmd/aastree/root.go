package main

import (
	"fmt"
	"os"

	"github.com/aretw0/aastree/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "aastree",
	Short: "aastree edits Asset Administration Shell packages as trees",
	Long: `aastree projects AAS packages (JSON, YAML, XML and AASX) into a tree of rows
that can be browsed, edited with undo/redo, stored and served over HTTP or MCP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the YAML config file (default $AASTREE_CONFIG)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
}

// setup builds the environment from the persistent flags.
func setup(cmd *cobra.Command) (*cli.Env, error) {
	configPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")
	return cli.Setup(cli.Options{ConfigPath: configPath, Debug: debug})
}

// withEnv runs fn with a ready environment and releases it afterwards.
func withEnv(fn func(cmd *cobra.Command, args []string, env *cli.Env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		defer env.Close()
		return fn(cmd, args, env)
	}
}
