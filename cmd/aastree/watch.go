package main

import (
	"context"
	"os"

	"github.com/aretw0/aastree"
	"github.com/aretw0/aastree/internal/cli"
	"github.com/aretw0/aastree/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reprint stored packages as they change",
	Long:  `Watches the configured store and prints the tree of every package that is written or removed. Requires the file store.`,
	Args:  cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, args []string, env *cli.Env) error {
		depth, _ := cmd.Flags().GetInt("depth")
		plain, _ := cmd.Flags().GetBool("plain")
		if !plain {
			tui.PrintBanner(os.Stdout, aastree.Version)
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()
		err := cli.RunWatch(sigCtx, env, os.Stdout, cli.WatchOptions{Depth: depth, Plain: plain})
		if sig := sigCtx.Signal(); sig != nil {
			env.Logger.Info("Stopping watcher (signal received)", "signal", sig)
		}
		return err
	}),
}

func init() {
	watchCmd.Flags().IntP("depth", "d", 2, "Number of levels to print")
	watchCmd.Flags().Bool("plain", false, "Disable colors and the banner")
	rootCmd.AddCommand(watchCmd)
}
