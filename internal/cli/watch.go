package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/aretw0/aastree/internal/presentation/tui"
	"github.com/aretw0/aastree/pkg/domain"
	"github.com/aretw0/aastree/pkg/session"
)

// settleDelay lets bursts of file events for one save coalesce.
const settleDelay = 100 * time.Millisecond

// WatchOptions configures RunWatch.
type WatchOptions struct {
	Depth int
	Plain bool
}

// RunWatch reprints every package of the store as it changes, until ctx is
// cancelled or the store stops reporting.
func RunWatch(ctx context.Context, env *Env, out io.Writer, opts WatchOptions) error {
	watcher := env.Watcher()
	if watcher == nil {
		return fmt.Errorf("store %q cannot be watched", env.Config.Store.Kind)
	}
	events, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}

	env.Logger.Info("Starting Watcher", "store", env.Config.Store.Kind)
	printSystemMessage(out, "Watching '%s' store.", env.Config.Store.Kind)

	printer := tui.NewTreePrinter(out)
	if opts.Plain {
		printer = tui.NewPlainTreePrinter(out)
	}

	for {
		select {
		case <-ctx.Done():
			printSystemMessage(out, "Watcher stopped.")
			return nil
		case name, ok := <-events:
			if !ok {
				return nil
			}
			names := drain(ctx, events, name)
			for _, n := range names {
				printSystemMessage(out, "Change detected in '%s'.", n)
				if err := reprint(ctx, env, printer, n, opts.Depth); err != nil {
					if isInterrupted(err) {
						return nil
					}
					env.Logger.Error("Reload failed", "name", n, "err", err)
					printSystemMessage(out, "Could not load '%s': %v", n, err)
				}
			}
			printSystemMessage(out, "Waiting for changes...")
		}
	}
}

// drain collects the names reported within settleDelay after first.
func drain(ctx context.Context, events <-chan string, first string) []string {
	seen := map[string]bool{first: true}
	timer := time.NewTimer(settleDelay)
	defer timer.Stop()
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-timer.C:
			break loop
		case name, ok := <-events:
			if !ok {
				break loop
			}
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func reprint(ctx context.Context, env *Env, printer *tui.TreePrinter, name string, depth int) error {
	sess := env.NewSession()
	info, err := sess.Pull(ctx, name)
	if errors.Is(err, domain.ErrPackageNotFound) {
		printer.Print(session.NodeView{Name: name, Value: "removed"})
		return nil
	}
	if err != nil {
		return err
	}
	v, err := sess.Get(session.Target{Item: info.Name}, depth)
	if err != nil {
		return err
	}
	printer.Print(v)
	return nil
}
