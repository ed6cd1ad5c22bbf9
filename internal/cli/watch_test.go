package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWatcher struct{ names []string }

func (s stubWatcher) Watch(ctx context.Context) (<-chan string, error) {
	ch := make(chan string, len(s.names))
	for _, n := range s.names {
		ch <- n
	}
	close(ch)
	return ch, nil
}

func TestRunWatch(t *testing.T) {
	env := memoryEnv(t)
	ctx := context.Background()
	require.NoError(t, env.Store.Save(ctx, "plate", plate("SN-1")))
	env.watcher = stubWatcher{names: []string{"plate", "plate", "gone"}}

	var out bytes.Buffer
	require.NoError(t, RunWatch(ctx, env, &out, WatchOptions{Depth: 2, Plain: true}))

	got := out.String()
	assert.Contains(t, got, ">>> Watching 'memory' store.")
	assert.Equal(t, 1, bytes.Count(out.Bytes(), []byte("Change detected in 'plate'")))
	assert.Contains(t, got, "Nameplate")
	assert.Contains(t, got, "gone = removed")
	assert.Contains(t, got, "Waiting for changes...")
}

func TestRunWatch_Unwatchable(t *testing.T) {
	err := RunWatch(context.Background(), memoryEnv(t), &bytes.Buffer{}, WatchOptions{})
	assert.ErrorContains(t, err, "cannot be watched")
}

func TestRunWatch_Cancelled(t *testing.T) {
	env := memoryEnv(t)
	env.watcher = blockingWatcher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	require.NoError(t, RunWatch(ctx, env, &out, WatchOptions{}))
	assert.Contains(t, out.String(), "Watcher stopped.")
}

type blockingWatcher struct{}

func (blockingWatcher) Watch(ctx context.Context) (<-chan string, error) {
	return make(chan string), nil
}
