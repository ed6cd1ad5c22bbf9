package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/aastree/internal/config"
	"github.com/aretw0/aastree/pkg/adapters/aasfile"
	"github.com/aretw0/aastree/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plate(serial string) *domain.Package {
	pkg := domain.NewPackage("")
	_ = pkg.Add(domain.NewSubmodel("urn:sm:plate", "Nameplate",
		domain.NewProperty("SerialNumber", domain.ValueTypeString, serial)))
	return pkg
}

func serialOf(t *testing.T, pkg *domain.Package) any {
	t.Helper()
	require.Len(t, pkg.Submodels(), 1)
	e, ok := pkg.Submodels()[0].Element("SerialNumber")
	require.True(t, ok)
	return e.(*domain.Property).Value
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Path = filepath.Join(t.TempDir(), "packages")
	return cfg
}

func TestNewEnv_StoreKinds(t *testing.T) {
	tests := []struct {
		name      string
		configure func(t *testing.T, cfg *config.Config)
		watchable bool
	}{
		{
			name:      "memory",
			configure: func(t *testing.T, cfg *config.Config) { cfg.Store.Kind = "memory" },
		},
		{
			name:      "file",
			configure: func(t *testing.T, cfg *config.Config) { cfg.Store.Format = "yaml" },
			watchable: true,
		},
		{
			name: "sqlite",
			configure: func(t *testing.T, cfg *config.Config) {
				cfg.Store.Kind = "sqlite"
				cfg.Store.Path = filepath.Join(t.TempDir(), "packages.db")
			},
		},
		{
			name: "redis",
			configure: func(t *testing.T, cfg *config.Config) {
				cfg.Store.Kind = "redis"
				cfg.Store.RedisAddr = miniredis.RunT(t).Addr()
				cfg.Store.Prefix = "test:"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.configure(t, cfg)
			env, err := NewEnv(cfg, false)
			require.NoError(t, err)
			t.Cleanup(func() { assert.NoError(t, env.Close()) })

			ctx := context.Background()
			require.NoError(t, env.Store.Save(ctx, "plate", plate("SN-1")))
			got, err := env.Store.Load(ctx, "plate")
			require.NoError(t, err)
			assert.Equal(t, "SN-1", serialOf(t, got))
			assert.Equal(t, tt.watchable, env.Watcher() != nil)
		})
	}
}

func TestNewEnv_Encryption(t *testing.T) {
	cfg := testConfig(t)
	cfg.Encryption.KeyHex = strings.Repeat("ab", 32)
	env, err := NewEnv(cfg, false)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, env.Store.Save(ctx, "plate", plate("SN-SECRET")))

	raw, err := os.ReadFile(filepath.Join(cfg.Store.Path, "plate.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "SN-SECRET")

	got, err := env.Store.Load(ctx, "plate")
	require.NoError(t, err)
	assert.Equal(t, "SN-SECRET", serialOf(t, got))
}

func TestNewEnv_Redact(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Kind = "memory"
	cfg.Redact = []string{"^Serial"}
	env, err := NewEnv(cfg, false)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, env.Store.Save(ctx, "plate", plate("SN-1")))
	got, err := env.Store.Load(ctx, "plate")
	require.NoError(t, err)
	assert.Equal(t, "***", serialOf(t, got))
}

func TestNewEnv_Errors(t *testing.T) {
	cfg := testConfig(t)
	cfg.Redact = []string{"["}
	_, err := NewEnv(cfg, false)
	assert.ErrorContains(t, err, "invalid redact pattern")

	cfg = testConfig(t)
	cfg.LogLevel = "loud"
	_, err = NewEnv(cfg, false)
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Store.Kind = "tape"
	_, err = NewEnv(cfg, false)
	assert.ErrorContains(t, err, "unknown store kind")
}

func TestNewEditor_CountsEdits(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Kind = "memory"
	cfg.MaxUndos = 3
	env, err := NewEnv(cfg, true)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "plate.json")
	require.NoError(t, aasfile.Write(plate("SN-1"), path))
	sess, info, err := openFile(env, path)
	require.NoError(t, err)

	opts := EditOptions{Item: "submodels/Nameplate", Path: "submodel_element/Property 0/value"}
	for i := range 5 {
		_, err := sess.Set(targetOf(info, opts), "SN-"+string(rune('2'+i)))
		require.NoError(t, err)
	}
	h, err := sess.History(targetOf(info, EditOptions{Item: opts.Item, Path: "/"}))
	require.NoError(t, err)
	assert.Equal(t, 3, h.Undo)

	families, err := env.Registry.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "aastree_edits_total")
}
