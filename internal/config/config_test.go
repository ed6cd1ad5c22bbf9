package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/aastree/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aastree.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(config.EnvVar, "")
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
max_undos: 10
store:
  kind: redis
  redis_addr: localhost:6379
  ttl: 1h
http:
  addr: 127.0.0.1:9000
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.MaxUndos)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "redis", cfg.Store.Kind)
	assert.Equal(t, time.Hour, cfg.Store.TTL)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv(config.EnvVar, writeConfig(t, "log_level: debug\n"))
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown store", "store:\n  kind: s3\n", "Config.Store.Kind must be one of"},
		{"redis without addr", "store:\n  kind: redis\n", "Config.Store.RedisAddr is required"},
		{"short key", "encryption:\n  key: abcd\n", "Config.Encryption.KeyHex must be 64 characters long"},
		{"zero undos", "max_undos: 0\n", "Config.MaxUndos is invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEncryptionKeys(t *testing.T) {
	_, _, ok, err := config.EncryptionConfig{}.Keys()
	require.NoError(t, err)
	assert.False(t, ok)

	key := strings.Repeat("ab", 32)
	active, fallbacks, ok, err := config.EncryptionConfig{KeyHex: key, FallbackKeys: []string{strings.Repeat("01", 32)}}.Keys()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, active, 32)
	require.Len(t, fallbacks, 1)
	assert.Equal(t, byte(1), fallbacks[0][0])
}
