package config

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-uistate/pkg/persist"
)

func noEnv(string) string { return "" }

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadWithEnv(filepath.Join(t.TempDir(), "missing.toml"), noEnv)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, persist.JSONCodec{}, cfg.Codec())
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel())
}

func TestLoadParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uistate.toml")
	doc := `
[server]
addr = ":8080"

[storage]
backend = "SQLite"
codec = "cbor"
ttl = "1h"

[remote]
base_url = "https://app.example.com"
timeout = "2s"

[toast]
default_duration = "3s"
max_visible = 4
dedupe_window = "500ms"
rate_per_second = 2.5

[table]
page_size = 25

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := LoadWithEnv(path, noEnv)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "/admin", cfg.Server.BasePath)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, time.Hour, cfg.Storage.TTL.Std())
	assert.Equal(t, persist.CBORCodec{}, cfg.Codec())
	assert.Equal(t, 25, cfg.Table.PageSize)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())

	opts := cfg.ToastOptions()
	assert.Equal(t, 3*time.Second, opts.DefaultDuration)
	assert.Equal(t, 4, opts.MaxVisible)
	assert.Equal(t, 500*time.Millisecond, opts.DedupeWindow)
	require.NotNil(t, opts.Limiter)
	assert.Equal(t, 1, opts.Limiter.Burst())

	client, err := cfg.RemoteClient()
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 1\n"), 0o600))
	_, err := LoadWithEnv(path, noEnv)
	assert.Error(t, err)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[toast]\ndefault_duration = \"soon\"\n"), 0o600))
	_, err := LoadWithEnv(path, noEnv)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	env := map[string]string{
		"GO_UISTATE_ADDR":            ":7000",
		"GO_UISTATE_STORAGE_BACKEND": "redis",
		"GO_UISTATE_REDIS_ADDR":      "localhost:6379",
		"GO_UISTATE_PAGE_SIZE":       "50",
	}
	cfg, err := LoadWithEnv("", func(key string) string { return env[key] })
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "redis", cfg.Storage.Backend)
	assert.Equal(t, "localhost:6379", cfg.Storage.RedisAddr)
	assert.Equal(t, 50, cfg.Table.PageSize)

	env["GO_UISTATE_PAGE_SIZE"] = "many"
	_, err = LoadWithEnv("", func(key string) string { return env[key] })
	assert.Error(t, err)
}

func TestOpenStoreBackends(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	for _, backend := range []string{"memory", "file", "sqlite"} {
		cfg := Default()
		cfg.Storage.Backend = backend
		cfg.Storage.Dir = dir
		store, closeFn, err := cfg.OpenStore()
		require.NoError(t, err, backend)
		require.NoError(t, store.Put(ctx, "k", []byte("v")), backend)
		got, err := store.Get(ctx, "k")
		require.NoError(t, err, backend)
		assert.Equal(t, []byte("v"), got, backend)
		require.NoError(t, closeFn(), backend)
	}

	cfg := Default()
	cfg.Storage.Backend = "etcd"
	_, closeFn, err := cfg.OpenStore()
	assert.True(t, errors.Is(err, ErrUnknownBackend))
	assert.NotNil(t, closeFn)
}

func TestRemoteClientDisabledWithoutURL(t *testing.T) {
	client, err := Default().RemoteClient()
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Toast.DefaultDuration = Duration(4 * time.Second)
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, cfg))
	assert.Contains(t, buf.String(), "default_duration")

	decoded := Default()
	require.NoError(t, Decode(&buf, &decoded))
	assert.Equal(t, cfg, decoded)
}
