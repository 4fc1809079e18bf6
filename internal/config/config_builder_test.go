package config

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func writeTempJSONConfig(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	f, err := os.CreateTemp(t.TempDir(), "config-*.json")
	require.NoError(t, err)
	_, err = f.Write(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

// ── build ─────────────────────────────────────────────────────────────────────

func TestBuild_EmptyBuilder(t *testing.T) {
	cfg, err := newConfigBuilder().build()
	require.NoError(t, err)
	assert.Equal(t, &StructuredConfig{}, cfg)
}

func TestBuild_PropagatesBuilderError(t *testing.T) {
	b := newConfigBuilder()
	b.err = assert.AnError

	cfg, err := b.build()
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

// TestBuild_Priority verifies defaults < JSON < env < flags.
func TestBuild_Priority(t *testing.T) {
	b := newConfigBuilder().withDefaults(&StructuredConfig{
		App:     App{Version: "default"},
		Server:  Server{HTTPAddress: "default:1", RequestTimeout: time.Second},
		Storage: Storage{DB: DB{Driver: DriverSQLite, DSN: "default.db"}},
	})
	b.json = &StructuredConfig{
		App:     App{Version: "json"},
		Server:  Server{HTTPAddress: "json:2"},
		Storage: Storage{DB: DB{DSN: "json.db"}},
	}
	b.env = &StructuredConfig{
		Server:  Server{HTTPAddress: "env:3"},
		Storage: Storage{DB: DB{DSN: "env.db"}},
	}
	b.flags = &StructuredConfig{
		Storage: Storage{DB: DB{DSN: "flags.db"}},
	}

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.App.Version)
	assert.Equal(t, "env:3", cfg.Server.HTTPAddress)
	assert.Equal(t, "flags.db", cfg.Storage.DB.DSN)
	assert.Equal(t, DriverSQLite, cfg.Storage.DB.Driver)
	assert.Equal(t, time.Second, cfg.Server.RequestTimeout)
}

// ── withJSON ──────────────────────────────────────────────────────────────────

func TestWithJSON_NoPathIsNoop(t *testing.T) {
	b := newConfigBuilder().withFlags(&StructuredConfig{}).withJSON()
	assert.NoError(t, b.err)
	assert.Nil(t, b.json)
}

func TestWithJSON_FlagsPathWinsOverEnv(t *testing.T) {
	envPath := writeTempJSONConfig(t, map[string]any{"app": map[string]any{"version": "from-env-file"}})
	flagPath := writeTempJSONConfig(t, map[string]any{"app": map[string]any{"version": "from-flag-file"}})

	b := newConfigBuilder()
	b.env = &StructuredConfig{JSONFilePath: envPath}
	b.flags = &StructuredConfig{JSONFilePath: flagPath}
	b.withJSON()

	require.NoError(t, b.err)
	require.NotNil(t, b.json)
	assert.Equal(t, "from-flag-file", b.json.App.Version)
}

func TestWithJSON_MissingFileSetsError(t *testing.T) {
	b := newConfigBuilder().withFlags(&StructuredConfig{JSONFilePath: "/does/not/exist.json"}).withJSON()
	assert.Error(t, b.err)

	_, err := b.build()
	assert.Error(t, err)
}

// ── GetServerConfig / GetClientConfig ─────────────────────────────────────────

func TestGetServerConfig_Defaults(t *testing.T) {
	cfg, err := GetServerConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "authority.db", cfg.DB.DSN)
	assert.Equal(t, "localhost:8080", cfg.HTTP.Address)
}

func TestGetServerConfig_EnvAndFlags(t *testing.T) {
	t.Setenv("STORAGE_DB_DRIVER", DriverPostgres)
	t.Setenv("STORAGE_DB_DATABASE_URI", "postgres://env")
	t.Setenv("SERVER_ADDRESS", "127.0.0.1:9000")

	cfg, err := GetServerConfig([]string{"-d", "postgres://flag"})
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "postgres://flag", cfg.DB.DSN)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Address)
}

func TestGetServerConfig_UnknownDriver(t *testing.T) {
	_, err := GetServerConfig([]string{"-driver", "mysql"})
	assert.ErrorIs(t, err, ErrInvalidStorageConfigs)
}

func TestGetClientConfig_Defaults(t *testing.T) {
	cfg, err := GetClientConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "notes.db", cfg.Storage.DSN)
	assert.Equal(t, "http://localhost:8080", cfg.Adapter.BaseURL)
	assert.Equal(t, time.Minute, cfg.Workers.SyncInterval)
	assert.Equal(t, 15*time.Second, cfg.Workers.RetryInterval)
	assert.Equal(t, 4, cfg.Workers.PushConcurrency)
}

func TestGetClientConfig_JSONFile(t *testing.T) {
	path := writeTempJSONConfig(t, map[string]any{
		"storage": map[string]any{"db": map[string]any{"dsn": ":memory:"}},
		"workers": map[string]any{"sync_interval": "10s", "retry_interval": "1m"},
	})

	cfg, err := GetClientConfig(&StructuredConfig{JSONFilePath: path})
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.Storage.DSN)
	assert.Equal(t, 10*time.Second, cfg.Workers.SyncInterval)
	// retry interval is clamped to the sync interval
	assert.Equal(t, 10*time.Second, cfg.Workers.RetryInterval)
}

func TestClientConfig_Validate(t *testing.T) {
	valid := func() *ClientConfig {
		return &ClientConfig{
			Adapter: ClientAdapter{BaseURL: "http://x", RequestTimeout: time.Second},
			Storage: ClientStorage{DSN: "notes.db"},
			Workers: ClientWorkers{SyncInterval: time.Minute, RetryInterval: time.Second, PushConcurrency: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*ClientConfig)
		wantErr error
	}{
		{name: "valid", mutate: func(*ClientConfig) {}},
		{name: "empty dsn", mutate: func(c *ClientConfig) { c.Storage.DSN = "" }, wantErr: ErrInvalidStorageConfigs},
		{name: "empty url", mutate: func(c *ClientConfig) { c.Adapter.BaseURL = "" }, wantErr: ErrInvalidAdapterConfigs},
		{name: "zero timeout", mutate: func(c *ClientConfig) { c.Adapter.RequestTimeout = 0 }, wantErr: ErrInvalidAdapterConfigs},
		{name: "zero interval", mutate: func(c *ClientConfig) { c.Workers.SyncInterval = 0 }, wantErr: ErrInvalidWorkerConfigs},
		{name: "zero concurrency", mutate: func(c *ClientConfig) { c.Workers.PushConcurrency = 0 }, wantErr: ErrInvalidWorkerConfigs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
