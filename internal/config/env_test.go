// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("APP_VERSION", "9.9.9")
	t.Setenv("STORAGE_DB_DRIVER", "postgres")
	t.Setenv("STORAGE_DB_DATABASE_URI", "postgres://localhost/notes")
	t.Setenv("SERVER_ADDRESS", "localhost:7000")
	t.Setenv("ADAPTER_REQUEST_TIMEOUT", "7s")
	t.Setenv("WORKERS_PUSH_CONCURRENCY", "2")
	t.Setenv("NOTIFIER_PROFILE_DIR", "/tmp/profile")
	t.Setenv("CONFIG", "/etc/notes.json")

	var cfg StructuredConfig
	require.NoError(t, parseEnv(&cfg))

	assert.Equal(t, "9.9.9", cfg.App.Version)
	assert.Equal(t, "postgres", cfg.Storage.DB.Driver)
	assert.Equal(t, "postgres://localhost/notes", cfg.Storage.DB.DSN)
	assert.Equal(t, "localhost:7000", cfg.Server.HTTPAddress)
	assert.Equal(t, 7*time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, 2, cfg.Workers.PushConcurrency)
	assert.Equal(t, "/tmp/profile", cfg.Notifier.ProfileDir)
	assert.Equal(t, "/etc/notes.json", cfg.JSONFilePath)
}

func TestParseEnv_InvalidValue(t *testing.T) {
	t.Setenv("WORKERS_SYNC_INTERVAL", "not-a-duration")

	var cfg StructuredConfig
	assert.Error(t, parseEnv(&cfg))
}
