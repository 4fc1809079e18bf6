// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container shared by the
// server and client binaries.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds process-wide settings.
	App App `envPrefix:"APP_"`

	// Storage holds the database settings of the local store (client) or
	// the authority repository (server).
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds the inbound HTTP settings of the authority server.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds the outbound settings of the remote authority client.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Workers holds background sync settings.
	Workers Workers `envPrefix:"WORKERS_"`

	// Notifier holds cross-tab notification settings.
	Notifier Notifier `envPrefix:"NOTIFIER_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds process-wide settings.
type App struct {
	// Version is exposed via GET /version.
	// Env: APP_VERSION
	Version string `env:"VERSION"`

	// LogPath is the client log file. Empty places it next to the binary.
	// Env: APP_LOG_PATH
	LogPath string `env:"LOG_PATH"`
}

// Storage groups database settings.
type Storage struct {
	// DB holds the SQL connection settings.
	DB DB `envPrefix:"DB_"`

	// LegacyPath is the client's pre-SQLite JSON store. When the file
	// exists it is migrated once into the local store and removed.
	// Env: STORAGE_LEGACY_PATH
	LegacyPath string `env:"LEGACY_PATH"`
}

// DB holds connection settings for a SQL backend.
type DB struct {
	// Driver is "sqlite3" or "postgres". The client always uses sqlite3.
	// Env: STORAGE_DB_DRIVER
	Driver string `env:"DRIVER"`

	// DSN is the connection string: a file path (or ":memory:") for
	// sqlite3, a postgres URL for postgres.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Server holds inbound HTTP settings.
type Server struct {
	// HTTPAddress is the listen address in "host:port" form.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds the handling time of a single request.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Adapter holds outbound settings of the remote authority client.
type Adapter struct {
	// HTTPAddress is the base URL of the authority (scheme optional).
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the implicit timeout of every network call; expiry
	// is treated as a connectivity failure.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Workers holds background sync settings.
type Workers struct {
	// SyncInterval is the period of timer-triggered sync cycles.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`

	// RetryInterval is the period used instead of SyncInterval while the
	// authority is unreachable.
	// Env: WORKERS_RETRY_INTERVAL
	RetryInterval time.Duration `env:"RETRY_INTERVAL"`

	// PushConcurrency limits concurrent pushes of pending notes.
	// Env: WORKERS_PUSH_CONCURRENCY
	PushConcurrency int `env:"PUSH_CONCURRENCY"`
}

// Notifier holds cross-tab notification settings.
type Notifier struct {
	// ProfileDir is the directory shared by all client processes of one
	// profile. Empty disables the cross-process bridge.
	// Env: NOTIFIER_PROFILE_DIR
	ProfileDir string `env:"PROFILE_DIR"`

	// EventTTL is how long published event files are kept before pruning.
	// Env: NOTIFIER_EVENT_TTL
	EventTTL time.Duration `env:"EVENT_TTL"`
}
