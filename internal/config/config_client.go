package config

import (
	"fmt"
	"time"
)

// ClientAdapter holds network settings used by the remote authority client.
type ClientAdapter struct {
	// BaseURL is the authority base URL.
	BaseURL string
	// RequestTimeout is the timeout of every outbound request.
	RequestTimeout time.Duration
}

// ClientStorage groups local storage settings.
type ClientStorage struct {
	// DSN is the SQLite file of the local store, or ":memory:" for an
	// ephemeral in-process store.
	DSN string
	// LegacyPath is the legacy JSON store migrated on start-up.
	LegacyPath string
}

// ClientWorkers contains background sync settings.
type ClientWorkers struct {
	SyncInterval    time.Duration
	RetryInterval   time.Duration
	PushConcurrency int
}

// ClientNotifier contains cross-tab notification settings.
type ClientNotifier struct {
	// ProfileDir enables the cross-process bridge when non-empty.
	ProfileDir string
	EventTTL   time.Duration
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	LogPath  string
	Adapter  ClientAdapter
	Storage  ClientStorage
	Workers  ClientWorkers
	Notifier ClientNotifier
}

// GetClientConfig builds and validates the client configuration. flagCfg is
// the value returned by [RegisterClientFlags] after the flags were parsed;
// nil means no flags.
func GetClientConfig(flagCfg *StructuredConfig) (*ClientConfig, error) {
	cfg, err := newConfigBuilder().
		withDefaults(clientDefaults()).
		withEnv().
		withFlags(flagCfg).
		withJSON().
		build()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		LogPath: cfg.App.LogPath,
		Adapter: ClientAdapter{
			BaseURL:        cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
		Storage: ClientStorage{
			DSN:        cfg.Storage.DB.DSN,
			LegacyPath: cfg.Storage.LegacyPath,
		},
		Workers: ClientWorkers{
			SyncInterval:    cfg.Workers.SyncInterval,
			RetryInterval:   cfg.Workers.RetryInterval,
			PushConcurrency: cfg.Workers.PushConcurrency,
		},
		Notifier: ClientNotifier{
			ProfileDir: cfg.Notifier.ProfileDir,
			EventTTL:   cfg.Notifier.EventTTL,
		},
	}

	return clientCfg, clientCfg.validate()
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.BaseURL == "" || cfg.Adapter.RequestTimeout <= 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Workers.SyncInterval <= 0 || cfg.Workers.PushConcurrency < 1 {
		return ErrInvalidWorkerConfigs
	}

	if cfg.Workers.RetryInterval <= 0 || cfg.Workers.RetryInterval > cfg.Workers.SyncInterval {
		cfg.Workers.RetryInterval = cfg.Workers.SyncInterval
	}

	return nil
}
