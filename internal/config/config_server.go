package config

import (
	"fmt"
	"time"
)

// ServerDB contains connection settings of the authority repository.
type ServerDB struct {
	// Driver is [DriverSQLite] or [DriverPostgres].
	Driver string
	// DSN is the connection string for Driver.
	DSN string
}

// ServerHTTP contains inbound HTTP settings.
type ServerHTTP struct {
	// Address is the listen address in "host:port" form.
	Address string
	// RequestTimeout bounds the handling time of one request.
	RequestTimeout time.Duration
}

// ServerConfig is the authority server configuration assembled from
// [StructuredConfig].
type ServerConfig struct {
	Version string
	DB      ServerDB
	HTTP    ServerHTTP
}

// GetServerConfig builds and validates the server configuration from
// defaults, the optional JSON file, the environment and args (in ascending
// priority).
func GetServerConfig(args []string) (*ServerConfig, error) {
	flagCfg, err := ParseFlags(args)
	if err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	cfg, err := newConfigBuilder().
		withDefaults(serverDefaults()).
		withEnv().
		withFlags(flagCfg).
		withJSON().
		build()
	if err != nil {
		return nil, err
	}

	serverCfg := &ServerConfig{
		Version: cfg.App.Version,
		DB: ServerDB{
			Driver: cfg.Storage.DB.Driver,
			DSN:    cfg.Storage.DB.DSN,
		},
		HTTP: ServerHTTP{
			Address:        cfg.Server.HTTPAddress,
			RequestTimeout: cfg.Server.RequestTimeout,
		},
	}

	return serverCfg, serverCfg.validate()
}

func (cfg *ServerConfig) validate() error {
	if cfg.DB.DSN == "" || !knownDriver(cfg.DB.Driver) {
		return ErrInvalidStorageConfigs
	}

	if cfg.HTTP.Address == "" {
		return ErrInvalidServerConfigs
	}

	return nil
}

func knownDriver(driver string) bool {
	return driver == DriverSQLite || driver == DriverPostgres
}
