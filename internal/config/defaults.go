package config

import "time"

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

func serverDefaults() *StructuredConfig {
	return &StructuredConfig{
		App:     App{Version: "dev"},
		Storage: Storage{DB: DB{Driver: DriverSQLite, DSN: "authority.db"}},
		Server: Server{
			HTTPAddress:    "localhost:8080",
			RequestTimeout: 10 * time.Second,
		},
	}
}

func clientDefaults() *StructuredConfig {
	return &StructuredConfig{
		Storage: Storage{DB: DB{Driver: DriverSQLite, DSN: "notes.db"}},
		Adapter: Adapter{
			HTTPAddress:    "http://localhost:8080",
			RequestTimeout: 5 * time.Second,
		},
		Workers: Workers{
			SyncInterval:    time.Minute,
			RetryInterval:   15 * time.Second,
			PushConcurrency: 4,
		},
		Notifier: Notifier{EventTTL: time.Minute},
	}
}
