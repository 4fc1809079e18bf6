package config

import (
	"github.com/spf13/pflag"
)

// RegisterClientFlags binds the client flags to fs and returns the config
// they populate once fs is parsed (cobra parses persistent flags before
// running a command).
//
// Flags:
//
//	--server authority base URL
//	--db local database path (":memory:" for an ephemeral store)
//	--legacy legacy JSON store to migrate on start-up
//	--profile profile directory shared by all tabs
//	--sync-interval period of background sync
//	--request-timeout outbound request timeout
//	--log log file path
//	-c/--config json file path with configs
func RegisterClientFlags(fs *pflag.FlagSet) *StructuredConfig {
	cfg := &StructuredConfig{}

	fs.StringVar(&cfg.Adapter.HTTPAddress, "server", "", "Remote authority base URL")
	fs.DurationVar(&cfg.Adapter.RequestTimeout, "request-timeout", 0, "Request timeout (e.g., 5s)")
	fs.StringVar(&cfg.Storage.DB.DSN, "db", "", "Local database path")
	fs.StringVar(&cfg.Storage.LegacyPath, "legacy", "", "Legacy JSON store to migrate")
	fs.StringVar(&cfg.Notifier.ProfileDir, "profile", "", "Profile directory shared by all tabs")
	fs.DurationVar(&cfg.Workers.SyncInterval, "sync-interval", 0, "Background sync interval")
	fs.StringVar(&cfg.App.LogPath, "log", "", "Log file path")
	fs.StringVarP(&cfg.JSONFilePath, "config", "c", "", "JSON config file path")

	return cfg
}
