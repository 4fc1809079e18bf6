// Package config loads, merges and validates note-keeper configuration.
//
// Sources are merged in the following priority order (later sources
// override earlier non-zero fields):
//  1. Built-in defaults
//  2. JSON config file (path from CONFIG or -c/--config)
//  3. Environment variables
//  4. Command-line flags
//
// The entry points are [GetServerConfig] for the authority server and
// [GetClientConfig] for the client runtime.
package config
