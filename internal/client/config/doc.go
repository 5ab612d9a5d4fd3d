// Package config loads runtime configuration for the sigrelay CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional YAML or JSON file named by --config.
//  3. Command-line flags explicitly set by the user.
//
// Supported flags
//
//	-c, --config string       configuration file
//	-s, --server string       relay address (host:port for grpc, URL for http)
//	    --transport string    grpc or http
//	    --state string        path of the local state database
//	    --timeout duration    per-request timeout
//
// # File schema
//
// Durations use timex.Duration, so either "10s" or integer nanoseconds:
//
//	server: 127.0.0.1:50051
//	transport: grpc
//	state: ~/.sigrelay/state.db
//	timeout: 10s
package config
