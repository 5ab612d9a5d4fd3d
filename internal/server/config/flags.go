package config

import (
	"io"

	"github.com/spf13/pflag"
)

// parseFlags overlays Config with command-line flags.
//
// Supported flags:
//
//	-c, --config string             config file (consumed by parseFile)
//	-a, --http-addr string          HTTP bind address
//	-g, --grpc-addr string          gRPC bind address
//	-t, --session-ttl duration      default session lifetime
//	    --max-session-ttl duration  upper bound on requested lifetimes
//	    --assertion-max-age duration
//	-l, --log-level string
//
// Only flags present in args change the config, so file values survive
// unless explicitly overridden.
func parseFlags(config *Config, args []string) error {
	fs := pflag.NewFlagSet("sigrelay-server", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringP("config", "c", "", "path to config file (.json or .yaml)")
	fs.StringVarP(&config.HTTPAddr, "http-addr", "a", config.HTTPAddr, "HTTP bind address")
	fs.StringVarP(&config.GRPCAddr, "grpc-addr", "g", config.GRPCAddr, "gRPC bind address")
	fs.DurationVarP(&config.DefaultSessionTTL, "session-ttl", "t", config.DefaultSessionTTL, "default session lifetime")
	fs.DurationVar(&config.MaxSessionTTL, "max-session-ttl", config.MaxSessionTTL, "maximum session lifetime")
	fs.DurationVar(&config.AssertionMaxAge, "assertion-max-age", config.AssertionMaxAge, "maximum age of a handshake assertion")
	fs.StringVarP(&config.LogLevel, "log-level", "l", config.LogLevel, "log level")

	return fs.Parse(args)
}
