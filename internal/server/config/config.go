// Package config handles configuration for the relay server: defaults, an
// optional config file and command-line flags, applied in that order.
package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the sigrelay server.
//
// Fields:
//   - HTTPAddr / GRPCAddr: bind addresses of the two public endpoints.
//   - DefaultSessionTTL: lifetime of a session when the client asks for none.
//   - MaxSessionTTL: upper bound on a requested session lifetime.
//   - AssertionMaxAge: how old a handshake assertion may be.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	HTTPAddr          string
	GRPCAddr          string
	DefaultSessionTTL time.Duration
	MaxSessionTTL     time.Duration
	AssertionMaxAge   time.Duration
	LogLevel          string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":3000"
	c.GRPCAddr = ":50051"
	c.DefaultSessionTTL = time.Hour
	c.MaxSessionTTL = 24 * time.Hour
	c.AssertionMaxAge = 5 * time.Minute
	c.LogLevel = "info"
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" && c.GRPCAddr == "" {
		return fmt.Errorf("at least one of http and grpc addresses must be set")
	}
	if c.DefaultSessionTTL <= 0 {
		return fmt.Errorf("default session ttl must be positive, got %s", c.DefaultSessionTTL)
	}
	if c.MaxSessionTTL < c.DefaultSessionTTL {
		return fmt.Errorf("max session ttl %s is below default %s", c.MaxSessionTTL, c.DefaultSessionTTL)
	}
	if c.AssertionMaxAge <= 0 {
		return fmt.Errorf("assertion max age must be positive, got %s", c.AssertionMaxAge)
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then the file named by
// -c/--config (if any) and finally the remaining flags in args.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
