package config

import (
	"github.com/dmitrijs2005/sigrelay/internal/configx"
	"github.com/dmitrijs2005/sigrelay/internal/flagx"
	"github.com/dmitrijs2005/sigrelay/internal/timex"
)

// FileConfig is the on-disk shape of Config. Every field is optional; unset
// fields keep the value they had before the file was applied.
type FileConfig struct {
	HTTPAddr          *string         `json:"http_addr" yaml:"http_addr"`
	GRPCAddr          *string         `json:"grpc_addr" yaml:"grpc_addr"`
	DefaultSessionTTL *timex.Duration `json:"default_session_ttl" yaml:"default_session_ttl"`
	MaxSessionTTL     *timex.Duration `json:"max_session_ttl" yaml:"max_session_ttl"`
	AssertionMaxAge   *timex.Duration `json:"assertion_max_age" yaml:"assertion_max_age"`
	LogLevel          *string         `json:"log_level" yaml:"log_level"`
}

func parseFile(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	var fc FileConfig
	if err := configx.DecodeFile(path, &fc); err != nil {
		return err
	}
	fc.apply(config)
	return nil
}

func (fc *FileConfig) apply(c *Config) {
	if fc.HTTPAddr != nil {
		c.HTTPAddr = *fc.HTTPAddr
	}
	if fc.GRPCAddr != nil {
		c.GRPCAddr = *fc.GRPCAddr
	}
	if fc.DefaultSessionTTL != nil {
		c.DefaultSessionTTL = fc.DefaultSessionTTL.Duration
	}
	if fc.MaxSessionTTL != nil {
		c.MaxSessionTTL = fc.MaxSessionTTL.Duration
	}
	if fc.AssertionMaxAge != nil {
		c.AssertionMaxAge = fc.AssertionMaxAge.Duration
	}
	if fc.LogLevel != nil {
		c.LogLevel = *fc.LogLevel
	}
}
