package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/dmitrijs2005/sigrelay/internal/configx"
	"github.com/dmitrijs2005/sigrelay/internal/timex"
)

const (
	TransportGRPC = "grpc"
	TransportHTTP = "http"

	DefaultGRPCAddr = "127.0.0.1:50051"
	DefaultHTTPAddr = "http://127.0.0.1:3000"
)

// Config holds runtime settings for the CLI. An empty Server selects the
// default address of the chosen transport.
type Config struct {
	Server    string
	Transport string
	StatePath string
	Timeout   time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Server = ""
	c.Transport = TransportGRPC
	c.StatePath = defaultStatePath()
	c.Timeout = 10 * time.Second
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "sigrelay.db"
	}
	return filepath.Join(home, ".sigrelay", "state.db")
}

// Endpoint returns the address to dial.
func (c *Config) Endpoint() string {
	if c.Server != "" {
		return c.Server
	}
	if c.Transport == TransportHTTP {
		return DefaultHTTPAddr
	}
	return DefaultGRPCAddr
}

func (c *Config) Validate() error {
	switch c.Transport {
	case TransportGRPC, TransportHTTP:
	default:
		return fmt.Errorf("unknown transport %q, want %s or %s", c.Transport, TransportGRPC, TransportHTTP)
	}
	if c.StatePath == "" {
		return fmt.Errorf("state path must be set")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// FileConfig is the on-disk shape of Config.
type FileConfig struct {
	Server    *string         `json:"server" yaml:"server"`
	Transport *string         `json:"transport" yaml:"transport"`
	StatePath *string         `json:"state" yaml:"state"`
	Timeout   *timex.Duration `json:"timeout" yaml:"timeout"`
}

func (fc *FileConfig) apply(c *Config) {
	if fc.Server != nil {
		c.Server = *fc.Server
	}
	if fc.Transport != nil {
		c.Transport = strings.ToLower(*fc.Transport)
	}
	if fc.StatePath != nil {
		c.StatePath = expandHome(*fc.StatePath)
	}
	if fc.Timeout != nil {
		c.Timeout = fc.Timeout.Duration
	}
}

func expandHome(p string) string {
	rest, ok := strings.CutPrefix(p, "~/")
	if !ok {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, rest)
}

// RegisterFlags defines the configuration flags on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP("config", "c", "", "configuration file (yaml or json)")
	fs.StringP("server", "s", "", "relay address (default "+DefaultGRPCAddr+" for grpc, "+DefaultHTTPAddr+" for http)")
	fs.String("transport", d.Transport, "transport: grpc or http")
	fs.String("state", d.StatePath, "path of the local state database")
	fs.Duration("timeout", d.Timeout, "per-request timeout")
}

// Load builds a Config from defaults, the file named by --config and the
// flags set on fs, in that order. fs must have been populated by
// RegisterFlags and parsed.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	path, err := fs.GetString("config")
	if err != nil {
		return nil, err
	}
	if path != "" {
		var fc FileConfig
		if err := configx.DecodeFile(path, &fc); err != nil {
			return nil, err
		}
		fc.apply(cfg)
	}

	if err := applyFlags(cfg, fs); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	var err error
	if fs.Changed("server") {
		if cfg.Server, err = fs.GetString("server"); err != nil {
			return err
		}
	}
	if fs.Changed("transport") {
		t, err := fs.GetString("transport")
		if err != nil {
			return err
		}
		cfg.Transport = strings.ToLower(t)
	}
	if fs.Changed("state") {
		if cfg.StatePath, err = fs.GetString("state"); err != nil {
			return err
		}
	}
	if fs.Changed("timeout") {
		if cfg.Timeout, err = fs.GetDuration("timeout"); err != nil {
			return err
		}
	}
	return nil
}
