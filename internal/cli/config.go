package cli

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/safetree/pkg/errors"
	"github.com/matzehuels/safetree/pkg/pipeline"
)

const configFileName = "config.toml"

// Config is the optional config file. Flags win over config values.
//
//	depth = 4
//	max_nodes = 5000
//
//	[cache]
//	ttl = "12h"
//	prefix = "team-a"
//
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[sink]
//	target = "mongodb://localhost:27017/logs?collection=records"
//
//	[server]
//	addr = ":8080"
type Config struct {
	Depth    int          `toml:"depth"`
	MaxNodes int          `toml:"max_nodes"`
	Cache    CacheConfig  `toml:"cache"`
	Sink     SinkConfig   `toml:"sink"`
	Server   ServerConfig `toml:"server"`
}

// CacheConfig selects and tunes the result cache.
type CacheConfig struct {
	Disabled bool        `toml:"disabled"`
	Dir      string      `toml:"dir"`
	TTL      string      `toml:"ttl"`
	Prefix   string      `toml:"prefix"`
	Redis    RedisConfig `toml:"redis"`

	ttl time.Duration
}

// RedisConfig points the cache at a shared redis.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// SinkConfig is the default destination of stringify --sink.
type SinkConfig struct {
	Target string `toml:"target"`
}

// ServerConfig holds serve defaults.
type ServerConfig struct {
	Addr         string `toml:"addr"`
	MaxBodyBytes int64  `toml:"max_body_bytes"`
}

func defaultConfig() *Config {
	return &Config{
		Depth:    pipeline.DefaultMaxDepth,
		MaxNodes: pipeline.DefaultMaxNodes,
		Server:   ServerConfig{Addr: ":8080"},
	}
}

// defaultConfigPath returns ~/.config/safetree/config.toml, or "" when no
// home directory is known.
func defaultConfigPath() string {
	dir, err := configDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, configFileName)
}

func defaultConfigHint() string {
	return filepath.Join("$XDG_CONFIG_HOME", appName, configFileName)
}

// loadConfig reads path over the defaults. A missing file is only an error
// when the user named it explicitly. Unknown keys are logged, not fatal.
func loadConfig(path string, explicit bool, logger *log.Logger) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return nil, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
		}
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		logger.Warn("unknown config keys", "file", path, "keys", strings.Join(keys, ", "))
	}

	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "config %s", path)
	}
	logger.Debug("loaded config", "file", path)
	return cfg, nil
}

func (c *Config) validate() error {
	if err := errors.ValidateMaxDepth(c.Depth); err != nil {
		return err
	}
	if c.MaxNodes < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max_nodes must be >= 0")
	}
	if c.Cache.TTL != "" {
		ttl, err := time.ParseDuration(c.Cache.TTL)
		if err != nil || ttl <= 0 {
			return errors.New(errors.ErrCodeInvalidInput, "cache.ttl must be a positive duration, got %q", c.Cache.TTL)
		}
		c.Cache.ttl = ttl
	}
	return nil
}
