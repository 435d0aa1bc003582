package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cyclesearch/pkg/cache"
	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
)

// configFile is the config file name inside the config directory.
const configFile = "config.toml"

// Environment overrides, applied after the config file.
const (
	envRedis   = "CYCLESEARCH_REDIS"
	envArchive = "CYCLESEARCH_ARCHIVE"
)

// Config holds user defaults read from config.toml:
//
//	workers = 8
//	buffer_mb = 64
//	max_scans = 128
//	archive = "mongodb://localhost:27017"
//	cache_ttl = "720h"
//
//	[redis]
//	addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
//	max_scans_limit = 256
//	search_timeout = "2m"
//	max_buffer_mb = 64
//
// Command-line flags take precedence over every field.
type Config struct {
	Workers  int    `toml:"workers"`
	BufferMB int    `toml:"buffer_mb"`
	MaxScans int    `toml:"max_scans"`
	Archive  string `toml:"archive"`

	CacheTTL duration          `toml:"cache_ttl"`
	Redis    cache.RedisConfig `toml:"redis"`
	Server   ServerConfig      `toml:"server"`
}

// ServerConfig holds defaults for the serve command.
type ServerConfig struct {
	Addr          string   `toml:"addr"`
	MaxScansLimit int      `toml:"max_scans_limit"`
	SearchTimeout duration `toml:"search_timeout"`
	MaxBufferMB   int      `toml:"max_buffer_mb"`
}

// duration decodes TOML strings such as "90s" or "720h".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// configPath returns the path of the user config file.
func configPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// loadConfig reads the config file at path. A missing file yields the
// zero Config. Environment overrides are applied in both cases.
func loadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !os.IsNotExist(err) {
			return Config{}, cerrors.Wrap(cerrors.ErrCodeInvalidFormat, err, "read config %s", path)
		}
	}
	if v := os.Getenv(envRedis); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv(envArchive); v != "" {
		cfg.Archive = v
	}
	return cfg, nil
}

// loadUserConfig reads the config file from the config directory.
func loadUserConfig() (Config, error) {
	path, err := configPath()
	if err != nil {
		path = ""
	}
	return loadConfig(path)
}
