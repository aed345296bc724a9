package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Cache and store backends.
const (
	backendFile   = "file"
	backendRedis  = "redis"
	backendMemory = "memory"
	backendMongo  = "mongo"
	backendNone   = "none"
)

// Config is the optional TOML configuration file. Command-line flags
// override its values.
type Config struct {
	Workers       int `toml:"workers"`
	MaxFrontier   int `toml:"max_frontier"`
	MaxIterations int `toml:"max_iterations"`

	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects the result cache.
type CacheConfig struct {
	Backend   string   `toml:"backend"`    // file (default), redis or none
	Dir       string   `toml:"dir"`        // file backend directory
	RedisAddr string   `toml:"redis_addr"` // redis backend address
	Prefix    string   `toml:"prefix"`     // key prefix for shared backends
	TTL       Duration `toml:"ttl"`        // overrides the built-in TTLs when set
}

// StoreConfig selects where the server keeps run records.
type StoreConfig struct {
	Backend  string `toml:"backend"` // memory (default), file or mongo
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// ServerConfig configures "parsimony serve".
type ServerConfig struct {
	Addr       string   `toml:"addr"`
	MaxBody    int64    `toml:"max_body"`
	RunTimeout Duration `toml:"run_timeout"`
}

// Duration is a time.Duration read from a TOML string such as "90s".
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() *Config {
	return &Config{
		Cache:  CacheConfig{Backend: backendFile},
		Store:  StoreConfig{Backend: backendMemory},
		Server: ServerConfig{Addr: ":8080", MaxBody: 8 << 20, RunTimeout: Duration{10 * time.Minute}},
	}
}

// loadConfig reads the configuration at path on top of the defaults. An
// empty path reads the default location, where a missing file is not an
// error.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, "config.toml")
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case backendFile, backendRedis, backendNone:
	default:
		return fmt.Errorf("cache.backend: %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	if c.Cache.Backend == backendRedis && c.Cache.RedisAddr == "" {
		return fmt.Errorf("cache.redis_addr is required for the redis backend")
	}
	switch c.Store.Backend {
	case backendMemory, backendFile, backendMongo:
	default:
		return fmt.Errorf("store.backend: %q (must be one of: memory, file, mongo)", c.Store.Backend)
	}
	if c.Store.Backend == backendMongo && c.Store.MongoURI == "" {
		return fmt.Errorf("store.mongo_uri is required for the mongo backend")
	}
	if c.Cache.TTL.Duration < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	if c.Workers < 0 || c.MaxFrontier < 0 || c.MaxIterations < 0 {
		return fmt.Errorf("workers, max_frontier and max_iterations must be >= 0")
	}
	return nil
}
