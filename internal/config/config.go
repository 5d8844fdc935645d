// Package config loads the mindcanvas configuration file.
//
// The file is TOML, read from $XDG_CONFIG_HOME/mindcanvas/config.toml
// (~/.config/mindcanvas/config.toml when XDG_CONFIG_HOME is unset). A
// missing file is not an error: every key has a default. After the file,
// the environment variables MINDCANVAS_STORE and MINDCANVAS_DATA_DIR
// override the storage backend and data directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mindcanvas/pkg/storage"
)

const appName = "mindcanvas"

// Environment overrides.
const (
	EnvStore   = "MINDCANVAS_STORE"
	EnvDataDir = "MINDCANVAS_DATA_DIR"
)

// Config is the whole configuration file.
type Config struct {
	Storage   Storage   `toml:"storage"`
	Clipboard Clipboard `toml:"clipboard"`
	Server    Server    `toml:"server"`
}

// Storage selects the persistence backend.
type Storage struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	SQLitePath    string `toml:"sqlite_path"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
	Breaker       bool   `toml:"breaker"`
}

// Clipboard controls mirroring copied nodes to the system clipboard.
type Clipboard struct {
	System bool `toml:"system"`
}

// Server configures `mindcanvas serve`.
type Server struct {
	Addr        string   `toml:"addr"`
	CORSOrigins []string `toml:"cors_origins"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Storage: Storage{
			Backend:       storage.BackendFile,
			Dir:           defaultDataDir(),
			RedisAddr:     "localhost:6379",
			RedisPrefix:   appName + ":",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: appName,
			Breaker:       true,
		},
		Server: Server{
			Addr:        ":8080",
			CORSOrigins: []string{"*"},
		},
	}
}

// Load reads the file at path over the defaults and applies environment
// overrides. An empty path means [DefaultPath]. A missing file yields the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}

	if path != "" {
		_, err := toml.DecodeFile(path, &cfg)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnv(&cfg, os.Getenv)
	cfg.Storage.Dir = expandHome(cfg.Storage.Dir)
	cfg.Storage.SQLitePath = expandHome(cfg.Storage.SQLitePath)
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv(EnvStore); v != "" {
		cfg.Storage.Backend = v
	}
	if v := getenv(EnvDataDir); v != "" {
		cfg.Storage.Dir = v
	}
}

var backends = []string{
	storage.BackendMemory,
	storage.BackendFile,
	storage.BackendSQLite,
	storage.BackendRedis,
	storage.BackendMongo,
}

// Validate reports configuration values no backend can use.
func (c Config) Validate() error {
	if !slices.Contains(backends, c.Storage.Backend) {
		return fmt.Errorf("storage.backend %q: must be one of %s", c.Storage.Backend, strings.Join(backends, ", "))
	}
	if c.Storage.Backend == storage.BackendFile && c.Storage.Dir == "" {
		return errors.New("storage.dir is required for the file backend")
	}
	return nil
}

// StorageOptions converts the storage section for storage.Open.
func (c Config) StorageOptions() storage.Options {
	s := c.Storage
	return storage.Options{
		Backend:    s.Backend,
		Dir:        s.Dir,
		SQLitePath: s.SQLitePath,
		Redis: storage.RedisConfig{
			Addr:     s.RedisAddr,
			Password: s.RedisPassword,
			DB:       s.RedisDB,
			Prefix:   s.RedisPrefix,
		},
		Mongo: storage.MongoConfig{
			URI:      s.MongoURI,
			Database: s.MongoDatabase,
		},
		Breaker: s.Breaker,
	}
}

// =============================================================================
// Paths
// =============================================================================

// DefaultPath returns the config file location using the XDG standard.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// defaultDataDir returns the data directory (~/.local/share/mindcanvas/).
func defaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", appName)
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
