// Package config handles configuration loading and defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"

	"todocal/internal/logging"
)

// Default values.
const (
	DefaultAddr        = "127.0.0.1"
	DefaultPort        = 8080
	DefaultDataDir     = "./data"
	DefaultStorage     = StorageJSON
	DefaultConfigFile  = "todocal.toml"
	DefaultExampleFile = "tasks.example.json"
	SQLiteFile         = "todocal.db"
)

// Storage backends.
const (
	StorageJSON   = "json"
	StorageSQLite = "sqlite"
)

// Config holds the full configuration for todocal.
type Config struct {
	// Server
	Addr string `toml:"addr"`
	Port int    `toml:"port"`

	// Persistence
	DataDir     string `toml:"data_dir"`
	Storage     string `toml:"storage"` // json or sqlite
	ExampleFile string `toml:"example_file"`

	// Logging
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"` // text, json or logfmt

	// File the configuration was read from, if any (computed)
	Source string `toml:"-"`
}

// ListenAddr returns the host:port the HTTP server binds.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Addr, strconv.Itoa(c.Port))
}

// SQLitePath returns the database file used by the sqlite backend.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, SQLiteFile)
}

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. Config file (TOML)
// 3. Environment variables
// 4. CLI flags that were set explicitly
//
// configFile names the TOML file; when empty, TODOCAL_CONFIG and then
// ./todocal.toml are tried. An explicitly named file must exist.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}

	// 1. Set defaults
	setDefaults(cfg)

	// 2. Try to load from config file
	path, explicit := findConfigFile(configFile)
	if path != "" {
		if err := loadConfigFile(cfg, path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("loading config file %s: %w", path, err)
			}
		} else {
			cfg.Source = path
		}
	}

	// 3. Override from environment
	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	// 4. Apply CLI flags (they override everything)
	if err := applyFlags(cfg, flags); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 5. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.Addr = DefaultAddr
	cfg.Port = DefaultPort
	cfg.DataDir = DefaultDataDir
	cfg.Storage = DefaultStorage
	cfg.ExampleFile = "" // Empty means <data_dir>/tasks.example.json
	cfg.LogLevel = "info"
	cfg.LogFormat = "text"
}

// findConfigFile picks the config file and reports whether it was named
// explicitly.
func findConfigFile(configFile string) (string, bool) {
	if configFile != "" {
		return configFile, true
	}
	if v := os.Getenv("TODOCAL_CONFIG"); v != "" {
		return v, true
	}
	return DefaultConfigFile, false
}

// loadConfigFile loads TOML config from the given file. Unknown keys are
// rejected.
func loadConfigFile(cfg *Config, path string) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// loadFromEnv overrides config from environment variables. PORT and
// DATA_DIR are honored; TODOCAL_* variables take precedence over them.
func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		if err := setPort(cfg, v, "PORT"); err != nil {
			return err
		}
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	if v := os.Getenv("TODOCAL_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("TODOCAL_PORT"); v != "" {
		if err := setPort(cfg, v, "TODOCAL_PORT"); err != nil {
			return err
		}
	}
	if v := os.Getenv("TODOCAL_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("TODOCAL_STORAGE"); v != "" {
		cfg.Storage = v
	}
	if v := os.Getenv("TODOCAL_EXAMPLE_FILE"); v != "" {
		cfg.ExampleFile = v
	}
	if v := os.Getenv("TODOCAL_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TODOCAL_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	return nil
}

func setPort(cfg *Config, v, source string) error {
	port, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s: invalid port %q", source, v)
	}
	cfg.Port = port
	return nil
}

// RegisterFlags defines the configuration flags on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Path to config file (default ./todocal.toml)")

	// Server
	fs.String("addr", DefaultAddr, "Address to listen on")
	fs.Int("port", DefaultPort, "Port to listen on")

	// Persistence
	fs.String("data-dir", DefaultDataDir, "Directory holding the task and project documents")
	fs.String("storage", DefaultStorage, "Storage backend (json|sqlite)")
	fs.String("example-file", "", "Task document used to seed a fresh data directory")

	// Logging
	fs.String("log-level", "info", "Log level (debug|info|warn|error)")
	fs.String("log-format", "text", "Log format (text|json|logfmt)")
}

// applyFlags copies every flag the user set explicitly into cfg.
func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}

	strs := map[string]*string{
		"addr":         &cfg.Addr,
		"data-dir":     &cfg.DataDir,
		"storage":      &cfg.Storage,
		"example-file": &cfg.ExampleFile,
		"log-level":    &cfg.LogLevel,
		"log-format":   &cfg.LogFormat,
	}
	for name, dst := range strs {
		if fs.Lookup(name) == nil || !fs.Changed(name) {
			continue
		}
		v, err := fs.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	if fs.Lookup("port") != nil && fs.Changed("port") {
		port, err := fs.GetInt("port")
		if err != nil {
			return err
		}
		cfg.Port = port
	}
	return nil
}

// finalizeConfig validates values and computes derived paths.
func finalizeConfig(cfg *Config) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port %d out of range", cfg.Port)
	}

	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))
	if cfg.Storage != StorageJSON && cfg.Storage != StorageSQLite {
		return fmt.Errorf("storage must be %q or %q, got %q", StorageJSON, StorageSQLite, cfg.Storage)
	}

	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	if _, err := logging.ParseFormatter(cfg.LogFormat); err != nil {
		return err
	}

	if strings.TrimSpace(cfg.DataDir) == "" {
		return fmt.Errorf("data_dir is empty")
	}
	cfg.DataDir = expandPath(cfg.DataDir)

	if cfg.ExampleFile == "" {
		cfg.ExampleFile = filepath.Join(cfg.DataDir, DefaultExampleFile)
	}
	cfg.ExampleFile = expandPath(cfg.ExampleFile)

	return nil
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, p[1:])
	}
	return p
}
