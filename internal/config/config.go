package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const FileName = "config.yaml"

type Config struct {
	Storage  StorageConfig `yaml:"storage"`
	LogLevel string        `yaml:"log_level,omitempty"`
}

type StorageConfig struct {
	Backend        string `yaml:"backend,omitempty"`
	SQLitePath     string `yaml:"sqlite_path,omitempty"`
	PostgresDSN    string `yaml:"postgres_dsn,omitempty"`
	RedisAddr      string `yaml:"redis_addr,omitempty"`
	RedisNamespace string `yaml:"redis_namespace,omitempty"`
}

const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

var backends = []string{BackendFile, BackendSQLite, BackendPostgres, BackendRedis, BackendMemory}

func Load(dataDir string) (*Config, error) {
	path := filepath.Join(dataDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

func Save(dataDir string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	path := filepath.Join(dataDir, FileName)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides fields from LINKBOOK_* environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("LINKBOOK_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := getenv("LINKBOOK_POSTGRES_DSN"); v != "" {
		c.Storage.PostgresDSN = v
	}
	if v := getenv("LINKBOOK_REDIS_ADDR"); v != "" {
		c.Storage.RedisAddr = v
	}
	if v := getenv("LINKBOOK_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// BackendName returns the configured backend, defaulting to file.
func (s StorageConfig) BackendName() string {
	if s.Backend == "" {
		return BackendFile
	}
	return strings.ToLower(s.Backend)
}

func ValidateBackend(name string) error {
	for _, b := range backends {
		if name == b {
			return nil
		}
	}
	return fmt.Errorf("unknown backend %q: must be one of %s", name, strings.Join(backends, ", "))
}
