package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wsnlndrv/gofile-dl/internal/progress"
)

// Config defines configuration for the gofile-dl CLI.
type Config struct {
	URL         string        `yaml:"url"`
	Password    string        `yaml:"password"`
	DownloadDir string        `yaml:"download_dir"`
	UserAgent   string        `yaml:"user_agent"`
	Workers     int           `yaml:"workers"`
	ChunkSize   int64         `yaml:"chunk_size"`
	Sequential  bool          `yaml:"sequential"`
	Delay       time.Duration `yaml:"delay"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		UserAgent: "Mozilla/5.0",
		Workers:   3,
		ChunkSize: 16 * 1024, // 16KB
		Delay:     2 * time.Second,
	}
}

// yamlConfig is used for YAML unmarshaling with string sizes/durations.
type yamlConfig struct {
	URL         string `yaml:"url"`
	Password    string `yaml:"password"`
	DownloadDir string `yaml:"download_dir"`
	UserAgent   string `yaml:"user_agent"`
	Workers     int    `yaml:"workers"`
	ChunkSize   string `yaml:"chunk_size"`
	Sequential  bool   `yaml:"sequential"`
	Delay       string `yaml:"delay"`
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.URL != "" {
		cfg.URL = yc.URL
	}
	if yc.Password != "" {
		cfg.Password = yc.Password
	}
	if yc.DownloadDir != "" {
		cfg.DownloadDir = yc.DownloadDir
	}
	if yc.UserAgent != "" {
		cfg.UserAgent = yc.UserAgent
	}
	if yc.Workers != 0 {
		cfg.Workers = yc.Workers
	}
	if yc.ChunkSize != "" {
		size, err := progress.ParseBytes(yc.ChunkSize)
		if err != nil {
			return Config{}, fmt.Errorf("parse chunk_size: %w", err)
		}
		cfg.ChunkSize = size
	}
	cfg.Sequential = yc.Sequential
	if yc.Delay != "" {
		d, err := time.ParseDuration(yc.Delay)
		if err != nil {
			return Config{}, fmt.Errorf("parse delay: %w", err)
		}
		cfg.Delay = d
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the GF_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("GF_URL"); v != "" {
		c.URL = v
	}
	if v := os.Getenv("GF_PASSWORD"); v != "" {
		c.Password = v
	}
	if v := os.Getenv("GF_DOWNLOADDIR"); v != "" {
		c.DownloadDir = v
	}
	if v := os.Getenv("GF_USERAGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("GF_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse GF_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("GF_CHUNK_SIZE"); v != "" {
		size, err := progress.ParseBytes(v)
		if err != nil {
			return fmt.Errorf("parse GF_CHUNK_SIZE: %w", err)
		}
		c.ChunkSize = size
	}
	if v := os.Getenv("GF_SEQUENTIAL"); v != "" {
		c.Sequential = v == "true" || v == "1"
	}
	if v := os.Getenv("GF_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse GF_DELAY: %w", err)
		}
		c.Delay = d
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.URL == "" {
		return errors.New("config: URL is required")
	}
	if c.Workers <= 0 {
		return errors.New("config: workers must be positive")
	}
	if c.ChunkSize <= 0 {
		return errors.New("config: chunk_size must be positive")
	}
	if c.Delay < 0 {
		return errors.New("config: delay must not be negative")
	}
	if c.DownloadDir != "" {
		info, err := os.Stat(c.DownloadDir)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("config: download_dir %s is not a directory", c.DownloadDir)
		}
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.URL != "" {
		c.URL = override.URL
	}
	if override.Password != "" {
		c.Password = override.Password
	}
	if override.DownloadDir != "" {
		c.DownloadDir = override.DownloadDir
	}
	if override.UserAgent != "" {
		c.UserAgent = override.UserAgent
	}
	if override.Workers != 0 {
		c.Workers = override.Workers
	}
	if override.ChunkSize != 0 {
		c.ChunkSize = override.ChunkSize
	}
	if override.Sequential {
		c.Sequential = override.Sequential
	}
	if override.Delay != 0 {
		c.Delay = override.Delay
	}
	return c
}
