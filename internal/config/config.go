package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Default configuration values
const (
	DefaultLeanPath      = "lean"
	DefaultElanPath      = "elan"
	DefaultTimeout       = 60
	DefaultMaxConcurrent = 4
	DefaultCacheBackend  = "file"
	DefaultCacheTTL      = 0 // seconds, 0 keeps entries forever
	DefaultLogCacheHits  = false
	DefaultVerbose       = false
)

// dataDir is the per-user directory holding the cache and the ledger.
const dataDir = ".leanc"

// Holds the configuration options for leanc
type Config struct {
	// Path to the lean compiler binary
	LeanPath string

	// Path to the elan toolchain manager, used for availability probes
	ElanPath string

	// Directory holding cached compilation results
	CacheDir string

	// Cache storage engine: "file" or "bolt"
	CacheBackend string

	// TTL in seconds applied to new cache entries; 0 disables expiry
	CacheTTL int

	// Directory holding the attempt ledger
	AttemptsDir string

	// Default compilation timeout in seconds
	Timeout int

	// Concurrency ceiling for batch compilation
	MaxConcurrent int

	// Disable the result cache entirely
	NoCache bool

	// Re-log cache hits to the attempt ledger
	LogCacheHits bool

	// Enable verbose output
	Verbose bool
}

func Load() (*Config, error) {
	cfg := &Config{
		LeanPath:      viper.GetString("lean_path"),
		ElanPath:      viper.GetString("elan_path"),
		CacheDir:      viper.GetString("cache_dir"),
		CacheBackend:  viper.GetString("cache_backend"),
		CacheTTL:      viper.GetInt("cache_ttl"),
		AttemptsDir:   viper.GetString("attempts_dir"),
		Timeout:       viper.GetInt("timeout"),
		MaxConcurrent: viper.GetInt("max_concurrent"),
		NoCache:       viper.GetBool("no_cache"),
		LogCacheHits:  viper.GetBool("log_cache_hits"),
		Verbose:       viper.GetBool("verbose"),
	}

	// Apply defaults if not set
	if cfg.LeanPath == "" {
		cfg.LeanPath = DefaultLeanPath
	}

	if cfg.ElanPath == "" {
		cfg.ElanPath = DefaultElanPath
	}

	if cfg.CacheBackend == "" {
		cfg.CacheBackend = DefaultCacheBackend
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.MaxConcurrent == 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}

	if cfg.CacheDir == "" || cfg.AttemptsDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}

		if cfg.CacheDir == "" {
			cfg.CacheDir = filepath.Join(home, dataDir, "cache")
		}

		if cfg.AttemptsDir == "" {
			cfg.AttemptsDir = filepath.Join(home, dataDir, "attempts")
		}
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.CacheBackend != "file" && c.CacheBackend != "bolt" {
		return fmt.Errorf("invalid cache backend: %s", c.CacheBackend)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}

	if c.MaxConcurrent < 1 {
		return fmt.Errorf("max concurrent must be at least 1")
	}

	// Resolve data directories to absolute paths
	for _, dir := range []*string{&c.CacheDir, &c.AttemptsDir} {
		abs, err := filepath.Abs(*dir)
		if err != nil {
			return fmt.Errorf("invalid directory path: %v", err)
		}

		*dir = abs
	}

	return nil
}
