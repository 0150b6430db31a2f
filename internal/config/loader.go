package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Loader handles configuration loading from various sources
type Loader struct{}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadForCompile loads configuration for compile operations: defaults,
// then the global config file, then a local .leanc file next to the
// project, then command flags.
func (l *Loader) LoadForCompile(cmd *cobra.Command, projectRoot string) (*Config, error) {
	l.setupViperDefaults()
	l.loadGlobalConfig()
	l.loadLocalConfig(projectRoot)
	l.bindCommandFlags(cmd)

	return Load()
}

// setupViperDefaults sets up default values for viper
func (l *Loader) setupViperDefaults() {
	viper.SetDefault("lean_path", DefaultLeanPath)
	viper.SetDefault("elan_path", DefaultElanPath)
	viper.SetDefault("cache_backend", DefaultCacheBackend)
	viper.SetDefault("cache_ttl", DefaultCacheTTL)
	viper.SetDefault("timeout", DefaultTimeout)
	viper.SetDefault("max_concurrent", DefaultMaxConcurrent)
	viper.SetDefault("log_cache_hits", DefaultLogCacheHits)
	viper.SetDefault("verbose", DefaultVerbose)
}

// loadGlobalConfig loads global configuration from the user config dir
func (l *Loader) loadGlobalConfig() {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return
	}

	globalDir := filepath.Join(configDir, "leanc")

	for _, ext := range []string{"yml", "yaml", "json", "toml"} {
		globalPath := filepath.Join(globalDir, "config."+ext)

		if _, err := os.Stat(globalPath); err == nil {
			viper.SetConfigFile(globalPath)

			if err := viper.ReadInConfig(); err == nil {
				break
			}
		}
	}
}

// loadLocalConfig loads local configuration from the project directory
func (l *Loader) loadLocalConfig(projectRoot string) {
	if projectRoot == "" {
		return
	}

	absRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return // silently ignore, Load() will handle validation
	}

	localPath := FindLocalConfig(absRoot)
	if localPath != "" {
		viper.SetConfigFile(localPath)
		_ = viper.ReadInConfig()
	}
}

// bindCommandFlags binds command flags to viper
func (l *Loader) bindCommandFlags(cmd *cobra.Command) {
	_ = viper.BindPFlag("timeout", cmd.Flags().Lookup("timeout"))
	_ = viper.BindPFlag("max_concurrent", cmd.Flags().Lookup("max-concurrent"))
	_ = viper.BindPFlag("no_cache", cmd.Flags().Lookup("no-cache"))
	_ = viper.BindPFlag("cache_ttl", cmd.Flags().Lookup("cache-ttl"))
	_ = viper.BindPFlag("verbose", cmd.Flags().Lookup("verbose"))
}
