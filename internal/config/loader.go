package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SEEDRECOVER_LOG_LEVEL.
const EnvPrefix = "SEEDRECOVER"

// Loader handles configuration loading from multiple sources.
type Loader struct {
	configPath string
	v          *viper.Viper
}

// NewLoader creates a config loader. An empty path searches the default
// locations.
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath: configPath,
		v:          newViper(),
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())
	return v
}

// setDefaults registers every key so that environment overrides reach
// Unmarshal.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.color", cfg.Log.Color)

	v.SetDefault("locator.browsers", cfg.Locator.Browsers)
	v.SetDefault("locator.extension_ids", cfg.Locator.ExtensionIDs)
	v.SetDefault("locator.extensions", cfg.Locator.Extensions)
	v.SetDefault("locator.extra_paths", cfg.Locator.ExtraPaths)
	v.SetDefault("locator.max_depth", cfg.Locator.MaxDepth)

	v.SetDefault("storage.max_file_size", cfg.Storage.MaxFileSize)
	v.SetDefault("storage.use_leveldb", cfg.Storage.UseLevelDB)
	v.SetDefault("storage.use_sqlite", cfg.Storage.UseSQLite)
	v.SetDefault("storage.temp_dir", cfg.Storage.TempDir)

	v.SetDefault("recovery.validate_checksum", cfg.Recovery.ValidateChecksum)
	v.SetDefault("recovery.all_candidates", cfg.Recovery.AllCandidates)
}

// Load reads configuration from file and environment.
func (l *Loader) Load() (*Config, error) {
	if l.configPath != "" {
		l.v.SetConfigFile(l.configPath)
	} else {
		l.v.SetConfigName("seedrecover")
		for _, dir := range defaultDirs() {
			l.v.AddConfigPath(dir)
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if l.configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)

	// Validate final config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ConfigFile returns the file the configuration was read from, if any.
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}

// defaultDirs returns default config file locations.
func defaultDirs() []string {
	dirs := []string{"."}

	if configDir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(configDir, "seedrecover"))
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(homeDir, ".seedrecover"))
	}

	return dirs
}

// SaveExample writes the default configuration to path. The format follows
// the file extension (json, yaml, toml).
func SaveExample(path string) error {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
