package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the name of the config file without extension
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension
	ConfigFileExt = "yaml"
	// ProjectDir is the name of the per-project state directory
	ProjectDir = ".roomdir"
)

// Loader handles configuration loading and saving
type Loader struct {
	projectRoot string
	v           *viper.Viper
}

// NewLoader creates a new config loader for the given project root
func NewLoader(projectRoot string) *Loader {
	return &Loader{
		projectRoot: projectRoot,
		v:           viper.New(),
	}
}

// ConfigPath returns the full path to the config file
func (l *Loader) ConfigPath() string {
	return filepath.Join(l.projectRoot, ProjectDir, ConfigFileName+"."+ConfigFileExt)
}

// ProjectDirPath returns the full path to the .roomdir directory
func (l *Loader) ProjectDirPath() string {
	return filepath.Join(l.projectRoot, ProjectDir)
}

// Exists returns true if a config file exists at the expected location
func (l *Loader) Exists() bool {
	_, err := os.Stat(l.ConfigPath())
	return err == nil
}

// Load reads the configuration from disk
// If the config file doesn't exist, it returns an error
func (l *Loader) Load() (*Config, error) {
	if !l.Exists() {
		return nil, fmt.Errorf("config file not found at %s", l.ConfigPath())
	}

	// Fresh viper instance per load to avoid stale state
	l.v = viper.New()
	l.v.SetConfigFile(l.ConfigPath())
	l.v.SetConfigType(ConfigFileExt)

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Empty struct so missing keys stay zero; MergeConfigs fills defaults
	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads the configuration from disk, or returns default config if not found
func (l *Loader) LoadOrDefault() (*Config, error) {
	if !l.Exists() {
		return Default(), nil
	}
	return l.Load()
}

// Save writes the configuration to disk
// It creates the .roomdir directory if it doesn't exist
func (l *Loader) Save(cfg *Config) error {
	if err := os.MkdirAll(l.ProjectDirPath(), 0755); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", ProjectDir, err)
	}

	l.v.Set("version", cfg.Version)
	l.v.Set("data", cfg.Data)
	l.v.Set("watcher", cfg.Watcher)
	l.v.Set("search", cfg.Search)
	l.v.Set("daemon", cfg.Daemon)
	l.v.Set("collab", cfg.Collab)
	l.v.Set("abbreviations", cfg.Abbreviations)

	if err := l.v.WriteConfigAs(l.ConfigPath()); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Init initializes a new configuration in the project
// It creates the .roomdir directory and writes a default config file
func (l *Loader) Init() (*Config, error) {
	if l.Exists() {
		return nil, fmt.Errorf("config already exists at %s", l.ConfigPath())
	}

	cfg := Default()
	if err := l.Save(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Merge loads the existing config and merges the provided overrides
func (l *Loader) Merge(overrides map[string]interface{}) (*Config, error) {
	cfg, err := l.LoadOrDefault()
	if err != nil {
		return nil, err
	}

	for key, value := range overrides {
		l.v.Set(key, value)
	}

	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal merged config: %w", err)
	}

	return cfg, nil
}

// DataDir resolves the configured data directory against the project root.
func DataDir(projectRoot string, cfg *Config) string {
	if cfg.Data.Dir == "" {
		return projectRoot
	}
	if filepath.IsAbs(cfg.Data.Dir) {
		return cfg.Data.Dir
	}
	return filepath.Join(projectRoot, cfg.Data.Dir)
}
