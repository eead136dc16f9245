package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// GlobalConfigDir returns the global configuration directory.
// On Unix: ~/.config/roomdir (or XDG_CONFIG_HOME/roomdir)
// On Windows: %APPDATA%\roomdir
func GlobalConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "roomdir")
	}

	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "roomdir")
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return ""
	}
	return filepath.Join(homeDir, ".config", "roomdir")
}

// GlobalConfigPath returns the full path to the global config file.
func GlobalConfigPath() string {
	dir := GlobalConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// LoadGlobalConfig loads the global configuration from disk.
// Returns nil, nil if no global config exists.
func LoadGlobalConfig() (*Config, error) {
	path := GlobalConfigPath()
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read global config: %w", err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse global config: %w", err)
	}

	return &cfg, nil
}

// SaveGlobalConfig saves the configuration to the global config file.
func SaveGlobalConfig(cfg *Config) error {
	dir := GlobalConfigDir()
	if dir == "" {
		return fmt.Errorf("cannot determine global config directory")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create global config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(GlobalConfigPath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write global config: %w", err)
	}

	return nil
}

// MergeConfigs merges global and project configs, with project taking
// precedence for every non-zero value. The result is never nil.
func MergeConfigs(global, project *Config) *Config {
	result := Default()

	for _, src := range []*Config{global, project} {
		if src == nil {
			continue
		}
		mergeInto(result, src)
	}

	return result
}

func mergeInto(dst, src *Config) {
	if src.Version != 0 {
		dst.Version = src.Version
	}

	// watch travels with dir
	if src.Data.Dir != "" {
		dst.Data.Dir = src.Data.Dir
		dst.Data.Watch = src.Data.Watch
	}

	if src.Watcher.DebounceMs != 0 {
		dst.Watcher.DebounceMs = src.Watcher.DebounceMs
	}

	if src.Search.DebounceMs != 0 {
		dst.Search.DebounceMs = src.Search.DebounceMs
	}
	if src.Search.ResultsPerPage != 0 {
		dst.Search.ResultsPerPage = src.Search.ResultsPerPage
	}
	if src.Search.AutocompleteLimit != 0 {
		dst.Search.AutocompleteLimit = src.Search.AutocompleteLimit
	}
	if src.Search.SuggestLimit != 0 {
		dst.Search.SuggestLimit = src.Search.SuggestLimit
	}

	if src.Daemon.Host != "" {
		dst.Daemon.Host = src.Daemon.Host
	}
	if src.Daemon.Port != 0 {
		dst.Daemon.Port = src.Daemon.Port
	}
	if src.Daemon.LogLevel != "" {
		dst.Daemon.LogLevel = src.Daemon.LogLevel
	}
	if src.Daemon.LogFormat != "" {
		dst.Daemon.LogFormat = src.Daemon.LogFormat
	}

	if src.Collab.Enabled {
		dst.Collab.Enabled = true
	}
	if src.Collab.URL != "" {
		dst.Collab.URL = src.Collab.URL
	}
	if src.Collab.RealtimeURL != "" {
		dst.Collab.RealtimeURL = src.Collab.RealtimeURL
	}
	if src.Collab.APIKey != "" {
		dst.Collab.APIKey = src.Collab.APIKey
	}
	if src.Collab.ProjectID != "" {
		dst.Collab.ProjectID = src.Collab.ProjectID
	}
	if src.Collab.UserEmail != "" {
		dst.Collab.UserEmail = src.Collab.UserEmail
	}
	if src.Collab.UserName != "" {
		dst.Collab.UserName = src.Collab.UserName
	}
	if src.Collab.ResyncDebounceMs != 0 {
		dst.Collab.ResyncDebounceMs = src.Collab.ResyncDebounceMs
	}
	if src.Collab.TimeoutSeconds != 0 {
		dst.Collab.TimeoutSeconds = src.Collab.TimeoutSeconds
	}

	for abbr, label := range src.Abbreviations {
		if dst.Abbreviations == nil {
			dst.Abbreviations = map[string]string{}
		}
		dst.Abbreviations[abbr] = label
	}
}
