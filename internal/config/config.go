package config

import (
	"fmt"
	"time"
)

// Config represents the complete roomdir configuration
type Config struct {
	Version       int               `yaml:"version" json:"version" mapstructure:"version"`
	Data          DataConfig        `yaml:"data" json:"data" mapstructure:"data"`
	Watcher       WatcherConfig     `yaml:"watcher" json:"watcher" mapstructure:"watcher"`
	Search        SearchConfig      `yaml:"search" json:"search" mapstructure:"search"`
	Daemon        DaemonConfig      `yaml:"daemon" json:"daemon" mapstructure:"daemon"`
	Collab        CollabConfig      `yaml:"collab" json:"collab" mapstructure:"collab"`
	Abbreviations map[string]string `yaml:"abbreviations" json:"abbreviations,omitempty" mapstructure:"abbreviations"`
}

// DataConfig locates the spreadsheets the daemon ingests
type DataConfig struct {
	Dir   string `yaml:"dir" json:"dir" mapstructure:"dir"`
	Watch bool   `yaml:"watch" json:"watch" mapstructure:"watch"`
}

// WatcherConfig contains file watcher settings
type WatcherConfig struct {
	DebounceMs int `yaml:"debounce_ms" json:"debounce_ms" mapstructure:"debounce_ms"`
}

// SearchConfig contains search default settings
type SearchConfig struct {
	DebounceMs        int `yaml:"debounce_ms" json:"debounce_ms" mapstructure:"debounce_ms"`
	ResultsPerPage    int `yaml:"results_per_page" json:"results_per_page" mapstructure:"results_per_page"`
	AutocompleteLimit int `yaml:"autocomplete_limit" json:"autocomplete_limit" mapstructure:"autocomplete_limit"`
	SuggestLimit      int `yaml:"suggest_limit" json:"suggest_limit" mapstructure:"suggest_limit"`
}

// DaemonConfig contains daemon server settings
type DaemonConfig struct {
	Host      string `yaml:"host" json:"host" mapstructure:"host"`
	Port      int    `yaml:"port" json:"port" mapstructure:"port"`
	LogLevel  string `yaml:"log_level" json:"log_level" mapstructure:"log_level"`
	LogFormat string `yaml:"log_format" json:"log_format" mapstructure:"log_format"`
}

// CollabConfig configures tag synchronization with the shared backend
type CollabConfig struct {
	Enabled          bool   `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	URL              string `yaml:"url" json:"url" mapstructure:"url"`
	RealtimeURL      string `yaml:"realtime_url" json:"realtime_url" mapstructure:"realtime_url"`
	APIKey           string `yaml:"api_key" json:"api_key,omitempty" mapstructure:"api_key"`
	ProjectID        string `yaml:"project_id" json:"project_id" mapstructure:"project_id"`
	UserEmail        string `yaml:"user_email" json:"user_email" mapstructure:"user_email"`
	UserName         string `yaml:"user_name" json:"user_name" mapstructure:"user_name"`
	ResyncDebounceMs int    `yaml:"resync_debounce_ms" json:"resync_debounce_ms" mapstructure:"resync_debounce_ms"`
	TimeoutSeconds   int    `yaml:"timeout_seconds" json:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// DebounceDuration returns the debounce duration as time.Duration
func (w WatcherConfig) DebounceDuration() time.Duration {
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// DebounceDuration returns the live search quiet window
func (s SearchConfig) DebounceDuration() time.Duration {
	return time.Duration(s.DebounceMs) * time.Millisecond
}

// Address returns the full host:port address for the daemon.
func (d DaemonConfig) Address() string {
	return fmt.Sprintf("%s:%d", d.Host, d.Port)
}

// URL returns the base URL clients use to reach the daemon.
func (d DaemonConfig) URL() string {
	return "http://" + d.Address()
}

// ResyncDebounce returns the quiet window before a full resync
func (c CollabConfig) ResyncDebounce() time.Duration {
	return time.Duration(c.ResyncDebounceMs) * time.Millisecond
}

// Timeout returns the request timeout for the sync backend
func (c CollabConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Ready reports whether sync is enabled and has somewhere to talk to.
func (c CollabConfig) Ready() bool {
	return c.Enabled && c.URL != ""
}
