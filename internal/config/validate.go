package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")
	for _, err := range e {
		sb.WriteString("  - ")
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}

// HasErrors returns true if there are any validation errors
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// Validate checks the configuration for errors and returns all validation errors found
func Validate(cfg *Config) ValidationErrors {
	var errors ValidationErrors
	add := func(field, message string) {
		errors = append(errors, ValidationError{Field: field, Message: message})
	}

	if cfg.Version < 1 {
		add("version", "must be at least 1")
	}

	if cfg.Watcher.DebounceMs < 0 {
		add("watcher.debounce_ms", "must be non-negative")
	}

	// Search
	if cfg.Search.DebounceMs < 0 {
		add("search.debounce_ms", "must be non-negative")
	}
	if cfg.Search.ResultsPerPage < 0 {
		add("search.results_per_page", "must be non-negative (0 shows all results)")
	}
	if cfg.Search.AutocompleteLimit < 1 {
		add("search.autocomplete_limit", "must be at least 1")
	}
	if cfg.Search.SuggestLimit < 1 {
		add("search.suggest_limit", "must be at least 1")
	}

	// Daemon
	if cfg.Daemon.Host == "" {
		add("daemon.host", "must not be empty")
	}
	if cfg.Daemon.Port < 1 || cfg.Daemon.Port > 65535 {
		add("daemon.port", "must be between 1 and 65535")
	}
	if !validLogLevels[cfg.Daemon.LogLevel] {
		add("daemon.log_level", fmt.Sprintf("invalid log level '%s'; valid values are: debug, info, warn, error", cfg.Daemon.LogLevel))
	}
	if !validLogFormats[cfg.Daemon.LogFormat] {
		add("daemon.log_format", fmt.Sprintf("invalid log format '%s'; valid values are: json, console", cfg.Daemon.LogFormat))
	}

	// Collaboration is only checked when enabled
	if cfg.Collab.Enabled {
		if cfg.Collab.URL == "" {
			add("collab.url", "must be set when collaboration is enabled")
		} else if u, err := url.Parse(cfg.Collab.URL); err != nil || u.Scheme == "" || u.Host == "" {
			add("collab.url", fmt.Sprintf("invalid URL '%s'", cfg.Collab.URL))
		}
		if cfg.Collab.RealtimeURL != "" {
			if u, err := url.Parse(cfg.Collab.RealtimeURL); err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
				add("collab.realtime_url", "must be a ws:// or wss:// URL")
			}
		}
		if cfg.Collab.UserEmail == "" {
			add("collab.user_email", "must be set when collaboration is enabled")
		}
		if cfg.Collab.ResyncDebounceMs < 0 {
			add("collab.resync_debounce_ms", "must be non-negative")
		}
		if cfg.Collab.TimeoutSeconds < 1 {
			add("collab.timeout_seconds", "must be at least 1")
		}
	}

	for abbr, label := range cfg.Abbreviations {
		if strings.TrimSpace(abbr) == "" || strings.TrimSpace(label) == "" {
			add("abbreviations", fmt.Sprintf("mapping '%s' -> '%s' must have a non-empty key and value", abbr, label))
		}
	}

	return errors
}

// ValidateOrError is a convenience function that returns an error if validation fails
func ValidateOrError(cfg *Config) error {
	errors := Validate(cfg)
	if errors.HasErrors() {
		return errors
	}
	return nil
}
