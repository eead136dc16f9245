package config

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Version: 1,
		Data: DataConfig{
			Dir:   "data",
			Watch: true,
		},
		Watcher: WatcherConfig{
			DebounceMs: 500,
		},
		Search: SearchConfig{
			DebounceMs:        350,
			ResultsPerPage:    10,
			AutocompleteLimit: 5000,
			SuggestLimit:      10,
		},
		Daemon: DaemonConfig{
			Host:      "127.0.0.1",
			Port:      7457,
			LogLevel:  "info",
			LogFormat: "json",
		},
		Collab: CollabConfig{
			Enabled:          false,
			ResyncDebounceMs: 1000,
			TimeoutSeconds:   10,
		},
		Abbreviations: map[string]string{},
	}
}
