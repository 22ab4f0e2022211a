package config

// Default returns the baseline configuration before any file is applied.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceDir:  "~/matchday/incoming",
			LibraryDir: "~/matchday/library",
			LogDir:     "~/.local/state/matchday",
			CacheDB:    "~/.cache/matchday/processed.db",
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
