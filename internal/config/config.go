package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and database locations.
type Paths struct {
	SourceDir    string `toml:"source_dir"`
	LibraryDir   string `toml:"library_dir"`
	LogDir       string `toml:"log_dir"`
	CacheDB      string `toml:"cache_db"`
	MetadataFile string `toml:"metadata_file"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// RuleDef is one pattern rule before compilation. Rules within a set are
// evaluated in ascending priority order; ties keep declaration order.
type RuleDef struct {
	Name      string `toml:"name"`
	Expr      string `toml:"expr"`
	Priority  int    `toml:"priority"`
	FullMatch bool   `toml:"full_match"`
}

// PatternSet is a named, ordered list of rules sports can reference.
type PatternSet struct {
	Name  string    `toml:"name"`
	Rules []RuleDef `toml:"rule"`
}

// Team declares one canonical team name and its aliases.
type Team struct {
	Name    string   `toml:"name"`
	Aliases []string `toml:"aliases"`
}

// Sport binds a sport identifier to its show, pattern set, and teams.
// A sport without a rule set resolves through structured parsing only.
type Sport struct {
	ID      string `toml:"id"`
	Show    string `toml:"show"`
	RuleSet string `toml:"rule_set"`
	Teams   []Team `toml:"team"`
}

// Config encapsulates all configuration values for matchday.
type Config struct {
	Paths       Paths        `toml:"paths"`
	Logging     Logging      `toml:"logging"`
	PatternSets []PatternSet `toml:"pattern_set"`
	Sports      []Sport      `toml:"sport"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/matchday/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("matchday.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	for _, field := range []*string{&c.Paths.SourceDir, &c.Paths.LibraryDir, &c.Paths.LogDir, &c.Paths.CacheDB, &c.Paths.MetadataFile} {
		if strings.TrimSpace(*field) == "" {
			continue
		}
		expanded, err := ExpandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = "info"
	}
	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = "console"
	}
	return nil
}

// EnsureDirectories creates the directories a processing run needs.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, filepath.Dir(c.Paths.CacheDB)} {
		if strings.TrimSpace(dir) == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ExpandPath expands a leading ~ and returns the cleaned absolute path.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
