// Package config loads slackprep settings from defaults, an optional .env
// file, a TOML or YAML config file and SLACKPREP_* environment variables,
// in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Zuo-Peng/slackprep/internal/filter"
	"github.com/Zuo-Peng/slackprep/internal/materialize"
)

const (
	FormatMarkdown = "markdown"
	FormatJSONL    = "jsonl"

	envPrefix = "SLACKPREP_"
)

type Config struct {
	InputDir           string         `toml:"input_dir" yaml:"input_dir"`
	OutputDir          string         `toml:"output_dir" yaml:"output_dir"`
	DBPath             string         `toml:"db_path" yaml:"db_path"`
	Format             string         `toml:"format" yaml:"format"`
	AbsoluteTimestamps bool           `toml:"absolute_timestamps" yaml:"absolute_timestamps"`
	AllTurns           bool           `toml:"all_turns" yaml:"all_turns"`
	IncludeStats       bool           `toml:"include_stats" yaml:"include_stats"`
	Attachments        string         `toml:"attachments" yaml:"attachments"`
	LogLevel           string         `toml:"log_level" yaml:"log_level"`
	Filters            filter.Options `toml:"filters" yaml:"filters"`

	// Source is the config file that was read, empty if none.
	Source string `toml:"-" yaml:"-"`
}

// DefaultPath is ~/.config/slackprep/config.toml.
func DefaultPath(home string) string {
	return filepath.Join(home, ".config", "slackprep", "config.toml")
}

func defaults(home string) *Config {
	return &Config{
		InputDir:     filepath.Join("data", "input"),
		OutputDir:    filepath.Join("data", "output"),
		DBPath:       filepath.Join(home, ".config", "slackprep", "slackprep.db"),
		Format:       FormatMarkdown,
		IncludeStats: true,
		Attachments:  string(materialize.None),
		LogLevel:     "info",
	}
}

// Load builds the configuration. An empty path reads DefaultPath when it
// exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	cfg := defaults(home)

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	if path == "" {
		if p := DefaultPath(home); fileExists(p) {
			path = p
		}
	}
	if path != "" {
		if err := decodeFile(expandHome(path, home), cfg); err != nil {
			return nil, err
		}
		cfg.Source = path
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	// expand ~ in paths
	cfg.InputDir = expandHome(cfg.InputDir, home)
	cfg.OutputDir = expandHome(cfg.OutputDir, home)
	cfg.DBPath = expandHome(cfg.DBPath, home)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the enumerated fields.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Format) {
	case FormatMarkdown, "md":
		c.Format = FormatMarkdown
	case FormatJSONL:
		c.Format = FormatJSONL
	default:
		return fmt.Errorf("config: unknown format %q (want markdown or jsonl)", c.Format)
	}
	mode, err := materialize.ParseMode(c.Attachments)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.Attachments = string(mode)
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}
	return nil
}

func loadDotEnv(path string) error {
	if !fileExists(path) {
		return nil
	}
	// existing environment variables win over .env entries
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func decodeFile(path string, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("read config %s: %w", path, err)
			}
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	return nil
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"INPUT_DIR":   &cfg.InputDir,
		"OUTPUT_DIR":  &cfg.OutputDir,
		"DB_PATH":     &cfg.DBPath,
		"FORMAT":      &cfg.Format,
		"ATTACHMENTS": &cfg.Attachments,
		"LOG_LEVEL":   &cfg.LogLevel,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"ABSOLUTE_TIMESTAMPS":      &cfg.AbsoluteTimestamps,
		"ALL_TURNS":                &cfg.AllTurns,
		"INCLUDE_STATS":            &cfg.IncludeStats,
		"SKIP_BOTS":                &cfg.Filters.SkipBots,
		"SKIP_AUTOMATION_CHANNELS": &cfg.Filters.SkipAutomationChannels,
		"SKIP_AUTOMATED_CONTENT":   &cfg.Filters.SkipAutomatedContent,
		"HUMAN_ONLY":               &cfg.Filters.HumanOnly,
	}
	for name, dst := range bools {
		v, ok := os.LookupEnv(envPrefix + name)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", envPrefix, name, err)
		}
		*dst = b
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
