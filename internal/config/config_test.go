package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the working directory at fresh temp dirs.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("data", "input"), cfg.InputDir)
	assert.Equal(t, filepath.Join("data", "output"), cfg.OutputDir)
	assert.Equal(t, filepath.Join(home, ".config", "slackprep", "slackprep.db"), cfg.DBPath)
	assert.Equal(t, FormatMarkdown, cfg.Format)
	assert.True(t, cfg.IncludeStats)
	assert.Equal(t, "none", cfg.Attachments)
	assert.Empty(t, cfg.Source)
}

func TestLoadTOML(t *testing.T) {
	home := isolate(t)
	path := DefaultPath(home)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`
input_dir = "~/exports/acme"
format = "jsonl"
include_stats = false
attachments = "copy"

[filters]
human_only = true
`), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, filepath.Join(home, "exports", "acme"), cfg.InputDir)
	assert.Equal(t, FormatJSONL, cfg.Format)
	assert.False(t, cfg.IncludeStats)
	assert.Equal(t, "copy", cfg.Attachments)
	assert.True(t, cfg.Filters.HumanOnly)
}

func TestLoadYAML(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "slackprep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
output_dir: out
all_turns: true
filters:
  skip_bots: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.True(t, cfg.AllTurns)
	assert.True(t, cfg.Filters.SkipBots)
	assert.False(t, cfg.Filters.HumanOnly)
}

func TestLoadMissingExplicitPath(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("SLACKPREP_FORMAT", "md")
	t.Setenv("SLACKPREP_ABSOLUTE_TIMESTAMPS", "true")
	t.Setenv("SLACKPREP_SKIP_AUTOMATED_CONTENT", "1")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, cfg.Format)
	assert.True(t, cfg.AbsoluteTimestamps)
	assert.True(t, cfg.Filters.SkipAutomatedContent)

	t.Setenv("SLACKPREP_ALL_TURNS", "maybe")
	_, err = Load("")
	assert.Error(t, err)
}

func TestDotEnv(t *testing.T) {
	isolate(t)
	t.Cleanup(func() { os.Unsetenv("SLACKPREP_OUTPUT_DIR") })
	require.NoError(t, os.WriteFile(".env", []byte("SLACKPREP_OUTPUT_DIR=from-dotenv\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.OutputDir)
}

func TestValidate(t *testing.T) {
	cfg := defaults("/home/x")
	cfg.Format = "pdf"
	assert.Error(t, cfg.Validate())

	cfg = defaults("/home/x")
	cfg.Attachments = "hardlink"
	assert.Error(t, cfg.Validate())

	cfg = defaults("/home/x")
	cfg.LogLevel = "trace"
	assert.Error(t, cfg.Validate())
}
