package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/topdeps/pkg/errors"
	"github.com/matzehuels/topdeps/pkg/pipeline"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(envCacheDir, "")
	t.Setenv(envSite, "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := loadConfig("", false)
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
	assert.Equal(t, pipeline.DefaultTopN, cfg.Rows)
	assert.Equal(t, formatTable, cfg.Format)
	assert.Equal(t, ":8080", cfg.Serve.Addr)
}

func TestLoadConfig_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
rows = 25
max_pages = 3
min_stars = 10.5
packages = true
description = true
format = "json"
markup = "legacy"
cache_dir = "/var/cache/topdeps"

[serve]
addr = ":9000"
`)

	cfg, err := loadConfig(path, true)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Rows)
	assert.Equal(t, 3, cfg.MaxPages)
	assert.Equal(t, 10.5, cfg.MinStars)
	assert.True(t, cfg.Packages)
	assert.True(t, cfg.Description)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "legacy", cfg.Markup)
	assert.Equal(t, "/var/cache/topdeps", cfg.CacheDir)
	assert.Equal(t, ":9000", cfg.Serve.Addr)
	assert.Equal(t, progressAuto, cfg.Progress, "unset keys keep their defaults")
}

func TestLoadConfig_DefaultLocation(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	require.NoError(t, os.MkdirAll(filepath.Join(home, appName), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, appName, "config.toml"), []byte("rows = 3\n"), 0o644))

	cfg, err := loadConfig("", false)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Rows)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "cache_dir = \"/from/file\"\nsite = \"https://file.example\"\n")
	t.Setenv(envCacheDir, "/from/env")
	t.Setenv(envSite, "https://env.example")

	cfg, err := loadConfig(path, true)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.CacheDir)
	assert.Equal(t, "https://env.example", cfg.Site)
}

func TestLoadConfig_Errors(t *testing.T) {
	clearEnv(t)

	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"), true)
	assert.True(t, errs.Is(err, errs.ErrCodeIO), "explicit missing file: %v", err)

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.toml"), false)
	assert.NoError(t, err, "implicit missing file is ignored")

	_, err = loadConfig(writeConfig(t, "rows = [not toml"), true)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidInput), "bad toml: %v", err)
}
