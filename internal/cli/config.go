package cli

import (
	"errors"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	errs "github.com/matzehuels/topdeps/pkg/errors"
	"github.com/matzehuels/topdeps/pkg/pipeline"
)

// Config holds defaults for the top and serve commands. Values come from
// the config file, then the environment; command-line flags override both.
//
// Example config.toml:
//
//	rows = 20
//	min_stars = 10
//	format = "json"
//	description = true
//
//	[serve]
//	addr = ":9000"
type Config struct {
	Rows        int     `toml:"rows"`
	MaxPages    int     `toml:"max_pages"`
	MinStars    float64 `toml:"min_stars"`
	Packages    bool    `toml:"packages"`
	Description bool    `toml:"description"`
	NoCache     bool    `toml:"no_cache"`
	Format      string  `toml:"format"`
	Progress    string  `toml:"progress"`
	Markup      string  `toml:"markup"`
	CacheDir    string  `toml:"cache_dir"`
	Site        string  `toml:"site"`

	Serve ServeConfig `toml:"serve"`
}

// ServeConfig holds defaults for the serve command.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

func defaultConfig() Config {
	return Config{
		Rows:     pipeline.DefaultTopN,
		MaxPages: pipeline.DefaultMaxPages,
		MinStars: pipeline.DefaultMinStars,
		Format:   formatTable,
		Progress: progressAuto,
		Serve:    ServeConfig{Addr: ":8080"},
	}
}

// loadConfig reads .env into the environment, then the TOML file at path
// (or the default location when path is empty), then environment overrides.
// A missing file is only an error when it was named explicitly.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, errs.Wrap(errs.ErrCodeInvalidInput, err, "load .env")
	}

	if path == "" {
		if p, err := configFile(); err == nil {
			path = p
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, errs.Wrap(errs.ErrCodeInvalidInput, err, "parse config %s", path)
			}
		case explicit || !errors.Is(err, fs.ErrNotExist):
			return cfg, errs.Wrap(errs.ErrCodeIO, err, "read config %s", path)
		}
	}

	if dir := os.Getenv(envCacheDir); dir != "" {
		cfg.CacheDir = dir
	}
	if site := os.Getenv(envSite); site != "" {
		cfg.Site = site
	}
	return cfg, nil
}
