package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env.local then .env from dir. Existing environment
// variables are never overwritten, and missing files are ignored.
func LoadDotEnv(dir string) error {
	for _, name := range []string{".env.local", ".env"} {
		p := name
		if dir != "" {
			p = dir + string(os.PathSeparator) + name
		}
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// ApplyEnv overlays environment variables onto cfg. getenv is os.Getenv in
// production.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	list := func(key string, dst *[]string) {
		raw := getenv(key)
		if strings.TrimSpace(raw) == "" {
			return
		}
		var out []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
				out = append(out, p)
			}
		}
		*dst = out
	}

	str("JOBTIER_DATA_DIR", &cfg.App.DataDir)
	num("PORT", &cfg.App.Port)
	str("LOG_LEVEL", &cfg.Logging.Level)
	str("STORE_BACKEND", &cfg.Store.Backend)
	str("REDIS_URL", &cfg.Store.Redis.URL)
	str("REDIS_ADDRESS", &cfg.Store.Redis.Address)
	str("REDIS_PASSWORD", &cfg.Store.Redis.Password)
	num("REDIS_DB", &cfg.Store.Redis.DB)
	str("SCRAPE_SCHEDULE", &cfg.Scrape.Schedule)
	num("SCRAPE_WORKERS", &cfg.Scrape.Workers)
	list("TARGET_ROLES", &cfg.Filters.TargetRoles)
	list("EXCLUDED_KEYWORDS", &cfg.Filters.ExcludedKeywords)
}

// LoadWithEnv is Load followed by ApplyEnv(os.Getenv).
func LoadWithEnv(path string) (Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	ApplyEnv(&cfg, os.Getenv)
	return cfg, nil
}
