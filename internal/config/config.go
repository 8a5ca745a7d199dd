package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Company is one secondary-roster entry for a platform.
type Company struct {
	Slug string `yaml:"slug" json:"slug"` // board token; full board URL for workday
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

type Source struct {
	Enabled   bool      `yaml:"enabled" json:"enabled"`
	Companies []Company `yaml:"companies" json:"companies"`
}

type AppConfig struct {
	Host    string `yaml:"host" json:"host"`
	Port    int    `yaml:"port" json:"port"`
	DataDir string `yaml:"data_dir" json:"data_dir"`
}

type LoggingConfig struct {
	Level       string `yaml:"level" json:"level"`
	Development bool   `yaml:"development" json:"development"`
}

type RedisConfig struct {
	URL            string `yaml:"url" json:"url"`
	Address        string `yaml:"address" json:"address"`
	Password       string `yaml:"password" json:"-"`
	DB             int    `yaml:"db" json:"db"`
	KeyringAccount string `yaml:"keyring_account" json:"keyring_account"`
}

type StoreConfig struct {
	// Backend is auto, redis, file or sqlite. auto picks redis when an
	// address or URL is configured and local files otherwise.
	Backend string      `yaml:"backend" json:"backend"`
	Redis   RedisConfig `yaml:"redis" json:"redis"`
	FileDir string      `yaml:"file_dir" json:"file_dir"`
	SQLite  string      `yaml:"sqlite_path" json:"sqlite_path"`
}

type ScrapeConfig struct {
	DelayMS         int     `yaml:"delay_ms" json:"delay_ms"`
	Workers         int     `yaml:"workers" json:"workers"`
	HostRatePerSec  float64 `yaml:"host_rate_per_sec" json:"host_rate_per_sec"`
	HostBurst       int     `yaml:"host_burst" json:"host_burst"`
	TimeoutSeconds  int     `yaml:"timeout_seconds" json:"timeout_seconds"`
	WorkdayMaxPages int     `yaml:"workday_max_pages" json:"workday_max_pages"`
	Schedule        string  `yaml:"schedule" json:"schedule"`
	RecencyDays     int     `yaml:"recency_days" json:"recency_days"`
	PersistMode     string  `yaml:"persist_mode" json:"persist_mode"` // replace | merge
}

type FilterConfig struct {
	TargetRoles      []string `yaml:"target_roles" json:"target_roles"`
	ExcludedKeywords []string `yaml:"excluded_keywords" json:"excluded_keywords"`
}

// TierConfig holds the minimum lcaCount for each tier.
type TierConfig struct {
	Top    int `yaml:"top" json:"top"`
	Middle int `yaml:"middle" json:"middle"`
	Lower  int `yaml:"lower" json:"lower"`
	Lowest int `yaml:"lowest" json:"lowest"`
}

type SourcesConfig struct {
	Greenhouse Source `yaml:"greenhouse" json:"greenhouse"`
	Lever      Source `yaml:"lever" json:"lever"`
	Ashby      Source `yaml:"ashby" json:"ashby"`
	Workday    Source `yaml:"workday" json:"workday"`
}

type Config struct {
	App     AppConfig     `yaml:"app" json:"app"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Store   StoreConfig   `yaml:"store" json:"store"`
	Scrape  ScrapeConfig  `yaml:"scrape" json:"scrape"`
	Filters FilterConfig  `yaml:"filters" json:"filters"`
	Tiers   TierConfig    `yaml:"tiers" json:"tiers"`
	Sources SourcesConfig `yaml:"sources" json:"sources"`
}

const (
	PersistReplace = "replace"
	PersistMerge   = "merge"
)

func Default() Config {
	var c Config
	c.App.Host = "127.0.0.1"
	c.App.Port = 38471
	c.App.DataDir = "."
	c.Logging.Level = "info"
	c.Store.Backend = "auto"
	c.Scrape.DelayMS = 200
	c.Scrape.Workers = 1
	c.Scrape.HostRatePerSec = 5
	c.Scrape.HostBurst = 1
	c.Scrape.TimeoutSeconds = 20
	c.Scrape.WorkdayMaxPages = 10
	c.Scrape.Schedule = "@every 30m"
	c.Scrape.RecencyDays = 10
	c.Scrape.PersistMode = PersistReplace
	c.Tiers = TierConfig{Top: 1000, Middle: 501, Lower: 101, Lowest: 51}
	c.Sources.Greenhouse.Enabled = true
	c.Sources.Lever.Enabled = true
	c.Sources.Ashby.Enabled = true
	c.Sources.Workday.Enabled = true
	return c
}

// Load reads a YAML file on top of Default(). Keys absent from the file keep
// their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

func (c Config) Delay() time.Duration { return time.Duration(c.Scrape.DelayMS) * time.Millisecond }

func (c Config) Timeout() time.Duration {
	return time.Duration(c.Scrape.TimeoutSeconds) * time.Second
}

func (c Config) RecencyWindow() time.Duration {
	return time.Duration(c.Scrape.RecencyDays) * 24 * time.Hour
}
