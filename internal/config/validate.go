package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

func (v Validation) Error() string {
	return "config validation failed:\n- " + strings.Join(v.Errors, "\n- ")
}

var backends = map[string]bool{"auto": true, "redis": true, "file": true, "sqlite": true}

// NormalizeAndValidate returns a normalized copy of cfg plus any problems.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	lowerList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.ToLower(strings.TrimSpace(x))
			if x == "" || seen[x] {
				continue
			}
			seen[x] = true
			ys = append(ys, x)
		}
		return ys
	}
	out.Filters.TargetRoles = lowerList(out.Filters.TargetRoles)
	out.Filters.ExcludedKeywords = lowerList(out.Filters.ExcludedKeywords)
	out.Store.Backend = strings.ToLower(strings.TrimSpace(out.Store.Backend))
	if out.Store.Backend == "" {
		out.Store.Backend = "auto"
	}
	out.Scrape.PersistMode = strings.ToLower(strings.TrimSpace(out.Scrape.PersistMode))
	if out.Scrape.PersistMode == "" {
		out.Scrape.PersistMode = PersistReplace
	}
	for _, src := range []*Source{&out.Sources.Greenhouse, &out.Sources.Lever, &out.Sources.Ashby, &out.Sources.Workday} {
		src.Companies = trimCompanies(src.Companies)
	}

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if !backends[out.Store.Backend] {
		res.addErr("store.backend must be one of auto, redis, file, sqlite (got %q)", out.Store.Backend)
	}
	if out.Store.Backend == "redis" && out.Store.Redis.Address == "" && out.Store.Redis.URL == "" {
		res.addErr("store.redis.address or store.redis.url is required when store.backend=redis")
	}

	if out.Scrape.DelayMS < 0 {
		res.addErr("scrape.delay_ms must be >= 0")
	} else if out.Scrape.DelayMS < 100 && out.Scrape.Workers <= 1 {
		res.addWarn("scrape.delay_ms is very low (%d) and may trip ATS rate limits.", out.Scrape.DelayMS)
	}
	if out.Scrape.Workers < 1 {
		res.addErr("scrape.workers must be >= 1")
	} else if out.Scrape.Workers > 1 {
		if out.Scrape.HostRatePerSec <= 0 {
			res.addErr("scrape.host_rate_per_sec must be > 0 when scrape.workers > 1")
		}
		if out.Scrape.HostBurst > 1 {
			res.addErr("scrape.host_burst must be 1 when scrape.workers > 1 (got %d)", out.Scrape.HostBurst)
		}
	}
	if out.Scrape.TimeoutSeconds <= 0 {
		res.addErr("scrape.timeout_seconds must be > 0")
	} else if out.Scrape.TimeoutSeconds < 10 || out.Scrape.TimeoutSeconds > 30 {
		res.addWarn("scrape.timeout_seconds=%d is outside the usual 10..30 range.", out.Scrape.TimeoutSeconds)
	}
	if out.Scrape.RecencyDays <= 0 {
		res.addErr("scrape.recency_days must be > 0")
	}
	if out.Scrape.PersistMode != PersistReplace && out.Scrape.PersistMode != PersistMerge {
		res.addErr("scrape.persist_mode must be replace or merge (got %q)", out.Scrape.PersistMode)
	}
	if s := strings.TrimSpace(out.Scrape.Schedule); s != "" {
		if _, err := cron.ParseStandard(s); err != nil {
			res.addErr("scrape.schedule %q is not a valid cron spec: %v", s, err)
		}
	}

	t := out.Tiers
	if !(t.Top > t.Middle && t.Middle > t.Lower && t.Lower > t.Lowest && t.Lowest > 0) {
		res.addErr("tiers must be strictly descending and positive: top > middle > lower > lowest > 0")
	}

	for name, src := range map[string]Source{
		"greenhouse": out.Sources.Greenhouse, "lever": out.Sources.Lever,
		"ashby": out.Sources.Ashby, "workday": out.Sources.Workday,
	} {
		for i, c := range src.Companies {
			if c.Slug == "" {
				res.addErr("sources.%s.companies[%d].slug is required", name, i)
			}
		}
	}
	if len(out.Filters.TargetRoles) == 0 {
		res.addWarn("filters.target_roles is empty; built-in defaults will be used.")
	}

	return out, res
}

// Validate is NormalizeAndValidate without the normalized copy.
func Validate(cfg Config) error {
	_, res := NormalizeAndValidate(cfg)
	if !res.OK() {
		return res
	}
	return nil
}

func trimCompanies(in []Company) []Company {
	out := make([]Company, 0, len(in))
	for _, c := range in {
		c.Slug = strings.TrimSpace(c.Slug)
		c.ID = strings.TrimSpace(c.ID)
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			c.Name = c.Slug
		}
		out = append(out, c)
	}
	return out
}
