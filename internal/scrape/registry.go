package scrape

import (
	"go.uber.org/zap"

	"jobtier-engine/internal/config"
	"jobtier-engine/internal/scrape/ashby"
	"jobtier-engine/internal/scrape/greenhouse"
	"jobtier-engine/internal/scrape/lever"
	"jobtier-engine/internal/scrape/types"
	"jobtier-engine/internal/scrape/util"
	"jobtier-engine/internal/scrape/workday"
)

// NewLimiter builds the per-host limiter shared by every adapter.
func NewLimiter(cfg config.Config) *util.HostLimiter {
	return util.NewHostLimiter(cfg.Scrape.HostRatePerSec, cfg.Scrape.HostBurst)
}

// NewRegistry wires one adapter per platform around a shared limiter.
func NewRegistry(cfg config.Config, lim *util.HostLimiter) types.Registry {
	timeout := cfg.Timeout()
	return types.NewRegistry(
		greenhouse.New(greenhouse.Config{Timeout: timeout}, lim),
		lever.New(lever.Config{Timeout: timeout}, lim),
		ashby.New(ashby.Config{Timeout: timeout}, lim),
		workday.New(workday.Config{Timeout: timeout, MaxPages: cfg.Scrape.WorkdayMaxPages}, lim),
	)
}

// NewOrchestrator configures a run from cfg. tiers may be nil to scrape the
// secondary roster only.
func NewOrchestrator(cfg config.Config, reg types.Registry, tiers TierSource, log *zap.Logger, rec Recorder) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	o := &Orchestrator{
		Registry:  reg,
		Tiers:     tiers,
		Secondary: SecondaryRoster(cfg.Sources),
		Enabled:   EnabledPlatforms(cfg.Sources),
		Filter:    NewKeywordFilter(cfg.Filters.TargetRoles, cfg.Filters.ExcludedKeywords),
		Delay:     cfg.Delay(),
		Workers:   cfg.Scrape.Workers,
		Log:       log.With(zap.String("component", "orchestrator")),
	}
	if rec != nil {
		o.Metrics = rec
	}
	return o
}
