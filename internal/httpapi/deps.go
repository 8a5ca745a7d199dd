package httpapi

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"jobtier-engine/internal/config"
	"jobtier-engine/internal/events"
	"jobtier-engine/internal/metrics"
	"jobtier-engine/internal/poll"
	"jobtier-engine/internal/store"
)

type Deps struct {
	Gateway *store.Gateway
	Runner  *poll.Runner
	Hub     *events.Hub
	Metrics *metrics.Metrics
	Log     *zap.Logger

	// CfgVal stores config.Config
	CfgVal *atomic.Value

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// SeedDir is the default directory for POST /data/seed.
	SeedDir string
	Version string

	// BaseCtx bounds scrapes started by POST /scrape/run.
	BaseCtx context.Context
}
