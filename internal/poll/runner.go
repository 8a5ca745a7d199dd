package poll

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"jobtier-engine/internal/config"
	"jobtier-engine/internal/domain"
	"jobtier-engine/internal/events"
	"jobtier-engine/internal/metrics"
	"jobtier-engine/internal/scrape"
	"jobtier-engine/internal/scrape/types"
	"jobtier-engine/internal/store"
)

var ErrAlreadyRunning = errors.New("scrape already running")

// Runner performs one scrape pass end to end: orchestrate, drop stale
// postings, persist, then publish status, events and metrics.
type Runner struct {
	Gateway  *store.Gateway
	Registry types.Registry
	Config   func() config.Config
	Hub      *events.Hub
	Metrics  *metrics.Metrics
	Log      *zap.Logger
	Now      func() time.Time

	running atomic.Bool
	status  statusHolder
}

// Report is what one pass produced.
type Report struct {
	Summary   domain.ScrapeSummary `json:"summary"`
	Persisted int                  `json:"persisted"`
	Dropped   int                  `json:"dropped"`
	Mode      string               `json:"mode"`
}

func (r *Runner) Status() Status { return r.status.load() }

func (r *Runner) Running() bool { return r.running.Load() }

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) log() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

// RunOnce refuses to start while another pass is in flight.
func (r *Runner) RunOnce(ctx context.Context, reqID string) (Report, error) {
	if !r.TryStart() {
		return Report{}, ErrAlreadyRunning
	}
	return r.RunStarted(ctx, reqID)
}

// TryStart reserves the runner for one run. A caller that gets true must
// follow up with RunStarted, which releases the reservation.
func (r *Runner) TryStart() bool { return r.running.CompareAndSwap(false, true) }

// RunStarted performs a run reserved by TryStart.
func (r *Runner) RunStarted(ctx context.Context, reqID string) (Report, error) {
	defer r.running.Store(false)

	start := r.now()
	r.status.update(func(st *Status) {
		st.Running = true
		st.LastRunAt = start.UTC().Format(time.RFC3339)
	})
	if r.Metrics != nil {
		r.Metrics.RunStarted()
	}
	r.Hub.Emit(reqID, events.ScrapeStarted, nil)

	rep, err := r.run(ctx)

	finished := r.now()
	st := r.status.update(func(st *Status) {
		st.Running = false
		if err != nil {
			st.LastError = err.Error()
			return
		}
		st.LastError = ""
		st.LastOkAt = finished.UTC().Format(time.RFC3339)
		st.LastAdded = rep.Persisted
		st.LastDropped = rep.Dropped
		sum := rep.Summary
		st.LastSummary = &sum
	})

	if r.Metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		r.Metrics.RunFinished(status, finished.Sub(start), rep.Persisted, len(rep.Summary.Errors), finished)
	}

	if err != nil {
		r.log().Error("scrape run failed", zap.Error(err))
		r.Hub.Emit(reqID, events.ScrapeFinished, map[string]any{"ok": false, "error": err.Error()})
		return rep, err
	}
	r.log().Info("scrape run persisted",
		zap.String("run_id", rep.Summary.RunID),
		zap.String("mode", rep.Mode),
		zap.Int("persisted", rep.Persisted),
		zap.Int("dropped_stale", rep.Dropped),
	)
	r.Hub.Emit(reqID, events.ScrapeFinished, map[string]any{"ok": true, "status": st, "summary": rep.Summary})
	r.Hub.Emit(reqID, events.JobsUpdated, map[string]int{"totalJobs": rep.Persisted})
	return rep, nil
}

func (r *Runner) run(ctx context.Context) (Report, error) {
	cfg := config.Default()
	if r.Config != nil {
		cfg = r.Config()
	}

	var rec scrape.Recorder
	if r.Metrics != nil {
		rec = r.Metrics
	}
	var tiers scrape.TierSource
	if r.Gateway != nil {
		tiers = r.Gateway
	}
	orch := scrape.NewOrchestrator(cfg, r.Registry, tiers, r.log(), rec)

	jobs, sum, err := orch.RunAll(ctx)
	if err != nil {
		// a cancelled or half-read run never replaces the stored batch
		return Report{Summary: sum}, fmt.Errorf("scrape: %w", err)
	}

	kept, dropped := scrape.FilterRecent(jobs, cfg.RecencyWindow(), r.now())
	rep := Report{Summary: sum, Dropped: dropped, Mode: cfg.Scrape.PersistMode}
	if r.Gateway == nil {
		rep.Persisted = len(kept)
		return rep, nil
	}

	var jd domain.JobsData
	if cfg.Scrape.PersistMode == config.PersistMerge {
		jd, err = r.Gateway.MergeJobs(ctx, kept)
	} else {
		rep.Mode = config.PersistReplace
		jd, err = r.Gateway.ReplaceJobs(ctx, kept)
	}
	if err != nil {
		return rep, fmt.Errorf("persist jobs: %w", err)
	}
	rep.Persisted = jd.TotalJobs

	if err := r.Gateway.SetLastSummary(ctx, sum); err != nil {
		r.log().Warn("store scrape summary", zap.Error(err))
	}
	return rep, nil
}
