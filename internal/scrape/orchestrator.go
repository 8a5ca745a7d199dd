package scrape

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"jobtier-engine/internal/domain"
	"jobtier-engine/internal/scrape/types"
)

const DefaultDelay = 200 * time.Millisecond

// Recorder receives one observation per adapter call.
type Recorder interface {
	ObserveFetch(p domain.Platform, outcome string, took time.Duration, jobs int)
}

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomeNote  = "note"
)

// Orchestrator runs every roster employer through its adapter and filters
// the combined result. With Workers <= 1 calls are strictly sequential and
// spaced by Delay; with more workers the adapters' shared host limiter does
// the spacing.
type Orchestrator struct {
	Registry  types.Registry
	Tiers     TierSource
	Secondary []RosterEntry
	Enabled   map[domain.Platform]bool // nil enables every platform
	Filter    *KeywordFilter
	Delay     time.Duration
	Workers   int
	Log       *zap.Logger
	Metrics   Recorder
	Now       func() time.Time

	sleep func(ctx context.Context, d time.Duration) error
}

type outcome struct {
	entry RosterEntry
	res   types.Result
	err   error
	done  bool
}

// RunAll scrapes the tier roster followed by the secondary roster. Employer
// failures are collected in the summary; err is only set when the tier
// roster cannot be read or ctx is cancelled, and in the latter case the
// jobs and summary cover the calls that finished.
func (o *Orchestrator) RunAll(ctx context.Context) ([]domain.Job, domain.ScrapeSummary, error) {
	now := o.Now
	if now == nil {
		now = time.Now
	}
	log := o.Log
	if log == nil {
		log = zap.NewNop()
	}
	start := now()

	var roster []RosterEntry
	if o.Tiers != nil {
		tr, err := LoadTierRoster(ctx, o.Tiers)
		if err != nil {
			return nil, domain.ScrapeSummary{}, err
		}
		roster = tr
	}
	roster = append(roster, o.Secondary...)

	calls, notes := o.plan(roster)
	for _, n := range notes {
		log.Warn("roster entry skipped", zap.String("reason", n))
	}

	var outs []outcome
	if o.Workers > 1 {
		outs = o.runConcurrent(ctx, calls)
	} else {
		outs = o.runSequential(ctx, calls)
	}

	sum := domain.ScrapeSummary{
		RunID:         uuid.NewString(),
		TierBreakdown: map[domain.Tier]int{},
		Errors:        []string{},
		Notes:         notes,
	}
	for _, t := range domain.ScrapedTiers {
		sum.TierBreakdown[t] = 0
	}

	var all []domain.Job
	for _, oc := range outs {
		if !oc.done {
			continue
		}
		sum.CompaniesAttempted++
		if oc.err != nil {
			sum.Errors = append(sum.Errors, fmt.Sprintf("%s: %v", oc.entry.CompanyName, oc.err))
			continue
		}
		sum.CompaniesScraped++
		if n := len(oc.res.Jobs); n > 0 {
			sum.CompaniesWithJobs++
			all = append(all, oc.res.Jobs...)
			if oc.entry.Tier != "" {
				sum.TierBreakdown[oc.entry.Tier] += n
			}
		}
		if oc.res.Note != "" {
			sum.Notes = append(sum.Notes, fmt.Sprintf("%s: %s", oc.entry.CompanyName, oc.res.Note))
		}
	}

	filter := o.Filter
	if filter == nil {
		filter = NewKeywordFilter(nil, nil)
	}
	filtered := filter.Apply(all)

	sum.TotalJobs = len(all)
	sum.FilteredJobs = len(filtered)
	sum.ScrapedAt = now().UTC()
	sum.Duration = sum.ScrapedAt.Sub(start).Round(time.Millisecond).String()

	log.Info("scrape run complete",
		zap.String("run_id", sum.RunID),
		zap.Int("attempted", sum.CompaniesAttempted),
		zap.Int("scraped", sum.CompaniesScraped),
		zap.Int("with_jobs", sum.CompaniesWithJobs),
		zap.Int("total_jobs", sum.TotalJobs),
		zap.Int("filtered_jobs", sum.FilteredJobs),
		zap.Int("errors", len(sum.Errors)),
		zap.String("took", sum.Duration),
	)
	return filtered, sum, ctx.Err()
}

// plan drops duplicate (platform, token) pairs, disabled platforms and
// platforms without an adapter, keeping roster order.
func (o *Orchestrator) plan(roster []RosterEntry) ([]RosterEntry, []string) {
	seen := make(map[string]struct{}, len(roster))
	calls := make([]RosterEntry, 0, len(roster))
	var notes []string
	missing := map[domain.Platform]bool{}

	for _, e := range roster {
		if e.Platform == domain.PlatformCustom || e.Token == "" {
			continue
		}
		if o.Enabled != nil && !o.Enabled[e.Platform] {
			continue
		}
		if _, ok := o.Registry.For(e.Platform); !ok {
			if !missing[e.Platform] {
				missing[e.Platform] = true
				notes = append(notes, fmt.Sprintf("no adapter registered for %s", e.Platform))
			}
			continue
		}
		if _, dup := seen[e.key()]; dup {
			continue
		}
		seen[e.key()] = struct{}{}
		calls = append(calls, e)
	}
	return calls, notes
}

func (o *Orchestrator) runSequential(ctx context.Context, calls []RosterEntry) []outcome {
	sleep := o.sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	outs := make([]outcome, len(calls))
	for i, e := range calls {
		if ctx.Err() != nil {
			break
		}
		outs[i] = o.fetch(ctx, e)
		if i < len(calls)-1 && o.Delay > 0 {
			if err := sleep(ctx, o.Delay); err != nil {
				break
			}
		}
	}
	return outs
}

func (o *Orchestrator) runConcurrent(ctx context.Context, calls []RosterEntry) []outcome {
	outs := make([]outcome, len(calls))
	var g errgroup.Group
	g.SetLimit(o.Workers)
	for i, e := range calls {
		i, e := i, e
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			outs[i] = o.fetch(ctx, e)
			return nil
		})
	}
	_ = g.Wait()
	return outs
}

func (o *Orchestrator) fetch(ctx context.Context, e RosterEntry) outcome {
	a, _ := o.Registry.For(e.Platform)
	start := time.Now()
	res, err := a.Fetch(ctx, e.Target())
	took := time.Since(start)

	if o.Metrics != nil {
		result := OutcomeOK
		switch {
		case err != nil:
			result = OutcomeError
		case res.Note != "":
			result = OutcomeNote
		}
		o.Metrics.ObserveFetch(e.Platform, result, took, len(res.Jobs))
	}
	if err != nil && o.Log != nil {
		o.Log.Warn("adapter failed",
			zap.String("platform", string(e.Platform)),
			zap.String("token", e.Token),
			zap.String("company", e.CompanyName),
			zap.Error(err),
		)
	}
	return outcome{entry: e, res: res, err: err, done: true}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
