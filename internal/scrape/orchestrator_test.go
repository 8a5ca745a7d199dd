package scrape

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtier-engine/internal/config"
	"jobtier-engine/internal/domain"
	"jobtier-engine/internal/scrape/types"
)

type fakeAdapter struct {
	platform domain.Platform
	fail     map[string]bool
	titles   map[string][]string
	note     map[string]string
	delay    time.Duration
	onCall   func(token string)

	mu    sync.Mutex
	calls []string
}

func (f *fakeAdapter) Platform() domain.Platform { return f.platform }

func (f *fakeAdapter) Fetch(ctx context.Context, t types.Target) (types.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, t.Token)
	f.mu.Unlock()
	if f.onCall != nil {
		f.onCall(t.Token)
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.fail[t.Token] {
		return types.Result{}, types.BadStatus(f.platform, 503)
	}
	var jobs []domain.Job
	for i, title := range f.titles[t.Token] {
		jobs = append(jobs, domain.Job{
			ID:          fmt.Sprintf("%s-%s-%d", f.platform, t.Token, i),
			CompanyID:   t.CompanyID,
			CompanyName: t.CompanyName,
			Title:       title,
			Platform:    f.platform,
		})
	}
	return types.Result{Jobs: jobs, Note: f.note[t.Token]}, nil
}

func (f *fakeAdapter) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type memTiers map[domain.Tier]*domain.TierData

func (m memTiers) GetTier(_ context.Context, t domain.Tier) (*domain.TierData, error) {
	return m[t], nil
}

type failingTiers struct{}

func (failingTiers) GetTier(context.Context, domain.Tier) (*domain.TierData, error) {
	return nil, errors.New("connection refused")
}

func strp(s string) *string { return &s }

func ghCompany(id, name, token string, tier domain.Tier) domain.Company {
	return domain.Company{ID: id, Name: name, Tier: tier, Platform: domain.PlatformGreenhouse, GreenhouseID: strp(token)}
}

func noSleep(context.Context, time.Duration) error { return nil }

func TestRunAllDirectorOfSalesScenario(t *testing.T) {
	gh := &fakeAdapter{platform: domain.PlatformGreenhouse, titles: map[string][]string{"acme": {"Senior Director of Sales"}}}
	o := &Orchestrator{
		Registry: types.NewRegistry(gh),
		Tiers: memTiers{domain.TierTop: &domain.TierData{Tier: domain.TierTop, Companies: []domain.Company{
			ghCompany("A", "Acme", "acme", domain.TierTop),
		}}},
		Filter: NewKeywordFilter([]string{"engineer"}, []string{"director"}),
		sleep:  noSleep,
	}

	jobs, sum, err := o.RunAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, jobs)
	assert.Equal(t, 1, sum.TotalJobs)
	assert.Equal(t, 0, sum.FilteredJobs)
	assert.Equal(t, 1, sum.CompaniesScraped)
	assert.Equal(t, 1, sum.TierBreakdown[domain.TierTop])
	assert.NotEmpty(t, sum.RunID)
}

func TestRunAllPartialFailureContainment(t *testing.T) {
	const n, k = 8, 3
	gh := &fakeAdapter{platform: domain.PlatformGreenhouse, fail: map[string]bool{}, titles: map[string][]string{}}
	var secondary []RosterEntry
	for i := 0; i < n; i++ {
		tok := fmt.Sprintf("co%d", i)
		if i < k {
			gh.fail[tok] = true
		} else {
			gh.titles[tok] = []string{"Software Engineer"}
		}
		secondary = append(secondary, RosterEntry{Platform: domain.PlatformGreenhouse, Token: tok, CompanyID: tok, CompanyName: "Company " + tok})
	}

	o := &Orchestrator{Registry: types.NewRegistry(gh), Secondary: secondary, Filter: NewKeywordFilter([]string{"engineer"}, nil), sleep: noSleep}
	jobs, sum, err := o.RunAll(context.Background())
	require.NoError(t, err)

	assert.Len(t, sum.Errors, k)
	assert.Equal(t, "Company co0: greenhouse API error: 503 Service Unavailable", sum.Errors[0])
	assert.Equal(t, n, sum.CompaniesAttempted)
	assert.Equal(t, n-k, sum.CompaniesScraped)
	assert.Equal(t, n-k, sum.CompaniesWithJobs)
	assert.Len(t, jobs, n-k)
	// secondary entries carry no tier
	assert.Equal(t, 0, sum.TierBreakdown[domain.TierTop])
}

func TestRunAllAllFailuresStillSummarises(t *testing.T) {
	gh := &fakeAdapter{platform: domain.PlatformGreenhouse, fail: map[string]bool{"a": true, "b": true}}
	o := &Orchestrator{
		Registry:  types.NewRegistry(gh),
		Secondary: []RosterEntry{{Platform: domain.PlatformGreenhouse, Token: "a"}, {Platform: domain.PlatformGreenhouse, Token: "b"}},
		sleep:     noSleep,
	}
	jobs, sum, err := o.RunAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, jobs)
	assert.Zero(t, sum.TotalJobs)
	assert.Zero(t, sum.CompaniesScraped)
	assert.Len(t, sum.Errors, 2)
}

func TestRunAllDedupesCallsAndSkipsUnscrapeable(t *testing.T) {
	gh := &fakeAdapter{platform: domain.PlatformGreenhouse}
	lv := &fakeAdapter{platform: domain.PlatformLever}
	tiers := memTiers{
		domain.TierTop: &domain.TierData{Tier: domain.TierTop, Companies: []domain.Company{
			ghCompany("A", "Acme", "acme", domain.TierTop),
			{ID: "C", Name: "Custom Co", Platform: domain.PlatformCustom},
			{ID: "N", Name: "No Token", Platform: domain.PlatformLever},
			{ID: "W", Name: "Workday Co", Platform: domain.PlatformWorkday, WorkdayID: strp("w.wd1.myworkdayjobs.com/x")},
		}},
		domain.TierMiddle: &domain.TierData{Tier: domain.TierMiddle, Companies: []domain.Company{
			ghCompany("A2", "Acme Again", "acme", domain.TierMiddle),
			{ID: "L", Name: "Lev", Platform: domain.PlatformLever, LeverID: strp("lev")},
		}},
	}
	o := &Orchestrator{
		Registry: types.NewRegistry(gh, lv),
		Tiers:    tiers,
		Secondary: []RosterEntry{
			{Platform: domain.PlatformGreenhouse, Token: "acme", CompanyName: "Acme"},
			{Platform: domain.PlatformLever, Token: "other", CompanyName: "Other"},
		},
		sleep: noSleep,
	}

	_, sum, err := o.RunAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"acme"}, gh.Calls())
	assert.Equal(t, []string{"lev", "other"}, lv.Calls())
	assert.Equal(t, 3, sum.CompaniesAttempted)
	assert.Equal(t, []string{"no adapter registered for workday"}, sum.Notes)
}

func TestRunAllRespectsEnabledPlatforms(t *testing.T) {
	gh := &fakeAdapter{platform: domain.PlatformGreenhouse}
	lv := &fakeAdapter{platform: domain.PlatformLever}
	o := &Orchestrator{
		Registry: types.NewRegistry(gh, lv),
		Secondary: []RosterEntry{
			{Platform: domain.PlatformGreenhouse, Token: "g"},
			{Platform: domain.PlatformLever, Token: "l"},
		},
		Enabled: map[domain.Platform]bool{domain.PlatformLever: true},
		sleep:   noSleep,
	}
	_, _, err := o.RunAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gh.Calls())
	assert.Equal(t, []string{"l"}, lv.Calls())
}

func TestRunAllNotesAreNotErrors(t *testing.T) {
	wd := &fakeAdapter{platform: domain.PlatformWorkday, note: map[string]string{"board": "full parsing requires browser automation"}}
	o := &Orchestrator{
		Registry:  types.NewRegistry(wd),
		Secondary: []RosterEntry{{Platform: domain.PlatformWorkday, Token: "board", CompanyName: "Big Co"}},
		sleep:     noSleep,
	}
	_, sum, err := o.RunAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sum.Errors)
	assert.Equal(t, 1, sum.CompaniesScraped)
	assert.Equal(t, 0, sum.CompaniesWithJobs)
	assert.Equal(t, []string{"Big Co: full parsing requires browser automation"}, sum.Notes)
}

func TestRunAllTierReadFailureIsFatal(t *testing.T) {
	o := &Orchestrator{Registry: types.NewRegistry(), Tiers: failingTiers{}}
	_, _, err := o.RunAll(context.Background())
	assert.ErrorContains(t, err, "connection refused")
}

func TestRunAllSequentialSleepsBetweenCalls(t *testing.T) {
	gh := &fakeAdapter{platform: domain.PlatformGreenhouse}
	var slept []time.Duration
	o := &Orchestrator{
		Registry: types.NewRegistry(gh),
		Secondary: []RosterEntry{
			{Platform: domain.PlatformGreenhouse, Token: "a"},
			{Platform: domain.PlatformGreenhouse, Token: "b"},
			{Platform: domain.PlatformGreenhouse, Token: "c"},
		},
		Delay: DefaultDelay,
		sleep: func(_ context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		},
	}
	_, _, err := o.RunAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{DefaultDelay, DefaultDelay}, slept)
}

func TestRunAllCancelBetweenCalls(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gh := &fakeAdapter{
		platform: domain.PlatformGreenhouse,
		titles:   map[string][]string{"a": {"Engineer"}, "b": {"Engineer"}, "c": {"Engineer"}},
	}
	gh.onCall = func(token string) {
		if token == "b" {
			cancel()
		}
	}
	o := &Orchestrator{
		Registry: types.NewRegistry(gh),
		Secondary: []RosterEntry{
			{Platform: domain.PlatformGreenhouse, Token: "a"},
			{Platform: domain.PlatformGreenhouse, Token: "b"},
			{Platform: domain.PlatformGreenhouse, Token: "c"},
		},
		Filter: NewKeywordFilter([]string{"engineer"}, nil),
		sleep:  noSleep,
	}
	jobs, sum, err := o.RunAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"a", "b"}, gh.Calls())
	assert.Equal(t, 2, sum.CompaniesAttempted)
	assert.Len(t, jobs, 2)
}

func TestRunAllConcurrentKeepsRosterOrder(t *testing.T) {
	gh := &fakeAdapter{platform: domain.PlatformGreenhouse, titles: map[string][]string{}, delay: 5 * time.Millisecond}
	var secondary []RosterEntry
	for i := 0; i < 12; i++ {
		tok := fmt.Sprintf("t%02d", i)
		gh.titles[tok] = []string{"Engineer"}
		secondary = append(secondary, RosterEntry{Platform: domain.PlatformGreenhouse, Token: tok})
	}
	o := &Orchestrator{
		Registry:  types.NewRegistry(gh),
		Secondary: secondary,
		Workers:   4,
		Filter:    NewKeywordFilter([]string{"engineer"}, nil),
	}
	jobs, sum, err := o.RunAll(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 12)
	for i, j := range jobs {
		assert.Equal(t, fmt.Sprintf("greenhouse-t%02d-0", i), j.ID)
	}
	assert.Equal(t, 12, sum.CompaniesScraped)
}

type countingRecorder struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (c *countingRecorder) ObserveFetch(_ domain.Platform, outcome string, _ time.Duration, _ int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes[outcome]++
}

func TestRunAllRecordsMetrics(t *testing.T) {
	gh := &fakeAdapter{platform: domain.PlatformGreenhouse, fail: map[string]bool{"bad": true}, note: map[string]string{"noted": "x"}}
	rec := &countingRecorder{outcomes: map[string]int{}}
	o := &Orchestrator{
		Registry: types.NewRegistry(gh),
		Secondary: []RosterEntry{
			{Platform: domain.PlatformGreenhouse, Token: "good"},
			{Platform: domain.PlatformGreenhouse, Token: "bad"},
			{Platform: domain.PlatformGreenhouse, Token: "noted"},
		},
		Metrics: rec,
		sleep:   noSleep,
	}
	_, _, err := o.RunAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{OutcomeOK: 1, OutcomeError: 1, OutcomeNote: 1}, rec.outcomes)
}

func TestSecondaryRosterOverrides(t *testing.T) {
	src := config.Default().Sources
	src.Lever.Companies = []config.Company{{Slug: "acme", ID: "ACME", Name: "Acme"}}
	src.Ashby.Enabled = false

	roster := SecondaryRoster(src)
	var lever, ashby int
	for _, e := range roster {
		switch e.Platform {
		case domain.PlatformLever:
			lever++
			assert.Equal(t, "acme", e.Token)
		case domain.PlatformAshby:
			ashby++
		}
		assert.Empty(t, e.Tier)
	}
	assert.Equal(t, 1, lever)
	assert.Zero(t, ashby)
	assert.Equal(t, domain.PlatformGreenhouse, roster[0].Platform)

	assert.False(t, EnabledPlatforms(src)[domain.PlatformAshby])
	assert.True(t, EnabledPlatforms(src)[domain.PlatformWorkday])
}
