package tiering

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"jobtier-engine/internal/domain"
	"jobtier-engine/internal/rank"
)

const maxIDLen = 50

// CompanyID derives a stable id from a grouping key: every run of
// non-[A-Z0-9] characters becomes one underscore, cut to 50 bytes.
func CompanyID(key string) string {
	var b strings.Builder
	prevUnderscore := false
	for _, r := range strings.ToUpper(key) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			prevUnderscore = false
			continue
		}
		if !prevUnderscore {
			b.WriteByte('_')
			prevUnderscore = true
		}
	}
	id := b.String()
	if len(id) > maxIDLen {
		id = id[:maxIDLen]
	}
	return id
}

// GroupKey is the per-employer aggregation key.
func GroupKey(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

type aggregate struct {
	company   domain.Company
	certified int
}

// Aggregator accumulates filings per employer. Not safe for concurrent use.
type Aggregator struct {
	byKey      map[string]*aggregate
	order      []string
	emptyNames int
}

func NewAggregator() *Aggregator {
	return &Aggregator{byKey: map[string]*aggregate{}}
}

func (a *Aggregator) Add(f Filing) {
	key := GroupKey(f.EmployerName)
	if key == "" {
		a.emptyNames++
		return
	}

	agg, ok := a.byKey[key]
	if !ok {
		agg = &aggregate{company: domain.Company{
			ID:           CompanyID(key),
			Name:         strings.TrimSpace(f.EmployerName),
			City:         f.City,
			State:        f.State,
			POCFirstName: f.POCFirstName,
			POCLastName:  f.POCLastName,
			POCEmail:     f.POCEmail,
			POCPhone:     f.POCPhone,
			CareerURLs:   []string{},
		}}
		a.byKey[key] = agg
		a.order = append(a.order, key)
	}

	c := &agg.company
	c.LCACount++
	if strings.Contains(strings.ToUpper(f.CaseStatus), "CERTIFIED") {
		agg.certified++
	}
	switch strings.ToUpper(strings.TrimSpace(f.Quarter)) {
	case "Q1":
		c.LCAQ1++
	case "Q2":
		c.LCAQ2++
	case "Q3":
		c.LCAQ3++
	case "Q4":
		c.LCAQ4++
	}
}

func (a *Aggregator) Len() int { return len(a.order) }

// Companies scores, tiers and ranks every employer seen so far.
func (a *Aggregator) Companies(s rank.Scorer, th rank.Thresholds) []domain.Company {
	out := make([]domain.Company, 0, len(a.order))
	for _, key := range a.order {
		agg := a.byKey[key]
		c := agg.company
		rank.Apply(s, &c, agg.certified)
		c.Tier = th.Assign(c.LCACount)
		out = append(out, c)
	}
	rank.SortByPriority(out)
	return out
}

// Result is the output of one build.
type Result struct {
	Companies  []domain.Company                `json:"-"`
	Tiers      map[domain.Tier]domain.TierData `json:"-"`
	Stats      ReadStats                       `json:"stats"`
	EmptyNames int                             `json:"emptyNames"`
	Duration   time.Duration                   `json:"duration"`
}

type Builder struct {
	Scorer     rank.Scorer
	Thresholds rank.Thresholds
	Log        *zap.Logger
	Now        func() time.Time
}

func NewBuilder(th rank.Thresholds, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{Scorer: rank.DefaultScorer, Thresholds: th, Log: log, Now: time.Now}
}

// BuildFile streams a CSV or XLSX dataset and ranks its employers.
func (b *Builder) BuildFile(path string) (Result, error) {
	if err := b.Thresholds.Validate(); err != nil {
		return Result{}, err
	}
	start := b.Now()
	agg := NewAggregator()

	st, err := ReadFile(path, agg.Add)
	if err != nil {
		return Result{}, fmt.Errorf("read dataset %s: %w", path, err)
	}
	res := b.finish(agg, st)
	res.Duration = b.Now().Sub(start)

	b.Log.Info("tier build complete",
		zap.String("path", path),
		zap.Int("rows", st.Rows),
		zap.Int("malformed", st.Malformed),
		zap.Int("empty_names", res.EmptyNames),
		zap.Int("companies", len(res.Companies)),
		zap.Duration("took", res.Duration),
	)
	if len(res.Companies) == 0 {
		b.Log.Warn("tier build produced no companies", zap.String("path", path))
	}
	return res, nil
}

// Build ranks an in-memory set of filings.
func (b *Builder) Build(filings []Filing) Result {
	agg := NewAggregator()
	for _, f := range filings {
		agg.Add(f)
	}
	return b.finish(agg, ReadStats{Rows: len(filings)})
}

func (b *Builder) finish(agg *Aggregator, st ReadStats) Result {
	companies := agg.Companies(b.Scorer, b.Thresholds)
	now := b.Now()

	parts := rank.Partition(companies)
	tiers := make(map[domain.Tier]domain.TierData, 5)
	for _, t := range append(append([]domain.Tier{}, domain.ScrapedTiers...), domain.TierBelow50) {
		tiers[t] = domain.NewTierData(t, parts[t], now)
	}
	return Result{Companies: companies, Tiers: tiers, Stats: st, EmptyNames: agg.emptyNames}
}

// TierWriter persists tier documents; store.Gateway satisfies it.
type TierWriter interface {
	SetTier(ctx context.Context, td domain.TierData) error
}

// SaveTiers writes the four scraped tiers. below50 is not persisted.
func SaveTiers(ctx context.Context, w TierWriter, res Result) error {
	for _, t := range domain.ScrapedTiers {
		if err := w.SetTier(ctx, res.Tiers[t]); err != nil {
			return fmt.Errorf("save tier %s: %w", t, err)
		}
	}
	return nil
}

// TierFileName is the on-disk name for a tier document, e.g. top-tier.json.
func TierFileName(t domain.Tier) string { return string(t) + "-tier.json" }

// WriteTierFiles writes every tier, below50 included, as indented JSON.
func WriteTierFiles(dir string, res Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for t, td := range res.Tiers {
		b, err := json.MarshalIndent(td, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, TierFileName(t)), b, 0o644); err != nil {
			return err
		}
	}
	return nil
}
