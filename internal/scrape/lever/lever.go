package lever

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jobtier-engine/internal/domain"
	"jobtier-engine/internal/scrape/types"
	"jobtier-engine/internal/scrape/util"
)

const DefaultBaseURL = "https://api.lever.co/v0/postings"

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Scraper struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
	now     func() time.Time
}

func New(cfg Config, limiter *util.HostLimiter) *Scraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Scraper{
		cfg:     cfg,
		hc:      util.NewClient(cfg.Timeout),
		limiter: limiter,
		now:     time.Now,
	}
}

func (s *Scraper) Platform() domain.Platform { return domain.PlatformLever }

type leverPosting struct {
	ID         string `json:"id"`
	Text       string `json:"text"` // title
	HostedURL  string `json:"hostedUrl"`
	CreatedAt  int64  `json:"createdAt"` // ms epoch
	Categories struct {
		Location   string `json:"location"`
		Team       string `json:"team"`
		Department string `json:"department"`
	} `json:"categories"`
}

func (s *Scraper) Fetch(ctx context.Context, t types.Target) (types.Result, error) {
	slug := strings.TrimSpace(t.Token)
	if slug == "" {
		return types.Result{}, types.Unavailable(s.Platform(), fmt.Errorf("empty company slug"))
	}
	apiURL := fmt.Sprintf("%s/%s?mode=json", strings.TrimRight(s.cfg.BaseURL, "/"), url.PathEscape(slug))

	var postings []leverPosting
	if err := util.DoJSON(ctx, s.hc, s.limiter, s.Platform(), util.JSONRequest{URL: apiURL}, &postings); err != nil {
		return types.Result{}, err
	}

	scrapedAt := s.now().UTC()
	out := make([]domain.Job, 0, len(postings))
	for _, p := range postings {
		title := util.CleanText(p.Text)
		if p.ID == "" || title == "" {
			continue
		}
		loc := util.NormalizeLocation(p.Categories.Location)
		if loc == "" {
			loc = "Remote"
		}
		var posted *time.Time
		if p.CreatedAt > 0 {
			ts := time.UnixMilli(p.CreatedAt).UTC()
			posted = &ts
		}

		out = append(out, domain.Job{
			ID:          "lever-" + slug + "-" + p.ID,
			CompanyID:   t.CompanyID,
			CompanyName: t.CompanyName,
			Title:       title,
			Location:    loc,
			Department:  util.CleanText(util.FirstNonEmpty(p.Categories.Team, p.Categories.Department)),
			URL:         util.CanonicalURL(p.HostedURL),
			PostedAt:    posted,
			ScrapedAt:   scrapedAt,
			Platform:    domain.PlatformLever,
		})
	}
	return types.Result{Jobs: out}, nil
}
