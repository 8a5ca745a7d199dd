package ashby

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

const DefaultBaseURL = "https://api.ashbyhq.com/posting-api/job-board"

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

func (s *Scraper) Platform() domain.Platform { return domain.PlatformAshby }

type boardResponse struct {
	Jobs []struct {
		ID            string `json:"id"`
		Title         string `json:"title"`
		Location      string `json:"location"`
		Department    string `json:"department"`
		JobURL        string `json:"jobUrl"`
		JobPostingURL string `json:"jobPostingUrl"`
		PublishedAt   string `json:"publishedAt"`
		IsListed      *bool  `json:"isListed"`
	} `json:"jobs"`
}

func (s *Scraper) Fetch(ctx context.Context, t types.Target) (types.Result, error) {
	org := strings.TrimSpace(t.Token)
	if org == "" {
		return types.Result{}, types.Unavailable(s.Platform(), fmt.Errorf("empty organization name"))
	}
	apiURL := fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.BaseURL, "/"), url.PathEscape(org))

	var body boardResponse
	if err := util.DoJSON(ctx, s.hc, s.limiter, s.Platform(), util.JSONRequest{URL: apiURL}, &body); err != nil {
		return types.Result{}, err
	}

	scrapedAt := s.now().UTC()
	out := make([]domain.Job, 0, len(body.Jobs))
	for _, j := range body.Jobs {
		title := util.CleanText(j.Title)
		if j.ID == "" || title == "" {
			continue
		}
		if j.IsListed != nil && !*j.IsListed {
			continue
		}
		loc := util.NormalizeLocation(j.Location)
		if loc == "" {
			loc = "Remote"
		}

		out = append(out, domain.Job{
			ID:          "ashby-" + org + "-" + j.ID,
			CompanyID:   t.CompanyID,
			CompanyName: t.CompanyName,
			Title:       title,
			Location:    loc,
			Department:  util.CleanText(j.Department),
			URL:         util.CanonicalURL(util.FirstNonEmpty(j.JobPostingURL, j.JobURL)),
			PostedAt:    parsePublished(j.PublishedAt),
			ScrapedAt:   scrapedAt,
			Platform:    domain.PlatformAshby,
		})
	}
	return types.Result{Jobs: out}, nil
}

func parsePublished(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
