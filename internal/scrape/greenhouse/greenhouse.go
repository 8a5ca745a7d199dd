package greenhouse

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jobtier-engine/internal/domain"
	"jobtier-engine/internal/scrape/types"
	"jobtier-engine/internal/scrape/util"
)

const DefaultBaseURL = "https://boards-api.greenhouse.io/v1/boards"

type Config struct {
	BaseURL string // override for tests
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

func (s *Scraper) Platform() domain.Platform { return domain.PlatformGreenhouse }

type ghResponse struct {
	Jobs []ghJob `json:"jobs"`
}

type ghJob struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Location struct {
		Name string `json:"name"`
	} `json:"location"`
	Departments []struct {
		Name string `json:"name"`
	} `json:"departments"`
	AbsoluteURL string `json:"absolute_url"`
	UpdatedAt   string `json:"updated_at"`
}

func (s *Scraper) Fetch(ctx context.Context, t types.Target) (types.Result, error) {
	token := strings.TrimSpace(t.Token)
	if token == "" {
		return types.Result{}, types.Unavailable(s.Platform(), fmt.Errorf("empty board token"))
	}
	apiURL := fmt.Sprintf("%s/%s/jobs", strings.TrimRight(s.cfg.BaseURL, "/"), url.PathEscape(token))

	var body ghResponse
	if err := util.DoJSON(ctx, s.hc, s.limiter, s.Platform(), util.JSONRequest{URL: apiURL}, &body); err != nil {
		return types.Result{}, err
	}

	scrapedAt := s.now().UTC()
	out := make([]domain.Job, 0, len(body.Jobs))
	for _, j := range body.Jobs {
		title := util.CleanText(j.Title)
		if title == "" {
			continue
		}
		loc := util.NormalizeLocation(j.Location.Name)
		if loc == "" {
			loc = "Remote"
		}
		var dept string
		if len(j.Departments) > 0 {
			dept = util.CleanText(j.Departments[0].Name)
		}

		out = append(out, domain.Job{
			ID:          "gh-" + token + "-" + strconv.FormatInt(j.ID, 10),
			CompanyID:   t.CompanyID,
			CompanyName: t.CompanyName,
			Title:       title,
			Location:    loc,
			Department:  dept,
			URL:         util.CanonicalURL(j.AbsoluteURL),
			PostedAt:    parseTime(j.UpdatedAt),
			ScrapedAt:   scrapedAt,
			Platform:    domain.PlatformGreenhouse,
		})
	}
	return types.Result{Jobs: out}, nil
}

func parseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}
