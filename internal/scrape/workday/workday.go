package workday

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobtier-engine/internal/domain"
	"jobtier-engine/internal/scrape/types"
	"jobtier-engine/internal/scrape/util"
)

const (
	pageSize        = 20
	defaultMaxPages = 10

	// blockTTL bounds how long a tenant stays on the board-page fallback
	// before the CXS API is tried again.
	blockTTL = time.Hour
)

// ErrBlocked means the tenant refuses API access without a real browser.
var ErrBlocked = errors.New("workday blocked api access")

type Config struct {
	Timeout  time.Duration
	MaxPages int
}

type Scraper struct {
	cfg     Config
	limiter *util.HostLimiter
	now     func() time.Time

	mu          sync.Mutex
	blockedHost map[string]time.Time
}

func New(cfg Config, limiter *util.HostLimiter) *Scraper {
	if cfg.Timeout <= 0 {
		cfg.Timeout = util.DefaultTimeout
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = defaultMaxPages
	}
	return &Scraper{
		cfg:         cfg,
		limiter:     limiter,
		now:         time.Now,
		blockedHost: map[string]time.Time{},
	}
}

func (s *Scraper) Platform() domain.Platform { return domain.PlatformWorkday }

type wdRequest struct {
	AppliedFacets map[string]any `json:"appliedFacets"`
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
	SearchText    string         `json:"searchText"`
}

type wdResponse struct {
	Total       int         `json:"total"`
	JobPostings []wdPosting `json:"jobPostings"`
}

type wdPosting struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	ExternalPath  string   `json:"externalPath"`
	ExternalURL   string   `json:"externalUrl"`
	LocationsText string   `json:"locationsText"`
	Location      string   `json:"location"`
	PostedOn      string   `json:"postedOn"`
	PostedOnDate  string   `json:"postedOnDate"`
	JobReqID      string   `json:"jobRequisitionId"`
	BulletFields  []string `json:"bulletFields"`
}

func (s *Scraper) newClient() *http.Client {
	jar, _ := cookiejar.New(nil)
	return &http.Client{Jar: jar, Timeout: s.cfg.Timeout}
}

func (s *Scraper) isBlocked(host string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.blockedHost[host]
	if !ok {
		return false
	}
	if !s.now().Before(until) {
		delete(s.blockedHost, host)
		return false
	}
	return true
}

func (s *Scraper) markBlocked(host string) {
	s.mu.Lock()
	s.blockedHost[host] = s.now().Add(blockTTL)
	s.mu.Unlock()
}

// Fetch pages through the CXS search endpoint. When the tenant blocks API
// access the board page is checked instead and the result carries a note and
// no jobs.
func (s *Scraper) Fetch(ctx context.Context, t types.Target) (types.Result, error) {
	b, err := parseBoardURL(t.Token)
	if err != nil {
		return types.Result{}, types.Unavailable(s.Platform(), err)
	}
	hc := s.newClient()

	if s.isBlocked(b.Host) {
		return s.boardNote(ctx, hc, b)
	}

	csrf, bootErr := bootstrapSession(ctx, hc, s.limiter, b.pageURL())
	if errors.Is(bootErr, ErrBlocked) {
		s.markBlocked(b.Host)
		return s.boardNote(ctx, hc, b)
	}

	headers := map[string]string{
		"Origin":          b.origin(),
		"Referer":         b.pageURL(),
		"Accept-Language": util.FirstNonEmpty(b.Locale, "en-US"),
	}
	if csrf != "" {
		headers["x-calypso-csrf-token"] = csrf
	}

	scrapedAt := s.now().UTC()
	var out []domain.Job
	for page := 0; page < s.cfg.MaxPages; page++ {
		var jr wdResponse
		err := util.DoJSON(ctx, hc, s.limiter, s.Platform(), util.JSONRequest{
			Method: http.MethodPost,
			URL:    b.jobsEndpoint(),
			Body: wdRequest{
				AppliedFacets: map[string]any{},
				Limit:         pageSize,
				Offset:        page * pageSize,
			},
			Headers: headers,
		}, &jr)
		if err != nil {
			var se *types.SourceError
			if errors.As(err, &se) && blockedStatus(se.Status) {
				s.markBlocked(b.Host)
				return s.boardNote(ctx, hc, b)
			}
			return types.Result{}, err
		}

		for _, p := range jr.JobPostings {
			if j, ok := s.toJob(b, t, p, scrapedAt); ok {
				out = append(out, j)
			}
		}

		if len(jr.JobPostings) < pageSize {
			break
		}
		if jr.Total > 0 && (page+1)*pageSize >= jr.Total {
			break
		}
	}
	return types.Result{Jobs: out}, nil
}

func (s *Scraper) toJob(b board, t types.Target, p wdPosting, scrapedAt time.Time) (domain.Job, bool) {
	title := util.CleanText(p.Title)
	jobURL := b.absoluteJobURL(p)
	if title == "" || jobURL == "" {
		return domain.Job{}, false
	}

	reqID := strings.TrimSpace(util.FirstNonEmpty(p.JobReqID, p.ID))
	if reqID == "" && len(p.BulletFields) > 0 {
		reqID = strings.TrimSpace(p.BulletFields[0])
	}
	if reqID == "" {
		reqID = util.HashString("url:" + jobURL)
	}

	loc := util.NormalizeLocation(util.FirstNonEmpty(p.LocationsText, p.Location))
	if loc == "" {
		loc = "Remote"
	}

	return domain.Job{
		ID:          fmt.Sprintf("workday-%s-%s-%s", b.Tenant, b.Site, reqID),
		CompanyID:   t.CompanyID,
		CompanyName: t.CompanyName,
		Title:       title,
		Location:    loc,
		URL:         util.CanonicalURL(jobURL),
		PostedAt:    parsePostedAt(p.PostedOnDate, p.PostedOn, scrapedAt),
		ScrapedAt:   scrapedAt,
		Platform:    domain.PlatformWorkday,
	}, true
}

// boardNote confirms the board page exists so the caller gets a useful note
// rather than an error when only the API is closed off.
func (s *Scraper) boardNote(ctx context.Context, hc *http.Client, b board) (types.Result, error) {
	pageURL := b.pageURL()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return types.Result{}, types.Unavailable(s.Platform(), err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	if err := s.limiter.WaitURL(ctx, pageURL); err != nil {
		return types.Result{}, types.Unavailable(s.Platform(), err)
	}
	res, err := hc.Do(req)
	if err != nil {
		return types.Result{}, types.Unavailable(s.Platform(), err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return types.Result{}, types.Unavailable(s.Platform(),
			fmt.Errorf("%w: board page status %d", ErrBlocked, res.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(res.Body, 2<<20))
	if err != nil {
		return types.Result{}, types.ParseFailure(s.Platform(), err)
	}
	title := util.CleanText(doc.Find("title").First().Text())
	if title == "" {
		title = b.Tenant
	}
	return types.Result{
		Note: fmt.Sprintf("workday board %q (%s) is reachable; full parsing requires browser automation", title, pageURL),
	}, nil
}

func blockedStatus(code int) bool {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusUnprocessableEntity:
		return true
	}
	return false
}

// bootstrapSession loads the board page so the jar picks up
// CALYPSO_CSRF_TOKEN; some tenants reject the CXS call without it.
// A missing cookie is not fatal.
func bootstrapSession(ctx context.Context, hc *http.Client, lim *util.HostLimiter, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US")

	if err := lim.WaitURL(ctx, pageURL); err != nil {
		return "", err
	}
	resp, err := hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	preview, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_, _ = io.Copy(io.Discard, resp.Body)

	if looksLikeCloudflareBlock(resp, string(preview)) {
		return "", ErrBlocked
	}

	u, _ := url.Parse(pageURL)
	for _, c := range hc.Jar.Cookies(u) {
		if c.Name == "CALYPSO_CSRF_TOKEN" && c.Value != "" {
			return c.Value, nil
		}
	}
	return "", nil
}

func looksLikeCloudflareBlock(resp *http.Response, bodyPreview string) bool {
	server := strings.ToLower(resp.Header.Get("Server"))
	if strings.Contains(server, "cloudflare") && resp.Header.Get("CF-RAY") != "" && resp.StatusCode >= 400 {
		return true
	}

	low := strings.ToLower(bodyPreview)
	if strings.Contains(low, "/cdn-cgi/challenge") ||
		(strings.Contains(low, "cloudflare") && strings.Contains(low, "checking your browser")) ||
		(strings.Contains(low, "attention required") && strings.Contains(low, "cloudflare")) {
		return true
	}

	return resp.StatusCode == http.StatusForbidden
}
