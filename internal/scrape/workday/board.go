package workday

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

type board struct {
	Scheme string
	Host   string
	Tenant string
	Site   string
	Locale string
}

// parseBoardURL accepts a full board URL or a scheme-less "host/site" token,
// e.g. "salesforce.wd12.myworkdayjobs.com/en-US/External_Career_Site".
func parseBoardURL(raw string) (board, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return board{}, errors.New("empty board url")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return board{}, err
	}
	if u.Host == "" {
		return board{}, fmt.Errorf("missing host in %q", raw)
	}

	parts := strings.Split(u.Hostname(), ".")
	if len(parts) < 3 {
		return board{}, fmt.Errorf("unexpected host %q", u.Host)
	}

	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segs) == 0 || segs[0] == "" {
		return board{}, fmt.Errorf("board url %q has no site path", raw)
	}

	locale := ""
	if len(segs) >= 2 && looksLikeLocale(segs[0]) {
		locale = normalizeLocale(segs[0])
		segs = segs[1:]
	}

	return board{
		Scheme: u.Scheme,
		Host:   u.Host,
		Tenant: parts[0],
		Site:   segs[len(segs)-1],
		Locale: locale,
	}, nil
}

func looksLikeLocale(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 5 || s[2] != '-' {
		return false
	}
	return isAlpha(s[0:2]) && isAlpha(s[3:5])
}

func normalizeLocale(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == 5 && s[2] == '-' {
		return strings.ToLower(s[0:2]) + "-" + strings.ToUpper(s[3:5])
	}
	return s
}

func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
			return false
		}
	}
	return true
}

func (b board) origin() string { return fmt.Sprintf("%s://%s", b.Scheme, b.Host) }

// pageURL is the human-facing board page.
func (b board) pageURL() string {
	if b.Locale == "" {
		return fmt.Sprintf("%s/%s", b.origin(), b.Site)
	}
	return fmt.Sprintf("%s/%s/%s", b.origin(), b.Locale, b.Site)
}

func (b board) jobsEndpoint() string {
	base := fmt.Sprintf("%s/wday/cxs/%s/%s/jobs", b.origin(), b.Tenant, b.Site)
	if b.Locale == "" {
		return base
	}
	return base + "?locale=" + url.QueryEscape(b.Locale)
}

func (b board) absoluteJobURL(p wdPosting) string {
	if p.ExternalURL != "" {
		return strings.TrimSpace(p.ExternalURL)
	}
	path := strings.TrimSpace(p.ExternalPath)
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	// externalPath is relative to the board page, e.g. /job/Austin/SWE_R123
	return b.pageURL() + path
}
