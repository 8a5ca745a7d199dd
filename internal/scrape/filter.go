package scrape

import (
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"

	"jobtier-engine/internal/domain"
)

// DefaultTargetRoles apply when no target roles are configured.
var DefaultTargetRoles = []string{
	"software engineer", "software developer", "engineer", "developer", "sde", "swe",
	"backend", "systems engineer", "infrastructure", "platform engineer",
	"cloud engineer", "cloud architect", "solutions architect",
	"devops", "sre", "site reliability", "devsecops",
	"machine learning", "ml engineer", "ai engineer", "data scientist", "data engineer", "genai",
	"full stack", "fullstack", "frontend", "front end",
	"golang", "python", "typescript", "node.js",
	"aws", "gcp", "azure", "terraform", "kubernetes",
}

// DefaultExcludedKeywords apply when no exclusions are configured.
// "hr " keeps its trailing space so it does not match inside "three".
var DefaultExcludedKeywords = []string{
	"senior director", "director", "vp", "vice president", "chief", "head of",
	"cto", "cio", "recruiter", "hr ", "sales", "marketing", "customer success",
}

// ParseList splits a comma-separated config value into lower-cased,
// trimmed, non-empty terms.
func ParseList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// KeywordFilter keeps jobs whose lower-cased title contains at least one
// target role and none of the excluded keywords. Matching is plain substring.
type KeywordFilter struct {
	roles    []string
	excluded []string

	// ahocorasick.Matcher mutates internal counters on Match
	mu        sync.Mutex
	roleM     *ahocorasick.Matcher
	excludedM *ahocorasick.Matcher
}

// NewKeywordFilter builds a filter; nil/empty lists fall back to the defaults.
func NewKeywordFilter(roles, excluded []string) *KeywordFilter {
	roles = normalizeTerms(roles)
	if len(roles) == 0 {
		roles = normalizeTerms(DefaultTargetRoles)
	}
	excluded = normalizeTerms(excluded)
	if len(excluded) == 0 {
		excluded = normalizeTerms(DefaultExcludedKeywords)
	}

	f := &KeywordFilter{roles: roles, excluded: excluded}
	f.roleM = ahocorasick.NewStringMatcher(roles)
	if len(excluded) > 0 {
		f.excludedM = ahocorasick.NewStringMatcher(excluded)
	}
	return f
}

func (f *KeywordFilter) Roles() []string    { return append([]string(nil), f.roles...) }
func (f *KeywordFilter) Excluded() []string { return append([]string(nil), f.excluded...) }

// Keep reports whether a job title passes the filter.
func (f *KeywordFilter) Keep(title string) bool {
	t := []byte(strings.ToLower(title))

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.roleM.Match(t)) == 0 {
		return false
	}
	return f.excludedM == nil || len(f.excludedM.Match(t)) == 0
}

// Apply returns the jobs that pass, preserving order.
func (f *KeywordFilter) Apply(jobs []domain.Job) []domain.Job {
	out := make([]domain.Job, 0, len(jobs))
	for _, j := range jobs {
		if f.Keep(j.Title) {
			out = append(out, j)
		}
	}
	return out
}

// FilterJobs is the one-shot form of KeywordFilter.Apply.
func FilterJobs(jobs []domain.Job, roles, excluded []string) []domain.Job {
	return NewKeywordFilter(roles, excluded).Apply(jobs)
}

// normalizeTerms lower-cases and dedupes terms. Inner and trailing
// whitespace is significant and kept.
func normalizeTerms(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if strings.TrimSpace(s) == "" {
			continue
		}
		s = strings.ToLower(s)
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
