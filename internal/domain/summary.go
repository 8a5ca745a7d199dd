package domain

import "time"

// ScrapeSummary describes one orchestrator run.
// CompaniesScraped counts successful adapter calls, CompaniesWithJobs the
// subset that returned at least one posting.
type ScrapeSummary struct {
	RunID              string       `json:"runId"`
	TotalJobs          int          `json:"totalJobs"`
	FilteredJobs       int          `json:"filteredJobs"`
	CompaniesAttempted int          `json:"companiesAttempted"`
	CompaniesScraped   int          `json:"companiesScraped"`
	CompaniesWithJobs  int          `json:"companiesWithJobs"`
	TierBreakdown      map[Tier]int `json:"tierBreakdown"`
	Errors             []string     `json:"errors"`
	Notes              []string     `json:"notes,omitempty"`
	ScrapedAt          time.Time    `json:"scrapedAt"`
	Duration           string       `json:"duration"`
}
