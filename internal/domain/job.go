package domain

import (
	"fmt"
	"strings"
	"time"
)

// Platform is the applicant-tracking system a company posts its jobs on.
type Platform string

const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformAshby      Platform = "ashby"
	PlatformWorkday    Platform = "workday"
	PlatformCustom     Platform = "custom"
)

// Platforms lists every scrapeable platform in roster order.
var Platforms = []Platform{PlatformGreenhouse, PlatformLever, PlatformAshby, PlatformWorkday}

func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(strings.ToLower(strings.TrimSpace(s))); p {
	case PlatformGreenhouse, PlatformLever, PlatformAshby, PlatformWorkday, PlatformCustom:
		return p, nil
	default:
		return "", fmt.Errorf("unknown platform %q", s)
	}
}

// Job is a single posting returned by a source adapter.
// ID is namespaced by platform and board token so it is unique across sources.
type Job struct {
	ID          string     `json:"id"`
	CompanyID   string     `json:"companyId"`
	CompanyName string     `json:"companyName"`
	Title       string     `json:"title"`
	Location    string     `json:"location"`
	Department  string     `json:"department,omitempty"`
	URL         string     `json:"url"`
	PostedAt    *time.Time `json:"postedAt,omitempty"`
	ScrapedAt   time.Time  `json:"scrapedAt"`
	Platform    Platform   `json:"platform"`
}

// JobsData is the persisted job batch.
type JobsData struct {
	LastScraped *time.Time `json:"lastScraped"`
	TotalJobs   int        `json:"totalJobs"`
	Jobs        []Job      `json:"jobs"`
}
