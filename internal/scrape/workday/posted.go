package workday

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var daysAgoRe = regexp.MustCompile(`(\d+)\+?\s+days?\s+ago`)

// parsePostedAt understands absolute dates (postedOnDate) and Workday's
// relative "Posted 3 Days Ago" text. "30+ Days Ago" maps to 30 days.
func parsePostedAt(abs, rel string, now time.Time) *time.Time {
	if t := parseAbsolute(abs); t != nil {
		return t
	}

	low := strings.ToLower(strings.TrimSpace(rel))
	if low == "" {
		return nil
	}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch {
	case strings.Contains(low, "today"):
		return &day
	case strings.Contains(low, "yesterday"):
		t := day.AddDate(0, 0, -1)
		return &t
	}
	if m := daysAgoRe.FindStringSubmatch(low); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			t := day.AddDate(0, 0, -n)
			return &t
		}
	}
	return nil
}

func parseAbsolute(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return &t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		var t time.Time
		if n >= 1_000_000_000_000 {
			t = time.UnixMilli(n).UTC()
		} else {
			t = time.Unix(n, 0).UTC()
		}
		return &t
	}
	return nil
}
