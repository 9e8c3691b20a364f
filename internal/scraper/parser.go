package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// "3 days ago", "Reposted 2 weeks ago", "1 hr ago"
	relativeRe = regexp.MustCompile(`(\d+)\s*\+?\s*(second|sec|minute|min|hour|hr|day|week|wk|month|mo|year|yr)s?\b`)

	isoDayRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

	todayWords     = []string{"just now", "today", "moments ago", "few seconds ago"}
	yesterdayWords = []string{"yesterday"}

	dayLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
		"Jan 2, 2006",
		"January 2, 2006",
	}
)

type DateParser struct{}

func NewDateParser() *DateParser {
	return &DateParser{}
}

// Parse resolves a posted-date value relative to ref and returns the calendar day
// (UTC, 00:00:00). It understands ISO datetime attributes, absolute English dates and
// relative phrases such as "Reposted 3 days ago".
func (dp *DateParser) Parse(dateStr string, ref time.Time) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}
	ref = ref.UTC()

	if isoDayRe.MatchString(dateStr) {
		for _, layout := range dayLayouts[:3] {
			if t, err := time.Parse(layout, dateStr); err == nil {
				return day(t), nil
			}
		}
	}

	lower := strings.ToLower(dateStr)
	lower = strings.TrimPrefix(lower, "reposted")
	lower = strings.TrimPrefix(lower, "posted")
	lower = strings.TrimSpace(lower)

	for _, w := range todayWords {
		if strings.Contains(lower, w) {
			return day(ref), nil
		}
	}
	for _, w := range yesterdayWords {
		if strings.Contains(lower, w) {
			return day(ref.AddDate(0, 0, -1)), nil
		}
	}

	if m := relativeRe.FindStringSubmatch(lower); len(m) > 0 {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid amount: %q: %w", m[1], err)
		}
		return day(subtract(ref, n, m[2])), nil
	}

	for _, layout := range dayLayouts[3:] {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return day(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// ISODay is Parse formatted as YYYY-MM-DD, or "" when the value is not understood.
func (dp *DateParser) ISODay(dateStr string, ref time.Time) string {
	t, err := dp.Parse(dateStr, ref)
	if err != nil {
		return ""
	}
	return t.Format(time.DateOnly)
}

func subtract(ref time.Time, n int, unit string) time.Time {
	switch unit {
	case "second", "sec":
		return ref.Add(-time.Duration(n) * time.Second)
	case "minute", "min":
		return ref.Add(-time.Duration(n) * time.Minute)
	case "hour", "hr":
		return ref.Add(-time.Duration(n) * time.Hour)
	case "day":
		return ref.AddDate(0, 0, -n)
	case "week", "wk":
		return ref.AddDate(0, 0, -7*n)
	case "month", "mo":
		return ref.AddDate(0, -n, 0)
	default:
		return ref.AddDate(-n, 0, 0)
	}
}

func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
