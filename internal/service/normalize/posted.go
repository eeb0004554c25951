package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

// maxRelativeAge bounds "N units ago" phrases; larger ages are not parsed.
const maxRelativeAge = 100 * 365 * day

var relativeAgoRe = regexp.MustCompile(`(?i)(\d+)\+?\s*(hour|hr|day|week|month)s?\s+ago`)

var absoluteLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParsePosted resolves a posting-date phrase against now. Relative phrases
// ("3 days ago", "today", "yesterday") and absolute ISO dates are understood;
// anything else yields nil.
func ParsePosted(phrase string, now time.Time) *time.Time {
	s := strings.ToLower(strings.TrimSpace(phrase))
	if s == "" {
		return nil
	}
	if m := relativeAgoRe.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			var unit time.Duration
			switch m[2] {
			case "hour", "hr":
				unit = time.Hour
			case "day":
				unit = day
			case "week":
				unit = 7 * day
			case "month":
				unit = 30 * day
			}
			if n <= int(maxRelativeAge/unit) {
				t := now.Add(-time.Duration(n) * unit)
				return &t
			}
		}
	}
	switch {
	case strings.Contains(s, "just now"), strings.Contains(s, "today"):
		t := now
		return &t
	case strings.Contains(s, "yesterday"):
		t := now.Add(-day)
		return &t
	}
	raw := strings.TrimSpace(phrase)
	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
