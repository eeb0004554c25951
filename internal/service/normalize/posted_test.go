package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePosted(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		in   string
		want *time.Time
	}{
		{"hours", "5 hours ago", ptrTime(now.Add(-5 * time.Hour))},
		{"one day", "1 day ago", ptrTime(now.Add(-24 * time.Hour))},
		{"weeks", "2 weeks ago", ptrTime(now.Add(-14 * 24 * time.Hour))},
		{"months are 30 days", "3 months ago", ptrTime(now.Add(-90 * 24 * time.Hour))},
		{"plus suffix", "30+ days ago", ptrTime(now.Add(-30 * 24 * time.Hour))},
		{"case insensitive", "Posted 4 Days Ago", ptrTime(now.Add(-96 * time.Hour))},
		{"today", "today", ptrTime(now)},
		{"just now", "Just now", ptrTime(now)},
		{"yesterday", "yesterday", ptrTime(now.Add(-24 * time.Hour))},
		{"iso date", "2024-05-01", ptrTime(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))},
		{"rfc3339", "2024-05-01T10:00:00-04:00", ptrTime(time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC))},
		{"unknown", "a while back", nil},
		{"age beyond a century", "99999999999 days ago", nil},
		{"digits overflow int", "99999999999999999999999 hours ago", nil},
		{"a century of months", "1200 months ago", ptrTime(now.Add(-1200 * 30 * 24 * time.Hour))},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePosted(tt.in, now)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "want %v got %v", tt.want, got)
		})
	}
}

func ptrTime(t time.Time) *time.Time { return &t }
