package diagnostics

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// testDateLayouts are tried in order. Layouts without a zone are read in
// the server's local time.
var testDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	dateLayout,
}

func parseTestDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now, nil
	}
	for _, layout := range testDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, invalid("Invalid testDate format")
}

// ParseDateWindow builds a window only when both bounds are given.
func ParseDateWindow(start, end string) (*DateWindow, error) {
	if start == "" || end == "" {
		return nil, nil
	}
	from, err := time.Parse(dateLayout, start)
	if err != nil {
		return nil, invalid("Invalid start date, expected YYYY-MM-DD")
	}
	to, err := time.Parse(dateLayout, end)
	if err != nil {
		return nil, invalid("Invalid end date, expected YYYY-MM-DD")
	}
	return &DateWindow{From: from, To: to}, nil
}
