package ingest

import (
	"strconv"
	"strings"
	"time"
)

// textLayouts are tried in order for string timestamps. Values without an
// offset are taken as UTC.
var textLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02",
}

// ParseTimestamp reads a textual timestamp or integer unix seconds.
// Empty input yields the zero time and ok == false.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range textLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}

	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), true
	}

	return time.Time{}, false
}
