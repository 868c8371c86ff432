package konan

import (
	"fmt"
	"time"
)

// naive layouts the API uses when it omits the offset
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTime parses an ISO-8601 timestamp. Timestamps without an offset are
// taken as UTC.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO-8601 timestamp %q", s)
}

// FormatTime renders t the way the API expects request timestamps.
func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
