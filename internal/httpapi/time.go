package httpapi

import (
	"strconv"
	"time"
)

// isoLayouts are tried in order when parsing a from/to query parameter.
// Both the naive form (no trailing Z) and the standard RFC3339 form
// (with Z or an offset) are accepted and normalized to UTC, since
// clients log timestamps both ways.
var isoLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
}

// parseTimeParam parses a from/to query value into Unix nanoseconds. A
// bare integer is accepted as Unix seconds, the common case for a script
// querying a specific range by epoch time.
func parseTimeParam(s string) (int64, bool) {
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return secs * 1_000_000_000, true
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().UnixNano(), true
		}
	}
	return 0, false
}

// formatNaiveUTC renders a Unix-nanosecond instant as a naive ISO-8601
// timestamp for /api/list: UTC, no trailing "Z".
func formatNaiveUTC(unixNs int64) string {
	return time.Unix(0, unixNs).UTC().Format("2006-01-02T15:04:05")
}
