package helper_util

import "time"

// ParseTime parses an RFC3339 timestamp, as used by the audit query
// from/to parameters.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
