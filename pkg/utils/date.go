package utils

import (
	"time"
)

// ISOTimestampLayout matches JavaScript's Date.toISOString output.
const ISOTimestampLayout = "2006-01-02T15:04:05.000Z"

func FormatUnixMilli(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(ISOTimestampLayout)
}

func ParseTimestamp(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}

// SecondsToMillis converts a unix timestamp in seconds to milliseconds.
func SecondsToMillis(seconds int64) int64 {
	return seconds * 1000
}
