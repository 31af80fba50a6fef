package format

import (
	"strconv"
	"strings"
	"time"
)

// ReadableTime renders seconds as a compact duration such as "1d2h3m4s".
// Zero days, hours and minutes are omitted; seconds are always present.
func ReadableTime(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}

	var sb strings.Builder
	days, rem := seconds/86400, seconds%86400
	hours, rem := rem/3600, rem%3600
	minutes, secs := rem/60, rem%60

	if days != 0 {
		sb.WriteString(strconv.FormatInt(days, 10) + "d")
	}
	if hours != 0 {
		sb.WriteString(strconv.FormatInt(hours, 10) + "h")
	}
	if minutes != 0 {
		sb.WriteString(strconv.FormatInt(minutes, 10) + "m")
	}
	sb.WriteString(strconv.FormatInt(secs, 10) + "s")
	return sb.String()
}

// ReadableDuration truncates d to whole seconds and formats it like ReadableTime.
func ReadableDuration(d time.Duration) string {
	return ReadableTime(int64(d / time.Second))
}

// ETA estimates the remaining time of a transfer. Unknown estimates render as "-".
func ETA(remaining, bytesPerSecond int64) string {
	if bytesPerSecond <= 0 || remaining < 0 {
		return "-"
	}
	return ReadableTime(remaining / bytesPerSecond)
}
