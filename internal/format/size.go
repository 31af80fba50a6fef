package format

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// TooLarge is returned for sizes beyond the largest unit.
const TooLarge = "File too large"

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// Size formats a byte count using binary units. Byte counts below 1024 stay
// integral ("1023B"); larger values are rounded to two decimals and keep at
// least one ("1.0KB", "1.5KB", "1.33MB").
func Size(bytes int64) string {
	value := float64(bytes)
	index := 0
	for value >= 1024 {
		value /= 1024
		index++
	}
	if index >= len(sizeUnits) {
		return TooLarge
	}
	if index == 0 {
		return strconv.FormatInt(bytes, 10) + sizeUnits[0]
	}
	num := humanize.FtoaWithDigits(math.Round(value*100)/100, 2)
	if !strings.Contains(num, ".") {
		num += ".0"
	}
	return num + sizeUnits[index]
}

// ReadableSize is Size for an optional byte count; nil renders as "0B".
func ReadableSize(bytes *int64) string {
	if bytes == nil {
		return "0B"
	}
	return Size(*bytes)
}

// Speed formats a transfer rate in bytes per second.
func Speed(bytesPerSecond int64) string {
	return Size(bytesPerSecond) + "/s"
}
