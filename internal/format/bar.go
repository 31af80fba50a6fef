package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/mirrorbot/mirrorbot/internal/mirror"
)

// BarWidth is the number of glyph slots in a progress bar. Twelve slots of
// eight percent leave a thirteenth for the partial glyph at 100%.
const BarWidth = 13

// Bar holds the glyphs used to draw a progress bar. Each slot covers eight
// percent; Partial is indexed by the remaining sub-step minus one.
type Bar struct {
	Full    string
	Empty   string
	Partial [7]string
}

// DefaultBar is the glyph set used by ProgressBar.
var DefaultBar = Bar{
	Full:    "✦",
	Empty:   "✧",
	Partial: [7]string{"✦", "✦", "✦", "✦", "✦", "✦", "✦"},
}

// Percent returns the completion of processed/total as an integer in [0, 100].
// Both values are taken in eighths, matching the bar quantization.
func Percent(processed, total int64) int {
	completed := float64(processed) / 8
	size := float64(total) / 8
	if size == 0 {
		return 0
	}
	p := int(math.RoundToEven(completed * 100 / size))
	return min(max(p, 0), 100)
}

// Percentage renders the exact completion of processed/total, e.g. "42.17%".
func Percentage(processed, total int64) string {
	if total <= 0 {
		return "0%"
	}
	return fmt.Sprintf("%.2f%%", float64(processed)*100/float64(total))
}

// Render draws the bar for processed out of total, wrapped in brackets.
func (b Bar) Render(processed, total int64) string {
	p := Percent(processed, total)
	full := p / 8
	part := p%8 - 1

	var sb strings.Builder
	sb.WriteString("[")
	sb.WriteString(strings.Repeat(b.Full, full))
	empty := BarWidth - full
	if part >= 0 && empty > 0 {
		sb.WriteString(b.Partial[part])
		empty--
	}
	sb.WriteString(strings.Repeat(b.Empty, empty))
	sb.WriteString("]")
	return sb.String()
}

// ProgressBar draws processed out of total with DefaultBar.
func ProgressBar(processed, total int64) string {
	return DefaultBar.Render(processed, total)
}

// HandleBar draws the progress bar for a task.
func HandleBar(h mirror.Handle) string {
	return ProgressBar(h.ProcessedBytes(), h.SizeRaw())
}
