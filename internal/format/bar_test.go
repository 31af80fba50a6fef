package format

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func barBody(t *testing.T, bar string) string {
	t.Helper()
	if !strings.HasPrefix(bar, "[") || !strings.HasSuffix(bar, "]") {
		t.Fatalf("bar %q is not wrapped in brackets", bar)
	}
	return strings.TrimSuffix(strings.TrimPrefix(bar, "["), "]")
}

func TestProgressBar_Empty(t *testing.T) {
	want := "[" + strings.Repeat("✧", 13) + "]"
	if got := ProgressBar(0, 800); got != want {
		t.Errorf("ProgressBar(0, 800) = %q, want %q", got, want)
	}
}

func TestProgressBar_Full(t *testing.T) {
	want := "[" + strings.Repeat("✦", 13) + "]"
	if got := ProgressBar(800, 800); got != want {
		t.Errorf("ProgressBar(800, 800) = %q, want %q", got, want)
	}
}

func TestProgressBar_ZeroTotal(t *testing.T) {
	if got, want := ProgressBar(500, 0), ProgressBar(0, 800); got != want {
		t.Errorf("ProgressBar(500, 0) = %q, want %q", got, want)
	}
	if got := Percent(500, 0); got != 0 {
		t.Errorf("Percent(500, 0) = %d, want 0", got)
	}
}

func TestProgressBar_Overshoot(t *testing.T) {
	if got := Percent(1600, 800); got != 100 {
		t.Errorf("Percent(1600, 800) = %d, want 100", got)
	}
	if got := Percent(-10, 800); got != 0 {
		t.Errorf("Percent(-10, 800) = %d, want 0", got)
	}
}

func TestProgressBar_PartialGlyph(t *testing.T) {
	bar := Bar{
		Full:    "#",
		Empty:   ".",
		Partial: [7]string{"1", "2", "3", "4", "5", "6", "7"},
	}

	tests := []struct {
		name      string
		processed int64
		want      string
	}{
		{"exact slot", 8, "[#............]"},
		{"slot plus three eighths", 11, "[#3...........]"},
		{"ninety six", 96, "[############.]"},
		{"complete", 100, "[############4]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bar.Render(tt.processed, 100); got != tt.want {
				t.Errorf("Render(%d, 100) = %q, want %q", tt.processed, got, tt.want)
			}
		})
	}
}

func TestProgressBar_AlwaysThirteenSlots(t *testing.T) {
	if BarWidth != 13 {
		t.Fatalf("BarWidth = %d, want 13", BarWidth)
	}
	for p := int64(0); p <= 100; p++ {
		body := barBody(t, ProgressBar(p, 100))
		if n := utf8.RuneCountInString(body); n != 13 {
			t.Errorf("percent=%d: bar has %d slots, want 13", p, n)
		}
	}
}

func TestPercent_RoundsHalfToEven(t *testing.T) {
	// 1/40 of 100 is 2.5 percent.
	if got := Percent(1, 40); got != 2 {
		t.Errorf("Percent(1, 40) = %d, want 2", got)
	}
	// 7/200 is 3.5 percent.
	if got := Percent(7, 200); got != 4 {
		t.Errorf("Percent(7, 200) = %d, want 4", got)
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		processed, total int64
		want             string
	}{
		{10, 0, "0%"},
		{50, 100, "50.00%"},
		{1, 3, "33.33%"},
	}
	for _, tt := range tests {
		if got := Percentage(tt.processed, tt.total); got != tt.want {
			t.Errorf("Percentage(%d, %d) = %q, want %q", tt.processed, tt.total, got, tt.want)
		}
	}
}
