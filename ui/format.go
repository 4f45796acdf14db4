package ui

import (
	"fmt"
	"strings"
	"time"
)

const (
	barFull  = '█'
	barEmpty = '░'
)

// ProgressBar renders progress (0..1) as a fixed-width bar
func ProgressBar(progress float64, width int) string {
	if width <= 0 {
		return ""
	}
	if progress < 0 {
		progress = 0
	} else if progress > 1 {
		progress = 1
	}

	filled := int(progress*float64(width) + 0.5)
	return strings.Repeat(string(barFull), filled) + strings.Repeat(string(barEmpty), width-filled)
}

// FormatPercent renders progress (0..1) with two decimals, e.g. "0.03%"
func FormatPercent(progress float64) string {
	return fmt.Sprintf("%.2f%%", progress*100)
}

// FormatCountdown renders the time until t relative to now as m:ss, or "-" when t is zero
func FormatCountdown(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := t.Sub(now)
	if d < 0 {
		d = 0
	}
	secs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
