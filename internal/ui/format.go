package ui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatTokens renders counts as 999, 1.5K or 2.3M.
func FormatTokens(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return humanize.Comma(n)
	}
}

func FormatCost(usd float64) string {
	return fmt.Sprintf("$%.4f", usd)
}

// FormatDuration renders whole seconds as "42s" or "3m 7s".
func FormatDuration(d time.Duration) string {
	secs := int64(d / time.Second)
	if mins := secs / 60; mins > 0 {
		return fmt.Sprintf("%dm %ds", mins, secs%60)
	}
	return fmt.Sprintf("%ds", secs)
}

// FormatAge renders a unix-ms timestamp relative to now.
func FormatAge(ms int64, now time.Time) string {
	then := time.UnixMilli(ms)
	if now.Sub(then) < time.Second {
		return "now"
	}
	return humanize.RelTime(then, now, "ago", "from now")
}

// FormatClock renders a unix-ms timestamp as local wall time.
func FormatClock(ms int64) string {
	return time.UnixMilli(ms).Format("15:04:05")
}
