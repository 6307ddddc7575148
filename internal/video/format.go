package video

import (
	"fmt"
	"math"
	"time"
)

func plural(n int, unit string) string {
	if n > 1 {
		return fmt.Sprintf("%d %ss", n, unit)
	}
	return fmt.Sprintf("%d %s", n, unit)
}

// TimeAgo renders the age of created relative to now, e.g. "5 Min" or
// "2 Weeks". Months are 30 days and years 365.
func TimeAgo(now, created time.Time) string {
	d := now.Sub(created)
	minutes := int(d / time.Minute)
	hours := int(d / time.Hour)
	days := hours / 24

	switch {
	case minutes < 1:
		return "Just now"
	case minutes < 60:
		return fmt.Sprintf("%d Min", minutes)
	case hours < 24:
		return plural(hours, "Hour")
	case days < 7:
		return plural(days, "Day")
	case days/7 < 4:
		return plural(days/7, "Week")
	case days/30 < 12:
		return plural(days/30, "Month")
	default:
		return plural(days/365, "Year")
	}
}

// FormatDuration renders seconds as "45 sec", "2 min" or "2:05 min".
func FormatDuration(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%d sec", int(math.Round(seconds)))
	}
	minutes := int(seconds / 60)
	rest := int(math.Round(math.Mod(seconds, 60)))
	if rest == 60 {
		minutes, rest = minutes+1, 0
	}
	if rest == 0 {
		return fmt.Sprintf("%d min", minutes)
	}
	return fmt.Sprintf("%d:%02d min", minutes, rest)
}
