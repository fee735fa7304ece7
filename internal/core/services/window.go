package services

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/pulse-brief/internal/core/domain"
)

// ComputeWindow returns the trailing window ending at now in loc.
func ComputeWindow(now time.Time, loc *time.Location, days int) domain.Window {
	if loc == nil {
		loc = time.UTC
	}
	end := now.In(loc)
	start := end.AddDate(0, 0, -days)
	return domain.Window{
		Start: start,
		End:   end,
		Label: WindowLabel(start, end),
	}
}

// WindowLabel formats a window as "Oct 31–Nov 07", or "Nov 01–07" within one month.
func WindowLabel(start, end time.Time) string {
	if start.Year() == end.Year() && start.Month() == end.Month() {
		return fmt.Sprintf("%s–%s", start.Format("Jan 02"), end.Format("02"))
	}
	return fmt.Sprintf("%s–%s", start.Format("Jan 02"), end.Format("Jan 02"))
}

// TruncateBytes cuts s to at most limit bytes without splitting a rune.
func TruncateBytes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
