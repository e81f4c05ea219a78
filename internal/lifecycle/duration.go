package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/incident-service/internal/domain"
)

// Duration is a tagged elapsed-time value. Known is false when the incident
// has no occurred_at and the duration cannot be computed; the caller decides
// how to render the unknown variant (the dashboard shows "Calculating...").
type Duration struct {
	Minutes int
	Known   bool
}

// DurationOf computes the incident's current duration, live for active
// incidents and frozen at resolution for resolved ones.
func DurationOf(inc *domain.Incident, now time.Time) Duration {
	minutes, ok := ComputeDurationMinutes(inc.OccurredAt, inc.ResolvedAt, now)
	return Duration{Minutes: minutes, Known: ok}
}

// String renders a known duration as "{d}d {h}h {m}m" with zero-valued
// components omitted; an all-zero duration renders "0m". Unknown durations
// render empty so callers substitute their own placeholder.
func (d Duration) String() string {
	if !d.Known {
		return ""
	}
	return FormatMinutes(d.Minutes)
}

// FormatMinutes renders total minutes in the "{d}d {h}h {m}m" display form.
func FormatMinutes(totalMinutes int) string {
	if totalMinutes <= 0 {
		return "0m"
	}
	days := totalMinutes / (24 * 60)
	hours := (totalMinutes % (24 * 60)) / 60
	minutes := totalMinutes % 60

	parts := make([]string, 0, 3)
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if len(parts) == 0 {
		return "0m"
	}
	return strings.Join(parts, " ")
}
