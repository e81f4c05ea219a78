// Package analytics computes the dashboard and report aggregates: MTTR,
// trend series, distributions, peaks and the per-network health score. All
// functions are pure over (records, now, window) and tolerate partially
// missing fields by excluding the affected record from the aggregate.
package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/spec-kit/incident-service/internal/domain"
)

// MTTRResult is the mean-time-to-resolution aggregate. HasData is false when
// the window holds no resolved records; Format then renders the N/A sentinel.
type MTTRResult struct {
	Minutes float64
	HasData bool
}

// MTTR averages duration_minutes over resolved records whose resolved_at is
// at or after since. Records without a computed duration are excluded.
func MTTR(records []domain.Incident, since time.Time) MTTRResult {
	var sum, count int
	for i := range records {
		r := &records[i]
		if r.ResolvedAt == nil || r.ResolvedAt.Before(since) || r.DurationMinutes == nil {
			continue
		}
		sum += *r.DurationMinutes
		count++
	}
	if count == 0 {
		return MTTRResult{}
	}
	return MTTRResult{Minutes: float64(sum) / float64(count), HasData: true}
}

// Format renders the MTTR tiered by magnitude: "{d}d{h}h" for a day or more,
// "{h}h{m}m" for an hour or more, else "{m}m"; "N/A" without data.
func (m MTTRResult) Format() string {
	if !m.HasData {
		return "N/A"
	}
	total := int(m.Minutes)
	switch {
	case total >= 24*60:
		return fmt.Sprintf("%dd%dh", total/(24*60), (total%(24*60))/60)
	case total >= 60:
		return fmt.Sprintf("%dh%dm", total/60, total%60)
	default:
		return fmt.Sprintf("%dm", total)
	}
}

// DayCount is one calendar-day bucket of a trend series.
type DayCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// DailyTrend buckets incidents by the calendar day of occurred_at in loc,
// over days consecutive days ending today. Every day appears, zero-filled;
// the series length is always days.
func DailyTrend(records []domain.Incident, days int, now time.Time, loc *time.Location) []DayCount {
	if days <= 0 {
		return []DayCount{}
	}
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	start := today.AddDate(0, 0, -(days - 1))

	series := make([]DayCount, days)
	index := make(map[time.Time]int, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		series[i] = DayCount{Date: day}
		index[day] = i
	}
	for i := range records {
		occurred := records[i].OccurredAt
		if occurred.IsZero() {
			continue
		}
		o := occurred.In(loc)
		day := time.Date(o.Year(), o.Month(), o.Day(), 0, 0, 0, 0, loc)
		if idx, ok := index[day]; ok {
			series[idx].Count++
		}
	}
	return series
}

// HourlyDistribution counts incidents by hour-of-day of occurred_at over the
// trailing days-day window. All 24 buckets are always present.
func HourlyDistribution(records []domain.Incident, days int, now time.Time, loc *time.Location) [24]int {
	var buckets [24]int
	if loc == nil {
		loc = time.UTC
	}
	cutoff := now.AddDate(0, 0, -days)
	for i := range records {
		occurred := records[i].OccurredAt
		if occurred.IsZero() || occurred.Before(cutoff) || occurred.After(now) {
			continue
		}
		buckets[occurred.In(loc).Hour()]++
	}
	return buckets
}

// DayOfWeekDistribution counts incidents by weekday of occurred_at over the
// trailing window, Monday first. All 7 buckets are always present.
func DayOfWeekDistribution(records []domain.Incident, days int, now time.Time, loc *time.Location) [7]int {
	var buckets [7]int
	if loc == nil {
		loc = time.UTC
	}
	cutoff := now.AddDate(0, 0, -days)
	for i := range records {
		occurred := records[i].OccurredAt
		if occurred.IsZero() || occurred.Before(cutoff) || occurred.After(now) {
			continue
		}
		buckets[mondayIndex(occurred.In(loc).Weekday())]++
	}
	return buckets
}

func mondayIndex(w time.Weekday) int {
	// time.Weekday is Sunday-first; reports are Monday-first.
	return (int(w) + 6) % 7
}

// WeekdayName returns the Monday-first weekday label for a bucket index.
func WeekdayName(idx int) string {
	names := [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	if idx < 0 || idx > 6 {
		return ""
	}
	return names[idx]
}

// resolutionBucketBounds are the fixed histogram lower bounds in minutes; the
// final bucket is unbounded. Buckets are half-open [lower, upper).
var resolutionBucketBounds = []int{0, 30, 60, 120, 240, 480, 1440, 4320}

// BucketCount is one resolution-time histogram bucket.
type BucketCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ResolutionTimeBuckets histograms resolved records by duration_minutes into
// the fixed bucket set. Every resolved record with a non-nil duration lands
// in exactly one bucket (first match wins), so bucket counts always sum to
// the resolved-with-duration record count.
func ResolutionTimeBuckets(records []domain.Incident) []BucketCount {
	labels := []string{"<30m", "30m-1h", "1h-2h", "2h-4h", "4h-8h", "8h-24h", "1d-3d", ">3d"}
	buckets := make([]BucketCount, len(resolutionBucketBounds))
	for i := range buckets {
		buckets[i] = BucketCount{Label: labels[i]}
	}
	for i := range records {
		r := &records[i]
		if r.ResolvedAt == nil || r.DurationMinutes == nil {
			continue
		}
		minutes := *r.DurationMinutes
		placed := false
		for b := 0; b < len(resolutionBucketBounds)-1; b++ {
			if minutes >= resolutionBucketBounds[b] && minutes < resolutionBucketBounds[b+1] {
				buckets[b].Count++
				placed = true
				break
			}
		}
		if !placed && minutes >= resolutionBucketBounds[len(resolutionBucketBounds)-1] {
			buckets[len(buckets)-1].Count++
		}
	}
	return buckets
}

// ValueCount is one entry of a frequency distribution.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CauseDistribution counts incidents by cause display value (with the
// "Other: {detail}" expansion) over non-blank causes, returning the top n by
// count descending. Ties break by first-seen order so output is
// deterministic.
func CauseDistribution(records []domain.Incident, n int) []ValueCount {
	return topValues(records, n, func(r *domain.Incident) string { return r.CauseDisplay() })
}

// OriginDistribution is the origin counterpart of CauseDistribution.
func OriginDistribution(records []domain.Incident, n int) []ValueCount {
	return topValues(records, n, func(r *domain.Incident) string { return r.OriginDisplay() })
}

func topValues(records []domain.Incident, n int, display func(*domain.Incident) string) []ValueCount {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for i := range records {
		value := display(&records[i])
		if value == "" {
			continue
		}
		if _, seen := counts[value]; !seen {
			firstSeen[value] = len(firstSeen)
		}
		counts[value]++
	}
	out := make([]ValueCount, 0, len(counts))
	for value, count := range counts {
		out = append(out, ValueCount{Value: value, Count: count})
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Count != out[b].Count {
			return out[a].Count > out[b].Count
		}
		return firstSeen[out[a].Value] < firstSeen[out[b].Value]
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// PeakSummary identifies the busiest hour-of-day and weekday in the trailing
// window. HasData is false for an all-zero window; both peaks then share that
// single no-data representation instead of defaulting to 00:00/Monday.
type PeakSummary struct {
	HasData      bool   `json:"has_data"`
	Hour         int    `json:"hour"`
	HourCount    int    `json:"hour_count"`
	Weekday      string `json:"weekday"`
	WeekdayCount int    `json:"weekday_count"`
}

// PeakAnalysis finds the maximum hourly and weekday buckets over the
// trailing window. The earliest bucket wins a tie.
func PeakAnalysis(records []domain.Incident, days int, now time.Time, loc *time.Location) PeakSummary {
	hours := HourlyDistribution(records, days, now, loc)
	weekdays := DayOfWeekDistribution(records, days, now, loc)

	summary := PeakSummary{}
	for h, count := range hours {
		if count > summary.HourCount {
			summary.Hour = h
			summary.HourCount = count
		}
	}
	for d, count := range weekdays {
		if count > summary.WeekdayCount {
			summary.Weekday = WeekdayName(d)
			summary.WeekdayCount = count
		}
	}
	summary.HasData = summary.HourCount > 0 || summary.WeekdayCount > 0
	return summary
}
