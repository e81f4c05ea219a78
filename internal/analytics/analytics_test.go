package analytics

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/spec-kit/incident-service/internal/domain"
)

var now = time.Date(2025, time.March, 10, 15, 30, 0, 0, time.UTC) // a Monday

func resolvedRecord(occurred time.Time, minutes int) domain.Incident {
	resolved := occurred.Add(time.Duration(minutes) * time.Minute)
	return domain.Incident{
		OccurredAt:      occurred,
		ResolvedAt:      &resolved,
		DurationMinutes: &minutes,
		IsResolved:      true,
	}
}

func TestMTTR(t *testing.T) {
	since := now.AddDate(0, 0, -7)
	records := []domain.Incident{
		resolvedRecord(now.Add(-48*time.Hour), 60),
		resolvedRecord(now.Add(-24*time.Hour), 120),
		resolvedRecord(now.AddDate(0, 0, -30), 10_000), // resolved before window
		{OccurredAt: now.Add(-time.Hour)},              // active, excluded
	}
	got := MTTR(records, since)
	if !got.HasData {
		t.Fatal("expected data")
	}
	if got.Minutes != 90 {
		t.Errorf("MTTR: got %.1f, want 90", got.Minutes)
	}
}

func TestMTTR_EmptyWindow(t *testing.T) {
	got := MTTR(nil, now)
	if got.HasData {
		t.Error("empty input must report no data")
	}
	if got.Format() != "N/A" {
		t.Errorf("empty MTTR format: got %q, want N/A", got.Format())
	}
}

func TestMTTR_ExcludesNilDuration(t *testing.T) {
	resolved := now.Add(-time.Hour)
	records := []domain.Incident{{OccurredAt: now.Add(-2 * time.Hour), ResolvedAt: &resolved}}
	if got := MTTR(records, now.AddDate(0, 0, -1)); got.HasData {
		t.Error("resolved record without duration must be excluded, not defaulted")
	}
}

func TestMTTRResult_Format(t *testing.T) {
	tests := []struct {
		minutes float64
		want    string
	}{
		{45, "45m"},
		{90, "1h30m"},
		{60, "1h0m"},
		{24 * 60, "1d0h"},
		{26*60 + 30, "1d2h"},
	}
	for _, tt := range tests {
		m := MTTRResult{Minutes: tt.minutes, HasData: true}
		if got := m.Format(); got != tt.want {
			t.Errorf("Format(%.0f): got %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestDailyTrend_ZeroFilledAndConsecutive(t *testing.T) {
	got := DailyTrend(nil, 7, now, time.UTC)
	if len(got) != 7 {
		t.Fatalf("series length: got %d, want 7", len(got))
	}
	for i, day := range got {
		if day.Count != 0 {
			t.Errorf("day %d: got count %d, want 0", i, day.Count)
		}
		if i > 0 {
			if want := got[i-1].Date.AddDate(0, 0, 1); !day.Date.Equal(want) {
				t.Errorf("day %d not consecutive: got %v, want %v", i, day.Date, want)
			}
		}
	}
	last := got[6].Date
	if last.Year() != now.Year() || last.Month() != now.Month() || last.Day() != now.Day() {
		t.Errorf("series must end today: got %v", last)
	}
}

func TestDailyTrend_BucketsInLocation(t *testing.T) {
	// 23:30 UTC yesterday is already "today" at UTC+2; the bucket must
	// follow the caller's reference timezone, not UTC.
	loc := time.FixedZone("UTC+2", 2*60*60)
	records := []domain.Incident{{OccurredAt: time.Date(2025, time.March, 9, 23, 30, 0, 0, time.UTC)}}
	got := DailyTrend(records, 2, now, loc)
	if got[0].Count != 0 || got[1].Count != 1 {
		t.Errorf("timezone bucketing: got %+v", got)
	}
}

func TestHourlyDistribution(t *testing.T) {
	records := []domain.Incident{
		{OccurredAt: now.Add(-2 * time.Hour)},  // 13:30
		{OccurredAt: now.Add(-26 * time.Hour)}, // yesterday 13:30
		{OccurredAt: now.AddDate(0, 0, -10)},   // outside window
		{},                                     // missing occurred_at
	}
	got := HourlyDistribution(records, 7, now, time.UTC)
	if got[13] != 2 {
		t.Errorf("13:00 bucket: got %d, want 2", got[13])
	}
	var total int
	for _, c := range got {
		total += c
	}
	if total != 2 {
		t.Errorf("window total: got %d, want 2", total)
	}
}

func TestDayOfWeekDistribution_MondayFirst(t *testing.T) {
	records := []domain.Incident{
		{OccurredAt: now},                     // Monday
		{OccurredAt: now.Add(-24 * time.Hour)}, // Sunday
	}
	got := DayOfWeekDistribution(records, 7, now, time.UTC)
	if got[0] != 1 {
		t.Errorf("Monday bucket: got %d, want 1", got[0])
	}
	if got[6] != 1 {
		t.Errorf("Sunday bucket: got %d, want 1", got[6])
	}
}

func TestResolutionTimeBuckets_Partition(t *testing.T) {
	durations := []int{0, 29, 30, 59, 60, 119, 120, 239, 240, 479, 480, 1439, 1440, 4319, 4320, 100000}
	records := make([]domain.Incident, 0, len(durations)+1)
	for _, d := range durations {
		records = append(records, resolvedRecord(now.Add(-100*time.Hour), d))
	}
	records = append(records, domain.Incident{OccurredAt: now}) // unresolved, excluded

	got := ResolutionTimeBuckets(records)
	if len(got) != 8 {
		t.Fatalf("bucket count: got %d, want 8", len(got))
	}
	var sum int
	for _, b := range got {
		if b.Count != 2 {
			t.Errorf("bucket %s: got %d, want 2", b.Label, b.Count)
		}
		sum += b.Count
	}
	if sum != len(durations) {
		t.Errorf("bucket sum %d != resolved-with-duration count %d", sum, len(durations))
	}
}

func TestCauseDistribution(t *testing.T) {
	other := "Generator failure"
	records := []domain.Incident{
		{Cause: "Power Failure"},
		{Cause: "Power Failure"},
		{Cause: "Fiber Cut"},
		{Cause: "Other", CauseOther: other},
		{Cause: "Fiber Cut"},
		{Cause: ""},
	}
	got := CauseDistribution(records, 2)
	want := []ValueCount{
		{Value: "Power Failure", Count: 2},
		{Value: "Fiber Cut", Count: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("top causes mismatch (-want +got):\n%s", diff)
	}
}

func TestOriginDistribution_OtherExpansion(t *testing.T) {
	records := []domain.Incident{
		{Origin: "Other", OriginOther: "Vendor maintenance"},
		{Origin: "Other", OriginOther: "Vendor maintenance"},
		{Origin: "Internal System"},
	}
	got := OriginDistribution(records, 0)
	want := []ValueCount{
		{Value: "Other: Vendor maintenance", Count: 2},
		{Value: "Internal System", Count: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("origin distribution mismatch (-want +got):\n%s", diff)
	}
}

func TestPeakAnalysis(t *testing.T) {
	records := []domain.Incident{
		{OccurredAt: now.Add(-1 * time.Hour)}, // 14:30 Monday
		{OccurredAt: now.Add(-2 * time.Hour)}, // 13:30 Monday
		{OccurredAt: now.Add(-25 * time.Hour)}, // 14:30 Sunday
	}
	got := PeakAnalysis(records, 7, now, time.UTC)
	if !got.HasData {
		t.Fatal("expected data")
	}
	if got.Hour != 14 || got.HourCount != 2 {
		t.Errorf("peak hour: got %d(%d), want 14(2)", got.Hour, got.HourCount)
	}
	if got.Weekday != "Monday" || got.WeekdayCount != 2 {
		t.Errorf("peak weekday: got %s(%d), want Monday(2)", got.Weekday, got.WeekdayCount)
	}
}

func TestPeakAnalysis_EmptyWindow(t *testing.T) {
	got := PeakAnalysis(nil, 7, now, time.UTC)
	if got.HasData {
		t.Error("empty window must report no data")
	}
	if got.Weekday != "" || got.HourCount != 0 || got.WeekdayCount != 0 {
		t.Errorf("no-data sentinel not clean: %+v", got)
	}
}

func TestHealthScore(t *testing.T) {
	tests := []struct {
		name   string
		total  int
		active int
		counts SeverityCounts
		want   int
	}{
		{"empty network is perfect", 0, 0, SeverityCounts{}, 100},
		{"all resolved", 10, 0, SeverityCounts{}, 0},
		{"single new incident", 10, 1, SeverityCounts{New: 1}, 86},
		{"single critical", 2, 1, SeverityCounts{Critical: 1}, 8},
		{"all critical", 4, 4, SeverityCounts{Critical: 4}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HealthScore(tt.total, tt.active, tt.counts); got != tt.want {
				t.Errorf("HealthScore(%d, %d, %+v): got %d, want %d", tt.total, tt.active, tt.counts, got, tt.want)
			}
		})
	}
}

func TestHealthScore_ClampedForAdversarialInput(t *testing.T) {
	inputs := []struct {
		total, active int
		counts        SeverityCounts
	}{
		{1, 5, SeverityCounts{Critical: 5}},          // active > total
		{1, 1, SeverityCounts{New: 1000}},            // inflated severity mix
		{3, 30, SeverityCounts{}},                    // negative ratio factor
	}
	for _, in := range inputs {
		got := HealthScore(in.total, in.active, in.counts)
		if got < 0 || got > 100 {
			t.Errorf("HealthScore(%d, %d, %+v) = %d escaped [0,100]", in.total, in.active, in.counts, got)
		}
	}
}

func TestHealthLabel(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, "Excellent"}, {90, "Excellent"},
		{89, "Good"}, {75, "Good"},
		{74, "Fair"}, {60, "Fair"},
		{59, "Poor"}, {40, "Poor"},
		{39, "Critical"}, {0, "Critical"},
	}
	for _, tt := range tests {
		if got := HealthLabel(tt.score); got != tt.want {
			t.Errorf("HealthLabel(%d): got %q, want %q", tt.score, got, tt.want)
		}
	}
}
