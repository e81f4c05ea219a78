package lifecycle

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/spec-kit/incident-service/internal/domain"
)

var base = time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)

func ptrTime(t time.Time) *time.Time { return &t }

func resolvedIncident(occurred, resolved time.Time) domain.Incident {
	return domain.Incident{
		ID:         "inc-1",
		Domain:     domain.DomainTransport,
		OccurredAt: occurred,
		ResolvedAt: ptrTime(resolved),
		Cause:      "Fiber Cut",
		Origin:     "External",
	}
}

func TestComputeDurationMinutes(t *testing.T) {
	tests := []struct {
		name     string
		occurred time.Time
		resolved *time.Time
		now      time.Time
		want     int
		wantOK   bool
	}{
		{"active incident uses now", base, nil, base.Add(90 * time.Minute), 90, true},
		{"resolved incident uses recovery time", base, ptrTime(base.Add(45 * time.Minute)), base.Add(10 * time.Hour), 45, true},
		{"floors partial minutes", base, ptrTime(base.Add(119 * time.Second)), base, 1, true},
		{"zero elapsed", base, ptrTime(base), base, 0, true},
		{"corrupt negative span clamps to zero", base, ptrTime(base.Add(-time.Hour)), base, 0, true},
		{"missing occurred_at is unknown", time.Time{}, nil, base, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ComputeDurationMinutes(tt.occurred, tt.resolved, tt.now)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ComputeDurationMinutes: got (%d, %v), want (%d, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestDeriveIsResolved(t *testing.T) {
	if DeriveIsResolved(nil) {
		t.Error("nil resolved_at must derive unresolved")
	}
	if !DeriveIsResolved(ptrTime(base)) {
		t.Error("set resolved_at must derive resolved")
	}
}

func TestClassifySeverity_Boundaries(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		want    domain.Severity
	}{
		{"just occurred", 0, domain.SeverityNew},
		{"59m59s", 59*time.Minute + 59*time.Second, domain.SeverityNew},
		{"exactly 1h is Low", time.Hour, domain.SeverityLow},
		{"1h59m59s", 2*time.Hour - time.Second, domain.SeverityLow},
		{"exactly 2h is Medium", 2 * time.Hour, domain.SeverityMedium},
		{"3h59m59s", 4*time.Hour - time.Second, domain.SeverityMedium},
		{"exactly 4h is Critical", 4 * time.Hour, domain.SeverityCritical},
		{"days later", 72 * time.Hour, domain.SeverityCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifySeverity(base, nil, base.Add(tt.elapsed))
			if got != tt.want {
				t.Errorf("ClassifySeverity(%v): got %s, want %s", tt.elapsed, got, tt.want)
			}
		})
	}
}

func TestClassifySeverity_MonotonicWhileUnresolved(t *testing.T) {
	rank := map[domain.Severity]int{
		domain.SeverityNew:      0,
		domain.SeverityLow:      1,
		domain.SeverityMedium:   2,
		domain.SeverityCritical: 3,
	}
	prev := -1
	for elapsed := time.Duration(0); elapsed <= 8*time.Hour; elapsed += 5 * time.Minute {
		sev := ClassifySeverity(base, nil, base.Add(elapsed))
		r, ok := rank[sev]
		if !ok {
			t.Fatalf("unresolved incident classified %s at %v", sev, elapsed)
		}
		if r < prev {
			t.Fatalf("severity regressed at %v: %s", elapsed, sev)
		}
		prev = r
	}
}

func TestClassifySeverity_ResolutionOverridesAge(t *testing.T) {
	resolved := ptrTime(base.Add(30 * time.Hour))
	for _, now := range []time.Time{base, base.Add(30 * time.Hour), base.Add(300 * time.Hour)} {
		if got := ClassifySeverity(base, resolved, now); got != domain.SeverityResolved {
			t.Errorf("resolved incident at now=%v classified %s", now, got)
		}
	}
}

func TestClassifySeverity_MissingOccurredAt(t *testing.T) {
	if got := ClassifySeverity(time.Time{}, nil, base); got != domain.SeverityNew {
		t.Errorf("missing occurred_at: got %s, want NEW", got)
	}
}

func TestApplyDerivedFields(t *testing.T) {
	inc := resolvedIncident(base, base.Add(90*time.Minute))
	ApplyDerivedFields(&inc, base.Add(10*time.Hour))
	if inc.DurationMinutes == nil || *inc.DurationMinutes != 90 {
		t.Fatalf("duration not stamped: %v", inc.DurationMinutes)
	}
	if !inc.IsResolved {
		t.Error("is_resolved not derived from resolved_at")
	}

	inc.ResolvedAt = nil
	ApplyDerivedFields(&inc, base.Add(2*time.Hour))
	if inc.IsResolved {
		t.Error("is_resolved must clear when resolved_at clears")
	}
	if inc.DurationMinutes == nil || *inc.DurationMinutes != 120 {
		t.Errorf("active duration: got %v, want 120", inc.DurationMinutes)
	}

	inc.OccurredAt = time.Time{}
	ApplyDerivedFields(&inc, base)
	if inc.DurationMinutes != nil {
		t.Error("unknown duration must not be persisted")
	}
}

func TestCanArchive_FiveConditions(t *testing.T) {
	resolvedAt := base.Add(time.Hour)
	now := resolvedAt.Add(3 * time.Hour)

	eligible := resolvedIncident(base, resolvedAt)
	if !CanArchive(&eligible, now) {
		t.Fatalf("fully categorized, cooled-down incident must be archivable: %v", UnmetConditions(&eligible, now))
	}

	tests := []struct {
		name   string
		mutate func(*domain.Incident)
		now    time.Time
	}{
		{"unresolved", func(i *domain.Incident) { i.ResolvedAt = nil }, now},
		{"blank cause", func(i *domain.Incident) { i.Cause = "   " }, now},
		{"empty origin", func(i *domain.Incident) { i.Origin = "" }, now},
		{"already archived", func(i *domain.Incident) { i.IsArchived = true }, now},
		{"cooldown not elapsed", func(i *domain.Incident) {}, resolvedAt.Add(ArchiveCooldown - time.Second)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inc := resolvedIncident(base, resolvedAt)
			tt.mutate(&inc)
			if CanArchive(&inc, tt.now) {
				t.Error("expected archival to be blocked")
			}
		})
	}
}

func TestCanArchive_CooldownBoundary(t *testing.T) {
	resolvedAt := base.Add(30 * time.Minute)
	inc := resolvedIncident(base, resolvedAt)

	if CanArchive(&inc, resolvedAt.Add(2*time.Hour-time.Second)) {
		t.Error("1h59m59s since resolution must not be archivable")
	}
	if !CanArchive(&inc, resolvedAt.Add(2*time.Hour)) {
		t.Error("exactly 2h since resolution must be archivable")
	}
}

func TestArchive_SetsArchivalTriple(t *testing.T) {
	resolvedAt := base.Add(time.Hour)
	now := resolvedAt.Add(3 * time.Hour)
	inc := resolvedIncident(base, resolvedAt)

	got, err := Archive(inc, "amira", now)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if !got.IsArchived || got.ArchivedAt == nil || !got.ArchivedAt.Equal(now) {
		t.Errorf("archival state not stamped: %+v", got)
	}
	if got.ArchivedBy == nil || *got.ArchivedBy != "amira" {
		t.Errorf("archived_by: got %v", got.ArchivedBy)
	}
	if got.UpdatedBy == nil || *got.UpdatedBy != "amira" {
		t.Errorf("updated_by: got %v", got.UpdatedBy)
	}
}

func TestArchive_NotEligibleNamesConditions(t *testing.T) {
	inc := domain.Incident{ID: "inc-9", Domain: domain.DomainCore, OccurredAt: base}
	_, err := Archive(inc, "amira", base.Add(time.Hour))

	var notEligible *NotEligibleError
	if !errors.As(err, &notEligible) {
		t.Fatalf("want *NotEligibleError, got %v", err)
	}
	want := []string{"incident is not resolved", "cause is not filled", "origin is not filled"}
	if diff := cmp.Diff(want, notEligible.Unmet); diff != "" {
		t.Errorf("unmet conditions mismatch (-want +got):\n%s", diff)
	}
	for _, cond := range want {
		if !strings.Contains(err.Error(), cond) {
			t.Errorf("error message must restate %q: %s", cond, err)
		}
	}
}

func TestArchive_NotIdempotent(t *testing.T) {
	resolvedAt := base.Add(time.Hour)
	now := resolvedAt.Add(3 * time.Hour)
	inc := resolvedIncident(base, resolvedAt)

	first, err := Archive(inc, "system_archival", now)
	if err != nil {
		t.Fatalf("first archive: %v", err)
	}
	_, err = Archive(first, "system_archival", now.Add(time.Minute))
	var notEligible *NotEligibleError
	if !errors.As(err, &notEligible) {
		t.Fatalf("second archive must fail NotEligible, got %v", err)
	}
}

func TestRestore_RoundTrip(t *testing.T) {
	resolvedAt := base.Add(time.Hour)
	now := resolvedAt.Add(3 * time.Hour)
	inc := resolvedIncident(base, resolvedAt)

	archived, err := Archive(inc, "amira", now)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	restored, err := Restore(archived, "karim")
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.IsArchived || restored.ArchivedAt != nil || restored.ArchivedBy != nil {
		t.Errorf("archival fields not cleared: %+v", restored)
	}
	if restored.UpdatedBy == nil || *restored.UpdatedBy != "karim" {
		t.Errorf("updated_by: got %v", restored.UpdatedBy)
	}

	// After restore the incident is eligible again; the archived/restored
	// cycle may repeat.
	if _, err := Archive(restored, "amira", now.Add(time.Hour)); err != nil {
		t.Errorf("re-archive after restore: %v", err)
	}
}

func TestRestore_NotArchived(t *testing.T) {
	inc := resolvedIncident(base, base.Add(time.Hour))
	_, err := Restore(inc, "karim")
	var notArchived *NotArchivedError
	if !errors.As(err, &notArchived) {
		t.Fatalf("want *NotArchivedError, got %v", err)
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "0m"},
		{-5, "0m"},
		{45, "45m"},
		{60, "1h"},
		{90, "1h 30m"},
		{24 * 60, "1d"},
		{24*60 + 60 + 5, "1d 1h 5m"},
		{3 * 24 * 60, "3d"},
		{2*24*60 + 30, "2d 30m"},
	}
	for _, tt := range tests {
		if got := FormatMinutes(tt.minutes); got != tt.want {
			t.Errorf("FormatMinutes(%d): got %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestDurationOf(t *testing.T) {
	inc := resolvedIncident(base, base.Add(30*time.Minute))
	d := DurationOf(&inc, base.Add(10*time.Hour))
	if !d.Known || d.Minutes != 30 {
		t.Errorf("resolved duration: got %+v", d)
	}

	inc.OccurredAt = time.Time{}
	d = DurationOf(&inc, base)
	if d.Known {
		t.Error("missing occurred_at must be unknown")
	}
	if d.String() != "" {
		t.Errorf("unknown duration renders empty, got %q", d.String())
	}
}

func TestScenario_Ninety_Minutes_Unresolved(t *testing.T) {
	now := base.Add(90 * time.Minute)
	if got := ClassifySeverity(base, nil, now); got != domain.SeverityLow {
		t.Errorf("severity at 90m: got %s, want LOW", got)
	}
	if got, ok := ComputeDurationMinutes(base, nil, now); !ok || got != 90 {
		t.Errorf("duration at 90m: got (%d, %v), want (90, true)", got, ok)
	}
}
