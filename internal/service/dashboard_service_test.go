package service

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/incident-service/internal/domain"
)

func minutesPtr(m int) *int { return &m }

func seedDashboardFixture(repo *fakeIncidentRepo) {
	occurred := func(minutesAgo int) time.Time {
		return svcNow.Add(-time.Duration(minutesAgo) * time.Minute)
	}
	resolved := func(minutesAgo int) *time.Time {
		t := occurred(minutesAgo)
		return &t
	}

	repo.incidents["r1"] = &domain.Incident{
		ID: "r1", Domain: domain.DomainTransport,
		OccurredAt: occurred(240), ResolvedAt: resolved(180),
		IsResolved: true, DurationMinutes: minutesPtr(60),
		Cause: "Fiber cut", Origin: "Civil works",
	}
	repo.incidents["r2"] = &domain.Incident{
		ID: "r2", Domain: domain.DomainTransport,
		OccurredAt: occurred(240), ResolvedAt: resolved(120),
		IsResolved: true, DurationMinutes: minutesPtr(120),
		Cause: "Fiber cut", Origin: "Civil works",
	}
	repo.incidents["a1"] = &domain.Incident{
		ID: "a1", Domain: domain.DomainTransport,
		OccurredAt: occurred(30),
		Cause:      "Fiber cut", Origin: "Weather",
	}
	repo.incidents["a2"] = &domain.Incident{
		ID: "a2", Domain: domain.DomainTransport,
		OccurredAt: occurred(300),
		Cause:      "Power outage", Origin: "Weather",
	}
}

func newTestDashboard(repo *fakeIncidentRepo) *DashboardService {
	return NewDashboardService(DashboardDependencies{
		IncidentRepo: repo,
		TrendDays:    30,
		Now:          func() time.Time { return svcNow },
	})
}

func TestDashboardService_SnapshotAggregates(t *testing.T) {
	repo := newFakeIncidentRepo()
	seedDashboardFixture(repo)

	snapshot, err := newTestDashboard(repo).Snapshot(context.Background(), domain.DomainTransport)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	if snapshot.Total != 4 || snapshot.Active != 2 || snapshot.Resolved != 2 {
		t.Fatalf("got total=%d active=%d resolved=%d, want 4/2/2",
			snapshot.Total, snapshot.Active, snapshot.Resolved)
	}
	if snapshot.ActivePct != 50 || snapshot.ResolvedPct != 50 {
		t.Errorf("got active_pct=%v resolved_pct=%v, want 50/50",
			snapshot.ActivePct, snapshot.ResolvedPct)
	}
	if snapshot.SeverityNew != 1 || snapshot.SeverityCrit != 1 {
		t.Errorf("got new=%d critical=%d, want 1 of each",
			snapshot.SeverityNew, snapshot.SeverityCrit)
	}
	if snapshot.MTTRMinutes != 90 {
		t.Errorf("got MTTR %v minutes, want 90", snapshot.MTTRMinutes)
	}
	if snapshot.MTTRDisplay != "1h30m" {
		t.Errorf("got MTTR display %q, want 1h30m", snapshot.MTTRDisplay)
	}
	if len(snapshot.DailyTrend) != 30 {
		t.Fatalf("got %d trend days, want 30", len(snapshot.DailyTrend))
	}
	if today := snapshot.DailyTrend[29]; today.Count != 4 {
		t.Errorf("got %d incidents on the last trend day, want 4", today.Count)
	}
}

func TestDashboardService_HealthScore(t *testing.T) {
	repo := newFakeIncidentRepo()
	seedDashboardFixture(repo)

	snapshot, err := newTestDashboard(repo).Snapshot(context.Background(), domain.DomainTransport)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	// weighted = (0.9*1 + 0.1*1) / 2 = 0.5, score = round((1 - 0.5*2/4) * 50) = 38
	if snapshot.HealthScore != 38 {
		t.Errorf("got health score %d, want 38", snapshot.HealthScore)
	}
	if snapshot.HealthLabel != "Critical" {
		t.Errorf("got health label %q, want Critical", snapshot.HealthLabel)
	}
}

func TestDashboardService_TopCauses(t *testing.T) {
	repo := newFakeIncidentRepo()
	seedDashboardFixture(repo)

	snapshot, err := newTestDashboard(repo).Snapshot(context.Background(), domain.DomainTransport)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	if len(snapshot.TopCauses) != 2 {
		t.Fatalf("got %d causes, want 2", len(snapshot.TopCauses))
	}
	if first := snapshot.TopCauses[0]; first.Value != "Fiber cut" || first.Count != 3 {
		t.Errorf("got top cause %q x%d, want Fiber cut x3", first.Value, first.Count)
	}
}

func TestDashboardService_UnknownDomainRejected(t *testing.T) {
	repo := newFakeIncidentRepo()

	if _, err := newTestDashboard(repo).Snapshot(context.Background(), domain.NetworkDomain("wifi")); err == nil {
		t.Fatal("expected an error for an unknown network domain")
	}
}
