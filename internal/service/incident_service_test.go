package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/events"
	"github.com/spec-kit/incident-service/internal/lifecycle"
	"github.com/spec-kit/incident-service/internal/search"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

var svcNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func testVocab() *fakeVocab {
	return &fakeVocab{values: map[string][]string{
		domain.VocabCauses:  {"Fiber cut", "Power outage"},
		domain.VocabOrigins: {"Civil works", "Weather"},
	}}
}

func newTestIncidentService(repo *fakeIncidentRepo, audits *fakeAuditRepo, dispatcher events.Dispatcher) *IncidentService {
	return NewIncidentService(IncidentDependencies{
		IncidentRepo: repo,
		AuditRepo:    audits,
		Vocabulary:   testVocab(),
		Dispatcher:   dispatcher,
		Now:          func() time.Time { return svcNow },
	})
}

func validTransportInput() IncidentInput {
	return IncidentInput{
		OccurredAt: svcNow.Add(-90 * time.Minute),
		Cause:      "Fiber cut",
		Origin:     "Civil works",
		Transport: &domain.TransportFields{
			RegionLoop: "Center",
			ExtremityA: "Algiers",
			ExtremityB: "Blida",
		},
	}
}

func TestCreate_DerivesLifecycleFields(t *testing.T) {
	repo := newFakeIncidentRepo()
	svc := newTestIncidentService(repo, &fakeAuditRepo{}, nil)

	inc, err := svc.Create(context.Background(), domain.DomainTransport, "amina", validTransportInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if inc.IsResolved {
		t.Error("unresolved input must not be marked resolved")
	}
	if inc.DurationMinutes == nil || *inc.DurationMinutes != 90 {
		t.Errorf("DurationMinutes = %v, want 90", inc.DurationMinutes)
	}
	if inc.CreatedBy == nil || *inc.CreatedBy != "amina" {
		t.Errorf("CreatedBy = %v, want amina", inc.CreatedBy)
	}
}

func TestCreate_ValidationFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*IncidentInput)
	}{
		{"missing occurred_at", func(in *IncidentInput) { in.OccurredAt = time.Time{} }},
		{"occurred too far ahead", func(in *IncidentInput) { in.OccurredAt = svcNow.Add(25 * time.Hour) }},
		{"occurred over a year ago", func(in *IncidentInput) { in.OccurredAt = svcNow.Add(-366 * 24 * time.Hour) }},
		{"resolved before occurred", func(in *IncidentInput) {
			r := in.OccurredAt.Add(-time.Minute)
			in.ResolvedAt = &r
		}},
		{"resolved over 30 days later", func(in *IncidentInput) {
			r := in.OccurredAt.Add(31 * 24 * time.Hour)
			in.ResolvedAt = &r
		}},
		{"cause Other without detail", func(in *IncidentInput) { in.Cause = "Other"; in.CauseOther = "" }},
		{"origin Other without detail", func(in *IncidentInput) { in.Origin = "Other"; in.OriginOther = "" }},
		{"cause outside vocabulary", func(in *IncidentInput) { in.Cause = "Gremlins" }},
		{"missing extremities", func(in *IncidentInput) { in.Transport.ExtremityB = "" }},
		{"no field group", func(in *IncidentInput) { in.Transport = nil }},
		{"two field groups", func(in *IncidentInput) { in.Core = &domain.CoreFields{Platform: "IMS"} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestIncidentService(newFakeIncidentRepo(), &fakeAuditRepo{}, nil)
			input := validTransportInput()
			tc.mutate(&input)

			_, err := svc.Create(context.Background(), domain.DomainTransport, "amina", input)
			var domainErr *apperrors.DomainError
			if !errors.As(err, &domainErr) || domainErr.Code != "VALIDATION_FAILED" {
				t.Fatalf("got %v, want VALIDATION_FAILED", err)
			}
		})
	}
}

func TestCreate_OtherWithDetailAccepted(t *testing.T) {
	svc := newTestIncidentService(newFakeIncidentRepo(), &fakeAuditRepo{}, nil)
	input := validTransportInput()
	input.Cause = "Other"
	input.CauseOther = "Rodent damage"

	if _, err := svc.Create(context.Background(), domain.DomainTransport, "amina", input); err != nil {
		t.Fatalf("Create: %v", err)
	}
}

func TestCreate_RejectsBadIPAddress(t *testing.T) {
	svc := newTestIncidentService(newFakeIncidentRepo(), &fakeAuditRepo{}, nil)
	input := IncidentInput{
		OccurredAt: svcNow.Add(-time.Hour),
		Cause:      "Power outage",
		Origin:     "Weather",
		RadioAccess: &domain.RadioAccessFields{
			DoWilaya:  "Oran",
			Site:      "ORN-012",
			IPAddress: "10.0.0.999",
		},
	}

	_, err := svc.Create(context.Background(), domain.DomainRadioAccess, "amina", input)
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "VALIDATION_FAILED" {
		t.Fatalf("got %v, want VALIDATION_FAILED", err)
	}
}

func TestCreate_PublishesResolvedWhenBornResolved(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	recorder := &eventRecorder{}
	for _, et := range []events.EventType{events.EventIncidentCreated, events.EventIncidentResolved} {
		eventType := et
		dispatcher.Subscribe(eventType, func(_ context.Context, e events.Event) error {
			recorder.record(string(e.Type))
			return nil
		})
	}

	svc := newTestIncidentService(newFakeIncidentRepo(), &fakeAuditRepo{}, dispatcher)
	input := validTransportInput()
	resolved := input.OccurredAt.Add(45 * time.Minute)
	input.ResolvedAt = &resolved

	if _, err := svc.Create(context.Background(), domain.DomainTransport, "amina", input); err != nil {
		t.Fatalf("Create: %v", err)
	}

	want := []string{"incident_created", "incident_resolved"}
	if diff := cmp.Diff(want, recorder.types()); diff != "" {
		t.Errorf("event mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdate_ArchivedIsImmutable(t *testing.T) {
	repo := newFakeIncidentRepo()
	svc := newTestIncidentService(repo, &fakeAuditRepo{}, nil)

	inc, err := svc.Create(context.Background(), domain.DomainTransport, "amina", validTransportInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	repo.incidents[inc.ID].IsArchived = true

	_, err = svc.Update(context.Background(), domain.DomainTransport, inc.ID, "amina", validTransportInput())
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "CONFLICT" {
		t.Fatalf("got %v, want CONFLICT", err)
	}
}

func TestArchive_CooldownEnforced(t *testing.T) {
	repo := newFakeIncidentRepo()
	svc := newTestIncidentService(repo, &fakeAuditRepo{}, nil)
	seedResolved(repo, "fresh", domain.DomainTransport, 30)

	_, err := svc.Archive(context.Background(), domain.DomainTransport, "fresh", "amina")
	var notEligible *lifecycle.NotEligibleError
	if !errors.As(err, &notEligible) {
		t.Fatalf("got %v, want NotEligibleError", err)
	}
}

func TestArchiveRestore_RoundTripWithAudit(t *testing.T) {
	repo := newFakeIncidentRepo()
	audits := &fakeAuditRepo{}
	svc := newTestIncidentService(repo, audits, nil)
	seedResolved(repo, "a", domain.DomainTransport, 300)

	archived, err := svc.Archive(context.Background(), domain.DomainTransport, "a", "amina")
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if !archived.IsArchived {
		t.Fatal("incident not marked archived")
	}

	restored, err := svc.Restore(context.Background(), domain.DomainTransport, "a", "karim")
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.IsArchived || restored.ArchivedAt != nil || restored.ArchivedBy != nil {
		t.Error("restore must clear the archival fields")
	}

	want := []domain.AuditAction{domain.AuditActionArchive, domain.AuditActionRestore}
	if diff := cmp.Diff(want, audits.actions()); diff != "" {
		t.Errorf("audit trail mismatch (-want +got):\n%s", diff)
	}
}

func TestRestore_ActiveIncidentRejected(t *testing.T) {
	repo := newFakeIncidentRepo()
	svc := newTestIncidentService(repo, &fakeAuditRepo{}, nil)
	seedResolved(repo, "a", domain.DomainTransport, 300)

	_, err := svc.Restore(context.Background(), domain.DomainTransport, "a", "amina")
	var notArchived *lifecycle.NotArchivedError
	if !errors.As(err, &notArchived) {
		t.Fatalf("got %v, want NotArchivedError", err)
	}
}

func TestList_AnnotatesSeverities(t *testing.T) {
	repo := newFakeIncidentRepo()
	svc := newTestIncidentService(repo, &fakeAuditRepo{}, nil)
	repo.incidents["x"] = &domain.Incident{
		ID:         "x",
		Domain:     domain.DomainTransport,
		OccurredAt: svcNow.Add(-5 * time.Hour),
	}

	page, err := svc.List(context.Background(), domain.DomainTransport, search.Params{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Incidents) != 1 || len(page.Severities) != 1 {
		t.Fatalf("got %d incidents and %d severities, want 1 and 1", len(page.Incidents), len(page.Severities))
	}
	if page.Severities[0] != domain.SeverityCritical {
		t.Errorf("severity = %s, want %s", page.Severities[0], domain.SeverityCritical)
	}
}
