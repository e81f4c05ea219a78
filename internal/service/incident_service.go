package service

import (
	"context"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/events"
	"github.com/spec-kit/incident-service/internal/lifecycle"
	"github.com/spec-kit/incident-service/internal/repository"
	"github.com/spec-kit/incident-service/internal/search"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

// Temporal bounds on user-supplied timestamps.
const (
	maxOccurredAge   = 365 * 24 * time.Hour
	maxOccurredAhead = 24 * time.Hour
	maxRecoveryDelay = 30 * 24 * time.Hour
	otherPlaceholder = "Other"
)

// IncidentService coordinates incident workflows across all five networks.
type IncidentService struct {
	incidents  repository.IncidentRepository
	audits     repository.AuditRepository
	vocab      VocabularyProvider
	dispatcher events.Dispatcher
	now        func() time.Time
}

// IncidentDependencies bundles requirements for the incident service.
type IncidentDependencies struct {
	IncidentRepo repository.IncidentRepository
	AuditRepo    repository.AuditRepository
	Vocabulary   VocabularyProvider
	Dispatcher   events.Dispatcher
	Now          func() time.Time
}

// NewIncidentService constructs the service.
func NewIncidentService(deps IncidentDependencies) *IncidentService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &IncidentService{
		incidents:  deps.IncidentRepo,
		audits:     deps.AuditRepo,
		vocab:      deps.Vocabulary,
		dispatcher: deps.Dispatcher,
		now:        now,
	}
}

// IncidentInput describes a create or update payload. Exactly one of the
// domain field bags must be set, matching the target network domain.
type IncidentInput struct {
	OccurredAt time.Time
	ResolvedAt *time.Time

	Cause       string
	CauseOther  string
	Origin      string
	OriginOther string
	Notes       string

	CorrectionRequired bool
	CorrectionNote     string

	Transport   *domain.TransportFields
	FileAccess  *domain.FileAccessFields
	RadioAccess *domain.RadioAccessFields
	Core        *domain.CoreFields
	Backbone    *domain.BackboneFields
}

// IncidentPage is a listing result with counts computed over the same filter.
type IncidentPage struct {
	Incidents  []domain.Incident
	Severities []domain.Severity
	Statistics search.Statistics
	Limit      int
	Offset     int
}

// Create validates and persists a new incident.
func (s *IncidentService) Create(ctx context.Context, d domain.NetworkDomain, actor string, input IncidentInput) (*domain.Incident, error) {
	if !d.Valid() {
		return nil, apperrors.NewValidationError("unknown network domain", map[string]any{"domain": string(d)})
	}
	now := s.now()
	if err := s.validate(ctx, d, input, now); err != nil {
		return nil, err
	}

	inc := &domain.Incident{
		ID:                 uuid.NewString(),
		Domain:             d,
		OccurredAt:         input.OccurredAt,
		ResolvedAt:         input.ResolvedAt,
		Cause:              strings.TrimSpace(input.Cause),
		CauseOther:         strings.TrimSpace(input.CauseOther),
		Origin:             strings.TrimSpace(input.Origin),
		OriginOther:        strings.TrimSpace(input.OriginOther),
		Notes:              strings.TrimSpace(input.Notes),
		CorrectionRequired: input.CorrectionRequired,
		CorrectionNote:     strings.TrimSpace(input.CorrectionNote),
		Transport:          input.Transport,
		FileAccess:         input.FileAccess,
		RadioAccess:        input.RadioAccess,
		Core:               input.Core,
		Backbone:           input.Backbone,
	}
	if actor != "" {
		inc.CreatedBy = &actor
		inc.UpdatedBy = &actor
	}
	lifecycle.ApplyDerivedFields(inc, now)

	if err := s.incidents.Create(ctx, inc); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, inc, actor, domain.AuditActionCreate, map[string]any{
		"occurred_at": inc.OccurredAt,
		"cause":       inc.Cause,
		"origin":      inc.Origin,
	})
	s.publish(ctx, events.Event{
		Type:       events.EventIncidentCreated,
		IncidentID: inc.ID,
		Domain:     string(d),
		Actor:      events.Actor{Username: actor},
		Payload: events.IncidentCreatedPayload{
			Severity:   lifecycle.ClassifySeverity(inc.OccurredAt, inc.ResolvedAt, now),
			OccurredAt: inc.OccurredAt,
			Cause:      inc.Cause,
			Origin:     inc.Origin,
		},
	})
	if inc.IsResolved {
		s.publishResolved(ctx, inc, actor)
	}
	return inc, nil
}

// Update validates and persists changes to an existing incident. Archived
// incidents are immutable until restored.
func (s *IncidentService) Update(ctx context.Context, d domain.NetworkDomain, id, actor string, input IncidentInput) (*domain.Incident, error) {
	existing, err := s.incidents.GetByID(ctx, d, id)
	if err != nil {
		return nil, err
	}
	if existing.IsArchived {
		return nil, apperrors.NewConflict("archived incidents cannot be modified", map[string]any{"incident_id": id})
	}

	now := s.now()
	if err := s.validate(ctx, d, input, now); err != nil {
		return nil, err
	}

	wasResolved := existing.IsResolved
	changed := changedFields(existing, input)

	existing.OccurredAt = input.OccurredAt
	existing.ResolvedAt = input.ResolvedAt
	existing.Cause = strings.TrimSpace(input.Cause)
	existing.CauseOther = strings.TrimSpace(input.CauseOther)
	existing.Origin = strings.TrimSpace(input.Origin)
	existing.OriginOther = strings.TrimSpace(input.OriginOther)
	existing.Notes = strings.TrimSpace(input.Notes)
	existing.CorrectionRequired = input.CorrectionRequired
	existing.CorrectionNote = strings.TrimSpace(input.CorrectionNote)
	existing.Transport = input.Transport
	existing.FileAccess = input.FileAccess
	existing.RadioAccess = input.RadioAccess
	existing.Core = input.Core
	existing.Backbone = input.Backbone
	if actor != "" {
		existing.UpdatedBy = &actor
	}
	lifecycle.ApplyDerivedFields(existing, now)

	if err := s.incidents.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, existing, actor, domain.AuditActionUpdate, map[string]any{"fields": changed})
	s.publish(ctx, events.Event{
		Type:       events.EventIncidentUpdated,
		IncidentID: existing.ID,
		Domain:     string(d),
		Actor:      events.Actor{Username: actor},
		Payload:    events.IncidentUpdatedPayload{ChangedFields: changed},
	})
	if !wasResolved && existing.IsResolved {
		s.publishResolved(ctx, existing, actor)
	}
	return existing, nil
}

// Get fetches one incident with its derived fields refreshed.
func (s *IncidentService) Get(ctx context.Context, d domain.NetworkDomain, id string) (*domain.Incident, error) {
	inc, err := s.incidents.GetByID(ctx, d, id)
	if err != nil {
		return nil, err
	}
	return inc, nil
}

// List runs a normalized search over one domain and annotates each record
// with its current severity.
func (s *IncidentService) List(ctx context.Context, d domain.NetworkDomain, params search.Params) (*IncidentPage, error) {
	if !d.Valid() {
		return nil, apperrors.NewValidationError("unknown network domain", map[string]any{"domain": string(d)})
	}
	params = params.Normalize(d)
	now := s.now()

	incidents, err := s.incidents.List(ctx, d, params, now)
	if err != nil {
		return nil, err
	}
	stats, err := s.incidents.Statistics(ctx, d, params, now)
	if err != nil {
		return nil, err
	}

	severities := make([]domain.Severity, len(incidents))
	for i := range incidents {
		severities[i] = lifecycle.ClassifySeverity(incidents[i].OccurredAt, incidents[i].ResolvedAt, now)
	}

	return &IncidentPage{
		Incidents:  incidents,
		Severities: severities,
		Statistics: stats,
		Limit:      params.Limit,
		Offset:     params.Offset,
	}, nil
}

// Archive moves an eligible incident to the archive on behalf of actor.
func (s *IncidentService) Archive(ctx context.Context, d domain.NetworkDomain, id, actor string) (*domain.Incident, error) {
	inc, err := s.incidents.GetByID(ctx, d, id)
	if err != nil {
		return nil, err
	}

	archived, err := lifecycle.Archive(*inc, actor, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.incidents.UpdateArchival(ctx, &archived); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, &archived, actor, domain.AuditActionArchive, nil)
	s.publish(ctx, events.Event{
		Type:       events.EventIncidentArchived,
		IncidentID: archived.ID,
		Domain:     string(d),
		Actor:      events.Actor{Username: actor},
		Payload:    events.IncidentArchivedPayload{ArchivedBy: actor, Automatic: actor == domain.SystemArchivalUsername},
	})
	return &archived, nil
}

// Restore brings an archived incident back to the active set.
func (s *IncidentService) Restore(ctx context.Context, d domain.NetworkDomain, id, actor string) (*domain.Incident, error) {
	inc, err := s.incidents.GetByID(ctx, d, id)
	if err != nil {
		return nil, err
	}

	restored, err := lifecycle.Restore(*inc, actor)
	if err != nil {
		return nil, err
	}
	if err := s.incidents.Update(ctx, &restored); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, &restored, actor, domain.AuditActionRestore, nil)
	s.publish(ctx, events.Event{
		Type:       events.EventIncidentRestored,
		IncidentID: restored.ID,
		Domain:     string(d),
		Actor:      events.Actor{Username: actor},
		Payload:    events.IncidentRestoredPayload{RestoredBy: actor},
	})
	return &restored, nil
}

// Severity classifies an incident at the given instant.
func (s *IncidentService) Severity(inc *domain.Incident, now time.Time) domain.Severity {
	return lifecycle.ClassifySeverity(inc.OccurredAt, inc.ResolvedAt, now)
}

// History returns the audit trail of one incident.
func (s *IncidentService) History(ctx context.Context, d domain.NetworkDomain, id string) ([]domain.AuditEntry, error) {
	return s.audits.ListByObject(ctx, d, id, 100)
}

func (s *IncidentService) validate(ctx context.Context, d domain.NetworkDomain, input IncidentInput, now time.Time) error {
	details := map[string]any{}

	if input.OccurredAt.IsZero() {
		details["occurred_at"] = "occurrence time is required"
	} else {
		if input.OccurredAt.After(now.Add(maxOccurredAhead)) {
			details["occurred_at"] = "occurrence time is too far in the future"
		}
		if input.OccurredAt.Before(now.Add(-maxOccurredAge)) {
			details["occurred_at"] = "occurrence time is more than one year old"
		}
	}

	if input.ResolvedAt != nil && !input.OccurredAt.IsZero() {
		if input.ResolvedAt.Before(input.OccurredAt) {
			details["resolved_at"] = "recovery must not precede occurrence"
		} else if input.ResolvedAt.Sub(input.OccurredAt) > maxRecoveryDelay {
			details["resolved_at"] = "recovery is more than 30 days after occurrence"
		}
	}

	if strings.TrimSpace(input.Cause) == otherPlaceholder && strings.TrimSpace(input.CauseOther) == "" {
		details["cause_other"] = "detail is required when cause is Other"
	}
	if strings.TrimSpace(input.Origin) == otherPlaceholder && strings.TrimSpace(input.OriginOther) == "" {
		details["origin_other"] = "detail is required when origin is Other"
	}

	if err := s.checkVocabulary(ctx, domain.VocabCauses, input.Cause, "cause", details); err != nil {
		return err
	}
	if err := s.checkVocabulary(ctx, domain.VocabOrigins, input.Origin, "origin", details); err != nil {
		return err
	}

	s.validateFieldBag(d, input, details)

	if len(details) > 0 {
		return apperrors.NewValidationError("incident payload is invalid", details)
	}
	return nil
}

// checkVocabulary verifies membership of value in the active vocabulary.
// The free-form Other placeholder is always accepted.
func (s *IncidentService) checkVocabulary(ctx context.Context, category, value, field string, details map[string]any) error {
	value = strings.TrimSpace(value)
	if s.vocab == nil || value == "" || value == otherPlaceholder {
		return nil
	}
	values, err := s.vocab.ActiveValues(ctx, category)
	if err != nil {
		return err
	}
	for _, v := range values {
		if v == value {
			return nil
		}
	}
	details[field] = fmt.Sprintf("%q is not an active %s value", value, category)
	return nil
}

func (s *IncidentService) validateFieldBag(d domain.NetworkDomain, input IncidentInput, details map[string]any) {
	bags := 0
	if input.Transport != nil {
		bags++
	}
	if input.FileAccess != nil {
		bags++
	}
	if input.RadioAccess != nil {
		bags++
	}
	if input.Core != nil {
		bags++
	}
	if input.Backbone != nil {
		bags++
	}
	if bags != 1 {
		details["fields"] = "exactly one domain field group must be provided"
		return
	}

	switch d {
	case domain.DomainTransport:
		if input.Transport == nil {
			details["fields"] = "transport incidents require transport fields"
		} else if input.Transport.ExtremityA == "" || input.Transport.ExtremityB == "" {
			details["fields"] = "both section extremities are required"
		}
	case domain.DomainFileAccess:
		if input.FileAccess == nil {
			details["fields"] = "file-access incidents require file-access fields"
		} else {
			if input.FileAccess.Site == "" {
				details["fields"] = "site is required"
			}
			checkIP(input.FileAccess.IPAddress, details)
		}
	case domain.DomainRadioAccess:
		if input.RadioAccess == nil {
			details["fields"] = "radio-access incidents require radio-access fields"
		} else {
			if input.RadioAccess.Site == "" {
				details["fields"] = "site is required"
			}
			checkIP(input.RadioAccess.IPAddress, details)
		}
	case domain.DomainCore:
		if input.Core == nil {
			details["fields"] = "core incidents require core fields"
		} else if input.Core.Platform == "" {
			details["fields"] = "platform is required"
		}
	case domain.DomainBackboneInternet:
		if input.Backbone == nil {
			details["fields"] = "backbone incidents require backbone fields"
		} else if input.Backbone.PlatformIGW == "" {
			details["fields"] = "IGW platform is required"
		}
	}
}

func checkIP(raw string, details map[string]any) {
	if raw == "" {
		return
	}
	if _, err := netip.ParseAddr(raw); err != nil {
		details["ip_address"] = fmt.Sprintf("%q is not a valid IP address", raw)
	}
}

func changedFields(existing *domain.Incident, input IncidentInput) []string {
	var changed []string
	if !existing.OccurredAt.Equal(input.OccurredAt) {
		changed = append(changed, "occurred_at")
	}
	if !equalTimePtr(existing.ResolvedAt, input.ResolvedAt) {
		changed = append(changed, "resolved_at")
	}
	if existing.Cause != strings.TrimSpace(input.Cause) {
		changed = append(changed, "cause")
	}
	if existing.Origin != strings.TrimSpace(input.Origin) {
		changed = append(changed, "origin")
	}
	if existing.Notes != strings.TrimSpace(input.Notes) {
		changed = append(changed, "notes")
	}
	if existing.CorrectionRequired != input.CorrectionRequired {
		changed = append(changed, "correction_required")
	}
	return changed
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func (s *IncidentService) recordAudit(ctx context.Context, inc *domain.Incident, actor string, action domain.AuditAction, changes map[string]any) {
	if s.audits == nil {
		return
	}
	entry := &domain.AuditEntry{
		UserID:   nil,
		Action:   action,
		Domain:   inc.Domain,
		ObjectID: inc.ID,
		Changes:  changes,
		At:       s.now(),
	}
	if actor != "" && actor != domain.SystemArchivalUsername {
		entry.Changes = withActor(changes, actor)
	}
	_ = s.audits.Create(ctx, entry)
}

func withActor(changes map[string]any, actor string) map[string]any {
	if changes == nil {
		changes = map[string]any{}
	}
	changes["actor"] = actor
	return changes
}

func (s *IncidentService) publishResolved(ctx context.Context, inc *domain.Incident, actor string) {
	minutes := 0
	if inc.DurationMinutes != nil {
		minutes = *inc.DurationMinutes
	}
	var resolvedAt time.Time
	if inc.ResolvedAt != nil {
		resolvedAt = *inc.ResolvedAt
	}
	s.publish(ctx, events.Event{
		Type:       events.EventIncidentResolved,
		IncidentID: inc.ID,
		Domain:     string(inc.Domain),
		Actor:      events.Actor{Username: actor},
		Payload:    events.IncidentResolvedPayload{ResolvedAt: resolvedAt, DurationMinutes: minutes},
	})
}

func (s *IncidentService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
