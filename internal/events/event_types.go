package events

import (
	"time"

	"github.com/spec-kit/incident-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIncidentCreated  EventType = "incident_created"
	EventIncidentUpdated  EventType = "incident_updated"
	EventIncidentResolved EventType = "incident_resolved"
	EventIncidentArchived EventType = "incident_archived"
	EventIncidentRestored EventType = "incident_restored"
	EventSweepCompleted   EventType = "sweep_completed"
)

// Actor encapsulates actor metadata for an event. System events carry
// a username without a user ID.
type Actor struct {
	Username string  `json:"username"`
	UserID   *string `json:"user_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	IncidentID string      `json:"incident_id,omitempty"`
	Domain     string      `json:"domain,omitempty"`
	Actor      Actor       `json:"actor"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// IncidentCreatedPayload payload.
type IncidentCreatedPayload struct {
	Severity   domain.Severity `json:"severity"`
	OccurredAt time.Time       `json:"occurred_at"`
	Cause      string          `json:"cause,omitempty"`
	Origin     string          `json:"origin,omitempty"`
}

// IncidentUpdatedPayload payload.
type IncidentUpdatedPayload struct {
	ChangedFields []string `json:"changed_fields"`
}

// IncidentResolvedPayload payload.
type IncidentResolvedPayload struct {
	ResolvedAt      time.Time `json:"resolved_at"`
	DurationMinutes int       `json:"duration_minutes"`
}

// IncidentArchivedPayload payload.
type IncidentArchivedPayload struct {
	ArchivedBy string `json:"archived_by"`
	Automatic  bool   `json:"automatic"`
}

// IncidentRestoredPayload payload.
type IncidentRestoredPayload struct {
	RestoredBy string `json:"restored_by"`
}

// SweepCompletedPayload payload.
type SweepCompletedPayload struct {
	Checked  int            `json:"checked"`
	Archived int            `json:"archived"`
	ByDomain map[string]int `json:"by_domain,omitempty"`
	Errors   int            `json:"errors"`
}
