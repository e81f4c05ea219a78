// Package lifecycle holds the pure state-derivation rules for incidents:
// duration, severity classification, resolution status and the archival state
// machine. Every function takes "now" as a parameter; nothing here reads a
// wall clock or touches storage.
package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/incident-service/internal/domain"
)

// Severity thresholds for unresolved incidents. Boundaries are half-open
// [lower, upper): an incident exactly 1h old is Low, not New. The search
// engine's status buckets share these constants so list filters and the
// classifier can never drift apart.
const (
	SeverityNewUpper    = 1 * time.Hour
	SeverityLowUpper    = 2 * time.Hour
	SeverityMediumUpper = 4 * time.Hour
)

// ArchiveCooldown is how long a resolved incident must rest before it becomes
// eligible for archival.
const ArchiveCooldown = 2 * time.Hour

// ComputeDurationMinutes returns whole minutes between occurredAt and
// resolvedAt, or between occurredAt and now while the incident is active.
// ok is false when occurredAt is missing; callers must not persist a duration
// in that case. Corrupted rows where the end precedes the start clamp to 0.
func ComputeDurationMinutes(occurredAt time.Time, resolvedAt *time.Time, now time.Time) (int, bool) {
	if occurredAt.IsZero() {
		return 0, false
	}
	end := now
	if resolvedAt != nil {
		end = *resolvedAt
	}
	seconds := end.Sub(occurredAt).Seconds()
	if seconds < 0 {
		return 0, true
	}
	return int(seconds / 60), true
}

// DeriveIsResolved is the single source of truth for resolution status.
func DeriveIsResolved(resolvedAt *time.Time) bool {
	return resolvedAt != nil
}

// ClassifySeverity derives the severity tier from elapsed unresolved time.
// Resolution always overrides age; a missing occurredAt defaults to New
// rather than erroring so degraded rows stay renderable.
func ClassifySeverity(occurredAt time.Time, resolvedAt *time.Time, now time.Time) domain.Severity {
	if resolvedAt != nil {
		return domain.SeverityResolved
	}
	if occurredAt.IsZero() {
		return domain.SeverityNew
	}
	age := now.Sub(occurredAt)
	switch {
	case age < SeverityNewUpper:
		return domain.SeverityNew
	case age < SeverityLowUpper:
		return domain.SeverityLow
	case age < SeverityMediumUpper:
		return domain.SeverityMedium
	default:
		return domain.SeverityCritical
	}
}

// ApplyDerivedFields stamps DurationMinutes and IsResolved on the incident.
// It must run before every persist so the stored derived fields can never
// disagree with the timestamps they are computed from.
func ApplyDerivedFields(inc *domain.Incident, now time.Time) {
	if minutes, ok := ComputeDurationMinutes(inc.OccurredAt, inc.ResolvedAt, now); ok {
		inc.DurationMinutes = &minutes
	} else {
		inc.DurationMinutes = nil
	}
	inc.IsResolved = DeriveIsResolved(inc.ResolvedAt)
}

// CanArchive reports whether all five archival conditions hold: resolved,
// cause filled, origin filled, not already archived, and the post-resolution
// cooldown elapsed. The conjunction is strict: a resolved incident with a
// blank cause stays unarchivable until an operator categorizes it.
func CanArchive(inc *domain.Incident, now time.Time) bool {
	return len(UnmetConditions(inc, now)) == 0
}

// UnmetConditions names every archival condition the incident currently
// fails, in a fixed order, for error messages and operator tooltips.
func UnmetConditions(inc *domain.Incident, now time.Time) []string {
	var unmet []string
	if inc.ResolvedAt == nil {
		unmet = append(unmet, "incident is not resolved")
	}
	if strings.TrimSpace(inc.Cause) == "" {
		unmet = append(unmet, "cause is not filled")
	}
	if strings.TrimSpace(inc.Origin) == "" {
		unmet = append(unmet, "origin is not filled")
	}
	if inc.IsArchived {
		unmet = append(unmet, "incident is already archived")
	}
	if inc.ResolvedAt != nil && now.Sub(*inc.ResolvedAt) < ArchiveCooldown {
		unmet = append(unmet, "less than 2 hours since resolution")
	}
	return unmet
}

// NotEligibleError reports a refused archival together with the conditions
// that blocked it.
type NotEligibleError struct {
	IncidentID string
	Unmet      []string
}

func (e *NotEligibleError) Error() string {
	return fmt.Sprintf("incident %s cannot be archived: %s", e.IncidentID, strings.Join(e.Unmet, "; "))
}

// NotArchivedError reports a restore attempt on an incident that is not
// archived.
type NotArchivedError struct {
	IncidentID string
}

func (e *NotArchivedError) Error() string {
	return fmt.Sprintf("incident %s is not archived", e.IncidentID)
}

// Archive returns a copy of the incident transitioned to the archived state.
// It fails with *NotEligibleError when any archival condition is unmet, which
// includes the already-archived case: Archive is deliberately not idempotent,
// callers needing idempotence must check IsArchived first.
func Archive(inc domain.Incident, actor string, now time.Time) (domain.Incident, error) {
	if unmet := UnmetConditions(&inc, now); len(unmet) > 0 {
		return inc, &NotEligibleError{IncidentID: inc.ID, Unmet: unmet}
	}
	archivedAt := now
	inc.IsArchived = true
	inc.ArchivedAt = &archivedAt
	inc.ArchivedBy = &actor
	inc.UpdatedBy = &actor
	return inc, nil
}

// Restore returns a copy of the incident with the archival triple cleared.
// Fails with *NotArchivedError when the incident is not archived.
func Restore(inc domain.Incident, actor string) (domain.Incident, error) {
	if !inc.IsArchived {
		return inc, &NotArchivedError{IncidentID: inc.ID}
	}
	inc.IsArchived = false
	inc.ArchivedAt = nil
	inc.ArchivedBy = nil
	inc.UpdatedBy = &actor
	return inc, nil
}
