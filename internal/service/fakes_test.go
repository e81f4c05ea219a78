package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/lifecycle"
	"github.com/spec-kit/incident-service/internal/repository"
	"github.com/spec-kit/incident-service/internal/search"
)

// fakeIncidentRepo is an in-memory IncidentRepository for service tests.
type fakeIncidentRepo struct {
	mu        sync.Mutex
	seq       int
	incidents map[string]*domain.Incident

	// archiveErr, when set for an ID, is returned by UpdateArchival.
	archiveErr map[string]error
}

func newFakeIncidentRepo() *fakeIncidentRepo {
	return &fakeIncidentRepo{
		incidents:  make(map[string]*domain.Incident),
		archiveErr: make(map[string]error),
	}
}

func (r *fakeIncidentRepo) Create(_ context.Context, inc *domain.Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inc.ID == "" {
		r.seq++
		inc.ID = "incident-" + strconv.Itoa(r.seq)
	}
	inc.CreatedAt = time.Now()
	inc.UpdatedAt = inc.CreatedAt
	clone := *inc
	r.incidents[inc.ID] = &clone
	return nil
}

func (r *fakeIncidentRepo) Update(_ context.Context, inc *domain.Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *inc
	r.incidents[inc.ID] = &clone
	return nil
}

func (r *fakeIncidentRepo) UpdateArchival(_ context.Context, inc *domain.Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.archiveErr[inc.ID]; ok {
		return err
	}
	stored, ok := r.incidents[inc.ID]
	if !ok || stored.IsArchived {
		return repository.ErrWriteConflict
	}
	clone := *inc
	r.incidents[inc.ID] = &clone
	return nil
}

func (r *fakeIncidentRepo) GetByID(_ context.Context, d domain.NetworkDomain, id string) (*domain.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inc, ok := r.incidents[id]
	if !ok || inc.Domain != d {
		return nil, pgx.ErrNoRows
	}
	clone := *inc
	return &clone, nil
}

func (r *fakeIncidentRepo) List(_ context.Context, d domain.NetworkDomain, params search.Params, now time.Time) ([]domain.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoffs := params.Status.CutoffsAt(now)
	var out []domain.Incident
	for _, inc := range r.incidents {
		if inc.Domain != d || inc.IsArchived {
			continue
		}
		if !cutoffs.Matches(inc) {
			continue
		}
		out = append(out, *inc)
	}
	return out, nil
}

func (r *fakeIncidentRepo) ListWindow(_ context.Context, d domain.NetworkDomain, from, to time.Time, _ int) ([]domain.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Incident
	for _, inc := range r.incidents {
		if inc.Domain != d || inc.OccurredAt.Before(from) || inc.OccurredAt.After(to) {
			continue
		}
		out = append(out, *inc)
	}
	return out, nil
}

func (r *fakeIncidentRepo) SweepCandidates(_ context.Context, d domain.NetworkDomain) ([]domain.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Incident
	for _, inc := range r.incidents {
		if inc.Domain != d || inc.IsArchived || !inc.IsResolved || inc.ResolvedAt == nil {
			continue
		}
		if strings.TrimSpace(inc.Cause) == "" || strings.TrimSpace(inc.Origin) == "" {
			continue
		}
		out = append(out, *inc)
	}
	return out, nil
}

func (r *fakeIncidentRepo) Count(ctx context.Context, d domain.NetworkDomain, params search.Params, now time.Time) (int, error) {
	listed, err := r.List(ctx, d, params, now)
	return len(listed), err
}

func (r *fakeIncidentRepo) Statistics(ctx context.Context, d domain.NetworkDomain, params search.Params, now time.Time) (search.Statistics, error) {
	filtered, err := r.List(ctx, d, params, now)
	if err != nil {
		return search.Statistics{}, err
	}
	stats := search.Statistics{Filtered: len(filtered)}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inc := range r.incidents {
		if inc.Domain != d || inc.IsArchived {
			continue
		}
		stats.Total++
		if inc.IsResolved {
			stats.Resolved++
		} else {
			stats.Active++
		}
	}
	return stats, nil
}

func (r *fakeIncidentRepo) SeverityCounts(_ context.Context, d domain.NetworkDomain, now time.Time) (int, int, int, int, int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total, active, newCount, lowCount, mediumCount, criticalCount int
	for _, inc := range r.incidents {
		if inc.Domain != d || inc.IsArchived {
			continue
		}
		total++
		if inc.IsResolved {
			continue
		}
		active++
		switch lifecycle.ClassifySeverity(inc.OccurredAt, inc.ResolvedAt, now) {
		case domain.SeverityNew:
			newCount++
		case domain.SeverityLow:
			lowCount++
		case domain.SeverityMedium:
			mediumCount++
		case domain.SeverityCritical:
			criticalCount++
		}
	}
	return total, active, newCount, lowCount, mediumCount, criticalCount, nil
}

// fakeAuditRepo collects audit entries in memory.
type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (r *fakeAuditRepo) Create(_ context.Context, entry *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) ListByObject(_ context.Context, d domain.NetworkDomain, objectID string, _ int) ([]domain.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AuditEntry
	for _, entry := range r.entries {
		if entry.Domain == d && entry.ObjectID == objectID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (r *fakeAuditRepo) actions() []domain.AuditAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuditAction, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, entry.Action)
	}
	return out
}

// fakeVocab serves fixed active values per category.
type fakeVocab struct {
	values map[string][]string
}

func (v *fakeVocab) ActiveValues(_ context.Context, category string) ([]string, error) {
	return v.values[category], nil
}

// eventRecorder captures published events.
type eventRecorder struct {
	mu     sync.Mutex
	events []string
}

func (r *eventRecorder) record(eventType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, eventType)
}

func (r *eventRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.events...)
}
