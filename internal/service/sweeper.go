package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/events"
	"github.com/spec-kit/incident-service/internal/lifecycle"
	"github.com/spec-kit/incident-service/internal/repository"
)

// SweepReport summarizes one archival sweep run.
type SweepReport struct {
	Checked  int            `json:"checked"`
	Archived int            `json:"archived"`
	ByDomain map[string]int `json:"by_domain"`
	Errors   []string       `json:"errors,omitempty"`
	RanAt    time.Time      `json:"ran_at"`
}

// Sweeper archives every eligible resolved incident on behalf of the
// system user. Individual failures never abort the rest of the run.
type Sweeper struct {
	incidents  repository.IncidentRepository
	audits     repository.AuditRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// SweeperDependencies bundles requirements for the sweeper.
type SweeperDependencies struct {
	IncidentRepo repository.IncidentRepository
	AuditRepo    repository.AuditRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	Now          func() time.Time
}

// NewSweeper constructs the sweeper.
func NewSweeper(deps SweeperDependencies) *Sweeper {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{
		incidents:  deps.IncidentRepo,
		audits:     deps.AuditRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        now,
	}
}

// Run sweeps all five network domains once. The repository pre-filters on
// the persisted conditions; the cooldown is re-checked here so candidates
// resolved less than two hours ago are skipped, not failed.
func (s *Sweeper) Run(ctx context.Context) (SweepReport, error) {
	report := SweepReport{
		ByDomain: make(map[string]int),
		RanAt:    s.now(),
	}

	for _, d := range domain.AllDomains() {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		candidates, err := s.incidents.SweepCandidates(ctx, d)
		if err != nil {
			report.Errors = append(report.Errors, string(d)+": "+err.Error())
			s.logger.Error("sweep: listing candidates failed", zap.String("domain", string(d)), zap.Error(err))
			continue
		}

		for i := range candidates {
			report.Checked++
			now := s.now()
			if !lifecycle.CanArchive(&candidates[i], now) {
				continue
			}

			archived, err := lifecycle.Archive(candidates[i], domain.SystemArchivalUsername, now)
			if err != nil {
				report.Errors = append(report.Errors, candidates[i].ID+": "+err.Error())
				continue
			}
			if err := s.incidents.UpdateArchival(ctx, &archived); err != nil {
				if errors.Is(err, repository.ErrWriteConflict) {
					// already archived by a concurrent sweep or operator
					continue
				}
				report.Errors = append(report.Errors, archived.ID+": "+err.Error())
				s.logger.Error("sweep: archival write failed", zap.String("incident_id", archived.ID), zap.Error(err))
				continue
			}

			report.Archived++
			report.ByDomain[string(d)]++
			s.recordAudit(ctx, &archived)
		}
	}

	s.logger.Info("archival sweep completed",
		zap.Int("checked", report.Checked),
		zap.Int("archived", report.Archived),
		zap.Int("errors", len(report.Errors)))

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventSweepCompleted,
			Actor:     events.Actor{Username: domain.SystemArchivalUsername},
			Timestamp: report.RanAt,
			Payload: events.SweepCompletedPayload{
				Checked:  report.Checked,
				Archived: report.Archived,
				ByDomain: report.ByDomain,
				Errors:   len(report.Errors),
			},
		})
	}
	return report, nil
}

func (s *Sweeper) recordAudit(ctx context.Context, inc *domain.Incident) {
	if s.audits == nil {
		return
	}
	_ = s.audits.Create(ctx, &domain.AuditEntry{
		Action:   domain.AuditActionArchive,
		Domain:   inc.Domain,
		ObjectID: inc.ID,
		Changes:  map[string]any{"archived_by": domain.SystemArchivalUsername},
		At:       s.now(),
	})
}
