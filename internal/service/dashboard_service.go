package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/incident-service/internal/analytics"
	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/events"
	"github.com/spec-kit/incident-service/internal/observability"
	"github.com/spec-kit/incident-service/internal/persistence"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

// DashboardSnapshot aggregates the analytics shown for one network domain.
type DashboardSnapshot struct {
	Domain        string                  `json:"domain"`
	GeneratedAt   time.Time               `json:"generated_at"`
	WindowDays    int                     `json:"window_days"`
	Total         int                     `json:"total"`
	Active        int                     `json:"active"`
	Resolved      int                     `json:"resolved"`
	ActivePct     float64                 `json:"active_percentage"`
	ResolvedPct   float64                 `json:"resolved_percentage"`
	SeverityNew   int                     `json:"severity_new"`
	SeverityLow   int                     `json:"severity_low"`
	SeverityMed   int                     `json:"severity_medium"`
	SeverityCrit  int                     `json:"severity_critical"`
	MTTRMinutes   float64                 `json:"mttr_minutes"`
	MTTRDisplay   string                  `json:"mttr_display"`
	HealthScore   int                     `json:"health_score"`
	HealthLabel   string                  `json:"health_label"`
	DailyTrend    []analytics.DayCount    `json:"daily_trend"`
	HourlyDist    [24]int                 `json:"hourly_distribution"`
	WeekdayDist   [7]int                  `json:"weekday_distribution"`
	ResolutionHst []analytics.BucketCount `json:"resolution_histogram"`
	TopCauses     []analytics.ValueCount  `json:"top_causes"`
	TopOrigins    []analytics.ValueCount  `json:"top_origins"`
	Peak          analytics.PeakSummary   `json:"peak"`
}

// DashboardService assembles per-domain analytics with a Redis cache in
// front of the computation.
type DashboardService struct {
	incidents repository.IncidentRepository
	cache     *persistence.Redis
	metrics   *observability.Metrics
	logger    *zap.Logger
	ttl       time.Duration
	trendDays int
	loc       *time.Location
	now       func() time.Time
}

// DashboardDependencies bundles requirements for the dashboard service.
type DashboardDependencies struct {
	IncidentRepo repository.IncidentRepository
	Cache        *persistence.Redis
	Metrics      *observability.Metrics
	Logger       *zap.Logger
	CacheTTL     time.Duration
	TrendDays    int
	Location     *time.Location
	Now          func() time.Time
}

// NewDashboardService constructs the service.
func NewDashboardService(deps DashboardDependencies) *DashboardService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	trendDays := deps.TrendDays
	if trendDays <= 0 {
		trendDays = 30
	}
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{
		incidents: deps.IncidentRepo,
		cache:     deps.Cache,
		metrics:   deps.Metrics,
		logger:    logger,
		ttl:       deps.CacheTTL,
		trendDays: trendDays,
		loc:       loc,
		now:       now,
	}
}

// Snapshot returns the dashboard for one domain, served from cache when a
// fresh entry exists.
func (s *DashboardService) Snapshot(ctx context.Context, d domain.NetworkDomain) (*DashboardSnapshot, error) {
	if !d.Valid() {
		return nil, apperrors.NewValidationError("unknown network domain", map[string]any{"domain": string(d)})
	}

	key := "dashboard:" + string(d)
	if cached := s.fromCache(ctx, key); cached != nil {
		return cached, nil
	}

	snapshot, err := s.compute(ctx, d)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, key, snapshot)
	return snapshot, nil
}

// RegisterHandlers subscribes cache invalidation to incident mutations so
// dashboards never serve a stale snapshot past one write.
func (s *DashboardService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	handler := func(ctx context.Context, event events.Event) error {
		s.Invalidate(ctx, domain.NetworkDomain(event.Domain))
		return nil
	}
	dispatcher.Subscribe(events.EventIncidentCreated, handler)
	dispatcher.Subscribe(events.EventIncidentUpdated, handler)
	dispatcher.Subscribe(events.EventIncidentResolved, handler)
	dispatcher.Subscribe(events.EventIncidentArchived, handler)
	dispatcher.Subscribe(events.EventIncidentRestored, handler)
	dispatcher.Subscribe(events.EventSweepCompleted, func(ctx context.Context, event events.Event) error {
		payload, ok := event.Payload.(events.SweepCompletedPayload)
		if !ok {
			return nil
		}
		for name, archived := range payload.ByDomain {
			if archived > 0 {
				s.Invalidate(ctx, domain.NetworkDomain(name))
			}
		}
		return nil
	})
}

// Invalidate drops the cached snapshot for one domain.
func (s *DashboardService) Invalidate(ctx context.Context, d domain.NetworkDomain) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	if err := s.cache.Client.Del(ctx, "dashboard:"+string(d)).Err(); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.String("domain", string(d)), zap.Error(err))
	}
}

func (s *DashboardService) compute(ctx context.Context, d domain.NetworkDomain) (*DashboardSnapshot, error) {
	now := s.now()
	since := now.AddDate(0, 0, -s.trendDays)

	records, err := s.incidents.ListWindow(ctx, d, since, now, 0)
	if err != nil {
		return nil, err
	}
	total, active, newCount, lowCount, mediumCount, criticalCount, err := s.incidents.SeverityCounts(ctx, d, now)
	if err != nil {
		return nil, err
	}

	counts := analytics.SeverityCounts{
		New:      newCount,
		Low:      lowCount,
		Medium:   mediumCount,
		Critical: criticalCount,
	}
	score := analytics.HealthScore(total, active, counts)
	mttr := analytics.MTTR(records, since)

	resolved := total - active
	var activePct, resolvedPct float64
	if total > 0 {
		activePct = float64(active) / float64(total) * 100
		resolvedPct = float64(resolved) / float64(total) * 100
	}

	return &DashboardSnapshot{
		Domain:        string(d),
		GeneratedAt:   now,
		WindowDays:    s.trendDays,
		Total:         total,
		Active:        active,
		Resolved:      resolved,
		ActivePct:     activePct,
		ResolvedPct:   resolvedPct,
		SeverityNew:   newCount,
		SeverityLow:   lowCount,
		SeverityMed:   mediumCount,
		SeverityCrit:  criticalCount,
		MTTRMinutes:   mttr.Minutes,
		MTTRDisplay:   mttr.Format(),
		HealthScore:   score,
		HealthLabel:   analytics.HealthLabel(score),
		DailyTrend:    analytics.DailyTrend(records, s.trendDays, now, s.loc),
		HourlyDist:    analytics.HourlyDistribution(records, s.trendDays, now, s.loc),
		WeekdayDist:   analytics.DayOfWeekDistribution(records, s.trendDays, now, s.loc),
		ResolutionHst: analytics.ResolutionTimeBuckets(records),
		TopCauses:     analytics.CauseDistribution(records, 10),
		TopOrigins:    analytics.OriginDistribution(records, 10),
		Peak:          analytics.PeakAnalysis(records, s.trendDays, now, s.loc),
	}, nil
}

func (s *DashboardService) fromCache(ctx context.Context, key string) *DashboardSnapshot {
	if s.cache == nil || s.cache.Client == nil || s.ttl <= 0 {
		return nil
	}
	raw, err := s.cache.Client.Get(ctx, key).Bytes()
	if err != nil {
		s.metrics.RecordCacheHit(false)
		return nil
	}
	var snapshot DashboardSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		s.metrics.RecordCacheHit(false)
		return nil
	}
	s.metrics.RecordCacheHit(true)
	return &snapshot
}

func (s *DashboardService) toCache(ctx context.Context, key string, snapshot *DashboardSnapshot) {
	if s.cache == nil || s.cache.Client == nil || s.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	if err := s.cache.Client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}
