package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/search"
)

// ErrWriteConflict reports a lost compare-and-swap: the row changed between
// the eligibility check and the archival write. The sweeper treats it as that
// record's individual failure, never as a sweep-aborting error.
var ErrWriteConflict = errors.New("incident changed concurrently")

// SweepCandidate pre-filter: resolved, unarchived, categorized. The lifecycle
// engine re-validates every candidate with the full CanArchive check, so this
// predicate only has to be cheap, not authoritative.
const sweepCandidateClause = `
        is_resolved = TRUE AND is_archived = FALSE AND resolved_at IS NOT NULL
        AND cause IS NOT NULL AND btrim(cause) <> ''
        AND origin IS NOT NULL AND btrim(origin) <> ''`

// IncidentRepository encapsulates incident persistence across all domains.
type IncidentRepository interface {
	Create(ctx context.Context, inc *domain.Incident) error
	Update(ctx context.Context, inc *domain.Incident) error
	// UpdateArchival persists an archive transition with a compare-and-swap
	// on is_archived; returns ErrWriteConflict when the row was archived or
	// deleted concurrently.
	UpdateArchival(ctx context.Context, inc *domain.Incident) error
	GetByID(ctx context.Context, d domain.NetworkDomain, id string) (*domain.Incident, error)
	List(ctx context.Context, d domain.NetworkDomain, params search.Params, now time.Time) ([]domain.Incident, error)
	ListWindow(ctx context.Context, d domain.NetworkDomain, from, to time.Time, limit int) ([]domain.Incident, error)
	SweepCandidates(ctx context.Context, d domain.NetworkDomain) ([]domain.Incident, error)
	Count(ctx context.Context, d domain.NetworkDomain, params search.Params, now time.Time) (int, error)
	Statistics(ctx context.Context, d domain.NetworkDomain, params search.Params, now time.Time) (search.Statistics, error)
	SeverityCounts(ctx context.Context, d domain.NetworkDomain, now time.Time) (total, active int, newCount, lowCount, mediumCount, criticalCount int, err error)
}

type incidentRepository struct {
	pool *pgxpool.Pool
}

// NewIncidentRepository instantiates the Postgres-backed repository.
func NewIncidentRepository(pool *pgxpool.Pool) IncidentRepository {
	return &incidentRepository{pool: pool}
}

const incidentColumns = `
        id, domain, occurred_at, resolved_at, duration_minutes,
        cause, cause_other, origin, origin_other, notes,
        is_resolved, is_archived, archived_at, archived_by,
        correction_required, correction_note,
        created_by, updated_by, created_at, updated_at,
        region_loop, system_capacity, dot_extremity_a, extremity_a,
        dot_extremity_b, extremity_b, responsibility,
        do_wilaya, zone_metro, site, ip_address,
        platform, region_node, interconnect_type, platform_igw, link_label`

func (r *incidentRepository) Create(ctx context.Context, inc *domain.Incident) error {
	cols := flattenFields(inc)
	const query = `
        INSERT INTO incidents (
            id, domain, occurred_at, resolved_at, duration_minutes,
            cause, cause_other, origin, origin_other, notes,
            is_resolved, is_archived, archived_at, archived_by,
            correction_required, correction_note, created_by, updated_by,
            region_loop, system_capacity, dot_extremity_a, extremity_a,
            dot_extremity_b, extremity_b, responsibility,
            do_wilaya, zone_metro, site, ip_address,
            platform, region_node, interconnect_type, platform_igw, link_label)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,
                $19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33,$34)
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		inc.ID, inc.Domain, nullableTime(inc.OccurredAt), inc.ResolvedAt, inc.DurationMinutes,
		nullableString(inc.Cause), nullableString(inc.CauseOther),
		nullableString(inc.Origin), nullableString(inc.OriginOther), nullableString(inc.Notes),
		inc.IsResolved, inc.IsArchived, inc.ArchivedAt, inc.ArchivedBy,
		inc.CorrectionRequired, nullableString(inc.CorrectionNote), inc.CreatedBy, inc.UpdatedBy,
		cols.regionLoop, cols.systemCapacity, cols.dotExtremityA, cols.extremityA,
		cols.dotExtremityB, cols.extremityB, cols.responsibility,
		cols.doWilaya, cols.zoneMetro, cols.site, cols.ipAddress,
		cols.platform, cols.regionNode, cols.interconnectType, cols.platformIGW, cols.linkLabel,
	).Scan(&inc.CreatedAt, &inc.UpdatedAt)
}

func (r *incidentRepository) Update(ctx context.Context, inc *domain.Incident) error {
	cols := flattenFields(inc)
	const query = `
        UPDATE incidents SET
            occurred_at=$1, resolved_at=$2, duration_minutes=$3,
            cause=$4, cause_other=$5, origin=$6, origin_other=$7, notes=$8,
            is_resolved=$9, is_archived=$10, archived_at=$11, archived_by=$12,
            correction_required=$13, correction_note=$14, updated_by=$15,
            region_loop=$16, system_capacity=$17, dot_extremity_a=$18, extremity_a=$19,
            dot_extremity_b=$20, extremity_b=$21, responsibility=$22,
            do_wilaya=$23, zone_metro=$24, site=$25, ip_address=$26,
            platform=$27, region_node=$28, interconnect_type=$29, platform_igw=$30,
            link_label=$31, updated_at=NOW()
        WHERE id=$32 AND domain=$33`
	cmd, err := r.pool.Exec(ctx, query,
		nullableTime(inc.OccurredAt), inc.ResolvedAt, inc.DurationMinutes,
		nullableString(inc.Cause), nullableString(inc.CauseOther),
		nullableString(inc.Origin), nullableString(inc.OriginOther), nullableString(inc.Notes),
		inc.IsResolved, inc.IsArchived, inc.ArchivedAt, inc.ArchivedBy,
		inc.CorrectionRequired, nullableString(inc.CorrectionNote), inc.UpdatedBy,
		cols.regionLoop, cols.systemCapacity, cols.dotExtremityA, cols.extremityA,
		cols.dotExtremityB, cols.extremityB, cols.responsibility,
		cols.doWilaya, cols.zoneMetro, cols.site, cols.ipAddress,
		cols.platform, cols.regionNode, cols.interconnectType, cols.platformIGW, cols.linkLabel,
		inc.ID, inc.Domain,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *incidentRepository) UpdateArchival(ctx context.Context, inc *domain.Incident) error {
	const query = `
        UPDATE incidents SET is_archived=TRUE, archived_at=$1, archived_by=$2,
            updated_by=$3, updated_at=NOW()
        WHERE id=$4 AND is_archived=FALSE`
	cmd, err := r.pool.Exec(ctx, query, inc.ArchivedAt, inc.ArchivedBy, inc.UpdatedBy, inc.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrWriteConflict
	}
	return nil
}

func (r *incidentRepository) GetByID(ctx context.Context, d domain.NetworkDomain, id string) (*domain.Incident, error) {
	query := fmt.Sprintf(`SELECT %s FROM incidents WHERE id=$1 AND domain=$2`, incidentColumns)
	row := r.pool.QueryRow(ctx, query, id, d)
	inc, err := scanIncident(row)
	if err != nil {
		return nil, err
	}
	return inc, nil
}

func (r *incidentRepository) List(ctx context.Context, d domain.NetworkDomain, params search.Params, now time.Time) ([]domain.Incident, error) {
	clauses, args := buildFilter(d, params, now)
	query := fmt.Sprintf(`SELECT %s FROM incidents WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		incidentColumns, strings.Join(clauses, " AND "), orderBy(params.Sort), params.Limit, params.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIncidents(rows)
}

func (r *incidentRepository) ListWindow(ctx context.Context, d domain.NetworkDomain, from, to time.Time, limit int) ([]domain.Incident, error) {
	if limit <= 0 {
		limit = 10000
	}
	query := fmt.Sprintf(`SELECT %s FROM incidents
        WHERE domain=$1 AND occurred_at >= $2 AND occurred_at <= $3
        ORDER BY occurred_at DESC LIMIT %d`, incidentColumns, limit)
	rows, err := r.pool.Query(ctx, query, d, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIncidents(rows)
}

func (r *incidentRepository) SweepCandidates(ctx context.Context, d domain.NetworkDomain) ([]domain.Incident, error) {
	query := fmt.Sprintf(`SELECT %s FROM incidents WHERE domain=$1 AND %s ORDER BY resolved_at`,
		incidentColumns, sweepCandidateClause)
	rows, err := r.pool.Query(ctx, query, d)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIncidents(rows)
}

func (r *incidentRepository) Count(ctx context.Context, d domain.NetworkDomain, params search.Params, now time.Time) (int, error) {
	clauses, args := buildFilter(d, params, now)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM incidents WHERE %s`, strings.Join(clauses, " AND "))
	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Statistics computes total/filtered/active/resolved via aggregate counts,
// never materializing record lists.
func (r *incidentRepository) Statistics(ctx context.Context, d domain.NetworkDomain, params search.Params, now time.Time) (search.Statistics, error) {
	var stats search.Statistics

	clauses, args := buildFilter(d, params, now)
	where := strings.Join(clauses, " AND ")
	query := fmt.Sprintf(`
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE resolved_at IS NULL),
               COUNT(*) FILTER (WHERE resolved_at IS NOT NULL)
        FROM incidents WHERE %s`, where)
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&stats.Filtered, &stats.Active, &stats.Resolved); err != nil {
		return stats, err
	}

	const totalQuery = `SELECT COUNT(*) FROM incidents WHERE domain=$1 AND is_archived=FALSE`
	if err := r.pool.QueryRow(ctx, totalQuery, d).Scan(&stats.Total); err != nil {
		return stats, err
	}
	return stats, nil
}

// SeverityCounts returns the unarchived totals plus the active breakdown by
// severity tier, computed with the same occurred_at cutoffs the search
// buckets use.
func (r *incidentRepository) SeverityCounts(ctx context.Context, d domain.NetworkDomain, now time.Time) (total, active, newCount, lowCount, mediumCount, criticalCount int, err error) {
	newCut := search.BucketNew.CutoffsAt(now)
	lowCut := search.BucketLow.CutoffsAt(now)
	mediumCut := search.BucketMedium.CutoffsAt(now)

	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE resolved_at IS NULL),
               COUNT(*) FILTER (WHERE resolved_at IS NULL AND occurred_at > $2),
               COUNT(*) FILTER (WHERE resolved_at IS NULL AND occurred_at > $3 AND occurred_at <= $2),
               COUNT(*) FILTER (WHERE resolved_at IS NULL AND occurred_at > $4 AND occurred_at <= $3),
               COUNT(*) FILTER (WHERE resolved_at IS NULL AND occurred_at <= $4)
        FROM incidents WHERE domain=$1 AND is_archived=FALSE`
	err = r.pool.QueryRow(ctx, query, d,
		*newCut.OccurredAfter, *lowCut.OccurredAfter, *mediumCut.OccurredAfter,
	).Scan(&total, &active, &newCount, &lowCount, &mediumCount, &criticalCount)
	return total, active, newCount, lowCount, mediumCount, criticalCount, err
}

// buildFilter renders a search.Params bag into WHERE clauses. Column names
// come only from whitelists, never from user input.
func buildFilter(d domain.NetworkDomain, params search.Params, now time.Time) ([]string, []any) {
	clauses := []string{"domain=$1", "is_archived=FALSE"}
	args := []any{d}

	cutoffs := params.Status.CutoffsAt(now)
	if cutoffs.Resolved != nil {
		if *cutoffs.Resolved {
			clauses = append(clauses, "resolved_at IS NOT NULL")
		} else {
			clauses = append(clauses, "resolved_at IS NULL")
		}
	}
	if cutoffs.OccurredAfter != nil {
		args = append(args, *cutoffs.OccurredAfter)
		clauses = append(clauses, fmt.Sprintf("occurred_at > $%d", len(args)))
	}
	if cutoffs.OccurredBefore != nil {
		args = append(args, *cutoffs.OccurredBefore)
		clauses = append(clauses, fmt.Sprintf("occurred_at <= $%d", len(args)))
	}

	if params.DateFrom != nil {
		args = append(args, *params.DateFrom)
		clauses = append(clauses, fmt.Sprintf("occurred_at >= $%d", len(args)))
	}
	if params.DateTo != nil {
		args = append(args, *params.DateTo)
		clauses = append(clauses, fmt.Sprintf("occurred_at <= $%d", len(args)))
	}
	if params.Cause != "" {
		args = append(args, params.Cause)
		clauses = append(clauses, fmt.Sprintf("cause=$%d", len(args)))
	}
	if params.Origin != "" {
		args = append(args, params.Origin)
		clauses = append(clauses, fmt.Sprintf("origin=$%d", len(args)))
	}
	for _, field := range search.FilterableFields(d) {
		value, ok := params.Fields[field]
		if !ok {
			continue
		}
		args = append(args, "%"+strings.ToLower(value)+"%")
		clauses = append(clauses, fmt.Sprintf("LOWER(%s) LIKE $%d", field, len(args)))
	}
	if params.Query != "" {
		searchArg := "%" + strings.ToLower(params.Query) + "%"
		args = append(args, searchArg)
		placeholder := fmt.Sprintf("$%d", len(args))
		fields := append([]string{
			"id::text", "cause", "origin", "notes", "created_by",
		}, search.FilterableFields(d)...)
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			parts = append(parts, fmt.Sprintf("LOWER(COALESCE(%s, '')) LIKE %s", f, placeholder))
		}
		clauses = append(clauses, "("+strings.Join(parts, " OR ")+")")
	}
	return clauses, args
}

func orderBy(sort search.Sort) string {
	field := sort.Field
	if field == "" {
		field = search.DefaultSort.Field
	}
	direction := "ASC"
	if sort.Descending {
		direction = "DESC"
	}
	return fmt.Sprintf("%s %s NULLS LAST", field, direction)
}

// domainColumns is the flattened nullable-column view of the five field bags.
type domainColumns struct {
	regionLoop, systemCapacity                *string
	dotExtremityA, extremityA                 *string
	dotExtremityB, extremityB, responsibility *string
	doWilaya, zoneMetro, site, ipAddress      *string
	platform, regionNode                      *string
	interconnectType, platformIGW, linkLabel  *string
}

func flattenFields(inc *domain.Incident) domainColumns {
	var cols domainColumns
	switch {
	case inc.Transport != nil:
		t := inc.Transport
		cols.regionLoop = nullableString(t.RegionLoop)
		cols.systemCapacity = nullableString(t.SystemCapacity)
		cols.dotExtremityA = nullableString(t.DotExtremityA)
		cols.extremityA = nullableString(t.ExtremityA)
		cols.dotExtremityB = nullableString(t.DotExtremityB)
		cols.extremityB = nullableString(t.ExtremityB)
		cols.responsibility = nullableString(t.Responsibility)
	case inc.FileAccess != nil:
		f := inc.FileAccess
		cols.doWilaya = nullableString(f.DoWilaya)
		cols.zoneMetro = nullableString(f.ZoneMetro)
		cols.site = nullableString(f.Site)
		cols.ipAddress = nullableString(f.IPAddress)
	case inc.RadioAccess != nil:
		ra := inc.RadioAccess
		cols.doWilaya = nullableString(ra.DoWilaya)
		cols.site = nullableString(ra.Site)
		cols.ipAddress = nullableString(ra.IPAddress)
	case inc.Core != nil:
		c := inc.Core
		cols.platform = nullableString(c.Platform)
		cols.regionNode = nullableString(c.RegionNode)
		cols.site = nullableString(c.Site)
		cols.dotExtremityA = nullableString(c.DotExtremityA)
		cols.extremityA = nullableString(c.ExtremityA)
		cols.dotExtremityB = nullableString(c.DotExtremityB)
		cols.extremityB = nullableString(c.ExtremityB)
	case inc.Backbone != nil:
		b := inc.Backbone
		cols.interconnectType = nullableString(b.InterconnectType)
		cols.platformIGW = nullableString(b.PlatformIGW)
		cols.linkLabel = nullableString(b.LinkLabel)
	}
	return cols
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIncident(row rowScanner) (*domain.Incident, error) {
	var (
		inc        domain.Incident
		occurredAt *time.Time
		cause, causeOther, origin, originOther, notes, correctionNote *string
		cols       domainColumns
	)
	if err := row.Scan(
		&inc.ID, &inc.Domain, &occurredAt, &inc.ResolvedAt, &inc.DurationMinutes,
		&cause, &causeOther, &origin, &originOther, &notes,
		&inc.IsResolved, &inc.IsArchived, &inc.ArchivedAt, &inc.ArchivedBy,
		&inc.CorrectionRequired, &correctionNote,
		&inc.CreatedBy, &inc.UpdatedBy, &inc.CreatedAt, &inc.UpdatedAt,
		&cols.regionLoop, &cols.systemCapacity, &cols.dotExtremityA, &cols.extremityA,
		&cols.dotExtremityB, &cols.extremityB, &cols.responsibility,
		&cols.doWilaya, &cols.zoneMetro, &cols.site, &cols.ipAddress,
		&cols.platform, &cols.regionNode, &cols.interconnectType, &cols.platformIGW, &cols.linkLabel,
	); err != nil {
		return nil, err
	}
	if occurredAt != nil {
		inc.OccurredAt = *occurredAt
	}
	inc.Cause = deref(cause)
	inc.CauseOther = deref(causeOther)
	inc.Origin = deref(origin)
	inc.OriginOther = deref(originOther)
	inc.Notes = deref(notes)
	inc.CorrectionNote = deref(correctionNote)
	attachFields(&inc, cols)
	return &inc, nil
}

func attachFields(inc *domain.Incident, cols domainColumns) {
	switch inc.Domain {
	case domain.DomainTransport:
		inc.Transport = &domain.TransportFields{
			RegionLoop:     deref(cols.regionLoop),
			SystemCapacity: deref(cols.systemCapacity),
			DotExtremityA:  deref(cols.dotExtremityA),
			ExtremityA:     deref(cols.extremityA),
			DotExtremityB:  deref(cols.dotExtremityB),
			ExtremityB:     deref(cols.extremityB),
			Responsibility: deref(cols.responsibility),
		}
	case domain.DomainFileAccess:
		inc.FileAccess = &domain.FileAccessFields{
			DoWilaya:  deref(cols.doWilaya),
			ZoneMetro: deref(cols.zoneMetro),
			Site:      deref(cols.site),
			IPAddress: deref(cols.ipAddress),
		}
	case domain.DomainRadioAccess:
		inc.RadioAccess = &domain.RadioAccessFields{
			DoWilaya:  deref(cols.doWilaya),
			Site:      deref(cols.site),
			IPAddress: deref(cols.ipAddress),
		}
	case domain.DomainCore:
		inc.Core = &domain.CoreFields{
			Platform:      deref(cols.platform),
			RegionNode:    deref(cols.regionNode),
			Site:          deref(cols.site),
			DotExtremityA: deref(cols.dotExtremityA),
			ExtremityA:    deref(cols.extremityA),
			DotExtremityB: deref(cols.dotExtremityB),
			ExtremityB:    deref(cols.extremityB),
		}
	case domain.DomainBackboneInternet:
		inc.Backbone = &domain.BackboneFields{
			InterconnectType: deref(cols.interconnectType),
			PlatformIGW:      deref(cols.platformIGW),
			LinkLabel:        deref(cols.linkLabel),
		}
	}
}

func scanIncidents(rows pgx.Rows) ([]domain.Incident, error) {
	var result []domain.Incident
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *inc)
	}
	return result, rows.Err()
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
