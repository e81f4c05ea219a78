package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/incident-service/internal/domain"
)

// AuditRepository appends to and reads the change trail.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
	ListByObject(ctx context.Context, d domain.NetworkDomain, objectID string, limit int) ([]domain.AuditEntry, error)
}

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository returns a Postgres-backed implementation.
func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	const query = `
        INSERT INTO audit_log (user_id, action, domain, object_id, changes)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, at`
	return r.pool.QueryRow(ctx, query,
		entry.UserID,
		entry.Action,
		entry.Domain,
		entry.ObjectID,
		entry.Changes,
	).Scan(&entry.ID, &entry.At)
}

func (r *auditRepository) ListByObject(ctx context.Context, d domain.NetworkDomain, objectID string, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	const query = `
        SELECT id, user_id, action, domain, object_id, changes, at
        FROM audit_log WHERE domain=$1 AND object_id=$2
        ORDER BY at DESC LIMIT $3`
	rows, err := r.pool.Query(ctx, query, d, objectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Action,
			&entry.Domain,
			&entry.ObjectID,
			&entry.Changes,
			&entry.At,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
