package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/incident-service/internal/domain"
)

// SavedSearchRepository persists per-user search preferences. Params is
// stored as JSONB and round-trips through pgx's map encoding.
type SavedSearchRepository interface {
	Create(ctx context.Context, s *domain.SavedSearch) error
	Update(ctx context.Context, s *domain.SavedSearch) error
	Delete(ctx context.Context, ownerID, id string) error
	GetByID(ctx context.Context, ownerID, id string) (*domain.SavedSearch, error)
	ListByOwner(ctx context.Context, ownerID string, d domain.NetworkDomain) ([]domain.SavedSearch, error)
	IncrementUseCount(ctx context.Context, id string) error
	ClearDefault(ctx context.Context, ownerID string, d domain.NetworkDomain) error
}

type savedSearchRepository struct {
	pool *pgxpool.Pool
}

// NewSavedSearchRepository returns a Postgres-backed implementation.
func NewSavedSearchRepository(pool *pgxpool.Pool) SavedSearchRepository {
	return &savedSearchRepository{pool: pool}
}

func (r *savedSearchRepository) Create(ctx context.Context, s *domain.SavedSearch) error {
	const query = `
        INSERT INTO saved_searches (owner_id, name, domain, params, is_default)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, use_count, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		s.OwnerID,
		s.Name,
		s.Domain,
		s.Params,
		s.IsDefault,
	).Scan(&s.ID, &s.UseCount, &s.CreatedAt, &s.UpdatedAt)
}

func (r *savedSearchRepository) Update(ctx context.Context, s *domain.SavedSearch) error {
	const query = `
        UPDATE saved_searches SET name=$1, params=$2, is_default=$3, updated_at=NOW()
        WHERE id=$4 AND owner_id=$5`
	cmd, err := r.pool.Exec(ctx, query, s.Name, s.Params, s.IsDefault, s.ID, s.OwnerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *savedSearchRepository) Delete(ctx context.Context, ownerID, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM saved_searches WHERE id=$1 AND owner_id=$2`, id, ownerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *savedSearchRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.SavedSearch, error) {
	const query = `
        SELECT id, owner_id, name, domain, params, is_default, use_count, created_at, updated_at
        FROM saved_searches WHERE id=$1 AND owner_id=$2`
	var s domain.SavedSearch
	if err := r.pool.QueryRow(ctx, query, id, ownerID).Scan(
		&s.ID,
		&s.OwnerID,
		&s.Name,
		&s.Domain,
		&s.Params,
		&s.IsDefault,
		&s.UseCount,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *savedSearchRepository) ListByOwner(ctx context.Context, ownerID string, d domain.NetworkDomain) ([]domain.SavedSearch, error) {
	const query = `
        SELECT id, owner_id, name, domain, params, is_default, use_count, created_at, updated_at
        FROM saved_searches WHERE owner_id=$1 AND domain=$2
        ORDER BY is_default DESC, name`
	rows, err := r.pool.Query(ctx, query, ownerID, d)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SavedSearch
	for rows.Next() {
		var s domain.SavedSearch
		if err := rows.Scan(
			&s.ID,
			&s.OwnerID,
			&s.Name,
			&s.Domain,
			&s.Params,
			&s.IsDefault,
			&s.UseCount,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *savedSearchRepository) IncrementUseCount(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE saved_searches SET use_count = use_count + 1 WHERE id=$1`, id)
	return err
}

func (r *savedSearchRepository) ClearDefault(ctx context.Context, ownerID string, d domain.NetworkDomain) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE saved_searches SET is_default=FALSE WHERE owner_id=$1 AND domain=$2 AND is_default=TRUE`,
		ownerID, d)
	return err
}
