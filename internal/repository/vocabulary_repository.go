package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/incident-service/internal/domain"
)

// VocabularyRepository manages admin-configured dropdown values.
type VocabularyRepository interface {
	Create(ctx context.Context, entry *domain.DropdownConfiguration) error
	Update(ctx context.Context, entry *domain.DropdownConfiguration) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.DropdownConfiguration, error)
	ListByCategory(ctx context.Context, category string, activeOnly bool) ([]domain.DropdownConfiguration, error)
}

type vocabularyRepository struct {
	pool *pgxpool.Pool
}

// NewVocabularyRepository returns a Postgres-backed implementation.
func NewVocabularyRepository(pool *pgxpool.Pool) VocabularyRepository {
	return &vocabularyRepository{pool: pool}
}

func (r *vocabularyRepository) Create(ctx context.Context, entry *domain.DropdownConfiguration) error {
	const query = `
        INSERT INTO dropdown_configurations (category, value, is_active, sort_order)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		entry.Category,
		entry.Value,
		entry.IsActive,
		entry.SortOrder,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
}

func (r *vocabularyRepository) Update(ctx context.Context, entry *domain.DropdownConfiguration) error {
	const query = `
        UPDATE dropdown_configurations SET category=$1, value=$2, is_active=$3, sort_order=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query, entry.Category, entry.Value, entry.IsActive, entry.SortOrder, entry.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *vocabularyRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM dropdown_configurations WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *vocabularyRepository) GetByID(ctx context.Context, id string) (*domain.DropdownConfiguration, error) {
	const query = `
        SELECT id, category, value, is_active, sort_order, created_at, updated_at
        FROM dropdown_configurations WHERE id=$1`
	var entry domain.DropdownConfiguration
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&entry.ID,
		&entry.Category,
		&entry.Value,
		&entry.IsActive,
		&entry.SortOrder,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *vocabularyRepository) ListByCategory(ctx context.Context, category string, activeOnly bool) ([]domain.DropdownConfiguration, error) {
	query := `
        SELECT id, category, value, is_active, sort_order, created_at, updated_at
        FROM dropdown_configurations WHERE category=$1`
	if activeOnly {
		query += ` AND is_active=TRUE`
	}
	query += ` ORDER BY sort_order, value`

	rows, err := r.pool.Query(ctx, query, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.DropdownConfiguration
	for rows.Next() {
		var entry domain.DropdownConfiguration
		if err := rows.Scan(
			&entry.ID,
			&entry.Category,
			&entry.Value,
			&entry.IsActive,
			&entry.SortOrder,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
