package postgres

import (
	"context"
	"fmt"

	"github.com/elchinm/attendance-gate/internal/database"
)

// AllowListRepository provides PostgreSQL-backed phone allow-list storage.
type AllowListRepository struct {
	pool *Pool
}

// NewAllowListRepository creates a new PostgreSQL allow-list repository.
func NewAllowListRepository(pool *Pool) *AllowListRepository {
	return &AllowListRepository{pool: pool}
}

// IsAllowed checks a normalized phone against the allow-list.
func (r *AllowListRepository) IsAllowed(ctx context.Context, phone string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM allowed_phones WHERE phone = $1)`, phone,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check allowed phone: %w", err)
	}
	return exists, nil
}

// Add inserts a normalized phone.
func (r *AllowListRepository) Add(ctx context.Context, phone string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO allowed_phones (phone) VALUES ($1) RETURNING id`, phone,
	).Scan(&id)
	if isUniqueViolation(err) {
		return 0, database.ErrDuplicate
	}
	if err != nil {
		return 0, fmt.Errorf("insert allowed phone: %w", err)
	}
	return id, nil
}

// List returns entries ordered newest first.
func (r *AllowListRepository) List(ctx context.Context, limit int) ([]database.AllowedPhone, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, phone, created_at FROM allowed_phones ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query allowed phones: %w", err)
	}
	defer rows.Close()

	var phones []database.AllowedPhone
	for rows.Next() {
		var p database.AllowedPhone
		if err := rows.Scan(&p.ID, &p.Phone, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan allowed phone: %w", err)
		}
		phones = append(phones, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate allowed phones: %w", err)
	}
	return phones, nil
}

// Remove deletes an entry by ID.
func (r *AllowListRepository) Remove(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM allowed_phones WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete allowed phone: %w", err)
	}
	return requireRow(result)
}

var _ database.AllowListStore = (*AllowListRepository)(nil)
