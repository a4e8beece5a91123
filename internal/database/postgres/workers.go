package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/elchinm/attendance-gate/internal/database"
	"github.com/elchinm/attendance-gate/internal/facematch"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// isUniqueViolation reports whether the error is a PostgreSQL unique
// constraint violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// WorkerRepository provides PostgreSQL-backed worker storage.
type WorkerRepository struct {
	pool *Pool
}

// NewWorkerRepository creates a new PostgreSQL worker repository.
func NewWorkerRepository(pool *Pool) *WorkerRepository {
	return &WorkerRepository{pool: pool}
}

const workerColumns = `id, name, surname, role, active, ref_descriptor::text, ref_image_path, created_at`

func scanWorker(row interface{ Scan(...any) error }) (*database.Worker, error) {
	var w database.Worker
	var descriptor sql.NullString
	err := row.Scan(&w.ID, &w.Name, &w.Surname, &w.Role, &w.Active, &descriptor, &w.RefImagePath, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	if descriptor.Valid {
		var vec pgvector.Vector
		if err := vec.Scan(descriptor.String); err != nil {
			return nil, fmt.Errorf("parse reference descriptor: %w", err)
		}
		w.RefDescriptor = vec.Slice()
	}
	return &w, nil
}

// FindByIdentity resolves a worker by the (name, surname, role) triple,
// ignoring case and diacritics on both sides.
func (r *WorkerRepository) FindByIdentity(ctx context.Context, name, surname, role string) (*database.Worker, error) {
	query := `
		SELECT ` + workerColumns + `
		FROM workers
		WHERE LOWER(f_unaccent(name)) = $1
		  AND LOWER(f_unaccent(surname)) = $2
		  AND LOWER(f_unaccent(role)) = $3
	`
	row := r.pool.QueryRow(ctx, query,
		facematch.NormalizeIdentity(name),
		facematch.NormalizeIdentity(surname),
		facematch.NormalizeIdentity(role),
	)
	w, err := scanWorker(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query worker by identity: %w", err)
	}
	return w, nil
}

// Get retrieves a worker by ID.
func (r *WorkerRepository) Get(ctx context.Context, id int64) (*database.Worker, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+workerColumns+` FROM workers WHERE id = $1`, id)
	w, err := scanWorker(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query worker: %w", err)
	}
	return w, nil
}

// List returns workers ordered newest first.
func (r *WorkerRepository) List(ctx context.Context, limit int) ([]database.Worker, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+workerColumns+` FROM workers ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query workers: %w", err)
	}
	defer rows.Close()
	return collectWorkers(rows)
}

// ListEnrolled returns all workers that have a reference descriptor.
func (r *WorkerRepository) ListEnrolled(ctx context.Context) ([]database.Worker, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+workerColumns+` FROM workers WHERE ref_descriptor IS NOT NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query enrolled workers: %w", err)
	}
	defer rows.Close()
	return collectWorkers(rows)
}

func collectWorkers(rows *sql.Rows) ([]database.Worker, error) {
	var workers []database.Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, fmt.Errorf("scan worker: %w", err)
		}
		workers = append(workers, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workers: %w", err)
	}
	return workers, nil
}

// Create inserts a new active worker without a reference.
func (r *WorkerRepository) Create(ctx context.Context, name, surname, role string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO workers (name, surname, role) VALUES ($1, $2, $3) RETURNING id`,
		name, surname, role,
	).Scan(&id)
	if isUniqueViolation(err) {
		return 0, database.ErrDuplicate
	}
	if err != nil {
		return 0, fmt.Errorf("insert worker: %w", err)
	}
	return id, nil
}

// SetActive toggles the active flag.
func (r *WorkerRepository) SetActive(ctx context.Context, id int64, active bool) error {
	result, err := r.pool.Exec(ctx, `UPDATE workers SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("update worker active flag: %w", err)
	}
	return requireRow(result)
}

// SetReference replaces the reference descriptor and image for a worker.
func (r *WorkerRepository) SetReference(ctx context.Context, id int64, descriptor []float32, imagePath string) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE workers SET ref_descriptor = $2, ref_image_path = $3 WHERE id = $1`,
		id, pgvector.NewVector(descriptor), imagePath,
	)
	if err != nil {
		return fmt.Errorf("update worker reference: %w", err)
	}
	return requireRow(result)
}

// Delete removes a worker and all of the worker's attendance events.
func (r *WorkerRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM attendance_events WHERE worker_id = $1`, id); err != nil {
		return fmt.Errorf("delete worker events: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM workers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete worker: %w", err)
	}
	if err := requireRow(result); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit worker delete: %w", err)
	}
	return nil
}

// requireRow converts a zero-row result into ErrNotFound.
func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return database.ErrNotFound
	}
	return nil
}

var _ database.WorkerStore = (*WorkerRepository)(nil)
