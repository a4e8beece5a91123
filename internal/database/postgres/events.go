package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/elchinm/attendance-gate/internal/database"
)

// EventRepository provides PostgreSQL-backed attendance event storage.
type EventRepository struct {
	pool *Pool
}

// NewEventRepository creates a new PostgreSQL event repository.
func NewEventRepository(pool *Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// Append inserts an event and returns its ID. The database assigns the
// creation timestamp when event.CreatedAt is zero.
func (r *EventRepository) Append(ctx context.Context, event *database.AttendanceEvent) (int64, error) {
	createdAt := sql.NullTime{Time: event.CreatedAt, Valid: !event.CreatedAt.IsZero()}

	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO attendance_events
			(worker_id, name, surname, role, site, kind, outcome, note, image_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, NOW()))
		RETURNING id
	`,
		event.WorkerID, event.Name, event.Surname, event.Role, event.Site,
		string(event.Kind), string(event.Outcome), event.Note, event.ImagePath, createdAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert attendance event: %w", err)
	}
	return id, nil
}

// KindsOnDay returns the kinds of the worker's accepted events on the
// calendar day containing the given time, in chronological order.
func (r *EventRepository) KindsOnDay(ctx context.Context, workerID int64, day time.Time) ([]database.EventKind, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT kind
		FROM attendance_events
		WHERE worker_id = $1
		  AND outcome = $2
		  AND created_at::date = ($3::timestamptz)::date
		ORDER BY created_at
	`, workerID, string(database.OutcomeOK), day)
	if err != nil {
		return nil, fmt.Errorf("query event kinds: %w", err)
	}
	defer rows.Close()

	var kinds []database.EventKind
	for rows.Next() {
		var kind string
		if err := rows.Scan(&kind); err != nil {
			return nil, fmt.Errorf("scan event kind: %w", err)
		}
		kinds = append(kinds, database.EventKind(kind))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event kinds: %w", err)
	}
	return kinds, nil
}

// ListRecent returns the latest events, newest first.
func (r *EventRepository) ListRecent(ctx context.Context, limit int) ([]database.AttendanceEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, worker_id, name, surname, role, site, kind, outcome, note, image_path, created_at
		FROM attendance_events
		ORDER BY id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []database.AttendanceEvent
	for rows.Next() {
		var e database.AttendanceEvent
		var workerID sql.NullInt64
		var kind, outcome string
		err := rows.Scan(&e.ID, &workerID, &e.Name, &e.Surname, &e.Role, &e.Site,
			&kind, &outcome, &e.Note, &e.ImagePath, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if workerID.Valid {
			id := workerID.Int64
			e.WorkerID = &id
		}
		e.Kind = database.EventKind(kind)
		e.Outcome = database.Outcome(outcome)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// Delete removes an event by ID.
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM attendance_events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return requireRow(result)
}

// DaysPresent counts, per worker, the distinct days in [from, to] with an
// accepted entry event.
func (r *EventRepository) DaysPresent(ctx context.Context, from, to time.Time) (map[int64]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT worker_id, COUNT(DISTINCT created_at::date)
		FROM attendance_events
		WHERE worker_id IS NOT NULL
		  AND outcome = $1
		  AND kind = $2
		  AND created_at BETWEEN $3 AND $4
		GROUP BY worker_id
	`, string(database.OutcomeOK), string(database.KindEntry), from, to)
	if err != nil {
		return nil, fmt.Errorf("query days present: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]int)
	for rows.Next() {
		var workerID int64
		var days int
		if err := rows.Scan(&workerID, &days); err != nil {
			return nil, fmt.Errorf("scan days present: %w", err)
		}
		out[workerID] = days
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate days present: %w", err)
	}
	return out, nil
}

// DominantSites returns, per worker, the site with the most accepted entry
// events in [from, to].
func (r *EventRepository) DominantSites(ctx context.Context, from, to time.Time) (map[int64]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT ON (worker_id) worker_id, site
		FROM (
			SELECT worker_id, site, COUNT(*) AS entries
			FROM attendance_events
			WHERE worker_id IS NOT NULL
			  AND outcome = $1
			  AND kind = $2
			  AND created_at BETWEEN $3 AND $4
			GROUP BY worker_id, site
		) site_counts
		ORDER BY worker_id, entries DESC, site
	`, string(database.OutcomeOK), string(database.KindEntry), from, to)
	if err != nil {
		return nil, fmt.Errorf("query dominant sites: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]string)
	for rows.Next() {
		var workerID int64
		var site string
		if err := rows.Scan(&workerID, &site); err != nil {
			return nil, fmt.Errorf("scan dominant site: %w", err)
		}
		out[workerID] = site
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dominant sites: %w", err)
	}
	return out, nil
}

var _ database.EventStore = (*EventRepository)(nil)
