package database

import (
	"context"
	"time"
)

// WorkerStore provides access to enrolled workers.
type WorkerStore interface {
	// FindByIdentity resolves a worker by the (name, surname, role) triple.
	// Matching is case- and diacritic-insensitive. Returns ErrNotFound when
	// no worker matches.
	FindByIdentity(ctx context.Context, name, surname, role string) (*Worker, error)
	// Get retrieves a worker by ID. Returns ErrNotFound when missing.
	Get(ctx context.Context, id int64) (*Worker, error)
	// List returns workers ordered newest first, up to limit.
	List(ctx context.Context, limit int) ([]Worker, error)
	// Create inserts a new worker. Returns ErrDuplicate when a worker with
	// the same normalized identity already exists.
	Create(ctx context.Context, name, surname, role string) (int64, error)
	// SetActive toggles the active flag.
	SetActive(ctx context.Context, id int64, active bool) error
	// SetReference replaces the reference descriptor and image for a worker.
	SetReference(ctx context.Context, id int64, descriptor []float32, imagePath string) error
	// Delete removes the worker and all of the worker's attendance events.
	Delete(ctx context.Context, id int64) error
	// ListEnrolled returns all workers that have a reference descriptor.
	ListEnrolled(ctx context.Context) ([]Worker, error)
}

// EventStore provides access to the attendance event log.
type EventStore interface {
	// Append inserts an event and returns its ID. The store assigns the
	// creation timestamp when event.CreatedAt is zero.
	Append(ctx context.Context, event *AttendanceEvent) (int64, error)
	// KindsOnDay returns the kinds of the worker's accepted (OK) events on
	// the calendar day containing the given time.
	KindsOnDay(ctx context.Context, workerID int64, day time.Time) ([]EventKind, error)
	// ListRecent returns the latest events, newest first, up to limit.
	ListRecent(ctx context.Context, limit int) ([]AttendanceEvent, error)
	// Delete removes an event. Returns ErrNotFound when missing.
	Delete(ctx context.Context, id int64) error
	// DaysPresent returns, per worker ID, the number of distinct days in
	// [from, to] with an accepted ENTRY event.
	DaysPresent(ctx context.Context, from, to time.Time) (map[int64]int, error)
	// DominantSites returns, per worker ID, the site with the most accepted
	// ENTRY events in [from, to].
	DominantSites(ctx context.Context, from, to time.Time) (map[int64]string, error)
}

// AllowListStore provides access to the phone allow-list.
type AllowListStore interface {
	// IsAllowed checks a normalized phone against the allow-list.
	IsAllowed(ctx context.Context, phone string) (bool, error)
	// Add inserts a normalized phone. Returns ErrDuplicate when present.
	Add(ctx context.Context, phone string) (int64, error)
	// List returns entries ordered newest first, up to limit.
	List(ctx context.Context, limit int) ([]AllowedPhone, error)
	// Remove deletes an entry by ID.
	Remove(ctx context.Context, id int64) error
}

// SubscriptionStore provides access to notification subscriptions.
type SubscriptionStore interface {
	// Upsert creates or overwrites the subscription for a chat.
	// Last write wins on phone and active flag.
	Upsert(ctx context.Context, chatID int64, phone string, active bool) error
	// ActiveChatIDs returns the chat IDs of all active subscriptions.
	ActiveChatIDs(ctx context.Context) ([]int64, error)
}

// SalaryRuleStore provides access to salary rules.
type SalaryRuleStore interface {
	// Upsert creates or updates the rule keyed by lowercase (site, role)
	// and reactivates it.
	Upsert(ctx context.Context, site, role string, dailyRate float64) error
	// ListActive returns all active rules ordered by site, role.
	ListActive(ctx context.Context) ([]SalaryRule, error)
	// Deactivate soft-deletes a rule by ID.
	Deactivate(ctx context.Context, id int64) error
}
