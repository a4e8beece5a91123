package database

import (
	"time"
)

// EventKind is the type of an attendance event.
type EventKind string

const (
	KindEntry EventKind = "ENTRY"
	KindExit  EventKind = "EXIT"
)

// Outcome is the recorded result of an attendance submission.
type Outcome string

const (
	OutcomeOK           Outcome = "OK"
	OutcomeRejected     Outcome = "REJECTED"
	OutcomeLimitReached Outcome = "LIMIT_REACHED"
)

// Worker is an enrolled worker. Identity is the (name, surname, role) triple,
// unique case- and diacritic-insensitively. The reference descriptor is nil
// until a reference image has been enrolled.
type Worker struct {
	ID            int64
	Name          string
	Surname       string
	Role          string
	Active        bool
	RefDescriptor []float32
	RefImagePath  string
	CreatedAt     time.Time
}

// Enrolled reports whether the worker has a reference descriptor.
func (w *Worker) Enrolled() bool {
	return len(w.RefDescriptor) > 0
}

// AttendanceEvent is one immutable row of the attendance log. Every
// submission produces exactly one event, including rejections, so the log
// doubles as an audit trail.
type AttendanceEvent struct {
	ID        int64
	WorkerID  *int64 // nil when the submitted identity did not resolve
	Name      string // identity fields as submitted, kept even when unresolved
	Surname   string
	Role      string
	Site      string
	Kind      EventKind
	Outcome   Outcome
	Note      string // rejection or limit reason, empty for clean OK events
	ImagePath string // stored camera shot
	CreatedAt time.Time
}

// Subscription is a Telegram chat subscribed to attendance notifications.
// One row per chat; re-subscribing overwrites phone and active flag.
type Subscription struct {
	ChatID    int64
	Phone     string
	Active    bool
	CreatedAt time.Time
}

// AllowedPhone is an allow-list entry: a normalized phone number permitted
// to subscribe.
type AllowedPhone struct {
	ID        int64
	Phone     string
	CreatedAt time.Time
}

// SalaryRule sets the daily rate for workers of a given role at a given site.
// Keyed (site, role) lowercase; deactivated rather than deleted.
type SalaryRule struct {
	ID        int64
	Site      string
	Role      string
	DailyRate float64
	Active    bool
}
