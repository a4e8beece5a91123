package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/elchinm/attendance-gate/internal/database"
)

// ErrMissingFields is returned when a submission lacks required fields.
// This is a caller error, rejected before the ledger runs.
var ErrMissingFields = errors.New("name, surname, role and site are required")

// Announcer receives accepted-or-not attendance events for notification
// fan-out. Implementations must not block: the submission does not wait on
// delivery, and delivery failures never reach the submitter.
type Announcer interface {
	AnnounceEvent(event database.AttendanceEvent)
}

// Submission is one attendance check-in/check-out attempt.
type Submission struct {
	Name       string
	Surname    string
	Role       string
	Site       string
	Descriptor []float32
	ImagePath  string
}

// Result is the outcome of a processed submission.
type Result struct {
	EventID int64
	Outcome database.Outcome
	Kind    database.EventKind
	Note    string
}

// Service processes attendance submissions: it resolves the worker, runs the
// face check and the daily state machine, persists exactly one event, and
// hands the event to the announcer.
type Service struct {
	workers   database.WorkerStore
	events    database.EventStore
	announcer Announcer
	threshold float64
	now       func() time.Time
}

// NewService creates an attendance service. The announcer may be nil if
// notifications are disabled.
func NewService(workers database.WorkerStore, events database.EventStore, announcer Announcer, threshold float64) *Service {
	return &Service{
		workers:   workers,
		events:    events,
		announcer: announcer,
		threshold: threshold,
		now:       time.Now,
	}
}

// Submit processes one submission. Every call that passes field validation
// persists exactly one event, whatever the decision; only a persistence
// failure returns an error.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Result, error) {
	if strings.TrimSpace(sub.Name) == "" || strings.TrimSpace(sub.Surname) == "" ||
		strings.TrimSpace(sub.Role) == "" || strings.TrimSpace(sub.Site) == "" {
		return nil, ErrMissingFields
	}

	worker, err := s.workers.FindByIdentity(ctx, sub.Name, sub.Surname, sub.Role)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("resolving worker: %w", err)
	}

	event := database.AttendanceEvent{
		Name:      strings.TrimSpace(sub.Name),
		Surname:   strings.TrimSpace(sub.Surname),
		Role:      strings.TrimSpace(sub.Role),
		Site:      strings.TrimSpace(sub.Site),
		Kind:      database.KindEntry, // default, also for rejections
		Outcome:   database.OutcomeOK,
		ImagePath: sub.ImagePath,
		CreatedAt: s.now(),
	}

	if note, ok := Verify(worker, sub.Descriptor, s.threshold); !ok {
		event.Outcome = database.OutcomeRejected
		event.Note = note
	} else {
		kinds, err := s.events.KindsOnDay(ctx, worker.ID, event.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("loading today's events: %w", err)
		}
		event.Kind, event.Outcome, event.Note = Transition(kinds)
	}

	if worker != nil {
		id := worker.ID
		event.WorkerID = &id
	}

	eventID, err := s.events.Append(ctx, &event)
	if err != nil {
		return nil, fmt.Errorf("recording attendance event: %w", err)
	}
	event.ID = eventID

	if s.announcer != nil {
		s.announcer.AnnounceEvent(event)
	}

	return &Result{
		EventID: eventID,
		Outcome: event.Outcome,
		Kind:    event.Kind,
		Note:    event.Note,
	}, nil
}
