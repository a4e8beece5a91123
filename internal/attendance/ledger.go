// Package attendance implements the attendance event state machine: deciding
// whether a face-gated check-in/check-out submission is accepted, what kind
// of event it becomes, and recording exactly one event per submission.
package attendance

import (
	"fmt"

	"github.com/elchinm/attendance-gate/internal/database"
	"github.com/elchinm/attendance-gate/internal/facematch"
)

// Rejection notes recorded on the persisted event. These are outcome values,
// not errors: a rejected submission is still a successful request.
const (
	NoteWorkerNotFound  = "worker not found"
	NoteWorkerInactive  = "worker inactive"
	NoteNoReference     = "no reference image"
	NoteDescriptorShape = "descriptor format error"
	NoteDailyLimit      = "daily entry+exit limit reached"
)

// Verify runs the pre-transition checks on a submission, in order: worker
// resolved, worker active, reference enrolled, descriptor shape, face
// distance within threshold. It returns ok=true when the submission may
// proceed to the daily state machine, otherwise the rejection note to record.
func Verify(worker *database.Worker, probe []float32, threshold float64) (note string, ok bool) {
	if worker == nil {
		return NoteWorkerNotFound, false
	}
	if !worker.Active {
		return NoteWorkerInactive, false
	}
	if !worker.Enrolled() {
		return NoteNoReference, false
	}

	dist, err := facematch.Distance(probe, worker.RefDescriptor)
	if err != nil {
		return NoteDescriptorShape, false
	}
	if !facematch.IsMatch(dist, threshold) {
		return fmt.Sprintf("face mismatch (dist=%.3f)", dist), false
	}

	return "", true
}

// Transition advances the worker's daily state machine given the kinds of
// today's already accepted events. The day moves NoEvents -> HasEntry ->
// HasEntryAndExit; once both an entry and an exit exist, further matched
// submissions are recorded but hit the daily limit.
func Transition(priorKinds []database.EventKind) (database.EventKind, database.Outcome, string) {
	var hasEntry, hasExit bool
	for _, k := range priorKinds {
		switch k {
		case database.KindEntry:
			hasEntry = true
		case database.KindExit:
			hasExit = true
		}
	}

	switch {
	case !hasEntry:
		return database.KindEntry, database.OutcomeOK, ""
	case !hasExit:
		return database.KindExit, database.OutcomeOK, ""
	default:
		return database.KindExit, database.OutcomeLimitReached, NoteDailyLimit
	}
}
