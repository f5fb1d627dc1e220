package sla

import (
	"time"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

// ApproachingBreachThreshold is the fraction of the resolution target that
// must elapse before a ticket is flagged as approaching breach.
const ApproachingBreachThreshold = 0.75

// EvaluationInput carries everything the breach decision table reads.
// TargetMinutes must be positive; rule validation enforces that at
// creation time.
type EvaluationInput struct {
	Now           time.Time
	CreatedAt     time.Time
	DueAt         time.Time
	TargetMinutes int
	CurrentStatus domain.SlaStatus
	Closed        bool
}

// Evaluation is the outcome of one pass over the decision table.
// BreachedNow is set only on the first transition into BREACHED, so the
// caller can stamp the breach instant exactly once.
type Evaluation struct {
	Status      domain.SlaStatus
	Changed     bool
	BreachedNow bool
}

// Evaluate applies the breach state machine idempotently: closed-type
// status wins, then breach, then the approaching-breach threshold, else
// on-track. COMPLETED is sticky; once there, re-evaluation never moves the
// ticket again.
//
// The result is computed fresh from current parameters each call, so a
// ticket whose due date was extended can legitimately move back from
// APPROACHING_BREACH to ON_TRACK.
func Evaluate(in EvaluationInput) Evaluation {
	if in.CurrentStatus == domain.SlaStatusCompleted {
		return Evaluation{Status: domain.SlaStatusCompleted}
	}

	var next domain.SlaStatus
	switch {
	case in.Closed:
		next = domain.SlaStatusCompleted
	case !in.Now.Before(in.DueAt):
		next = domain.SlaStatusBreached
	case elapsedRatio(in) >= ApproachingBreachThreshold:
		next = domain.SlaStatusApproachingBreach
	default:
		next = domain.SlaStatusOnTrack
	}

	return Evaluation{
		Status:      next,
		Changed:     next != in.CurrentStatus,
		BreachedNow: next == domain.SlaStatusBreached && in.CurrentStatus != domain.SlaStatusBreached,
	}
}

func elapsedRatio(in EvaluationInput) float64 {
	elapsed := in.Now.Sub(in.CreatedAt).Minutes()
	return elapsed / float64(in.TargetMinutes)
}
