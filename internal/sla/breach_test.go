package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

func TestEvaluateDecisionTable(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	due := created.Add(120 * time.Minute)

	input := func(now time.Time, current domain.SlaStatus, closed bool) EvaluationInput {
		return EvaluationInput{
			Now:           now,
			CreatedAt:     created,
			DueAt:         due,
			TargetMinutes: 120,
			CurrentStatus: current,
			Closed:        closed,
		}
	}

	tests := []struct {
		name        string
		in          EvaluationInput
		wantStatus  domain.SlaStatus
		wantChanged bool
		wantBreach  bool
	}{
		{
			name:       "fresh ticket stays on track",
			in:         input(created.Add(30*time.Minute), domain.SlaStatusOnTrack, false),
			wantStatus: domain.SlaStatusOnTrack,
		},
		{
			name:        "threshold crossed at 75 percent",
			in:          input(created.Add(90*time.Minute), domain.SlaStatusOnTrack, false),
			wantStatus:  domain.SlaStatusApproachingBreach,
			wantChanged: true,
		},
		{
			name:       "just under threshold",
			in:         input(created.Add(89*time.Minute), domain.SlaStatusOnTrack, false),
			wantStatus: domain.SlaStatusOnTrack,
		},
		{
			name:        "due instant itself breaches",
			in:          input(due, domain.SlaStatusApproachingBreach, false),
			wantStatus:  domain.SlaStatusBreached,
			wantChanged: true,
			wantBreach:  true,
		},
		{
			name:       "still breached on re-evaluation",
			in:         input(due.Add(time.Hour), domain.SlaStatusBreached, false),
			wantStatus: domain.SlaStatusBreached,
		},
		{
			name:        "closed overrides breach",
			in:          input(due.Add(time.Hour), domain.SlaStatusBreached, true),
			wantStatus:  domain.SlaStatusCompleted,
			wantChanged: true,
		},
		{
			name:       "completed is sticky even if reopened clock-wise",
			in:         input(due.Add(2*time.Hour), domain.SlaStatusCompleted, false),
			wantStatus: domain.SlaStatusCompleted,
		},
		{
			name:        "extension can move approaching back to on track",
			in:          EvaluationInput{Now: created.Add(90 * time.Minute), CreatedAt: created, DueAt: due.Add(24 * time.Hour), TargetMinutes: 120 + 24*60, CurrentStatus: domain.SlaStatusApproachingBreach, Closed: false},
			wantStatus:  domain.SlaStatusOnTrack,
			wantChanged: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := Evaluate(tc.in)
			assert.Equal(t, tc.wantStatus, out.Status)
			assert.Equal(t, tc.wantChanged, out.Changed)
			assert.Equal(t, tc.wantBreach, out.BreachedNow)
		})
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	in := EvaluationInput{
		Now:           created.Add(95 * time.Minute),
		CreatedAt:     created,
		DueAt:         created.Add(120 * time.Minute),
		TargetMinutes: 120,
		CurrentStatus: domain.SlaStatusOnTrack,
	}

	first := Evaluate(in)
	assert.Equal(t, domain.SlaStatusApproachingBreach, first.Status)
	assert.True(t, first.Changed)

	// Re-running with the persisted status and no elapsed time changes nothing.
	in.CurrentStatus = first.Status
	second := Evaluate(in)
	assert.Equal(t, first.Status, second.Status)
	assert.False(t, second.Changed)
	assert.False(t, second.BreachedNow)
}

func TestEvaluateBreachedNowFiresOnce(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	in := EvaluationInput{
		Now:           created.Add(3 * time.Hour),
		CreatedAt:     created,
		DueAt:         created.Add(2 * time.Hour),
		TargetMinutes: 120,
		CurrentStatus: domain.SlaStatusOnTrack,
	}

	first := Evaluate(in)
	assert.True(t, first.BreachedNow)

	in.CurrentStatus = first.Status
	in.Now = in.Now.Add(time.Hour)
	second := Evaluate(in)
	assert.Equal(t, domain.SlaStatusBreached, second.Status)
	assert.False(t, second.BreachedNow)
}
