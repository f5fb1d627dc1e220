package domain

import "time"

// SlaStatus tracks where a ticket stands against its SLA target.
type SlaStatus string

const (
	SlaStatusOnTrack           SlaStatus = "ON_TRACK"
	SlaStatusApproachingBreach SlaStatus = "APPROACHING_BREACH"
	SlaStatusBreached          SlaStatus = "BREACHED"
	SlaStatusCompleted         SlaStatus = "COMPLETED"
)

// RuleCondition is the stored form of a single matching predicate.
// Known keys are "priority", "category", "owning_team_id" and "status";
// unknown keys are carried through and ignored at match time.
type RuleCondition struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// BusinessHoursConfig defines the weekly window during which SLA time
// accrues. Workdays use time.Weekday numbering (Sunday = 0). StartTime and
// EndTime are "HH:MM" wall-clock strings; Holidays are "YYYY-MM-DD" dates.
type BusinessHoursConfig struct {
	Workdays  []int    `json:"workdays"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	Holidays  []string `json:"holidays,omitempty"`
}

// BreachBehavior configures what collaborators do when a rule's SLA
// breaches. The engine only carries it through into breach events.
type BreachBehavior struct {
	NotifyAssignee bool `json:"notify_assignee"`
	UIMarkers      bool `json:"ui_markers"`
}

// SlaRule defines a resolution target applied to matching tickets. Lower
// Priority values are evaluated first; CreatedAt is the stable tie-break.
type SlaRule struct {
	ID                      string
	Name                    string
	Description             string
	Conditions              []RuleCondition
	TargetResolutionMinutes int
	TargetCloseMinutes      *int
	BusinessHoursEnabled    bool
	BusinessHours           *BusinessHoursConfig
	Priority                int
	BreachBehavior          *BreachBehavior
	IsActive                bool
	CreatedAt               time.Time
	UpdatedAt               time.Time
}
