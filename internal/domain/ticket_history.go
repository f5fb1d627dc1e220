package domain

import "time"

// TicketChangeType captures what changed in a history entry.
type TicketChangeType string

const (
	ChangeTypeStatus     TicketChangeType = "STATUS_CHANGE"
	ChangeTypePriority   TicketChangeType = "PRIORITY_CHANGE"
	ChangeTypeTeam       TicketChangeType = "TEAM_CHANGE"
	ChangeTypeSlaRule    TicketChangeType = "SLA_RULE_CHANGE"
	ChangeTypeSlaStatus  TicketChangeType = "SLA_STATUS_CHANGE"
	ChangeTypeSlaDueDate TicketChangeType = "SLA_DUE_DATE_CHANGE"
)

// TicketHistory is an immutable audit trail entry.
type TicketHistory struct {
	ID            string
	TicketID      string
	ChangedByType SubjectType
	ChangedByID   *string
	ChangeType    TicketChangeType
	OldValue      map[string]any
	NewValue      map[string]any
	CreatedAt     time.Time
}
