package events

import (
	"time"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventTicketTeamChanged     EventType = "ticket_team_changed"
	EventSlaRuleAssigned       EventType = "sla_rule_assigned"
	EventSlaApproachingBreach  EventType = "sla_approaching_breach"
	EventSlaBreached           EventType = "sla_breached"
	EventSlaDueDateExtended    EventType = "sla_due_date_extended"
)

// Actor encapsulates actor metadata for an event. System events (the
// periodic SLA sweep) carry no staff id.
type Actor struct {
	Type    domain.SubjectType `json:"type"`
	StaffID *string            `json:"staff_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TeamID   *string               `json:"team_id,omitempty"`
	Priority domain.TicketPriority `json:"priority"`
	Category string                `json:"category,omitempty"`
	Title    string                `json:"title"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
}

// TicketTeamChangedPayload payload.
type TicketTeamChangedPayload struct {
	OldTeamID *string `json:"old_team_id,omitempty"`
	NewTeamID *string `json:"new_team_id,omitempty"`
}

// SlaRuleAssignedPayload payload. RuleID is nil when re-matching left the
// ticket without SLA tracking.
type SlaRuleAssignedPayload struct {
	RuleID   *string    `json:"rule_id,omitempty"`
	RuleName string     `json:"rule_name,omitempty"`
	DueAt    *time.Time `json:"due_at,omitempty"`
}

// SlaApproachingBreachPayload payload.
type SlaApproachingBreachPayload struct {
	RuleID string    `json:"rule_id"`
	DueAt  time.Time `json:"due_at"`
}

// SlaBreachedPayload payload. NotifyAssignee mirrors the rule's breach
// behavior so notification collaborators need no rule lookup.
type SlaBreachedPayload struct {
	RuleID         string    `json:"rule_id"`
	DueAt          time.Time `json:"due_at"`
	BreachedAt     time.Time `json:"breached_at"`
	NotifyAssignee bool      `json:"notify_assignee"`
	AssigneeID     *string   `json:"assignee_id,omitempty"`
}

// SlaDueDateExtendedPayload payload.
type SlaDueDateExtendedPayload struct {
	OldDueAt       *time.Time `json:"old_due_at,omitempty"`
	NewDueAt       time.Time  `json:"new_due_at"`
	ExtensionHours int        `json:"extension_hours"`
}
