package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets. The set is
// extensible via the ticket_statuses table; these are the built-ins.
type TicketStatus string

const (
	TicketStatusOpen        TicketStatus = "OPEN"
	TicketStatusInProgress  TicketStatus = "IN_PROGRESS"
	TicketStatusPendingUser TicketStatus = "PENDING_USER"
	TicketStatusResolved    TicketStatus = "RESOLVED"
	TicketStatusClosed      TicketStatus = "CLOSED"
	TicketStatusCancelled   TicketStatus = "CANCELLED"
)

// TicketPriority enumerates urgency levels used in SLA rule conditions.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// Ticket is the aggregate for support requests. CreatedAt is the
// authoritative SLA clock start. The Sla* fields are either all unset
// (no matching rule, no tracking) or populated together; SlaBreachedAt is
// written once, the first time a breach is observed. Version backs
// optimistic concurrency on SLA writes.
type Ticket struct {
	ID             string
	ExternalKey    string
	RequesterEmail string
	TeamID         *string
	AssigneeID     *string
	Title          string
	Description    string
	Category       string
	Status         TicketStatus
	Priority       TicketPriority
	SlaRuleID      *string
	SlaDueAt       *time.Time
	SlaStatus      *SlaStatus
	SlaBreachedAt  *time.Time
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ClosedAt       *time.Time
}
