package domain

import "time"

// StatusType classifies a ticket status key. Closed-type statuses are
// terminal for SLA purposes: once a ticket enters one, its SLA evaluation
// completes and no further breach tracking occurs.
type StatusType struct {
	Key          TicketStatus
	Label        string
	IsClosedType bool
	SortOrder    int
	CreatedAt    time.Time
}
