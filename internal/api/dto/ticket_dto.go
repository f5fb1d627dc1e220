package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

// CreateTicketRequest is the intake payload.
type CreateTicketRequest struct {
	RequesterEmail string  `json:"requester_email"`
	Title          string  `json:"title"`
	Description    string  `json:"description,omitempty"`
	Category       string  `json:"category,omitempty"`
	Priority       string  `json:"priority"`
	TeamID         *string `json:"team_id,omitempty"`
}

// UpdateStatusRequest moves a ticket along the status graph.
type UpdateStatusRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment,omitempty"`
}

// UpdatePriorityRequest changes urgency.
type UpdatePriorityRequest struct {
	Priority string `json:"priority"`
}

// AssignTeamRequest routes a ticket; a nil team returns it to the
// unassigned pool.
type AssignTeamRequest struct {
	TeamID *string `json:"team_id"`
}

// ExtendSlaRequest pushes the due date out. Zero or absent hours asks for
// the default suggestion.
type ExtendSlaRequest struct {
	Hours int `json:"hours,omitempty"`
}

// SlaInfo is the SLA projection embedded in ticket responses.
type SlaInfo struct {
	RuleID     string     `json:"rule_id"`
	DueAt      time.Time  `json:"due_at"`
	Status     string     `json:"status"`
	BreachedAt *time.Time `json:"breached_at,omitempty"`
}

// TicketResponse is the API representation of a ticket.
type TicketResponse struct {
	ID             string     `json:"id"`
	ExternalKey    string     `json:"external_key"`
	RequesterEmail string     `json:"requester_email"`
	TeamID         *string    `json:"team_id,omitempty"`
	AssigneeID     *string    `json:"assignee_id,omitempty"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Category       string     `json:"category,omitempty"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	Sla            *SlaInfo   `json:"sla,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ClosedAt       *time.Time `json:"closed_at,omitempty"`
}

// ExtensionPreviewResponse reports the suggested extension.
type ExtensionPreviewResponse struct {
	TicketID       string     `json:"ticket_id"`
	CurrentDueAt   *time.Time `json:"current_due_at,omitempty"`
	SuggestedHours int        `json:"suggested_hours"`
}

// HistoryEntryResponse is one audit trail row.
type HistoryEntryResponse struct {
	ID            string         `json:"id"`
	ChangedByType string         `json:"changed_by_type"`
	ChangedByID   *string        `json:"changed_by_id,omitempty"`
	ChangeType    string         `json:"change_type"`
	OldValue      map[string]any `json:"old_value,omitempty"`
	NewValue      map[string]any `json:"new_value,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// FromTicket converts a domain ticket to its API representation.
func FromTicket(t *domain.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:             t.ID,
		ExternalKey:    t.ExternalKey,
		RequesterEmail: t.RequesterEmail,
		TeamID:         t.TeamID,
		AssigneeID:     t.AssigneeID,
		Title:          t.Title,
		Description:    t.Description,
		Category:       t.Category,
		Status:         string(t.Status),
		Priority:       string(t.Priority),
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
		ClosedAt:       t.ClosedAt,
	}
	if t.SlaRuleID != nil && t.SlaDueAt != nil && t.SlaStatus != nil {
		resp.Sla = &SlaInfo{
			RuleID:     *t.SlaRuleID,
			DueAt:      *t.SlaDueAt,
			Status:     string(*t.SlaStatus),
			BreachedAt: t.SlaBreachedAt,
		}
	}
	return resp
}

// FromTickets converts a ticket slice.
func FromTickets(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, FromTicket(&tickets[i]))
	}
	return out
}

// FromHistory converts audit entries.
func FromHistory(entries []domain.TicketHistory) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, HistoryEntryResponse{
			ID:            entry.ID,
			ChangedByType: string(entry.ChangedByType),
			ChangedByID:   entry.ChangedByID,
			ChangeType:    string(entry.ChangeType),
			OldValue:      entry.OldValue,
			NewValue:      entry.NewValue,
			CreatedAt:     entry.CreatedAt,
		})
	}
	return out
}
