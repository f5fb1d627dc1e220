package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-sla/internal/api/dto"
	"github.com/spec-kit/helpdesk-sla/internal/auth"
	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/events"
	"github.com/spec-kit/helpdesk-sla/internal/repository"
	"github.com/spec-kit/helpdesk-sla/internal/service"
	"github.com/spec-kit/helpdesk-sla/pkg/util/errorutil"
)

// TicketsHandler serves the ticket lifecycle API.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler constructs the handler.
func NewTicketsHandler(tickets *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets}
}

// Create opens a new ticket.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid request body", nil)
	}

	ticket, err := h.tickets.Create(c.UserContext(), actorFrom(c), service.CreateTicketInput{
		RequesterEmail: req.RequesterEmail,
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Priority:       domain.TicketPriority(req.Priority),
		TeamID:         req.TeamID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromTicket(ticket))
}

// Get fetches one ticket with a fresh SLA state.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	ticket, err := h.tickets.Get(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicket(ticket))
}

// List returns tickets matching query filters.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	filter := repository.TicketFilter{
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}
	if teamID := c.Query("team_id"); teamID != "" {
		filter.TeamID = &teamID
	}
	if category := c.Query("category"); category != "" {
		filter.Category = &category
	}
	if status := c.Query("status"); status != "" {
		filter.Statuses = []domain.TicketStatus{domain.TicketStatus(status)}
	}
	if priority := c.Query("priority"); priority != "" {
		filter.Priorities = []domain.TicketPriority{domain.TicketPriority(priority)}
	}
	if slaStatus := c.Query("sla_status"); slaStatus != "" {
		filter.SlaStatuses = []domain.SlaStatus{domain.SlaStatus(slaStatus)}
	}
	if search := c.Query("q"); search != "" {
		filter.SearchTerm = &search
	}

	tickets, err := h.tickets.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"tickets": dto.FromTickets(tickets)})
}

// History returns a ticket's audit trail.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	entries, err := h.tickets.History(c.UserContext(), c.Params("id"),
		c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"history": dto.FromHistory(entries)})
}

// UpdateStatus moves a ticket along the status graph.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid request body", nil)
	}
	ticket, err := h.tickets.UpdateStatus(c.UserContext(), actorFrom(c),
		c.Params("id"), domain.TicketStatus(req.Status), req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicket(ticket))
}

// UpdatePriority changes a ticket's urgency.
func (h *TicketsHandler) UpdatePriority(c *fiber.Ctx) error {
	var req dto.UpdatePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid request body", nil)
	}
	ticket, err := h.tickets.UpdatePriority(c.UserContext(), actorFrom(c),
		c.Params("id"), domain.TicketPriority(req.Priority))
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicket(ticket))
}

// AssignTeam routes a ticket to a team.
func (h *TicketsHandler) AssignTeam(c *fiber.Ctx) error {
	var req dto.AssignTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid request body", nil)
	}
	ticket, err := h.tickets.AssignTeam(c.UserContext(), actorFrom(c), c.Params("id"), req.TeamID)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicket(ticket))
}

// ExtensionPreview reports the suggested extension length.
func (h *TicketsHandler) ExtensionPreview(c *fiber.Ctx) error {
	ticket, hours, err := h.tickets.ExtensionPreview(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.ExtensionPreviewResponse{
		TicketID:       ticket.ID,
		CurrentDueAt:   ticket.SlaDueAt,
		SuggestedHours: hours,
	})
}

// ExtendSla pushes the due date out.
func (h *TicketsHandler) ExtendSla(c *fiber.Ctx) error {
	var req dto.ExtendSlaRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid request body", nil)
	}
	ticket, err := h.tickets.ExtendSla(c.UserContext(), actorFrom(c), c.Params("id"), req.Hours)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicket(ticket))
}

func actorFrom(c *fiber.Ctx) events.Actor {
	if claims := auth.ClaimsFrom(c); claims != nil {
		return service.StaffActor(claims.StaffID)
	}
	return service.SystemActor()
}
