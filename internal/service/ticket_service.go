package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/events"
	"github.com/spec-kit/helpdesk-sla/internal/repository"
	"github.com/spec-kit/helpdesk-sla/pkg/util/errorutil"
)

// allowedTransitions defines the ticket status graph. The closed states
// only reopen into OPEN.
var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:        {domain.TicketStatusInProgress, domain.TicketStatusCancelled},
	domain.TicketStatusInProgress:  {domain.TicketStatusPendingUser, domain.TicketStatusResolved, domain.TicketStatusCancelled},
	domain.TicketStatusPendingUser: {domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusCancelled},
	domain.TicketStatusResolved:    {domain.TicketStatusClosed, domain.TicketStatusOpen},
	domain.TicketStatusClosed:      {domain.TicketStatusOpen},
	domain.TicketStatusCancelled:   {domain.TicketStatusOpen},
}

// TicketService owns the ticket lifecycle and delegates every SLA concern
// to the SLA service: assignment on create and on attribute changes,
// evaluation on read.
type TicketService struct {
	tickets    repository.TicketRepository
	teams      repository.TeamRepository
	statuses   repository.StatusTypeRepository
	history    repository.TicketHistoryRepository
	slaService *SlaService
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	TeamRepo    repository.TeamRepository
	StatusRepo  repository.StatusTypeRepository
	HistoryRepo repository.TicketHistoryRepository
	SlaService  *SlaService
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		teams:      deps.TeamRepo,
		statuses:   deps.StatusRepo,
		history:    deps.HistoryRepo,
		slaService: deps.SlaService,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateTicketInput carries intake fields.
type CreateTicketInput struct {
	RequesterEmail string
	Title          string
	Description    string
	Category       string
	Priority       domain.TicketPriority
	TeamID         *string
}

// Create stores a new ticket and immediately runs SLA rule matching
// against its attributes.
func (s *TicketService) Create(ctx context.Context, actor events.Actor, input CreateTicketInput) (*domain.Ticket, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}
	if input.TeamID != nil {
		if err := s.requireActiveTeam(ctx, *input.TeamID); err != nil {
			return nil, err
		}
	}

	ticket := &domain.Ticket{
		ID:             uuid.NewString(),
		ExternalKey:    newExternalKey(),
		RequesterEmail: strings.ToLower(strings.TrimSpace(input.RequesterEmail)),
		TeamID:         input.TeamID,
		Title:          strings.TrimSpace(input.Title),
		Description:    input.Description,
		Category:       strings.TrimSpace(input.Category),
		Status:         domain.TicketStatusOpen,
		Priority:       input.Priority,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload: events.TicketCreatedPayload{
			TeamID:   ticket.TeamID,
			Priority: ticket.Priority,
			Category: ticket.Category,
			Title:    ticket.Title,
		},
	})

	if _, err := s.slaService.AssignRule(ctx, actor, ticket); err != nil {
		// The ticket exists; assignment failures surface in logs and the
		// next attribute change retries matching.
		s.logger.Error("SLA assignment on create failed",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
	}
	return ticket, nil
}

// Get fetches a ticket and refreshes its SLA status so readers always see
// the current breach state.
func (s *TicketService) Get(ctx context.Context, actor events.Actor, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.slaService.EvaluateStatus(ctx, actor, ticket); err != nil {
		s.logger.Warn("SLA evaluation on read failed",
			zap.String("ticket_id", id), zap.Error(err))
	}
	return ticket, nil
}

// List returns tickets matching the filter. No SLA evaluation runs here;
// listings tolerate slightly stale breach states between sweeps.
func (s *TicketService) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	return s.tickets.ListWithFilter(ctx, filter)
}

// History returns a ticket's audit trail, newest first.
func (s *TicketService) History(ctx context.Context, ticketID string, limit, offset int) ([]domain.TicketHistory, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return nil, err
	}
	return s.history.ListByTicket(ctx, ticketID, limit, offset)
}

// UpdateStatus moves a ticket along the status graph. Closing stamps
// ClosedAt; reopening clears it. Status participates in rule conditions,
// so matching re-runs afterwards, followed by one evaluation so a close
// settles the SLA state to COMPLETED right away.
func (s *TicketService) UpdateStatus(ctx context.Context, actor events.Actor, id string, newStatus domain.TicketStatus, comment string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.Status == newStatus {
		return ticket, nil
	}
	if !transitionAllowed(ticket.Status, newStatus) {
		return nil, errorutil.NewValidationError(
			fmt.Sprintf("cannot transition ticket from %s to %s", ticket.Status, newStatus), nil)
	}

	oldStatus := ticket.Status
	ticket.Status = newStatus
	closed, err := s.statuses.IsClosedType(ctx, newStatus)
	if err != nil {
		return nil, err
	}
	if closed {
		closedAt := s.now()
		ticket.ClosedAt = &closedAt
	} else {
		ticket.ClosedAt = nil
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.recordHistory(ctx, actor, ticket.ID, domain.ChangeTypeStatus,
		map[string]any{"status": oldStatus},
		map[string]any{"status": newStatus, "comment": comment})
	s.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload:  events.TicketStatusChangedPayload{OldStatus: oldStatus, NewStatus: newStatus, Comment: comment},
	})

	s.refreshSla(ctx, actor, ticket)
	return ticket, nil
}

// UpdatePriority changes a ticket's priority and re-runs rule matching,
// since priority is the most common rule condition.
func (s *TicketService) UpdatePriority(ctx context.Context, actor events.Actor, id string, priority domain.TicketPriority) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.Priority == priority {
		return ticket, nil
	}

	oldPriority := ticket.Priority
	ticket.Priority = priority
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.recordHistory(ctx, actor, ticket.ID, domain.ChangeTypePriority,
		map[string]any{"priority": oldPriority},
		map[string]any{"priority": priority})
	s.publish(ctx, events.Event{
		Type:     events.EventTicketPriorityChanged,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload:  events.TicketPriorityChangedPayload{OldPriority: oldPriority, NewPriority: priority},
	})

	s.refreshSla(ctx, actor, ticket)
	return ticket, nil
}

// AssignTeam routes a ticket to a team (or back to the unassigned pool
// with nil) and re-runs rule matching.
func (s *TicketService) AssignTeam(ctx context.Context, actor events.Actor, id string, teamID *string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if equalOptional(ticket.TeamID, teamID) {
		return ticket, nil
	}
	if teamID != nil {
		if err := s.requireActiveTeam(ctx, *teamID); err != nil {
			return nil, err
		}
	}

	oldTeamID := ticket.TeamID
	ticket.TeamID = teamID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.recordHistory(ctx, actor, ticket.ID, domain.ChangeTypeTeam,
		map[string]any{"team_id": oldTeamID},
		map[string]any{"team_id": teamID})
	s.publish(ctx, events.Event{
		Type:     events.EventTicketTeamChanged,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload:  events.TicketTeamChangedPayload{OldTeamID: oldTeamID, NewTeamID: teamID},
	})

	s.refreshSla(ctx, actor, ticket)
	return ticket, nil
}

// ExtensionPreview reports the suggested extension hours for a ticket.
func (s *TicketService) ExtensionPreview(ctx context.Context, id string) (*domain.Ticket, int, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	if ticket.SlaRuleID == nil {
		return nil, 0, errorutil.NewValidationError("ticket has no SLA tracking to extend", nil)
	}
	return ticket, s.slaService.DefaultExtensionHours(ticket), nil
}

// ExtendSla pushes a ticket's due date out by the given hours. Zero hours
// means "use the default suggestion". The state machine re-evaluates
// against the new due date immediately.
func (s *TicketService) ExtendSla(ctx context.Context, actor events.Actor, id string, hours int) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.SlaRuleID == nil {
		return nil, errorutil.NewValidationError("ticket has no SLA tracking to extend", nil)
	}
	if hours < 0 {
		return nil, errorutil.NewValidationError("extension hours must not be negative", nil)
	}
	if hours == 0 {
		hours = s.slaService.DefaultExtensionHours(ticket)
	}

	if _, err := s.slaService.ExtendDueDate(ctx, actor, ticket, hours); err != nil {
		return nil, err
	}
	if _, err := s.slaService.EvaluateStatus(ctx, actor, ticket); err != nil {
		s.logger.Warn("SLA evaluation after extension failed",
			zap.String("ticket_id", id), zap.Error(err))
	}
	return ticket, nil
}

// refreshSla re-runs matching and one evaluation after an attribute
// change. Failures are logged; the lifecycle write already succeeded.
func (s *TicketService) refreshSla(ctx context.Context, actor events.Actor, ticket *domain.Ticket) {
	if _, err := s.slaService.AssignRule(ctx, actor, ticket); err != nil {
		s.logger.Error("SLA re-assignment failed",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
		return
	}
	if _, err := s.slaService.EvaluateStatus(ctx, actor, ticket); err != nil {
		s.logger.Warn("SLA evaluation failed",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
	}
}

func (s *TicketService) requireActiveTeam(ctx context.Context, teamID string) error {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return err
	}
	if !team.IsActive {
		return errorutil.NewValidationError("team is inactive", map[string]any{"team_id": teamID})
	}
	return nil
}

func (s *TicketService) recordHistory(ctx context.Context, actor events.Actor, ticketID string, changeType domain.TicketChangeType, oldValue, newValue map[string]any) {
	if s.history == nil {
		return
	}
	entry := &domain.TicketHistory{
		TicketID:      ticketID,
		ChangedByType: actor.Type,
		ChangedByID:   actor.StaffID,
		ChangeType:    changeType,
		OldValue:      oldValue,
		NewValue:      newValue,
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Warn("recording ticket history failed",
			zap.String("ticket_id", ticketID), zap.Error(err))
	}
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = s.now()
	_ = s.dispatcher.Publish(ctx, event)
}

func validateCreateInput(input CreateTicketInput) error {
	if strings.TrimSpace(input.RequesterEmail) == "" {
		return errorutil.NewValidationError("requester email is required", nil)
	}
	if !strings.Contains(input.RequesterEmail, "@") {
		return errorutil.NewValidationError("requester email is invalid", nil)
	}
	if strings.TrimSpace(input.Title) == "" {
		return errorutil.NewValidationError("title is required", nil)
	}
	switch input.Priority {
	case domain.TicketPriorityLow, domain.TicketPriorityMedium,
		domain.TicketPriorityHigh, domain.TicketPriorityUrgent:
	default:
		return errorutil.NewValidationError("priority is invalid", nil)
	}
	return nil
}

func transitionAllowed(from, to domain.TicketStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// newExternalKey produces the human-facing ticket reference.
func newExternalKey() string {
	id := uuid.NewString()
	return "TCK-" + strings.ToUpper(id[:8])
}
