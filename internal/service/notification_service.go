package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-sla/internal/events"
	"github.com/spec-kit/helpdesk-sla/internal/repository"
)

// NotificationService turns SLA events into assignee notifications. The
// delivery channel is the structured log; an SMTP or webhook sender can
// replace notify without touching the subscriptions.
type NotificationService struct {
	staff  repository.StaffRepository
	logger *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(staff repository.StaffRepository, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{staff: staff, logger: logger}
}

// Register subscribes the service to breach and approaching-breach events.
func (s *NotificationService) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventSlaBreached, s.handleBreached)
	dispatcher.Subscribe(events.EventSlaApproachingBreach, s.handleApproaching)
}

func (s *NotificationService) handleBreached(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SlaBreachedPayload)
	if !ok {
		return nil
	}
	fields := []zap.Field{
		zap.String("ticket_id", event.TicketID),
		zap.String("rule_id", payload.RuleID),
		zap.Time("due_at", payload.DueAt),
		zap.Time("breached_at", payload.BreachedAt),
	}
	if !payload.NotifyAssignee || payload.AssigneeID == nil {
		s.logger.Info("SLA breached, no assignee notification configured", fields...)
		return nil
	}
	staff, err := s.staff.GetByID(ctx, *payload.AssigneeID)
	if err != nil {
		s.logger.Warn("breach notification skipped, assignee lookup failed",
			append(fields, zap.Error(err))...)
		return nil
	}
	s.notify(staff.Email, "SLA breached", fields)
	return nil
}

func (s *NotificationService) handleApproaching(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SlaApproachingBreachPayload)
	if !ok {
		return nil
	}
	s.logger.Info("SLA approaching breach",
		zap.String("ticket_id", event.TicketID),
		zap.String("rule_id", payload.RuleID),
		zap.Time("due_at", payload.DueAt))
	return nil
}

func (s *NotificationService) notify(recipient, subject string, fields []zap.Field) {
	s.logger.Info("notification dispatched",
		append([]zap.Field{
			zap.String("recipient", recipient),
			zap.String("subject", subject),
		}, fields...)...)
}
