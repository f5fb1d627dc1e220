package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-sla/internal/cache"
	"github.com/spec-kit/helpdesk-sla/internal/config"
	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/events"
	"github.com/spec-kit/helpdesk-sla/internal/observability"
	"github.com/spec-kit/helpdesk-sla/internal/repository"
	"github.com/spec-kit/helpdesk-sla/internal/sla"
)

// SlaService orchestrates the SLA engine around a ticket: rule matching
// and due-date assignment when ticket attributes change, breach-state
// evaluation on view or sweep, and manual due-date extensions. Each
// operation performs one ticket read (by the caller) and one SLA write,
// guarded by optimistic concurrency.
type SlaService struct {
	rules      repository.SlaRuleRepository
	tickets    repository.TicketRepository
	statuses   repository.StatusTypeRepository
	history    repository.TicketHistoryRepository
	ruleCache  *cache.RuleCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
	loc        *time.Location
	now        func() time.Time
}

// SlaDependencies bundles collaborators for the SLA service.
type SlaDependencies struct {
	RuleRepo    repository.SlaRuleRepository
	TicketRepo  repository.TicketRepository
	StatusRepo  repository.StatusTypeRepository
	HistoryRepo repository.TicketHistoryRepository
	RuleCache   *cache.RuleCache
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewSlaService constructs the service. An unknown organization timezone
// is logged and degrades to UTC rather than failing startup.
func NewSlaService(cfg config.SlaConfig, deps SlaDependencies) *SlaService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loc, err := sla.LoadLocation(cfg.OrgTimezone)
	if err != nil {
		logger.Warn("falling back to UTC for SLA arithmetic", zap.Error(err))
	}
	return &SlaService{
		rules:      deps.RuleRepo,
		tickets:    deps.TicketRepo,
		statuses:   deps.StatusRepo,
		history:    deps.HistoryRepo,
		ruleCache:  deps.RuleCache,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		loc:        loc,
		now:        time.Now,
	}
}

// Location returns the organization timezone used for business-hours and
// extension arithmetic.
func (s *SlaService) Location() *time.Location {
	return s.loc
}

// AssignRule re-runs rule matching for a ticket and recomputes its due
// date. Call it on creation and whenever a condition-relevant attribute
// (priority, category, team, status) changes. Matching against no rule
// clears SLA tracking entirely; matching resets the breach state machine
// from scratch.
func (s *SlaService) AssignRule(ctx context.Context, actor events.Actor, ticket *domain.Ticket) (*domain.SlaRule, error) {
	rules, err := s.activeRules(ctx)
	if err != nil {
		return nil, err
	}

	matched := sla.Match(sla.AttributesOf(ticket), rules)

	prevRuleID := ticket.SlaRuleID
	prevDueAt := ticket.SlaDueAt

	if matched == nil {
		observability.SlaRuleAssignmentsTotal.WithLabelValues("unmatched").Inc()
		if ticket.SlaRuleID == nil {
			return nil, nil
		}
		ticket.SlaRuleID = nil
		ticket.SlaDueAt = nil
		ticket.SlaStatus = nil
		ticket.SlaBreachedAt = nil
	} else {
		observability.SlaRuleAssignmentsTotal.WithLabelValues("matched").Inc()
		due, fellBack := sla.DueDate(ticket.CreatedAt, matched.TargetResolutionMinutes,
			matched.BusinessHoursEnabled, matched.BusinessHours, s.loc)
		if fellBack {
			observability.SlaDueDateFallbacksTotal.Inc()
			s.logger.Warn("business-hours config unusable; due date computed naively",
				zap.String("rule_id", matched.ID),
				zap.String("ticket_id", ticket.ID))
		}
		if prevRuleID != nil && *prevRuleID == matched.ID && prevDueAt != nil && prevDueAt.Equal(due) {
			// Same rule, same due date: nothing to write.
			return matched, nil
		}
		onTrack := domain.SlaStatusOnTrack
		ticket.SlaRuleID = &matched.ID
		ticket.SlaDueAt = &due
		ticket.SlaStatus = &onTrack
		ticket.SlaBreachedAt = nil
	}

	if err := s.tickets.UpdateSLA(ctx, ticket); err != nil {
		return nil, err
	}
	s.recordHistory(ctx, actor, ticket.ID, domain.ChangeTypeSlaRule,
		map[string]any{"sla_rule_id": prevRuleID, "sla_due_at": prevDueAt},
		map[string]any{"sla_rule_id": ticket.SlaRuleID, "sla_due_at": ticket.SlaDueAt})

	payload := events.SlaRuleAssignedPayload{RuleID: ticket.SlaRuleID, DueAt: ticket.SlaDueAt}
	if matched != nil {
		payload.RuleName = matched.Name
	}
	s.publish(ctx, events.Event{
		Type:     events.EventSlaRuleAssigned,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload:  payload,
	})
	return matched, nil
}

// EvaluateStatus runs the breach state machine once for a ticket and
// persists the result when it changed. The on-view path and the periodic
// sweep both come through here, so behavior stays consistent. Returns
// whether the status changed.
func (s *SlaService) EvaluateStatus(ctx context.Context, actor events.Actor, ticket *domain.Ticket) (bool, error) {
	if ticket.SlaRuleID == nil || ticket.SlaDueAt == nil || ticket.SlaStatus == nil {
		return false, nil
	}

	rule, err := s.rules.GetByID(ctx, *ticket.SlaRuleID)
	if err != nil {
		return false, err
	}
	closed, err := s.statuses.IsClosedType(ctx, ticket.Status)
	if err != nil {
		return false, err
	}

	// The approaching-breach ratio runs against the current due window, not
	// the rule's raw target, so an extension enlarges the target and can
	// legitimately move an approaching ticket back to on-track.
	targetMinutes := int(ticket.SlaDueAt.Sub(ticket.CreatedAt).Minutes())
	if targetMinutes <= 0 {
		targetMinutes = rule.TargetResolutionMinutes
	}

	eval := sla.Evaluate(sla.EvaluationInput{
		Now:           s.now(),
		CreatedAt:     ticket.CreatedAt,
		DueAt:         *ticket.SlaDueAt,
		TargetMinutes: targetMinutes,
		CurrentStatus: *ticket.SlaStatus,
		Closed:        closed,
	})
	observability.SlaEvaluationsTotal.WithLabelValues(string(eval.Status)).Inc()
	if !eval.Changed {
		return false, nil
	}

	prevStatus := *ticket.SlaStatus
	status := eval.Status
	ticket.SlaStatus = &status
	if eval.BreachedNow && ticket.SlaBreachedAt == nil {
		breachedAt := s.now()
		ticket.SlaBreachedAt = &breachedAt
	}

	if err := s.tickets.UpdateSLA(ctx, ticket); err != nil {
		return false, err
	}
	s.recordHistory(ctx, actor, ticket.ID, domain.ChangeTypeSlaStatus,
		map[string]any{"sla_status": prevStatus},
		map[string]any{"sla_status": status})

	switch status {
	case domain.SlaStatusBreached:
		observability.SlaBreachesTotal.Inc()
		payload := events.SlaBreachedPayload{
			RuleID:     rule.ID,
			DueAt:      *ticket.SlaDueAt,
			BreachedAt: *ticket.SlaBreachedAt,
			AssigneeID: ticket.AssigneeID,
		}
		if rule.BreachBehavior != nil {
			payload.NotifyAssignee = rule.BreachBehavior.NotifyAssignee
		}
		s.publish(ctx, events.Event{
			Type:     events.EventSlaBreached,
			TicketID: ticket.ID,
			Actor:    actor,
			Payload:  payload,
		})
	case domain.SlaStatusApproachingBreach:
		s.publish(ctx, events.Event{
			Type:     events.EventSlaApproachingBreach,
			TicketID: ticket.ID,
			Actor:    actor,
			Payload: events.SlaApproachingBreachPayload{
				RuleID: rule.ID,
				DueAt:  *ticket.SlaDueAt,
			},
		})
	}
	return true, nil
}

// DefaultExtensionHours suggests an extension length for a ticket,
// targeting 4:00 PM local on the next business day.
func (s *SlaService) DefaultExtensionHours(ticket *domain.Ticket) int {
	return sla.DefaultExtensionHours(ticket.SlaDueAt, s.now(), s.loc)
}

// ExtendDueDate pushes a ticket's due date out by the given whole hours
// and persists it. Extension limits (how many, how large) are the
// caller's policy. The next evaluation runs against the new target, which
// can legitimately move an approaching ticket back to on-track.
func (s *SlaService) ExtendDueDate(ctx context.Context, actor events.Actor, ticket *domain.Ticket, hours int) (time.Time, error) {
	prevDueAt := ticket.SlaDueAt
	newDue := sla.ExtendedDueDate(ticket.SlaDueAt, s.now(), hours)
	ticket.SlaDueAt = &newDue

	if err := s.tickets.UpdateSLA(ctx, ticket); err != nil {
		return time.Time{}, err
	}
	s.recordHistory(ctx, actor, ticket.ID, domain.ChangeTypeSlaDueDate,
		map[string]any{"sla_due_at": prevDueAt},
		map[string]any{"sla_due_at": newDue, "extension_hours": hours})
	s.publish(ctx, events.Event{
		Type:     events.EventSlaDueDateExtended,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload: events.SlaDueDateExtendedPayload{
			OldDueAt:       prevDueAt,
			NewDueAt:       newDue,
			ExtensionHours: hours,
		},
	})
	return newDue, nil
}

func (s *SlaService) activeRules(ctx context.Context) ([]domain.SlaRule, error) {
	if rules, ok := s.ruleCache.GetActive(ctx); ok {
		return rules, nil
	}
	rules, err := s.rules.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	s.ruleCache.SetActive(ctx, rules)
	return rules, nil
}

func (s *SlaService) recordHistory(ctx context.Context, actor events.Actor, ticketID string, changeType domain.TicketChangeType, oldValue, newValue map[string]any) {
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
			zap.String("ticket_id", ticketID),
			zap.String("change_type", string(changeType)),
			zap.Error(err))
	}
}

func (s *SlaService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// SystemActor identifies engine-initiated changes such as the sweep.
func SystemActor() events.Actor {
	return events.Actor{Type: domain.SubjectTypeSystem}
}

// StaffActor identifies a staff-initiated change.
func StaffActor(staffID string) events.Actor {
	return events.Actor{Type: domain.SubjectTypeStaff, StaffID: &staffID}
}
