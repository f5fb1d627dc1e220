package service

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/events"
	"github.com/spec-kit/helpdesk-sla/internal/repository"
)

type fakeRuleRepo struct {
	rules []domain.SlaRule
}

func (f *fakeRuleRepo) Create(ctx context.Context, rule *domain.SlaRule) error {
	f.rules = append(f.rules, *rule)
	return nil
}

func (f *fakeRuleRepo) Update(ctx context.Context, rule *domain.SlaRule) error {
	for i := range f.rules {
		if f.rules[i].ID == rule.ID {
			f.rules[i] = *rule
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeRuleRepo) GetByID(ctx context.Context, id string) (*domain.SlaRule, error) {
	for i := range f.rules {
		if f.rules[i].ID == id {
			rule := f.rules[i]
			return &rule, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeRuleRepo) List(ctx context.Context, includeInactive bool) ([]domain.SlaRule, error) {
	if includeInactive {
		return append([]domain.SlaRule{}, f.rules...), nil
	}
	return f.ListActive(ctx)
}

func (f *fakeRuleRepo) ListActive(ctx context.Context) ([]domain.SlaRule, error) {
	var active []domain.SlaRule
	for _, rule := range f.rules {
		if rule.IsActive {
			active = append(active, rule)
		}
	}
	return active, nil
}

func (f *fakeRuleRepo) SetActive(ctx context.Context, id string, active bool) error {
	for i := range f.rules {
		if f.rules[i].ID == id {
			f.rules[i].IsActive = active
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeTicketRepo struct {
	mu         sync.Mutex
	tickets    map[string]*domain.Ticket
	slaUpdates int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]*domain.Ticket)}
}

func (f *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *ticket
	f.tickets[ticket.ID] = &stored
	return nil
}

func (f *fakeTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *ticket
	f.tickets[ticket.ID] = &stored
	return nil
}

func (f *fakeTicketRepo) UpdateSLA(ctx context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Version != ticket.Version {
		return repository.ErrVersionConflict
	}
	f.slaUpdates++
	ticket.Version++
	copied := *ticket
	f.tickets[ticket.ID] = &copied
	return nil
}

func (f *fakeTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeTicketRepo) GetByExternalKey(ctx context.Context, key string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, stored := range f.tickets {
		if stored.ExternalKey == key {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Ticket
	for _, stored := range f.tickets {
		out = append(out, *stored)
	}
	return out, nil
}

func (f *fakeTicketRepo) ListOpenWithRule(ctx context.Context, afterID string, limit int) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Ticket
	for _, stored := range f.tickets {
		if stored.SlaRuleID == nil || stored.SlaStatus == nil {
			continue
		}
		switch *stored.SlaStatus {
		case domain.SlaStatusOnTrack, domain.SlaStatusApproachingBreach:
			out = append(out, *stored)
		}
	}
	return out, nil
}

type fakeStatusRepo struct {
	closed map[domain.TicketStatus]bool
}

func newFakeStatusRepo() *fakeStatusRepo {
	return &fakeStatusRepo{closed: map[domain.TicketStatus]bool{
		domain.TicketStatusResolved:  true,
		domain.TicketStatusClosed:    true,
		domain.TicketStatusCancelled: true,
	}}
}

func (f *fakeStatusRepo) List(ctx context.Context) ([]domain.StatusType, error) {
	return nil, nil
}

func (f *fakeStatusRepo) IsClosedType(ctx context.Context, status domain.TicketStatus) (bool, error) {
	return f.closed[status], nil
}

type fakeHistoryRepo struct {
	entries []domain.TicketHistory
}

func (f *fakeHistoryRepo) Create(ctx context.Context, history *domain.TicketHistory) error {
	f.entries = append(f.entries, *history)
	return nil
}

func (f *fakeHistoryRepo) ListByTicket(ctx context.Context, ticketID string, limit, offset int) ([]domain.TicketHistory, error) {
	var out []domain.TicketHistory
	for _, entry := range f.entries {
		if entry.TicketID == ticketID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type fakeTeamRepo struct {
	teams map[string]*domain.Team
}

func (f *fakeTeamRepo) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	team, ok := f.teams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *team
	return &copied, nil
}

func (f *fakeTeamRepo) List(ctx context.Context) ([]domain.Team, error) {
	var out []domain.Team
	for _, team := range f.teams {
		out = append(out, *team)
	}
	return out, nil
}

type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

func (d *recordingDispatcher) ofType(eventType events.EventType) []events.Event {
	var out []events.Event
	for _, event := range d.published {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}
