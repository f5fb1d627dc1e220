package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/events"
)

type ticketServiceFixture struct {
	svc        *TicketService
	sla        *SlaService
	tickets    *fakeTicketRepo
	rules      *fakeRuleRepo
	dispatcher *recordingDispatcher
	now        time.Time
}

func newTicketServiceFixture(t *testing.T, rules []domain.SlaRule) *ticketServiceFixture {
	t.Helper()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	ruleRepo := &fakeRuleRepo{rules: rules}
	ticketRepo := newFakeTicketRepo()
	dispatcher := &recordingDispatcher{}
	slaSvc := newTestSlaService(t, ruleRepo, ticketRepo, dispatcher, now)

	teamRepo := &fakeTeamRepo{teams: map[string]*domain.Team{
		"team-active":   {ID: "team-active", Name: "Support", IsActive: true},
		"team-inactive": {ID: "team-inactive", Name: "Legacy", IsActive: false},
	}}
	svc := NewTicketService(TicketDependencies{
		TicketRepo:  ticketRepo,
		TeamRepo:    teamRepo,
		StatusRepo:  newFakeStatusRepo(),
		HistoryRepo: &fakeHistoryRepo{},
		SlaService:  slaSvc,
		Dispatcher:  dispatcher,
	})
	svc.now = func() time.Time { return now }
	return &ticketServiceFixture{
		svc:        svc,
		sla:        slaSvc,
		tickets:    ticketRepo,
		rules:      ruleRepo,
		dispatcher: dispatcher,
		now:        now,
	}
}

func validInput() CreateTicketInput {
	return CreateTicketInput{
		RequesterEmail: "user@example.com",
		Title:          "Printer on fire",
		Priority:       domain.TicketPriorityUrgent,
	}
}

func TestCreateAssignsRuleImmediately(t *testing.T) {
	f := newTicketServiceFixture(t, []domain.SlaRule{urgentRule()})

	ticket, err := f.svc.Create(context.Background(), SystemActor(), validInput())
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.NotEmpty(t, ticket.ExternalKey)
	require.NotNil(t, ticket.SlaRuleID)
	assert.Equal(t, "rule-urgent", *ticket.SlaRuleID)
	assert.Len(t, f.dispatcher.ofType(events.EventTicketCreated), 1)
	assert.Len(t, f.dispatcher.ofType(events.EventSlaRuleAssigned), 1)
}

func TestCreateValidation(t *testing.T) {
	f := newTicketServiceFixture(t, nil)

	tests := []struct {
		name   string
		mutate func(*CreateTicketInput)
	}{
		{"missing email", func(in *CreateTicketInput) { in.RequesterEmail = "" }},
		{"bad email", func(in *CreateTicketInput) { in.RequesterEmail = "not-an-email" }},
		{"missing title", func(in *CreateTicketInput) { in.Title = "  " }},
		{"bad priority", func(in *CreateTicketInput) { in.Priority = "SEVERE" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)
			_, err := f.svc.Create(context.Background(), SystemActor(), input)
			assert.Error(t, err)
		})
	}
}

func TestCreateRejectsInactiveTeam(t *testing.T) {
	f := newTicketServiceFixture(t, nil)

	input := validInput()
	inactive := "team-inactive"
	input.TeamID = &inactive
	_, err := f.svc.Create(context.Background(), SystemActor(), input)
	assert.Error(t, err)

	active := "team-active"
	input.TeamID = &active
	_, err = f.svc.Create(context.Background(), SystemActor(), input)
	assert.NoError(t, err)
}

func TestUpdateStatusEnforcesTransitions(t *testing.T) {
	f := newTicketServiceFixture(t, nil)
	ticket, err := f.svc.Create(context.Background(), SystemActor(), validInput())
	require.NoError(t, err)

	// OPEN cannot jump straight to RESOLVED.
	_, err = f.svc.UpdateStatus(context.Background(), StaffActor("s1"), ticket.ID, domain.TicketStatusResolved, "")
	assert.Error(t, err)

	updated, err := f.svc.UpdateStatus(context.Background(), StaffActor("s1"), ticket.ID, domain.TicketStatusInProgress, "picked up")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
	assert.Nil(t, updated.ClosedAt)

	updated, err = f.svc.UpdateStatus(context.Background(), StaffActor("s1"), ticket.ID, domain.TicketStatusResolved, "fixed")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, updated.Status)
	require.NotNil(t, updated.ClosedAt)
	assert.Equal(t, f.now, *updated.ClosedAt)
}

func TestCloseSettlesSlaToCompleted(t *testing.T) {
	f := newTicketServiceFixture(t, []domain.SlaRule{urgentRule()})
	ticket, err := f.svc.Create(context.Background(), SystemActor(), validInput())
	require.NoError(t, err)
	require.NotNil(t, ticket.SlaStatus)

	_, err = f.svc.UpdateStatus(context.Background(), StaffActor("s1"), ticket.ID, domain.TicketStatusInProgress, "")
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(context.Background(), StaffActor("s1"), ticket.ID, domain.TicketStatusResolved, "")
	require.NoError(t, err)

	stored, err := f.tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.SlaStatus)
	assert.Equal(t, domain.SlaStatusCompleted, *stored.SlaStatus)
}

func TestUpdatePriorityRematchesRule(t *testing.T) {
	highRule := domain.SlaRule{
		ID:                      "rule-high",
		Name:                    "High response",
		Conditions:              []domain.RuleCondition{{Key: "priority", Value: "HIGH"}},
		TargetResolutionMinutes: 480,
		Priority:                2,
		IsActive:                true,
	}
	f := newTicketServiceFixture(t, []domain.SlaRule{urgentRule(), highRule})

	ticket, err := f.svc.Create(context.Background(), SystemActor(), validInput())
	require.NoError(t, err)
	require.Equal(t, "rule-urgent", *ticket.SlaRuleID)

	updated, err := f.svc.UpdatePriority(context.Background(), StaffActor("s1"), ticket.ID, domain.TicketPriorityHigh)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityHigh, updated.Priority)

	stored, err := f.tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.SlaRuleID)
	assert.Equal(t, "rule-high", *stored.SlaRuleID)
	assert.Len(t, f.dispatcher.ofType(events.EventTicketPriorityChanged), 1)
}

func TestAssignTeamValidatesAndRematches(t *testing.T) {
	f := newTicketServiceFixture(t, nil)
	ticket, err := f.svc.Create(context.Background(), SystemActor(), validInput())
	require.NoError(t, err)

	inactive := "team-inactive"
	_, err = f.svc.AssignTeam(context.Background(), StaffActor("s1"), ticket.ID, &inactive)
	assert.Error(t, err)

	active := "team-active"
	updated, err := f.svc.AssignTeam(context.Background(), StaffActor("s1"), ticket.ID, &active)
	require.NoError(t, err)
	require.NotNil(t, updated.TeamID)
	assert.Equal(t, active, *updated.TeamID)
	assert.Len(t, f.dispatcher.ofType(events.EventTicketTeamChanged), 1)

	// Re-assigning the same team is a no-op.
	before := len(f.dispatcher.published)
	_, err = f.svc.AssignTeam(context.Background(), StaffActor("s1"), ticket.ID, &active)
	require.NoError(t, err)
	assert.Len(t, f.dispatcher.published, before)
}

func TestExtendSlaRequiresTracking(t *testing.T) {
	f := newTicketServiceFixture(t, nil)
	ticket, err := f.svc.Create(context.Background(), SystemActor(), validInput())
	require.NoError(t, err)
	require.Nil(t, ticket.SlaRuleID)

	_, err = f.svc.ExtendSla(context.Background(), StaffActor("s1"), ticket.ID, 4)
	assert.Error(t, err)
}

func TestExtendSlaZeroHoursUsesDefault(t *testing.T) {
	f := newTicketServiceFixture(t, []domain.SlaRule{urgentRule()})
	ticket, err := f.svc.Create(context.Background(), SystemActor(), validInput())
	require.NoError(t, err)
	originalDue := *ticket.SlaDueAt

	// Default target is 4:00 PM next business day; from Mon 11:00 due that
	// is Tue 16:00, a 29 hour extension.
	updated, err := f.svc.ExtendSla(context.Background(), StaffActor("s1"), ticket.ID, 0)
	require.NoError(t, err)
	require.NotNil(t, updated.SlaDueAt)
	assert.Equal(t, originalDue.Add(29*time.Hour), *updated.SlaDueAt)
}

func TestExtendSlaRejectsNegativeHours(t *testing.T) {
	f := newTicketServiceFixture(t, []domain.SlaRule{urgentRule()})
	ticket, err := f.svc.Create(context.Background(), SystemActor(), validInput())
	require.NoError(t, err)

	_, err = f.svc.ExtendSla(context.Background(), StaffActor("s1"), ticket.ID, -3)
	assert.Error(t, err)
}
