package worker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-sla/internal/config"
	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/events"
	"github.com/spec-kit/helpdesk-sla/internal/repository"
)

type sweepTicketRepo struct {
	repository.TicketRepository
	tickets   []domain.Ticket
	listCalls int
}

func (f *sweepTicketRepo) ListOpenWithRule(ctx context.Context, afterID string, limit int) ([]domain.Ticket, error) {
	f.listCalls++
	sorted := append([]domain.Ticket{}, f.tickets...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var out []domain.Ticket
	for _, ticket := range sorted {
		if afterID != "" && ticket.ID <= afterID {
			continue
		}
		out = append(out, ticket)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type recordingEvaluator struct {
	seen    []string
	failIDs map[string]bool
	cancel  context.CancelFunc
}

func (e *recordingEvaluator) EvaluateStatus(ctx context.Context, actor events.Actor, ticket *domain.Ticket) (bool, error) {
	e.seen = append(e.seen, ticket.ID)
	if e.cancel != nil {
		e.cancel()
	}
	if e.failIDs[ticket.ID] {
		return false, errors.New("boom")
	}
	return true, nil
}

func sweepTickets(n int) []domain.Ticket {
	onTrack := domain.SlaStatusOnTrack
	ruleID := "rule-1"
	out := make([]domain.Ticket, n)
	for i := range out {
		out[i] = domain.Ticket{
			ID:        fmt.Sprintf("t-%03d", i),
			SlaRuleID: &ruleID,
			SlaStatus: &onTrack,
		}
	}
	return out
}

func newSweeper(t *testing.T, repo *sweepTicketRepo, eval Evaluator, batchSize int) *SlaSweeper {
	t.Helper()
	sweeper, err := NewSlaSweeper(config.SlaConfig{
		SweepSchedule:  "@every 5m",
		SweepBatchSize: batchSize,
	}, repo, eval, nil)
	require.NoError(t, err)
	return sweeper
}

func TestNewSlaSweeperRejectsBadSchedule(t *testing.T) {
	_, err := NewSlaSweeper(config.SlaConfig{SweepSchedule: "not a schedule"}, nil, nil, nil)
	assert.Error(t, err)
}

func TestRunOnceVisitsEveryTicketAcrossBatches(t *testing.T) {
	repo := &sweepTicketRepo{tickets: sweepTickets(25)}
	eval := &recordingEvaluator{}
	sweeper := newSweeper(t, repo, eval, 10)

	sweeper.RunOnce(context.Background())

	assert.Len(t, eval.seen, 25)
	// 10 + 10 + 5; the short final batch ends the pass.
	assert.Equal(t, 3, repo.listCalls)
}

func TestRunOnceContinuesPastFailures(t *testing.T) {
	repo := &sweepTicketRepo{tickets: sweepTickets(5)}
	eval := &recordingEvaluator{failIDs: map[string]bool{"t-002": true}}
	sweeper := newSweeper(t, repo, eval, 10)

	sweeper.RunOnce(context.Background())

	assert.Len(t, eval.seen, 5)
}

func TestRunOnceStopsOnCancellation(t *testing.T) {
	repo := &sweepTicketRepo{tickets: sweepTickets(10)}
	ctx, cancel := context.WithCancel(context.Background())
	eval := &recordingEvaluator{cancel: cancel}
	sweeper := newSweeper(t, repo, eval, 10)

	sweeper.RunOnce(ctx)

	// The first evaluation cancels the context; the pass stops before the
	// second ticket.
	assert.Len(t, eval.seen, 1)
}

func TestStartStopIsIdempotent(t *testing.T) {
	repo := &sweepTicketRepo{}
	sweeper := newSweeper(t, repo, &recordingEvaluator{}, 10)

	sweeper.Start(context.Background())
	sweeper.Start(context.Background())
	sweeper.Stop()
	sweeper.Stop()
}
