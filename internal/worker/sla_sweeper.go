package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-sla/internal/config"
	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/events"
	"github.com/spec-kit/helpdesk-sla/internal/observability"
	"github.com/spec-kit/helpdesk-sla/internal/repository"
)

// Evaluator is the slice of the SLA service the sweep needs.
type Evaluator interface {
	EvaluateStatus(ctx context.Context, actor events.Actor, ticket *domain.Ticket) (bool, error)
}

// SlaSweeper periodically walks every open SLA-tracked ticket and runs
// one breach-state evaluation, so breaches surface even when nobody
// views the ticket. The schedule is a cron expression (robfig/cron
// syntax, "@every 5m" style descriptors included).
type SlaSweeper struct {
	tickets   repository.TicketRepository
	evaluator Evaluator
	schedule  cron.Schedule
	batchSize int
	logger    *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewSlaSweeper builds the sweeper; it fails when the schedule expression
// does not parse.
func NewSlaSweeper(cfg config.SlaConfig, tickets repository.TicketRepository, evaluator Evaluator, logger *zap.Logger) (*SlaSweeper, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	schedule, err := cron.ParseStandard(cfg.SweepSchedule)
	if err != nil {
		return nil, err
	}
	batchSize := cfg.SweepBatchSize
	if batchSize <= 0 {
		batchSize = 200
	}
	return &SlaSweeper{
		tickets:   tickets,
		evaluator: evaluator,
		schedule:  schedule,
		batchSize: batchSize,
		logger:    logger,
	}, nil
}

// Start launches the sweep loop. Calling Start on a running sweeper is a
// no-op.
func (s *SlaSweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.loop(ctx)
	s.logger.Info("SLA sweeper started")
}

// Stop cancels the loop and waits for an in-flight pass to finish.
func (s *SlaSweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.running = false
	s.mu.Unlock()

	cancel()
	<-done
	s.logger.Info("SLA sweeper stopped")
}

func (s *SlaSweeper) loop(ctx context.Context) {
	defer close(s.done)
	timer := time.NewTimer(time.Until(s.schedule.Next(time.Now())))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.RunOnce(ctx)
			timer.Reset(time.Until(s.schedule.Next(time.Now())))
		}
	}
}

// RunOnce performs a single sweep pass over all open tracked tickets,
// in keyset-paginated batches. Context cancellation stops the pass
// between tickets; individual failures are counted and skipped.
func (s *SlaSweeper) RunOnce(ctx context.Context) {
	started := time.Now()
	var visited, changed, failed int
	afterID := ""

	for {
		batch, err := s.tickets.ListOpenWithRule(ctx, afterID, s.batchSize)
		if err != nil {
			s.logger.Error("sweep batch listing failed", zap.Error(err))
			break
		}
		if len(batch) == 0 {
			break
		}
		for i := range batch {
			if ctx.Err() != nil {
				s.finish(started, visited, changed, failed, true)
				return
			}
			ticket := &batch[i]
			visited++
			didChange, err := s.evaluator.EvaluateStatus(ctx, actorSystem(), ticket)
			switch {
			case errors.Is(err, repository.ErrVersionConflict):
				// Someone else updated the ticket mid-sweep; the next
				// pass or the on-view path will catch it.
				observability.SweepTicketsTotal.WithLabelValues("unchanged").Inc()
			case err != nil:
				failed++
				observability.SweepTicketsTotal.WithLabelValues("error").Inc()
				s.logger.Warn("sweep evaluation failed",
					zap.String("ticket_id", ticket.ID), zap.Error(err))
			case didChange:
				changed++
				observability.SweepTicketsTotal.WithLabelValues("changed").Inc()
			default:
				observability.SweepTicketsTotal.WithLabelValues("unchanged").Inc()
			}
		}
		if len(batch) < s.batchSize {
			break
		}
		afterID = batch[len(batch)-1].ID
	}
	s.finish(started, visited, changed, failed, false)
}

func (s *SlaSweeper) finish(started time.Time, visited, changed, failed int, interrupted bool) {
	duration := time.Since(started)
	observability.SweepDurationSeconds.Observe(duration.Seconds())
	s.logger.Info("SLA sweep pass finished",
		zap.Int("visited", visited),
		zap.Int("changed", changed),
		zap.Int("failed", failed),
		zap.Bool("interrupted", interrupted),
		zap.Duration("duration", duration))
}

func actorSystem() events.Actor {
	return events.Actor{Type: domain.SubjectTypeSystem}
}
