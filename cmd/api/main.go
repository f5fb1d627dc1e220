package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httpapi "github.com/spec-kit/helpdesk-sla/internal/api/http"
	"github.com/spec-kit/helpdesk-sla/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-sla/internal/auth"
	"github.com/spec-kit/helpdesk-sla/internal/cache"
	"github.com/spec-kit/helpdesk-sla/internal/config"
	"github.com/spec-kit/helpdesk-sla/internal/events"
	"github.com/spec-kit/helpdesk-sla/internal/observability"
	"github.com/spec-kit/helpdesk-sla/internal/persistence"
	"github.com/spec-kit/helpdesk-sla/internal/repository"
	"github.com/spec-kit/helpdesk-sla/internal/service"
	"github.com/spec-kit/helpdesk-sla/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("postgres connection failed", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
	}

	rdb := persistence.NewRedis(cfg.Redis, logger)
	defer rdb.Close()

	pool := pg.PoolHandle()
	ruleRepo := repository.NewSlaRuleRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	statusRepo := repository.NewStatusTypeRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)
	teamRepo := repository.NewTeamRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)

	dispatcher := events.NewInMemoryDispatcher(logger)
	ruleCache := cache.NewRuleCache(rdb.Client, cfg.Sla.RuleCacheTTL(), logger)

	slaService := service.NewSlaService(cfg.Sla, service.SlaDependencies{
		RuleRepo:    ruleRepo,
		TicketRepo:  ticketRepo,
		StatusRepo:  statusRepo,
		HistoryRepo: historyRepo,
		RuleCache:   ruleCache,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	ruleService := service.NewRuleService(ruleRepo, ruleCache, logger)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		TeamRepo:    teamRepo,
		StatusRepo:  statusRepo,
		HistoryRepo: historyRepo,
		SlaService:  slaService,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})

	tokens := auth.NewTokenManager(cfg.Auth, cfg.App.Name)
	authService := service.NewAuthService(staffRepo, tokens, logger)

	notifications := service.NewNotificationService(staffRepo, logger)
	notifications.Register(dispatcher)

	sweeper, err := worker.NewSlaSweeper(cfg.Sla, ticketRepo, slaService, logger)
	if err != nil {
		logger.Fatal("invalid sweep schedule", zap.Error(err))
	}
	sweeper.Start(ctx)
	defer sweeper.Stop()

	app := httpapi.NewApp(cfg.App, httpapi.RouterDependencies{
		Health:  handlers.NewHealthHandler(pg, rdb, cfg.App.Version),
		Auth:    handlers.NewAuthHandler(authService),
		Tickets: handlers.NewTicketsHandler(ticketService),
		Rules:   handlers.NewRulesHandler(ruleService),
		Tokens:  tokens,
		Logger:  logger,
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Error("http server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("http shutdown incomplete", zap.Error(err))
	}
}
