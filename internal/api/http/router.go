package http

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-sla/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-sla/internal/auth"
	"github.com/spec-kit/helpdesk-sla/internal/config"
	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/observability"
)

// RouterDependencies bundles everything the HTTP surface needs.
type RouterDependencies struct {
	Health  *handlers.HealthHandler
	Auth    *handlers.AuthHandler
	Tickets *handlers.TicketsHandler
	Rules   *handlers.RulesHandler
	Tokens  *auth.TokenManager
	Logger  *zap.Logger
}

// NewApp builds the fiber application with all routes registered.
//
// Ticket intake and reads require any authenticated staff; rule
// administration is restricted to admins.
func NewApp(cfg config.AppConfig, deps RouterDependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ErrorHandler: ErrorHandler(deps.Logger),
	})

	app.Use(observability.RequestLogger(deps.Logger))
	app.Use(RequestTimeout(cfg.RequestTimeout()))

	app.Get("/health/live", deps.Health.Live)
	app.Get("/health/ready", deps.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Post("/auth/staff/login", deps.Auth.StaffLogin)

	api := app.Group("/api/v1", auth.Middleware(deps.Tokens))

	tickets := api.Group("/tickets")
	tickets.Post("/", deps.Tickets.Create)
	tickets.Get("/", deps.Tickets.List)
	tickets.Get("/:id", deps.Tickets.Get)
	tickets.Get("/:id/history", deps.Tickets.History)
	tickets.Patch("/:id/status", deps.Tickets.UpdateStatus)
	tickets.Patch("/:id/priority", deps.Tickets.UpdatePriority)
	tickets.Patch("/:id/team", deps.Tickets.AssignTeam)
	tickets.Get("/:id/sla/extension", deps.Tickets.ExtensionPreview)
	tickets.Post("/:id/sla/extend", deps.Tickets.ExtendSla)

	rules := api.Group("/sla/rules", auth.RequireRole(domain.StaffRoleAdmin))
	rules.Post("/", deps.Rules.Create)
	rules.Get("/", deps.Rules.List)
	rules.Get("/:id", deps.Rules.Get)
	rules.Put("/:id", deps.Rules.Update)
	rules.Patch("/:id/active", deps.Rules.SetActive)

	return app
}
