package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-sla/internal/api/dto"
	"github.com/spec-kit/helpdesk-sla/internal/service"
	"github.com/spec-kit/helpdesk-sla/pkg/util/errorutil"
)

// RulesHandler serves the SLA rule admin API.
type RulesHandler struct {
	rules *service.RuleService
}

// NewRulesHandler constructs the handler.
func NewRulesHandler(rules *service.RuleService) *RulesHandler {
	return &RulesHandler{rules: rules}
}

// Create adds a rule to the catalog.
func (h *RulesHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid request body", nil)
	}

	rule := req.ToRule()
	if err := h.rules.Create(c.UserContext(), rule); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromRule(rule))
}

// Update modifies a rule. Changes take effect for future matching only.
func (h *RulesHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid request body", nil)
	}

	rule, err := h.rules.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	req.Apply(rule)
	if err := h.rules.Update(c.UserContext(), rule); err != nil {
		return err
	}
	return c.JSON(dto.FromRule(rule))
}

// SetActive toggles a rule in or out of the matching pool.
func (h *RulesHandler) SetActive(c *fiber.Ctx) error {
	var req dto.SetRuleActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid request body", nil)
	}
	if err := h.rules.SetActive(c.UserContext(), c.Params("id"), req.IsActive); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Get fetches one rule.
func (h *RulesHandler) Get(c *fiber.Ctx) error {
	rule, err := h.rules.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.FromRule(rule))
}

// List returns rules in matching order.
func (h *RulesHandler) List(c *fiber.Ctx) error {
	includeInactive := c.QueryBool("include_inactive", false)
	rules, err := h.rules.List(c.UserContext(), includeInactive)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"rules": dto.FromRules(rules)})
}
