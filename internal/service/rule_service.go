package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-sla/internal/cache"
	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/repository"
	"github.com/spec-kit/helpdesk-sla/pkg/util/errorutil"
)

// RuleService manages the SLA rule catalog. Every write invalidates the
// active-rule cache so matching picks up changes on the next assignment.
type RuleService struct {
	rules     repository.SlaRuleRepository
	ruleCache *cache.RuleCache
	logger    *zap.Logger
}

// NewRuleService constructs the service.
func NewRuleService(rules repository.SlaRuleRepository, ruleCache *cache.RuleCache, logger *zap.Logger) *RuleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RuleService{rules: rules, ruleCache: ruleCache, logger: logger}
}

// Create validates and stores a new rule.
func (s *RuleService) Create(ctx context.Context, rule *domain.SlaRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}
	if err := s.rules.Create(ctx, rule); err != nil {
		return err
	}
	s.ruleCache.Invalidate(ctx)
	s.logger.Info("SLA rule created",
		zap.String("rule_id", rule.ID),
		zap.String("name", rule.Name),
		zap.Int("priority", rule.Priority))
	return nil
}

// Update validates and stores changes to an existing rule.
func (s *RuleService) Update(ctx context.Context, rule *domain.SlaRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}
	if err := s.rules.Update(ctx, rule); err != nil {
		return err
	}
	s.ruleCache.Invalidate(ctx)
	s.logger.Info("SLA rule updated", zap.String("rule_id", rule.ID))
	return nil
}

// SetActive toggles a rule in or out of the matching pool. Deactivation
// never touches tickets already tracked against the rule.
func (s *RuleService) SetActive(ctx context.Context, id string, active bool) error {
	if err := s.rules.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.ruleCache.Invalidate(ctx)
	s.logger.Info("SLA rule active flag changed",
		zap.String("rule_id", id),
		zap.Bool("active", active))
	return nil
}

// GetByID fetches one rule.
func (s *RuleService) GetByID(ctx context.Context, id string) (*domain.SlaRule, error) {
	return s.rules.GetByID(ctx, id)
}

// List returns rules in matching order, optionally including inactive ones.
func (s *RuleService) List(ctx context.Context, includeInactive bool) ([]domain.SlaRule, error) {
	return s.rules.List(ctx, includeInactive)
}

func validateRule(rule *domain.SlaRule) error {
	if strings.TrimSpace(rule.Name) == "" {
		return errorutil.NewValidationError("rule name is required", nil)
	}
	if rule.TargetResolutionMinutes <= 0 {
		return errorutil.NewValidationError("target resolution minutes must be positive", nil)
	}
	if rule.TargetCloseMinutes != nil && *rule.TargetCloseMinutes <= 0 {
		return errorutil.NewValidationError("target close minutes must be positive when set", nil)
	}
	if rule.BusinessHoursEnabled {
		if err := validateBusinessHours(rule.BusinessHours); err != nil {
			return err
		}
	}
	return nil
}

func validateBusinessHours(cfg *domain.BusinessHoursConfig) error {
	if cfg == nil {
		return errorutil.NewValidationError("business hours config is required when business hours are enabled", nil)
	}
	if len(cfg.Workdays) == 0 {
		return errorutil.NewValidationError("business hours need at least one workday", nil)
	}
	for _, day := range cfg.Workdays {
		if day < 0 || day > 6 {
			return errorutil.NewValidationError(fmt.Sprintf("workday %d out of range (0=Sunday..6=Saturday)", day), nil)
		}
	}
	start, err := parseClock(cfg.StartTime)
	if err != nil {
		return errorutil.NewValidationError("business hours start time must be HH:MM", nil)
	}
	end, err := parseClock(cfg.EndTime)
	if err != nil {
		return errorutil.NewValidationError("business hours end time must be HH:MM", nil)
	}
	if !start.Before(end) {
		return errorutil.NewValidationError("business hours start must be before end", nil)
	}
	for _, holiday := range cfg.Holidays {
		if _, err := time.Parse("2006-01-02", holiday); err != nil {
			return errorutil.NewValidationError(fmt.Sprintf("holiday %q must be YYYY-MM-DD", holiday), nil)
		}
	}
	return nil
}

func parseClock(value string) (time.Time, error) {
	return time.Parse("15:04", value)
}
