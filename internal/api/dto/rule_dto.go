package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

// RuleConditionDTO mirrors domain.RuleCondition on the wire.
type RuleConditionDTO struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// BusinessHoursDTO mirrors domain.BusinessHoursConfig on the wire.
type BusinessHoursDTO struct {
	Workdays  []int    `json:"workdays"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	Holidays  []string `json:"holidays,omitempty"`
}

// BreachBehaviorDTO mirrors domain.BreachBehavior on the wire.
type BreachBehaviorDTO struct {
	NotifyAssignee bool `json:"notify_assignee"`
	UIMarkers      bool `json:"ui_markers"`
}

// CreateRuleRequest is the payload for creating an SLA rule.
type CreateRuleRequest struct {
	Name                    string             `json:"name"`
	Description             string             `json:"description,omitempty"`
	Conditions              []RuleConditionDTO `json:"conditions,omitempty"`
	TargetResolutionMinutes int                `json:"target_resolution_minutes"`
	TargetCloseMinutes      *int               `json:"target_close_minutes,omitempty"`
	BusinessHoursEnabled    bool               `json:"business_hours_enabled"`
	BusinessHours           *BusinessHoursDTO  `json:"business_hours,omitempty"`
	Priority                int                `json:"priority"`
	BreachBehavior          *BreachBehaviorDTO `json:"breach_behavior,omitempty"`
	IsActive                *bool              `json:"is_active,omitempty"`
}

// UpdateRuleRequest is the payload for updating an SLA rule; absent fields
// keep their current value.
type UpdateRuleRequest struct {
	Name                    *string            `json:"name,omitempty"`
	Description             *string            `json:"description,omitempty"`
	Conditions              []RuleConditionDTO `json:"conditions,omitempty"`
	TargetResolutionMinutes *int               `json:"target_resolution_minutes,omitempty"`
	TargetCloseMinutes      *int               `json:"target_close_minutes,omitempty"`
	BusinessHoursEnabled    *bool              `json:"business_hours_enabled,omitempty"`
	BusinessHours           *BusinessHoursDTO  `json:"business_hours,omitempty"`
	Priority                *int               `json:"priority,omitempty"`
	BreachBehavior          *BreachBehaviorDTO `json:"breach_behavior,omitempty"`
}

// SetRuleActiveRequest toggles a rule in or out of the matching pool.
type SetRuleActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// RuleResponse is the API representation of an SLA rule.
type RuleResponse struct {
	ID                      string             `json:"id"`
	Name                    string             `json:"name"`
	Description             string             `json:"description,omitempty"`
	Conditions              []RuleConditionDTO `json:"conditions"`
	TargetResolutionMinutes int                `json:"target_resolution_minutes"`
	TargetCloseMinutes      *int               `json:"target_close_minutes,omitempty"`
	BusinessHoursEnabled    bool               `json:"business_hours_enabled"`
	BusinessHours           *BusinessHoursDTO  `json:"business_hours,omitempty"`
	Priority                int                `json:"priority"`
	BreachBehavior          *BreachBehaviorDTO `json:"breach_behavior,omitempty"`
	IsActive                bool               `json:"is_active"`
	CreatedAt               time.Time          `json:"created_at"`
	UpdatedAt               time.Time          `json:"updated_at"`
}

// ToRule converts a create request to a domain rule.
func (r CreateRuleRequest) ToRule() *domain.SlaRule {
	rule := &domain.SlaRule{
		Name:                    r.Name,
		Description:             r.Description,
		Conditions:              conditionsToDomain(r.Conditions),
		TargetResolutionMinutes: r.TargetResolutionMinutes,
		TargetCloseMinutes:      r.TargetCloseMinutes,
		BusinessHoursEnabled:    r.BusinessHoursEnabled,
		BusinessHours:           businessHoursToDomain(r.BusinessHours),
		Priority:                r.Priority,
		BreachBehavior:          breachBehaviorToDomain(r.BreachBehavior),
		IsActive:                true,
	}
	if r.IsActive != nil {
		rule.IsActive = *r.IsActive
	}
	return rule
}

// Apply merges an update request onto an existing rule.
func (r UpdateRuleRequest) Apply(rule *domain.SlaRule) {
	if r.Name != nil {
		rule.Name = *r.Name
	}
	if r.Description != nil {
		rule.Description = *r.Description
	}
	if r.Conditions != nil {
		rule.Conditions = conditionsToDomain(r.Conditions)
	}
	if r.TargetResolutionMinutes != nil {
		rule.TargetResolutionMinutes = *r.TargetResolutionMinutes
	}
	if r.TargetCloseMinutes != nil {
		rule.TargetCloseMinutes = r.TargetCloseMinutes
	}
	if r.BusinessHoursEnabled != nil {
		rule.BusinessHoursEnabled = *r.BusinessHoursEnabled
	}
	if r.BusinessHours != nil {
		rule.BusinessHours = businessHoursToDomain(r.BusinessHours)
	}
	if r.Priority != nil {
		rule.Priority = *r.Priority
	}
	if r.BreachBehavior != nil {
		rule.BreachBehavior = breachBehaviorToDomain(r.BreachBehavior)
	}
}

// FromRule converts a domain rule to its API representation.
func FromRule(rule *domain.SlaRule) RuleResponse {
	resp := RuleResponse{
		ID:                      rule.ID,
		Name:                    rule.Name,
		Description:             rule.Description,
		Conditions:              conditionsFromDomain(rule.Conditions),
		TargetResolutionMinutes: rule.TargetResolutionMinutes,
		TargetCloseMinutes:      rule.TargetCloseMinutes,
		BusinessHoursEnabled:    rule.BusinessHoursEnabled,
		Priority:                rule.Priority,
		IsActive:                rule.IsActive,
		CreatedAt:               rule.CreatedAt,
		UpdatedAt:               rule.UpdatedAt,
	}
	if rule.BusinessHours != nil {
		resp.BusinessHours = &BusinessHoursDTO{
			Workdays:  rule.BusinessHours.Workdays,
			StartTime: rule.BusinessHours.StartTime,
			EndTime:   rule.BusinessHours.EndTime,
			Holidays:  rule.BusinessHours.Holidays,
		}
	}
	if rule.BreachBehavior != nil {
		resp.BreachBehavior = &BreachBehaviorDTO{
			NotifyAssignee: rule.BreachBehavior.NotifyAssignee,
			UIMarkers:      rule.BreachBehavior.UIMarkers,
		}
	}
	return resp
}

// FromRules converts a rule slice.
func FromRules(rules []domain.SlaRule) []RuleResponse {
	out := make([]RuleResponse, 0, len(rules))
	for i := range rules {
		out = append(out, FromRule(&rules[i]))
	}
	return out
}

func conditionsToDomain(conditions []RuleConditionDTO) []domain.RuleCondition {
	out := make([]domain.RuleCondition, 0, len(conditions))
	for _, c := range conditions {
		out = append(out, domain.RuleCondition{Key: c.Key, Value: c.Value})
	}
	return out
}

func conditionsFromDomain(conditions []domain.RuleCondition) []RuleConditionDTO {
	out := make([]RuleConditionDTO, 0, len(conditions))
	for _, c := range conditions {
		out = append(out, RuleConditionDTO{Key: c.Key, Value: c.Value})
	}
	return out
}

func businessHoursToDomain(cfg *BusinessHoursDTO) *domain.BusinessHoursConfig {
	if cfg == nil {
		return nil
	}
	return &domain.BusinessHoursConfig{
		Workdays:  cfg.Workdays,
		StartTime: cfg.StartTime,
		EndTime:   cfg.EndTime,
		Holidays:  cfg.Holidays,
	}
}

func breachBehaviorToDomain(b *BreachBehaviorDTO) *domain.BreachBehavior {
	if b == nil {
		return nil
	}
	return &domain.BreachBehavior{NotifyAssignee: b.NotifyAssignee, UIMarkers: b.UIMarkers}
}
