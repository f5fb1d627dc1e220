package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-sla/internal/cache"
	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

func newTestRuleService(repo *fakeRuleRepo) *RuleService {
	return NewRuleService(repo, cache.NewRuleCache(nil, 0, nil), nil)
}

func validRule() *domain.SlaRule {
	return &domain.SlaRule{
		ID:                      "rule-1",
		Name:                    "Standard resolution",
		TargetResolutionMinutes: 480,
		Priority:                10,
		IsActive:                true,
	}
}

func TestRuleCreateValid(t *testing.T) {
	repo := &fakeRuleRepo{}
	svc := newTestRuleService(repo)

	require.NoError(t, svc.Create(context.Background(), validRule()))
	assert.Len(t, repo.rules, 1)
}

func TestRuleCreateRejectsBadInput(t *testing.T) {
	svc := newTestRuleService(&fakeRuleRepo{})

	tests := []struct {
		name   string
		mutate func(*domain.SlaRule)
	}{
		{"blank name", func(r *domain.SlaRule) { r.Name = "  " }},
		{"zero target", func(r *domain.SlaRule) { r.TargetResolutionMinutes = 0 }},
		{"negative target", func(r *domain.SlaRule) { r.TargetResolutionMinutes = -30 }},
		{"zero close target", func(r *domain.SlaRule) {
			zero := 0
			r.TargetCloseMinutes = &zero
		}},
		{"business hours without config", func(r *domain.SlaRule) {
			r.BusinessHoursEnabled = true
		}},
		{"business hours without workdays", func(r *domain.SlaRule) {
			r.BusinessHoursEnabled = true
			r.BusinessHours = &domain.BusinessHoursConfig{StartTime: "09:00", EndTime: "17:00"}
		}},
		{"workday out of range", func(r *domain.SlaRule) {
			r.BusinessHoursEnabled = true
			r.BusinessHours = &domain.BusinessHoursConfig{Workdays: []int{7}, StartTime: "09:00", EndTime: "17:00"}
		}},
		{"start after end", func(r *domain.SlaRule) {
			r.BusinessHoursEnabled = true
			r.BusinessHours = &domain.BusinessHoursConfig{Workdays: []int{1}, StartTime: "18:00", EndTime: "09:00"}
		}},
		{"bad clock format", func(r *domain.SlaRule) {
			r.BusinessHoursEnabled = true
			r.BusinessHours = &domain.BusinessHoursConfig{Workdays: []int{1}, StartTime: "9am", EndTime: "17:00"}
		}},
		{"bad holiday format", func(r *domain.SlaRule) {
			r.BusinessHoursEnabled = true
			r.BusinessHours = &domain.BusinessHoursConfig{
				Workdays: []int{1}, StartTime: "09:00", EndTime: "17:00",
				Holidays: []string{"25-12-2026"},
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := validRule()
			tt.mutate(rule)
			assert.Error(t, svc.Create(context.Background(), rule))
		})
	}
}

func TestRuleUpdateValidatesToo(t *testing.T) {
	repo := &fakeRuleRepo{}
	svc := newTestRuleService(repo)
	require.NoError(t, svc.Create(context.Background(), validRule()))

	rule := validRule()
	rule.TargetResolutionMinutes = -1
	assert.Error(t, svc.Update(context.Background(), rule))

	rule = validRule()
	rule.TargetResolutionMinutes = 600
	require.NoError(t, svc.Update(context.Background(), rule))
	assert.Equal(t, 600, repo.rules[0].TargetResolutionMinutes)
}

func TestRuleSetActiveToggles(t *testing.T) {
	repo := &fakeRuleRepo{}
	svc := newTestRuleService(repo)
	require.NoError(t, svc.Create(context.Background(), validRule()))

	require.NoError(t, svc.SetActive(context.Background(), "rule-1", false))
	active, err := svc.List(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.List(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
