package sla

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

func rule(id string, priority int, conds ...domain.RuleCondition) domain.SlaRule {
	return domain.SlaRule{
		ID:                      id,
		Name:                    id,
		Conditions:              conds,
		TargetResolutionMinutes: 60,
		Priority:                priority,
		IsActive:                true,
		CreatedAt:               time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func cond(key, value string) domain.RuleCondition {
	return domain.RuleCondition{Key: key, Value: value}
}

func TestMatchFirstWins(t *testing.T) {
	rules := []domain.SlaRule{
		rule("urgent", 10, cond("priority", "URGENT")),
		rule("high", 20, cond("priority", "HIGH")),
		rule("catch-all", 100),
	}
	attrs := TicketAttributes{Priority: "HIGH", Status: "OPEN"}

	matched := Match(attrs, rules)
	require.NotNil(t, matched)
	assert.Equal(t, "high", matched.ID)

	// Deterministic: same inputs, same rule, every call.
	for i := 0; i < 5; i++ {
		again := Match(attrs, rules)
		require.NotNil(t, again)
		assert.Equal(t, matched.ID, again.ID)
	}
}

func TestMatchCatchAll(t *testing.T) {
	rules := []domain.SlaRule{
		rule("urgent", 10, cond("priority", "URGENT")),
		rule("catch-all", 100),
	}

	matched := Match(TicketAttributes{Priority: "LOW"}, rules)
	require.NotNil(t, matched)
	assert.Equal(t, "catch-all", matched.ID)
}

func TestMatchNoRules(t *testing.T) {
	assert.Nil(t, Match(TicketAttributes{Priority: "HIGH"}, nil))
	assert.Nil(t, Match(TicketAttributes{Priority: "HIGH"}, []domain.SlaRule{
		rule("urgent", 10, cond("priority", "URGENT")),
	}))
}

func TestMatchAllConditionsRequired(t *testing.T) {
	r := rule("billing-high", 10,
		cond("priority", "HIGH"),
		cond("category", "billing"),
	)

	assert.NotNil(t, Match(TicketAttributes{Priority: "HIGH", Category: "billing"}, []domain.SlaRule{r}))
	assert.Nil(t, Match(TicketAttributes{Priority: "HIGH", Category: "shipping"}, []domain.SlaRule{r}))
	assert.Nil(t, Match(TicketAttributes{Priority: "LOW", Category: "billing"}, []domain.SlaRule{r}))
}

func TestMatchCaseInsensitive(t *testing.T) {
	r := rule("billing", 10, cond("category", "Billing"), cond("status", "open"))
	attrs := TicketAttributes{Category: "BILLING", Status: "OPEN"}
	assert.NotNil(t, Match(attrs, []domain.SlaRule{r}))
}

func TestMatchUnknownKeyIgnored(t *testing.T) {
	r := rule("weird", 10,
		cond("priority", "HIGH"),
		cond("channel", "email"), // not a supported key
	)
	matched := Match(TicketAttributes{Priority: "HIGH"}, []domain.SlaRule{r})
	require.NotNil(t, matched)
	assert.Equal(t, "weird", matched.ID)
}

func TestMatchTeamCondition(t *testing.T) {
	teamID := uuid.NewString()
	otherID := uuid.NewString()
	r := rule("team", 10, cond("owning_team_id", teamID))

	t.Run("matching team", func(t *testing.T) {
		assert.NotNil(t, Match(TicketAttributes{TeamID: &teamID}, []domain.SlaRule{r}))
	})
	t.Run("different team", func(t *testing.T) {
		assert.Nil(t, Match(TicketAttributes{TeamID: &otherID}, []domain.SlaRule{r}))
	})
	t.Run("no team", func(t *testing.T) {
		assert.Nil(t, Match(TicketAttributes{}, []domain.SlaRule{r}))
	})
	t.Run("unparsable stored value ignored", func(t *testing.T) {
		broken := rule("broken", 10, cond("owning_team_id", "not-a-uuid"))
		assert.NotNil(t, Match(TicketAttributes{}, []domain.SlaRule{broken}))
	})
}

func TestDecodeConditionKeyAliases(t *testing.T) {
	id := uuid.NewString()
	for _, key := range []string{"owning_team_id", "owningTeamId", "team_id"} {
		c := decodeCondition(domain.RuleCondition{Key: key, Value: id})
		assert.Equal(t, condTeam, c.kind, "key %q", key)
	}
}
