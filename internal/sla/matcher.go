package sla

import (
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

// TicketAttributes is the projection of a ticket that rule conditions can
// constrain.
type TicketAttributes struct {
	Priority string
	Category string
	Status   string
	TeamID   *string
}

// AttributesOf builds the matching projection for a ticket.
func AttributesOf(t *domain.Ticket) TicketAttributes {
	return TicketAttributes{
		Priority: string(t.Priority),
		Category: t.Category,
		Status:   string(t.Status),
		TeamID:   t.TeamID,
	}
}

type conditionKind int

const (
	condPriority conditionKind = iota
	condCategory
	condStatus
	condTeam
	condUnknown
)

// condition is the decoded, typed form of a stored RuleCondition. Unknown
// keys and unparsable team IDs decode to condUnknown, which never
// constrains a match.
type condition struct {
	kind   conditionKind
	value  string
	teamID uuid.UUID
}

func decodeCondition(rc domain.RuleCondition) condition {
	switch strings.ToLower(strings.TrimSpace(rc.Key)) {
	case "priority":
		return condition{kind: condPriority, value: rc.Value}
	case "category":
		return condition{kind: condCategory, value: rc.Value}
	case "status":
		return condition{kind: condStatus, value: rc.Value}
	case "owning_team_id", "owningteamid", "team_id":
		id, err := uuid.Parse(strings.TrimSpace(rc.Value))
		if err != nil {
			return condition{kind: condUnknown}
		}
		return condition{kind: condTeam, teamID: id}
	default:
		return condition{kind: condUnknown}
	}
}

func (c condition) matches(attrs TicketAttributes) bool {
	switch c.kind {
	case condPriority:
		return strings.EqualFold(c.value, attrs.Priority)
	case condCategory:
		return strings.EqualFold(c.value, attrs.Category)
	case condStatus:
		return strings.EqualFold(c.value, attrs.Status)
	case condTeam:
		if attrs.TeamID == nil {
			return false
		}
		id, err := uuid.Parse(*attrs.TeamID)
		if err != nil {
			return false
		}
		return id == c.teamID
	default:
		// Unknown keys carry no constraint.
		return true
	}
}

// Match returns the first rule whose conditions are all satisfied by the
// ticket attributes, or nil when none match. The rules slice must already
// be filtered to active rules and sorted ascending by (priority,
// created_at); first match wins, not best fit. A rule with no conditions
// matches unconditionally.
func Match(attrs TicketAttributes, rules []domain.SlaRule) *domain.SlaRule {
	for i := range rules {
		if ruleMatches(attrs, &rules[i]) {
			return &rules[i]
		}
	}
	return nil
}

func ruleMatches(attrs TicketAttributes, rule *domain.SlaRule) bool {
	for _, rc := range rule.Conditions {
		if !decodeCondition(rc).matches(attrs) {
			return false
		}
	}
	return true
}
