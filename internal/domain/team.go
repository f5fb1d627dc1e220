package domain

import "time"

// Team represents an owning group for tickets; SLA rules may target a
// team through an owning_team_id condition.
type Team struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
