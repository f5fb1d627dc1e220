package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

// SlaRuleRepository encapsulates SLA rule persistence. ListActive returns
// the evaluation snapshot: active rules only, sorted ascending by
// (priority, created_at) so matching is deterministic.
type SlaRuleRepository interface {
	Create(ctx context.Context, rule *domain.SlaRule) error
	Update(ctx context.Context, rule *domain.SlaRule) error
	GetByID(ctx context.Context, id string) (*domain.SlaRule, error)
	List(ctx context.Context, includeInactive bool) ([]domain.SlaRule, error)
	ListActive(ctx context.Context) ([]domain.SlaRule, error)
	SetActive(ctx context.Context, id string, active bool) error
}

type slaRuleRepository struct {
	pool *pgxpool.Pool
}

// NewSlaRuleRepository instantiates the repository.
func NewSlaRuleRepository(pool *pgxpool.Pool) SlaRuleRepository {
	return &slaRuleRepository{pool: pool}
}

const slaRuleColumns = `id, name, description, conditions, target_resolution_minutes,
       target_close_minutes, business_hours_enabled, business_hours,
       priority, breach_behavior, is_active, created_at, updated_at`

func (r *slaRuleRepository) Create(ctx context.Context, rule *domain.SlaRule) error {
	const query = `
        INSERT INTO sla_rules (name, description, conditions, target_resolution_minutes,
            target_close_minutes, business_hours_enabled, business_hours, priority,
            breach_behavior, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		rule.Name,
		rule.Description,
		rule.Conditions,
		rule.TargetResolutionMinutes,
		rule.TargetCloseMinutes,
		rule.BusinessHoursEnabled,
		rule.BusinessHours,
		rule.Priority,
		rule.BreachBehavior,
		rule.IsActive,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
}

func (r *slaRuleRepository) Update(ctx context.Context, rule *domain.SlaRule) error {
	const query = `
        UPDATE sla_rules SET name=$1, description=$2, conditions=$3,
            target_resolution_minutes=$4, target_close_minutes=$5,
            business_hours_enabled=$6, business_hours=$7, priority=$8,
            breach_behavior=$9, is_active=$10, updated_at=NOW()
        WHERE id=$11`
	cmd, err := r.pool.Exec(ctx, query,
		rule.Name,
		rule.Description,
		rule.Conditions,
		rule.TargetResolutionMinutes,
		rule.TargetCloseMinutes,
		rule.BusinessHoursEnabled,
		rule.BusinessHours,
		rule.Priority,
		rule.BreachBehavior,
		rule.IsActive,
		rule.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *slaRuleRepository) GetByID(ctx context.Context, id string) (*domain.SlaRule, error) {
	query := `SELECT ` + slaRuleColumns + ` FROM sla_rules WHERE id=$1`
	var rule domain.SlaRule
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&rule.ID,
		&rule.Name,
		&rule.Description,
		&rule.Conditions,
		&rule.TargetResolutionMinutes,
		&rule.TargetCloseMinutes,
		&rule.BusinessHoursEnabled,
		&rule.BusinessHours,
		&rule.Priority,
		&rule.BreachBehavior,
		&rule.IsActive,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *slaRuleRepository) List(ctx context.Context, includeInactive bool) ([]domain.SlaRule, error) {
	query := `SELECT ` + slaRuleColumns + ` FROM sla_rules`
	if !includeInactive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY priority ASC, created_at ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSlaRules(rows)
}

func (r *slaRuleRepository) ListActive(ctx context.Context) ([]domain.SlaRule, error) {
	return r.List(ctx, false)
}

func (r *slaRuleRepository) SetActive(ctx context.Context, id string, active bool) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE sla_rules SET is_active=$1, updated_at=NOW() WHERE id=$2`, active, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanSlaRules(rows pgx.Rows) ([]domain.SlaRule, error) {
	var result []domain.SlaRule
	for rows.Next() {
		var rule domain.SlaRule
		if err := rows.Scan(
			&rule.ID,
			&rule.Name,
			&rule.Description,
			&rule.Conditions,
			&rule.TargetResolutionMinutes,
			&rule.TargetCloseMinutes,
			&rule.BusinessHoursEnabled,
			&rule.BusinessHours,
			&rule.Priority,
			&rule.BreachBehavior,
			&rule.IsActive,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, rule)
	}
	return result, rows.Err()
}
