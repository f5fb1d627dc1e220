package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

// StatusTypeRepository exposes the externally configured status
// classifier. IsClosedType is the predicate the breach evaluator consumes;
// an unknown status key classifies as not closed.
type StatusTypeRepository interface {
	List(ctx context.Context) ([]domain.StatusType, error)
	IsClosedType(ctx context.Context, status domain.TicketStatus) (bool, error)
}

type statusTypeRepository struct {
	pool *pgxpool.Pool
}

// NewStatusTypeRepository builds the repository.
func NewStatusTypeRepository(pool *pgxpool.Pool) StatusTypeRepository {
	return &statusTypeRepository{pool: pool}
}

func (r *statusTypeRepository) List(ctx context.Context) ([]domain.StatusType, error) {
	const query = `
        SELECT key, label, is_closed_type, sort_order, created_at
        FROM ticket_statuses ORDER BY sort_order ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusType
	for rows.Next() {
		var st domain.StatusType
		if err := rows.Scan(&st.Key, &st.Label, &st.IsClosedType, &st.SortOrder, &st.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, st)
	}
	return result, rows.Err()
}

func (r *statusTypeRepository) IsClosedType(ctx context.Context, status domain.TicketStatus) (bool, error) {
	const query = `SELECT is_closed_type FROM ticket_statuses WHERE key=$1`
	var closed bool
	err := r.pool.QueryRow(ctx, query, status).Scan(&closed)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return closed, nil
}
