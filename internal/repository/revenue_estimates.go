package repository

import (
	"context"

	"github.com/tiemnho-dev/shift-roster/backend/internal/domain"
)

func upsertRevenueEstimate(ctx context.Context, q queryer, e *domain.RevenueEstimate) error {
	query := `
		INSERT INTO revenue_estimates (date, amount, is_actual, notes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (date) DO UPDATE
		SET
			amount = EXCLUDED.amount,
			is_actual = EXCLUDED.is_actual,
			notes = EXCLUDED.notes,
			updated_at = NOW()
		RETURNING updated_at
	`
	return q.QueryRowContext(ctx, query, e.Date, e.Amount, e.IsActual, e.Notes).Scan(&e.UpdatedAt)
}

func (r *Repository) UpsertRevenueEstimate(e *domain.RevenueEstimate) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	return upsertRevenueEstimate(ctx, r.dbpool, e)
}

// UpsertRevenueEstimates 将同一个金额批量应用到多个日期，全部成功或全部失败
func (r *Repository) UpsertRevenueEstimates(estimates []*domain.RevenueEstimate) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, e := range estimates {
		if err := upsertRevenueEstimate(ctx, tx, e); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) GetRevenueEstimates(startDate, endDate domain.Date) ([]*domain.RevenueEstimate, error) {
	query := `
		SELECT to_char(date, 'YYYY-MM-DD'), amount, is_actual, notes, updated_at
		FROM revenue_estimates
		WHERE date BETWEEN $1 AND $2
		ORDER BY date
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	estimates := make([]*domain.RevenueEstimate, 0)
	for rows.Next() {
		e := &domain.RevenueEstimate{}
		if err := rows.Scan(&e.Date, &e.Amount, &e.IsActual, &e.Notes, &e.UpdatedAt); err != nil {
			return nil, err
		}
		estimates = append(estimates, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return estimates, nil
}

func (r *Repository) DeleteRevenueEstimate(date domain.Date) error {
	query := `DELETE FROM revenue_estimates WHERE date = $1`

	ctx, cancel := r.queryContext()
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, query, date)
	if err != nil {
		return err
	}

	return checkRowsAffected(result)
}
