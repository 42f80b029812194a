package repository

import (
	"context"
	"database/sql"

	"github.com/tiemnho-dev/shift-roster/backend/internal/domain"
)

func lockShiftPreference(ctx context.Context, tx *sql.Tx, id int64) (*domain.ShiftPreference, error) {
	query := `SELECT ` + shiftPreferenceColumns + ` FROM shift_preferences WHERE id = $1 FOR UPDATE`
	return scanShiftPreference(tx.QueryRowContext(ctx, query, id))
}

func updateShiftPreferenceStatus(ctx context.Context, tx *sql.Tx, p *domain.ShiftPreference) error {
	query := `
		UPDATE shift_preferences
		SET
			status = $1,
			notes = $2,
			updated_at = NOW(),
			version = version + 1
		WHERE id = $3
		RETURNING updated_at, version
	`
	return tx.QueryRowContext(ctx, query, p.Status, p.Notes, p.ID).Scan(&p.UpdatedAt, &p.Version)
}

// ApproveShiftPreference 在同一个事务中为登记创建一个或多个班次，并把登记标记为 approved。
// 班次必须和登记属于同一员工、同一天，并且不能和当天已有的班次重叠（包括重复审批已通过的登记）。
func (r *Repository) ApproveShiftPreference(preferenceID int64, shifts []*domain.Shift) (*domain.ShiftPreference, error) {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	preference, err := lockShiftPreference(ctx, tx, preferenceID)
	if err != nil {
		return nil, err
	}

	if err := preference.Apply(domain.PreferenceEventApprove); err != nil {
		return nil, err
	}

	for _, s := range shifts {
		if s.EmployeeID != preference.EmployeeID || !s.Date.Equal(preference.Date) {
			return nil, domain.ErrPreferenceMismatch
		}
	}

	if err := checkShiftsOfDay(ctx, tx, preference.EmployeeID, preference.Date, shifts); err != nil {
		return nil, err
	}

	for _, s := range shifts {
		s.PreferenceID = &preference.ID
		if err := insertShift(ctx, tx, s); err != nil {
			return nil, err
		}
	}

	if err := updateShiftPreferenceStatus(ctx, tx, preference); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return preference, nil
}

// RejectShiftPreference 只修改登记状态，不会创建或删除任何班次。notes 为 nil 时保留原备注。
func (r *Repository) RejectShiftPreference(preferenceID int64, notes *string) (*domain.ShiftPreference, error) {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	preference, err := lockShiftPreference(ctx, tx, preferenceID)
	if err != nil {
		return nil, err
	}

	if err := preference.Apply(domain.PreferenceEventReject); err != nil {
		return nil, err
	}
	if notes != nil {
		preference.Notes = *notes
	}

	if err := updateShiftPreferenceStatus(ctx, tx, preference); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return preference, nil
}
