package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tiemnho-dev/shift-roster/backend/internal/domain"
	"github.com/tiemnho-dev/shift-roster/backend/internal/utils"
)

const shiftColumns = `
	id,
	employee_id,
	to_char(date, 'YYYY-MM-DD'),
	to_char(start_time, 'HH24:MI'),
	to_char(end_time, 'HH24:MI'),
	shift_type,
	duration,
	position,
	status,
	notes,
	preference_id,
	created_at,
	updated_at,
	version
`

type ShiftFilter struct {
	EmployeeID *int64
	StartDate  domain.Date
	EndDate    domain.Date
}

func scanShift(row scanner) (*domain.Shift, error) {
	s := &domain.Shift{}
	var preferenceID sql.NullInt64

	dst := []any{&s.ID, &s.EmployeeID, &s.Date, &s.StartTime, &s.EndTime, &s.ShiftType, &s.Duration, &s.Position, &s.Status, &s.Notes, &preferenceID, &s.CreatedAt, &s.UpdatedAt, &s.Version}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	if preferenceID.Valid {
		s.PreferenceID = &preferenceID.Int64
	}

	return s, nil
}

func scanShifts(rows *sql.Rows) ([]*domain.Shift, error) {
	defer rows.Close()

	shifts := make([]*domain.Shift, 0)
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}

// lockShiftsOfDay 先锁住员工行再读取当天已有的班次，同一员工的班次写入在事务内串行
func lockShiftsOfDay(ctx context.Context, tx *sql.Tx, employeeID int64, date domain.Date) ([]*domain.Shift, error) {
	var id int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM employees WHERE id = $1 FOR NO KEY UPDATE`, employeeID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, err
	}

	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE employee_id = $1 AND date = $2 ORDER BY start_time`
	rows, err := tx.QueryContext(ctx, query, employeeID, date)
	if err != nil {
		return nil, err
	}

	return scanShifts(rows)
}

// checkShiftsOfDay 新班次不能和当天已保存的班次重叠
func checkShiftsOfDay(ctx context.Context, tx *sql.Tx, employeeID int64, date domain.Date, shifts []*domain.Shift) error {
	existing, err := lockShiftsOfDay(ctx, tx, employeeID, date)
	if err != nil {
		return err
	}

	return utils.ValidateAgainstExistingShifts(existing, shifts)
}

func insertShift(ctx context.Context, q queryer, s *domain.Shift) error {
	query := `
		INSERT INTO shifts (employee_id, date, start_time, end_time, shift_type, duration, position, status, notes, preference_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at, version
	`

	args := []any{s.EmployeeID, s.Date, s.StartTime, s.EndTime, s.ShiftType, s.Duration, s.Position, s.Status, s.Notes, nullInt64(s.PreferenceID)}
	return q.QueryRowContext(ctx, query, args...).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt, &s.Version)
}

// CreateShift 创建不关联任何登记的班次（由管理员直接排班）。
// 和当天已有班次重叠时返回 domain.ErrOverlappingShifts。
func (r *Repository) CreateShift(s *domain.Shift) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := checkShiftsOfDay(ctx, tx, s.EmployeeID, s.Date, []*domain.Shift{s}); err != nil {
		return err
	}

	if err := insertShift(ctx, tx, s); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) GetShiftByID(id int64) (*domain.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE id = $1`

	ctx, cancel := r.queryContext()
	defer cancel()

	return scanShift(r.dbpool.QueryRowContext(ctx, query, id))
}

func (r *Repository) GetShifts(filter ShiftFilter) ([]*domain.Shift, error) {
	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE date BETWEEN $1 AND $2
			AND ($3::BIGINT IS NULL OR employee_id = $3)
		ORDER BY date, start_time, employee_id
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, filter.StartDate, filter.EndDate, nullInt64(filter.EmployeeID))
	if err != nil {
		return nil, err
	}

	return scanShifts(rows)
}

// UpdateShift 带版本号检查，调用前必须已经执行过 Derive。
// 修改后的时间和同一天其他班次重叠时返回 domain.ErrOverlappingShifts。
func (r *Repository) UpdateShift(s *domain.Shift) error {
	query := `
		UPDATE shifts
		SET
			date = $1,
			start_time = $2,
			end_time = $3,
			shift_type = $4,
			duration = $5,
			position = $6,
			notes = $7,
			updated_at = NOW(),
			version = version + 1
		WHERE id = $8 AND version = $9
		RETURNING updated_at, version
	`

	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := checkShiftsOfDay(ctx, tx, s.EmployeeID, s.Date, []*domain.Shift{s}); err != nil {
		return err
	}

	args := []any{s.Date, s.StartTime, s.EndTime, s.ShiftType, s.Duration, s.Position, s.Notes, s.ID, s.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&s.UpdatedAt, &s.Version); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) DeleteShift(id int64) error {
	query := `DELETE FROM shifts WHERE id = $1`

	ctx, cancel := r.queryContext()
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return checkRowsAffected(result)
}
